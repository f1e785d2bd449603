// Package huffman builds canonical Huffman codes over integer symbol
// alphabets. It is used to estimate and produce entropy-coded label
// streams; the tree compression core never depends on it.
//
// Nodes are tagged values in a flat pool indexed by integer id: a node
// is either Leaf(symbol) or Inner(left, right). There is no node
// hierarchy and no dynamic dispatch.
package huffman

import (
	"container/heap"
	"fmt"
	"sort"
)

// node is one pool entry. Leaves carry a symbol; inner nodes carry two
// child ids.
type node struct {
	freq        int
	symbol      int
	left, right int // -1 for leaves
}

func (n node) leaf() bool { return n.left < 0 }

// Coder holds the code table built from symbol frequencies.
type Coder struct {
	lengths map[int]int    // symbol → code length in bits
	codes   map[int]uint64 // symbol → canonical code, MSB first in the low `length` bits
}

// New builds a Huffman code for the given frequency table. Symbols with
// zero or negative frequency are ignored. Ties are broken by symbol
// value, so the table is deterministic for a fixed input.
//
// A single-symbol alphabet gets a one-bit code; an empty table yields a
// coder whose Length is 0 for every symbol.
func New(freqs map[int]int) *Coder {
	pool := make([]node, 0, 2*len(freqs))
	var pq nodeHeap
	for sym, f := range freqs {
		if f <= 0 {
			continue
		}
		pool = append(pool, node{freq: f, symbol: sym, left: -1, right: -1})
	}
	// Deterministic heap seeding: by (freq, symbol).
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].freq != pool[j].freq {
			return pool[i].freq < pool[j].freq
		}
		return pool[i].symbol < pool[j].symbol
	})
	pq = nodeHeap{pool: &pool}
	for i := range pool {
		pq.ids = append(pq.ids, i)
	}
	heap.Init(&pq)

	c := &Coder{lengths: make(map[int]int), codes: make(map[int]uint64)}
	if pq.Len() == 0 {
		return c
	}
	if pq.Len() == 1 {
		c.lengths[pool[pq.ids[0]].symbol] = 1
		c.assignCanonical()
		return c
	}
	for pq.Len() > 1 {
		a := heap.Pop(&pq).(int)
		b := heap.Pop(&pq).(int)
		pool = append(pool, node{freq: pool[a].freq + pool[b].freq, left: a, right: b})
		pq.pool = &pool
		heap.Push(&pq, len(pool)-1)
	}
	root := pq.ids[0]

	// Walk the pool tree once to collect code lengths.
	type item struct{ id, depth int }
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := pool[it.id]
		if n.leaf() {
			c.lengths[n.symbol] = it.depth
			continue
		}
		stack = append(stack, item{n.left, it.depth + 1}, item{n.right, it.depth + 1})
	}
	c.assignCanonical()
	return c
}

// assignCanonical derives canonical codes from the code lengths: symbols
// sorted by (length, symbol) receive consecutive code words. Canonical
// codes make the table reconstructible from lengths alone.
func (c *Coder) assignCanonical() {
	type entry struct{ symbol, length int }
	entries := make([]entry, 0, len(c.lengths))
	for sym, l := range c.lengths {
		entries = append(entries, entry{sym, l})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].length != entries[j].length {
			return entries[i].length < entries[j].length
		}
		return entries[i].symbol < entries[j].symbol
	})
	var code uint64
	prevLen := 0
	for _, e := range entries {
		code <<= uint(e.length - prevLen)
		c.codes[e.symbol] = code
		code++
		prevLen = e.length
	}
}

// Length returns the code length of a symbol in bits, 0 if the symbol
// was not in the frequency table.
func (c *Coder) Length(symbol int) int { return c.lengths[symbol] }

// Code returns the canonical code word of a symbol and its length.
func (c *Coder) Code(symbol int) (code uint64, bits int) {
	return c.codes[symbol], c.lengths[symbol]
}

// TotalBits returns the coded size of a stream with the given frequency
// distribution.
func (c *Coder) TotalBits(freqs map[int]int) int64 {
	var total int64
	for sym, f := range freqs {
		total += int64(f) * int64(c.lengths[sym])
	}
	return total
}

// NumSymbols returns the alphabet size of the code.
func (c *Coder) NumSymbols() int { return len(c.lengths) }

// String summarizes the code table for debugging.
func (c *Coder) String() string {
	return fmt.Sprintf("huffman code over %d symbols", len(c.lengths))
}

// nodeHeap is a min-heap of pool ids ordered by (frequency, symbol).
// Inner nodes compare after leaves of equal frequency by their pool id,
// which is deterministic because the pool is filled deterministically.
type nodeHeap struct {
	ids  []int
	pool *[]node
}

func (h *nodeHeap) Len() int { return len(h.ids) }

func (h *nodeHeap) Less(i, j int) bool {
	p := *h.pool
	a, b := p[h.ids[i]], p[h.ids[j]]
	if a.freq != b.freq {
		return a.freq < b.freq
	}
	if a.leaf() != b.leaf() {
		return a.leaf()
	}
	if a.leaf() {
		return a.symbol < b.symbol
	}
	return h.ids[i] < h.ids[j]
}

func (h *nodeHeap) Swap(i, j int) { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }

func (h *nodeHeap) Push(x any) { h.ids = append(h.ids, x.(int)) }

func (h *nodeHeap) Pop() any {
	x := h.ids[len(h.ids)-1]
	h.ids = h.ids[:len(h.ids)-1]
	return x
}
