package bp

import (
	"github.com/matzehuels/topdag/pkg/huffman"
	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/tree"
)

// EstimateBits returns the size in bits of a succinct encoding of the
// labeled tree: two structure bits per node plus a Huffman-coded label
// id per node plus the label name table. Compression results are
// reported relative to this number, not to the verbose XML input.
func EstimateBits(t *tree.Tree, lab *labels.Labels) int64 {
	n := int64(t.NumNodes())
	bits := 2 * n

	freqs := make(map[int]int)
	t.Preorder(func(v int) {
		freqs[lab.LabelOf(v)]++
	})
	coder := huffman.New(freqs)
	bits += coder.TotalBits(freqs)

	for _, name := range lab.Names() {
		bits += 8 * int64(len(name)+1)
	}
	return bits
}
