// Package labels maps label strings to small dense integer ids.
//
// Every node of an ordered tree carries a label (an XML tag name, or a
// synthetic label for generated trees). Labels are interned: the first
// occurrence of a string is assigned the next free id, and all later
// occurrences reuse it. Ids are stable across compression and
// decompression, so the compressed artifact only needs to store ids plus
// the id → string table.
//
// The table is persisted as a length-prefixed UTF-8 sequence in assignment
// order, so an id is exactly the position of its string in the stream.
package labels

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrCorruptStore is returned by [Read] when the on-disk label stream is
// truncated or contains an invalid length prefix.
var ErrCorruptStore = errors.New("corrupt label store")

// maxLabelLen bounds a single label read from disk. Tag names longer than
// this indicate a corrupt or hostile input, not a real document.
const maxLabelLen = 1 << 20

// Labels interns label strings and records which label each tree node
// carries. The zero value is not usable; call [New].
//
// Labels is not safe for concurrent mutation. Once a tree is fully parsed
// or generated the mapping is only read, which is safe from any number of
// goroutines.
type Labels struct {
	ids   map[string]int
	names []string // id → string, in assignment order
	nodes []int    // node id → label id, in node order
}

// New creates an empty label mapping.
func New() *Labels {
	return &Labels{ids: make(map[string]int)}
}

// Add records that the next tree node (node id == number of calls so far)
// carries the given label, interning the string if it is new.
// It returns the label id.
func (l *Labels) Add(name string) int {
	id, ok := l.ids[name]
	if !ok {
		id = len(l.names)
		l.ids[name] = id
		l.names = append(l.names, name)
	}
	l.nodes = append(l.nodes, id)
	return id
}

// Intern returns the id for name, assigning a fresh one if needed, without
// associating it with a node. Used when rebuilding a mapping from ids.
func (l *Labels) Intern(name string) int {
	id, ok := l.ids[name]
	if !ok {
		id = len(l.names)
		l.ids[name] = id
		l.names = append(l.names, name)
	}
	return id
}

// LabelOf returns the label id of the given tree node.
func (l *Labels) LabelOf(node int) int { return l.nodes[node] }

// Name returns the string for a label id.
func (l *Labels) Name(id int) string { return l.names[id] }

// NumLabels returns the number of distinct labels.
func (l *Labels) NumLabels() int { return len(l.names) }

// NumNodes returns the number of nodes that have been labeled.
func (l *Labels) NumNodes() int { return len(l.nodes) }

// Names returns the id → string table in assignment order.
// The returned slice is the internal one; callers must not modify it.
func (l *Labels) Names() []string { return l.names }

// Write dumps the label table to w as a length-prefixed UTF-8 sequence in
// assignment order. Node associations are not written; they are implied by
// the structure that references the ids.
func (l *Labels) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(l.names)))
	if _, err := bw.Write(buf[:n]); err != nil {
		return err
	}
	for _, name := range l.names {
		n := binary.PutUvarint(buf[:], uint64(len(name)))
		if _, err := bw.Write(buf[:n]); err != nil {
			return err
		}
		if _, err := bw.WriteString(name); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// byteReader adapts an io.Reader for uvarint decoding one byte at a
// time. Read never buffers ahead, so the stream position after the
// label table is exact and callers can keep reading their own data
// from r.
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

// Read parses a label table previously written by [Labels.Write].
// The resulting mapping has the same id assignment but no node
// associations.
func Read(r io.Reader) (*Labels, error) {
	br := &byteReader{r: r}
	count, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	l := New()
	for i := uint64(0); i < count; i++ {
		size, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
		}
		if size > maxLabelLen {
			return nil, fmt.Errorf("%w: label of %d bytes", ErrCorruptStore, size)
		}
		name := make([]byte, size)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
		}
		l.Intern(string(name))
	}
	return l, nil
}
