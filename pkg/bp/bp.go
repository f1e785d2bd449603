// Package bp converts ordered trees to and from balanced-parenthesis
// strings: a pre-order traversal emits an opening bit at entry and a
// closing bit at exit, while labels accumulate in a separate
// length-prefixed byte stream. The pair round-trips to an isomorphic
// tree, and its size is the baseline that Top DAG compression is
// measured against.
package bp

import (
	"encoding/binary"

	"github.com/matzehuels/topdag/pkg/errors"
	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/tree"
)

// FromTree emits the structure bits and the label byte stream of t.
// Structure uses true for '(' and false for ')'; labels are the UTF-8
// names in pre-order, each preceded by a uvarint length.
func FromTree(t *tree.Tree, lab *labels.Labels) (structure []bool, labelBytes []byte) {
	structure = make([]bool, 0, 2*t.NumNodes())
	var lenBuf [binary.MaxVarintLen64]byte

	var walk func(v int)
	walk = func(v int) {
		structure = append(structure, true)
		name := lab.Name(lab.LabelOf(v))
		n := binary.PutUvarint(lenBuf[:], uint64(len(name)))
		labelBytes = append(labelBytes, lenBuf[:n]...)
		labelBytes = append(labelBytes, name...)
		for _, c := range t.Children(v) {
			walk(c)
		}
		structure = append(structure, false)
	}
	if t.NumNodes() > 0 {
		walk(0)
	}
	return structure, labelBytes
}

// ToTree reconstructs a tree and label mapping from the two streams
// produced by [FromTree].
func ToTree(structure []bool, labelBytes []byte) (*tree.Tree, *labels.Labels, error) {
	lab := labels.New()
	var parents, stack []int
	pos := 0
	for _, open := range structure {
		if open {
			id := len(parents)
			if len(stack) == 0 {
				if id != 0 {
					return nil, nil, errors.New(errors.ErrCodeInvalidTree, "parenthesis string encodes a forest")
				}
				parents = append(parents, -1)
			} else {
				parents = append(parents, stack[len(stack)-1])
			}
			name, next, err := readLabel(labelBytes, pos)
			if err != nil {
				return nil, nil, err
			}
			pos = next
			lab.Add(name)
			stack = append(stack, id)
		} else {
			if len(stack) == 0 {
				return nil, nil, errors.New(errors.ErrCodeInvalidTree, "unbalanced parenthesis string")
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidTree, "unbalanced parenthesis string")
	}
	if len(parents) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidTree, "empty parenthesis string")
	}
	return tree.FromParents(parents), lab, nil
}

func readLabel(buf []byte, pos int) (string, int, error) {
	size, n := binary.Uvarint(buf[pos:])
	if n <= 0 {
		return "", 0, errors.New(errors.ErrCodeInvalidTree, "truncated label stream")
	}
	pos += n
	end := pos + int(size)
	if end > len(buf) {
		return "", 0, errors.New(errors.ErrCodeInvalidTree, "truncated label stream")
	}
	return string(buf[pos:end]), end, nil
}
