package toptree

import (
	"github.com/matzehuels/topdag/pkg/errors"
	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/tree"
)

// Unpack expands the top tree back into an ordered tree and its label
// vector, inverting [Construct]. names supplies the id → string table the
// cluster labels refer to.
//
// Expansion walks the cluster tree from the root. A vertical merge emits
// its left part and hangs the right part below the left part's bottom
// boundary node; a horizontal merge emits both parts as adjacent
// children of the same parent. The node that stays open for further
// attachment is dictated by the merge type.
//
// Nodes are numbered in creation order, which for every sibling list is
// left-to-right order, so the result is isomorphic to the tree the top
// tree was built from, including the pre-order label sequence.
func Unpack(top *TopTree, names *labels.Labels) (*tree.Tree, *labels.Labels, error) {
	if len(top.Clusters) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidTree, "cannot unpack empty top tree")
	}
	u := &unpacker{top: top, names: names, out: labels.New()}
	if _, err := u.expand(top.Root(), -1); err != nil {
		return nil, nil, err
	}
	return tree.FromParents(u.parents), u.out, nil
}

type unpacker struct {
	top     *TopTree
	names   *labels.Labels
	parents []int
	out     *labels.Labels
}

// expand emits cluster c below the given parent node and returns the
// cluster's bottom boundary node, or -1 if the merge type says it has
// none.
func (u *unpacker) expand(c, parent int) (int, error) {
	cl := u.top.Clusters[c]
	if cl.IsLeaf() {
		id := len(u.parents)
		u.parents = append(u.parents, parent)
		u.out.Add(u.names.Name(cl.Label))
		return id, nil
	}

	switch cl.Type {
	case tree.VertWithBBN, tree.VertNoBBN:
		bbn, err := u.expand(cl.Left, parent)
		if err != nil {
			return 0, err
		}
		if bbn < 0 {
			return 0, errors.New(errors.ErrCodeInvariant, "vertical merge below cluster %d which has no boundary node", cl.Left)
		}
		lower, err := u.expand(cl.Right, bbn)
		if err != nil {
			return 0, err
		}
		if cl.Type == tree.VertWithBBN {
			return lower, nil
		}
		return -1, nil

	case tree.HorzLeftBBN, tree.HorzRightBBN, tree.HorzNoBBN:
		leftBBN, err := u.expand(cl.Left, parent)
		if err != nil {
			return 0, err
		}
		rightBBN, err := u.expand(cl.Right, parent)
		if err != nil {
			return 0, err
		}
		switch cl.Type {
		case tree.HorzLeftBBN:
			return leftBBN, nil
		case tree.HorzRightBBN:
			return rightBBN, nil
		default:
			return -1, nil
		}

	default:
		return 0, errors.New(errors.ErrCodeInvariant, "cluster %d has merge type %v", c, cl.Type)
	}
}
