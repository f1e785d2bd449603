package topdag

import (
	"slices"

	"github.com/matzehuels/topdag/pkg/tree"
)

// frame is one entry of the DAG stack: the node we moved to, the node we
// came from, and whether we entered through the parent's left child.
type frame struct {
	node     int
	parent   int
	fromLeft bool
}

// Navigator is a stateful cursor over the logical tree encoded by a DAG,
// supporting parent, first-child and next-sibling moves without
// unpacking anything.
//
// Two stacks drive it. The DAG stack is the active path from the DAG
// root down to the cluster whose expansion contains the current logical
// node; the current node is always the top of that stack. The tree stack
// holds one snapshot of the DAG stack per logical ancestor, so moving to
// the parent is a snapshot restore.
//
// Every move is O(h) in the height of the logical tree. Failed moves
// (no parent, no sibling, first child of a leaf) leave the position
// unchanged and return false; they are expected outcomes, not errors.
type Navigator struct {
	dag       *Dag
	dagStack  []frame
	treeStack [][]frame
}

// NewNavigator positions a cursor at the root of the logical tree: the
// DAG root is pushed, then left children are followed all the way down.
func NewNavigator(d *Dag) *Navigator {
	n := &Navigator{dag: d}
	parent := -1
	next := d.Root()
	for next > 0 {
		n.dagStack = append(n.dagStack, frame{next, parent, true})
		parent = next
		next = d.Nodes[parent].Left
	}
	return n
}

// Label returns the label id of the current logical node.
func (n *Navigator) Label() int {
	return n.dag.Nodes[n.dagStack[len(n.dagStack)-1].node].Label
}

// Parent moves to the current node's parent. It returns false at the
// tree root.
func (n *Navigator) Parent() bool {
	if len(n.treeStack) == 0 {
		return false
	}
	n.dagStack = n.treeStack[len(n.treeStack)-1]
	n.treeStack = n.treeStack[:len(n.treeStack)-1]
	return true
}

// IsLeaf reports whether the current logical node has no children. The
// DAG stack is inspected top-down; the first frame whose merge type
// pins the answer decides.
func (n *Navigator) IsLeaf() bool {
	for i := len(n.dagStack) - 1; i >= 0; i-- {
		rec := n.dagStack[i]
		if rec.parent < 0 {
			// Bottom of the stack: the current node sits on the bottom
			// boundary of the whole tree's cluster, which never has
			// children, or the tree is a single node.
			return true
		}
		mt := n.dag.Nodes[rec.parent].Type

		if (!rec.fromLeft && (mt == tree.VertNoBBN || mt == tree.HorzLeftBBN)) ||
			(rec.fromLeft && mt == tree.HorzRightBBN) ||
			mt == tree.HorzNoBBN ||
			(rec.node == n.dag.Root() && !rec.fromLeft) {
			return true
		}
		if rec.fromLeft && (mt == tree.VertWithBBN || mt == tree.VertNoBBN) {
			return false
		}
	}
	return true
}

// FirstChild moves to the current node's first child. It returns false
// if the node is a leaf.
func (n *Navigator) FirstChild() bool {
	if n.IsLeaf() {
		return false
	}
	n.treeStack = append(n.treeStack, slices.Clone(n.dagStack))

	// Pop until the frame whose enclosing vertical merge holds the
	// children; IsLeaf returning false guarantees it exists.
	for len(n.dagStack) > 0 {
		rec := n.dagStack[len(n.dagStack)-1]
		if rec.parent >= 0 {
			mt := n.dag.Nodes[rec.parent].Type
			if rec.fromLeft && (mt == tree.VertWithBBN || mt == tree.VertNoBBN) {
				break
			}
		}
		n.dagStack = n.dagStack[:len(n.dagStack)-1]
	}
	n.enterRight()
	return true
}

// NextSibling moves to the current node's next sibling, returning false
// if there is none. The scan runs on a copy of the stack so a failed
// move does not disturb the position.
func (n *Navigator) NextSibling() bool {
	cut := -1
	for i := len(n.dagStack) - 1; i >= 0; i-- {
		rec := n.dagStack[i]
		if rec.parent < 0 {
			return false
		}
		mt := n.dag.Nodes[rec.parent].Type
		if rec.fromLeft && mt.IsHorizontal() {
			cut = i
			break
		}
		if !rec.fromLeft && (mt == tree.VertWithBBN || mt == tree.VertNoBBN) {
			// Our cluster hangs below a boundary node; anything above it
			// is an ancestor, not a sibling.
			return false
		}
	}
	if cut < 0 {
		return false
	}
	n.dagStack = n.dagStack[:cut+1]
	n.enterRight()
	return true
}

// enterRight replaces the top frame with its parent's right child and
// descends along left children, as in initialization.
func (n *Navigator) enterRight() {
	top := n.dagStack[len(n.dagStack)-1]
	nodeID := top.parent
	next := n.dag.Nodes[nodeID].Right
	n.dagStack = n.dagStack[:len(n.dagStack)-1]
	n.dagStack = append(n.dagStack, frame{next, nodeID, false})

	for next > 0 {
		nodeID = next
		next = n.dag.Nodes[nodeID].Left
		if next <= 0 {
			break
		}
		n.dagStack = append(n.dagStack, frame{next, nodeID, true})
	}
}
