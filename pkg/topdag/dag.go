// Package topdag implements the shared, compressed form of a top tree:
// the binary DAG obtained by hash-consing structurally identical cluster
// subtrees, the unpacker that expands it back, and a navigator that
// walks the logical tree directly on the DAG.
//
// DAG nodes are dense integers. Index 0 is a sentinel whose children are
// the illegal pair (-2, -2); a child reference of 0 means "absent", so
// leaves are nodes with both children 0. The builder appends nodes in
// post-order, which guarantees that both children of every node have
// smaller ids.
package topdag

import (
	"fmt"

	"github.com/matzehuels/topdag/pkg/tree"
)

// Node is one DAG node. Exactly the leaf nodes carry a label; merged
// nodes carry the merge type instead.
type Node struct {
	Left     int            // left child id, 0 if absent
	Right    int            // right child id, 0 if absent
	Label    int            // label id for leaves, -1 otherwise
	Type     tree.MergeType // MergeNone for leaves
	InDegree int            // number of non-sentinel references to this node
}

// IsLeaf reports whether the node wraps a single labeled tree node.
func (n Node) IsLeaf() bool { return n.Left == 0 && n.Right == 0 }

// Dag is the pool of DAG nodes. Create with [NewDag]; the sentinel is
// always present at index 0. Nodes are appended through [Dag.AddNode],
// by [Build] or when an archive is decoded; the pool is read-only
// afterwards.
type Dag struct {
	Nodes []Node
}

// NewDag creates a DAG holding only the sentinel, with capacity hints
// for n real nodes.
func NewDag(n int) *Dag {
	d := &Dag{Nodes: make([]Node, 0, n+1)}
	d.Nodes = append(d.Nodes, Node{Left: -2, Right: -2, Label: -1, Type: tree.MergeNone})
	return d
}

// AddNode appends a node and bumps the in-degree of both non-sentinel
// children. The in-degree is maintained here, at insertion, and never
// recomputed; hash-cons hits must not call AddNode.
func (d *Dag) AddNode(left, right, label int, mt tree.MergeType) int {
	d.Nodes = append(d.Nodes, Node{Left: left, Right: right, Label: label, Type: mt})
	if left > 0 {
		d.Nodes[left].InDegree++
	}
	if right > 0 {
		d.Nodes[right].InDegree++
	}
	return len(d.Nodes) - 1
}

// Root returns the id of the last appended node, the DAG root.
func (d *Dag) Root() int { return len(d.Nodes) - 1 }

// NumNodes returns the number of nodes excluding the sentinel.
func (d *Dag) NumNodes() int { return len(d.Nodes) - 1 }

// CountEdges returns the number of child references over all
// non-sentinel nodes. Absent children and the sentinel itself are not
// counted.
func (d *Dag) CountEdges() int {
	edges := 0
	for _, n := range d.Nodes[1:] {
		if n.Left > 0 {
			edges++
		}
		if n.Right > 0 {
			edges++
		}
	}
	return edges
}

// String summarizes the pool and its nodes, for debugging small DAGs.
func (d *Dag) String() string {
	s := fmt.Sprintf("binary DAG with %d nodes", d.NumNodes())
	for i, n := range d.Nodes {
		if i == 0 {
			continue
		}
		if n.IsLeaf() {
			s += fmt.Sprintf("; %d=leaf(label %d, in %d)", i, n.Label, n.InDegree)
		} else {
			s += fmt.Sprintf("; %d=(%d,%d,%v, in %d)", i, n.Left, n.Right, n.Type, n.InDegree)
		}
	}
	return s
}
