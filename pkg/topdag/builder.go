package topdag

import (
	"time"

	"github.com/matzehuels/topdag/pkg/observability"
	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

// key is the canonical identity of a DAG node. Two clusters map to the
// same DAG node exactly when their keys coincide.
type key struct {
	left, right int
	mt          tree.MergeType
	label       int
}

// Build folds a top tree into its minimal DAG by a post-order traversal
// from the root cluster with hash-consing, and returns the id of the DAG
// root. Post-order guarantees that both children of every node are
// allocated, and thus numbered, before the node itself, so ids are
// reproducible for a fixed top tree.
//
// The resulting DAG has no two structurally equal nodes; its size is the
// number of distinct cluster subtrees of the top tree.
func Build(top *toptree.TopTree, d *Dag) int {
	start := time.Now()
	b := builder{top: top, dag: d, seen: make(map[key]int)}
	root := b.dagOf(top.Root())
	observability.Compress().OnDagDone(d.NumNodes(), d.CountEdges(), time.Since(start))
	return root
}

type builder struct {
	top  *toptree.TopTree
	dag  *Dag
	seen map[key]int
}

func (b *builder) dagOf(c int) int {
	cl := b.top.Clusters[c]
	if cl.IsLeaf() {
		return b.intern(key{0, 0, tree.MergeNone, cl.Label})
	}
	left := b.dagOf(cl.Left)
	right := b.dagOf(cl.Right)
	return b.intern(key{left, right, cl.Type, -1})
}

// intern returns the existing DAG node for k or appends a new one. The
// in-degree of the children is bumped only when a node is actually
// inserted; a hash-cons hit adds no reference.
func (b *builder) intern(k key) int {
	if id, ok := b.seen[k]; ok {
		return id
	}
	id := b.dag.AddNode(k.left, k.right, k.label, k.mt)
	b.seen[k] = id
	return id
}
