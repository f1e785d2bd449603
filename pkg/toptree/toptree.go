// Package toptree implements the top tree side of the compression
// pipeline: the append-only cluster pool, the iterative constructor that
// reduces an ordered tree to a single cluster, and the unpacker that
// reverses the construction.
//
// A cluster is either a leaf wrapping one original tree node or the
// merge of two earlier clusters, annotated with a [tree.MergeType]. The
// pool is append-only and densely indexed; the last appended cluster is
// the root. Leaves are allocated up front, one per tree node, so leaf
// cluster ids coincide with node ids for constructor-built top trees.
package toptree

import (
	"fmt"

	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/tree"
)

// Cluster is one node of the top tree.
type Cluster struct {
	Left  int            // left child cluster, -1 for leaves
	Right int            // right child cluster, -1 for leaves
	Type  tree.MergeType // how Left and Right were combined; MergeNone for leaves
	Label int            // label id for leaves, -1 for merged clusters
}

// IsLeaf reports whether the cluster wraps a single original tree node.
func (c Cluster) IsLeaf() bool { return c.Left < 0 }

// TopTree is an append-only pool of clusters.
type TopTree struct {
	Clusters  []Cluster
	NumLeaves int
}

// New creates a top tree with one leaf cluster per node of the tree the
// labels were built for, so that leaf ids equal node ids.
func New(numNodes int, lab *labels.Labels) *TopTree {
	t := &TopTree{Clusters: make([]Cluster, 0, 2*numNodes)}
	for i := 0; i < numNodes; i++ {
		t.AddLeaf(lab.LabelOf(i))
	}
	return t
}

// NewEmpty creates a top tree with no clusters, for unpackers that emit
// their own leaves.
func NewEmpty(capacity int) *TopTree {
	return &TopTree{Clusters: make([]Cluster, 0, capacity)}
}

// AddLeaf appends a leaf cluster carrying the given label id.
func (t *TopTree) AddLeaf(label int) int {
	t.Clusters = append(t.Clusters, Cluster{Left: -1, Right: -1, Type: tree.MergeNone, Label: label})
	t.NumLeaves++
	return len(t.Clusters) - 1
}

// AddCluster appends the merge of two existing clusters and returns its
// id.
func (t *TopTree) AddCluster(left, right int, mt tree.MergeType) int {
	if left < 0 || left >= len(t.Clusters) || right < 0 || right >= len(t.Clusters) {
		panic(fmt.Sprintf("toptree: merge of unknown clusters %d, %d", left, right))
	}
	t.Clusters = append(t.Clusters, Cluster{Left: left, Right: right, Type: mt, Label: -1})
	return len(t.Clusters) - 1
}

// Root returns the id of the last appended cluster, the root of the top
// tree.
func (t *TopTree) Root() int { return len(t.Clusters) - 1 }

// NumClusters returns the total number of clusters, leaves included.
func (t *TopTree) NumClusters() int { return len(t.Clusters) }

// Equal reports whether two top trees encode the same cluster structure:
// equal labels at the leaves and matching merge types and child order
// everywhere else. Cluster ids do not have to match.
func (t *TopTree) Equal(o *TopTree) bool {
	if len(t.Clusters) == 0 || len(o.Clusters) == 0 {
		return len(t.Clusters) == len(o.Clusters)
	}
	return t.equalAt(o, t.Root(), o.Root())
}

func (t *TopTree) equalAt(o *TopTree, a, b int) bool {
	ca, cb := t.Clusters[a], o.Clusters[b]
	if ca.IsLeaf() != cb.IsLeaf() {
		return false
	}
	if ca.IsLeaf() {
		return ca.Label == cb.Label
	}
	return ca.Type == cb.Type &&
		t.equalAt(o, ca.Left, cb.Left) &&
		t.equalAt(o, ca.Right, cb.Right)
}

// Height returns the maximum leaf depth of the cluster tree.
func (t *TopTree) Height() int {
	h, _, _ := t.leafDepths()
	return h
}

// MinDepth returns the minimum leaf depth of the cluster tree.
func (t *TopTree) MinDepth() int {
	_, m, _ := t.leafDepths()
	return m
}

// AvgDepth returns the mean leaf depth of the cluster tree. Shallow,
// balanced cluster trees make navigation cheap, so these numbers are
// worth reporting next to compression ratios.
func (t *TopTree) AvgDepth() float64 {
	_, _, avg := t.leafDepths()
	return avg
}

func (t *TopTree) leafDepths() (height, minDepth int, avg float64) {
	if len(t.Clusters) == 0 {
		return 0, 0, 0
	}
	type item struct{ cluster, depth int }
	var sum, count int
	minDepth = -1
	stack := []item{{t.Root(), 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := t.Clusters[it.cluster]
		if c.IsLeaf() {
			sum += it.depth
			count++
			if it.depth > height {
				height = it.depth
			}
			if minDepth < 0 || it.depth < minDepth {
				minDepth = it.depth
			}
			continue
		}
		stack = append(stack, item{c.Left, it.depth + 1}, item{c.Right, it.depth + 1})
	}
	if minDepth < 0 {
		minDepth = 0
	}
	return height, minDepth, float64(sum) / float64(count)
}

// String summarizes the pool for debug output.
func (t *TopTree) String() string {
	return fmt.Sprintf("top tree with %d clusters (%d leaves)", len(t.Clusters), t.NumLeaves)
}
