package toptree

import (
	"time"

	"github.com/matzehuels/topdag/pkg/errors"
	"github.com/matzehuels/topdag/pkg/observability"
	"github.com/matzehuels/topdag/pkg/tree"
)

// DefaultMinRatio is the minimum per-round edge ratio the RePair-aware
// constructor tries to sustain before falling back to greedy merging.
const DefaultMinRatio = 1.22

// Options configures top tree construction.
type Options struct {
	// RePair selects the variant that groups sibling pairs by their
	// cluster fingerprints and prefers merging repeated pairs, which
	// tends to produce more sharing in the DAG.
	RePair bool

	// MinRatio is the per-round edge ratio below which the RePair
	// variant completes the round with ordinary greedy merges. Zero
	// means DefaultMinRatio. Ignored unless RePair is set.
	MinRatio float64

	// RatioFunc, when non-nil, receives the edge ratio of every round:
	// valid edges before the round divided by valid edges after it.
	RatioFunc func(float64)
}

// Construct reduces t to a single node, recording every merge as a
// cluster in top. The tree is consumed destructively. On return the last
// cluster of top is the root of the top tree.
//
// Each round runs a horizontal merge pass over all sibling lists, then a
// vertical merge pass over all unary chains, then compacts the edge
// array. Sibling pairs are processed left to right, so for a fixed input
// the sequence of emitted clusters is deterministic.
func Construct(t *tree.Tree, top *TopTree, opts Options) error {
	if t.NumNodes() == 0 {
		return errors.New(errors.ErrCodeInvalidTree, "cannot construct top tree of empty tree")
	}
	if top.NumLeaves < t.NumNodes() {
		return errors.New(errors.ErrCodeInvalidTree, "top tree has %d leaves for %d nodes", top.NumLeaves, t.NumNodes())
	}
	minRatio := opts.MinRatio
	if minRatio == 0 {
		minRatio = DefaultMinRatio
	}

	start := time.Now()
	observability.Compress().OnConstructStart(t.NumNodes(), t.NumEdges())

	// nodeIDs maps each surviving tree node to the cluster currently
	// representing it.
	nodeIDs := make([]int, t.NumNodes())
	for i := range nodeIDs {
		nodeIDs[i] = i
	}

	var hasher *Hasher
	if opts.RePair {
		hasher = NewHasher(top)
	}

	for round := 0; t.NumEdges() > 0; round++ {
		before := t.NumEdges()

		if opts.RePair {
			repairHorizontalPass(t, top, nodeIDs, hasher, minRatio)
		} else {
			horizontalPass(t, top, nodeIDs, nil)
		}
		verticalPass(t, top, nodeIDs, hasher)
		t.Compact()

		after := t.NumEdges()
		if after >= before {
			return errors.New(errors.ErrCodeInvariant, "round %d left %d edges (had %d)", round, after, before)
		}
		ratio := float64(before) / float64(max(after, 1))
		if opts.RatioFunc != nil {
			opts.RatioFunc(ratio)
		}
		observability.Compress().OnRound(round, before, after, ratio)
	}

	observability.Compress().OnConstructDone(top.NumClusters(), time.Since(start))
	return nil
}

// addCluster records a merge in the pool and keeps fingerprints current
// for the RePair variant.
func addCluster(top *TopTree, hasher *Hasher, left, right int, mt tree.MergeType) int {
	id := top.AddCluster(left, right, mt)
	if hasher != nil {
		hasher.Extend()
	}
	return id
}

// horizontalPass walks every sibling list left to right and merges
// adjacent pairs in which at least one side is a leaf. A pair of two
// internal siblings cannot be merged losslessly, so the walk slides past
// its left element instead; an odd trailing sibling stays unmerged.
func horizontalPass(t *tree.Tree, top *TopTree, nodeIDs []int, hasher *Hasher) {
	numNodes := t.NumNodes()
	for p := 0; p < numNodes; p++ {
		if t.Nodes[p].NumEdges < 2 {
			continue
		}
		first, count := t.Nodes[p].FirstEdge, t.Nodes[p].NumEdges
		prev := -1
		for i := 0; i < count; i++ {
			idx := first + i
			if !t.Edges[idx].Valid {
				continue
			}
			if prev < 0 {
				prev = idx
				continue
			}
			a, b := t.Edges[prev].Head, t.Edges[idx].Head
			if t.IsLeaf(a) || t.IsLeaf(b) {
				surv, mt := t.MergeSiblings(p, prev, idx)
				nodeIDs[surv] = addCluster(top, hasher, nodeIDs[a], nodeIDs[b], mt)
				prev = -1
			} else {
				prev = idx
			}
		}
	}
}

// verticalPass merges every node that has exactly one child with that
// child. Nodes whose sibling count dropped to one during this round's
// horizontal pass are eligible; nodes merged away are skipped because
// their edge runs are empty.
func verticalPass(t *tree.Tree, top *TopTree, nodeIDs []int, hasher *Hasher) {
	numNodes := t.NumNodes()
	for v := 0; v < numNodes; v++ {
		if t.Nodes[v].NumEdges != 1 {
			continue
		}
		c, mt := t.MergeChain(v)
		nodeIDs[v] = addCluster(top, hasher, nodeIDs[v], nodeIDs[c], mt)
	}
}
