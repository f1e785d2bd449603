package toptree

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/topdag/pkg/tree"
)

// Hasher maintains a structural fingerprint per cluster: leaves hash
// their label id, merged clusters combine the merge type with both child
// fingerprints. Two clusters with equal fingerprints are, up to hash
// collisions, structurally identical, which is what the RePair-aware
// constructor groups sibling pairs by.
type Hasher struct {
	top *TopTree
	fps []uint64
}

// NewHasher fingerprints all existing clusters of top and tracks new
// ones via [Hasher.Extend].
func NewHasher(top *TopTree) *Hasher {
	h := &Hasher{top: top}
	h.Extend()
	return h
}

// Extend fingerprints clusters appended since the last call.
func (h *Hasher) Extend() {
	for i := len(h.fps); i < len(h.top.Clusters); i++ {
		c := h.top.Clusters[i]
		if c.IsLeaf() {
			h.fps = append(h.fps, combine(uint64(c.Label)))
		} else {
			h.fps = append(h.fps, combine(uint64(c.Type)+1, h.fps[c.Left], h.fps[c.Right]))
		}
	}
}

// Fingerprint returns the fingerprint of a cluster id.
func (h *Hasher) Fingerprint(cluster int) uint64 { return h.fps[cluster] }

func combine(vals ...uint64) uint64 {
	var buf [8]byte
	d := xxhash.New()
	for _, v := range vals {
		binary.LittleEndian.PutUint64(buf[:], v)
		d.Write(buf[:])
	}
	return d.Sum64()
}

// pairKey identifies a group of structurally identical sibling pairs.
type pairKey struct {
	left, right uint64
}

// repairHorizontalPass performs the grouped variant of the horizontal
// pass. Candidate pairs are collected exactly as the greedy pass would
// merge them, then grouped by the fingerprints of both sides. Only
// groups that occur at least twice are merged; repeated digrams are what
// the DAG can share. If the selective merges alone would leave the round
// below minRatio, the pass falls back to greedy merging for the
// remaining pairs.
func repairHorizontalPass(t *tree.Tree, top *TopTree, nodeIDs []int, hasher *Hasher, minRatio float64) {
	type candidate struct {
		parent, leftIdx, rightIdx int
		key                       pairKey
	}
	var candidates []candidate
	counts := make(map[pairKey]int)

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
				key := pairKey{hasher.Fingerprint(nodeIDs[a]), hasher.Fingerprint(nodeIDs[b])}
				candidates = append(candidates, candidate{p, prev, idx, key})
				counts[key]++
				prev = -1
			} else {
				prev = idx
			}
		}
	}

	before := t.NumEdges()
	merged := 0
	for _, cand := range candidates {
		if counts[cand.key] < 2 {
			continue
		}
		a, b := t.Edges[cand.leftIdx].Head, t.Edges[cand.rightIdx].Head
		surv, mt := t.MergeSiblings(cand.parent, cand.leftIdx, cand.rightIdx)
		nodeIDs[surv] = addCluster(top, hasher, nodeIDs[a], nodeIDs[b], mt)
		merged++
	}

	// Every horizontal merge removes exactly one valid edge. A round
	// must always make progress, so an empty selective pass also falls
	// back.
	if merged == 0 || float64(before)/float64(max(before-merged, 1)) < minRatio {
		horizontalPass(t, top, nodeIDs, hasher)
	}
}
