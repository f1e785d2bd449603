package topdag

import (
	"math/rand"
	"testing"

	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

// TestPipelineRoundTrip drives the full pipeline: ordered tree → top
// tree → DAG → top tree → ordered tree, and verifies the result is
// isomorphic to the input with identical pre-order labels.
func TestPipelineRoundTrip(t *testing.T) {
	for _, seed := range []int64{1, 42, 12345678} {
		for _, size := range []int{1, 10, 100, 1000} {
			for _, rePair := range []bool{false, true} {
				rng := rand.New(rand.NewSource(seed))
				orig := tree.Random(rng, size)
				lab := tree.RandomLabels(rng, orig.NumNodes(), 2)
				want := preorderLabels(orig, lab)
				wantParents := parentShape(orig)

				top := toptree.New(orig.NumNodes(), lab)
				if err := toptree.Construct(orig, top, toptree.Options{RePair: rePair}); err != nil {
					t.Fatalf("Construct: %v", err)
				}
				d := NewDag(top.NumClusters())
				Build(top, d)

				recoveredTop, err := Unpack(d)
				if err != nil {
					t.Fatalf("Unpack: %v", err)
				}
				got, gotLab, err := toptree.Unpack(recoveredTop, lab)
				if err != nil {
					t.Fatalf("toptree.Unpack: %v", err)
				}

				if gotSeq := preorderLabels(got, gotLab); !equalStrings(gotSeq, want) {
					t.Errorf("seed %d size %d repair %t: label sequence differs", seed, size, rePair)
				}
				if gotParents := parentShape(got); !equalInts(gotParents, wantParents) {
					t.Errorf("seed %d size %d repair %t: tree shape differs", seed, size, rePair)
				}
			}
		}
	}
}

// parentShape canonicalizes a tree's structure as the parent of each
// node in pre-order visit rank.
func parentShape(tr *tree.Tree) []int {
	rank := make(map[int]int, tr.NumNodes())
	order := 0
	tr.Preorder(func(v int) {
		rank[v] = order
		order++
	})
	shape := make([]int, 0, tr.NumNodes())
	tr.Preorder(func(v int) {
		p := tr.Nodes[v].Parent
		if p < 0 {
			shape = append(shape, -1)
		} else {
			shape = append(shape, rank[p])
		}
	})
	return shape
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestPipelineAverageEdgeRatio checks the reduction guarantee on a
// sizeable random input: every round shrinks the tree, and the mean
// reduction clears the default RePair threshold.
func TestPipelineAverageEdgeRatio(t *testing.T) {
	rng := rand.New(rand.NewSource(12345678))
	tr := tree.Random(rng, 999)
	lab := tree.RandomLabels(rng, tr.NumNodes(), 2)

	var sum float64
	var count int
	top := toptree.New(tr.NumNodes(), lab)
	err := toptree.Construct(tr, top, toptree.Options{RatioFunc: func(r float64) {
		sum += r
		count++
	}})
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if count == 0 {
		t.Fatal("no rounds reported")
	}
	if avg := sum / float64(count); avg < 1.22 {
		t.Fatalf("average edge ratio = %g, want >= 1.22", avg)
	}
}

// TestPipelineDeterminism builds the same input twice and requires
// byte-identical DAGs.
func TestPipelineDeterminism(t *testing.T) {
	run := func() *Dag {
		rng := rand.New(rand.NewSource(4242))
		tr := tree.Random(rng, 300)
		lab := tree.RandomLabels(rng, tr.NumNodes(), 3)
		top := toptree.New(tr.NumNodes(), lab)
		if err := toptree.Construct(tr, top, toptree.Options{}); err != nil {
			t.Fatalf("Construct: %v", err)
		}
		d := NewDag(top.NumClusters())
		Build(top, d)
		return d
	}
	a, b := run(), run()
	if len(a.Nodes) != len(b.Nodes) {
		t.Fatalf("node counts differ: %d vs %d", len(a.Nodes), len(b.Nodes))
	}
	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			t.Fatalf("node %d differs: %+v vs %+v", i, a.Nodes[i], b.Nodes[i])
		}
	}
}
