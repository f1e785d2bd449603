package toptree

import (
	"testing"

	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/tree"
)

// labelNodes builds a label mapping assigning names[i] to node i.
func labelNodes(names ...string) *labels.Labels {
	lab := labels.New()
	for _, n := range names {
		lab.Add(n)
	}
	return lab
}

// elevenNodeTree is the hard-coded test structure: root 0 with children
// 1, 2, 3; 1 with 4, 5; 3 with the chain 6 → 7 → 8; 4 with 9, 10. All
// nodes are labeled "chain" except the root.
func elevenNodeTree() (*tree.Tree, *labels.Labels) {
	t := tree.FromParents([]int{-1, 0, 0, 0, 1, 1, 3, 6, 7, 4, 4})
	lab := labelNodes("root", "chain", "chain", "chain", "chain", "chain",
		"chain", "chain", "chain", "chain", "chain")
	return t, lab
}

func TestConstructTwoLeaves(t *testing.T) {
	tr := tree.FromParents([]int{-1, 0, 0})
	lab := labelNodes("root", "a", "b")
	top := New(tr.NumNodes(), lab)

	var ratios []float64
	err := Construct(tr, top, Options{RatioFunc: func(r float64) { ratios = append(ratios, r) }})
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}

	// Three leaves plus two merges: the sibling pair, then the root chain.
	if got := top.NumClusters(); got != 5 {
		t.Fatalf("NumClusters() = %d, want 5", got)
	}
	if got := top.Clusters[3]; got.Left != 1 || got.Right != 2 || got.Type != tree.HorzNoBBN {
		t.Fatalf("cluster 3 = %+v, want merge of leaves 1, 2 with HorzNoBBN", got)
	}
	if got := top.Clusters[4]; got.Left != 0 || got.Right != 3 || got.Type != tree.VertNoBBN {
		t.Fatalf("cluster 4 = %+v, want merge of 0, 3 with VertNoBBN", got)
	}
	if len(ratios) != 1 || ratios[0] != 2 {
		t.Fatalf("ratios = %v, want [2]", ratios)
	}
	if tr.NumEdges() != 0 {
		t.Fatalf("tree has %d edges after construction, want 0", tr.NumEdges())
	}
}

func TestConstructChain(t *testing.T) {
	// r → c1 → c2 → c3 → c4, distinct labels. Chains halve every round.
	tr := tree.FromParents([]int{-1, 0, 1, 2, 3})
	lab := labelNodes("r", "c1", "c2", "c3", "c4")
	top := New(tr.NumNodes(), lab)

	var ratios []float64
	if err := Construct(tr, top, Options{RatioFunc: func(r float64) { ratios = append(ratios, r) }}); err != nil {
		t.Fatalf("Construct: %v", err)
	}

	// Four vertical merges over three rounds: (r,c1), (c2,c3), then
	// (r',c2'), then (r'',c4).
	if got := top.NumClusters(); got != 9 {
		t.Fatalf("NumClusters() = %d, want 9", got)
	}
	if len(ratios) != 3 {
		t.Fatalf("construction took %d rounds, want 3", len(ratios))
	}
	for _, c := range top.Clusters[5:] {
		if !c.Type.IsVertical() {
			t.Fatalf("chain produced a horizontal merge: %+v", c)
		}
	}
}

func TestConstructElevenNodeTree(t *testing.T) {
	tr, lab := elevenNodeTree()
	top := New(tr.NumNodes(), lab)

	if err := Construct(tr, top, Options{}); err != nil {
		t.Fatalf("Construct: %v", err)
	}
	// Every merge combines exactly two clusters into one, so a tree with
	// n nodes always yields 2n-1 clusters.
	if got := top.NumClusters(); got != 21 {
		t.Fatalf("NumClusters() = %d, want 21", got)
	}
	root := top.Clusters[top.Root()]
	if root.IsLeaf() || !root.Type.IsVertical() {
		t.Fatalf("root cluster = %+v, want a vertical merge", root)
	}
}

func TestConstructEdgeRatiosDecreaseEdges(t *testing.T) {
	tr, lab := elevenNodeTree()
	top := New(tr.NumNodes(), lab)

	var ratios []float64
	if err := Construct(tr, top, Options{RatioFunc: func(r float64) { ratios = append(ratios, r) }}); err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if len(ratios) == 0 {
		t.Fatal("no edge ratios reported")
	}
	for i, r := range ratios {
		if r < 1 {
			t.Errorf("round %d ratio = %g, want >= 1", i, r)
		}
	}
}

func TestConstructEmptyTree(t *testing.T) {
	if err := Construct(tree.New(0), NewEmpty(0), Options{}); err == nil {
		t.Fatal("Construct of empty tree succeeded, want error")
	}
}

func TestConstructRePairVariant(t *testing.T) {
	// A tree with many repeated (leaf, leaf) digrams under distinct
	// parents; the grouped pass must merge them and construction must
	// still terminate with a full cluster pool.
	parents := []int{-1}
	for i := 0; i < 8; i++ {
		// One child of the root with two leaves below it.
		p := len(parents)
		parents = append(parents, 0)
		parents = append(parents, p, p)
	}
	tr := tree.FromParents(parents)
	names := make([]string, len(parents))
	for i := range names {
		names[i] = "x"
	}
	names[0] = "root"
	lab := labelNodes(names...)

	top := New(tr.NumNodes(), lab)
	if err := Construct(tr, top, Options{RePair: true, MinRatio: 1.22}); err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if got, want := top.NumClusters(), 2*tr.NumNodes()-1; got != want {
		t.Fatalf("NumClusters() = %d, want %d", got, want)
	}
}
