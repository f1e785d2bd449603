package topdag

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

// dfsLabels drives the navigator through a full depth-first traversal
// and returns the label names in visit order.
func dfsLabels(t *testing.T, d *Dag, lab *labels.Labels) []string {
	t.Helper()
	nav := NewNavigator(d)
	var out []string
	var walk func(depth int)
	walk = func(depth int) {
		if depth > d.NumNodes()+1 {
			t.Fatal("navigator descended deeper than the tree can be")
		}
		out = append(out, lab.Name(nav.Label()))
		if nav.FirstChild() {
			for {
				walk(depth + 1)
				if !nav.NextSibling() {
					break
				}
			}
			if !nav.Parent() {
				t.Fatal("Parent failed after descending")
			}
		}
	}
	walk(0)
	return out
}

// preorderLabels walks an ordered tree and returns label names in
// pre-order.
func preorderLabels(tr *tree.Tree, lab *labels.Labels) []string {
	var out []string
	tr.Preorder(func(v int) { out = append(out, lab.Name(lab.LabelOf(v))) })
	return out
}

func TestNavigatorTwoLeaves(t *testing.T) {
	lab := labelNodes("root", "a", "b")
	top := construct(t, []int{-1, 0, 0}, lab, toptree.Options{})
	d := NewDag(top.NumClusters())
	Build(top, d)

	nav := NewNavigator(d)
	if got := lab.Name(nav.Label()); got != "root" {
		t.Fatalf("initial label = %q, want root", got)
	}
	if nav.IsLeaf() {
		t.Fatal("root reported as leaf")
	}
	if !nav.FirstChild() {
		t.Fatal("FirstChild failed at root")
	}
	if got := lab.Name(nav.Label()); got != "a" {
		t.Fatalf("first child = %q, want a", got)
	}
	if !nav.IsLeaf() {
		t.Fatal("leaf a not reported as leaf")
	}
	if nav.FirstChild() {
		t.Fatal("FirstChild succeeded on a leaf")
	}
	if !nav.NextSibling() {
		t.Fatal("NextSibling failed from a")
	}
	if got := lab.Name(nav.Label()); got != "b" {
		t.Fatalf("next sibling = %q, want b", got)
	}
	if nav.NextSibling() {
		t.Fatal("NextSibling succeeded past the last child")
	}
	if !nav.Parent() {
		t.Fatal("Parent failed from b")
	}
	if got := lab.Name(nav.Label()); got != "root" {
		t.Fatalf("after Parent = %q, want root", got)
	}
	if nav.Parent() {
		t.Fatal("Parent succeeded at the root")
	}
}

func TestNavigatorSingleNode(t *testing.T) {
	lab := labelNodes("only")
	top := construct(t, []int{-1}, lab, toptree.Options{})
	d := NewDag(top.NumClusters())
	Build(top, d)

	nav := NewNavigator(d)
	if got := lab.Name(nav.Label()); got != "only" {
		t.Fatalf("label = %q, want only", got)
	}
	if !nav.IsLeaf() {
		t.Fatal("single node not reported as leaf")
	}
	if nav.FirstChild() || nav.NextSibling() || nav.Parent() {
		t.Fatal("moves succeeded on a single-node tree")
	}
}

func TestNavigatorDFSElevenNodes(t *testing.T) {
	lab := elevenNodeLabels()
	tr := tree.FromParents(elevenNodeParents)
	want := preorderLabels(tr, lab)

	top := construct(t, elevenNodeParents, lab, toptree.Options{})
	d := NewDag(top.NumClusters())
	Build(top, d)

	got := dfsLabels(t, d, lab)
	if len(got) != 11 {
		t.Fatalf("visited %d nodes, want 11", len(got))
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DFS labels = %v, want %v", got, want)
	}
}

func TestNavigatorDFSRandom(t *testing.T) {
	for _, seed := range []int64{5, 21, 12345678} {
		rng := rand.New(rand.NewSource(seed))
		tr := tree.Random(rng, 200)
		lab := tree.RandomLabels(rng, tr.NumNodes(), 2)
		want := preorderLabels(tr, lab)

		top := toptree.New(tr.NumNodes(), lab)
		if err := toptree.Construct(tr, top, toptree.Options{}); err != nil {
			t.Fatalf("Construct: %v", err)
		}
		d := NewDag(top.NumClusters())
		Build(top, d)

		got := dfsLabels(t, d, lab)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("seed %d: DFS does not match pre-order", seed)
		}
	}
}
