package tree

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestRandomDeterminism(t *testing.T) {
	a := Random(rand.New(rand.NewSource(12345678)), 100)
	b := Random(rand.New(rand.NewSource(12345678)), 100)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different trees")
	}
	c := Random(rand.New(rand.NewSource(87654321)), 100)
	if reflect.DeepEqual(a, c) {
		t.Fatal("different seeds produced identical trees")
	}
}

func TestRandomShape(t *testing.T) {
	for _, size := range []int{0, 1, 2, 10, 1000} {
		tr := Random(rand.New(rand.NewSource(1)), size)
		if got := tr.NumNodes(); got != size+1 {
			t.Errorf("size %d: NumNodes() = %d, want %d", size, got, size+1)
		}
		if got := tr.NumEdges(); got != size {
			t.Errorf("size %d: NumEdges() = %d, want %d", size, got, size)
		}
		// Every non-root node must have a parent with a smaller id
		// (pre-order numbering).
		for v := 1; v < tr.NumNodes(); v++ {
			p := tr.Nodes[v].Parent
			if p < 0 || p >= v {
				t.Fatalf("size %d: node %d has parent %d", size, v, p)
			}
		}
		// Pre-order over the tree must visit every node exactly once.
		seen := make(map[int]bool)
		tr.Preorder(func(v int) { seen[v] = true })
		if len(seen) != tr.NumNodes() {
			t.Fatalf("size %d: pre-order visited %d of %d nodes", size, len(seen), tr.NumNodes())
		}
	}
}

func TestRandomLabels(t *testing.T) {
	lab := RandomLabels(rand.New(rand.NewSource(7)), 500, 3)
	if got := lab.NumNodes(); got != 500 {
		t.Fatalf("NumNodes() = %d, want 500", got)
	}
	if got := lab.NumLabels(); got < 1 || got > 3 {
		t.Fatalf("NumLabels() = %d, want 1..3", got)
	}
	for i := 0; i < 500; i++ {
		if id := lab.LabelOf(i); id < 0 || id >= lab.NumLabels() {
			t.Fatalf("LabelOf(%d) = %d out of range", i, id)
		}
	}
}
