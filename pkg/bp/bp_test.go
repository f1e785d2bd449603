package bp

import (
	"reflect"
	"testing"

	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/tree"
)

func buildLabeled(parents []int, names ...string) (*tree.Tree, *labels.Labels) {
	t := tree.FromParents(parents)
	lab := labels.New()
	for _, n := range names {
		lab.Add(n)
	}
	return t, lab
}

func TestFromTreeStructure(t *testing.T) {
	tr, lab := buildLabeled([]int{-1, 0, 0}, "root", "a", "b")
	structure, _ := FromTree(tr, lab)
	want := []bool{true, true, false, true, false, false} // ( ( ) ( ) )
	if !reflect.DeepEqual(structure, want) {
		t.Fatalf("structure = %v, want %v", structure, want)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		parents []int
		names   []string
	}{
		{"SingleNode", []int{-1}, []string{"only"}},
		{"TwoLeaves", []int{-1, 0, 0}, []string{"root", "a", "b"}},
		{"Chain", []int{-1, 0, 1, 2}, []string{"r", "x", "y", "z"}},
		{"Mixed", []int{-1, 0, 0, 1, 1, 2}, []string{"r", "a", "b", "c", "d", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, lab := buildLabeled(tt.parents, tt.names...)
			structure, labelBytes := FromTree(tr, lab)

			got, gotLab, err := ToTree(structure, labelBytes)
			if err != nil {
				t.Fatalf("ToTree: %v", err)
			}
			if got.NumNodes() != tr.NumNodes() {
				t.Fatalf("NumNodes() = %d, want %d", got.NumNodes(), tr.NumNodes())
			}
			var gotSeq, wantSeq []string
			tr.Preorder(func(v int) { wantSeq = append(wantSeq, lab.Name(lab.LabelOf(v))) })
			got.Preorder(func(v int) { gotSeq = append(gotSeq, gotLab.Name(gotLab.LabelOf(v))) })
			if !reflect.DeepEqual(gotSeq, wantSeq) {
				t.Fatalf("labels = %v, want %v", gotSeq, wantSeq)
			}
		})
	}
}

func TestToTreeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name      string
		structure []bool
	}{
		{"Empty", nil},
		{"Unbalanced", []bool{true, true, false}},
		{"ClosesTooEarly", []bool{false}},
		{"Forest", []bool{true, false, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ToTree(tt.structure, []byte{0, 0, 0, 0}); err == nil {
				t.Fatal("ToTree succeeded, want error")
			}
		})
	}
}

func TestEstimateBits(t *testing.T) {
	tr, lab := buildLabeled([]int{-1, 0, 0}, "r", "a", "a")
	bits := EstimateBits(tr, lab)
	// 2 bits per node, at least one bit per labeled node, plus the
	// name table.
	if minimum := int64(2*3 + 3); bits < minimum {
		t.Fatalf("EstimateBits = %d, want >= %d", bits, minimum)
	}
}
