package topdag

import (
	"math/rand"
	"testing"

	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

func TestUnpackRestoresTopTree(t *testing.T) {
	tests := []struct {
		name    string
		parents []int
		names   func(n int) []string
	}{
		{
			name:    "TwoLeaves",
			parents: []int{-1, 0, 0},
			names: func(n int) []string {
				return []string{"root", "a", "b"}
			},
		},
		{
			name:    "ElevenNodes",
			parents: elevenNodeParents,
			names: func(n int) []string {
				names := make([]string, n)
				names[0] = "root"
				for i := 1; i < n; i++ {
					names[i] = "chain"
				}
				return names
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := construct(t, tt.parents, labelNodes(tt.names(len(tt.parents))...), toptree.Options{})
			d := NewDag(top.NumClusters())
			Build(top, d)

			recovered, err := Unpack(d)
			if err != nil {
				t.Fatalf("Unpack: %v", err)
			}
			if !top.Equal(recovered) {
				t.Fatal("unpacked top tree is not equal to the original")
			}
			if got, want := recovered.NumClusters(), top.NumClusters(); got != want {
				t.Fatalf("recovered %d clusters, want %d", got, want)
			}
		})
	}
}

func TestUnpackRestoresTopTreeRandom(t *testing.T) {
	for _, seed := range []int64{7, 12345678} {
		rng := rand.New(rand.NewSource(seed))
		tr := tree.Random(rng, 300)
		lab := tree.RandomLabels(rng, tr.NumNodes(), 3)
		top := toptree.New(tr.NumNodes(), lab)
		if err := toptree.Construct(tr, top, toptree.Options{}); err != nil {
			t.Fatalf("Construct: %v", err)
		}
		d := NewDag(top.NumClusters())
		Build(top, d)

		recovered, err := Unpack(d)
		if err != nil {
			t.Fatalf("Unpack: %v", err)
		}
		if !top.Equal(recovered) {
			t.Fatalf("seed %d: unpacked top tree differs", seed)
		}
	}
}

func TestUnpackEmptyDag(t *testing.T) {
	if _, err := Unpack(NewDag(0)); err == nil {
		t.Fatal("Unpack of sentinel-only DAG succeeded, want error")
	}
}
