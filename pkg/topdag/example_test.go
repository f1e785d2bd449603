package topdag_test

import (
	"fmt"

	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/topdag"
	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

// Example compresses a small tree, then walks the result without
// decompressing it.
func Example() {
	// root with two children labeled a and b.
	t := tree.FromParents([]int{-1, 0, 0})
	lab := labels.New()
	lab.Add("root")
	lab.Add("a")
	lab.Add("b")

	top := toptree.New(t.NumNodes(), lab)
	if err := toptree.Construct(t, top, toptree.Options{}); err != nil {
		panic(err)
	}
	dag := topdag.NewDag(top.NumClusters())
	topdag.Build(top, dag)
	fmt.Printf("%d clusters became %d DAG nodes\n", top.NumClusters(), dag.NumNodes())

	nav := topdag.NewNavigator(dag)
	fmt.Println(lab.Name(nav.Label()))
	nav.FirstChild()
	fmt.Println(lab.Name(nav.Label()))
	nav.NextSibling()
	fmt.Println(lab.Name(nav.Label()))

	// Output:
	// 5 clusters became 5 DAG nodes
	// root
	// a
	// b
}
