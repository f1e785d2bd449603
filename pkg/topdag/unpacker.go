package topdag

import (
	"github.com/matzehuels/topdag/pkg/errors"
	"github.com/matzehuels/topdag/pkg/toptree"
)

// Unpack expands the DAG into a fresh top tree, inverting [Build].
// Because DAG nodes are shared, a node reached along k distinct paths
// from the root expands into k distinct clusters, one per occurrence; the
// result is a plain tree with no sharing. Clusters are emitted post-order, children before parents,
// so the last emitted cluster is the root.
func Unpack(d *Dag) (*toptree.TopTree, error) {
	if d.NumNodes() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTree, "cannot unpack empty DAG")
	}
	top := toptree.NewEmpty(2 * d.NumNodes())
	u := dagUnpacker{dag: d, top: top}
	if _, err := u.expand(d.Root()); err != nil {
		return nil, err
	}
	return top, nil
}

type dagUnpacker struct {
	dag *Dag
	top *toptree.TopTree
}

func (u *dagUnpacker) expand(id int) (int, error) {
	if id <= 0 || id >= len(u.dag.Nodes) {
		return 0, errors.New(errors.ErrCodeInvariant, "DAG reference %d out of range", id)
	}
	n := u.dag.Nodes[id]
	if n.IsLeaf() {
		return u.top.AddLeaf(n.Label), nil
	}
	if n.Left <= 0 || n.Right <= 0 {
		return 0, errors.New(errors.ErrCodeInvariant, "DAG node %d has a single child", id)
	}
	left, err := u.expand(n.Left)
	if err != nil {
		return 0, err
	}
	right, err := u.expand(n.Right)
	if err != nil {
		return 0, err
	}
	return u.top.AddCluster(left, right, n.Type), nil
}
