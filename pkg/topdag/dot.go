package topdag

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/topdag/pkg/labels"
)

// ToDOT converts the DAG to Graphviz DOT format. Leaf nodes show their
// label (resolved through lab when non-nil), merged nodes show their
// merge type; shared nodes are visible as nodes with several incoming
// edges. Left children are drawn with solid edges, right children
// dashed.
func ToDOT(d *Dag, lab *labels.Labels) string {
	var buf bytes.Buffer
	buf.WriteString("digraph topdag {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n\n")

	for i, n := range d.Nodes {
		if i == 0 {
			continue
		}
		if n.IsLeaf() {
			name := fmt.Sprintf("label %d", n.Label)
			if lab != nil {
				name = lab.Name(n.Label)
			}
			fmt.Fprintf(&buf, "  n%d [label=%q, shape=ellipse];\n", i, name)
		} else {
			fmt.Fprintf(&buf, "  n%d [label=%q];\n", i, fmt.Sprintf("%d %s", i, n.Type))
		}
	}
	buf.WriteString("\n")
	for i, n := range d.Nodes {
		if i == 0 {
			continue
		}
		if n.Left > 0 {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", i, n.Left)
		}
		if n.Right > 0 {
			fmt.Fprintf(&buf, "  n%d -> n%d [style=dashed];\n", i, n.Right)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
