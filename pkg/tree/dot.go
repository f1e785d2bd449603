package tree

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/topdag/pkg/labels"
)

// ToDOT converts the tree to Graphviz DOT format. Nodes show their label
// and id; pass nil labels to show ids only. The output can be rendered
// with [RenderSVG] or any Graphviz tool.
func ToDOT(t *Tree, lab *labels.Labels) string {
	var buf bytes.Buffer
	buf.WriteString("digraph tree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	t.Preorder(func(v int) {
		label := fmt.Sprintf("%d", v)
		if lab != nil {
			label = fmt.Sprintf("%s\n%d", lab.Name(lab.LabelOf(v)), v)
		}
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", v, label)
	})
	buf.WriteString("\n")
	t.Preorder(func(v int) {
		for _, c := range t.Children(v) {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", v, c)
		}
	})

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
