package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/topdag"
	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

// randomOpts holds the command-line flags for the random command.
type randomOpts struct {
	size      int    // tree size in edges
	numLabels int    // label alphabet size
	seed      int64  // RNG seed
	output    string // XML output path
	dumpDOT   bool   // dump DOT graphs for small trees
	construct bool   // also construct the Top DAG
}

func newRandomCmd() *cobra.Command {
	opts := randomOpts{size: 10, numLabels: 2, seed: 12345678}

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate a random labeled tree, optionally compress it",
		Long: `Generate a uniformly random ordered tree with random labels.

The tree can be written as XML, dumped as a DOT graph, or pushed through
Top DAG construction to inspect how well random structures compress.
The same seed always yields the same tree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRandom(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.size, "size", "n", opts.size, "tree size in edges")
	cmd.Flags().IntVarP(&opts.numLabels, "labels", "l", opts.numLabels, "number of distinct labels")
	cmd.Flags().Int64VarP(&opts.seed, "seed", "s", opts.seed, "random seed")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "XML output path")
	cmd.Flags().BoolVarP(&opts.dumpDOT, "dot", "d", false, "dump DOT graphs if the tree is small enough")
	cmd.Flags().BoolVarP(&opts.construct, "construct", "c", false, "construct the Top DAG")

	return cmd
}

func runRandom(ctx context.Context, opts randomOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	rng := rand.New(rand.NewSource(opts.seed))
	t := tree.Random(rng, opts.size)
	lab := tree.RandomLabels(rng, t.NumNodes(), opts.numLabels)
	prog.done(fmt.Sprintf("Generated %s", t.Summary()))

	if opts.output != "" {
		if err := tree.WriteXMLFile(opts.output, t, lab); err != nil {
			return err
		}
		logger.Infof("wrote %s", opts.output)
	}

	if opts.dumpDOT && opts.size <= 10000 {
		if err := os.WriteFile("tree.dot", []byte(tree.ToDOT(t, lab)), 0644); err != nil {
			return err
		}
		logger.Infof("wrote tree.dot")
		if opts.size <= 1000 {
			svg, err := tree.RenderSVG(ctx, tree.ToDOT(t, lab))
			if err != nil {
				return err
			}
			if err := os.WriteFile("tree.svg", svg, 0644); err != nil {
				return err
			}
			logger.Infof("wrote tree.svg")
		}
	}

	if !opts.construct {
		return nil
	}

	treeEdges := t.NumEdges()
	top := toptree.New(t.NumNodes(), lab)
	prog = newProgress(logger)
	if err := toptree.Construct(t, top, toptree.Options{}); err != nil {
		return err
	}
	dag := topdag.NewDag(top.NumClusters())
	topdag.Build(top, dag)
	prog.done("Constructed Top DAG")

	edges := dag.CountEdges()
	pct := float64(edges) * 100 / float64(max(treeEdges, 1))
	fmt.Println(renderSummary("Top DAG", []summaryRow{
		{"nodes", fmt.Sprintf("%d", dag.NumNodes())},
		{"edges", fmt.Sprintf("%d (%.1f%% of original tree)", edges, pct)},
	}))

	if opts.dumpDOT && opts.size <= 10000 {
		if err := dumpDagDOT(ctx, dag, lab, opts.size <= 1000, logger); err != nil {
			return err
		}
	}
	return nil
}

func dumpDagDOT(ctx context.Context, dag *topdag.Dag, lab *labels.Labels, renderSvg bool, logger interface{ Infof(string, ...any) }) error {
	dot := topdag.ToDOT(dag, lab)
	if err := os.WriteFile("topdag.dot", []byte(dot), 0644); err != nil {
		return err
	}
	logger.Infof("wrote topdag.dot")
	if renderSvg {
		svg, err := topdag.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		if err := os.WriteFile("topdag.svg", svg, 0644); err != nil {
			return err
		}
		logger.Infof("wrote topdag.svg")
	}
	return nil
}
