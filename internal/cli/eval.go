package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topdag/pkg/stats"
	"github.com/matzehuels/topdag/pkg/topdag"
	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

// evalOpts holds the command-line flags for the eval command.
type evalOpts struct {
	size       int
	iterations int
	numLabels  int
	seed       int64
	rePair     bool
	statsFile  string
	ratioFile  string
	mongoURI   string
}

func newEvalCmd(cfg Config) *cobra.Command {
	opts := evalOpts{size: 1000, iterations: 100, numLabels: 2, seed: 12345678, mongoURI: cfg.Mongo.URI}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Batch-compress seeded random trees and aggregate statistics",
		Long: `Run the compression pipeline over many random trees and aggregate
timings, edge ratios and DAG sizes.

Per-iteration seeds are derived deterministically from the parameters,
so two invocations with the same flags measure identical inputs. With
--mongo-uri, each iteration's result is also stored in MongoDB, tagged
with a fresh run id.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.size, "size", "n", opts.size, "tree size in edges")
	cmd.Flags().IntVar(&opts.iterations, "iterations", opts.iterations, "number of trees to evaluate")
	cmd.Flags().IntVarP(&opts.numLabels, "labels", "l", opts.numLabels, "number of distinct labels")
	cmd.Flags().Int64VarP(&opts.seed, "seed", "s", opts.seed, "random seed")
	cmd.Flags().BoolVarP(&opts.rePair, "repair", "r", false, "use the RePair-aware constructor variant")
	cmd.Flags().StringVar(&opts.statsFile, "stats", "", "write tab-separated debug info to this file")
	cmd.Flags().StringVar(&opts.ratioFile, "ratios", "", "write per-round edge ratios to this file")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "store results in MongoDB at this URI")

	return cmd
}

func runEval(ctx context.Context, cfg Config, opts evalOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Evaluating %d trees of size %d with %d labels", opts.iterations, opts.size, opts.numLabels)

	statistics, err := stats.NewStatistics(opts.ratioFile, opts.statsFile)
	if err != nil {
		return fmt.Errorf("open statistics dumps: %w", err)
	}
	defer statistics.Close()

	var sink stats.ResultSink = stats.NullSink{}
	if opts.mongoURI != "" {
		mongoSink, err := stats.NewMongoSink(ctx, opts.mongoURI, cfg.Mongo.Database, "evals")
		if err != nil {
			return fmt.Errorf("connect result sink: %w", err)
		}
		defer mongoSink.Close(ctx)
		sink = mongoSink
	}
	runID := stats.NewRunID()

	// One seed per iteration, derived from the parameters so a batch is
	// reproducible flag-for-flag.
	seedRng := rand.New(rand.NewSource(opts.seed ^ int64(opts.size)<<32 ^ int64(opts.iterations)<<16 ^ int64(opts.numLabels)))
	seeds := make([]int64, opts.iterations)
	for i := range seeds {
		seeds[i] = seedRng.Int63()
	}

	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		info := stats.NewDebugInfo()
		prog := newProgress(logger)

		rng := rand.New(rand.NewSource(seed))
		t := tree.Random(rng, opts.size)
		lab := tree.RandomLabels(rng, t.NumNodes(), opts.numLabels)
		info.Height = t.Height()
		info.AvgDepth = t.AvgDepth()
		info.GenerationDuration = prog.reset()

		top := toptree.New(t.NumNodes(), lab)
		err := toptree.Construct(t, top, toptree.Options{
			RePair:   opts.rePair,
			MinRatio: cfg.MinRatio,
			RatioFunc: func(ratio float64) {
				info.AddEdgeRatio(ratio)
				statistics.AddEdgeRatio(ratio)
			},
		})
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
		info.MergeDuration = prog.reset()

		dag := topdag.NewDag(top.NumClusters())
		topdag.Build(top, dag)
		info.NumDagNodes = dag.NumNodes()
		info.NumDagEdges = dag.CountEdges()
		info.DagDuration = prog.reset()

		statistics.AddDebugInfo(info)
		result := stats.Result{
			RunID:     runID,
			CreatedAt: time.Now().UTC(),
			TreeSize:  opts.size,
			NumLabels: opts.numLabels,
			Seed:      seed,
			RePair:    opts.rePair,
			Info:      *info,
		}
		if err := sink.Record(ctx, result); err != nil {
			logger.Warnf("result sink: %v", err)
		}
	}

	statistics.Compute()
	statistics.Dump(os.Stdout)
	return nil
}
