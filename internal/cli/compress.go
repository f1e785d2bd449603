package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topdag/pkg/archive"
	"github.com/matzehuels/topdag/pkg/bp"
	"github.com/matzehuels/topdag/pkg/cache"
	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/observability"
	"github.com/matzehuels/topdag/pkg/stats"
	"github.com/matzehuels/topdag/pkg/topdag"
	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

// defaultInput is the historical fallback document used by the original
// research tooling when no input is given.
const defaultInput = "data/1998statistics.xml"

// compressOpts holds the command-line flags for the compress command.
type compressOpts struct {
	rePair    bool    // use the RePair-aware constructor variant
	minRatio  float64 // minimum per-round edge ratio for the RePair variant
	output    string  // archive output path
	statsFile string  // TSV debug info dump
	ratioFile string  // per-round edge ratio dump
	dumpDOT   bool    // write DOT graphs next to the archive
	noCache   bool    // bypass the artifact cache
}

func newCompressCmd(cfg Config) *cobra.Command {
	opts := compressOpts{minRatio: cfg.MinRatio}

	cmd := &cobra.Command{
		Use:   "compress [file.xml]",
		Short: "Compress an XML document into a Top DAG archive",
		Long: `Compress an XML document into a Top DAG archive.

The element tree is reduced to a top tree by iterated horizontal and
vertical merges, then folded into a minimal DAG by sharing identical
cluster subtrees. The archive holds the DAG plus the label table and
reconstructs the element structure exactly.

With -r, sibling pairs are grouped by subtree fingerprints and repeated
pairs are merged first, which usually increases sharing; -m is the edge
ratio those repeated-pair merges must reach on their own in a round,
below which the round is completed with greedy merging.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := defaultInput
			if len(args) > 0 {
				input = args[0]
			}
			return runCompress(cmd.Context(), cfg, opts, input)
		},
	}

	cmd.Flags().BoolVarP(&opts.rePair, "repair", "r", false, "use the RePair-aware constructor variant")
	cmd.Flags().Float64VarP(&opts.minRatio, "min-ratio", "m", opts.minRatio, "minimum edge ratio before falling back to greedy merges")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "archive output path (default: <input>.tdag)")
	cmd.Flags().StringVar(&opts.statsFile, "stats", "", "write tab-separated debug info to this file")
	cmd.Flags().StringVar(&opts.ratioFile, "ratios", "", "write per-round edge ratios to this file")
	cmd.Flags().BoolVarP(&opts.dumpDOT, "dot", "d", false, "dump DOT graphs of the tree and the Top DAG")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")

	return cmd
}

func runCompress(ctx context.Context, cfg Config, opts compressOpts, input string) error {
	logger := loggerFromContext(ctx)
	output := opts.output
	if output == "" {
		output = filepath.Join(cfg.OutputDir, filepath.Base(input)+".tdag")
	}

	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	// Cache lookup: same bytes and same options mean the same archive.
	fingerprint := fmt.Sprintf("repair=%t,m=%g", opts.rePair, opts.minRatio)
	artifacts := newArtifactCache(ctx, cfg, opts.noCache, logger)
	defer artifacts.Close()
	key := cache.Key(raw, fingerprint)
	if data, ok, err := artifacts.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit("artifact")
		logger.Debugf("artifact cache hit for %s", input)
		return os.WriteFile(output, data, 0644)
	}
	observability.Cache().OnCacheMiss("artifact")

	statistics, err := stats.NewStatistics(opts.ratioFile, opts.statsFile)
	if err != nil {
		return fmt.Errorf("open statistics dumps: %w", err)
	}
	defer statistics.Close()

	info := stats.NewDebugInfo()
	prog := newProgress(logger)

	t := tree.New(0)
	lab := labels.New()
	if err := tree.ParseXML(bytes.NewReader(raw), t, lab); err != nil {
		return err
	}
	origNodes, origEdges := t.NumNodes(), t.NumEdges()
	info.Height = t.Height()
	info.AvgDepth = t.AvgDepth()
	succinctBits := bp.EstimateBits(t, lab)
	info.GenerationDuration = prog.reset()
	logger.Debugf("%s; height %d, avg depth %.2f", t.Summary(), info.Height, info.AvgDepth)

	if opts.dumpDOT {
		// Construction consumes the tree, so its DOT dump has to happen
		// now.
		treeDot := strings.TrimSuffix(output, filepath.Ext(output)) + ".tree.dot"
		if err := os.WriteFile(treeDot, []byte(tree.ToDOT(t, lab)), 0644); err != nil {
			return err
		}
		logger.Infof("wrote %s", treeDot)
	}

	top := toptree.New(t.NumNodes(), lab)
	err = toptree.Construct(t, top, toptree.Options{
		RePair:   opts.rePair,
		MinRatio: opts.minRatio,
		RatioFunc: func(ratio float64) {
			info.AddEdgeRatio(ratio)
			statistics.AddEdgeRatio(ratio)
		},
	})
	if err != nil {
		return err
	}
	info.MergeDuration = prog.reset()
	logger.Debugf("%s; height %d, min depth %d, avg depth %.2f",
		top.String(), top.Height(), top.MinDepth(), top.AvgDepth())

	dag := topdag.NewDag(top.NumClusters())
	topdag.Build(top, dag)
	info.NumDagNodes = dag.NumNodes()
	info.NumDagEdges = dag.CountEdges()
	info.DagDuration = prog.reset()

	bits, err := archive.WriteFile(output, dag, lab)
	if err != nil {
		return err
	}
	statistics.AddDebugInfo(info)

	if opts.dumpDOT {
		dagDot := strings.TrimSuffix(output, filepath.Ext(output)) + ".dag.dot"
		if err := os.WriteFile(dagDot, []byte(topdag.ToDOT(dag, lab)), 0644); err != nil {
			return err
		}
		logger.Infof("wrote %s", dagDot)
	}

	// Cache the finished archive for the next identical invocation.
	if data, err := os.ReadFile(output); err == nil {
		if err := artifacts.Set(ctx, key, data, 30*24*time.Hour); err != nil {
			logger.Debugf("artifact cache store failed: %v", err)
		} else {
			observability.Cache().OnCacheSet("artifact", len(data))
		}
	}

	edgePct := float64(info.NumDagEdges) * 100 / float64(max(origEdges, 1))
	fmt.Println(renderSummary("Compressed "+input, []summaryRow{
		{"output", output},
		{"tree", fmt.Sprintf("%d nodes, %d edges", origNodes, origEdges)},
		{"top DAG", fmt.Sprintf("%d nodes, %d edges (%.1f%% of original edges)", info.NumDagNodes, info.NumDagEdges, edgePct)},
		{"edge ratio", fmt.Sprintf("%.3f avg, %.3f min, %.3f max", info.AvgEdgeRatio(), info.MinEdgeRatio, info.MaxEdgeRatio)},
		{"archive", fmt.Sprintf("%d bytes vs %d bytes succinct (%.1f:1)", (bits+7)/8, (succinctBits+7)/8, float64(succinctBits)/float64(max(bits, 1)))},
		{"took", fmt.Sprintf("%.1fms", info.TotalDuration())},
	}))

	// Machine-readable result line, one key=value pair per metric.
	fmt.Printf("RESULT compressed=%d succinct=%d minRatio=%g repair=%t nodes=%d origNodes=%d edges=%d origEdges=%d file=%s height=%d avgDepth=%g\n",
		bits, succinctBits, opts.minRatio, opts.rePair,
		info.NumDagNodes, origNodes, info.NumDagEdges, origEdges, input, info.Height, info.AvgDepth)
	return nil
}

// newArtifactCache builds the configured cache backend, degrading to a
// null cache when the backend is unavailable.
func newArtifactCache(ctx context.Context, cfg Config, disabled bool, logger interface{ Debugf(string, ...any) }) cache.Cache {
	if disabled {
		return cache.NewNullCache()
	}
	switch cfg.Cache.Backend {
	case "redis":
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
		if err != nil {
			logger.Debugf("redis cache unavailable: %v", err)
			return cache.NewNullCache()
		}
		return c
	case "none", "":
		if cfg.Cache.Backend == "none" {
			return cache.NewNullCache()
		}
		fallthrough
	case "file":
		c, err := cache.NewFileCache(cfg.Cache.cacheDir())
		if err != nil {
			logger.Debugf("file cache unavailable: %v", err)
			return cache.NewNullCache()
		}
		return c
	default:
		return cache.NewNullCache()
	}
}
