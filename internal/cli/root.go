package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topdag/pkg/buildinfo"
)

// Execute runs the topdag CLI and returns an error if any command
// fails. The logger level is chosen from the persistent --verbose flag
// and attached to the command context before any RunE fires.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:   "topdag",
		Short: "topdag compresses ordered trees into Top DAGs",
		Long: `topdag compresses ordered, node-labeled trees (typically XML document
trees) into Top DAGs: directed acyclic graphs that share identical
repeated substructures. Archives losslessly reconstruct the original
element tree, and can be navigated without decompression.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	cfg := loadConfigOrDefault()
	root.AddCommand(newCompressCmd(cfg))
	root.AddCommand(newDecompressCmd())
	root.AddCommand(newRandomCmd())
	root.AddCommand(newEvalCmd(cfg))
	root.AddCommand(newExploreCmd())
	root.AddCommand(newServeCmd())

	return root.ExecuteContext(ctx)
}
