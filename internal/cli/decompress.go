package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topdag/pkg/archive"
	"github.com/matzehuels/topdag/pkg/topdag"
	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

func newDecompressCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "decompress <archive>",
		Short: "Decompress a Top DAG archive back into XML",
		Long: `Decompress a Top DAG archive back into XML.

The DAG is expanded into its top tree, and the top tree into the ordered
element tree. The result is isomorphic to the compressed input,
including the order and names of all elements.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompress(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "XML output path (default: <archive>.xml)")
	return cmd
}

func runDecompress(ctx context.Context, input, output string) error {
	logger := loggerFromContext(ctx)
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".xml"
	}
	prog := newProgress(logger)

	dag, lab, err := archive.ReadFile(input)
	if err != nil {
		return err
	}
	logger.Debugf("%s", dag.String())

	top, err := topdag.Unpack(dag)
	if err != nil {
		return err
	}
	t, outLab, err := toptree.Unpack(top, lab)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := tree.WriteXML(f, t, outLab); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Decompressed %s into %s (%d nodes)", input, output, t.NumNodes()))
	return nil
}
