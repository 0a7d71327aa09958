// tree.go implements the resolve and expand commands: include-tree discovery
// and merged single-file output.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/example/rulekit/internal/config"
	"github.com/example/rulekit/pkg/inidoc"
	"github.com/example/rulekit/pkg/initree"
)

func newResolveCommand(opts *config.Options, log func() logr.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve ROOT",
		Short: "Print the include-tree read order of a root document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := initree.NewResolver(log())
			paths, diags, err := resolver.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			printDiagnostics(diags)
			return nil
		},
	}
}

func newExpandCommand(opts *config.Options, log func() logr.Logger) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "expand ROOT",
		Short: "Read a document and its whole include tree, write the merged result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ropts := opts.ReaderOptions()
			ropts.Logger = log()
			doc, diags, err := initree.NewReader(ropts).ReadTree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDiagnostics(diags)
			// The merged document has consumed its includes.
			doc.Remove(initree.IncludeSection)
			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			return inidoc.Write(out, doc, opts.WriteOptions())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, or - for stdout")
	return cmd
}

var diagColor = color.New(color.FgYellow)

func printDiagnostics(diags []initree.Diagnostic) {
	for _, d := range diags {
		diagColor.Fprintf(os.Stderr, "skipped %s\n", d)
	}
}
