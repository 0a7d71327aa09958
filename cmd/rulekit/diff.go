// diff.go compares two documents after normalized rendering, so formatting
// noise (blank lines, separators, key order within unchanged sections) does
// not drown the real changes.
package main

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/example/rulekit/internal/config"
	"github.com/example/rulekit/pkg/inidoc"
)

func newDiffCommand(opts *config.Options, log func() logr.Logger) *cobra.Command {
	var contextLines int
	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Unified diff of two documents in normalized form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := readSingle(args[0], opts.Encoding)
			if err != nil {
				return err
			}
			right, err := readSingle(args[1], opts.Encoding)
			if err != nil {
				return err
			}
			wopts := inidoc.DefaultWriteOptions()
			diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(inidoc.Render(left, wopts)),
				B:        difflib.SplitLines(inidoc.Render(right, wopts)),
				FromFile: args[0],
				ToFile:   args[1],
				Context:  contextLines,
			})
			if err != nil {
				return fmt.Errorf("compute diff: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return nil
		},
	}
	cmd.Flags().IntVarP(&contextLines, "context", "U", 3, "Context lines around each hunk")
	return cmd
}
