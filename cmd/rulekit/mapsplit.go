// mapsplit.go implements the split and join commands for version-controlled
// map files.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/example/rulekit/internal/config"
	"github.com/example/rulekit/internal/mapsplit"
	"github.com/example/rulekit/internal/textenc"
	"github.com/example/rulekit/pkg/inidoc"
)

func newSplitCommand(opts *config.Options, log func() logr.Logger) *cobra.Command {
	var outDir, planPath string
	cmd := &cobra.Command{
		Use:   "split MAP",
		Short: "Split a map document into small, diff-friendly files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(planPath)
			if err != nil {
				return err
			}
			doc, err := readSingle(args[0], opts.Encoding)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create split dir: %w", err)
			}
			if err := mapsplit.Split(doc, outDir, plan, opts.WriteOptions()); err != nil {
				return err
			}
			log().Info("map split", "map", args[0], "dir", outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Directory receiving the split files")
	cmd.Flags().StringVar(&planPath, "plan", "", "YAML split plan (default: built-in YR map plan)")
	return cmd
}

func newJoinCommand(opts *config.Options, log func() logr.Logger) *cobra.Command {
	var output, planPath string
	cmd := &cobra.Command{
		Use:   "join DIR",
		Short: "Reassemble a split directory into one map document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(planPath)
			if err != nil {
				return err
			}
			doc, diags, err := mapsplit.Join(cmd.Context(), args[0], plan)
			if err != nil {
				return err
			}
			printDiagnostics(diags)
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			if err := inidoc.Write(f, doc, opts.WriteOptions()); err != nil {
				return err
			}
			log().Info("map joined", "dir", args[0], "map", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "joined.map", "Output map file")
	cmd.Flags().StringVar(&planPath, "plan", "", "YAML split plan (default: built-in YR map plan)")
	return cmd
}

func loadPlan(path string) (mapsplit.Plan, error) {
	if path == "" {
		return mapsplit.DefaultPlan(), nil
	}
	return mapsplit.LoadPlan(path)
}

// readSingle reads one file without include resolution.
func readSingle(path, encoding string) (*inidoc.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var text string
	if encoding != "" {
		text, err = textenc.DecodeAs(encoding, raw)
		if err != nil {
			return nil, err
		}
	} else {
		text, _ = textenc.Decode(raw)
	}
	doc, err := inidoc.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
