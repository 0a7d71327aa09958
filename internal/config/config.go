// Package config defines the flag plumbing and runtime options shared by
// rulekit's commands, translating Cobra flag values into a strongly typed
// struct that the tree reader and writer consume.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/rulekit/pkg/inidoc"
	"github.com/example/rulekit/pkg/initree"
)

// Options holds all CLI configuration used by the rulekit commands.
type Options struct {
	Workers    int
	Encoding   string
	Pairing    string
	Commenting string
	BlankLines int
	LogLevel   string
}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		Pairing:    "=",
		Commenting: "; ",
		BlankLines: 1,
		LogLevel:   "info",
	}
}

// AddFlags binds configuration flags to the provided Cobra command.
func (o *Options) AddFlags(cmd *cobra.Command) {
	o.BindFlags(cmd.PersistentFlags())
}

// BindFlags attaches the shared flags to an arbitrary FlagSet and returns
// the flag names for further customization.
func (o *Options) BindFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.IntVarP(&o.Workers, "workers", "j", 0, "Concurrent file reads during tree reads (0 = CPU count)")
	names = append(names, "workers")
	fs.StringVar(&o.Encoding, "encoding", "", "Force a charset for every file instead of detection (e.g. utf-8, gbk)")
	names = append(names, "encoding")
	fs.StringVar(&o.Pairing, "pairing", "=", "Separator written between keys and values")
	names = append(names, "pairing")
	fs.StringVar(&o.Commenting, "commenting", "; ", "Prefix written before standalone comment lines")
	names = append(names, "commenting")
	fs.IntVar(&o.BlankLines, "blank-lines", 1, "Blank lines written between sections")
	names = append(names, "blank-lines")
	fs.StringVar(&o.LogLevel, "log-level", "info", "Log verbosity: debug, info, warn, or error")
	names = append(names, "log-level")
	return names
}

// Validate rejects option combinations the writer or reader cannot honor.
func (o *Options) Validate() error {
	if o.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0, got %d", o.Workers)
	}
	if o.BlankLines < 0 {
		return fmt.Errorf("--blank-lines must be >= 0, got %d", o.BlankLines)
	}
	if o.Pairing == "" {
		return fmt.Errorf("--pairing must not be empty")
	}
	return nil
}

// WriteOptions translates the flag values into writer options.
func (o *Options) WriteOptions() inidoc.WriteOptions {
	return inidoc.WriteOptions{
		Pairing:    o.Pairing,
		Commenting: o.Commenting,
		BlankLines: o.BlankLines,
	}
}

// ReaderOptions translates the flag values into tree-reader options. The
// logger is attached by the command after logging is initialized.
func (o *Options) ReaderOptions() initree.Options {
	return initree.Options{
		Workers:  o.Workers,
		Encoding: o.Encoding,
	}
}
