// main.go bootstraps rulekit: it builds the root Cobra command, wires viper
// config/env binding, and executes with a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/rulekit/internal/config"
	"github.com/example/rulekit/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := config.NewOptions()
	var log logr.Logger
	cmd := &cobra.Command{
		Use:           "rulekit",
		Short:         "Authoring toolkit for C&C-dialect INI rule and map files",
		Long: "rulekit reads rule documents together with their [#include] tree, and can\n" +
			"expand, diff, split, and join them while keeping comments and inheritance.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			l, err := logging.New(opts.LogLevel)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
	}
	opts.AddFlags(cmd)
	logref := func() logr.Logger { return log }
	cmd.AddCommand(
		newResolveCommand(opts, logref),
		newExpandCommand(opts, logref),
		newSplitCommand(opts, logref),
		newJoinCommand(opts, logref),
		newDiffCommand(opts, logref),
	)
	bindViper(cmd)
	return cmd
}

func bindViper(root *cobra.Command) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("RULEKIT")
	v.AutomaticEnv()
	if configFile := os.Getenv("RULEKIT_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("rulekit")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	cobra.OnInitialize(func() {
		if err := v.BindPFlags(root.PersistentFlags()); err != nil {
			cobra.CheckErr(err)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				cobra.CheckErr(err)
			}
		}
		root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) {
				return
			}
			if val := fmt.Sprintf("%v", v.Get(f.Name)); val != "" {
				_ = f.Value.Set(val)
			}
		})
	})
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	if errors.Is(err, context.Canceled) {
		message = "interrupted"
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
