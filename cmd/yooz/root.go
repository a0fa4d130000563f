package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yooz-lang/go-yooz/engine"
	"github.com/yooz-lang/go-yooz/rulebase/dsl"
)

const version = "1.0.0"

// rootFlags are the persistent flags shared by all subcommands.
type rootFlags struct {
	configPath string
	verbose    bool
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "yooz",
		Short: "Rule-based conversational response engine",
		Long: `Yooz compiles conversational rule notation and answers utterances with it.

A rule file declares conversation patterns, word categories, substitution
tables, stop words, weighted rules, and session variables. The engine
normalizes each utterance, finds the best match, and renders the reply.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to YAML config file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(checkCmd(flags))
	cmd.AddCommand(queryCmd(flags))
	cmd.AddCommand(chatCmd(flags))
	cmd.AddCommand(sessionsCmd(flags))
	cmd.AddCommand(exportCmd())

	return cmd
}

// newLogger builds the process logger. Verbose switches to development
// output at debug level.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// loadEngine compiles a rule file and builds an engine from the resolved
// config and logger.
func loadEngine(flags *rootFlags, rulePath string) (*engine.Engine, Config, error) {
	cfg, err := LoadConfig(flags.configPath)
	if err != nil {
		return nil, cfg, err
	}

	src, err := os.ReadFile(rulePath)
	if err != nil {
		return nil, cfg, fmt.Errorf("reading rule file: %w", err)
	}

	rb, err := dsl.Compile(string(src))
	if err != nil {
		return nil, cfg, fmt.Errorf("compiling %s: %w", rulePath, err)
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, cfg, err
	}
	opts.Logger, err = newLogger(flags.verbose)
	if err != nil {
		return nil, cfg, err
	}

	return engine.New(rb, opts), cfg, nil
}
