// Package cli wires the ragtel subcommands: each command builder
// creates a cobra command and binds it to its run handler.
package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/config"
	"github.com/evalsight/ragtel/pkg/logging"
)

// app carries the persistent flag state shared by every subcommand.
type app struct {
	configPath string
	debug      bool
	version    string
}

// exitCodeError carries a specific process exit code up to Execute;
// checksum verification distinguishes drift (1) from a missing
// manifest (2).
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

// Execute runs the CLI and returns the process exit code.
func Execute(version string) int {
	root := BuildRootCmd(version)
	if err := root.Execute(); err != nil {
		var ec *exitCodeError
		if errors.As(err, &ec) {
			return ec.code
		}
		return 1
	}
	return 0
}

// BuildRootCmd creates the root command with all subcommands attached.
func BuildRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "ragtel",
		Short: "Release tooling for the RAG QA telemetry dataset",
		Long: `ragtel validates, fingerprints and packages the RAG QA Logs & Corpus
release: six linked CSV tables governed by a data dictionary.

Typical release flow:

  ragtel validate                  # schema + integrity check battery
  ragtel checksum write            # fingerprint the release files
  ragtel flatten                   # build the denormalized events table
  ragtel stats                     # refresh docs/dataset_stats.md
  ragtel sample --events 5000      # cut a join-closed demo subset
  ragtel load                      # push the release into Postgres`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Path to YAML configuration file (default ragtel.yaml if present)")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false,
		"Enable debug logging (verbose output)")

	root.AddCommand(
		a.buildValidateCmd(),
		a.buildChecksumCmd(),
		a.buildFlattenCmd(),
		a.buildStatsCmd(),
		a.buildSampleCmd(),
		a.buildDictCmd(),
		a.buildLoadCmd(),
		a.buildVersionCmd(),
	)

	return root
}

// setup loads configuration and builds the logger for one command run.
func (a *app) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(a.configPath, a.version)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(a.debug), nil
}

// orDefault substitutes the config value for an unset flag.
func orDefault(flag, def string) string {
	if flag == "" {
		return def
	}
	return flag
}
