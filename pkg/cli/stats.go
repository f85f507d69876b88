package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/stats"
)

const defaultStatsFile = "docs/dataset_stats.md"

func (a *app) buildStatsCmd() *cobra.Command {
	var (
		dataDir  string
		dictPath string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the dataset into a markdown stats page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStats(cmd, dataDir, dictPath, out)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding the dataset CSV files (default from config)")
	cmd.Flags().StringVar(&dictPath, "dictionary", "", "Path to the data dictionary CSV (default from config)")
	cmd.Flags().StringVar(&out, "out", defaultStatsFile, "Output path for the markdown summary")
	return cmd
}

func (a *app) runStats(cmd *cobra.Command, dataDir, dictPath, out string) error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ds, err := dataset.LoadDataset(orDefault(dataDir, cfg.DataDir), orDefault(dictPath, cfg.DictionaryFile), logger)
	if err != nil {
		return err
	}

	summary := stats.Summarize(ds)

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(out, []byte(summary.Markdown()), 0o644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote stats to %s\n", out)
	return nil
}
