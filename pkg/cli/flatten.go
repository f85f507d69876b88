package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/flatten"
)

const defaultFlatFile = "data/derived/flat_rag_events.csv"

func (a *app) buildFlattenCmd() *cobra.Command {
	var (
		dataDir  string
		dictPath string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Build the denormalized single-table view of the dataset",
		Long: `Join the retrieval events against runs, chunks, documents and scenarios
into one wide table, add latency and cost buckets, and write the result
as a derived CSV for BI tools and spreadsheet users.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFlatten(cmd, dataDir, dictPath, out)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding the dataset CSV files (default from config)")
	cmd.Flags().StringVar(&dictPath, "dictionary", "", "Path to the data dictionary CSV (default from config)")
	cmd.Flags().StringVar(&out, "out", defaultFlatFile, "Output path for the flat CSV")
	return cmd
}

func (a *app) runFlatten(cmd *cobra.Command, dataDir, dictPath, out string) error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ds, err := dataset.LoadDataset(orDefault(dataDir, cfg.DataDir), orDefault(dictPath, cfg.DictionaryFile), logger)
	if err != nil {
		return err
	}

	flat, err := flatten.NewBuilder(logger).Build(ds)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := dataset.WriteCSV(out, flat.Header, flat.Rows); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote flat table: %s (%d rows x %d columns)\n",
		out, len(flat.Rows), len(flat.Header))
	return nil
}
