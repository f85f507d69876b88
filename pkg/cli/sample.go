package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/models"
	"github.com/evalsight/ragtel/pkg/sample"
)

const (
	defaultSampleDir    = "data/sample"
	defaultSampleEvents = 5000
	defaultSampleSeed   = 42
)

func (a *app) buildSampleCmd() *cobra.Command {
	var (
		dataDir  string
		dictPath string
		out      string
		events   int
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Cut a small join-closed sample of the dataset",
		Long: `Draw a seeded random sample of retrieval events and carry along every
run, chunk, document and scenario they reference, so the sample joins
exactly like the full release. The same seed always yields the same
files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSample(cmd, dataDir, dictPath, out, events, seed)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding the dataset CSV files (default from config)")
	cmd.Flags().StringVar(&dictPath, "dictionary", "", "Path to the data dictionary CSV (default from config)")
	cmd.Flags().StringVar(&out, "out", defaultSampleDir, "Output directory for the sample CSV files")
	cmd.Flags().IntVar(&events, "events", defaultSampleEvents, "Number of retrieval events to draw")
	cmd.Flags().Int64Var(&seed, "seed", defaultSampleSeed, "Random seed for the draw")
	return cmd
}

func (a *app) runSample(cmd *cobra.Command, dataDir, dictPath, out string, events int, seed int64) error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	dictPath = orDefault(dictPath, cfg.DictionaryFile)
	ds, err := dataset.LoadDataset(orDefault(dataDir, cfg.DataDir), dictPath, logger)
	if err != nil {
		return err
	}

	subset, err := sample.NewSampler(logger).Sample(ds, sample.Options{Events: events, Seed: seed})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("failed to create sample directory: %w", err)
	}
	for _, ts := range subset.Tables {
		if err := dataset.WriteCSV(filepath.Join(out, ts.FileName), ts.Header, ts.Rows); err != nil {
			return err
		}
	}

	// The dictionary travels with the sample so it validates stand-alone.
	raw, err := os.ReadFile(dictPath)
	if err != nil {
		return fmt.Errorf("failed to read dictionary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(out, "data_dictionary.csv"), raw, 0o644); err != nil {
		return fmt.Errorf("failed to copy dictionary: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "✅ Sample created:")
	for _, line := range []struct {
		label string
		table string
	}{
		{"events", models.TableEvents},
		{"runs", models.TableRuns},
		{"chunks", models.TableChunks},
		{"documents", models.TableDocuments},
		{"scenarios", models.TableScenarios},
	} {
		n := 0
		if ts := subset.Table(line.table); ts != nil {
			n = len(ts.Rows)
		}
		fmt.Fprintf(w, "- %-12s%s\n", line.label+":", groupThousands(n))
	}
	fmt.Fprintf(w, "Output dir: %s\n", out)
	return nil
}

// groupThousands renders n with comma separators, 12345 -> "12,345".
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
