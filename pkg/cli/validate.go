package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evalsight/ragtel/pkg/apperrors"
	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/integrity"
	"github.com/evalsight/ragtel/pkg/models"
)

func (a *app) buildValidateCmd() *cobra.Command {
	var (
		dataDir    string
		dictPath   string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the schema and integrity check battery",
		Long: `Load the dictionary and all dataset tables, then run the full check
battery: primary keys, foreign keys, rank and chunk contiguity, allowed
values, dtype conformance and row-count sanity. All findings are
collected; the command exits non-zero only when error-severity findings
exist.`,
		Example: `  ragtel validate
  ragtel validate --data-dir data/sample --dictionary data/sample/data_dictionary.csv
  ragtel validate --report report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd, dataDir, dictPath, reportPath)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Dataset directory (default from config)")
	cmd.Flags().StringVar(&dictPath, "dictionary", "", "Data dictionary path (default from config)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the findings report as JSON to this path")
	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, dataDir, dictPath, reportPath string) error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ds, err := dataset.LoadDataset(
		orDefault(dataDir, cfg.DataDir),
		orDefault(dictPath, cfg.DictionaryFile),
		logger)
	if err != nil {
		return err
	}

	checker := integrity.NewChecker(integrity.CheckConfig{
		ExpectedRows: cfg.Checks.ExpectedRows,
		Tolerance:    cfg.Checks.RowCountTolerance,
	}, logger)
	report := checker.Check(ds)

	out := cmd.OutOrStdout()
	for _, spec := range models.DatasetTables() {
		fmt.Fprintf(out, "  %-22s %d rows\n", spec.Name, report.TableRows[spec.Name])
	}
	for _, f := range report.Findings {
		fmt.Fprintf(out, "  [%s] %s\n", f.Severity, formatFinding(f))
	}

	if reportPath != "" {
		if err := writeReportJSON(reportPath, report); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s (id %s)\n", reportPath, report.ID)
	}

	if report.HasErrors() {
		fmt.Fprintf(out, "❌ Dataset validation failed: %d errors, %d warnings\n",
			report.ErrorCount, report.WarningCount)
		return &exitCodeError{code: 1, err: fmt.Errorf("%w: %d errors",
			apperrors.ErrValidationFailed, report.ErrorCount)}
	}
	if report.WarningCount > 0 {
		fmt.Fprintf(out, "✅ Dataset validation passed with %d warnings.\n", report.WarningCount)
		return nil
	}
	fmt.Fprintln(out, "✅ Dataset validation passed.")
	return nil
}

func formatFinding(f models.Finding) string {
	target := f.Table
	if f.Column != "" {
		target += "." + f.Column
	}
	if f.RowKey != "" {
		return fmt.Sprintf("%s %s %s: %s", f.Check, target, f.RowKey, f.Message)
	}
	return fmt.Sprintf("%s %s: %s", f.Check, target, f.Message)
}

func writeReportJSON(path string, report *models.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
