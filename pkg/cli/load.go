package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/apperrors"
	"github.com/evalsight/ragtel/pkg/database"
	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/integrity"
	"github.com/evalsight/ragtel/pkg/logging"
	"github.com/evalsight/ragtel/pkg/models"
)

func (a *app) buildLoadCmd() *cobra.Command {
	var (
		dataDir     string
		dictPath    string
		databaseURL string
		force       bool
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the dataset into PostgreSQL",
		Long: `Validate the dataset, run the schema migrations, then replace the
database contents with the release tables in a single transaction.
A dataset with validation errors is refused unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd, dataDir, dictPath, databaseURL, force)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding the dataset CSV files (default from config)")
	cmd.Flags().StringVar(&dictPath, "dictionary", "", "Path to the data dictionary CSV (default from config)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Load even when validation reports errors")
	return cmd
}

func (a *app) runLoad(cmd *cobra.Command, dataDir, dictPath, databaseURL string, force bool) error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ds, err := dataset.LoadDataset(orDefault(dataDir, cfg.DataDir), orDefault(dictPath, cfg.DictionaryFile), logger)
	if err != nil {
		return err
	}

	checker := integrity.NewChecker(integrity.CheckConfig{
		ExpectedRows: cfg.Checks.ExpectedRows,
		Tolerance:    cfg.Checks.RowCountTolerance,
	}, logger)
	report := checker.Check(ds)
	if report.HasErrors() {
		if !force {
			fmt.Fprintf(cmd.OutOrStdout(), "❌ Refusing to load: %d validation errors (use --force to override)\n",
				report.ErrorCount)
			return &exitCodeError{code: 1, err: fmt.Errorf("%w: %d errors",
				apperrors.ErrValidationFailed, report.ErrorCount)}
		}
		logger.Warn("loading despite validation errors",
			zap.Int("errors", report.ErrorCount),
			zap.Int("warnings", report.WarningCount))
	}

	url := orDefault(databaseURL, cfg.Database.ConnectionString())
	logger.Info("connecting to database", zap.String("url", logging.SanitizeConnectionString(url)))

	if err := database.RunMigrations(url, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ctx := cmd.Context()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            url,
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewDatasetLoader(db, logger).Load(ctx, ds); err != nil {
		return err
	}

	total := len(ds.Dictionary)
	for _, spec := range models.DatasetTables() {
		if t := ds.Table(spec.Name); t != nil {
			total += t.RowCount()
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Loaded %d rows across %d tables\n",
		total, len(models.DatasetTables())+1)
	return nil
}
