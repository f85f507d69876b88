package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/models"
)

// DatasetLoader pushes a loaded dataset into Postgres with COPY.
type DatasetLoader struct {
	db     *DB
	logger *zap.Logger
}

func NewDatasetLoader(db *DB, logger *zap.Logger) *DatasetLoader {
	return &DatasetLoader{
		db:     db,
		logger: logger.Named("dbload"),
	}
}

// Load replaces the dataset tables' contents in a single transaction:
// truncate everything, then COPY tables parents-first so the foreign
// keys hold, then the dictionary. Either the whole release lands or
// nothing does.
func (l *DatasetLoader) Load(ctx context.Context, ds *dataset.Dataset) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	names := make([]string, 0, 6)
	for _, spec := range models.DatasetTables() {
		names = append(names, spec.Name)
	}
	names = append(names, models.TableDictionary)
	if _, err := tx.Exec(ctx, "TRUNCATE "+strings.Join(names, ", ")); err != nil {
		return fmt.Errorf("failed to truncate dataset tables: %w", err)
	}

	for _, spec := range models.DatasetTables() {
		table := ds.Table(spec.Name)
		if table == nil {
			return fmt.Errorf("%s not loaded", spec.Name)
		}
		copied, err := l.copyTable(ctx, tx, table)
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", spec.Name, err)
		}
		l.logger.Info("loaded table", zap.String("table", spec.Name), zap.Int64("rows", copied))
	}

	copied, err := l.copyDictionary(ctx, tx, ds.Dictionary)
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", models.TableDictionary, err)
	}
	l.logger.Info("loaded table", zap.String("table", models.TableDictionary), zap.Int64("rows", copied))

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit load: %w", err)
	}
	return nil
}

func (l *DatasetLoader) copyTable(ctx context.Context, tx pgx.Tx, table *dataset.Table) (int64, error) {
	rows := make([][]any, table.RowCount())
	for i, row := range table.Rows {
		record := make([]any, len(row))
		for j, v := range row {
			record[j] = v.Any()
		}
		rows[i] = record
	}
	return tx.CopyFrom(ctx, pgx.Identifier{table.Name}, table.ColumnNames(), pgx.CopyFromRows(rows))
}

func (l *DatasetLoader) copyDictionary(ctx context.Context, tx pgx.Tx, entries []models.DictionaryEntry) (int64, error) {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{e.TableName, e.ColumnName, string(e.Dtype), e.AllowedValues, e.Description}
	}
	return tx.CopyFrom(ctx, pgx.Identifier{models.TableDictionary},
		[]string{"table_name", "column_name", "dtype", "allowed_values", "description"},
		pgx.CopyFromRows(rows))
}
