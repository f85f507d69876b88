package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/testhelpers"
)

func TestLoadDatasetIntegration(t *testing.T) {
	dsn := testhelpers.PostgresDSN(t)
	ctx := context.Background()
	logger := zap.NewNop()

	require.NoError(t, RunMigrations(dsn, logger))
	// A second run must be a no-op.
	require.NoError(t, RunMigrations(dsn, logger))

	db, err := NewConnection(ctx, &Config{URL: dsn})
	require.NoError(t, err)
	defer db.Close()

	root := testhelpers.WriteDataset(t)
	ds, err := dataset.LoadDataset(
		filepath.Join(root, "data"),
		filepath.Join(root, "data_dictionary.csv"),
		logger)
	require.NoError(t, err)

	loader := NewDatasetLoader(db, logger)
	require.NoError(t, loader.Load(ctx, ds))

	counts := map[string]int{
		"rag_corpus_documents": 3,
		"rag_corpus_chunks":    5,
		"rag_qa_scenarios":     2,
		"rag_qa_eval_runs":     3,
		"rag_retrieval_events": 6,
		"data_dictionary":      51,
	}
	for table, want := range counts {
		var got int
		require.NoError(t, db.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&got))
		assert.Equal(t, want, got, "table %s", table)
	}

	// Values survive the trip with their types.
	var f1 float64
	require.NoError(t, db.QueryRow(ctx,
		"SELECT answer_f1 FROM rag_qa_eval_runs WHERE example_id = 'e1'").Scan(&f1))
	assert.InDelta(t, 0.82, f1, 1e-9)

	var correct bool
	require.NoError(t, db.QueryRow(ctx,
		"SELECT is_correct FROM rag_qa_eval_runs WHERE example_id = 'e2'").Scan(&correct))
	assert.False(t, correct)

	var tokens *int64
	require.NoError(t, db.QueryRow(ctx,
		"SELECT token_count FROM rag_corpus_documents WHERE doc_id = 'd1'").Scan(&tokens))
	require.NotNil(t, tokens)
	assert.Equal(t, int64(1200), *tokens)

	// The analytics join the release documents.
	var legalEvents int
	require.NoError(t, db.QueryRow(ctx,
		`SELECT count(*)
		 FROM rag_retrieval_events e
		 JOIN rag_qa_eval_runs r ON e.run_id = r.run_id
		 WHERE r.domain = 'legal'`).Scan(&legalEvents))
	assert.Equal(t, 3, legalEvents)
}

func TestLoadDatasetIsRepeatable(t *testing.T) {
	dsn := testhelpers.PostgresDSN(t)
	ctx := context.Background()
	logger := zap.NewNop()

	require.NoError(t, RunMigrations(dsn, logger))

	db, err := NewConnection(ctx, &Config{URL: dsn})
	require.NoError(t, err)
	defer db.Close()

	root := testhelpers.WriteDataset(t)
	ds, err := dataset.LoadDataset(
		filepath.Join(root, "data"),
		filepath.Join(root, "data_dictionary.csv"),
		logger)
	require.NoError(t, err)

	loader := NewDatasetLoader(db, logger)
	require.NoError(t, loader.Load(ctx, ds))
	require.NoError(t, loader.Load(ctx, ds))

	var events int
	require.NoError(t, db.QueryRow(ctx, "SELECT count(*) FROM rag_retrieval_events").Scan(&events))
	assert.Equal(t, 6, events)
}
