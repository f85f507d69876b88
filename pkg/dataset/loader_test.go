package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/apperrors"
	"github.com/evalsight/ragtel/pkg/models"
	"github.com/evalsight/ragtel/pkg/schema"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testRegistry(t *testing.T, rows []models.DictionaryEntry) *schema.Registry {
	t.Helper()
	reg, err := schema.Load(rows)
	require.NoError(t, err)
	return reg
}

func TestLoaderCoercesDeclaredDtypes(t *testing.T) {
	reg := testRegistry(t, []models.DictionaryEntry{
		{TableName: "runs", ColumnName: "run_id", Dtype: models.DtypeText},
		{TableName: "runs", ColumnName: "prompt_tokens", Dtype: models.DtypeInt},
		{TableName: "runs", ColumnName: "answer_f1", Dtype: models.DtypeFloat},
		{TableName: "runs", ColumnName: "is_correct", Dtype: models.DtypeBool},
		{TableName: "runs", ColumnName: "created_at", Dtype: models.DtypeDatetime},
	})
	path := writeFile(t, t.TempDir(), "runs.csv",
		"run_id,prompt_tokens,answer_f1,is_correct,created_at\n"+
			"r1,512,0.83,True,2025-03-01 10:30:00\n"+
			"r2,,0,false,2025-03-02\n")

	table, err := NewLoader(reg, zap.NewNop()).Load("runs", path)
	require.NoError(t, err)
	require.Equal(t, 2, table.RowCount())

	v, ok := table.Value(0, "prompt_tokens")
	require.True(t, ok)
	assert.Equal(t, int64(512), v.Int)

	v, _ = table.Value(0, "answer_f1")
	assert.InDelta(t, 0.83, v.Float, 1e-9)

	v, _ = table.Value(0, "is_correct")
	assert.True(t, v.Bool)
	assert.Equal(t, "True", v.Raw)

	v, _ = table.Value(0, "created_at")
	assert.Equal(t, time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC), v.Time)

	v, _ = table.Value(1, "prompt_tokens")
	assert.True(t, v.Null)

	v, _ = table.Value(1, "created_at")
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), v.Time)
}

func TestLoaderRejectsBadCell(t *testing.T) {
	reg := testRegistry(t, []models.DictionaryEntry{
		{TableName: "runs", ColumnName: "run_id", Dtype: models.DtypeText},
		{TableName: "runs", ColumnName: "prompt_tokens", Dtype: models.DtypeInt},
	})
	path := writeFile(t, t.TempDir(), "runs.csv",
		"run_id,prompt_tokens\nr1,512\nr2,lots\n")

	_, err := NewLoader(reg, zap.NewNop()).Load("runs", path)
	require.Error(t, err)

	var loadErr *apperrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "runs", loadErr.Table)
	assert.Equal(t, "prompt_tokens", loadErr.Column)
	assert.Equal(t, 2, loadErr.Row)
	assert.Equal(t, "lots", loadErr.Value)
}

func TestLoaderRecordsColumnDrift(t *testing.T) {
	reg := testRegistry(t, []models.DictionaryEntry{
		{TableName: "docs", ColumnName: "doc_id", Dtype: models.DtypeText},
		{TableName: "docs", ColumnName: "token_count", Dtype: models.DtypeInt},
	})
	path := writeFile(t, t.TempDir(), "docs.csv",
		"doc_id,reviewer_notes\nd1,fine\n")

	table, err := NewLoader(reg, zap.NewNop()).Load("docs", path)
	require.NoError(t, err)
	require.Len(t, table.Drift, 2)

	byColumn := make(map[string]models.Finding)
	for _, f := range table.Drift {
		assert.Equal(t, models.SeverityWarning, f.Severity)
		assert.Equal(t, models.CheckColumnDrift, f.Check)
		byColumn[f.Column] = f
	}
	assert.Contains(t, byColumn["token_count"].Message, "missing from file")
	assert.Contains(t, byColumn["reviewer_notes"].Message, "not declared")

	// Undeclared columns still load, as text.
	v, ok := table.Value(0, "reviewer_notes")
	require.True(t, ok)
	assert.Equal(t, "fine", v.Raw)
	assert.Equal(t, models.DtypeText, table.Columns[1].Declared)
}

func TestLoaderMissingFile(t *testing.T) {
	reg := testRegistry(t, nil)
	_, err := NewLoader(reg, zap.NewNop()).Load("docs", filepath.Join(t.TempDir(), "docs.csv"))
	require.ErrorIs(t, err, apperrors.ErrTableFileMissing)
}

func TestObservedDtypeInference(t *testing.T) {
	reg := testRegistry(t, []models.DictionaryEntry{
		{TableName: "t", ColumnName: "flags", Dtype: models.DtypeText},
		{TableName: "t", ColumnName: "counts", Dtype: models.DtypeText},
		{TableName: "t", ColumnName: "scores", Dtype: models.DtypeText},
		{TableName: "t", ColumnName: "stamps", Dtype: models.DtypeText},
		{TableName: "t", ColumnName: "labels", Dtype: models.DtypeText},
		{TableName: "t", ColumnName: "blank", Dtype: models.DtypeFloat},
	})
	path := writeFile(t, t.TempDir(), "t.csv",
		"flags,counts,scores,stamps,labels,blank\n"+
			"true,3,0.5,2025-01-01,alpha,\n"+
			"0,7,2,2025-02-01 08:00:00,beta,\n")

	table, err := NewLoader(reg, zap.NewNop()).Load("t", path)
	require.NoError(t, err)

	observed := make(map[string]models.Dtype)
	for _, c := range table.Columns {
		observed[c.Name] = c.Observed
	}
	assert.Equal(t, models.DtypeBool, observed["flags"])
	assert.Equal(t, models.DtypeInt, observed["counts"])
	assert.Equal(t, models.DtypeFloat, observed["scores"])
	assert.Equal(t, models.DtypeDatetime, observed["stamps"])
	assert.Equal(t, models.DtypeText, observed["labels"])
	// All-null columns fall back to the declared dtype.
	assert.Equal(t, models.DtypeFloat, observed["blank"])
}

func TestKeyStringCompositeKeys(t *testing.T) {
	reg := testRegistry(t, []models.DictionaryEntry{
		{TableName: "events", ColumnName: "run_id", Dtype: models.DtypeText},
		{TableName: "events", ColumnName: "chunk_id", Dtype: models.DtypeText},
		{TableName: "events", ColumnName: "rank", Dtype: models.DtypeInt},
	})
	path := writeFile(t, t.TempDir(), "events.csv",
		"run_id,chunk_id,rank\nr1,c1,1\nr1,,2\n")

	table, err := NewLoader(reg, zap.NewNop()).Load("events", path)
	require.NoError(t, err)

	assert.Equal(t, "r1\x1fc1\x1f1", table.KeyString(0, []string{"run_id", "chunk_id", "rank"}))
	assert.Equal(t, "r1\x1f\x1f2", table.KeyString(1, []string{"run_id", "chunk_id", "rank"}))
}

func TestReadDictionaryHeaderOrderInsensitive(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data_dictionary.csv",
		"dtype,description,table_name,column_name,allowed_values\n"+
			"float,\"F1 overlap, token level\",rag_qa_eval_runs,answer_f1,\"[0,1]\"\n")

	entries, err := ReadDictionary(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "rag_qa_eval_runs", entries[0].TableName)
	assert.Equal(t, "answer_f1", entries[0].ColumnName)
	assert.Equal(t, models.DtypeFloat, entries[0].Dtype)
	assert.Equal(t, "[0,1]", entries[0].AllowedValues)
	assert.Equal(t, "F1 overlap, token level", entries[0].Description)
}

func TestReadDictionaryRequiresCoreColumns(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data_dictionary.csv",
		"table_name,column_name\nt,c\n")

	_, err := ReadDictionary(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dtype")
}

func TestWriteCSVRoundTrip(t *testing.T) {
	reg := testRegistry(t, []models.DictionaryEntry{
		{TableName: "runs", ColumnName: "run_id", Dtype: models.DtypeText},
		{TableName: "runs", ColumnName: "answer_f1", Dtype: models.DtypeFloat},
		{TableName: "runs", ColumnName: "note", Dtype: models.DtypeText},
	})
	dir := t.TempDir()
	original := "run_id,answer_f1,note\n" +
		"r1,0.830,\"uses, commas\"\n" +
		"r2,,plain\n"
	path := writeFile(t, dir, "runs.csv", original)

	table, err := NewLoader(reg, zap.NewNop()).Load("runs", path)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteCSV(out, table.ColumnNames(), table.Rows))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, original, string(got))
}
