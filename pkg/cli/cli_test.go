package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalsight/ragtel/pkg/models"
	"github.com/evalsight/ragtel/pkg/testhelpers"
)

// runCommand executes the CLI against args and returns combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := BuildRootCmd("test")
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	var ec *exitCodeError
	require.ErrorAs(t, err, &ec)
	return ec.code
}

func datasetArgs(root string) []string {
	return []string{
		"--data-dir", filepath.Join(root, "data"),
		"--dictionary", filepath.Join(root, "data_dictionary.csv"),
	}
}

func TestRootRegistersAllSubcommands(t *testing.T) {
	root := BuildRootCmd("test")
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{
		"validate", "checksum", "flatten", "stats", "sample", "dict", "load", "version",
	})
}

func TestValidateCommandCleanDataset(t *testing.T) {
	root := testhelpers.WriteDataset(t)

	out, err := runCommand(t, append([]string{"validate"}, datasetArgs(root)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "rag_corpus_documents")
	assert.Contains(t, out, "3 rows")
	assert.Contains(t, out, "✅ Dataset validation passed.")
	assert.NotContains(t, out, "[error]")
}

func TestValidateCommandBrokenDatasetExitsOne(t *testing.T) {
	files := testhelpers.Files()
	files["data/rag_corpus_documents.csv"] += "d1,Duplicate,legal,manual,en,100,low,true,false,2024-11-04 09:00:00\n"
	root := t.TempDir()
	testhelpers.Write(t, root, files)

	out, err := runCommand(t, append([]string{"validate"}, datasetArgs(root)...)...)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "[error]")
	assert.Contains(t, out, "❌ Dataset validation failed: 1 errors, 0 warnings")
}

func TestValidateCommandWritesReport(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	args := append([]string{"validate", "--report", reportPath}, datasetArgs(root)...)
	out, err := runCommand(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to "+reportPath)

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report models.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, 3, report.TableRows[models.TableDocuments])
	assert.Equal(t, 6, report.TableRows[models.TableEvents])
	assert.Zero(t, report.ErrorCount)
}

func TestChecksumWriteVerifyRoundTrip(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	manifest := filepath.Join(root, "checksums.sha256")

	out, err := runCommand(t, "checksum", "write", "--root", root, "--out", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Wrote checksums for 7 files")

	out, err = runCommand(t, "checksum", "verify", "--root", root, "--manifest", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Checksums verified.")
}

func TestChecksumVerifyDetectsDrift(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	manifest := filepath.Join(root, "checksums.sha256")

	_, err := runCommand(t, "checksum", "write", "--root", root, "--out", manifest)
	require.NoError(t, err)

	readme := filepath.Join(root, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("tampered\n"), 0o644))

	out, err := runCommand(t, "checksum", "verify", "--root", root, "--manifest", manifest)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "README.md: changed")
	assert.Contains(t, out, "❌ Checksum verification failed: 1 files drifted")
}

func TestChecksumVerifyMissingManifestExitsTwo(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	manifest := filepath.Join(root, "checksums.sha256")

	out, err := runCommand(t, "checksum", "verify", "--root", root, "--manifest", manifest)
	assert.Equal(t, 2, exitCode(t, err))
	assert.Contains(t, out, "❌ Checksum manifest not found")
}

func TestFlattenCommandWritesWideTable(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	outPath := filepath.Join(t.TempDir(), "derived", "flat.csv")

	args := append([]string{"flatten", "--out", outPath}, datasetArgs(root)...)
	out, err := runCommand(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "(6 rows x 49 columns)")

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "run_id,example_id,chunk_id,rank,retrieval_score,is_relevant"))
	assert.Contains(t, lines[0], "latency_bucket")
	assert.Contains(t, lines[0], "cost_bucket")
}

func TestStatsCommandWritesMarkdown(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	outPath := filepath.Join(t.TempDir(), "docs", "dataset_stats.md")

	args := append([]string{"stats", "--out", outPath}, datasetArgs(root)...)
	out, err := runCommand(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Wrote stats to "+outPath)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	md := string(raw)
	assert.True(t, strings.HasPrefix(md, "# Dataset Stats\n"))
	assert.Contains(t, md, "- **Total rows:** **19** across 5 data tables (+ data dictionary)")
	assert.Contains(t, md, "## Cost percentiles (USD)")
}

func TestSampleCommandFullDrawValidates(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	sampleDir := filepath.Join(t.TempDir(), "sample")

	args := append([]string{"sample", "--out", sampleDir, "--events", "6", "--seed", "42"}, datasetArgs(root)...)
	out, err := runCommand(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Sample created:")
	assert.Contains(t, out, "- events:     6")
	assert.Contains(t, out, "Output dir: "+sampleDir)

	for _, spec := range models.DatasetTables() {
		assert.FileExists(t, filepath.Join(sampleDir, spec.FileName))
	}
	assert.FileExists(t, filepath.Join(sampleDir, "data_dictionary.csv"))

	// A full draw reproduces the release, so it passes the check battery.
	out, err = runCommand(t, "validate",
		"--data-dir", sampleDir,
		"--dictionary", filepath.Join(sampleDir, "data_dictionary.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Dataset validation passed.")
}

func TestSampleCommandIsDeterministic(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	first := filepath.Join(t.TempDir(), "a")
	second := filepath.Join(t.TempDir(), "b")

	for _, dir := range []string{first, second} {
		args := append([]string{"sample", "--out", dir, "--events", "3", "--seed", "7"}, datasetArgs(root)...)
		_, err := runCommand(t, args...)
		require.NoError(t, err)
	}

	for _, spec := range models.DatasetTables() {
		a, err := os.ReadFile(filepath.Join(first, spec.FileName))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, spec.FileName))
		require.NoError(t, err)
		assert.Equal(t, a, b, spec.FileName)
	}
}

func TestDictSyncCommand(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	docsDir := filepath.Join(root, "docs")
	t.Setenv("RAGTEL_DICTIONARY_FILE", filepath.Join(root, "data_dictionary.csv"))
	t.Setenv("RAGTEL_DOCS_DIR", docsDir)

	out, err := runCommand(t, "dict", "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Synced")

	src, err := os.ReadFile(filepath.Join(root, "data_dictionary.csv"))
	require.NoError(t, err)
	dst, err := os.ReadFile(filepath.Join(docsDir, "data_dictionary.csv"))
	require.NoError(t, err)
	assert.Equal(t, src, dst)
}

func TestLoadCommandRefusesInvalidDataset(t *testing.T) {
	files := testhelpers.Files()
	files["data/rag_corpus_documents.csv"] += "d1,Duplicate,legal,manual,en,100,low,true,false,2024-11-04 09:00:00\n"
	root := t.TempDir()
	testhelpers.Write(t, root, files)

	args := append([]string{"load"}, datasetArgs(root)...)
	out, err := runCommand(t, args...)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "❌ Refusing to load")
}

func TestLoadCommandForceOverridesValidation(t *testing.T) {
	files := testhelpers.Files()
	files["data/rag_corpus_documents.csv"] += "d1,Duplicate,legal,manual,en,100,low,true,false,2024-11-04 09:00:00\n"
	root := t.TempDir()
	testhelpers.Write(t, root, files)

	// Port 1 is never a Postgres; --force must get past validation and
	// fail on the database instead.
	args := append([]string{"load", "--force",
		"--database-url", "postgres://u:p@127.0.0.1:1/ragtel?sslmode=disable"}, datasetArgs(root)...)
	out, err := runCommand(t, args...)
	require.Error(t, err)
	var ec *exitCodeError
	assert.False(t, errors.As(err, &ec))
	assert.NotContains(t, out, "Refusing to load")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ragtel test\n", out)
}

func TestExecuteMapsExitCodes(t *testing.T) {
	runExecute := func(args ...string) int {
		old := os.Args
		os.Args = append([]string{"ragtel"}, args...)
		defer func() { os.Args = old }()
		return Execute("test")
	}

	assert.Equal(t, 0, runExecute("version"))

	manifest := filepath.Join(t.TempDir(), "checksums.sha256")
	assert.Equal(t, 2, runExecute("checksum", "verify", "--root", t.TempDir(), "--manifest", manifest))
}
