package checksum

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalsight/ragtel/pkg/apperrors"
	"github.com/evalsight/ragtel/pkg/testhelpers"
)

var testPatterns = []string{"data/*.csv", "data_dictionary.csv", "README.md"}

func TestFileDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	digest, err := File(path)
	require.NoError(t, err)
	// sha256 of "hello\n"
	assert.Equal(t, "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03", digest)
}

func TestBuildIsDeterministic(t *testing.T) {
	root := testhelpers.WriteDataset(t)

	first, err := Build(root, testPatterns)
	require.NoError(t, err)
	second, err := Build(root, testPatterns)
	require.NoError(t, err)

	assert.Equal(t, first.Render(), second.Render())
	require.Len(t, first.Entries, 7)

	// Case-insensitive path order, slash-separated, two-space format.
	lines := strings.Split(strings.TrimRight(first.Render(), "\n"), "\n")
	require.Len(t, lines, 7)
	var prev string
	for _, line := range lines {
		parts := strings.SplitN(line, "  ", 2)
		require.Len(t, parts, 2)
		assert.Len(t, parts[0], 64)
		assert.NotContains(t, parts[1], "\\")
		if prev != "" {
			assert.LessOrEqual(t, strings.ToLower(prev), strings.ToLower(parts[1]))
		}
		prev = parts[1]
	}
}

func TestManifestRoundTrip(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	built, err := Build(root, testPatterns)
	require.NoError(t, err)

	manifestPath := filepath.Join(root, "checksums.sha256")
	require.NoError(t, built.Write(manifestPath))

	read, err := ReadManifest(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, built.Entries, read.Entries)

	digest, ok := read.Lookup("data/rag_corpus_chunks.csv")
	assert.True(t, ok)
	assert.Len(t, digest, 64)
}

func TestVerifyCleanTree(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	built, err := Build(root, testPatterns)
	require.NoError(t, err)
	manifestPath := filepath.Join(root, "checksums.sha256")
	require.NoError(t, built.Write(manifestPath))

	drifts, err := Verify(root, testPatterns, manifestPath)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestVerifyDetectsEdit(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	built, err := Build(root, testPatterns)
	require.NoError(t, err)
	manifestPath := filepath.Join(root, "checksums.sha256")
	require.NoError(t, built.Write(manifestPath))

	// Flip one byte in one recorded file.
	target := filepath.Join(root, "README.md")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	data[0] = '#' + 1
	require.NoError(t, os.WriteFile(target, data, 0o644))

	drifts, err := Verify(root, testPatterns, manifestPath)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, "README.md", drifts[0].Path)
	assert.Equal(t, DriftChanged, drifts[0].Reason)
	assert.NotEqual(t, drifts[0].Want, drifts[0].Got)
}

func TestVerifyDetectsMissingAndAdded(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	built, err := Build(root, testPatterns)
	require.NoError(t, err)
	manifestPath := filepath.Join(root, "checksums.sha256")
	require.NoError(t, built.Write(manifestPath))

	require.NoError(t, os.Remove(filepath.Join(root, "README.md")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "extra.csv"), []byte("a,b\n"), 0o644))

	drifts, err := Verify(root, testPatterns, manifestPath)
	require.NoError(t, err)
	require.Len(t, drifts, 2)

	byPath := make(map[string]Drift)
	for _, d := range drifts {
		byPath[d.Path] = d
	}
	assert.Equal(t, DriftMissing, byPath["README.md"].Reason)
	assert.Equal(t, DriftAdded, byPath["data/extra.csv"].Reason)
}

func TestVerifyMissingManifest(t *testing.T) {
	root := testhelpers.WriteDataset(t)
	_, err := Verify(root, testPatterns, filepath.Join(root, "checksums.sha256"))
	require.ErrorIs(t, err, apperrors.ErrManifestMissing)
}
