// Package checksum builds and verifies the release checksum manifest.
// Manifest lines are "<sha256 hex>  <path>" with two spaces, the format
// sha256sum ships with, so a release can also be verified with
// `sha256sum -c` outside this tool.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evalsight/ragtel/pkg/apperrors"
)

// Entry is one manifest line.
type Entry struct {
	Digest string
	Path   string
}

// Manifest is an ordered list of file digests, sorted case-insensitively
// by path so rebuilding from the same tree is byte-stable.
type Manifest struct {
	Entries []Entry
}

// File returns the streamed SHA-256 digest of one file as lowercase hex.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Build hashes every file under root matching the glob patterns.
// Paths are stored slash-separated and relative to root.
func Build(root string, patterns []string) (*Manifest, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", match, err)
			}
			if info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(root, match)
			if err != nil {
				return nil, fmt.Errorf("relativize %s: %w", match, err)
			}
			rel = filepath.ToSlash(rel)
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			paths = append(paths, rel)
		}
	}

	sort.Slice(paths, func(i, j int) bool {
		li, lj := strings.ToLower(paths[i]), strings.ToLower(paths[j])
		if li != lj {
			return li < lj
		}
		return paths[i] < paths[j]
	})

	m := &Manifest{Entries: make([]Entry, 0, len(paths))}
	for _, rel := range paths {
		digest, err := File(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, Entry{Digest: digest, Path: rel})
	}
	return m, nil
}

// Render returns the manifest text.
func (m *Manifest) Render() string {
	var b strings.Builder
	for _, e := range m.Entries {
		b.WriteString(e.Digest)
		b.WriteString("  ")
		b.WriteString(e.Path)
		b.WriteByte('\n')
	}
	return b.String()
}

// Write writes the manifest to path.
func (m *Manifest) Write(path string) error {
	if err := os.WriteFile(path, []byte(m.Render()), 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// Lookup returns the recorded digest for a path.
func (m *Manifest) Lookup(path string) (string, bool) {
	for _, e := range m.Entries {
		if e.Path == path {
			return e.Digest, true
		}
	}
	return "", false
}

// ReadManifest parses a manifest file. A missing file maps to
// ErrManifestMissing so callers can distinguish it from drift.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrManifestMissing, path)
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	m := &Manifest{}
	for i, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		sep := strings.Index(line, "  ")
		if sep <= 0 || sep+2 >= len(line) {
			return nil, fmt.Errorf("manifest %s: malformed line %d", path, i+1)
		}
		m.Entries = append(m.Entries, Entry{Digest: line[:sep], Path: line[sep+2:]})
	}
	return m, nil
}
