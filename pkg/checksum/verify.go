package checksum

import (
	"path/filepath"
)

// DriftReason classifies one verification failure.
type DriftReason string

const (
	DriftChanged DriftReason = "changed"
	DriftMissing DriftReason = "missing"
	DriftAdded   DriftReason = "added"
)

// Drift is one file whose state disagrees with the manifest.
type Drift struct {
	Path   string
	Reason DriftReason
	Want   string
	Got    string
}

// Verify rebuilds digests for the current tree and compares them with
// the manifest at manifestPath. It returns one Drift per disagreement:
// recorded files that changed or disappeared, then files on disk the
// manifest does not cover. An empty slice means the tree is intact.
func Verify(root string, patterns []string, manifestPath string) ([]Drift, error) {
	recorded, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	current, err := Build(root, patterns)
	if err != nil {
		return nil, err
	}

	currentByPath := make(map[string]string, len(current.Entries))
	for _, e := range current.Entries {
		currentByPath[e.Path] = e.Digest
	}

	var drifts []Drift
	for _, e := range recorded.Entries {
		got, ok := currentByPath[e.Path]
		if !ok {
			// The glob may simply not cover it anymore; check disk directly.
			if digest, ferr := File(filepath.Join(root, filepath.FromSlash(e.Path))); ferr == nil {
				got, ok = digest, true
			}
		}
		switch {
		case !ok:
			drifts = append(drifts, Drift{Path: e.Path, Reason: DriftMissing, Want: e.Digest})
		case got != e.Digest:
			drifts = append(drifts, Drift{Path: e.Path, Reason: DriftChanged, Want: e.Digest, Got: got})
		}
	}

	recordedPaths := make(map[string]struct{}, len(recorded.Entries))
	for _, e := range recorded.Entries {
		recordedPaths[e.Path] = struct{}{}
	}
	for _, e := range current.Entries {
		if _, ok := recordedPaths[e.Path]; !ok {
			drifts = append(drifts, Drift{Path: e.Path, Reason: DriftAdded, Got: e.Digest})
		}
	}
	return drifts, nil
}
