package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/apperrors"
	"github.com/evalsight/ragtel/pkg/models"
	"github.com/evalsight/ragtel/pkg/schema"
)

// Dataset is the full release loaded into memory: the five linked tables
// plus the dictionary that governs them.
type Dataset struct {
	Dir        string
	Tables     map[string]*Table
	Dictionary []models.DictionaryEntry
	Registry   *schema.Registry
}

// Table returns a loaded table by name, or nil.
func (d *Dataset) Table(name string) *Table {
	return d.Tables[name]
}

// LoadDataset reads the dictionary at dictPath, builds the schema
// registry from it, and loads every dataset table from dir. A missing
// data directory or table file aborts; drift between files and the
// dictionary is carried on each table as warnings.
func LoadDataset(dir, dictPath string, logger *zap.Logger) (*Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDataDirNotFound, dir)
	}

	entries, err := ReadDictionary(dictPath)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	registry, err := schema.Load(entries)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}

	loader := NewLoader(registry, logger)
	ds := &Dataset{
		Dir:        dir,
		Tables:     make(map[string]*Table),
		Dictionary: entries,
		Registry:   registry,
	}
	for _, spec := range models.DatasetTables() {
		table, err := loader.Load(spec.Name, filepath.Join(dir, spec.FileName))
		if err != nil {
			return nil, err
		}
		ds.Tables[spec.Name] = table
	}
	return ds, nil
}
