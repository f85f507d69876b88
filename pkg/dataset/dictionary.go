package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/evalsight/ragtel/pkg/apperrors"
	"github.com/evalsight/ragtel/pkg/models"
)

// ReadDictionary reads the data dictionary CSV. Columns are matched by
// header name so their order in the file does not matter; table_name,
// column_name and dtype are required, the rest are optional.
func ReadDictionary(path string) ([]models.DictionaryEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrTableFileMissing, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read %s: file is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{"table_name", "column_name", "dtype"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("read %s: missing required column %q", path, required)
		}
	}

	cell := func(record []string, name string) string {
		if i, ok := idx[name]; ok && i < len(record) {
			return record[i]
		}
		return ""
	}

	var entries []models.DictionaryEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		entries = append(entries, models.DictionaryEntry{
			TableName:     cell(record, "table_name"),
			ColumnName:    cell(record, "column_name"),
			Dtype:         models.Dtype(cell(record, "dtype")),
			AllowedValues: cell(record, "allowed_values"),
			Description:   cell(record, "description"),
		})
	}
	return entries, nil
}
