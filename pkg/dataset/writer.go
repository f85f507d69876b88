package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/evalsight/ragtel/pkg/models"
)

// WriteCSV writes a header and typed rows to path. Cells keep the exact
// text they were read with, so a written table round-trips byte-for-byte
// through the loader; null cells render empty.
func WriteCSV(path string, header []string, rows [][]models.Value) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	werr := w.Write(header)
	record := make([]string, len(header))
	for _, row := range rows {
		if werr != nil {
			break
		}
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = row[i].String()
			}
		}
		werr = w.Write(record)
	}
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}
	if werr != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, werr)
	}
	return f.Close()
}
