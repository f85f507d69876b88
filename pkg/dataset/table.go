package dataset

import (
	"strings"

	"github.com/evalsight/ragtel/pkg/models"
)

// keySep joins key column values into a composite key. The unit separator
// cannot appear in CSV cell text, so joined keys never collide.
const keySep = "\x1f"

// Column is one loaded column with its declared and observed dtypes.
// Declared comes from the data dictionary; Observed is inferred from the
// raw cell values. Columns absent from the dictionary are declared text.
type Column struct {
	Name     string
	Declared models.Dtype
	Observed models.Dtype
}

// Table is a fully loaded dataset table.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]models.Value

	// Drift holds header-vs-dictionary warnings collected at load time.
	Drift []models.Finding

	colIndex map[string]int
}

func newTable(name string, cols []Column) *Table {
	t := &Table{
		Name:     name,
		Columns:  cols,
		colIndex: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		t.colIndex[c.Name] = i
	}
	return t
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// Col returns the index of a column by name.
func (t *Table) Col(name string) (int, bool) {
	i, ok := t.colIndex[name]
	return i, ok
}

// Value returns the cell at (row, column name).
func (t *Table) Value(row int, name string) (models.Value, bool) {
	i, ok := t.colIndex[name]
	if !ok || row < 0 || row >= len(t.Rows) {
		return models.Value{}, false
	}
	return t.Rows[row][i], true
}

// ColumnNames returns the header in file order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// KeyString joins the named columns of a row into a composite key.
// Null cells contribute an empty component, so two rows that are both
// null in a key column compare equal, matching how duplicate detection
// treats missing values.
func (t *Table) KeyString(row int, cols []string) string {
	parts := make([]string, len(cols))
	for i, name := range cols {
		if v, ok := t.Value(row, name); ok {
			parts[i] = v.String()
		}
	}
	return strings.Join(parts, keySep)
}
