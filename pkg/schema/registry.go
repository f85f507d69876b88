package schema

import (
	"fmt"

	"github.com/evalsight/ragtel/pkg/apperrors"
	"github.com/evalsight/ragtel/pkg/models"
)

// Entry is a dictionary declaration joined with its parsed domain.
type Entry struct {
	models.DictionaryEntry

	// Domain is nil when allowed_values is empty.
	Domain *Domain
}

// Registry holds the declared schema for every dataset table, keyed by
// (table, column). It is built once from the data dictionary and then
// consulted by the loader and the check battery.
type Registry struct {
	entries map[string]map[string]Entry
	columns map[string][]string
	tables  []string
}

// Load validates dictionary rows and builds a Registry. Any malformed
// declaration aborts with a SchemaError; a dictionary that cannot be
// trusted must not drive validation.
func Load(rows []models.DictionaryEntry) (*Registry, error) {
	reg := &Registry{
		entries: make(map[string]map[string]Entry),
		columns: make(map[string][]string),
	}

	for _, row := range rows {
		if row.TableName == "" || row.ColumnName == "" {
			return nil, &apperrors.SchemaError{
				Table:  row.TableName,
				Column: row.ColumnName,
				Reason: "table_name and column_name are required",
			}
		}
		if !models.IsValidDtype(row.Dtype) {
			return nil, &apperrors.SchemaError{
				Table:  row.TableName,
				Column: row.ColumnName,
				Reason: fmt.Sprintf("unknown dtype %q", row.Dtype),
			}
		}

		domain, err := ParseDomain(row.AllowedValues)
		if err != nil {
			return nil, &apperrors.SchemaError{
				Table:  row.TableName,
				Column: row.ColumnName,
				Reason: fmt.Sprintf("invalid allowed_values: %v", err),
			}
		}
		if domain != nil && !domain.IsSet() && !isNumeric(row.Dtype) {
			return nil, &apperrors.SchemaError{
				Table:  row.TableName,
				Column: row.ColumnName,
				Reason: fmt.Sprintf("numeric constraint %q on %s column", row.AllowedValues, row.Dtype),
			}
		}

		cols, seen := reg.entries[row.TableName]
		if !seen {
			cols = make(map[string]Entry)
			reg.entries[row.TableName] = cols
			reg.tables = append(reg.tables, row.TableName)
		}
		if _, dup := cols[row.ColumnName]; dup {
			return nil, &apperrors.SchemaError{
				Table:  row.TableName,
				Column: row.ColumnName,
				Reason: "duplicate dictionary entry",
			}
		}
		cols[row.ColumnName] = Entry{DictionaryEntry: row, Domain: domain}
		reg.columns[row.TableName] = append(reg.columns[row.TableName], row.ColumnName)
	}

	return reg, nil
}

func isNumeric(d models.Dtype) bool {
	return d == models.DtypeInt || d == models.DtypeFloat
}

// Lookup returns the declaration for a column, if the dictionary has one.
func (r *Registry) Lookup(table, column string) (Entry, bool) {
	e, ok := r.entries[table][column]
	return e, ok
}

// Columns returns a table's declared columns in dictionary order.
func (r *Registry) Columns(table string) []Entry {
	names := r.columns[table]
	out := make([]Entry, 0, len(names))
	for _, n := range names {
		out = append(out, r.entries[table][n])
	}
	return out
}

// Tables returns the table names in dictionary order.
func (r *Registry) Tables() []string {
	return r.tables
}

// Len returns the number of column declarations.
func (r *Registry) Len() int {
	n := 0
	for _, cols := range r.entries {
		n += len(cols)
	}
	return n
}
