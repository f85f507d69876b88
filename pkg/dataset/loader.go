package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/apperrors"
	"github.com/evalsight/ragtel/pkg/models"
	"github.com/evalsight/ragtel/pkg/schema"
)

// datetimeLayouts are tried in order when parsing datetime cells.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Loader reads dataset CSV files and coerces cells to their declared
// dtypes. Cells that cannot be coerced abort the load with a LoadError;
// bad data must never flow silently into the checks downstream.
type Loader struct {
	registry *schema.Registry
	logger   *zap.Logger
}

func NewLoader(registry *schema.Registry, logger *zap.Logger) *Loader {
	return &Loader{
		registry: registry,
		logger:   logger.Named("loader"),
	}
}

// Load reads one table from path. The header is reconciled against the
// dictionary: drift in either direction is recorded as warnings on the
// returned table, and loading proceeds on the columns the file has.
func (l *Loader) Load(tableName, path string) (*Table, error) {
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

	cols := make([]Column, len(header))
	for i, name := range header {
		declared := models.DtypeText
		if entry, ok := l.registry.Lookup(tableName, name); ok {
			declared = entry.Dtype
		}
		cols[i] = Column{Name: name, Declared: declared}
	}
	table := newTable(tableName, cols)
	table.Drift = l.headerDrift(tableName, header)

	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rowNum++

		row := make([]models.Value, len(record))
		for i, raw := range record {
			v, err := coerce(raw, cols[i].Declared)
			if err != nil {
				return nil, &apperrors.LoadError{
					Table:  tableName,
					Column: cols[i].Name,
					Row:    rowNum,
					Value:  raw,
					Err:    err,
				}
			}
			row[i] = v
		}
		table.Rows = append(table.Rows, row)
	}

	for i := range table.Columns {
		table.Columns[i].Observed = observeDtype(table, i)
	}

	l.logger.Debug("loaded table",
		zap.String("table", tableName),
		zap.Int("rows", table.RowCount()),
		zap.Int("columns", len(table.Columns)))
	return table, nil
}

// headerDrift compares the file header against the dictionary and emits
// a warning per column present on only one side.
func (l *Loader) headerDrift(tableName string, header []string) []models.Finding {
	inFile := make(map[string]struct{}, len(header))
	for _, name := range header {
		inFile[name] = struct{}{}
	}

	var drift []models.Finding
	declared := l.registry.Columns(tableName)
	inDict := make(map[string]struct{}, len(declared))
	for _, entry := range declared {
		inDict[entry.ColumnName] = struct{}{}
		if _, ok := inFile[entry.ColumnName]; !ok {
			drift = append(drift, models.Finding{
				Severity: models.SeverityWarning,
				Check:    models.CheckColumnDrift,
				Table:    tableName,
				Column:   entry.ColumnName,
				Message:  "declared in dictionary but missing from file",
			})
		}
	}
	for _, name := range header {
		if _, ok := inDict[name]; !ok {
			drift = append(drift, models.Finding{
				Severity: models.SeverityWarning,
				Check:    models.CheckColumnDrift,
				Table:    tableName,
				Column:   name,
				Message:  "present in file but not declared in dictionary",
			})
		}
	}
	for _, f := range drift {
		l.logger.Warn("column drift", zap.String("table", f.Table), zap.String("column", f.Column), zap.String("detail", f.Message))
	}
	return drift
}

// coerce converts a raw cell to a typed Value. Empty cells are null
// regardless of dtype.
func coerce(raw string, dtype models.Dtype) (models.Value, error) {
	if raw == "" {
		return models.NullValue(dtype), nil
	}

	switch dtype {
	case models.DtypeInt:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return models.Value{}, fmt.Errorf("not an integer")
		}
		v := models.IntValue(i)
		v.Raw = raw
		return v, nil
	case models.DtypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return models.Value{}, fmt.Errorf("not a number")
		}
		v := models.FloatValue(f)
		v.Raw = raw
		return v, nil
	case models.DtypeBool:
		b, ok := parseBool(raw)
		if !ok {
			return models.Value{}, fmt.Errorf("not a boolean")
		}
		v := models.BoolValue(b)
		v.Raw = raw
		return v, nil
	case models.DtypeDatetime:
		t, ok := parseDatetime(raw)
		if !ok {
			return models.Value{}, fmt.Errorf("not a timestamp")
		}
		return models.Value{Raw: raw, Kind: models.DtypeDatetime, Time: t}, nil
	default:
		return models.TextValue(raw), nil
	}
}

// parseBool accepts the four spellings the dataset uses.
func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true":
		return true, true
	case "0", "false":
		return false, true
	default:
		return false, false
	}
}

func parseDatetime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// observeDtype infers the narrowest dtype that fits every non-null raw
// value in a column. An all-null column observes its declared dtype.
func observeDtype(t *Table, col int) models.Dtype {
	isBool, isInt, isFloat, isDatetime := true, true, true, true
	sawValue := false

	for _, row := range t.Rows {
		v := row[col]
		if v.Null {
			continue
		}
		sawValue = true
		raw := v.Raw
		if isBool {
			if _, ok := parseBool(raw); !ok {
				isBool = false
			}
		}
		if isInt {
			if _, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
				isFloat = false
			}
		}
		if isDatetime {
			if _, ok := parseDatetime(raw); !ok {
				isDatetime = false
			}
		}
		if !isBool && !isInt && !isFloat && !isDatetime {
			break
		}
	}

	if !sawValue {
		return t.Columns[col].Declared
	}
	switch {
	case isBool:
		return models.DtypeBool
	case isInt:
		return models.DtypeInt
	case isFloat:
		return models.DtypeFloat
	case isDatetime:
		return models.DtypeDatetime
	default:
		return models.DtypeText
	}
}
