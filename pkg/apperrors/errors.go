package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrDataDirNotFound  = errors.New("data directory not found")
	ErrTableFileMissing = errors.New("required table file missing")
	ErrManifestMissing  = errors.New("checksum manifest missing")
	ErrManifestMismatch = errors.New("checksum manifest does not match current files")
	ErrValidationFailed = errors.New("dataset validation failed")
)

// SchemaError reports a malformed data dictionary: duplicate
// (table, column) entries, an unknown dtype, or an allowed-values
// expression that cannot be parsed. It always aborts the run.
type SchemaError struct {
	Table  string
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Table == "" && e.Column == "" {
		return fmt.Sprintf("data dictionary: %s", e.Reason)
	}
	return fmt.Sprintf("data dictionary [%s.%s]: %s", e.Table, e.Column, e.Reason)
}

// LoadError reports a table file that could not be read, or a cell value
// that could not be coerced to its declared dtype. Row is the 1-based data
// row (header excluded); it is 0 when the failure is not value-specific.
// It always aborts the run.
type LoadError struct {
	Table  string
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("load [%s]: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("load [%s.%s] row %d: cannot coerce %q: %v", e.Table, e.Column, e.Row, e.Value, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
