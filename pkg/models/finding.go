package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies a finding. Errors fail the run; warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Check names, in battery order. Column drift is produced by the loader,
// the rest by the integrity checker.
const (
	CheckPrimaryKey      = "primary_key_uniqueness"
	CheckForeignKey      = "foreign_key_integrity"
	CheckRankContiguity  = "rank_contiguity"
	CheckChunkContiguity = "chunk_index_contiguity"
	CheckDomain          = "domain_conformance"
	CheckType            = "type_conformance"
	CheckRowCount        = "row_count_sanity"
	CheckColumnDrift     = "column_drift"
)

// Finding is a single integrity observation. Findings are values, never
// errors: the battery runs to completion and collects all of them.
type Finding struct {
	Severity Severity `json:"severity"`
	Check    string   `json:"check"`
	Table    string   `json:"table"`
	Column   string   `json:"column,omitempty"`
	RowKey   string   `json:"row_key,omitempty"`
	Message  string   `json:"message"`
}

// Report aggregates the findings of one validation run. The run fails
// (non-zero exit) iff ErrorCount > 0.
type Report struct {
	ID          uuid.UUID      `json:"report_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	DataDir     string         `json:"data_dir"`
	TableRows   map[string]int `json:"table_rows"`

	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	Findings     []Finding `json:"findings"`
}

// NewReport creates an empty report for the given dataset directory.
func NewReport(dataDir string) *Report {
	return &Report{
		ID:          uuid.New(),
		GeneratedAt: time.Now().UTC(),
		DataDir:     dataDir,
		TableRows:   make(map[string]int),
		Findings:    make([]Finding, 0),
	}
}

// Add appends a finding and updates the severity counters.
func (r *Report) Add(f Finding) {
	r.Findings = append(r.Findings, f)
	switch f.Severity {
	case SeverityError:
		r.ErrorCount++
	default:
		r.WarningCount++
	}
}

// AddAll appends findings in order.
func (r *Report) AddAll(findings []Finding) {
	for _, f := range findings {
		r.Add(f)
	}
}

// HasErrors reports whether any error-severity finding was recorded.
func (r *Report) HasErrors() bool {
	return r.ErrorCount > 0
}
