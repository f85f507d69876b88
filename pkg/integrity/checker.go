package integrity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/models"
)

// CheckConfig tunes the row-count sanity check. ExpectedRows is keyed by
// table name; Tolerance is the allowed relative deviation (0.5 = 50%).
type CheckConfig struct {
	ExpectedRows map[string]int
	Tolerance    float64
}

// Checker runs the integrity battery over a loaded dataset. Checks never
// stop at the first problem; the full set of findings is what a release
// review needs.
type Checker struct {
	cfg    CheckConfig
	logger *zap.Logger
}

func NewChecker(cfg CheckConfig, logger *zap.Logger) *Checker {
	return &Checker{
		cfg:    cfg,
		logger: logger.Named("integrity"),
	}
}

// Check runs every check in a fixed order and returns the full report.
// Load-time column drift is surfaced first, then the battery proper.
func (c *Checker) Check(ds *dataset.Dataset) *models.Report {
	report := models.NewReport(ds.Dir)

	for _, spec := range models.DatasetTables() {
		table := ds.Table(spec.Name)
		if table == nil {
			continue
		}
		report.TableRows[spec.Name] = table.RowCount()
		report.AddAll(table.Drift)
	}

	c.checkPrimaryKeys(ds, report)
	c.checkForeignKeys(ds, report)
	c.checkRankContiguity(ds, report)
	c.checkChunkContiguity(ds, report)
	c.checkDomains(ds, report)
	c.checkTypes(ds, report)
	c.checkRowCounts(ds, report)

	c.logger.Info("check battery finished",
		zap.String("report_id", report.ID.String()),
		zap.Int("errors", report.ErrorCount),
		zap.Int("warnings", report.WarningCount))
	return report
}

// checkPrimaryKeys flags every key value that appears on more than one
// row, one finding per duplicated key.
func (c *Checker) checkPrimaryKeys(ds *dataset.Dataset, report *models.Report) {
	for _, spec := range models.DatasetTables() {
		table := ds.Table(spec.Name)
		if table == nil || !hasColumns(table, spec.KeyColumns) {
			continue
		}

		counts := make(map[string]int)
		var order []string
		display := make(map[string]string)
		for row := range table.Rows {
			key := table.KeyString(row, spec.KeyColumns)
			if counts[key] == 0 {
				order = append(order, key)
				display[key] = displayKey(table, row, spec.KeyColumns)
			}
			counts[key]++
		}
		for _, key := range order {
			if n := counts[key]; n > 1 {
				report.Add(models.Finding{
					Severity: models.SeverityError,
					Check:    models.CheckPrimaryKey,
					Table:    spec.Name,
					Column:   strings.Join(spec.KeyColumns, ","),
					RowKey:   display[key],
					Message:  fmt.Sprintf("primary key duplicated across %d rows", n),
				})
			}
		}
	}
}

// checkForeignKeys flags each distinct child value with no parent row,
// in first-occurrence order.
func (c *Checker) checkForeignKeys(ds *dataset.Dataset, report *models.Report) {
	for _, fk := range models.DatasetForeignKeys() {
		child := ds.Table(fk.ChildTable)
		parent := ds.Table(fk.ParentTable)
		if child == nil || parent == nil {
			continue
		}
		if !hasColumns(child, []string{fk.ChildColumn}) || !hasColumns(parent, []string{fk.ParentColumn}) {
			continue
		}

		parents := make(map[string]struct{}, parent.RowCount())
		for row := range parent.Rows {
			v, _ := parent.Value(row, fk.ParentColumn)
			if !v.Null {
				parents[v.String()] = struct{}{}
			}
		}

		seen := make(map[string]struct{})
		for row := range child.Rows {
			v, _ := child.Value(row, fk.ChildColumn)
			if v.Null {
				continue
			}
			key := v.String()
			if _, ok := parents[key]; ok {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			report.Add(models.Finding{
				Severity: models.SeverityError,
				Check:    models.CheckForeignKey,
				Table:    fk.ChildTable,
				Column:   fk.ChildColumn,
				RowKey:   key,
				Message:  fmt.Sprintf("references missing %s.%s", fk.ParentTable, fk.ParentColumn),
			})
		}
	}
}

// checkRankContiguity verifies that each run's ranks form exactly 1..n.
func (c *Checker) checkRankContiguity(ds *dataset.Dataset, report *models.Report) {
	table := ds.Table(models.TableEvents)
	if table == nil || !hasColumns(table, []string{models.ColRunID, models.ColRank}) {
		return
	}
	c.checkContiguousGroups(table, models.ColRunID, models.ColRank, 1,
		models.CheckRankContiguity, report)
}

// checkChunkContiguity verifies that each document's chunk indexes form
// exactly 0..n-1.
func (c *Checker) checkChunkContiguity(ds *dataset.Dataset, report *models.Report) {
	table := ds.Table(models.TableChunks)
	if table == nil || !hasColumns(table, []string{models.ColDocID, models.ColChunkIndex}) {
		return
	}
	c.checkContiguousGroups(table, models.ColDocID, models.ColChunkIndex, 0,
		models.CheckChunkContiguity, report)
}

func (c *Checker) checkContiguousGroups(table *dataset.Table, groupCol, valueCol string, start int64, check string, report *models.Report) {
	type group struct {
		values  []int64
		sawNull bool
	}
	groups := make(map[string]*group)
	var order []string

	for row := range table.Rows {
		key, _ := table.Value(row, groupCol)
		g, ok := groups[key.String()]
		if !ok {
			g = &group{}
			groups[key.String()] = g
			order = append(order, key.String())
		}
		v, _ := table.Value(row, valueCol)
		if v.Null {
			g.sawNull = true
			continue
		}
		g.values = append(g.values, v.Int)
	}

	for _, key := range order {
		g := groups[key]
		if !g.sawNull && contiguousFrom(g.values, start) {
			continue
		}
		n := len(g.values)
		if g.sawNull {
			n = n + 1
		}
		report.Add(models.Finding{
			Severity: models.SeverityError,
			Check:    check,
			Table:    table.Name,
			Column:   valueCol,
			RowKey:   key,
			Message: fmt.Sprintf("expected %s %d..%d, got %s",
				valueCol, start, start+int64(n)-1, formatIntMultiset(g.values, g.sawNull)),
		})
	}
}

// contiguousFrom reports whether vals is exactly the multiset
// {start .. start+len-1}.
func contiguousFrom(vals []int64, start int64) bool {
	sorted := make([]int64, len(vals))
	copy(sorted, vals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, v := range sorted {
		if v != start+int64(i) {
			return false
		}
	}
	return true
}

// checkDomains validates cell values against declared allowed_values,
// one finding per offending column with sample values.
func (c *Checker) checkDomains(ds *dataset.Dataset, report *models.Report) {
	for _, spec := range models.DatasetTables() {
		table := ds.Table(spec.Name)
		if table == nil {
			continue
		}
		for _, col := range table.Columns {
			entry, ok := ds.Registry.Lookup(spec.Name, col.Name)
			if !ok || entry.Domain == nil {
				continue
			}

			var samples []string
			seen := make(map[string]struct{})
			offending := 0
			for row := range table.Rows {
				v, _ := table.Value(row, col.Name)
				if v.Null {
					continue
				}
				if entry.Domain.IsSet() {
					if entry.Domain.ContainsString(v.String()) {
						continue
					}
				} else {
					f, ok := v.AsFloat()
					if !ok || entry.Domain.ContainsNumber(f) {
						continue
					}
				}
				offending++
				key := strings.TrimSpace(v.String())
				if _, dup := seen[key]; !dup && len(samples) < 5 {
					seen[key] = struct{}{}
					samples = append(samples, key)
				}
			}
			if offending == 0 {
				continue
			}
			report.Add(models.Finding{
				Severity: models.SeverityError,
				Check:    models.CheckDomain,
				Table:    spec.Name,
				Column:   col.Name,
				Message: fmt.Sprintf("%d rows outside allowed values %s, e.g. %s",
					offending, entry.Domain, strings.Join(samples, ", ")),
			})
		}
	}
}

// checkTypes warns when a column's observed dtype is incompatible with
// its declaration.
func (c *Checker) checkTypes(ds *dataset.Dataset, report *models.Report) {
	for _, spec := range models.DatasetTables() {
		table := ds.Table(spec.Name)
		if table == nil {
			continue
		}
		for _, col := range table.Columns {
			if _, ok := ds.Registry.Lookup(spec.Name, col.Name); !ok {
				continue
			}
			if col.Declared.CompatibleWith(col.Observed) {
				continue
			}
			report.Add(models.Finding{
				Severity: models.SeverityWarning,
				Check:    models.CheckType,
				Table:    spec.Name,
				Column:   col.Name,
				Message:  fmt.Sprintf("declared %s but observed %s", col.Declared, col.Observed),
			})
		}
	}
}

// checkRowCounts warns on empty tables and on counts that drift beyond
// the configured tolerance from an expected count.
func (c *Checker) checkRowCounts(ds *dataset.Dataset, report *models.Report) {
	for _, spec := range models.DatasetTables() {
		table := ds.Table(spec.Name)
		if table == nil {
			continue
		}
		rows := table.RowCount()
		if rows == 0 {
			report.Add(models.Finding{
				Severity: models.SeverityWarning,
				Check:    models.CheckRowCount,
				Table:    spec.Name,
				Message:  "table is empty",
			})
			continue
		}
		expected, ok := c.cfg.ExpectedRows[spec.Name]
		if !ok || expected <= 0 {
			continue
		}
		deviation := math.Abs(float64(rows)-float64(expected)) / float64(expected)
		if deviation > c.cfg.Tolerance {
			report.Add(models.Finding{
				Severity: models.SeverityWarning,
				Check:    models.CheckRowCount,
				Table:    spec.Name,
				Message: fmt.Sprintf("row count %d deviates %.0f%% from expected %d (tolerance %.0f%%)",
					rows, deviation*100, expected, c.cfg.Tolerance*100),
			})
		}
	}
}

func hasColumns(table *dataset.Table, cols []string) bool {
	for _, name := range cols {
		if _, ok := table.Col(name); !ok {
			return false
		}
	}
	return true
}

// displayKey renders a row's key columns for finding output.
func displayKey(table *dataset.Table, row int, cols []string) string {
	parts := make([]string, len(cols))
	for i, name := range cols {
		v, _ := table.Value(row, name)
		parts[i] = v.String()
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func formatIntMultiset(vals []int64, sawNull bool) string {
	sorted := make([]int64, len(vals))
	copy(sorted, vals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, 0, len(sorted)+1)
	for i, v := range sorted {
		if i == 10 {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, fmt.Sprintf("%d", v))
	}
	if sawNull {
		parts = append(parts, "null")
	}
	return "[" + strings.Join(parts, " ") + "]"
}
