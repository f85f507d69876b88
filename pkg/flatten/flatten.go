// Package flatten denormalizes the five linked tables into one
// analysis-ready events table: every retrieval event joined with its
// run, chunk, document and scenario, plus derived latency and cost
// buckets. One output row per event, always.
package flatten

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/models"
)

// Flat is the denormalized result.
type Flat struct {
	Header []string
	Rows   [][]models.Value
}

type joinSpec struct {
	table  string
	key    string
	suffix string
}

// The join chain mirrors the grain of the data: events to runs, then up
// the corpus side to chunks and documents, then to scenarios. Suffixes
// apply only when a joined column name collides with one already in the
// flat header.
var joinChain = []joinSpec{
	{table: models.TableRuns, key: models.ColRunID, suffix: "_run"},
	{table: models.TableChunks, key: models.ColChunkID, suffix: "_chunk"},
	{table: models.TableDocuments, key: models.ColDocID, suffix: "_doc"},
	{table: models.TableScenarios, key: models.ColScenarioID, suffix: "_scenario"},
}

type bucketEdge struct {
	upper float64
	label string
}

// Bucket edges are half-open on the left, matching how the released
// analysis snippets group these metrics.
var (
	latencyLower   = -0.1
	latencyBuckets = []bucketEdge{
		{250, "<=250"},
		{500, "251-500"},
		{1000, "501-1000"},
		{2000, "1001-2000"},
		{5000, "2001-5000"},
	}

	costLower   = -0.000001
	costBuckets = []bucketEdge{
		{0.001, "<=0.001"},
		{0.01, "0.001-0.01"},
		{0.05, "0.01-0.05"},
		{0.1, "0.05-0.1"},
		{0.25, "0.1-0.25"},
	}
)

// Builder builds the flat table.
type Builder struct {
	logger *zap.Logger
}

func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger.Named("flatten")}
}

// Build joins the loaded tables left-to-right. Events with no matching
// parent row keep their own columns and get nulls for the joined ones;
// a parent matched by several events is reused for each (many-to-one).
func (b *Builder) Build(ds *dataset.Dataset) (*Flat, error) {
	events := ds.Table(models.TableEvents)
	if events == nil {
		return nil, fmt.Errorf("flatten: %s not loaded", models.TableEvents)
	}

	flat := &Flat{Header: append([]string(nil), events.ColumnNames()...)}
	flat.Rows = make([][]models.Value, events.RowCount())
	for i, row := range events.Rows {
		flat.Rows[i] = append([]models.Value(nil), row...)
	}

	headerSet := make(map[string]struct{}, len(flat.Header))
	for _, name := range flat.Header {
		headerSet[name] = struct{}{}
	}

	for _, join := range joinChain {
		right := ds.Table(join.table)
		if right == nil {
			return nil, fmt.Errorf("flatten: %s not loaded", join.table)
		}
		keyIdx, ok := indexOf(flat.Header, join.key)
		if !ok {
			return nil, fmt.Errorf("flatten: join key %s not present when joining %s", join.key, join.table)
		}
		if _, ok := right.Col(join.key); !ok {
			return nil, fmt.Errorf("flatten: %s has no %s column", join.table, join.key)
		}

		// First matching row wins for duplicated keys.
		matches := make(map[string]int, right.RowCount())
		for row := range right.Rows {
			v, _ := right.Value(row, join.key)
			if v.Null {
				continue
			}
			if _, seen := matches[v.String()]; !seen {
				matches[v.String()] = row
			}
		}

		var joined []dataset.Column
		for _, col := range right.Columns {
			if col.Name == join.key {
				continue
			}
			name := col.Name
			if _, taken := headerSet[name]; taken {
				name = name + join.suffix
			}
			headerSet[name] = struct{}{}
			flat.Header = append(flat.Header, name)
			joined = append(joined, col)
		}

		for i := range flat.Rows {
			key := flat.Rows[i][keyIdx]
			rightRow, found := -1, false
			if !key.Null {
				rightRow, found = matches[key.String()]
			}
			for _, col := range joined {
				if found {
					v, _ := right.Value(rightRow, col.Name)
					flat.Rows[i] = append(flat.Rows[i], v)
				} else {
					flat.Rows[i] = append(flat.Rows[i], models.NullValue(col.Declared))
				}
			}
		}
	}

	b.appendBucket(flat, "total_latency_ms", "latency_bucket", latencyLower, latencyBuckets, ">5000")
	b.appendBucket(flat, "total_cost_usd", "cost_bucket", costLower, costBuckets, ">0.25")

	b.logger.Debug("flat table built",
		zap.Int("rows", len(flat.Rows)),
		zap.Int("columns", len(flat.Header)))
	return flat, nil
}

func (b *Builder) appendBucket(flat *Flat, source, name string, lower float64, edges []bucketEdge, overflow string) {
	srcIdx, ok := indexOf(flat.Header, source)
	if !ok {
		b.logger.Warn("bucket source column missing", zap.String("column", source))
		return
	}
	flat.Header = append(flat.Header, name)
	for i := range flat.Rows {
		v := flat.Rows[i][srcIdx]
		label, ok := bucketize(v, lower, edges, overflow)
		if !ok {
			flat.Rows[i] = append(flat.Rows[i], models.NullValue(models.DtypeText))
			continue
		}
		flat.Rows[i] = append(flat.Rows[i], models.TextValue(label))
	}
}

func bucketize(v models.Value, lower float64, edges []bucketEdge, overflow string) (string, bool) {
	f, ok := v.AsFloat()
	if !ok || f <= lower {
		return "", false
	}
	for _, e := range edges {
		if f <= e.upper {
			return e.label, true
		}
	}
	return overflow, true
}

func indexOf(header []string, name string) (int, bool) {
	for i, h := range header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}
