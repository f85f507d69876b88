// Package stats computes the release statistics report: headline row
// counts, answer quality signals, retrieval relevance, spend and latency
// percentiles, and the leading strategy and domain distributions.
package stats

import (
	"math"
	"sort"

	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/models"
)

// nullLabel stands in for null cells in value-count tables.
const nullLabel = "(null)"

// Percentiles holds linear-interpolated quantiles of one metric.
// OK is false when the column had no non-null values.
type Percentiles struct {
	P50, P90, P95, P99 float64
	OK                 bool
}

// Count is one row of a value-count table.
type Count struct {
	Value string
	N     int
}

// Summary is everything the stats report renders.
type Summary struct {
	DocumentRows, ChunkRows, ScenarioRows, RunRows, EventRows int

	// Rates are NaN when the backing column is absent or empty.
	Accuracy          float64
	HallucinationRate float64
	RelAt5, RelAt10   float64

	CostPercentiles    Percentiles
	LatencyPercentiles Percentiles

	ByStrategy []Count
	ByDomain   []Count
}

// TotalRows returns the row count across the five data tables.
func (s *Summary) TotalRows() int {
	return s.DocumentRows + s.ChunkRows + s.ScenarioRows + s.RunRows + s.EventRows
}

// Summarize computes the summary over a loaded dataset.
func Summarize(ds *dataset.Dataset) *Summary {
	docs := ds.Table(models.TableDocuments)
	chunks := ds.Table(models.TableChunks)
	scenarios := ds.Table(models.TableScenarios)
	runs := ds.Table(models.TableRuns)
	events := ds.Table(models.TableEvents)

	s := &Summary{
		DocumentRows:      rowCount(docs),
		ChunkRows:         rowCount(chunks),
		ScenarioRows:      rowCount(scenarios),
		RunRows:           rowCount(runs),
		EventRows:         rowCount(events),
		Accuracy:          columnMean(runs, "is_correct"),
		HallucinationRate: columnMean(runs, "hallucination_flag"),
		RelAt5:            relevanceAtK(events, 5),
		RelAt10:           relevanceAtK(events, 10),
	}
	s.CostPercentiles = columnPercentiles(runs, "total_cost_usd")
	s.LatencyPercentiles = columnPercentiles(runs, "total_latency_ms")
	s.ByStrategy = valueCounts(runs, "retrieval_strategy", 0)
	s.ByDomain = valueCounts(runs, "domain", 20)
	return s
}

func rowCount(t *dataset.Table) int {
	if t == nil {
		return 0
	}
	return t.RowCount()
}

// columnMean averages the non-null values of a column; booleans count
// as 0/1. NaN when the column is absent or all null.
func columnMean(t *dataset.Table, col string) float64 {
	vals := columnFloats(t, col)
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// relevanceAtK averages is_relevant over events with rank <= k.
func relevanceAtK(events *dataset.Table, k int64) float64 {
	if events == nil {
		return math.NaN()
	}
	if _, ok := events.Col(models.ColRank); !ok {
		return math.NaN()
	}
	if _, ok := events.Col(models.ColIsRelevant); !ok {
		return math.NaN()
	}

	sum, n := 0.0, 0
	for row := range events.Rows {
		rank, _ := events.Value(row, models.ColRank)
		if rank.Null || rank.Int > k {
			continue
		}
		rel, _ := events.Value(row, models.ColIsRelevant)
		f, ok := rel.AsFloat()
		if !ok {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func columnPercentiles(t *dataset.Table, col string) Percentiles {
	vals := columnFloats(t, col)
	if len(vals) == 0 {
		return Percentiles{}
	}
	sort.Float64s(vals)
	return Percentiles{
		P50: quantile(vals, 0.5),
		P90: quantile(vals, 0.9),
		P95: quantile(vals, 0.95),
		P99: quantile(vals, 0.99),
		OK:  true,
	}
}

func columnFloats(t *dataset.Table, col string) []float64 {
	if t == nil {
		return nil
	}
	if _, ok := t.Col(col); !ok {
		return nil
	}
	var vals []float64
	for row := range t.Rows {
		v, _ := t.Value(row, col)
		if v.Null {
			continue
		}
		if f, ok := v.AsFloat(); ok {
			vals = append(vals, f)
		}
	}
	return vals
}

// quantile interpolates linearly between the two nearest order
// statistics, so p50 of {1,2,3,4} is 2.5. vals must be sorted.
func quantile(vals []float64, q float64) float64 {
	if len(vals) == 1 {
		return vals[0]
	}
	pos := q * float64(len(vals)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return vals[lo]
	}
	return vals[lo] + (pos-float64(lo))*(vals[hi]-vals[lo])
}

// valueCounts counts distinct values of a column, most frequent first,
// ties broken by first appearance. Nulls count under their own label.
// limit 0 means no cap.
func valueCounts(t *dataset.Table, col string, limit int) []Count {
	if t == nil {
		return nil
	}
	if _, ok := t.Col(col); !ok {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for row := range t.Rows {
		v, _ := t.Value(row, col)
		key := v.String()
		if v.Null {
			key = nullLabel
		}
		if _, seen := counts[key]; !seen {
			firstSeen[key] = len(order)
			order = append(order, key)
		}
		counts[key]++
	}

	out := make([]Count, 0, len(order))
	for _, key := range order {
		out = append(out, Count{Value: key, N: counts[key]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return firstSeen[out[i].Value] < firstSeen[out[j].Value]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
