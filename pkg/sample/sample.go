// Package sample cuts a small relational subset of the release for
// demos and quick tests: N retrieval events plus exactly the runs,
// chunks, documents and scenarios they reference, so every join in the
// subset stays valid.
package sample

import (
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/evalsight/ragtel/pkg/dataset"
	"github.com/evalsight/ragtel/pkg/models"
)

// Options controls the cut.
type Options struct {
	// Events is the number of event rows to draw; capped at the table size.
	Events int
	// Seed makes the draw reproducible.
	Seed int64
}

// TableSubset is one sampled table, rows in original file order.
type TableSubset struct {
	Name     string
	FileName string
	Header   []string
	Rows     [][]models.Value
}

// Subset is the join-closed result, tables in canonical order.
type Subset struct {
	Tables []TableSubset
}

// Table returns a sampled table by name.
func (s *Subset) Table(name string) *TableSubset {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// Sampler draws deterministic subsets.
type Sampler struct {
	logger *zap.Logger
}

func NewSampler(logger *zap.Logger) *Sampler {
	return &Sampler{logger: logger.Named("sample")}
}

// Sample draws opts.Events events with the seeded generator, then walks
// the reference chain outward: events name their runs and chunks, runs
// name their scenarios, chunks name their documents. Rows keep their
// original order, so two draws with one seed are byte-identical.
func (s *Sampler) Sample(ds *dataset.Dataset, opts Options) (*Subset, error) {
	events := ds.Table(models.TableEvents)
	if events == nil {
		return nil, fmt.Errorf("sample: %s not loaded", models.TableEvents)
	}

	n := opts.Events
	if n > events.RowCount() {
		n = events.RowCount()
	}
	if n < 0 {
		n = 0
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	selected := rng.Perm(events.RowCount())[:n]
	sort.Ints(selected)

	runIDs := distinct(events, selected, models.ColRunID)
	chunkIDs := distinct(events, selected, models.ColChunkID)
	scenarioIDs := distinct(events, selected, models.ColScenarioID)

	runs := ds.Table(models.TableRuns)
	runRows := filterRows(runs, models.ColRunID, runIDs)
	union(scenarioIDs, distinct(runs, runRows, models.ColScenarioID))

	chunks := ds.Table(models.TableChunks)
	chunkRows := filterRows(chunks, models.ColChunkID, chunkIDs)
	docIDs := distinct(chunks, chunkRows, models.ColDocID)

	docs := ds.Table(models.TableDocuments)
	docRows := filterRows(docs, models.ColDocID, docIDs)

	scenarios := ds.Table(models.TableScenarios)
	scenarioRows := filterRows(scenarios, models.ColScenarioID, scenarioIDs)

	picked := map[string][]int{
		models.TableDocuments: docRows,
		models.TableChunks:    chunkRows,
		models.TableScenarios: scenarioRows,
		models.TableRuns:      runRows,
		models.TableEvents:    selected,
	}

	subset := &Subset{}
	for _, spec := range models.DatasetTables() {
		table := ds.Table(spec.Name)
		if table == nil {
			continue
		}
		ts := TableSubset{
			Name:     spec.Name,
			FileName: spec.FileName,
			Header:   table.ColumnNames(),
		}
		for _, row := range picked[spec.Name] {
			ts.Rows = append(ts.Rows, table.Rows[row])
		}
		subset.Tables = append(subset.Tables, ts)
		s.logger.Debug("sampled table",
			zap.String("table", spec.Name),
			zap.Int("rows", len(ts.Rows)),
			zap.Int("of", table.RowCount()))
	}
	return subset, nil
}

// distinct collects the non-null values of one column over the given
// rows. A table or column that is not there yields an empty set.
func distinct(t *dataset.Table, rows []int, col string) map[string]struct{} {
	out := make(map[string]struct{})
	if t == nil {
		return out
	}
	if _, ok := t.Col(col); !ok {
		return out
	}
	for _, row := range rows {
		v, _ := t.Value(row, col)
		if !v.Null {
			out[v.String()] = struct{}{}
		}
	}
	return out
}

// filterRows returns the indexes of rows whose column value is in keys,
// preserving file order.
func filterRows(t *dataset.Table, col string, keys map[string]struct{}) []int {
	if t == nil {
		return nil
	}
	if _, ok := t.Col(col); !ok {
		return nil
	}
	var rows []int
	for row := range t.Rows {
		v, _ := t.Value(row, col)
		if v.Null {
			continue
		}
		if _, ok := keys[v.String()]; ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func union(dst, src map[string]struct{}) {
	for k := range src {
		dst[k] = struct{}{}
	}
}
