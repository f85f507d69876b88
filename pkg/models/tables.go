package models

// Canonical table names of the release.
const (
	TableDocuments  = "rag_corpus_documents"
	TableChunks     = "rag_corpus_chunks"
	TableScenarios  = "rag_qa_scenarios"
	TableRuns       = "rag_qa_eval_runs"
	TableEvents     = "rag_retrieval_events"
	TableDictionary = "data_dictionary"
)

// Key and join columns referenced across the tools.
const (
	ColDocID      = "doc_id"
	ColChunkID    = "chunk_id"
	ColChunkIndex = "chunk_index"
	ColScenarioID = "scenario_id"
	ColExampleID  = "example_id"
	ColRunID      = "run_id"
	ColRank       = "rank"
	ColIsRelevant = "is_relevant"
)

// TableSpec describes one data table of the release: its canonical file
// name and its primary key (composite keys list multiple columns).
type TableSpec struct {
	Name       string
	FileName   string
	KeyColumns []string
}

// ForeignKey declares that every non-null value of Child.ChildColumn must
// exist in Parent.ParentColumn.
type ForeignKey struct {
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string
}

// DatasetTables returns the five data tables in their documented order.
// The data dictionary is loaded separately (it bootstraps the schema
// registry) and is not part of this set.
func DatasetTables() []TableSpec {
	return []TableSpec{
		{Name: TableDocuments, FileName: TableDocuments + ".csv", KeyColumns: []string{ColDocID}},
		{Name: TableChunks, FileName: TableChunks + ".csv", KeyColumns: []string{ColChunkID}},
		{Name: TableScenarios, FileName: TableScenarios + ".csv", KeyColumns: []string{ColScenarioID}},
		{Name: TableRuns, FileName: TableRuns + ".csv", KeyColumns: []string{ColExampleID}},
		{Name: TableEvents, FileName: TableEvents + ".csv", KeyColumns: []string{ColRunID, ColChunkID, ColRank}},
	}
}

// DatasetForeignKeys returns the declared relationships between the data
// tables. Retrieval events reference eval runs through both run_id (the
// join key of the flat table) and example_id (the eval-run primary key).
func DatasetForeignKeys() []ForeignKey {
	return []ForeignKey{
		{ChildTable: TableChunks, ChildColumn: ColDocID, ParentTable: TableDocuments, ParentColumn: ColDocID},
		{ChildTable: TableRuns, ChildColumn: ColScenarioID, ParentTable: TableScenarios, ParentColumn: ColScenarioID},
		{ChildTable: TableEvents, ChildColumn: ColExampleID, ParentTable: TableRuns, ParentColumn: ColExampleID},
		{ChildTable: TableEvents, ChildColumn: ColRunID, ParentTable: TableRuns, ParentColumn: ColRunID},
		{ChildTable: TableEvents, ChildColumn: ColChunkID, ParentTable: TableChunks, ParentColumn: ColChunkID},
	}
}

// FindTableSpec returns the table spec for name, or false when name is not
// a canonical data table.
func FindTableSpec(name string) (TableSpec, bool) {
	for _, spec := range DatasetTables() {
		if spec.Name == name {
			return spec, true
		}
	}
	return TableSpec{}, false
}
