// Package testhelpers provides a small, fully consistent sample release
// used across package tests: five linked tables that pass every
// integrity check, plus the dictionary that declares them.
package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const documentsCSV = `doc_id,title,domain,source_type,language,token_count,risk_tier,is_active,contains_tables,created_at
d1,Contract Law Basics,legal,manual,en,1200,low,true,false,2024-11-01 09:00:00
d2,Quarterly Filing Guide,finance,report,en,3400,medium,true,true,2024-11-02 09:00:00
d3,Data Retention Policy,legal,policy,en,800,high,true,false,2024-11-03 09:00:00
`

const chunksCSV = `chunk_id,doc_id,chunk_index,estimated_tokens
c1,d1,0,300
c2,d1,1,340
c3,d2,0,410
c4,d3,0,280
c5,d3,1,260
`

const scenariosCSV = `scenario_id,domain,template_question,expected_answer_type,difficulty_level,has_answer_in_corpus,is_used_in_eval,split
s1,legal,What is the notice period for termination?,short_answer,easy,true,true,train
s2,finance,Which form reports quarterly earnings?,entity,medium,true,true,test
`

const runsCSV = `example_id,run_id,scenario_id,domain,split,retrieval_strategy,is_correct,hallucination_flag,faithfulness_label,answer_f1,confidence_score,is_noanswer_probe,has_answer_in_corpus,has_relevant_in_top5,has_relevant_in_top10,answered_without_retrieval,retrieval_latency_ms,generation_latency_ms,total_latency_ms,prompt_tokens,completion_tokens,total_cost_usd,created_at
e1,r1,s1,legal,train,bm25,true,false,faithful,0.82,0.9,false,true,true,true,false,120.5,800.2,920.7,512,128,0.0042,2025-03-01 10:00:00
e2,r2,s2,finance,test,hybrid,false,true,unfaithful,0.1,0.4,false,true,false,true,false,300.0,1500.0,1800.0,1024,256,0.0210,2025-03-01 11:00:00
e3,r3,s1,legal,train,dense,true,false,partially_faithful,0.65,0.7,false,true,true,true,false,90.0,600.0,690.0,256,64,0.0015,2025-03-02 09:30:00
`

const eventsCSV = `run_id,example_id,chunk_id,rank,retrieval_score,is_relevant
r1,e1,c1,1,12.3,true
r1,e1,c2,2,10.1,false
r2,e2,c3,1,0.91,false
r2,e2,c4,2,0.88,false
r2,e2,c5,3,0.75,true
r3,e3,c1,1,0.95,true
`

const dictionaryCSV = `table_name,column_name,dtype,allowed_values,description
rag_corpus_documents,doc_id,text,,Stable document identifier
rag_corpus_documents,title,text,,Document title
rag_corpus_documents,domain,category,,Topical domain
rag_corpus_documents,source_type,category,,Origin of the document
rag_corpus_documents,language,category,,ISO language code
rag_corpus_documents,token_count,int,>=0,Token length of the full document
rag_corpus_documents,risk_tier,category,low|medium|high,Compliance review tier
rag_corpus_documents,is_active,bool,,Included in the live corpus
rag_corpus_documents,contains_tables,bool,,Document body contains tables
rag_corpus_documents,created_at,datetime,,Ingestion timestamp
rag_corpus_chunks,chunk_id,text,,Stable chunk identifier
rag_corpus_chunks,doc_id,text,,Parent document
rag_corpus_chunks,chunk_index,int,>=0,Zero-based position within the document
rag_corpus_chunks,estimated_tokens,int,>=0,Approximate token length
rag_qa_scenarios,scenario_id,text,,Stable scenario identifier
rag_qa_scenarios,domain,category,,Topical domain
rag_qa_scenarios,template_question,text,,Question template
rag_qa_scenarios,expected_answer_type,category,,Shape of the expected answer
rag_qa_scenarios,difficulty_level,category,easy|medium|hard,Authoring difficulty
rag_qa_scenarios,has_answer_in_corpus,bool,,Answer is present in the corpus
rag_qa_scenarios,is_used_in_eval,bool,,Scenario participates in evaluation
rag_qa_scenarios,split,category,train|val|test|validation,Evaluation split
rag_qa_eval_runs,example_id,text,,Unique example identifier
rag_qa_eval_runs,run_id,text,,Unique run identifier
rag_qa_eval_runs,scenario_id,text,,Source scenario
rag_qa_eval_runs,domain,category,,Topical domain
rag_qa_eval_runs,split,category,train|val|test|validation,Evaluation split
rag_qa_eval_runs,retrieval_strategy,category,bm25|dense|hybrid|hybrid_rerank,Retriever configuration
rag_qa_eval_runs,is_correct,bool,,Answer judged correct
rag_qa_eval_runs,hallucination_flag,bool,,Answer contains unsupported claims
rag_qa_eval_runs,faithfulness_label,category,faithful|partially_faithful|unfaithful,Groundedness judgment
rag_qa_eval_runs,answer_f1,float,"[0,1]",Token-level F1 against the reference
rag_qa_eval_runs,confidence_score,float,"[0,1]",Model self-reported confidence
rag_qa_eval_runs,is_noanswer_probe,bool,,Probe with no answer in corpus
rag_qa_eval_runs,has_answer_in_corpus,bool,,Answer is present in the corpus
rag_qa_eval_runs,has_relevant_in_top5,bool,,Relevant chunk retrieved in top 5
rag_qa_eval_runs,has_relevant_in_top10,bool,,Relevant chunk retrieved in top 10
rag_qa_eval_runs,answered_without_retrieval,bool,,Model answered before retrieval finished
rag_qa_eval_runs,retrieval_latency_ms,float,>=0,Retrieval wall time
rag_qa_eval_runs,generation_latency_ms,float,>=0,Generation wall time
rag_qa_eval_runs,total_latency_ms,float,>=0,End-to-end wall time
rag_qa_eval_runs,prompt_tokens,int,>=0,Prompt token count
rag_qa_eval_runs,completion_tokens,int,>=0,Completion token count
rag_qa_eval_runs,total_cost_usd,float,>=0,Metered cost in USD
rag_qa_eval_runs,created_at,datetime,,Run timestamp
rag_retrieval_events,run_id,text,,Run that produced this retrieval
rag_retrieval_events,example_id,text,,Example the run belongs to
rag_retrieval_events,chunk_id,text,,Retrieved chunk
rag_retrieval_events,rank,int,>=1,1-based retrieval position
rag_retrieval_events,retrieval_score,float,,Retriever similarity score
rag_retrieval_events,is_relevant,bool,,Human relevance judgment
`

const readmeMD = `# Sample RAG telemetry release

Three documents, five chunks, two scenarios, three runs, six retrieval
events. Used by tests only.
`

// Files returns a fresh copy of the sample release tree, keyed by path
// relative to the release root. Tests mutate the copy before writing.
func Files() map[string]string {
	return map[string]string{
		"data_dictionary.csv":            dictionaryCSV,
		"data/rag_corpus_documents.csv":  documentsCSV,
		"data/rag_corpus_chunks.csv":     chunksCSV,
		"data/rag_qa_scenarios.csv":      scenariosCSV,
		"data/rag_qa_eval_runs.csv":      runsCSV,
		"data/rag_retrieval_events.csv":  eventsCSV,
		"README.md":                      readmeMD,
	}
}

// Write materializes files under root, creating directories as needed.
func Write(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// WriteDataset writes the pristine sample release into a temp dir and
// returns its root.
func WriteDataset(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	Write(t, root, Files())
	return root
}
