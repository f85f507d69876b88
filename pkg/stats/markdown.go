package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Markdown renders the summary as the release stats report. Section
// order and number formats are stable; docs diffs between releases
// should show data changes, not formatting noise.
func (s *Summary) Markdown() string {
	var b strings.Builder

	b.WriteString("# Dataset Stats\n")
	fmt.Fprintf(&b, "- **Total rows:** **%s** across 5 data tables (+ data dictionary)\n", comma(s.TotalRows()))

	b.WriteString("## Table sizes\n")
	b.WriteString("| Table | Rows |\n|---|---:|\n")
	fmt.Fprintf(&b, "| rag_corpus_documents | %s |\n", comma(s.DocumentRows))
	fmt.Fprintf(&b, "| rag_corpus_chunks | %s |\n", comma(s.ChunkRows))
	fmt.Fprintf(&b, "| rag_qa_scenarios | %s |\n", comma(s.ScenarioRows))
	fmt.Fprintf(&b, "| rag_qa_eval_runs | %s |\n", comma(s.RunRows))
	fmt.Fprintf(&b, "| rag_retrieval_events | %s |\n", comma(s.EventRows))

	b.WriteString("\n## Labels & quality signals\n")
	if !math.IsNaN(s.Accuracy) {
		fmt.Fprintf(&b, "- **Accuracy (mean is_correct):** %s\n", pct(s.Accuracy))
	}
	if !math.IsNaN(s.HallucinationRate) {
		fmt.Fprintf(&b, "- **Hallucination rate (mean hallucination_flag):** %s\n", pct(s.HallucinationRate))
	}

	b.WriteString("\n## Retrieval relevance @k\n")
	if !math.IsNaN(s.RelAt5) {
		fmt.Fprintf(&b, "- **rel@5 (mean is_relevant where rank<=5):** %s\n", pct(s.RelAt5))
	}
	if !math.IsNaN(s.RelAt10) {
		fmt.Fprintf(&b, "- **rel@10 (mean is_relevant where rank<=10):** %s\n", pct(s.RelAt10))
	}

	if p := s.CostPercentiles; p.OK {
		b.WriteString("\n## Cost percentiles (USD)\n")
		b.WriteString("| p50 | p90 | p95 | p99 |\n|---:|---:|---:|---:|\n")
		fmt.Fprintf(&b, "| %.6f | %.6f | %.6f | %.6f |\n", p.P50, p.P90, p.P95, p.P99)
	}

	if p := s.LatencyPercentiles; p.OK {
		b.WriteString("\n## Latency percentiles (ms)\n")
		b.WriteString("| p50 | p90 | p95 | p99 |\n|---:|---:|---:|---:|\n")
		fmt.Fprintf(&b, "| %.2f | %.2f | %.2f | %.2f |\n", p.P50, p.P90, p.P95, p.P99)
	}

	b.WriteString("\n## Top retrieval strategies\n")
	b.WriteString("| retrieval_strategy | count |\n|---|---:|\n")
	for _, c := range s.ByStrategy {
		fmt.Fprintf(&b, "| %s | %s |\n", c.Value, comma(c.N))
	}

	b.WriteString("\n## Top domains (runs)\n")
	b.WriteString("| domain | count |\n|---|---:|\n")
	for _, c := range s.ByDomain {
		fmt.Fprintf(&b, "| %s | %s |\n", c.Value, comma(c.N))
	}

	return b.String()
}

func pct(x float64) string {
	return fmt.Sprintf("%.2f%%", 100*x)
}

// comma formats a non-negative count with thousands separators.
func comma(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
