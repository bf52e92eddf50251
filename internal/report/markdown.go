package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// topKeywordRows caps the keyword table so a large session stays
// readable; the TSV/JSON exports carry the full set.
const topKeywordRows = 30

// MarkdownWriter outputs session summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. Mermaid charts for the depth distribution
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeDepthChart(md, summary)
	w.writeKeywords(md, summary)
	w.writeFailures(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the session overview table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Keyword Harvest Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Seeds", "`" + strings.Join(summary.Seeds, "`, `") + "`"},
			{"Keywords Found", strconv.Itoa(len(summary.Keywords))},
			{"Total Volume", strconv.Itoa(summary.TotalVolume())},
			{"API Requests", strconv.Itoa(summary.CompletedRequests)},
			{"Cache Hits", strconv.Itoa(summary.CacheHits)},
			{"Failed Tasks", strconv.Itoa(len(summary.FailedTasks))},
			{"Elapsed", summary.Elapsed.Round(time.Second).String()},
		},
	})
	md.PlainText("")
}

// writeDepthChart writes a mermaid pie chart of keywords per depth.
func (w *MarkdownWriter) writeDepthChart(md *markdown.Markdown, summary *Summary) {
	depths := summary.DepthCounts()
	if len(depths) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Keywords by Discovery Depth"),
		piechart.WithShowData(true),
	)
	for _, d := range depths {
		chart.LabelAndIntValue(fmt.Sprintf("Depth %d", d.Depth), uint64(d.Count))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeKeywords writes the top keywords table.
func (w *MarkdownWriter) writeKeywords(md *markdown.Markdown, summary *Summary) {
	md.H2("Top Keywords")
	md.PlainText("")

	if len(summary.Keywords) == 0 {
		md.PlainText("No keywords were retained.")
		md.PlainText("")
		return
	}

	top := summary.Top(topKeywordRows)
	rows := make([][]string, len(top))
	for i, kw := range top {
		rows[i] = []string{
			kw.Phrase,
			strconv.Itoa(kw.Count),
			kw.Seed,
			strconv.Itoa(kw.Depth),
			kw.Origin,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Phrase", "Count", "Seed", "Depth", "Origin"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(summary.Keywords) > topKeywordRows {
		md.PlainTextf("Showing %d of %d keywords. Use the TSV or JSON export for the full set.",
			topKeywordRows, len(summary.Keywords))
		md.PlainText("")
	}
}

// writeFailures lists failed tasks, if any.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, summary *Summary) {
	if len(summary.FailedTasks) == 0 {
		return
	}

	md.H2("Failed Tasks")
	md.PlainText("")

	keys := make([]string, 0, len(summary.FailedTasks))
	for key := range summary.FailedTasks {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{"`" + key + "`", truncateString(summary.FailedTasks[key], 80)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Task", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by wordharvest*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
