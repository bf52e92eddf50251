package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// tsvColumns is the fixed column order of the TSV export.
var tsvColumns = []string{"phrase", "count", "seed", "depth", "source", "timestamp"}

// TSVWriter outputs keywords as tab-separated values, one row per
// keyword, highest volume first. The format imports cleanly into
// spreadsheet tools without quoting rules.
type TSVWriter struct {
	baseWriter
}

// NewTSVWriter creates a TSVWriter that outputs to the given writer.
func NewTSVWriter(output io.Writer) *TSVWriter {
	return &TSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary's keywords in TSV format.
func (w *TSVWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Join(tsvColumns, "\t"))
	sb.WriteByte('\n')

	for _, kw := range summary.Keywords {
		// Tabs inside a phrase would shift columns; phrases are
		// normalized upstream and cannot contain them, but a seed or
		// source from a checkpoint file is not under our control.
		fmt.Fprintf(&sb, "%s\t%d\t%s\t%d\t%s\t%s\n",
			sanitize(kw.Phrase),
			kw.Count,
			sanitize(kw.Seed),
			kw.Depth,
			sanitize(kw.Source),
			kw.Timestamp.Format(time.RFC3339),
		)
	}

	n, err := io.WriteString(w.output, sb.String())
	if err != nil {
		return n, fmt.Errorf("failed to write TSV report: %w", err)
	}
	return n, nil
}

// sanitize replaces field-breaking characters with spaces.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
