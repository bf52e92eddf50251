package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter outputs the summary as indented JSON for tool integration.
type JSONWriter struct {
	baseWriter

	// indent controls pretty-printing. Disabled for machine consumers
	// that prefer compact output.
	indent bool
}

// JSONOption configures a JSONWriter.
type JSONOption func(*JSONWriter)

// WithCompactJSON disables indentation.
func WithCompactJSON() JSONOption {
	return func(w *JSONWriter) {
		w.indent = false
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		indent:     true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(summary *Summary) (int, error) {
	var (
		raw []byte
		err error
	)
	if w.indent {
		raw, err = json.MarshalIndent(summary, "", "  ")
	} else {
		raw, err = json.Marshal(summary)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	raw = append(raw, '\n')

	n, err := w.output.Write(raw)
	if err != nil {
		return n, fmt.Errorf("failed to write JSON report: %w", err)
	}
	return n, nil
}
