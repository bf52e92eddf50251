// Package report provides keyword export in several output formats.
//
// This package contains writers for different output formats:
//   - TSVWriter: Tab-separated output for spreadsheet import
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Human-readable summaries for documentation
//
// Design decision: We separate report writing from the discovery engine
// so that adding an output format never touches scheduler code. Writers
// implement the Writer interface, allowing them to be composed for
// multi-format output.
package report
