package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wordharvest/wordharvest/internal/model"
)

func testSummary() *Summary {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	keywords := []model.KeywordRecord{
		{Phrase: "кроссовки мужские", Count: 3100, Seed: "кроссовки", Depth: 1, Origin: model.OriginAPI, Timestamp: ts},
		{Phrase: "купить кроссовки", Count: 5400, Seed: "кроссовки", Depth: 1, Origin: model.OriginAPI, Timestamp: ts},
		{Phrase: "кроссовки для бега", Count: 900, Seed: "кроссовки", Depth: 2, Source: "кроссовки мужские", Origin: model.OriginCache, Timestamp: ts},
	}
	return NewSummary(
		[]string{"кроссовки"},
		keywords,
		2, 1,
		map[string]string{"кеды|1": "wordstat api error (server, status 502): bad gateway"},
		95*time.Second,
	)
}

func TestNewSummarySortsByCount(t *testing.T) {
	t.Parallel()

	s := testSummary()

	if s.Keywords[0].Phrase != "купить кроссовки" {
		t.Errorf("expected highest count first, got %q", s.Keywords[0].Phrase)
	}
	if s.Keywords[2].Phrase != "кроссовки для бега" {
		t.Errorf("expected lowest count last, got %q", s.Keywords[2].Phrase)
	}
	if s.TotalVolume() != 9400 {
		t.Errorf("expected total volume 9400, got %d", s.TotalVolume())
	}
}

func TestNewSummaryTieBreaksByPhrase(t *testing.T) {
	t.Parallel()

	s := NewSummary(nil, []model.KeywordRecord{
		{Phrase: "второй", Count: 100},
		{Phrase: "альфа", Count: 100},
	}, 0, 0, nil, 0)

	if s.Keywords[0].Phrase != "альфа" {
		t.Errorf("expected phrase order on equal counts, got %q first", s.Keywords[0].Phrase)
	}
}

func TestSummaryDepthCounts(t *testing.T) {
	t.Parallel()

	depths := testSummary().DepthCounts()
	if len(depths) != 2 {
		t.Fatalf("expected 2 depth buckets, got %d", len(depths))
	}
	if depths[0].Depth != 1 || depths[0].Count != 2 {
		t.Errorf("unexpected depth 1 bucket: %+v", depths[0])
	}
	if depths[1].Depth != 2 || depths[1].Count != 1 {
		t.Errorf("unexpected depth 2 bucket: %+v", depths[1])
	}
}

func TestTSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewTSVWriter(&buf)

	n, err := w.Write(testSummary())
	if err != nil {
		t.Fatalf("failed to write TSV: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "phrase\tcount\tseed\tdepth\tsource\ttimestamp" {
		t.Errorf("unexpected header: %q", lines[0])
	}

	// Rows come out highest volume first.
	first := strings.Split(lines[1], "\t")
	if len(first) != 6 {
		t.Fatalf("expected 6 columns, got %d: %q", len(first), lines[1])
	}
	if first[0] != "купить кроссовки" || first[1] != "5400" {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if first[5] != "2026-08-01T12:00:00Z" {
		t.Errorf("unexpected timestamp column: %q", first[5])
	}

	// Depth-2 row carries its source phrase.
	last := strings.Split(lines[3], "\t")
	if last[4] != "кроссовки мужские" {
		t.Errorf("expected source column, got %q", last[4])
	}
}

func TestTSVWriterSanitizesFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewTSVWriter(&buf)

	s := NewSummary(nil, []model.KeywordRecord{
		{Phrase: "фраза", Count: 10, Seed: "seed\twith\ttabs"},
	}, 0, 0, nil, 0)

	if _, err := w.Write(s); err != nil {
		t.Fatalf("failed to write TSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if got := strings.Count(lines[1], "\t"); got != 5 {
		t.Errorf("expected 5 tabs per row after sanitizing, got %d: %q", got, lines[1])
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf)

	if _, err := w.Write(testSummary()); err != nil {
		t.Fatalf("failed to write JSON: %v", err)
	}

	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Keywords) != 3 {
		t.Errorf("expected 3 keywords, got %d", len(decoded.Keywords))
	}
	if decoded.CompletedRequests != 2 || decoded.CacheHits != 1 {
		t.Errorf("unexpected counters: %+v", decoded)
	}
	if decoded.FailedTasks["кеды|1"] == "" {
		t.Error("expected failed task to survive serialization")
	}
}

func TestJSONWriterCompact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithCompactJSON())

	if _, err := w.Write(testSummary()); err != nil {
		t.Fatalf("failed to write JSON: %v", err)
	}
	// Compact output is a single line.
	if got := strings.Count(strings.TrimRight(buf.String(), "\n"), "\n"); got != 0 {
		t.Errorf("expected single-line output, got %d newlines", got)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(testSummary()); err != nil {
		t.Fatalf("failed to write markdown: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Keyword Harvest Report",
		"## Top Keywords",
		"купить кроссовки",
		"mermaid",
		"## Failed Tasks",
		"кеды|1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestMarkdownWriterEmptySummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	s := NewSummary([]string{"seed"}, nil, 0, 0, nil, 0)
	if _, err := w.Write(s); err != nil {
		t.Fatalf("failed to write markdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "No keywords were retained.") {
		t.Error("expected empty-set message")
	}
	if strings.Contains(out, "## Failed Tasks") {
		t.Error("expected no failures section for a clean run")
	}
}

// failingWriter always errors to exercise MultiWriter's early stop.
type failingWriter struct{}

func (failingWriter) Write(*Summary) (int, error) {
	return 0, errors.New("write failed")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewTSVWriter(&a), NewJSONWriter(&b))

		n, err := mw.Write(testSummary())
		if err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("expected total %d, reported %d", a.Len()+b.Len(), n)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewTSVWriter(&buf))

		if _, err := mw.Write(testSummary()); err == nil {
			t.Fatal("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected later writers to be skipped after an error")
		}
	})
}
