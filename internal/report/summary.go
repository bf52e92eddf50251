package report

import (
	"sort"
	"time"

	"github.com/wordharvest/wordharvest/internal/model"
)

// Summary is a completed discovery session prepared for export.
// Keywords are kept sorted by count descending, ties by phrase, so
// every writer emits the same order.
type Summary struct {
	// GeneratedAt is when the summary was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Seeds are the root phrases the session started from.
	Seeds []string `json:"seeds"`

	// Keywords is the retained keyword set, highest volume first.
	Keywords []model.KeywordRecord `json:"keywords"`

	// CompletedRequests counts successful API fetches.
	CompletedRequests int `json:"completed_requests"`

	// CacheHits counts tasks answered from the response cache.
	CacheHits int `json:"cache_hits"`

	// FailedTasks maps failed task identity keys to their last error.
	FailedTasks map[string]string `json:"failed_tasks,omitempty"`

	// Elapsed is the session duration.
	Elapsed time.Duration `json:"elapsed"`
}

// NewSummary builds a Summary, sorting keywords by count descending.
func NewSummary(seeds []string, keywords []model.KeywordRecord, completed, cacheHits int, failed map[string]string, elapsed time.Duration) *Summary {
	sorted := append([]model.KeywordRecord(nil), keywords...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Phrase < sorted[j].Phrase
	})

	return &Summary{
		GeneratedAt:       time.Now(),
		Seeds:             seeds,
		Keywords:          sorted,
		CompletedRequests: completed,
		CacheHits:         cacheHits,
		FailedTasks:       failed,
		Elapsed:           elapsed,
	}
}

// TotalVolume sums the counts of all retained keywords.
func (s *Summary) TotalVolume() int {
	total := 0
	for _, kw := range s.Keywords {
		total += kw.Count
	}
	return total
}

// DepthCounts returns how many keywords were first discovered at each
// depth, in ascending depth order.
func (s *Summary) DepthCounts() []DepthCount {
	byDepth := make(map[int]int)
	for _, kw := range s.Keywords {
		byDepth[kw.Depth]++
	}

	out := make([]DepthCount, 0, len(byDepth))
	for depth, count := range byDepth {
		out = append(out, DepthCount{Depth: depth, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out
}

// DepthCount is the number of keywords discovered at one depth.
type DepthCount struct {
	Depth int
	Count int
}

// Top returns the first n keywords, or all of them when fewer exist.
func (s *Summary) Top(n int) []model.KeywordRecord {
	if n >= len(s.Keywords) {
		return s.Keywords
	}
	return s.Keywords[:n]
}
