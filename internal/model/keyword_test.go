package model

import "testing"

// TestKeywordRecordMerge tests that counts never regress across merges.
func TestKeywordRecordMerge(t *testing.T) {
	t.Parallel()

	t.Run("keeps maximum of observed counts", func(t *testing.T) {
		t.Parallel()

		rec := KeywordRecord{Phrase: "running shoes", Count: 100}

		rec.Merge(50)
		if rec.Count != 100 {
			t.Errorf("count regressed to %d after merging smaller value", rec.Count)
		}

		rec.Merge(500)
		if rec.Count != 500 {
			t.Errorf("count = %d, want 500", rec.Count)
		}

		rec.Merge(500)
		if rec.Count != 500 {
			t.Errorf("count = %d after merging equal value, want 500", rec.Count)
		}
	})

	t.Run("merge order does not matter", func(t *testing.T) {
		t.Parallel()

		a := KeywordRecord{Phrase: "x", Count: 0}
		b := KeywordRecord{Phrase: "x", Count: 0}

		for _, c := range []int{10, 300, 42} {
			a.Merge(c)
		}
		for _, c := range []int{42, 10, 300} {
			b.Merge(c)
		}

		if a.Count != b.Count {
			t.Errorf("merge not commutative: %d vs %d", a.Count, b.Count)
		}
	})
}

// TestResponseMerged tests candidate list merging order.
func TestResponseMerged(t *testing.T) {
	t.Parallel()

	resp := Response{
		Results:      []Suggestion{{Phrase: "a", Count: 1}, {Phrase: "b", Count: 2}},
		Associations: []Suggestion{{Phrase: "c", Count: 3}},
	}

	merged := resp.Merged()
	if len(merged) != 3 {
		t.Fatalf("merged length = %d, want 3", len(merged))
	}

	// Primary results come first, associations after, both in API order.
	want := []string{"a", "b", "c"}
	for i, s := range merged {
		if s.Phrase != want[i] {
			t.Errorf("merged[%d].Phrase = %q, want %q", i, s.Phrase, want[i])
		}
	}

	if resp.Empty() {
		t.Error("Empty() = true for non-empty response")
	}
	if !(&Response{}).Empty() {
		t.Error("Empty() = false for empty response")
	}
}
