package model

import "time"

// Keyword origins.
const (
	// OriginAPI marks keywords discovered through a live API call.
	OriginAPI = "api"

	// OriginCache marks keywords reconstructed from the response cache.
	OriginCache = "cache"
)

// KeywordRecord is a discovered keyword with its observed search volume.
// Records live in the scheduler's keyword map for the whole session; they
// are never deleted during a run, only merged on re-observation.
type KeywordRecord struct {
	// Phrase is the normalized keyword phrase (unique map key).
	Phrase string `json:"phrase"`

	// Count is the search volume reported by the API. It is monotonically
	// non-decreasing across merges: duplicate observations keep the max.
	Count int `json:"count"`

	// Seed is the root phrase whose expansion discovered this keyword.
	Seed string `json:"seed"`

	// Depth is the depth at which the keyword was first discovered.
	Depth int `json:"depth"`

	// Source is the parent phrase whose fetch returned this keyword.
	// Empty when discovered directly by a seed query.
	Source string `json:"source,omitempty"`

	// GeoTokens holds geographic terms extracted from the phrase, if the
	// geo cleaning policy is enabled.
	GeoTokens []string `json:"geo_tokens,omitempty"`

	// Timestamp is when the keyword was first recorded.
	Timestamp time.Time `json:"timestamp"`

	// Origin records where the keyword came from (OriginAPI or OriginCache).
	Origin string `json:"origin"`
}

// Merge folds a re-observation of the same phrase into the record.
// Counts never regress: the record keeps the maximum observed count.
func (k *KeywordRecord) Merge(count int) {
	if count > k.Count {
		k.Count = count
	}
}
