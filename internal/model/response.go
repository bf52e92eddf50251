package model

// Suggestion is a single (phrase, count) pair returned by the suggestion API.
type Suggestion struct {
	// Phrase is the suggested search phrase, as returned by the API.
	Phrase string `json:"phrase"`

	// Count is the reported search volume. Always non-negative; malformed
	// entries are dropped by the API client before they reach here.
	Count int `json:"count"`
}

// Response is the immutable result of one suggestion API call, either
// fetched live or reconstructed from the response cache.
type Response struct {
	// Results are the primary suggestions for the queried phrase, in API order.
	Results []Suggestion `json:"results"`

	// Associations are related phrases the API reports alongside the primary
	// results, in API order.
	Associations []Suggestion `json:"associations"`

	// StatusCode is the HTTP status of the originating call.
	StatusCode int `json:"status_code"`
}

// Merged returns primary results followed by associations as one candidate
// list. Relative API order is preserved (primary first) so that later
// count-descending sorts can break ties by original position.
func (r *Response) Merged() []Suggestion {
	merged := make([]Suggestion, 0, len(r.Results)+len(r.Associations))
	merged = append(merged, r.Results...)
	merged = append(merged, r.Associations...)
	return merged
}

// Empty reports whether the response carries no suggestions at all.
func (r *Response) Empty() bool {
	return len(r.Results) == 0 && len(r.Associations) == 0
}
