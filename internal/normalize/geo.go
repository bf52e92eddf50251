package normalize

import (
	"errors"
	"sort"
	"strings"
)

// GeoMode selects how geographic terms in discovered phrases are handled.
type GeoMode string

const (
	// GeoOff disables geographic processing entirely.
	GeoOff GeoMode = "off"

	// GeoRemove strips geographic terms from the phrase. A phrase that
	// consists only of geographic terms is dropped.
	GeoRemove GeoMode = "remove"

	// GeoExtract keeps only phrases that contain a geographic term, and
	// records the matched terms on the keyword.
	GeoExtract GeoMode = "extract"
)

// ErrInvalidGeoMode is returned when a geo mode string is not recognized.
var ErrInvalidGeoMode = errors.New("invalid geo mode: must be off, remove, or extract")

// ParseGeoMode parses a geo mode string, case-insensitively.
func ParseGeoMode(s string) (GeoMode, error) {
	switch GeoMode(strings.ToLower(strings.TrimSpace(s))) {
	case GeoOff, "":
		return GeoOff, nil
	case GeoRemove:
		return GeoRemove, nil
	case GeoExtract:
		return GeoExtract, nil
	default:
		return GeoOff, ErrInvalidGeoMode
	}
}

// defaultGeoTerms are the built-in geographic terms: major Russian cities
// and common region words. Multi-word terms are supported.
var defaultGeoTerms = []string{
	"москва", "спб", "санкт-петербург", "казань", "екатеринбург",
	"новосибирск", "воронеж", "пермь", "краснодар", "ростов",
	"самара", "уфа", "челябинск", "омск", "волгоград",
	"нижний новгород", "тверь", "ярославль", "рязань", "белгород",
	"тула", "липецк", "смоленск", "брянск", "курск",
	"россия", "российский", "регион", "область", "край", "округ", "район",
}

// GeoCleaner detects and removes geographic terms in normalized phrases.
type GeoCleaner struct {
	// terms is the geo vocabulary sorted longest-first so multi-word terms
	// match before their constituent words.
	terms []string
}

// NewGeoCleaner creates a GeoCleaner with the built-in vocabulary plus any
// extra terms. Extra terms are lower-cased and trimmed; empties are ignored.
func NewGeoCleaner(extra ...string) *GeoCleaner {
	seen := make(map[string]struct{}, len(defaultGeoTerms)+len(extra))
	terms := make([]string, 0, len(defaultGeoTerms)+len(extra))

	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, t := range defaultGeoTerms {
		add(t)
	}
	for _, t := range extra {
		add(t)
	}

	sort.Slice(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })

	return &GeoCleaner{terms: terms}
}

// Process applies the geo policy to a phrase.
// It returns the (possibly modified) phrase, the matched geo tokens, and
// whether the phrase should be kept. The input is expected to be normalized;
// matching is done on whole words, not substrings, so "московский" does not
// match "москва".
func (g *GeoCleaner) Process(phrase string, mode GeoMode) (string, []string, bool) {
	if mode == GeoOff {
		return phrase, nil, true
	}

	padded := " " + strings.ToLower(phrase) + " "
	var found []string
	for _, term := range g.terms {
		if strings.Contains(padded, " "+term+" ") {
			found = append(found, term)
		}
	}

	switch mode {
	case GeoRemove:
		for _, term := range found {
			padded = strings.ReplaceAll(padded, " "+term+" ", " ")
		}
		cleaned := strings.TrimSpace(strings.Join(strings.Fields(padded), " "))
		if cleaned == "" {
			// Entire phrase was geography; nothing left to keep.
			return "", found, false
		}
		return cleaned, found, true

	case GeoExtract:
		if len(found) == 0 {
			return "", nil, false
		}
		return phrase, found, true

	default:
		return phrase, found, true
	}
}

// Has reports whether the phrase contains any geographic term.
func (g *GeoCleaner) Has(phrase string) bool {
	padded := " " + strings.ToLower(phrase) + " "
	for _, term := range g.terms {
		if strings.Contains(padded, " "+term+" ") {
			return true
		}
	}
	return false
}
