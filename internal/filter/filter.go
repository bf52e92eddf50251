package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/wordharvest/wordharvest/internal/normalize"
)

// Default bounds applied when the caller configures nothing.
const (
	// DefaultMinCount is the minimum search volume a phrase must carry.
	DefaultMinCount = 1

	// DefaultMinWords is the minimum number of words in a phrase.
	DefaultMinWords = 1

	// DefaultMaxWords is the maximum number of words in a phrase.
	DefaultMaxWords = 10
)

// MinusMode selects how minus-phrase token sets are matched against a
// candidate phrase.
type MinusMode string

const (
	// MatchAny rejects a phrase when it shares at least one base-form
	// token with a minus phrase.
	MatchAny MinusMode = "any"

	// MatchAll rejects a phrase only when it contains every base-form
	// token of a minus phrase.
	MatchAll MinusMode = "all"
)

// ErrInvalidMinusMode is returned when a minus-match mode string is not
// recognized.
var ErrInvalidMinusMode = errors.New("invalid minus mode: must be any or all")

// ParseMinusMode parses a minus-match mode string, case-insensitively.
// The empty string defaults to MatchAny.
func ParseMinusMode(s string) (MinusMode, error) {
	switch MinusMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchAny, "":
		return MatchAny, nil
	case MatchAll:
		return MatchAll, nil
	default:
		return MatchAny, ErrInvalidMinusMode
	}
}

// ErrInvalidWordRange is returned when the configured word-count bounds
// are inconsistent.
var ErrInvalidWordRange = errors.New("invalid word range: bounds must be positive and min must not exceed max")

// minusEntry is a configured minus phrase with its precomputed base-form
// token set. Precomputing at set-time keeps the per-candidate cost to a
// set intersection.
type minusEntry struct {
	phrase string
	bases  map[string]struct{}
}

// Filter is the ordered keyword-acceptance pipeline.
//
// Design decision: Filter is configured through setters that validate
// eagerly rather than a single options struct, because:
//  1. Each matcher (regex, substring list, minus list) has its own
//     validation failure mode and the caller needs to know which input
//     was bad.
//  2. The scheduler builds the filter incrementally from independent
//     configuration sections.
//  3. An unset matcher costs nothing at filter time.
type Filter struct {
	norm *normalize.Normalizer

	minCount int
	minWords int
	maxWords int

	include *regexp.Regexp
	exclude *regexp.Regexp

	excludeSubstrings []string

	minusPhrases []minusEntry
	minusMode    MinusMode
}

// New returns a Filter with default bounds and no matchers configured.
func New(norm *normalize.Normalizer) *Filter {
	return &Filter{
		norm:      norm,
		minCount:  DefaultMinCount,
		minWords:  DefaultMinWords,
		maxWords:  DefaultMaxWords,
		minusMode: MatchAny,
	}
}

// SetMinCount sets the minimum search volume. Values below zero are
// clamped to zero, which disables the check.
func (f *Filter) SetMinCount(n int) {
	if n < 0 {
		n = 0
	}
	f.minCount = n
}

// SetWordRange sets the accepted word-count bounds, inclusive.
func (f *Filter) SetWordRange(minWords, maxWords int) error {
	if minWords < 1 || maxWords < 1 || minWords > maxWords {
		return fmt.Errorf("%w: got [%d, %d]", ErrInvalidWordRange, minWords, maxWords)
	}
	f.minWords = minWords
	f.maxWords = maxWords
	return nil
}

// SetIncludePattern configures a regular expression a phrase must match
// to be accepted. An empty pattern disables the check.
func (f *Filter) SetIncludePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		f.include = nil
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid include pattern: %w", err)
	}
	f.include = re
	return nil
}

// SetExcludePattern configures a regular expression that rejects any
// matching phrase. An empty pattern disables the check.
func (f *Filter) SetExcludePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		f.exclude = nil
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid exclude pattern: %w", err)
	}
	f.exclude = re
	return nil
}

// SetExcludeSubstrings configures literal substrings that reject any
// phrase containing one of them. The raw value is split on commas and
// newlines; entries are trimmed and lower-cased. Empty input disables
// the check.
func (f *Filter) SetExcludeSubstrings(raw string) {
	f.excludeSubstrings = nil
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		s := strings.ToLower(strings.TrimSpace(part))
		if s != "" {
			f.excludeSubstrings = append(f.excludeSubstrings, s)
		}
	}
}

// SetMinusPhrases configures the minus-phrase list and match mode.
// Base-form token sets are computed once here. Phrases that reduce to an
// empty token set (stopwords only) are skipped because they would match
// nothing in any mode.
func (f *Filter) SetMinusPhrases(phrases []string, mode MinusMode) error {
	switch mode {
	case MatchAny, MatchAll:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidMinusMode, mode)
	}

	f.minusMode = mode
	f.minusPhrases = f.minusPhrases[:0]
	for _, p := range phrases {
		bases := f.norm.BaseForms(p)
		if len(bases) == 0 {
			continue
		}
		f.minusPhrases = append(f.minusPhrases, minusEntry{phrase: p, bases: bases})
	}
	return nil
}

// Apply runs the phrase and its search volume through the pipeline.
// It returns true when every check passes, otherwise false with the
// reason reported by the first failing check.
func (f *Filter) Apply(phrase string, count int) (bool, string) {
	normalized := f.norm.Normalize(phrase)
	if normalized == "" {
		return false, "empty phrase after normalization"
	}

	if f.minCount > 0 && count < f.minCount {
		return false, fmt.Sprintf("count %d below minimum %d", count, f.minCount)
	}

	return f.applyText(normalized)
}

// ApplyPhrase runs only the text-based checks, skipping the count
// threshold. Used when no search volume is available for a phrase.
func (f *Filter) ApplyPhrase(phrase string) (bool, string) {
	normalized := f.norm.Normalize(phrase)
	if normalized == "" {
		return false, "empty phrase after normalization"
	}
	return f.applyText(normalized)
}

// applyText evaluates the word-count, pattern, substring, and
// minus-phrase checks against an already-normalized phrase.
func (f *Filter) applyText(phrase string) (bool, string) {
	words := f.norm.WordCount(phrase)
	if words < f.minWords || words > f.maxWords {
		return false, fmt.Sprintf("word count %d outside range [%d, %d]", words, f.minWords, f.maxWords)
	}

	if f.include != nil && !f.include.MatchString(phrase) {
		return false, fmt.Sprintf("does not match include pattern %q", f.include.String())
	}

	if f.exclude != nil && f.exclude.MatchString(phrase) {
		return false, fmt.Sprintf("matches exclude pattern %q", f.exclude.String())
	}

	for _, sub := range f.excludeSubstrings {
		if strings.Contains(phrase, sub) {
			return false, fmt.Sprintf("contains excluded substring %q", sub)
		}
	}

	if len(f.minusPhrases) > 0 {
		bases := f.norm.BaseForms(phrase)
		for _, entry := range f.minusPhrases {
			switch f.minusMode {
			case MatchAll:
				if normalize.IsSubset(entry.bases, bases) {
					return false, fmt.Sprintf("matches minus phrase %q", entry.phrase)
				}
			default:
				if normalize.Intersects(entry.bases, bases) {
					return false, fmt.Sprintf("matches minus phrase %q", entry.phrase)
				}
			}
		}
	}

	return true, ""
}
