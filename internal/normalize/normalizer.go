package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stopWords are Russian function words excluded from base-form sets.
// Minus-word matching compares content words only; prepositions,
// conjunctions, and pronouns would produce spurious intersections.
var stopWords = map[string]struct{}{
	"и": {}, "в": {}, "на": {}, "с": {}, "по": {}, "за": {}, "к": {},
	"от": {}, "до": {}, "для": {}, "как": {}, "что": {}, "который": {},
	"где": {}, "когда": {}, "почему": {}, "зачем": {}, "а": {}, "но": {},
	"или": {}, "ни": {}, "если": {}, "то": {}, "чтобы": {}, "так": {},
	"не": {}, "нет": {}, "да": {}, "это": {}, "быть": {}, "иметь": {},
	"мы": {}, "вы": {}, "они": {}, "вас": {}, "нас": {}, "них": {},
	"его": {}, "её": {}, "их": {}, "мне": {}, "тебе": {}, "себе": {},
	"ему": {}, "ей": {}, "при": {}, "между": {}, "среди": {},
	"перед": {}, "после": {}, "через": {}, "без": {},
}

// Normalizer canonicalizes phrases: Unicode-aware lower-casing, whitespace
// collapsing, allow-list character stripping, and trimming.
//
// Design decision: The normalizer is an explicitly constructed dependency
// injected into the filter and scheduler rather than a package-level
// singleton. This keeps components testable with independent instances
// and avoids hidden global state.
type Normalizer struct {
	// lower performs Unicode-aware lower-casing. strings.ToLower handles
	// Cyrillic, but cases.Lower also folds less common mappings correctly.
	lower cases.Caser

	// whitespace matches runs of whitespace for collapsing.
	whitespace *regexp.Regexp

	// disallowed matches characters outside the allow-list: letters
	// (any script), digits, whitespace, hyphen, and underscore.
	disallowed *regexp.Regexp
}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{
		lower:      cases.Lower(language.Und),
		whitespace: regexp.MustCompile(`\s+`),
		disallowed: regexp.MustCompile(`[^\p{L}\p{N}\s_-]`),
	}
}

// Normalize canonicalizes a phrase. It is deterministic and total: any
// input produces a best-effort result, possibly the empty string.
func (n *Normalizer) Normalize(phrase string) string {
	phrase = n.lower.String(strings.TrimSpace(phrase))
	phrase = n.disallowed.ReplaceAllString(phrase, "")
	phrase = n.whitespace.ReplaceAllString(phrase, " ")
	return strings.TrimSpace(phrase)
}

// WordCount returns the number of words in the normalized form of phrase.
// An empty or non-normalizable phrase counts zero words.
func (n *Normalizer) WordCount(phrase string) int {
	normalized := n.Normalize(phrase)
	if normalized == "" {
		return 0
	}
	return len(strings.Fields(normalized))
}

// BaseForms reduces a phrase to a set of stemmed content tokens with
// function words removed. It is used only for minus-word matching.
//
// The reduction is an approximation layer: the suffix stemmer may disagree
// with dictionary lemmatization, and a token the stemmer cannot handle
// falls back to its raw form rather than aborting the whole phrase.
func (n *Normalizer) BaseForms(phrase string) map[string]struct{} {
	normalized := n.Normalize(phrase)
	if normalized == "" {
		return map[string]struct{}{}
	}

	forms := make(map[string]struct{})
	for _, token := range strings.Fields(normalized) {
		if _, stop := stopWords[token]; stop {
			continue
		}
		forms[stemToken(token)] = struct{}{}
	}
	return forms
}

// Intersects reports whether two base-form sets share at least one token.
func Intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for token := range a {
		if _, ok := b[token]; ok {
			return true
		}
	}
	return false
}

// IsSubset reports whether every token of sub is present in super.
func IsSubset(sub, super map[string]struct{}) bool {
	if len(sub) == 0 {
		return false
	}
	for token := range sub {
		if _, ok := super[token]; !ok {
			return false
		}
	}
	return true
}
