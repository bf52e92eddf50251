// Package normalize canonicalizes free-text phrases for comparison and
// deduplication, and provides the base-form reduction used by minus-word
// matching and the geographic token cleaner.
package normalize
