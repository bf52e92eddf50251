// Package filter implements the ordered predicate pipeline that decides
// whether a discovered phrase is kept in the keyword map.
//
// The pipeline evaluates its checks in a fixed order so that cheap,
// broad rejections happen before expensive ones: emptiness and count
// thresholds first, then word-count bounds, then regular expressions,
// then literal substrings, and finally minus-phrase matching on
// base-form token sets. The first failing check short-circuits and
// reports a human-readable reason.
//
// All matchers are validated when they are configured. An invalid
// regular expression or an empty minus list is rejected by the setter,
// never silently ignored at filter time.
package filter
