// Package checkpoint persists and restores discovery session state.
//
// A checkpoint captures the frontier, the dedup sets, the accumulated
// keyword map, and the rate-limiter quota counters. Restoring one must
// reproduce the same dedup behavior as an uninterrupted run: a task
// completed before the save is never fetched again after a resume.
//
// Saves are atomic (write to a temp file, then rename) so a crash
// mid-save leaves the previous checkpoint intact.
package checkpoint
