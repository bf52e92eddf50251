// Package cache provides SQLite-backed storage for suggestion API
// responses with TTL-based expiry, so that phrases already queried do not
// consume API quota again.
package cache
