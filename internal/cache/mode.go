package cache

import (
	"errors"
	"strings"
)

// Mode controls how the scheduler consults the response cache.
type Mode string

const (
	// ModeOn reads from the cache and writes fetched responses back.
	ModeOn Mode = "on"

	// ModeOff bypasses the cache entirely.
	ModeOff Mode = "off"

	// ModeOnly is read-only: a miss yields an empty result instead of an
	// API call. Useful for replaying a previous run without quota spend.
	ModeOnly Mode = "only"

	// ModeRefresh always calls the API and overwrites the cached entry,
	// ignoring whatever is stored.
	ModeRefresh Mode = "refresh"
)

// ErrInvalidMode is returned when a cache mode string is not recognized.
var ErrInvalidMode = errors.New("invalid cache mode: must be on, off, only, or refresh")

// ParseMode parses a cache mode string, case-insensitively.
// The empty string defaults to ModeOn.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeOn, "":
		return ModeOn, nil
	case ModeOff:
		return ModeOff, nil
	case ModeOnly:
		return ModeOnly, nil
	case ModeRefresh:
		return ModeRefresh, nil
	default:
		return ModeOff, ErrInvalidMode
	}
}

// Reads reports whether the mode consults existing cache entries.
func (m Mode) Reads() bool {
	return m == ModeOn || m == ModeOnly
}

// Writes reports whether the mode stores fetched responses.
func (m Mode) Writes() bool {
	return m == ModeOn || m == ModeRefresh
}
