package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeeds is returned when no seed phrase or seed file is specified.
	// This error occurs when neither --seed nor --seed-file provides input.
	ErrNoSeeds = errors.New("no seeds specified: provide a phrase or use --seed-file")

	// ErrMissingAPIKey is returned when no API key is configured and the
	// run is not cache-only. Every live fetch needs a credential.
	ErrMissingAPIKey = errors.New("missing API key: set it in the config file or via --api-key")

	// ErrInvalidTimeout is returned when the HTTP timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidAutosaveInterval is returned when the autosave interval is
	// negative. Use 0 to disable autosave.
	ErrInvalidAutosaveInterval = errors.New("invalid autosave interval: must be non-negative")
)
