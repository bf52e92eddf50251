package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The discovery defaults are conservative: depth and breadth multiply
// into request volume billed against the API quota.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wordharvest"

	// DefaultTimeout is the per-request HTTP timeout. The suggestion
	// API normally answers within a few seconds; anything beyond 30
	// indicates upstream trouble worth classifying as a timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth of 2 expands each seed one level. Depth 3 is the
	// product maximum and multiplies request volume by top-n again.
	DefaultMaxDepth = 2

	// DefaultTopN of 3 expands the three highest-volume children per
	// completed fetch.
	DefaultTopN = 3

	// DefaultPhrasesPerCall is the result limit requested per API call.
	DefaultPhrasesPerCall = 300

	// DefaultWorkers is the fetch concurrency. More workers mostly
	// move the wait from the HTTP call to the rate limiter.
	DefaultWorkers = 3

	// DefaultMaxRPS matches the API's published per-second quota.
	DefaultMaxRPS = 10

	// DefaultMaxPerHour matches the API's published hourly quota.
	DefaultMaxPerHour = 10000

	// DefaultMaxPerDay matches the API's published daily quota.
	DefaultMaxPerDay = 100000

	// DefaultCacheTTL keeps cached responses for a week. Search volume
	// drifts slowly enough that week-old data is still useful.
	DefaultCacheTTL = 7 * 24 * time.Hour

	// DefaultAutosaveInterval is how often a checkpoint is written
	// during a run.
	DefaultAutosaveInterval = 30 * time.Second

	// DefaultMinWords and DefaultMaxWords bound retained phrase length.
	DefaultMinWords = 1
	DefaultMaxWords = 10
)

// Config holds all configuration options for wordharvest.
// This struct is designed to be populated from CLI flags and the
// optional config file, then passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., QuotaConfig, FilterConfig) for simplicity. The number of options
// is manageable, and the engine and filter packages define their own
// validated configs that this struct is translated into once.
type Config struct {
	// APIKey authenticates against the suggestion API. Required for
	// any run that is not cache-only.
	APIKey string

	// FolderID is the cloud folder the API quota is billed against.
	FolderID string

	// Endpoint overrides the suggestion API URL. Empty means the
	// production endpoint. Useful for proxies and tests.
	Endpoint string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Seeds are the root phrases to expand, one phrase per entry.
	Seeds []string

	// SeedFile is a path to a newline-separated seed phrase file.
	// Merged with Seeds when both are given.
	SeedFile string

	// MaxDepth is the BFS depth limit (1..3). Seeds are depth 1.
	MaxDepth int

	// TopN is how many highest-volume children expand per fetch (1..5).
	TopN int

	// PhrasesPerCall is the result limit requested per API call (1..2000).
	PhrasesPerCall int

	// Workers is the fetch concurrency (1..10).
	Workers int

	// Device filters results by device class: empty or "all" for no
	// filter, otherwise "desktop", "mobile", "tablet", or "phone".
	Device string

	// Regions restricts results to the given region identifiers.
	Regions []int64

	// ExpandFiltered keeps filtered-out phrases eligible for recursion.
	ExpandFiltered bool

	// MinCount rejects phrases below this search volume.
	MinCount int

	// MinWords and MaxWords bound the retained phrase word count.
	MinWords int
	MaxWords int

	// IncludePattern is a regular expression a phrase must match.
	// Empty disables the check.
	IncludePattern string

	// ExcludePattern is a regular expression that rejects matches.
	// Empty disables the check.
	ExcludePattern string

	// ExcludeSubstrings is a comma- or newline-separated list of
	// literal substrings that reject containing phrases.
	ExcludeSubstrings string

	// MinusPhrases reject phrases sharing base-form tokens with them.
	MinusPhrases []string

	// MinusMode is "any" or "all" (see the filter package).
	MinusMode string

	// GeoMode is "off", "remove", or "extract".
	GeoMode string

	// GeoExtraTerms extends the built-in geographic vocabulary.
	GeoExtraTerms []string

	// CacheMode is "on", "off", "only", or "refresh".
	CacheMode string

	// CacheDir is where the response cache database lives.
	// Empty means the XDG cache directory.
	CacheDir string

	// CacheTTL is the time-to-live for cached responses.
	CacheTTL time.Duration

	// MaxRPS, MaxPerHour, and MaxPerDay are the local quota windows.
	MaxRPS     int
	MaxPerHour int
	MaxPerDay  int

	// OutputFile is where the report is written. Empty means stdout.
	OutputFile string

	// JSONReport enables JSON output instead of TSV.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output instead of TSV.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// CheckpointFile is where autosave checkpoints are written and
	// where resume reads from. Empty means the XDG data directory.
	CheckpointFile string

	// AutosaveInterval is how often a checkpoint is written during a
	// run. Zero disables autosave.
	AutosaveInterval time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .wordharvest in the current
	// directory and then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, quota
// limits). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:          DefaultTimeout,
		MaxDepth:         DefaultMaxDepth,
		TopN:             DefaultTopN,
		PhrasesPerCall:   DefaultPhrasesPerCall,
		Workers:          DefaultWorkers,
		ExpandFiltered:   true,
		MinCount:         1,
		MinWords:         DefaultMinWords,
		MaxWords:         DefaultMaxWords,
		MinusMode:        "any",
		GeoMode:          "off",
		CacheMode:        "on",
		CacheTTL:         DefaultCacheTTL,
		MaxRPS:           DefaultMaxRPS,
		MaxPerHour:       DefaultMaxPerHour,
		MaxPerDay:        DefaultMaxPerDay,
		AutosaveInterval: DefaultAutosaveInterval,
	}
}

// XDGDataDir returns the XDG data directory for wordharvest.
// On Linux: ~/.local/share/wordharvest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wordharvest.
// On Linux: ~/.config/wordharvest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for wordharvest.
// On Linux: ~/.cache/wordharvest
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any discovery begins.
// Bounds owned by the engine and filter packages are validated there
// when their configs are constructed.
func (c *Config) Validate() error {
	// Without seeds there is nothing to discover.
	if len(c.Seeds) == 0 && c.SeedFile == "" {
		return ErrNoSeeds
	}

	// A cache-only run replays previous sessions and needs no key.
	if c.APIKey == "" && c.CacheMode != "only" {
		return ErrMissingAPIKey
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// JSONReport and MarkdownReport are mutually exclusive.
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.AutosaveInterval < 0 {
		return ErrInvalidAutosaveInterval
	}

	return nil
}
