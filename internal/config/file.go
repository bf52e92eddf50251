package config

import "time"

// File represents the structure of the .wordharvest configuration file.
// Every section is optional; absent values keep the defaults or
// whatever CLI flags provided.
type File struct {
	// API holds credentials and transport settings.
	API APISection `yaml:"api,omitempty"`

	// Parsing holds the discovery parameters.
	Parsing ParsingSection `yaml:"parsing,omitempty"`

	// Quotas holds the local rate-limiter windows.
	Quotas QuotaSection `yaml:"quotas,omitempty"`

	// Filters holds the keyword filter settings.
	Filters FilterSection `yaml:"filters,omitempty"`

	// Geo holds the geographic token policy.
	Geo GeoSection `yaml:"geo,omitempty"`

	// Cache holds the response cache settings.
	Cache CacheSection `yaml:"cache,omitempty"`

	// Output holds report destination and format.
	Output OutputSection `yaml:"output,omitempty"`

	// Seeds are root phrases to expand, one per entry.
	Seeds []string `yaml:"seeds,omitempty"`
}

// APISection configures the suggestion API client.
type APISection struct {
	Key      string        `yaml:"key,omitempty"`
	FolderID string        `yaml:"folder_id,omitempty"`
	Endpoint string        `yaml:"endpoint,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// ParsingSection configures the discovery engine.
type ParsingSection struct {
	MaxDepth       int     `yaml:"max_depth,omitempty"`
	TopN           int     `yaml:"top_n,omitempty"`
	PhrasesPerCall int     `yaml:"phrases_per_call,omitempty"`
	Workers        int     `yaml:"workers,omitempty"`
	Device         string  `yaml:"device,omitempty"`
	Regions        []int64 `yaml:"regions,omitempty"`

	// ExpandFiltered is a pointer so that an explicit false in the
	// file is distinguishable from an absent key.
	ExpandFiltered *bool `yaml:"expand_filtered,omitempty"`
}

// QuotaSection configures the local rate limiter.
type QuotaSection struct {
	MaxRPS     int `yaml:"max_rps,omitempty"`
	MaxPerHour int `yaml:"max_per_hour,omitempty"`
	MaxPerDay  int `yaml:"max_per_day,omitempty"`
}

// FilterSection configures the keyword filter.
type FilterSection struct {
	MinCount          int      `yaml:"min_count,omitempty"`
	MinWords          int      `yaml:"min_words,omitempty"`
	MaxWords          int      `yaml:"max_words,omitempty"`
	IncludePattern    string   `yaml:"include_pattern,omitempty"`
	ExcludePattern    string   `yaml:"exclude_pattern,omitempty"`
	ExcludeSubstrings string   `yaml:"exclude_substrings,omitempty"`
	MinusPhrases      []string `yaml:"minus_phrases,omitempty"`
	MinusMode         string   `yaml:"minus_mode,omitempty"`
}

// GeoSection configures geographic token handling.
type GeoSection struct {
	Mode       string   `yaml:"mode,omitempty"`
	ExtraTerms []string `yaml:"extra_terms,omitempty"`
}

// CacheSection configures the response cache.
type CacheSection struct {
	Mode string        `yaml:"mode,omitempty"`
	Dir  string        `yaml:"dir,omitempty"`
	TTL  time.Duration `yaml:"ttl,omitempty"`
}

// OutputSection configures report output.
type OutputSection struct {
	File string `yaml:"file,omitempty"`

	// Format is "tsv" (default), "json", or "markdown".
	Format string `yaml:"format,omitempty"`
}

// ApplyTo merges file values into cfg. Only values present in the file
// override; CLI flags applied after this call still win because cobra
// re-applies changed flags on top.
func (f *File) ApplyTo(cfg *Config) {
	if f.API.Key != "" {
		cfg.APIKey = f.API.Key
	}
	if f.API.FolderID != "" {
		cfg.FolderID = f.API.FolderID
	}
	if f.API.Endpoint != "" {
		cfg.Endpoint = f.API.Endpoint
	}
	if f.API.Timeout > 0 {
		cfg.Timeout = f.API.Timeout
	}

	if f.Parsing.MaxDepth > 0 {
		cfg.MaxDepth = f.Parsing.MaxDepth
	}
	if f.Parsing.TopN > 0 {
		cfg.TopN = f.Parsing.TopN
	}
	if f.Parsing.PhrasesPerCall > 0 {
		cfg.PhrasesPerCall = f.Parsing.PhrasesPerCall
	}
	if f.Parsing.Workers > 0 {
		cfg.Workers = f.Parsing.Workers
	}
	if f.Parsing.Device != "" {
		cfg.Device = f.Parsing.Device
	}
	if len(f.Parsing.Regions) > 0 {
		cfg.Regions = f.Parsing.Regions
	}
	if f.Parsing.ExpandFiltered != nil {
		cfg.ExpandFiltered = *f.Parsing.ExpandFiltered
	}

	if f.Quotas.MaxRPS > 0 {
		cfg.MaxRPS = f.Quotas.MaxRPS
	}
	if f.Quotas.MaxPerHour > 0 {
		cfg.MaxPerHour = f.Quotas.MaxPerHour
	}
	if f.Quotas.MaxPerDay > 0 {
		cfg.MaxPerDay = f.Quotas.MaxPerDay
	}

	if f.Filters.MinCount > 0 {
		cfg.MinCount = f.Filters.MinCount
	}
	if f.Filters.MinWords > 0 {
		cfg.MinWords = f.Filters.MinWords
	}
	if f.Filters.MaxWords > 0 {
		cfg.MaxWords = f.Filters.MaxWords
	}
	if f.Filters.IncludePattern != "" {
		cfg.IncludePattern = f.Filters.IncludePattern
	}
	if f.Filters.ExcludePattern != "" {
		cfg.ExcludePattern = f.Filters.ExcludePattern
	}
	if f.Filters.ExcludeSubstrings != "" {
		cfg.ExcludeSubstrings = f.Filters.ExcludeSubstrings
	}
	if len(f.Filters.MinusPhrases) > 0 {
		cfg.MinusPhrases = f.Filters.MinusPhrases
	}
	if f.Filters.MinusMode != "" {
		cfg.MinusMode = f.Filters.MinusMode
	}

	if f.Geo.Mode != "" {
		cfg.GeoMode = f.Geo.Mode
	}
	if len(f.Geo.ExtraTerms) > 0 {
		cfg.GeoExtraTerms = f.Geo.ExtraTerms
	}

	if f.Cache.Mode != "" {
		cfg.CacheMode = f.Cache.Mode
	}
	if f.Cache.Dir != "" {
		cfg.CacheDir = f.Cache.Dir
	}
	if f.Cache.TTL > 0 {
		cfg.CacheTTL = f.Cache.TTL
	}

	if f.Output.File != "" {
		cfg.OutputFile = f.Output.File
	}
	switch f.Output.Format {
	case "json":
		cfg.JSONReport = true
	case "markdown":
		cfg.MarkdownReport = true
	}

	if len(f.Seeds) > 0 {
		cfg.Seeds = append(cfg.Seeds, f.Seeds...)
	}
}
