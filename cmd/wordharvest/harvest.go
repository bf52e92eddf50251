package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wordharvest/wordharvest/internal/config"
	"github.com/wordharvest/wordharvest/internal/log"
)

// NewHarvestCmd creates the harvest command.
func NewHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest [seed-phrase...]",
		Short: "Discover keywords by expanding seed phrases",
		Long: `Harvest queries the suggestion API for each seed phrase, retains the
related phrases that pass the configured filters, and recursively
queries the highest-volume results breadth-first up to --depth.

Progress is checkpointed periodically; an interrupted session can be
continued with "wordharvest resume".

Examples:
  # Expand a single seed phrase
  wordharvest harvest "пластиковые окна"

  # Multiple seeds with deeper recursion
  wordharvest harvest --depth 3 --top-n 5 "окна" "двери"

  # Seeds from a file, report as Markdown
  wordharvest harvest --seed-file seeds.txt --markdown -o report.md

  # Replay a previous session from cache without touching the API
  wordharvest harvest --cache-mode only "окна"

Configuration file (.wordharvest) example:
  api:
    key: "AQVN..."
    folder_id: "b1g..."
  parsing:
    max_depth: 2
    top_n: 3
  filters:
    min_count: 50
    minus_phrases:
      - бесплатно`,
		Args: cobra.ArbitraryArgs,
		RunE: runHarvestCmd,
	}

	addSessionFlags(cmd)

	cmd.Flags().StringP("seed-file", "s", "",
		"File with seed phrases, one per line (merged with arguments)")

	return cmd
}

// addSessionFlags registers the flags shared by harvest and resume.
// Flag defaults mirror config.NewConfig so that an unchanged flag never
// overrides a value loaded from the configuration file.
func addSessionFlags(cmd *cobra.Command) {
	defaults := config.NewConfig()

	// API flags
	cmd.Flags().String("api-key", "",
		"API key for the suggestion service (overrides config file)")
	cmd.Flags().String("folder-id", "",
		"Cloud folder identifier billed for API requests")
	cmd.Flags().String("endpoint", "",
		"Override the suggestion API URL (proxies, testing)")
	cmd.Flags().DurationP("timeout", "t", defaults.Timeout,
		"Per-request HTTP timeout")

	// Discovery flags
	cmd.Flags().IntP("depth", "d", defaults.MaxDepth,
		"Maximum recursion depth (1-3; seeds are depth 1)")
	cmd.Flags().IntP("top-n", "n", defaults.TopN,
		"Highest-volume results to expand per query (1-5)")
	cmd.Flags().Int("phrases-per-call", defaults.PhrasesPerCall,
		"Result limit requested per API call (1-2000)")
	cmd.Flags().IntP("workers", "w", defaults.Workers,
		"Concurrent API requests (1-10)")
	cmd.Flags().String("device", "",
		"Device filter: all, desktop, mobile, tablet, or phone")
	cmd.Flags().Int64Slice("region", nil,
		"Region identifiers to restrict results to (repeatable)")
	cmd.Flags().Bool("expand-filtered", defaults.ExpandFiltered,
		"Recurse into phrases rejected by filters")

	// Quota flags
	cmd.Flags().Int("max-rps", defaults.MaxRPS,
		"Local requests-per-second limit")
	cmd.Flags().Int("max-per-hour", defaults.MaxPerHour,
		"Local requests-per-hour limit")
	cmd.Flags().Int("max-per-day", defaults.MaxPerDay,
		"Local requests-per-day limit")

	// Filter flags
	cmd.Flags().Int("min-count", defaults.MinCount,
		"Discard phrases below this search volume")
	cmd.Flags().Int("min-words", defaults.MinWords,
		"Discard phrases with fewer words")
	cmd.Flags().Int("max-words", defaults.MaxWords,
		"Discard phrases with more words")
	cmd.Flags().String("include", "",
		"Regular expression a phrase must match to be kept")
	cmd.Flags().String("exclude", "",
		"Regular expression that discards matching phrases")
	cmd.Flags().String("exclude-substrings", "",
		"Comma-separated substrings that discard containing phrases")
	cmd.Flags().StringSlice("minus", nil,
		"Minus phrase: discard phrases sharing its word stems (repeatable)")
	cmd.Flags().String("minus-mode", defaults.MinusMode,
		"Minus phrase matching: any (one shared stem) or all")

	// Geo flags
	cmd.Flags().String("geo-mode", defaults.GeoMode,
		"Geographic token handling: off, remove, or extract")
	cmd.Flags().StringSlice("geo-term", nil,
		"Extra geographic term for the built-in vocabulary (repeatable)")

	// Cache flags
	cmd.Flags().String("cache-mode", defaults.CacheMode,
		"Response cache mode: on, off, only, or refresh")
	cmd.Flags().String("cache-dir", "",
		"Response cache directory (default: XDG cache directory)")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL,
		"Time-to-live for cached responses")

	// Checkpoint flags
	cmd.Flags().String("checkpoint", "",
		"Checkpoint file path (default: XDG data directory)")
	cmd.Flags().Duration("autosave", defaults.AutosaveInterval,
		"Checkpoint autosave interval (0 disables)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wordharvest in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// runHarvestCmd executes the harvest command.
func runHarvestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildSessionConfig(cmd)
	if err != nil {
		return err
	}

	// Positional arguments are seed phrases, appended after config
	// file seeds.
	cfg.Seeds = append(cfg.Seeds, args...)

	cfg.SeedFile, err = cmd.Flags().GetString("seed-file")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential sanitization
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	return runSession(ctx, cancel, cfg, logger, nil)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildSessionConfig creates a Config from the configuration file and
// cobra flags. Precedence: explicit flags > config file > defaults.
// Defaults come from config.NewConfig; an unchanged flag is skipped so
// file values survive.
func buildSessionConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the configuration file before flag overrides.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.ApplyTo(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := applyStringFlags(flags, map[string]*string{
		"api-key":            &cfg.APIKey,
		"folder-id":          &cfg.FolderID,
		"endpoint":           &cfg.Endpoint,
		"device":             &cfg.Device,
		"include":            &cfg.IncludePattern,
		"exclude":            &cfg.ExcludePattern,
		"exclude-substrings": &cfg.ExcludeSubstrings,
		"minus-mode":         &cfg.MinusMode,
		"geo-mode":           &cfg.GeoMode,
		"cache-mode":         &cfg.CacheMode,
		"cache-dir":          &cfg.CacheDir,
		"checkpoint":         &cfg.CheckpointFile,
		"output":             &cfg.OutputFile,
	}); err != nil {
		return nil, err
	}

	if err := applyIntFlags(flags, map[string]*int{
		"depth":            &cfg.MaxDepth,
		"top-n":            &cfg.TopN,
		"phrases-per-call": &cfg.PhrasesPerCall,
		"workers":          &cfg.Workers,
		"max-rps":          &cfg.MaxRPS,
		"max-per-hour":     &cfg.MaxPerHour,
		"max-per-day":      &cfg.MaxPerDay,
		"min-count":        &cfg.MinCount,
		"min-words":        &cfg.MinWords,
		"max-words":        &cfg.MaxWords,
	}); err != nil {
		return nil, err
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("cache-ttl") {
		if cfg.CacheTTL, err = flags.GetDuration("cache-ttl"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("autosave") {
		if cfg.AutosaveInterval, err = flags.GetDuration("autosave"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("expand-filtered") {
		if cfg.ExpandFiltered, err = flags.GetBool("expand-filtered"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("region") {
		if cfg.Regions, err = flags.GetInt64Slice("region"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("minus") {
		if cfg.MinusPhrases, err = flags.GetStringSlice("minus"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("geo-term") {
		if cfg.GeoExtraTerms, err = flags.GetStringSlice("geo-term"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyStringFlags copies changed string flags into their config fields.
func applyStringFlags(flags flagSet, targets map[string]*string) error {
	for name, target := range targets {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = value
	}
	return nil
}

// applyIntFlags copies changed int flags into their config fields.
func applyIntFlags(flags flagSet, targets map[string]*int) error {
	for name, target := range targets {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*target = value
	}
	return nil
}

// flagSet is the subset of pflag.FlagSet the apply helpers need.
type flagSet interface {
	Changed(name string) bool
	GetString(name string) (string, error)
	GetInt(name string) (int, error)
}

// interruptSignals is the set of signals that trigger a graceful stop.
var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// notifyInterrupt registers interrupt handling for a running session.
// The first signal drains in-flight requests via stop; a second signal
// aborts immediately via cancel.
func notifyInterrupt(stop func(), cancel context.CancelFunc, done <-chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, interruptSignals...)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted: draining in-flight requests (press Ctrl+C again to abort)")
			stop()
			select {
			case <-sigCh:
				cancel()
			case <-done:
			}
		case <-done:
		}
	}()
}
