package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/wordharvest/wordharvest/internal/cache"
	"github.com/wordharvest/wordharvest/internal/checkpoint"
	"github.com/wordharvest/wordharvest/internal/config"
	"github.com/wordharvest/wordharvest/internal/engine"
	"github.com/wordharvest/wordharvest/internal/filter"
	"github.com/wordharvest/wordharvest/internal/normalize"
	"github.com/wordharvest/wordharvest/internal/ratelimit"
	"github.com/wordharvest/wordharvest/internal/report"
	"github.com/wordharvest/wordharvest/internal/wordstat"
)

// checkpointFileName is the default checkpoint file name under the XDG
// data directory.
const checkpointFileName = "checkpoint.json"

// runSession builds the discovery stack from cfg and drives a session
// to completion. If cp is non-nil the session continues from that
// checkpoint instead of starting fresh.
func runSession(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, logger *slog.Logger, cp *checkpoint.Checkpoint) error {
	sched, cleanup, err := buildScheduler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	// Stop cache janitor and workers before the cache closes.
	defer cancel()

	if cp != nil {
		if err := sched.Restore(cp); err != nil {
			return fmt.Errorf("failed to restore checkpoint: %w", err)
		}
		fmt.Printf("Resuming session: %d pending tasks, %d keywords found\n",
			len(cp.PendingTasks), len(cp.Keywords))
	}

	// Seed phrases from flags, config file, and the seed file.
	seeds := cfg.Seeds
	if cfg.SeedFile != "" {
		fileSeeds, err := config.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		seeds = append(seeds, fileSeeds...)
	}
	for _, seed := range seeds {
		sched.Seed(seed)
	}

	cpPath := checkpointPath(cfg)

	// Consume scheduler events: progress to stderr, autosave to disk.
	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		for ev := range sched.Events() {
			switch ev.Kind {
			case engine.EventProgress:
				printProgress(ev.Stats)
			case engine.EventAutosave:
				if err := checkpoint.Save(cpPath, ev.Checkpoint); err != nil {
					logger.Warn("autosave failed", "path", cpPath, "error", err)
				}
			case engine.EventDone:
				printProgress(ev.Stats)
				fmt.Fprintln(os.Stderr)
			}
		}
	}()

	runDone := make(chan struct{})
	notifyInterrupt(sched.Stop, cancel, runDone)

	startTime := time.Now()
	runErr := sched.Run(ctx)
	close(runDone)
	<-eventsDone

	stats := sched.Stats()
	final := sched.Checkpoint()

	// An incomplete session leaves a checkpoint for resume; a finished
	// one removes it so a later resume does not replay stale state.
	if len(final.PendingTasks) > 0 {
		if err := checkpoint.Save(cpPath, final); err != nil {
			logger.Error("failed to save checkpoint", "path", cpPath, "error", err)
		} else {
			fmt.Fprintf(os.Stderr, "Session interrupted with %d pending tasks; run \"wordharvest resume\" to continue.\n",
				len(final.PendingTasks))
		}
	} else if err := os.Remove(cpPath); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove checkpoint", "path", cpPath, "error", err)
	}

	summary := report.NewSummary(seeds, sched.Keywords(),
		stats.CompletedRequests, stats.CacheHits, sched.Failed(), time.Since(startTime))

	if err := outputReport(cfg, summary); err != nil {
		if runErr != nil {
			logger.Error("report failed", "error", err)
		} else {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("session failed: %w", runErr)
	}
	return nil
}

// printProgress writes a one-line progress snapshot to stderr,
// overwriting the previous one.
func printProgress(s engine.Stats) {
	fmt.Fprintf(os.Stderr, "\rfound %d | queue %d | in-flight %d | requests %d | cache hits %d | failed %d | %s ",
		s.FoundCount, s.QueueDepth, s.InFlight, s.CompletedRequests,
		s.FailedTasks, s.CacheHits, s.Elapsed.Round(time.Second))
}

// buildScheduler assembles the discovery stack from configuration.
// The returned cleanup closes the response cache.
func buildScheduler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*engine.Scheduler, func(), error) {
	norm := normalize.New()

	flt, err := buildFilter(cfg, norm)
	if err != nil {
		return nil, nil, err
	}

	geoMode, err := normalize.ParseGeoMode(cfg.GeoMode)
	if err != nil {
		return nil, nil, err
	}
	geo := normalize.NewGeoCleaner(cfg.GeoExtraTerms...)

	limiter, err := ratelimit.New(ratelimit.Config{
		MaxRPS:     cfg.MaxRPS,
		MaxPerHour: cfg.MaxPerHour,
		MaxPerDay:  cfg.MaxPerDay,
	})
	if err != nil {
		return nil, nil, err
	}

	cacheMode, err := cache.ParseMode(cfg.CacheMode)
	if err != nil {
		return nil, nil, err
	}

	clientOpts := []wordstat.Option{
		wordstat.WithTimeout(cfg.Timeout),
		wordstat.WithLogger(logger),
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, wordstat.WithEndpoint(cfg.Endpoint))
	}
	client := wordstat.New(cfg.APIKey, cfg.FolderID, clientOpts...)

	engineCfg := engine.Config{
		MaxDepth:         cfg.MaxDepth,
		TopN:             cfg.TopN,
		PhrasesPerCall:   cfg.PhrasesPerCall,
		Workers:          cfg.Workers,
		Device:           cfg.Device,
		Regions:          cfg.Regions,
		ExpandFiltered:   cfg.ExpandFiltered,
		AutosaveInterval: cfg.AutosaveInterval,
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithNormalizer(norm),
		engine.WithFilter(flt),
		engine.WithLimiter(limiter),
		engine.WithGeo(geo, geoMode),
	}

	cleanup := func() {}
	if cacheMode != cache.ModeOff {
		dir := cfg.CacheDir
		if dir == "" {
			dir = config.XDGCacheDir()
		}
		respCache, err := cache.Open(dir, cache.Options{
			CreateIfNotExists: true,
			EnableWAL:         true,
			TTL:               cfg.CacheTTL,
			Logger:            logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open response cache: %w", err)
		}
		cleanup = func() {
			if err := respCache.Close(); err != nil {
				logger.Warn("failed to close cache", "error", err)
			}
		}
		opts = append(opts, engine.WithCache(respCache, cacheMode))
		respCache.StartJanitor(ctx, 10*time.Minute)
		logger.Debug("response cache opened", "path", respCache.Path(), "mode", cacheMode)
	}

	sched, err := engine.New(engineCfg, client, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// Fail fast on a bad credential before any discovery work.
	// Cache-only sessions never reach the API and skip the check.
	if cacheMode != cache.ModeOnly {
		if err := client.Validate(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("API key validation failed: %w", err)
		}
	}

	return sched, cleanup, nil
}

// buildFilter constructs the keyword filter from configuration.
func buildFilter(cfg *config.Config, norm *normalize.Normalizer) (*filter.Filter, error) {
	flt := filter.New(norm)
	flt.SetMinCount(cfg.MinCount)

	if err := flt.SetWordRange(cfg.MinWords, cfg.MaxWords); err != nil {
		return nil, err
	}
	if err := flt.SetIncludePattern(cfg.IncludePattern); err != nil {
		return nil, fmt.Errorf("invalid --include pattern: %w", err)
	}
	if err := flt.SetExcludePattern(cfg.ExcludePattern); err != nil {
		return nil, fmt.Errorf("invalid --exclude pattern: %w", err)
	}
	flt.SetExcludeSubstrings(cfg.ExcludeSubstrings)

	minusMode, err := filter.ParseMinusMode(cfg.MinusMode)
	if err != nil {
		return nil, err
	}
	if err := flt.SetMinusPhrases(cfg.MinusPhrases, minusMode); err != nil {
		return nil, err
	}

	return flt, nil
}

// checkpointPath resolves the checkpoint file location.
func checkpointPath(cfg *config.Config) string {
	if cfg.CheckpointFile != "" {
		return cfg.CheckpointFile
	}
	return filepath.Join(config.XDGDataDir(), checkpointFileName)
}

// outputReport writes the session summary in the requested format.
func outputReport(cfg *config.Config, summary *report.Summary) error {
	var output *os.File
	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTSVWriter(output)
	}

	if _, err := writer.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// loadCheckpoint reads the checkpoint for resume, translating a
// missing file into a user-facing error.
func loadCheckpoint(path string) (*checkpoint.Checkpoint, error) {
	cp, err := checkpoint.Load(path)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return nil, fmt.Errorf("no checkpoint at %s: nothing to resume", path)
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return cp, nil
}
