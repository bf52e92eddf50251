package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/wordharvest/wordharvest/internal/cache"
	"github.com/wordharvest/wordharvest/internal/config"
	"github.com/wordharvest/wordharvest/internal/log"
	"github.com/wordharvest/wordharvest/internal/normalize"
	"github.com/wordharvest/wordharvest/internal/ratelimit"
	"github.com/wordharvest/wordharvest/internal/wordstat"
	"golang.org/x/sync/errgroup"
)

// newCacheWarmCmd creates the cache warm subcommand.
func newCacheWarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warm [phrase...]",
		Short: "Pre-fetch phrases into the response cache",
		Long: `Warm queries the API for each phrase and stores the responses in the
cache, without running discovery. A later harvest or cache-only session
answers those phrases locally.

Examples:
  # Cache two phrases
  wordharvest cache warm --api-key AQVN... "окна" "двери"

  # Cache a whole seed file
  wordharvest cache warm --seed-file seeds.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: runCacheWarmCmd,
	}

	cmd.Flags().String("api-key", "", "API key for the suggestion service")
	cmd.Flags().String("folder-id", "", "Cloud folder identifier billed for API requests")
	cmd.Flags().String("endpoint", "", "Override the suggestion API URL")
	cmd.Flags().StringP("seed-file", "s", "", "File with phrases, one per line")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers, "Concurrent API requests (1-10)")
	cmd.Flags().Int("phrases-per-call", config.DefaultPhrasesPerCall, "Result limit requested per API call")
	cmd.Flags().Int("max-rps", config.DefaultMaxRPS, "Local requests-per-second limit")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL, "Time-to-live for cached responses")

	return cmd
}

// runCacheWarmCmd executes the cache warm subcommand.
func runCacheWarmCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	apiKey, err := flags.GetString("api-key")
	if err != nil {
		return err
	}
	if apiKey == "" {
		return config.ErrMissingAPIKey
	}

	phrases := args
	seedFile, err := flags.GetString("seed-file")
	if err != nil {
		return err
	}
	if seedFile != "" {
		fileSeeds, err := config.LoadSeedFile(seedFile)
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		phrases = append(phrases, fileSeeds...)
	}
	if len(phrases) == 0 {
		return config.ErrNoSeeds
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	c, err := openWarmCache(cmd, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	client, err := warmClient(cmd, apiKey, logger)
	if err != nil {
		return err
	}

	maxRPS, err := flags.GetInt("max-rps")
	if err != nil {
		return err
	}
	limiter, err := ratelimit.New(ratelimit.Config{
		MaxRPS:     maxRPS,
		MaxPerHour: config.DefaultMaxPerHour,
		MaxPerDay:  config.DefaultMaxPerDay,
	})
	if err != nil {
		return err
	}

	workers, err := flags.GetInt("workers")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("phrases-per-call")
	if err != nil {
		return err
	}

	// Dedup after normalization so a phrase listed twice costs one call.
	norm := normalize.New()
	seen := make(map[string]struct{}, len(phrases))
	unique := make([]string, 0, len(phrases))
	for _, raw := range phrases {
		phrase := norm.Normalize(raw)
		if phrase == "" {
			continue
		}
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		unique = append(unique, phrase)
	}

	ctx := cmd.Context()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, phrase := range unique {
		g.Go(func() error {
			granted, reason := limiter.Acquire(ctx, 1, config.DefaultTimeout)
			if !granted {
				return fmt.Errorf("quota rejected for %q: %s", phrase, reason)
			}

			resp, err := client.Fetch(ctx, phrase, limit, nil, "")
			if err != nil {
				return fmt.Errorf("fetch %q: %w", phrase, err)
			}
			if err := c.Set(ctx, phrase, resp); err != nil {
				return fmt.Errorf("cache %q: %w", phrase, err)
			}

			logger.Debug("phrase cached", "phrase", phrase, "results", len(resp.Results))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cached %d phrases\n", len(unique))
	return nil
}

// openWarmCache opens the response cache for writing, creating it if needed.
func openWarmCache(cmd *cobra.Command, logger *slog.Logger) (*cache.Cache, error) {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = config.XDGCacheDir()
	}

	ttl, err := cmd.Flags().GetDuration("cache-ttl")
	if err != nil {
		return nil, err
	}

	c, err := cache.Open(dir, cache.Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		TTL:               ttl,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache in %s: %w", dir, err)
	}
	return c, nil
}

// warmClient builds the API client for cache warming.
func warmClient(cmd *cobra.Command, apiKey string, logger *slog.Logger) (*wordstat.Client, error) {
	folderID, err := cmd.Flags().GetString("folder-id")
	if err != nil {
		return nil, err
	}
	endpoint, err := cmd.Flags().GetString("endpoint")
	if err != nil {
		return nil, err
	}

	opts := []wordstat.Option{wordstat.WithLogger(logger)}
	if endpoint != "" {
		opts = append(opts, wordstat.WithEndpoint(endpoint))
	}
	return wordstat.New(apiKey, folderID, opts...), nil
}
