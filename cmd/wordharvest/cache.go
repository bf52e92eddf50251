package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wordharvest/wordharvest/internal/cache"
	"github.com/wordharvest/wordharvest/internal/config"
)

// NewCacheCmd creates the cache command with its subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the response cache",
		Long: `Cache manages the local SQLite cache of API responses.

Cached responses let repeated and resumed sessions skip API requests
that were already answered, saving quota. Entries expire after their
TTL and are removed lazily on read or explicitly with "cache sweep".`,
	}

	cmd.PersistentFlags().String("cache-dir", "",
		"Response cache directory (default: XDG cache directory)")

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheSweepCmd())
	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCacheWarmCmd())

	return cmd
}

// openCacheFromFlags opens the response cache named by --cache-dir.
// The database is not created if absent: inspecting a cache that was
// never written is reported as an error, not an empty result.
func openCacheFromFlags(cmd *cobra.Command) (*cache.Cache, error) {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = config.XDGCacheDir()
	}

	c, err := cache.Open(dir, cache.Options{EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache in %s: %w", dir, err)
	}
	return c, nil
}

// newCacheStatsCmd creates the cache stats subcommand.
func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show response cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := openCacheFromFlags(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read cache statistics: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache: %s\n", c.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "  total:   %d\n", stats.Total)
			fmt.Fprintf(cmd.OutOrStdout(), "  valid:   %d\n", stats.Valid)
			fmt.Fprintf(cmd.OutOrStdout(), "  expired: %d\n", stats.Expired)
			return nil
		},
	}
}

// newCacheSweepCmd creates the cache sweep subcommand.
func newCacheSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired entries from the response cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := openCacheFromFlags(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			removed, err := c.Sweep(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to sweep cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", removed)
			return nil
		},
	}
}

// newCacheClearCmd creates the cache clear subcommand.
func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all entries from the response cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := openCacheFromFlags(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Response cache cleared")
			return nil
		},
	}
}
