package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/wordharvest/wordharvest/internal/config"
	"github.com/wordharvest/wordharvest/internal/log"
)

// NewResumeCmd creates the resume command.
func NewResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Continue an interrupted harvest session",
		Long: `Resume continues a harvest session from its last checkpoint.

The checkpoint restores the pending task queue, already-queried phrases,
collected keywords, and consumed quota, so the continued session neither
re-queries completed phrases nor exceeds the local request limits.

Examples:
  # Continue the most recent interrupted session
  wordharvest resume

  # Continue from an explicit checkpoint file
  wordharvest resume --checkpoint work/session.json`,
		Args: cobra.NoArgs,
		RunE: runResumeCmd,
	}

	addSessionFlags(cmd)

	return cmd
}

// runResumeCmd executes the resume command.
func runResumeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildSessionConfig(cmd)
	if err != nil {
		return err
	}

	// A resumed session takes its work queue from the checkpoint, so
	// the usual seed requirement does not apply.
	cfg.Seeds = nil
	if err := cfg.Validate(); err != nil && !errors.Is(err, config.ErrNoSeeds) {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	cp, err := loadCheckpoint(checkpointPath(cfg))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	return runSession(ctx, cancel, cfg, logger, cp)
}
