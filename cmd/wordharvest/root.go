// Package main provides the entry point for the wordharvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wordharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordharvest",
		Short: "Keyword discovery tool for search suggestion APIs",
		Long: `wordharvest discovers search keywords by recursively expanding seed
phrases through a suggestion API. Each seed is queried for related
phrases; the highest-volume results are queried in turn, breadth-first,
up to a configurable depth.

Sessions respect local request quotas, cache API responses, checkpoint
progress for resumption, and filter results through configurable
keyword rules.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewHarvestCmd())
	cmd.AddCommand(NewResumeCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
