// Package main provides the entry point for the sitecrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitecrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitecrawl",
		Short: "Breadth-first crawler for a single web site",
		Long: `sitecrawl crawls a single web site breadth-first, visiting every
same-host page up to a configurable depth, and reports HTTP status
codes, failed requests, and the site structure level by level.

The crawler stays on the seed's host, fetches pages sequentially with
a politeness delay, and visits each URL at most once. Interrupting a
run with Ctrl+C still produces a report for the pages crawled so far.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
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
