package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/sitecrawl/internal/config"
	"github.com/nao1215/sitecrawl/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <host>",
		Short: "List stored crawls for a host",
		Long: `History lists previous crawl runs for a host, newest first.

Crawls are recorded automatically unless --no-save was used. The
history database lives in the XDG data directory.

Examples:
  # List all recorded crawls of example.com
  sitecrawl history example.com

  # Show the pages of a specific crawl
  sitecrawl history --pages 3 example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("pages", 0,
		"Show the visited pages of the crawl with the given ID instead of the summary list")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	host := strings.ToLower(strings.TrimSpace(args[0]))
	if host == "" {
		return fmt.Errorf("host must not be empty")
	}

	crawlID, err := cmd.Flags().GetInt64("pages")
	if err != nil {
		return err
	}

	// Open read-only: listing history should not create an empty database.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return fmt.Errorf("no crawl history found (run a crawl first): %w", err)
	}
	defer db.Close()

	if crawlID > 0 {
		return printPages(cmd, db, crawlID)
	}

	return printSummaries(cmd, db, host)
}

// printSummaries writes the summary list for a host, newest first.
func printSummaries(cmd *cobra.Command, db *database.CrawlDB, host string) error {
	summaries, err := db.ListCrawls(cmd.Context(), host)
	if err != nil {
		return fmt.Errorf("failed to list crawls: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No recorded crawls for %s\n", host)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Crawl history for %s:\n\n", host)
	for _, s := range summaries {
		status := "complete"
		if s.Interrupted {
			status = "interrupted"
		}
		fmt.Fprintf(out, "  [%d] %s  %s\n", s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), s.BaseURL)
		fmt.Fprintf(out, "      pages: %d, requests: %d, depth: %d of %d, duration: %s (%s)\n",
			s.PagesVisited, s.TotalRequests, s.MaxDepthReached, s.MaxDepth,
			s.Duration.Round(time.Millisecond), status)
	}

	return nil
}

// printPages writes the page listing of one stored crawl.
func printPages(cmd *cobra.Command, db *database.CrawlDB, crawlID int64) error {
	pages, err := db.GetPages(cmd.Context(), crawlID)
	if err != nil {
		return fmt.Errorf("failed to load pages for crawl %d: %w", crawlID, err)
	}

	if len(pages) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No pages recorded for crawl %d\n", crawlID)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pages of crawl %d:\n\n", crawlID)
	for _, p := range pages {
		fmt.Fprintf(out, "  [%s] depth %d  %s\n", p.Status, p.Depth, p.URL)
		if p.Error != "" {
			fmt.Fprintf(out, "      error: %s\n", p.Error)
		}
	}

	return nil
}
