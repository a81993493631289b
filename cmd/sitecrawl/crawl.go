package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/sitecrawl/internal/config"
	"github.com/nao1215/sitecrawl/internal/crawler"
	"github.com/nao1215/sitecrawl/internal/database"
	"github.com/nao1215/sitecrawl/internal/log"
	"github.com/nao1215/sitecrawl/internal/model"
	"github.com/nao1215/sitecrawl/internal/report"
	"github.com/nao1215/sitecrawl/internal/urlutil"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a web site and report its status codes and structure",
		Long: `Crawl performs a breadth-first traversal of a single web site.

Starting from the seed URL it fetches every same-host page up to the
configured depth, one request at a time with a politeness delay, and
compiles a report of:
- HTTP status code distribution across all visited pages
- Failed requests and HTTP errors grouped by status
- All visited pages grouped by crawl depth

Examples:
  # Crawl a site with default settings (depth 3, 1s delay)
  sitecrawl crawl https://example.com

  # A schemeless seed is treated as https
  sitecrawl crawl example.com

  # Crawl deeper with a shorter delay
  sitecrawl crawl -d 5 --delay 500ms https://example.com

  # Output JSON report to a file
  sitecrawl crawl --json -o report.json https://example.com

  # Use a custom configuration file
  sitecrawl crawl -c myconfig.yaml https://example.com

Configuration file (.sitecrawl) example:
  hosts:
    example.com:
      maxDepth: 5
      delay: 2s
      headers:
        Authorization: "Bearer token"
    staging.example.com:
      maxPages: 50
      ignorePatterns:
        - "/logout*"`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum breadth-first depth to crawl (0 fetches only the seed)")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Pause between consecutive requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to visit (0 disables the cap)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitecrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this crawl in the history database")
	cmd.Flags().Duration("skip-recent", 0,
		"Skip the crawl if the host was already crawled within this window (e.g. 24h)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing current page...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
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

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-host configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Hosts, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.Hosts = &config.File{
			Hosts: make(map[string]config.HostConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	cfg.SkipRecent, err = cmd.Flags().GetDuration("skip-recent")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional argument (seed URL)
	cfg.Seed = args[0]

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Normalize the seed up front so host overrides can be resolved
	// before the spider starts.
	seed, host, err := urlutil.NormalizeSeed(cfg.Seed)
	if err != nil {
		return fmt.Errorf("invalid seed URL %q: %w", cfg.Seed, err)
	}

	// Apply per-host overrides from the config file
	if cfg.Hosts == nil {
		cfg.Hosts = &config.File{}
	}
	hostCfg := cfg.Hosts.GetHostConfig(host)
	hostCfg.Apply(cfg)

	logger.Info("starting crawl",
		"seed", seed,
		"host", host,
		"maxDepth", cfg.MaxDepth,
		"delay", cfg.Delay,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Skip the run entirely if the host was crawled recently
	if db != nil && cfg.SkipRecent > 0 {
		recent, err := db.HasRecentCrawl(ctx, host, cfg.SkipRecent)
		if err != nil {
			return fmt.Errorf("failed to check crawl history: %w", err)
		}
		if recent {
			fmt.Fprintf(os.Stderr, "Skipping %s: already crawled within the last %s (see 'sitecrawl history %s')\n",
				host, cfg.SkipRecent, host)
			return nil
		}
	}

	spider := newSpiderForConfig(cfg, hostCfg, logger)

	fmt.Fprintf(os.Stderr, "Crawling %s...\n", seed)
	startTime := time.Now()

	state, err := spider.Crawl(ctx, seed)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	elapsed := time.Since(startTime)
	if state.Interrupted {
		fmt.Fprintf(os.Stderr, "Crawl interrupted after %s; reporting pages collected so far\n\n",
			elapsed.Round(time.Millisecond))
	} else {
		fmt.Fprintf(os.Stderr, "Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))
	}

	rep := model.NewReport(state)

	// Generate and output report
	if err := outputReport(cfg, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Save to database if enabled
	if err := saveCrawl(ctx, db, state, rep, logger); err != nil {
		logger.Error("failed to save crawl", "host", host, "error", err)
	}

	return nil
}

// newSpiderForConfig creates a spider with options derived from the
// merged global and per-host configuration.
func newSpiderForConfig(cfg *config.Config, hostCfg config.HostConfig, logger *slog.Logger) *crawler.Spider {
	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	opts := []crawler.SpiderOption{
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithDelay(cfg.Delay),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithLogger(logger),
	}

	if len(hostCfg.Headers) > 0 {
		opts = append(opts, crawler.WithHeaders(hostCfg.Headers))
	}
	if len(hostCfg.IgnorePatterns) > 0 {
		opts = append(opts, crawler.WithIgnorePatterns(hostCfg.IgnorePatterns))
	}

	return crawler.NewSpider(client, opts...)
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, rep *model.Report) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output, report.WithPrettyPrint())
		_, err := writer.Write(rep)
		return err
	}

	// Markdown output (default)
	writer := report.NewMarkdownWriter(output)
	_, err := writer.Write(rep)
	return err
}

// saveCrawl saves the crawl to the history database if enabled.
// If db is nil, this function is a no-op.
func saveCrawl(ctx context.Context, db *database.CrawlDB, state *model.Crawl, rep *model.Report, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveCrawl(ctx, state, rep)
	if err != nil {
		return fmt.Errorf("failed to save crawl: %w", err)
	}

	logger.Info("crawl saved to database", "host", state.Domain, "id", id)
	return nil
}
