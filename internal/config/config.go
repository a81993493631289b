package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxDepth of 3 covers the navigational structure of most
	// small and medium sites: landing page, section pages, and the
	// content behind them. Deeper crawls grow quickly and are better
	// requested explicitly via --max-depth.
	DefaultMaxDepth = 3

	// DefaultDelay is the pause between consecutive requests.
	// This is a politeness setting to avoid overwhelming servers;
	// 1 second is conservative and respectful of server resources.
	DefaultDelay = 1 * time.Second

	// DefaultTimeout is the per-request timeout. 30 seconds is
	// generous enough for slow pages without letting a single hung
	// fetch stall the sequential crawl for long.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxPages caps the total number of pages crawled per run.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 1000

	// DefaultUserAgent identifies sitecrawl in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows
	// operators to identify crawler traffic in their logs.
	DefaultUserAgent = "sitecrawl/1.0 (+https://github.com/nao1215/sitecrawl)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "sitecrawl"
)

// Config holds all configuration options for a crawl run.
// This struct is designed to be populated from CLI flags and passed
// through the application via dependency injection rather than
// global state.
type Config struct {
	// Seed is the URL the crawl starts from. A schemeless value is
	// treated as https.
	Seed string

	// MaxDepth is the maximum breadth-first depth to crawl.
	// Depth 0 means only fetch the seed page.
	MaxDepth int

	// Delay is the pause between consecutive requests.
	Delay time.Duration

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxPages caps the total number of pages visited. 0 disables it.
	MaxPages int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of markdown.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport forces markdown output. Markdown is already the
	// default; the flag exists for symmetry with --json.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report goes to stdout.
	ReportFile string

	// ConfigFilePath is the path to the overrides file. If empty, the
	// tool searches for .sitecrawl in the current directory and then
	// in the user's home directory.
	ConfigFilePath string

	// Hosts holds per-host overrides loaded from the config file.
	Hosts *File

	// DBDir is the directory holding the crawl history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist the crawl to the history
	// database.
	SaveToDB bool

	// SkipRecent skips the crawl entirely when the host was already
	// crawled within this window. Zero disables the check.
	SkipRecent time.Duration
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		MaxDepth:  DefaultMaxDepth,
		Delay:     DefaultDelay,
		Timeout:   DefaultTimeout,
		MaxPages:  DefaultMaxPages,
		UserAgent: DefaultUserAgent,
	}
}

// Validate checks the configuration for consistency.
// It returns one of the package sentinel errors on failure.
func (c *Config) Validate() error {
	if c.Seed == "" {
		return ErrNoSeed
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.SkipRecent < 0 {
		return ErrInvalidSkipRecent
	}
	return nil
}

// XDGDataDir returns the directory for persistent application data
// (the crawl history database).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
