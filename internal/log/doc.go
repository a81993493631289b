// Package log provides logging functionality with automatic cleaning of
// attribute values extracted from crawled pages, built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Automatic truncation of absurdly long URL values
//   - Removal of control characters injected by hostile pages
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Why clean log attributes
//
// The crawler logs URLs and titles taken verbatim from remote HTML.
// A page can embed multi-kilobyte hrefs or terminal escape sequences in
// its links, and those values would otherwise land unmodified in log
// output. The CleanHandler caps string lengths and strips control
// characters so a hostile page cannot corrupt the terminal or bloat
// stored logs.
//
// # Usage
//
//	// Create a logger writing to stderr
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("fetched page",
//	    "url", "https://example.com/some/page",
//	    "status", 200,
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
