// Package database provides SQLite-based storage for crawl history.
// Each crawl run is persisted with its summary metrics and per-page
// records, so past runs of the same host can be listed and recent
// crawls detected.
package database
