package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitecrawl/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl history.
// It manages connection pooling and provides methods for saving and
// querying crawl runs.
//
// Design decision: We use a single database file for all hosts rather
// than one file per host. This keeps the history command a single
// query and simplifies backup/restore operations.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created. If false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "sitecrawl.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files
	// and mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections add
	// nothing for this workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host TEXT NOT NULL,
		base_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		max_depth INTEGER NOT NULL,
		delay_ms INTEGER NOT NULL,
		total_requests INTEGER NOT NULL,
		pages_visited INTEGER NOT NULL,
		max_depth_reached INTEGER NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_host ON crawls(host);
	CREATE INDEX IF NOT EXISTS idx_crawls_started_at ON crawls(started_at);

	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		status INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_pages_crawl_id ON pages(crawl_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// CrawlSummary is one row of stored crawl history.
type CrawlSummary struct {
	// ID is the database row ID of the crawl.
	ID int64

	// Host is the host the crawl was restricted to.
	Host string

	// BaseURL is the seed URL the crawl started from.
	BaseURL string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// Duration is the recorded crawl duration.
	Duration time.Duration

	// MaxDepth is the depth limit the crawl was configured with.
	// Compare with MaxDepthReached to see whether the site was
	// exhausted before the limit.
	MaxDepth int

	// Delay is the inter-request delay the crawl was configured with.
	Delay time.Duration

	// TotalRequests is the number of fetch attempts issued.
	TotalRequests int

	// PagesVisited is the number of pages recorded.
	PagesVisited int

	// MaxDepthReached is the deepest recorded depth.
	MaxDepthReached int

	// Interrupted marks a partial crawl.
	Interrupted bool
}

// SaveCrawl persists a crawl run: one summary row plus one row per
// visited page. It returns the database ID of the stored crawl.
func (cdb *CrawlDB) SaveCrawl(ctx context.Context, state *model.Crawl, rep *model.Report) (int64, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO crawls (host, base_url, started_at, duration_ms,
			max_depth, delay_ms,
			total_requests, pages_visited, max_depth_reached, interrupted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		state.Domain,
		state.BaseURL,
		state.StartTime.UTC().Format(time.RFC3339),
		rep.Duration.Milliseconds(),
		state.MaxDepth,
		state.Delay.Milliseconds(),
		rep.TotalRequests,
		rep.PagesVisited,
		rep.MaxDepthReached,
		boolToInt(rep.Partial),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl: %w", err)
	}

	crawlID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get crawl ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pages (crawl_id, url, depth, status, error)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range state.Pages {
		if _, err := stmt.ExecContext(ctx, crawlID, p.URL, p.Depth, int(p.Status), p.Error); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl: %w", err)
	}
	return crawlID, nil
}

// ListCrawls returns the stored crawls for a host, newest first.
func (cdb *CrawlDB) ListCrawls(ctx context.Context, host string) ([]CrawlSummary, error) {
	rows, err := cdb.db.QueryContext(ctx, `
		SELECT id, host, base_url, started_at, duration_ms,
			max_depth, delay_ms,
			total_requests, pages_visited, max_depth_reached, interrupted
		FROM crawls
		WHERE host = ?
		ORDER BY started_at DESC`, host)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawls: %w", err)
	}
	defer rows.Close()

	var summaries []CrawlSummary
	for rows.Next() {
		var s CrawlSummary
		var startedAt string
		var durationMs, delayMs int64
		var interrupted int
		if err := rows.Scan(&s.ID, &s.Host, &s.BaseURL, &startedAt, &durationMs,
			&s.MaxDepth, &delayMs,
			&s.TotalRequests, &s.PagesVisited, &s.MaxDepthReached, &interrupted); err != nil {
			return nil, fmt.Errorf("failed to scan crawl row: %w", err)
		}
		s.StartedAt = parseTimestamp(startedAt)
		s.Duration = time.Duration(durationMs) * time.Millisecond
		s.Delay = time.Duration(delayMs) * time.Millisecond
		s.Interrupted = interrupted != 0
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// HasRecentCrawl reports whether the host was crawled within the
// given window. Used to skip pointless re-crawls.
func (cdb *CrawlDB) HasRecentCrawl(ctx context.Context, host string, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window).UTC().Format(time.RFC3339)

	var count int
	err := cdb.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM crawls
		WHERE host = ? AND started_at >= ?`, host, cutoff).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query recent crawls: %w", err)
	}
	return count > 0, nil
}

// GetPages returns the page records stored for a crawl, in visit order.
func (cdb *CrawlDB) GetPages(ctx context.Context, crawlID int64) ([]model.PageRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, `
		SELECT url, depth, status, error
		FROM pages
		WHERE crawl_id = ?
		ORDER BY id`, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []model.PageRecord
	for rows.Next() {
		var p model.PageRecord
		var status int
		if err := rows.Scan(&p.URL, &p.Depth, &status, &p.Error); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}
		p.Status = model.Status(status)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// parseTimestamp parses an RFC3339 timestamp, returning the zero time
// on failure. Stored timestamps are always written by this package,
// so a parse failure means a corrupted row, not a caller error.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
