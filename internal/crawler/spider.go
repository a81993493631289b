package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/sitecrawl/internal/model"
	"github.com/nao1215/sitecrawl/internal/urlutil"
)

// Spider crawls a single site breadth-first.
// It owns the traversal loop: frontier bookkeeping, the visited
// registry, depth accounting, and the inter-request rate limit.
//
// Design decision: The crawl is strictly sequential. One fetch is in
// flight at a time and a blocking delay separates fetches because:
//  1. A single-host crawl is bounded by politeness, not throughput;
//     parallelism would only move load onto the target
//  2. Sequential dequeueing makes breadth-first order a structural
//     guarantee instead of a scheduling accident
//  3. No shared mutable state means no locking discipline to get wrong
type Spider struct {
	// fetcher retrieves pages and classifies outcomes.
	fetcher *Fetcher

	// maxDepth limits how deep to crawl from the seed.
	// 0 means only the seed page.
	maxDepth int

	// maxPages caps the total number of pages visited.
	// 0 means no cap. This prevents runaway crawls on large sites.
	maxPages int

	// delay is the pause between consecutive fetches.
	delay time.Duration

	// ignorePatterns are URL path globs whose matches are never
	// enqueued (e.g. "/logout*", "*.csv").
	ignorePatterns []string

	// logger receives per-page progress at debug level.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seed page, 1 = seed plus directly linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages caps the total number of pages visited. 0 disables the cap.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the pause between consecutive fetches.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.fetcher.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		s.fetcher.maxBodySize = size
	}
}

// WithIgnorePatterns sets URL path globs to skip during crawling.
// Patterns use glob syntax (e.g. "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithHeaders sets extra HTTP headers sent with every request.
func WithHeaders(headers map[string]string) SpiderOption {
	return func(s *Spider) {
		s.fetcher.headers = headers
	}
}

// WithLogger sets the logger for crawl progress.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that fetches through the given HTTP
// client. The client should carry the per-request timeout and
// redirect policy; the spider adds nothing transport-specific.
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  NewFetcher(client, defaultUserAgent, defaultMaxBodySize),
		maxDepth: 3,
		delay:    1 * time.Second,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

const (
	defaultUserAgent   = "sitecrawl/1.0 (+https://github.com/nao1215/sitecrawl)"
	defaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Crawl runs a breadth-first traversal starting at seed and returns
// the accumulated crawl state. The only error it can return is a
// fatal seed validation failure; every per-page failure is recorded
// in the state and the traversal continues.
//
// Cancelling ctx stops the crawl at the next iteration boundary
// (or during the inter-request delay), marks the state interrupted,
// and returns everything collected so far.
func (s *Spider) Crawl(ctx context.Context, seed string) (*model.Crawl, error) {
	normalized, host, err := urlutil.NormalizeSeed(seed)
	if err != nil {
		return nil, err
	}

	state := model.NewCrawl(normalized, host, s.maxDepth, s.delay)

	// One fetch per delay interval. The bucket starts full, which
	// would let the first bottom-of-loop Wait through instantly, so
	// it is drained here: every Wait then blocks for a full interval,
	// including the one between the seed and the second fetch.
	every := rate.Inf
	if s.delay > 0 {
		every = rate.Every(s.delay)
	}
	limiter := rate.NewLimiter(every, 1)
	limiter.ReserveN(time.Now(), 1)

	for state.FrontierLen() > 0 {
		if s.maxPages > 0 && len(state.Pages) >= s.maxPages {
			s.logger.Debug("page cap reached", "maxPages", s.maxPages)
			break
		}

		// Interruption is observed here, before committing to the
		// next entry, so no collected record is ever lost.
		select {
		case <-ctx.Done():
			state.Interrupted = true
			return state, nil
		default:
		}

		entry, _ := state.Dequeue()

		// Should not occur given enqueue-time dedup, but protects the
		// at-most-once invariant against discovery races.
		if state.Visited(entry.URL) {
			continue
		}
		state.MarkVisited(entry.URL)

		s.logger.Debug("crawling", "url", entry.URL, "depth", entry.Depth)

		outcome := s.fetcher.Fetch(ctx, entry.URL)
		state.TotalRequests++

		// A fetch torn down by cancellation is not a page result.
		// The attempt still counts as an issued request.
		if outcome.Kind == OutcomeTransportFailure && ctx.Err() != nil {
			state.Interrupted = true
			return state, nil
		}

		record := model.PageRecord{
			URL:    entry.URL,
			Depth:  entry.Depth,
			Status: outcome.Status(),
			Error:  outcome.Reason,
		}

		var links []string
		if outcome.IsHTML() && len(outcome.Body) > 0 {
			record.Title, links = s.parsePage(entry.URL, outcome.Body)
		}

		state.RecordPage(record)

		switch outcome.Kind {
		case OutcomeSuccess:
			if entry.Depth < s.maxDepth {
				s.enqueueLinks(state, links, entry.Depth+1)
			}
		case OutcomeHTTPError:
			s.logger.Warn("http error", "url", entry.URL, "status", outcome.StatusCode)
		case OutcomeTransportFailure:
			s.logger.Warn("request failed", "url", entry.URL, "reason", outcome.Reason)
		}

		// Politeness delay, skipped after the last dequeue.
		if state.FrontierLen() > 0 {
			if err := limiter.Wait(ctx); err != nil {
				state.Interrupted = true
				return state, nil
			}
		}
	}

	return state, nil
}

// parsePage extracts the title and link candidates from an HTML body.
// A parse failure is treated as "no links discovered", not an error.
func (s *Spider) parsePage(pageURL string, body []byte) (title string, links []string) {
	parser, err := NewParser(pageURL)
	if err != nil {
		return "", nil
	}
	result, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		s.logger.Debug("parse failed", "url", pageURL, "error", err)
		return "", nil
	}
	return result.Title, result.Links
}

// enqueueLinks normalizes discovered links, applies the domain guard
// and crawlability filters, and enqueues the unseen survivors at the
// given depth. Malformed and off-domain links are silently dropped;
// they are link noise, not page failures.
func (s *Spider) enqueueLinks(state *model.Crawl, links []string, depth int) {
	for _, link := range links {
		normalized, err := urlutil.Normalize(link, nil)
		if err != nil {
			continue
		}
		if !urlutil.SameHost(normalized, state.Domain) || !urlutil.Crawlable(normalized) {
			continue
		}
		if urlutil.IgnoredBy(normalized, s.ignorePatterns) {
			continue
		}
		if state.Seen(normalized) {
			continue
		}
		state.Enqueue(model.FrontierEntry{URL: normalized, Depth: depth})
	}
}
