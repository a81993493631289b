package model

import "time"

// Crawl holds the mutable state of a single crawl run: the FIFO
// frontier, the visited registry, the recorded pages, and the
// counters the report is compiled from.
//
// Design decision: We keep the frontier and visited set inside the
// state object rather than inside the crawler because:
//  1. The report aggregator needs read access to the same state
//  2. It keeps the crawler free of bookkeeping fields, so a crawler
//     instance can be reused across runs
//  3. State ownership is explicit: the crawler mutates, everyone
//     else reads
//
// Crawl is not safe for concurrent use. The crawler owns it
// exclusively for the duration of a run; the crawl is intentionally
// sequential, so no locking is needed.
type Crawl struct {
	// BaseURL is the normalized seed URL the crawl started from.
	BaseURL string `json:"base_url"`

	// Domain is the host the crawl is restricted to.
	Domain string `json:"domain"`

	// MaxDepth is the configured depth limit. Pages at MaxDepth are
	// fetched but their links are not followed.
	MaxDepth int `json:"max_depth"`

	// Delay is the configured pause between consecutive fetches.
	Delay time.Duration `json:"delay"`

	// StartTime is when the crawl began.
	StartTime time.Time `json:"start_time"`

	// TotalRequests counts fetch attempts actually issued, including
	// the seed and including attempts that failed at the transport
	// level. A dequeued entry that is skipped as already visited does
	// not count.
	TotalRequests int `json:"total_requests"`

	// Interrupted is set when the crawl loop exited because of
	// cancellation rather than frontier exhaustion.
	Interrupted bool `json:"interrupted"`

	// Pages holds one record per visited URL, in visit order.
	Pages []PageRecord `json:"pages"`

	// visited registers every URL a fetch was committed to.
	// A URL enters this set before its fetch is issued.
	visited map[string]struct{}

	// queued registers every URL ever placed on the frontier, so a
	// URL discovered twice at the same depth is enqueued once.
	queued map[string]struct{}

	// frontier is the FIFO queue of discovered, not-yet-fetched URLs.
	frontier []FrontierEntry
}

// NewCrawl creates the state for a crawl of baseURL restricted to
// domain, and seeds the frontier with the base URL at depth 0.
func NewCrawl(baseURL, domain string, maxDepth int, delay time.Duration) *Crawl {
	c := &Crawl{
		BaseURL:   baseURL,
		Domain:    domain,
		MaxDepth:  maxDepth,
		Delay:     delay,
		StartTime: time.Now(),
		Pages:     make([]PageRecord, 0),
		visited:   make(map[string]struct{}),
		queued:    make(map[string]struct{}),
		frontier:  make([]FrontierEntry, 0),
	}
	c.Enqueue(FrontierEntry{URL: baseURL, Depth: 0})
	return c
}

// Visited reports whether a fetch has been committed for url.
func (c *Crawl) Visited(url string) bool {
	_, ok := c.visited[url]
	return ok
}

// MarkVisited registers url in the visited set. The crawler calls
// this before issuing the fetch, so a slow or failing fetch can
// never cause the URL to be re-enqueued.
func (c *Crawl) MarkVisited(url string) {
	c.visited[url] = struct{}{}
}

// VisitedCount returns the size of the visited registry.
func (c *Crawl) VisitedCount() int {
	return len(c.visited)
}

// Seen reports whether url has ever been enqueued or visited.
// Used for enqueue-time deduplication.
func (c *Crawl) Seen(url string) bool {
	if _, ok := c.queued[url]; ok {
		return true
	}
	return c.Visited(url)
}

// Enqueue appends an entry to the frontier and registers its URL so
// later discoveries of the same URL are dropped.
func (c *Crawl) Enqueue(e FrontierEntry) {
	c.queued[e.URL] = struct{}{}
	c.frontier = append(c.frontier, e)
}

// Dequeue removes and returns the oldest frontier entry.
// The second return value is false when the frontier is empty.
func (c *Crawl) Dequeue() (FrontierEntry, bool) {
	if len(c.frontier) == 0 {
		return FrontierEntry{}, false
	}
	e := c.frontier[0]
	c.frontier = c.frontier[1:]
	return e, true
}

// FrontierLen returns the number of entries waiting in the frontier.
func (c *Crawl) FrontierLen() int {
	return len(c.frontier)
}

// RecordPage appends the record of a visited page.
func (c *Crawl) RecordPage(p PageRecord) {
	c.Pages = append(c.Pages, p)
}

// MaxDepthReached returns the deepest depth among recorded pages,
// or 0 when nothing was recorded.
func (c *Crawl) MaxDepthReached() int {
	maxDepth := 0
	for _, p := range c.Pages {
		if p.Depth > maxDepth {
			maxDepth = p.Depth
		}
	}
	return maxDepth
}
