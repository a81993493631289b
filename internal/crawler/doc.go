// Package crawler implements the breadth-first crawl engine.
//
// # Architecture
//
// The package is built around the Spider type, which drives the
// traversal loop over an explicit FIFO frontier held in the crawl
// state. Fetching is delegated to the Fetcher, which reports every
// outcome as a value (success, HTTP error, or transport failure)
// rather than letting network errors escape into the loop's control
// flow. Link extraction is delegated to the Parser.
//
// # Components
//
//   - Spider: the traversal loop, visited registry, depth accounting,
//     and inter-request rate limit
//   - Fetcher: one HTTP GET per URL with an explicit outcome type
//   - Parser: HTML link and title extraction
//
// # Sequencing
//
// The crawl is intentionally sequential: one fetch is in flight at a
// time and a blocking delay separates consecutive fetches. The only
// suspension points are the fetch itself and the delay, and both
// observe the crawl context, so cancellation is visible at every
// iteration boundary and never discards already-collected records.
//
// # Usage
//
//	spider := crawler.NewSpider(http.DefaultClient, crawler.WithMaxDepth(3))
//	state, err := spider.Crawl(ctx, "https://example.com")
package crawler
