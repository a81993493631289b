package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/sitecrawl/internal/model"
)

// newTestSite starts an HTTP server serving the given path -> HTML
// body fixtures. Paths not listed return 404.
func newTestSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for path, body := range pages {
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestSpiderCrawl tests the traversal loop end to end against local
// HTTP servers.
func TestSpiderCrawl(t *testing.T) {
	t.Parallel()

	t.Run("single page with no outbound links", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t, map[string]string{
			"/": `<html><head><title>Home</title></head><body>nothing here</body></html>`,
		})

		spider := NewSpider(srv.Client(), WithMaxDepth(3), WithDelay(0))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(state.Pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(state.Pages))
		}
		if state.Pages[0].Depth != 0 {
			t.Errorf("expected depth 0, got %d", state.Pages[0].Depth)
		}
		if state.Pages[0].Status != 200 {
			t.Errorf("expected status 200, got %s", state.Pages[0].Status)
		}
		if state.Pages[0].Title != "Home" {
			t.Errorf("expected title 'Home', got %q", state.Pages[0].Title)
		}
		if state.Interrupted {
			t.Error("completed crawl must not be interrupted")
		}
		if state.TotalRequests != 1 {
			t.Errorf("expected 1 request, got %d", state.TotalRequests)
		}
	})

	t.Run("off-domain links are dropped", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t, map[string]string{
			"/": `<html><body>
				<a href="/about">same domain</a>
				<a href="http://elsewhere.invalid/page">off domain</a>
			</body></html>`,
			"/about": `<html><body>about</body></html>`,
		})

		spider := NewSpider(srv.Client(), WithMaxDepth(3), WithDelay(0))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(state.Pages) != 2 {
			t.Fatalf("expected 2 pages, got %d: %+v", len(state.Pages), state.Pages)
		}
		if state.Pages[1].Depth != 1 {
			t.Errorf("expected depth 1 for /about, got %d", state.Pages[1].Depth)
		}
	})

	t.Run("transport failure is recorded and the crawl continues", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body><a href="/broken">broken</a><a href="/fine">fine</a></body></html>`)
		})
		mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
			// Tear down the connection before any response is written
			// so the client sees a transport-level failure.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("response writer does not support hijacking")
				return
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Errorf("failed to hijack connection: %v", err)
				return
			}
			conn.Close()
		})
		mux.HandleFunc("/fine", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body>fine</body></html>`)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		spider := NewSpider(srv.Client(), WithMaxDepth(2), WithDelay(0))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(state.Pages) != 3 {
			t.Fatalf("expected 3 pages, got %d: %+v", len(state.Pages), state.Pages)
		}

		broken := state.Pages[1]
		if broken.Status != model.StatusUnknown {
			t.Errorf("expected Unknown status for broken page, got %s", broken.Status)
		}
		if broken.Error == "" {
			t.Error("expected a failure detail for the broken page")
		}

		// The failure must not have stopped the frontier.
		if state.Pages[2].Status != 200 {
			t.Errorf("expected crawl to continue to /fine, got status %s", state.Pages[2].Status)
		}
	})

	t.Run("max depth 0 fetches only the seed", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t, map[string]string{
			"/":     `<html><body><a href="/deep">deep</a></body></html>`,
			"/deep": `<html><body>never fetched</body></html>`,
		})

		spider := NewSpider(srv.Client(), WithMaxDepth(0), WithDelay(0))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(state.Pages) != 1 {
			t.Fatalf("expected only the seed, got %d pages", len(state.Pages))
		}
		if state.FrontierLen() != 0 {
			t.Errorf("expected no enqueued links at depth 0, frontier has %d", state.FrontierLen())
		}
	})

	t.Run("breadth-first order and depth cap", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t, map[string]string{
			"/":  `<html><body><a href="/a">a</a><a href="/b">b</a></body></html>`,
			"/a": `<html><body><a href="/c">c</a></body></html>`,
			"/b": `<html><body><a href="/d">d</a></body></html>`,
			"/c": `<html><body><a href="/e">e</a></body></html>`,
			"/d": `<html><body></body></html>`,
			"/e": `<html><body></body></html>`,
		})

		spider := NewSpider(srv.Client(), WithMaxDepth(2), WithDelay(0))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// /e is at depth 3, beyond the cap.
		if len(state.Pages) != 5 {
			t.Fatalf("expected 5 pages, got %d: %+v", len(state.Pages), state.Pages)
		}

		// Depths must be non-decreasing in record order.
		for i := 1; i < len(state.Pages); i++ {
			if state.Pages[i].Depth < state.Pages[i-1].Depth {
				t.Errorf("breadth-first order violated: page %d at depth %d after depth %d",
					i, state.Pages[i].Depth, state.Pages[i-1].Depth)
			}
		}

		for _, p := range state.Pages {
			if p.Depth > 2 {
				t.Errorf("page %s recorded beyond the depth cap at %d", p.URL, p.Depth)
			}
		}
	})

	t.Run("each URL is visited at most once", func(t *testing.T) {
		t.Parallel()

		// Every page links to every other page, including back-links
		// and a duplicate href on the seed.
		srv := newTestSite(t, map[string]string{
			"/":  `<html><body><a href="/a">a</a><a href="/a">a again</a><a href="/b">b</a></body></html>`,
			"/a": `<html><body><a href="/">home</a><a href="/b">b</a></body></html>`,
			"/b": `<html><body><a href="/">home</a><a href="/a">a</a></body></html>`,
		})

		spider := NewSpider(srv.Client(), WithMaxDepth(5), WithDelay(0))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		seen := make(map[string]int)
		for _, p := range state.Pages {
			seen[p.URL]++
		}
		for url, n := range seen {
			if n != 1 {
				t.Errorf("URL %s recorded %d times", url, n)
			}
		}
		if len(state.Pages) != 3 {
			t.Errorf("expected 3 pages, got %d", len(state.Pages))
		}
		if state.TotalRequests != len(state.Pages) {
			t.Errorf("requests (%d) and pages (%d) must match on a completed crawl",
				state.TotalRequests, len(state.Pages))
		}
		if state.VisitedCount() != len(state.Pages) {
			t.Errorf("visited registry (%d) and pages (%d) must match",
				state.VisitedCount(), len(state.Pages))
		}
	})

	t.Run("interruption keeps collected records", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body>
				<a href="/p1">1</a><a href="/p2">2</a><a href="/p3">3</a>
				<a href="/p4">4</a><a href="/p5">5</a>
			</body></html>`)
		})
		for _, path := range []string{"/p1", "/p2", "/p3", "/p5"} {
			mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				fmt.Fprint(w, `<html><body>leaf</body></html>`)
			})
		}
		// The fourth page cancels the crawl and holds the connection
		// open until the client gives up, so the interruption point
		// is deterministic.
		mux.HandleFunc("/p4", func(_ http.ResponseWriter, r *http.Request) {
			cancel()
			<-r.Context().Done()
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		spider := NewSpider(srv.Client(), WithMaxDepth(1), WithDelay(0))
		state, err := spider.Crawl(ctx, srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !state.Interrupted {
			t.Fatal("expected the crawl to be marked interrupted")
		}

		// Seed plus the three pages fetched before cancellation.
		if len(state.Pages) != 4 {
			t.Fatalf("expected 4 pages, got %d: %+v", len(state.Pages), state.Pages)
		}
		for _, p := range state.Pages {
			if p.URL == srv.URL+"/p4" || p.URL == srv.URL+"/p5" {
				t.Errorf("page %s must not be recorded after interruption", p.URL)
			}
		}

		// The aborted attempt was still an issued request, so on an
		// interrupted run requests may exceed recorded pages by one.
		if state.TotalRequests != 5 {
			t.Errorf("expected 5 issued requests, got %d", state.TotalRequests)
		}
	})

	t.Run("asset links are not fetched", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t, map[string]string{
			"/": `<html><body>
				<a href="/style.css">css</a>
				<a href="/doc.pdf">pdf</a>
				<a href="/api/v1/data">api</a>
				<a href="/page">page</a>
			</body></html>`,
			"/page": `<html><body>content</body></html>`,
		})

		spider := NewSpider(srv.Client(), WithMaxDepth(2), WithDelay(0))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(state.Pages) != 2 {
			t.Fatalf("expected 2 pages, got %d: %+v", len(state.Pages), state.Pages)
		}
	})

	t.Run("delay separates every pair of consecutive fetches", func(t *testing.T) {
		t.Parallel()

		const delay = 200 * time.Millisecond

		// The first gap (seed -> second fetch) is the interesting one:
		// a full token bucket would let that wait through instantly.
		var mu sync.Mutex
		var arrivals []time.Time

		pages := map[string]string{
			"/":  `<html><body><a href="/a">a</a><a href="/b">b</a></body></html>`,
			"/a": `<html><body>a</body></html>`,
			"/b": `<html><body>b</body></html>`,
		}
		mux := http.NewServeMux()
		for path, body := range pages {
			mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
				mu.Lock()
				arrivals = append(arrivals, time.Now())
				mu.Unlock()
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				fmt.Fprint(w, body)
			})
		}
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		spider := NewSpider(srv.Client(), WithMaxDepth(1), WithDelay(delay))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(state.Pages) != 3 {
			t.Fatalf("expected 3 pages, got %d", len(state.Pages))
		}

		mu.Lock()
		defer mu.Unlock()
		if len(arrivals) != 3 {
			t.Fatalf("expected 3 requests, got %d", len(arrivals))
		}

		// The limiter releases one token per interval measured from
		// its own clock, so an arrival-to-arrival gap can undercut the
		// configured delay by the previous request's handling time.
		const tolerance = 50 * time.Millisecond
		for i := 1; i < len(arrivals); i++ {
			if gap := arrivals[i].Sub(arrivals[i-1]); gap < delay-tolerance {
				t.Errorf("gap between fetch %d and %d was %s, want at least %s",
					i-1, i, gap, delay-tolerance)
			}
		}
	})

	t.Run("ignore patterns are not fetched", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t, map[string]string{
			"/": `<html><body>
				<a href="/logout">logout</a>
				<a href="/drafts/wip">draft</a>
				<a href="/page">page</a>
			</body></html>`,
			"/page": `<html><body>content</body></html>`,
		})

		spider := NewSpider(srv.Client(), WithMaxDepth(2), WithDelay(0),
			WithIgnorePatterns([]string{"/logout*", "/drafts/*"}))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(state.Pages) != 2 {
			t.Fatalf("expected 2 pages, got %d: %+v", len(state.Pages), state.Pages)
		}
		for _, p := range state.Pages {
			if p.URL == srv.URL+"/logout" || p.URL == srv.URL+"/drafts/wip" {
				t.Errorf("ignored URL was fetched: %s", p.URL)
			}
		}
	})

	t.Run("page cap stops the crawl", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t, map[string]string{
			"/":  `<html><body><a href="/a">a</a><a href="/b">b</a><a href="/c">c</a></body></html>`,
			"/a": `<html><body></body></html>`,
			"/b": `<html><body></body></html>`,
			"/c": `<html><body></body></html>`,
		})

		spider := NewSpider(srv.Client(), WithMaxDepth(3), WithMaxPages(2), WithDelay(0))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(state.Pages) != 2 {
			t.Errorf("expected 2 pages under the cap, got %d", len(state.Pages))
		}
		if state.Interrupted {
			t.Error("hitting the page cap is not an interruption")
		}
	})

	t.Run("invalid seed is fatal", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(&http.Client{}, WithDelay(0))

		if _, err := spider.Crawl(context.Background(), ""); err == nil {
			t.Error("expected an error for an empty seed")
		}
		if _, err := spider.Crawl(context.Background(), "http://exa mple.com/"); err == nil {
			t.Error("expected an error for a malformed seed")
		}
	})

	t.Run("http error page contributes no links", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body><a href="/gone">gone</a></body></html>`)
		})
		mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `<html><body><a href="/hidden">hidden</a></body></html>`)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		spider := NewSpider(srv.Client(), WithMaxDepth(3), WithDelay(0))
		state, err := spider.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(state.Pages) != 2 {
			t.Fatalf("expected 2 pages, got %d: %+v", len(state.Pages), state.Pages)
		}
		if state.Pages[1].Status != 404 {
			t.Errorf("expected 404 for /gone, got %s", state.Pages[1].Status)
		}
	})
}
