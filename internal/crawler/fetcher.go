package crawler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/nao1215/sitecrawl/internal/model"
)

// OutcomeKind distinguishes the three ways a fetch can end.
type OutcomeKind int

const (
	// OutcomeSuccess is a response with a non-error status code.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeHTTPError is a response with status >= 400. The request
	// itself worked; the page is recorded and bucketed as an error.
	OutcomeHTTPError

	// OutcomeTransportFailure is a failure below the HTTP layer:
	// DNS, connection refused, timeout, or a protocol error.
	// No status code exists for these.
	OutcomeTransportFailure
)

// Outcome is the result of fetching one URL.
//
// Design decision: The fetcher reports failures as a value instead of
// returning an error because:
//  1. A per-page failure is an expected crawl result, not an
//     exceptional condition; the loop records it and moves on
//  2. The engine branches on one explicit type instead of probing
//     error values for network-ness
//  3. It keeps "fatal" errors (seed validation) visibly distinct:
//     those are the only errors the engine ever returns
type Outcome struct {
	// Kind classifies the outcome.
	Kind OutcomeKind

	// StatusCode is the HTTP status code. Zero for transport failures.
	StatusCode int

	// FinalURL is the URL after redirects were followed.
	FinalURL string

	// ContentType is the response Content-Type header value.
	ContentType string

	// Body is the response body, capped at the fetcher's body limit.
	// Nil for transport failures.
	Body []byte

	// Reason holds the transport failure detail. Empty otherwise.
	Reason string
}

// Status maps the outcome to the recorded page status.
func (o Outcome) Status() model.Status {
	if o.Kind == OutcomeTransportFailure {
		return model.StatusUnknown
	}
	return model.Status(o.StatusCode)
}

// IsHTML reports whether the response body is HTML.
func (o Outcome) IsHTML() bool {
	return strings.Contains(o.ContentType, "text/html") ||
		strings.Contains(o.ContentType, "application/xhtml+xml")
}

// Fetcher performs one HTTP GET per URL and classifies the result.
type Fetcher struct {
	// client performs the requests and follows redirects.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// headers are extra headers sent with every request, e.g. an
	// Authorization header for a staging site.
	headers map[string]string

	// maxBodySize caps how much of a response body is read.
	maxBodySize int64
}

// NewFetcher creates a Fetcher using the given HTTP client.
// The client should already carry the per-request timeout.
func NewFetcher(client *http.Client, userAgent string, maxBodySize int64) *Fetcher {
	return &Fetcher{
		client:      client,
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
	}
}

// Fetch retrieves one page. It never returns an error: transport
// failures come back as an OutcomeTransportFailure value so the
// crawl loop can record them and continue.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Outcome{Kind: OutcomeTransportFailure, FinalURL: pageURL, Reason: err.Error()}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Outcome{Kind: OutcomeTransportFailure, FinalURL: pageURL, Reason: err.Error()}
	}
	defer resp.Body.Close()

	outcome := Outcome{
		Kind:        OutcomeSuccess,
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}
	if resp.StatusCode >= 400 {
		outcome.Kind = OutcomeHTTPError
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		// The status line arrived, so the page was reached; a torn
		// body only means no links can be extracted from it.
		return outcome
	}
	outcome.Body = body

	return outcome
}
