package model

import (
	"sort"
	"time"
)

// Report is the immutable snapshot compiled from a Crawl.
// It carries everything the report writers need: header metrics, the
// status histogram, error URLs grouped by status, and all visited
// pages grouped by depth.
//
// Design decision: Grouped data is stored in sorted slices rather
// than maps because:
//  1. Writers iterate groups in a fixed order; map iteration order
//     would make report output nondeterministic
//  2. First-visited order inside each group is part of the report
//     contract and must survive aggregation
type Report struct {
	// BaseURL is the seed URL the crawl started from.
	BaseURL string `json:"base_url"`

	// Domain is the host the crawl was restricted to.
	Domain string `json:"domain"`

	// StartTime is when the crawl began.
	StartTime time.Time `json:"start_time"`

	// Duration is the wall-clock time from crawl start to report
	// compilation.
	Duration time.Duration `json:"duration"`

	// TotalRequests is the number of fetch attempts issued.
	TotalRequests int `json:"total_requests"`

	// PagesVisited is the number of pages recorded.
	PagesVisited int `json:"pages_visited"`

	// MaxDepthReached is the deepest level a page was recorded at.
	MaxDepthReached int `json:"max_depth_reached"`

	// StatusCounts lists one entry per distinct status observed,
	// sorted by code with Unknown first.
	StatusCounts []StatusCount `json:"status_counts"`

	// Errors lists the URLs of every error-classified page, grouped
	// by status and sorted by code with Unknown first. URLs within a
	// group appear in first-visited order.
	Errors []ErrorGroup `json:"errors,omitempty"`

	// Depths lists all visited pages grouped by depth, from 0 up to
	// MaxDepthReached. Pages within a depth appear in visit order.
	Depths []DepthGroup `json:"depths"`

	// Partial marks a report compiled after the crawl was
	// interrupted before the frontier was exhausted.
	Partial bool `json:"partial"`
}

// StatusCount is one row of the status histogram.
type StatusCount struct {
	// Status is the observed status value.
	Status Status `json:"status"`

	// Count is the number of pages recorded with this status.
	Count int `json:"count"`
}

// ErrorGroup collects the URLs that share one error status.
type ErrorGroup struct {
	// Status is the shared error status.
	Status Status `json:"status"`

	// URLs are the affected page URLs in first-visited order.
	URLs []string `json:"urls"`
}

// DepthGroup collects the pages recorded at one depth level.
type DepthGroup struct {
	// Depth is the breadth-first distance from the seed.
	Depth int `json:"depth"`

	// Pages are the pages recorded at this depth, in visit order.
	Pages []DepthPage `json:"pages"`
}

// DepthPage is one (status, url) pair in a depth listing.
type DepthPage struct {
	// Status is the page's recorded status.
	Status Status `json:"status"`

	// URL is the page's normalized URL.
	URL string `json:"url"`
}

// NewReport compiles a report from the crawl state.
// It is a pure read-only transformation: the state is not mutated,
// and compiling the same unmodified state twice yields identical
// reports (apart from Duration, which is measured at compile time).
// It may be called mid-crawl for diagnostics.
func NewReport(c *Crawl) *Report {
	r := &Report{
		BaseURL:         c.BaseURL,
		Domain:          c.Domain,
		StartTime:       c.StartTime,
		Duration:        time.Since(c.StartTime),
		TotalRequests:   c.TotalRequests,
		PagesVisited:    len(c.Pages),
		MaxDepthReached: c.MaxDepthReached(),
		Partial:         c.Interrupted,
	}

	counts := make(map[Status]int)
	errs := make(map[Status][]string)
	byDepth := make(map[int][]DepthPage)

	for _, p := range c.Pages {
		counts[p.Status]++
		if p.Status.IsError() {
			errs[p.Status] = append(errs[p.Status], p.URL)
		}
		byDepth[p.Depth] = append(byDepth[p.Depth], DepthPage{Status: p.Status, URL: p.URL})
	}

	r.StatusCounts = make([]StatusCount, 0, len(counts))
	for status, count := range counts {
		r.StatusCounts = append(r.StatusCounts, StatusCount{Status: status, Count: count})
	}
	sort.Slice(r.StatusCounts, func(i, j int) bool {
		return r.StatusCounts[i].Status < r.StatusCounts[j].Status
	})

	errStatuses := make([]Status, 0, len(errs))
	for status := range errs {
		errStatuses = append(errStatuses, status)
	}
	sort.Slice(errStatuses, func(i, j int) bool { return errStatuses[i] < errStatuses[j] })
	for _, status := range errStatuses {
		r.Errors = append(r.Errors, ErrorGroup{Status: status, URLs: errs[status]})
	}

	// Every level from 0 to the maximum is listed, including levels
	// that happen to be empty, so the depth structure of the crawl is
	// visible at a glance.
	if len(c.Pages) > 0 {
		r.Depths = make([]DepthGroup, 0, r.MaxDepthReached+1)
		for depth := 0; depth <= r.MaxDepthReached; depth++ {
			r.Depths = append(r.Depths, DepthGroup{Depth: depth, Pages: byDepth[depth]})
		}
	}

	return r
}

// HasErrors reports whether any page was classified as an error.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}
