package model

// PageRecord is the immutable record of one visited page.
// Exactly one PageRecord exists per unique normalized URL; it is
// created when the fetch outcome is known and never modified after.
type PageRecord struct {
	// URL is the normalized URL of the page.
	URL string `json:"url"`

	// Depth is the breadth-first distance from the seed URL.
	// The seed itself is depth 0.
	Depth int `json:"depth"`

	// Status is the fetch outcome: an HTTP status code, or
	// StatusUnknown for transport-level failures.
	Status Status `json:"status"`

	// Title is the page title from the <title> tag.
	// Empty for non-HTML content and failed fetches.
	Title string `json:"title,omitempty"`

	// Error holds the transport failure detail when Status is
	// StatusUnknown. Empty otherwise.
	Error string `json:"error,omitempty"`
}

// FrontierEntry is a discovered URL waiting in the crawl queue,
// tagged with the depth it will be fetched at. Entries are produced
// when a link is discovered and consumed exactly once when dequeued.
type FrontierEntry struct {
	// URL is the normalized URL to fetch.
	URL string

	// Depth is the breadth-first depth the page will be recorded at.
	Depth int
}
