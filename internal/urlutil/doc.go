// Package urlutil provides URL normalization and frontier-eligibility
// checks for the crawler. Normalization defines URL identity for the
// visited registry, so the rules here decide what "the same page"
// means for the whole crawl.
package urlutil
