// Package model defines the core data structures for sitecrawl.
// It contains the crawl state mutated by the crawler, the immutable
// page records produced per visited URL, and the report snapshot
// compiled from the state.
package model
