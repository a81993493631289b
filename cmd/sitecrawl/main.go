// Package main provides the entry point for the sitecrawl CLI.
//
// sitecrawl is a breadth-first crawler for a single web site.
// It fetches every same-host page up to a configurable depth and
// produces a report of HTTP status codes, failed requests, and the
// site structure by depth.
//
// Usage:
//
//	sitecrawl crawl <url>
//	sitecrawl history <host>
//
// See --help for all available options.
package main

// main is the entry point for sitecrawl.
func main() {
	Execute()
}
