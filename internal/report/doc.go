// Package report renders compiled crawl reports.
//
// The package defines a Writer interface with Markdown and JSON
// implementations, plus a MultiWriter for writing the same report to
// several destinations (typically terminal and file) in one call.
// Writers only render; all aggregation happens in the model package.
package report
