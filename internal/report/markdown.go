package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/sitecrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This is the canonical textual report artifact.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts for the partial-result marker
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeStatusSummary(md, report)
	w.writeErrorDetails(md, report)
	w.writePagesByDepth(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the title, the partial marker when the crawl was
// interrupted, and the header metrics table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Site Crawler Report: " + report.BaseURL)
	md.PlainText("")

	if report.Partial {
		md.Warningf("PARTIAL REPORT - crawling was interrupted before the frontier was exhausted.")
		md.PlainText("")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Base URL", report.BaseURL},
			{"Domain", report.Domain},
			{"Start Time", report.StartTime.Format("2006-01-02 15:04:05")},
			{"Duration", fmt.Sprintf("%.2f seconds", report.Duration.Seconds())},
			{"Total Requests", strconv.Itoa(report.TotalRequests)},
			{"Total Pages Visited", strconv.Itoa(report.PagesVisited)},
			{"Max Depth Reached", strconv.Itoa(report.MaxDepthReached)},
		},
	})
	md.PlainText("")
}

// writeStatusSummary writes the status code histogram table.
func (w *MarkdownWriter) writeStatusSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("HTTP Status Code Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(report.StatusCounts))
	for _, sc := range report.StatusCounts {
		rows = append(rows, []string{
			sc.Status.String(),
			sc.Status.Description(),
			strconv.Itoa(sc.Count),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Status Code", "Description", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrorDetails writes one section per error status, listing the
// affected URLs in first-visited order. Omitted when no page errored.
func (w *MarkdownWriter) writeErrorDetails(md *markdown.Markdown, report *model.Report) {
	if !report.HasErrors() {
		return
	}

	md.H2("Detailed Error Report")
	md.PlainText("")

	for _, group := range report.Errors {
		if group.Status == model.StatusUnknown {
			md.H3("Failed Requests")
		} else {
			md.H3("HTTP " + group.Status.String() + " Errors")
		}
		md.PlainText("")
		md.BulletList(group.URLs...)
		md.PlainText("")
	}
}

// writePagesByDepth writes the depth-ordered listing of all visited
// pages with their status.
func (w *MarkdownWriter) writePagesByDepth(md *markdown.Markdown, report *model.Report) {
	md.H2("All Visited Pages by Depth")
	md.PlainText("")

	for _, group := range report.Depths {
		if len(group.Pages) == 0 {
			continue
		}

		md.H3(fmt.Sprintf("Depth %d (%d pages)", group.Depth, len(group.Pages)))
		md.PlainText("")

		items := make([]string, 0, len(group.Pages))
		for _, p := range group.Pages {
			items = append(items, "["+p.Status.String()+"] "+p.URL)
		}
		md.BulletList(items...)
		md.PlainText("")
	}
}
