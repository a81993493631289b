package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"
)

// MaxAttrLen is the maximum length of a string attribute value before
// truncation. Values taken from crawled pages (URLs, titles) can be
// arbitrarily long; anything past this limit adds noise, not signal.
const MaxAttrLen = 512

// truncationMarker is appended to values that were cut at MaxAttrLen.
const truncationMarker = "...(truncated)"

// CleanHandler wraps an slog.Handler to clean string attribute values
// before they reach log output. It intercepts log records, truncates
// overlong strings, and strips control characters that a crawled page
// could use to inject escape sequences into the terminal.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites keep logging raw values and stay simple
type CleanHandler struct {
	// handler is the underlying slog handler that receives cleaned records.
	handler slog.Handler
}

// NewCleanHandler creates a new CleanHandler wrapping the given handler.
// All string attributes will be cleaned before being passed to the
// underlying handler. If handler is nil, the returned CleanHandler will
// use slog.Default().Handler().
func NewCleanHandler(handler slog.Handler) *CleanHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CleanHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CleanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle cleans the record's attributes and passes it to the underlying handler.
func (h *CleanHandler) Handle(ctx context.Context, r slog.Record) error {
	cleaned := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		cleaned.AddAttrs(h.cleanAttr(a))
		return true
	})

	return h.handler.Handle(ctx, cleaned)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are cleaned before being added.
func (h *CleanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleanedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleanedAttrs[i] = h.cleanAttr(a)
	}
	return &CleanHandler{handler: h.handler.WithAttrs(cleanedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *CleanHandler) WithGroup(name string) slog.Handler {
	return &CleanHandler{handler: h.handler.WithGroup(name)}
}

// cleanAttr cleans a single attribute, recursively handling groups.
func (h *CleanHandler) cleanAttr(a slog.Attr) slog.Attr {
	// Handle groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		cleanedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			cleanedAttrs[i] = h.cleanAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleanedAttrs...)}
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, CleanValue(a.Value.String()))
	}

	return a
}

// CleanValue strips control characters from s and truncates it to
// MaxAttrLen runes. Tabs and newlines are replaced with a single space
// so multi-line page titles stay readable on one log line.
func CleanValue(s string) string {
	if needsCleaning(s) {
		var b strings.Builder
		b.Grow(len(s))
		for _, r := range s {
			switch {
			case r == '\n' || r == '\t' || r == '\r':
				b.WriteRune(' ')
			case unicode.IsControl(r):
				// Drop escape sequences and other control characters.
			default:
				b.WriteRune(r)
			}
		}
		s = b.String()
	}

	if len(s) > MaxAttrLen {
		runes := []rune(s)
		if len(runes) > MaxAttrLen {
			s = string(runes[:MaxAttrLen]) + truncationMarker
		}
	}
	return s
}

// needsCleaning reports whether s contains any control character.
// Most values are clean; this avoids allocating a builder for them.
func needsCleaning(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// NewLogger creates a new slog.Logger with attribute cleaning.
// The logger truncates overlong values and strips control characters
// from all string attributes in log output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewCleanHandler(textHandler))
}
