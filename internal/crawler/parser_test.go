package crawler

import (
	"strings"
	"testing"
)

// TestParser tests HTML title and link extraction.
func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title> Test Page </title></head><body></body></html>`
		parser, err := NewParser("https://example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Title != "Test Page" {
			t.Errorf("expected title 'Test Page', got %q", result.Title)
		}
	})

	t.Run("resolves relative links against the page URL", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/about">About</a>
			<a href="sibling.html">Sibling</a>
			<a href="https://example.com/absolute">Absolute</a>
			<a href="https://other.com/external">External</a>
		</body></html>`

		parser, err := NewParser("https://example.com/dir/page.html")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		want := []string{
			"https://example.com/about",
			"https://example.com/dir/sibling.html",
			"https://example.com/absolute",
			"https://other.com/external",
		}
		if len(result.Links) != len(want) {
			t.Fatalf("expected %d links, got %d: %v", len(want), len(result.Links), result.Links)
		}
		for i, wantLink := range want {
			if result.Links[i] != wantLink {
				t.Errorf("link %d: expected %s, got %s", i, wantLink, result.Links[i])
			}
		}
	})

	t.Run("drops non-navigable targets", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="javascript:void(0)">JS</a>
			<a href="mailto:user@example.com">Mail</a>
			<a href="tel:+123456">Phone</a>
			<a href="data:text/plain,hello">Data</a>
			<a href="#top">Anchor</a>
			<a href="">Empty</a>
			<a href="/real">Real</a>
		</body></html>`

		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(result.Links) != 1 || result.Links[0] != "https://example.com/real" {
			t.Errorf("expected only the real link, got %v", result.Links)
		}
	})

	t.Run("tolerates malformed HTML", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/ok">unclosed<div><p></body>`
		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if len(result.Links) != 1 {
			t.Errorf("expected 1 link from malformed HTML, got %d", len(result.Links))
		}
	})

	t.Run("non-HTML content yields no links", func(t *testing.T) {
		t.Parallel()

		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(`{"json": true}`))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if len(result.Links) != 0 {
			t.Errorf("expected no links from JSON body, got %v", result.Links)
		}
	})
}
