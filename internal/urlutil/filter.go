package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// skipExtensions lists file extensions that never contain links worth
// following. Fetching them would waste the request budget on assets.
var skipExtensions = map[string]struct{}{
	".pdf":  {},
	".zip":  {},
	".exe":  {},
	".dmg":  {},
	".pkg":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".svg":  {},
	".ico":  {},
	".css":  {},
	".js":   {},
	".xml":  {},
}

// skipPathSegments lists path fragments that mark machine or
// administrative endpoints rather than content pages.
var skipPathSegments = []string{
	"/api/",
	"/admin/",
	"/wp-admin/",
	"/cgi-bin/",
	"/mail/",
}

// Crawlable reports whether a normalized URL points at a content page
// worth fetching. Asset files and administrative paths are excluded.
func Crawlable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	lower := strings.ToLower(u.Path)
	if _, skip := skipExtensions[path.Ext(lower)]; skip {
		return false
	}
	for _, segment := range skipPathSegments {
		if strings.Contains(lower, segment) {
			return false
		}
	}
	return true
}

// IgnoredBy reports whether the URL's path matches any of the given
// glob patterns. Patterns follow the syntax of MatchPattern.
func IgnoredBy(rawURL string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, pattern := range patterns {
		if MatchPattern(pattern, u.Path) {
			return true
		}
	}
	return false
}

// MatchPattern matches a URL path against a glob pattern.
// Supported forms:
//   - "/admin/*" matches "/admin" and anything below it
//   - "*.pdf" matches any path with that extension
//   - single-segment globs via path.Match ("/api/v?")
func MatchPattern(pattern, urlPath string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(urlPath, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if matched, err := path.Match(pattern, urlPath); err == nil && matched {
		return true
	}

	// A slash-free glob like "logout*" is matched against the last
	// path element.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := path.Match(pattern, path.Base(urlPath)); err == nil && matched {
			return true
		}
	}

	return false
}
