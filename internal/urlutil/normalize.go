package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnsupportedScheme is returned when a URL uses a scheme other
// than http or https (mailto, javascript, tel, ftp, and so on).
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// Normalize canonicalizes a raw URL reference for deduplication.
// Relative references are resolved against base (base may be nil for
// absolute inputs). The result has no fragment, a lowercase scheme
// and host, no default port, and "/" instead of an empty path.
//
// Design decision: normalization is scheme-sensitive and preserves
// trailing slashes on non-root paths because:
//  1. http:// and https:// variants of a page can genuinely serve
//     different content, and the report should surface that
//  2. Whether /a and /a/ are the same resource is a server decision
//     we cannot make for it
//  3. The empty-path/root-slash merge is safe: they are the same
//     request on the wire
func Normalize(raw string, base *url.URL) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("malformed URL %q: %w", raw, err)
	}

	if base != nil {
		u = base.ResolveReference(u)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", raw)
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	// Default ports add nothing to identity.
	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	// http://example.com and http://example.com/ are the same request.
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// NormalizeSeed validates and canonicalizes the crawl's starting URL
// and returns the normalized URL together with the host the crawl is
// restricted to. A schemeless seed like "example.com" is assumed to
// be https. Failure here is fatal to the crawl.
func NormalizeSeed(raw string) (normalized, host string, err error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	normalized, err = Normalize(raw, nil)
	if err != nil {
		return "", "", fmt.Errorf("invalid seed URL: %w", err)
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", "", fmt.Errorf("invalid seed URL: %w", err)
	}
	return normalized, u.Host, nil
}

// SameHost reports whether the URL belongs to the given host.
// The match is exact: subdomains are different hosts.
func SameHost(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}
