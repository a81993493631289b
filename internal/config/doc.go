// Package config provides configuration structures and utilities for
// sitecrawl. It defines the crawl options populated from CLI flags,
// the optional per-host overrides file, and the XDG paths used for
// persisted crawl history.
package config
