package config

// HostConfig holds per-host overrides for crawl behavior.
// This allows tuning individual sites without changing the CLI flags
// used for every run.
type HostConfig struct {
	// MaxDepth overrides the global crawl depth for this host.
	// Nil means the global value applies; an explicit 0 restricts the
	// crawl to the seed page.
	MaxDepth *int `yaml:"maxDepth,omitempty"`

	// Delay overrides the inter-request delay for this host.
	Delay Duration `yaml:"delay,omitempty"`

	// MaxPages overrides the page cap for this host.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Headers are custom HTTP headers to include in requests to this
	// host, e.g. an Authorization header for a staging site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// IgnorePatterns are URL path globs to skip during crawling
	// (e.g. "/logout*", "/admin/*", "*.csv").
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
}

// File represents the structure of the .sitecrawl configuration file.
type File struct {
	// Hosts maps host names to their overrides.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults contains overrides applied to every host unless the
	// host-specific entry sets its own value.
	Defaults HostConfig `yaml:"defaults,omitempty"`
}

// GetHostConfig returns the merged configuration for a host:
// file defaults overridden by the host-specific entry.
func (cf *File) GetHostConfig(host string) HostConfig {
	result := cf.Defaults

	if hc, ok := cf.Hosts[host]; ok {
		if hc.MaxDepth != nil {
			result.MaxDepth = hc.MaxDepth
		}
		if !hc.Delay.IsZero() {
			result.Delay = hc.Delay
		}
		if hc.MaxPages != 0 {
			result.MaxPages = hc.MaxPages
		}
		if len(hc.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range hc.Headers {
				result.Headers[k] = v
			}
		}
		if len(hc.IgnorePatterns) > 0 {
			result.IgnorePatterns = hc.IgnorePatterns
		}
	}

	return result
}

// Apply merges the host overrides into the crawl configuration.
func (hc HostConfig) Apply(cfg *Config) {
	if hc.MaxDepth != nil {
		cfg.MaxDepth = *hc.MaxDepth
	}
	if !hc.Delay.IsZero() {
		cfg.Delay = hc.Delay.Duration
	}
	if hc.MaxPages != 0 {
		cfg.MaxPages = hc.MaxPages
	}
}
