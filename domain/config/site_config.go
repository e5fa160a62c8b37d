package config

import (
	"fmt"
	"net/url"
	"strings"
)

// SiteConfig holds the rules used to turn post content into graph references
type SiteConfig struct {
	// BaseURL is the canonical site origin every href is resolved against
	BaseURL string

	// HostAliases maps a hostname (without "www.") to the canonical brand host
	HostAliases map[string]string

	// IgnoredHrefs are literal hrefs that never produce a reference,
	// e.g. stylesheets pulled in by rendered math
	IgnoredHrefs []string

	// TagCategories groups tags for display. Tags missing here fall into OtherTagCategory.
	TagCategories map[string]string
}

// OtherTagCategory is the category of tags not listed in SiteConfig.TagCategories
const OtherTagCategory = "other"

// DefaultSiteConfig returns the default site configuration
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		BaseURL: "https://tomeraberbach.com",
		HostAliases: map[string]string{
			"youtu.be":  "youtube.com",
			"redd.it":   "reddit.com",
			"t.co":      "twitter.com",
			"x.com":     "twitter.com",
			"goo.gl":    "google.com",
			"amzn.to":   "amazon.com",
			"git.io":    "github.com",
			"npmjs.org": "npmjs.com",
		},
		IgnoredHrefs: []string{
			"https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.css",
		},
		TagCategories: map[string]string{
			"code":       "technology",
			"javascript": "technology",
			"typescript": "technology",
			"go":         "technology",
			"npm":        "technology",
			"security":   "technology",
			"math":       "science",
			"algorithms": "science",
			"art":        "creative",
			"music":      "creative",
			"writing":    "creative",
			"career":     "life",
			"personal":   "life",
		},
	}
}

// LoadSiteConfig returns the default site configuration with the base URL
// overridden and extra ignored hrefs appended when provided
func LoadSiteConfig(baseURL string, ignoredHrefs []string) *SiteConfig {
	cfg := DefaultSiteConfig()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if len(ignoredHrefs) > 0 {
		cfg.IgnoredHrefs = append(append([]string{}, cfg.IgnoredHrefs...), ignoredHrefs...)
	}
	return cfg
}

// CategoryOf returns the category of a tag
func (c *SiteConfig) CategoryOf(tag string) string {
	if category, ok := c.TagCategories[strings.ToLower(tag)]; ok {
		return category
	}
	return OtherTagCategory
}

// Validate checks if the configuration is valid
func (c *SiteConfig) Validate() error {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if !base.IsAbs() || base.Hostname() == "" {
		return fmt.Errorf("base URL %q must be absolute", c.BaseURL)
	}
	for from, to := range c.HostAliases {
		if from == "" || to == "" {
			return fmt.Errorf("host alias %q -> %q must not be empty", from, to)
		}
	}
	return nil
}
