// Package references turns the hrefs found in a post's rendered content into
// canonical reference keys: a post ID for same-site links, or a hostname for
// links leaving the site.
package references

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/TomerAberbach/website/domain/config"
	"github.com/TomerAberbach/website/domain/core/valueobjects"
)

// ErrMalformedHref is returned when an href cannot be parsed as a URL
// relative to the site's base URL. Post content is trusted input, so a
// malformed href is a content bug and fails the build.
var ErrMalformedHref = errors.New("references: malformed href")

// Parser canonicalizes hrefs against a site's base URL
type Parser struct {
	base    *url.URL
	host    string
	aliases map[string]string
	ignored map[string]struct{}
}

// NewParser creates a parser for the given site configuration
func NewParser(cfg *config.SiteConfig) (*Parser, error) {
	if cfg == nil {
		cfg = config.DefaultSiteConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	aliases := make(map[string]string, len(cfg.HostAliases))
	for from, to := range cfg.HostAliases {
		aliases[strings.ToLower(from)] = strings.ToLower(to)
	}

	ignored := make(map[string]struct{}, len(cfg.IgnoredHrefs))
	for _, href := range cfg.IgnoredHrefs {
		ignored[href] = struct{}{}
	}

	return &Parser{
		base:    base,
		host:    stripWWW(strings.ToLower(base.Hostname())),
		aliases: aliases,
		ignored: ignored,
	}, nil
}

// Parse maps each canonical reference key to the set of literal hrefs that
// resolve to it. Fragment-only and ignored hrefs are skipped, as are hrefs
// with a non-web scheme such as mailto:.
func (p *Parser) Parse(hrefs []string) (map[string]valueobjects.StringSet, error) {
	grouped := make(map[string][]string)
	for _, href := range hrefs {
		key, ok, err := p.Canonicalize(href)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		grouped[key] = append(grouped[key], href)
	}

	refs := make(map[string]valueobjects.StringSet, len(grouped))
	for key, values := range grouped {
		refs[key] = valueobjects.NewStringSet(values...)
	}
	return refs, nil
}

// Canonicalize returns the canonical reference key of a single href.
// ok is false when the href does not produce a reference.
func (p *Parser) Canonicalize(href string) (key string, ok bool, err error) {
	if strings.HasPrefix(href, "#") {
		return "", false, nil
	}
	if _, ignored := p.ignored[href]; ignored {
		return "", false, nil
	}

	resolved, err := p.resolve(href)
	if err != nil {
		return "", false, err
	}

	switch resolved.Scheme {
	case "http", "https":
	default:
		return "", false, nil
	}

	host := stripWWW(strings.ToLower(resolved.Hostname()))
	if host == "" {
		return "", false, fmt.Errorf("%w: %q has no host", ErrMalformedHref, href)
	}

	if host == p.host {
		// The home page is not a post, so it is named after the site
		if path := strings.TrimPrefix(resolved.Path, "/"); path != "" {
			return path, true, nil
		}
		return p.host, true, nil
	}

	if alias, ok := p.aliases[host]; ok {
		return alias, true, nil
	}
	return host, true, nil
}

// Origin returns the scheme and host of href resolved against the base URL.
// An href that cannot be parsed is returned unchanged.
func (p *Parser) Origin(href string) string {
	resolved, err := p.resolve(href)
	if err != nil || resolved.Host == "" {
		return href
	}
	return resolved.Scheme + "://" + resolved.Host
}

func (p *Parser) resolve(href string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedHref, href, err)
	}
	return p.base.ResolveReference(ref), nil
}

func stripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}
