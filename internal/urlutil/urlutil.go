package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// trackingParams are dropped from query strings in addition to any utm_* key.
// Anything else may identify the recipe and is kept.
var trackingParams = map[string]struct{}{
	"gclid":  {},
	"fbclid": {},
	"igshid": {},
	"si":     {},
}

// Normalize produces a stable key for a recipe URL: lower-cased host without
// "www.", no fragment, no trailing slash and no tracking parameters. The
// remaining query is re-encoded in key order. It returns the normalized URL
// and its host.
func Normalize(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	u.Host = normalizeHost(u.Host)
	u.Path = normalizePath(u.Path)
	u.RawQuery = normalizeQuery(u.RawQuery)
	return u.String(), u.Hostname(), nil
}

// HostMatches reports whether raw's host is domain or a subdomain of it.
func HostMatches(raw, domain string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := normalizeHost(u.Hostname())
	domain = normalizeHost(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	return host
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean(p)
	if clean == "." {
		return "/"
	}
	if clean != "/" && strings.HasSuffix(clean, "/") {
		clean = strings.TrimSuffix(clean, "/")
	}
	return clean
}

func normalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	for key := range values {
		lk := strings.ToLower(key)
		if _, ok := trackingParams[lk]; ok || strings.HasPrefix(lk, "utm_") {
			delete(values, key)
		}
	}
	// Encode sorts by key
	return values.Encode()
}
