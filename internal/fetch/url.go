package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/leadlens/leadlens/internal/assess"
)

// NormalizeURL standardizes a caller-supplied URL so identical pages share a
// cache key. It trims whitespace, defaults the scheme to https, lowercases
// the scheme and host, removes default ports and fragments, and sorts query
// parameters. Malformed input fails with assess.ErrInvalidURL.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty url", assess.ErrInvalidURL)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", assess.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", assess.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", assess.ErrInvalidURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	u.RawQuery = u.Query().Encode()

	return u.String(), nil
}

// CacheKey converts a normalized URL into its cache key form.
func CacheKey(normalizedURL string) string {
	return strings.ToLower(normalizedURL)
}
