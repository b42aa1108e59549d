package urlutil

import (
	"net/url"
	"strings"
)

// IsHTTPScheme reports whether rawURL parses with an http or https scheme
// in any letter case, so HTTPS://Example.com counts while it fails
// HasHTTPPrefix.
func IsHTTPScheme(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Scheme, "http") || strings.EqualFold(parsed.Scheme, "https")
}

// SkipReason explains why rawURL gets no grouping key, or returns "" when
// it is keyed normally.
func SkipReason(rawURL string) string {
	switch {
	case HasHTTPPrefix(rawURL):
		return ""
	case IsHTTPScheme(rawURL):
		return "scheme is not lowercase"
	default:
		return "not an http(s) URL"
	}
}

// HasHTTPPrefix reports whether rawURL literally starts with http:// or
// https://. Browser-internal pages (chrome://, about:, file://) never match.
func HasHTTPPrefix(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

// FilterHTTP returns the URLs that start with http:// or https://, in order.
func FilterHTTP(rawURLs []string) []string {
	var out []string
	for _, u := range rawURLs {
		if HasHTTPPrefix(u) {
			out = append(out, u)
		}
	}
	return out
}
