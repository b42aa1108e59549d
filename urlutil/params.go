package urlutil

import (
	"net/url"
	"strings"
)

// WithoutParameters returns rawURL with its query string and fragment
// removed, keeping scheme, host, port and path. For http and https the
// scheme and host are lowercased, a default port is dropped and an empty
// path becomes "/", so equal pages produce equal keys:
//
//	https://example.com/path?param=value#section -> https://example.com/path
//	https://example.com/?param=value             -> https://example.com/
//
// Strings that do not parse as absolute URLs are cut at the first ? or #
// and otherwise returned unchanged. The result is stable under reapplication.
func WithoutParameters(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	cut := rawURL
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		cut = rawURL[:i]
	}

	parsed, err := url.Parse(cut)
	if err != nil || parsed.Scheme == "" {
		return cut
	}

	scheme := strings.ToLower(parsed.Scheme)
	if parsed.Opaque != "" {
		return scheme + ":" + parsed.Opaque
	}

	host := strings.ToLower(parsed.Host)
	path := parsed.EscapedPath()
	if scheme == "http" || scheme == "https" {
		host = stripDefaultPort(scheme, host)
		if path == "" {
			path = "/"
		}
	}

	return scheme + "://" + host + path
}

// stripDefaultPort removes :80 from http hosts, :443 from https hosts and
// an empty port from either.
func stripDefaultPort(scheme, host string) string {
	i := strings.LastIndexByte(host, ':')
	if i < 0 || strings.Contains(host[i:], "]") {
		return host
	}

	port := host[i+1:]
	if port == "" || (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		return host[:i]
	}
	return host
}
