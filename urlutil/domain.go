// Package urlutil derives the keys tabs are grouped and deduplicated by
// from raw tab URLs.
package urlutil

import (
	"regexp"
	"strings"

	"github.com/lukemcguire/grouptabs/tld"
)

var (
	httpURL   = regexp.MustCompile(`^https?://(.*)$`)
	wwwPrefix = regexp.MustCompile(`(?i)^www\d?\.`)
)

// Keyer computes grouping and dedup keys with a specific suffix parser.
// The zero value uses the uncached PublicSuffixParser.
type Keyer struct {
	parser tld.Parser
}

// NewKeyer returns a Keyer backed by parser.
func NewKeyer(parser tld.Parser) *Keyer {
	return &Keyer{parser: parser}
}

var defaultKeyer = newDefaultKeyer()

// Default returns the shared Keyer backed by a cached PublicSuffixParser.
func Default() *Keyer {
	return defaultKeyer
}

func newDefaultKeyer() *Keyer {
	cached, err := tld.NewCachedParser(nil, tld.DefaultCacheSize)
	if err != nil {
		return &Keyer{}
	}
	return NewKeyer(cached)
}

// Full returns the grouping key of rawURL with subdomains kept:
// https://www.test.example.co.jp/hoge -> test.example.
// Empty and non-http(s) URLs yield "".
func (k *Keyer) Full(rawURL string) string {
	host, ok := hostPart(rawURL)
	if !ok {
		return ""
	}
	return tld.ExtractFull(k.parser, host)
}

// Apex returns the grouping key of rawURL without subdomains:
// https://www.test.example.co.jp/hoge -> example.
// Empty and non-http(s) URLs yield "".
func (k *Keyer) Apex(rawURL string) string {
	host, ok := hostPart(rawURL)
	if !ok {
		return ""
	}
	return tld.ExtractApex(k.parser, host)
}

// Dedup returns the duplicate-detection key of rawURL.
func (k *Keyer) Dedup(rawURL string) string {
	return WithoutParameters(rawURL)
}

// DomainName returns the domain part of the URL, ignoring a leading www.
func DomainName(rawURL string) string {
	return defaultKeyer.Full(rawURL)
}

// DomainNameIgnoreSubDomain returns the domain part of the URL, ignoring
// a leading www and any other subdomains.
func DomainNameIgnoreSubDomain(rawURL string) string {
	return defaultKeyer.Apex(rawURL)
}

// hostPart isolates the lowercased host[:port] of an http(s) URL after
// dropping one www or www<digit> label.
func hostPart(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}

	m := httpURL.FindStringSubmatch(rawURL)
	if m == nil || m[1] == "" {
		return "", false
	}

	host := wwwPrefix.ReplaceAllLiteralString(m[1], "")
	if i := strings.IndexByte(host, '/'); i > 0 {
		host = host[:i]
	}
	return strings.ToLower(host), true
}
