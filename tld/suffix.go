// Package tld splits hostnames at their public suffix and derives the
// domain labels that browser tabs are grouped by.
package tld

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ErrInvalidHostname is wrapped by every error returned from PublicSuffixParser.
var ErrInvalidHostname = errors.New("invalid hostname")

const (
	maxDomainLength = 255
	maxLabelLength  = 63
)

// Decomposition is a hostname split around its public suffix.
// For test.example.co.jp it is {Subdomain: "test", SLD: "example", TLD: "co.jp"}.
// Any field may be empty: a bare suffix has only TLD set.
type Decomposition struct {
	Subdomain string
	SLD       string
	TLD       string
}

// Compound reports whether the public suffix spans more than one label
// (co.jp, lg.jp, co.uk).
func (d Decomposition) Compound() bool {
	return strings.Contains(d.TLD, ".")
}

// Parser looks up the public suffix structure of a hostname.
type Parser interface {
	Parse(hostname string) (Decomposition, error)
}

// PublicSuffixParser is the default Parser, backed by the Public Suffix List
// compiled into golang.org/x/net/publicsuffix.
type PublicSuffixParser struct{}

// Parse lowercases the hostname, drops one trailing dot and validates the
// labels before looking up the suffix. Non-ASCII hostnames are converted
// with IDNA for the lookup and the resulting labels converted back.
// Hostnames under the non-Internet "local" TLD decompose to the zero value.
func (PublicSuffixParser) Parse(hostname string) (Decomposition, error) {
	domain := strings.TrimSuffix(strings.ToLower(hostname), ".")

	unicode := !isASCII(domain)
	if unicode {
		ascii, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return Decomposition{}, fmt.Errorf("parse %q: %w: idna: %v", hostname, ErrInvalidHostname, err)
		}
		domain = ascii
	}

	if err := validate(domain); err != nil {
		return Decomposition{}, fmt.Errorf("parse %q: %w", hostname, err)
	}

	if domain == "local" || strings.HasSuffix(domain, ".local") {
		return Decomposition{}, nil
	}

	suffix, _ := publicsuffix.PublicSuffix(domain)
	d := Decomposition{TLD: suffix}
	if suffix != domain {
		rest := strings.TrimSuffix(domain, "."+suffix)
		if i := strings.LastIndexByte(rest, '.'); i >= 0 {
			d.Subdomain = rest[:i]
			d.SLD = rest[i+1:]
		} else {
			d.SLD = rest
		}
	}

	if unicode {
		d = Decomposition{
			Subdomain: toUnicode(d.Subdomain),
			SLD:       toUnicode(d.SLD),
			TLD:       toUnicode(d.TLD),
		}
	}
	return d, nil
}

// validate applies the syntax rules of the classic PSL parser to an ASCII
// domain: 1-255 bytes overall, labels of 1-63 bytes drawn from [a-z0-9-]
// that neither start nor end with a hyphen.
func validate(domain string) error {
	if domain == "" {
		return fmt.Errorf("%w: empty", ErrInvalidHostname)
	}
	if len(domain) > maxDomainLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidHostname, maxDomainLength)
	}

	for _, label := range strings.Split(domain, ".") {
		switch {
		case label == "":
			return fmt.Errorf("%w: empty label", ErrInvalidHostname)
		case len(label) > maxLabelLength:
			return fmt.Errorf("%w: label %q longer than %d bytes", ErrInvalidHostname, label, maxLabelLength)
		case label[0] == '-':
			return fmt.Errorf("%w: label %q starts with a hyphen", ErrInvalidHostname, label)
		case label[len(label)-1] == '-':
			return fmt.Errorf("%w: label %q ends with a hyphen", ErrInvalidHostname, label)
		case !isLDH(label):
			return fmt.Errorf("%w: label %q has invalid characters", ErrInvalidHostname, label)
		}
	}
	return nil
}

func isLDH(label string) bool {
	for i := 0; i < len(label); i++ {
		c := label[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func toUnicode(s string) string {
	if s == "" {
		return s
	}
	u, err := idna.Lookup.ToUnicode(s)
	if err != nil {
		return s
	}
	return u
}
