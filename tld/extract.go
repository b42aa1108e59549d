package tld

import "strings"

var defaultParser Parser = PublicSuffixParser{}

// ExtractFull returns the grouping label of hostname with its subdomain kept:
// test.example.co.jp -> test.example. When the lookup fails or yields no
// SLD it falls back to dropping the last label.
func ExtractFull(p Parser, hostname string) string {
	if p == nil {
		p = defaultParser
	}

	d, err := p.Parse(hostname)
	if err != nil {
		return dropLastLabel(hostname)
	}

	switch {
	case d.Subdomain != "" && d.SLD != "":
		return d.Subdomain + "." + d.SLD
	case d.SLD != "":
		return d.SLD
	default:
		return dropLastLabel(hostname)
	}
}

// ExtractApex returns the grouping label of hostname without subdomains:
// test.example.co.jp -> example. When the lookup fails or yields no SLD it
// falls back to the label just before the last one.
func ExtractApex(p Parser, hostname string) string {
	if p == nil {
		p = defaultParser
	}

	d, err := p.Parse(hostname)
	if err != nil || d.SLD == "" {
		return labelBeforeLast(hostname)
	}
	return d.SLD
}

// RemoveCompoundSuffix strips a multi-label public suffix (second-level
// domains such as co.jp and attribute-type domains such as lg.jp) and
// reports whether it did. Single-label suffixes are left to ExtractFull.
//
// ExtractFull already yields the same key for compound suffixes; this is
// the older second-level/attribute-type domain rule kept on its own so its
// results can be checked against ExtractFull.
func RemoveCompoundSuffix(p Parser, hostname string) (string, bool) {
	if p == nil {
		p = defaultParser
	}

	d, err := p.Parse(hostname)
	if err != nil || !d.Compound() || d.SLD == "" {
		return hostname, false
	}
	if d.Subdomain != "" {
		return d.Subdomain + "." + d.SLD, true
	}
	return d.SLD, true
}

// dropLastLabel turns foo.example.com into foo.example. A hostname without
// a dot after its first byte is returned unchanged.
func dropLastLabel(hostname string) string {
	if i := strings.LastIndexByte(hostname, '.'); i > 0 {
		return hostname[:i]
	}
	return hostname
}

// labelBeforeLast turns foo.example.com into example.
func labelBeforeLast(hostname string) string {
	i := strings.LastIndexByte(hostname, '.')
	if i <= 0 {
		return hostname
	}
	rest := hostname[:i]
	if j := strings.LastIndexByte(rest, '.'); j > 0 {
		return rest[j+1:]
	}
	return rest
}
