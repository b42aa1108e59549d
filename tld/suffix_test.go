package tld

import (
	"errors"
	"strings"
	"testing"
)

func TestPublicSuffixParserParse(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		expected Decomposition
	}{
		{
			name:     "plain domain",
			hostname: "example.com",
			expected: Decomposition{SLD: "example", TLD: "com"},
		},
		{
			name:     "subdomain",
			hostname: "test.example.com",
			expected: Decomposition{Subdomain: "test", SLD: "example", TLD: "com"},
		},
		{
			name:     "deep subdomain",
			hostname: "a.b.example.com",
			expected: Decomposition{Subdomain: "a.b", SLD: "example", TLD: "com"},
		},
		{
			name:     "second level domain",
			hostname: "example.co.jp",
			expected: Decomposition{SLD: "example", TLD: "co.jp"},
		},
		{
			name:     "attribute type domain with subdomain",
			hostname: "test.example.lg.jp",
			expected: Decomposition{Subdomain: "test", SLD: "example", TLD: "lg.jp"},
		},
		{
			name:     "uppercase is lowered",
			hostname: "Test.Example.COM",
			expected: Decomposition{Subdomain: "test", SLD: "example", TLD: "com"},
		},
		{
			name:     "trailing dot dropped",
			hostname: "example.com.",
			expected: Decomposition{SLD: "example", TLD: "com"},
		},
		{
			name:     "bare suffix",
			hostname: "co.jp",
			expected: Decomposition{TLD: "co.jp"},
		},
		{
			name:     "unlisted suffix uses last label",
			hostname: "intranet.example.notarealtld",
			expected: Decomposition{Subdomain: "intranet", SLD: "example", TLD: "notarealtld"},
		},
		{
			name:     "local is not decomposed",
			hostname: "printer.local",
			expected: Decomposition{},
		},
		{
			name:     "unicode hostname",
			hostname: "пример.рф",
			expected: Decomposition{SLD: "пример", TLD: "рф"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublicSuffixParser{}.Parse(tt.hostname)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.hostname, err)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.hostname, got, tt.expected)
			}
		})
	}
}

func TestPublicSuffixParserParseInvalid(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
	}{
		{name: "empty", hostname: ""},
		{name: "port", hostname: "example.com:8080"},
		{name: "empty label", hostname: "example..com"},
		{name: "leading dot", hostname: ".example.com"},
		{name: "leading hyphen", hostname: "-example.com"},
		{name: "trailing hyphen", hostname: "example-.com"},
		{name: "underscore", hostname: "my_host.example.com"},
		{name: "label too long", hostname: strings.Repeat("a", 64) + ".com"},
		{name: "domain too long", hostname: strings.Repeat("abcdefghi.", 26) + "com"},
		{name: "query residue", hostname: "example.com?q=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PublicSuffixParser{}.Parse(tt.hostname)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.hostname)
			}
			if !errors.Is(err, ErrInvalidHostname) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidHostname", tt.hostname, err)
			}
		})
	}
}

func TestDecompositionCompound(t *testing.T) {
	tests := []struct {
		tld      string
		expected bool
	}{
		{"com", false},
		{"co.jp", true},
		{"lg.jp", true},
		{"", false},
	}

	for _, tt := range tests {
		got := Decomposition{TLD: tt.tld}.Compound()
		if got != tt.expected {
			t.Errorf("Decomposition{TLD: %q}.Compound() = %v, want %v", tt.tld, got, tt.expected)
		}
	}
}
