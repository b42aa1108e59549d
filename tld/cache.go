package tld

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of hostnames a CachedParser remembers.
const DefaultCacheSize = 4096

type cachedLookup struct {
	decomposition Decomposition
	err           error
}

// CachedParser memoizes another Parser. Sorting a tab strip asks for the
// same handful of hostnames over and over, so lookups are cached, failures
// included. It is safe for concurrent use.
type CachedParser struct {
	next  Parser
	cache *lru.Cache[string, cachedLookup]
}

// NewCachedParser wraps next (PublicSuffixParser when nil) with an LRU of
// the given size. A size <= 0 selects DefaultCacheSize.
func NewCachedParser(next Parser, size int) (*CachedParser, error) {
	if next == nil {
		next = PublicSuffixParser{}
	}
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[string, cachedLookup](size)
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}
	return &CachedParser{next: next, cache: cache}, nil
}

// Parse returns the cached result for hostname, consulting the wrapped
// parser on a miss.
func (c *CachedParser) Parse(hostname string) (Decomposition, error) {
	if hit, ok := c.cache.Get(hostname); ok {
		return hit.decomposition, hit.err
	}

	d, err := c.next.Parse(hostname)
	c.cache.Add(hostname, cachedLookup{decomposition: d, err: err})
	return d, err
}

// Len returns the number of cached hostnames.
func (c *CachedParser) Len() int {
	return c.cache.Len()
}
