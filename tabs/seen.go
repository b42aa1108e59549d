package tabs

import (
	"sync"

	bloom "github.com/bits-and-blooms/bloom/v3"
)

// Seen is a set of keys fronted by a bloom filter. The map is authoritative:
// a filter miss skips the map lookup, and a filter hit is always confirmed
// against the map. An undersized filter only costs lookups, never answers.
type Seen struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// NewSeen sizes the filter for expected keys at a 0.1% false positive rate.
func NewSeen(expected int) *Seen {
	if expected < 1 {
		expected = 1
	}
	return &Seen{
		filter: bloom.NewWithEstimates(uint(expected), 0.001),
		exact:  make(map[string]struct{}, expected),
	}
}

// Add marks key as seen.
func (s *Seen) Add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter.AddString(key)
	s.exact[key] = struct{}{}
}

// Contains reports whether key has been added.
func (s *Seen) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.containsLocked(key)
}

// AddIfNew atomically checks key and marks it.
// Returns true if key was new.
func (s *Seen) AddIfNew(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.containsLocked(key) {
		return false
	}
	s.filter.AddString(key)
	s.exact[key] = struct{}{}
	return true
}

// Len returns the number of distinct keys.
func (s *Seen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exact)
}

func (s *Seen) containsLocked(key string) bool {
	if !s.filter.TestString(key) {
		return false
	}
	_, ok := s.exact[key]
	return ok
}
