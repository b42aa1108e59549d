package tabs

import (
	"fmt"
	"slices"
	"testing"

	"github.com/lukemcguire/grouptabs/urlutil"
)

func TestSeen(t *testing.T) {
	s := NewSeen(0)

	if s.Contains("a") {
		t.Error("empty set contains a")
	}
	if !s.AddIfNew("a") {
		t.Error("AddIfNew(a) = false on first add")
	}
	if s.AddIfNew("a") {
		t.Error("AddIfNew(a) = true on second add")
	}
	s.Add("b")
	if !s.Contains("b") {
		t.Error("Contains(b) = false after Add")
	}
	if got := s.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestSeenNoFalsePositives(t *testing.T) {
	s := NewSeen(100)
	for i := range 1000 {
		s.Add(fmt.Sprintf("https://example.com/%d", i))
	}
	for i := 1000; i < 2000; i++ {
		key := fmt.Sprintf("https://example.com/%d", i)
		if s.Contains(key) {
			t.Fatalf("Contains(%q) = true for a key never added", key)
		}
	}
}

func TestSeenUndersizedFilter(t *testing.T) {
	s := NewSeen(1)
	added := 0
	for i := range 500 {
		if s.AddIfNew(fmt.Sprintf("k%d", i%250)) {
			added++
		}
	}
	if added != 250 {
		t.Errorf("AddIfNew accepted %d keys, want 250", added)
	}
	if got := s.Len(); got != 250 {
		t.Errorf("Len() = %d, want 250", got)
	}
	if s.Contains("k250") {
		t.Error("Contains(k250) = true for a key never added")
	}
}

func TestFindDuplicates(t *testing.T) {
	in := tabsOf(
		"https://example.com/a?x=1",
		"https://example.com/a?x=2",
		"https://example.com/a?x=1",
		"",
		"https://EXAMPLE.com/a#frag",
		"",
	)

	tests := []struct {
		name string
		key  func(string) string
		want []int
	}{
		{name: "exact", key: func(u string) string { return u }, want: []int{3}},
		{name: "ignore params", key: urlutil.WithoutParameters, want: []int{2, 3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tabIDs(FindDuplicates(in, tt.key))
			if !slices.Equal(got, tt.want) {
				t.Errorf("FindDuplicates = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectionFallback(t *testing.T) {
	active := tabsOf("https://active/")
	one := tabsOf("https://one/")
	many := tabsOf("https://one/", "https://two/")

	tests := []struct {
		name     string
		selected []Tab
		want     int
	}{
		{name: "none selected", selected: nil, want: 1},
		{name: "one selected", selected: one, want: 1},
		{name: "many selected", selected: many, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectionFallback(tt.selected, active)
			if len(got) != tt.want {
				t.Errorf("len(SelectionFallback) = %d, want %d", len(got), tt.want)
			}
		})
	}

	if got := SelectionFallback(nil, nil); len(got) != 0 {
		t.Errorf("SelectionFallback(nil, nil) = %v, want empty", got)
	}
}
