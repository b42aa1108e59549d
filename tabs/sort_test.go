package tabs

import (
	"slices"
	"testing"
	"time"

	"github.com/lukemcguire/grouptabs/activity"
	"github.com/lukemcguire/grouptabs/urlutil"
)

func tabsOf(urls ...string) []Tab {
	out := make([]Tab, len(urls))
	for i, u := range urls {
		out[i] = Tab{ID: i + 1, URL: u, GroupID: GroupIDNone}
	}
	return out
}

func TestSortByURL(t *testing.T) {
	in := tabsOf(
		"https://b.test/",
		"https://A.test/",
		"https://a.test/",
		"http://c.test/",
	)
	got := tabIDs(SortByURL(in))
	want := []int{4, 2, 3, 1}
	if !slices.Equal(got, want) {
		t.Errorf("SortByURL order = %v, want %v", got, want)
	}
	if !slices.Equal(tabIDs(in), []int{1, 2, 3, 4}) {
		t.Error("SortByURL modified its input")
	}
}

func TestSortByKey(t *testing.T) {
	in := tabsOf(
		"https://www.zeta.example.com/",
		"https://mail.google.com/",
		"https://alpha.example.com/x",
		"https://www.google.com/",
		"chrome://settings",
	)

	tests := []struct {
		name string
		key  func(string) string
		want []int
	}{
		{name: "full", key: urlutil.DomainName, want: []int{5, 3, 4, 2, 1}},
		{name: "apex", key: urlutil.DomainNameIgnoreSubDomain, want: []int{5, 1, 3, 2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tabIDs(SortByKey(in, tt.key)); !slices.Equal(got, tt.want) {
				t.Errorf("SortByKey order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortByLastAccessed(t *testing.T) {
	in := tabsOf("https://a/", "https://b/", "https://c/", "https://d/")
	base := time.UnixMilli(1_700_000_000_000)
	data := activity.Data{
		1: base,
		2: base.Add(time.Minute),
		4: base.Add(time.Hour),
	}

	got := tabIDs(SortByLastAccessed(in, data))
	want := []int{4, 2, 1, 3}
	if !slices.Equal(got, want) {
		t.Errorf("SortByLastAccessed order = %v, want %v", got, want)
	}
}

func TestSortByLastAccessedStable(t *testing.T) {
	in := tabsOf("https://a/", "https://b/", "https://c/")
	got := tabIDs(SortByLastAccessed(in, nil))
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("tabs without activity reordered: %v", got)
	}
}
