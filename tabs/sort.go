package tabs

import (
	"slices"
	"strings"

	"github.com/lukemcguire/grouptabs/activity"
)

// SortByURL returns tabs ordered by lowercased URL. Equal URLs keep their
// relative order.
func SortByURL(tabs []Tab) []Tab {
	return SortByKey(tabs, func(u string) string { return u })
}

// SortByKey returns tabs ordered by key of the lowercased URL, stably.
func SortByKey(tabs []Tab, key func(rawURL string) string) []Tab {
	keys := make(map[int]string, len(tabs))
	for _, t := range tabs {
		keys[t.ID] = key(strings.ToLower(t.URL))
	}

	sorted := slices.Clone(tabs)
	slices.SortStableFunc(sorted, func(a, b Tab) int {
		return strings.Compare(keys[a.ID], keys[b.ID])
	})
	return sorted
}

// SortByLastAccessed returns tabs with the most recently used first. Tabs
// without activity sort last, in their original order.
func SortByLastAccessed(tabs []Tab, data activity.Data) []Tab {
	sorted := slices.Clone(tabs)
	slices.SortStableFunc(sorted, func(a, b Tab) int {
		ta, tb := lastMillis(data, a.ID), lastMillis(data, b.ID)
		switch {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		}
		return 0
	})
	return sorted
}

func lastMillis(data activity.Data, tabID int) int64 {
	t, ok := data[tabID]
	if !ok || t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
