package tabs

// FindDuplicates returns every tab whose key(URL) matches an earlier tab,
// in order. The first tab with a given key is kept. Tabs without a URL are
// ignored.
func FindDuplicates(tabs []Tab, key func(rawURL string) string) []Tab {
	seen := NewSeen(len(tabs))

	var dups []Tab
	for _, t := range tabs {
		if t.URL == "" {
			continue
		}
		if !seen.AddIfNew(key(t.URL)) {
			dups = append(dups, t)
		}
	}
	return dups
}

// SelectionFallback returns selected when it holds more than one tab and
// active otherwise. A lone highlighted tab is the active tab.
func SelectionFallback(selected, active []Tab) []Tab {
	if len(selected) <= 1 {
		return active
	}
	return selected
}
