// Package tabs plans and applies tab sorting, grouping and cleanup against
// a browser host.
package tabs

import (
	"context"

	"github.com/lukemcguire/grouptabs/urlutil"
)

// GroupIDNone marks a tab that belongs to no group.
const GroupIDNone = -1

// WindowTypeNormal is the only window type the manager operates on.
const WindowTypeNormal = "normal"

// IndexEnd appends a tab at the end of its window.
const IndexEnd = -1

// Tab is a browser tab. Index is its position within the window.
type Tab struct {
	ID          int    `json:"id"`
	WindowID    int    `json:"-"`
	Index       int    `json:"-"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Pinned      bool   `json:"pinned,omitempty"`
	Active      bool   `json:"active,omitempty"`
	Highlighted bool   `json:"highlighted,omitempty"`
	GroupID     int    `json:"group_id"`
}

// Grouped reports whether the tab is in a group.
func (t Tab) Grouped() bool {
	return t.GroupID != GroupIDNone
}

// Window is a browser window with its tabs in strip order.
type Window struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Focused bool   `json:"focused,omitempty"`
	Tabs    []Tab  `json:"tabs"`
}

// Color is a tab group colour.
type Color string

const (
	ColorGrey   Color = "grey"
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorPink   Color = "pink"
	ColorPurple Color = "purple"
	ColorCyan   Color = "cyan"
	ColorOrange Color = "orange"
)

// DefaultColors is the order new groups cycle through.
var DefaultColors = []Color{
	ColorGrey, ColorBlue, ColorRed, ColorYellow, ColorGreen,
	ColorPink, ColorPurple, ColorCyan, ColorOrange,
}

// ParseColor returns the Color named s.
func ParseColor(s string) (Color, bool) {
	for _, c := range DefaultColors {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Group is a tab group.
type Group struct {
	ID        int    `json:"id"`
	WindowID  int    `json:"window_id"`
	Title     string `json:"title"`
	Color     Color  `json:"color"`
	Collapsed bool   `json:"collapsed,omitempty"`
}

// GroupProps are the mutable properties of a group.
type GroupProps struct {
	Title     string
	Color     Color
	Collapsed bool
}

// CreateProps describe a tab to open. WindowID 0 means the current window;
// Index IndexEnd appends.
type CreateProps struct {
	URL      string
	WindowID int
	Index    int
	Pinned   bool
}

// Query selects tabs. Zero fields do not filter.
type Query struct {
	CurrentWindow bool
	Pinned        *bool
	HTTPOnly      bool
	Ungrouped     bool
	Active        bool
	Highlighted   bool
}

// Matches reports whether t satisfies q. The CurrentWindow field is left
// to the caller, which knows the window.
func (q Query) Matches(t Tab) bool {
	if q.Pinned != nil && t.Pinned != *q.Pinned {
		return false
	}
	if q.HTTPOnly && !urlutil.HasHTTPPrefix(t.URL) {
		return false
	}
	if q.Ungrouped && t.Grouped() {
		return false
	}
	if q.Active && !t.Active {
		return false
	}
	if q.Highlighted && !t.Highlighted {
		return false
	}
	return true
}

func boolPtr(b bool) *bool { return &b }

// targetQuery selects the tabs sort and group commands act on.
func targetQuery() Query {
	return Query{CurrentWindow: true, Pinned: boolPtr(false), HTTPOnly: true, Ungrouped: true}
}

// Browser is the set of host capabilities the manager needs.
type Browser interface {
	Query(ctx context.Context, q Query) ([]Tab, error)
	MoveTab(ctx context.Context, tabID, index int) error
	// MoveTabsToWindow appends the tabs to the end of windowID.
	MoveTabsToWindow(ctx context.Context, tabIDs []int, windowID int) error
	Group(ctx context.Context, tabIDs []int) (int, error)
	UpdateGroup(ctx context.Context, groupID int, props GroupProps) error
	MoveGroup(ctx context.Context, groupID, index int) error
	Ungroup(ctx context.Context, tabIDs []int) error
	RemoveTabs(ctx context.Context, tabIDs []int) error
	CreateTab(ctx context.Context, props CreateProps) (Tab, error)
	// Windows returns the normal windows with their tabs.
	Windows(ctx context.Context) ([]Window, error)
	CurrentWindow(ctx context.Context) (Window, error)
	Window(ctx context.Context, windowID int) (Window, error)
	// CreateWindow opens a focused normal window holding tabID.
	CreateWindow(ctx context.Context, tabID int) (Window, error)
	RemoveWindow(ctx context.Context, windowID int) error
}

func tabIDs(tabs []Tab) []int {
	ids := make([]int, len(tabs))
	for i, t := range tabs {
		ids[i] = t.ID
	}
	return ids
}
