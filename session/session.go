// Package session keeps an exported browser session in memory and serves
// it through the tabs.Browser interface, so tab commands can run against
// a JSON file instead of a live browser.
package session

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/lukemcguire/grouptabs/tabs"
)

// fileFormat is the on-disk shape of a session.
type fileFormat struct {
	CurrentWindow int           `json:"current_window"`
	NextTabID     int           `json:"next_tab_id"`
	NextGroupID   int           `json:"next_group_id"`
	Windows       []tabs.Window `json:"windows"`
	Groups        []tabs.Group  `json:"groups"`
}

type window struct {
	id      int
	typ     string
	focused bool
	tabs    []tabs.Tab
}

// Session is a set of windows, tabs and groups. Pinned tabs always precede
// unpinned ones and every group's tabs are contiguous within one window.
type Session struct {
	mu         sync.Mutex
	path       string
	current    int
	nextTab    int
	nextGroup  int
	nextWindow int
	windows    []*window
	groups     map[int]*tabs.Group
}

var _ tabs.Browser = (*Session)(nil)

// New builds a session from windows and groups. Tab indexes and window ids
// on the tabs are taken from the slices. current 0 picks the focused
// window, or the first one.
func New(current int, windows []tabs.Window, groups []tabs.Group) (*Session, error) {
	s := &Session{
		current:   current,
		nextTab:   1,
		nextGroup: 1,
		groups:    make(map[int]*tabs.Group, len(groups)),
	}

	for _, g := range groups {
		if _, dup := s.groups[g.ID]; dup || g.ID <= 0 {
			return nil, fmt.Errorf("invalid group id %d", g.ID)
		}
		s.groups[g.ID] = &g
		s.nextGroup = max(s.nextGroup, g.ID+1)
	}

	seenTabs := make(map[int]bool)
	groupWindow := make(map[int]int)
	for _, w := range windows {
		if w.ID <= 0 || s.findWindow(w.ID) != nil {
			return nil, fmt.Errorf("invalid window id %d", w.ID)
		}
		win := &window{id: w.ID, typ: cmp.Or(w.Type, tabs.WindowTypeNormal), focused: w.Focused}
		for _, t := range w.Tabs {
			if t.ID <= 0 || seenTabs[t.ID] {
				return nil, fmt.Errorf("invalid tab id %d in window %d", t.ID, w.ID)
			}
			seenTabs[t.ID] = true
			if t.GroupID == 0 || t.Pinned {
				t.GroupID = tabs.GroupIDNone
			}
			if t.Grouped() {
				if _, ok := s.groups[t.GroupID]; !ok {
					return nil, fmt.Errorf("tab %d: group %d: %w", t.ID, t.GroupID, tabs.ErrGroupNotFound)
				}
				if other, ok := groupWindow[t.GroupID]; ok && other != w.ID {
					return nil, fmt.Errorf("group %d spans windows %d and %d", t.GroupID, other, w.ID)
				}
				groupWindow[t.GroupID] = w.ID
				s.groups[t.GroupID].WindowID = w.ID
			}
			win.tabs = append(win.tabs, t)
			s.nextTab = max(s.nextTab, t.ID+1)
		}
		// Pinned tabs first, keeping relative order.
		slices.SortStableFunc(win.tabs, func(a, b tabs.Tab) int {
			switch {
			case a.Pinned == b.Pinned:
				return 0
			case a.Pinned:
				return -1
			}
			return 1
		})
		if err := checkContiguous(win); err != nil {
			return nil, err
		}
		reindex(win)
		s.windows = append(s.windows, win)
		s.nextWindow = max(s.nextWindow, w.ID+1)
	}
	s.nextWindow = max(s.nextWindow, 1)

	if s.current == 0 || s.findWindow(s.current) == nil {
		if current != 0 {
			return nil, fmt.Errorf("current window %d: %w", current, tabs.ErrWindowNotFound)
		}
		s.pickCurrent()
	}
	s.pruneGroups()
	return s, nil
}

// Decode reads a session from r.
func Decode(r io.Reader) (*Session, error) {
	var f fileFormat
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s, err := New(f.CurrentWindow, f.Windows, f.Groups)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s.nextTab = max(s.nextTab, f.NextTabID)
	s.nextGroup = max(s.nextGroup, f.NextGroupID)
	return s, nil
}

// Encode writes the session to w as indented JSON.
func (s *Session) Encode(w io.Writer) error {
	s.mu.Lock()
	f := s.snapshotLocked()
	s.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return nil
}

// Path returns the file the session was loaded from, if any.
func (s *Session) Path() string {
	return s.path
}

func (s *Session) snapshotLocked() fileFormat {
	f := fileFormat{
		CurrentWindow: s.current,
		NextTabID:     s.nextTab,
		NextGroupID:   s.nextGroup,
		Windows:       make([]tabs.Window, 0, len(s.windows)),
		Groups:        make([]tabs.Group, 0, len(s.groups)),
	}
	for _, w := range s.windows {
		f.Windows = append(f.Windows, w.export())
	}
	for _, g := range s.groups {
		f.Groups = append(f.Groups, *g)
	}
	slices.SortFunc(f.Groups, func(a, b tabs.Group) int { return cmp.Compare(a.ID, b.ID) })
	return f
}

func (w *window) export() tabs.Window {
	return tabs.Window{
		ID:      w.id,
		Type:    w.typ,
		Focused: w.focused,
		Tabs:    slices.Clone(w.tabs),
	}
}

func (w *window) pinnedCount() int {
	n := 0
	for _, t := range w.tabs {
		if t.Pinned {
			n++
		}
	}
	return n
}

// GroupByID returns the group with id.
func (s *Session) GroupByID(id int) (tabs.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return tabs.Group{}, false
	}
	return *g, true
}

// Groups returns every group ordered by id.
func (s *Session) Groups() []tabs.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked().Groups
}

// AllTabIDs returns the id of every tab in every window.
func (s *Session) AllTabIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int
	for _, w := range s.windows {
		for _, t := range w.tabs {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func reindex(w *window) {
	for i := range w.tabs {
		w.tabs[i].Index = i
		w.tabs[i].WindowID = w.id
	}
}

// checkContiguous reports a group whose tabs are split by other tabs.
func checkContiguous(w *window) error {
	closed := make(map[int]bool)
	prev := tabs.GroupIDNone
	for _, t := range w.tabs {
		if t.GroupID != prev {
			if t.Grouped() && closed[t.GroupID] {
				return fmt.Errorf("window %d: group %d is not contiguous", w.id, t.GroupID)
			}
			closed[prev] = true
			prev = t.GroupID
		}
	}
	return nil
}

func (s *Session) findWindow(id int) *window {
	for _, w := range s.windows {
		if w.id == id {
			return w
		}
	}
	return nil
}

func (s *Session) findTab(id int) (*window, int) {
	for _, w := range s.windows {
		for i, t := range w.tabs {
			if t.ID == id {
				return w, i
			}
		}
	}
	return nil, -1
}

// pickCurrent makes the focused window current, else the first window.
func (s *Session) pickCurrent() {
	s.current = 0
	for _, w := range s.windows {
		if w.focused {
			s.current = w.id
			return
		}
	}
	if len(s.windows) > 0 {
		s.current = s.windows[0].id
	}
}

// pruneGroups drops groups that no longer hold tabs and removes windows
// left without tabs.
func (s *Session) pruneGroups() {
	s.windows = slices.DeleteFunc(s.windows, func(w *window) bool { return len(w.tabs) == 0 })
	if s.findWindow(s.current) == nil {
		s.pickCurrent()
	}

	used := make(map[int]bool)
	for _, w := range s.windows {
		for _, t := range w.tabs {
			if t.Grouped() {
				used[t.GroupID] = true
			}
		}
	}
	for id := range s.groups {
		if !used[id] {
			delete(s.groups, id)
		}
	}
}

// ensureActive activates the tab nearest hint when w has no active tab.
func ensureActive(w *window, hint int) {
	if len(w.tabs) == 0 {
		return
	}
	for _, t := range w.tabs {
		if t.Active {
			return
		}
	}
	i := min(max(hint, 0), len(w.tabs)-1)
	w.tabs[i].Active = true
	w.tabs[i].Highlighted = true
}
