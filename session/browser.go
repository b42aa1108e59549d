package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/lukemcguire/grouptabs/tabs"
)

// Query implements tabs.Browser.
func (s *Session) Query(ctx context.Context, q tabs.Query) ([]tabs.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []tabs.Tab
	for _, w := range s.windows {
		if q.CurrentWindow && w.id != s.current {
			continue
		}
		for _, t := range w.tabs {
			if q.Matches(t) {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

// MoveTab implements tabs.Browser. The index is clamped so pinned tabs stay
// ahead of unpinned ones; -1 moves to the end.
func (s *Session) MoveTab(ctx context.Context, tabID, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	w, i := s.findTab(tabID)
	if w == nil {
		return fmt.Errorf("tab %d: %w", tabID, tabs.ErrTabNotFound)
	}

	t := removeAt(w, i)
	p := clampIndex(w, t.Pinned, index)
	insertAt(w, p, t)
	s.settleMembership(w, p)
	reindex(w)
	s.pruneGroups()
	return nil
}

// MoveTabsToWindow implements tabs.Browser. Tabs leaving their window drop
// out of their group.
func (s *Session) MoveTabsToWindow(ctx context.Context, tabIDs []int, windowID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.findWindow(windowID)
	if target == nil {
		return fmt.Errorf("window %d: %w", windowID, tabs.ErrWindowNotFound)
	}
	if err := s.checkTabs(tabIDs); err != nil {
		return err
	}

	for _, id := range tabIDs {
		src, i := s.findTab(id)
		t := removeAt(src, i)
		if src != target {
			t.GroupID = tabs.GroupIDNone
			t.Active, t.Highlighted = false, false
			ensureActive(src, i)
			reindex(src)
		}
		p := clampIndex(target, t.Pinned, tabs.IndexEnd)
		insertAt(target, p, t)
		s.settleMembership(target, p)
	}
	ensureActive(target, 0)
	reindex(target)
	s.pruneGroups()
	return nil
}

// Group implements tabs.Browser. The tabs are gathered, in the given order,
// where the first of them sits and form a new group in its window.
func (s *Session) Group(ctx context.Context, tabIDs []int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(tabIDs) == 0 {
		return 0, fmt.Errorf("group: no tabs given")
	}
	if err := s.checkTabs(tabIDs); err != nil {
		return 0, err
	}

	w, first := s.findTab(tabIDs[0])
	before := 0
	var moved []tabs.Tab
	for _, id := range tabIDs {
		src, i := s.findTab(id)
		if src.tabs[i].Pinned {
			return 0, fmt.Errorf("group: tab %d is pinned", id)
		}
		if src == w && i < first {
			before++
		}
	}
	for _, id := range tabIDs {
		src, i := s.findTab(id)
		t := removeAt(src, i)
		if src != w {
			t.Active, t.Highlighted = false, false
			ensureActive(src, i)
			reindex(src)
		}
		moved = append(moved, t)
	}

	id := s.nextGroup
	s.nextGroup++
	s.groups[id] = &tabs.Group{ID: id, WindowID: w.id, Color: tabs.ColorGrey}
	for i := range moved {
		moved[i].GroupID = id
	}

	p := clampIndex(w, false, first-before)
	p = avoidSplit(w, p)
	w.tabs = slices.Insert(w.tabs, p, moved...)
	reindex(w)
	s.pruneGroups()
	return id, nil
}

// UpdateGroup implements tabs.Browser. An empty colour keeps the current one.
func (s *Session) UpdateGroup(ctx context.Context, groupID int, props tabs.GroupProps) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %d: %w", groupID, tabs.ErrGroupNotFound)
	}
	g.Title = props.Title
	if props.Color != "" {
		g.Color = props.Color
	}
	g.Collapsed = props.Collapsed
	return nil
}

// MoveGroup implements tabs.Browser. index is where the group's first tab
// lands; -1 moves the group to the end.
func (s *Session) MoveGroup(ctx context.Context, groupID, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %d: %w", groupID, tabs.ErrGroupNotFound)
	}
	w := s.findWindow(g.WindowID)

	var run []tabs.Tab
	w.tabs = slices.DeleteFunc(w.tabs, func(t tabs.Tab) bool {
		if t.GroupID == groupID {
			run = append(run, t)
			return true
		}
		return false
	})

	p := avoidSplit(w, clampIndex(w, false, index))
	w.tabs = slices.Insert(w.tabs, p, run...)
	reindex(w)
	return nil
}

// Ungroup implements tabs.Browser. Each tab leaves its group and is placed
// right after the group's remaining tabs.
func (s *Session) Ungroup(ctx context.Context, tabIDs []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTabs(tabIDs); err != nil {
		return err
	}

	for _, id := range tabIDs {
		w, i := s.findTab(id)
		group := w.tabs[i].GroupID
		if group == tabs.GroupIDNone {
			continue
		}
		end := i
		for end+1 < len(w.tabs) && w.tabs[end+1].GroupID == group {
			end++
		}
		t := removeAt(w, i)
		t.GroupID = tabs.GroupIDNone
		insertAt(w, end, t)
		reindex(w)
	}
	s.pruneGroups()
	return nil
}

// RemoveTabs implements tabs.Browser. Nothing is removed if any id is
// unknown.
func (s *Session) RemoveTabs(ctx context.Context, tabIDs []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTabs(tabIDs); err != nil {
		return err
	}
	for _, id := range tabIDs {
		w, i := s.findTab(id)
		removeAt(w, i)
		ensureActive(w, i)
		reindex(w)
	}
	s.pruneGroups()
	return nil
}

// CreateTab implements tabs.Browser.
func (s *Session) CreateTab(ctx context.Context, props tabs.CreateProps) (tabs.Tab, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Tab{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	windowID := props.WindowID
	if windowID == 0 {
		windowID = s.current
	}
	w := s.findWindow(windowID)
	if w == nil {
		return tabs.Tab{}, fmt.Errorf("window %d: %w", windowID, tabs.ErrWindowNotFound)
	}

	t := tabs.Tab{
		ID:      s.nextTab,
		URL:     props.URL,
		Pinned:  props.Pinned,
		GroupID: tabs.GroupIDNone,
	}
	s.nextTab++

	p := clampIndex(w, t.Pinned, props.Index)
	insertAt(w, p, t)
	s.settleMembership(w, p)
	ensureActive(w, p)
	reindex(w)
	return w.tabs[p], nil
}

// Windows implements tabs.Browser.
func (s *Session) Windows(ctx context.Context) ([]tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []tabs.Window
	for _, w := range s.windows {
		if w.typ == tabs.WindowTypeNormal {
			out = append(out, w.export())
		}
	}
	return out, nil
}

// CurrentWindow implements tabs.Browser.
func (s *Session) CurrentWindow(ctx context.Context) (tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Window{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.findWindow(s.current)
	if w == nil {
		return tabs.Window{}, fmt.Errorf("current window: %w", tabs.ErrWindowNotFound)
	}
	return w.export(), nil
}

// Window implements tabs.Browser.
func (s *Session) Window(ctx context.Context, windowID int) (tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Window{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.findWindow(windowID)
	if w == nil {
		return tabs.Window{}, fmt.Errorf("window %d: %w", windowID, tabs.ErrWindowNotFound)
	}
	return w.export(), nil
}

// CreateWindow implements tabs.Browser. The new window takes focus and
// becomes current.
func (s *Session) CreateWindow(ctx context.Context, tabID int) (tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Window{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, i := s.findTab(tabID)
	if src == nil {
		return tabs.Window{}, fmt.Errorf("tab %d: %w", tabID, tabs.ErrTabNotFound)
	}

	t := removeAt(src, i)
	ensureActive(src, i)
	reindex(src)

	t.GroupID = tabs.GroupIDNone
	t.Active, t.Highlighted = true, true

	w := &window{id: s.nextWindow, typ: tabs.WindowTypeNormal, focused: true, tabs: []tabs.Tab{t}}
	s.nextWindow++
	for _, other := range s.windows {
		other.focused = false
	}
	s.windows = append(s.windows, w)
	s.current = w.id
	reindex(w)
	s.pruneGroups()
	return w.export(), nil
}

// RemoveWindow implements tabs.Browser. The window's tabs close with it.
func (s *Session) RemoveWindow(ctx context.Context, windowID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.findWindow(windowID)
	if w == nil {
		return fmt.Errorf("window %d: %w", windowID, tabs.ErrWindowNotFound)
	}
	w.tabs = nil
	s.pruneGroups()
	return nil
}

// checkTabs reports the first unknown or repeated tab id.
func (s *Session) checkTabs(ids []int) error {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("tab %d listed twice", id)
		}
		seen[id] = true
		if w, _ := s.findTab(id); w == nil {
			return fmt.Errorf("tab %d: %w", id, tabs.ErrTabNotFound)
		}
	}
	return nil
}

func removeAt(w *window, i int) tabs.Tab {
	t := w.tabs[i]
	w.tabs = slices.Delete(w.tabs, i, i+1)
	return t
}

func insertAt(w *window, i int, t tabs.Tab) {
	w.tabs = slices.Insert(w.tabs, i, t)
}

// clampIndex bounds index to the pinned or unpinned region of w; a
// negative index means the end of that region.
func clampIndex(w *window, pinned bool, index int) int {
	lo, hi := 0, w.pinnedCount()
	if !pinned {
		lo, hi = hi, len(w.tabs)
	}
	if index < 0 || index > hi {
		return hi
	}
	return max(index, lo)
}

// avoidSplit moves an insertion point past any group it would cut in two.
func avoidSplit(w *window, p int) int {
	for p > 0 && p < len(w.tabs) && w.tabs[p].Grouped() && w.tabs[p-1].GroupID == w.tabs[p].GroupID {
		p++
	}
	return p
}

// settleMembership updates the group of the tab at i after it moved: it
// joins a group it landed inside and leaves its own group when it no
// longer touches the group's other tabs.
func (s *Session) settleMembership(w *window, i int) {
	t := &w.tabs[i]
	if t.Pinned {
		t.GroupID = tabs.GroupIDNone
		return
	}

	left, right := tabs.GroupIDNone, tabs.GroupIDNone
	if i > 0 {
		left = w.tabs[i-1].GroupID
	}
	if i+1 < len(w.tabs) {
		right = w.tabs[i+1].GroupID
	}

	if left != tabs.GroupIDNone && left == right {
		t.GroupID = left
		return
	}
	if !t.Grouped() || left == t.GroupID || right == t.GroupID {
		return
	}
	for j, other := range w.tabs {
		if j != i && other.GroupID == t.GroupID {
			t.GroupID = tabs.GroupIDNone
			return
		}
	}
}
