package tabs_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukemcguire/grouptabs/activity"
	"github.com/lukemcguire/grouptabs/result"
	"github.com/lukemcguire/grouptabs/session"
	"github.com/lukemcguire/grouptabs/store"
	"github.com/lukemcguire/grouptabs/tabs"
)

const none = tabs.GroupIDNone

var now = time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC)

// newSession builds:
//
//	window 1: 1 pinned | 2 www.google | 3 example/b | 4 mail.google | 5 example/a (active) | 6 chrome | 7 google/maps
//	window 2: 9 pinned | 8 other
func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(1, []tabs.Window{
		{ID: 1, Focused: true, Tabs: []tabs.Tab{
			{ID: 1, URL: "https://pinned.test/", Pinned: true, GroupID: none},
			{ID: 2, URL: "https://www.google.com/search?q=go", GroupID: none},
			{ID: 3, URL: "https://example.com/b", GroupID: none},
			{ID: 4, URL: "https://mail.google.com/", GroupID: none},
			{ID: 5, URL: "https://example.com/a", Active: true, Highlighted: true, GroupID: none},
			{ID: 6, URL: "chrome://newtab", GroupID: none},
			{ID: 7, URL: "https://google.com/maps", GroupID: none},
		}},
		{ID: 2, Tabs: []tabs.Tab{
			{ID: 9, URL: "https://p.test/", Pinned: true, GroupID: none},
			{ID: 8, URL: "https://other.test/", Active: true, GroupID: none},
		}},
	}, nil)
	require.NoError(t, err)
	return s
}

type fakeClipboard struct {
	text   string
	writes int
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	c.writes++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newManager(b tabs.Browser, cfg tabs.Config) *tabs.Manager {
	cfg.Logger = quietLogger()
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return now }
	}
	return tabs.New(cfg, b, nil)
}

func strip(t *testing.T, s *session.Session, windowID int) []int {
	t.Helper()
	w, err := s.Window(context.Background(), windowID)
	require.NoError(t, err)
	var ids []int
	for _, tab := range w.Tabs {
		ids = append(ids, tab.ID)
	}
	return ids
}

func groupIDOf(t *testing.T, s *session.Session, tabID int) int {
	t.Helper()
	all, err := s.Query(context.Background(), tabs.Query{})
	require.NoError(t, err)
	for _, tab := range all {
		if tab.ID == tabID {
			return tab.GroupID
		}
	}
	t.Fatalf("tab %d not found", tabID)
	return 0
}

func TestSortByURL(t *testing.T) {
	s := newSession(t)
	m := newManager(s, tabs.Config{})

	rep, err := m.SortByURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tabs.CommandSortURL, rep.Command)
	assert.Equal(t, 5, rep.Moved)
	assert.Equal(t, []int{1, 5, 3, 7, 4, 2, 6}, strip(t, s, 1))
	assert.Empty(t, rep.Failures)
}

func TestSortByDomain(t *testing.T) {
	tests := []struct {
		name string
		sort func(*tabs.Manager, context.Context) (*result.Report, error)
		want []int
	}{
		{name: "full", sort: (*tabs.Manager).SortByDomain, want: []int{1, 3, 5, 2, 7, 4, 6}},
		{name: "apex", sort: (*tabs.Manager).SortByDomainIgnoreSubDomain, want: []int{1, 3, 5, 2, 4, 7, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			_, err := tt.sort(newManager(s, tabs.Config{}), context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, strip(t, s, 1))
		})
	}
}

func TestSortByLastAccessed(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	clock := now.Add(-time.Hour)
	tracker := activity.NewTracker(store.NewMemory(), activity.WithClock(func() time.Time { return clock }))
	require.NoError(t, tracker.Record(ctx, 7))
	clock = now
	require.NoError(t, tracker.Record(ctx, 3))

	_, err := newManager(s, tabs.Config{Activity: tracker}).SortByLastAccessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 7, 2, 4, 5, 6}, strip(t, s, 1))
}

func TestGroupByDomain(t *testing.T) {
	s := newSession(t)
	m := newManager(s, tabs.Config{})

	rep, err := m.GroupByDomain(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3, 5, 2, 7, 4, 6}, strip(t, s, 1))
	require.Len(t, rep.Groups, 2)

	google, example := rep.Groups[0], rep.Groups[1]
	assert.Equal(t, "google", google.Title)
	assert.Equal(t, string(tabs.ColorGrey), google.Color)
	assert.True(t, google.Collapsed)
	assert.Equal(t, "example", example.Title)
	assert.Equal(t, string(tabs.ColorBlue), example.Color)
	assert.False(t, example.Collapsed, "holds the active tab")
	assert.Equal(t, []result.TabRef{
		{ID: 3, URL: "https://example.com/b"},
		{ID: 5, URL: "https://example.com/a"},
	}, example.Tabs)

	g, ok := s.GroupByID(example.ID)
	require.True(t, ok)
	assert.Equal(t, "example", g.Title)
	assert.Equal(t, none, groupIDOf(t, s, 4), "single-tab domain stays ungrouped")
}

func TestGroupByDomainIgnoreSubdomain(t *testing.T) {
	s := newSession(t)
	rep, err := newManager(s, tabs.Config{}).GroupByDomain(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, tabs.CommandGroupApex, rep.Command)
	require.Len(t, rep.Groups, 2)
	assert.Equal(t, "google", rep.Groups[0].Title)
	assert.Len(t, rep.Groups[0].Tabs, 3)
	assert.Equal(t, groupIDOf(t, s, 2), groupIDOf(t, s, 4))
}

func TestGroupByDomainSingletons(t *testing.T) {
	s := newSession(t)
	rep, err := newManager(s, tabs.Config{GroupSingletons: true}).GroupByDomain(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, rep.Groups, 3)
	assert.NotEqual(t, none, groupIDOf(t, s, 4))
}

func TestGroupByLastAccessed(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	clock := now.Add(-2 * time.Hour)
	tracker := activity.NewTracker(store.NewMemory(), activity.WithClock(func() time.Time { return clock }))
	require.NoError(t, tracker.Record(ctx, 3))
	clock = now.Add(-10 * time.Second)
	require.NoError(t, tracker.Record(ctx, 5))

	rep, err := newManager(s, tabs.Config{Activity: tracker}).GroupByLastAccessed(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 5, 3, 2, 4, 7, 6}, strip(t, s, 1))

	byTitle := make(map[string]result.GroupResult)
	for _, g := range rep.Groups {
		byTitle[g.Title] = g
	}
	require.Len(t, byTitle, 3)
	assert.False(t, byTitle[tabs.LabelLastMinute].Collapsed)
	assert.Equal(t, string(tabs.ColorGrey), byTitle[tabs.LabelLastMinute].Color)
	assert.Equal(t, string(tabs.ColorBlue), byTitle[tabs.LabelLastHalfDay].Color)
	assert.Equal(t, string(tabs.ColorRed), byTitle[tabs.LabelOlder].Color)
	assert.Len(t, byTitle[tabs.LabelOlder].Tabs, 3)

	assert.Equal(t, byTitle[tabs.LabelLastMinute].ID, groupIDOf(t, s, 5))
	assert.Equal(t, byTitle[tabs.LabelOlder].ID, groupIDOf(t, s, 7))
}

func TestUngroup(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	m := newManager(s, tabs.Config{})

	rep, err := m.Ungroup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No grouped tabs", rep.Message)

	_, err = m.GroupByDomain(ctx, true)
	require.NoError(t, err)
	require.NotEmpty(t, s.Groups())

	rep, err = m.Ungroup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Moved)
	assert.Empty(t, s.Groups())
}

func dupSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(0, []tabs.Window{{ID: 1, Tabs: []tabs.Tab{
		{ID: 1, URL: "https://a.test/x?id=1", Active: true, GroupID: none},
		{ID: 2, URL: "https://a.test/x?id=2", GroupID: none},
		{ID: 3, URL: "https://a.test/x?id=1", GroupID: none},
		{ID: 4, URL: "https://a.test/x?id=1", Pinned: true, GroupID: none},
		{ID: 5, URL: "about:blank", GroupID: none},
		{ID: 6, URL: "about:blank", GroupID: none},
	}}}, nil)
	require.NoError(t, err)
	return s
}

func TestRemoveDuplicates(t *testing.T) {
	ctx := context.Background()

	t.Run("exact", func(t *testing.T) {
		s := dupSession(t)
		history := tabs.NewHistory(store.NewMemory(), 0)
		rep, err := newManager(s, tabs.Config{History: history}).RemoveDuplicates(ctx, false)
		require.NoError(t, err)

		assert.Equal(t, "Closed 1 duplicate tab", rep.Message)
		require.Len(t, rep.Closed, 1)
		assert.Equal(t, 3, rep.Closed[0].ID)
		assert.Equal(t, tabs.ReasonRemoveDuplicates, rep.Closed[0].Reason)
		assert.Equal(t, []int{4, 1, 2, 5, 6}, strip(t, s, 1))

		batches, err := history.Batches(ctx)
		require.NoError(t, err)
		require.Len(t, batches, 1)
		assert.Equal(t, "https://a.test/x?id=1", batches[0].Tabs[0].URL)
	})

	t.Run("ignore params", func(t *testing.T) {
		s := dupSession(t)
		rep, err := newManager(s, tabs.Config{}).RemoveDuplicates(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, tabs.CommandDedupIgnore, rep.Command)
		assert.Equal(t, "Closed 2 duplicate tabs (ignoring URL parameters)", rep.Message)
		assert.Equal(t, []int{4, 1, 5, 6}, strip(t, s, 1))
	})

	t.Run("nothing to close", func(t *testing.T) {
		s := newSession(t)
		rep, err := newManager(s, tabs.Config{}).RemoveDuplicates(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, "No duplicate tabs found", rep.Message)
		assert.Equal(t, 1, rep.Stats.HostCalls, "only the query is issued")
	})
}

func TestRestoreLastClosed(t *testing.T) {
	ctx := context.Background()
	s := dupSession(t)
	m := newManager(s, tabs.Config{History: tabs.NewHistory(store.NewMemory(), 0)})

	rep, err := m.RestoreLastClosed(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No closed tabs to restore", rep.Message)

	_, err = m.RemoveDuplicates(ctx, true)
	require.NoError(t, err)

	rep, err = m.RestoreLastClosed(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Restored 2 tabs", rep.Message)
	require.Len(t, rep.Opened, 2)
	assert.Equal(t, "https://a.test/x?id=2", rep.Opened[0].URL)
	assert.Len(t, strip(t, s, 1), 6)

	rep, err = m.RestoreLastClosed(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No closed tabs to restore", rep.Message)
}

func TestRestoreIntoMissingWindow(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	history := tabs.NewHistory(store.NewMemory(), 0)
	_, err := history.Push(ctx, "test", []tabs.Tab{{ID: 50, WindowID: 42, Index: 0, URL: "https://gone.test/"}})
	require.NoError(t, err)

	rep, err := newManager(s, tabs.Config{History: history}).RestoreLastClosed(ctx)
	require.NoError(t, err)
	require.Len(t, rep.Opened, 1)
	assert.Empty(t, rep.Failures)

	ids := strip(t, s, 1)
	assert.Equal(t, rep.Opened[0].ID, ids[len(ids)-1], "appended to the current window")
}

func TestMergeAllWindows(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	m := newManager(s, tabs.Config{})

	rep, err := m.MergeAllWindows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Moved)
	assert.Equal(t, 1, rep.WindowsClosed)
	assert.Equal(t, "Merged 1 tab from 1 window (1 window closed)", rep.Message)
	assert.Equal(t, 8, strip(t, s, 1)[7])

	windows, err := s.Windows(ctx)
	require.NoError(t, err)
	assert.Len(t, windows, 1)

	rep, err = m.MergeAllWindows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No other windows to merge", rep.Message)
}

func TestCopyAllURLs(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	clip := &fakeClipboard{}

	rep, err := newManager(s, tabs.Config{Clipboard: clip}).CopyAllURLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Copied 6 URLs to clipboard", rep.Message)
	assert.Equal(t, "https://pinned.test/\n"+
		"https://www.google.com/search?q=go\n"+
		"https://example.com/b\n"+
		"https://mail.google.com/\n"+
		"https://example.com/a\n"+
		"https://google.com/maps", clip.text)

	empty, err := session.New(0, []tabs.Window{{ID: 1, Tabs: []tabs.Tab{
		{ID: 1, URL: "chrome://settings", GroupID: none},
	}}}, nil)
	require.NoError(t, err)
	clip = &fakeClipboard{}
	rep, err = newManager(empty, tabs.Config{Clipboard: clip}).CopyAllURLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No URLs found to copy", rep.Message)
	assert.Zero(t, clip.writes)
}

func TestMoveSelectedToNewWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("active tab", func(t *testing.T) {
		s := newSession(t)
		rep, err := newManager(s, tabs.Config{}).MoveSelectedToNewWindow(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Moved 1 tab to new window", rep.Message)

		cur, err := s.CurrentWindow(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{5}, strip(t, s, cur.ID))
	})

	t.Run("highlighted tabs", func(t *testing.T) {
		s, err := session.New(0, []tabs.Window{{ID: 1, Tabs: []tabs.Tab{
			{ID: 1, URL: "https://a/", GroupID: none},
			{ID: 2, URL: "https://b/", Highlighted: true, GroupID: none},
			{ID: 3, URL: "https://c/", Active: true, Highlighted: true, GroupID: none},
		}}}, nil)
		require.NoError(t, err)

		rep, err := newManager(s, tabs.Config{}).MoveSelectedToNewWindow(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, rep.Moved)

		cur, err := s.CurrentWindow(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{2, 3}, strip(t, s, cur.ID))
		assert.Equal(t, []int{1}, strip(t, s, 1))
	})
}

func TestCloseSelected(t *testing.T) {
	ctx := context.Background()

	s := newSession(t)
	history := tabs.NewHistory(store.NewMemory(), 0)
	rep, err := newManager(s, tabs.Config{History: history}).CloseSelected(ctx)
	require.NoError(t, err)
	require.Len(t, rep.Closed, 1)
	assert.Equal(t, 5, rep.Closed[0].ID)
	assert.NotContains(t, strip(t, s, 1), 5)

	batches, err := history.Batches(ctx)
	require.NoError(t, err)
	assert.Empty(t, batches, "closing the selection is not recorded")

	idle, err := session.New(0, []tabs.Window{{ID: 1, Tabs: []tabs.Tab{
		{ID: 1, URL: "https://a/", GroupID: none},
	}}}, nil)
	require.NoError(t, err)
	_, err = newManager(idle, tabs.Config{}).CloseSelected(ctx)
	assert.ErrorIs(t, err, tabs.ErrNothingSelected)
}

func TestCloseTabsWithHistory(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	history := tabs.NewHistory(store.NewMemory(), 0)
	m := newManager(s, tabs.Config{History: history})

	victims, err := s.Query(ctx, tabs.Query{CurrentWindow: true, HTTPOnly: true, Ungrouped: true, Active: true})
	require.NoError(t, err)

	rep, err := m.CloseTabsWithHistory(ctx, victims, "manual")
	require.NoError(t, err)
	assert.Equal(t, "Closed 1 tab", rep.Message)

	batches, err := history.Batches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "manual", batches[0].Reason)
}

// flakyBrowser fails moves of a single tab.
type flakyBrowser struct {
	*session.Session
	failTab int
}

func (b flakyBrowser) MoveTab(ctx context.Context, tabID, index int) error {
	if tabID == b.failTab {
		return fmt.Errorf("tab %d: %w", tabID, tabs.ErrTabNotFound)
	}
	return b.Session.MoveTab(ctx, tabID, index)
}

func TestFailuresAreRecorded(t *testing.T) {
	s := newSession(t)
	rep, err := newManager(flakyBrowser{Session: s, failTab: 3}, tabs.Config{}).SortByURL(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Moved)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "move tab", rep.Failures[0].Op)
	assert.Equal(t, 3, rep.Failures[0].TabID)
	assert.Equal(t, result.CategoryTabNotFound, rep.Failures[0].Category)
}

func TestProgressEvents(t *testing.T) {
	s := newSession(t)
	events := make(chan tabs.Event, 100)
	m := tabs.New(tabs.Config{Logger: quietLogger(), HostRate: 1000, HostBurst: 10}, s, events)

	rep, err := m.SortByURL(context.Background())
	require.NoError(t, err)
	close(events)

	var got []tabs.Event
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, rep.Stats.HostCalls)
	last := got[len(got)-1]
	assert.Equal(t, tabs.CommandSortURL, last.Command)
	assert.Equal(t, rep.Stats.HostCalls, last.Calls)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newManager(newSession(t), tabs.Config{}).SortByURL(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHistoryPerSessionStore(t *testing.T) {
	ctx := context.Background()
	shared := store.NewMemory()

	a := dupSession(t)
	b, err := session.New(0, []tabs.Window{{ID: 1, Tabs: []tabs.Tab{
		{ID: 1, URL: "https://b.test/secret", Active: true, GroupID: none},
		{ID: 2, URL: "https://b.test/secret", GroupID: none},
	}}}, nil)
	require.NoError(t, err)

	ma := newManager(a, tabs.Config{History: tabs.NewHistory(store.Namespace(shared, "a.json"), 0)})
	mb := newManager(b, tabs.Config{History: tabs.NewHistory(store.Namespace(shared, "b.json"), 0)})

	_, err = ma.RemoveDuplicates(ctx, false)
	require.NoError(t, err)
	_, err = mb.RemoveDuplicates(ctx, false)
	require.NoError(t, err)

	rep, err := ma.RestoreLastClosed(ctx)
	require.NoError(t, err)
	require.Len(t, rep.Opened, 1)
	assert.Equal(t, "https://a.test/x?id=1", rep.Opened[0].URL)

	rep, err = ma.RestoreLastClosed(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No closed tabs to restore", rep.Message)
}
