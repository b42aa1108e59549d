package tabs

import (
	"context"
	"errors"
	"fmt"

	"github.com/lukemcguire/grouptabs/result"
)

// History reasons recorded with closed batches.
const (
	ReasonRemoveDuplicates             = "removeDuplicates"
	ReasonRemoveDuplicatesIgnoreParams = "removeDuplicatesIgnoreParams"
)

// RemoveDuplicates closes every unpinned http(s) tab of the current window
// whose URL repeats an earlier tab. With ignoreParams the query string and
// fragment are not compared. Closed tabs go to the history.
func (m *Manager) RemoveDuplicates(ctx context.Context, ignoreParams bool) (*result.Report, error) {
	command, reason := CommandDedup, ReasonRemoveDuplicates
	key := func(u string) string { return u }
	if ignoreParams {
		command, reason = CommandDedupIgnore, ReasonRemoveDuplicatesIgnoreParams
		key = m.cfg.Keyer.Dedup
	}
	r := m.begin(command)

	tabs, err := r.query(ctx, Query{CurrentWindow: true, Pinned: boolPtr(false), HTTPOnly: true})
	if err != nil {
		return r.finish(err)
	}

	dups := FindDuplicates(tabs, key)
	closed, err := r.closeWithHistory(ctx, dups, reason)
	if err != nil {
		return r.finish(err)
	}
	r.report.Message = result.DuplicateMessage(closed, ignoreParams)
	return r.finish(nil)
}

// CloseTabsWithHistory records tabs in the history under reason and then
// closes them.
func (m *Manager) CloseTabsWithHistory(ctx context.Context, tabs []Tab, reason string) (*result.Report, error) {
	r := m.begin(CommandCloseWithHistory)
	closed, err := r.closeWithHistory(ctx, tabs, reason)
	if err != nil {
		return r.finish(err)
	}
	r.report.Message = "Closed " + result.Plural(closed, "tab")
	return r.finish(nil)
}

// closeWithHistory returns how many tabs were closed. Tabs are only closed
// once the history write succeeded.
func (r *run) closeWithHistory(ctx context.Context, tabs []Tab, reason string) (int, error) {
	if len(tabs) == 0 {
		return 0, nil
	}

	batch, err := r.m.cfg.History.Push(ctx, reason, tabs)
	if err != nil {
		return 0, err
	}
	r.m.cfg.Logger.Debug("recorded closed tabs", "batch", batch.ID, "reason", reason, "tabs", len(tabs))

	if !r.try(ctx, "remove tabs", 0, 0, func(ctx context.Context) error {
		return r.m.browser.RemoveTabs(ctx, tabIDs(tabs))
	}) {
		return 0, nil
	}

	for _, t := range tabs {
		r.report.Closed = append(r.report.Closed, result.ClosedTab{ID: t.ID, URL: t.URL, Title: t.Title, Reason: reason})
	}
	return len(tabs), nil
}

// selection returns the highlighted tabs of the current window, falling
// back to the active tab.
func (r *run) selection(ctx context.Context) ([]Tab, error) {
	selected, err := r.query(ctx, Query{CurrentWindow: true, Highlighted: true})
	if err != nil {
		return nil, err
	}
	active, err := r.query(ctx, Query{CurrentWindow: true, Active: true})
	if err != nil {
		return nil, err
	}

	tabs := SelectionFallback(selected, active)
	if len(tabs) == 0 {
		return nil, ErrNothingSelected
	}
	return tabs, nil
}

// CloseSelected closes the selected tabs, or the active tab when at most
// one tab is selected.
func (m *Manager) CloseSelected(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandCloseSelected)

	tabs, err := r.selection(ctx)
	if err != nil {
		return r.finish(err)
	}

	if err := r.call(ctx, "remove tabs", 0, 0, func(ctx context.Context) error {
		return m.browser.RemoveTabs(ctx, tabIDs(tabs))
	}); err != nil {
		return r.finish(err)
	}

	for _, t := range tabs {
		r.report.Closed = append(r.report.Closed, result.ClosedTab{ID: t.ID, URL: t.URL, Title: t.Title})
	}
	r.report.Message = "Closed " + result.Plural(len(tabs), "tab")
	return r.finish(nil)
}

// RestoreLastClosed reopens the most recently closed batch. Tabs whose
// window is gone open at the end of the current window.
func (m *Manager) RestoreLastClosed(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandRestore)

	batch, ok, err := m.cfg.History.Pop(ctx)
	if err != nil {
		return r.finish(err)
	}
	if !ok {
		r.report.Message = result.RestoreMessage(0)
		return r.finish(nil)
	}

	for _, rec := range batch.Tabs {
		if err := ctx.Err(); err != nil {
			return r.finish(err)
		}

		props := CreateProps{URL: rec.URL, WindowID: rec.WindowID, Index: rec.Index, Pinned: rec.Pinned}
		var tab Tab
		create := func(ctx context.Context) error {
			var err error
			tab, err = m.browser.CreateTab(ctx, props)
			return err
		}

		err := r.call(ctx, "create tab", 0, rec.WindowID, create)
		if errors.Is(err, ErrWindowNotFound) {
			props.WindowID, props.Index = 0, IndexEnd
			err = r.call(ctx, "create tab", 0, 0, create)
		}
		if err != nil {
			r.report.AddFailure("create tab", 0, rec.WindowID, fmt.Errorf("restore %s: %w", rec.URL, err))
			continue
		}
		r.report.Opened = append(r.report.Opened, result.TabRef{ID: tab.ID, URL: tab.URL})
	}

	r.report.Message = result.RestoreMessage(len(r.report.Opened))
	return r.finish(nil)
}
