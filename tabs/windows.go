package tabs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lukemcguire/grouptabs/result"
	"github.com/lukemcguire/grouptabs/urlutil"
)

// MergeAllWindows moves every unpinned tab of the other normal windows into
// the current window and closes the windows it emptied. Windows left with
// only pinned tabs are closed as well.
func (m *Manager) MergeAllWindows(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandMerge)

	var current Window
	if err := r.call(ctx, "get current window", 0, 0, func(ctx context.Context) error {
		var err error
		current, err = m.browser.CurrentWindow(ctx)
		return err
	}); err != nil {
		return r.finish(err)
	}

	var all []Window
	if err := r.call(ctx, "get windows", 0, 0, func(ctx context.Context) error {
		var err error
		all, err = m.browser.Windows(ctx)
		return err
	}); err != nil {
		return r.finish(err)
	}

	var toMove []Tab
	var toClose []int
	for _, w := range all {
		if w.ID == current.ID {
			continue
		}
		var unpinned []Tab
		for _, t := range w.Tabs {
			if !t.Pinned {
				unpinned = append(unpinned, t)
			}
		}
		if len(unpinned) > 0 {
			toMove = append(toMove, unpinned...)
			toClose = append(toClose, w.ID)
		}
	}

	if len(toMove) == 0 {
		r.report.Message = "No other windows to merge"
		return r.finish(nil)
	}

	if err := r.call(ctx, "move tabs to window", 0, current.ID, func(ctx context.Context) error {
		return m.browser.MoveTabsToWindow(ctx, tabIDs(toMove), current.ID)
	}); err != nil {
		return r.finish(err)
	}
	r.report.Moved = len(toMove)
	r.report.Tabs = refs(toMove)

	for _, id := range toClose {
		if err := ctx.Err(); err != nil {
			return r.finish(err)
		}
		if r.closeIfEmpty(ctx, id) {
			r.report.WindowsClosed++
		}
	}

	r.report.Message = fmt.Sprintf("Merged %s from %s (%s closed)",
		result.Plural(len(toMove), "tab"),
		result.Plural(len(toClose), "window"),
		result.Plural(r.report.WindowsClosed, "window"),
	)
	return r.finish(nil)
}

// closeIfEmpty closes windowID when it still exists and holds no unpinned
// tabs. A window that is already gone is skipped without a failure.
func (r *run) closeIfEmpty(ctx context.Context, windowID int) bool {
	var w Window
	err := r.call(ctx, "get window", 0, windowID, func(ctx context.Context) error {
		var err error
		w, err = r.m.browser.Window(ctx, windowID)
		return err
	})
	if errors.Is(err, ErrWindowNotFound) {
		r.m.cfg.Logger.Debug("window no longer exists, skipping closure", "window", windowID)
		return false
	}
	if err != nil {
		r.report.AddFailure("get window", 0, windowID, err)
		return false
	}

	for _, t := range w.Tabs {
		if !t.Pinned {
			r.m.cfg.Logger.Debug("window still has unpinned tabs, skipping closure", "window", windowID)
			return false
		}
	}

	return r.try(ctx, "close window", 0, windowID, func(ctx context.Context) error {
		return r.m.browser.RemoveWindow(ctx, windowID)
	})
}

// CopyAllURLs copies the http(s) URLs of the current window to the
// clipboard, one per line. Nothing is written when there are none.
func (m *Manager) CopyAllURLs(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandCopyURLs)

	tabs, err := r.query(ctx, Query{CurrentWindow: true})
	if err != nil {
		return r.finish(err)
	}

	var urls []string
	for _, t := range tabs {
		urls = append(urls, t.URL)
	}
	urls = urlutil.FilterHTTP(urls)

	if len(urls) == 0 {
		r.report.Message = "No URLs found to copy"
		return r.finish(nil)
	}

	if err := m.cfg.Clipboard.WriteAll(strings.Join(urls, "\n")); err != nil {
		return r.finish(fmt.Errorf("write clipboard: %w", err))
	}
	r.report.Message = fmt.Sprintf("Copied %s to clipboard", result.Plural(len(urls), "URL"))
	return r.finish(nil)
}

// MoveSelectedToNewWindow opens a new window with the selected tabs, or the
// active tab when at most one tab is selected.
func (m *Manager) MoveSelectedToNewWindow(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandMoveToWindow)

	tabs, err := r.selection(ctx)
	if err != nil {
		return r.finish(err)
	}

	var win Window
	if err := r.call(ctx, "create window", tabs[0].ID, 0, func(ctx context.Context) error {
		var err error
		win, err = m.browser.CreateWindow(ctx, tabs[0].ID)
		return err
	}); err != nil {
		return r.finish(err)
	}

	if rest := tabs[1:]; len(rest) > 0 {
		if err := r.call(ctx, "move tabs to window", 0, win.ID, func(ctx context.Context) error {
			return m.browser.MoveTabsToWindow(ctx, tabIDs(rest), win.ID)
		}); err != nil {
			r.report.Moved = 1
			r.report.Tabs = refs(tabs[:1])
			return r.finish(err)
		}
	}

	r.report.Moved = len(tabs)
	r.report.Tabs = refs(tabs)
	r.report.Message = fmt.Sprintf("Moved %s to new window", result.Plural(len(tabs), "tab"))
	return r.finish(nil)
}
