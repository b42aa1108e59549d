package activity

import "context"

// The handlers below mirror the host's tab and window listeners. Hosts give
// listeners no way to surface failures, so errors are logged and dropped.

// OnActivated handles the user switching to a tab.
func (t *Tracker) OnActivated(ctx context.Context, tabID int) {
	if err := t.Record(ctx, tabID); err != nil {
		t.logger.Error("record activated tab", "tab", tabID, "err", err)
	}
}

// OnFocusChanged handles a window gaining focus; activeTabID is the active
// tab of that window, or 0 when it has none.
func (t *Tracker) OnFocusChanged(ctx context.Context, windowID, activeTabID int) {
	if windowID == WindowIDNone || activeTabID == 0 {
		return
	}
	if err := t.Record(ctx, activeTabID); err != nil {
		t.logger.Error("record focused tab", "window", windowID, "tab", activeTabID, "err", err)
	}
}

// OnCreated handles a new tab.
func (t *Tracker) OnCreated(ctx context.Context, tabID int) {
	if tabID == 0 {
		return
	}
	if err := t.Record(ctx, tabID); err != nil {
		t.logger.Error("record created tab", "tab", tabID, "err", err)
	}
}

// OnUpdated handles tab updates; only finished loads of the active tab count.
func (t *Tracker) OnUpdated(ctx context.Context, tabID int, status string, active bool) {
	if status != StatusComplete || !active {
		return
	}
	if err := t.Record(ctx, tabID); err != nil {
		t.logger.Error("record updated tab", "tab", tabID, "err", err)
	}
}

// OnRemoved handles a closed tab.
func (t *Tracker) OnRemoved(ctx context.Context, tabID int) {
	if err := t.Forget(ctx, tabID); err != nil {
		t.logger.Error("forget removed tab", "tab", tabID, "err", err)
	}
}

// OnStartup handles host startup with the ids of every open tab.
func (t *Tracker) OnStartup(ctx context.Context, tabIDs []int) {
	if _, err := t.InitializeExisting(ctx, tabIDs); err != nil {
		t.logger.Error("initialize existing tabs", "err", err)
	}
}

// OnInstalled behaves like OnStartup.
func (t *Tracker) OnInstalled(ctx context.Context, tabIDs []int) {
	t.OnStartup(ctx, tabIDs)
}
