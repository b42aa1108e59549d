// Package activity records when each tab was last used so tabs can be
// sorted and grouped by recency.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lukemcguire/grouptabs/store"
)

// StorageKey is the store key the activity map lives under.
const StorageKey = "tab_activity_data"

// WindowIDNone is the window id hosts report when no window has focus.
const WindowIDNone = -1

// StatusComplete is the tab status reported once a navigation finishes.
const StatusComplete = "complete"

// Data maps tab ids to their last access time.
type Data map[int]time.Time

// LastAccessed returns the recorded time for tabID, or the zero time.
func (d Data) LastAccessed(tabID int) time.Time {
	return d[tabID]
}

// Tracker keeps the activity map in a store.Store. Each call reads and
// writes the whole map, so concurrent writers must be serialised by the
// caller (the host event loop does this).
type Tracker struct {
	store  store.Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger used by the event handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// NewTracker returns a Tracker persisting to s.
func NewTracker(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Snapshot returns the current activity map. An unset map is empty.
func (t *Tracker) Snapshot(ctx context.Context) (Data, error) {
	var raw map[string]int64
	if _, err := store.GetJSON(ctx, t.store, StorageKey, &raw); err != nil {
		return nil, fmt.Errorf("load tab activity: %w", err)
	}

	data := make(Data, len(raw))
	for key, millis := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		data[id] = time.UnixMilli(millis)
	}
	return data, nil
}

func (t *Tracker) save(ctx context.Context, data Data) error {
	raw := make(map[string]int64, len(data))
	for id, at := range data {
		raw[strconv.Itoa(id)] = at.UnixMilli()
	}
	if err := store.SetJSON(ctx, t.store, StorageKey, raw); err != nil {
		return fmt.Errorf("save tab activity: %w", err)
	}
	return nil
}

// Record stamps tabID with the current time.
func (t *Tracker) Record(ctx context.Context, tabID int) error {
	data, err := t.Snapshot(ctx)
	if err != nil {
		return err
	}
	data[tabID] = t.now()
	return t.save(ctx, data)
}

// Forget drops tabID from the map.
func (t *Tracker) Forget(ctx context.Context, tabID int) error {
	data, err := t.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := data[tabID]; !ok {
		return nil
	}
	delete(data, tabID)
	return t.save(ctx, data)
}

// InitializeExisting stamps every untracked tab in tabIDs with the current
// time and reports how many were added. Nothing is written when all tabs
// are already tracked.
func (t *Tracker) InitializeExisting(ctx context.Context, tabIDs []int) (int, error) {
	data, err := t.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	now := t.now()
	added := 0
	for _, id := range tabIDs {
		if id == 0 {
			continue
		}
		if _, ok := data[id]; ok {
			continue
		}
		data[id] = now
		added++
	}

	if added == 0 {
		return 0, nil
	}
	return added, t.save(ctx, data)
}
