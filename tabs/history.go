package tabs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lukemcguire/grouptabs/store"
)

// HistoryKey is the store key closed-tab history lives under.
const HistoryKey = "closed_tab_history"

// DefaultHistoryDepth is how many batches are kept when none is configured.
const DefaultHistoryDepth = 20

// ClosedTabRecord is enough of a tab to reopen it.
type ClosedTabRecord struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	WindowID int    `json:"window_id"`
	Index    int    `json:"index"`
	Pinned   bool   `json:"pinned,omitempty"`
}

// HistoryBatch is one set of tabs closed by a single command.
type HistoryBatch struct {
	ID       string            `json:"id"`
	Reason   string            `json:"reason"`
	ClosedAt time.Time         `json:"closed_at"`
	Tabs     []ClosedTabRecord `json:"tabs"`
}

// History is a bounded stack of closed-tab batches, newest last.
type History struct {
	mu    sync.Mutex
	store store.Store
	depth int
	now   func() time.Time
}

// NewHistory returns a History in s keeping at most depth batches.
func NewHistory(s store.Store, depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{store: s, depth: depth, now: time.Now}
}

// Batches returns the stored batches, oldest first.
func (h *History) Batches(ctx context.Context) ([]HistoryBatch, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadLocked(ctx)
}

// Push records tabs as one batch and trims the oldest batches past the
// depth. An empty tabs slice records nothing.
func (h *History) Push(ctx context.Context, reason string, tabs []Tab) (HistoryBatch, error) {
	if len(tabs) == 0 {
		return HistoryBatch{}, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	batches, err := h.loadLocked(ctx)
	if err != nil {
		return HistoryBatch{}, err
	}

	batch := HistoryBatch{
		ID:       uuid.NewString(),
		Reason:   reason,
		ClosedAt: h.now().UTC(),
		Tabs:     make([]ClosedTabRecord, len(tabs)),
	}
	for i, t := range tabs {
		batch.Tabs[i] = ClosedTabRecord{
			URL:      t.URL,
			Title:    t.Title,
			WindowID: t.WindowID,
			Index:    t.Index,
			Pinned:   t.Pinned,
		}
	}

	batches = append(batches, batch)
	if over := len(batches) - h.depth; over > 0 {
		batches = batches[over:]
	}
	return batch, h.saveLocked(ctx, batches)
}

// Pop removes and returns the newest batch. ok is false when the history
// is empty.
func (h *History) Pop(ctx context.Context) (batch HistoryBatch, ok bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	batches, err := h.loadLocked(ctx)
	if err != nil {
		return HistoryBatch{}, false, err
	}
	if len(batches) == 0 {
		return HistoryBatch{}, false, nil
	}

	batch = batches[len(batches)-1]
	if err := h.saveLocked(ctx, batches[:len(batches)-1]); err != nil {
		return HistoryBatch{}, false, err
	}
	return batch, true, nil
}

func (h *History) loadLocked(ctx context.Context) ([]HistoryBatch, error) {
	var batches []HistoryBatch
	if _, err := store.GetJSON(ctx, h.store, HistoryKey, &batches); err != nil {
		return nil, fmt.Errorf("load closed tab history: %w", err)
	}
	return batches, nil
}

func (h *History) saveLocked(ctx context.Context, batches []HistoryBatch) error {
	if batches == nil {
		batches = []HistoryBatch{}
	}
	if err := store.SetJSON(ctx, h.store, HistoryKey, batches); err != nil {
		return fmt.Errorf("save closed tab history: %w", err)
	}
	return nil
}
