package tabs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/lukemcguire/grouptabs/activity"
	"github.com/lukemcguire/grouptabs/result"
	"github.com/lukemcguire/grouptabs/store"
	"github.com/lukemcguire/grouptabs/urlutil"
)

// Command names as they appear in reports.
const (
	CommandSortURL          = "sort-url"
	CommandSortDomain       = "sort-domain"
	CommandSortApex         = "sort-apex"
	CommandSortRecent       = "sort-recent"
	CommandGroupDomain      = "group-domain"
	CommandGroupApex        = "group-apex"
	CommandGroupRecent      = "group-recent"
	CommandUngroup          = "ungroup"
	CommandDedup            = "dedup"
	CommandDedupIgnore      = "dedup-ignore-params"
	CommandMerge            = "merge"
	CommandCopyURLs         = "copy-urls"
	CommandMoveToWindow     = "move-to-window"
	CommandCloseSelected    = "close-selected"
	CommandRestore          = "restore"
	CommandCloseWithHistory = "close"
)

// Config holds manager configuration. Zero fields get defaults in New.
type Config struct {
	Keyer           *urlutil.Keyer    // Grouping keys (default: shared cached keyer)
	Activity        *activity.Tracker // Last-access times (default: empty in-memory)
	History         *History          // Closed-tab history (default: in-memory)
	Clipboard       Clipboard         // Copy target (default: OS clipboard)
	Colors          []Color           // Group colour cycle (default: DefaultColors)
	GroupSingletons bool              // Group domains that have a single tab
	HostRate        float64           // Host calls per second, 0 for unlimited
	HostBurst       int               // Limiter burst (default 1)
	Logger          *slog.Logger
	Now             func() time.Time
}

// Manager runs tab commands against a Browser. A Manager is not safe for
// concurrent commands on the same Browser.
type Manager struct {
	cfg        Config
	browser    Browser
	limiter    *rate.Limiter
	progressCh chan<- Event
}

// New creates a Manager for browser with the given configuration.
// The progressCh parameter is optional; pass nil to disable progress events.
func New(cfg Config, browser Browser, progressCh chan<- Event) *Manager {
	if cfg.Keyer == nil {
		cfg.Keyer = urlutil.Default()
	}
	if cfg.Activity == nil {
		cfg.Activity = activity.NewTracker(store.NewMemory())
	}
	if cfg.History == nil {
		cfg.History = NewHistory(store.NewMemory(), DefaultHistoryDepth)
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = SystemClipboard{}
	}
	if len(cfg.Colors) == 0 {
		cfg.Colors = DefaultColors
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var limiter *rate.Limiter
	if cfg.HostRate > 0 {
		if cfg.HostBurst <= 0 {
			cfg.HostBurst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.HostRate), cfg.HostBurst)
	}

	return &Manager{
		cfg:        cfg,
		browser:    browser,
		limiter:    limiter,
		progressCh: progressCh,
	}
}

// run tracks one command: its report and the host calls it makes.
type run struct {
	m      *Manager
	report *result.Report
	start  time.Time
}

func (m *Manager) begin(command string) *run {
	m.cfg.Logger.Debug("command started", "command", command)
	return &run{
		m:      m,
		report: &result.Report{Command: command},
		start:  m.cfg.Now(),
	}
}

// finish stamps the duration and returns the report with err.
func (r *run) finish(err error) (*result.Report, error) {
	r.report.Stats.Duration = r.m.cfg.Now().Sub(r.start)
	r.m.cfg.Logger.Debug("command finished",
		"command", r.report.Command,
		"host_calls", r.report.Stats.HostCalls,
		"failures", len(r.report.Failures),
	)
	return r.report, err
}

// call paces and issues a single host call.
func (r *run) call(ctx context.Context, op string, tabID, windowID int, fn func(context.Context) error) error {
	if r.m.limiter != nil {
		if err := r.m.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limiter wait: %w", op, err)
		}
	}

	err := fn(ctx)
	r.report.Stats.HostCalls++
	if err != nil {
		err = fmt.Errorf("%s: %w", op, err)
	}
	r.emit(ctx, op, tabID, windowID, err)
	return err
}

// try issues a host call whose failure is recorded and skipped.
func (r *run) try(ctx context.Context, op string, tabID, windowID int, fn func(context.Context) error) bool {
	err := r.call(ctx, op, tabID, windowID, fn)
	if err == nil {
		return true
	}
	r.report.AddFailure(op, tabID, windowID, err)
	r.m.cfg.Logger.Warn("host call failed", "op", op, "tab", tabID, "window", windowID, "err", err)
	return false
}

func (r *run) emit(ctx context.Context, op string, tabID, windowID int, err error) {
	if r.m.progressCh == nil {
		return
	}

	ev := Event{
		Command:  r.report.Command,
		Op:       op,
		TabID:    tabID,
		WindowID: windowID,
		Calls:    r.report.Stats.HostCalls,
		Failed:   len(r.report.Failures),
	}
	if err != nil {
		ev.Error = err.Error()
		ev.ErrorCategory = result.ClassifyError(err)
		ev.Failed++
	}

	select {
	case r.m.progressCh <- ev:
	case <-ctx.Done():
	}
}

func (r *run) query(ctx context.Context, q Query) ([]Tab, error) {
	var tabs []Tab
	err := r.call(ctx, "query tabs", 0, 0, func(ctx context.Context) error {
		var err error
		tabs, err = r.m.browser.Query(ctx, q)
		return err
	})
	return tabs, err
}

// layout returns the pinned tab count and the active tab id of the current
// window; the id is 0 when no tab is active.
func (r *run) layout(ctx context.Context) (pinned, activeID int, err error) {
	pinnedTabs, err := r.query(ctx, Query{CurrentWindow: true, Pinned: boolPtr(true)})
	if err != nil {
		return 0, 0, err
	}
	active, err := r.query(ctx, Query{CurrentWindow: true, Active: true})
	if err != nil {
		return 0, 0, err
	}
	if len(active) > 0 {
		activeID = active[0].ID
	}
	return len(pinnedTabs), activeID, nil
}

func refs(tabs []Tab) []result.TabRef {
	out := make([]result.TabRef, len(tabs))
	for i, t := range tabs {
		out[i] = result.TabRef{ID: t.ID, URL: t.URL}
	}
	return out
}
