// Package tui provides the Bubble Tea terminal UI for grouptabs, showing
// live host-call progress and a styled summary of the command's report.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcguire/grouptabs/result"
	"github.com/lukemcguire/grouptabs/tabs"
)

// RunFunc runs one tab command.
type RunFunc func(ctx context.Context) (*result.Report, error)

// Model is the Bubble Tea model for a running tab command.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	title      string
	run        RunFunc
	spinner    spinner.Model
	progressCh <-chan tabs.Event

	calls    int
	failed   int
	current  string
	quitting bool
	done     bool
	report   *result.Report
	err      error
	width    int
}

// NewModel creates a TUI model that runs fn and listens on progressCh.
func NewModel(ctx context.Context, cancel context.CancelFunc, title string, fn RunFunc, progressCh <-chan tabs.Event) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:        ctx,
		cancel:     cancel,
		title:      title,
		run:        fn,
		spinner:    spin,
		progressCh: progressCh,
	}
}

// Init starts the spinner, the command and the progress listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runCommand(), waitForProgress(m.progressCh))
}

func (m Model) runCommand() tea.Cmd {
	return func() tea.Msg {
		rep, err := m.run(m.ctx)
		if err != nil {
			err = fmt.Errorf("%s: %w", m.title, err)
		}
		return DoneMsg{Report: rep, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case ProgressMsg:
		m.calls = msg.Calls
		m.failed = msg.Failed
		m.current = msg.Op
		if msg.TabID != 0 {
			m.current = fmt.Sprintf("%s #%d", msg.Op, msg.TabID)
		}
		return m, waitForProgress(m.progressCh)

	case DoneMsg:
		// The channel closing races the command; only the command's own
		// message carries the outcome.
		if msg.Report == nil && msg.Err == nil {
			return m, nil
		}
		m.done = true
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.done {
		return RenderSummary(m.report)
	}
	return fmt.Sprintf("%s Running %s... %d host calls, %d failed\n%s\n",
		m.spinner.View(), m.title, m.calls, m.failed,
		dimStyle.Render("  "+m.current))
}

// HasFailures reports whether any host call failed.
func (m Model) HasFailures() bool {
	return m.report != nil && len(m.report.Failures) > 0
}

// Report returns the command's report for output formatting.
func (m Model) Report() *result.Report {
	return m.report
}

// Err returns the error the command finished with.
func (m Model) Err() error {
	return m.err
}
