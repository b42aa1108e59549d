package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/grouptabs/result"
	"github.com/lukemcguire/grouptabs/tabs"
)

// ProgressMsg reports one finished host call.
type ProgressMsg struct {
	Op     string
	TabID  int
	Calls  int
	Failed int
	Error  string
}

// DoneMsg signals the command has completed.
type DoneMsg struct {
	Report *result.Report
	Err    error
}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel. A closed channel yields a DoneMsg with no report; the report
// itself comes from runCommand.
func waitForProgress(ch <-chan tabs.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return DoneMsg{}
		}
		return ProgressMsg{
			Op:     ev.Op,
			TabID:  ev.TabID,
			Calls:  ev.Calls,
			Failed: ev.Failed,
			Error:  ev.Error,
		}
	}
}
