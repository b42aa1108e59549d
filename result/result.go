package result

import "time"

// TabRef identifies a tab touched by a command.
type TabRef struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// GroupResult describes one tab group created by a command.
type GroupResult struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Color     string   `json:"color"`
	Collapsed bool     `json:"collapsed"`
	Tabs      []TabRef `json:"tabs"`
}

// ClosedTab is a tab removed by a command.
type ClosedTab struct {
	ID     int    `json:"id"`
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Failure records a host call that failed while a command kept going.
type Failure struct {
	Op       string        `json:"op"`
	TabID    int           `json:"tab_id,omitempty"`
	WindowID int           `json:"window_id,omitempty"`
	Error    string        `json:"error"`
	Category ErrorCategory `json:"error_type"`
}

// Stats contains aggregate counters for a command.
type Stats struct {
	HostCalls int           `json:"host_calls"` // Browser calls issued
	Duration  time.Duration `json:"duration"`   // Wall time of the command
}

// Report is the complete output of one tab command.
type Report struct {
	Command       string        `json:"command"`
	Session       string        `json:"session,omitempty"`
	Groups        []GroupResult `json:"groups,omitempty"`
	Closed        []ClosedTab   `json:"closed,omitempty"`
	Opened        []TabRef      `json:"opened,omitempty"` // Tabs reopened from history
	Tabs          []TabRef      `json:"tabs,omitempty"`   // Tabs moved, in their final order
	Moved         int           `json:"moved"`
	WindowsClosed int           `json:"windows_closed,omitempty"`
	Message       string        `json:"message,omitempty"`
	Failures      []Failure     `json:"failures,omitempty"`
	Stats         Stats         `json:"stats"`
}

// AddFailure appends a failure for op, classifying err.
func (r *Report) AddFailure(op string, tabID, windowID int, err error) {
	r.Failures = append(r.Failures, Failure{
		Op:       op,
		TabID:    tabID,
		WindowID: windowID,
		Error:    err.Error(),
		Category: ClassifyError(err),
	})
}
