package tabs

import "github.com/lukemcguire/grouptabs/result"

// Event reports progress for a single host call.
type Event struct {
	Command       string
	Op            string
	TabID         int
	WindowID      int
	Error         string
	ErrorCategory result.ErrorCategory
	Calls         int
	Failed        int
}
