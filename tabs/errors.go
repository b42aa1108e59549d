package tabs

import (
	"errors"

	"github.com/lukemcguire/grouptabs/result"
)

// hostError is a sentinel that carries its report category.
type hostError struct {
	msg string
	cat result.ErrorCategory
}

func (e *hostError) Error() string                  { return e.msg }
func (e *hostError) Category() result.ErrorCategory { return e.cat }

var (
	ErrTabNotFound    error = &hostError{"tab not found", result.CategoryTabNotFound}
	ErrWindowNotFound error = &hostError{"window not found", result.CategoryWindowNotFound}
	ErrGroupNotFound  error = &hostError{"group not found", result.CategoryGroupNotFound}

	// ErrNothingSelected is returned when neither a selection nor an active
	// tab is available.
	ErrNothingSelected = errors.New("no tabs found to act on")
)
