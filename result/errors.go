package result

import (
	"context"
	"errors"
)

// ErrorCategory represents the classification of a failed host call.
type ErrorCategory string

const (
	CategoryTabNotFound    ErrorCategory = "tab_not_found"
	CategoryWindowNotFound ErrorCategory = "window_not_found"
	CategoryGroupNotFound  ErrorCategory = "group_not_found"
	CategoryCanceled       ErrorCategory = "canceled"
	CategoryUnknown        ErrorCategory = "unknown"
)

// Categorized is implemented by errors that know their own category.
type Categorized interface {
	error
	Category() ErrorCategory
}

// ClassifyError determines the category of err. Cancellation wins over any
// category carried by the wrapped chain.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryCanceled
	}

	var c Categorized
	if errors.As(err, &c) {
		return c.Category()
	}

	return CategoryUnknown
}

// FormatCategory returns a human-readable label for an error category.
func FormatCategory(cat ErrorCategory) string {
	switch cat {
	case CategoryTabNotFound:
		return "Missing Tabs"
	case CategoryWindowNotFound:
		return "Missing Windows"
	case CategoryGroupNotFound:
		return "Missing Groups"
	case CategoryCanceled:
		return "Canceled"
	default:
		return "Other Errors"
	}
}
