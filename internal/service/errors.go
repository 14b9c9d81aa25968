package service

import "errors"

var (
	// ErrValidation marks input rejected locally before any backend call.
	ErrValidation = errors.New("validation failed")

	// ErrNoProject is returned for task operations while no project is active.
	ErrNoProject = errors.New("no active project")

	// ErrProjectActive is returned when creating a project while one is active.
	ErrProjectActive = errors.New("a project is already active")
)

// WarningKind classifies a non-fatal problem reported alongside a result.
type WarningKind string

const (
	// WarningNotFound is a lookup miss that was downgraded to an omission.
	WarningNotFound WarningKind = "not_found"

	// WarningSuggestion is a failed advisory suggestion step.
	WarningSuggestion WarningKind = "suggestion"
)

// Warning is a non-fatal problem. The operation it accompanies still succeeded.
type Warning struct {
	Kind    WarningKind
	Subject string
	Message string
}

func (w Warning) String() string {
	return w.Message
}
