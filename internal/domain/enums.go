package domain

// Category names a project stage (kanban column) in the backend.
type Category string

// SessionState is the authoring session's position in its lifecycle.
type SessionState string

const (
	StateNoProject     SessionState = "no_project"
	StateProjectActive SessionState = "project_active"
)

// SubtaskOutcome records whether one requested subtask was persisted.
type SubtaskOutcome struct {
	Title string
	ID    int64
	Err   error
}

// Succeeded reports whether the subtask was created.
func (o SubtaskOutcome) Succeeded() bool {
	return o.Err == nil && o.ID != 0
}
