package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/service"
)

// ErrorMessage turns an error into the line shown to the user. Backend
// errors halt only the current action, so the message says what to do next.
func ErrorMessage(err error) string {
	var remote *backend.RemoteError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, backend.ErrAuthentication):
		return "Authentication failed. Check your login and password and try again."
	case errors.As(err, &remote):
		msg := remote.Message
		if msg == "" {
			msg = remote.Name
		}
		return "The backend rejected the request: " + msg
	case errors.Is(err, backend.ErrUnavailable):
		return "The backend is unavailable: " + err.Error()
	case errors.Is(err, service.ErrValidation):
		return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
	case errors.Is(err, service.ErrNoProject):
		return "Create a project before adding tasks."
	case errors.Is(err, service.ErrProjectActive):
		return "A project is already active. Start a new project first."
	case errors.Is(err, backend.ErrSchema):
		return "Internal schema mismatch: " + err.Error()
	default:
		return err.Error()
	}
}

// RenderError renders ErrorMessage as a failure line.
func RenderError(err error) string {
	return Failure(ErrorMessage(err))
}

// RenderWarnings renders one warning line per entry.
func RenderWarnings(warnings []service.Warning) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(Warning(w.Message) + "\n")
	}
	return b.String()
}

// RenderProposal shows the suggestions made for a description.
func RenderProposal(p service.Proposal) string {
	var b strings.Builder
	b.WriteString(Bold("Suggested tags: ") + TagChips(p.Tags) + "\n")
	if len(p.Subtasks) == 0 {
		b.WriteString(Bold("Suggested subtasks: ") + Dim("none") + "\n")
	} else {
		b.WriteString(Bold("Suggested subtasks:") + "\n")
		b.WriteString(BulletList(p.Subtasks))
	}
	b.WriteString(RenderWarnings(p.Warnings))
	return RenderBox("Proposal", strings.TrimRight(b.String(), "\n"))
}

// RenderTaskResult summarizes a task creation: the task, the subtask
// count and each failed subtask.
func RenderTaskResult(res *service.TaskResult) string {
	var b strings.Builder
	b.WriteString(Success(fmt.Sprintf("Task %q created (ID: %d).", res.Title, res.TaskID)) + "\n")
	if len(res.Subtasks) > 0 {
		line := fmt.Sprintf("%s of %d created.", Pluralize(res.SubtasksCreated(), "subtask"), len(res.Subtasks))
		if res.Partial() {
			b.WriteString(Warning(line) + "\n")
		} else {
			b.WriteString(Success(line) + "\n")
		}
		for _, o := range res.Subtasks {
			if !o.Succeeded() {
				b.WriteString(Failure(fmt.Sprintf("Subtask %q: %s", o.Title, ErrorMessage(o.Err))) + "\n")
			}
		}
	}
	b.WriteString(RenderWarnings(res.Warnings))
	return b.String()
}
