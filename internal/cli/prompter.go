package cli

import (
	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/config"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/alexanderramin/sprintdesk/internal/service"
)

// MenuAction is a choice in the interactive session menu.
type MenuAction string

const (
	ActionAddTask       MenuAction = "add-task"
	ActionListTasks     MenuAction = "list-tasks"
	ActionBrowseTasks   MenuAction = "browse-tasks"
	ActionDeleteTask    MenuAction = "delete-task"
	ActionDeleteProject MenuAction = "delete-project"
	ActionNewProject    MenuAction = "new-project"
	ActionQuit          MenuAction = "quit"
)

// TaskForm is the interactive task form. SubtaskText holds one subtask
// per line; Suggest asks for a proposal built from the description.
type TaskForm struct {
	Title       string
	Description string
	Tags        string
	Assignees   []string
	SubtaskText string
	Suggest     bool
}

// Prompter collects interactive input. The huh implementation renders
// terminal forms; tests script it.
type Prompter interface {
	Credentials(creds *backend.Credentials) error
	Project(dir config.Directory, draft *service.ProjectDraft) error
	Menu(projectName string) (MenuAction, error)
	Task(dir config.Directory, form *TaskForm) error
	AcceptProposal(p service.Proposal) (bool, error)
	PickTask(nodes []domain.TaskNode) (int64, error)
	Confirm(title string) (bool, error)
	BrowseTasks(projectName string, nodes []domain.TaskNode) error
}
