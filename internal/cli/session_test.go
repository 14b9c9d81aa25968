package cli

import (
	"errors"
	"testing"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/config"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/alexanderramin/sprintdesk/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter replays canned answers in order.
type scriptedPrompter struct {
	passwords []string
	projects  []service.ProjectDraft
	menu      []MenuAction
	tasks     []TaskForm
	accept    bool
	pick      int64
	confirm   bool

	browsed   []domain.TaskNode
	proposals []service.Proposal
}

func (p *scriptedPrompter) Credentials(creds *backend.Credentials) error {
	if len(p.passwords) == 0 {
		return huh.ErrUserAborted
	}
	creds.Password, p.passwords = p.passwords[0], p.passwords[1:]
	return nil
}

func (p *scriptedPrompter) Project(_ config.Directory, draft *service.ProjectDraft) error {
	if len(p.projects) == 0 {
		return huh.ErrUserAborted
	}
	*draft, p.projects = p.projects[0], p.projects[1:]
	return nil
}

func (p *scriptedPrompter) Menu(string) (MenuAction, error) {
	if len(p.menu) == 0 {
		return ActionQuit, nil
	}
	a := p.menu[0]
	p.menu = p.menu[1:]
	return a, nil
}

func (p *scriptedPrompter) Task(_ config.Directory, form *TaskForm) error {
	if len(p.tasks) == 0 {
		return huh.ErrUserAborted
	}
	*form, p.tasks = p.tasks[0], p.tasks[1:]
	return nil
}

func (p *scriptedPrompter) AcceptProposal(prop service.Proposal) (bool, error) {
	p.proposals = append(p.proposals, prop)
	return p.accept, nil
}

func (p *scriptedPrompter) PickTask([]domain.TaskNode) (int64, error) { return p.pick, nil }

func (p *scriptedPrompter) Confirm(string) (bool, error) { return p.confirm, nil }

func (p *scriptedPrompter) BrowseTasks(_ string, nodes []domain.TaskNode) error {
	p.browsed = nodes
	return nil
}

func TestSession_CreateProjectAddTaskList(t *testing.T) {
	app, _ := testApp(t)
	p := &scriptedPrompter{
		projects: []service.ProjectDraft{{Name: "P", Category: "R&D"}},
		menu:     []MenuAction{ActionAddTask, ActionListTasks, ActionBrowseTasks},
		tasks: []TaskForm{{
			Title:       "T1",
			Tags:        "api",
			Assignees:   []string{"Ben Okafor"},
			SubtaskText: "s1\ns2",
		}},
	}
	app.Prompter = p

	out, err := executeCmd(t, app, "", "session")
	require.NoError(t, err)
	assert.Contains(t, out, "Project manager: Dana")
	assert.Contains(t, out, `Project "P" created (ID: 1).`)
	assert.Contains(t, out, "2 subtasks of 2 created.")
	assert.Contains(t, out, "Subtask: s2")
	assert.Contains(t, out, "assignee: Ben Okafor")

	require.Len(t, p.browsed, 1)
	assert.Equal(t, "T1", p.browsed[0].Title)
	assert.Len(t, p.browsed[0].Children, 2)
}

func TestSession_ProposalAccepted(t *testing.T) {
	app, _ := testApp(t)
	p := &scriptedPrompter{
		projects: []service.ProjectDraft{{Name: "P", Category: "R&D"}},
		menu:     []MenuAction{ActionAddTask, ActionBrowseTasks},
		tasks: []TaskForm{{
			Title:       "T1",
			Description: "invoice invoice\nSubtasks:\n1. design\n2. build",
			Suggest:     true,
		}},
		accept: true,
	}
	app.Prompter = p

	_, err := executeCmd(t, app, "", "session")
	require.NoError(t, err)

	require.Len(t, p.proposals, 1)
	assert.Equal(t, []string{"design", "build"}, p.proposals[0].Subtasks)
	require.Len(t, p.browsed, 1)
	assert.Equal(t, []string{"Invoice"}, p.browsed[0].TagNames[:1])
	require.Len(t, p.browsed[0].Children, 2)
	assert.Equal(t, "design", p.browsed[0].Children[0].Title)
}

func TestSession_LoginRetry(t *testing.T) {
	app, _ := testApp(t)
	app.Config.Password = "wrong"
	p := &scriptedPrompter{passwords: []string{"also-wrong", "sandbox"}}
	app.Prompter = p

	out, err := executeCmd(t, app, "", "session")
	require.NoError(t, err, "project prompt abort ends the session quietly")
	assert.Contains(t, out, "Authentication failed")
	assert.Empty(t, p.passwords)
}

func TestSession_LoginGivesUp(t *testing.T) {
	app, _ := testApp(t)
	app.Config.Password = "wrong"
	app.Prompter = &scriptedPrompter{passwords: []string{"x", "y", "z"}}

	_, err := executeCmd(t, app, "", "session")
	assert.ErrorIs(t, err, backend.ErrAuthentication)
}

func TestSession_InvalidProjectIsReported(t *testing.T) {
	app, _ := testApp(t)
	app.Prompter = &scriptedPrompter{
		projects: []service.ProjectDraft{
			{Name: " ", Category: "R&D"},
			{Name: "P", Category: "R&D"},
		},
	}

	out, err := executeCmd(t, app, "", "session")
	require.NoError(t, err)
	assert.Contains(t, out, `Project "P" created (ID: 1).`)
}

func TestSession_DeleteTaskAndProject(t *testing.T) {
	app, _ := testApp(t)
	p := &scriptedPrompter{
		projects: []service.ProjectDraft{{Name: "P", Category: "R&D"}},
		menu:     []MenuAction{ActionAddTask, ActionDeleteTask, ActionDeleteProject},
		tasks:    []TaskForm{{Title: "T1"}},
		pick:     1,
		confirm:  true,
	}
	app.Prompter = p

	out, err := executeCmd(t, app, "", "session")
	require.NoError(t, err)
	assert.Contains(t, out, "Task 1 deleted.")
	assert.Contains(t, out, `Project "P" deleted.`)
}

func TestSession_DeleteRefusedByBackend(t *testing.T) {
	app, b := testApp(t)
	refuseDeletes(app, b)
	p := &scriptedPrompter{
		projects: []service.ProjectDraft{{Name: "P", Category: "R&D"}},
		menu:     []MenuAction{ActionAddTask, ActionDeleteTask, ActionDeleteProject},
		tasks:    []TaskForm{{Title: "T1"}},
		pick:     1,
		confirm:  true,
	}
	app.Prompter = p

	out, err := executeCmd(t, app, "", "session")
	require.NoError(t, err)
	assert.Contains(t, out, "Task 1 was not deleted.")
	assert.Contains(t, out, `Project "P" was not deleted.`)
	assert.NotContains(t, out, "Task 1 deleted.")
	assert.NotContains(t, out, `Project "P" deleted.`)
}

func TestSession_NeedsTerminal(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "", "session")
	require.Error(t, err)
}

func TestQuietAbort(t *testing.T) {
	assert.NoError(t, quietAbort(huh.ErrUserAborted))
	boom := errors.New("boom")
	assert.Equal(t, boom, quietAbort(boom))
}
