package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/cli/formatter"
	"github.com/alexanderramin/sprintdesk/internal/config"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/alexanderramin/sprintdesk/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// sprintdeskHuhTheme returns a huh theme using the formatter palette.
// Blurred fields are dimmed throughout.
func sprintdeskHuhTheme() *huh.Theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	t := huh.ThemeBase()

	f := &t.Focused
	f.Title = fg(formatter.ColorHeader).Bold(true)
	f.Description = fg(formatter.ColorDim)
	f.SelectSelector = fg(formatter.ColorHeader)
	f.MultiSelectSelector = fg(formatter.ColorHeader)
	f.SelectedOption = fg(formatter.ColorGreen)
	f.UnselectedOption = fg(formatter.ColorFg)
	f.FocusedButton = fg(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	f.BlurredButton = fg(formatter.ColorDim).Padding(0, 1)
	f.TextInput.Cursor = fg(formatter.ColorHeader)
	f.TextInput.Prompt = fg(formatter.ColorHeader)
	f.TextInput.Text = fg(formatter.ColorFg)
	f.TextInput.Placeholder = fg(formatter.ColorDim)
	f.ErrorMessage = fg(formatter.ColorRed)
	f.ErrorIndicator = fg(formatter.ColorRed)

	b := &t.Blurred
	dim := fg(formatter.ColorDim)
	b.Title, b.SelectSelector, b.SelectedOption, b.UnselectedOption = dim, dim, dim, dim
	b.TextInput.Prompt, b.TextInput.Text = dim, dim

	return t
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(sprintdeskHuhTheme()).WithShowHelp(false)
}

// huhPrompter implements Prompter with terminal forms.
type huhPrompter struct{}

func (huhPrompter) Credentials(creds *backend.Credentials) error {
	return newForm(huh.NewGroup(
		huh.NewInput().
			Title("Backend login (email)").
			Value(&creds.Login).
			Validate(requireText("login")),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&creds.Password).
			Validate(requireText("password")),
	)).Run()
}

func (huhPrompter) Project(dir config.Directory, draft *service.ProjectDraft) error {
	options := make([]huh.Option[domain.Category], 0, len(dir.Categories))
	for _, c := range dir.Categories {
		options = append(options, huh.NewOption(string(c), c))
	}
	if draft.Category == "" && len(dir.Categories) > 0 {
		draft.Category = dir.Categories[0]
	}
	return newForm(huh.NewGroup(
		huh.NewInput().
			Title("Project name").
			Value(&draft.Name).
			Validate(requireText("project name")),
		huh.NewSelect[domain.Category]().
			Title("Project category").
			Options(options...).
			Value(&draft.Category),
		huh.NewText().
			Title("Project description").
			Description("Structured content: **bold**, 📋 🔧 ✅ 🎯 🏅 headings").
			Lines(12).
			Value(&draft.Description),
	)).Run()
}

func (huhPrompter) Menu(projectName string) (MenuAction, error) {
	action := ActionAddTask
	err := newForm(huh.NewGroup(
		huh.NewSelect[MenuAction]().
			Title(fmt.Sprintf("Project: %s", projectName)).
			Options(
				huh.NewOption("Add task", ActionAddTask),
				huh.NewOption("List tasks", ActionListTasks),
				huh.NewOption("Browse tasks", ActionBrowseTasks),
				huh.NewOption("Delete task", ActionDeleteTask),
				huh.NewOption("Delete project", ActionDeleteProject),
				huh.NewOption("Start a new project", ActionNewProject),
				huh.NewOption("Quit", ActionQuit),
			).
			Value(&action),
	)).Run()
	return action, err
}

func (huhPrompter) Task(dir config.Directory, form *TaskForm) error {
	fields := []huh.Field{
		huh.NewInput().
			Title("Task title").
			Value(&form.Title).
			Validate(requireText("task title")),
		huh.NewText().
			Title("Task description (optional)").
			Lines(6).
			Value(&form.Description),
		huh.NewInput().
			Title("Tags (comma-separated)").
			Value(&form.Tags),
	}
	if len(dir.Assignees) > 0 {
		options := make([]huh.Option[string], 0, len(dir.Assignees))
		for _, a := range dir.Assignees {
			options = append(options, huh.NewOption(a.DisplayName, a.Login))
		}
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Assign task to").
			Options(options...).
			Value(&form.Assignees))
	}
	fields = append(fields,
		huh.NewText().
			Title("Subtasks (one per line)").
			Lines(4).
			Value(&form.SubtaskText),
		huh.NewConfirm().
			Title("Suggest tags and subtasks from the description?").
			Value(&form.Suggest),
	)
	return newForm(huh.NewGroup(fields...)).Run()
}

func (huhPrompter) AcceptProposal(p service.Proposal) (bool, error) {
	fmt.Println(formatter.RenderProposal(p))
	return huhPrompter{}.Confirm("Use these suggestions?")
}

func (huhPrompter) PickTask(nodes []domain.TaskNode) (int64, error) {
	var options []huh.Option[int64]
	for _, n := range nodes {
		options = append(options, huh.NewOption(fmt.Sprintf("#%d %s", n.ID, n.Title), n.ID))
		for _, c := range n.Children {
			options = append(options, huh.NewOption(fmt.Sprintf("   #%d %s", c.ID, c.Title), c.ID))
		}
	}
	var id int64
	err := newForm(huh.NewGroup(
		huh.NewSelect[int64]().Title("Task to delete").Options(options...).Value(&id),
	)).Run()
	return id, err
}

func (huhPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := newForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok),
	)).Run()
	return ok, err
}

func (huhPrompter) BrowseTasks(projectName string, nodes []domain.TaskNode) error {
	return runTreeBrowser(projectName, nodes)
}

func requireText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
