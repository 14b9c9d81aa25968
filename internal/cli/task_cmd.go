package cli

import (
	"fmt"

	"github.com/alexanderramin/sprintdesk/internal/cli/formatter"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/alexanderramin/sprintdesk/internal/intelligence"
	"github.com/alexanderramin/sprintdesk/internal/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, list or delete tasks of a project",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskDeleteCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var (
		projectID                    int64
		title, description, descFile string
		tags                         string
		assignees, subtasks          []string
		subtaskText                  string
		suggest                      bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task, optionally with subtasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := readText(cmd, description, descFile)
			if err != nil {
				return err
			}
			authoring, sess, err := app.connect(cmd)
			if err != nil {
				return err
			}
			if _, err := authoring.OpenProject(cmd.Context(), sess, projectID); err != nil {
				return err
			}

			form := TaskForm{
				Title:       title,
				Description: desc,
				Tags:        tags,
				Assignees:   assignees,
				SubtaskText: subtaskText,
				Suggest:     suggest,
			}
			draft := app.taskDraft(form, subtasks)

			out := cmd.OutOrStdout()
			if suggest && desc != "" {
				p := authoring.Propose(desc)
				fmt.Fprintln(out, formatter.RenderProposal(p))
				applyProposal(&draft, p)
			}

			res, err := authoring.CreateTask(cmd.Context(), sess, draft)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.RenderTaskResult(res))
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project ID")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description (structured text)")
	cmd.Flags().StringVar(&descFile, "description-file", "", "Read the description from a file, or - for stdin")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tag names")
	cmd.Flags().StringArrayVar(&assignees, "assignee", nil, "Assignee name or login (repeatable)")
	cmd.Flags().StringArrayVar(&subtasks, "subtask", nil, "Subtask title (repeatable)")
	cmd.Flags().StringVar(&subtaskText, "subtasks", "", "Subtask titles, one per line")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Use suggested tags and subtasks where none are given")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

// taskDraft converts form input: tags are split and cleaned, assignee
// names map to logins through the directory and subtask lines are split.
func (a *App) taskDraft(form TaskForm, extraSubtasks []string) service.TaskDraft {
	logins, _ := a.Config.Directory.ResolveLogins(form.Assignees)
	subs := append(intelligence.ParseSubtaskLines(form.SubtaskText), extraSubtasks...)
	return service.TaskDraft{
		Title:       form.Title,
		Description: form.Description,
		Tags:        domain.SplitTagList(form.Tags),
		Assignees:   logins,
		Subtasks:    domain.UniqueStrings(subs),
	}
}

// applyProposal fills tags and subtasks the user left empty.
func applyProposal(draft *service.TaskDraft, p service.Proposal) {
	if len(draft.Tags) == 0 {
		draft.Tags = p.Tags
	}
	if len(draft.Subtasks) == 0 {
		draft.Subtasks = p.Subtasks
	}
}

func newTaskListCmd(app *App) *cobra.Command {
	var (
		projectID int64
		browse    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the task tree of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			authoring, sess, err := app.connect(cmd)
			if err != nil {
				return err
			}
			p, err := authoring.OpenProject(cmd.Context(), sess, projectID)
			if err != nil {
				return err
			}
			nodes, err := authoring.ListTasks(cmd.Context(), sess)
			if err != nil {
				return err
			}
			if browse && app.interactive() {
				return app.prompter().BrowseTasks(p.Name, nodes)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTaskTree(p.Name, nodes))
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project ID")
	cmd.Flags().BoolVar(&browse, "browse", false, "Open a scrollable tree view")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	var (
		projectID int64
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			authoring, sess, err := app.connect(cmd)
			if err != nil {
				return err
			}
			if _, err := authoring.OpenProject(cmd.Context(), sess, projectID); err != nil {
				return err
			}
			if !yes && app.interactive() {
				ok, err := app.prompter().Confirm(fmt.Sprintf("Delete task %d and its subtasks?", taskID))
				if err != nil || !ok {
					return err
				}
			}
			deleted, err := authoring.DeleteTask(cmd.Context(), sess, taskID)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("task %d was not deleted", taskID)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Task %d deleted.", taskID)))
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project ID")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
