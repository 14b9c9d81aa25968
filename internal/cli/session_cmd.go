package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/cli/formatter"
	"github.com/alexanderramin/sprintdesk/internal/config"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/alexanderramin/sprintdesk/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

const maxLoginAttempts = 3

func newSessionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Interactive authoring session: create a project, then add tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, app)
		},
	}
}

// sessionRunner holds one interactive session. Backend errors are shown
// and end only the current action; the loop keeps running.
type sessionRunner struct {
	app       *App
	cmd       *cobra.Command
	out       io.Writer
	prompter  Prompter
	authoring *service.Authoring
	sess      *service.Session
	creds     backend.Credentials
}

func runSession(cmd *cobra.Command, app *App) error {
	if app.Prompter == nil && !app.interactive() {
		return fmt.Errorf("session needs an interactive terminal")
	}
	authoring, err := app.Connect(ConnectOptions{
		Backend: config.BackendKind(app.flags.backend),
		Verbose: app.flags.verbose,
		Log:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	r := &sessionRunner{
		app:       app,
		cmd:       cmd,
		out:       cmd.OutOrStdout(),
		prompter:  app.prompter(),
		authoring: authoring,
		sess:      service.NewSession(),
		creds:     app.credentials(),
	}
	return quietAbort(r.run())
}

// quietAbort treats a user abort (ctrl+c in a form) as a normal exit.
func quietAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

func (r *sessionRunner) run() error {
	if err := r.login(); err != nil {
		return err
	}
	fmt.Fprintln(r.out, formatter.Dim("Project manager: "+r.app.Config.Directory.ProjectManager))

	for {
		if r.sess.State() == domain.StateNoProject {
			if err := r.createProject(); err != nil {
				return err
			}
			continue
		}

		_, name, _ := r.sess.Project()
		action, err := r.prompter.Menu(name)
		if err != nil {
			return err
		}
		if action == ActionQuit {
			return nil
		}
		if err := r.dispatch(action); err != nil {
			return err
		}
	}
}

func (r *sessionRunner) login() error {
	for attempt := 1; ; attempt++ {
		if !r.creds.Complete() {
			if err := r.prompter.Credentials(&r.creds); err != nil {
				return err
			}
		}
		err := r.authoring.Login(r.cmd.Context(), r.sess, r.creds)
		if err == nil {
			return nil
		}
		fmt.Fprintln(r.out, formatter.RenderError(err))
		if !errors.Is(err, backend.ErrAuthentication) || attempt >= maxLoginAttempts {
			return err
		}
		r.creds.Password = ""
	}
}

// busy shows a spinner on stderr while a backend call runs. Scripted
// sessions get a no-op.
func (r *sessionRunner) busy(message string) func() {
	if !r.app.interactive() {
		return func() {}
	}
	return formatter.StartSpinner(r.cmd.ErrOrStderr(), message)
}

// report shows a failed action. Authentication failures prompt for
// credentials again.
func (r *sessionRunner) report(err error) error {
	fmt.Fprintln(r.out, formatter.RenderError(err))
	if errors.Is(err, backend.ErrAuthentication) {
		r.creds.Password = ""
		return r.login()
	}
	return nil
}

func (r *sessionRunner) createProject() error {
	var draft service.ProjectDraft
	if err := r.prompter.Project(r.app.Config.Directory, &draft); err != nil {
		return err
	}
	id, err := r.authoring.CreateProject(r.cmd.Context(), r.sess, draft)
	if err != nil {
		return r.report(err)
	}
	fmt.Fprintln(r.out, formatter.Success(fmt.Sprintf("Project %q created (ID: %d).", draft.Name, id)))
	return nil
}

func (r *sessionRunner) dispatch(action MenuAction) error {
	ctx := r.cmd.Context()
	switch action {
	case ActionAddTask:
		return r.addTask()

	case ActionListTasks, ActionBrowseTasks:
		stop := r.busy("Loading tasks...")
		nodes, err := r.authoring.ListTasks(ctx, r.sess)
		stop()
		if err != nil {
			return r.report(err)
		}
		_, name, _ := r.sess.Project()
		if action == ActionBrowseTasks {
			return r.prompter.BrowseTasks(name, nodes)
		}
		fmt.Fprint(r.out, formatter.RenderTaskTree(name, nodes))
		return nil

	case ActionDeleteTask:
		return r.deleteTask()

	case ActionDeleteProject:
		_, name, _ := r.sess.Project()
		ok, err := r.prompter.Confirm(fmt.Sprintf("Delete project %q and all of its tasks?", name))
		if err != nil || !ok {
			return err
		}
		deleted, err := r.authoring.DeleteProject(ctx, r.sess)
		if err != nil {
			return r.report(err)
		}
		if !deleted {
			fmt.Fprintln(r.out, formatter.Failure(fmt.Sprintf("Project %q was not deleted.", name)))
			return nil
		}
		fmt.Fprintln(r.out, formatter.Success(fmt.Sprintf("Project %q deleted.", name)))
		return nil

	case ActionNewProject:
		r.authoring.StartNewProject(r.sess)
		fmt.Fprintln(r.out, formatter.Info("Starting a new project."))
		return nil

	default:
		return fmt.Errorf("unknown menu action %q", action)
	}
}

func (r *sessionRunner) addTask() error {
	var form TaskForm
	if err := r.prompter.Task(r.app.Config.Directory, &form); err != nil {
		return err
	}
	draft := r.app.taskDraft(form, nil)

	if form.Suggest && form.Description != "" {
		p := r.authoring.Propose(form.Description)
		ok, err := r.prompter.AcceptProposal(p)
		if err != nil {
			return err
		}
		if ok {
			applyProposal(&draft, p)
		}
	}

	stop := r.busy("Creating task...")
	res, err := r.authoring.CreateTask(r.cmd.Context(), r.sess, draft)
	stop()
	if err != nil {
		return r.report(err)
	}
	fmt.Fprint(r.out, formatter.RenderTaskResult(res))
	return nil
}

func (r *sessionRunner) deleteTask() error {
	ctx := r.cmd.Context()
	nodes, err := r.authoring.ListTasks(ctx, r.sess)
	if err != nil {
		return r.report(err)
	}
	if len(nodes) == 0 {
		fmt.Fprintln(r.out, formatter.Info("No tasks yet."))
		return nil
	}
	id, err := r.prompter.PickTask(nodes)
	if err != nil {
		return err
	}
	ok, err := r.prompter.Confirm(fmt.Sprintf("Delete task %d and its subtasks?", id))
	if err != nil || !ok {
		return err
	}
	deleted, err := r.authoring.DeleteTask(ctx, r.sess, id)
	if err != nil {
		return r.report(err)
	}
	if !deleted {
		fmt.Fprintln(r.out, formatter.Failure(fmt.Sprintf("Task %d was not deleted.", id)))
		return nil
	}
	fmt.Fprintln(r.out, formatter.Success(fmt.Sprintf("Task %d deleted.", id)))
	return nil
}
