package cli

import (
	"fmt"
	"io"

	"github.com/alexanderramin/sprintdesk/internal/config"
	"github.com/alexanderramin/sprintdesk/internal/intelligence"
	"github.com/alexanderramin/sprintdesk/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ConnectOptions are the persistent flags that shape the backend wiring.
type ConnectOptions struct {
	Backend config.BackendKind
	Verbose bool
	Log     io.Writer
}

// Connector builds an orchestrator for the selected backend.
type Connector func(opts ConnectOptions) (*service.Authoring, error)

// App holds what CLI commands need: static configuration, the backend
// connector and the advisory tag suggester.
type App struct {
	Config    *config.Config
	Connect   Connector
	Suggester *intelligence.TagSuggester

	// Prompter drives interactive forms. Nil selects the huh prompter.
	Prompter Prompter

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool

	flags globalFlags
}

type globalFlags struct {
	backend string
	login   string
	verbose bool
}

func (f *globalFlags) flagSet(cfg *config.Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.StringVar(&f.backend, "backend", string(cfg.Backend), "backend to use: odoo or sqlite")
	fs.StringVar(&f.login, "login", cfg.Login, "backend login (email)")
	fs.BoolVarP(&f.verbose, "verbose", "v", cfg.LogUseCases, "log use cases and backend calls to stderr")
	return fs
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) prompter() Prompter {
	if a.Prompter != nil {
		return a.Prompter
	}
	return huhPrompter{}
}

// NewRootCmd creates the top-level "sprintdesk" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "sprintdesk",
		Short:         "Sprint planning assistant for a project-management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch config.BackendKind(app.flags.backend) {
			case config.BackendOdoo, config.BackendSandbox:
				return nil
			default:
				return fmt.Errorf("unknown backend %q (want odoo or sqlite)", app.flags.backend)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runSession(cmd, app)
			}
			return cmd.Help()
		},
	}
	root.PersistentFlags().AddFlagSet(app.flags.flagSet(app.Config))

	root.AddCommand(
		newSessionCmd(app),
		newProjectCmd(app),
		newTaskCmd(app),
		newSuggestCmd(app),
		newFormatCmd(),
		newConfigCmd(app),
	)

	return root
}

// connect builds the orchestrator for the selected backend and logs a
// session in with the flag, environment or prompted credentials.
func (a *App) connect(cmd *cobra.Command) (*service.Authoring, *service.Session, error) {
	authoring, err := a.Connect(ConnectOptions{
		Backend: config.BackendKind(a.flags.backend),
		Verbose: a.flags.verbose,
		Log:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, err
	}

	creds := a.credentials()
	if !creds.Complete() && a.interactive() {
		if err := a.prompter().Credentials(&creds); err != nil {
			return nil, nil, err
		}
	}

	sess := service.NewSession()
	if err := authoring.Login(cmd.Context(), sess, creds); err != nil {
		return nil, nil, err
	}
	return authoring, sess, nil
}
