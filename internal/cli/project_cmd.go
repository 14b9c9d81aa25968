package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alexanderramin/sprintdesk/internal/cli/formatter"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/alexanderramin/sprintdesk/internal/service"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create or delete projects",
	}

	cmd.AddCommand(
		newProjectCreateCmd(app),
		newProjectDeleteCmd(app),
	)

	return cmd
}

func newProjectCreateCmd(app *App) *cobra.Command {
	var name, category, description, descriptionFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := readText(cmd, description, descriptionFile)
			if err != nil {
				return err
			}
			authoring, sess, err := app.connect(cmd)
			if err != nil {
				return err
			}

			id, err := authoring.CreateProject(cmd.Context(), sess, service.ProjectDraft{
				Name:        name,
				Category:    domain.Category(category),
				Description: desc,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Success(fmt.Sprintf("Project %q created (ID: %d).", name, id)))
			fmt.Fprintln(out, formatter.Dim("Project manager: "+app.Config.Directory.ProjectManager))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&category, "category", "", "Project category (kanban column)")
	cmd.Flags().StringVar(&description, "description", "", "Project description (structured text)")
	cmd.Flags().StringVar(&descriptionFile, "description-file", "", "Read the description from a file, or - for stdin")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			authoring, sess, err := app.connect(cmd)
			if err != nil {
				return err
			}
			p, err := authoring.OpenProject(cmd.Context(), sess, id)
			if err != nil {
				return err
			}

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to delete project %d without --yes", id)
				}
				ok, err := app.prompter().Confirm(fmt.Sprintf("Delete project %q and all of its tasks?", p.Name))
				if err != nil || !ok {
					return err
				}
			}

			deleted, err := authoring.DeleteProject(cmd.Context(), sess)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("project %d was not deleted", id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Project %q deleted.", p.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", service.ErrValidation, s)
	}
	return id, nil
}

// readText returns inline text, or the content of file when set ("-"
// reads the command's stdin).
func readText(cmd *cobra.Command, inline, file string) (string, error) {
	switch file {
	case "":
		return inline, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		return string(data), nil
	}
}
