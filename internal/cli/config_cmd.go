package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/sprintdesk/internal/cli/formatter"
	"github.com/alexanderramin/sprintdesk/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the loaded configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show backend settings and the category and assignee directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), renderConfig(app.Config, config.BackendKind(app.flags.backend)))
			return nil
		},
	})

	return cmd
}

func renderConfig(cfg *config.Config, selected config.BackendKind) string {
	var b strings.Builder
	b.WriteString(formatter.Header("Backend") + "\n")
	b.WriteString(fmt.Sprintf("kind:      %s\n", selected))
	switch selected {
	case config.BackendSandbox:
		b.WriteString(fmt.Sprintf("database:  %s\n", cfg.Sandbox.Path))
		b.WriteString(fmt.Sprintf("account:   %s\n", cfg.Sandbox.Login))
	default:
		b.WriteString(fmt.Sprintf("url:       %s\n", orDash(cfg.Odoo.URL)))
		b.WriteString(fmt.Sprintf("database:  %s\n", orDash(cfg.Odoo.Database)))
		b.WriteString(fmt.Sprintf("timeout:   %dms, %d retries\n", cfg.Odoo.TimeoutMs, cfg.Odoo.MaxRetries))
	}

	b.WriteString("\n" + formatter.Header("Directory") + "\n")
	b.WriteString(fmt.Sprintf("project manager: %s\n", cfg.Directory.ProjectManager))
	cats := make([]string, len(cfg.Directory.Categories))
	for i, c := range cfg.Directory.Categories {
		cats[i] = string(c)
	}
	b.WriteString(fmt.Sprintf("categories:      %s\n", strings.Join(cats, ", ")))

	if len(cfg.Directory.Assignees) == 0 {
		b.WriteString(formatter.Dim("no assignees configured") + "\n")
		return b.String()
	}
	rows := make([][]string, 0, len(cfg.Directory.Assignees))
	for _, a := range cfg.Directory.Assignees {
		rows = append(rows, []string{a.DisplayName, a.Login})
	}
	b.WriteString("\n" + formatter.RenderTable([]string{"ASSIGNEE", "LOGIN"}, rows))
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
