package cli

import (
	"fmt"
	"io"

	"github.com/alexanderramin/sprintdesk/internal/cli/formatter"
	"github.com/alexanderramin/sprintdesk/internal/intelligence"
	"github.com/alexanderramin/sprintdesk/internal/richtext"
	"github.com/spf13/cobra"
)

func newSuggestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest tags or subtasks for a description read from stdin",
	}

	cmd.AddCommand(
		newSuggestTagsCmd(app),
		newSuggestSubtasksCmd(),
	)

	return cmd
}

func newSuggestTagsCmd(app *App) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Suggest tags from the most frequent nouns",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Suggester == nil {
				return fmt.Errorf("tag suggestions are not available")
			}
			text, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			tags, err := app.Suggester.Suggest(string(text), top)
			if err != nil {
				return fmt.Errorf("suggesting tags: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, formatter.Info("No tag suggestions."))
				return nil
			}
			for _, t := range tags {
				fmt.Fprintln(out, t)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", app.Config.TagTopN, "Number of tags to suggest")
	return cmd
}

func newSuggestSubtasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subtasks",
		Short: "Extract subtasks from the first tasks/subgoals section",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			subs := intelligence.ExtractSubtasks(string(text))
			out := cmd.OutOrStdout()
			if len(subs) == 0 {
				fmt.Fprintln(out, formatter.Info("No subtasks found."))
				return nil
			}
			for _, s := range subs {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Convert structured text from stdin to backend rich text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), richtext.Format(string(text)))
			return nil
		},
	}
}
