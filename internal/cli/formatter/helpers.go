package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// Pluralize returns "1 subtask" or "3 subtasks".
func Pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// TagChips renders tag names as bracketed chips, or a dim dash.
func TagChips(tags []string) string {
	if len(tags) == 0 {
		return Dim("-")
	}
	chips := make([]string, len(tags))
	for i, t := range tags {
		chips[i] = StylePurple.Render("[" + t + "]")
	}
	return strings.Join(chips, " ")
}

// BulletList renders one "• item" line per entry.
func BulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(StyleDim.Render("• ") + it + "\n")
	}
	return b.String()
}
