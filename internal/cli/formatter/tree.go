package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title  string
	ID     int64 // backend id; 0 means don't display
	Level  int
	IsLast bool
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				prefix += treePipe
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		if item.Level == 0 {
			title = Bold(title)
		}
		if item.ID > 0 {
			title = StyleDim.Render(fmt.Sprintf("#%d ", item.ID)) + title
		}

		content := prefix + title
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(item.Detail)
		}
		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}

// TaskTreeItems flattens a task tree into tree items. Root tasks carry
// their tags and assignees as the detail badge; subtasks are nested once.
func TaskTreeItems(nodes []domain.TaskNode) []TreeItem {
	var items []TreeItem
	for _, n := range nodes {
		items = append(items, TreeItem{
			Title:  n.Title,
			ID:     n.ID,
			Detail: fmt.Sprintf("tags: %s · assignee: %s", n.TagLabel(), n.AssigneeLabel()),
		})
		for i, c := range n.Children {
			items = append(items, TreeItem{
				Title:  "Subtask: " + c.Title,
				ID:     c.ID,
				Level:  1,
				IsLast: i == len(n.Children)-1,
			})
		}
	}
	return items
}

// RenderTaskTree renders the task tree of a project, or a note when the
// project has no tasks.
func RenderTaskTree(projectName string, nodes []domain.TaskNode) string {
	var b strings.Builder
	b.WriteString(Header("Tasks · "+projectName) + "\n")
	if len(nodes) == 0 {
		b.WriteString(Info("No tasks yet.") + "\n")
		return b.String()
	}
	b.WriteString(RenderTree(TaskTreeItems(nodes)))
	return b.String()
}
