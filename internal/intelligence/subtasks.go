package intelligence

import (
	"regexp"
	"strings"
)

var (
	sectionHeader = regexp.MustCompile(`(?i)\b(sub-?goals?|sub-?tasks?|tasks?)\b`)
	numberedItem  = regexp.MustCompile(`^\d+[.)]\s*(.*)$`)
)

// ExtractSubtasks returns the list items of the first "subgoals/subtasks/tasks"
// section in description. Blank, "#" and ">" lines inside the section are
// skipped; any other non-item line ends it.
func ExtractSubtasks(description string) []string {
	subtasks := []string{}
	inSection := false

	for _, raw := range strings.Split(strings.ReplaceAll(description, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if !inSection {
			if sectionHeader.MatchString(line) {
				inSection = true
			}
			continue
		}

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">") {
			continue
		}
		item, ok := listItem(line)
		if !ok {
			break
		}
		if item != "" {
			subtasks = append(subtasks, item)
		}
	}
	return subtasks
}

// ParseSubtaskLines treats every non-blank line as one subtask, dropping a
// leading bullet or number if present.
func ParseSubtaskLines(text string) []string {
	subtasks := []string{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if item, ok := listItem(line); ok {
			line = item
		}
		if line != "" {
			subtasks = append(subtasks, line)
		}
	}
	return subtasks
}

// listItem returns the trimmed remainder of a bullet or numbered line.
func listItem(line string) (string, bool) {
	for _, bullet := range []string{"-", "*", "•"} {
		if strings.HasPrefix(line, bullet) {
			return strings.TrimSpace(strings.TrimPrefix(line, bullet)), true
		}
	}
	if m := numberedItem.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}
