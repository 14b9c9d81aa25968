package domain

import (
	"fmt"
	"strings"
)

// Task is a unit of work inside a project. A task with a ParentID is a
// subtask; subtasks never have children of their own.
type Task struct {
	ID          int64
	Title       string
	ProjectID   int64
	ParentID    *int64
	Description string // rich text
	TagIDs      []int64
	UserIDs     []int64
}

// IsRoot reports whether the task is a top-level task.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// IsChildOf reports whether the task is nested directly under parentID.
func (t *Task) IsChildOf(parentID int64) bool {
	return t.ParentID != nil && *t.ParentID == parentID
}

// ValidateTitle rejects empty or whitespace-only titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("task title is required")
	}
	return nil
}

// TaskView is a task with its tag and assignee references resolved to
// display names.
type TaskView struct {
	Task
	TagNames      []string
	AssigneeNames []string
}

// AssigneeLabel joins assignee names, or returns "Unassigned".
func (v TaskView) AssigneeLabel() string {
	if len(v.AssigneeNames) == 0 {
		return "Unassigned"
	}
	return strings.Join(v.AssigneeNames, ", ")
}

// TagLabel joins tag names, or returns "-".
func (v TaskView) TagLabel() string {
	if len(v.TagNames) == 0 {
		return "-"
	}
	return strings.Join(v.TagNames, ", ")
}

// TaskNode is a root task with its direct subtasks.
type TaskNode struct {
	TaskView
	Children []TaskView
}

// BuildTaskTree groups tasks into a two-level tree. Roots keep their input
// order and each root collects the tasks whose parent is that root. Tasks
// whose parent is not among the roots are not rendered.
func BuildTaskTree(tasks []TaskView) []TaskNode {
	var nodes []TaskNode
	for _, t := range tasks {
		if !t.IsRoot() {
			continue
		}
		node := TaskNode{TaskView: t}
		for _, c := range tasks {
			if c.IsChildOf(t.ID) {
				node.Children = append(node.Children, c)
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// UniqueStrings returns vals with blanks and repeats removed, keeping the
// first occurrence of each value.
func UniqueStrings(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// UniqueIDs returns ids with repeats removed, keeping insertion order.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
