package intelligence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSubtasks_BlankLineDoesNotEndSection(t *testing.T) {
	got := ExtractSubtasks("Intro\nTASKS:\n- a\n- b\n\nOutro")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestExtractSubtasks_NoHeader(t *testing.T) {
	got := ExtractSubtasks("Intro\n- a\n- b")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractSubtasks_HeaderVariants(t *testing.T) {
	for _, header := range []string{"Subgoals:", "sub-tasks", "SUBTASK", "Task list", "🎯 **SUBGOALS / TASKS:**"} {
		got := ExtractSubtasks(header + "\n- one")
		assert.Equal(t, []string{"one"}, got, "header %q", header)
	}
}

func TestExtractSubtasks_HeaderIsWholeWord(t *testing.T) {
	assert.Empty(t, ExtractSubtasks("Multitasking notes\n- a"))
}

func TestExtractSubtasks_BulletStyles(t *testing.T) {
	got := ExtractSubtasks("Subtasks\n- dash\n* star\n• dot\n1. first\n2) second")
	assert.Equal(t, []string{"dash", "star", "dot", "first", "second"}, got)
}

func TestExtractSubtasks_SkipsCommentAndQuoteLines(t *testing.T) {
	got := ExtractSubtasks("Tasks:\n# phase one\n- a\n> note\n- b")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestExtractSubtasks_StopsAtFirstPlainLine(t *testing.T) {
	got := ExtractSubtasks("Tasks:\n- a\nDone here\n- b\nSubtasks:\n- c")
	assert.Equal(t, []string{"a"}, got)
}

func TestExtractSubtasks_OnlyFirstSection(t *testing.T) {
	got := ExtractSubtasks("Tasks:\n- a\n\nSubgoals:\n- b")
	assert.Equal(t, []string{"a"}, got)
}

func TestParseSubtaskLines(t *testing.T) {
	got := ParseSubtaskLines("write schema\n\n- add index\n  3. backfill  \n")
	assert.Equal(t, []string{"write schema", "add index", "backfill"}, got)
}
