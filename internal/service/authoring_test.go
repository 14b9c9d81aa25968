package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/alexanderramin/sprintdesk/internal/intelligence"
	"github.com/alexanderramin/sprintdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nounAnalyzer treats every word as a noun and its own lemma.
type nounAnalyzer struct {
	err error
}

func (a nounAnalyzer) Analyze(text string) ([]intelligence.Token, error) {
	if a.err != nil {
		return nil, a.err
	}
	var toks []intelligence.Token
	for _, w := range strings.Fields(text) {
		toks = append(toks, intelligence.Token{Text: w, POS: intelligence.POSNoun, Lemma: w})
	}
	return toks, nil
}

func setupAuthoring(t *testing.T, b backend.Backend) (*Authoring, *Session) {
	t.Helper()
	a := NewAuthoring(NewGateway(b), intelligence.NewTagSuggester(nounAnalyzer{}), testutil.TestCategories())
	sess := NewSession()
	require.NoError(t, a.Login(context.Background(), sess, testutil.TestCredentials()))
	return a, sess
}

func TestAuthoring_EndToEnd(t *testing.T) {
	a, sess := setupAuthoring(t, testutil.NewTestBackend(t))
	ctx := context.Background()

	_, err := a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "R&D", Description: "📋 **USER STORY:** as a user"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateProjectActive, sess.State())

	res, err := a.CreateTask(ctx, sess, TaskDraft{Title: "T1", Subtasks: []string{"s1", "s2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.SubtasksCreated())
	assert.False(t, res.Partial())

	tree, err := a.ListTasks(ctx, sess)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "T1", tree[0].Title)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "s1", tree[0].Children[0].Title)
	assert.Equal(t, "s2", tree[0].Children[1].Title)
	for _, c := range tree[0].Children {
		require.NotNil(t, c.ParentID)
		assert.Equal(t, tree[0].ID, *c.ParentID)
	}
}

func TestAuthoring_StateMachine(t *testing.T) {
	a, sess := setupAuthoring(t, testutil.NewTestBackend(t))
	ctx := context.Background()

	_, err := a.CreateTask(ctx, sess, TaskDraft{Title: "T1"})
	assert.ErrorIs(t, err, ErrNoProject)
	_, err = a.ListTasks(ctx, sess)
	assert.ErrorIs(t, err, ErrNoProject)
	_, err = a.DeleteProject(ctx, sess)
	assert.ErrorIs(t, err, ErrNoProject)

	_, err = a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "R&D"})
	require.NoError(t, err)
	_, err = a.CreateProject(ctx, sess, ProjectDraft{Name: "Q", Category: "R&D"})
	assert.ErrorIs(t, err, ErrProjectActive)

	a.StartNewProject(sess)
	assert.Equal(t, domain.StateNoProject, sess.State())
	_, _, ok := sess.Project()
	assert.False(t, ok)

	_, err = a.CreateProject(ctx, sess, ProjectDraft{Name: "Q", Category: "R&D"})
	assert.NoError(t, err)
}

func TestAuthoring_ValidationBeforeBackend(t *testing.T) {
	b := &testutil.FailingBackend{Backend: testutil.NewTestBackend(t)}
	a, sess := setupAuthoring(t, b)
	ctx := context.Background()

	_, err := a.CreateProject(ctx, sess, ProjectDraft{Name: " ", Category: "R&D"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "Marketing"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, b.Creates())

	_, err = a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "R&D"})
	require.NoError(t, err)
	_, err = a.CreateTask(ctx, sess, TaskDraft{Title: ""})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int32(1), b.Creates())
}

func TestAuthoring_RequiresLogin(t *testing.T) {
	a := NewAuthoring(NewGateway(testutil.NewTestBackend(t)), nil, testutil.TestCategories())
	sess := NewSession()
	ctx := context.Background()

	_, err := a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "R&D"})
	assert.ErrorIs(t, err, backend.ErrAuthentication)

	err = a.Login(ctx, sess, backend.Credentials{Login: testutil.TestLogin, Password: "wrong"})
	assert.ErrorIs(t, err, backend.ErrAuthentication)
	assert.False(t, sess.Authenticated())
}

func TestAuthoring_PartialSubtaskFailure(t *testing.T) {
	cause := errors.New("timeout")
	// creates: 1 project, 2 task, 3 s1, 4 s2, 5 s3
	b := &testutil.FailingBackend{Backend: testutil.NewTestBackend(t), FailCreateOn: []int32{4}, Err: cause}
	a, sess := setupAuthoring(t, b)
	ctx := context.Background()

	_, err := a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "R&D"})
	require.NoError(t, err)

	res, err := a.CreateTask(ctx, sess, TaskDraft{Title: "T1", Subtasks: []string{"s1", "s2", "s3"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.SubtasksCreated())
	assert.True(t, res.Partial())
	require.Len(t, res.Subtasks, 3)
	assert.True(t, res.Subtasks[0].Succeeded())
	assert.ErrorIs(t, res.Subtasks[1].Err, cause)
	assert.True(t, res.Subtasks[2].Succeeded())

	tree, err := a.ListTasks(ctx, sess)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Len(t, tree[0].Children, 2, "parent persists with fewer subtasks")
}

func TestAuthoring_UnknownAssignee(t *testing.T) {
	a, sess := setupAuthoring(t, testutil.NewTestBackend(t))
	ctx := context.Background()

	_, err := a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "R&D"})
	require.NoError(t, err)

	res, err := a.CreateTask(ctx, sess, TaskDraft{Title: "T1", Assignees: []string{"ghost@example.com"}})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)

	tree, err := a.ListTasks(ctx, sess)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Unassigned", tree[0].AssigneeLabel())
}

func TestAuthoring_DeleteProjectFailureKeepsReference(t *testing.T) {
	inner := testutil.NewTestBackend(t)
	b := &testutil.FailingBackend{Backend: inner, Err: errors.New("remote down")}
	a, sess := setupAuthoring(t, b)
	ctx := context.Background()

	id, err := a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "R&D"})
	require.NoError(t, err)

	b.FailUnlink = true
	ok, err := a.DeleteProject(ctx, sess)
	assert.False(t, ok)
	assert.Error(t, err)
	assert.Equal(t, domain.StateProjectActive, sess.State())
	kept, name, _ := sess.Project()
	assert.Equal(t, id, kept)
	assert.Equal(t, "P", name)

	b.FailUnlink = false
	ok, err = a.DeleteProject(ctx, sess)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.StateNoProject, sess.State())
}

func TestAuthoring_DeleteTask(t *testing.T) {
	a, sess := setupAuthoring(t, testutil.NewTestBackend(t))
	ctx := context.Background()

	_, err := a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "R&D"})
	require.NoError(t, err)
	res, err := a.CreateTask(ctx, sess, TaskDraft{Title: "T1", Subtasks: []string{"s1"}})
	require.NoError(t, err)

	ok, err := a.DeleteTask(ctx, sess, res.TaskID)
	require.NoError(t, err)
	assert.True(t, ok)

	tree, err := a.ListTasks(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestAuthoring_OpenProject(t *testing.T) {
	b := testutil.NewTestBackend(t)
	a, sess := setupAuthoring(t, b)
	ctx := context.Background()

	id, err := a.CreateProject(ctx, sess, ProjectDraft{Name: "P", Category: "Client Projects"})
	require.NoError(t, err)

	other := NewSession()
	require.NoError(t, a.Login(ctx, other, testutil.TestCredentials()))
	p, err := a.OpenProject(ctx, other, id)
	require.NoError(t, err)
	assert.Equal(t, "P", p.Name)
	assert.Equal(t, domain.Category("Client Projects"), p.Category)
	assert.Equal(t, domain.StateProjectActive, other.State())
	assert.NotEqual(t, sess.ID, other.ID)

	_, err = a.OpenProject(ctx, loggedInSession(t, a), 9999)
	assert.ErrorIs(t, err, ErrValidation)
}

func loggedInSession(t *testing.T, a *Authoring) *Session {
	t.Helper()
	sess := NewSession()
	require.NoError(t, a.Login(context.Background(), sess, testutil.TestCredentials()))
	return sess
}

func TestAuthoring_Propose(t *testing.T) {
	a, _ := setupAuthoring(t, testutil.NewTestBackend(t))

	p := a.Propose("api api api ui\nTASKS:\n- a\n- b")
	assert.Equal(t, "Api", p.Tags[0])
	assert.Equal(t, []string{"a", "b"}, p.Subtasks)
	assert.Contains(t, p.RichText, "<br>")
	assert.Empty(t, p.Warnings)
}

func TestAuthoring_ProposeSurvivesAnalyzerFailure(t *testing.T) {
	b := testutil.NewTestBackend(t)
	a := NewAuthoring(NewGateway(b), intelligence.NewTagSuggester(nounAnalyzer{err: errors.New("model missing")}), testutil.TestCategories())

	p := a.Propose("Intro\nTASKS:\n- a")
	assert.Empty(t, p.Tags)
	assert.Equal(t, []string{"a"}, p.Subtasks)
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, WarningSuggestion, p.Warnings[0].Kind)
}

func TestAuthoring_ProposeHonoursTagTopN(t *testing.T) {
	a, _ := setupAuthoring(t, testutil.NewTestBackend(t))
	a.WithTagTopN(1)

	p := a.Propose("api api ui db")
	assert.Equal(t, []string{"Api"}, p.Tags)
}
