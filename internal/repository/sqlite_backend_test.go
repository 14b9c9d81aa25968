package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/db"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBackend(t *testing.T) (*SQLiteBackend, backend.Session) {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	b := NewSQLiteBackend(database)
	ctx := context.Background()
	require.NoError(t, b.SeedAccount(ctx, "pm@example.com", "Project Manager", "secret"))
	require.NoError(t, b.SeedStages(ctx, []string{"R&D", "Client Projects"}))
	require.NoError(t, b.SeedUsers(ctx, []domain.Assignee{
		{DisplayName: "Ana", Login: "ana@example.com"},
		{DisplayName: "Ben", Login: "ben@example.com"},
	}))

	s, err := b.Authenticate(ctx, backend.Credentials{Login: "pm@example.com", Password: "secret"})
	require.NoError(t, err)
	return b, s
}

func TestSQLiteBackend_Authenticate(t *testing.T) {
	b, s := setupBackend(t)
	ctx := context.Background()
	assert.True(t, s.Valid())

	_, err := b.Authenticate(ctx, backend.Credentials{Login: "pm@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, backend.ErrAuthentication)

	_, err = b.Authenticate(ctx, backend.Credentials{Login: "nobody@example.com", Password: "secret"})
	assert.ErrorIs(t, err, backend.ErrAuthentication)

	_, err = b.Authenticate(ctx, backend.Credentials{Login: "pm@example.com"})
	assert.ErrorIs(t, err, backend.ErrAuthentication)
}

func TestSQLiteBackend_DirectoryUsersCannotLogIn(t *testing.T) {
	b, _ := setupBackend(t)
	_, err := b.Authenticate(context.Background(), backend.Credentials{Login: "ana@example.com", Password: "x"})
	assert.ErrorIs(t, err, backend.ErrAuthentication)
}

func TestSQLiteBackend_RequiresSession(t *testing.T) {
	b, _ := setupBackend(t)
	_, err := b.Search(context.Background(), backend.Session{}, backend.KindTag, nil)
	assert.ErrorIs(t, err, backend.ErrAuthentication)
}

func TestSQLiteBackend_CreateAndReadProject(t *testing.T) {
	b, s := setupBackend(t)
	ctx := context.Background()

	stages, err := b.Search(ctx, s, backend.KindProjectStage, backend.Filter{backend.Eq(backend.FieldName, "R&D")})
	require.NoError(t, err)
	require.Len(t, stages, 1)

	id, err := b.Create(ctx, s, backend.KindProject, backend.Values{
		backend.FieldName:               "P",
		backend.FieldProjectActive:      true,
		backend.FieldProjectDescription: "<b>desc</b>",
		backend.FieldProjectStage:       stages[0],
	})
	require.NoError(t, err)

	recs, err := b.Read(ctx, s, backend.KindProject, []int64{id}, []backend.Field{
		backend.FieldName, backend.FieldProjectActive, backend.FieldProjectStage,
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, id, recs[0].ID())
	assert.Equal(t, "P", recs[0].String(backend.FieldName))
	assert.True(t, recs[0].Bool(backend.FieldProjectActive))
	require.NotNil(t, recs[0].Ref(backend.FieldProjectStage))
	assert.Equal(t, "R&D", recs[0].Ref(backend.FieldProjectStage).Name)
}

func TestSQLiteBackend_TaskLinksKeepOrder(t *testing.T) {
	b, s := setupBackend(t)
	ctx := context.Background()

	project, err := b.Create(ctx, s, backend.KindProject, backend.Values{backend.FieldName: "P"})
	require.NoError(t, err)
	tagA, err := b.Create(ctx, s, backend.KindTag, backend.Values{backend.FieldName: "api", backend.FieldTagColor: int64(1)})
	require.NoError(t, err)
	tagB, err := b.Create(ctx, s, backend.KindTag, backend.Values{backend.FieldName: "Backend", backend.FieldTagColor: int64(1)})
	require.NoError(t, err)

	task, err := b.Create(ctx, s, backend.KindTask, backend.Values{
		backend.FieldName:        "T1",
		backend.FieldTaskProject: project,
		backend.FieldTaskTags:    backend.RefSet{tagB, tagA, tagB},
	})
	require.NoError(t, err)

	recs, err := b.Read(ctx, s, backend.KindTask, []int64{task}, []backend.Field{
		backend.FieldTaskTags, backend.FieldTaskUsers, backend.FieldTaskParent,
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []int64{tagB, tagA}, recs[0].IDs(backend.FieldTaskTags))
	assert.Empty(t, recs[0].IDs(backend.FieldTaskUsers))
	assert.Nil(t, recs[0].Ref(backend.FieldTaskParent))

	tagged, err := b.Search(ctx, s, backend.KindTask, backend.Filter{backend.Eq(backend.FieldTaskTags, tagA)})
	require.NoError(t, err)
	assert.Equal(t, []int64{task}, tagged)
}

func TestSQLiteBackend_SearchFilters(t *testing.T) {
	b, s := setupBackend(t)
	ctx := context.Background()

	project, err := b.Create(ctx, s, backend.KindProject, backend.Values{backend.FieldName: "P"})
	require.NoError(t, err)
	root, err := b.Create(ctx, s, backend.KindTask, backend.Values{backend.FieldName: "T1", backend.FieldTaskProject: project})
	require.NoError(t, err)
	child, err := b.Create(ctx, s, backend.KindTask, backend.Values{
		backend.FieldName: "s1", backend.FieldTaskProject: project, backend.FieldTaskParent: root,
	})
	require.NoError(t, err)

	roots, err := b.Search(ctx, s, backend.KindTask, backend.Filter{
		backend.Eq(backend.FieldTaskProject, project),
		backend.Eq(backend.FieldTaskParent, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{root}, roots)

	both, err := b.Search(ctx, s, backend.KindTask, backend.Filter{backend.In(backend.FieldID, []int64{child, root})})
	require.NoError(t, err)
	assert.Equal(t, []int64{root, child}, both)

	none, err := b.Search(ctx, s, backend.KindTask, backend.Filter{backend.In(backend.FieldID, nil)})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = b.Search(ctx, s, backend.KindTask, backend.Filter{backend.Eq("priority", int64(1))})
	assert.ErrorIs(t, err, backend.ErrSchema)
}

func TestSQLiteBackend_ReadFollowsRequestedOrder(t *testing.T) {
	b, s := setupBackend(t)
	ctx := context.Background()

	users, err := b.Search(ctx, s, backend.KindUser, nil)
	require.NoError(t, err)
	require.Len(t, users, 3)

	reversed := []int64{users[2], users[1], users[0], 9999}
	recs, err := b.Read(ctx, s, backend.KindUser, reversed, []backend.Field{backend.FieldName})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Ben", recs[0].String(backend.FieldName))
	assert.Equal(t, "Ana", recs[1].String(backend.FieldName))
}

func TestSQLiteBackend_CreateRejectsBadPayload(t *testing.T) {
	b, s := setupBackend(t)
	ctx := context.Background()

	_, err := b.Create(ctx, s, backend.KindTask, backend.Values{backend.FieldName: 42})
	assert.ErrorIs(t, err, backend.ErrSchema)

	_, err = b.Create(ctx, s, backend.KindTask, backend.Values{backend.FieldName: "orphan", backend.FieldTaskProject: int64(777)})
	var remote *backend.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "ValidationError", remote.Name)
}

func TestSQLiteBackend_UnlinkCascades(t *testing.T) {
	b, s := setupBackend(t)
	ctx := context.Background()

	project, err := b.Create(ctx, s, backend.KindProject, backend.Values{backend.FieldName: "P"})
	require.NoError(t, err)
	root, err := b.Create(ctx, s, backend.KindTask, backend.Values{backend.FieldName: "T1", backend.FieldTaskProject: project})
	require.NoError(t, err)
	_, err = b.Create(ctx, s, backend.KindTask, backend.Values{
		backend.FieldName: "s1", backend.FieldTaskProject: project, backend.FieldTaskParent: root,
	})
	require.NoError(t, err)

	ok, err := b.Unlink(ctx, s, backend.KindTask, []int64{root})
	require.NoError(t, err)
	assert.True(t, ok)

	left, err := b.Search(ctx, s, backend.KindTask, backend.Filter{backend.Eq(backend.FieldTaskProject, project)})
	require.NoError(t, err)
	assert.Empty(t, left, "subtasks go with their parent")

	_, err = b.Create(ctx, s, backend.KindTask, backend.Values{backend.FieldName: "T2", backend.FieldTaskProject: project})
	require.NoError(t, err)
	ok, err = b.Unlink(ctx, s, backend.KindProject, []int64{project})
	require.NoError(t, err)
	assert.True(t, ok)

	left, err = b.Search(ctx, s, backend.KindTask, nil)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSQLiteBackend_UnlinkMissingIsAllOrNothing(t *testing.T) {
	b, s := setupBackend(t)
	ctx := context.Background()

	tag, err := b.Create(ctx, s, backend.KindTag, backend.Values{backend.FieldName: "api"})
	require.NoError(t, err)

	ok, err := b.Unlink(ctx, s, backend.KindTag, []int64{tag, 4242})
	assert.False(t, ok)
	var remote *backend.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "MissingError", remote.Name)

	still, err := b.Search(ctx, s, backend.KindTag, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{tag}, still)
}

func TestSQLiteBackend_SeedAccountUpserts(t *testing.T) {
	b, _ := setupBackend(t)
	ctx := context.Background()

	require.NoError(t, b.SeedAccount(ctx, "pm@example.com", "PM", "rotated"))
	_, err := b.Authenticate(ctx, backend.Credentials{Login: "pm@example.com", Password: "rotated"})
	assert.NoError(t, err)
}
