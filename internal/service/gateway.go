package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/alexanderramin/sprintdesk/internal/richtext"
)

// Gateway exposes the planner's use cases on top of the generic backend
// store. Every method needs an authenticated backend session.
type Gateway struct {
	backend  backend.Backend
	observer UseCaseObserver
}

func NewGateway(b backend.Backend, observers ...UseCaseObserver) *Gateway {
	return &Gateway{backend: b, observer: useCaseObserverOrNoop(observers)}
}

// TaskInput describes a task to create. Description is plain structured
// text; it is converted to rich text before it is stored.
type TaskInput struct {
	ProjectID      int64
	Title          string
	Description    string
	TagNames       []string
	AssigneeLogins []string
	ParentID       *int64
}

func (g *Gateway) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, err error) {
	g.observer.ObserveUseCase(ctx, newUseCaseEvent(name, startedAt, fields, err))
}

// Authenticate opens a backend session for creds.
func (g *Gateway) Authenticate(ctx context.Context, creds backend.Credentials) (s backend.Session, err error) {
	startedAt := time.Now()
	defer func() { g.observe(ctx, "authenticate", startedAt, map[string]any{"login": creds.Login}, err) }()

	if !creds.Complete() {
		return backend.Session{}, fmt.Errorf("%w: login and password are required", backend.ErrAuthentication)
	}
	return g.backend.Authenticate(ctx, creds)
}

// FindUserByLogin returns the id of the user with exactly this login.
// A miss is reported with ok=false, not as an error.
func (g *Gateway) FindUserByLogin(ctx context.Context, s backend.Session, login string) (int64, bool, error) {
	return g.findOne(ctx, s, backend.KindUser, backend.FieldUserLogin, login)
}

// FindStage returns the id of the project stage named name.
func (g *Gateway) FindStage(ctx context.Context, s backend.Session, name string) (int64, bool, error) {
	return g.findOne(ctx, s, backend.KindProjectStage, backend.FieldName, name)
}

func (g *Gateway) findOne(ctx context.Context, s backend.Session, kind backend.Kind, field backend.Field, value string) (int64, bool, error) {
	if value == "" {
		return 0, false, nil
	}
	ids, err := g.backend.Search(ctx, s, kind, backend.Filter{backend.Eq(field, value)})
	if err != nil {
		return 0, false, fmt.Errorf("searching %s by %s: %w", kind, field, err)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// GetOrCreateTag returns the tag named like the cleaned name, creating it
// with color when it does not exist yet. Matching is exact and
// case-sensitive.
func (g *Gateway) GetOrCreateTag(ctx context.Context, s backend.Session, name string, color int) (int64, error) {
	clean := domain.CleanTagName(name)
	if clean == "" {
		return 0, fmt.Errorf("%w: tag name %q is empty after cleaning", ErrValidation, name)
	}
	id, ok, err := g.findOne(ctx, s, backend.KindTag, backend.FieldName, clean)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	id, err = g.backend.Create(ctx, s, backend.KindTag, backend.Values{
		backend.FieldName:     clean,
		backend.FieldTagColor: int64(color),
	})
	if err != nil {
		return 0, fmt.Errorf("creating tag %q: %w", clean, err)
	}
	return id, nil
}

// CreateProject creates an active project. An unresolved category leaves
// the project without a stage.
func (g *Gateway) CreateProject(ctx context.Context, s backend.Session, name string, category domain.Category, descriptionRichText string) (id int64, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": name, "category": string(category)}
	defer func() { g.observe(ctx, "create-project", startedAt, fields, err) }()

	values := backend.Values{
		backend.FieldName:               name,
		backend.FieldProjectActive:      true,
		backend.FieldProjectDescription: descriptionRichText,
	}
	stageID, ok, err := g.FindStage(ctx, s, string(category))
	if err != nil {
		return 0, err
	}
	if ok {
		values[backend.FieldProjectStage] = stageID
	}
	fields["staged"] = ok

	id, err = g.backend.Create(ctx, s, backend.KindProject, values)
	if err != nil {
		return 0, fmt.Errorf("creating project %q: %w", name, err)
	}
	fields["project_id"] = id
	return id, nil
}

// ReadProject loads one project. ok is false when it does not exist.
func (g *Gateway) ReadProject(ctx context.Context, s backend.Session, id int64) (domain.Project, bool, error) {
	recs, err := g.backend.Read(ctx, s, backend.KindProject, []int64{id}, []backend.Field{
		backend.FieldName, backend.FieldProjectDescription, backend.FieldProjectStage,
	})
	if err != nil {
		return domain.Project{}, false, fmt.Errorf("reading project %d: %w", id, err)
	}
	if len(recs) == 0 {
		return domain.Project{}, false, nil
	}
	rec := recs[0]
	p := domain.Project{
		ID:          rec.ID(),
		Name:        rec.String(backend.FieldName),
		Description: rec.String(backend.FieldProjectDescription),
	}
	if stage := rec.Ref(backend.FieldProjectStage); stage != nil {
		p.StageID = &stage.ID
		p.Category = domain.Category(stage.Name)
	}
	return p, true, nil
}

// CreateTask creates one task. Tags are resolved or created by name.
// Assignee logins that do not resolve are dropped with a warning; they
// never block creation.
func (g *Gateway) CreateTask(ctx context.Context, s backend.Session, in TaskInput) (id int64, warnings []Warning, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": in.ProjectID, "title": in.Title}
	defer func() {
		fields["warnings"] = len(warnings)
		g.observe(ctx, "create-task", startedAt, fields, err)
	}()

	if err := domain.ValidateTitle(in.Title); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var tagIDs []int64
	for _, name := range in.TagNames {
		if domain.CleanTagName(name) == "" {
			continue
		}
		tagID, err := g.GetOrCreateTag(ctx, s, name, domain.DefaultTagColor)
		if err != nil {
			return 0, nil, err
		}
		tagIDs = append(tagIDs, tagID)
	}

	var userIDs []int64
	for _, login := range domain.UniqueStrings(in.AssigneeLogins) {
		uid, ok, err := g.FindUserByLogin(ctx, s, login)
		if err != nil {
			return 0, nil, err
		}
		if !ok {
			warnings = append(warnings, Warning{
				Kind:    WarningNotFound,
				Subject: login,
				Message: fmt.Sprintf("assignee %q not found; left out of the assignment", login),
			})
			continue
		}
		userIDs = append(userIDs, uid)
	}

	description := ""
	if in.Description != "" {
		description = richtext.Format(in.Description)
	}
	values := backend.Values{
		backend.FieldName:            in.Title,
		backend.FieldTaskProject:     in.ProjectID,
		backend.FieldTaskDescription: description,
		backend.FieldTaskTags:        backend.RefSet(domain.UniqueIDs(tagIDs)),
	}
	if len(userIDs) > 0 {
		values[backend.FieldTaskUsers] = backend.RefSet(domain.UniqueIDs(userIDs))
	}
	if in.ParentID != nil {
		values[backend.FieldTaskParent] = *in.ParentID
		fields["parent_id"] = *in.ParentID
	}

	id, err = g.backend.Create(ctx, s, backend.KindTask, values)
	if err != nil {
		return 0, warnings, fmt.Errorf("creating task %q: %w", in.Title, err)
	}
	fields["task_id"] = id
	return id, warnings, nil
}

// DeleteTask removes a task and its subtasks. Failure is reported as
// ok=false together with the cause.
func (g *Gateway) DeleteTask(ctx context.Context, s backend.Session, id int64) (bool, error) {
	return g.unlink(ctx, s, "delete-task", backend.KindTask, id)
}

// DeleteProject removes a project and its tasks.
func (g *Gateway) DeleteProject(ctx context.Context, s backend.Session, id int64) (bool, error) {
	return g.unlink(ctx, s, "delete-project", backend.KindProject, id)
}

func (g *Gateway) unlink(ctx context.Context, s backend.Session, useCase string, kind backend.Kind, id int64) (ok bool, err error) {
	startedAt := time.Now()
	defer func() { g.observe(ctx, useCase, startedAt, map[string]any{"id": id}, err) }()

	ok, err = g.backend.Unlink(ctx, s, kind, []int64{id})
	if err != nil {
		return false, fmt.Errorf("deleting %s %d: %w", kind, id, err)
	}
	return ok, nil
}

var taskFields = []backend.Field{
	backend.FieldName,
	backend.FieldTaskProject,
	backend.FieldTaskParent,
	backend.FieldTaskTags,
	backend.FieldTaskUsers,
}

// ListTasks returns every task of the project, roots and subtasks alike.
func (g *Gateway) ListTasks(ctx context.Context, s backend.Session, projectID int64) ([]domain.Task, error) {
	ids, err := g.backend.Search(ctx, s, backend.KindTask, backend.Filter{backend.Eq(backend.FieldTaskProject, projectID)})
	if err != nil {
		return nil, fmt.Errorf("searching tasks of project %d: %w", projectID, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	recs, err := g.backend.Read(ctx, s, backend.KindTask, ids, taskFields)
	if err != nil {
		return nil, fmt.Errorf("reading tasks of project %d: %w", projectID, err)
	}

	tasks := make([]domain.Task, 0, len(recs))
	for _, rec := range recs {
		t := domain.Task{
			ID:        rec.ID(),
			Title:     rec.String(backend.FieldName),
			ProjectID: projectID,
			TagIDs:    rec.IDs(backend.FieldTaskTags),
			UserIDs:   rec.IDs(backend.FieldTaskUsers),
		}
		if parent := rec.Ref(backend.FieldTaskParent); parent != nil {
			parentID := parent.ID
			t.ParentID = &parentID
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// ReadTags resolves tag ids in one batch read.
func (g *Gateway) ReadTags(ctx context.Context, s backend.Session, ids []int64) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	recs, err := g.backend.Read(ctx, s, backend.KindTag, ids, []backend.Field{backend.FieldName, backend.FieldTagColor})
	if err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}
	tags := make([]domain.Tag, 0, len(recs))
	for _, rec := range recs {
		tags = append(tags, domain.Tag{
			ID:    rec.ID(),
			Name:  rec.String(backend.FieldName),
			Color: int(rec.Int(backend.FieldTagColor)),
		})
	}
	return tags, nil
}

// ReadUsers resolves user ids in one batch read.
func (g *Gateway) ReadUsers(ctx context.Context, s backend.Session, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	recs, err := g.backend.Read(ctx, s, backend.KindUser, ids, []backend.Field{backend.FieldName, backend.FieldUserLogin})
	if err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}
	users := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, domain.User{
			ID:    rec.ID(),
			Login: rec.String(backend.FieldUserLogin),
			Name:  rec.String(backend.FieldName),
		})
	}
	return users, nil
}

// ListTaskViews lists the project's tasks with tag and assignee names
// resolved through one batch read each.
func (g *Gateway) ListTaskViews(ctx context.Context, s backend.Session, projectID int64) (views []domain.TaskView, err error) {
	startedAt := time.Now()
	defer func() {
		g.observe(ctx, "list-tasks", startedAt, map[string]any{"project_id": projectID, "count": len(views)}, err)
	}()

	tasks, err := g.ListTasks(ctx, s, projectID)
	if err != nil {
		return nil, err
	}

	var tagIDs, userIDs []int64
	for _, t := range tasks {
		tagIDs = append(tagIDs, t.TagIDs...)
		userIDs = append(userIDs, t.UserIDs...)
	}
	tags, err := g.ReadTags(ctx, s, domain.UniqueIDs(tagIDs))
	if err != nil {
		return nil, err
	}
	users, err := g.ReadUsers(ctx, s, domain.UniqueIDs(userIDs))
	if err != nil {
		return nil, err
	}

	tagNames := make(map[int64]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}
	userNames := make(map[int64]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}

	views = make([]domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := domain.TaskView{Task: t}
		for _, id := range t.TagIDs {
			if name, ok := tagNames[id]; ok {
				v.TagNames = append(v.TagNames, name)
			}
		}
		for _, id := range t.UserIDs {
			if name, ok := userNames[id]; ok {
				v.AssigneeNames = append(v.AssigneeNames, name)
			}
		}
		views = append(views, v)
	}
	return views, nil
}
