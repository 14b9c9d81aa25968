package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/alexanderramin/sprintdesk/internal/intelligence"
	"github.com/alexanderramin/sprintdesk/internal/richtext"
)

// ProjectDraft is the project form. Description is plain structured text.
type ProjectDraft struct {
	Name        string
	Category    domain.Category
	Description string
}

// TaskDraft is the task form. Assignees are backend logins.
type TaskDraft struct {
	Title       string
	Description string
	Tags        []string
	Assignees   []string
	Subtasks    []string
}

// Proposal holds advisory output for a description. Suggestions may be
// edited or discarded before a task is created.
type Proposal struct {
	RichText string
	Tags     []string
	Subtasks []string
	Warnings []Warning
}

// TaskResult reports a created task and the outcome of each subtask.
type TaskResult struct {
	TaskID   int64
	Title    string
	Subtasks []domain.SubtaskOutcome
	Warnings []Warning
}

// SubtasksCreated counts the subtasks that were persisted.
func (r *TaskResult) SubtasksCreated() int {
	n := 0
	for _, o := range r.Subtasks {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Partial reports whether some requested subtasks failed.
func (r *TaskResult) Partial() bool {
	return r.SubtasksCreated() < len(r.Subtasks)
}

// Authoring drives one authoring session: a project is created, tasks and
// subtasks are added to it, and it is either deleted or abandoned.
type Authoring struct {
	gateway    *Gateway
	suggester  *intelligence.TagSuggester
	categories []domain.Category
	tagTopN    int
	observer   UseCaseObserver
}

// NewAuthoring wires the orchestrator. suggester may be nil, in which case
// proposals carry no tag suggestions.
func NewAuthoring(gateway *Gateway, suggester *intelligence.TagSuggester, categories []domain.Category, observers ...UseCaseObserver) *Authoring {
	return &Authoring{
		gateway:    gateway,
		suggester:  suggester,
		categories: categories,
		tagTopN:    intelligence.DefaultTopN,
		observer:   useCaseObserverOrNoop(observers),
	}
}

// WithTagTopN sets how many tags Propose suggests.
func (a *Authoring) WithTagTopN(n int) *Authoring {
	if n > 0 {
		a.tagTopN = n
	}
	return a
}

// Categories returns the configured project categories.
func (a *Authoring) Categories() []domain.Category {
	return slices.Clone(a.categories)
}

// Login authenticates the session's credentials.
func (a *Authoring) Login(ctx context.Context, sess *Session, creds backend.Credentials) error {
	if !creds.Complete() {
		return fmt.Errorf("%w: login and password are required", backend.ErrAuthentication)
	}
	bs, err := a.gateway.Authenticate(ctx, creds)
	if err != nil {
		return err
	}
	sess.Credentials = creds
	sess.Backend = bs
	return nil
}

// CreateProject creates the session's project and makes it active.
func (a *Authoring) CreateProject(ctx context.Context, sess *Session, draft ProjectDraft) (id int64, err error) {
	startedAt := time.Now()
	defer func() {
		a.observe(ctx, sess, "authoring-create-project", startedAt, map[string]any{"project": draft.Name}, err)
	}()

	if sess.State() != domain.StateNoProject {
		return 0, ErrProjectActive
	}
	p := domain.Project{Name: strings.TrimSpace(draft.Name), Category: draft.Category}
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !slices.Contains(a.categories, draft.Category) {
		return 0, fmt.Errorf("%w: unknown category %q", ErrValidation, draft.Category)
	}
	if err := requireLogin(sess); err != nil {
		return 0, err
	}

	id, err = a.gateway.CreateProject(ctx, sess.Backend, p.Name, p.Category, richtext.Format(draft.Description))
	if err != nil {
		return 0, err
	}
	sess.activate(id, p.Name)
	return id, nil
}

// OpenProject makes an existing project the session's active project.
func (a *Authoring) OpenProject(ctx context.Context, sess *Session, id int64) (domain.Project, error) {
	if sess.State() != domain.StateNoProject {
		return domain.Project{}, ErrProjectActive
	}
	if id <= 0 {
		return domain.Project{}, fmt.Errorf("%w: project id must be positive", ErrValidation)
	}
	if err := requireLogin(sess); err != nil {
		return domain.Project{}, err
	}
	p, ok, err := a.gateway.ReadProject(ctx, sess.Backend, id)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, fmt.Errorf("%w: project %d does not exist", ErrValidation, id)
	}
	sess.activate(p.ID, p.Name)
	return p, nil
}

// Propose formats a description and suggests tags and subtasks for it.
// A failing tag suggester yields a warning and no tags.
func (a *Authoring) Propose(description string) Proposal {
	p := Proposal{
		RichText: richtext.Format(description),
		Tags:     []string{},
		Subtasks: intelligence.ExtractSubtasks(description),
	}
	if a.suggester == nil {
		return p
	}
	tags, err := a.suggester.Suggest(description, a.tagTopN)
	if err != nil {
		p.Warnings = append(p.Warnings, Warning{
			Kind:    WarningSuggestion,
			Subject: "tags",
			Message: fmt.Sprintf("tag suggestions unavailable: %v", err),
		})
		return p
	}
	p.Tags = tags
	return p
}

// CreateTask creates a task in the active project, then each subtask
// under it. Subtask failures do not undo the parent; each is reported in
// the result.
func (a *Authoring) CreateTask(ctx context.Context, sess *Session, draft TaskDraft) (res *TaskResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"title": draft.Title}
	defer func() {
		if res != nil {
			fields["subtasks_created"] = res.SubtasksCreated()
			fields["subtasks_requested"] = len(res.Subtasks)
		}
		a.observe(ctx, sess, "authoring-create-task", startedAt, fields, err)
	}()

	projectID, _, ok := sess.Project()
	if !ok {
		return nil, ErrNoProject
	}
	title := strings.TrimSpace(draft.Title)
	if err := domain.ValidateTitle(title); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := requireLogin(sess); err != nil {
		return nil, err
	}

	taskID, warnings, err := a.gateway.CreateTask(ctx, sess.Backend, TaskInput{
		ProjectID:      projectID,
		Title:          title,
		Description:    draft.Description,
		TagNames:       draft.Tags,
		AssigneeLogins: draft.Assignees,
	})
	if err != nil {
		return nil, err
	}

	res = &TaskResult{TaskID: taskID, Title: title, Warnings: warnings}
	for _, sub := range draft.Subtasks {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		parentID := taskID
		subID, subWarnings, subErr := a.gateway.CreateTask(ctx, sess.Backend, TaskInput{
			ProjectID: projectID,
			Title:     sub,
			ParentID:  &parentID,
		})
		res.Warnings = append(res.Warnings, subWarnings...)
		res.Subtasks = append(res.Subtasks, domain.SubtaskOutcome{Title: sub, ID: subID, Err: subErr})
	}
	return res, nil
}

// ListTasks returns the active project's tasks as a two-level tree.
func (a *Authoring) ListTasks(ctx context.Context, sess *Session) ([]domain.TaskNode, error) {
	projectID, _, ok := sess.Project()
	if !ok {
		return nil, ErrNoProject
	}
	if err := requireLogin(sess); err != nil {
		return nil, err
	}
	views, err := a.gateway.ListTaskViews(ctx, sess.Backend, projectID)
	if err != nil {
		return nil, err
	}
	return domain.BuildTaskTree(views), nil
}

// DeleteTask deletes a task of the active project.
func (a *Authoring) DeleteTask(ctx context.Context, sess *Session, taskID int64) (bool, error) {
	if _, _, ok := sess.Project(); !ok {
		return false, ErrNoProject
	}
	if err := requireLogin(sess); err != nil {
		return false, err
	}
	return a.gateway.DeleteTask(ctx, sess.Backend, taskID)
}

// DeleteProject deletes the active project. The session returns to
// NoProject only when the delete succeeded.
func (a *Authoring) DeleteProject(ctx context.Context, sess *Session) (bool, error) {
	projectID, _, ok := sess.Project()
	if !ok {
		return false, ErrNoProject
	}
	if err := requireLogin(sess); err != nil {
		return false, err
	}
	deleted, err := a.gateway.DeleteProject(ctx, sess.Backend, projectID)
	if err != nil || !deleted {
		return false, err
	}
	sess.reset()
	return true, nil
}

// StartNewProject drops the local project reference. The remote project
// is left as it is.
func (a *Authoring) StartNewProject(sess *Session) {
	sess.reset()
}

func (a *Authoring) observe(ctx context.Context, sess *Session, name string, startedAt time.Time, fields map[string]any, err error) {
	fields["session_id"] = sess.ID
	a.observer.ObserveUseCase(ctx, newUseCaseEvent(name, startedAt, fields, err))
}

func requireLogin(sess *Session) error {
	if !sess.Authenticated() {
		return fmt.Errorf("%w: not logged in", backend.ErrAuthentication)
	}
	return nil
}
