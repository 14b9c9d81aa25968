// Package backend defines the boundary to the remote project-management
// backend: entity kinds, a typed field schema, search filters and the
// Backend interface implemented by the JSON-RPC client and the SQLite sandbox.
package backend

import "context"

// Kind is an entity kind stored by the backend.
type Kind string

const (
	KindProject      Kind = "project.project"
	KindProjectStage Kind = "project.project.stage"
	KindTag          Kind = "project.tags"
	KindTask         Kind = "project.task"
	KindUser         Kind = "res.users"
)

// Model returns the remote model name of the kind.
func (k Kind) Model() string { return string(k) }

// Credentials identify the user against the backend.
type Credentials struct {
	Login    string
	Password string
}

// Complete reports whether both login and password are set.
func (c Credentials) Complete() bool {
	return c.Login != "" && c.Password != ""
}

// Session is an authenticated backend context.
type Session struct {
	UID      int64
	Login    string
	Password string
}

// Valid reports whether the session came from a successful Authenticate.
func (s Session) Valid() bool {
	return s.UID > 0
}

// Backend is the generic object store used by the gateway. All calls are
// synchronous; transport failures surface as ErrUnavailable and credential
// problems as ErrAuthentication.
type Backend interface {
	Authenticate(ctx context.Context, creds Credentials) (Session, error)
	Search(ctx context.Context, s Session, kind Kind, filter Filter) ([]int64, error)
	Read(ctx context.Context, s Session, kind Kind, ids []int64, fields []Field) ([]Record, error)
	Create(ctx context.Context, s Session, kind Kind, values Values) (int64, error)
	Unlink(ctx context.Context, s Session, kind Kind, ids []int64) (bool, error)
}
