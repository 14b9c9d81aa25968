package service

import (
	"crypto/rand"
	"time"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/oklog/ulid/v2"
)

// Session is the state of one authoring session. It is passed to every
// Authoring call; nothing about it is held globally.
type Session struct {
	ID          string
	Credentials backend.Credentials
	Backend     backend.Session

	state       domain.SessionState
	projectID   int64
	projectName string
}

// NewSession starts a session in the NoProject state.
func NewSession() *Session {
	return &Session{
		ID:    ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String(),
		state: domain.StateNoProject,
	}
}

func (s *Session) State() domain.SessionState { return s.state }

// Project returns the active project reference. ok is false in NoProject.
func (s *Session) Project() (id int64, name string, ok bool) {
	if s.state != domain.StateProjectActive {
		return 0, "", false
	}
	return s.projectID, s.projectName, true
}

// Authenticated reports whether Login succeeded for this session.
func (s *Session) Authenticated() bool {
	return s.Backend.Valid()
}

func (s *Session) activate(id int64, name string) {
	s.state = domain.StateProjectActive
	s.projectID = id
	s.projectName = name
}

func (s *Session) reset() {
	s.state = domain.StateNoProject
	s.projectID = 0
	s.projectName = ""
}
