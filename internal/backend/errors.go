package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication indicates missing or rejected credentials.
	ErrAuthentication = errors.New("backend authentication failed")

	// ErrUnavailable indicates a transport or remote failure.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrSchema indicates a field or value that does not fit the entity schema.
	ErrSchema = errors.New("field does not match schema")
)

// RemoteError is a fault reported by the backend itself.
type RemoteError struct {
	Name    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("remote error: %s", e.Message)
	}
	return fmt.Sprintf("remote error %s: %s", e.Name, e.Message)
}

func (e *RemoteError) Unwrap() error { return ErrUnavailable }
