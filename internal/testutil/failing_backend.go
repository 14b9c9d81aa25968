package testutil

import (
	"context"
	"sync/atomic"

	"github.com/alexanderramin/sprintdesk/internal/backend"
)

// FailingBackend wraps a backend and injects errors at precise points.
// Create calls are counted starting at 1; FailCreateOn names the calls that
// fail with Err. FailUnlink makes every Unlink fail with Err.
type FailingBackend struct {
	backend.Backend
	FailCreateOn []int32
	FailUnlink   bool
	Err          error

	creates atomic.Int32
}

func (f *FailingBackend) Create(ctx context.Context, s backend.Session, kind backend.Kind, values backend.Values) (int64, error) {
	n := f.creates.Add(1)
	for _, fail := range f.FailCreateOn {
		if n == fail {
			return 0, f.Err
		}
	}
	return f.Backend.Create(ctx, s, kind, values)
}

func (f *FailingBackend) Unlink(ctx context.Context, s backend.Session, kind backend.Kind, ids []int64) (bool, error) {
	if f.FailUnlink {
		return false, f.Err
	}
	return f.Backend.Unlink(ctx, s, kind, ids)
}

// Creates returns how many Create calls were made.
func (f *FailingBackend) Creates() int32 {
	return f.creates.Load()
}
