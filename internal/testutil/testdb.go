package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/db"
	"github.com/alexanderramin/sprintdesk/internal/repository"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestBackend returns a sandbox backend seeded with the test account,
// the test categories as stages and the test directory as users.
func NewTestBackend(t *testing.T) *repository.SQLiteBackend {
	t.Helper()
	b := repository.NewSQLiteBackend(NewTestDB(t))
	ctx := context.Background()
	if err := b.SeedAccount(ctx, TestLogin, "Test Manager", TestPassword); err != nil {
		t.Fatalf("seeding account: %v", err)
	}
	if err := b.SeedStages(ctx, TestCategoryNames()); err != nil {
		t.Fatalf("seeding stages: %v", err)
	}
	if err := b.SeedUsers(ctx, TestDirectory()); err != nil {
		t.Fatalf("seeding users: %v", err)
	}
	return b
}

// NewTestSession authenticates the test account against b.
func NewTestSession(t *testing.T, b backend.Backend) backend.Session {
	t.Helper()
	s, err := b.Authenticate(context.Background(), TestCredentials())
	if err != nil {
		t.Fatalf("authenticating test account: %v", err)
	}
	return s
}
