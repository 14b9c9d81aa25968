package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/sprintdesk/internal/domain"
)

// SeedAccount creates or updates the sandbox login account.
func (b *SQLiteBackend) SeedAccount(ctx context.Context, login, name, password string) error {
	_, err := b.db.ExecContext(ctx, `INSERT INTO users (login, name, password) VALUES (?, ?, ?)
		ON CONFLICT(login) DO UPDATE SET name = excluded.name, password = excluded.password`,
		login, name, password)
	if err != nil {
		return fmt.Errorf("seeding account %q: %w", login, err)
	}
	return nil
}

// SeedUsers adds directory entries as users that cannot log in. Existing
// logins are left untouched.
func (b *SQLiteBackend) SeedUsers(ctx context.Context, users []domain.Assignee) error {
	for _, u := range users {
		_, err := b.db.ExecContext(ctx, `INSERT INTO users (login, name) VALUES (?, ?)
			ON CONFLICT(login) DO NOTHING`, u.Login, u.DisplayName)
		if err != nil {
			return fmt.Errorf("seeding user %q: %w", u.Login, err)
		}
	}
	return nil
}

// SeedStages adds one project stage per category name.
func (b *SQLiteBackend) SeedStages(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := b.db.ExecContext(ctx, `INSERT OR IGNORE INTO project_stages (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("seeding stage %q: %w", name, err)
		}
	}
	return nil
}
