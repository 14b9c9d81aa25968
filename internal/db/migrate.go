package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the sandbox schema. Statements are idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS project_stages (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		active      INTEGER NOT NULL DEFAULT 1,
		description TEXT NOT NULL DEFAULT '',
		stage_id    INTEGER REFERENCES project_stages(id) ON DELETE SET NULL
	)`,

	// Tag names are not unique: concurrent sessions may race a lookup-then-create.
	`CREATE TABLE IF NOT EXISTS tags (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		name  TEXT NOT NULL,
		color INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tags_name ON tags(name)`,

	`CREATE TABLE IF NOT EXISTS users (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		login    TEXT NOT NULL UNIQUE,
		name     TEXT NOT NULL,
		password TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		project_id  INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		parent_id   INTEGER REFERENCES tasks(id) ON DELETE CASCADE,
		description TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,

	`CREATE TABLE IF NOT EXISTS task_tags (
		task_id  INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		tag_id   INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		PRIMARY KEY (task_id, tag_id)
	)`,

	`CREATE TABLE IF NOT EXISTS task_users (
		task_id  INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id  INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		PRIMARY KEY (task_id, user_id)
	)`,
}
