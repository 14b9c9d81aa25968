// Package repository implements backend.Backend on SQLite. It serves as the
// offline sandbox backend and as the store behind service tests.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/db"
)

// SQLiteBackend implements backend.Backend using a SQLite database.
type SQLiteBackend struct {
	db  *sql.DB
	uow db.UnitOfWork
}

var _ backend.Backend = (*SQLiteBackend)(nil)

// NewSQLiteBackend creates a SQLiteBackend on an opened, migrated database.
func NewSQLiteBackend(database *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: database, uow: db.NewSQLiteUnitOfWork(database)}
}

func (b *SQLiteBackend) Authenticate(ctx context.Context, creds backend.Credentials) (backend.Session, error) {
	if !creds.Complete() {
		return backend.Session{}, fmt.Errorf("%w: login and password are required", backend.ErrAuthentication)
	}
	var (
		uid      int64
		password string
	)
	err := b.db.QueryRowContext(ctx, `SELECT id, password FROM users WHERE login = ?`, creds.Login).Scan(&uid, &password)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && (password == "" || password != creds.Password)) {
		return backend.Session{}, fmt.Errorf("%w: credentials rejected for %q", backend.ErrAuthentication, creds.Login)
	}
	if err != nil {
		return backend.Session{}, storeErr("authenticating", err)
	}
	return backend.Session{UID: uid, Login: creds.Login, Password: creds.Password}, nil
}

func (b *SQLiteBackend) Search(ctx context.Context, s backend.Session, kind backend.Kind, filter backend.Filter) ([]int64, error) {
	spec, err := b.prepare(s, kind)
	if err != nil {
		return nil, err
	}
	if err := filter.Validate(kind); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	for _, c := range filter {
		if l, ok := spec.links[c.Field]; ok {
			where = append(where, fmt.Sprintf("id IN (SELECT %s FROM %s WHERE %s = ?)", l.owner, l.table, l.target))
			args = append(args, c.Value)
			continue
		}
		col := spec.columns[c.Field].name
		switch c.Op {
		case backend.OpEq:
			if c.Value == nil {
				where = append(where, col+" IS NULL")
				continue
			}
			where = append(where, col+" = ?")
			args = append(args, sqlValue(c.Value))
		case backend.OpIn:
			ids := c.Value.([]int64)
			if len(ids) == 0 {
				where = append(where, "0 = 1")
				continue
			}
			where = append(where, fmt.Sprintf("%s IN (%s)", col, placeholders(len(ids))))
			for _, id := range ids {
				args = append(args, id)
			}
		}
	}

	query := "SELECT id FROM " + spec.table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("searching "+spec.table, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scanning id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating ids", err)
	}
	return ids, nil
}

// Read returns records in the order of ids. Unknown ids are skipped.
func (b *SQLiteBackend) Read(ctx context.Context, s backend.Session, kind backend.Kind, ids []int64, fields []backend.Field) ([]backend.Record, error) {
	spec, err := b.prepare(s, kind)
	if err != nil {
		return nil, err
	}
	if err := backend.ValidateFields(kind, fields); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	scalar := []backend.Field{backend.FieldID}
	var linked []backend.Field
	for _, f := range fields {
		if f == backend.FieldID {
			continue
		}
		if _, ok := spec.links[f]; ok {
			linked = append(linked, f)
			continue
		}
		scalar = append(scalar, f)
	}

	cols := make([]string, len(scalar))
	for i, f := range scalar {
		cols[i] = spec.columns[f].name
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id IN (%s)", strings.Join(cols, ", "), spec.table, placeholders(len(ids)))

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("reading "+spec.table, err)
	}
	byID := make(map[int64]backend.Record, len(ids))
	for rows.Next() {
		raw := make([]any, len(scalar))
		ptrs := make([]any, len(scalar))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			rows.Close()
			return nil, storeErr("scanning "+spec.table, err)
		}
		rec := make(backend.Record, len(fields)+1)
		for i, f := range scalar {
			ft, _ := backend.FieldTypeOf(kind, f)
			rec[f] = fromSQL(ft, raw[i])
		}
		byID[rec.ID()] = rec
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storeErr("iterating "+spec.table, err)
	}
	rows.Close()

	for _, f := range scalar {
		col := spec.columns[f]
		if col.ref == "" {
			continue
		}
		if err := b.resolveRefNames(ctx, col.ref, f, byID); err != nil {
			return nil, err
		}
	}
	for _, f := range linked {
		if err := b.readLinks(ctx, spec.links[f], f, ids, byID); err != nil {
			return nil, err
		}
	}

	records := make([]backend.Record, 0, len(byID))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (b *SQLiteBackend) Create(ctx context.Context, s backend.Session, kind backend.Kind, values backend.Values) (int64, error) {
	spec, err := b.prepare(s, kind)
	if err != nil {
		return 0, err
	}
	if err := values.Validate(kind); err != nil {
		return 0, err
	}

	var (
		cols []string
		args []any
	)
	for _, f := range values.Fields() {
		if _, ok := spec.links[f]; ok {
			continue
		}
		cols = append(cols, spec.columns[f].name)
		args = append(args, sqlValue(values[f]))
	}

	var id int64
	err = b.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		query := fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", spec.table)
		if len(cols) > 0 {
			query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", spec.table, strings.Join(cols, ", "), placeholders(len(cols)))
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return storeErr("inserting into "+spec.table, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return storeErr("reading inserted id", err)
		}

		for f, l := range spec.links {
			set, ok := values[f].(backend.RefSet)
			if !ok {
				continue
			}
			insert := fmt.Sprintf("INSERT INTO %s (%s, %s, position) VALUES (?, ?, ?)", l.table, l.owner, l.target)
			for pos, target := range uniqueIDs(set) {
				if _, err := tx.ExecContext(ctx, insert, id, target, pos); err != nil {
					return storeErr("linking "+l.table, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Unlink deletes all ids or none; a missing id is reported as a remote
// MissingError. Tasks cascade to their subtasks, projects to their tasks.
func (b *SQLiteBackend) Unlink(ctx context.Context, s backend.Session, kind backend.Kind, ids []int64) (bool, error) {
	spec, err := b.prepare(s, kind)
	if err != nil {
		return false, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return true, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	err = b.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var n int
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id IN (%s)", spec.table, placeholders(len(ids)))
		if err := tx.QueryRowContext(ctx, countQuery, args...).Scan(&n); err != nil {
			return storeErr("counting "+spec.table, err)
		}
		if n != len(ids) {
			return &backend.RemoteError{Name: "MissingError", Message: fmt.Sprintf("%s: %d of %d records do not exist", kind, len(ids)-n, len(ids))}
		}
		deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", spec.table, placeholders(len(ids)))
		if _, err := tx.ExecContext(ctx, deleteQuery, args...); err != nil {
			return storeErr("deleting from "+spec.table, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *SQLiteBackend) prepare(s backend.Session, kind backend.Kind) (tableSpec, error) {
	if !s.Valid() {
		return tableSpec{}, fmt.Errorf("%w: no authenticated session", backend.ErrAuthentication)
	}
	spec, ok := tables[kind]
	if !ok {
		return tableSpec{}, fmt.Errorf("%w: unknown kind %q", backend.ErrSchema, kind)
	}
	return spec, nil
}

func (b *SQLiteBackend) resolveRefNames(ctx context.Context, table string, f backend.Field, byID map[int64]backend.Record) error {
	for _, rec := range byID {
		ref := rec.Ref(f)
		if ref == nil {
			continue
		}
		err := b.db.QueryRowContext(ctx, fmt.Sprintf("SELECT name FROM %s WHERE id = ?", table), ref.ID).Scan(&ref.Name)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return storeErr("resolving "+table+" name", err)
		}
	}
	return nil
}

func (b *SQLiteBackend) readLinks(ctx context.Context, l link, f backend.Field, ids []int64, byID map[int64]backend.Record) error {
	for _, rec := range byID {
		rec[f] = []int64{}
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s IN (%s) ORDER BY %s, position",
		l.owner, l.target, l.table, l.owner, placeholders(len(ids)), l.owner)
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return storeErr("reading "+l.table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var owner, target int64
		if err := rows.Scan(&owner, &target); err != nil {
			return storeErr("scanning "+l.table, err)
		}
		if rec, ok := byID[owner]; ok {
			rec[f] = append(rec.IDs(f), target)
		}
	}
	if err := rows.Err(); err != nil {
		return storeErr("iterating "+l.table, err)
	}
	return nil
}
