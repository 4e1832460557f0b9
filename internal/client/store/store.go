// Package store implements the local embedded store adapter: it owns the
// sqlite database handle, schema creation, and the registry-driven generic
// row operations used by the sync engine.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/mkuznecovs/billfold/internal/client/migrations"
	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/schema"
)

// Store wraps the local sqlite database. It is safe for concurrent use;
// the pool is limited to a single connection so PRAGMAs apply everywhere
// and writers never contend on file locks.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the local database at dsn, enables foreign-key
// enforcement and applies pending migrations. Opening is idempotent and is
// performed on every app start. A failure here is unrecoverable for the
// caller: without the local store nothing else can run.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// DB exposes the underlying handle for typed repositories.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SelectPending returns all rows of table whose sync_status is 'pending',
// as flat records including the status column.
func (s *Store) SelectPending(ctx context.Context, table schema.Table) ([]schema.Row, error) {
	cols := append(append([]string{}, table.Columns...), schema.StatusColumn)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		strings.Join(cols, ", "), table.Name, schema.StatusColumn)

	rows, err := s.db.QueryContext(ctx, query, string(models.SyncPending))
	if err != nil {
		return nil, fmt.Errorf("failed to select pending rows from %s: %w", table.Name, err)
	}
	defer rows.Close()

	var result []schema.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(schema.Row, len(cols))
		for i, c := range cols {
			row[c] = normalize(vals[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertRemoteRow writes a row received from the remote store, overwriting
// all shared columns on conflict and forcing sync_status to 'synced'. The
// remote version always wins during pull, even over a local pending edit.
func (s *Store) UpsertRemoteRow(ctx context.Context, table schema.Table, row schema.Row) error {
	cols := table.Columns
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)

	for i, c := range cols {
		placeholders[i] = "?"
		args = append(args, row[c])
		if c != "id" {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	updates = append(updates, fmt.Sprintf("%s = excluded.%s", schema.StatusColumn, schema.StatusColumn))
	args = append(args, string(models.SyncSynced))

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (%s, ?)
		ON CONFLICT(id) DO UPDATE SET %s`,
		table.Name, strings.Join(cols, ", "), schema.StatusColumn,
		strings.Join(placeholders, ", "), strings.Join(updates, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert remote row into %s: %w", table.Name, err)
	}
	return nil
}

// UpdateStatus sets sync_status for the given ids in one statement.
func (s *Store) UpdateStatus(ctx context.Context, table schema.Table, ids []string, status models.SyncStatus) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(status))
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE id IN (%s)`,
		table.Name, schema.StatusColumn, placeholders)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s status in %s: %w", schema.StatusColumn, table.Name, err)
	}
	return nil
}

// normalize converts driver values to JSON-compatible scalars.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
