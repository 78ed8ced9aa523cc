// Package sqlite keeps documents in a single SQLite table with a revision
// column used for compare-and-swap updates.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gamesense/app/internal/repository"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	content    BLOB NOT NULL,
	revision   TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
)`

type sqliteDocumentStore struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and prepares the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// single writer; CAS relies on serialised statements
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// NewSQLiteDocumentStore wraps an opened database as a DocumentStore.
func NewSQLiteDocumentStore(db *sql.DB) repository.DocumentStore {
	return &sqliteDocumentStore{db: db}
}

func (s *sqliteDocumentStore) Get(ctx context.Context, path string) ([]byte, string, error) {
	var content []byte
	var revision string
	err := s.db.QueryRowContext(ctx,
		`SELECT content, revision FROM documents WHERE path = ?`, path,
	).Scan(&content, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", repository.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return content, revision, nil
}

// Put inserts the row for a create and otherwise updates it only while the
// stored revision still equals expectedRevision.
func (s *sqliteDocumentStore) Put(ctx context.Context, path string, content []byte, expectedRevision, message string) (string, error) {
	revision := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var (
		res sql.Result
		err error
	)
	if expectedRevision == "" {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO documents (path, content, revision, message, updated_at)
			 VALUES (?, ?, ?, ?, ?) ON CONFLICT(path) DO NOTHING`,
			path, content, revision, message, now)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE documents SET content = ?, revision = ?, message = ?, updated_at = ?
			 WHERE path = ? AND revision = ?`,
			content, revision, message, now, path, expectedRevision)
	}
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", repository.ErrConflict
	}
	return revision, nil
}
