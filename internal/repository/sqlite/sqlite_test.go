package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"gamesense/app/internal/repository"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) repository.DocumentStore {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteDocumentStore(db)
}

func TestSQLiteDocumentStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, _, err := store.Get(ctx, "data/storage.json")
	require.ErrorIs(t, err, repository.ErrNotFound)

	rev1, err := store.Put(ctx, "data/storage.json", []byte(`{"users":{}}`), "", "init")
	require.NoError(t, err)

	content, rev, err := store.Get(ctx, "data/storage.json")
	require.NoError(t, err)
	require.Equal(t, `{"users":{}}`, string(content))
	require.Equal(t, rev1, rev)

	rev2, err := store.Put(ctx, "data/storage.json", []byte(`{"users":{"a":{}}}`), rev1, "update")
	require.NoError(t, err)
	require.NotEqual(t, rev1, rev2)
}

func TestSQLiteDocumentStore_StaleRevision(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	rev1, err := store.Put(ctx, "doc", []byte("1"), "", "init")
	require.NoError(t, err)
	_, err = store.Put(ctx, "doc", []byte("2"), rev1, "update")
	require.NoError(t, err)

	_, err = store.Put(ctx, "doc", []byte("3"), rev1, "stale")
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = store.Put(ctx, "doc", []byte("3"), "", "create twice")
	require.ErrorIs(t, err, repository.ErrConflict)

	content, _, err := store.Get(ctx, "doc")
	require.NoError(t, err)
	require.Equal(t, "2", string(content))
}
