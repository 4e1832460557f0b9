package clients

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE clients (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  sync_status TEXT NOT NULL DEFAULT 'pending'
);
`)
	require.NoError(t, err)
	return db
}

func TestCreate_AssignsIDAndPending(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	c := &models.Client{Name: "Acme", Email: "billing@acme.test"}
	require.NoError(t, r.Create(ctx, c))

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, models.SyncPending, c.SyncStatus)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := r.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, models.SyncPending, got.SyncStatus)
}

func TestUpdate_ForcesPending(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	c := &models.Client{Name: "Acme"}
	require.NoError(t, r.Create(ctx, c))

	// simulate a completed sync
	_, err := db.Exec(`UPDATE clients SET sync_status='synced' WHERE id=?`, c.ID)
	require.NoError(t, err)

	c.Phone = "555-0100"
	require.NoError(t, r.Update(ctx, c))

	got, err := r.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Equal(t, models.SyncPending, got.SyncStatus, "any local edit resets the row to pending")
}

func TestUpdate_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	err := r.Update(context.Background(), &models.Client{ID: "missing", Name: "x"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestFindOrCreateByName(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	// absent -> created locally
	c1, err := r.FindOrCreateByName(ctx, "Acme")
	require.NoError(t, err)
	require.NotEmpty(t, c1.ID)
	assert.Equal(t, models.SyncPending, c1.SyncStatus)

	// exact match -> same row back, no duplicate
	c2, err := r.FindOrCreateByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM clients`).Scan(&n))
	assert.Equal(t, 1, n)

	// different name -> new row
	c3, err := r.FindOrCreateByName(ctx, "Globex")
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c3.ID)
}

func TestGetAll_OrderedByName(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Globex", "Acme", "Initech"} {
		require.NoError(t, r.Create(ctx, &models.Client{Name: name}))
	}

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Acme", got[0].Name)
	assert.Equal(t, "Globex", got[1].Name)
	assert.Equal(t, "Initech", got[2].Name)
}
