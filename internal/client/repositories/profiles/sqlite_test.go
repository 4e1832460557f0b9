package profiles

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
CREATE TABLE profiles (
  id TEXT PRIMARY KEY,
  business_name TEXT NOT NULL,
  owner_email TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  currency TEXT NOT NULL DEFAULT 'USD',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  sync_status TEXT NOT NULL DEFAULT 'pending'
);
`)
	require.NoError(t, err)
	return db
}

func TestGet_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.Get(context.Background())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSave_InsertThenUpdate(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	p := &models.Profile{BusinessName: "Billfold Studio"}
	require.NoError(t, r.Save(ctx, p))
	require.NotEmpty(t, p.ID)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, models.SyncPending, p.SyncStatus)

	p.Address = "12 Main St"
	require.NoError(t, r.Save(ctx, p))

	got, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "12 Main St", got.Address)
	assert.Equal(t, models.SyncPending, got.SyncStatus)
}
