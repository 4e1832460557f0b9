package expenses

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
CREATE TABLE expenses (
  id TEXT PRIMARY KEY,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  amount REAL NOT NULL DEFAULT 0,
  incurred_at TEXT NOT NULL DEFAULT '',
  receipt_key TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  sync_status TEXT NOT NULL DEFAULT 'pending'
);
`)
	require.NoError(t, err)
	return db
}

func TestCreateAndGetAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	e := &models.Expense{Description: "Train ticket", Category: "travel", Amount: 42.5}
	require.NoError(t, r.Create(ctx, e))
	require.NotEmpty(t, e.ID)
	assert.Equal(t, models.SyncPending, e.SyncStatus)
	assert.False(t, e.IncurredAt.IsZero())

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Train ticket", got[0].Description)
	assert.Equal(t, 42.5, got[0].Amount)
}

func TestAttachReceipt(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	e := &models.Expense{Description: "Lunch", Amount: 12}
	require.NoError(t, r.Create(ctx, e))

	_, err := db.Exec(`UPDATE expenses SET sync_status='synced' WHERE id=?`, e.ID)
	require.NoError(t, err)

	require.NoError(t, r.AttachReceipt(ctx, e.ID, "receipts/abc"))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "receipts/abc", got[0].ReceiptKey)
	assert.Equal(t, models.SyncPending, got[0].SyncStatus)
}

func TestAttachReceipt_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	err := r.AttachReceipt(context.Background(), "missing", "k")
	require.ErrorIs(t, err, common.ErrNotFound)
}
