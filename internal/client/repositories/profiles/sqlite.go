// Package profiles provides the sqlite-backed repository for the business
// profile. The local store holds at most one profile row.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/dbx"
)

// Repository describes profile persistence.
type Repository interface {
	Get(ctx context.Context) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
}

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.Profile, error) {
	query := `SELECT id, business_name, owner_email, address, currency, created_at, updated_at, sync_status
		FROM profiles LIMIT 1`
	p := &models.Profile{}
	var createdAt, updatedAt, status string
	err := r.db.QueryRowContext(ctx, query).Scan(
		&p.ID, &p.BusinessName, &p.OwnerEmail, &p.Address, &p.Currency,
		&createdAt, &updatedAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	p.CreatedAt = models.ParseTime(createdAt)
	p.UpdatedAt = models.ParseTime(updatedAt)
	p.SyncStatus = models.SyncStatus(status)
	return p, nil
}

// Save upserts the profile by id, forcing the row back to pending.
func (r *SQLiteRepository) Save(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.SyncStatus = models.SyncPending
	if p.Currency == "" {
		p.Currency = "USD"
	}

	query := `INSERT INTO profiles (id, business_name, owner_email, address, currency, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			business_name = excluded.business_name,
			owner_email = excluded.owner_email,
			address = excluded.address,
			currency = excluded.currency,
			updated_at = excluded.updated_at,
			sync_status = excluded.sync_status`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.BusinessName, p.OwnerEmail, p.Address, p.Currency,
		models.FormatTime(p.CreatedAt), models.FormatTime(p.UpdatedAt), string(p.SyncStatus))
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
