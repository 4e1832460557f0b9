// Package clients provides the sqlite-backed repository for billable clients.
package clients

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

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, c *models.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.SyncStatus = models.SyncPending

	query := `INSERT INTO clients (id, name, email, phone, address, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Address,
		models.FormatTime(c.CreatedAt), models.FormatTime(c.UpdatedAt), string(c.SyncStatus))
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Client) error {
	c.UpdatedAt = time.Now().UTC()
	c.SyncStatus = models.SyncPending

	query := `UPDATE clients SET name=?, email=?, phone=?, address=?, updated_at=?, sync_status=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Address,
		models.FormatTime(c.UpdatedAt), string(c.SyncStatus), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT id, name, email, phone, address, created_at, updated_at, sync_status FROM clients WHERE id=?`
	return scanClient(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Client, error) {
	query := `SELECT id, name, email, phone, address, created_at, updated_at, sync_status FROM clients ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select clients: %w", err)
	}
	defer rows.Close()

	var result []models.Client
	for rows.Next() {
		var item models.Client
		var createdAt, updatedAt, status string
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.Phone, &item.Address,
			&createdAt, &updatedAt, &status); err != nil {
			return nil, err
		}
		item.CreatedAt = models.ParseTime(createdAt)
		item.UpdatedAt = models.ParseTime(updatedAt)
		item.SyncStatus = models.SyncStatus(status)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindOrCreateByName looks the client up by exact natural-key match within
// the local store only; a missing client is created locally so fast invoice
// creation succeeds offline.
func (r *SQLiteRepository) FindOrCreateByName(ctx context.Context, name string) (*models.Client, error) {
	query := `SELECT id, name, email, phone, address, created_at, updated_at, sync_status FROM clients WHERE name=? LIMIT 1`
	c, err := scanClient(r.db.QueryRowContext(ctx, query, name))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	c = &models.Client{Name: name}
	if err := r.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func scanClient(row *sql.Row) (*models.Client, error) {
	c := &models.Client{}
	var createdAt, updatedAt, status string
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &createdAt, &updatedAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	c.CreatedAt = models.ParseTime(createdAt)
	c.UpdatedAt = models.ParseTime(updatedAt)
	c.SyncStatus = models.SyncStatus(status)
	return c, nil
}
