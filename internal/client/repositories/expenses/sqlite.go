// Package expenses provides the sqlite-backed repository for user expenses.
package expenses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/dbx"
)

// Repository describes expense persistence.
type Repository interface {
	Create(ctx context.Context, e *models.Expense) error
	AttachReceipt(ctx context.Context, id, receiptKey string) error
	GetAll(ctx context.Context) ([]models.Expense, error)
}

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	e.SyncStatus = models.SyncPending
	if e.IncurredAt.IsZero() {
		e.IncurredAt = now
	}

	query := `INSERT INTO expenses (id, description, category, amount, incurred_at, receipt_key, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Description, e.Category, e.Amount, models.FormatTime(e.IncurredAt), e.ReceiptKey,
		models.FormatTime(e.CreatedAt), models.FormatTime(e.UpdatedAt), string(e.SyncStatus))
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// AttachReceipt records the object key of an uploaded receipt and marks the
// row pending so the key reaches the remote store on the next push.
func (r *SQLiteRepository) AttachReceipt(ctx context.Context, id, receiptKey string) error {
	query := `UPDATE expenses SET receipt_key=?, updated_at=?, sync_status=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		receiptKey, models.FormatTime(time.Now().UTC()), string(models.SyncPending), id)
	if err != nil {
		return fmt.Errorf("failed to attach receipt: %w", err)
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

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Expense, error) {
	query := `SELECT id, description, category, amount, incurred_at, receipt_key, created_at, updated_at, sync_status
		FROM expenses ORDER BY incurred_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []models.Expense
	for rows.Next() {
		var e models.Expense
		var incurredAt, createdAt, updatedAt, status string
		if err := rows.Scan(&e.ID, &e.Description, &e.Category, &e.Amount,
			&incurredAt, &e.ReceiptKey, &createdAt, &updatedAt, &status); err != nil {
			return nil, err
		}
		e.IncurredAt = models.ParseTime(incurredAt)
		e.CreatedAt = models.ParseTime(createdAt)
		e.UpdatedAt = models.ParseTime(updatedAt)
		e.SyncStatus = models.SyncStatus(status)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
