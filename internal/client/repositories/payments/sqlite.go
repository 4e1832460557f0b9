// Package payments provides the sqlite-backed repository for payments
// recorded against invoices.
package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/dbx"
)

// Repository describes payment persistence.
type Repository interface {
	Create(ctx context.Context, p *models.Payment) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]models.Payment, error)
}

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.SyncStatus = models.SyncPending
	if p.PaidAt.IsZero() {
		p.PaidAt = now
	}

	query := `INSERT INTO payments (id, invoice_id, amount, method, paid_at, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.InvoiceID, p.Amount, p.Method, models.FormatTime(p.PaidAt),
		models.FormatTime(p.CreatedAt), models.FormatTime(p.UpdatedAt), string(p.SyncStatus))
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]models.Payment, error) {
	query := `SELECT id, invoice_id, amount, method, paid_at, created_at, updated_at, sync_status
		FROM payments WHERE invoice_id=? ORDER BY paid_at`
	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to select payments: %w", err)
	}
	defer rows.Close()

	var result []models.Payment
	for rows.Next() {
		var p models.Payment
		var paidAt, createdAt, updatedAt, status string
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method,
			&paidAt, &createdAt, &updatedAt, &status); err != nil {
			return nil, err
		}
		p.PaidAt = models.ParseTime(paidAt)
		p.CreatedAt = models.ParseTime(createdAt)
		p.UpdatedAt = models.ParseTime(updatedAt)
		p.SyncStatus = models.SyncStatus(status)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
