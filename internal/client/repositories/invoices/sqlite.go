// Package invoices provides the sqlite-backed repository for invoices and
// their line items.
package invoices

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

const invoiceColumns = `id, COALESCE(client_id, ''), number, status, issue_date, due_date, total_amount, notes, created_at, updated_at, sync_status`

// SQLiteRepository implements Repository over the local store. It holds the
// full *sql.DB because CreateWithItems needs a transaction.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateWithItems(ctx context.Context, inv *models.Invoice, items []models.LineItem) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	inv.SyncStatus = models.SyncPending
	if inv.Status == "" {
		inv.Status = models.InvoiceDraft
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO invoices (id, client_id, number, status, issue_date, due_date, total_amount, notes, created_at, updated_at, sync_status)
			VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query,
			inv.ID, inv.ClientID, inv.Number, string(inv.Status),
			models.FormatTime(inv.IssueDate), models.FormatTime(inv.DueDate),
			inv.TotalAmount, inv.Notes,
			models.FormatTime(inv.CreatedAt), models.FormatTime(inv.UpdatedAt), string(inv.SyncStatus))
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		for i := range items {
			item := &items[i]
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			item.InvoiceID = inv.ID
			item.CreatedAt = now
			item.UpdatedAt = now
			item.SyncStatus = models.SyncPending

			query := `INSERT INTO invoice_line_items (id, invoice_id, description, quantity, unit_price, total, created_at, updated_at, sync_status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
			_, err := tx.ExecContext(ctx, query,
				item.ID, item.InvoiceID, item.Description, item.Quantity, item.UnitPrice, item.Total,
				models.FormatTime(item.CreatedAt), models.FormatTime(item.UpdatedAt), string(item.SyncStatus))
			if err != nil {
				return fmt.Errorf("failed to insert line item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	inv.Items = items
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, inv *models.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	inv.SyncStatus = models.SyncPending

	query := `UPDATE invoices SET client_id=NULLIF(?, ''), number=?, status=?, issue_date=?, due_date=?, total_amount=?, notes=?, updated_at=?, sync_status=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		inv.ClientID, inv.Number, string(inv.Status),
		models.FormatTime(inv.IssueDate), models.FormatTime(inv.DueDate),
		inv.TotalAmount, inv.Notes,
		models.FormatTime(inv.UpdatedAt), string(inv.SyncStatus), inv.ID)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) SetStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	query := `UPDATE invoices SET status=?, updated_at=?, sync_status=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		string(status), models.FormatTime(time.Now().UTC()), string(models.SyncPending), id)
	if err != nil {
		return fmt.Errorf("failed to set invoice status: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id=?`
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	items, err := r.itemsFor(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (r *SQLiteRepository) ListWithItems(ctx context.Context) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select invoices: %w", err)
	}
	defer rows.Close()

	var result []models.Invoice
	for rows.Next() {
		inv, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// attach children per parent
	for i := range result {
		items, err := r.itemsFor(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (r *SQLiteRepository) itemsFor(ctx context.Context, invoiceID string) ([]models.LineItem, error) {
	query := `SELECT id, invoice_id, description, quantity, unit_price, total, created_at, updated_at, sync_status
		FROM invoice_line_items WHERE invoice_id=? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to select line items: %w", err)
	}
	defer rows.Close()

	var result []models.LineItem
	for rows.Next() {
		var item models.LineItem
		var createdAt, updatedAt, status string
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.Total,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row *sql.Row) (*models.Invoice, error) {
	inv, err := scanInvoiceRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return inv, err
}

func scanInvoiceRow(row rowScanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var issueDate, dueDate, createdAt, updatedAt, status, syncStatus string
	err := row.Scan(&inv.ID, &inv.ClientID, &inv.Number, &status,
		&issueDate, &dueDate, &inv.TotalAmount, &inv.Notes,
		&createdAt, &updatedAt, &syncStatus)
	if err != nil {
		return nil, err
	}
	inv.Status = models.InvoiceStatus(status)
	inv.IssueDate = models.ParseTime(issueDate)
	inv.DueDate = models.ParseTime(dueDate)
	inv.CreatedAt = models.ParseTime(createdAt)
	inv.UpdatedAt = models.ParseTime(updatedAt)
	inv.SyncStatus = models.SyncStatus(syncStatus)
	return inv, nil
}

func requireOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrNotFound
	}
	return nil
}
