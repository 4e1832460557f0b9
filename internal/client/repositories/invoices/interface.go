package invoices

import (
	"context"

	"github.com/mkuznecovs/billfold/internal/client/models"
)

// Repository describes operations for invoices and their line items. Line
// items always travel with their invoice: a create is all-or-nothing, and
// list reads attach children to each parent.
type Repository interface {
	// CreateWithItems inserts the invoice and all its line items in one
	// transaction. If any child insert fails the whole create fails and
	// nothing is left behind.
	CreateWithItems(ctx context.Context, inv *models.Invoice, items []models.LineItem) error

	// Update rewrites the invoice header, bumps updated_at and forces the
	// row back to pending.
	Update(ctx context.Context, inv *models.Invoice) error

	// SetStatus transitions the invoice's business status (draft/sent/paid/
	// overdue), marking the row pending.
	SetStatus(ctx context.Context, id string, status models.InvoiceStatus) error

	// GetByID returns an invoice with its line items attached.
	GetByID(ctx context.Context, id string) (*models.Invoice, error)

	// ListWithItems returns all invoices, newest first, each with its line
	// items attached. Correctness over performance: the local store is
	// small and local.
	ListWithItems(ctx context.Context) ([]models.Invoice, error)
}
