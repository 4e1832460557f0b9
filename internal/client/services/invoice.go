package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/client/repositories/clients"
	"github.com/mkuznecovs/billfold/internal/client/repositories/invoices"
	"github.com/mkuznecovs/billfold/internal/client/repositories/payments"
	"github.com/mkuznecovs/billfold/internal/logging"
)

// InvoiceService implements the fast invoice creation flow and payment
// recording over the local store.
type InvoiceService struct {
	clients  clients.Repository
	invoices invoices.Repository
	payments payments.Repository
	syncer   Syncer
	log      logging.Logger
}

func NewInvoiceService(c clients.Repository, i invoices.Repository, p payments.Repository, syncer Syncer, log logging.Logger) *InvoiceService {
	return &InvoiceService{clients: c, invoices: i, payments: p, syncer: syncer, log: log}
}

// CreateInvoice resolves the client by name (creating a local-only client
// when absent), derives line totals and the invoice total, and persists
// everything in one transaction. The whole flow runs against the local
// store only, so it succeeds offline; a background sync is requested after
// the write.
func (s *InvoiceService) CreateInvoice(ctx context.Context, clientName, number string, dueDate time.Time, notes string, items []models.LineItem) (*models.Invoice, error) {
	client, err := s.clients.FindOrCreateByName(ctx, clientName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client %q: %w", clientName, err)
	}

	var total float64
	for i := range items {
		items[i].Total = items[i].Quantity * items[i].UnitPrice
		total += items[i].Total
	}

	inv := &models.Invoice{
		ClientID:    client.ID,
		Number:      number,
		Status:      models.InvoiceDraft,
		IssueDate:   time.Now().UTC(),
		DueDate:     dueDate,
		TotalAmount: total,
		Notes:       notes,
	}
	if err := s.invoices.CreateWithItems(ctx, inv, items); err != nil {
		return nil, err
	}

	requestSync(s.log, s.syncer)
	return inv, nil
}

// RecordPayment stores a payment against an invoice and flips the invoice
// to paid once recorded payments cover the total.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID string, amount float64, method string) (*models.Payment, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	p := &models.Payment{InvoiceID: invoiceID, Amount: amount, Method: method}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	paid, err := s.payments.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	var covered float64
	for _, pm := range paid {
		covered += pm.Amount
	}
	if covered >= inv.TotalAmount && inv.Status != models.InvoicePaid {
		if err := s.invoices.SetStatus(ctx, invoiceID, models.InvoicePaid); err != nil {
			return nil, err
		}
	}

	requestSync(s.log, s.syncer)
	return p, nil
}

// MarkSent transitions the invoice to sent.
func (s *InvoiceService) MarkSent(ctx context.Context, invoiceID string) error {
	if err := s.invoices.SetStatus(ctx, invoiceID, models.InvoiceSent); err != nil {
		return err
	}
	requestSync(s.log, s.syncer)
	return nil
}

// List returns all invoices with their line items, newest first.
func (s *InvoiceService) List(ctx context.Context) ([]models.Invoice, error) {
	return s.invoices.ListWithItems(ctx)
}
