package services

import (
	"context"
	"fmt"

	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/client/repositories/expenses"
	"github.com/mkuznecovs/billfold/internal/logging"
	"github.com/mkuznecovs/billfold/internal/netx"
)

// ReceiptStore issues presigned URLs for receipt blobs. Receipts bypass the
// row sync entirely: the blob goes straight to object storage and only its
// key travels with the expense row.
type ReceiptStore interface {
	PresignReceiptPut(ctx context.Context) (url, key string, err error)
	PresignReceiptGet(ctx context.Context, key string) (string, error)
}

// ExpenseService manages expenses and their receipt attachments.
type ExpenseService struct {
	expenses expenses.Repository
	receipts ReceiptStore
	syncer   Syncer
	log      logging.Logger
}

func NewExpenseService(e expenses.Repository, receipts ReceiptStore, syncer Syncer, log logging.Logger) *ExpenseService {
	return &ExpenseService{expenses: e, receipts: receipts, syncer: syncer, log: log}
}

// Add stores a new expense locally and requests a background sync.
func (s *ExpenseService) Add(ctx context.Context, e *models.Expense) error {
	if err := s.expenses.Create(ctx, e); err != nil {
		return err
	}
	requestSync(s.log, s.syncer)
	return nil
}

// AttachReceipt uploads the receipt blob to object storage through a
// presigned URL and records the resulting key on the expense. Unlike row
// edits this needs connectivity; offline callers get an error and can retry
// later.
func (s *ExpenseService) AttachReceipt(ctx context.Context, expenseID string, data []byte) (string, error) {
	url, key, err := s.receipts.PresignReceiptPut(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to presign receipt upload: %w", err)
	}
	if err := netx.UploadToPresignedURL(ctx, url, data); err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}
	if err := s.expenses.AttachReceipt(ctx, expenseID, key); err != nil {
		return "", err
	}
	requestSync(s.log, s.syncer)
	return key, nil
}

// DownloadReceipt fetches the receipt blob for an expense.
func (s *ExpenseService) DownloadReceipt(ctx context.Context, receiptKey string) ([]byte, error) {
	url, err := s.receipts.PresignReceiptGet(ctx, receiptKey)
	if err != nil {
		return nil, fmt.Errorf("failed to presign receipt download: %w", err)
	}
	return netx.DownloadFromPresignedURL(ctx, url)
}

// List returns all expenses, newest first.
func (s *ExpenseService) List(ctx context.Context) ([]models.Expense, error) {
	return s.expenses.GetAll(ctx)
}
