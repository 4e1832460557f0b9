// Package models defines client-side data models persisted in the local
// store and synced with the backend.
package models

import "time"

// SyncStatus is the per-row bookkeeping state tracked locally.
//
// Transitions during a sync pass are monotonic: pending → synced on remote
// accept, pending → error on remote reject. Any local edit resets the row
// to pending regardless of its prior state.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// InvoiceStatus is the business state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// Profile is the business identity of the local user. One row per tenant.
type Profile struct {
	ID           string
	BusinessName string
	OwnerEmail   string
	Address      string
	Currency     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	SyncStatus   SyncStatus
}

// Client is a billable contact.
type Client struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Address    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncStatus SyncStatus
}

// Invoice is the header record. ClientID may be empty for a local-only
// invoice created before its client is resolved.
type Invoice struct {
	ID          string
	ClientID    string
	Number      string
	Status      InvoiceStatus
	IssueDate   time.Time
	DueDate     time.Time
	TotalAmount float64
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SyncStatus  SyncStatus

	// Items is populated by list-with-children reads; it is not stored on
	// the invoices table itself.
	Items []LineItem
}

// LineItem belongs to exactly one invoice and is cascade-deleted with it.
type LineItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SyncStatus  SyncStatus
}

// Payment records money received against an invoice.
type Payment struct {
	ID         string
	InvoiceID  string
	Amount     float64
	Method     string
	PaidAt     time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncStatus SyncStatus
}

// Expense is a cost incurred by the user, independent of any invoice.
// ReceiptKey references an uploaded receipt object, if any.
type Expense struct {
	ID          string
	Description string
	Category    string
	Amount      float64
	IncurredAt  time.Time
	ReceiptKey  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SyncStatus  SyncStatus
}
