// Package remote implements the client side of the backend "rows" API: a
// generic, table-addressed batch upsert / incremental select interface plus
// session management. The engine is agnostic to the transport as long as
// this interface is satisfied.
package remote

import (
	"context"
	"time"

	"github.com/mkuznecovs/billfold/internal/schema"
)

// Store is the remote store collaborator consumed by the sync engine and
// the client services.
type Store interface {
	// Register creates an account on the backend.
	Register(ctx context.Context, username, password string) error

	// Login opens a session; the access token is held in memory.
	Login(ctx context.Context, username, password string) error

	// Logout drops the in-memory session.
	Logout()

	// HasActiveSession reports whether a login has succeeded. Without a
	// session a sync pass silently no-ops.
	HasActiveSession() bool

	// Ping probes backend reachability.
	Ping(ctx context.Context) error

	// Upsert sends a batch of rows for one table, keyed by id with
	// insert-or-replace semantics. The batch is accepted or rejected as a
	// whole.
	Upsert(ctx context.Context, table string, rows []schema.Row) error

	// SelectUpdatedSince returns all of the caller's rows in table with
	// updated_at strictly greater than since, or all rows when since is nil.
	SelectUpdatedSince(ctx context.Context, table string, since *time.Time) ([]schema.Row, error)

	// PresignReceiptPut returns a presigned upload URL and the object key
	// it will create.
	PresignReceiptPut(ctx context.Context) (url, key string, err error)

	// PresignReceiptGet returns a presigned download URL for key.
	PresignReceiptGet(ctx context.Context, key string) (string, error)
}
