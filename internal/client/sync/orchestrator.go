// Package sync implements the bidirectional synchronization engine: a push
// phase sending locally pending rows to the remote store, followed by a pull
// phase applying remote changes since the last watermark. A pass is
// single-flight; concurrent triggers collapse into one.
package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/logging"
	"github.com/mkuznecovs/billfold/internal/schema"
)

// LocalStore is the slice of the local store the engine needs.
type LocalStore interface {
	SelectPending(ctx context.Context, table schema.Table) ([]schema.Row, error)
	UpsertRemoteRow(ctx context.Context, table schema.Table, row schema.Row) error
	UpdateStatus(ctx context.Context, table schema.Table, ids []string, status models.SyncStatus) error
}

// RemoteStore is the slice of the remote store the engine needs.
type RemoteStore interface {
	HasActiveSession() bool
	Upsert(ctx context.Context, table string, rows []schema.Row) error
	SelectUpdatedSince(ctx context.Context, table string, since *time.Time) ([]schema.Row, error)
}

// WatermarkStore persists the global pull watermark.
type WatermarkStore interface {
	Get(ctx context.Context) (*time.Time, error)
	Set(ctx context.Context, t time.Time) error
}

// Engine runs sync passes over the table registry in dependency order.
type Engine struct {
	local     LocalStore
	remote    RemoteStore
	watermark WatermarkStore
	log       logging.Logger

	tableTimeout time.Duration
	retryBase    time.Duration
	maxRetries   uint64
	now          func() time.Time

	inFlight atomic.Bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithTableTimeout bounds the remote call budget for one table's push batch.
func WithTableTimeout(d time.Duration) Option {
	return func(e *Engine) { e.tableTimeout = d }
}

// WithRetry sets the exponential backoff base and attempt cap for push
// batches that fail with a transient error.
func WithRetry(base time.Duration, maxRetries uint64) Option {
	return func(e *Engine) { e.retryBase = base; e.maxRetries = maxRetries }
}

// WithClock overrides the wall clock used to stamp the pull watermark.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(local LocalStore, remote RemoteStore, watermark WatermarkStore, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		local:        local,
		remote:       remote,
		watermark:    watermark,
		log:          log,
		tableTimeout: 30 * time.Second,
		retryBase:    500 * time.Millisecond,
		maxRetries:   2,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync runs one full push-then-pull pass.
//
// Returns common.ErrSyncInProgress when another pass is already running.
// Without an active session the pass is a silent no-op: the watermark and
// all sync_status values are left untouched. A remote failure on one table
// never aborts the pass; local store failures do, since continuing on a
// broken database would corrupt bookkeeping.
func (e *Engine) Sync(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return common.ErrSyncInProgress
	}
	defer e.inFlight.Store(false)

	if !e.remote.HasActiveSession() {
		e.log.Debug(ctx, "sync skipped: no active session")
		return nil
	}

	if err := e.push(ctx); err != nil {
		return err
	}
	return e.pull(ctx)
}

// push sends pending rows table by table, parents first. A batch is
// accepted or rejected as a whole: on success every sent row becomes
// 'synced', on rejection every sent row becomes 'error' and the pass moves
// on to the next table.
func (e *Engine) push(ctx context.Context) error {
	for _, tbl := range schema.Ordered() {
		rows, err := e.local.SelectPending(ctx, tbl)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}

		ids := make([]string, 0, len(rows))
		batch := make([]schema.Row, 0, len(rows))
		for _, row := range rows {
			if id, ok := row["id"].(string); ok {
				ids = append(ids, id)
			}
			batch = append(batch, schema.StripLocal(row))
		}

		if err := e.pushBatch(ctx, tbl.Name, batch); err != nil {
			e.log.Error(ctx, "push rejected", "table", tbl.Name, "rows", len(batch), "error", err)
			if serr := e.local.UpdateStatus(ctx, tbl, ids, models.SyncError); serr != nil {
				return serr
			}
			continue
		}

		if err := e.local.UpdateStatus(ctx, tbl, ids, models.SyncSynced); err != nil {
			return err
		}
		e.log.Info(ctx, "pushed", "table", tbl.Name, "rows", len(batch))
	}
	return nil
}

// pushBatch sends one table's batch, retrying with exponential backoff while
// the failure is transient (server unreachable).
func (e *Engine) pushBatch(ctx context.Context, table string, rows []schema.Row) error {
	ctx, cancel := context.WithTimeout(ctx, e.tableTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(e.maxRetries, retry.NewExponential(e.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := e.remote.Upsert(ctx, table, rows)
		if errors.Is(err, common.ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// pull fetches remote changes since the stored watermark and applies them
// locally with remote-wins semantics. The new watermark is captured before
// the first fetch and persisted only after every table has been attempted,
// and never moves backwards.
func (e *Engine) pull(ctx context.Context) error {
	since, err := e.watermark.Get(ctx)
	if err != nil {
		return err
	}
	pullStart := e.now().UTC()

	for _, tbl := range schema.Ordered() {
		rows, err := e.remote.SelectUpdatedSince(ctx, tbl.Name, since)
		if err != nil {
			e.log.Error(ctx, "pull failed", "table", tbl.Name, "error", err)
			continue
		}
		for _, row := range rows {
			if err := e.local.UpsertRemoteRow(ctx, tbl, row); err != nil {
				return err
			}
		}
		if len(rows) > 0 {
			e.log.Info(ctx, "pulled", "table", tbl.Name, "rows", len(rows))
		}
	}

	if since == nil || pullStart.After(*since) {
		if err := e.watermark.Set(ctx, pullStart); err != nil {
			return err
		}
	}
	return nil
}
