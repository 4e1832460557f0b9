package sync

import (
	"context"
	"database/sql"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecovs/billfold/internal/client/models"
	"github.com/mkuznecovs/billfold/internal/client/repositories/metadata"
	"github.com/mkuznecovs/billfold/internal/client/store"
	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/logging"
	"github.com/mkuznecovs/billfold/internal/schema"

	_ "modernc.org/sqlite"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// fakeRemote records pushes and serves canned pull results.
type fakeRemote struct {
	mu stdsync.Mutex

	active     bool
	pushed     map[string][]schema.Row
	pushOrder  []string
	pushErrs   map[string][]error
	pullRows   map[string][]schema.Row
	pullErrs   map[string]error
	pullSince  map[string][]*time.Time
	upsertGate chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		active:    true,
		pushed:    map[string][]schema.Row{},
		pushErrs:  map[string][]error{},
		pullRows:  map[string][]schema.Row{},
		pullErrs:  map[string]error{},
		pullSince: map[string][]*time.Time{},
	}
}

func (f *fakeRemote) HasActiveSession() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeRemote) Upsert(ctx context.Context, table string, rows []schema.Row) error {
	if f.upsertGate != nil {
		<-f.upsertGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if errs := f.pushErrs[table]; len(errs) > 0 {
		err := errs[0]
		f.pushErrs[table] = errs[1:]
		return err
	}
	f.pushOrder = append(f.pushOrder, table)
	f.pushed[table] = append(f.pushed[table], rows...)
	return nil
}

func (f *fakeRemote) SelectUpdatedSince(ctx context.Context, table string, since *time.Time) ([]schema.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pullSince[table] = append(f.pullSince[table], since)
	if err := f.pullErrs[table]; err != nil {
		return nil, err
	}
	return f.pullRows[table], nil
}

func setupEngine(t *testing.T, remote *fakeRemote, opts ...Option) (*Engine, *store.Store, *metadata.Watermark) {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	wm := metadata.NewWatermark(metadata.NewSQLiteRepository(st.DB()))
	return NewEngine(st, remote, wm, nopLogger{}, opts...), st, wm
}

func seedRow(t *testing.T, db *sql.DB, table string, cols map[string]any) {
	t.Helper()
	now := models.FormatTime(time.Now().UTC())
	base := map[string]any{"created_at": now, "updated_at": now, "sync_status": "pending"}
	for k, v := range cols {
		base[k] = v
	}
	names, marks, args := "", "", []any{}
	for k, v := range base {
		if names != "" {
			names += ", "
			marks += ", "
		}
		names += k
		marks += "?"
		args = append(args, v)
	}
	_, err := db.Exec("INSERT INTO "+table+" ("+names+") VALUES ("+marks+")", args...)
	require.NoError(t, err)
}

func rowStatus(t *testing.T, db *sql.DB, table, id string) string {
	t.Helper()
	var status string
	require.NoError(t, db.QueryRow(
		"SELECT sync_status FROM "+table+" WHERE id = ?", id).Scan(&status))
	return status
}

func TestSync_NoSession_NoOp(t *testing.T) {
	remote := newFakeRemote()
	remote.active = false
	eng, st, wm := setupEngine(t, remote)

	seedRow(t, st.DB(), "clients", map[string]any{"id": "c1", "name": "Acme"})

	require.NoError(t, eng.Sync(context.Background()))

	assert.Empty(t, remote.pushed)
	assert.Equal(t, "pending", rowStatus(t, st.DB(), "clients", "c1"))
	got, err := wm.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSync_SingleFlight(t *testing.T) {
	remote := newFakeRemote()
	remote.upsertGate = make(chan struct{})
	eng, st, _ := setupEngine(t, remote)

	seedRow(t, st.DB(), "clients", map[string]any{"id": "c1", "name": "Acme"})

	done := make(chan error, 1)
	go func() { done <- eng.Sync(context.Background()) }()

	// wait until the first pass is blocked inside the remote call
	require.Eventually(t, func() bool {
		return eng.inFlight.Load()
	}, time.Second, time.Millisecond)

	require.ErrorIs(t, eng.Sync(context.Background()), common.ErrSyncInProgress)

	close(remote.upsertGate)
	require.NoError(t, <-done)
}

func TestSync_PushMarksSyncedAndIsIdempotent(t *testing.T) {
	remote := newFakeRemote()
	eng, st, _ := setupEngine(t, remote)

	seedRow(t, st.DB(), "clients", map[string]any{"id": "c1", "name": "Acme", "email": "acme@x.io"})

	require.NoError(t, eng.Sync(context.Background()))

	require.Len(t, remote.pushed["clients"], 1)
	pushed := remote.pushed["clients"][0]
	assert.Equal(t, "Acme", pushed["name"])
	assert.NotContains(t, pushed, schema.StatusColumn)
	assert.Equal(t, "synced", rowStatus(t, st.DB(), "clients", "c1"))

	// nothing pending anymore: a second pass pushes nothing
	require.NoError(t, eng.Sync(context.Background()))
	require.Len(t, remote.pushed["clients"], 1)
}

func TestSync_PushesParentsBeforeChildren(t *testing.T) {
	remote := newFakeRemote()
	eng, st, _ := setupEngine(t, remote)

	seedRow(t, st.DB(), "clients", map[string]any{"id": "c1", "name": "Acme"})
	seedRow(t, st.DB(), "invoices", map[string]any{"id": "i1", "client_id": "c1", "number": "INV-1"})
	seedRow(t, st.DB(), "invoice_line_items", map[string]any{"id": "li1", "invoice_id": "i1", "description": "work"})

	require.NoError(t, eng.Sync(context.Background()))

	require.Equal(t, []string{"clients", "invoices", "invoice_line_items"}, remote.pushOrder)
}

func TestSync_TableRejectionIsIsolated(t *testing.T) {
	remote := newFakeRemote()
	remote.pushErrs["invoices"] = []error{common.ErrBatchRejected}
	eng, st, wm := setupEngine(t, remote)

	seedRow(t, st.DB(), "clients", map[string]any{"id": "c1", "name": "Acme"})
	seedRow(t, st.DB(), "invoices", map[string]any{"id": "i1", "client_id": "c1", "number": "INV-1"})
	seedRow(t, st.DB(), "expenses", map[string]any{"id": "e1", "description": "fuel"})

	require.NoError(t, eng.Sync(context.Background()))

	assert.Equal(t, "synced", rowStatus(t, st.DB(), "clients", "c1"))
	assert.Equal(t, "error", rowStatus(t, st.DB(), "invoices", "i1"))
	assert.Equal(t, "synced", rowStatus(t, st.DB(), "expenses", "e1"))

	// the pass still completed its pull, so the watermark advanced
	got, err := wm.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestSync_PushRetriesTransientFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.pushErrs["clients"] = []error{common.ErrUnavailable, common.ErrUnavailable}
	eng, st, _ := setupEngine(t, remote, WithRetry(time.Millisecond, 3))

	seedRow(t, st.DB(), "clients", map[string]any{"id": "c1", "name": "Acme"})

	require.NoError(t, eng.Sync(context.Background()))
	assert.Equal(t, "synced", rowStatus(t, st.DB(), "clients", "c1"))
}

func TestSync_PullRemoteWinsOverPendingEdit(t *testing.T) {
	remote := newFakeRemote()
	// push is rejected, so the local edit stays unflushed when pull runs
	remote.pushErrs["clients"] = []error{common.ErrBatchRejected}
	eng, st, _ := setupEngine(t, remote)

	seedRow(t, st.DB(), "clients", map[string]any{"id": "c1", "name": "Acme (local edit)"})
	now := models.FormatTime(time.Now().UTC())
	remote.pullRows["clients"] = []schema.Row{{
		"id": "c1", "name": "Acme Corp", "email": "hello@acme.io", "phone": "", "address": "",
		"created_at": now, "updated_at": now,
	}}

	require.NoError(t, eng.Sync(context.Background()))

	var name string
	require.NoError(t, st.DB().QueryRow(`SELECT name FROM clients WHERE id = 'c1'`).Scan(&name))
	assert.Equal(t, "Acme Corp", name)
	assert.Equal(t, "synced", rowStatus(t, st.DB(), "clients", "c1"))
}

func TestSync_FirstPullFetchesEverything(t *testing.T) {
	remote := newFakeRemote()
	eng, _, _ := setupEngine(t, remote)

	require.NoError(t, eng.Sync(context.Background()))

	require.Len(t, remote.pullSince["clients"], 1)
	assert.Nil(t, remote.pullSince["clients"][0])
}

func TestSync_WatermarkCapturedAtPullStart(t *testing.T) {
	remote := newFakeRemote()
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	eng, _, wm := setupEngine(t, remote, WithClock(func() time.Time { return fixed }))

	require.NoError(t, eng.Sync(context.Background()))

	got, err := wm.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(fixed))

	// the next pull resumes from the stored watermark
	require.NoError(t, eng.Sync(context.Background()))
	since := remote.pullSince["clients"]
	require.Len(t, since, 2)
	require.NotNil(t, since[1])
	assert.True(t, since[1].Equal(fixed))
}

func TestSync_WatermarkNeverMovesBackwards(t *testing.T) {
	remote := newFakeRemote()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	eng, _, wm := setupEngine(t, remote, WithClock(func() time.Time { return now }))

	require.NoError(t, eng.Sync(context.Background()))

	// simulate a clock that jumped back between passes
	now = now.Add(-time.Hour)
	require.NoError(t, eng.Sync(context.Background()))

	got, err := wm.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)))
}

func TestSync_WatermarkAdvancesDespitePullFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.pullErrs["invoices"] = common.ErrUnavailable
	eng, _, wm := setupEngine(t, remote)

	require.NoError(t, eng.Sync(context.Background()))

	got, err := wm.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)

	// every table was still attempted
	for _, tbl := range schema.Ordered() {
		assert.Len(t, remote.pullSince[tbl.Name], 1, tbl.Name)
	}
}

// Full offline-to-online walkthrough: a client, an invoice and its line item
// created while unreachable all land remotely in one pass and flip to synced.
func TestScenario_OfflineInvoiceThenSync(t *testing.T) {
	remote := newFakeRemote()
	remote.active = false
	eng, st, _ := setupEngine(t, remote)

	seedRow(t, st.DB(), "clients", map[string]any{"id": "c1", "name": "Acme"})
	seedRow(t, st.DB(), "invoices", map[string]any{"id": "i1", "client_id": "c1", "number": "INV-001", "total_amount": 1200.0})
	seedRow(t, st.DB(), "invoice_line_items", map[string]any{"id": "li1", "invoice_id": "i1", "description": "consulting", "quantity": 8.0, "unit_price": 150.0, "total": 1200.0})

	// offline: nothing leaves the device
	require.NoError(t, eng.Sync(context.Background()))
	assert.Empty(t, remote.pushed)

	remote.active = true
	require.NoError(t, eng.Sync(context.Background()))

	require.Len(t, remote.pushed["clients"], 1)
	require.Len(t, remote.pushed["invoices"], 1)
	require.Len(t, remote.pushed["invoice_line_items"], 1)
	assert.Equal(t, "INV-001", remote.pushed["invoices"][0]["number"])

	for _, tc := range []struct{ table, id string }{
		{"clients", "c1"}, {"invoices", "i1"}, {"invoice_line_items", "li1"},
	} {
		assert.Equal(t, "synced", rowStatus(t, st.DB(), tc.table, tc.id), tc.table)
	}
}

// Two-device walkthrough: device B edits a client that device A also holds;
// after A pulls, the later edit wins on A.
func TestScenario_TwoDevicesLastWriteWins(t *testing.T) {
	remote := newFakeRemote()
	eng, st, _ := setupEngine(t, remote)

	seedRow(t, st.DB(), "clients", map[string]any{"id": "c1", "name": "Acme", "sync_status": "synced"})

	later := models.FormatTime(time.Now().UTC().Add(time.Minute))
	remote.pullRows["clients"] = []schema.Row{{
		"id": "c1", "name": "Acme Holdings", "email": "", "phone": "+371 2000", "address": "",
		"created_at": later, "updated_at": later,
	}}

	require.NoError(t, eng.Sync(context.Background()))

	var name, phone string
	require.NoError(t, st.DB().QueryRow(`SELECT name, phone FROM clients WHERE id = 'c1'`).Scan(&name, &phone))
	assert.Equal(t, "Acme Holdings", name)
	assert.Equal(t, "+371 2000", phone)
	assert.Equal(t, "synced", rowStatus(t, st.DB(), "clients", "c1"))
}
