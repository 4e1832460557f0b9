package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/logging"
)

// Pinger probes backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Syncer runs one sync pass.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Monitor periodically probes the backend and triggers a sync pass on every
// offline-to-online transition, so edits made offline are flushed as soon as
// connectivity returns.
type Monitor struct {
	pinger   Pinger
	syncer   Syncer
	log      logging.Logger
	interval time.Duration

	online atomic.Bool
	kick   chan struct{}
}

func NewMonitor(pinger Pinger, syncer Syncer, log logging.Logger, interval time.Duration) *Monitor {
	return &Monitor{
		pinger:   pinger,
		syncer:   syncer,
		log:      log,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
}

// Online reports the result of the most recent probe.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Kick requests an immediate probe (and sync, if the probe succeeds after a
// period offline) without waiting for the next tick. Safe to call from any
// goroutine; extra kicks while one is queued are dropped.
func (m *Monitor) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// Run probes until ctx is cancelled. It blocks; callers run it in a
// goroutine.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		case <-m.kick:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.pinger.Ping(ctx)
	wasOnline := m.online.Load()
	nowOnline := err == nil
	m.online.Store(nowOnline)

	switch {
	case nowOnline && !wasOnline:
		m.log.Info(ctx, "backend reachable, triggering sync")
		if err := m.syncer.Sync(ctx); err != nil && !errors.Is(err, common.ErrSyncInProgress) {
			m.log.Error(ctx, "sync after reconnect failed", "error", err)
		}
	case !nowOnline && wasOnline:
		m.log.Warn(ctx, "backend unreachable, switching to offline mode", "error", err)
	}
}
