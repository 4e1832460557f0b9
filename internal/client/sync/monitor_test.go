package sync

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecovs/billfold/internal/common"
)

type fakePinger struct {
	mu  stdsync.Mutex
	err error
}

func (p *fakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePinger) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

type fakeSyncer struct {
	mu    stdsync.Mutex
	calls int
	err   error
}

func (s *fakeSyncer) Sync(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *fakeSyncer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestMonitor_SyncsOnReconnect(t *testing.T) {
	pinger := &fakePinger{err: common.ErrUnavailable}
	syncer := &fakeSyncer{}
	m := NewMonitor(pinger, syncer, nopLogger{}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	// offline probes never trigger a sync
	time.Sleep(25 * time.Millisecond)
	assert.False(t, m.Online())
	assert.Equal(t, 0, syncer.count())

	pinger.setErr(nil)
	require.Eventually(t, func() bool { return m.Online() }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return syncer.count() == 1 }, time.Second, time.Millisecond)

	// staying online does not re-trigger
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 1, syncer.count())
}

func TestMonitor_KickProbesImmediately(t *testing.T) {
	pinger := &fakePinger{err: common.ErrUnavailable}
	syncer := &fakeSyncer{}
	m := NewMonitor(pinger, syncer, nopLogger{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	time.Sleep(10 * time.Millisecond)
	assert.False(t, m.Online())

	pinger.setErr(nil)
	m.Kick()
	require.Eventually(t, func() bool { return m.Online() }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return syncer.count() == 1 }, time.Second, time.Millisecond)
}

func TestMonitor_SwallowsSyncInProgress(t *testing.T) {
	pinger := &fakePinger{}
	syncer := &fakeSyncer{err: common.ErrSyncInProgress}
	m := NewMonitor(pinger, syncer, nopLogger{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	require.Eventually(t, func() bool { return syncer.count() == 1 }, time.Second, time.Millisecond)
	assert.True(t, m.Online())
}
