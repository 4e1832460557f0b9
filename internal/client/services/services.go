// Package services holds the client application services sitting between the
// CLI and the repositories. Every write lands in the local store first; a
// background sync pass is then requested on a best-effort basis, so commands
// return immediately and work identically offline.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/logging"
)

// Syncer runs one sync pass.
type Syncer interface {
	Sync(ctx context.Context) error
}

const backgroundSyncTimeout = time.Minute

// requestSync kicks off a sync pass in the background. An already running
// pass is fine; any other failure is logged and will be retried by the
// connectivity monitor.
func requestSync(log logging.Logger, syncer Syncer) {
	if syncer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundSyncTimeout)
		defer cancel()
		if err := syncer.Sync(ctx); err != nil && !errors.Is(err, common.ErrSyncInProgress) {
			log.Debug(ctx, "background sync failed", "error", err)
		}
	}()
}
