package metadata

import (
	"context"
	"fmt"
	"time"
)

// watermarkKey is the single key-value entry holding the last successful
// pull boundary.
const watermarkKey = "last_sync_timestamp"

// Watermark persists the global pull watermark: read once at pull start,
// written once after a pull pass has attempted all tables.
type Watermark struct {
	repo Repository
}

func NewWatermark(repo Repository) *Watermark {
	return &Watermark{repo: repo}
}

// Get returns the stored watermark, or nil if no pull has completed yet
// (the first sync is a full pull).
func (w *Watermark) Get(ctx context.Context) (*time.Time, error) {
	raw, err := w.repo.Get(ctx, watermarkKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("malformed watermark %q: %w", raw, err)
	}
	return &t, nil
}

// Set stores t as the new watermark.
func (w *Watermark) Set(ctx context.Context, t time.Time) error {
	return w.repo.Set(ctx, watermarkKey, t.UTC().Format(time.RFC3339Nano))
}
