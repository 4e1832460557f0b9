package clients

import (
	"context"

	"github.com/mkuznecovs/billfold/internal/client/models"
)

// Repository describes CRUD and query operations for billable clients,
// backed by the local store.
type Repository interface {
	// Create inserts a new client, assigning an id and timestamps and
	// marking the row pending for the next push.
	Create(ctx context.Context, c *models.Client) error

	// Update rewrites the client's fields, bumps updated_at and forces the
	// row back to pending regardless of its prior sync state.
	Update(ctx context.Context, c *models.Client) error

	// GetByID returns a client by its identifier.
	GetByID(ctx context.Context, id string) (*models.Client, error)

	// GetAll lists all clients ordered by name.
	GetAll(ctx context.Context) ([]models.Client, error)

	// FindOrCreateByName resolves a client by exact name match, creating a
	// local-only row when absent. It never consults the remote store, so
	// the calling flow works offline.
	FindOrCreateByName(ctx context.Context, name string) (*models.Client, error)
}
