// Package rows provides the postgres-backed store for synced table rows.
// Rows are kept in a single generic table keyed by (table_name, id), with
// the full record as a jsonb payload, so schema changes on the client side
// do not require server-side DDL.
package rows

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/dbx"
	"github.com/mkuznecovs/billfold/internal/schema"
)

// Repository describes the row store consumed by the sync API.
type Repository interface {
	// UpsertBatch writes one table's batch for a user in a single
	// transaction: either every row lands or none does. A row id already
	// owned by another user rejects the whole batch.
	UpsertBatch(ctx context.Context, userID, table string, batch []schema.Row) error

	// SelectUpdatedSince returns the user's rows in table updated strictly
	// after since, oldest first. A nil since returns all rows.
	SelectUpdatedSince(ctx context.Context, userID, table string, since *time.Time) ([]schema.Row, error)
}

// PostgresRepository implements Repository. It holds the full *sql.DB
// because UpsertBatch needs a transaction.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// updated_at is stamped by the server on every write. Client clocks are
// only trusted for ordering within the payload itself; incremental pulls
// compare against server time so skewed devices cannot hide rows from
// each other.
const upsertQuery = `INSERT INTO rows (table_name, id, user_id, updated_at, payload)
	 VALUES ($1, $2, $3, now(), $4)
	 ON CONFLICT (table_name, id) DO UPDATE
	 SET updated_at = now(), payload = EXCLUDED.payload
	 WHERE rows.user_id = EXCLUDED.user_id`

func (r *PostgresRepository) UpsertBatch(ctx context.Context, userID, table string, batch []schema.Row) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, row := range batch {
			id, ok := row["id"].(string)
			if !ok || id == "" {
				return fmt.Errorf("%w: row without id", common.ErrBatchRejected)
			}

			payload, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to marshal row %s: %w", id, err)
			}

			res, err := tx.ExecContext(ctx, upsertQuery, table, id, userID, payload)
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
			ra, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
			if ra != 1 {
				// conflict row exists but belongs to someone else
				return fmt.Errorf("%w: row %s/%s", common.ErrUnauthorized, table, id)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, userID, table string, since *time.Time) ([]schema.Row, error) {
	query := `SELECT payload FROM rows
		 WHERE user_id = $1 AND table_name = $2`
	args := []any{userID, table}
	if since != nil {
		query += ` AND updated_at > $3`
		args = append(args, since.UTC())
	}
	query += ` ORDER BY updated_at`

	dbRows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer dbRows.Close()

	var result []schema.Row
	for dbRows.Next() {
		var payload []byte
		if err := dbRows.Scan(&payload); err != nil {
			return nil, err
		}
		var row schema.Row
		if err := json.Unmarshal(payload, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal row payload: %w", err)
		}
		result = append(result, row)
	}
	if err := dbRows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
