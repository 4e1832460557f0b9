// Package users provides the postgres-backed repository for accounts.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/dbx"
	"github.com/mkuznecovs/billfold/internal/server/models"
)

// Repository describes account persistence.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}

// PostgresRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query, user.UserName, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	query := `SELECT id, username, password_hash FROM users
		 WHERE username = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userName).Scan(&user.ID, &user.UserName, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
