package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

const insertQuery = `INSERT INTO users \(username, password_hash\)`

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("42"))

	u := &models.User{UserName: "alice", PasswordHash: []byte("hash")}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "42", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateUsername(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", []byte("hash")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice", PasswordHash: []byte("hash")})
	require.ErrorIs(t, err, common.ErrUserAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", []byte("hash")).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice", PasswordHash: []byte("hash")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestGetUserByLogin(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, username, password_hash FROM users`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).
			AddRow("42", "alice", []byte("hash")))

	got, err := repo.GetUserByLogin(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, []byte("hash"), got.PasswordHash)
}

func TestGetUserByLogin_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, username, password_hash FROM users`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByLogin(context.Background(), "nobody")
	require.ErrorIs(t, err, common.ErrNotFound)
}
