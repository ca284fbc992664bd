package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_Create_OK_And_Duplicate(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	u := &model.User{
		ID:      uuid.Must(uuid.NewV4()),
		Email:   "a@b.c",
		PwdHash: []byte{1, 2, 3},
		Salt:    []byte{4, 5, 6},
	}

	mock.ExpectExec(`INSERT INTO users \(id, email, pwd_hash, salt\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(u.ID, u.Email, u.PwdHash, u.Salt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.PwdHash, u.Salt).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, u), errs.ErrAlreadyExists)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.PwdHash, u.Salt).
		WillReturnError(errors.New("other"))
	err := r.Create(ctx, u)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail_And_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()
	cols := []string{"id", "email", "pwd_hash", "salt", "created_at"}

	mock.ExpectQuery(`SELECT id, email, pwd_hash, salt, created_at FROM users WHERE email = \$1`).
		WithArgs("a@b.c").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(id, "a@b.c", []byte{1}, []byte{2}, ts))
	u, err := r.GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "a@b.c", u.Email)

	mock.ExpectQuery(`SELECT id, email, pwd_hash, salt, created_at FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(id, "a@b.c", []byte{1}, []byte{2}, ts))
	u, err = r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, ts, u.CreatedAt)

	mock.ExpectQuery(`SELECT id, email, pwd_hash, salt, created_at FROM users WHERE email = \$1`).
		WithArgs("nobody@b.c").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "nobody@b.c")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
