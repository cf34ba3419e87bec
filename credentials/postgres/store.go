package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/MrEthical07/otpauth"
)

// poolIface is the subset of pgxpool.Pool the store needs.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements otpauth.CredentialStore using PostgreSQL.
type Store struct {
	pool  poolIface
	newID func() string
}

// New creates a Store over a pool. Pass a *pgxpool.Pool in production.
func New(pool poolIface) *Store {
	return &Store{
		pool:  pool,
		newID: uuid.NewString,
	}
}

const selectUser = `SELECT id::text, name, email, password_hash, created_at FROM users`

// FindByEmail returns otpauth.ErrUserNotFound when no user has email.
func (s *Store) FindByEmail(ctx context.Context, email string) (otpauth.UserRecord, error) {
	row := s.pool.QueryRow(ctx, selectUser+` WHERE email = $1`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return otpauth.UserRecord{}, otpauth.ErrUserNotFound
	}
	if err != nil {
		return otpauth.UserRecord{}, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// FindByID returns otpauth.ErrUserNotFound for unknown or malformed ids.
func (s *Store) FindByID(ctx context.Context, id string) (otpauth.UserRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return otpauth.UserRecord{}, otpauth.ErrUserNotFound
	}

	row := s.pool.QueryRow(ctx, selectUser+` WHERE id = $1`, id)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return otpauth.UserRecord{}, otpauth.ErrUserNotFound
	}
	if err != nil {
		return otpauth.UserRecord{}, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return user, nil
}

// Create inserts a verified user. A unique violation on email maps to
// otpauth.ErrEmailExists.
func (s *Store) Create(ctx context.Context, nu otpauth.NewUser) (otpauth.UserRecord, error) {
	user := otpauth.UserRecord{
		ID:           s.newID(),
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, user.ID, user.Name, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return otpauth.UserRecord{}, otpauth.ErrEmailExists
		}
		return otpauth.UserRecord{}, oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", nu.Email).
			Wrap(err)
	}
	return user, nil
}

// UpdatePassword replaces the stored hash. It returns
// otpauth.ErrUserNotFound when no row matched.
func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = $3
		WHERE email = $1
	`, email, passwordHash, time.Now().UTC())
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("email", email).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return otpauth.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (otpauth.UserRecord, error) {
	var user otpauth.UserRecord
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	return user, err
}

var _ otpauth.CredentialStore = (*Store)(nil)
