package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/otpauth"
)

const testID = "6f1c3f8e-8d0b-4a43-9a53-3f4c1a0b2d11"

func userRows(created time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
		AddRow(testID, "Ada", "ada@example.com", "$argon2id$hash", created)
}

func TestStore_FindByEmail(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantCode  bool
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE email = \$1`).
					WithArgs("ada@example.com").
					WillReturnRows(userRows(created))
			},
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE email = \$1`).
					WithArgs("ada@example.com").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: otpauth.ErrUserNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE email = \$1`).
					WithArgs("ada@example.com").
					WillReturnError(errors.New("connection refused"))
			},
			wantCode: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			user, err := New(mock).FindByEmail(context.Background(), "ada@example.com")
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantCode:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
				assert.NotErrorIs(t, err, otpauth.ErrUserNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, testID, user.ID)
				assert.Equal(t, "Ada", user.Name)
				assert.Equal(t, created, user.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_FindByIDRejectsMalformedID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = New(mock).FindByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, otpauth.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(testID).
		WillReturnRows(userRows(time.Now()))

	user, err := New(mock).FindByID(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(testID, "Ada", "ada@example.com", "hash").
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(testID, "Ada", "ada@example.com", "hash").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: otpauth.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			store := New(mock)
			store.newID = func() string { return testID }

			user, err := store.Create(context.Background(), otpauth.NewUser{
				Name:         "Ada",
				Email:        "ada@example.com",
				PasswordHash: "hash",
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testID, user.ID)
				assert.Equal(t, created, user.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_UpdatePassword(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "updated", rows: 1},
		{name: "no such user", rows: 0, wantErr: otpauth.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec(`UPDATE users SET password_hash`).
				WithArgs("ada@example.com", "newhash", pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.rows))

			err = New(mock).UpdatePassword(context.Background(), "ada@example.com", "newhash")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunMigrationsUsesEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, runMigrations(context.Background(), nil))
	assert.Equal(t, "migrations", gotDir)
}

func TestRunMigrationsWrapsFailure(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err := runMigrations(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_create_users.sql", entries[0].Name())
}
