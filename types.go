package otpauth

import (
	"context"
	"time"

	"github.com/MrEthical07/otpauth/internal/security"
)

// UserRecord is a persisted user as returned by a CredentialStore.
// PasswordHash is an Argon2id PHC string and never leaves the engine in
// transport responses.
type UserRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser is what the engine hands a CredentialStore once an email is verified.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// CredentialStore persists verified users. The engine never stores
// plaintext passwords and never writes users that have not confirmed their
// email.
//
// FindByEmail and FindByID return ErrUserNotFound when no user matches.
// Create returns ErrEmailExists when the email is taken.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
	FindByID(ctx context.Context, id string) (UserRecord, error)
	Create(ctx context.Context, user NewUser) (UserRecord, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// RegisterRequest starts an email-verified sign-up.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6"`
}

// Result carries the user-facing message of a step that issues no tokens.
type Result struct {
	Message string `json:"message"`
	// AlreadyVerified is set when a password reset was requested for an
	// email that already holds a change-password grant.
	AlreadyVerified bool `json:"alreadyVerified,omitempty"`
}

// LoginResult is returned by Login and Refresh. The max ages are the cookie
// lifetimes transports should apply to the two tokens.
type LoginResult struct {
	User UserRecord `json:"user"`

	AccessToken      string    `json:"-"`
	RefreshToken     string    `json:"-"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`

	AccessMaxAge  time.Duration `json:"-"`
	RefreshMaxAge time.Duration `json:"-"`
}

// SecurityReport is a read-only snapshot of the engine's security posture,
// returned by [Engine.SecurityReport]. It contains no key material.
type SecurityReport = security.Report

// PasswordConfigReport lists the argon2id parameters in a SecurityReport.
type PasswordConfigReport = security.PasswordReport

// HealthStatus is an on-demand ephemeral store health result.
type HealthStatus struct {
	StoreAvailable bool
	StoreLatency   time.Duration
}
