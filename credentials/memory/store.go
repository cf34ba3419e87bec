// Package memory is a process-local CredentialStore for examples, tests and
// single-instance deployments that do not need durable users.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/otpauth"
)

// Store keeps users in maps guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	byEmail map[string]otpauth.UserRecord
	byID    map[string]string
	now     func() time.Time
}

func New() *Store {
	return &Store{
		byEmail: make(map[string]otpauth.UserRecord),
		byID:    make(map[string]string),
		now:     time.Now,
	}
}

func (s *Store) FindByEmail(_ context.Context, email string) (otpauth.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byEmail[email]
	if !ok {
		return otpauth.UserRecord{}, otpauth.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) FindByID(_ context.Context, id string) (otpauth.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.byID[id]
	if !ok {
		return otpauth.UserRecord{}, otpauth.ErrUserNotFound
	}
	return s.byEmail[email], nil
}

// Create fails with otpauth.ErrEmailExists when email is taken.
func (s *Store) Create(_ context.Context, nu otpauth.NewUser) (otpauth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[nu.Email]; ok {
		return otpauth.UserRecord{}, otpauth.ErrEmailExists
	}

	user := otpauth.UserRecord{
		ID:           uuid.NewString(),
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    s.now().UTC(),
	}
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user.Email
	return user, nil
}

func (s *Store) UpdatePassword(_ context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[email]
	if !ok {
		return otpauth.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	s.byEmail[email] = user
	return nil
}

// Len reports the number of stored users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byEmail)
}

var _ otpauth.CredentialStore = (*Store)(nil)
