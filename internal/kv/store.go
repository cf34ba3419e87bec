package kv

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrUnavailable wraps every backend failure. Absence of a key is never an error.
var ErrUnavailable = errors.New("ephemeral store unavailable")

// Store is the TTL-aware key/value contract the limiters, the OTP engine and
// the transient record stores are written against.
type Store interface {
	// Get returns the value and true, or "" and false when the key is absent or expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes value with the given TTL, replacing any existing value and TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Incr increments the integer at key, initializing a missing key to 0 first.
	Incr(ctx context.Context, key string) (int64, error)
	// Expire refreshes the TTL of an existing key. Missing keys are ignored.
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// TTL reports the remaining lifetime of key, or 0 when it is absent.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Exists is a convenience over Get for marker keys.
func Exists(ctx context.Context, s Store, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

// ReadCounter parses an integer counter. Missing, malformed or negative
// values read as zero.
func ReadCounter(ctx context.Context, s Store, key string) (int, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}
