package stores

import (
	"context"
	"time"

	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/internal/kv"
)

// ChangePasswordGrantStore records that an identity proved mailbox
// ownership during password reset. The grant is a bare marker with a TTL.
type ChangePasswordGrantStore struct {
	store kv.Store
	keys  keys.Namespace
}

func NewChangePasswordGrantStore(store kv.Store, ns keys.Namespace) *ChangePasswordGrantStore {
	return &ChangePasswordGrantStore{
		store: store,
		keys:  ns,
	}
}

func (s *ChangePasswordGrantStore) Grant(ctx context.Context, email string, ttl time.Duration) error {
	return s.store.Set(ctx, s.keys.ChangePassword(email), "true", ttl)
}

func (s *ChangePasswordGrantStore) Granted(ctx context.Context, email string) (bool, error) {
	return kv.Exists(ctx, s.store, s.keys.ChangePassword(email))
}

func (s *ChangePasswordGrantStore) Revoke(ctx context.Context, email string) error {
	return s.store.Delete(ctx, s.keys.ChangePassword(email))
}
