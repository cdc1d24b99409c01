// Package inmemory provides process-local token revocation backed by go-cache:
// a standalone revocation set for single-instance deployments, and a
// positive-result front cache for a slower shared backend.
package inmemory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/phrazzld/catalog-api/internal/store"
)

// cleanupInterval is how often expired entries are purged.
const cleanupInterval = 10 * time.Minute

// RevokedTokenStore is an in-process revocation set. Entries expire at the
// expiresAt given to Revoke. Revocations are lost on restart.
type RevokedTokenStore struct {
	c *cache.Cache
}

// NewRevokedTokenStore creates an empty in-process revocation set.
func NewRevokedTokenStore() *RevokedTokenStore {
	return &RevokedTokenStore{c: cache.New(cache.NoExpiration, cleanupInterval)}
}

var _ store.RevokedTokenStore = (*RevokedTokenStore)(nil)

// Revoke implements store.RevokedTokenStore.Revoke. cache.Add fails when the
// key is already present, which makes the claim atomic.
func (s *RevokedTokenStore) Revoke(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.c.Add(jti, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// IsRevoked implements store.RevokedTokenStore.IsRevoked
func (s *RevokedTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, found := s.c.Get(jti)
	return found, nil
}

// CachedRevokedTokenStore fronts another RevokedTokenStore with an in-process
// cache of positive answers. Revocation is permanent for a token's lifetime,
// so a cached "revoked" can never be stale; "not revoked" is never cached.
type CachedRevokedTokenStore struct {
	next store.RevokedTokenStore
	c    *cache.Cache
	ttl  time.Duration
}

// NewCachedRevokedTokenStore wraps next, keeping positive answers for at most ttl.
func NewCachedRevokedTokenStore(next store.RevokedTokenStore, ttl time.Duration) *CachedRevokedTokenStore {
	if next == nil {
		panic("next cannot be nil")
	}
	return &CachedRevokedTokenStore{
		next: next,
		c:    cache.New(ttl, cleanupInterval),
		ttl:  ttl,
	}
}

var _ store.RevokedTokenStore = (*CachedRevokedTokenStore)(nil)

// Revoke implements store.RevokedTokenStore.Revoke. The claim is always
// decided by the wrapped store.
func (s *CachedRevokedTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	added, err := s.next.Revoke(ctx, jti, expiresAt)
	if err != nil {
		return false, err
	}
	s.remember(jti, expiresAt)
	return added, nil
}

// IsRevoked implements store.RevokedTokenStore.IsRevoked
func (s *CachedRevokedTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if _, found := s.c.Get(jti); found {
		return true, nil
	}
	revoked, err := s.next.IsRevoked(ctx, jti)
	if err != nil {
		return false, err
	}
	if revoked {
		s.c.SetDefault(jti, struct{}{})
	}
	return revoked, nil
}

func (s *CachedRevokedTokenStore) remember(jti string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if ttl > s.ttl {
		ttl = s.ttl
	}
	s.c.Set(jti, struct{}{}, ttl)
}
