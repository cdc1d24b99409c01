package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/catalog-api/internal/store"
)

// MockRevokedTokenStore implements store.RevokedTokenStore for testing.
// Without function fields set it is a plain in-memory set.
type MockRevokedTokenStore struct {
	RevokeFn    func(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
	IsRevokedFn func(ctx context.Context, jti string) (bool, error)

	mu      sync.Mutex
	Revoked map[string]time.Time
}

// NewMockRevokedTokenStore creates an empty revocation set.
func NewMockRevokedTokenStore() *MockRevokedTokenStore {
	return &MockRevokedTokenStore{Revoked: make(map[string]time.Time)}
}

var _ store.RevokedTokenStore = (*MockRevokedTokenStore)(nil)

// Revoke implements store.RevokedTokenStore.Revoke
func (m *MockRevokedTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, jti, expiresAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Revoked[jti]; ok {
		return false, nil
	}
	m.Revoked[jti] = expiresAt
	return true, nil
}

// IsRevoked implements store.RevokedTokenStore.IsRevoked
func (m *MockRevokedTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.IsRevokedFn != nil {
		return m.IsRevokedFn(ctx, jti)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.Revoked[jti]
	return ok, nil
}
