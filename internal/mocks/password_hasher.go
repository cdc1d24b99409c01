package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/phrazzld/catalog-api/internal/service/auth"
)

// mockHashPrefix marks hashes produced by MockPasswordHasher.
const mockHashPrefix = "hashed:"

// errMismatch mirrors bcrypt's mismatch error for the default Compare.
var errMismatch = errors.New("hashedPassword is not the hash of the given password")

// MockPasswordHasher implements auth.PasswordHasher for testing without bcrypt's cost.
// The default hash is the password with a fixed prefix.
type MockPasswordHasher struct {
	// HashFn and CompareFn allow for custom logic in tests
	HashFn    func(ctx context.Context, password string) (string, error)
	CompareFn func(ctx context.Context, hashedPassword, password string) error

	mu sync.Mutex

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(ctx, password)
	}
	return mockHashPrefix + password, nil
}

// Compare implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Compare(ctx context.Context, hashedPassword, password string) error {
	m.mu.Lock()
	m.CompareCallCount++
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(ctx, hashedPassword, password)
	}
	if !strings.HasPrefix(hashedPassword, mockHashPrefix) || hashedPassword[len(mockHashPrefix):] != password {
		return errMismatch
	}
	return nil
}

// Compares returns the number of Compare calls so far.
func (m *MockPasswordHasher) Compares() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CompareCallCount
}
