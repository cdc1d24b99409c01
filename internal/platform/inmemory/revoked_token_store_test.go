package inmemory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevokedTokenStore(t *testing.T) {
	t.Parallel()

	s := NewRevokedTokenStore()
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	added, err := s.Revoke(ctx, "a", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Revoke(ctx, "a", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, added)

	revoked, err = s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevokedTokenStore_ConcurrentClaims(t *testing.T) {
	t.Parallel()

	s := NewRevokedTokenStore()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if added, _ := s.Revoke(context.Background(), "race", time.Now().Add(time.Hour)); added {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

// countingStore records calls to the wrapped store.
type countingStore struct {
	mu       sync.Mutex
	revoked  map[string]bool
	lookups  int
	failNext error
}

func (c *countingStore) Revoke(_ context.Context, jti string, _ time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext != nil {
		err := c.failNext
		c.failNext = nil
		return false, err
	}
	if c.revoked[jti] {
		return false, nil
	}
	c.revoked[jti] = true
	return true, nil
}

func (c *countingStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	return c.revoked[jti], nil
}

func TestCachedRevokedTokenStore(t *testing.T) {
	t.Parallel()

	backing := &countingStore{revoked: map[string]bool{"known": true}}
	s := NewCachedRevokedTokenStore(backing, time.Minute)
	ctx := context.Background()

	t.Run("negative answers are not cached", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			revoked, err := s.IsRevoked(ctx, "fresh")
			require.NoError(t, err)
			assert.False(t, revoked)
		}
		assert.Equal(t, 2, backing.lookups)
	})

	t.Run("positive answers are cached", func(t *testing.T) {
		before := backing.lookups
		for i := 0; i < 3; i++ {
			revoked, err := s.IsRevoked(ctx, "known")
			require.NoError(t, err)
			assert.True(t, revoked)
		}
		assert.Equal(t, before+1, backing.lookups)
	})

	t.Run("revoke is decided by the backing store", func(t *testing.T) {
		added, err := s.Revoke(ctx, "new", time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, added)

		added, err = s.Revoke(ctx, "new", time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, added)

		before := backing.lookups
		revoked, err := s.IsRevoked(ctx, "new")
		require.NoError(t, err)
		assert.True(t, revoked)
		assert.Equal(t, before, backing.lookups, "revoke primes the cache")
	})

	t.Run("backing failure is returned and not cached", func(t *testing.T) {
		backing.failNext = errors.New("down")
		_, err := s.Revoke(ctx, "flaky", time.Now().Add(time.Hour))
		require.Error(t, err)

		revoked, err := s.IsRevoked(ctx, "flaky")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
