// Package redis provides a Redis-backed token revocation set, shared by every
// API instance pointing at the same Redis.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces revocation keys.
const DefaultKeyPrefix = "revoked_jti:"

// minTTL keeps an already-expired token claimed briefly instead of writing a key without expiry.
const minTTL = time.Second

// NewClient creates a client from a redis:// or rediss:// URL and checks connectivity.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return client, nil
}

// RevokedTokenStore stores each revoked jti as a key that expires at the given expiresAt.
type RevokedTokenStore struct {
	client goredis.Cmdable
	prefix string
	logger *slog.Logger
}

// NewRevokedTokenStore creates a revocation set on client.
// If logger is nil, a default logger will be used.
func NewRevokedTokenStore(client goredis.Cmdable, logger *slog.Logger) *RevokedTokenStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RevokedTokenStore{
		client: client,
		prefix: DefaultKeyPrefix,
		logger: logger.With(slog.String("component", "redis_revoked_token_store")),
	}
}

var _ store.RevokedTokenStore = (*RevokedTokenStore)(nil)

func (s *RevokedTokenStore) key(jti string) string {
	return s.prefix + jti
}

// Revoke implements store.RevokedTokenStore.Revoke using SET NX, which is
// atomic across clients.
func (s *RevokedTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl < minTTL {
		ttl = minTTL
	}

	added, err := s.client.SetNX(ctx, s.key(jti), 1, ttl).Result()
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to revoke token",
			slog.String("error", err.Error()),
			slog.String("jti", jti))
		return false, fmt.Errorf("redis revoke: %w", err)
	}
	return added, nil
}

// IsRevoked implements store.RevokedTokenStore.IsRevoked
func (s *RevokedTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check token revocation",
			slog.String("error", err.Error()),
			slog.String("jti", jti))
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}
