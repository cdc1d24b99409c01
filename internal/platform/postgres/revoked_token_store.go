package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/store"
)

// PostgresRevokedTokenStore keeps revoked token IDs in the revoked_tokens table.
// Rows are never pruned here; expired tokens fail validation on their own.
type PostgresRevokedTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRevokedTokenStore creates a durable revocation set.
// If logger is nil, a default logger will be used.
func NewPostgresRevokedTokenStore(db store.DBTX, logger *slog.Logger) *PostgresRevokedTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRevokedTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "revoked_token_store")),
	}
}

var _ store.RevokedTokenStore = (*PostgresRevokedTokenStore)(nil)

// Revoke implements store.RevokedTokenStore.Revoke. The primary key on jti
// makes the insert-if-absent atomic.
func (s *PostgresRevokedTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, expiresAt.UTC())
	if err != nil {
		log.Error("failed to revoke token",
			slog.String("error", err.Error()),
			slog.String("jti", jti))
		return false, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("token revoked", slog.String("jti", jti), slog.Bool("added", n > 0))
	return n > 0, nil
}

// IsRevoked implements store.RevokedTokenStore.IsRevoked
func (s *PostgresRevokedTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti).
		Scan(&revoked)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check token revocation",
			slog.String("error", err.Error()),
			slog.String("jti", jti))
		return false, err
	}
	return revoked, nil
}
