package store

import (
	"context"
	"time"
)

// RevokedTokenStore is the set of token IDs (jti) that may no longer be used.
// Implementations must be safe for concurrent use.
type RevokedTokenStore interface {
	// Revoke adds jti to the set. expiresAt is the last instant the token can
	// pass validation (its exp plus the validation leeway); entries may be
	// discarded after it. added is false when jti was already present,
	// which lets callers claim a token exactly once.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) (added bool, err error)

	// IsRevoked reports whether jti is in the set.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
