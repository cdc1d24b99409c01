package auth

import (
	"context"
	"time"
)

// ClockSkew is the leeway applied to exp and iat during validation. A token
// is still accepted for ClockSkew after its exp.
const ClockSkew = 2 * time.Minute

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateAccessToken creates a signed access token for userID.
	// fresh marks a token obtained directly from credentials rather than from
	// a refresh token; isAdmin is embedded as the is_admin claim.
	GenerateAccessToken(ctx context.Context, userID int64, fresh, isAdmin bool) (string, error)

	// ValidateToken validates an access token string and extracts the claims.
	// Returns ErrWrongTokenType when given a refresh token.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token for userID.
	// Refresh tokens have a longer lifetime and are used to obtain new access tokens.
	GenerateRefreshToken(ctx context.Context, userID int64, isAdmin bool) (string, error)

	// ValidateRefreshToken validates a refresh token string and extracts the claims.
	// Returns ErrWrongTokenType when given an access token.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified contents of a token.
type Claims struct {
	// UserID is the identity the token was issued for.
	UserID int64 `json:"uid,omitempty"`

	// TokenType indicates the purpose of the token ("access" or "refresh").
	TokenType string `json:"type,omitempty"`

	// Fresh is true only for access tokens issued by login.
	Fresh bool `json:"fresh,omitempty"`

	// IsAdmin is decided once, when the token is issued.
	IsAdmin bool `json:"is_admin,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
