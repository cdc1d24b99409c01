package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/catalog-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testAuthConfig(secret string) config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   secret,
		AccessTokenLifetimeMinutes:  15,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

func newTestJWTService(t *testing.T, secret string, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(testAuthConfig(secret), func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(testAuthConfig("too-short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestGenerateAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret, fixedTime)
	ctx := context.Background()

	tests := []struct {
		name    string
		fresh   bool
		isAdmin bool
	}{
		{name: "fresh admin", fresh: true, isAdmin: true},
		{name: "fresh user", fresh: true},
		{name: "refreshed user"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := svc.GenerateAccessToken(ctx, 42, tt.fresh, tt.isAdmin)
			require.NoError(t, err)

			claims, err := svc.ValidateToken(ctx, token)
			require.NoError(t, err)

			assert.Equal(t, int64(42), claims.UserID)
			assert.Equal(t, "42", claims.Subject)
			assert.Equal(t, TokenTypeAccess, claims.TokenType)
			assert.Equal(t, tt.fresh, claims.Fresh)
			assert.Equal(t, tt.isAdmin, claims.IsAdmin)
			assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
			assert.Equal(t, fixedTime.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
			assert.NotEmpty(t, claims.ID)
		})
	}
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret, fixedTime)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		token, err := svc.GenerateRefreshToken(ctx, 1, false)
		require.NoError(t, err)
		claims, err := svc.ValidateRefreshToken(ctx, token)
		require.NoError(t, err)
		assert.False(t, seen[claims.ID], "jti reused")
		seen[claims.ID] = true
	}
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issuer := newTestJWTService(t, testSecret, fixedTime)

	access, err := issuer.GenerateAccessToken(ctx, 7, true, false)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(ctx, 7, false)
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *hmacJWTService
		token   string
		wantErr error
	}{
		{
			name:  "valid token",
			svc:   issuer,
			token: access,
		},
		{
			name:  "within clock skew after expiry",
			svc:   newTestJWTService(t, testSecret, fixedTime.Add(16*time.Minute)),
			token: access,
		},
		{
			name:    "expired token",
			svc:     newTestJWTService(t, testSecret, fixedTime.Add(time.Hour)),
			token:   access,
			wantErr: ErrExpiredToken,
		},
		{
			name:    "not yet valid",
			svc:     newTestJWTService(t, testSecret, fixedTime.Add(-time.Hour)),
			token:   access,
			wantErr: ErrTokenNotYetValid,
		},
		{
			name:    "invalid signature",
			svc:     newTestJWTService(t, wrongSecret, fixedTime),
			token:   access,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			svc:     issuer,
			token:   "this.is.not.a.valid.jwt.token",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "refresh token used as access token",
			svc:     issuer,
			token:   refresh,
			wantErr: ErrWrongTokenType,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := tt.svc.ValidateToken(ctx, tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), claims.UserID)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issuer := newTestJWTService(t, testSecret, fixedTime)

	refresh, err := issuer.GenerateRefreshToken(ctx, 9, true)
	require.NoError(t, err)
	access, err := issuer.GenerateAccessToken(ctx, 9, true, true)
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *hmacJWTService
		token   string
		wantErr error
	}{
		{name: "valid refresh token", svc: issuer, token: refresh},
		{
			name:    "expired refresh token",
			svc:     newTestJWTService(t, testSecret, fixedTime.Add(48*time.Hour)),
			token:   refresh,
			wantErr: ErrExpiredRefreshToken,
		},
		{
			name:    "invalid signature",
			svc:     newTestJWTService(t, wrongSecret, fixedTime),
			token:   refresh,
			wantErr: ErrInvalidRefreshToken,
		},
		{
			name:    "access token used as refresh token",
			svc:     issuer,
			token:   access,
			wantErr: ErrWrongTokenType,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := tt.svc.ValidateRefreshToken(ctx, tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TokenTypeRefresh, claims.TokenType)
			assert.False(t, claims.Fresh)
			assert.True(t, claims.IsAdmin)
		})
	}
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := jwtCustomClaims{
		UserID:    1,
		TokenType: TokenTypeAccess,
		Fresh:     true,
		IsAdmin:   true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(1),
			ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
			ID:        "forged",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	svc := newTestJWTService(t, testSecret, fixedTime)
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
