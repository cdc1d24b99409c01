package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/catalog-api/internal/api"
	"github.com/phrazzld/catalog-api/internal/api/shared"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authenticatorFunc adapts a function to the Authenticator interface.
type authenticatorFunc func(ctx context.Context, token string) (*auth.Claims, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	return f(ctx, token)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	validClaims := &auth.Claims{UserID: 7, TokenType: auth.TokenTypeAccess, Fresh: true, ID: "jti-7"}

	tests := []struct {
		name           string
		authHeader     string
		authErr        error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer good",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing auth header",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  api.MsgMissingToken,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  api.MsgInvalidToken,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer old",
			authErr:        auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  api.MsgExpiredToken,
		},
		{
			name:           "revoked token",
			authHeader:     "Bearer revoked",
			authErr:        auth.ErrTokenRevoked,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  api.MsgRevokedToken,
		},
		{
			name:           "refresh token used as access token",
			authHeader:     "Bearer refresh",
			authErr:        auth.ErrWrongTokenType,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  api.MsgInvalidToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			authn := authenticatorFunc(func(_ context.Context, token string) (*auth.Claims, error) {
				if tt.authErr != nil {
					return nil, tt.authErr
				}
				return validClaims, nil
			})
			mw := NewAuthMiddleware(authn, nil)

			var captured *auth.Claims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured, _ = shared.ClaimsFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/store", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, validClaims, captured)
				return
			}
			assert.Nil(t, captured, "next handler must not run")
			assert.Equal(t, tt.expectedError, decodeError(t, rec))
		})
	}
}

func TestAuthMiddleware_PassesTokenThrough(t *testing.T) {
	t.Parallel()

	var seen string
	authn := authenticatorFunc(func(_ context.Context, token string) (*auth.Claims, error) {
		seen = token
		return &auth.Claims{UserID: 1}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	rec := httptest.NewRecorder()
	NewAuthMiddleware(authn, nil).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, req)

	assert.Equal(t, "abc.def.ghi", seen)
}

func TestAuthMiddleware_LogsWithUserID(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	authn := authenticatorFunc(func(_ context.Context, _ string) (*auth.Claims, error) {
		return &auth.Claims{UserID: 42}, nil
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside handler")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))
	req.Header.Set("Authorization", "Bearer t")
	NewAuthMiddleware(authn, log).Authenticate(next).ServeHTTP(httptest.NewRecorder(), req)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "inside handler", last["msg"])
	assert.EqualValues(t, 42, last["user_id"])
}

func TestRequireFresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		claims         *auth.Claims
		expectedStatus int
		expectedError  string
	}{
		{name: "fresh token", claims: &auth.Claims{UserID: 1, Fresh: true}, expectedStatus: http.StatusOK},
		{
			name:           "refreshed token",
			claims:         &auth.Claims{UserID: 1, Fresh: false},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  api.MsgFreshRequired,
		},
		{
			name:           "no claims",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  api.MsgMissingToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/item", nil)
			if tt.claims != nil {
				req = req.WithContext(shared.WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			RequireFresh(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, rec))
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		claims         *auth.Claims
		expectedStatus int
		expectedError  string
	}{
		{name: "admin", claims: &auth.Claims{UserID: 1, IsAdmin: true}, expectedStatus: http.StatusOK},
		{
			name:           "not admin",
			claims:         &auth.Claims{UserID: 2},
			expectedStatus: http.StatusForbidden,
			expectedError:  api.MsgAdminRequired,
		},
		{
			name:           "no claims",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  api.MsgMissingToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodDelete, "/item/1", nil)
			if tt.claims != nil {
				req = req.WithContext(shared.WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, rec))
			}
		})
	}
}
