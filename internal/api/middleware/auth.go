package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/catalog-api/internal/api"
	"github.com/phrazzld/catalog-api/internal/api/shared"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/service/auth"
)

// Authenticator validates access tokens, including the revocation check.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	authenticator Authenticator
	logger        *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authenticator Authenticator, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate requires a valid, unrevoked access token in the Authorization
// header and stores its claims in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := shared.BearerToken(r)
		if err != nil {
			api.HandleAPIError(w, r, err, "")
			return
		}

		claims, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			api.HandleAPIError(w, r, err, "Authentication error")
			return
		}

		ctx := shared.WithClaims(r.Context(), claims)
		ctx = logger.WithLogger(ctx, logger.FromContextOrDefault(ctx, m.logger).
			With(slog.Int64("user_id", claims.UserID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireFresh rejects tokens that were not issued by a password login.
// It must run after Authenticate.
func RequireFresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := shared.ClaimsFromContext(r.Context())
		if !ok {
			api.HandleAPIError(w, r, auth.ErrMissingToken, "")
			return
		}
		if !claims.Fresh {
			api.HandleAPIError(w, r, auth.ErrFreshTokenRequired, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects tokens without the is_admin claim.
// It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := shared.ClaimsFromContext(r.Context())
		if !ok {
			api.HandleAPIError(w, r, auth.ErrMissingToken, "")
			return
		}
		if !claims.IsAdmin {
			api.HandleAPIError(w, r, auth.ErrAdminRequired, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
