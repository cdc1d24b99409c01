package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/catalog-api/internal/api/shared"
	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/service/auth"
)

// AuthService is the part of *auth.Service used by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*auth.TokenPair, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

var _ AuthService = (*auth.Service)(nil)

// AuthHandler handles registration, login, logout and token refresh.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		auth:   authService,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UserCredentials
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Username, req.Password); err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusCreated, "User created successfully.")
}

// Login handles POST /login. Unknown usernames and wrong passwords produce
// the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UserCredentials
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pair)
}

// Logout handles POST /logout. The access token that authenticated the
// request is revoked.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := shared.ClaimsFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return
	}

	if err := h.auth.Logout(r.Context(), claims); err != nil {
		HandleAPIError(w, r, err, "Failed to log out")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Successfully logged out")
}

// Refresh handles POST /refresh. The bearer token must be a refresh token;
// it is consumed by the exchange.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := shared.BearerToken(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	access, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshResponse{AccessToken: access})
}
