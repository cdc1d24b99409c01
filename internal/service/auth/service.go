package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/store"
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service implements registration, login, logout and token refresh on top of
// a JWTService, a PasswordHasher and the user and revocation stores.
type Service struct {
	users   store.UserStore
	revoked store.RevokedTokenStore
	tokens  JWTService
	hasher  PasswordHasher
	admins  map[int64]struct{}
	logger  *slog.Logger

	// dummyHash is compared against when a username is unknown so that
	// login takes the same time whether or not the user exists.
	dummyOnce sync.Once
	dummyHash string
}

// NewService creates an auth Service. Users whose IDs appear in adminIDs
// receive is_admin=true in every token issued to them.
func NewService(
	users store.UserStore,
	revoked store.RevokedTokenStore,
	tokens JWTService,
	hasher PasswordHasher,
	adminIDs []int64,
	logger *slog.Logger,
) (*Service, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if revoked == nil {
		return nil, domain.NewValidationError("revoked", "cannot be nil", domain.ErrValidation)
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return &Service{
		users:   users,
		revoked: revoked,
		tokens:  tokens,
		hasher:  hasher,
		admins:  admins,
		logger:  logger.With(slog.String("component", "auth_service")),
	}, nil
}

// IsAdmin reports whether userID is configured as an administrator.
func (s *Service) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// Register creates a user with a hashed password.
// Returns a domain validation error for bad input and store.ErrUsernameExists
// when the username is taken.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, password)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			log.Debug("registration rejected: username taken", slog.String("username", user.Username))
			return nil, err
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a fresh access token plus a refresh
// token. Unknown usernames and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to look up user", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		s.compareDummy(ctx, password)
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(ctx, user.HashedPassword, password); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Debug("login rejected: password mismatch", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	isAdmin := s.IsAdmin(user.ID)
	access, err := s.tokens.GenerateAccessToken(ctx, user.ID, true, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(ctx, user.ID, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	log.Info("user logged in", slog.Int64("user_id", user.ID), slog.Bool("is_admin", isAdmin))
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) compareDummy(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(context.WithoutCancel(ctx), "catalog-dummy-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	if s.dummyHash != "" {
		_ = s.hasher.Compare(ctx, s.dummyHash, password)
	}
}

// Authenticate validates an access token and rejects it if it was logged out.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Claims, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.tokens.ValidateToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// AuthenticateRefresh validates a refresh token and rejects it if it was
// already exchanged. It does not consume the token.
func (s *Service) AuthenticateRefresh(ctx context.Context, refreshToken string) (*Claims, error) {
	if refreshToken == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) checkRevoked(ctx context.Context, claims *Claims) error {
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check token revocation",
			slog.String("error", err.Error()),
			slog.String("jti", claims.ID))
		return fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

// revocationExpiry is the last instant a token could still pass validation.
// Revocation entries must live at least that long.
func revocationExpiry(claims *Claims) time.Time {
	return claims.ExpiresAt.Add(ClockSkew)
}

// Logout revokes the token described by claims. Every later request bearing
// the same jti is rejected until the token would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrMissingToken
	}
	if _, err := s.revoked.Revoke(ctx, claims.ID, revocationExpiry(claims)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("user logged out",
		slog.Int64("user_id", claims.UserID),
		slog.String("jti", claims.ID))
	return nil
}

// Refresh exchanges a refresh token for a new non-fresh access token. The
// refresh token is claimed atomically, so each one is usable at most once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.AuthenticateRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	added, err := s.revoked.Revoke(ctx, claims.ID, revocationExpiry(claims))
	if err != nil {
		return "", fmt.Errorf("failed to claim refresh token: %w", err)
	}
	if !added {
		return "", ErrTokenRevoked
	}

	access, err := s.tokens.GenerateAccessToken(ctx, claims.UserID, false, claims.IsAdmin)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("access token refreshed",
		slog.Int64("user_id", claims.UserID),
		slog.String("refresh_jti", claims.ID))
	return access, nil
}
