package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/store"
)

const userServiceName = "user"

// UserService provides lookup and deletion of registered users.
// Registration lives in the auth service.
type UserService interface {
	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID int64) (*domain.User, error)

	// DeleteUser deletes a user by their ID. Tokens already issued to the
	// user stay valid until they expire or are logged out.
	DeleteUser(ctx context.Context, userID int64) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	logger    *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userStore store.UserStore, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("user not found", slog.Int64("user_id", userID))
		} else {
			log.Error("failed to retrieve user",
				slog.String("error", err.Error()),
				slog.Int64("user_id", userID))
		}
		return nil, NewServiceError(userServiceName, "get_user", err)
	}

	log.Debug("retrieved user successfully", slog.Int64("user_id", userID))
	return user, nil
}

// DeleteUser deletes a user by their ID
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.userStore.Delete(ctx, userID); err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete user",
				slog.String("error", err.Error()),
				slog.Int64("user_id", userID))
		}
		return NewServiceError(userServiceName, "delete_user", err)
	}

	log.Info("user deleted", slog.Int64("user_id", userID))
	return nil
}
