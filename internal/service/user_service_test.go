package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/mocks"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/service"
	"github.com/phrazzld/catalog-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetUser(t *testing.T) {
	t.Parallel()

	log, _ := logger.NewTestLogger()

	t.Run("found", func(t *testing.T) {
		mockUserStore := new(mocks.TestifyMockUserStore)
		mockUserStore.On("GetByID", mock.Anything, int64(7)).
			Return(&domain.User{ID: 7, Username: "alice"}, nil)

		user, err := service.NewUserService(mockUserStore, log).GetUser(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		mockUserStore.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockUserStore := new(mocks.TestifyMockUserStore)
		mockUserStore.On("GetByID", mock.Anything, int64(8)).Return(nil, store.ErrUserNotFound)

		_, err := service.NewUserService(mockUserStore, log).GetUser(context.Background(), 8)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		mockUserStore.AssertExpectations(t)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()

	tests := []struct {
		name     string
		storeErr error
		wantErr  error
		wantLog  bool
	}{
		{name: "deleted"},
		{name: "not found", storeErr: store.ErrUserNotFound, wantErr: store.ErrUserNotFound},
		{name: "storage failure", storeErr: errors.New("connection refused"), wantLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserStore := new(mocks.TestifyMockUserStore)
			mockUserStore.On("Delete", mock.Anything, int64(3)).Return(tt.storeErr)

			err := service.NewUserService(mockUserStore, log).DeleteUser(context.Background(), 3)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.storeErr != nil:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			if tt.wantLog {
				assert.Contains(t, buf.String(), "failed to delete user")
			}
			mockUserStore.AssertExpectations(t)
		})
	}
}
