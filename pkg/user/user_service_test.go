package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceImpl_CreateUser(t *testing.T) {
	t.Run("should create a user and assign an id", func(t *testing.T) {
		service := NewUserService(NewRepoStub())

		created, err := service.CreateUser(context.Background(), User{Uid: "u-1", DisplayName: "Test User"})

		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.Equal(t, "u-1", created.Uid)
	})

	t.Run("should reject a user without uid", func(t *testing.T) {
		service := NewUserService(NewRepoStub())

		_, err := service.CreateUser(context.Background(), User{DisplayName: "No Uid"})

		assert.Error(t, err)
	})
}

func TestServiceImpl_GetUserByUid(t *testing.T) {
	t.Run("should find a created user", func(t *testing.T) {
		service := NewUserService(NewRepoStub())
		created, err := service.CreateUser(context.Background(), User{Uid: "u-2", DisplayName: "Someone"})
		require.NoError(t, err)

		found, err := service.GetUserByUid(context.Background(), "u-2")

		require.NoError(t, err)
		assert.Equal(t, created.Id, found.Id)
	})

	t.Run("should return ErrUserNotFound for an unknown uid", func(t *testing.T) {
		service := NewUserService(NewRepoStub())

		_, err := service.GetUserByUid(context.Background(), "missing")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
