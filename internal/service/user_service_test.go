package service

import (
	"context"
	"testing"

	"github.com/murmur-app/murmur-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	s := newStack(t, 1000)
	ctx := context.Background()

	u, err := s.users.Register(ctx, "ada", "Ada Lovelace", "s3cret")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	_, err = s.users.Register(ctx, "ada", "Imposter", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := s.users.Login(ctx, "ada", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.users.Login(ctx, "ada", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.users.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_NonActiveAccount(t *testing.T) {
	s := newStack(t, 1000)
	ctx := context.Background()

	u, err := s.users.Register(ctx, "ada", "Ada", "s3cret")
	require.NoError(t, err)
	require.NoError(t, s.db.Model(&model.User{}).Where("id = ?", u.ID).
		Update("status", model.UserStatusPending).Error)

	_, err = s.users.Login(ctx, "ada", "s3cret")
	assert.ErrorIs(t, err, ErrAccountNotActive)
}
