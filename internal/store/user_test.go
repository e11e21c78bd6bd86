package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAndGetByEmail(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	user := newTestUser("amara@example.com")
	user.Phone = "+254700000001"
	user.IsAdmin = true
	user.VerificationToken = "tok123"

	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUserByEmail(ctx, "amara@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Amara", got.FirstName)
	assert.Equal(t, "+254700000001", got.Phone)
	assert.Empty(t, got.Address)
	assert.True(t, got.IsActive)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "tok123", got.VerificationToken)
}

func TestGetUserByEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateUser(ctx, newTestUser("Amara@Example.com")))

	got, err := s.GetUserByEmail(ctx, "amara@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "Amara@Example.com", got.Email)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateUser(ctx, newTestUser("amara@example.com")))

	// 大文字小文字が違っても重複扱い
	err := s.CreateUser(ctx, newTestUser("AMARA@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := s.GetUserByEmail(ctx, "amara@example.com")
	require.NoError(t, err)
	assert.Equal(t, "amara@example.com", got.Email)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	user := newTestUser("amara@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetUserActive(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	user := newTestUser("amara@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	require.NoError(t, s.SetUserActive(ctx, user.ID, false))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, s.SetUserActive(ctx, "missing", true), ErrUserNotFound)
}

func TestDisplayName(t *testing.T) {
	user := &User{FirstName: "Amara", LastName: "Njeri"}
	assert.Equal(t, "Amara Njeri", user.DisplayName())

	user = &User{FirstName: "Amara"}
	assert.Equal(t, "Amara", user.DisplayName())
}
