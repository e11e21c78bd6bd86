package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func newTestUser(email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		FirstName:    "Amara",
		LastName:     "Njeri",
		Email:        email,
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarealhash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
