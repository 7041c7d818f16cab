package service

import (
	"context"
	"testing"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLogin(t *testing.T) {
	store := newMemStore()
	tokens := security.NewTokenManager("test-secret-key-at-least-32-characters", time.Hour)
	svc := NewAuthService(store, tokens)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, &domain.StaffUser{
		Username: "caja1", Name: "Caja Uno", PasswordHash: string(hash), Role: domain.StaffRoleStaff,
	}))

	token, user, err := svc.Login(ctx, "caja1", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "caja1", user.Username)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.StaffRoleStaff, claims.Role)

	_, _, err = svc.Login(ctx, "caja1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
