package security

import (
	"testing"
	"time"

	"campground-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-characters"

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewTokenManager(testSecret, time.Hour)
	user := &domain.StaffUser{ID: 7, Username: "caja1", Role: domain.StaffRoleStaff}

	token, err := mgr.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "caja1", claims.Username)
	assert.Equal(t, domain.StaffRoleStaff, claims.Role)
	assert.Equal(t, "campground-backend", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	mgr := NewTokenManager(testSecret, -time.Minute)
	user := &domain.StaffUser{ID: 1, Username: "caja1", Role: domain.StaffRoleStaff}

	token, err := mgr.GenerateToken(user)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	mgr := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("another-secret-key-also-32-chars-long", time.Hour)
	user := &domain.StaffUser{ID: 1, Username: "caja1", Role: domain.StaffRoleAdmin}

	token, err := mgr.GenerateToken(user)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	mgr := NewTokenManager(testSecret, time.Hour)
	_, err := mgr.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
