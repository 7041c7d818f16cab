package service

import (
	"context"
	"errors"

	"campground-backend/internal/domain"
	"campground-backend/internal/logger"
	"campground-backend/internal/repository"
	"campground-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type authService struct {
	store  repository.Store
	tokens security.TokenManager
}

func NewAuthService(store repository.Store, tokens security.TokenManager) AuthService {
	return &authService{store: store, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *domain.StaffUser, error) {
	logger.EnterMethod("authService.Login", "username", username)

	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		// Same answer for unknown user and bad password.
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err, "username", username)
		return "", nil, err
	}

	logger.ExitMethod("authService.Login", "username", username, "role", user.Role)
	return token, user, nil
}
