// Package users implements account registration and login for the backend.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkuznecovs/billfold/internal/common"
	"github.com/mkuznecovs/billfold/internal/server/auth"
	"github.com/mkuznecovs/billfold/internal/server/models"
	"github.com/mkuznecovs/billfold/internal/server/repositories/users"
)

type Service struct {
	repo                        users.Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewService(repo users.Repository, jwtSecret []byte, accessTokenValidityDuration time.Duration) *Service {
	return &Service{
		repo:                        repo,
		jwtSecret:                   jwtSecret,
		accessTokenValidityDuration: accessTokenValidityDuration,
	}
}

func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, common.ErrInvalidLoginPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, common.ErrInternal
	}

	return user, nil
}

// Login verifies credentials and returns a signed access token. Missing
// users and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidLoginPassword
		}
		return "", common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", common.ErrInvalidLoginPassword
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrInternal
	}

	return token, nil
}
