package service

import (
	"context"
	"errors"

	"github.com/cardkeeper/cardkeeper/internal/apperr"
	"github.com/cardkeeper/cardkeeper/internal/models"
	"github.com/cardkeeper/cardkeeper/internal/repository"
	"github.com/google/uuid"
)

// GetOrCreateUser returns the user registered under emailAddr, creating a
// passwordless record on first touch. The second return value reports whether
// a new user was created.
func (s *Service) GetOrCreateUser(ctx context.Context, emailAddr, name string) (*models.User, bool, error) {
	if emailAddr == "" || name == "" {
		return nil, false, apperr.Validation("Email and name are required")
	}
	if !emailPattern.MatchString(emailAddr) {
		return nil, false, apperr.Validation("Invalid email format")
	}

	user, err := s.repo.FindUserByEmail(ctx, emailAddr)
	if err == nil {
		user.PasswordHash = ""
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	user = &models.User{
		ID:    uuid.NewString(),
		Email: emailAddr,
		Name:  name,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}

	s.log.Infof("User created: %s", user.Email)
	return user, true, nil
}

// GetUserWithCards returns a user and their cards, newest first
func (s *Service) GetUserWithCards(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindUserWithCards(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// ListUserCards returns all cards owned by the given user, newest first
func (s *Service) ListUserCards(ctx context.Context, userID string) ([]models.CreditCard, error) {
	if userID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	return s.repo.ListCards(ctx, userID)
}
