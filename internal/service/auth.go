package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/cardkeeper/cardkeeper/internal/apperr"
	"github.com/cardkeeper/cardkeeper/internal/models"
	"github.com/cardkeeper/cardkeeper/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Login failures use one message for "no such user" and "wrong password" so
// the two cases are indistinguishable to the caller.
const invalidCredentials = "Invalid email or password"

// Register creates a new user with a hashed password and returns a session
// token alongside the created user
func (s *Service) Register(ctx context.Context, emailAddr, name, password string) (string, *models.User, error) {
	if emailAddr == "" || name == "" || password == "" {
		return "", nil, apperr.Validation("Please provide email, name, and password")
	}
	if !emailPattern.MatchString(emailAddr) {
		return "", nil, apperr.Validation("Invalid email format")
	}
	if len(password) < 6 {
		return "", nil, apperr.Validation("Password must be at least 6 characters long")
	}

	if _, err := s.repo.FindUserByEmail(ctx, emailAddr); err == nil {
		return "", nil, apperr.AlreadyExists("User with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		Name:         name,
		PasswordHash: string(hashedPassword),
	}
	// A concurrent registration with the same email still trips the unique
	// constraint; the normalizer turns that into AlreadyExists.
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return token, user, nil
}

// Login authenticates a user and returns a session token
func (s *Service) Login(ctx context.Context, emailAddr, password string) (string, *models.User, error) {
	if emailAddr == "" || password == "" {
		return "", nil, apperr.Validation("Please provide email and password")
	}

	user, err := s.repo.FindUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, apperr.Unauthenticated(invalidCredentials)
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Unauthenticated(invalidCredentials)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return token, user, nil
}

// issueToken generates a signed, time-limited JWT encoding the user id
func (s *Service) issueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWTTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken validates a session token and returns the encoded user id
func (s *Service) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.Unauthenticated("Token expired. Please log in again.")
		}
		return "", apperr.Unauthenticated("Invalid token. Please log in again.")
	}
	if claims.Subject == "" {
		return "", apperr.Unauthenticated("Invalid token. Please log in again.")
	}
	return claims.Subject, nil
}

// Authenticate verifies a bearer token and resolves the user it names, with
// the password hash projected out. A valid token whose user no longer exists
// fails with 404.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}
