package service

import (
	"context"
	"errors"
	"fmt"

	"focusflow/internal/models"
	"focusflow/pkg/crypto"
	"focusflow/pkg/logger"

	"go.uber.org/zap"
)

// WelcomeTaskText is the text of the task every new account starts with.
const WelcomeTaskText = "Welcome to FocusFlow"

// UserStore is the persistence the credential store needs.
type UserStore interface {
	CreateWithWelcomeTask(ctx context.Context, username, passwordHash, welcomeText string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error
}

// Credentials registers and authenticates users.
type Credentials struct {
	users  UserStore
	params crypto.Params

	// dummyHash is verified for unknown usernames so both failure paths cost
	// one argon2 derivation.
	dummyHash string
}

func NewCredentials(users UserStore, params crypto.Params) (*Credentials, error) {
	dummy, err := crypto.HashPassword("focusflow-dummy-password", params)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	return &Credentials{users: users, params: params, dummyHash: dummy}, nil
}

// Register creates the account and its welcome task.
func (s *Credentials) Register(ctx context.Context, username, password string) (models.Identity, error) {
	if username == "" || password == "" {
		return models.Identity{}, models.ErrInvalidInput
	}

	hash, err := crypto.HashPassword(password, s.params)
	if err != nil {
		return models.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateWithWelcomeTask(ctx, username, hash, WelcomeTaskText)
	if err != nil {
		return models.Identity{}, fmt.Errorf("create user: %w", err)
	}

	return user.Identity(), nil
}

// Authenticate checks the password and returns the matching identity.
func (s *Credentials) Authenticate(ctx context.Context, username, password string) (models.Identity, error) {
	if username == "" || password == "" {
		return models.Identity{}, models.ErrInvalidInput
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			_, _ = crypto.ComparePassword(s.dummyHash, password)
			return models.Identity{}, errors.Join(models.ErrInvalidCredentials, err)
		}
		return models.Identity{}, fmt.Errorf("get user: %w", err)
	}

	ok, err := crypto.ComparePassword(user.PasswordHash, password)
	if err != nil {
		return models.Identity{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return models.Identity{}, models.ErrInvalidCredentials
	}

	if crypto.NeedsRehash(user.PasswordHash, s.params) {
		s.upgradeHash(ctx, user.ID, password)
	}

	return user.Identity(), nil
}

func (s *Credentials) upgradeHash(ctx context.Context, userID int, password string) {
	hash, err := crypto.HashPassword(password, s.params)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		logger.ErrorLogger.Error("Password hash upgrade failed", zap.Int("user_id", userID), zap.Error(err))
		return
	}
	logger.AuditLogger.Info("Password hash upgraded", zap.Int("user_id", userID))
}
