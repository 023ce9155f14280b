package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/ecodriven/internal/model"
	"github.com/sakif/ecodriven/internal/repository"
)

// UserService manages the subject↔account mapping.
//
// There is intentionally no "get user" operation: the account row exists
// only so journeys and scores have an owner and so RequireAccount has
// something to check. Everything the API exposes about a user is whether
// they are registered.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// UserExists reports whether the subject has a registered account.
// Also satisfies auth.AccountChecker — the RequireAccount middleware calls
// this on every account-gated request.
func (s *UserService) UserExists(ctx context.Context, subject string) (bool, error) {
	exists, err := s.repo.Exists(ctx, subject)
	if err != nil {
		return false, fmt.Errorf("checking user exists: %w", err)
	}
	return exists, nil
}

// CreateUser registers an account for the subject.
//
// The insert is optimistic: no pre-check, the repository translates a
// uniqueness violation into the "User already exists" conflict, and any
// other storage failure propagates unchanged.
func (s *UserService) CreateUser(ctx context.Context, subject string) (*model.User, error) {
	user, err := s.repo.Create(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

// DeleteUser removes the subject's account and, by cascade, every journey
// and score snapshot they own. Idempotent: deleting an unregistered subject
// succeeds silently.
func (s *UserService) DeleteUser(ctx context.Context, subject string) error {
	if err := s.repo.Delete(ctx, subject); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	s.logger.Info("user deleted")
	return nil
}
