package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/univdir/universities-api/internal/apperr"
	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/repository"
	"github.com/univdir/universities-api/internal/security"
)

type CreateUserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type UpdateUserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type UserService struct {
	users       repository.UserRepository
	credentials repository.CredentialRepository
	logger      *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	credentials repository.CredentialRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{users: users, credentials: credentials, logger: logger}
}

// Create registers a user with a credential. A user row that exists
// without a credential (seeded accounts) gets one retrofitted instead of
// being rejected.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if err := validateCreateUser(in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(in.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if existing != nil {
		_, err := s.credentials.FindByUserID(existing.ID)
		if err == nil {
			observability.RecordRepositoryOperation(ctx, "user", "create", "conflict")
			return nil, apperr.Conflict("user already exists")
		}
		if !errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, fmt.Errorf("lookup credential: %w", err)
		}
		if err := s.attachCredential(existing.ID, in.Password); err != nil {
			return nil, err
		}
		s.logger.Info("credential retrofitted for existing user", "user_id", existing.ID)
		observability.RecordRepositoryOperation(ctx, "user", "create", "retrofit")
		return existing, nil
	}

	user := &domain.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.attachCredential(user.ID, in.Password); err != nil {
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "create", "success")
	return user, nil
}

// Update applies profile changes. When the submitted email already
// belongs to the same user the stored record is returned untouched;
// another user's email is a conflict.
func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if in.Email != "" {
		owner, err := s.users.FindByEmail(in.Email)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup email owner: %w", err)
		}
		if owner != nil {
			if owner.ID == user.ID {
				return user, nil
			}
			observability.RecordRepositoryOperation(ctx, "user", "update", "conflict")
			return nil, apperr.Conflict("email already in use")
		}
		user.Email = in.Email
	}
	if in.FirstName != "" {
		user.FirstName = strings.TrimSpace(in.FirstName)
	}
	if in.LastName != "" {
		user.LastName = strings.TrimSpace(in.LastName)
	}

	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	observability.RecordRepositoryOperation(ctx, "user", "update", "success")
	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *UserService) Remove(ctx context.Context, id uint) error {
	if err := s.users.DeleteByID(id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	observability.RecordRepositoryOperation(ctx, "user", "delete", "success")
	return nil
}

func (s *UserService) attachCredential(userID uint, password string) error {
	hash, salt, err := security.GeneratePassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	cred := &domain.Credential{UserID: userID, PasswordHash: hash, PasswordSalt: salt}
	if err := s.credentials.Create(cred); err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func validateCreateUser(in CreateUserInput) error {
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return apperr.BadRequest("firstName is required")
	case strings.TrimSpace(in.LastName) == "":
		return apperr.BadRequest("lastName is required")
	case strings.TrimSpace(in.Email) == "":
		return apperr.BadRequest("email is required")
	case !strings.Contains(in.Email, "@"):
		return apperr.BadRequest("email is malformed")
	case len(in.Password) < 8:
		return apperr.BadRequest("password must be at least 8 characters")
	}
	return nil
}
