package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/univdir/universities-api/internal/apperr"
	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/repository"
	"github.com/univdir/universities-api/internal/security"
)

const resetTokenBytes = 64

// ResetTokenResult carries a freshly issued reset token. Name is only
// populated on the first issuance for a user; resends return the token
// alone.
type ResetTokenResult struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
}

type ChangePasswordInput struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	Token           string `json:"token"`
}

type AuthService struct {
	users          repository.UserRepository
	credentials    repository.CredentialRepository
	resetTokens    repository.ResetTokenRepository
	jwt            *security.JWTManager
	resetTTL       time.Duration
	resendCooldown time.Duration
	logger         *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	credentials repository.CredentialRepository,
	resetTokens repository.ResetTokenRepository,
	jwtManager *security.JWTManager,
	resetTTL, resendCooldown time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:          users,
		credentials:    credentials,
		resetTokens:    resetTokens,
		jwt:            jwtManager,
		resetTTL:       resetTTL,
		resendCooldown: resendCooldown,
		logger:         logger,
	}
}

// Login verifies the password against the stored argon2 hash and returns
// a signed JWT. It also stamps the credential's last access time; a
// failure there is logged but does not fail the login.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthEvent(ctx, "login", "unknown_user")
			return "", apperr.NotFound("user not found")
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	cred, err := s.credentials.FindByUserID(user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			observability.RecordAuthEvent(ctx, "login", "no_credential")
			return "", apperr.NotFound("credentials not found")
		}
		return "", fmt.Errorf("lookup credential: %w", err)
	}

	ok, err := security.VerifyPassword(cred.PasswordHash, cred.PasswordSalt, password)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		observability.RecordAuthEvent(ctx, "login", "bad_password")
		return "", apperr.Unauthorized("invalid credentials")
	}

	if err := s.credentials.TouchLastAccess(user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("update last access failed", "user_id", user.ID, "error", err)
	}

	token, err := s.jwt.Sign(user.Email, user.FirstName, user.LastName)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	observability.RecordAuthEvent(ctx, "login", "success")
	return token, nil
}

// RequestResetPasswordToken issues a password-reset token for the user.
// At most one token is live per user; while the resend cooldown holds,
// the request is rejected with the time the next resend becomes valid.
func (s *AuthService) RequestResetPasswordToken(ctx context.Context, email string) (*ResetTokenResult, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthEvent(ctx, "forgot_password", "unknown_user")
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	now := time.Now().UTC()
	existing, err := s.resetTokens.FindByUserID(user.ID)
	if err != nil && !errors.Is(err, repository.ErrResetTokenNotFound) {
		return nil, fmt.Errorf("lookup reset token: %w", err)
	}

	firstIssuance := existing == nil
	if existing != nil {
		if !existing.ResendAllowed(now) {
			observability.RecordAuthEvent(ctx, "forgot_password", "cooldown")
			return nil, apperr.BadRequest(fmt.Sprintf(
				"a reset token was already issued, retry after %s",
				existing.ResendAt.UTC().Format(time.RFC3339),
			))
		}
		if err := s.resetTokens.DeleteByID(existing.ID); err != nil {
			return nil, fmt.Errorf("replace reset token: %w", err)
		}
	}

	value, err := security.NewRandomString(resetTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	token := &domain.ResetToken{
		UserID:    user.ID,
		Token:     value,
		ExpiresAt: now.Add(s.resetTTL),
		ResendAt:  now.Add(s.resendCooldown),
	}
	if err := s.resetTokens.Create(token); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	observability.RecordAuthEvent(ctx, "forgot_password", "issued")
	res := &ResetTokenResult{Token: value}
	if firstIssuance {
		res.Name = user.FullName()
	}
	return res, nil
}

// ChangePassword rotates the credential after re-authenticating the user
// and consuming a live reset token. Returns the user's full name for the
// confirmation email.
func (s *AuthService) ChangePassword(ctx context.Context, in ChangePasswordInput) (string, error) {
	if _, err := s.Login(ctx, in.Email, in.CurrentPassword); err != nil {
		return "", err
	}

	token, err := s.resetTokens.FindByToken(in.Token)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			observability.RecordAuthEvent(ctx, "change_password", "unknown_token")
			return "", apperr.NotFound("reset token not found")
		}
		return "", fmt.Errorf("lookup reset token: %w", err)
	}
	if token.Expired(time.Now().UTC()) {
		observability.RecordAuthEvent(ctx, "change_password", "expired_token")
		return "", apperr.BadRequest("reset token expired")
	}

	user, err := s.users.FindByEmail(in.Email)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if token.UserID != user.ID {
		observability.RecordAuthEvent(ctx, "change_password", "token_mismatch")
		return "", apperr.NotFound("reset token not found")
	}

	hash, salt, err := security.GeneratePassword(in.NewPassword)
	if err != nil {
		return "", fmt.Errorf("hash new password: %w", err)
	}
	if err := s.credentials.UpdatePassword(user.ID, hash, salt); err != nil {
		return "", fmt.Errorf("update credential: %w", err)
	}
	if err := s.resetTokens.DeleteByID(token.ID); err != nil {
		s.logger.Warn("delete consumed reset token failed", "token_id", token.ID, "error", err)
	}

	observability.RecordAuthEvent(ctx, "change_password", "success")
	return user.FullName(), nil
}
