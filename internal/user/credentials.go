// ABOUTME: Password update flows with per-flow authorization rules
// ABOUTME: Own-password change re-verifies, by-id needs rank, reset needs the flag

package user

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/hydroponics-system/hydro-api-microservice/internal/auth"
)

// MinPasswordLength is the shortest accepted new password.
const MinPasswordLength = 8

// Verifier re-checks a user's current credentials. The auth service
// satisfies it.
type Verifier interface {
	Authenticate(ctx context.Context, email, password string) (*auth.AuthToken, error)
}

// CredentialsService applies password changes.
type CredentialsService struct {
	dir      Directory
	verifier Verifier
	logger   *slog.Logger
}

// NewCredentialsService creates the credentials service. Pass nil logger for
// the default.
func NewCredentialsService(dir Directory, verifier Verifier, logger *slog.Logger) *CredentialsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialsService{
		dir:      dir,
		verifier: verifier,
		logger:   logger.With("component", "credentials"),
	}
}

// UpdateOwnPassword changes the calling user's password after re-verifying
// their current one.
func (s *CredentialsService) UpdateOwnPassword(ctx context.Context, currentPassword, newPassword string) error {
	bound, ok := auth.UserFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no user bound to request", auth.ErrInsufficientPermissions)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	if _, err := s.verifier.Authenticate(ctx, bound.User.Email, currentPassword); err != nil {
		return fmt.Errorf("verifying current password: %w", err)
	}

	return s.storePassword(ctx, bound.User.ID, newPassword)
}

// UpdatePasswordByID sets a user's password directly. Allowed for the user
// themselves or any principal ranking above the target user's role.
func (s *CredentialsService) UpdatePasswordByID(ctx context.Context, userID int, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	target, err := s.dir.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("looking up target user: %w", err)
	}

	principal := auth.FromContext(ctx)
	if user, ok := principal.(auth.UserPrincipal); !ok || user.User.ID != userID {
		if principal == nil || principal.Role().Rank() <= target.WebRole.Rank() {
			return fmt.Errorf("%w: requires rank above %s", auth.ErrInsufficientPermissions, target.WebRole)
		}
	}

	return s.storePassword(ctx, userID, newPassword)
}

// ResetPassword completes a forced password reset. Only honored when the
// caller's token carries the forced-reset flag; the flag is cleared on
// success.
func (s *CredentialsService) ResetPassword(ctx context.Context, newPassword string) error {
	bound, ok := auth.UserFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no user bound to request", auth.ErrInsufficientPermissions)
	}
	if !bound.User.ResetPassword {
		return fmt.Errorf("%w: token was not issued for a password reset", auth.ErrInsufficientPermissions)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	if err := s.storePassword(ctx, bound.User.ID, newPassword); err != nil {
		return err
	}

	if err := s.dir.SetResetPassword(ctx, bound.User.ID, false); err != nil {
		return fmt.Errorf("clearing reset flag: %w", err)
	}

	s.logger.Info("password reset completed", "user_id", bound.User.ID)
	return nil
}

func (s *CredentialsService) storePassword(ctx context.Context, userID int, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.dir.UpdateUserPassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("storing password: %w", err)
	}
	s.logger.Info("password updated", "user_id", userID)
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
