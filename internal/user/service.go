// ABOUTME: User profile service over the directory store
// ABOUTME: Creation hashes a default password and announces the new user

package user

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/hydroponics-system/hydro-api-microservice/internal/auth"
	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
	"github.com/hydroponics-system/hydro-api-microservice/internal/subscription"
)

// DefaultPassword is assigned to newly created users until their first
// forced reset.
const DefaultPassword = "hydro-default"

// Directory is the store surface the user service consumes. The SQLite
// store satisfies it.
type Directory interface {
	CreateUser(ctx context.Context, user *dictionary.User) error
	GetUserByID(ctx context.Context, id int) (*dictionary.User, error)
	ListUsers(ctx context.Context) ([]*dictionary.User, error)
	SetResetPassword(ctx context.Context, userID int, reset bool) error
	InsertUserPassword(ctx context.Context, userID int, passwordHash string) error
	UpdateUserPassword(ctx context.Context, userID int, passwordHash string) error
}

// Notifier dispatches notifications for user lifecycle events.
type Notifier interface {
	Send(body subscription.Body, action subscription.NotificationAction, target subscription.Target) error
}

// Service manages user profiles.
type Service struct {
	dir      Directory
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates the user service. Pass nil logger for the default.
func NewService(dir Directory, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		dir:      dir,
		notifier: notifier,
		logger:   logger.With("component", "user"),
	}
}

// Create inserts a new user with the default password and the forced-reset
// flag set, then announces the user on the general topic.
func (s *Service) Create(ctx context.Context, user *dictionary.User) (*dictionary.User, error) {
	if user.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if user.WebRole == "" {
		user.WebRole = dictionary.WebRoleUser
	}
	user.ResetPassword = true

	if err := s.dir.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing default password: %w", err)
	}
	if err := s.dir.InsertUserPassword(ctx, user.ID, string(hash)); err != nil {
		return nil, fmt.Errorf("storing default password: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "email", user.Email)

	body := subscription.NewUserNotification(user.ID, user.FullName())
	if err := s.notifier.Send(body, subscription.ActionCreate, subscription.Broadcast()); err != nil {
		return nil, fmt.Errorf("announcing new user: %w", err)
	}

	return user, nil
}

// Get returns the user with the id.
func (s *Service) Get(ctx context.Context, id int) (*dictionary.User, error) {
	return s.dir.GetUserByID(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]*dictionary.User, error) {
	return s.dir.ListUsers(ctx)
}

// Current returns the fresh directory record of the user bound to the
// request context.
func (s *Service) Current(ctx context.Context) (*dictionary.User, error) {
	bound, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: no user bound to request", auth.ErrInsufficientPermissions)
	}
	return s.dir.GetUserByID(ctx, bound.User.ID)
}
