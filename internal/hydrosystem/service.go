// ABOUTME: Hydro system registration, linking, and unregistration service
// ABOUTME: Part numbers and link codes come from an injectable random source

package hydrosystem

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hydroponics-system/hydro-api-microservice/internal/auth"
	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
	"github.com/hydroponics-system/hydro-api-microservice/internal/subscription"
)

// Directory is the store surface the system service consumes. The SQLite
// store satisfies it.
type Directory interface {
	CreateSystem(ctx context.Context, system *dictionary.HydroSystem, passwordHash string) error
	GetSystemByID(ctx context.Context, id int) (*dictionary.HydroSystem, error)
	GetSystemByUUID(ctx context.Context, uuid string) (*dictionary.HydroSystem, error)
	NextSystemID(ctx context.Context) (int, error)
	AssignUserToSystem(ctx context.Context, userID, systemID int) error
	UnregisterSystem(ctx context.Context, id int) error
}

// Notifier dispatches notifications for system lifecycle events.
type Notifier interface {
	Send(body subscription.Body, action subscription.NotificationAction, target subscription.Target) error
}

// Service manages hydro system registrations.
type Service struct {
	dir      Directory
	notifier Notifier
	env      dictionary.Environment
	logger   *slog.Logger
	randInt  func(n int) int
}

// NewService creates the system service. Pass nil logger for the default.
func NewService(dir Directory, notifier Notifier, env dictionary.Environment, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		dir:      dir,
		notifier: notifier,
		env:      env,
		logger:   logger.With("component", "hydrosystem"),
		randInt:  rand.IntN,
	}
}

// Register creates a new system registration. The uuid and part number are
// generated here; the password is hashed and stored for later device
// authentication.
func (s *Service) Register(ctx context.Context, name, password string) (*dictionary.HydroSystem, error) {
	if name == "" {
		return nil, fmt.Errorf("system name is required")
	}
	if password == "" {
		return nil, fmt.Errorf("system password is required")
	}

	nextID, err := s.dir.NextSystemID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserving system id: %w", err)
	}

	system := &dictionary.HydroSystem{
		UUID:       uuid.New().String(),
		PartNumber: dictionary.BuildPartNumber(s.randInt(1000000), s.env, nextID),
		Name:       name,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing system password: %w", err)
	}

	if err := s.dir.CreateSystem(ctx, system, string(hash)); err != nil {
		return nil, fmt.Errorf("registering system: %w", err)
	}

	s.logger.Info("system registered",
		"system_id", system.ID,
		"uuid", system.UUID,
		"part_number", system.PartNumber,
	)
	return system, nil
}

// Get returns the system with the id.
func (s *Service) Get(ctx context.Context, id int) (*dictionary.HydroSystem, error) {
	return s.dir.GetSystemByID(ctx, id)
}

// GetByUUID returns the system with the uuid.
func (s *Service) GetByUUID(ctx context.Context, uuid string) (*dictionary.HydroSystem, error) {
	return s.dir.GetSystemByUUID(ctx, uuid)
}

// Unregister deletes a system registration. Only the owning user or an
// administrator may unregister a system.
func (s *Service) Unregister(ctx context.Context, id int) error {
	system, err := s.dir.GetSystemByID(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up system: %w", err)
	}

	if err := auth.AuthorizeOwnerOrRole(auth.FromContext(ctx), system.OwnerUserID, dictionary.WebRoleAdmin); err != nil {
		return err
	}

	if err := s.dir.UnregisterSystem(ctx, id); err != nil {
		return fmt.Errorf("unregistering system: %w", err)
	}

	s.logger.Info("system unregistered", "system_id", id, "uuid", system.UUID)
	return nil
}

// RequestLink starts the link confirmation flow for the calling user. A six
// digit code is pushed to the system's socket; the device displays it so the
// user can confirm out of band. The code is returned to the caller for that
// comparison.
func (s *Service) RequestLink(ctx context.Context, systemUUID string) (string, error) {
	bound, ok := auth.UserFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("%w: only users can request a link", auth.ErrInsufficientPermissions)
	}

	system, err := s.dir.GetSystemByUUID(ctx, systemUUID)
	if err != nil {
		return "", fmt.Errorf("looking up system: %w", err)
	}

	code := fmt.Sprintf("%06d", s.randInt(1000000))
	body := subscription.NewSystemLinkNotification(system.UUID, code, bound.User.ID)
	if err := s.notifier.Send(body, subscription.ActionCreate, subscription.ToSystem(system.UUID)); err != nil {
		return "", fmt.Errorf("pushing link code: %w", err)
	}

	s.logger.Info("link requested", "uuid", system.UUID, "user_id", bound.User.ID)
	return code, nil
}

// AcknowledgeLink completes the link flow. The calling system confirms the
// requesting user, who is then recorded as the system's owner.
func (s *Service) AcknowledgeLink(ctx context.Context, userID int) error {
	bound, ok := auth.SystemFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: only systems can acknowledge a link", auth.ErrInsufficientPermissions)
	}

	if err := s.dir.AssignUserToSystem(ctx, userID, bound.System.ID); err != nil {
		return fmt.Errorf("linking user to system: %w", err)
	}

	s.logger.Info("link acknowledged",
		"system_id", bound.System.ID,
		"uuid", bound.System.UUID,
		"user_id", userID,
	)
	return nil
}

// ReportFailure pushes a failure message from the calling system to every
// connected administrator.
func (s *Service) ReportFailure(ctx context.Context, message string) error {
	if _, ok := auth.SystemFromContext(ctx); !ok {
		return fmt.Errorf("%w: only systems can report failures", auth.ErrInsufficientPermissions)
	}

	body := subscription.NewSystemFailureNotification(message)
	if err := s.notifier.Send(body, subscription.ActionCreate, subscription.ToRole(dictionary.WebRoleAdmin)); err != nil {
		return fmt.Errorf("pushing failure report: %w", err)
	}
	return nil
}
