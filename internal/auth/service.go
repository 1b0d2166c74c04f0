// ABOUTME: Credential verification and token issuance for users and systems
// ABOUTME: bcrypt hash checks against the directory, with enumeration-safe failures

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
	"github.com/hydroponics-system/hydro-api-microservice/internal/store"
)

// dummyHash is a valid bcrypt hash compared against when an identifier has
// no credential record, so unknown and wrong-password failures take the
// same time and return the same error.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Directory is the user/system lookup surface the auth service consumes.
// The SQLite store satisfies it.
type Directory interface {
	GetUserByEmail(ctx context.Context, email string) (*dictionary.User, error)
	GetUserByID(ctx context.Context, id int) (*dictionary.User, error)
	GetUserAuthPassword(ctx context.Context, email string) (string, error)
	TouchLastLogin(ctx context.Context, userID int) error
	GetSystemByUUID(ctx context.Context, uuid string) (*dictionary.HydroSystem, error)
	GetSystemAuthPassword(ctx context.Context, uuid string) (string, error)
}

// AuthToken is the issuance result returned to authenticating clients.
// Body holds the authenticated principal record.
type AuthToken struct {
	Token      string    `json:"token"`
	CreateDate time.Time `json:"createDate"`
	ExpireDate time.Time `json:"expireDate"`
	Body       any       `json:"body"`
}

// Service verifies credentials against the directory and mints tokens.
type Service struct {
	dir    Directory
	codec  *JWTCodec
	logger *slog.Logger
}

// NewService creates the auth service. Pass nil logger for the default.
func NewService(dir Directory, codec *JWTCodec, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		dir:    dir,
		codec:  codec,
		logger: logger.With("component", "auth"),
	}
}

// Authenticate verifies a user's email and password and returns a fresh
// token. A missing credential record and a wrong password both fail with
// ErrInvalidCredentials so identifiers cannot be enumerated. On success the
// user's last login time is updated.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*AuthToken, error) {
	hash, err := s.dir.GetUserAuthPassword(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Dummy comparison to keep constant timing
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			s.logger.Warn("auth failure", "reason", "unknown identifier")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.logger.Warn("auth failure", "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	user, err := s.dir.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up authenticated user: %w", err)
	}

	if err := s.dir.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("updating last login: %w", err)
	}

	return s.issueToken(UserPrincipal{User: *user}, user)
}

// AuthenticateSystem verifies a hydro system's uuid and password and returns
// a fresh token. Failure semantics match Authenticate.
func (s *Service) AuthenticateSystem(ctx context.Context, uuid, password string) (*AuthToken, error) {
	hash, err := s.dir.GetSystemAuthPassword(ctx, uuid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			s.logger.Warn("auth failure", "reason", "unknown identifier")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up system credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.logger.Warn("auth failure", "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	system, err := s.dir.GetSystemByUUID(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("looking up authenticated system: %w", err)
	}

	return s.issueToken(SystemPrincipal{System: *system}, system)
}

// Reauthenticate re-issues a token for the user bound to the request
// context, refreshing their record from the directory and touching last
// login. Only user principals can re-authenticate.
func (s *Service) Reauthenticate(ctx context.Context) (*AuthToken, error) {
	bound, ok := UserFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: no user bound to request", ErrInvalidCredentials)
	}

	user, err := s.dir.GetUserByID(ctx, bound.User.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.dir.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("updating last login: %w", err)
	}

	return s.issueToken(UserPrincipal{User: *user}, user)
}

// issueToken signs a token for the principal and wraps it with its
// create/expire instants and the principal record body.
func (s *Service) issueToken(p Principal, body any) (*AuthToken, error) {
	token, err := s.codec.Issue(p)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	expires, err := s.codec.ExpiresAt(token)
	if err != nil {
		return nil, fmt.Errorf("reading token expiration: %w", err)
	}

	return &AuthToken{
		Token:      token,
		CreateDate: expires.Add(-s.codec.TTL()),
		ExpireDate: expires,
		Body:       body,
	}, nil
}
