// ABOUTME: Store interfaces and errors for hydro-gateway persistence
// ABOUTME: Defines user/system directory and credential lookup contracts

package store

import (
	"context"
	"errors"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// UserStore defines directory operations over user records.
type UserStore interface {
	CreateUser(ctx context.Context, user *dictionary.User) error
	GetUserByID(ctx context.Context, id int) (*dictionary.User, error)
	GetUserByEmail(ctx context.Context, email string) (*dictionary.User, error)
	ListUsers(ctx context.Context) ([]*dictionary.User, error)
	TouchLastLogin(ctx context.Context, userID int) error
	SetResetPassword(ctx context.Context, userID int, reset bool) error
}

// CredentialStore defines one-way credential hash operations. The store only
// ever sees hashes; verification happens in the auth layer.
type CredentialStore interface {
	GetUserAuthPassword(ctx context.Context, email string) (string, error)
	InsertUserPassword(ctx context.Context, userID int, passwordHash string) error
	UpdateUserPassword(ctx context.Context, userID int, passwordHash string) error
	GetSystemAuthPassword(ctx context.Context, uuid string) (string, error)
}

// SystemStore defines directory operations over hydro system registrations.
type SystemStore interface {
	CreateSystem(ctx context.Context, system *dictionary.HydroSystem, passwordHash string) error
	GetSystemByID(ctx context.Context, id int) (*dictionary.HydroSystem, error)
	GetSystemByUUID(ctx context.Context, uuid string) (*dictionary.HydroSystem, error)
	NextSystemID(ctx context.Context) (int, error)
	AssignUserToSystem(ctx context.Context, userID, systemID int) error
	UnregisterSystem(ctx context.Context, id int) error
}

// Store is the full persistence surface of the gateway.
type Store interface {
	UserStore
	CredentialStore
	SystemStore

	Close() error
}
