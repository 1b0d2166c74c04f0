// ABOUTME: Tests for user directory and credential persistence
// ABOUTME: Covers lookups, last-login touch, reset flag, and hash storage

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, s *SQLiteStore, email string) *dictionary.User {
	t.Helper()
	user := &dictionary.User{
		FirstName: "Test",
		LastName:  "Grower",
		Email:     email,
		WebRole:   dictionary.WebRoleUser,
	}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestCreateAndGetUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := createTestUser(t, store, "grower@example.com")
	if created.ID == 0 {
		t.Fatal("CreateUser did not populate ID")
	}

	byID, err := store.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != "grower@example.com" {
		t.Errorf("Email = %q, want grower@example.com", byID.Email)
	}
	if byID.WebRole != dictionary.WebRoleUser {
		t.Errorf("WebRole = %q, want USER", byID.WebRole)
	}
	if byID.InsertDate.IsZero() {
		t.Error("InsertDate not persisted")
	}

	byEmail, err := store.GetUserByEmail(ctx, "grower@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("ID = %d, want %d", byEmail.ID, created.ID)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetUserByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID(999) error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByEmail error = %v, want ErrNotFound", err)
	}
}

func TestListUsers(t *testing.T) {
	store := newTestStore(t)

	createTestUser(t, store, "a@example.com")
	createTestUser(t, store, "b@example.com")

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	if users[0].ID > users[1].ID {
		t.Error("users not ordered by id")
	}
}

func TestTouchLastLogin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "a@example.com")

	if !user.LastLoginDate.IsZero() {
		t.Fatal("fresh user should have no last login")
	}

	if err := store.TouchLastLogin(ctx, user.ID); err != nil {
		t.Fatalf("TouchLastLogin failed: %v", err)
	}

	touched, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if touched.LastLoginDate.IsZero() {
		t.Error("last login not stamped")
	}

	if err := store.TouchLastLogin(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("TouchLastLogin(999) error = %v, want ErrNotFound", err)
	}
}

func TestSetResetPassword(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "a@example.com")

	if err := store.SetResetPassword(ctx, user.ID, true); err != nil {
		t.Fatalf("SetResetPassword failed: %v", err)
	}
	flagged, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if !flagged.ResetPassword {
		t.Error("reset flag not set")
	}

	if err := store.SetResetPassword(ctx, user.ID, false); err != nil {
		t.Fatalf("SetResetPassword failed: %v", err)
	}
	cleared, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if cleared.ResetPassword {
		t.Error("reset flag not cleared")
	}
}

func TestUserCredentials(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "a@example.com")

	if _, err := store.GetUserAuthPassword(ctx, "a@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before credentials exist, got %v", err)
	}

	if err := store.InsertUserPassword(ctx, user.ID, "hash-1"); err != nil {
		t.Fatalf("InsertUserPassword failed: %v", err)
	}

	hash, err := store.GetUserAuthPassword(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserAuthPassword failed: %v", err)
	}
	if hash != "hash-1" {
		t.Errorf("hash = %q, want hash-1", hash)
	}

	if err := store.UpdateUserPassword(ctx, user.ID, "hash-2"); err != nil {
		t.Fatalf("UpdateUserPassword failed: %v", err)
	}
	hash, err = store.GetUserAuthPassword(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserAuthPassword failed: %v", err)
	}
	if hash != "hash-2" {
		t.Errorf("hash = %q, want hash-2", hash)
	}

	if err := store.UpdateUserPassword(ctx, 999, "hash"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUserPassword(999) error = %v, want ErrNotFound", err)
	}
}
