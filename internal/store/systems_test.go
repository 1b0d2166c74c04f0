// ABOUTME: Tests for system directory persistence
// ABOUTME: Covers registration, lookups, owner assignment, and unregistration

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

func TestNewSQLiteStoreCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deep", "test.db")

	store, err := NewSQLiteStore(dbPath, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func createTestSystem(t *testing.T, s *SQLiteStore, uuid string) *dictionary.HydroSystem {
	t.Helper()
	system := &dictionary.HydroSystem{
		UUID:       uuid,
		PartNumber: dictionary.PartNumber("000042TEST000001"),
		Name:       "Greenhouse A",
	}
	if err := s.CreateSystem(context.Background(), system, "hash-1"); err != nil {
		t.Fatalf("CreateSystem failed: %v", err)
	}
	return system
}

func TestCreateAndGetSystem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := createTestSystem(t, store, "uuid-1")
	if created.ID == 0 {
		t.Fatal("CreateSystem did not populate ID")
	}

	byID, err := store.GetSystemByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSystemByID failed: %v", err)
	}
	if byID.Name != "Greenhouse A" {
		t.Errorf("Name = %q, want Greenhouse A", byID.Name)
	}
	if byID.OwnerUserID != 0 {
		t.Errorf("OwnerUserID = %d, want 0 for unassigned system", byID.OwnerUserID)
	}

	byUUID, err := store.GetSystemByUUID(ctx, "uuid-1")
	if err != nil {
		t.Fatalf("GetSystemByUUID failed: %v", err)
	}
	if byUUID.ID != created.ID {
		t.Errorf("ID = %d, want %d", byUUID.ID, created.ID)
	}
}

func TestGetSystemNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetSystemByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSystemByID(999) error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetSystemByUUID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSystemByUUID error = %v, want ErrNotFound", err)
	}
}

func TestSystemCredentials(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createTestSystem(t, store, "uuid-1")

	hash, err := store.GetSystemAuthPassword(ctx, "uuid-1")
	if err != nil {
		t.Fatalf("GetSystemAuthPassword failed: %v", err)
	}
	if hash != "hash-1" {
		t.Errorf("hash = %q, want hash-1", hash)
	}

	if _, err := store.GetSystemAuthPassword(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSystemAuthPassword error = %v, want ErrNotFound", err)
	}
}

func TestNextSystemID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	next, err := store.NextSystemID(ctx)
	if err != nil {
		t.Fatalf("NextSystemID failed: %v", err)
	}
	if next != 1 {
		t.Errorf("NextSystemID on empty table = %d, want 1", next)
	}

	createTestSystem(t, store, "uuid-1")

	next, err = store.NextSystemID(ctx)
	if err != nil {
		t.Fatalf("NextSystemID failed: %v", err)
	}
	if next != 2 {
		t.Errorf("NextSystemID = %d, want 2", next)
	}
}

func TestAssignUserToSystem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "owner@example.com")
	system := createTestSystem(t, store, "uuid-1")

	if err := store.AssignUserToSystem(ctx, user.ID, system.ID); err != nil {
		t.Fatalf("AssignUserToSystem failed: %v", err)
	}

	assigned, err := store.GetSystemByID(ctx, system.ID)
	if err != nil {
		t.Fatalf("GetSystemByID failed: %v", err)
	}
	if assigned.OwnerUserID != user.ID {
		t.Errorf("OwnerUserID = %d, want %d", assigned.OwnerUserID, user.ID)
	}

	if err := store.AssignUserToSystem(ctx, user.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("AssignUserToSystem(999) error = %v, want ErrNotFound", err)
	}
}

func TestUnregisterSystem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	system := createTestSystem(t, store, "uuid-1")

	if err := store.UnregisterSystem(ctx, system.ID); err != nil {
		t.Fatalf("UnregisterSystem failed: %v", err)
	}

	if _, err := store.GetSystemByID(ctx, system.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSystemByID after unregister error = %v, want ErrNotFound", err)
	}
	// Credentials cascade with the system row.
	if _, err := store.GetSystemAuthPassword(ctx, "uuid-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSystemAuthPassword after unregister error = %v, want ErrNotFound", err)
	}

	if err := store.UnregisterSystem(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("UnregisterSystem(999) error = %v, want ErrNotFound", err)
	}
}
