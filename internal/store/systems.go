// ABOUTME: Hydro system directory and credential methods on the SQLite store
// ABOUTME: Covers registration, uuid lookup, owner linking, and unregistration

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// CreateSystem inserts a new hydro system registration and its credential
// hash in one transaction. The system's ID is populated from the generated
// row id.
func (s *SQLiteStore) CreateSystem(ctx context.Context, system *dictionary.HydroSystem, passwordHash string) error {
	if system.InsertDate.IsZero() {
		system.InsertDate = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO systems (uuid, part_number, name, owner_user_id, insert_date)
		 VALUES (?, ?, ?, ?, ?)`,
		system.UUID,
		string(system.PartNumber),
		system.Name,
		nullableInt(system.OwnerUserID),
		formatTime(system.InsertDate),
	)
	if err != nil {
		return fmt.Errorf("inserting system: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading system id: %w", err)
	}
	system.ID = int(id)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO system_credentials (system_id, password_hash) VALUES (?, ?)`,
		system.ID, passwordHash); err != nil {
		return fmt.Errorf("inserting system credentials: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing system registration: %w", err)
	}

	s.logger.Debug("registered system", "system_id", system.ID, "uuid", system.UUID)
	return nil
}

// GetSystemByID retrieves a system by id. Returns ErrNotFound if no system exists.
func (s *SQLiteStore) GetSystemByID(ctx context.Context, id int) (*dictionary.HydroSystem, error) {
	return s.getSystem(ctx, "id = ?", id)
}

// GetSystemByUUID retrieves a system by uuid. Returns ErrNotFound if no system exists.
func (s *SQLiteStore) GetSystemByUUID(ctx context.Context, uuid string) (*dictionary.HydroSystem, error) {
	return s.getSystem(ctx, "uuid = ?", uuid)
}

func (s *SQLiteStore) getSystem(ctx context.Context, where string, arg any) (*dictionary.HydroSystem, error) {
	query := `
		SELECT id, uuid, part_number, name, COALESCE(owner_user_id, 0), insert_date
		FROM systems
		WHERE ` + where

	var system dictionary.HydroSystem
	var partNumber, insertDate string

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&system.ID,
		&system.UUID,
		&partNumber,
		&system.Name,
		&system.OwnerUserID,
		&insertDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying system: %w", err)
	}

	system.PartNumber = dictionary.PartNumber(partNumber)
	system.InsertDate = parseTime(insertDate)
	return &system, nil
}

// NextSystemID returns the id the next registered system will receive. Used
// to build the part number before the row exists.
func (s *SQLiteStore) NextSystemID(ctx context.Context) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) + 1 FROM systems`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("querying next system id: %w", err)
	}
	return next, nil
}

// AssignUserToSystem links a user as the owner of a system.
func (s *SQLiteStore) AssignUserToSystem(ctx context.Context, userID, systemID int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE systems SET owner_user_id = ? WHERE id = ?`,
		userID, systemID)
	if err != nil {
		return fmt.Errorf("assigning system owner: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UnregisterSystem deletes a system registration and, via cascade, its
// credential record.
func (s *SQLiteStore) UnregisterSystem(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM systems WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting system: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSystemAuthPassword returns the stored password hash for the system with
// the given uuid. Returns ErrNotFound when the uuid has no credential record.
func (s *SQLiteStore) GetSystemAuthPassword(ctx context.Context, uuid string) (string, error) {
	query := `
		SELECT sc.password_hash
		FROM system_credentials sc
		JOIN systems sy ON sy.id = sc.system_id
		WHERE sy.uuid = ?
	`

	var hash string
	err := s.db.QueryRowContext(ctx, query, uuid).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying system credentials: %w", err)
	}
	return hash, nil
}

// nullableInt maps 0 to NULL so "no owner yet" is stored as NULL.
func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
