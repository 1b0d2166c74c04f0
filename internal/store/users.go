// ABOUTME: User directory and credential methods on the SQLite store
// ABOUTME: Covers profile lookups, last-login touch, and password hash storage

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// CreateUser inserts a new user record. The user's ID is populated from the
// generated row id.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *dictionary.User) error {
	if user.InsertDate.IsZero() {
		user.InsertDate = time.Now().UTC()
	}
	if user.WebRole == "" {
		user.WebRole = dictionary.WebRoleUser
	}

	query := `
		INSERT INTO users (first_name, last_name, email, web_role, reset_password, insert_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		string(user.WebRole),
		boolToInt(user.ResetPassword),
		formatTime(user.InsertDate),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	user.ID = int(id)

	s.logger.Debug("created user", "user_id", user.ID, "email", user.Email)
	return nil
}

// GetUserByID retrieves a user by id. Returns ErrNotFound if no user exists.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int) (*dictionary.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email. Returns ErrNotFound if no user exists.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*dictionary.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*dictionary.User, error) {
	query := `
		SELECT id, first_name, last_name, email, web_role, reset_password,
		       COALESCE(last_login_date, ''), insert_date
		FROM users
		WHERE ` + where

	var user dictionary.User
	var role string
	var resetPassword int
	var lastLogin, insertDate string

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&role,
		&resetPassword,
		&lastLogin,
		&insertDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.WebRole = dictionary.WebRole(role)
	user.ResetPassword = resetPassword != 0
	user.LastLoginDate = parseTime(lastLogin)
	user.InsertDate = parseTime(insertDate)
	return &user, nil
}

// ListUsers returns all user records ordered by id.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*dictionary.User, error) {
	query := `
		SELECT id, first_name, last_name, email, web_role, reset_password,
		       COALESCE(last_login_date, ''), insert_date
		FROM users
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []*dictionary.User
	for rows.Next() {
		var user dictionary.User
		var role string
		var resetPassword int
		var lastLogin, insertDate string

		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
			&role, &resetPassword, &lastLogin, &insertDate); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		user.WebRole = dictionary.WebRole(role)
		user.ResetPassword = resetPassword != 0
		user.LastLoginDate = parseTime(lastLogin)
		user.InsertDate = parseTime(insertDate)
		users = append(users, &user)
	}
	return users, rows.Err()
}

// TouchLastLogin stamps the user's last login time with the current time.
func (s *SQLiteStore) TouchLastLogin(ctx context.Context, userID int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_date = ? WHERE id = ?`,
		formatTime(time.Now()), userID)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetPassword toggles the user's forced password reset flag.
func (s *SQLiteStore) SetResetPassword(ctx context.Context, userID int, reset bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET reset_password = ? WHERE id = ?`,
		boolToInt(reset), userID)
	if err != nil {
		return fmt.Errorf("updating reset flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUserAuthPassword returns the stored password hash for the user with the
// given email. Returns ErrNotFound when the email has no credential record.
func (s *SQLiteStore) GetUserAuthPassword(ctx context.Context, email string) (string, error) {
	query := `
		SELECT uc.password_hash
		FROM user_credentials uc
		JOIN users u ON u.id = uc.user_id
		WHERE u.email = ?
	`

	var hash string
	err := s.db.QueryRowContext(ctx, query, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying user credentials: %w", err)
	}
	return hash, nil
}

// InsertUserPassword stores the initial password hash for a user.
func (s *SQLiteStore) InsertUserPassword(ctx context.Context, userID int, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_credentials (user_id, password_hash) VALUES (?, ?)`,
		userID, passwordHash)
	if err != nil {
		return fmt.Errorf("inserting user credentials: %w", err)
	}
	return nil
}

// UpdateUserPassword replaces the stored password hash for a user.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, userID int, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_credentials SET password_hash = ? WHERE user_id = ?`,
		passwordHash, userID)
	if err != nil {
		return fmt.Errorf("updating user credentials: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
