package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tahcohcat/memorymatch-web/internal/models"
)

const userColumns = `id, username, email, password_hash, display_name, created_at, updated_at, last_login_at, is_active`

// CreateUser inserts the user and fills in its ID.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, display_name, created_at, updated_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := db.get(ctx, &user.ID, query,
		user.Username, user.Email, user.Password, user.DisplayName, user.CreatedAt, user.UpdatedAt, user.IsActive)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Username, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID
func (db *DB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByUsername retrieves a user by their username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := db.get(ctx, &user, query, arg)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UsernameExists checks if a username is already taken
func (db *DB) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int
	err := db.get(ctx, &count, `SELECT COUNT(*) FROM users WHERE username = ?`, username)
	return count > 0, err
}

// EmailExists checks if an email is already registered
func (db *DB) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := db.get(ctx, &count, `SELECT COUNT(*) FROM users WHERE email = ?`, email)
	return count > 0, err
}

func (db *DB) UpdateLastLogin(ctx context.Context, userID int, at time.Time) error {
	_, err := db.exec(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, at, userID)
	return err
}

// UpdateProfile changes display name and email. The email must not belong to
// another account.
func (db *DB) UpdateProfile(ctx context.Context, userID int, displayName, email string) error {
	var count int
	if err := db.get(ctx, &count, `SELECT COUNT(*) FROM users WHERE email = ? AND id != ?`, email, userID); err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("email: %w", ErrConflict)
	}

	res, err := db.exec(ctx, `UPDATE users SET display_name = ?, email = ?, updated_at = ? WHERE id = ?`,
		displayName, email, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireRow(res, "user")
}

func (db *DB) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	res, err := db.exec(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(res, "user")
}

// ListUsernames returns the usernames of all active accounts.
func (db *DB) ListUsernames(ctx context.Context) ([]string, error) {
	var names []string
	if err := db.sel(ctx, &names, `SELECT username FROM users WHERE is_active = TRUE ORDER BY username`); err != nil {
		return nil, fmt.Errorf("failed to list usernames: %w", err)
	}
	return names, nil
}
