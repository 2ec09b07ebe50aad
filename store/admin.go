package store

import (
	"context"
	"database/sql"

	"event-registration/driver"
	"event-registration/models"

	"github.com/pkg/errors"
)

var ErrAdminNotFound = errors.New("admin not found")

func (s *Store) FindAdmin(ctx context.Context, username string) (models.Admin, error) {
	var a models.Admin
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash FROM admin WHERE username = ?", username).
		Scan(&a.ID, &a.Username, &a.PasswordHash)
	if err == sql.ErrNoRows {
		return a, ErrAdminNotFound
	}
	return a, errors.Wrap(err, "find admin")
}

// CreateAdmin stores a new admin account. passwordHash must already be hashed.
func (s *Store) CreateAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO admin (username, password_hash) VALUES (?, ?)", username, passwordHash)
	if driver.IsDuplicateKey(err) {
		return models.ErrDuplicate
	}
	return errors.Wrap(err, "create admin")
}

// SetAdminPassword replaces the password hash of an existing admin.
func (s *Store) SetAdminPassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE admin SET password_hash = ? WHERE username = ?", passwordHash, username)
	if err != nil {
		return errors.Wrap(err, "update admin password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAdminNotFound
	}
	return nil
}
