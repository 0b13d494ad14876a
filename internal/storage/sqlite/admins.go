package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/portfolio/internal/domain/admin"
)

// AdminStore implements admin.Repository.
type AdminStore struct {
	db *sql.DB
}

var _ admin.Repository = (*AdminStore)(nil)

// GetByUsername returns the account with the given username.
func (s *AdminStore) GetByUsername(ctx context.Context, username string) (*admin.Account, error) {
	var (
		a         admin.Account
		active    int
		lastLogin sql.NullInt64
		created   int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, username, email, password_hash, active, last_login,
		login_count, date_created FROM admins WHERE username = ?`, username).
		Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &active, &lastLogin, &a.LoginCount, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, admin.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query admin: %w", err)
	}
	a.Active = active != 0
	a.LastLogin = timePtr(lastLogin)
	a.DateCreated = fromMillis(created)
	return &a, nil
}

// Create inserts an account.
func (s *AdminStore) Create(ctx context.Context, a *admin.Account) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO admins (id, username, email, password_hash, active,
		last_login, login_count, date_created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.Email, a.PasswordHash, boolInt(a.Active), nullMillis(a.LastLogin),
		a.LoginCount, toMillis(a.DateCreated))
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// RecordLogin stamps a successful login.
func (s *AdminStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE admins SET last_login = ?, login_count = login_count + 1 WHERE id = ?", toMillis(at), id)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return requireRow(res, admin.ErrNotFound)
}
