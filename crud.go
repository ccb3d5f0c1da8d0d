package authform

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/tinywasm/unixid"
)

const userColumns = "id, COALESCE(email, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), " +
	"COALESCE(address1, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(postal_code, ''), " +
	"COALESCE(date_of_birth, ''), COALESCE(ssn, ''), status, created_at"

// nullableStr converts "" to nil so SQLite stores NULL instead of an empty string.
func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func newID() (string, error) {
	u, err := unixid.NewUnixID()
	if err != nil {
		return "", err
	}
	return u.GetNewID(), nil
}

// CreateUser inserts the profile part of a sign-up. The password is stored
// separately as the local identity.
func (s *Store) CreateUser(ctx context.Context, d SignUpData) (User, error) {
	id, err := newID()
	if err != nil {
		return User{}, err
	}
	now := time.Now().Unix()
	email := normalizeEmail(d.Email)

	if err := s.exec.Exec(ctx,
		`INSERT INTO users (id, email, first_name, last_name, address1, city, state, postal_code, date_of_birth, ssn, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, nullableStr(email), d.FirstName, d.LastName, d.Address1, d.City, strings.ToUpper(d.State),
		d.PostalCode, d.DateOfBirth, d.SSN, now,
	); err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return User{
		ID:          id,
		Email:       email,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Address1:    d.Address1,
		City:        d.City,
		State:       strings.ToUpper(d.State),
		PostalCode:  d.PostalCode,
		DateOfBirth: d.DateOfBirth,
		SSN:         d.SSN,
		Status:      "active",
		CreatedAt:   now,
	}, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.exec.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.exec.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", normalizeEmail(email)))
}

func (s *Store) scanUser(row Scanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Address1, &u.City, &u.State,
		&u.PostalCode, &u.DateOfBirth, &u.SSN, &u.Status, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *Store) SuspendUser(ctx context.Context, id string) error {
	return s.exec.Exec(ctx, "UPDATE users SET status = 'suspended' WHERE id = ?", id)
}

func (s *Store) ReactivateUser(ctx context.Context, id string) error {
	return s.exec.Exec(ctx, "UPDATE users SET status = 'active' WHERE id = ?", id)
}

// deleteUser removes a user with its identities and sessions. Child rows are
// deleted explicitly since foreign keys may be off on the connection.
func (s *Store) deleteUser(ctx context.Context, id string) error {
	for _, q := range []string{
		"DELETE FROM user_sessions WHERE user_id = ?",
		"DELETE FROM user_identities WHERE user_id = ?",
		"DELETE FROM users WHERE id = ?",
	} {
		if err := s.exec.Exec(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint: unique") ||
		strings.Contains(err.Error(), "duplicate key")
}
