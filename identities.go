package authform

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	providerLocal = "local"
)

func (s *Store) CreateIdentity(ctx context.Context, userID, provider, providerID, email string) error {
	id, err := newID()
	if err != nil {
		return err
	}
	return s.exec.Exec(ctx,
		`INSERT INTO user_identities (id, user_id, provider, provider_id, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, provider, providerID, nullableStr(email), time.Now().Unix(),
	)
}

func (s *Store) GetIdentityByProvider(ctx context.Context, provider, providerID string) (Identity, error) {
	return scanIdentity(s.exec.QueryRow(ctx,
		"SELECT id, user_id, provider, provider_id, COALESCE(email, ''), created_at FROM user_identities WHERE provider = ? AND provider_id = ?",
		provider, providerID,
	))
}

func (s *Store) getIdentityByUserAndProvider(ctx context.Context, userID, provider string) (Identity, error) {
	return scanIdentity(s.exec.QueryRow(ctx,
		"SELECT id, user_id, provider, provider_id, COALESCE(email, ''), created_at FROM user_identities WHERE user_id = ? AND provider = ?",
		userID, provider,
	))
}

func scanIdentity(row Scanner) (Identity, error) {
	var i Identity
	if err := row.Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderID, &i.Email, &i.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, err
	}
	return i, nil
}

func (s *Store) GetUserIdentities(ctx context.Context, userID string) ([]Identity, error) {
	rows, err := s.exec.Query(ctx,
		"SELECT id, user_id, provider, provider_id, COALESCE(email, ''), created_at FROM user_identities WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		var i Identity
		if err := rows.Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderID, &i.Email, &i.CreatedAt); err != nil {
			return nil, err
		}
		identities = append(identities, i)
	}
	return identities, rows.Err()
}

func (s *Store) upsertIdentity(ctx context.Context, userID, provider, providerID, email string) error {
	_, err := s.getIdentityByUserAndProvider(ctx, userID, provider)
	switch {
	case err == nil:
		return s.exec.Exec(ctx,
			"UPDATE user_identities SET provider_id = ?, email = ? WHERE user_id = ? AND provider = ?",
			providerID, nullableStr(email), userID, provider)
	case errors.Is(err, ErrNotFound):
		return s.CreateIdentity(ctx, userID, provider, providerID, email)
	default:
		return err
	}
}
