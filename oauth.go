package authform

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

const oauthStateTTL = 600 // 10 minutes

func (s *Store) BeginOAuth(ctx context.Context, providerName string) (string, error) {
	p := s.provider(providerName)
	if p == nil {
		return "", ErrProviderNotFound
	}

	state, err := newID()
	if err != nil {
		return "", err
	}

	now := time.Now().Unix()
	if err := s.exec.Exec(ctx,
		"INSERT INTO user_oauth_states (state, provider, expires_at, created_at) VALUES (?, ?, ?, ?)",
		state, providerName, now+oauthStateTTL, now,
	); err != nil {
		return "", err
	}

	return p.AuthCodeURL(state), nil
}

// CompleteOAuth consumes state, exchanges code and resolves the provider
// account to a local user, creating one on first use. It returns the
// session opened for that user and whether the user is new.
func (s *Store) CompleteOAuth(ctx context.Context, providerName, state, code string) (*Account, bool, error) {
	if err := s.consumeState(ctx, state, providerName); err != nil {
		return nil, false, ErrInvalidOAuthState
	}

	p := s.provider(providerName)
	if p == nil {
		return nil, false, ErrProviderNotFound
	}

	token, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, false, err
	}

	info, err := p.GetUserInfo(ctx, token)
	if err != nil {
		return nil, false, err
	}

	u, isNew, err := s.resolveOAuthUser(ctx, providerName, info)
	if err != nil {
		return nil, false, err
	}
	if u.Status == "suspended" {
		return nil, false, ErrSuspended
	}

	sess, err := s.CreateSession(ctx, u.ID)
	if err != nil {
		return nil, false, err
	}
	return &Account{User: u, Session: sess}, isNew, nil
}

func (s *Store) resolveOAuthUser(ctx context.Context, providerName string, info OAuthUserInfo) (User, bool, error) {
	identity, err := s.GetIdentityByProvider(ctx, providerName, info.ID)
	if err == nil {
		u, err := s.GetUser(ctx, identity.UserID)
		return u, false, err
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	u, err := s.GetUserByEmail(ctx, info.Email)
	if err == nil {
		if err := s.CreateIdentity(ctx, u.ID, providerName, info.ID, info.Email); err != nil {
			return User{}, false, err
		}
		return u, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	first, last, _ := strings.Cut(strings.TrimSpace(info.Name), " ")
	u, err = s.CreateUser(ctx, SignUpData{Email: info.Email, FirstName: first, LastName: strings.TrimSpace(last)})
	if err != nil {
		return User{}, false, err
	}
	if err := s.CreateIdentity(ctx, u.ID, providerName, info.ID, info.Email); err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *Store) consumeState(ctx context.Context, state, provider string) error {
	var expiresAt int64
	var dbProvider string
	err := s.exec.QueryRow(ctx, "SELECT expires_at, provider FROM user_oauth_states WHERE state = ?", state).Scan(&expiresAt, &dbProvider)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidOAuthState
		}
		return err
	}

	if dbProvider != provider {
		return ErrInvalidOAuthState
	}

	// single use, deleted even when expired
	if err := s.exec.Exec(ctx, "DELETE FROM user_oauth_states WHERE state = ?", state); err != nil {
		return err
	}

	if expiresAt < time.Now().Unix() {
		return ErrInvalidOAuthState
	}
	return nil
}

func (s *Store) PurgeExpiredOAuthStates(ctx context.Context) error {
	return s.exec.Exec(ctx, "DELETE FROM user_oauth_states WHERE expires_at < ?", time.Now().Unix())
}
