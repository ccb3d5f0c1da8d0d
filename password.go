package authform

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultHashCost   = bcrypt.DefaultCost
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
)

// authenticate checks email and password against the local identity.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Store) authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if u.Status == "suspended" {
		return User{}, ErrSuspended
	}
	if err := s.VerifyPassword(ctx, u.ID, password); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) SetPassword(ctx context.Context, userID, password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.PasswordHashCost)
	if err != nil {
		return err
	}
	return s.upsertIdentity(ctx, userID, providerLocal, string(hash), "")
}

func (s *Store) VerifyPassword(ctx context.Context, userID, password string) error {
	identity, err := s.getIdentityByUserAndProvider(ctx, userID, providerLocal)
	if err != nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.ProviderID), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
