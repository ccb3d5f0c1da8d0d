package authform

import "context"

// AccountService is the remote side of the form: account creation for
// sign-up and credential checks for sign-in.
type AccountService interface {
	// SignUp creates the account and returns its identity marker.
	SignUp(ctx context.Context, d SignUpData) (*Account, error)
	// SignIn returns the opened session, or nil when the service declines
	// without an error.
	SignIn(ctx context.Context, d SignInData) (*Session, error)
}

func (s *Store) SignUp(ctx context.Context, d SignUpData) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(d.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	u, err := s.CreateUser(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := s.SetPassword(ctx, u.ID, d.Password); err != nil {
		_ = s.deleteUser(ctx, u.ID)
		return nil, err
	}
	sess, err := s.CreateSession(ctx, u.ID)
	if err != nil {
		_ = s.deleteUser(ctx, u.ID)
		return nil, err
	}
	return &Account{User: u, Session: sess}, nil
}

func (s *Store) SignIn(ctx context.Context, d SignInData) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := s.authenticate(ctx, d.Email, d.Password)
	if err != nil {
		return nil, err
	}
	sess, err := s.CreateSession(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}
