package authform

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SessionMeta describes the client a session is opened for.
type SessionMeta struct {
	IP        string
	UserAgent string
}

type sessionMetaKey struct{}

// WithSessionMeta attaches client details that SignIn and SignUp record on
// the sessions they open.
func WithSessionMeta(ctx context.Context, meta SessionMeta) context.Context {
	return context.WithValue(ctx, sessionMetaKey{}, meta)
}

func sessionMetaFromContext(ctx context.Context) SessionMeta {
	meta, _ := ctx.Value(sessionMetaKey{}).(SessionMeta)
	return meta
}

func (s *Store) CreateSession(ctx context.Context, userID string) (Session, error) {
	id, err := newID()
	if err != nil {
		return Session{}, err
	}

	meta := sessionMetaFromContext(ctx)
	now := time.Now().Unix()
	sess := Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: now + int64(s.config.SessionTTL),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
	}

	if err := s.exec.Exec(ctx,
		`INSERT INTO user_sessions (id, user_id, expires_at, ip, user_agent, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.ExpiresAt, sess.IP, sess.UserAgent, sess.CreatedAt,
	); err != nil {
		return Session{}, err
	}
	s.cache.set(sess.ID, sess)
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (Session, error) {
	if sess, ok := s.cache.get(id); ok {
		if sess.ExpiresAt < time.Now().Unix() {
			s.cache.delete(id)
			return Session{}, ErrSessionExpired
		}
		return sess, nil
	}

	var sess Session
	err := s.exec.QueryRow(ctx,
		"SELECT id, user_id, expires_at, COALESCE(ip, ''), COALESCE(user_agent, ''), created_at FROM user_sessions WHERE id = ?",
		id,
	).Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.IP, &sess.UserAgent, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}

	if sess.ExpiresAt < time.Now().Unix() {
		return Session{}, ErrSessionExpired
	}

	s.cache.set(sess.ID, sess)
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.cache.delete(id)
	return s.exec.Exec(ctx, "DELETE FROM user_sessions WHERE id = ?", id)
}

func (s *Store) PurgeExpiredSessions(ctx context.Context) error {
	now := time.Now().Unix()
	s.cache.evictExpired(now)
	return s.exec.Exec(ctx, "DELETE FROM user_sessions WHERE expires_at < ?", now)
}
