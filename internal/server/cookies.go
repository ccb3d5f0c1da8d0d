package server

import (
	"net/http"

	"github.com/tinywasm/authform"
)

func (s *Server) setSessionCookie(w http.ResponseWriter, sess authform.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.store.SessionCookieName(),
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.production,
		// Lax so the cookie survives the redirect back from an OAuth provider.
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.store.SessionTTL(),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.store.SessionCookieName(),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// currentUser resolves the session cookie. ok is false for missing, unknown
// or expired sessions.
func (s *Server) currentUser(r *http.Request) (authform.User, authform.Session, bool) {
	cookie, err := r.Cookie(s.store.SessionCookieName())
	if err != nil || cookie.Value == "" {
		return authform.User{}, authform.Session{}, false
	}
	sess, err := s.store.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return authform.User{}, authform.Session{}, false
	}
	u, err := s.store.GetUser(r.Context(), sess.UserID)
	if err != nil || u.Status == "suspended" {
		return authform.User{}, authform.Session{}, false
	}
	return u, sess, true
}
