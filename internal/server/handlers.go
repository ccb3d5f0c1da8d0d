package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	g "maragu.dev/gomponents"

	"github.com/tinywasm/authform"
	"github.com/tinywasm/authform/internal/middleware"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	u, _, ok := s.currentUser(r)
	if !ok {
		http.Redirect(w, r, authform.SignIn.Path(), http.StatusSeeOther)
		return
	}
	renderHTML(w, http.StatusOK, homePage(u.DisplayName(), csrfField(r)))
}

func (s *Server) formPage(mode authform.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := s.currentUser(r); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		c := authform.NewController(mode, s.store, nil, s.requestLogger(r))
		s.renderForm(w, r, http.StatusOK, c)
	}
}

func (s *Server) submit(mode authform.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderHTML(w, http.StatusBadRequest, errorPage("Bad Request", "The form could not be read."))
			return
		}

		logger := s.requestLogger(r)
		nav := &redirectNavigator{}
		c := authform.NewController(mode, s.store, nav, logger)
		c.Bind(r.PostForm)

		ctx := authform.WithSessionMeta(r.Context(), authform.SessionMeta{
			IP:        middleware.ClientIP(r, s.trustProxy),
			UserAgent: r.UserAgent(),
		})
		outcome, err := c.Submit(ctx)

		var verr *authform.ValidationError
		switch {
		case errors.As(err, &verr):
			s.renderForm(w, r, http.StatusUnprocessableEntity, c)
		case err != nil:
			logger.ErrorContext(r.Context(), "submit auth form", "mode", mode.String(), "err", err)
			renderHTML(w, http.StatusInternalServerError, errorPage("Something went wrong", "Please try again later."))
		case outcome == authform.OutcomeNavigated:
			s.setSessionCookie(w, *c.Result().Session)
			path, _ := nav.target()
			http.Redirect(w, r, path, http.StatusSeeOther)
		case outcome == authform.OutcomeLinkAccount:
			s.setSessionCookie(w, c.Result().Account.Session)
			s.renderForm(w, r, http.StatusOK, c)
		default:
			s.renderForm(w, r, http.StatusOK, c)
		}
	}
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, c *authform.Controller) {
	body := c.Render(authform.PageOptions{
		Hidden:    []g.Node{csrfField(r)},
		Providers: s.store.Providers(),
	})
	renderHTML(w, status, page(c.Mode().Title(), body))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.store.SessionCookieName()); err == nil && cookie.Value != "" {
		if err := s.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			s.requestLogger(r).ErrorContext(r.Context(), "delete session", "err", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, authform.SignIn.Path(), http.StatusSeeOther)
}

func (s *Server) oauthStart(w http.ResponseWriter, r *http.Request) {
	url, err := s.store.BeginOAuth(r.Context(), chi.URLParam(r, "provider"))
	if err != nil {
		if errors.Is(err, authform.ErrProviderNotFound) {
			renderHTML(w, http.StatusNotFound, errorPage("Unknown Provider", "This sign-in provider is not available."))
			return
		}
		s.requestLogger(r).ErrorContext(r.Context(), "begin oauth", "err", err)
		renderHTML(w, http.StatusInternalServerError, errorPage("Something went wrong", "Please try again later."))
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (s *Server) oauthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()
	if q.Get("error") != "" {
		http.Redirect(w, r, authform.SignIn.Path(), http.StatusSeeOther)
		return
	}

	ctx := authform.WithSessionMeta(r.Context(), authform.SessionMeta{
		IP:        middleware.ClientIP(r, s.trustProxy),
		UserAgent: r.UserAgent(),
	})
	account, isNew, err := s.store.CompleteOAuth(ctx, provider, q.Get("state"), q.Get("code"))
	switch {
	case errors.Is(err, authform.ErrInvalidOAuthState), errors.Is(err, authform.ErrProviderNotFound):
		renderHTML(w, http.StatusBadRequest, errorPage("Sign-in Failed", "The sign-in link is invalid or has expired."))
		return
	case errors.Is(err, authform.ErrSuspended):
		renderHTML(w, http.StatusForbidden, errorPage("Sign-in Failed", "This account is suspended."))
		return
	case err != nil:
		s.requestLogger(r).ErrorContext(r.Context(), "complete oauth", "provider", provider, "err", err)
		renderHTML(w, http.StatusBadGateway, errorPage("Sign-in Failed", "The provider could not confirm your identity."))
		return
	}

	s.requestLogger(r).InfoContext(r.Context(), "oauth sign-in", "provider", provider, "user_id", account.User.ID, "new_user", isNew)
	s.setSessionCookie(w, account.Session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
