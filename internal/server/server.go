// Package server mounts the sign-in and sign-up forms over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinywasm/authform"
	"github.com/tinywasm/authform/internal/middleware"
)

type Options struct {
	Store      *authform.Store
	Logger     *slog.Logger
	Production bool
	TrustProxy bool
	RateLimit  middleware.RateLimitConfig
}

type Server struct {
	store      *authform.Store
	logger     *slog.Logger
	production bool
	trustProxy bool
	rateLimit  middleware.RateLimitConfig
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rl := opts.RateLimit
	if rl.RequestsPerSecond <= 0 {
		rl.RequestsPerSecond = 5
	}
	if rl.Burst <= 0 {
		rl.Burst = 10
	}
	rl.TrustProxy = opts.TrustProxy
	return &Server{
		store:      opts.Store,
		logger:     logger,
		production: opts.Production,
		trustProxy: opts.TrustProxy,
		rateLimit:  rl,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", s.health)
	r.Get("/static/icons/logo.svg", serveLogo)

	r.Group(func(r chi.Router) {
		r.Use(s.EnsureCSRFToken)

		r.Get("/", s.home)
		r.Get(authform.SignIn.Path(), s.formPage(authform.SignIn))
		r.Get(authform.SignUp.Path(), s.formPage(authform.SignUp))
		r.Get("/oauth/{provider}", s.oauthStart)
		r.Get("/oauth/{provider}/callback", s.oauthCallback)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireCSRF)
			r.Post("/logout", s.logout)

			r.With(middleware.RateLimiter(s.rateLimit)).Post(authform.SignIn.Path(), s.submit(authform.SignIn))
			r.With(middleware.RateLimiter(s.rateLimit)).Post(authform.SignUp.Path(), s.submit(authform.SignUp))
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		renderHTML(w, http.StatusNotFound, errorPage("Not Found", "The page you are looking for does not exist."))
	})
	return r
}

// requestLogger tags log lines with the request id.
func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	return s.logger.With("request_id", middleware.RequestIDFromContext(r.Context()))
}
