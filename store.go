package authform

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/oauth2"
)

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address1    string `json:"address1,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	SSN         string `json:"-"`
	Status      string `json:"status"` // "active", "suspended"
	CreatedAt   int64  `json:"created_at"`
}

func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type Identity struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
	Email      string `json:"email,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// Account is the identity marker returned by a successful sign-up: the new
// user and the session opened for it.
type Account struct {
	User    User    `json:"user"`
	Session Session `json:"session"`
}

type OAuthUserInfo struct {
	ID    string
	Email string
	Name  string
}

type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (OAuthUserInfo, error)
}

type Config struct {
	SessionCookieName string // default: "session"
	SessionTTL        int    // seconds, default: 86400 (24h)
	PasswordHashCost  int    // default: bcrypt.DefaultCost
	OAuthProviders    []OAuthProvider
}

// Store is the SQL backed account service used by the sign-in and sign-up
// forms.
type Store struct {
	exec   Executor
	cache  *sessionCache
	config Config

	providersMu sync.RWMutex
	providers   map[string]OAuthProvider
}

var _ AccountService = (*Store)(nil)

// Open runs the migrations on exec, warms the session cache and registers
// the configured OAuth providers.
func Open(ctx context.Context, exec Executor, cfg Config) (*Store, error) {
	if cfg.SessionCookieName == "" {
		cfg.SessionCookieName = "session"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 86400
	}
	if cfg.PasswordHashCost == 0 {
		cfg.PasswordHashCost = defaultHashCost
	}
	if err := runMigrations(ctx, exec); err != nil {
		return nil, err
	}
	s := &Store{
		exec:      exec,
		cache:     newSessionCache(),
		config:    cfg,
		providers: make(map[string]OAuthProvider),
	}
	for _, p := range cfg.OAuthProviders {
		s.registerProvider(p)
	}
	if err := s.cache.warmUp(ctx, exec); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) SessionCookieName() string { return s.config.SessionCookieName }

func (s *Store) SessionTTL() int { return s.config.SessionTTL }

func (s *Store) registerProvider(p OAuthProvider) {
	s.providersMu.Lock()
	defer s.providersMu.Unlock()
	s.providers[p.Name()] = p
}

func (s *Store) provider(name string) OAuthProvider {
	s.providersMu.RLock()
	defer s.providersMu.RUnlock()
	return s.providers[name]
}

// Providers returns the registered OAuth provider names.
func (s *Store) Providers() []string {
	s.providersMu.RLock()
	defer s.providersMu.RUnlock()
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
