package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	_ "modernc.org/sqlite"

	"github.com/tinywasm/authform"
	"github.com/tinywasm/authform/internal/middleware"
)

type fakeProvider struct{}

func (fakeProvider) Name() string { return "google" }

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (fakeProvider) ExchangeCode(context.Context, string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "tok"}, nil
}

func (fakeProvider) GetUserInfo(context.Context, *oauth2.Token) (authform.OAuthUserInfo, error) {
	return authform.OAuthUserInfo{ID: "g-1", Email: "oauth@example.com", Name: "Olivia Auth"}, nil
}

type testEnv struct {
	store   *authform.Store
	handler http.Handler
	csrf    *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := authform.Open(context.Background(), authform.NewDBExecutor(db), authform.Config{
		PasswordHashCost: bcrypt.MinCost,
		OAuthProviders:   []authform.OAuthProvider{fakeProvider{}},
	})
	require.NoError(t, err)

	srv := New(Options{
		Store:     store,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimit: middleware.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	})
	env := &testEnv{store: store, handler: srv.Handler()}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/sign-in", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	env.csrf = findCookie(rec, csrfCookieName)
	require.NotNil(t, env.csrf)
	return env
}

func (e *testEnv) do(r *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

func (e *testEnv) post(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	form.Set(csrfFormField, e.csrf.Value)
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(r, append([]*http.Cookie{e.csrf}, cookies...)...)
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func signUpForm() url.Values {
	return url.Values{
		"firstName":   {"Adrian"},
		"lastName":    {"Hajdin"},
		"address1":    {"12 Main Street"},
		"city":        {"New York"},
		"state":       {"NY"},
		"postalCode":  {"11101"},
		"dateOfBirth": {"1990-01-31"},
		"ssn":         {"1234"},
		"email":       {"adrian@example.com"},
		"password":    {"password123"},
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestFormPages(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/sign-up", nil), env.csrf)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Sign Up | Horizon</title>")
	assert.Contains(t, body, `name="csrf_token" value="`+env.csrf.Value+`"`)
	assert.Equal(t, 10, strings.Count(body, `class="input-class"`))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/sign-in", nil), env.csrf)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/oauth/google"`)
}

func TestSubmit_RequiresCSRF(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader("email=a%40b.com&password=secret1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(r)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	r = httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader("email=a%40b.com&password=secret1&csrf_token=wrong"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = env.do(r, env.csrf)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSignUpThenHome(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/sign-up", signUpForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Link Account")

	session := findCookie(rec, "session")
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, 86400, session.MaxAge)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/", nil), env.csrf, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome, Adrian Hajdin")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/sign-in", nil), env.csrf, session)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSignUp_ValidationFailure(t *testing.T) {
	env := newTestEnv(t)
	form := signUpForm()
	form.Del("ssn")

	rec := env.post("/sign-up", form)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required")
	assert.Nil(t, findCookie(rec, "session"))

	_, err := env.store.GetUserByEmail(context.Background(), "adrian@example.com")
	assert.ErrorIs(t, err, authform.ErrNotFound)
}

func TestSignUp_DuplicateEmailIsRemoteFailure(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.post("/sign-up", signUpForm()).Code)

	rec := env.post("/sign-up", signUpForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert"`)
	assert.NotContains(t, rec.Body.String(), "Link Account")
	assert.Nil(t, findCookie(rec, "session"))
}

func TestSignIn(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.post("/sign-up", signUpForm()).Code)

	rec := env.post("/sign-in", url.Values{"email": {"adrian@example.com"}, "password": {"password123"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	session := findCookie(rec, "session")
	require.NotNil(t, session)

	sess, err := env.store.GetSession(context.Background(), session.Value)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", sess.IP)
}

func TestSignIn_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.post("/sign-up", signUpForm()).Code)

	rec := env.post("/sign-in", url.Values{"email": {"adrian@example.com"}, "password": {"not-the-password"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert"`)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Nil(t, findCookie(rec, "session"))
}

func TestSignIn_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)
	rec := env.post("/sign-in", url.Values{"email": {"nope"}, "password": {"secret1"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email address")
}

func TestHome_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/sign-in", rec.Header().Get("Location"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/", nil), &http.Cookie{Name: "session", Value: "bogus"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	session := findCookie(env.post("/sign-up", signUpForm()), "session")
	require.NotNil(t, session)

	rec := env.post("/logout", url.Values{}, session)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
	cleared := findCookie(rec, "session")
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	_, err := env.store.GetSession(context.Background(), session.Value)
	assert.ErrorIs(t, err, authform.ErrSessionNotFound)
}

func TestOAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/oauth/google", nil), env.csrf)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	callback := "/oauth/google/callback?state=" + url.QueryEscape(state) + "&code=abc"
	rec = env.do(httptest.NewRequest(http.MethodGet, callback, nil), env.csrf)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.NotNil(t, findCookie(rec, "session"))

	// replaying the state fails
	rec = env.do(httptest.NewRequest(http.MethodGet, callback, nil), env.csrf)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuth_UnknownProvider(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/oauth/github", nil), env.csrf)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOAuth_ProviderError(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/oauth/google/callback?error=access_denied", nil), env.csrf)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmit_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	srv := New(Options{
		Store:     env.store,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimit: middleware.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1},
	})
	env.handler = srv.Handler()

	form := url.Values{"email": {"nope"}, "password": {"x"}}
	assert.Equal(t, http.StatusUnprocessableEntity, env.post("/sign-in", form).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.post("/sign-in", form).Code)
}
