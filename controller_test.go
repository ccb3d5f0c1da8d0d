package authform

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	mu         sync.Mutex
	signUps    []SignUpData
	signIns    []SignInData
	account    *Account
	session    *Session
	err        error
	duringCall func()
}

func (f *fakeAccounts) SignUp(_ context.Context, d SignUpData) (*Account, error) {
	f.mu.Lock()
	f.signUps = append(f.signUps, d)
	f.mu.Unlock()
	if f.duringCall != nil {
		f.duringCall()
	}
	return f.account, f.err
}

func (f *fakeAccounts) SignIn(_ context.Context, d SignInData) (*Session, error) {
	f.mu.Lock()
	f.signIns = append(f.signIns, d)
	f.mu.Unlock()
	if f.duringCall != nil {
		f.duringCall()
	}
	return f.session, f.err
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(path string) { n.paths = append(n.paths, path) }

func newTestController(mode Mode, accounts AccountService) (*Controller, *recordingNavigator, *bytes.Buffer) {
	var logs bytes.Buffer
	nav := &recordingNavigator{}
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	return NewController(mode, accounts, nav, logger), nav, &logs
}

func fill(c *Controller, state FormState) {
	for k, v := range state {
		c.Change(k, v)
	}
}

func TestController_SignInSuccessNavigatesOnce(t *testing.T) {
	accounts := &fakeAccounts{session: &Session{ID: "s1", UserID: "u1"}}
	c, nav, _ := newTestController(SignIn, accounts)
	fill(c, FormState{FieldEmail: "a@b.com", FieldPassword: "secret1"})

	outcome, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNavigated, outcome)
	assert.Equal(t, []string{"/"}, nav.paths)
	assert.Equal(t, []SignInData{{Email: "a@b.com", Password: "secret1"}}, accounts.signIns)
	assert.Equal(t, "s1", c.Result().Session.ID)

	ui := c.UI()
	assert.False(t, ui.IsLoading)
	assert.Nil(t, ui.CurrentUser)
	assert.Empty(t, ui.Failure)
	assert.Empty(t, c.Errors())
}

func TestController_SignInNilSessionStaysIdle(t *testing.T) {
	c, nav, _ := newTestController(SignIn, &fakeAccounts{})
	fill(c, FormState{FieldEmail: "a@b.com", FieldPassword: "secret1"})

	outcome, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeIdle, outcome)
	assert.Empty(t, nav.paths)
	assert.False(t, c.UI().IsLoading)
}

func TestController_SignInInvalidEmailBlocksRemoteCall(t *testing.T) {
	for _, email := range []string{"", "plainaddress", "a@", "@b.com", "a b@c.com"} {
		t.Run(email, func(t *testing.T) {
			accounts := &fakeAccounts{session: &Session{ID: "s1"}}
			c, nav, _ := newTestController(SignIn, accounts)
			fill(c, FormState{FieldEmail: email, FieldPassword: "secret1"})

			outcome, err := c.Submit(context.Background())
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, OutcomeIdle, outcome)
			assert.Contains(t, c.Errors(), FieldEmail)
			assert.Empty(t, accounts.signIns)
			assert.Empty(t, nav.paths)
			assert.False(t, c.UI().IsLoading)
		})
	}
}

func TestController_SignUpMissingFieldBlocksRemoteCall(t *testing.T) {
	for _, f := range SchemaFor(SignUp).Fields() {
		t.Run(f.Name, func(t *testing.T) {
			accounts := &fakeAccounts{account: &Account{}}
			c, _, _ := newTestController(SignUp, accounts)
			state := signUpState()
			delete(state, f.Name)
			fill(c, state)

			_, err := c.Submit(context.Background())
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, c.Errors()[f.Name])
			assert.Empty(t, accounts.signUps)
			assert.Nil(t, c.UI().CurrentUser)
		})
	}
}

func TestController_SignUpMissingSSN(t *testing.T) {
	accounts := &fakeAccounts{account: &Account{}}
	c, _, _ := newTestController(SignUp, accounts)
	state := signUpState()
	delete(state, FieldSSN)
	fill(c, state)

	_, err := c.Submit(context.Background())
	require.Error(t, err)

	errs := c.Errors()
	assert.Equal(t, FieldErrors{FieldSSN: "This field is required"}, errs)
	assert.Empty(t, accounts.signUps)

	var ssn FieldView
	for _, v := range c.Fields() {
		if v.Name == FieldSSN {
			ssn = v
		}
	}
	assert.Equal(t, "This field is required", ssn.Message)
}

func TestController_SignUpSuccessSetsCurrentUser(t *testing.T) {
	account := &Account{User: User{ID: "u1", FirstName: "Adrian", LastName: "Hajdin"}, Session: Session{ID: "s1"}}
	accounts := &fakeAccounts{account: account}
	c, nav, _ := newTestController(SignUp, accounts)
	fill(c, signUpState())

	outcome, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeLinkAccount, outcome)
	assert.Same(t, account, c.UI().CurrentUser)
	assert.Same(t, account, c.Result().Account)
	assert.Empty(t, nav.paths)
	require.Len(t, accounts.signUps, 1)
	assert.Equal(t, "1234", accounts.signUps[0].SSN)

	// the form is replaced, further submits do not call out again
	outcome, err = c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeLinkAccount, outcome)
	assert.Len(t, accounts.signUps, 1)
}

func TestController_RemoteFailureIsLoggedAndSwallowed(t *testing.T) {
	for _, mode := range []Mode{SignIn, SignUp} {
		t.Run(mode.String(), func(t *testing.T) {
			accounts := &fakeAccounts{err: ErrEmailTaken, session: &Session{ID: "s"}}
			c, nav, logs := newTestController(mode, accounts)
			if mode == SignUp {
				fill(c, signUpState())
			} else {
				fill(c, FormState{FieldEmail: "a@b.com", FieldPassword: "secret1"})
			}

			outcome, err := c.Submit(context.Background())
			require.NoError(t, err)
			assert.Equal(t, OutcomeFailed, outcome)

			ui := c.UI()
			assert.False(t, ui.IsLoading)
			assert.Nil(t, ui.CurrentUser)
			assert.Equal(t, failureMessage, ui.Failure)
			assert.Empty(t, nav.paths)
			assert.Contains(t, logs.String(), "auth form submission failed")
			assert.Contains(t, logs.String(), "mode="+mode.String())
		})
	}
}

func TestController_LoadingOnlyWhileRemoteCallInFlight(t *testing.T) {
	for _, fail := range []bool{false, true} {
		accounts := &fakeAccounts{session: &Session{ID: "s1"}}
		if fail {
			accounts.err = errors.New("network down")
		}
		c, _, _ := newTestController(SignIn, accounts)
		fill(c, FormState{FieldEmail: "a@b.com", FieldPassword: "secret1"})

		var during bool
		accounts.duringCall = func() { during = c.UI().IsLoading }

		assert.False(t, c.UI().IsLoading)
		_, err := c.Submit(context.Background())
		require.NoError(t, err)
		assert.True(t, during)
		assert.False(t, c.UI().IsLoading)
	}
}

func TestController_SubmitWhileLoadingIsRejected(t *testing.T) {
	accounts := &fakeAccounts{session: &Session{ID: "s1"}}
	c, nav, _ := newTestController(SignIn, accounts)
	fill(c, FormState{FieldEmail: "a@b.com", FieldPassword: "secret1"})

	var nestedErr error
	accounts.duringCall = func() { _, nestedErr = c.Submit(context.Background()) }

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrSubmitInFlight)
	assert.Len(t, accounts.signIns, 1)
	assert.Equal(t, []string{"/"}, nav.paths)
}

func TestController_ChangeClearsMessageAndIgnoresUnknownFields(t *testing.T) {
	c, _, _ := newTestController(SignIn, &fakeAccounts{})
	_, err := c.Submit(context.Background())
	require.Error(t, err)
	require.Contains(t, c.Errors(), FieldEmail)

	c.Change(FieldEmail, "a@b.com")
	c.Change(FieldSSN, "1234")

	assert.NotContains(t, c.Errors(), FieldEmail)
	assert.Contains(t, c.Errors(), FieldPassword)
	assert.NotContains(t, c.Values(), FieldSSN)
	assert.Equal(t, "a@b.com", c.Values()[FieldEmail])
}

func TestController_Bind(t *testing.T) {
	accounts := &fakeAccounts{session: &Session{ID: "s1"}}
	c, nav, _ := newTestController(SignIn, accounts)
	c.Bind(url.Values{
		FieldEmail:    {" a@b.com "},
		FieldPassword: {"secret1"},
		FieldSSN:      {"1234"},
		"csrf_token":  {"x"},
	})

	assert.Equal(t, FormState{FieldEmail: "a@b.com", FieldPassword: "secret1"}, c.Values())
	outcome, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNavigated, outcome)
	assert.Equal(t, []string{"/"}, nav.paths)
}

func TestController_InvalidModeFallsBackToSignIn(t *testing.T) {
	c := NewController(Mode(0), &fakeAccounts{}, nil, nil)
	assert.Equal(t, SignIn, c.Mode())
}

func TestController_FieldsNeverExposeSecretsInRender(t *testing.T) {
	c, _, _ := newTestController(SignIn, &fakeAccounts{})
	fill(c, FormState{FieldEmail: "a@b.com", FieldPassword: "hunter2-secret"})

	var buf bytes.Buffer
	require.NoError(t, c.Render(PageOptions{}).Render(&buf))
	assert.False(t, strings.Contains(buf.String(), "hunter2-secret"))
}

func TestController_SignUpOverlongPasswordIsFieldError(t *testing.T) {
	s := newTestStore(t, Config{})
	c, _, logs := newTestController(SignUp, s)
	state := signUpState()
	state[FieldPassword] = strings.Repeat("p", 80)
	fill(c, state)

	outcome, err := c.Submit(context.Background())
	assert.Equal(t, OutcomeIdle, outcome)
	fields := fieldErrors(t, err)
	assert.Equal(t, "Must be at most 72 bytes long", fields[FieldPassword])
	assert.Empty(t, c.UI().Failure)
	assert.Empty(t, logs.String())

	_, err = s.GetUserByEmail(context.Background(), state[FieldEmail])
	assert.ErrorIs(t, err, ErrNotFound)
}
