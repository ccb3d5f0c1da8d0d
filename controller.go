package authform

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
)

// Navigator moves the client to another path. Calls are fire and forget.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Outcome is the state a submission settles in.
type Outcome uint8

const (
	OutcomeIdle Outcome = iota
	OutcomeLinkAccount
	OutcomeNavigated
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLinkAccount:
		return "link-account"
	case OutcomeNavigated:
		return "navigated"
	case OutcomeFailed:
		return "failed"
	}
	return "idle"
}

// UIState is the controller state the page is rendered from.
type UIState struct {
	IsLoading   bool
	CurrentUser *Account
	Failure     string
}

// SubmissionResult holds what the last successful remote call returned:
// the new account for sign-up or the session for sign-in.
type SubmissionResult struct {
	Account *Account
	Session *Session
}

// RemoteCallError wraps a failed sign-up or sign-in call.
type RemoteCallError struct {
	Mode Mode
	Err  error
}

func (e *RemoteCallError) Error() string { return e.Mode.String() + ": " + e.Err.Error() }

func (e *RemoteCallError) Unwrap() error { return e.Err }

const failureMessage = "Something went wrong. Please check your details and try again."

// Controller owns the state of one mounted auth form.
type Controller struct {
	mode     Mode
	schema   *Schema
	accounts AccountService
	nav      Navigator
	log      *slog.Logger

	mu     sync.Mutex
	values FormState
	errors FieldErrors
	ui     UIState
	result SubmissionResult
}

func NewController(mode Mode, accounts AccountService, nav Navigator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	schema := SchemaFor(mode)
	values := make(FormState, len(schema.fields))
	for _, f := range schema.fields {
		values[f.Name] = ""
	}
	return &Controller{
		mode:     schema.mode,
		schema:   schema,
		accounts: accounts,
		nav:      nav,
		log:      logger,
		values:   values,
	}
}

func (c *Controller) Mode() Mode { return c.mode }

// Change sets one field value and clears its message. Names outside the
// active schema are ignored.
func (c *Controller) Change(name, value string) {
	if !c.schema.Has(name) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
	delete(c.errors, name)
}

// Bind applies every schema field present in values.
func (c *Controller) Bind(values url.Values) {
	for _, f := range c.schema.fields {
		f.Read(values, c.Change)
	}
}

func (c *Controller) UI() UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ui
}

func (c *Controller) Values() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values.clone()
}

func (c *Controller) Errors() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(FieldErrors, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

func (c *Controller) Result() SubmissionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Fields returns one view per schema field in render order.
func (c *Controller) Fields() []FieldView {
	c.mu.Lock()
	defer c.mu.Unlock()
	views := make([]FieldView, 0, len(c.schema.fields))
	for _, f := range c.schema.fields {
		views = append(views, FieldView{Field: f, Value: c.values[f.Name], Message: c.errors[f.Name]})
	}
	return views
}

// Submit validates the form and runs the remote call for the mode.
//
// A failing schema returns a *ValidationError and leaves the loading flag
// untouched. Remote failures are logged and reported as OutcomeFailed with a
// nil error.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.ui.IsLoading {
		c.mu.Unlock()
		return OutcomeIdle, ErrSubmitInFlight
	}
	if c.ui.CurrentUser != nil {
		c.mu.Unlock()
		return OutcomeLinkAccount, nil
	}
	state := c.values.clone()
	if err := c.schema.Validate(state); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.errors = verr.Fields
		}
		c.mu.Unlock()
		return OutcomeIdle, err
	}
	c.errors = nil
	c.ui.Failure = ""
	c.ui.IsLoading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.ui.IsLoading = false
		c.mu.Unlock()
	}()

	if c.mode == SignUp {
		return c.signUp(ctx, state)
	}
	return c.signIn(ctx, state)
}

func (c *Controller) signUp(ctx context.Context, state FormState) (Outcome, error) {
	account, err := c.accounts.SignUp(ctx, state.signUp())
	if err != nil {
		return c.fail(ctx, err)
	}
	if account == nil {
		return OutcomeIdle, nil
	}
	c.mu.Lock()
	c.ui.CurrentUser = account
	c.result = SubmissionResult{Account: account}
	c.mu.Unlock()
	return OutcomeLinkAccount, nil
}

func (c *Controller) signIn(ctx context.Context, state FormState) (Outcome, error) {
	sess, err := c.accounts.SignIn(ctx, state.signIn())
	if err != nil {
		return c.fail(ctx, err)
	}
	if sess == nil {
		return OutcomeIdle, nil
	}
	c.mu.Lock()
	c.result = SubmissionResult{Session: sess}
	c.mu.Unlock()
	c.nav.Navigate("/")
	return OutcomeNavigated, nil
}

func (c *Controller) fail(ctx context.Context, err error) (Outcome, error) {
	rerr := &RemoteCallError{Mode: c.mode, Err: err}
	c.log.ErrorContext(ctx, "auth form submission failed", "mode", c.mode.String(), "err", rerr)
	c.mu.Lock()
	c.ui.Failure = failureMessage
	c.mu.Unlock()
	return OutcomeFailed, nil
}
