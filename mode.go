package authform

// Mode selects which form is shown. The zero value is not a valid mode.
type Mode uint8

const (
	SignIn Mode = iota + 1
	SignUp
)

// ParseMode accepts "sign-in" or "sign-up".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "sign-in":
		return SignIn, nil
	case "sign-up":
		return SignUp, nil
	}
	return 0, ErrInvalidMode
}

func (m Mode) Valid() bool { return m == SignIn || m == SignUp }

func (m Mode) String() string {
	switch m {
	case SignIn:
		return "sign-in"
	case SignUp:
		return "sign-up"
	}
	return "invalid"
}

// Path is the route the form for m is served and posted on.
func (m Mode) Path() string { return "/" + m.String() }

func (m Mode) Title() string {
	if m == SignUp {
		return "Sign Up"
	}
	return "Sign In"
}

// Other returns the mode the footer link switches to.
func (m Mode) Other() Mode {
	if m == SignUp {
		return SignIn
	}
	return SignUp
}

func (m Mode) footerPrompt() string {
	if m == SignUp {
		return "Already have an account?"
	}
	return "Don't have an account?"
}
