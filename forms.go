package authform

// Field names shared by the form state, the rendered inputs and the posted
// form values.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldAddress1    = "address1"
	FieldCity        = "city"
	FieldState       = "state"
	FieldPostalCode  = "postalCode"
	FieldDateOfBirth = "dateOfBirth"
	FieldSSN         = "ssn"
	FieldEmail       = "email"
	FieldPassword    = "password"
)

// SignInData is validated by the sign-in schema and sent to AccountService.SignIn.
type SignInData struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// SignUpData is validated by the sign-up schema and sent to AccountService.SignUp.
type SignUpData struct {
	FirstName   string `form:"firstName" validate:"required,min=3"`
	LastName    string `form:"lastName" validate:"required,min=3"`
	Address1    string `form:"address1" validate:"required,max=50"`
	City        string `form:"city" validate:"required,max=50"`
	State       string `form:"state" validate:"required,len=2,alpha"`
	PostalCode  string `form:"postalCode" validate:"required,min=3,max=6"`
	DateOfBirth string `form:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	SSN         string `form:"ssn" validate:"required,min=3"`
	Email       string `form:"email" validate:"required,email"`
	Password    string `form:"password" validate:"required,min=8,maxbytes=72"`
}

// FormState maps field names to their current values.
type FormState map[string]string

func (s FormState) signIn() SignInData {
	return SignInData{
		Email:    s[FieldEmail],
		Password: s[FieldPassword],
	}
}

func (s FormState) signUp() SignUpData {
	return SignUpData{
		FirstName:   s[FieldFirstName],
		LastName:    s[FieldLastName],
		Address1:    s[FieldAddress1],
		City:        s[FieldCity],
		State:       s[FieldState],
		PostalCode:  s[FieldPostalCode],
		DateOfBirth: s[FieldDateOfBirth],
		SSN:         s[FieldSSN],
		Email:       s[FieldEmail],
		Password:    s[FieldPassword],
	}
}

func (s FormState) clone() FormState {
	out := make(FormState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
