package authform

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a field name to the message shown under that field.
type FieldErrors map[string]string

// ValidationError is returned by Submit when the form state does not satisfy
// the active schema. No remote call is made.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

// Schema is the set of fields a mode renders and the rules they must pass.
type Schema struct {
	mode   Mode
	fields []Field
}

var (
	signInSchema = &Schema{mode: SignIn, fields: []Field{emailField, passwordField}}
	signUpSchema = &Schema{mode: SignUp, fields: []Field{
		firstNameField, lastNameField,
		address1Field,
		cityField,
		stateField, postalCodeField,
		dateOfBirthField, ssnField,
		emailField,
		passwordField,
	}}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

// maxBytes bounds the encoded length of a string, e.g. `maxbytes=72`.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// SchemaFor returns the ruleset for m. Invalid modes fall back to sign-in.
func SchemaFor(m Mode) *Schema {
	if m == SignUp {
		return signUpSchema
	}
	return signInSchema
}

func (s *Schema) Mode() Mode { return s.mode }

// Fields returns the fields in render order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Has reports whether name is part of the schema.
func (s *Schema) Has(name string) bool {
	for _, f := range s.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Validate checks state against the schema. The returned error is a
// *ValidationError carrying one message per failing field.
func (s *Schema) Validate(state FormState) error {
	var target any
	switch s.mode {
	case SignUp:
		d := state.signUp()
		target = &d
	default:
		d := state.signIn()
		target = &d
	}

	err := validate.Struct(target)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = messageFor(fe)
	}
	return &ValidationError{Fields: fields}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "min":
		return "Must contain at least " + fe.Param() + " characters"
	case "max":
		return "Must contain at most " + fe.Param() + " characters"
	case "maxbytes":
		return "Must be at most " + fe.Param() + " bytes long"
	case "len":
		return "Must contain exactly " + fe.Param() + " characters"
	case "alpha":
		return "Must contain letters only"
	case "datetime":
		return "Must be a date in yyyy-mm-dd format"
	}
	return "Invalid value"
}
