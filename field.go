package authform

import (
	"net/url"
	"strings"

	g "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	h "maragu.dev/gomponents/html"
)

// Field describes one labeled input of the form.
type Field struct {
	Name        string
	Label       string
	Placeholder string
	Type        string
}

var (
	firstNameField   = Field{Name: FieldFirstName, Label: "First Name", Placeholder: "Enter your first name.", Type: "text"}
	lastNameField    = Field{Name: FieldLastName, Label: "Last Name", Placeholder: "Enter your last name.", Type: "text"}
	address1Field    = Field{Name: FieldAddress1, Label: "Address", Placeholder: "Enter your address.", Type: "text"}
	cityField        = Field{Name: FieldCity, Label: "City", Placeholder: "Enter your city.", Type: "text"}
	stateField       = Field{Name: FieldState, Label: "State", Placeholder: "ex: NY", Type: "text"}
	postalCodeField  = Field{Name: FieldPostalCode, Label: "Postal Code", Placeholder: "ex: 11101", Type: "text"}
	dateOfBirthField = Field{Name: FieldDateOfBirth, Label: "Date of Birth", Placeholder: "yyyy-mm-dd", Type: "text"}
	ssnField         = Field{Name: FieldSSN, Label: "SSN", Placeholder: "ex: 1234", Type: "text"}
	emailField       = Field{Name: FieldEmail, Label: "Email", Placeholder: "Enter your email.", Type: "email"}
	passwordField    = Field{Name: FieldPassword, Label: "Password", Placeholder: "Enter your password.", Type: "password"}
)

// ChangeFunc receives a field edit. The controller owns the value.
type ChangeFunc func(name, value string)

// Read forwards the submitted value of f, if any, to onChange. Surrounding
// whitespace is dropped from everything but passwords.
func (f Field) Read(values url.Values, onChange ChangeFunc) {
	if !values.Has(f.Name) {
		return
	}
	v := values.Get(f.Name)
	if f.Type != "password" {
		v = strings.TrimSpace(v)
	}
	onChange(f.Name, v)
}

// FieldView is a read-only snapshot of a field for rendering.
type FieldView struct {
	Field
	Value   string
	Message string
}

// RenderField renders the label, the bound input and the field message.
func RenderField(v FieldView) g.Node {
	id := "field-" + v.Name
	value := v.Value
	if v.Type == "password" {
		value = ""
	}
	return h.Div(
		h.Class("form-item"),
		h.Label(h.Class("form-label"), h.For(id), g.Text(v.Label)),
		h.Div(
			h.Class("flex w-full flex-col"),
			h.Input(
				h.ID(id),
				h.Name(v.Name),
				h.Type(v.Type),
				h.Class("input-class"),
				h.Placeholder(v.Placeholder),
				g.If(value != "", h.Value(value)),
				data.Bind(v.Name),
			),
			g.If(v.Message != "", h.P(h.Class("form-message mt-2"), g.Text(v.Message))),
		),
	)
}
