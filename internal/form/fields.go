package form

import "iter"

type FieldName string

const (
	FieldFullName        FieldName = "name"
	FieldEmail           FieldName = "email"
	FieldPassword        FieldName = "password"
	FieldConfirmPassword FieldName = "confirmPassword"
)

type InputType string

const (
	InputText     InputType = "text"
	InputEmail    InputType = "email"
	InputPassword InputType = "password"
)

// Field describes one input of the form.
type Field struct {
	Name     FieldName
	Label    string
	Type     InputType
	Required bool
}

// RegistrationFields is the default employee registration form.
var RegistrationFields = []Field{
	{Name: FieldFullName, Label: "Full Name", Type: InputText},
	{Name: FieldEmail, Label: "Email", Type: InputEmail, Required: true},
	{Name: FieldPassword, Label: "Password", Type: InputPassword, Required: true},
	{Name: FieldConfirmPassword, Label: "Confirm Password", Type: InputPassword, Required: true},
}

// All yields the descriptors in order. The sequence can be ranged over any
// number of times.
func All(fields []Field) iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for _, f := range fields {
			if !yield(f) {
				return
			}
		}
	}
}

func contains(fields []Field, name FieldName) bool {
	for f := range All(fields) {
		if f.Name == name {
			return true
		}
	}
	return false
}
