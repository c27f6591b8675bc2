package form

// SubmitFunc receives the full value map of a form that passed validation.
type SubmitFunc func(values map[FieldName]string)

// Form holds the current state between events. Handlers run to completion
// one at a time, so there is no locking.
type Form struct {
	state    State
	onSubmit SubmitFunc
}

func New(fields []Field, onSubmit SubmitFunc) *Form {
	return &Form{
		state:    NewState(fields),
		onSubmit: onSubmit,
	}
}

func (f *Form) State() State { return f.state }

func (f *Form) OnFieldChange(name FieldName, value string) {
	f.state = Reduce(f.state, FieldChanged{Name: name, Value: value})
}

// OnSubmit validates the form and, when it is clean, hands the values to
// the submit callback. It reports whether the callback ran.
func (f *Form) OnSubmit() bool {
	f.state = Reduce(f.state, Submitted{})

	if f.state.HasErrors() {
		return false
	}

	if f.onSubmit != nil {
		f.onSubmit(f.state.Values())
	}

	return true
}
