package form

import "github.com/goliatone/go-formrows/pkg/visibility"

// ExternalOption toggles how an external input participates in the form.
type ExternalOption string

const (
	ExternalSubmit ExternalOption = "submit"
	ExternalURL    ExternalOption = "url"
	ExternalReset  ExternalOption = "reset"
)

// ExternalInput is a value owned by the caller that still takes part in
// submission, URL sync or reset. The form never stores it.
type ExternalInput struct {
	Name    string
	Get     func() any
	Set     func(any)
	Options []ExternalOption
	// Element is the pre-rendered markup placed at a matching inputAnchor.
	Element string
}

// Has reports whether opt is enabled.
func (e ExternalInput) Has(opt ExternalOption) bool {
	for _, candidate := range e.Options {
		if candidate == opt {
			return true
		}
	}
	return false
}

// Value reads the external value.
func (e ExternalInput) Value() any {
	if e.Get == nil {
		return nil
	}
	return e.Get()
}

// NullableValue reads the external value, reporting falsy values as nil.
func (e ExternalInput) NullableValue() any {
	value := e.Value()
	if !visibility.Truthy(value) {
		return nil
	}
	return value
}

// SetValue writes the external value when a setter is present.
func (e ExternalInput) SetValue(value any) {
	if e.Set != nil {
		e.Set(value)
	}
}

// Externals is an ordered set of external inputs.
type Externals []ExternalInput

// Find returns the first input named name.
func (x Externals) Find(name string) (ExternalInput, bool) {
	for _, input := range x {
		if input.Name == name {
			return input, true
		}
	}
	return ExternalInput{}, false
}

// With returns the inputs that enable opt, in order.
func (x Externals) With(opt ExternalOption) Externals {
	var out Externals
	for _, input := range x {
		if input.Has(opt) {
			out = append(out, input)
		}
	}
	return out
}

// ResetAll clears every input that opted into reset.
func (x Externals) ResetAll() {
	for _, input := range x.With(ExternalReset) {
		input.SetValue(nil)
	}
}
