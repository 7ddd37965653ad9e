package form

import (
	"github.com/goliatone/go-formrows/pkg/naming"
	"github.com/goliatone/go-formrows/pkg/schema"
)

// KeyEnter is the key name that triggers submission.
const KeyEnter = "Enter"

// preventEnterKey lets a field opt out of Enter submission via staticProps.
const preventEnterKey = "preventEnterSubmit"

// KeyEvent is a keyboard event delivered to a binding.
type KeyEvent struct {
	Key string
	// Composing is set while an input method editor is composing text.
	Composing bool
}

// Props is the capability contract handed to widgets.
type Props struct {
	Name           string
	Value          any
	Type           schema.FieldType
	Component      string
	Label          string
	Placeholder    string
	ClassName      string
	LabelPlacement string
	Disabled       bool
	Invalid        bool
	Message        string
	Options        []schema.Choice
	Rules          []schema.Rule
	Layout         schema.Layout
	// Extra holds static passthrough props overlaid with dynamic props.
	Extra map[string]any
}

// Binder binds schema fields to a store. Submit is invoked on Enter; a nil
// Submit or EnterSubmit=false suppresses Enter submission.
type Binder struct {
	Store       *Store
	Policy      DisabledPolicy
	EnterSubmit bool
	Submit      func()
}

// Bind returns the binding of field under key.
func (b Binder) Bind(key naming.Key, field schema.Field) *Binding {
	return &Binding{
		key:         key,
		name:        key.Wire(),
		field:       field,
		store:       b.Store,
		policy:      b.Policy,
		enterSubmit: b.EnterSubmit && b.Submit != nil,
		submit:      b.Submit,
	}
}

// Binding connects one field to the store.
type Binding struct {
	key         naming.Key
	name        string
	field       schema.Field
	store       *Store
	policy      DisabledPolicy
	enterSubmit bool
	submit      func()
}

// Name returns the wire name.
func (b *Binding) Name() string { return b.name }

// Key returns the structured name.
func (b *Binding) Key() naming.Key { return b.key }

// Field returns the bound descriptor.
func (b *Binding) Field() schema.Field { return b.field }

// Value returns the live value.
func (b *Binding) Value() any { return b.store.Value(b.name) }

// Change writes a new logical value and runs the field's change callback.
func (b *Binding) Change(value any) {
	b.Dispatch(schema.ChangeEvent{Value: value, Raw: value})
}

// Dispatch writes event.Value then runs the change callback with the event.
// The event name is always the binding's wire name.
func (b *Binding) Dispatch(event schema.ChangeEvent) {
	event.Name = b.name
	b.store.SetValue(b.name, event.Value)
	if handler := b.field.ChangeHandler(); handler != nil {
		handler(event, b.store)
	}
}

// Blur marks the field as touched.
func (b *Binding) Blur() { b.store.Touch(b.name) }

// Focus requests focus and reports whether it moved.
func (b *Binding) Focus() bool { return b.store.Focus(b.name) }

// Disabled applies the disabled policy against the gate's live value.
func (b *Binding) Disabled() bool {
	var gateValue any
	if b.policy.Gate != "" {
		gateValue = b.store.Value(b.policy.Gate)
	}
	return b.policy.Disabled(b.name, b.field.StaticDisabled(), gateValue)
}

// Error returns the field's validation message.
func (b *Binding) Error() (string, bool) { return b.store.Error(b.name) }

// KeyDown handles a key press and reports whether it submitted the form.
// Multi-line inputs, composing input methods and fields flagged with
// staticProps.preventEnterSubmit never submit.
func (b *Binding) KeyDown(event KeyEvent) bool {
	if event.Key != KeyEnter || !b.enterSubmit || event.Composing {
		return false
	}
	if b.field.Type == schema.TypeTextArea {
		return false
	}
	if prevent, _ := b.field.StaticProps[preventEnterKey].(bool); prevent {
		return false
	}
	b.submit()
	return true
}

// Props assembles the widget contract for the current state.
func (b *Binding) Props() Props {
	msg, invalid := b.Error()
	props := Props{
		Name:           b.name,
		Value:          b.Value(),
		Type:           b.field.Type,
		Component:      b.field.Component,
		Label:          b.field.Label,
		Placeholder:    b.field.Placeholder,
		ClassName:      b.field.ClassName,
		LabelPlacement: b.field.LabelPlacement,
		Disabled:       b.Disabled(),
		Invalid:        invalid,
		Message:        msg,
		Options:        b.field.Options,
		Rules:          b.field.Rules,
		Layout:         b.field.Layout,
	}
	if props.LabelPlacement == "" {
		props.LabelPlacement = "top"
	}

	extra := b.field.PassthroughProps()
	if b.field.DynamicProps != nil {
		dynamic := b.field.DynamicProps(b.store)
		if len(dynamic) > 0 && extra == nil {
			extra = make(map[string]any, len(dynamic))
		}
		for key, value := range dynamic {
			extra[key] = value
		}
	}
	props.Extra = extra
	return props
}
