package schema

import "strings"

// FieldType discriminates field descriptors. Unknown values are kept verbatim
// and treated as plain data fields.
type FieldType string

const (
	TypeText         FieldType = "text"
	TypeNumber       FieldType = "number"
	TypeCheckbox     FieldType = "checkbox"
	TypeSwitch       FieldType = "switch"
	TypeSelect       FieldType = "select"
	TypeTextArea     FieldType = "textarea"
	TypeDate         FieldType = "date"
	TypeDivider      FieldType = "divider"
	TypeButtonAnchor FieldType = "btnAnchor"
	TypeInputAnchor  FieldType = "inputAnchor"
)

// ContainerKind selects how a container renders its rows.
type ContainerKind string

const (
	KindPlain       ContainerKind = "plain"
	KindAccordion   ContainerKind = "accordion"
	KindConditional ContainerKind = "conditional"
)

// Known reports whether the kind is one of the supported container kinds.
func (k ContainerKind) Known() bool {
	switch k {
	case KindPlain, KindAccordion, KindConditional:
		return true
	default:
		return false
	}
}

const (
	staticDisabledKey = "disabled"
	staticDefaultKey  = "defaultValue"
	staticOnChangeKey = "onChangeCallback"
)

// Rule is an opaque validation rule handed to the configured validator. Kind
// uses identifiers such as required, min, max, minLength, maxLength, pattern.
type Rule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Layout carries responsive column spans on a 24 column grid.
type Layout struct {
	XS int `json:"xs,omitempty" yaml:"xs,omitempty"`
	SM int `json:"sm,omitempty" yaml:"sm,omitempty"`
	MD int `json:"md,omitempty" yaml:"md,omitempty"`
	LG int `json:"lg,omitempty" yaml:"lg,omitempty"`
}

// Choice is a selectable option offered by select-like components.
type Choice struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// ChangeEvent describes a user-driven value change.
type ChangeEvent struct {
	// Name is the wire name of the changed field.
	Name string
	// Value is the new logical value written to the form state.
	Value any
	// Raw is whatever the widget emitted (for example the submitted strings).
	Raw any
}

// Mutator is the mutation surface handed to change callbacks and dynamic prop
// functions. Names are wire names.
type Mutator interface {
	Value(name string) any
	SetValue(name string, value any)
	ClearErrors(names ...string)
}

// ChangeFunc runs after a field value changed.
type ChangeFunc func(event ChangeEvent, m Mutator)

// DynamicPropsFunc computes extra widget props from the current form state.
type DynamicPropsFunc func(m Mutator) map[string]any

// Field describes one input. Name must be unique within its namespace; the
// engine does not deduplicate.
type Field struct {
	Name              string           `json:"name" yaml:"name"`
	Type              FieldType        `json:"type,omitempty" yaml:"type,omitempty"`
	Component         string           `json:"component,omitempty" yaml:"component,omitempty"`
	Label             string           `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder       string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	ClassName         string           `json:"className,omitempty" yaml:"className,omitempty"`
	LabelPlacement    string           `json:"labelPlacement,omitempty" yaml:"labelPlacement,omitempty"`
	Rules             []Rule           `json:"rules,omitempty" yaml:"rules,omitempty"`
	Layout            Layout           `json:"layout,omitempty" yaml:"layout,omitempty"`
	Options           []Choice         `json:"options,omitempty" yaml:"options,omitempty"`
	Default           any              `json:"default,omitempty" yaml:"default,omitempty"`
	Disabled          bool             `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	StaticProps       map[string]any   `json:"staticProps,omitempty" yaml:"staticProps,omitempty"`
	ConditionalOption bool             `json:"isConditionalOption,omitempty" yaml:"isConditionalOption,omitempty"`
	NotAvailable      bool             `json:"isNotAvailable,omitempty" yaml:"isNotAvailable,omitempty"`
	DynamicProps      DynamicPropsFunc `json:"-" yaml:"-"`
	OnChange          ChangeFunc       `json:"-" yaml:"-"`
}

// IsData reports whether the field stores a value in the form state.
func (f Field) IsData() bool {
	if f.NotAvailable {
		return false
	}
	switch f.Type {
	case TypeDivider, TypeButtonAnchor, TypeInputAnchor:
		return false
	default:
		return strings.TrimSpace(f.Name) != ""
	}
}

// StaticDisabled returns the field's own disabled flag, honouring the
// staticProps fallback.
func (f Field) StaticDisabled() bool {
	if f.Disabled {
		return true
	}
	if flag, ok := f.StaticProps[staticDisabledKey].(bool); ok {
		return flag
	}
	return false
}

// DefaultValue returns the declared default, falling back to
// staticProps.defaultValue.
func (f Field) DefaultValue() (any, bool) {
	if f.Default != nil {
		return f.Default, true
	}
	if value, ok := f.StaticProps[staticDefaultKey]; ok {
		return value, true
	}
	return nil, false
}

// ChangeHandler returns OnChange or the staticProps.onChangeCallback fallback.
func (f Field) ChangeHandler() ChangeFunc {
	if f.OnChange != nil {
		return f.OnChange
	}
	switch fn := f.StaticProps[staticOnChangeKey].(type) {
	case ChangeFunc:
		return fn
	case func(ChangeEvent, Mutator):
		return fn
	default:
		return nil
	}
}

// PassthroughProps returns the static props minus the keys the engine itself
// interprets.
func (f Field) PassthroughProps() map[string]any {
	if len(f.StaticProps) == 0 {
		return nil
	}
	out := make(map[string]any, len(f.StaticProps))
	for key, value := range f.StaticProps {
		switch key {
		case staticDisabledKey, staticDefaultKey, staticOnChangeKey:
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Node is either a Row or a *Container.
type Node interface {
	node()
}

// Row is an ordered group of fields rendered together.
type Row []Field

func (Row) node() {}

// IsDivider reports whether the row is a single full-width separator.
func (r Row) IsDivider() bool {
	return len(r) == 1 && r[0].Type == TypeDivider
}

// Container groups rows under a heading and its own namespace.
type Container struct {
	Kind      ContainerKind `json:"containerType" yaml:"containerType"`
	Name      string        `json:"containerName,omitempty" yaml:"containerName,omitempty"`
	Title     string        `json:"title,omitempty" yaml:"title,omitempty"`
	ClassName string        `json:"className,omitempty" yaml:"className,omitempty"`
	// Filled is the caller-supplied "filled" indicator shown by accordions.
	Filled   bool  `json:"filled,omitempty" yaml:"filled,omitempty"`
	Children []Row `json:"children" yaml:"children"`
	// Options holds the condition-controlling fields of conditional containers.
	Options      Row    `json:"containerOptions,omitempty" yaml:"containerOptions,omitempty"`
	ControlledBy string `json:"controlledBy,omitempty" yaml:"controlledBy,omitempty"`
	// Structured marks the container's values for nested reshaping on submit.
	Structured bool `json:"hasConditionalOptions,omitempty" yaml:"hasConditionalOptions,omitempty"`
}

func (*Container) node() {}

// Schema is the ordered sequence of rows and containers; order is render order.
type Schema []Node
