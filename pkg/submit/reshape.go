// Package submit converts between the flat wire-named values held by the form
// state and the nested payload delivered to submit handlers.
package submit

import (
	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/naming"
	"github.com/goliatone/go-formrows/pkg/schema"
)

// OptionsKey holds a nested container's option values.
const OptionsKey = "options"

// Modifies reports whether a container's values are nested on submit:
// conditional containers always, accordions when marked structured.
func Modifies(c *schema.Container) bool {
	if c == nil {
		return false
	}
	switch c.Kind {
	case schema.KindConditional:
		return true
	case schema.KindAccordion:
		return c.Structured
	default:
		return false
	}
}

// Reshape builds the submit payload. Values of data-modifying containers move
// under payload[container] with option values under "options"; every other
// value keeps its flat wire name. Externals that opt into submission are
// merged last with falsy values reported as nil. Neither flat nor the schema
// is modified.
func Reshape(flat map[string]any, s schema.Schema, externals form.Externals) map[string]any {
	out := make(map[string]any, len(flat))
	for key, value := range flat {
		out[key] = value
	}

	for _, c := range schema.Containers(s) {
		if !Modifies(c) {
			continue
		}
		options := make(map[string]any)
		nested := map[string]any{OptionsKey: options}
		for _, pair := range containerKeys(c) {
			wire := pair.Wire()
			value, ok := flat[wire]
			if !ok {
				continue
			}
			delete(out, wire)
			if pair.Option {
				options[pair.Local] = value
			} else {
				nested[pair.Local] = value
			}
		}
		out[c.Name] = nested
	}

	for _, input := range externals.With(form.ExternalSubmit) {
		out[input.Name] = input.NullableValue()
	}
	return out
}

// Flatten is the inverse of Reshape for data-modifying containers. It is used
// to prefill a form from a previously submitted record. Keys inside a nested
// object that the container does not declare are dropped.
func Flatten(payload map[string]any, s schema.Schema) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = value
	}

	for _, c := range schema.Containers(s) {
		if !Modifies(c) {
			continue
		}
		nested, ok := payload[c.Name].(map[string]any)
		if !ok {
			continue
		}
		delete(out, c.Name)
		options, _ := nested[OptionsKey].(map[string]any)
		for _, pair := range containerKeys(c) {
			source := nested
			if pair.Option {
				source = options
			}
			if value, ok := source[pair.Local]; ok {
				out[pair.Wire()] = value
			}
		}
	}
	return out
}

// containerKeys lists the option and body keys of c in declaration order.
func containerKeys(c *schema.Container) []naming.Key {
	var keys []naming.Key
	schema.Visit(schema.Schema{c}, func(v schema.FieldVisit) {
		keys = append(keys, v.Key)
	})
	return keys
}
