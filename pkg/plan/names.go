package plan

import (
	"github.com/goliatone/go-formrows/pkg/naming"
	"github.com/goliatone/go-formrows/pkg/schema"
)

// CollectNames returns every data field's wire name in schema order,
// including conditional bodies regardless of visibility. Duplicates are kept.
func CollectNames(s schema.Schema) []string {
	var names []string
	schema.Visit(s, func(v schema.FieldVisit) {
		names = append(names, v.Key.Wire())
	})
	return names
}

// Keys returns the structured key of every data field in schema order.
func Keys(s schema.Schema) []naming.Key {
	var keys []naming.Key
	schema.Visit(s, func(v schema.FieldVisit) {
		keys = append(keys, v.Key)
	})
	return keys
}

// Rules maps wire names to the declared validation rules.
func Rules(s schema.Schema) map[string][]schema.Rule {
	out := make(map[string][]schema.Rule)
	schema.Visit(s, func(v schema.FieldVisit) {
		if len(v.Field.Rules) > 0 {
			out[v.Key.Wire()] = v.Field.Rules
		}
	})
	return out
}

// FieldDefaults returns the defaults declared on the fields themselves.
func FieldDefaults(s schema.Schema) map[string]any {
	out := make(map[string]any)
	schema.Visit(s, func(v schema.FieldVisit) {
		if value, ok := v.Field.DefaultValue(); ok {
			out[v.Key.Wire()] = value
		}
	})
	return out
}

// CompleteDefaults returns a copy of defaults with a nil entry for every
// name it lacks. The input is returned unchanged when it already has as many
// keys as there are names.
func CompleteDefaults(defaults map[string]any, names []string) map[string]any {
	if len(defaults) == len(names) && covers(defaults, names) {
		return defaults
	}
	out := make(map[string]any, len(names))
	for key, value := range defaults {
		out[key] = value
	}
	for _, name := range names {
		if _, ok := out[name]; !ok {
			out[name] = nil
		}
	}
	return out
}

func covers(values map[string]any, names []string) bool {
	for _, name := range names {
		if _, ok := values[name]; !ok {
			return false
		}
	}
	return true
}
