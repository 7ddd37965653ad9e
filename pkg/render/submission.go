package render

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// MethodOverrideField carries the real verb when a form posts PUT, PATCH or
// DELETE through a browser POST.
const MethodOverrideField = "_method"

// HiddenField is a hidden input emitted alongside the visible rows.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken builds the hidden field carrying a CSRF token under the name the
// backend expects ("_csrf", "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// FormMethod maps a requested verb onto what an HTML form can send, returning
// the override field when one is needed.
func FormMethod(method string) (string, *HiddenField) {
	verb := strings.ToUpper(strings.TrimSpace(method))
	switch verb {
	case "", http.MethodPost:
		return http.MethodPost, nil
	case http.MethodGet:
		return http.MethodGet, nil
	default:
		field := Hidden(MethodOverrideField, verb)
		return http.MethodPost, &field
	}
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields returns the fields ordered by name for deterministic
// output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	merged := MergeHiddenFields(fields)
	if len(merged) == 0 {
		return nil
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: merged[name]})
	}
	return result
}
