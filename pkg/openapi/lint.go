package openapi

import (
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formrows/pkg/schema"
)

// hintKinds lists the accepted x-formrows keys and the JSON kind of their
// values.
var hintKinds = map[string]string{
	"order":          "number",
	"row":            "string",
	"label":          "string",
	"placeholder":    "string",
	"className":      "string",
	"labelPlacement": "string",
	"component":      "string",
	"layout":         "object",
	"container":      "string",
	"option":         "boolean",
	"controlledBy":   "string",
	"structured":     "boolean",
	"dividerBefore":  "boolean",
	"skip":           "boolean",
}

// Issue is one lint finding.
type Issue struct {
	Operation string
	// Path is the property path inside the request body, dot separated.
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Operation + ": " + i.Message
	}
	return i.Operation + " > " + i.Path + ": " + i.Message
}

// Lint reports x-formrows hints BuildSchema would ignore or reject, for
// every operation with a request body. Issues are sorted by operation then
// path.
func Lint(doc *Document) []Issue {
	var issues []Issue
	for _, op := range doc.Operations() {
		body := op.requestSchema()
		if body == nil {
			continue
		}
		issues = append(issues, lintSchema(op.ID, "", body)...)
		if _, err := BuildSchema(doc, op.ID); err != nil && !isStructural(err) {
			issues = append(issues, Issue{Operation: op.ID, Message: err.Error()})
		}
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Operation != issues[j].Operation {
			return issues[i].Operation < issues[j].Operation
		}
		return issues[i].Path < issues[j].Path
	})
	return issues
}

// isStructural reports errors already covered by per-property findings or
// that are not about hints at all.
func isStructural(err error) bool {
	return errors.Is(err, schema.ErrUnknownContainerKind) || errors.Is(err, ErrNotObject)
}

func lintSchema(operation, path string, s *openapi3.Schema) []Issue {
	var issues []Issue
	report := func(format string, args ...any) {
		issues = append(issues, Issue{Operation: operation, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if raw, ok := s.Extensions[ExtensionKey]; ok {
		h, isMap := raw.(map[string]any)
		if !isMap {
			report("%s must be an object, found %T", ExtensionKey, raw)
		}
		keys := make([]string, 0, len(h))
		for key := range h {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			want, known := hintKinds[key]
			if !known {
				report("unsupported %s key %q", ExtensionKey, key)
				continue
			}
			if got := jsonKind(h[key]); got != want {
				report("%s.%s must be a %s, found %s", ExtensionKey, key, want, got)
			}
		}
		if kind := hints(h).string("container"); kind != "" && !schema.ContainerKind(kind).Known() {
			report("unknown container kind %q", kind)
		}
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ref := s.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		next := name
		if path != "" {
			next = path + "." + name
		}
		issues = append(issues, lintSchema(operation, next, ref.Value)...)
	}
	return issues
}

func jsonKind(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", value)
	}
}
