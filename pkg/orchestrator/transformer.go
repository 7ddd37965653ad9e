package orchestrator

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formrows/pkg/schema"
)

// Transformer rewrites a schema before components are resolved. It must not
// modify its input.
type Transformer interface {
	Transform(s schema.Schema) (schema.Schema, error)
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(s schema.Schema) (schema.Schema, error)

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(s schema.Schema) (schema.Schema, error) {
	if fn == nil {
		return s, nil
	}
	return fn(s)
}

// JSONPresetTransformer applies declarative overrides loaded from JSON.
// Fields are addressed by wire name, containers by name:
//
//	{
//	  "containers": {"shipping": {"title": "Delivery"}},
//	  "fields": {
//	    "shippingzip": {"label": "Postcode", "staticProps": {"maxLength": 6}}
//	  }
//	}
type JSONPresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Containers map[string]containerPatch `json:"containers"`
	Fields     map[string]fieldPatch     `json:"fields"`
}

type containerPatch struct {
	Title     string `json:"title"`
	ClassName string `json:"className"`
}

type fieldPatch struct {
	Label       string         `json:"label"`
	Placeholder string         `json:"placeholder"`
	Component   string         `json:"component"`
	Disabled    *bool          `json:"disabled"`
	Hidden      bool           `json:"hidden"`
	StaticProps map[string]any `json:"staticProps"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document presetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a preset document from fsys.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform returns a patched copy of s. Patches naming unknown fields or
// containers are an error so typos surface at mount time.
func (t *JSONPresetTransformer) Transform(s schema.Schema) (schema.Schema, error) {
	pending := make(map[string]struct{}, len(t.document.Fields))
	for name := range t.document.Fields {
		pending[name] = struct{}{}
	}
	containers := make(map[string]struct{}, len(t.document.Containers))
	for name := range t.document.Containers {
		containers[name] = struct{}{}
	}

	out := make(schema.Schema, 0, len(s))
	for _, node := range s {
		switch n := node.(type) {
		case schema.Row:
			out = append(out, t.patchRow(n, "", false, pending))
		case *schema.Container:
			if n == nil {
				continue
			}
			clone := *n
			if patch, ok := t.document.Containers[n.Name]; ok {
				if patch.Title != "" {
					clone.Title = patch.Title
				}
				if patch.ClassName != "" {
					clone.ClassName = patch.ClassName
				}
				delete(containers, n.Name)
			}
			clone.Options = t.patchRow(n.Options, n.Name, true, pending)
			clone.Children = make([]schema.Row, len(n.Children))
			for idx, row := range n.Children {
				clone.Children[idx] = t.patchRow(row, n.Name, false, pending)
			}
			out = append(out, &clone)
		}
	}

	if missing := unmatched(pending, containers); len(missing) > 0 {
		return nil, fmt.Errorf("json preset transformer: unknown targets %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func (t *JSONPresetTransformer) patchRow(row schema.Row, namespace string, options bool, pending map[string]struct{}) schema.Row {
	if row == nil {
		return nil
	}
	patched := make(schema.Row, len(row))
	for idx, field := range row {
		key := schema.KeyFor(field, namespace)
		key.Option = key.Option || options
		if patch, ok := t.document.Fields[key.Wire()]; ok && field.IsData() {
			field = applyFieldPatch(field, patch)
			delete(pending, key.Wire())
		}
		patched[idx] = field
	}
	return patched
}

func applyFieldPatch(field schema.Field, patch fieldPatch) schema.Field {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.Component != "" {
		field.Component = patch.Component
	}
	if patch.Disabled != nil {
		field.Disabled = *patch.Disabled
	}
	if patch.Hidden {
		field.NotAvailable = true
	}
	if len(patch.StaticProps) > 0 {
		merged := make(map[string]any, len(field.StaticProps)+len(patch.StaticProps))
		for key, value := range field.StaticProps {
			merged[key] = value
		}
		for key, value := range patch.StaticProps {
			merged[key] = value
		}
		field.StaticProps = merged
	}
	return field
}

func unmatched(sets ...map[string]struct{}) []string {
	var out []string
	for _, set := range sets {
		for name := range set {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
