package schema

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrUnknownContainerKind is returned when a document declares a container
// type the engine cannot render.
var ErrUnknownContainerKind = errors.New("schema: unknown container type")

// MarshalJSON encodes rows as arrays and containers as objects, preserving
// order.
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.encodable())
}

// UnmarshalJSON decodes the row/container tree.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: decode json: %w", err)
	}

	nodes := make(Schema, 0, len(raw))
	for idx, item := range raw {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 {
			continue
		}
		switch trimmed[0] {
		case '[':
			var row Row
			if err := json.Unmarshal(trimmed, &row); err != nil {
				return fmt.Errorf("schema: decode row %d: %w", idx, err)
			}
			nodes = append(nodes, row)
		case '{':
			var container Container
			if err := json.Unmarshal(trimmed, &container); err != nil {
				return fmt.Errorf("schema: decode container %d: %w", idx, err)
			}
			if err := normaliseContainer(&container); err != nil {
				return fmt.Errorf("schema: container %d: %w", idx, err)
			}
			nodes = append(nodes, &container)
		default:
			return fmt.Errorf("schema: node %d must be an array or an object", idx)
		}
	}
	*s = nodes
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (s Schema) MarshalYAML() (any, error) {
	return s.encodable(), nil
}

// UnmarshalYAML decodes the row/container tree from a YAML sequence.
func (s *Schema) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("schema: line %d: expected a sequence of rows and containers", value.Line)
	}

	nodes := make(Schema, 0, len(value.Content))
	for _, item := range value.Content {
		switch item.Kind {
		case yaml.SequenceNode:
			var row Row
			if err := item.Decode(&row); err != nil {
				return fmt.Errorf("schema: line %d: decode row: %w", item.Line, err)
			}
			nodes = append(nodes, row)
		case yaml.MappingNode:
			var container Container
			if err := item.Decode(&container); err != nil {
				return fmt.Errorf("schema: line %d: decode container: %w", item.Line, err)
			}
			if err := normaliseContainer(&container); err != nil {
				return fmt.Errorf("schema: line %d: %w", item.Line, err)
			}
			nodes = append(nodes, &container)
		default:
			return fmt.Errorf("schema: line %d: node must be a sequence or a mapping", item.Line)
		}
	}
	*s = nodes
	return nil
}

func (s Schema) encodable() []any {
	out := make([]any, 0, len(s))
	for _, node := range s {
		switch n := node.(type) {
		case Row:
			out = append(out, []Field(n))
		case *Container:
			if n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

func normaliseContainer(c *Container) error {
	if c.Kind == "" {
		c.Kind = KindPlain
	}
	if !c.Kind.Known() {
		return fmt.Errorf("%w %q", ErrUnknownContainerKind, c.Kind)
	}
	if c.Kind == KindConditional && c.ControlledBy == "" && len(c.Options) > 0 {
		c.ControlledBy = c.Options[0].Name
	}
	return nil
}
