package openapi

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formrows/pkg/schema"
)

// ExtensionKey holds the layout hints read from each schema.
const ExtensionKey = "x-formrows"

var (
	ErrUnknownOperation = errors.New("openapi: unknown operation")
	ErrNoRequestBody    = errors.New("openapi: operation has no request body")
	ErrNotObject        = errors.New("openapi: request body is not an object")
)

// BuildSchema maps the request body of operationID onto form rows. Scalar
// properties become fields and object properties become containers. Nested
// objects inside a container are rejected since containers do not nest.
func BuildSchema(doc *Document, operationID string) (schema.Schema, error) {
	op, ok := doc.Operation(operationID)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownOperation, operationID)
	}
	body := op.requestSchema()
	if body == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRequestBody, operationID)
	}
	if !isObject(body) {
		return nil, fmt.Errorf("%w: %s", ErrNotObject, operationID)
	}

	var (
		out  schema.Schema
		rows = newRowGrouper()
	)
	for _, prop := range orderedProperties(body) {
		if prop.hints.bool("skip") {
			continue
		}
		if prop.hints.bool("dividerBefore") {
			out = append(out, dividerRow())
			rows.reset()
		}
		if isObject(prop.schema) {
			container, err := buildContainer(prop)
			if err != nil {
				return nil, err
			}
			out = append(out, container)
			rows.reset()
			continue
		}
		field, err := buildField(prop)
		if err != nil {
			return nil, err
		}
		if idx, ok := rows.lookup(prop.hints.string("row")); ok {
			out[idx] = append(out[idx].(schema.Row), field)
			continue
		}
		out = append(out, schema.Row{field})
		rows.remember(prop.hints.string("row"), len(out)-1)
	}
	return out, nil
}

func buildContainer(prop property) (*schema.Container, error) {
	kind := schema.ContainerKind(prop.hints.string("container"))
	if kind == "" {
		kind = schema.KindPlain
	}
	if !kind.Known() {
		return nil, fmt.Errorf("openapi: property %q: %w %q", prop.name, schema.ErrUnknownContainerKind, kind)
	}
	container := &schema.Container{
		Kind:         kind,
		Name:         prop.name,
		Title:        prop.label(),
		ClassName:    prop.hints.string("className"),
		ControlledBy: prop.hints.string("controlledBy"),
		Structured:   kind == schema.KindConditional,
	}
	if flag, ok := prop.hints.boolOK("structured"); ok {
		container.Structured = flag
	}

	var (
		rows    = newRowGrouper()
		options schema.Row
	)
	for _, child := range orderedProperties(prop.schema) {
		if child.hints.bool("skip") {
			continue
		}
		if isObject(child.schema) {
			return nil, fmt.Errorf("openapi: property %q: nested object %q is not supported inside a container", prop.name, child.name)
		}
		field, err := buildField(child)
		if err != nil {
			return nil, err
		}
		if child.hints.bool("option") {
			field.ConditionalOption = true
			options = append(options, field)
			continue
		}
		if child.hints.bool("dividerBefore") {
			container.Children = append(container.Children, dividerRow())
			rows.reset()
		}
		if idx, ok := rows.lookup(child.hints.string("row")); ok {
			container.Children[idx] = append(container.Children[idx], field)
			continue
		}
		container.Children = append(container.Children, schema.Row{field})
		rows.remember(child.hints.string("row"), len(container.Children)-1)
	}
	if len(options) > 0 {
		container.Options = options
	}
	return container, nil
}

func buildField(prop property) (schema.Field, error) {
	field := schema.Field{
		Name:           prop.name,
		Label:          prop.label(),
		Placeholder:    prop.hints.string("placeholder"),
		ClassName:      prop.hints.string("className"),
		LabelPlacement: prop.hints.string("labelPlacement"),
		Component:      prop.hints.string("component"),
		Layout:         prop.hints.layout(),
		Default:        prop.schema.Default,
		Disabled:       prop.schema.ReadOnly,
		Rules:          rulesFor(prop),
	}

	s := prop.schema
	switch {
	case s.Type.Is(openapi3.TypeBoolean):
		field.Type = schema.TypeCheckbox
		if field.Component == string(schema.TypeSwitch) {
			field.Type = schema.TypeSwitch
		}
	case s.Type.Is(openapi3.TypeInteger), s.Type.Is(openapi3.TypeNumber):
		field.Type = schema.TypeNumber
	case s.Type.Is(openapi3.TypeString):
		switch {
		case len(s.Enum) > 0:
			field.Type = schema.TypeSelect
			field.Options = choices(s.Enum)
		case s.Format == "date":
			field.Type = schema.TypeDate
		case field.Component == string(schema.TypeTextArea):
			field.Type = schema.TypeTextArea
		default:
			field.Type = schema.TypeText
		}
	case s.Type.Is(openapi3.TypeArray):
		if s.Items == nil || s.Items.Value == nil || len(s.Items.Value.Enum) == 0 {
			return schema.Field{}, fmt.Errorf("openapi: property %q: only arrays of enums are supported, mark it %s.skip", prop.name, ExtensionKey)
		}
		field.Type = schema.TypeSelect
		field.Options = choices(s.Items.Value.Enum)
		field.StaticProps = map[string]any{"multiple": true}
	default:
		return schema.Field{}, fmt.Errorf("openapi: property %q: unsupported type %v", prop.name, s.Type.Slice())
	}
	if field.Component == string(field.Type) {
		field.Component = ""
	}
	return field, nil
}

func rulesFor(prop property) []schema.Rule {
	var rules []schema.Rule
	add := func(kind, value string) {
		rule := schema.Rule{Kind: kind}
		if value != "" {
			rule.Params = map[string]string{"value": value}
		}
		rules = append(rules, rule)
	}
	s := prop.schema
	if prop.required {
		add("required", "")
	}
	if s.Min != nil {
		add("min", formatFloat(*s.Min))
	}
	if s.Max != nil {
		add("max", formatFloat(*s.Max))
	}
	if s.MinLength > 0 {
		add("minLength", strconv.FormatUint(s.MinLength, 10))
	}
	if s.MaxLength != nil {
		add("maxLength", strconv.FormatUint(*s.MaxLength, 10))
	}
	if s.Pattern != "" {
		add("pattern", s.Pattern)
	}
	return rules
}

func choices(enum []any) []schema.Choice {
	out := make([]schema.Choice, 0, len(enum))
	for _, value := range enum {
		out = append(out, schema.Choice{Label: fmt.Sprint(value), Value: value})
	}
	return out
}

func dividerRow() schema.Row {
	return schema.Row{{Type: schema.TypeDivider}}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isObject(s *openapi3.Schema) bool {
	if s == nil {
		return false
	}
	return s.Type.Is(openapi3.TypeObject) || (s.Type == nil && len(s.Properties) > 0)
}

type property struct {
	name     string
	schema   *openapi3.Schema
	hints    hints
	required bool
}

func (p property) label() string {
	if label := p.hints.string("label"); label != "" {
		return label
	}
	if p.schema.Title != "" {
		return p.schema.Title
	}
	return humanize(p.name)
}

// orderedProperties sorts by x-formrows.order, then by name. Properties
// without an order come after ordered ones.
func orderedProperties(s *openapi3.Schema) []property {
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	props := make([]property, 0, len(s.Properties))
	for name, ref := range s.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		props = append(props, property{
			name:     name,
			schema:   ref.Value,
			hints:    hintsOf(ref.Value),
			required: required[name],
		})
	}
	sort.SliceStable(props, func(i, j int) bool {
		oi, iok := props[i].hints.int("order")
		oj, jok := props[j].hints.int("order")
		switch {
		case iok && jok && oi != oj:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return props[i].name < props[j].name
		}
	})
	return props
}

// rowGrouper remembers where each named row started so later properties with
// the same row key join it.
type rowGrouper struct {
	index map[string]int
}

func newRowGrouper() *rowGrouper {
	return &rowGrouper{index: make(map[string]int)}
}

func (g *rowGrouper) lookup(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	idx, ok := g.index[key]
	return idx, ok
}

func (g *rowGrouper) remember(key string, idx int) {
	if key != "" {
		g.index[key] = idx
	}
}

// reset stops rows from spanning a divider or container.
func (g *rowGrouper) reset() {
	clear(g.index)
}
