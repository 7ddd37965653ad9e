package widgets

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formrows/pkg/schema"
)

// Built-in component identifiers exposed by the registry.
const (
	ComponentText     = "text"
	ComponentNumber   = "number"
	ComponentCheckbox = "checkbox"
	ComponentSwitch   = "switch"
	ComponentSelect   = "select"
	ComponentTextArea = "textarea"
	ComponentDate     = "date"
)

// Matcher decides whether a component should be bound to the supplied field.
type Matcher func(field schema.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry resolves component bindings for fields and exposes the
// capabilities of each component. Matchers only apply to fields without an
// explicit binding; higher priority wins and ties fall back to registration
// order.
type Registry struct {
	mu         sync.RWMutex
	rules      []rule
	components map[string]Component
}

// NewRegistry constructs a registry with the built-in components and their
// matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{components: make(map[string]Component)}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// RegisterComponent adds or replaces a component's capabilities.
func (r *Registry) RegisterComponent(component Component) error {
	if r == nil {
		return fmt.Errorf("widgets: registry is nil")
	}
	name := strings.TrimSpace(component.Name)
	if name == "" {
		return fmt.Errorf("widgets: component name required")
	}
	component.Name = name
	if component.Partial == "" {
		component.Partial = "components/" + name
	}
	if component.Prompt == "" {
		component.Prompt = PromptInput
	}
	if component.Parse == nil {
		component.Parse = ParseText
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.components == nil {
		r.components = make(map[string]Component)
	}
	r.components[name] = component
	return nil
}

// Component returns the capabilities registered under name.
func (r *Registry) Component(name string) (Component, bool) {
	if r == nil {
		return Component{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	component, ok := r.components[strings.TrimSpace(name)]
	return component, ok
}

// Components lists the registered component names in sorted order.
func (r *Registry) Components() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the component binding for a field. An explicit Component
// is honoured before matcher evaluation; non-data fields never resolve.
func (r *Registry) Resolve(field schema.Field) (string, bool) {
	if explicit := strings.TrimSpace(field.Component); explicit != "" {
		return explicit, true
	}
	if r == nil || !field.IsData() {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Parse converts submitted strings for the named component. Unknown
// components are read as text.
func (r *Registry) Parse(component string, raw []string) (any, error) {
	if c, ok := r.Component(component); ok {
		return c.Parse(raw)
	}
	return ParseText(raw)
}

// Decorate returns a copy of s where every data field without a component
// binding receives the resolved one. The input schema is not modified.
func (r *Registry) Decorate(s schema.Schema) schema.Schema {
	if r == nil || s == nil {
		return s
	}
	out := make(schema.Schema, 0, len(s))
	for _, node := range s {
		switch n := node.(type) {
		case schema.Row:
			out = append(out, r.decorateRow(n))
		case *schema.Container:
			if n == nil {
				continue
			}
			clone := *n
			clone.Options = r.decorateRow(n.Options)
			if n.Children != nil {
				clone.Children = make([]schema.Row, len(n.Children))
				for idx, row := range n.Children {
					clone.Children[idx] = r.decorateRow(row)
				}
			}
			out = append(out, &clone)
		}
	}
	return out
}

func (r *Registry) decorateRow(row schema.Row) schema.Row {
	if row == nil {
		return nil
	}
	decorated := make(schema.Row, len(row))
	for idx, field := range row {
		if field.Component == "" {
			if component, ok := r.Resolve(field); ok {
				field.Component = component
			}
		}
		decorated[idx] = field
	}
	return decorated
}

func (r *Registry) registerBuiltins() {
	builtins := []Component{
		{Name: ComponentText, Prompt: PromptInput, Parse: ParseText},
		{Name: ComponentNumber, Prompt: PromptInput, Parse: ParseNumber},
		{Name: ComponentCheckbox, Prompt: PromptConfirm, Parse: ParseBool},
		{Name: ComponentSwitch, Prompt: PromptConfirm, Parse: ParseBool},
		{Name: ComponentSelect, Prompt: PromptSelect, Parse: ParseChoice},
		{Name: ComponentTextArea, Prompt: PromptMultiline, Parse: ParseText},
		{Name: ComponentDate, Prompt: PromptInput, Parse: ParseDate},
	}
	for _, component := range builtins {
		_ = r.RegisterComponent(component)
	}

	r.Register(ComponentSwitch, 90, typeIs(schema.TypeSwitch))
	r.Register(ComponentCheckbox, 90, typeIs(schema.TypeCheckbox))
	r.Register(ComponentSelect, 80, func(field schema.Field) bool {
		return field.Type == schema.TypeSelect || len(field.Options) > 0
	})
	r.Register(ComponentNumber, 70, typeIs(schema.TypeNumber))
	r.Register(ComponentDate, 70, typeIs(schema.TypeDate))
	r.Register(ComponentTextArea, 60, typeIs(schema.TypeTextArea))
	r.Register(ComponentText, 10, func(field schema.Field) bool {
		switch field.Type {
		case "", schema.TypeText:
			return true
		default:
			return false
		}
	})
}

func typeIs(kind schema.FieldType) Matcher {
	return func(field schema.Field) bool {
		return field.Type == kind
	}
}
