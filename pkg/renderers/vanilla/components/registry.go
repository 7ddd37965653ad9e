package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	rendertemplate "github.com/goliatone/go-formrows/pkg/render/template"
)

// Renderer writes the control markup of one bound field into buf.
type Renderer func(buf *bytes.Buffer, field FieldView, data ComponentData) error

// ComponentData carries the template engine and theme overrides.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// ThemePartials maps partial keys such as "forms.text" to templates.
	ThemePartials map[string]string
}

// Script is a JavaScript dependency emitted once per render.
type Script struct {
	Src   string
	Type  string
	Async bool
	Defer bool
}

// Descriptor is what a component contributes to a page: its control markup
// and the assets that markup needs.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

// Registry maps component bindings to descriptors. A Registry is immutable
// once built; Register returns a copy, so one registry can back every render
// without locking.
type Registry struct {
	entries map[string]Descriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: map[string]Descriptor{}}
}

// Register returns a registry that also holds descriptor under name,
// replacing an earlier entry of the same name.
func (r *Registry) Register(name string, descriptor Descriptor) (*Registry, error) {
	key := normalize(name)
	if key == "" {
		return nil, fmt.Errorf("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return nil, fmt.Errorf("components: renderer for %q is nil", key)
	}
	next := &Registry{entries: make(map[string]Descriptor, len(r.entries)+1)}
	for k, d := range r.entries {
		next.entries[k] = d
	}
	descriptor.Name = key
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
	descriptor.Scripts = slices.Clone(descriptor.Scripts)
	next.entries[key] = descriptor
	return next, nil
}

// Descriptor looks a component up by binding name, ignoring case.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	d, ok := r.entries[normalize(name)]
	return d, ok
}

// Names lists the registered components in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Assets collects the stylesheets and scripts of the components a render
// used, first occurrence wins. Unknown names are skipped.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []Script) {
	for _, name := range names {
		d, ok := r.entries[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range d.Stylesheets {
			if href != "" && !slices.Contains(stylesheets, href) {
				stylesheets = append(stylesheets, href)
			}
		}
		for _, script := range d.Scripts {
			if script.Src == "" || slices.ContainsFunc(scripts, func(s Script) bool { return s.Src == script.Src }) {
				continue
			}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
