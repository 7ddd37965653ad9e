package components

import (
	"bytes"
	"fmt"
	"strings"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry constructs a registry with a template-backed renderer for
// every built-in component.
func NewDefaultRegistry() *Registry {
	registry := New()
	for _, name := range []string{NameText, NameNumber, NameCheckbox, NameSwitch, NameSelect, NameTextArea, NameDate} {
		registry.entries[name] = Descriptor{
			Name:     name,
			Renderer: TemplateRenderer(PartialKey(name), templatePrefix+name+".tmpl"),
		}
	}
	return registry
}

// PartialKey is the theme partial key of a component.
func PartialKey(name string) string {
	return "forms." + normalize(name)
}

// TemplateRenderer renders templateName with the field view, unless the theme
// maps partialKey to another template.
func TemplateRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field FieldView, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolved := templateName
		if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
			resolved = candidate
		}

		rendered, err := data.Template.RenderTemplate(resolved, map[string]any{"field": field})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
