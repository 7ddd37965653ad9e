package template

import "io"

// TemplateRenderer is the engine contract HTML renderers depend on. Out
// writers, when given, receive the rendered output as well.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data map[string]any) error
}
