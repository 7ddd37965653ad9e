package tui

import "github.com/goliatone/go-formrows/pkg/widgets"

// OutputFormat selects the encoding of the collected payload.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme holds the prefixes written before notices and field errors.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitTransformer rewrites the reshaped payload before it is encoded.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithWidgets supplies the registry mapping components to prompt kinds and
// parsers.
func WithWidgets(registry *widgets.Registry) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.widgets = registry
		}
	}
}

// WithSubmitTransformer installs fn; a nil fn leaves the payload as is.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
