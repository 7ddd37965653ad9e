package orchestrator

import (
	"context"
	"log/slog"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/urlsync"
	"github.com/goliatone/go-formrows/pkg/visibility"
	"github.com/goliatone/go-formrows/pkg/widgets"
)

// SubmitHandler receives the reshaped payload. Returning a *SubmitError routes
// its payload onto the form's fields; any other error aborts the submit.
type SubmitHandler func(ctx context.Context, payload map[string]any) error

// CancelHandler runs before a cancel resets the form.
type CancelHandler func(ctx context.Context) error

// Option customises a session.
type Option func(*Orchestrator)

// WithLogger sets the structured logger. Nil keeps the discarding default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWidgets injects the component registry used to decorate the schema and
// parse submitted strings.
func WithWidgets(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.widgets = registry
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when Render gets no name.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a transformer that rewrites the schema
// before components are resolved.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithExternalInputs registers values owned by the caller that take part in
// submit, URL sync or reset.
func WithExternalInputs(inputs ...form.ExternalInput) Option {
	return func(o *Orchestrator) {
		o.externals = append(o.externals, inputs...)
	}
}

// WithURLSync enables query string synchronisation.
func WithURLSync(cfg urlsync.Config) Option {
	return func(o *Orchestrator) {
		o.urlConfig = &cfg
	}
}

// WithReadOnly disables every field.
func WithReadOnly(readOnly bool) Option {
	return func(o *Orchestrator) {
		o.readOnly = readOnly
	}
}

// WithGateField keeps every other field disabled until the named field moves
// away from its mount-time value.
func WithGateField(name string) Option {
	return func(o *Orchestrator) {
		o.gate = name
	}
}

// WithButtonAnchors lets btnAnchor fields reserve a slot for the buttons.
func WithButtonAnchors(enabled bool) Option {
	return func(o *Orchestrator) {
		o.buttonAnchors = enabled
	}
}

// WithButtonsOnChange keeps the default buttons disabled until a value
// differs from its mount-time default.
func WithButtonsOnChange(enabled bool) Option {
	return func(o *Orchestrator) {
		o.buttonsOnChange = enabled
	}
}

// WithoutEnterSubmit stops Enter from submitting the form.
func WithoutEnterSubmit() Option {
	return func(o *Orchestrator) {
		o.enterSubmit = false
	}
}

// WithDefaults overlays caller defaults on the field defaults.
func WithDefaults(values map[string]any) Option {
	return func(o *Orchestrator) {
		if o.defaults == nil {
			o.defaults = make(map[string]any, len(values))
		}
		for key, value := range values {
			o.defaults[key] = value
		}
	}
}

// WithSubmitHandler sets the submit handler.
func WithSubmitHandler(fn SubmitHandler) Option {
	return func(o *Orchestrator) {
		o.onSubmit = fn
	}
}

// WithCancelHandler sets the cancel handler.
func WithCancelHandler(fn CancelHandler) Option {
	return func(o *Orchestrator) {
		o.onCancel = fn
	}
}

// WithNotifier receives the single user-facing notice of unmatched errors.
func WithNotifier(fn func(message string)) Option {
	return func(o *Orchestrator) {
		o.notify = fn
	}
}

// WithValidator delegates rule checking before submit.
func WithValidator(v form.Validator) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

// WithVisibility overrides the evaluator gating conditional bodies.
func WithVisibility(evaluator visibility.Evaluator) Option {
	return func(o *Orchestrator) {
		o.evaluator = evaluator
	}
}

// WithVisibilityExtras exposes extra values to the evaluator.
func WithVisibilityExtras(extras map[string]any) Option {
	return func(o *Orchestrator) {
		o.extras = extras
	}
}

// WithErrorOptions customises server error routing, for example key
// normalisation.
func WithErrorOptions(opts ...render.ErrorOption) Option {
	return func(o *Orchestrator) {
		o.errorOptions = append(o.errorOptions, opts...)
	}
}

// WithThemeSelector resolves a theme for every render that does not carry
// one already.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithThemeFallbacks overrides the partials used when a theme leaves a
// component unset.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = fallbacks
	}
}
