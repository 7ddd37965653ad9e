package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formrows/pkg/render"
	rendertemplate "github.com/goliatone/go-formrows/pkg/render/template"
	"github.com/goliatone/go-formrows/pkg/render/template/pongo"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formrows/pkg/widgets"
)

// Name is the registry name of the HTML renderer.
const Name = "vanilla"

const (
	formTemplate    = "templates/form.tmpl"
	buttonsTemplate = "templates/buttons.tmpl"
	formPartialKey  = "forms.form"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	widgets          *widgets.Registry
	chrome           Chrome
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. The directory
// must provide the whole bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponents replaces the component registry.
func WithComponents(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithWidgets lets the renderer resolve fields without an explicit component
// and render custom widgets through their registered partial.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		cfg.widgets = registry
	}
}

// WithChrome overrides structural class names. Empty fields keep defaults.
func WithChrome(chrome Chrome) Option {
	return func(cfg *config) {
		cfg.chrome = chrome
	}
}

// WithInlineStyles embeds the default stylesheet in every rendered form.
func WithInlineStyles(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

// Renderer renders a form session as an HTML fragment.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	components   *components.Registry
	widgets      *widgets.Registry
	chrome       Chrome
	inlineStyles bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	registry := cfg.components
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}

	return &Renderer{
		templates:    renderer,
		components:   registry,
		widgets:      cfg.widgets,
		chrome:       DefaultChrome().merge(cfg.chrome),
		inlineStyles: cfg.inlineStyles,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render walks the session's current plan and renders the form template.
func (r *Renderer) Render(ctx context.Context, session render.Session, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if session == nil {
		return nil, fmt.Errorf("vanilla renderer: session is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := session.Plan()
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: build plan: %w", err)
	}

	builder := newViewBuilder(r, session, opts)
	view, err := builder.form(p)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	name := formTemplate
	if opts.Theme != nil {
		if candidate := strings.TrimSpace(opts.Theme.Partials[formPartialKey]); candidate != "" {
			name = candidate
		}
	}

	result, err := r.templates.RenderTemplate(name, map[string]any{
		"form":   view,
		"extras": opts.Extras,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
