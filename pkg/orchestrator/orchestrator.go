package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/naming"
	"github.com/goliatone/go-formrows/pkg/plan"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/jsonplan"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrows/pkg/schema"
	"github.com/goliatone/go-formrows/pkg/submit"
	"github.com/goliatone/go-formrows/pkg/urlsync"
	"github.com/goliatone/go-formrows/pkg/visibility"
	"github.com/goliatone/go-formrows/pkg/widgets"
)

const defaultRendererName = vanilla.Name

var (
	// ErrNameCollision is returned when two distinct fields share a wire name.
	ErrNameCollision = errors.New("orchestrator: wire name collision")
	// ErrUnknownField is returned for operations on undeclared wire names.
	ErrUnknownField = errors.New("orchestrator: unknown field")
)

// Orchestrator is one mounted form session. Callers drive it from a single
// goroutine; renderers may read from it concurrently.
type Orchestrator struct {
	id     string
	logger *slog.Logger

	schema   schema.Schema
	index    *naming.Index
	names    []string
	rules    map[string][]schema.Rule
	bindings map[string]*form.Binding
	order    []*form.Binding

	store     *form.Store
	policy    form.DisabledPolicy
	externals form.Externals
	evaluator visibility.Evaluator
	extras    map[string]any
	widgets   *widgets.Registry

	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer

	themeSelector  theme.ThemeSelector
	themeName      string
	themeVariant   string
	themeFallbacks map[string]string

	defaults        map[string]any
	readOnly        bool
	gate            string
	buttonAnchors   bool
	buttonsOnChange bool
	enterSubmit     bool

	onSubmit     SubmitHandler
	onCancel     CancelHandler
	notify       func(string)
	validator    form.Validator
	errorOptions []render.ErrorOption

	urlConfig *urlsync.Config
	sync      *urlsync.Synchronizer
	router    urlsync.Router

	mu        sync.Mutex
	cached    *plan.Plan
	notices   []string
	keyCtx    context.Context
	lastKey   *SubmitResult
	lastError error
	unwatch   []func()
}

// New mounts s. The schema is transformed, decorated with component bindings
// and checked for wire name collisions before defaults and the gate baseline
// are captured.
func New(s schema.Schema, options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		id:              uuid.NewString(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultRenderer: defaultRendererName,
		enterSubmit:     true,
		keyCtx:          context.Background(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.widgets == nil {
		o.widgets = widgets.NewRegistry()
	}
	if o.evaluator == nil {
		o.evaluator = visibility.Default()
	}

	if o.transformer != nil {
		transformed, err := o.transformer.Transform(s)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: transform schema: %w", err)
		}
		s = transformed
	}
	o.schema = o.widgets.Decorate(s)

	keys := plan.Keys(o.schema)
	o.index = naming.NewIndex(keys...)
	if colliding := o.index.CollidingWires(); len(colliding) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrNameCollision, strings.Join(colliding, ", "))
	}
	if colliding := o.payloadCollisions(); len(colliding) > 0 {
		return nil, fmt.Errorf("%w: payload key %s", ErrNameCollision, strings.Join(colliding, ", "))
	}
	o.names = plan.CollectNames(o.schema)
	o.rules = plan.Rules(o.schema)

	defaults := plan.FieldDefaults(o.schema)
	for key, value := range o.defaults {
		defaults[key] = value
	}
	o.store = form.NewStore(plan.CompleteDefaults(defaults, o.names))
	o.policy = form.NewDisabledPolicy(o.readOnly, o.gate, o.store)

	binder := form.Binder{
		Store:       o.store,
		Policy:      o.policy,
		EnterSubmit: o.enterSubmit,
		Submit:      o.submitFromKey,
	}
	o.bindings = make(map[string]*form.Binding, len(keys))
	schema.Visit(o.schema, func(v schema.FieldVisit) {
		wire := v.Key.Wire()
		if _, seen := o.bindings[wire]; seen {
			return
		}
		binding := binder.Bind(v.Key, v.Field)
		o.bindings[wire] = binding
		o.order = append(o.order, binding)
	})

	if o.urlConfig != nil {
		o.sync = urlsync.New(*o.urlConfig, o.externals)
	}
	o.watchDependencies()

	o.logger.Debug("form.mount", "form", o.id, "fields", len(o.order))
	return o, nil
}

// payloadCollisions lists payload keys claimed twice once values are
// reshaped: a nesting container named like a flat field or like a submitted
// external input.
func (o *Orchestrator) payloadCollisions() []string {
	var colliding []string
	nested := make(map[string]struct{})
	for _, c := range schema.Containers(o.schema) {
		if !submit.Modifies(c) {
			continue
		}
		if o.index.Has(c.Name) {
			colliding = append(colliding, c.Name)
		}
		nested[c.Name] = struct{}{}
	}
	for _, input := range o.externals.With(form.ExternalSubmit) {
		if _, ok := nested[input.Name]; ok {
			colliding = append(colliding, input.Name)
		}
	}
	return colliding
}

// watchDependencies invalidates the cached plan only when a value that can
// change it moves: conditional controllers and the gate field.
func (o *Orchestrator) watchDependencies() {
	deps := make(map[string]struct{})
	for _, c := range schema.Containers(o.schema) {
		if controller := plan.Controller(c); controller != "" {
			deps[controller] = struct{}{}
		}
	}
	if o.gate != "" {
		deps[o.gate] = struct{}{}
	}
	for name := range deps {
		o.unwatch = append(o.unwatch, o.store.Watch(name, func(string, any) {
			o.invalidate()
		}))
	}
}

func (o *Orchestrator) invalidate() {
	o.mu.Lock()
	o.cached = nil
	o.mu.Unlock()
}

// Close releases the store subscriptions held by the session.
func (o *Orchestrator) Close() {
	for _, cancel := range o.unwatch {
		cancel()
	}
	o.unwatch = nil
}

// ID identifies the session.
func (o *Orchestrator) ID() string { return o.id }

// Schema returns the decorated schema.
func (o *Orchestrator) Schema() schema.Schema { return o.schema }

// Store returns the form-state store.
func (o *Orchestrator) Store() *form.Store { return o.store }

// Widgets returns the component registry.
func (o *Orchestrator) Widgets() *widgets.Registry { return o.widgets }

// Externals returns the external inputs.
func (o *Orchestrator) Externals() form.Externals { return o.externals }

// Names returns every declared wire name in schema order.
func (o *Orchestrator) Names() []string {
	return append([]string(nil), o.names...)
}

// Lookup resolves a wire name to its structured key.
func (o *Orchestrator) Lookup(wire string) (naming.Key, bool) {
	return o.index.Lookup(wire)
}

// Binding returns the binding of a wire name.
func (o *Orchestrator) Binding(name string) (*form.Binding, bool) {
	binding, ok := o.bindings[name]
	return binding, ok
}

// Bindings returns every binding in schema order.
func (o *Orchestrator) Bindings() []*form.Binding {
	return append([]*form.Binding(nil), o.order...)
}

// Change writes a logical value through the field's binding.
func (o *Orchestrator) Change(name string, value any) error {
	binding, ok := o.bindings[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	binding.Change(value)
	return nil
}

// Plan returns the render plan for the current form state. Plans are cached
// until a controller or the gate field changes.
func (o *Orchestrator) Plan() (plan.Plan, error) {
	o.mu.Lock()
	if o.cached != nil {
		p := *o.cached
		o.mu.Unlock()
		return p, nil
	}
	o.mu.Unlock()

	p, err := plan.Build(o.schema, plan.Options{
		ButtonAnchors: o.buttonAnchors,
		Externals:     o.externals,
		Visibility:    o.evaluator,
		Value:         o.store.Value,
		Disabled:      o.disabled,
		Extras:        o.extras,
	})
	if err != nil {
		return plan.Plan{}, fmt.Errorf("orchestrator: build plan: %w", err)
	}

	o.mu.Lock()
	o.cached = &p
	o.mu.Unlock()
	return p, nil
}

func (o *Orchestrator) disabled(name string, field schema.Field) bool {
	if binding, ok := o.bindings[name]; ok {
		return binding.Disabled()
	}
	var gateValue any
	if o.gate != "" {
		gateValue = o.store.Value(o.gate)
	}
	return o.policy.Disabled(name, field.StaticDisabled(), gateValue)
}

// Payload returns the reshaped submit payload for the current values.
func (o *Orchestrator) Payload() map[string]any {
	return submit.Reshape(o.store.Values(), o.schema, o.externals)
}

// Notices returns the unmatched server messages of the last submit.
func (o *Orchestrator) Notices() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.notices...)
}

// ButtonsDisabled reports whether the default buttons should render
// disabled: read-only forms, and unchanged forms when buttons wait for a
// change.
func (o *Orchestrator) ButtonsDisabled() bool {
	if o.readOnly {
		return true
	}
	return o.buttonsOnChange && !o.store.Dirty()
}

// Render renders the session with the named renderer, or the default one.
// Session notices are appended to opts.Notices.
func (o *Orchestrator) Render(ctx context.Context, name string, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	renderer, err := o.rendererFor(name)
	if err != nil {
		return nil, err
	}

	if opts.Theme == nil && o.themeSelector != nil {
		selection, err := o.themeSelector.Select(o.themeName, o.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: select theme: %w", err)
		}
		fallbacks := o.themeFallbacks
		if fallbacks == nil {
			fallbacks = render.DefaultThemeFallbacks()
		}
		opts.Theme = render.ThemeConfig(selection, fallbacks)
	}
	opts.Notices = render.MergeFormErrors(opts.Notices, o.Notices()...)
	opts.ButtonsDisabled = opts.ButtonsDisabled || o.ButtonsDisabled()

	output, err := renderer.Render(ctx, o, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		registry := render.NewRegistry()
		renderer, err := vanilla.New(vanilla.WithWidgets(o.widgets))
		if err != nil {
			return nil, fmt.Errorf("orchestrator: default renderer: %w", err)
		}
		if err := registry.Register(renderer); err != nil {
			return nil, fmt.Errorf("orchestrator: default renderer: %w", err)
		}
		if err := registry.Register(jsonplan.New()); err != nil {
			return nil, fmt.Errorf("orchestrator: json renderer: %w", err)
		}
		o.registry = registry
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	renderer, err := o.registry.Default()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}
