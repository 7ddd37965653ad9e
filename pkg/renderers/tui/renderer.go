package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/plan"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/schema"
	"github.com/goliatone/go-formrows/pkg/visibility"
	"github.com/goliatone/go-formrows/pkg/widgets"
)

// Name is the registry name of the terminal renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal-driven sessions. It asks
// one prompt per visible field and writes every answer back into the
// session, so conditional bodies appear as soon as their controller is set.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	widgets           *widgets.Registry
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "! "},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.widgets == nil {
		r.widgets = widgets.NewRegistry()
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every visible, enabled field in plan order and returns
// the session's reshaped payload. The plan is rebuilt after each answer.
func (r *Renderer) Render(ctx context.Context, session render.Session, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if session == nil {
		return nil, errors.New("tui: session is nil")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	for _, notice := range render.MergeFormErrors(nil, opts.Notices...) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+notice); err != nil {
			return nil, err
		}
	}

	asked := make(map[string]struct{})
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := session.Plan()
		if err != nil {
			return nil, fmt.Errorf("tui: build plan: %w", err)
		}
		entry, ok := nextEntry(p, asked)
		if !ok {
			break
		}
		asked[entry.Name] = struct{}{}
		if entry.Disabled {
			continue
		}

		binding, ok := session.Binding(entry.Name)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrNoBinding, entry.Name)
		}
		if err := r.promptField(ctx, binding); err != nil {
			return nil, err
		}
	}

	values := session.Payload()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

// nextEntry returns the first visible field the user has not been asked yet.
func nextEntry(p plan.Plan, asked map[string]struct{}) (plan.Entry, bool) {
	for _, entry := range p.Entries() {
		if _, done := asked[entry.Name]; !done {
			return entry, true
		}
	}
	return plan.Entry{}, false
}

func (r *Renderer) promptField(ctx context.Context, binding *form.Binding) error {
	props := binding.Props()
	component, ok := r.widgets.Component(props.Component)
	if !ok {
		component = widgets.Component{Name: props.Component, Prompt: widgets.PromptInput, Parse: widgets.ParseText}
	}

	label := displayLabel(props)
	if props.Invalid && props.Message != "" {
		if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, label, props.Message)); err != nil {
			return err
		}
	}

	switch component.Prompt {
	case widgets.PromptConfirm:
		return r.promptConfirm(ctx, binding, props, label)
	case widgets.PromptSelect:
		if len(props.Options) > 0 {
			return r.promptSelect(ctx, binding, props, label)
		}
	}
	return r.promptText(ctx, binding, props, label, component)
}

func (r *Renderer) promptConfirm(ctx context.Context, binding *form.Binding, props form.Props, label string) error {
	current, _ := visibility.CoerceBool(props.Value)
	resp, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: label,
		Default: current,
		Help:    props.Placeholder,
	})
	if err != nil {
		return err
	}
	binding.Dispatch(schema.ChangeEvent{Name: props.Name, Value: resp, Raw: resp})
	return nil
}

func (r *Renderer) promptSelect(ctx context.Context, binding *form.Binding, props form.Props, label string) error {
	labels := make([]string, len(props.Options))
	for i, choice := range props.Options {
		labels[i] = choiceLabel(choice)
	}
	selected := selectedIndices(props.Options, props.Value)

	if multiple, _ := props.Extra["multiple"].(bool); multiple {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  labels,
			Defaults: selected,
			Help:     props.Placeholder,
		})
		if err != nil {
			return err
		}
		values := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(props.Options) {
				values = append(values, props.Options[idx].Value)
			}
		}
		binding.Dispatch(schema.ChangeEvent{Name: props.Name, Value: values, Raw: indices})
		return nil
	}

	defaultIndex := -1
	if len(selected) > 0 {
		defaultIndex = selected[0]
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      label,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         props.Placeholder,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(props.Options) {
		return fmt.Errorf("tui: select index %d out of range for %q", idx, props.Name)
	}
	binding.Dispatch(schema.ChangeEvent{Name: props.Name, Value: props.Options[idx].Value, Raw: idx})
	return nil
}

// promptText asks until the component's parser accepts the answer.
func (r *Renderer) promptText(ctx context.Context, binding *form.Binding, props form.Props, label string, component widgets.Component) error {
	parse := component.Parse
	if parse == nil {
		parse = widgets.ParseText
	}
	validate := func(raw string) error {
		_, err := parse([]string{raw})
		return err
	}

	current := displayValue(props.Value)
	secret := strings.EqualFold(fmt.Sprint(props.Extra["type"]), "password")
	for {
		var (
			resp string
			err  error
		)
		switch {
		case component.Prompt == widgets.PromptMultiline:
			resp, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: props.Placeholder})
		case secret:
			resp, err = r.driver.Password(ctx, InputConfig{Message: label, Help: props.Placeholder, Validator: validate})
		default:
			resp, err = r.driver.Input(ctx, InputConfig{Message: label, Default: current, Help: props.Placeholder, Validator: validate})
		}
		if err != nil {
			return err
		}

		value, err := parse([]string{resp})
		if err != nil {
			if infoErr := r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, label, err)); infoErr != nil {
				return infoErr
			}
			continue
		}
		binding.Dispatch(schema.ChangeEvent{Name: props.Name, Value: value, Raw: []string{resp}})
		return nil
	}
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		out, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode payload: %w", err)
		}
		return out, nil
	}
}

func displayLabel(props form.Props) string {
	if props.Label != "" {
		return props.Label
	}
	return props.Name
}

func displayValue(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func choiceLabel(choice schema.Choice) string {
	if choice.Label != "" {
		return choice.Label
	}
	return fmt.Sprint(choice.Value)
}

func selectedIndices(options []schema.Choice, value any) []int {
	wanted := make(map[string]struct{})
	switch v := value.(type) {
	case nil:
	case []any:
		for _, item := range v {
			wanted[fmt.Sprint(item)] = struct{}{}
		}
	case []string:
		for _, item := range v {
			wanted[item] = struct{}{}
		}
	default:
		wanted[fmt.Sprint(v)] = struct{}{}
	}

	var out []int
	for i, choice := range options {
		if _, ok := wanted[fmt.Sprint(choice.Value)]; ok {
			out = append(out, i)
		}
	}
	return out
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	case nil:
		out.Set(prefix, "")
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	case nil:
		if prefix != "" {
			fmt.Fprintf(b, "%s=\n", prefix)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}
