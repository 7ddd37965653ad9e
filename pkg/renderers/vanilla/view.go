package vanilla

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goliatone/go-formrows/pkg/plan"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla/components"
)

// formView is the data handed to templates/form.tmpl.
type formView struct {
	Action      string
	Method      string
	Hidden      []render.HiddenField
	Notices     []string
	Blocks      []blockView
	Classes     Chrome
	Style       string
	Stylesheets []string
	Scripts     []components.Script
	InlineCSS   string
	// Buttons is the default button bar appended when no anchor placed it.
	Buttons string
}

type blockView struct {
	Kind        string
	Title       string
	ClassName   string
	Filled      bool
	Controller  string
	BodyVisible bool
	Options     lineView
	Lines       []lineView
}

type lineView struct {
	Divider bool
	Cells   []cellView
}

type cellView struct {
	Kind           string
	Name           string
	Component      string
	Span           int
	ControlID      string
	LabelID        string
	Label          string
	ShowLabel      bool
	LabelPlacement string
	Invalid        bool
	Message        string
	// Control is pre-rendered, trusted markup.
	Control string
}

type viewBuilder struct {
	r       *Renderer
	session render.Session
	opts    render.RenderOptions
	data    components.ComponentData

	buttons  string
	anchored bool
	used     map[string]struct{}
}

func newViewBuilder(r *Renderer, session render.Session, opts render.RenderOptions) *viewBuilder {
	data := components.ComponentData{Template: r.templates}
	if opts.Theme != nil {
		data.ThemePartials = opts.Theme.Partials
	}
	return &viewBuilder{
		r:       r,
		session: session,
		opts:    opts,
		data:    data,
		used:    make(map[string]struct{}),
	}
}

func (b *viewBuilder) form(p plan.Plan) (formView, error) {
	buttons, err := b.buttonBar()
	if err != nil {
		return formView{}, err
	}
	b.buttons = buttons

	method, override := render.FormMethod(b.opts.Method)
	hidden := render.MergeHiddenFields(b.opts.Hidden)
	if override != nil {
		hidden = render.MergeHiddenFields(hidden, *override)
	}

	view := formView{
		Action:  b.opts.Action,
		Method:  method,
		Hidden:  render.SortedHiddenFields(hidden),
		Notices: render.MergeFormErrors(nil, b.opts.Notices...),
		Classes: b.r.chrome,
	}

	for _, block := range p.Blocks {
		bv, err := b.block(block)
		if err != nil {
			return formView{}, err
		}
		view.Blocks = append(view.Blocks, bv)
	}
	if !b.anchored {
		view.Buttons = b.buttons
	}

	names := make([]string, 0, len(b.used))
	for name := range b.used {
		names = append(names, name)
	}
	sort.Strings(names)
	view.Stylesheets, view.Scripts = b.r.components.Assets(names)

	if theme := b.opts.Theme; theme != nil {
		view.Style = render.CSSVarsStyle(theme.CSSVars)
		if theme.AssetURL != nil {
			if href := theme.AssetURL("stylesheet"); href != "" {
				view.Stylesheets = append(view.Stylesheets, href)
			}
		}
	}
	if b.r.inlineStyles {
		view.InlineCSS = defaultStylesheet()
	}
	return view, nil
}

func (b *viewBuilder) block(block plan.Block) (blockView, error) {
	view := blockView{
		Kind:        string(block.Kind),
		Title:       block.Title(),
		Controller:  block.Controller,
		BodyVisible: block.BodyVisible,
	}
	if block.Container != nil {
		view.ClassName = sanitizeClassList(block.Container.ClassName)
		view.Filled = block.Container.Filled
	}

	if block.Kind == plan.BlockConditional {
		options, err := b.line(block.Options)
		if err != nil {
			return blockView{}, err
		}
		view.Options = options
	}
	// A hidden body keeps its state but emits no markup.
	if !block.BodyVisible {
		return view, nil
	}
	for _, line := range block.Rows {
		lv, err := b.line(line)
		if err != nil {
			return blockView{}, err
		}
		if !lv.Divider && len(lv.Cells) == 0 {
			continue
		}
		view.Lines = append(view.Lines, lv)
	}
	return view, nil
}

func (b *viewBuilder) line(line plan.Line) (lineView, error) {
	if line.Divider {
		return lineView{Divider: true}, nil
	}
	var view lineView
	for _, entry := range line.Entries {
		if !entry.Visible {
			continue
		}
		switch entry.Kind {
		case plan.EntryButtons:
			b.anchored = true
			if b.buttons == "" {
				continue
			}
			view.Cells = append(view.Cells, cellView{Kind: string(entry.Kind), Control: b.buttons})
		case plan.EntryExternal:
			markup := sanitizeMarkup(entry.Element)
			if markup == "" {
				continue
			}
			view.Cells = append(view.Cells, cellView{
				Kind:    string(entry.Kind),
				Name:    entry.Field.Name,
				Span:    layoutSpan(entry.Field.Layout),
				Control: markup,
			})
		case plan.EntryField:
			cell, err := b.field(entry)
			if err != nil {
				return lineView{}, err
			}
			view.Cells = append(view.Cells, cell)
		}
	}
	return view, nil
}

func (b *viewBuilder) field(entry plan.Entry) (cellView, error) {
	binding, ok := b.session.Binding(entry.Name)
	if !ok {
		return cellView{}, fmt.Errorf("no binding for field %q", entry.Name)
	}
	props := binding.Props()

	componentName := props.Component
	if componentName == "" && b.r.widgets != nil {
		componentName, _ = b.r.widgets.Resolve(entry.Field)
	}
	renderer, err := b.componentRenderer(componentName)
	if err != nil {
		return cellView{}, fmt.Errorf("field %q: %w", entry.Name, err)
	}

	field := components.NewFieldView(props, componentControlID(props.Name))
	field.Component = componentName
	field.ClassName = sanitizeClassList(field.ClassName)

	var buf bytes.Buffer
	if err := renderer(&buf, field, b.data); err != nil {
		return cellView{}, fmt.Errorf("field %q: %w", entry.Name, err)
	}
	b.used[componentName] = struct{}{}

	return cellView{
		Kind:           string(entry.Kind),
		Name:           props.Name,
		Component:      componentName,
		Span:           layoutSpan(props.Layout),
		ControlID:      field.ID,
		LabelID:        componentLabelID(props.Name),
		Label:          props.Label,
		ShowLabel:      props.Label != "" && !componentHandlesLabel(componentName),
		LabelPlacement: props.LabelPlacement,
		Invalid:        props.Invalid,
		Message:        props.Message,
		Control:        buf.String(),
	}, nil
}

// componentRenderer looks the component up in the registry, then falls back
// to the partial of a custom widget.
func (b *viewBuilder) componentRenderer(name string) (components.Renderer, error) {
	if descriptor, ok := b.r.components.Descriptor(name); ok {
		return descriptor.Renderer, nil
	}
	if b.r.widgets != nil {
		if widget, ok := b.r.widgets.Component(name); ok && widget.Partial != "" {
			return components.TemplateRenderer(components.PartialKey(name), "templates/"+widget.Partial+".tmpl"), nil
		}
	}
	return nil, fmt.Errorf("component %q not registered", name)
}

// buttonBar returns the sanitised caller buttons or the default bar. It is
// empty when HideButtons is set and no caller markup exists.
func (b *viewBuilder) buttonBar() (string, error) {
	if custom := sanitizeMarkup(b.opts.Buttons); custom != "" {
		return custom, nil
	}
	if b.opts.HideButtons {
		return "", nil
	}

	submit := b.opts.SubmitLabel
	if submit == "" {
		submit = "Submit"
	}
	rendered, err := b.r.templates.RenderTemplate(buttonsTemplate, map[string]any{
		"submit_label": submit,
		"cancel_label": b.opts.CancelLabel,
		"disabled":     b.opts.ButtonsDisabled,
	})
	if err != nil {
		return "", fmt.Errorf("render buttons: %w", err)
	}
	return rendered, nil
}
