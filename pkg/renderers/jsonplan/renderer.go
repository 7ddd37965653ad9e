// Package jsonplan renders a form session as a JSON document describing the
// current plan, so client-side hosts can draw the form themselves and post
// values back through the same session.
package jsonplan

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formrows/pkg/plan"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/schema"
)

// Name is the registry name of the JSON renderer.
const Name = "json"

// Document is the top-level JSON shape.
type Document struct {
	Action  string               `json:"action,omitempty"`
	Method  string               `json:"method"`
	Hidden  []render.HiddenField `json:"hidden,omitempty"`
	Notices []string             `json:"notices,omitempty"`
	Blocks  []Block              `json:"blocks"`
	Payload map[string]any       `json:"payload"`
	Theme   *Theme               `json:"theme,omitempty"`
}

// Block mirrors plan.Block.
type Block struct {
	Kind        string `json:"kind"`
	Title       string `json:"title,omitempty"`
	ClassName   string `json:"className,omitempty"`
	Filled      bool   `json:"filled,omitempty"`
	Controller  string `json:"controller,omitempty"`
	BodyVisible bool   `json:"bodyVisible"`
	Options     *Line  `json:"options,omitempty"`
	Rows        []Line `json:"rows,omitempty"`
}

// Line is one rendered row.
type Line struct {
	Divider bool   `json:"divider,omitempty"`
	Cells   []Cell `json:"cells,omitempty"`
}

// Cell is a field, a button slot or an external input slot.
type Cell struct {
	Kind    string `json:"kind"`
	Name    string `json:"name,omitempty"`
	Element string `json:"element,omitempty"`
	Props   *Props `json:"props,omitempty"`
}

// Props is the JSON view of form.Props.
type Props struct {
	Name           string          `json:"name"`
	Value          any             `json:"value"`
	Type           string          `json:"type,omitempty"`
	Component      string          `json:"component"`
	Label          string          `json:"label,omitempty"`
	Placeholder    string          `json:"placeholder,omitempty"`
	ClassName      string          `json:"className,omitempty"`
	LabelPlacement string          `json:"labelPlacement,omitempty"`
	Disabled       bool            `json:"disabled"`
	Invalid        bool            `json:"invalid"`
	Message        string          `json:"message,omitempty"`
	Options        []schema.Choice `json:"options,omitempty"`
	Rules          []schema.Rule   `json:"rules,omitempty"`
	Layout         *schema.Layout  `json:"layout,omitempty"`
	Extra          map[string]any  `json:"extra,omitempty"`
}

// Theme carries the resolved theme selection.
type Theme struct {
	Name         string            `json:"name"`
	Variant      string            `json:"variant,omitempty"`
	Partials     map[string]string `json:"partials,omitempty"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	CSSVars      map[string]string `json:"cssVars,omitempty"`
	CSSVarsStyle string            `json:"cssVarsStyle,omitempty"`
}

type Option func(*Renderer)

// WithIndent pretty-prints the document.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithHiddenBodies includes the rows of collapsed conditional bodies, marked
// bodyVisible=false, so clients can animate them in without a round trip.
func WithHiddenBodies(enabled bool) Option {
	return func(r *Renderer) {
		r.hiddenBodies = enabled
	}
}

// Renderer encodes sessions as Documents.
type Renderer struct {
	indent       string
	hiddenBodies bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the JSON renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string { return Name }

func (r *Renderer) ContentType() string { return "application/json" }

// Render encodes the session's current plan.
func (r *Renderer) Render(ctx context.Context, session render.Session, opts render.RenderOptions) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("jsonplan: session is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := r.Document(session, opts)
	if err != nil {
		return nil, err
	}

	var out []byte
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonplan: encode document: %w", err)
	}
	return out, nil
}

// Document builds the JSON view without encoding it.
func (r *Renderer) Document(session render.Session, opts render.RenderOptions) (Document, error) {
	p, err := session.Plan()
	if err != nil {
		return Document{}, fmt.Errorf("jsonplan: build plan: %w", err)
	}

	method, override := render.FormMethod(opts.Method)
	hidden := render.MergeHiddenFields(opts.Hidden)
	if override != nil {
		hidden = render.MergeHiddenFields(hidden, *override)
	}

	doc := Document{
		Action:  opts.Action,
		Method:  method,
		Hidden:  render.SortedHiddenFields(hidden),
		Notices: render.MergeFormErrors(nil, opts.Notices...),
		Blocks:  make([]Block, 0, len(p.Blocks)),
		Payload: session.Payload(),
		Theme:   themeView(opts),
	}
	for _, block := range p.Blocks {
		bv, err := r.block(session, block)
		if err != nil {
			return Document{}, err
		}
		doc.Blocks = append(doc.Blocks, bv)
	}
	return doc, nil
}

func (r *Renderer) block(session render.Session, block plan.Block) (Block, error) {
	out := Block{
		Kind:        string(block.Kind),
		Title:       block.Title(),
		Controller:  block.Controller,
		BodyVisible: block.BodyVisible,
	}
	if block.Container != nil {
		out.ClassName = block.Container.ClassName
		out.Filled = block.Container.Filled
	}
	if block.Kind == plan.BlockConditional {
		options, err := line(session, block.Options)
		if err != nil {
			return Block{}, err
		}
		out.Options = &options
	}
	if !block.BodyVisible && !r.hiddenBodies {
		return out, nil
	}
	for _, row := range block.Rows {
		lv, err := line(session, row)
		if err != nil {
			return Block{}, err
		}
		out.Rows = append(out.Rows, lv)
	}
	return out, nil
}

func line(session render.Session, row plan.Line) (Line, error) {
	if row.Divider {
		return Line{Divider: true}, nil
	}
	out := Line{}
	for _, entry := range row.Entries {
		cell := Cell{Kind: string(entry.Kind), Name: entry.Name}
		switch entry.Kind {
		case plan.EntryExternal:
			cell.Name = entry.Field.Name
			cell.Element = entry.Element
		case plan.EntryField:
			binding, ok := session.Binding(entry.Name)
			if !ok {
				return Line{}, fmt.Errorf("jsonplan: no binding for field %q", entry.Name)
			}
			props := binding.Props()
			cell.Props = &Props{
				Name:           props.Name,
				Value:          props.Value,
				Type:           string(props.Type),
				Component:      props.Component,
				Label:          props.Label,
				Placeholder:    props.Placeholder,
				ClassName:      props.ClassName,
				LabelPlacement: props.LabelPlacement,
				Disabled:       props.Disabled,
				Invalid:        props.Invalid,
				Message:        props.Message,
				Options:        props.Options,
				Rules:          props.Rules,
				Extra:          props.Extra,
			}
			if props.Layout != (schema.Layout{}) {
				layout := props.Layout
				cell.Props.Layout = &layout
			}
		}
		out.Cells = append(out.Cells, cell)
	}
	return out, nil
}

func themeView(opts render.RenderOptions) *Theme {
	cfg := opts.Theme
	if cfg == nil {
		return nil
	}
	return &Theme{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		Partials:     cfg.Partials,
		Tokens:       cfg.Tokens,
		CSSVars:      cfg.CSSVars,
		CSSVarsStyle: render.CSSVarsStyle(cfg.CSSVars),
	}
}
