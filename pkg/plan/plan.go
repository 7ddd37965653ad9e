package plan

import (
	"fmt"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/naming"
	"github.com/goliatone/go-formrows/pkg/schema"
	"github.com/goliatone/go-formrows/pkg/visibility"
)

// BlockKind identifies a top-level render instruction.
type BlockKind string

const (
	BlockRow         BlockKind = "row"
	BlockDivider     BlockKind = "divider"
	BlockSection     BlockKind = "section"
	BlockAccordion   BlockKind = "accordion"
	BlockConditional BlockKind = "conditional"
)

// EntryKind identifies what occupies a slot of a rendered row.
type EntryKind string

const (
	EntryField    EntryKind = "field"
	EntryButtons  EntryKind = "buttons"
	EntryExternal EntryKind = "external"
)

// Entry is one slot of a rendered row.
type Entry struct {
	Kind  EntryKind
	Field schema.Field
	// Key and Name are empty for button and external slots.
	Key      naming.Key
	Name     string
	Visible  bool
	Disabled bool
	// Element is the external input markup for EntryExternal slots.
	Element string
}

// Line is a rendered row. Divider lines carry no entries.
type Line struct {
	Divider bool
	Entries []Entry
}

// Block is a top-level render instruction.
type Block struct {
	Kind      BlockKind
	Container *schema.Container
	// Options is the inline option row of a conditional container.
	Options Line
	Rows    []Line
	// BodyVisible is false while a conditional container's controller is
	// falsy; Rows then carry entries marked invisible.
	BodyVisible bool
	// Controller is the wire name gating a conditional body.
	Controller string
}

// Title returns the container heading, if any.
func (b Block) Title() string {
	if b.Container == nil {
		return ""
	}
	return b.Container.Title
}

// Plan is the ordered render plan for one form-state snapshot.
type Plan struct {
	Blocks []Block
	// Dependencies lists the wire names whose values affect visibility.
	Dependencies []string
}

// Options feeds form state into Build.
type Options struct {
	// ButtonAnchors enables btnAnchor slots.
	ButtonAnchors bool
	Externals     form.Externals
	Visibility    visibility.Evaluator
	Value         func(name string) any
	// Disabled computes the effective disabled flag of a field; nil means
	// the field's static flag.
	Disabled func(name string, field schema.Field) bool
	Extras   map[string]any
}

// Build walks the schema and produces the render plan.
func Build(s schema.Schema, opts Options) (Plan, error) {
	if opts.Visibility == nil {
		opts.Visibility = visibility.Default()
	}
	b := builder{opts: opts}

	var out Plan
	for idx, node := range s {
		switch n := node.(type) {
		case schema.Row:
			if n.IsDivider() {
				out.Blocks = append(out.Blocks, Block{Kind: BlockDivider})
				continue
			}
			out.Blocks = append(out.Blocks, Block{
				Kind:        BlockRow,
				Rows:        []Line{b.line(n, "", false, true)},
				BodyVisible: true,
			})
		case *schema.Container:
			if n == nil {
				continue
			}
			block, err := b.container(n)
			if err != nil {
				return Plan{}, fmt.Errorf("plan: node %d: %w", idx, err)
			}
			if block.Controller != "" {
				out.Dependencies = append(out.Dependencies, block.Controller)
			}
			out.Blocks = append(out.Blocks, block)
		}
	}
	return out, nil
}

type builder struct {
	opts Options
}

func (b builder) container(c *schema.Container) (Block, error) {
	block := Block{Container: c, BodyVisible: true}
	switch c.Kind {
	case schema.KindPlain, "":
		block.Kind = BlockSection
	case schema.KindAccordion:
		block.Kind = BlockAccordion
	case schema.KindConditional:
		block.Kind = BlockConditional
		block.Options = b.line(c.Options, c.Name, true, true)
		if controller := Controller(c); controller != "" {
			block.Controller = controller
			visible, err := b.opts.Visibility.Eval(c.Name, controller, visibility.Context{
				Value:  b.opts.Value,
				Extras: b.opts.Extras,
			})
			if err != nil {
				return Block{}, fmt.Errorf("evaluate %q: %w", c.Name, err)
			}
			block.BodyVisible = visible
		}
	default:
		return Block{}, fmt.Errorf("%w %q", schema.ErrUnknownContainerKind, c.Kind)
	}

	for _, row := range c.Children {
		if row.IsDivider() {
			block.Rows = append(block.Rows, Line{Divider: true})
			continue
		}
		block.Rows = append(block.Rows, b.line(row, c.Name, false, block.BodyVisible))
	}
	return block, nil
}

func (b builder) line(row schema.Row, namespace string, options, visible bool) Line {
	var line Line
	for _, field := range row {
		if field.NotAvailable {
			continue
		}
		switch field.Type {
		case schema.TypeDivider:
			continue
		case schema.TypeButtonAnchor:
			if b.opts.ButtonAnchors {
				line.Entries = append(line.Entries, Entry{Kind: EntryButtons, Field: field, Visible: visible})
			}
			continue
		case schema.TypeInputAnchor:
			if input, ok := b.opts.Externals.Find(field.Name); ok {
				line.Entries = append(line.Entries, Entry{Kind: EntryExternal, Field: field, Element: input.Element, Visible: visible})
			}
			continue
		}
		if field.Component == "" {
			continue
		}

		key := schema.KeyFor(field, namespace)
		key.Option = key.Option || options
		name := key.Wire()
		line.Entries = append(line.Entries, Entry{
			Kind:     EntryField,
			Field:    field,
			Key:      key,
			Name:     name,
			Visible:  visible,
			Disabled: b.disabled(name, field),
		})
	}
	return line
}

func (b builder) disabled(name string, field schema.Field) bool {
	if b.opts.Disabled != nil {
		return b.opts.Disabled(name, field)
	}
	return field.StaticDisabled()
}

// Controller returns the wire name of the option gating a conditional
// container's body. It falls back to the first option field and is empty
// when the container has no options.
func Controller(c *schema.Container) string {
	if c == nil || c.Kind != schema.KindConditional {
		return ""
	}
	local := c.ControlledBy
	if local == "" && len(c.Options) > 0 {
		local = c.Options[0].Name
	}
	if local == "" {
		return ""
	}
	return schema.OptionKey(c, local).Wire()
}

// Entries returns every visible field entry in render order.
func (p Plan) Entries() []Entry {
	var out []Entry
	p.each(func(entry Entry) {
		if entry.Kind == EntryField && entry.Visible {
			out = append(out, entry)
		}
	})
	return out
}

// Names returns the wire names of the visible field entries.
func (p Plan) Names() []string {
	entries := p.Entries()
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}

// Entry finds the entry named name, visible or not.
func (p Plan) Entry(name string) (Entry, bool) {
	var (
		found Entry
		ok    bool
	)
	p.each(func(entry Entry) {
		if !ok && entry.Kind == EntryField && entry.Name == name {
			found, ok = entry, true
		}
	})
	return found, ok
}

func (p Plan) each(fn func(Entry)) {
	for _, block := range p.Blocks {
		for _, entry := range block.Options.Entries {
			fn(entry)
		}
		for _, line := range block.Rows {
			for _, entry := range line.Entries {
				fn(entry)
			}
		}
	}
}
