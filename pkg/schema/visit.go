package schema

import "github.com/goliatone/go-formrows/pkg/naming"

// FieldVisit is passed to Visit callbacks.
type FieldVisit struct {
	Key       naming.Key
	Field     Field
	Container *Container
}

// Visit calls fn for every data field in schema order: top-level rows, then
// for each container its option row followed by its body rows. Dividers,
// anchors and unavailable fields are skipped.
func Visit(s Schema, fn func(FieldVisit)) {
	for _, node := range s {
		switch n := node.(type) {
		case Row:
			visitRow(n, nil, "", false, fn)
		case *Container:
			if n == nil {
				continue
			}
			visitRow(n.Options, n, n.Name, true, fn)
			for _, row := range n.Children {
				visitRow(row, n, n.Name, false, fn)
			}
		}
	}
}

func visitRow(row Row, container *Container, namespace string, options bool, fn func(FieldVisit)) {
	if row.IsDivider() {
		return
	}
	for _, field := range row {
		if !field.IsData() {
			continue
		}
		key := KeyFor(field, namespace)
		key.Option = key.Option || options
		fn(FieldVisit{
			Key:       key,
			Field:     field,
			Container: container,
		})
	}
}

// KeyFor builds the structured key of a body field declared inside namespace.
// Fields of a container's option row always live in the option namespace;
// use OptionKey for those.
func KeyFor(field Field, namespace string) naming.Key {
	return naming.Key{
		Namespace: namespace,
		Local:     field.Name,
		Option:    field.ConditionalOption,
	}
}

// OptionKey builds the key of a conditional container's option field, which
// always lives in the Options namespace regardless of its own flag.
func OptionKey(c *Container, name string) naming.Key {
	return naming.Key{Namespace: c.Name, Local: name, Option: true}
}

// Containers returns the containers of the schema in order.
func Containers(s Schema) []*Container {
	var out []*Container
	for _, node := range s {
		if c, ok := node.(*Container); ok && c != nil {
			out = append(out, c)
		}
	}
	return out
}
