// Package naming maps schema field identities to the flat wire names used by
// the form-state store and the submitted payload. Names are carried around as
// structured Keys and only collapse to strings at the rendering boundary.
package naming

import (
	"sort"
	"strings"
	"unicode"
)

// OptionsSegment separates a container namespace from its condition-controlling
// option fields.
const OptionsSegment = "Options"

// Resolve returns the wire name of a field. Body fields are prefixed with the
// container name; option fields additionally carry OptionsSegment.
func Resolve(field, container string, option bool) string {
	if option {
		return container + OptionsSegment + field
	}
	return container + field
}

// Key is the two-level identity of a field: the namespace it lives in (the
// enclosing container name, empty at the top level), its local name and
// whether it belongs to the container's option set.
type Key struct {
	Namespace string `json:"namespace,omitempty"`
	Local     string `json:"local"`
	Option    bool   `json:"option,omitempty"`
}

// Wire collapses the key into its flat wire name.
func (k Key) Wire() string {
	return Resolve(k.Local, k.Namespace, k.Option)
}

// String implements fmt.Stringer using a dotted, unambiguous notation.
func (k Key) String() string {
	var b strings.Builder
	if k.Namespace != "" {
		b.WriteString(k.Namespace)
		if k.Option {
			b.WriteString("." + strings.ToLower(OptionsSegment))
		}
		b.WriteByte('.')
	}
	b.WriteString(k.Local)
	return b.String()
}

// Index resolves wire names back into keys by table lookup. It never parses
// prefixes, so container names that prefix unrelated fields cannot misroute
// values; instead such clashes are reported through Collisions.
type Index struct {
	order      []string
	byWire     map[string]Key
	collisions map[string][]Key
}

// NewIndex builds an index over the supplied keys. Repeating an identical key
// is tolerated; two distinct keys sharing a wire name are recorded as a
// collision and the first key wins lookups.
func NewIndex(keys ...Key) *Index {
	idx := &Index{byWire: make(map[string]Key, len(keys))}
	for _, key := range keys {
		idx.Add(key)
	}
	return idx
}

// Add registers a key.
func (i *Index) Add(key Key) {
	wire := key.Wire()
	existing, ok := i.byWire[wire]
	if !ok {
		i.byWire[wire] = key
		i.order = append(i.order, wire)
		return
	}
	if existing == key {
		return
	}
	if i.collisions == nil {
		i.collisions = make(map[string][]Key)
	}
	if len(i.collisions[wire]) == 0 {
		i.collisions[wire] = append(i.collisions[wire], existing)
	}
	i.collisions[wire] = append(i.collisions[wire], key)
}

// Lookup returns the key registered for a wire name.
func (i *Index) Lookup(wire string) (Key, bool) {
	if i == nil {
		return Key{}, false
	}
	key, ok := i.byWire[wire]
	return key, ok
}

// Has reports whether the wire name is known.
func (i *Index) Has(wire string) bool {
	_, ok := i.Lookup(wire)
	return ok
}

// Wires returns the known wire names in registration order.
func (i *Index) Wires() []string {
	if i == nil {
		return nil
	}
	return append([]string(nil), i.order...)
}

// Collisions returns the wire names claimed by more than one distinct key,
// sorted for deterministic reporting.
func (i *Index) Collisions() map[string][]Key {
	if i == nil || len(i.collisions) == 0 {
		return nil
	}
	out := make(map[string][]Key, len(i.collisions))
	for wire, keys := range i.collisions {
		out[wire] = append([]Key(nil), keys...)
	}
	return out
}

// CollidingWires lists the colliding wire names in sorted order.
func (i *Index) CollidingWires() []string {
	if i == nil || len(i.collisions) == 0 {
		return nil
	}
	wires := make([]string, 0, len(i.collisions))
	for wire := range i.collisions {
		wires = append(wires, wire)
	}
	sort.Strings(wires)
	return wires
}

// CamelCase turns snake_case and kebab-case identifiers into camelCase.
// Leading underscores are kept; identifiers without separators are returned
// unchanged.
func CamelCase(ident string) string {
	if !strings.ContainsAny(ident, "_-") {
		return ident
	}
	leading := len(ident) - len(strings.TrimLeft(ident, "_"))
	parts := strings.FieldsFunc(ident[leading:], func(r rune) bool {
		return r == '_' || r == '-'
	})
	var b strings.Builder
	b.WriteString(ident[:leading])
	for idx, part := range parts {
		if idx == 0 {
			b.WriteString(part)
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}
