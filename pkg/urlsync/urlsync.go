// Package urlsync keeps selected form values in step with a URL query string.
// Values are imported at most once per synchronizer and exported only when a
// submit succeeds, so the two directions can never feed each other.
package urlsync

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/naming"
	"github.com/goliatone/go-formrows/pkg/visibility"
)

// Transform rewrites an import or export object.
type Transform func(map[string]any) map[string]any

// Config selects what participates in URL sync.
type Config struct {
	// Subjects are the wire names mirrored into the query.
	Subjects []string
	// Prefix namespaces every synchronised query key.
	Prefix string
	// Exclude lists de-prefixed keys that export and reset never touch.
	Exclude []string
	Import  Transform
	Export  Transform
	// SubmitOnImport asks the host to submit right after a successful import.
	SubmitOnImport bool
	// CamelCaseKeys rewrites snake_case query keys before import.
	CamelCaseKeys bool
}

// Router is the routing layer seen by the synchronizer.
type Router interface {
	// Ready reports whether Query reflects the real location.
	Ready() bool
	Query() url.Values
	// Replace swaps the query without a navigation reset.
	Replace(ctx context.Context, query url.Values) error
}

// Target receives imported values.
type Target interface {
	SetValue(name string, value any)
}

// State is the import state.
type State int

const (
	NotImported State = iota
	Imported
)

func (s State) String() string {
	switch s {
	case Imported:
		return "imported"
	default:
		return "not-imported"
	}
}

// ImportResult reports what an import applied.
type ImportResult struct {
	// Values holds the subject values written into the form.
	Values map[string]any
	// Externals holds the values handed to url external inputs.
	Externals map[string]any
	// Submit is set when the host should submit now.
	Submit bool
}

// Synchronizer runs the import/export state machine for one form session.
type Synchronizer struct {
	mu        sync.Mutex
	cfg       Config
	externals form.Externals
	state     State
}

// New returns a synchronizer in the NotImported state.
func New(cfg Config, externals form.Externals) *Synchronizer {
	return &Synchronizer{cfg: cfg, externals: externals.With(form.ExternalURL)}
}

// Enabled reports whether anything participates in URL sync. A disabled
// synchronizer never leaves NotImported.
func (s *Synchronizer) Enabled() bool {
	return len(s.cfg.Subjects) > 0 || len(s.externals) > 0
}

// State returns the current import state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the configuration.
func (s *Synchronizer) Config() Config { return s.cfg }

// Import applies query to target once. Later calls, and calls on a disabled
// synchronizer, return ok=false without touching anything.
func (s *Synchronizer) Import(query url.Values, target Target) (ImportResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled() || s.state == Imported {
		return ImportResult{}, false
	}

	obj := s.decode(query)
	if s.cfg.Import != nil {
		obj = s.cfg.Import(obj)
	}

	result := ImportResult{Submit: s.cfg.SubmitOnImport}
	for _, subject := range s.cfg.Subjects {
		value, ok := obj[subject]
		if !ok {
			continue
		}
		if target != nil {
			target.SetValue(subject, value)
		}
		if result.Values == nil {
			result.Values = make(map[string]any)
		}
		result.Values[subject] = value
	}
	for _, input := range s.externals {
		value := obj[input.Name]
		if !visibility.Truthy(value) {
			continue
		}
		input.SetValue(value)
		if result.Externals == nil {
			result.Externals = make(map[string]any)
		}
		result.Externals[input.Name] = value
	}

	s.state = Imported
	return result, true
}

// Mount imports from router once it is ready. It is safe to call on every
// ready notification.
func (s *Synchronizer) Mount(router Router, target Target) (ImportResult, bool) {
	if router == nil || !router.Ready() {
		return ImportResult{}, false
	}
	return s.Import(router.Query(), target)
}

// Export builds the export object from submitted values and url externals,
// with falsy values reported as nil, then applies the export transform.
func (s *Synchronizer) Export(values map[string]any) map[string]any {
	out := make(map[string]any, len(s.cfg.Subjects)+len(s.externals))
	for _, subject := range s.cfg.Subjects {
		value := values[subject]
		if !visibility.Truthy(value) {
			value = nil
		}
		out[subject] = value
	}
	for _, input := range s.externals {
		out[input.Name] = input.NullableValue()
	}
	if s.cfg.Export != nil {
		out = s.cfg.Export(out)
	}
	return out
}

// Publish exports values into the router's query, keeping unrelated
// parameters. It does nothing when the synchronizer is disabled.
func (s *Synchronizer) Publish(ctx context.Context, router Router, values map[string]any) (url.Values, error) {
	if !s.Enabled() || router == nil {
		return nil, nil
	}
	next := s.Merge(router.Query(), s.Export(values))
	if err := router.Replace(ctx, next); err != nil {
		return nil, fmt.Errorf("urlsync: replace query: %w", err)
	}
	return next, nil
}

// Merge writes updates into a copy of current under the configured prefix.
// Nil values delete their key; excluded keys are skipped.
func (s *Synchronizer) Merge(current url.Values, updates map[string]any) url.Values {
	next := cloneValues(current)
	excluded := s.excluded()
	for _, key := range sortedKeys(updates) {
		if _, skip := excluded[key]; skip {
			continue
		}
		qkey := s.cfg.Prefix + key
		value := updates[key]
		if value == nil {
			next.Del(qkey)
			continue
		}
		next[qkey] = encode(value)
	}
	return next
}

// Reset removes every synchronised key from a copy of current.
func (s *Synchronizer) Reset(current url.Values) url.Values {
	next := cloneValues(current)
	excluded := s.excluded()
	for _, key := range s.keys() {
		if _, skip := excluded[key]; skip {
			continue
		}
		next.Del(s.cfg.Prefix + key)
	}
	return next
}

// Clear applies Reset through the router.
func (s *Synchronizer) Clear(ctx context.Context, router Router) error {
	if !s.Enabled() || router == nil {
		return nil
	}
	if err := router.Replace(ctx, s.Reset(router.Query())); err != nil {
		return fmt.Errorf("urlsync: replace query: %w", err)
	}
	return nil
}

func (s *Synchronizer) keys() []string {
	keys := append([]string(nil), s.cfg.Subjects...)
	for _, input := range s.externals {
		keys = append(keys, input.Name)
	}
	return keys
}

func (s *Synchronizer) excluded() map[string]struct{} {
	out := make(map[string]struct{}, len(s.cfg.Exclude))
	for _, key := range s.cfg.Exclude {
		out[key] = struct{}{}
	}
	return out
}

// decode de-prefixes the query. With a prefix, unprefixed keys belong to
// someone else and are dropped.
func (s *Synchronizer) decode(query url.Values) map[string]any {
	out := make(map[string]any, len(query))
	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		local := key
		if s.cfg.Prefix != "" {
			trimmed, ok := strings.CutPrefix(key, s.cfg.Prefix)
			if !ok {
				continue
			}
			local = trimmed
		}
		if s.cfg.CamelCaseKeys {
			local = naming.CamelCase(local)
		}
		if len(values) == 1 {
			out[local] = values[0]
		} else {
			out[local] = append([]string(nil), values...)
		}
	}
	return out
}

func encode(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func cloneValues(in url.Values) url.Values {
	out := make(url.Values, len(in))
	for key, values := range in {
		out[key] = append([]string(nil), values...)
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
