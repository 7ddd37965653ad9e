package form

import (
	"sort"
	"sync"
)

// WatchFunc observes a single field.
type WatchFunc func(name string, value any)

type watcher struct {
	id int
	fn WatchFunc
}

// Store is the form-state store: wire-named values, mount-time defaults,
// field errors, touched flags and the focus target. All other components read
// from it or write through it.
type Store struct {
	mu       sync.RWMutex
	values   map[string]any
	defaults map[string]any
	errors   map[string]string
	touched  map[string]bool
	focused  string
	watchers map[string][]watcher
	nextID   int
}

// NewStore seeds the store with defaults. Every key in defaults is a known
// field name; values start as a copy of defaults.
func NewStore(defaults map[string]any) *Store {
	return &Store{
		values:   cloneMap(defaults),
		defaults: cloneMap(defaults),
		errors:   make(map[string]string),
		touched:  make(map[string]bool),
		watchers: make(map[string][]watcher),
	}
}

// Known reports whether name was declared at mount time or written since.
func (s *Store) Known(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[name]
	return ok
}

// Value returns the live value of name, or nil.
func (s *Store) Value(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Default returns the mount-time value of name.
func (s *Store) Default(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults[name]
}

// SetValue writes name and notifies its watchers.
func (s *Store) SetValue(name string, value any) {
	s.mu.Lock()
	s.values[name] = value
	subs := append([]watcher(nil), s.watchers[name]...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(name, value)
	}
}

// SetValues writes several fields, notifying watchers in sorted name order.
func (s *Store) SetValues(values map[string]any) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.SetValue(name, values[name])
	}
}

// Values returns a consistent snapshot of every field value.
func (s *Store) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMap(s.values)
}

// Names returns the known field names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset restores the mount-time defaults overlaid with values, and clears
// errors, touched flags and focus. Watchers of changed fields are notified.
func (s *Store) Reset(values map[string]any) {
	s.mu.Lock()
	next := cloneMap(s.defaults)
	for name, value := range values {
		next[name] = value
	}
	prev := s.values
	s.values = next
	s.errors = make(map[string]string)
	s.touched = make(map[string]bool)
	s.focused = ""

	type notice struct {
		name  string
		value any
		subs  []watcher
	}
	var notices []notice
	for name, subs := range s.watchers {
		if equalValues(prev[name], next[name]) {
			continue
		}
		notices = append(notices, notice{name: name, value: next[name], subs: append([]watcher(nil), subs...)})
	}
	s.mu.Unlock()

	sort.Slice(notices, func(i, j int) bool { return notices[i].name < notices[j].name })
	for _, n := range notices {
		for _, sub := range n.subs {
			sub.fn(n.name, n.value)
		}
	}
}

// Dirty reports whether the live values differ from the defaults, ignoring
// empty values on either side.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !Equivalent(s.values, s.defaults)
}

// SetError records a field error.
func (s *Store) SetError(name, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[name] = message
}

// Error returns the recorded error for name.
func (s *Store) Error(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.errors[name]
	return msg, ok
}

// Errors returns a copy of every recorded error.
func (s *Store) Errors() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.errors))
	for name, msg := range s.errors {
		out[name] = msg
	}
	return out
}

// ClearErrors removes the errors of names, or every error when names is
// empty.
func (s *Store) ClearErrors(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		s.errors = make(map[string]string)
		return
	}
	for _, name := range names {
		delete(s.errors, name)
	}
}

// Touch marks name as blurred at least once.
func (s *Store) Touch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched[name] = true
}

// Touched reports whether name was blurred.
func (s *Store) Touched(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.touched[name]
}

// Focus moves the focus target to name. It reports false, leaving the focus
// unchanged, when name is not a known field.
func (s *Store) Focus(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[name]; !ok {
		return false
	}
	s.focused = name
	return true
}

// Focused returns the current focus target.
func (s *Store) Focused() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focused
}

// Watch subscribes fn to changes of name only. The returned function cancels
// the subscription.
func (s *Store) Watch(name string, fn WatchFunc) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers[name] = append(s.watchers[name], watcher{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			subs := s.watchers[name]
			for idx, sub := range subs {
				if sub.id == id {
					s.watchers[name] = append(subs[:idx:idx], subs[idx+1:]...)
					break
				}
			}
			if len(s.watchers[name]) == 0 {
				delete(s.watchers, name)
			}
		})
	}
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
