package controls

import (
	"fmt"
	"sort"
	"sync"
)

// Schema declares the controls and their defaults, e.g. {"fill": "teal"}.
type Schema map[string]string

type Listener func(name, value string)

// Store holds live-editable named string values.
type Store struct {
	mu        sync.RWMutex
	defaults  Schema
	values    map[string]string
	listeners map[int]Listener
	nextID    int
}

func NewStore(schema Schema) *Store {
	s := &Store{
		defaults:  Schema{},
		values:    map[string]string{},
		listeners: map[int]Listener{},
	}
	for name, def := range schema {
		s.defaults[name] = def
		s.values[name] = def
	}
	return s
}

func (s *Store) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

func (s *Store) Lookup(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Set changes a declared control and notifies listeners when the value
// actually changed.
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	cur, ok := s.values[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown control %q", name)
	}
	if cur == value {
		s.mu.Unlock()
		return nil
	}
	s.values[name] = value
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(name, value)
	}
	return nil
}

// Reset restores a control to its schema default.
func (s *Store) Reset(name string) error {
	s.mu.RLock()
	def, ok := s.defaults[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown control %q", name)
	}
	return s.Set(name, def)
}

func (s *Store) Default(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults[name]
}

// Names returns the declared controls in sorted order.
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

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotListeners() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}
