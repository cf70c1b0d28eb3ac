// Package vars holds named game variables as strings and notifies watchers
// when a value changes.
package vars

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ChangeFunc is invoked after the named variable changes
type ChangeFunc func(name string)

type watcher struct {
	id uint64
	fn ChangeFunc
}

// Store maps variable names to string values
// Mutation and callbacks belong to the simulation thread; the mutex only
// protects the maps so that bridges may read while staging values
type Store struct {
	mu       sync.RWMutex
	values   map[string]string
	watchers map[string][]watcher
	nextID   uint64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		values:   make(map[string]string),
		watchers: make(map[string][]watcher),
	}
}

// Get returns the current value, or "" when unset
func (s *Store) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// IsSet reports whether the variable has a value
func (s *Store) IsSet(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[name]
	return ok
}

// Set stores value and fires watchers synchronously if it changed
func (s *Store) Set(name, value string) {
	s.mu.Lock()
	old, ok := s.values[name]
	if ok && old == value {
		s.mu.Unlock()
		return
	}
	s.values[name] = value
	s.mu.Unlock()

	s.notify(name)
}

// SetFloat stores a number using the shortest round-trip form
func (s *Store) SetFloat(name string, value float64) {
	s.Set(name, strconv.FormatFloat(value, 'g', -1, 64))
}

// Unset removes the variable; watchers fire if it existed
func (s *Store) Unset(name string) {
	s.mu.Lock()
	_, ok := s.values[name]
	delete(s.values, name)
	s.mu.Unlock()

	if ok {
		s.notify(name)
	}
}

// SetDefaults assigns each entry that has no value yet
func (s *Store) SetDefaults(defaults map[string]string) {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !s.IsSet(k) {
			s.Set(k, defaults[k])
		}
	}
}

// Eval parses the variable as a number, NaN when unset or not numeric
func (s *Store) Eval(name string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s.Get(name)), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// EvalOr returns Eval(name), or def when the value is not a number
func (s *Store) EvalOr(name string, def float64) float64 {
	if v := s.Eval(name); !math.IsNaN(v) {
		return v
	}
	return def
}

// Names returns all variable names in sorted order
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Watch registers fn for changes to name
// The returned subscription must be cancelled by the owner on teardown
func (s *Store) Watch(name string, fn ChangeFunc) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.watchers[name] = append(s.watchers[name], watcher{id: id, fn: fn})
	return &Subscription{store: s, name: name, id: id}
}

// WatcherCount returns the number of live subscriptions for name
func (s *Store) WatcherCount(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers[name])
}

func (s *Store) notify(name string) {
	s.mu.RLock()
	list := make([]watcher, len(s.watchers[name]))
	copy(list, s.watchers[name])
	s.mu.RUnlock()

	for _, w := range list {
		w.fn(name)
	}
}

func (s *Store) remove(name string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.watchers[name]
	for i, w := range list {
		if w.id == id {
			s.watchers[name] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(s.watchers[name]) == 0 {
		delete(s.watchers, name)
	}
}

// Subscription is the handle returned by Watch
type Subscription struct {
	store *Store
	name  string
	id    uint64
	once  sync.Once
}

// Name returns the watched variable
func (sub *Subscription) Name() string {
	return sub.name
}

// Cancel deregisters the callback; safe to call more than once or on nil
func (sub *Subscription) Cancel() {
	if sub == nil {
		return
	}
	sub.once.Do(func() {
		sub.store.remove(sub.name, sub.id)
	})
}
