package bml

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Definition is a reusable component behaviour keyed by name. Callbacks are
// optional. Each receives the instance, whose Data holds the current parsed
// value. Update's old is nil on the first call after Init.
type Definition struct {
	Schema Schema
	Init   func(c *Component) error
	Update func(c *Component, old Data) error
	Remove func(c *Component) error
	// Tick runs once per frame while the instance is attached to a ready
	// entity.
	Tick func(c *Component, dt float64) error
}

// Registry maps component names to definitions. Registration normally happens
// before any scene is built; the lock only guards against concurrent setup.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
	log  *zap.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	s := applyOptions(opts)
	return &Registry{
		defs: make(map[string]Definition),
		log:  s.log,
	}
}

// Register adds def under name. A definition without a schema is rejected and
// any earlier registration stays in effect. Registering an existing name
// replaces it with a warning.
func (r *Registry) Register(name string, def Definition) error {
	if def.Schema.IsZero() {
		r.log.Warn("component registration rejected", zap.String("component", name), zap.Error(ErrMissingSchema))
		return fmt.Errorf("register %q: %w", name, ErrMissingSchema)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[name]; exists {
		r.log.Warn("component already registered, replacing", zap.String("component", name))
	}
	r.defs[name] = def
	return nil
}

// Definition returns the definition registered under name.
func (r *Registry) Definition(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// IsObserved reports whether changes to the named attribute are processed:
// every registered component name, plus "id".
func (r *Registry) IsObserved(name string) bool {
	if name == "id" {
		return true
	}
	_, ok := r.Definition(name)
	return ok
}

// ObservedAttributes returns every registered component name plus "id",
// sorted.
func (r *Registry) ObservedAttributes() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.defs)+1)
	for name := range r.defs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	if _, ok := r.Definition("id"); !ok {
		names = append(names, "id")
	}
	sort.Strings(names)
	return names
}

// Resolve parses raw with the named component's schema. It reports false if
// the component is not registered. A panic while parsing yields the schema
// defaults.
func (r *Registry) Resolve(name, raw string) (data Data, ok bool) {
	def, ok := r.Definition(name)
	if !ok {
		return nil, false
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("component parse failed, using defaults",
				zap.String("component", name), zap.String("value", raw), zap.Any("panic", rec))
			data = def.Schema.Defaults()
		}
	}()
	return ParseComponent(raw, def.Schema, r.log.With(zap.String("component", name))), true
}
