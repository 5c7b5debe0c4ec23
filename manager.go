package bml

import (
	"sort"

	"go.uber.org/zap"
)

// ComponentManager binds attributes to component instances. For each
// (entity, component name) it moves unbound -> bound -> updated* -> unbound.
// Callback failures are logged per callback and never stop other components.
type ComponentManager struct {
	reg   *Registry
	log   *zap.Logger
	store EventStore
}

// NewComponentManager creates a manager resolving components through reg.
func NewComponentManager(reg *Registry, opts ...Option) *ComponentManager {
	s := applyOptions(opts)
	return &ComponentManager{reg: reg, log: s.log, store: s.store}
}

// Registry returns the registry the manager resolves through.
func (m *ComponentManager) Registry() *Registry {
	return m.reg
}

// InitializeOnConnect binds the named component from value. It is a no-op if
// the entity has no node yet, the component is already bound, or the name is
// not a registered component. Init runs first, then Update with a nil old
// value.
func (m *ComponentManager) InitializeOnConnect(e *Entity, name, value string) {
	if e.node == nil {
		return
	}
	if _, exists := e.components[name]; exists {
		return
	}
	def, ok := m.reg.Definition(name)
	if !ok {
		return
	}
	data, _ := m.reg.Resolve(name, value)
	c := &Component{
		Name:   name,
		Data:   data,
		Schema: def.Schema,
		Raw:    value,
		entity: e,
		def:    def,
	}
	e.components[name] = c
	m.emit(SceneEvent{Type: EventComponentAttached, EntityID: e.id, Component: name})

	if def.Init != nil {
		m.report(safeCall(name, PhaseInit, func() error { return def.Init(c) }), e)
	}
	if def.Update != nil {
		m.report(safeCall(name, PhaseUpdate, func() error { return def.Update(c, nil) }), e)
	}
}

// HandleAttributeChange applies one attribute change. The "id" attribute
// renames the entity's node whenever one exists. Otherwise changes to
// unregistered names, or on entities that are not ready, are ignored. An
// absent newValue detaches; a first value binds; later values reparse and
// call Update only if the data changed.
func (m *ComponentManager) HandleAttributeChange(e *Entity, name string, newValue, oldValue Attr) {
	if name == "id" && e.node != nil {
		e.node.Name = e.nodeName()
	}
	if _, ok := m.reg.Definition(name); !ok || !e.ready {
		return
	}
	if !newValue.Set {
		m.Detach(e, name)
		return
	}
	c, exists := e.components[name]
	if !exists {
		m.InitializeOnConnect(e, name, newValue.Value)
		return
	}

	data, _ := m.reg.Resolve(name, newValue.Value)
	c.Raw = newValue.Value
	if DeepEqual(data, c.Data) {
		return
	}
	old := c.Data
	c.Data = data
	if c.def.Update != nil {
		m.report(safeCall(name, PhaseUpdate, func() error { return c.def.Update(c, old) }), e)
	}
}

// Detach runs the component's Remove callback and unbinds it. No-op if the
// component is not bound.
func (m *ComponentManager) Detach(e *Entity, name string) {
	c, ok := e.components[name]
	if !ok {
		return
	}
	if c.def.Remove != nil {
		m.report(safeCall(name, PhaseRemove, func() error { return c.def.Remove(c) }), e)
	}
	delete(e.components, name)
	m.emit(SceneEvent{Type: EventComponentDetached, EntityID: e.id, Component: name})
}

// DetachAll detaches every bound component, in name order.
func (m *ComponentManager) DetachAll(e *Entity) {
	for _, name := range e.componentNames() {
		m.Detach(e, name)
	}
}

// Tick runs the Tick callback of every bound component, in name order.
func (m *ComponentManager) Tick(e *Entity, dt float64) {
	if !e.ready {
		return
	}
	for _, name := range e.componentNames() {
		c, ok := e.components[name]
		if !ok || c.def.Tick == nil {
			continue
		}
		m.report(safeCall(name, PhaseTick, func() error { return c.def.Tick(c, dt) }), e)
	}
}

func (m *ComponentManager) report(err error, e *Entity) {
	if err == nil {
		return
	}
	cerr := err.(*CallbackError)
	m.log.Warn("component callback failed",
		zap.String("component", cerr.Component),
		zap.String("phase", string(cerr.Phase)),
		zap.String("entity", e.nodeName()),
		zap.Error(cerr.Err),
	)
}

func (m *ComponentManager) emit(ev SceneEvent) {
	if m.store != nil {
		m.store.EmitEvent(ev)
	}
}

// componentNames returns a sorted snapshot of the bound component names.
func (e *Entity) componentNames() []string {
	names := make([]string, 0, len(e.components))
	for name := range e.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
