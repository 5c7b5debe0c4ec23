package bml

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// entityIDCounter is a plain counter. Lifecycle hooks run on the document's
// goroutine.
var entityIDCounter uint32

func nextEntityID() uint32 {
	entityIDCounter++
	return entityIDCounter
}

// Entity binds one element to one native node and the components declared
// by its attributes. It moves unconnected -> awaiting-scene -> node-ready ->
// torn-down, skipping awaiting-scene when the scene is already ready.
type Entity struct {
	el *Element
	id uint32

	scene      *Scene
	node       *Node
	nodeID     uint32
	components map[string]*Component
	ready      bool

	pending  ReadyHandle
	fallback string
	log      *zap.Logger
}

var _ Lifecycle = (*Entity)(nil)

// NewEntity is the behaviour factory for TagEntity.
func NewEntity(el *Element) Lifecycle {
	return &Entity{
		el:         el,
		id:         nextEntityID(),
		components: make(map[string]*Component),
		log:        el.doc.log,
	}
}

// ID returns the entity's process-unique ID.
func (e *Entity) ID() uint32 { return e.id }

// Element returns the bound element.
func (e *Entity) Element() *Element { return e.el }

// Scene returns the governing scene, or nil before attach.
func (e *Entity) Scene() *Scene { return e.scene }

// Node returns the native node, or nil until the entity is ready.
func (e *Entity) Node() *Node { return e.node }

// Ready reports whether the node exists and the initial attributes have been
// bound.
func (e *Entity) Ready() bool { return e.ready }

// Component returns the bound component with the given name.
func (e *Entity) Component(name string) (*Component, bool) {
	c, ok := e.components[name]
	return c, ok
}

// Components returns the bound components by name. The returned map MUST NOT
// be mutated by the caller.
func (e *Entity) Components() map[string]*Component {
	return e.components
}

// OnAttach locates the governing scene and creates the node now, or once the
// scene signals readiness.
func (e *Entity) OnAttach() {
	if e.node != nil || e.pending.active() {
		return
	}
	scene := findScene(e.el)
	if scene == nil {
		e.log.Warn("entity is not inside a scene", zap.String("entity", e.nodeName()))
		return
	}
	e.scene = scene
	e.log = scene.log
	if !scene.Ready() {
		e.pending = scene.OnReady(func(ReadyEvent) {
			e.pending = ReadyHandle{}
			e.createNode()
		})
		return
	}
	e.createNode()
}

// OnAttributeChanged forwards a change to the component manager once the
// entity is ready. "id" is forwarded regardless so the node is renamed.
func (e *Entity) OnAttributeChanged(name string, oldValue, newValue Attr) {
	if e.scene == nil {
		return
	}
	if !e.ready && name != "id" {
		return
	}
	if oldValue == newValue {
		return
	}
	e.scene.manager.HandleAttributeChange(e, name, newValue, oldValue)
}

// OnDetach tears the entity down. Calling it again is a no-op.
func (e *Entity) OnDetach() {
	if e.pending.active() {
		e.pending.Remove()
		e.pending = ReadyHandle{}
	}
	if e.node != nil && e.scene != nil {
		e.scene.manager.DetachAll(e)
		e.scene.removeEntity(e)
		if e.scene.graph != nil {
			e.scene.graph.ClearOwner(e.nodeID)
		}
		e.node.Dispose()
		e.scene.emit(SceneEvent{Type: EventEntityDetached, EntityID: e.id})
	}
	e.node = nil
	e.nodeID = 0
	e.ready = false
	e.scene = nil
	clear(e.components)
}

// createNode builds the native node under the resolved parent, binds every
// present attribute in declaration order, and only then marks the entity
// ready.
func (e *Entity) createNode() {
	if e.node != nil || e.scene == nil || !e.scene.Ready() {
		return
	}
	parent := e.resolveParent()
	node := NewTransformNode(e.nodeName())
	parent.AddChild(node)
	e.node = node
	e.nodeID = node.ID
	e.scene.graph.SetOwner(node, e)

	for _, a := range e.el.Attributes() {
		e.scene.manager.InitializeOnConnect(e, a.Name, a.Value)
	}
	e.ready = true
	e.scene.addEntity(e)
	e.adoptOrphans()
	e.scene.emit(SceneEvent{Type: EventEntityReady, EntityID: e.id})
}

// resolveParent returns the nearest ancestor entity's node, or the graph
// root when there is none or that entity has no node yet.
func (e *Entity) resolveParent() *Node {
	root := e.scene.graph.Root()
	for p := e.el.parent; p != nil && p != e.scene.el; p = p.parent {
		pe, ok := p.behavior.(*Entity)
		if !ok {
			continue
		}
		if pe.node == nil {
			e.log.Warn("parent entity has no node yet, attaching to scene root",
				zap.String("entity", e.nodeName()), zap.String("parent", pe.nodeName()))
			return root
		}
		return pe.node
	}
	return root
}

// adoptOrphans reparents nodes of the nearest descendant entities that fell
// back to the scene root because this entity was not ready when they were.
func (e *Entity) adoptOrphans() {
	root := e.scene.graph.Root()
	var visit func(el *Element)
	visit = func(el *Element) {
		for _, c := range el.children {
			ce, ok := c.behavior.(*Entity)
			if !ok {
				visit(c)
				continue
			}
			if ce.node != nil && ce.node.Parent == root {
				e.log.Debug("reparenting entity under its ready parent",
					zap.String("entity", ce.nodeName()), zap.String("parent", e.nodeName()))
				e.node.AddChild(ce.node)
			}
		}
	}
	visit(e.el)
}

// nodeName returns the element's id, or a generated name kept for the
// entity's lifetime.
func (e *Entity) nodeName() string {
	if id, ok := e.el.Attribute("id"); ok && id != "" {
		return id
	}
	if e.fallback == "" {
		e.fallback = "entity-" + uuid.NewString()[:8]
	}
	return e.fallback
}

// findScene returns the scene bound to the nearest ancestor element.
func findScene(el *Element) *Scene {
	for p := el.parent; p != nil; p = p.parent {
		if s, ok := p.behavior.(*Scene); ok {
			return s
		}
	}
	return nil
}
