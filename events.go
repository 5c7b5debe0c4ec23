package bml

// EventStore is the interface for optional ECS integration.
// When set, scene lifecycle events are forwarded to it.
type EventStore interface {
	EmitEvent(event SceneEvent)
}

// SceneEvent carries one scene lifecycle event.
type SceneEvent struct {
	Type      EventType
	Scene     string // graph root name
	EntityID  uint32 // zero for scene-level events
	Component string // set for component events
}

// ReadyEvent is delivered to OnReady listeners. It carries the handles a
// collaborator needs to query the scene.
type ReadyEvent struct {
	Scene  *Scene
	Graph  *Graph
	Engine Engine
}

type readyHandler struct {
	id uint32
	fn func(ReadyEvent)
}

// ReadyHandle allows removing a pending readiness listener.
type ReadyHandle struct {
	id    uint32
	scene *Scene
}

// Remove unregisters the listener. No-op if it already fired.
func (h ReadyHandle) Remove() {
	if h.scene == nil {
		return
	}
	hs := h.scene.readyHandlers
	for i := range hs {
		if hs[i].id == h.id {
			copy(hs[i:], hs[i+1:])
			hs[len(hs)-1] = readyHandler{}
			h.scene.readyHandlers = hs[:len(hs)-1]
			return
		}
	}
}

func (h ReadyHandle) active() bool {
	return h.scene != nil
}
