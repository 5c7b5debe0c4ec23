package bml

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// sceneState tracks the scene lifecycle.
type sceneState uint8

const (
	stateUninitialized sceneState = iota
	stateInitializing
	stateReady
	stateTornDown
)

// taskQueue holds work deferred to the next frame. It is the only scene
// state written from other goroutines. A closed queue rejects pushes.
type taskQueue struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
}

// push queues fn and reports whether it was accepted.
func (q *taskQueue) push(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, fn)
	return true
}

// close rejects further pushes and returns the tasks still queued.
func (q *taskQueue) close() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	tasks := q.tasks
	q.tasks = nil
	return tasks
}

func (q *taskQueue) open() {
	q.mu.Lock()
	q.closed = false
	q.mu.Unlock()
}

func (q *taskQueue) drain() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	tasks := q.tasks
	q.tasks = nil
	return tasks
}

// Scene owns the engine, the native graph, and the render loop for one
// TagScene element. It observes its subtree and routes attribute changes to
// entities once per frame.
type Scene struct {
	el      *Element
	reg     *Registry
	manager *ComponentManager
	opts    settings
	log     *zap.Logger

	engine   Engine
	graph    *Graph
	surface  *Surface
	observer *MutationObserver

	removeResize   func()
	removeControls func()

	state         sceneState
	ready         bool
	readyHandlers []readyHandler
	nextHandlerID uint32

	entities []*Entity
	tasks    taskQueue
	debug    bool
	frames   uint64

	xrCancel  context.CancelFunc
	xrSession XRSession
}

var _ Lifecycle = (*Scene)(nil)

// NewSceneFactory returns the behaviour factory for TagScene. Every scene it
// creates resolves components through reg.
func NewSceneFactory(reg *Registry, opts ...Option) func(*Element) Lifecycle {
	s := applyOptions(opts)
	return func(el *Element) Lifecycle {
		return &Scene{
			el:      el,
			reg:     reg,
			opts:    s,
			log:     s.log,
			manager: NewComponentManager(reg, WithLogger(s.log), WithEventStore(s.store)),
		}
	}
}

// Define binds TagScene and TagEntity on doc.
func Define(doc *Document, reg *Registry, opts ...Option) error {
	if err := doc.Define(TagScene, NewSceneFactory(reg, opts...)); err != nil {
		return err
	}
	return doc.Define(TagEntity, NewEntity)
}

// Element returns the bound element.
func (s *Scene) Element() *Element { return s.el }

// Ready reports whether bootstrap finished and the graph can be queried.
func (s *Scene) Ready() bool { return s.ready }

// Engine returns the engine, or nil before initialization.
func (s *Scene) Engine() Engine { return s.engine }

// Graph returns the native graph, or nil before initialization.
func (s *Scene) Graph() *Graph { return s.graph }

// Surface returns the render surface, or nil before initialization.
func (s *Scene) Surface() *Surface { return s.surface }

// Manager returns the scene's component manager.
func (s *Scene) Manager() *ComponentManager { return s.manager }

// XRSession returns the active immersive session, or nil.
func (s *Scene) XRSession() XRSession { return s.xrSession }

// Entities returns the ready entities in the order they became ready. The
// returned slice MUST NOT be mutated by the caller.
func (s *Scene) Entities() []*Entity { return s.entities }

// Pick returns the entity drawn at screen point (x, y) in the last frame.
func (s *Scene) Pick(x, y float64) (*Entity, bool) {
	if s.graph == nil {
		return nil, false
	}
	return s.graph.Pick(x, y)
}

// OnReady registers fn for the readiness signal. If the scene is already
// ready fn runs immediately and the returned handle is inert.
func (s *Scene) OnReady(fn func(ReadyEvent)) ReadyHandle {
	if s.ready {
		fn(s.readyEvent())
		return ReadyHandle{}
	}
	s.nextHandlerID++
	s.readyHandlers = append(s.readyHandlers, readyHandler{id: s.nextHandlerID, fn: fn})
	return ReadyHandle{id: s.nextHandlerID, scene: s}
}

// OnAttach initializes the scene.
func (s *Scene) OnAttach() {
	if s.state == stateInitializing || s.state == stateReady {
		return
	}
	s.state = stateInitializing
	s.tasks.open()

	s.surface = s.ensureSurface()
	engine, err := s.opts.newEngine(s.surface)
	if err != nil {
		s.log.Error("engine construction failed", zap.Error(err))
		s.state = stateUninitialized
		return
	}
	s.engine = engine
	s.graph = NewGraph(s.name())
	s.applySceneAttributes()
	if !s.declares("camera") {
		s.graph.AddDefaultCamera()
	}
	if !s.declares("light") {
		s.graph.AddDefaultLight()
	}
	if p, ok := engine.(Presenter); ok {
		p.Present(s.graph)
	}
	engine.RunRenderLoop(s.frame)

	s.observer = s.el.doc.NewMutationObserver()
	s.observer.Observe(s.el)
	s.removeResize = s.surface.OnResize(func(w, h int) {
		s.engine.Resize(w, h)
	})
	s.setControls(ParseBooleanAttr(s.el.Attr("controls"), false))

	s.ready = true
	s.state = stateReady
	s.emit(SceneEvent{Type: EventSceneReady})
	s.fireReady()
	s.attachStrays()

	if s.el.HasAttribute("xr") {
		s.tasks.push(s.bootstrapXR)
	}
}

// OnDetach tears the scene down. Observers stop before the graph is disposed
// so no queued mutation is applied to a disposed graph.
func (s *Scene) OnDetach() {
	if s.state != stateReady {
		return
	}
	s.observer.Disconnect()
	if s.removeResize != nil {
		s.removeResize()
		s.removeResize = nil
	}
	s.engine.StopRenderLoop()
	s.setControls(false)
	s.endXR()
	s.graph.Dispose()
	s.engine.Dispose()
	s.entities = nil
	s.readyHandlers = nil
	s.ready = false
	s.state = stateTornDown
	// The render loop is stopped, so results still queued, such as a granted
	// immersive session, are settled here.
	for _, task := range s.tasks.close() {
		task()
	}
}

// OnAttributeChanged applies changes to the scene's own attributes.
func (s *Scene) OnAttributeChanged(name string, oldValue, newValue Attr) {
	if !s.ready || oldValue == newValue {
		return
	}
	switch name {
	case "id":
		s.graph.Root().Name = s.name()
	case "background", "debug":
		s.applySceneAttributes()
	case "controls":
		s.setControls(ParseBooleanAttr(newValue, false))
	case "xr":
		if newValue.Set {
			s.tasks.push(s.bootstrapXR)
		} else {
			s.endXR()
		}
	}
}

// Flush applies every queued mutation record now instead of waiting for the
// next frame.
func (s *Scene) Flush() int {
	if s.observer == nil {
		return 0
	}
	recs := s.observer.TakeRecords()
	for _, rec := range recs {
		s.handleMutation(rec)
	}
	return len(recs)
}

// frame is the render-loop callback: deferred tasks, queued mutations,
// component ticks, then render.
func (s *Scene) frame(dt float64) {
	s.frames++
	for _, task := range s.tasks.drain() {
		task()
	}
	if !s.ready {
		return
	}

	var stats frameStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	stats.mutations = s.Flush()
	for _, e := range append([]*Entity(nil), s.entities...) {
		s.manager.Tick(e, dt)
	}
	if s.debug {
		stats.tickTime = time.Since(t0)
		t0 = time.Now()
	}

	w, h := s.engine.Size()
	stats.commandCount = len(s.graph.Render(w, h))

	if s.debug {
		stats.renderTime = time.Since(t0)
		s.debugLog(stats)
	}
}

func (s *Scene) handleMutation(rec MutationRecord) {
	switch rec.Type {
	case MutationChildList:
		for _, el := range rec.Added {
			if _, ok := el.behavior.(*Entity); ok {
				s.log.Debug("entity added", zap.String("tag", el.Tag), zap.String("id", el.Attr("id").Value))
			}
		}
		for _, el := range rec.Removed {
			if _, ok := el.behavior.(*Entity); ok {
				s.log.Debug("entity removed", zap.String("tag", el.Tag), zap.String("id", el.Attr("id").Value))
			}
		}
	case MutationAttributes:
		cur := rec.Target.Attr(rec.Name)
		if rec.Target == s.el {
			s.OnAttributeChanged(rec.Name, rec.OldValue, cur)
			return
		}
		e, ok := rec.Target.behavior.(*Entity)
		if !ok || e.scene != s || !s.reg.IsObserved(rec.Name) {
			return
		}
		e.OnAttributeChanged(rec.Name, rec.OldValue, cur)
	}
}

func (s *Scene) fireReady() {
	hs := s.readyHandlers
	s.readyHandlers = nil
	ev := s.readyEvent()
	for _, h := range hs {
		h.fn(ev)
	}
}

// attachStrays attaches entities that connected before this scene had a
// behaviour and so found no scene.
func (s *Scene) attachStrays() {
	s.el.walk(func(el *Element) bool {
		if e, ok := el.behavior.(*Entity); ok && el.connected && e.scene == nil {
			e.OnAttach()
		}
		return true
	})
}

func (s *Scene) readyEvent() ReadyEvent {
	return ReadyEvent{Scene: s, Graph: s.graph, Engine: s.engine}
}

// ensureSurface reuses the first canvas in the subtree or appends one.
func (s *Scene) ensureSurface() *Surface {
	var canvas *Element
	s.el.walk(func(el *Element) bool {
		if el.Tag == TagCanvas {
			canvas = el
			return false
		}
		return true
	})
	if canvas == nil {
		s.log.Debug("no canvas in scene, creating one")
		canvas = s.el.doc.CreateElement(TagCanvas)
		s.el.AppendChild(canvas)
	}
	return newSurface(canvas)
}

// declares reports whether any descendant element carries the attribute.
func (s *Scene) declares(attr string) bool {
	found := false
	for _, c := range s.el.children {
		c.walk(func(el *Element) bool {
			found = el.HasAttribute(attr)
			return !found
		})
		if found {
			return true
		}
	}
	return false
}

func (s *Scene) applySceneAttributes() {
	s.graph.Background = ParseColor(s.el.Attr("background").Value, defaultBackground)
	s.debug = ParseBooleanAttr(s.el.Attr("debug"), false)
	s.graph.SetDebugMode(s.debug, s.log)
}

func (s *Scene) setControls(enabled bool) {
	if !enabled {
		if s.removeControls != nil {
			s.removeControls()
			s.removeControls = nil
		}
		return
	}
	if s.removeControls != nil {
		return
	}
	src, ok := s.engine.(KeySource)
	if !ok {
		s.log.Warn("engine has no keyboard input, controls disabled")
		return
	}
	s.removeControls = src.AddKeyListener(s.handleControlKey)
}

func (s *Scene) name() string {
	if id, ok := s.el.Attribute("id"); ok && id != "" {
		return id
	}
	return "scene"
}

func (s *Scene) addEntity(e *Entity) {
	s.entities = append(s.entities, e)
}

func (s *Scene) removeEntity(e *Entity) {
	for i, other := range s.entities {
		if other == e {
			copy(s.entities[i:], s.entities[i+1:])
			s.entities[len(s.entities)-1] = nil
			s.entities = s.entities[:len(s.entities)-1]
			return
		}
	}
}

func (s *Scene) emit(ev SceneEvent) {
	if s.opts.store == nil {
		return
	}
	if s.graph != nil {
		ev.Scene = s.graph.Root().Name
	}
	s.opts.store.EmitEvent(ev)
}
