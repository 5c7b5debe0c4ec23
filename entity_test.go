package bml

import (
	"errors"
	"strings"
	"testing"
)

// eventLog is an EventStore that records every event.
type eventLog struct {
	events []SceneEvent
}

func (l *eventLog) EmitEvent(ev SceneEvent) { l.events = append(l.events, ev) }

func (l *eventLog) count(typ EventType) int {
	n := 0
	for _, ev := range l.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

// flakyEngines fails engine construction while fail is set.
type flakyEngines struct {
	fail bool
}

func (f *flakyEngines) build(s *Surface) (Engine, error) {
	if f.fail {
		return nil, errors.New("no rendering context")
	}
	return NewHeadlessEngine(s), nil
}

func TestEntityReadyWhenSceneReady(t *testing.T) {
	env := newTestEnv(t)
	env.define()
	sceneEl, scene := env.newScene()
	el := env.newEntity("id", "box")
	sceneEl.AppendChild(el)

	e := entityOf(t, el)
	if !e.Ready() || e.Node() == nil {
		t.Fatal("entity should be ready immediately under a ready scene")
	}
	if e.Scene() != scene {
		t.Error("entity bound to the wrong scene")
	}
	if e.Node().Name != "box" || e.Node().Parent != scene.Graph().Root() {
		t.Errorf("node %q under %v, want box under root", e.Node().Name, e.Node().Parent)
	}
	if owner, ok := scene.Graph().Owner(e.Node()); !ok || owner != e {
		t.Error("graph side table does not map the node to its entity")
	}
	if len(scene.Entities()) != 1 {
		t.Errorf("scene entities = %d, want 1", len(scene.Entities()))
	}
}

func TestEntityDefersUntilSceneReady(t *testing.T) {
	engines := &flakyEngines{fail: true}
	env := newTestEnv(t, WithEngineFactory(engines.build))
	log := &callLog{}
	if err := env.reg.Register("foo", log.definition(fooSchema)); err != nil {
		t.Fatal(err)
	}
	env.define()
	sceneEl, scene := env.newScene()
	if scene.Ready() {
		t.Fatal("scene should not be ready without an engine")
	}

	el := env.newEntity("foo", "bar: 5")
	sceneEl.AppendChild(el)
	e := entityOf(t, el)
	if e.Node() != nil || e.Ready() || len(log.calls) != 0 {
		t.Fatal("entity must not create its node before the scene is ready")
	}

	engines.fail = false
	scene.OnAttach()
	if !scene.Ready() {
		t.Fatal("scene should be ready after a successful retry")
	}
	if !e.Ready() || e.Node() == nil {
		t.Fatal("readiness signal did not create the node")
	}
	if len(log.calls) != 2 || log.calls[0] != "init" || log.calls[1] != "update" {
		t.Errorf("calls = %v, want [init update] exactly once", log.calls)
	}

	scene.Flush()
	headless(t, scene).Step(1.0 / 60)
	scene.OnAttach()
	if len(log.calls) != 2 {
		t.Errorf("attributes processed again: %v", log.calls)
	}
}

func TestEntityDetachBeforeReadyRemovesListener(t *testing.T) {
	engines := &flakyEngines{fail: true}
	env := newTestEnv(t, WithEngineFactory(engines.build))
	env.define()
	sceneEl, scene := env.newScene()
	el := env.newEntity()
	sceneEl.AppendChild(el)
	if len(scene.readyHandlers) != 1 {
		t.Fatalf("ready handlers = %d, want 1", len(scene.readyHandlers))
	}

	el.Remove()
	if len(scene.readyHandlers) != 0 {
		t.Fatal("detach should remove the pending readiness listener")
	}
	engines.fail = false
	scene.OnAttach()
	if entityOf(t, el).Node() != nil {
		t.Error("detached entity created a node")
	}
}

func TestEntityDefinedBeforeScene(t *testing.T) {
	env := newTestEnv(t)
	log := &callLog{}
	if err := env.reg.Register("foo", log.definition(fooSchema)); err != nil {
		t.Fatal(err)
	}
	sceneEl := env.doc.CreateElement(TagScene)
	el := env.newEntity("foo", "bar: 5")
	sceneEl.AppendChild(el)
	env.doc.Body().AppendChild(sceneEl)

	if err := env.doc.Define(TagEntity, NewEntity); err != nil {
		t.Fatal(err)
	}
	if countWarnings(env.logs, "entity is not inside a scene") != 1 {
		t.Error("expected a warning for the entity without a scene")
	}
	if err := env.doc.Define(TagScene, NewSceneFactory(env.reg, env.opts...)); err != nil {
		t.Fatal(err)
	}
	e := entityOf(t, el)
	if !e.Ready() {
		t.Fatal("scene should attach entities that connected before it")
	}
	if log.count("init") != 1 || log.count("update") != 1 {
		t.Errorf("calls = %v, want init and update once", log.calls)
	}
}

func TestEntityHierarchy(t *testing.T) {
	env := newTestEnv(t)
	env.define()
	sceneEl, _ := env.newScene()
	parent := env.newEntity("id", "parent")
	group := env.doc.CreateElement("div")
	child := env.newEntity("id", "child")
	group.AppendChild(child)
	parent.AppendChild(group)
	sceneEl.AppendChild(parent)

	pn, cn := entityOf(t, parent).Node(), entityOf(t, child).Node()
	if cn.Parent != pn {
		t.Errorf("child node parent = %v, want the nearest entity ancestor's node", cn.Parent)
	}
}

func TestEntityFallsBackToRootAndIsAdopted(t *testing.T) {
	engines := &flakyEngines{fail: true}
	env := newTestEnv(t, WithEngineFactory(engines.build))
	env.define()
	sceneEl, scene := env.newScene()
	parent := env.newEntity("id", "parent")
	child := env.newEntity("id", "child")
	parent.AppendChild(child)
	sceneEl.AppendChild(parent)

	// The parent's listener is gone, so only the child reacts to readiness.
	pe := entityOf(t, parent)
	pe.pending.Remove()
	pe.pending = ReadyHandle{}

	engines.fail = false
	scene.OnAttach()
	ce := entityOf(t, child)
	root := scene.Graph().Root()
	if ce.Node() == nil || ce.Node().Parent != root {
		t.Fatal("child without a ready parent should attach to the scene root")
	}
	if countWarnings(env.logs, "parent entity has no node yet, attaching to scene root") != 1 {
		t.Error("fallback should be logged as a warning")
	}

	pe.OnAttach()
	if ce.Node().Parent != pe.Node() {
		t.Error("child node should be reparented once the parent is ready")
	}
}

func TestEntityTeardownIdempotent(t *testing.T) {
	events := &eventLog{}
	env := newTestEnv(t, WithEventStore(events))
	var removes int
	err := env.reg.Register("foo", Definition{
		Schema: fooSchema,
		Remove: func(c *Component) error { removes++; return nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	env.define()
	sceneEl, scene := env.newScene()
	el := env.newEntity("foo", "bar: 1")
	sceneEl.AppendChild(el)
	e := entityOf(t, el)
	node := e.Node()

	el.Remove()
	e.OnDetach()

	if removes != 1 {
		t.Errorf("remove callbacks = %d, want 1", removes)
	}
	if events.count(EventEntityDetached) != 1 {
		t.Errorf("detach events = %d, want 1", events.count(EventEntityDetached))
	}
	if !node.IsDisposed() || e.Node() != nil || e.Ready() || e.Scene() != nil {
		t.Error("teardown should dispose the node and clear references")
	}
	if len(scene.Entities()) != 0 {
		t.Error("scene still lists the entity")
	}
	if _, ok := scene.Graph().Owner(node); ok {
		t.Error("side table still maps the disposed node")
	}
}

func TestEntityDisposesDescendantNodes(t *testing.T) {
	env := newTestEnv(t)
	env.define()
	sceneEl, _ := env.newScene()
	parent := env.newEntity()
	child := env.newEntity()
	parent.AppendChild(child)
	sceneEl.AppendChild(parent)
	cn := entityOf(t, child).Node()

	parent.Remove()
	if !cn.IsDisposed() {
		t.Error("descendant node should be disposed")
	}
	if entityOf(t, child).Node() != nil {
		t.Error("child entity should be torn down too")
	}
}

func TestEntityIDRenamesNode(t *testing.T) {
	env := newTestEnv(t)
	env.define()
	sceneEl, scene := env.newScene()
	el := env.newEntity()
	sceneEl.AppendChild(el)
	e := entityOf(t, el)
	if !strings.HasPrefix(e.Node().Name, "entity-") {
		t.Errorf("fallback name = %q, want entity- prefix", e.Node().Name)
	}
	first := e.Node().Name
	if e.nodeName() != first {
		t.Error("fallback name should be stable")
	}

	el.SetAttribute("id", "named")
	scene.Flush()
	if e.Node().Name != "named" {
		t.Errorf("node name = %q, want named", e.Node().Name)
	}
	if scene.Graph().Find("named") != e.Node() {
		t.Error("Find should locate the renamed node")
	}
}

func TestEntityOutsideSceneWarns(t *testing.T) {
	env := newTestEnv(t)
	env.define()
	el := env.newEntity()
	env.doc.Body().AppendChild(el)
	e := entityOf(t, el)
	if e.Node() != nil || e.Scene() != nil {
		t.Error("entity outside a scene should stay unbound")
	}
	if countWarnings(env.logs, "entity is not inside a scene") != 1 {
		t.Error("expected a warning")
	}
	el.Remove()
}
