package bml

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// testEnv is a document with bml tags defined, a headless engine, and an
// observed logger.
type testEnv struct {
	t    *testing.T
	reg  *Registry
	doc  *Document
	logs *observer.ObservedLogs
	opts []Option
}

func newTestEnv(t *testing.T, extra ...Option) *testEnv {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	opts := append([]Option{
		WithLogger(zap.New(core)),
		WithEngineFactory(HeadlessEngineFactory),
	}, extra...)
	env := &testEnv{
		t:    t,
		reg:  NewRegistry(opts...),
		doc:  NewDocument(opts...),
		logs: logs,
		opts: opts,
	}
	return env
}

// define binds the scene and entity tags.
func (env *testEnv) define() {
	env.t.Helper()
	if err := Define(env.doc, env.reg, env.opts...); err != nil {
		env.t.Fatalf("Define: %v", err)
	}
}

// newScene connects an empty scene element and returns its behaviour.
func (env *testEnv) newScene(attrs ...string) (*Element, *Scene) {
	env.t.Helper()
	el := env.doc.CreateElement(TagScene)
	setAttrs(el, attrs...)
	env.doc.Body().AppendChild(el)
	s, ok := el.Behavior().(*Scene)
	if !ok {
		env.t.Fatal("scene element has no Scene behaviour")
	}
	return el, s
}

// newEntity creates an entity element with the given name/value pairs.
func (env *testEnv) newEntity(attrs ...string) *Element {
	el := env.doc.CreateElement(TagEntity)
	setAttrs(el, attrs...)
	return el
}

func setAttrs(el *Element, attrs ...string) {
	for i := 0; i+1 < len(attrs); i += 2 {
		el.SetAttribute(attrs[i], attrs[i+1])
	}
}

func entityOf(t *testing.T, el *Element) *Entity {
	t.Helper()
	e, ok := el.Behavior().(*Entity)
	if !ok {
		t.Fatalf("element %q has no Entity behaviour", el.Tag)
	}
	return e
}

func headless(t *testing.T, s *Scene) *HeadlessEngine {
	t.Helper()
	h, ok := s.Engine().(*HeadlessEngine)
	if !ok {
		t.Fatalf("engine = %T, want *HeadlessEngine", s.Engine())
	}
	return h
}

// countWarnings returns how many warn-level entries have the message.
func countWarnings(logs *observer.ObservedLogs, msg string) int {
	return logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage(msg).Len()
}

// callLog records component callback invocations.
type callLog struct {
	calls []string
	data  []Data
	olds  []Data
}

func (l *callLog) definition(schema Schema) Definition {
	return Definition{
		Schema: schema,
		Init: func(c *Component) error {
			l.calls = append(l.calls, "init")
			l.data = append(l.data, c.Data.Clone())
			l.olds = append(l.olds, nil)
			return nil
		},
		Update: func(c *Component, old Data) error {
			l.calls = append(l.calls, "update")
			l.data = append(l.data, c.Data.Clone())
			l.olds = append(l.olds, old)
			return nil
		},
		Remove: func(c *Component) error {
			l.calls = append(l.calls, "remove")
			l.data = append(l.data, c.Data.Clone())
			l.olds = append(l.olds, nil)
			return nil
		},
	}
}

func (l *callLog) count(name string) int {
	n := 0
	for _, c := range l.calls {
		if c == name {
			n++
		}
	}
	return n
}
