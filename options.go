package bml

import "go.uber.org/zap"

// settings collects every Option. Each constructor reads the fields it uses.
type settings struct {
	log       *zap.Logger
	newEngine EngineFactory
	xr        XRSystem
	store     EventStore
}

// Option configures NewRegistry, NewDocument, and NewSceneFactory.
type Option func(*settings)

// WithLogger sets the logger. The default is NewLogger(false).
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithEngineFactory sets how a scene builds its engine. The default builds a
// GameEngine.
func WithEngineFactory(f EngineFactory) Option {
	return func(s *settings) { s.newEngine = f }
}

// WithXRSystem supplies the immersive-session system. Without one, scenes
// requesting XR log ErrXRUnavailable and run non-immersive.
func WithXRSystem(xr XRSystem) Option {
	return func(s *settings) { s.xr = xr }
}

// WithEventStore forwards scene lifecycle events to store.
func WithEventStore(store EventStore) Option {
	return func(s *settings) { s.store = store }
}

func applyOptions(opts []Option) settings {
	var s settings
	for _, o := range opts {
		o(&s)
	}
	if s.log == nil {
		s.log = NewLogger(false)
	}
	if s.newEngine == nil {
		s.newEngine = func(surface *Surface) (Engine, error) {
			ge := NewGameEngine(surface)
			ge.log = s.log
			return ge, nil
		}
	}
	return s
}
