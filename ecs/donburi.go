package ecs

import (
	"github.com/phanxgames/bml"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SceneEventType is the Donburi event type for bml lifecycle events.
var SceneEventType = events.NewEventType[bml.SceneEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventStore backed by a Donburi world.
// Lifecycle events are published to SceneEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) bml.EventStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event bml.SceneEvent) {
	SceneEventType.Publish(s.world, event)
}
