// Package ecs provides ECS adapters for bml's scene lifecycle events.
//
// The primary adapter is [NewDonburiStore], which bridges bml lifecycle
// events (scene ready, entity ready and detached, component attached and
// detached) into a [Donburi] world as typed events. Subscribe to
// [SceneEventType] in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	bml.Define(doc, reg, bml.WithEventStore(store))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
