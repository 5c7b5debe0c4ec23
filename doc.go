// Package bml is a declarative component runtime for 3D scenes drawn with
// [Ebitengine].
//
// Authors describe a scene as a tree of elements. A [TagScene] element owns
// the engine, the native [Graph] and the render loop. Each [TagEntity]
// element below it owns one [Node], and each of its attributes that names a
// registered component binds that component's behaviour to the node.
//
// # Quick start
//
//	reg := bml.NewRegistry()
//	bml.RegisterDefaults(reg)
//
//	doc := bml.NewDocument()
//	bml.Define(doc, reg)
//
//	scene := doc.CreateElement(bml.TagScene)
//	box := doc.CreateElement(bml.TagEntity)
//	box.SetAttribute("geometry", "primitive: box; size: 1")
//	box.SetAttribute("position", "0 1 0")
//	scene.AppendChild(box)
//	doc.Body().AppendChild(scene)
//
//	bml.Run(scene.Behavior().(*bml.Scene), bml.RunConfig{Title: "demo"})
//
// The markup subpackage builds the same tree from YAML.
//
// # Components
//
// A component is a [Definition] registered under a name: a [Schema] plus
// optional Init, Update, Remove and Tick callbacks. Attribute strings are
// parsed against the schema into [Data]. Unparseable values fall back to the
// declared defaults. Update runs only when the parsed data actually changed,
// so rewriting an attribute with an equivalent value is free.
//
// Callback errors and panics are logged and isolated to the failing
// component. They never stop other components or the frame loop.
//
// # Lifecycle
//
// Attribute changes are queued by a [MutationObserver] and applied once per
// frame by the scene, before component ticks and rendering. Call
// [Scene.Flush] to apply them immediately. Entities connected before their
// scene is ready wait for its readiness signal ([Scene.OnReady]).
//
// # Engines
//
// [GameEngine] renders through Ebitengine and is what [Run] drives.
// [HeadlessEngine] advances only when stepped, for tests and tools. Select
// one with [WithEngineFactory].
//
// # ECS integration
//
// Set an [EventStore] with [WithEventStore] to receive lifecycle events. The
// ecs subpackage forwards them to a [Donburi] world.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package bml
