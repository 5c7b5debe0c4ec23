package bml

import (
	"image/color"
	"math"
)

// Vec3 is a 3D vector used for positions, rotations, scales, and directions.
// The coordinate system is left-handed with Y up, matching the engine's
// default camera looking down +Z.
type Vec3 struct {
	X, Y, Z float64
}

// Vec3Zero and Vec3One are the common defaults for position and scale.
var (
	Vec3Zero = Vec3{}
	Vec3One  = Vec3{1, 1, 1}
)

// Equal reports whether v and o have identical components.
func (v Vec3) Equal(o Vec3) bool {
	return v.X == o.X && v.Y == o.Y && v.Z == o.Z
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Color is an RGB color with components in [0, 1]. Opacity is carried
// separately on the node, as the engine's material model does.
type Color struct {
	R, G, B float64
}

// ColorWhite is the default material color.
var ColorWhite = Color{1, 1, 1}

// Equal reports whether c and o have identical components.
func (c Color) Equal(o Color) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B
}

// Scale multiplies every channel by f and clamps to [0, 1].
func (c Color) Scale(f float64) Color {
	return Color{clamp01(c.R * f), clamp01(c.G * f), clamp01(c.B * f)}
}

// RGBA converts c to a non-premultiplied 8-bit color with the given alpha.
func (c Color) RGBA(alpha float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(alpha)*255 + 0.5),
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Rect is an axis-aligned screen-space rectangle with its origin at the
// top-left and Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// NodeKind distinguishes how the renderer treats a Node.
type NodeKind uint8

const (
	KindTransform NodeKind = iota // grouping node with no visual output
	KindMesh                      // renders a primitive shape
	KindCamera                    // a viewpoint; only the active camera is used
	KindLight                     // contributes to mesh shading
)

// Shape selects the primitive drawn for a KindMesh node.
type Shape uint8

const (
	ShapeBox    Shape = iota // axis-aligned cube, drawn as a projected square
	ShapeSphere              // drawn as a projected disc
	ShapePlane               // flat quad, drawn as a projected square
)

// ShapeFromString maps a geometry primitive name to a Shape. Unknown names
// report false.
func ShapeFromString(s string) (Shape, bool) {
	switch s {
	case "box", "cube":
		return ShapeBox, true
	case "sphere":
		return ShapeSphere, true
	case "plane":
		return ShapePlane, true
	default:
		return ShapeBox, false
	}
}

// EventType identifies a scene lifecycle event forwarded to an EventStore.
type EventType uint8

const (
	EventSceneReady        EventType = iota // fires once when the scene finishes bootstrap
	EventEntityReady                        // an entity created its node and bound its attributes
	EventEntityDetached                     // an entity was torn down
	EventComponentAttached                  // a component instance was created on an entity
	EventComponentDetached                  // a component instance was removed from an entity
)

// String returns a short name for the event type.
func (t EventType) String() string {
	switch t {
	case EventSceneReady:
		return "scene-ready"
	case EventEntityReady:
		return "entity-ready"
	case EventEntityDetached:
		return "entity-detached"
	case EventComponentAttached:
		return "component-attached"
	case EventComponentDetached:
		return "component-detached"
	default:
		return "unknown"
	}
}

// Tag names bound by Define.
const (
	TagScene  = "bml-scene"
	TagEntity = "bml-entity"
	TagCanvas = "canvas"
)
