package bml

import (
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates the three components of one Vec3 field on a Node.
// Create one via TweenPosition, TweenRotation or TweenScale and call
// Update(dt) each frame. The group writes values and marks the node dirty. If
// the target node is disposed, the group stops immediately.
type TweenGroup struct {
	tweens [3]*gween.Tween
	field  *Vec3
	target *Node
	Done   bool
}

func newTweenGroup(node *Node, field *Vec3, to Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := *field
	return &TweenGroup{
		tweens: [3]*gween.Tween{
			gween.New(float32(from.X), float32(to.X), duration, fn),
			gween.New(float32(from.Y), float32(to.Y), duration, fn),
			gween.New(float32(from.Z), float32(to.Z), duration, fn),
		},
		field:  field,
		target: node,
	}
}

// Update advances the tweens by dt seconds, writes the field and marks the
// node dirty. If the target node has been disposed, Done is set and no writes
// occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target.IsDisposed() {
		g.Done = true
		return
	}

	x, dx := g.tweens[0].Update(dt)
	y, dy := g.tweens[1].Update(dt)
	z, dz := g.tweens[2].Update(dt)
	*g.field = Vec3{X: float64(x), Y: float64(y), Z: float64(z)}
	g.Done = dx && dy && dz
	g.target.MarkDirty()
}

// Reset rewinds the group to its start values.
func (g *TweenGroup) Reset() {
	for _, tw := range g.tweens {
		tw.Reset()
	}
	g.Done = false
}

// TweenPosition animates node.Position to to over duration seconds.
func TweenPosition(node *Node, to Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, &node.Position, to, duration, fn)
}

// TweenRotation animates node.Rotation to to, in radians, over duration
// seconds.
func TweenRotation(node *Node, to Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, &node.Rotation, to, duration, fn)
}

// TweenScale animates node.Scale to to over duration seconds.
func TweenScale(node *Node, to Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, &node.Scale, to, duration, fn)
}

var easings = map[string]ease.TweenFunc{
	"linear":         ease.Linear,
	"easeinquad":     ease.InQuad,
	"easeoutquad":    ease.OutQuad,
	"easeinout":      ease.InOutQuad,
	"easeinoutquad":  ease.InOutQuad,
	"easeincubic":    ease.InCubic,
	"easeoutcubic":   ease.OutCubic,
	"easeinoutcubic": ease.InOutCubic,
	"easeinsine":     ease.InSine,
	"easeoutsine":    ease.OutSine,
	"easeinoutsine":  ease.InOutSine,
	"easeoutbounce":  ease.OutBounce,
	"easeoutelastic": ease.OutElastic,
}

// Easing returns the easing function for name. Names are matched without
// case, so "easeInOutQuad" and "easeinoutquad" are the same.
func Easing(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}
