package bml

import (
	"math"
	"sort"
)

// nearPlane is the closest view-space depth that is still drawn.
const nearPlane = 0.1

// ambientLevel is the shading floor applied even when no light is present.
const ambientLevel = 0.15

// DrawCommand is a single projected primitive emitted by Graph.Render.
// Commands are ordered back to front.
type DrawCommand struct {
	Node   *Node
	Shape  Shape
	X, Y   float64 // screen-space center
	Radius float64 // screen-space half extent
	Depth  float64 // view-space distance along the camera axis
	Color  Color   // shaded color
	Alpha  float64

	treeOrder int // assigned during traversal for stable sort
}

// Bounds returns the screen-space square covered by the command.
func (c DrawCommand) Bounds() Rect {
	return Rect{X: c.X - c.Radius, Y: c.Y - c.Radius, Width: 2 * c.Radius, Height: 2 * c.Radius}
}

// Render updates world transforms, projects every visible mesh through the
// active camera into a width x height viewport, and returns the resulting
// commands sorted back to front. The returned slice is reused by the next
// call.
func (g *Graph) Render(width, height int) []DrawCommand {
	g.commands = g.commands[:0]
	if g.disposed || width <= 0 || height <= 0 {
		return g.commands
	}
	g.Update()

	view := identityMat34
	fov := defaultFOV
	if cam := g.ActiveCamera(); cam != nil {
		view = invertMat34(cam.world)
		if cam.FOV > 0 {
			fov = cam.FOV
		}
	}
	focal := float64(height) / 2 / math.Tan(fov/2)
	shade := g.lightLevel()

	treeOrder := 0
	g.traverse(g.root, 1, func(n *Node, alpha float64) {
		v := view.transformPoint(n.world.translation())
		if v.Z <= nearPlane {
			return
		}
		treeOrder++
		g.commands = append(g.commands, DrawCommand{
			Node:      n,
			Shape:     n.Shape,
			X:         float64(width)/2 + v.X/v.Z*focal,
			Y:         float64(height)/2 - v.Y/v.Z*focal,
			Radius:    n.Size * n.world.maxScale() / 2 / v.Z * focal,
			Depth:     v.Z,
			Color:     n.Color.Scale(shade),
			Alpha:     alpha,
			treeOrder: treeOrder,
		})
	})

	sort.SliceStable(g.commands, func(i, j int) bool {
		a, b := &g.commands[i], &g.commands[j]
		if a.Depth != b.Depth {
			return a.Depth > b.Depth
		}
		return a.treeOrder < b.treeOrder
	})
	return g.commands
}

// Commands returns the commands produced by the last Render.
func (g *Graph) Commands() []DrawCommand {
	return g.commands
}

// traverse walks visible nodes depth-first and calls emit for each mesh with
// its accumulated alpha. Invisible nodes hide their whole subtree.
func (g *Graph) traverse(n *Node, parentAlpha float64, emit func(*Node, float64)) {
	if !n.Visible {
		return
	}
	alpha := parentAlpha * n.Alpha
	if n.Kind == KindMesh && alpha > 0 {
		emit(n, alpha)
	}
	for _, c := range n.children {
		g.traverse(c, alpha, emit)
	}
}

// lightLevel sums the intensity of every visible light, clamped to
// [ambientLevel, 1].
func (g *Graph) lightLevel() float64 {
	level := ambientLevel
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Kind == KindLight {
			level += n.Intensity
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(g.root)
	return math.Min(level, 1)
}

// Pick returns the entity owning the nearest command whose screen bounds
// contain (x, y), based on the last Render.
func (g *Graph) Pick(x, y float64) (*Entity, bool) {
	for i := len(g.commands) - 1; i >= 0; i-- {
		cmd := g.commands[i]
		if !cmd.Bounds().Contains(x, y) {
			continue
		}
		for n := cmd.Node; n != nil; n = n.Parent {
			if e, ok := g.owners[n.ID]; ok {
				return e, true
			}
		}
	}
	return nil, false
}
