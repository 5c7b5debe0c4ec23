package bml

import "go.uber.org/zap"

const (
	defaultFOV           = 0.8
	defaultLightLevel    = 0.7
	defaultCameraName    = "default-camera"
	defaultLightName     = "default-light"
	defaultCommandCap    = 256
	defaultSurfaceWidth  = 640
	defaultSurfaceHeight = 480
)

// defaultCameraPosition places the implicit camera slightly above the floor,
// behind the origin, looking down +Z.
var defaultCameraPosition = Vec3{0, 1.6, -5}

// defaultBackground is the clear color used when the scene declares none.
var defaultBackground = Color{0.2, 0.2, 0.25}

// Graph is the native scene graph owned by a Scene: the node tree, the
// active camera, and a side table from node ID to the Entity that owns it.
type Graph struct {
	root       *Node
	Background Color

	camera        *Node
	defaultCamera *Node
	defaultLight  *Node

	owners map[uint32]*Entity

	commands []DrawCommand
	disposed bool
}

// NewGraph creates a graph with a pre-created root transform node.
func NewGraph(name string) *Graph {
	return &Graph{
		root:       NewTransformNode(name),
		Background: defaultBackground,
		owners:     make(map[uint32]*Entity),
		commands:   make([]DrawCommand, 0, defaultCommandCap),
	}
}

// Root returns the graph's root node.
func (g *Graph) Root() *Node {
	return g.root
}

// AddDefaultCamera creates the implicit camera and makes it active if no
// camera is active yet.
func (g *Graph) AddDefaultCamera() *Node {
	if g.defaultCamera != nil {
		return g.defaultCamera
	}
	cam := NewCameraNode(defaultCameraName)
	cam.SetPosition(defaultCameraPosition)
	g.root.AddChild(cam)
	g.defaultCamera = cam
	if g.camera == nil {
		g.camera = cam
	}
	return cam
}

// AddDefaultLight creates the implicit hemispheric light.
func (g *Graph) AddDefaultLight() *Node {
	if g.defaultLight != nil {
		return g.defaultLight
	}
	light := NewLightNode(defaultLightName, defaultLightLevel)
	g.root.AddChild(light)
	g.defaultLight = light
	return light
}

// ActiveCamera returns the camera used for rendering, or nil.
func (g *Graph) ActiveCamera() *Node {
	if g.camera != nil && g.camera.disposed {
		g.camera = g.defaultCamera
	}
	return g.camera
}

// SetActiveCamera makes cam the rendering camera. Passing nil reverts to the
// default camera, if one exists.
func (g *Graph) SetActiveCamera(cam *Node) {
	if cam == nil {
		cam = g.defaultCamera
	}
	g.camera = cam
}

// DefaultCamera returns the implicit camera, or nil when the author declared
// their own.
func (g *Graph) DefaultCamera() *Node {
	return g.defaultCamera
}

// DefaultLight returns the implicit light, or nil when the author declared
// their own.
func (g *Graph) DefaultLight() *Node {
	return g.defaultLight
}

// SetOwner records e as the owner of n for picking.
func (g *Graph) SetOwner(n *Node, e *Entity) {
	g.owners[n.ID] = e
}

// ClearOwner removes the owner entry for the node ID.
func (g *Graph) ClearOwner(id uint32) {
	delete(g.owners, id)
}

// Owner returns the entity that owns n, if any.
func (g *Graph) Owner(n *Node) (*Entity, bool) {
	if n == nil {
		return nil, false
	}
	e, ok := g.owners[n.ID]
	return e, ok
}

// Update recomputes world transforms for every dirty subtree.
func (g *Graph) Update() {
	updateWorldTransform(g.root, identityMat34, false)
}

// Find returns the first node with the given name in depth-first order.
func (g *Graph) Find(name string) *Node {
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		if n.Name == name {
			return n
		}
		for _, c := range n.children {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(g.root)
}

// SetDebugMode enables or disables debug checks on node operations. Warnings
// go to log.
func (g *Graph) SetDebugMode(enabled bool, log *zap.Logger) {
	globalDebug = enabled
	if log == nil {
		log = zap.NewNop()
	}
	globalDebugLog = log
}

// Dispose disposes the root and therefore every node in the graph.
func (g *Graph) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	g.root.Dispose()
	g.camera = nil
	g.defaultCamera = nil
	g.defaultLight = nil
	g.owners = make(map[uint32]*Entity)
	g.commands = g.commands[:0]
}

// IsDisposed reports whether Dispose has been called.
func (g *Graph) IsDisposed() bool {
	return g.disposed
}
