package bml

// nodeIDCounter is a plain counter. The graph is only touched from the frame
// loop.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is a native scene-graph element. One flat struct covers every kind so
// that components can switch a node between kinds in place.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Kind NodeKind

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local). Rotation is Euler angles in radians, applied
	// yaw (Y), then pitch (X), then roll (Z).
	Position Vec3
	Rotation Vec3
	Scale    Vec3

	// Computed during Graph.Update.
	world          mat34
	transformDirty bool

	Visible bool
	Alpha   float64
	Color   Color

	// Mesh fields (KindMesh)
	Shape Shape
	Size  float64

	// Camera fields (KindCamera). FOV is the vertical field of view in radians.
	FOV float64

	// Light fields (KindLight)
	Intensity float64

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Scale = Vec3One
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible = true
	n.Size = 1
	n.FOV = defaultFOV
	n.Intensity = 1
	n.world = identityMat34
	n.transformDirty = true
}

// NewTransformNode creates a grouping node with no visual output.
func NewTransformNode(name string) *Node {
	n := &Node{Name: name, Kind: KindTransform}
	nodeDefaults(n)
	return n
}

// NewMeshNode creates a node that renders the given primitive.
func NewMeshNode(name string, shape Shape) *Node {
	n := &Node{Name: name, Kind: KindMesh, Shape: shape}
	nodeDefaults(n)
	return n
}

// NewCameraNode creates a camera node with the default field of view.
func NewCameraNode(name string) *Node {
	n := &Node{Name: name, Kind: KindCamera}
	nodeDefaults(n)
	return n
}

// NewLightNode creates a light node with the given intensity.
func NewLightNode(name string, intensity float64) *Node {
	n := &Node{Name: name, Kind: KindLight}
	nodeDefaults(n)
	n.Intensity = intensity
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("bml: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("bml: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	child.MarkDirty()
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("bml: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	child.MarkDirty()
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Disposing twice is a no-op.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Transform property setters ---

// SetPosition sets the local position and marks the node dirty.
func (n *Node) SetPosition(p Vec3) {
	n.Position = p
	n.MarkDirty()
}

// SetRotation sets the local rotation in radians and marks the node dirty.
func (n *Node) SetRotation(r Vec3) {
	n.Rotation = r
	n.MarkDirty()
}

// SetScale sets the local scale and marks the node dirty.
func (n *Node) SetScale(s Vec3) {
	n.Scale = s
	n.MarkDirty()
}

// MarkDirty forces the world transform to be recomputed on the next
// Graph.Update. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// WorldPosition returns the node's origin in world space as of the last
// Graph.Update.
func (n *Node) WorldPosition() Vec3 {
	return n.world.translation()
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
