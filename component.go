package bml

// Component is one component instance bound to one entity. There is at most
// one instance per (entity, component name).
type Component struct {
	Name   string
	Data   Data
	Schema Schema
	// Raw is the attribute string Data was parsed from.
	Raw string
	// State is scratch space owned by the definition's callbacks.
	State any

	entity *Entity
	def    Definition
}

// Entity returns the owning entity.
func (c *Component) Entity() *Entity {
	return c.entity
}

// Node returns the owning entity's native node.
func (c *Component) Node() *Node {
	return c.entity.Node()
}

// Graph returns the graph of the owning entity's scene, or nil.
func (c *Component) Graph() *Graph {
	if c.entity.scene == nil {
		return nil
	}
	return c.entity.scene.graph
}
