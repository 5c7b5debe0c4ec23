// Package markup reads and writes bml element trees as YAML.
//
// A document is one node:
//
//	tag: bml-scene
//	attrs:
//	  id: main
//	  background: "#223344"
//	children:
//	  - tag: bml-entity
//	    attrs:
//	      geometry: "primitive: sphere"
//	      position: 0 1 0
//
// Attribute order is preserved in both directions, so components bind in the
// order they are written.
package markup

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/phanxgames/bml"
	"gopkg.in/yaml.v3"
)

// ErrNoTag is returned for a node without a tag.
var ErrNoTag = errors.New("markup: node has no tag")

// Node is one element in a markup tree.
type Node struct {
	Tag      string
	Attrs    []bml.Attribute
	Children []*Node
}

type rawNode struct {
	Tag      string    `yaml:"tag"`
	Attrs    yaml.Node `yaml:"attrs,omitempty"`
	Children []*Node   `yaml:"children,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler. Attributes must be a mapping of
// scalars.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var raw rawNode
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Tag == "" {
		return fmt.Errorf("line %d: %w", value.Line, ErrNoTag)
	}
	n.Tag = raw.Tag
	n.Children = raw.Children
	n.Attrs = nil
	switch raw.Attrs.Kind {
	case 0:
		return nil
	case yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: attrs of %q must be a mapping", raw.Attrs.Line, raw.Tag)
	}
	for i := 0; i+1 < len(raw.Attrs.Content); i += 2 {
		k, v := raw.Attrs.Content[i], raw.Attrs.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: attribute %q of %q must be a scalar", v.Line, k.Value, raw.Tag)
		}
		val := v.Value
		if v.Tag == "!!null" {
			val = ""
		}
		n.Attrs = append(n.Attrs, bml.Attribute{Name: k.Value, Value: val})
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (n *Node) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	out.Content = append(out.Content, str("tag"), str(n.Tag))
	if len(n.Attrs) > 0 {
		attrs := &yaml.Node{Kind: yaml.MappingNode}
		for _, a := range n.Attrs {
			attrs.Content = append(attrs.Content, str(a.Name), str(a.Value))
		}
		out.Content = append(out.Content, str("attrs"), attrs)
	}
	if len(n.Children) > 0 {
		children := &yaml.Node{}
		if err := children.Encode(n.Children); err != nil {
			return nil, err
		}
		out.Content = append(out.Content, str("children"), children)
	}
	return out, nil
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Parse decodes a markup document.
func Parse(data []byte) (*Node, error) {
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("markup: %w", err)
	}
	return &n, nil
}

// Marshal encodes n as a markup document.
func Marshal(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("markup: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("markup: %w", err)
	}
	return buf.Bytes(), nil
}

// Build creates the element tree for n in doc. The tree is assembled
// detached and appended to parent last, so every element is connected with
// all of its attributes already set. A nil parent leaves the tree detached.
func Build(doc *bml.Document, parent *bml.Element, n *Node) *bml.Element {
	el := build(doc, n)
	if parent != nil {
		parent.AppendChild(el)
	}
	return el
}

func build(doc *bml.Document, n *Node) *bml.Element {
	el := doc.CreateElement(n.Tag)
	for _, a := range n.Attrs {
		el.SetAttribute(a.Name, a.Value)
	}
	for _, c := range n.Children {
		el.AppendChild(build(doc, c))
	}
	return el
}

// FromElement captures el and its descendants. Canvas elements a scene
// created for itself are included like any other child.
func FromElement(el *bml.Element) *Node {
	n := &Node{Tag: el.Tag, Attrs: el.Attributes()}
	for _, c := range el.Children() {
		n.Children = append(n.Children, FromElement(c))
	}
	return n
}
