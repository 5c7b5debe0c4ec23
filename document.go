package bml

import (
	"fmt"

	"go.uber.org/zap"
)

// Attr is an attribute value that may be absent. The zero Attr is absent.
type Attr struct {
	Value string
	Set   bool
}

// Present returns a set Attr holding v.
func Present(v string) Attr {
	return Attr{Value: v, Set: true}
}

// Attribute is one name/value pair on an Element.
type Attribute struct {
	Name  string
	Value string
}

// Lifecycle is implemented by behaviours bound to elements. The Document
// calls OnAttach and OnDetach synchronously when an element joins or leaves
// the body. Attribute changes are delivered later, by whoever drains the
// MutationObserver covering the element.
type Lifecycle interface {
	OnAttach()
	OnDetach()
	OnAttributeChanged(name string, oldValue, newValue Attr)
}

// Document is the host element tree. Elements under Body are connected.
type Document struct {
	body      *Element
	defs      map[string]func(*Element) Lifecycle
	observers []*MutationObserver
	log       *zap.Logger
}

// NewDocument creates a document with an empty, connected body.
func NewDocument(opts ...Option) *Document {
	s := applyOptions(opts)
	d := &Document{
		defs: make(map[string]func(*Element) Lifecycle),
		log:  s.log,
	}
	d.body = &Element{Tag: "body", doc: d, connected: true}
	return d
}

// Body returns the root element.
func (d *Document) Body() *Element {
	return d.body
}

// Define binds tag to a behaviour factory. Elements with that tag created
// later get a behaviour at creation. Existing elements are upgraded in
// document order, and connected ones are attached immediately. A tag can
// only be defined once.
func (d *Document) Define(tag string, factory func(*Element) Lifecycle) error {
	if _, exists := d.defs[tag]; exists {
		return fmt.Errorf("bml: tag %q already defined", tag)
	}
	d.defs[tag] = factory
	d.body.walk(func(el *Element) bool {
		if el.Tag == tag && el.behavior == nil {
			el.behavior = factory(el)
			if el.connected {
				el.behavior.OnAttach()
			}
		}
		return true
	})
	return nil
}

// CreateElement creates a detached element, binding its behaviour if the tag
// is defined.
func (d *Document) CreateElement(tag string) *Element {
	el := &Element{Tag: tag, doc: d}
	if factory, ok := d.defs[tag]; ok {
		el.behavior = factory(el)
	}
	return el
}

// GetElementByID returns the first connected element whose id attribute is
// id.
func (d *Document) GetElementByID(id string) *Element {
	var found *Element
	d.body.walk(func(el *Element) bool {
		if v, ok := el.Attribute("id"); ok && v == id {
			found = el
			return false
		}
		return true
	})
	return found
}

func (d *Document) notify(rec MutationRecord) {
	for _, o := range d.observers {
		o.enqueue(rec)
	}
}

// Element is a node in the host tree.
type Element struct {
	Tag string

	doc       *Document
	parent    *Element
	children  []*Element
	attrs     []Attribute
	behavior  Lifecycle
	connected bool
}

// Document returns the owning document.
func (el *Element) Document() *Document {
	return el.doc
}

// Parent returns the parent element, or nil.
func (el *Element) Parent() *Element {
	return el.parent
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (el *Element) Children() []*Element {
	return el.children
}

// Behavior returns the bound behaviour, or nil.
func (el *Element) Behavior() Lifecycle {
	return el.behavior
}

// IsConnected reports whether the element is in the document body.
func (el *Element) IsConnected() bool {
	return el.connected
}

// Attribute returns the named attribute's value.
func (el *Element) Attribute(name string) (string, bool) {
	for _, a := range el.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns the named attribute as an Attr.
func (el *Element) Attr(name string) Attr {
	v, ok := el.Attribute(name)
	return Attr{Value: v, Set: ok}
}

// HasAttribute reports whether the named attribute is present.
func (el *Element) HasAttribute(name string) bool {
	_, ok := el.Attribute(name)
	return ok
}

// Attributes returns a copy of the attributes in declaration order.
func (el *Element) Attributes() []Attribute {
	return append([]Attribute(nil), el.attrs...)
}

// SetAttribute sets an attribute, appending it if new.
func (el *Element) SetAttribute(name, value string) {
	old := el.Attr(name)
	if old.Set {
		for i := range el.attrs {
			if el.attrs[i].Name == name {
				el.attrs[i].Value = value
				break
			}
		}
	} else {
		el.attrs = append(el.attrs, Attribute{Name: name, Value: value})
	}
	el.doc.notify(MutationRecord{Type: MutationAttributes, Target: el, Name: name, OldValue: old})
}

// RemoveAttribute removes an attribute. No-op if absent.
func (el *Element) RemoveAttribute(name string) {
	for i := range el.attrs {
		if el.attrs[i].Name == name {
			old := Present(el.attrs[i].Value)
			el.attrs = append(el.attrs[:i], el.attrs[i+1:]...)
			el.doc.notify(MutationRecord{Type: MutationAttributes, Target: el, Name: name, OldValue: old})
			return
		}
	}
}

// AppendChild appends child. A child with a parent is moved. Panics if
// child is nil, belongs to another document, or is an ancestor of el.
func (el *Element) AppendChild(child *Element) {
	if child == nil {
		panic("bml: cannot append nil element")
	}
	if child.doc != el.doc {
		panic("bml: element belongs to another document")
	}
	for p := el; p != nil; p = p.parent {
		if p == child {
			panic("bml: appending element would create a cycle")
		}
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = el
	el.children = append(el.children, child)
	el.doc.notify(MutationRecord{Type: MutationChildList, Target: el, Added: []*Element{child}})
	if el.connected {
		connectTree(child)
	}
}

// RemoveChild detaches child. Panics if child's parent is not el.
func (el *Element) RemoveChild(child *Element) {
	if child.parent != el {
		panic("bml: element's parent is not this element")
	}
	for i, c := range el.children {
		if c == child {
			copy(el.children[i:], el.children[i+1:])
			el.children[len(el.children)-1] = nil
			el.children = el.children[:len(el.children)-1]
			break
		}
	}
	child.parent = nil
	el.doc.notify(MutationRecord{Type: MutationChildList, Target: el, Removed: []*Element{child}})
	if child.connected {
		disconnectTree(child)
	}
}

// Remove detaches el from its parent. No-op if it has none.
func (el *Element) Remove() {
	if el.parent != nil {
		el.parent.RemoveChild(el)
	}
}

// Contains reports whether other is el or one of its descendants.
func (el *Element) Contains(other *Element) bool {
	for p := other; p != nil; p = p.parent {
		if p == el {
			return true
		}
	}
	return false
}

// walk visits el and its descendants in document order until fn returns
// false.
func (el *Element) walk(fn func(*Element) bool) bool {
	if !fn(el) {
		return false
	}
	for _, c := range append([]*Element(nil), el.children...) {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// Walk visits el and its descendants in document order until fn returns
// false.
func (el *Element) Walk(fn func(*Element) bool) {
	el.walk(fn)
}

// connectTree attaches el and its descendants in tree order, upgrading
// elements whose tag was defined after they were created. Elements a
// behaviour appends during OnAttach are connected by AppendChild itself and
// skipped here.
func connectTree(el *Element) {
	if el.connected {
		return
	}
	el.connected = true
	if el.behavior == nil {
		if factory, ok := el.doc.defs[el.Tag]; ok {
			el.behavior = factory(el)
		}
	}
	if el.behavior != nil {
		el.behavior.OnAttach()
	}
	for _, c := range append([]*Element(nil), el.children...) {
		if c.parent == el {
			connectTree(c)
		}
	}
}

// disconnectTree detaches el and its descendants in tree order.
func disconnectTree(el *Element) {
	if !el.connected {
		return
	}
	el.connected = false
	if el.behavior != nil {
		el.behavior.OnDetach()
	}
	for _, c := range append([]*Element(nil), el.children...) {
		if c.parent == el {
			disconnectTree(c)
		}
	}
}
