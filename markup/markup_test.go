package markup

import (
	"errors"
	"strings"
	"testing"

	"github.com/phanxgames/bml"
	"go.uber.org/zap"
)

const sceneYAML = `
tag: bml-scene
attrs:
  id: main
  background: "#223344"
children:
  - tag: bml-entity
    attrs:
      id: ball
      geometry: "primitive: sphere"
      position: 0 1 0
      visible: true
    children:
      - tag: bml-entity
        attrs:
          id: moon
          position: 1 0 0
`

func TestParsePreservesAttributeOrder(t *testing.T) {
	n, err := Parse([]byte(sceneYAML))
	if err != nil {
		t.Fatal(err)
	}
	if n.Tag != bml.TagScene {
		t.Errorf("Tag = %q", n.Tag)
	}
	if len(n.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(n.Children))
	}
	ball := n.Children[0]
	var names []string
	for _, a := range ball.Attrs {
		names = append(names, a.Name)
	}
	if got := strings.Join(names, ","); got != "id,geometry,position,visible" {
		t.Errorf("attribute order = %s", got)
	}
	if ball.Attrs[3].Value != "true" {
		t.Errorf("visible = %q, want raw scalar text", ball.Attrs[3].Value)
	}
	if len(ball.Children) != 1 || ball.Children[0].Attrs[0].Value != "moon" {
		t.Errorf("nested child not parsed: %+v", ball.Children)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing tag", "attrs: {a: b}"},
		{"attrs not mapping", "tag: x\nattrs: [a, b]"},
		{"nested value", "tag: x\nattrs:\n  a: {b: c}"},
		{"bad yaml", "tag: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
	_, err := Parse([]byte("children: []"))
	if !errors.Is(err, ErrNoTag) {
		t.Errorf("err = %v, want ErrNoTag", err)
	}
}

func TestNullAttributeIsEmpty(t *testing.T) {
	n, err := Parse([]byte("tag: bml-scene\nattrs:\n  debug:\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Attrs) != 1 || n.Attrs[0].Name != "debug" || n.Attrs[0].Value != "" {
		t.Errorf("Attrs = %+v", n.Attrs)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	n, err := Parse([]byte(sceneYAML))
	if err != nil {
		t.Fatal(err)
	}
	out, err := Marshal(n)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, out)
	}
	ball := again.Children[0]
	if ball.Attrs[3].Name != "visible" || ball.Attrs[3].Value != "true" {
		t.Errorf("visible lost in round trip: %+v\n%s", ball.Attrs, out)
	}
	if len(ball.Children) != 1 {
		t.Errorf("children lost in round trip:\n%s", out)
	}
}

func TestBuildConnectsScene(t *testing.T) {
	opts := []bml.Option{bml.WithLogger(zap.NewNop()), bml.WithEngineFactory(bml.HeadlessEngineFactory)}
	reg := bml.NewRegistry(opts...)
	if err := bml.RegisterDefaults(reg); err != nil {
		t.Fatal(err)
	}
	doc := bml.NewDocument(opts...)
	if err := bml.Define(doc, reg, opts...); err != nil {
		t.Fatal(err)
	}

	n, err := Parse([]byte(sceneYAML))
	if err != nil {
		t.Fatal(err)
	}
	el := Build(doc, doc.Body(), n)
	scene, ok := el.Behavior().(*bml.Scene)
	if !ok || !scene.Ready() {
		t.Fatal("scene not ready after Build")
	}

	moonEl := doc.GetElementByID("moon")
	if moonEl == nil {
		t.Fatal("moon element missing")
	}
	moon := moonEl.Behavior().(*bml.Entity)
	if !moon.Ready() {
		t.Fatal("moon entity not ready")
	}
	if moon.Node().Parent == nil || moon.Node().Parent.Name != "ball" {
		t.Errorf("moon parent = %v, want ball", moon.Node().Parent)
	}
	if got := moon.Node().Position; got != (bml.Vec3{X: 1}) {
		t.Errorf("moon position = %v", got)
	}
	if scene.Graph().Root().Name != "main" {
		t.Errorf("root name = %q", scene.Graph().Root().Name)
	}
}

func TestFromElement(t *testing.T) {
	doc := bml.NewDocument(bml.WithLogger(zap.NewNop()))
	root := doc.CreateElement("group")
	root.SetAttribute("a", "1")
	child := doc.CreateElement("item")
	child.SetAttribute("b", "2")
	root.AppendChild(child)

	n := FromElement(root)
	if n.Tag != "group" || len(n.Attrs) != 1 || n.Attrs[0] != (bml.Attribute{Name: "a", Value: "1"}) {
		t.Errorf("root = %+v", n)
	}
	if len(n.Children) != 1 || n.Children[0].Tag != "item" {
		t.Errorf("children = %+v", n.Children)
	}
}
