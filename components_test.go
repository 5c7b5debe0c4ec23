package bml

import (
	"math"
	"testing"
)

func newDefaultsEnv(t *testing.T) (*testEnv, *Element, *Scene) {
	t.Helper()
	env := newTestEnv(t)
	if err := RegisterDefaults(env.reg); err != nil {
		t.Fatal(err)
	}
	env.define()
	sceneEl, scene := env.newScene()
	return env, sceneEl, scene
}

func TestTransformComponents(t *testing.T) {
	env, sceneEl, scene := newDefaultsEnv(t)
	el := env.newEntity("position", "1 2 3", "rotation", "0 90 0", "scale", "2")
	sceneEl.AppendChild(el)
	n := entityOf(t, el).Node()

	if n.Position != (Vec3{1, 2, 3}) {
		t.Errorf("Position = %v", n.Position)
	}
	if math.Abs(n.Rotation.Y-math.Pi/2) > 1e-12 {
		t.Errorf("Rotation.Y = %v, want pi/2 radians", n.Rotation.Y)
	}
	if n.Scale != (Vec3{2, 2, 2}) {
		t.Errorf("Scale = %v", n.Scale)
	}

	el.RemoveAttribute("position")
	el.RemoveAttribute("scale")
	el.SetAttribute("rotation", "bad")
	scene.Flush()
	if n.Position != Vec3Zero || n.Scale != Vec3One {
		t.Errorf("removal should restore defaults, got %v %v", n.Position, n.Scale)
	}
	if n.Rotation != Vec3Zero {
		t.Errorf("malformed rotation should fall back to the default, got %v", n.Rotation)
	}
}

func TestVisibleComponent(t *testing.T) {
	env, sceneEl, scene := newDefaultsEnv(t)
	el := env.newEntity("visible", "false")
	sceneEl.AppendChild(el)
	n := entityOf(t, el).Node()
	if n.Visible {
		t.Error("visible=false should hide the node")
	}
	el.SetAttribute("visible", "")
	scene.Flush()
	if !n.Visible {
		t.Error("empty visible attribute should show the node")
	}
}

func TestGeometryAndMaterial(t *testing.T) {
	env, sceneEl, scene := newDefaultsEnv(t)
	el := env.newEntity("geometry", "primitive: sphere; size: 2", "material", "color: #ff0000; opacity: 0.5")
	sceneEl.AppendChild(el)
	n := entityOf(t, el).Node()

	if n.Kind != KindMesh || n.Shape != ShapeSphere || n.Size != 2 {
		t.Errorf("node = kind %v shape %v size %v", n.Kind, n.Shape, n.Size)
	}
	if !n.Color.Equal(Color{1, 0, 0}) || n.Alpha != 0.5 {
		t.Errorf("material = %v alpha %v", n.Color, n.Alpha)
	}

	el.SetAttribute("geometry", "primitive: torus")
	scene.Flush()
	if n.Shape != ShapeBox {
		t.Error("unknown primitive should fall back to a box")
	}
	if env.logs.FilterMessage("component callback failed").Len() != 1 {
		t.Error("unknown primitive should be reported")
	}

	el.RemoveAttribute("geometry")
	el.RemoveAttribute("material")
	scene.Flush()
	if n.Kind != KindTransform || !n.Color.Equal(ColorWhite) || n.Alpha != 1 {
		t.Error("removal should revert to a plain transform node")
	}
}

func TestCameraComponent(t *testing.T) {
	env, sceneEl, scene := newDefaultsEnv(t)
	g := scene.Graph()
	el := env.newEntity("camera", "fov: 1")
	sceneEl.AppendChild(el)
	n := entityOf(t, el).Node()

	if g.ActiveCamera() != n || n.Kind != KindCamera || n.FOV != 1 {
		t.Fatal("camera component should activate its node")
	}
	el.SetAttribute("camera", "active: false")
	scene.Flush()
	if g.ActiveCamera() != g.DefaultCamera() {
		t.Error("inactive camera should hand back to the default")
	}
	el.SetAttribute("camera", "")
	scene.Flush()
	el.Remove()
	if g.ActiveCamera() != g.DefaultCamera() {
		t.Error("removed camera should hand back to the default")
	}
}

func TestLightComponent(t *testing.T) {
	env, sceneEl, _ := newDefaultsEnv(t)
	el := env.newEntity("light", "type: point; intensity: 0.3; color: gold")
	sceneEl.AppendChild(el)
	n := entityOf(t, el).Node()
	if n.Kind != KindLight || n.Intensity != 0.3 {
		t.Errorf("light = kind %v intensity %v", n.Kind, n.Intensity)
	}
	if env.logs.FilterMessage("component callback failed").Len() != 0 {
		t.Error("point is a known light type")
	}
}

func TestAnimationComponent(t *testing.T) {
	env, sceneEl, scene := newDefaultsEnv(t)
	el := env.newEntity("position", "0 0 0", "animation", "to: 10 0 0; dur: 1000")
	sceneEl.AppendChild(el)
	n := entityOf(t, el).Node()
	h := headless(t, scene)

	h.Step(0.5)
	if math.Abs(n.Position.X-5) > 0.01 {
		t.Errorf("X at half time = %v, want ~5", n.Position.X)
	}
	h.Step(0.5)
	if math.Abs(n.Position.X-10) > 0.01 {
		t.Errorf("X at end = %v, want ~10", n.Position.X)
	}
	h.Step(0.5)
	if math.Abs(n.Position.X-10) > 0.01 {
		t.Error("finished animation without loop should hold its end value")
	}
}

func TestAnimationLoops(t *testing.T) {
	env, sceneEl, scene := newDefaultsEnv(t)
	el := env.newEntity("animation", "property: scale; to: 3 3 3; dur: 500; loop: true")
	sceneEl.AppendChild(el)
	n := entityOf(t, el).Node()
	h := headless(t, scene)

	h.Step(0.25)
	h.Step(0.25)
	c, _ := entityOf(t, el).Component("animation")
	st := c.State.(*animationState)
	if st.group.Done {
		t.Error("looping animation should restart when done")
	}
	h.Step(0.25)
	if math.Abs(n.Scale.X-2) > 0.01 {
		t.Errorf("Scale.X after restart = %v, want ~2", n.Scale.X)
	}
}

func TestAnimationRejectsBadConfig(t *testing.T) {
	env, sceneEl, _ := newDefaultsEnv(t)
	for _, raw := range []string{"easing: wobble", "dur: 0", "property: color"} {
		el := env.newEntity("animation", raw)
		sceneEl.AppendChild(el)
		c, ok := entityOf(t, el).Component("animation")
		if !ok || c.State != nil {
			t.Errorf("%q: bad config should leave no tween", raw)
		}
	}
	if n := env.logs.FilterMessage("component callback failed").Len(); n != 3 {
		t.Errorf("failures logged = %d, want 3", n)
	}
}
