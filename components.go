package bml

import (
	"errors"
	"fmt"
)

// Built-in component names.
const (
	CompPosition  = "position"
	CompRotation  = "rotation"
	CompScale     = "scale"
	CompVisible   = "visible"
	CompGeometry  = "geometry"
	CompMaterial  = "material"
	CompCamera    = "camera"
	CompLight     = "light"
	CompAnimation = "animation"
)

// RegisterDefaults registers the built-in components on reg. It stops at the
// first registration error.
func RegisterDefaults(reg *Registry) error {
	defs := []struct {
		name string
		def  Definition
	}{
		{CompPosition, positionComponent()},
		{CompRotation, rotationComponent()},
		{CompScale, scaleComponent()},
		{CompVisible, visibleComponent()},
		{CompGeometry, geometryComponent()},
		{CompMaterial, materialComponent()},
		{CompCamera, cameraComponent()},
		{CompLight, lightComponent()},
		{CompAnimation, animationComponent()},
	}
	for _, d := range defs {
		if err := reg.Register(d.name, d.def); err != nil {
			return err
		}
	}
	return nil
}

// vec3Component binds a single vec3 attribute to one node field through set,
// restoring def on removal.
func vec3Component(def Vec3, set func(n *Node, v Vec3)) Definition {
	return Definition{
		Schema: Single(TypeVec3, def),
		Update: func(c *Component, _ Data) error {
			set(c.Node(), c.Data.Vec3(ValueKey))
			return nil
		},
		Remove: func(c *Component) error {
			set(c.Node(), def)
			return nil
		},
	}
}

func positionComponent() Definition {
	return vec3Component(Vec3Zero, (*Node).SetPosition)
}

// rotationComponent takes degrees; nodes store radians.
func rotationComponent() Definition {
	return vec3Component(Vec3Zero, func(n *Node, v Vec3) {
		n.SetRotation(degToRad(v))
	})
}

func scaleComponent() Definition {
	return vec3Component(Vec3One, (*Node).SetScale)
}

func visibleComponent() Definition {
	return Definition{
		Schema: Single(TypeBool, true),
		Update: func(c *Component, _ Data) error {
			c.Node().Visible = c.Data.Bool(ValueKey)
			return nil
		},
		Remove: func(c *Component) error {
			c.Node().Visible = true
			return nil
		},
	}
}

func geometryComponent() Definition {
	return Definition{
		Schema: Fields(map[string]Property{
			"primitive": {Type: TypeString, Default: "box"},
			"size":      {Type: TypeNumber, Default: 1.0},
		}),
		Update: func(c *Component, _ Data) error {
			n := c.Node()
			n.Kind = KindMesh
			n.Size = c.Data.Number("size")
			shape, ok := ShapeFromString(c.Data.String("primitive"))
			n.Shape = shape
			if !ok {
				return fmt.Errorf("unknown primitive %q, using box", c.Data.String("primitive"))
			}
			return nil
		},
		Remove: func(c *Component) error {
			n := c.Node()
			if n.Kind == KindMesh {
				n.Kind = KindTransform
			}
			return nil
		},
	}
}

func materialComponent() Definition {
	return Definition{
		Schema: Fields(map[string]Property{
			"color":   {Type: TypeColor, Default: ColorWhite},
			"opacity": {Type: TypeNumber, Default: 1.0},
		}),
		Update: func(c *Component, _ Data) error {
			n := c.Node()
			n.Color = c.Data.Color("color")
			n.Alpha = clamp01(c.Data.Number("opacity"))
			return nil
		},
		Remove: func(c *Component) error {
			n := c.Node()
			n.Color = ColorWhite
			n.Alpha = 1
			return nil
		},
	}
}

func cameraComponent() Definition {
	return Definition{
		Schema: Fields(map[string]Property{
			"fov":    {Type: TypeNumber, Default: defaultFOV},
			"active": {Type: TypeBool, Default: true},
		}),
		Update: func(c *Component, _ Data) error {
			n, g := c.Node(), c.Graph()
			n.Kind = KindCamera
			n.FOV = c.Data.Number("fov")
			if g == nil {
				return nil
			}
			switch {
			case c.Data.Bool("active"):
				g.SetActiveCamera(n)
			case g.ActiveCamera() == n:
				g.SetActiveCamera(nil)
			}
			return nil
		},
		Remove: func(c *Component) error {
			n, g := c.Node(), c.Graph()
			if g != nil && g.ActiveCamera() == n {
				g.SetActiveCamera(nil)
			}
			if n.Kind == KindCamera {
				n.Kind = KindTransform
			}
			return nil
		},
	}
}

var lightTypes = map[string]bool{
	"hemispheric": true,
	"point":       true,
	"directional": true,
}

func lightComponent() Definition {
	return Definition{
		Schema: Fields(map[string]Property{
			"type":      {Type: TypeString, Default: "hemispheric"},
			"intensity": {Type: TypeNumber, Default: defaultLightLevel},
			"color":     {Type: TypeColor, Default: ColorWhite},
		}),
		Update: func(c *Component, _ Data) error {
			n := c.Node()
			n.Kind = KindLight
			n.Intensity = c.Data.Number("intensity")
			n.Color = c.Data.Color("color")
			if typ := c.Data.String("type"); !lightTypes[typ] {
				return fmt.Errorf("unknown light type %q", typ)
			}
			return nil
		},
		Remove: func(c *Component) error {
			n := c.Node()
			if n.Kind == KindLight {
				n.Kind = KindTransform
			}
			return nil
		},
	}
}

// animationState is the animation component's per-instance state.
type animationState struct {
	group *TweenGroup
	loop  bool
}

var errNoTween = errors.New("animation has nothing to tween")

func animationComponent() Definition {
	return Definition{
		Schema: Fields(map[string]Property{
			"property": {Type: TypeString, Default: "position"},
			"to":       {Type: TypeVec3, Default: Vec3Zero},
			"dur":      {Type: TypeNumber, Default: 1000.0},
			"easing":   {Type: TypeString, Default: "linear"},
			"loop":     {Type: TypeBool, Default: false},
		}),
		Update: func(c *Component, _ Data) error {
			c.State = nil
			n := c.Node()
			fn, ok := Easing(c.Data.String("easing"))
			if !ok {
				return fmt.Errorf("unknown easing %q", c.Data.String("easing"))
			}
			dur := float32(c.Data.Number("dur") / 1000)
			if dur <= 0 {
				return fmt.Errorf("duration %vms: %w", c.Data.Number("dur"), errNoTween)
			}
			to := c.Data.Vec3("to")
			var g *TweenGroup
			switch prop := c.Data.String("property"); prop {
			case CompPosition:
				g = TweenPosition(n, to, dur, fn)
			case CompRotation:
				g = TweenRotation(n, degToRad(to), dur, fn)
			case CompScale:
				g = TweenScale(n, to, dur, fn)
			default:
				return fmt.Errorf("property %q: %w", prop, errNoTween)
			}
			c.State = &animationState{group: g, loop: c.Data.Bool("loop")}
			return nil
		},
		Tick: func(c *Component, dt float64) error {
			st, ok := c.State.(*animationState)
			if !ok {
				return nil
			}
			st.group.Update(float32(dt))
			if st.group.Done && st.loop && !c.Node().IsDisposed() {
				st.group.Reset()
			}
			return nil
		},
		Remove: func(c *Component) error {
			c.State = nil
			return nil
		},
	}
}
