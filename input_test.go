package bml

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestKeyRegistryAddRemove(t *testing.T) {
	var r keyRegistry
	var a, b int
	removeA := r.add(func(ebiten.Key) { a++ })
	r.add(func(ebiten.Key) { b++ })
	if r.len() != 2 {
		t.Fatalf("len = %d, want 2", r.len())
	}

	r.dispatch(ebiten.KeySpace)
	removeA()
	removeA()
	r.dispatch(ebiten.KeySpace)

	if a != 1 || b != 2 {
		t.Errorf("a = %d, b = %d; want 1, 2", a, b)
	}
	if r.len() != 1 {
		t.Errorf("len = %d, want 1", r.len())
	}
}

func TestKeyRegistrySelfRemoval(t *testing.T) {
	var r keyRegistry
	var calls int
	var remove func()
	remove = r.add(func(ebiten.Key) {
		calls++
		remove()
	})
	r.add(func(ebiten.Key) { calls++ })

	r.dispatch(ebiten.KeyW)
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if r.len() != 1 {
		t.Errorf("len = %d, want 1", r.len())
	}
}

func TestControlDelta(t *testing.T) {
	tests := []struct {
		key  ebiten.Key
		want Vec3
	}{
		{ebiten.KeyW, Vec3{Z: controlStep}},
		{ebiten.KeyArrowUp, Vec3{Z: controlStep}},
		{ebiten.KeyS, Vec3{Z: -controlStep}},
		{ebiten.KeyA, Vec3{X: -controlStep}},
		{ebiten.KeyArrowRight, Vec3{X: controlStep}},
		{ebiten.KeyQ, Vec3{Y: -controlStep}},
		{ebiten.KeyE, Vec3{Y: controlStep}},
	}
	for _, tt := range tests {
		got, ok := controlDelta(tt.key)
		if !ok || got != tt.want {
			t.Errorf("controlDelta(%v) = %v, %v; want %v", tt.key, got, ok, tt.want)
		}
	}
	if _, ok := controlDelta(ebiten.KeyZ); ok {
		t.Error("KeyZ should not be mapped")
	}
}

func TestControlKeyFollowsCameraYaw(t *testing.T) {
	env := newTestEnv(t)
	env.define()
	_, s := env.newScene("controls", "")
	cam := s.Graph().ActiveCamera()
	cam.SetPosition(Vec3{})
	cam.SetRotation(Vec3{Y: 1.5707963267948966})

	headless(t, s).PressKey(ebiten.KeyW)
	assertVec(t, "camera", cam.Position, Vec3{X: controlStep})
}
