package bml

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func newTestSurface(w, h string) *Surface {
	el := NewDocument().CreateElement(TagCanvas)
	if w != "" {
		el.SetAttribute("width", w)
	}
	if h != "" {
		el.SetAttribute("height", h)
	}
	return newSurface(el)
}

func TestSurfaceSizeFromCanvas(t *testing.T) {
	w, h := newTestSurface("800", "600").Size()
	if w != 800 || h != 600 {
		t.Errorf("Size = %dx%d, want 800x600", w, h)
	}
	w, h = newTestSurface("", "").Size()
	if w != defaultSurfaceWidth || h != defaultSurfaceHeight {
		t.Errorf("default Size = %dx%d", w, h)
	}
}

func TestSurfaceOnResize(t *testing.T) {
	s := newTestSurface("100", "100")
	var calls int
	var gotW, gotH int
	remove := s.OnResize(func(w, h int) {
		calls++
		gotW, gotH = w, h
	})

	s.SetSize(100, 100)
	if calls != 0 {
		t.Error("unchanged size should not notify")
	}
	s.SetSize(320, 200)
	if calls != 1 || gotW != 320 || gotH != 200 {
		t.Errorf("calls = %d, size = %dx%d", calls, gotW, gotH)
	}

	remove()
	s.SetSize(10, 10)
	if calls != 1 {
		t.Error("removed listener should not be called")
	}
}

func TestHeadlessEngineStep(t *testing.T) {
	h := NewHeadlessEngine(newTestSurface("64", "32"))
	if h.Step(0.1) {
		t.Error("Step before RunRenderLoop should report false")
	}

	var total float64
	h.RunRenderLoop(func(dt float64) { total += dt })
	if !h.Running() {
		t.Fatal("engine should be running")
	}
	h.Step(0.25)
	h.Step(0.25)
	if total != 0.5 || h.Frames() != 2 {
		t.Errorf("total = %v, frames = %d", total, h.Frames())
	}

	h.StopRenderLoop()
	if h.Step(1) || h.Running() {
		t.Error("Step after StopRenderLoop should report false")
	}
}

func TestHeadlessEngineResizeAndDispose(t *testing.T) {
	h := NewHeadlessEngine(newTestSurface("64", "32"))
	if w, ht := h.Size(); w != 64 || ht != 32 {
		t.Errorf("Size = %dx%d", w, ht)
	}
	h.Resize(128, 64)
	if w, ht := h.Size(); w != 128 || ht != 64 || h.Resizes() != 1 {
		t.Errorf("Size = %dx%d, resizes = %d", w, ht, h.Resizes())
	}

	h.RunRenderLoop(func(float64) {})
	h.Dispose()
	if !h.Disposed() || h.Running() {
		t.Error("Dispose should stop the loop")
	}
}

func TestHeadlessEngineKeys(t *testing.T) {
	h := NewHeadlessEngine(newTestSurface("", ""))
	var got []ebiten.Key
	remove := h.AddKeyListener(func(k ebiten.Key) { got = append(got, k) })
	h.PressKey(ebiten.KeyA)
	remove()
	h.PressKey(ebiten.KeyB)
	if len(got) != 1 || got[0] != ebiten.KeyA {
		t.Errorf("keys = %v, want [A]", got)
	}
}

func TestGameEngineLayoutResizesSurface(t *testing.T) {
	s := newTestSurface("100", "100")
	g := NewGameEngine(s)
	s.OnResize(g.Resize)

	w, h := g.Layout(300, 150)
	if w != 300 || h != 150 {
		t.Errorf("Layout = %dx%d", w, h)
	}
	if sw, sh := s.Size(); sw != 300 || sh != 150 {
		t.Errorf("surface = %dx%d", sw, sh)
	}
	if ew, eh := g.Size(); ew != 300 || eh != 150 {
		t.Errorf("engine = %dx%d", ew, eh)
	}
}

func TestGameEngineUpdateAfterDispose(t *testing.T) {
	g := NewGameEngine(newTestSurface("", ""))
	if err := g.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	g.Dispose()
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Update after Dispose = %v, want ebiten.Termination", err)
	}
}

func TestRunRequiresGameEngine(t *testing.T) {
	env := newTestEnv(t)
	env.define()
	_, s := env.newScene()
	if err := Run(s, RunConfig{}); err == nil {
		t.Error("Run with a headless scene should fail")
	}
}
