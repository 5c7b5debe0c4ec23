package bml

import "github.com/hajimehoshi/ebiten/v2"

// KeySource is implemented by engines that deliver keyboard input. The
// returned func removes the listener.
type KeySource interface {
	AddKeyListener(fn func(ebiten.Key)) (remove func())
}

// --- Listener registry ---

type keyHandler struct {
	id uint32
	fn func(ebiten.Key)
}

// keyRegistry stores key listeners in registration order.
type keyRegistry struct {
	handlers []keyHandler
	nextID   uint32
}

func (r *keyRegistry) add(fn func(ebiten.Key)) func() {
	r.nextID++
	id := r.nextID
	r.handlers = append(r.handlers, keyHandler{id: id, fn: fn})
	return func() { r.remove(id) }
}

// remove unregisters the handler with the given id.
// The entry is removed from the slice to avoid nil iteration waste.
func (r *keyRegistry) remove(id uint32) {
	for i := range r.handlers {
		if r.handlers[i].id == id {
			copy(r.handlers[i:], r.handlers[i+1:])
			r.handlers[len(r.handlers)-1] = keyHandler{}
			r.handlers = r.handlers[:len(r.handlers)-1]
			return
		}
	}
}

func (r *keyRegistry) dispatch(k ebiten.Key) {
	// Snapshot: a handler may remove itself.
	hs := append([]keyHandler(nil), r.handlers...)
	for _, h := range hs {
		h.fn(k)
	}
}

func (r *keyRegistry) len() int {
	return len(r.handlers)
}

// --- Camera controls ---

// controlStep is how far one key press moves the active camera, in world
// units.
const controlStep = 0.25

// controlDelta maps a key to a camera-local movement. Unmapped keys report
// false.
func controlDelta(k ebiten.Key) (Vec3, bool) {
	switch k {
	case ebiten.KeyW, ebiten.KeyArrowUp:
		return Vec3{0, 0, controlStep}, true
	case ebiten.KeyS, ebiten.KeyArrowDown:
		return Vec3{0, 0, -controlStep}, true
	case ebiten.KeyA, ebiten.KeyArrowLeft:
		return Vec3{-controlStep, 0, 0}, true
	case ebiten.KeyD, ebiten.KeyArrowRight:
		return Vec3{controlStep, 0, 0}, true
	case ebiten.KeyQ:
		return Vec3{0, -controlStep, 0}, true
	case ebiten.KeyE:
		return Vec3{0, controlStep, 0}, true
	}
	return Vec3{}, false
}

// handleControlKey moves the active camera along its own axes.
func (s *Scene) handleControlKey(k ebiten.Key) {
	if s.graph == nil {
		return
	}
	cam := s.graph.ActiveCamera()
	if cam == nil {
		return
	}
	d, ok := controlDelta(k)
	if !ok {
		return
	}
	rot := computeLocalTransform(&Node{Rotation: cam.Rotation, Scale: Vec3One})
	cam.SetPosition(cam.Position.Add(rot.transformPoint(d)))
}
