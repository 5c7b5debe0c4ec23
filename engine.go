package bml

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
)

// FrameFunc is the per-frame callback registered with an Engine. dt is the
// frame time in seconds.
type FrameFunc func(dt float64)

// Engine is the rendering engine a Scene drives.
type Engine interface {
	// RunRenderLoop registers frame to be called once per frame until
	// StopRenderLoop.
	RunRenderLoop(frame FrameFunc)
	StopRenderLoop()
	Running() bool
	// Resize sets the viewport size in pixels.
	Resize(width, height int)
	Size() (width, height int)
	Dispose()
}

// Presenter is implemented by engines that draw a Graph to the screen.
type Presenter interface {
	Present(g *Graph)
}

// EngineFactory builds an engine for a render surface.
type EngineFactory func(surface *Surface) (Engine, error)

// --- Surface ---

type resizeHandler struct {
	id uint32
	fn func(width, height int)
}

// Surface is the render surface a scene draws into. It is bound to a canvas
// element and notifies listeners when its size changes.
type Surface struct {
	el            *Element
	width, height int
	handlers      []resizeHandler
	nextID        uint32
}

// newSurface reads the canvas element's width and height attributes.
func newSurface(el *Element) *Surface {
	return &Surface{
		el:     el,
		width:  int(ParseNumber(el.Attr("width").Value, defaultSurfaceWidth)),
		height: int(ParseNumber(el.Attr("height").Value, defaultSurfaceHeight)),
	}
}

// Element returns the canvas element backing the surface.
func (s *Surface) Element() *Element {
	return s.el
}

// Size returns the surface size in pixels.
func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// SetSize changes the surface size. Listeners fire only if the size changed.
func (s *Surface) SetSize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	hs := append([]resizeHandler(nil), s.handlers...)
	for _, h := range hs {
		h.fn(width, height)
	}
}

// OnResize registers fn for size changes. The returned func removes it.
func (s *Surface) OnResize(fn func(width, height int)) (remove func()) {
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, resizeHandler{id: id, fn: fn})
	return func() {
		for i := range s.handlers {
			if s.handlers[i].id == id {
				s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
				return
			}
		}
	}
}

// --- GameEngine ---

// GameEngine is the Ebitengine-backed Engine. It implements ebiten.Game:
// Update runs the frame callback, Draw presents the graph's last render, and
// Layout feeds the window size back into the Surface.
type GameEngine struct {
	surface       *Surface
	frame         FrameFunc
	running       bool
	graph         *Graph
	width, height int
	keys          keyRegistry
	keyBuf        []ebiten.Key
	disposed      bool

	// ScreenshotDir is where Screenshot writes PNGs. Defaults to
	// "screenshots".
	ScreenshotDir string
	shots         []string
	log           *zap.Logger
}

var (
	_ Engine      = (*GameEngine)(nil)
	_ Presenter   = (*GameEngine)(nil)
	_ KeySource   = (*GameEngine)(nil)
	_ ebiten.Game = (*GameEngine)(nil)
)

// NewGameEngine creates an engine sized to surface.
func NewGameEngine(surface *Surface) *GameEngine {
	w, h := surface.Size()
	return &GameEngine{surface: surface, width: w, height: h, log: zap.NewNop()}
}

func (g *GameEngine) RunRenderLoop(frame FrameFunc) {
	g.frame = frame
	g.running = true
}

func (g *GameEngine) StopRenderLoop() {
	g.running = false
	g.frame = nil
}

func (g *GameEngine) Running() bool { return g.running }

func (g *GameEngine) Resize(width, height int) {
	g.width, g.height = width, height
}

func (g *GameEngine) Size() (int, int) { return g.width, g.height }

func (g *GameEngine) Present(graph *Graph) { g.graph = graph }

func (g *GameEngine) AddKeyListener(fn func(ebiten.Key)) func() {
	return g.keys.add(fn)
}

func (g *GameEngine) Dispose() {
	g.StopRenderLoop()
	g.graph = nil
	g.disposed = true
}

// Update implements ebiten.Game.
func (g *GameEngine) Update() error {
	if g.disposed {
		return ebiten.Termination
	}
	if g.keys.len() > 0 {
		g.keyBuf = inpututil.AppendJustPressedKeys(g.keyBuf[:0])
		for _, k := range g.keyBuf {
			g.keys.dispatch(k)
		}
	}
	if g.running && g.frame != nil {
		g.frame(1 / float64(ebiten.TPS()))
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *GameEngine) Draw(screen *ebiten.Image) {
	if g.graph == nil || g.graph.IsDisposed() {
		return
	}
	screen.Fill(g.graph.Background.RGBA(1))
	for _, cmd := range g.graph.Commands() {
		clr := cmd.Color.RGBA(cmd.Alpha)
		x, y, r := float32(cmd.X), float32(cmd.Y), float32(cmd.Radius)
		switch cmd.Shape {
		case ShapeSphere:
			vector.DrawFilledCircle(screen, x, y, r, clr, true)
		default:
			vector.DrawFilledRect(screen, x-r, y-r, 2*r, 2*r, clr, true)
		}
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game.
func (g *GameEngine) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.surface.SetSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title string
	// Width and Height default to the scene's surface size.
	Width, Height int
}

// Run opens a window and runs the scene's GameEngine until the window closes
// or the scene is torn down. The scene must be ready and built with the
// default engine factory.
func Run(scene *Scene, cfg RunConfig) error {
	ge, ok := scene.Engine().(*GameEngine)
	if !ok {
		return errors.New("bml: Run requires a ready scene backed by a GameEngine")
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = ge.surface.Size()
	}
	ebiten.SetWindowSize(w, h)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(ge)
}

// --- HeadlessEngine ---

// HeadlessEngine is an Engine without a window. Frames advance only when
// Step is called, which makes it suitable for tests and offline tools.
type HeadlessEngine struct {
	surface       *Surface
	frame         FrameFunc
	running       bool
	width, height int
	keys          keyRegistry
	frames        int
	resizes       int
	disposed      bool
}

var (
	_ Engine    = (*HeadlessEngine)(nil)
	_ KeySource = (*HeadlessEngine)(nil)
)

// NewHeadlessEngine creates a headless engine sized to surface.
func NewHeadlessEngine(surface *Surface) *HeadlessEngine {
	w, h := surface.Size()
	return &HeadlessEngine{surface: surface, width: w, height: h}
}

// HeadlessEngineFactory is an EngineFactory producing HeadlessEngines.
func HeadlessEngineFactory(surface *Surface) (Engine, error) {
	return NewHeadlessEngine(surface), nil
}

func (h *HeadlessEngine) RunRenderLoop(frame FrameFunc) {
	h.frame = frame
	h.running = true
}

func (h *HeadlessEngine) StopRenderLoop() {
	h.running = false
	h.frame = nil
}

func (h *HeadlessEngine) Running() bool { return h.running }

func (h *HeadlessEngine) Resize(width, height int) {
	h.width, h.height = width, height
	h.resizes++
}

func (h *HeadlessEngine) Size() (int, int) { return h.width, h.height }

func (h *HeadlessEngine) AddKeyListener(fn func(ebiten.Key)) func() {
	return h.keys.add(fn)
}

func (h *HeadlessEngine) Dispose() {
	h.StopRenderLoop()
	h.disposed = true
}

// Step runs one frame with the given dt. It reports false if the render loop
// is not running.
func (h *HeadlessEngine) Step(dt float64) bool {
	if !h.running || h.frame == nil {
		return false
	}
	h.frame(dt)
	h.frames++
	return true
}

// PressKey delivers a key press to every key listener.
func (h *HeadlessEngine) PressKey(k ebiten.Key) {
	h.keys.dispatch(k)
}

// Frames returns how many frames Step has run.
func (h *HeadlessEngine) Frames() int { return h.frames }

// Resizes returns how many times Resize was called.
func (h *HeadlessEngine) Resizes() int { return h.resizes }

// Disposed reports whether Dispose was called.
func (h *HeadlessEngine) Disposed() bool { return h.disposed }
