package scene

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/thicket"
)

// scenePriority runs scene updates after every other frame subscriber.
const scenePriority = math.MaxInt32

// Window is the slice of window state a backend configures.
type Window interface {
	SetTitle(title string)
	SetScreenClearedEveryFrame(cleared bool)
}

type ebitenWindow struct{}

func (ebitenWindow) SetTitle(title string)             { ebiten.SetWindowTitle(title) }
func (ebitenWindow) SetScreenClearedEveryFrame(c bool) { ebiten.SetScreenClearedEveryFrame(c) }

// Backend binds a Scene to a canvas store: the scene root becomes the
// store's scene, its primary camera the store's camera, and each rendered
// frame advances the scene.
type Backend struct {
	scene  *Scene
	window Window

	store       *thicket.Store
	unsubscribe func()
	retain      bool // screen is kept between frames
	pending     bool // a frame rendered since the last Draw
}

// NewBackend returns a backend for scene using the ebiten window.
func NewBackend(scene *Scene) *Backend {
	return &Backend{scene: scene, window: ebitenWindow{}}
}

// SetWindow replaces the window the backend configures.
func (b *Backend) SetWindow(w Window) {
	b.window = w
}

// Scene returns the bound scene.
func (b *Backend) Scene() *Scene {
	return b.scene
}

// Init implements thicket.Backend. target is unused; ebiten owns a single
// window.
func (b *Backend) Init(target any, store *thicket.Store) (thicket.Configurator, error) {
	if b.scene == nil {
		return nil, errors.New("scene backend: nil scene")
	}
	if b.store != nil {
		return nil, errors.New("scene backend: already bound")
	}
	b.store = store
	cam := b.scene.PrimaryCamera()
	if cam == nil {
		cam = b.scene.NewCamera(Rect{})
	}
	store.SetScene(b.scene.root)
	store.SetCamera(cam)
	b.unsubscribe = store.SubscribeFrame(func(state *thicket.FrameState) {
		if b.scene.Update(state.Delta) {
			store.Invalidate()
		}
	}, scenePriority)
	store.SetRenderFunc(func(*thicket.Store) {
		b.pending = true
	})
	return &configurator{backend: b}, nil
}

// Draw renders the scene into screen. With a retained screen it only draws
// after a frame was rendered.
func (b *Backend) Draw(screen *ebiten.Image) {
	if b.retain && !b.pending {
		return
	}
	b.pending = false
	b.scene.Draw(screen)
}

// FramePending reports whether a rendered frame has not been drawn yet.
func (b *Backend) FramePending() bool {
	return b.pending
}

type configurator struct {
	backend *Backend
}

// Configure applies camera (position, zoom, bounds, follow), background
// and window options.
func (c *configurator) Configure(opts thicket.Options) error {
	b := c.backend
	if b.store == nil {
		return errors.New("configure scene: backend destroyed")
	}
	if opts.Background != "" {
		bg, err := ParseColor(opts.Background)
		if err != nil {
			return fmt.Errorf("configure scene: %w", err)
		}
		b.scene.SetBackground(bg)
	}
	if cam := b.scene.PrimaryCamera(); cam != nil {
		cam.Configure(opts.Camera, Rect{Width: opts.Size.Width, Height: opts.Size.Height})
	}
	b.retain = opts.Frameloop != thicket.FrameloopAlways
	if b.window != nil {
		b.window.SetTitle(opts.Title)
		b.window.SetScreenClearedEveryFrame(!b.retain)
	}
	return nil
}

// Destroy unbinds the scene from the store.
func (c *configurator) Destroy() {
	b := c.backend
	if b.store == nil {
		return
	}
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	b.store.SetRenderFunc(nil)
	b.store = nil
	b.pending = false
}

// --- Game loop ---

// Game adapts a canvas to ebiten.Game: Layout measures the canvas, Update
// feeds pointer input and ticks the store, Draw presents the scene.
type Game struct {
	canvas  *thicket.Canvas
	backend *Backend
	now     func() time.Time

	width, height int
	err           error
	stopped       bool

	mu     sync.Mutex
	posted []func()
}

// NewGame returns a game driving canvas through backend.
func NewGame(canvas *thicket.Canvas, backend *Backend) *Game {
	return &Game{canvas: canvas, backend: backend, now: time.Now}
}

// Stop ends the game loop after the current tick.
func (g *Game) Stop() {
	g.stopped = true
}

// Post queues fn to run on the game loop before the next tick. It is safe
// to call from any goroutine.
func (g *Game) Post(fn func()) {
	g.mu.Lock()
	g.posted = append(g.posted, fn)
	g.mu.Unlock()
}

func (g *Game) drainPosted() {
	g.mu.Lock()
	fns := g.posted
	g.posted = nil
	g.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	g.drainPosted()
	if g.stopped || g.canvas.State() == thicket.CanvasDestroyed {
		return ebiten.Termination
	}
	store := g.canvas.Store()
	if pe, ok := store.Events().(*PointerEvents); ok {
		pe.Update()
	}
	store.Tick(g.now())
	g.canvas.Renderer().Flush()
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas.State() != thicket.CanvasActive {
		return
	}
	g.backend.Draw(screen)
}

// Layout implements ebiten.Game. Size changes are reported to the canvas;
// the first one mounts it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		err := g.canvas.Measure(thicket.Size{Width: float64(outsideWidth), Height: float64(outsideHeight)})
		if err != nil && g.err == nil {
			g.err = err
		}
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until the game stops or fails. The canvas
// is destroyed on return.
func Run(canvas *thicket.Canvas, backend *Backend) error {
	return RunGame(NewGame(canvas, backend))
}

// RunGame is Run for a game built with NewGame.
func RunGame(g *Game) error {
	defer g.canvas.Destroy()
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
