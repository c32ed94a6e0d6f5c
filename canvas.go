package thicket

import (
	"errors"
	"fmt"
)

// CanvasState is the lifecycle state of a Canvas.
type CanvasState uint8

const (
	CanvasUninitialized CanvasState = iota
	CanvasConfigured
	CanvasActive
	CanvasDestroyed
)

func (s CanvasState) String() string {
	switch s {
	case CanvasUninitialized:
		return "uninitialized"
	case CanvasConfigured:
		return "configured"
	case CanvasActive:
		return "active"
	case CanvasDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Component is a mounted scene-graph root.
type Component interface {
	Destroy()
}

// Detector is implemented by components that re-run their own change
// detection on reconfigure.
type Detector interface {
	DetectChanges()
}

// ComponentFunc adapts a teardown func to Component.
type ComponentFunc func()

// Destroy calls f.
func (f ComponentFunc) Destroy() {
	if f != nil {
		f()
	}
}

// SceneGraph instantiates the scene-graph root inside scope. The renderer
// and store are available through RendererFrom and StoreFrom.
type SceneGraph func(scope *Scope) (Component, error)

// Backend binds a store to a physical render target.
type Backend interface {
	Init(target any, store *Store) (Configurator, error)
}

// Configurator applies options to a bound render target.
type Configurator interface {
	Configure(opts Options) error
	Destroy()
}

// Host is the UI framework's scheduling surface.
type Host interface {
	// RunOutside runs fn outside change-detection tracking.
	RunOutside(fn func())
	// AfterNextRender runs fn once after the next paint.
	AfterNextRender(fn func())
}

type immediateHost struct{}

func (immediateHost) RunOutside(fn func())      { fn() }
func (immediateHost) AfterNextRender(fn func()) { fn() }

// CanvasConfig describes a canvas root. SceneGraph and Backend are required.
type CanvasConfig struct {
	// Target is the physical render target handed to Backend.Init.
	Target any
	// HostElement is the canvas's own host, the default event source.
	HostElement any
	// EventSource overrides HostElement as the pointer event source.
	EventSource any

	SceneGraph SceneGraph
	Backend    Backend
	Engine     *Engine
	Catalogue  *Catalogue
	Host       Host
	Scope      *Scope

	// Events builds the event manager for a store. Optional.
	Events func(*Store) EventManager

	Options Options
}

// Canvas drives the root lifecycle: measurement binds the store, the
// first configured measurement mounts the scene graph, later ones
// reconfigure and redraw, Destroy tears everything down.
type Canvas struct {
	cfg   CanvasConfig
	state CanvasState

	engine       *Engine
	store        *Store
	renderer     *Renderer
	configurator Configurator
	scope        *Scope
	component    Component
	options      Options
	prefix       EventPrefix // prefix whose compute function is installed

	created      bool
	onCreated    []func(*Store)
	onRendered   []func(Component)
	afterPending bool
}

// NewCanvas validates cfg and returns an uninitialized canvas.
func NewCanvas(cfg CanvasConfig) (*Canvas, error) {
	if cfg.SceneGraph == nil {
		return nil, errors.New("new canvas: missing scene graph")
	}
	if cfg.Backend == nil {
		return nil, errors.New("new canvas: missing backend")
	}
	if cfg.Engine == nil {
		cfg.Engine = NewEngine()
	}
	if cfg.Catalogue == nil {
		cfg.Catalogue = NewCatalogue()
	}
	if cfg.Host == nil {
		cfg.Host = immediateHost{}
	}
	if cfg.Options == (Options{}) {
		cfg.Options = DefaultOptions()
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("new canvas: %w", err)
	}
	store := NewStore()
	store.SetFrameloop(cfg.Options.Frameloop)
	return &Canvas{
		cfg:      cfg,
		engine:   cfg.Engine,
		store:    store,
		renderer: NewRenderer(cfg.Engine, store, cfg.Catalogue),
		options:  cfg.Options,
	}, nil
}

// State returns the lifecycle state.
func (c *Canvas) State() CanvasState { return c.state }

// Store returns the canvas store.
func (c *Canvas) Store() *Store { return c.store }

// Engine returns the reconciliation engine.
func (c *Canvas) Engine() *Engine { return c.engine }

// Renderer returns the renderer bound to the canvas store.
func (c *Canvas) Renderer() *Renderer { return c.renderer }

// Scope returns the scene graph's dedicated scope, or nil before mount.
func (c *Canvas) Scope() *Scope { return c.scope }

// Component returns the mounted scene-graph root, or nil.
func (c *Canvas) Component() Component { return c.component }

// Options returns the current options.
func (c *Canvas) Options() Options { return c.options }

// OnCreated registers fn for the one-shot created notification. If the
// canvas was already created fn runs immediately.
func (c *Canvas) OnCreated(fn func(*Store)) {
	if c.created {
		fn(c.store)
		return
	}
	c.onCreated = append(c.onCreated, fn)
}

// OnRendered registers fn for the next rendered notification.
func (c *Canvas) OnRendered(fn func(Component)) {
	c.onRendered = append(c.onRendered, fn)
}

// SetOptions replaces the options. An active canvas is reconfigured and
// redrawn at its current size.
func (c *Canvas) SetOptions(opts Options) error {
	if c.state == CanvasDestroyed {
		return fmt.Errorf("set options: %w", ErrDestroyed)
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("set options: %w", err)
	}
	size := c.options.Size
	c.options = opts
	c.options.Size = size
	c.store.SetFrameloop(opts.Frameloop)
	if c.state != CanvasActive {
		return nil
	}
	return c.reconfigure()
}

// Measure reports a new canvas size. Zero or negative sizes are ignored.
func (c *Canvas) Measure(size Size) error {
	if c.state == CanvasDestroyed || !size.Valid() {
		return nil
	}

	if c.state == CanvasUninitialized {
		conf, err := c.cfg.Backend.Init(c.cfg.Target, c.store)
		if err != nil {
			return fmt.Errorf("init canvas: %w", err)
		}
		c.configurator = conf
		c.state = CanvasConfigured
	}

	c.options.Size = size
	c.store.SetSize(size)

	if c.state == CanvasActive {
		return c.reconfigure()
	}

	var err error
	c.cfg.Host.RunOutside(func() {
		err = c.configurator.Configure(c.options)
	})
	if err != nil {
		return fmt.Errorf("configure canvas: %w", err)
	}
	return c.mount()
}

func (c *Canvas) reconfigure() error {
	var err error
	c.cfg.Host.RunOutside(func() {
		err = c.configurator.Configure(c.options)
	})
	if err != nil {
		return fmt.Errorf("configure canvas: %w", err)
	}
	c.applyEventPrefix()
	if d, ok := c.component.(Detector); ok {
		d.DetectChanges()
	}
	c.store.Redraw()
	return nil
}

// applyEventPrefix installs the compute function for the configured event
// prefix, or removes the one it installed when the prefix is cleared. A
// compute function set by someone else survives while no prefix is set.
func (c *Canvas) applyEventPrefix() {
	prefix := c.options.EventPrefix
	if prefix == c.prefix {
		return
	}
	switch {
	case prefix != EventPrefixNone:
		c.store.SetCompute(prefixCompute(prefix))
	case c.prefix != EventPrefixNone:
		c.store.SetCompute(nil)
	}
	c.prefix = prefix
}

func (c *Canvas) mount() error {
	if scene := c.store.Scene(); scene != nil && c.engine.Instance(scene) == nil {
		c.engine.Prepare(scene, &Overrides{Store: c.store})
	}

	c.store.SetActive(true)
	c.connectEvents()
	c.applyEventPrefix()

	if !c.created {
		c.created = true
		hooks := c.onCreated
		c.onCreated = nil
		for _, fn := range hooks {
			fn(c.store)
		}
	}

	scope := NewScope(c.cfg.Scope)
	scope.Provide(rendererKey, c.renderer)
	scope.Provide(storeKey, c.store)
	scope.Provide(canvasKey, c)
	comp, err := c.cfg.SceneGraph(scope)
	if err != nil {
		scope.Destroy()
		return fmt.Errorf("mount scene graph: %w", err)
	}
	c.scope = scope
	c.component = comp
	c.state = CanvasActive

	c.renderer.Flush()
	c.scheduleRendered()
	return nil
}

func (c *Canvas) scheduleRendered() {
	if c.afterPending {
		return
	}
	c.afterPending = true
	c.cfg.Host.AfterNextRender(func() {
		c.afterPending = false
		if c.state != CanvasActive {
			return
		}
		hooks := c.onRendered
		c.onRendered = nil
		for _, fn := range hooks {
			fn(c.component)
		}
	})
}

func (c *Canvas) connectEvents() {
	if c.store.Events() == nil && c.cfg.Events != nil {
		c.store.SetEvents(c.cfg.Events(c.store))
	}
	ev := c.store.Events()
	if ev == nil || ev.Connected() != nil {
		return
	}
	switch {
	case c.cfg.EventSource != nil:
		ev.Connect(c.cfg.EventSource)
	case c.cfg.HostElement != nil:
		ev.Connect(c.cfg.HostElement)
	default:
		ev.Connect(c.cfg.Target)
	}
}

// Destroy tears down the component, its scope and the configurator. Safe to
// call more than once.
func (c *Canvas) Destroy() {
	if c.state == CanvasDestroyed {
		return
	}
	c.state = CanvasDestroyed
	if c.component != nil {
		c.component.Destroy()
		c.component = nil
	}
	if c.scope != nil {
		c.scope.Destroy()
		c.scope = nil
	}
	if c.configurator != nil {
		c.configurator.Destroy()
		c.configurator = nil
	}
	c.store.destroy()
	c.engine.Flush()
	c.onCreated = nil
	c.onRendered = nil
}

// prefixCompute normalises the prefixed pointer coordinates into the
// [-1, 1] range with y pointing up.
func prefixCompute(prefix EventPrefix) ComputeFunc {
	return func(ev *PointerEvent, s *Store) {
		x, y := ev.OffsetX, ev.OffsetY
		if prefix == EventPrefixClient {
			size := s.Size()
			x, y = ev.ClientX-size.Left, ev.ClientY-size.Top
		}
		size := s.Size()
		if !size.Valid() {
			return
		}
		p := Vec2{X: x/size.Width*2 - 1, Y: -(y/size.Height)*2 + 1}
		s.SetPointer(p)
		ev.Pointer = p
	}
}
