package thicket

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// maxPendingFrames caps the pending-frame counter.
const maxPendingFrames = 60

// Frameloop selects when the render loop draws.
type Frameloop uint8

const (
	FrameloopAlways Frameloop = iota // draw every tick
	FrameloopDemand                  // draw only while frames are pending
	FrameloopNever                   // draw only through Advance
)

func (f Frameloop) String() string {
	switch f {
	case FrameloopAlways:
		return "always"
	case FrameloopDemand:
		return "demand"
	case FrameloopNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseFrameloop parses "always", "demand" or "never". Empty means always.
func ParseFrameloop(s string) (Frameloop, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always":
		return FrameloopAlways, nil
	case "demand":
		return FrameloopDemand, nil
	case "never":
		return FrameloopNever, nil
	}
	return FrameloopAlways, fmt.Errorf("parse frameloop %q: must be always, demand or never", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Frameloop) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Frameloop) UnmarshalText(b []byte) error {
	v, err := ParseFrameloop(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// FrameState is the payload of before-render callbacks.
type FrameState struct {
	Store  *Store
	Object any
	Delta  time.Duration
	Time   time.Time
	Frame  uint64
}

// EventManager connects pointer input from an event source to the store.
type EventManager interface {
	Connect(target any)
	Disconnect()
	Connected() any
}

// ComputeFunc converts a raw pointer event into store pointer state.
type ComputeFunc func(ev *PointerEvent, s *Store)

type frameSubscriber struct {
	id       uint32
	priority int
	fn       func(*FrameState)
}

// Store is the shared state of one canvas root. Only the reconciliation
// engine and the render loop mutate it; everything else reads snapshots or
// subscribes.
type Store struct {
	previousRoot *Store

	// render loop internals
	active      bool
	frames      int
	frame       uint64
	requests    int
	lastTick    time.Time
	interaction []any
	subscribers []frameSubscriber
	nextSubID   uint32

	requestFrame func()
	render       func(*Store)

	frameloop Frameloop
	size      Size
	camera    any
	scene     any
	pointer   Vec2
	events    EventManager
	compute   ComputeFunc

	missed    []func(*PointerEvent)
	watchers  []func(*Store)
	destroyed bool
}

// NewStore creates an inactive store with the always frameloop.
func NewStore() *Store {
	return &Store{}
}

// NewPortalStore creates a nested store that shares the physical render
// loop and interaction registry of parent.
func NewPortalStore(parent *Store) *Store {
	s := NewStore()
	s.previousRoot = parent
	s.size = parent.size
	s.camera = parent.camera
	return s
}

// PreviousRoot returns the store this one is nested in, or nil.
func (s *Store) PreviousRoot() *Store { return s.previousRoot }

// Root follows PreviousRoot links to the top-level store.
func (s *Store) Root() *Store {
	root := s
	for root.previousRoot != nil {
		root = root.previousRoot
	}
	return root
}

// Active reports whether the canvas has started rendering.
func (s *Store) Active() bool { return s.active }

// SetActive flags the canvas as rendering (or not).
func (s *Store) SetActive(active bool) {
	s.active = active
	s.changed()
}

// Frames returns the pending-frame counter.
func (s *Store) Frames() int { return s.frames }

// Frame returns the number of frames rendered so far.
func (s *Store) Frame() uint64 { return s.frame }

// FrameRequests returns how many times a new frame was requested from the
// host scheduler.
func (s *Store) FrameRequests() int { return s.requests }

// SetFrameRequester installs the host hook asked to schedule a tick when a
// frame becomes pending.
func (s *Store) SetFrameRequester(fn func()) { s.requestFrame = fn }

// SetRenderFunc installs the draw hook run at the end of every frame.
func (s *Store) SetRenderFunc(fn func(*Store)) { s.render = fn }

// Frameloop returns the frameloop mode.
func (s *Store) Frameloop() Frameloop { return s.frameloop }

// SetFrameloop changes the frameloop mode.
func (s *Store) SetFrameloop(f Frameloop) {
	s.frameloop = f
	s.changed()
}

// Size returns the canvas size.
func (s *Store) Size() Size { return s.size }

// SetSize records a new canvas size.
func (s *Store) SetSize(size Size) {
	s.size = size
	s.changed()
}

// Camera returns the default camera.
func (s *Store) Camera() any { return s.camera }

// SetCamera replaces the default camera.
func (s *Store) SetCamera(cam any) {
	s.camera = cam
	s.changed()
}

// Scene returns the scene root object.
func (s *Store) Scene() any { return s.scene }

// SetScene replaces the scene root object.
func (s *Store) SetScene(scene any) {
	s.scene = scene
	s.changed()
}

// Pointer returns the normalised pointer position.
func (s *Store) Pointer() Vec2 { return s.pointer }

// SetPointer records the normalised pointer position.
func (s *Store) SetPointer(p Vec2) { s.pointer = p }

// Events returns the connected event manager, or nil.
func (s *Store) Events() EventManager { return s.events }

// SetEvents installs the event manager.
func (s *Store) SetEvents(m EventManager) { s.events = m }

// Compute returns the pointer compute function, or nil.
func (s *Store) Compute() ComputeFunc { return s.compute }

// SetCompute installs the pointer compute function.
func (s *Store) SetCompute(fn ComputeFunc) { s.compute = fn }

// Watch registers fn to run after public store slices change.
func (s *Store) Watch(fn func(*Store)) {
	s.watchers = append(s.watchers, fn)
}

func (s *Store) changed() {
	for _, fn := range s.watchers {
		fn(s)
	}
}

// Interaction returns a copy of the interaction registry.
func (s *Store) Interaction() []any {
	return append([]any(nil), s.interaction...)
}

func (s *Store) addInteraction(object any) {
	s.interaction = append(s.interaction, object)
}

// removeInteraction removes object from the registry, matching by identity
// first and by UUID when no identical entry exists.
func (s *Store) removeInteraction(object any) bool {
	idx := -1
	for i, o := range s.interaction {
		if o == object {
			idx = i
			break
		}
	}
	if idx < 0 {
		if uuid := identity(object); uuid != "" {
			for i, o := range s.interaction {
				if identity(o) == uuid {
					idx = i
					break
				}
			}
		}
	}
	if idx < 0 {
		return false
	}
	copy(s.interaction[idx:], s.interaction[idx+1:])
	s.interaction[len(s.interaction)-1] = nil
	s.interaction = s.interaction[:len(s.interaction)-1]
	return true
}

// Invalidate marks that a new frame is needed. The host is asked for a
// tick only when no frame was pending.
func (s *Store) Invalidate() {
	if s.destroyed || s.frameloop == FrameloopNever {
		return
	}
	wasIdle := s.frames == 0
	if s.frames < maxPendingFrames {
		s.frames++
	}
	if wasIdle {
		s.requests++
		if s.requestFrame != nil {
			s.requestFrame()
		}
	}
}

// SubscribeFrame registers fn on the per-frame stream. Lower priorities run
// first; equal priorities run in registration order.
func (s *Store) SubscribeFrame(fn func(*FrameState), priority int) (unsubscribe func()) {
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, frameSubscriber{id: id, priority: priority, fn: fn})
	sort.SliceStable(s.subscribers, func(i, j int) bool {
		return s.subscribers[i].priority < s.subscribers[j].priority
	})
	return func() {
		for i := range s.subscribers {
			if s.subscribers[i].id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Tick is called by the host scheduler. It renders when the store is
// active and the frameloop wants a frame, and reports whether it did.
func (s *Store) Tick(now time.Time) bool {
	if !s.active || s.destroyed {
		return false
	}
	switch s.frameloop {
	case FrameloopNever:
		return false
	case FrameloopDemand:
		if s.frames == 0 {
			return false
		}
	}
	s.renderFrame(now)
	if s.frames > 0 {
		s.frames--
	}
	return true
}

// Advance renders one frame regardless of the frameloop mode.
func (s *Store) Advance(now time.Time) {
	if s.destroyed {
		return
	}
	s.renderFrame(now)
}

// Redraw renders synchronously at the last tick time, used after a
// reconfiguration.
func (s *Store) Redraw() {
	if !s.active || s.destroyed {
		return
	}
	now := s.lastTick
	if now.IsZero() {
		now = time.Now()
	}
	s.renderFrame(now)
}

func (s *Store) renderFrame(now time.Time) {
	var delta time.Duration
	if !s.lastTick.IsZero() {
		delta = now.Sub(s.lastTick)
	}
	s.lastTick = now
	s.frame++
	state := &FrameState{Store: s, Delta: delta, Time: now, Frame: s.frame}
	subs := append([]frameSubscriber(nil), s.subscribers...)
	for _, sub := range subs {
		sub.fn(state)
	}
	if s.render != nil {
		s.render(s)
	}
}

// OnPointerMissed registers fn for pointer presses that hit nothing.
func (s *Store) OnPointerMissed(fn func(*PointerEvent)) {
	s.missed = append(s.missed, fn)
}

// EmitPointerMissed notifies pointer-missed listeners.
func (s *Store) EmitPointerMissed(ev *PointerEvent) {
	for _, fn := range s.missed {
		fn(ev)
	}
}

// destroy stops the store from rendering and drops its registries.
func (s *Store) destroy() {
	s.destroyed = true
	s.active = false
	s.frames = 0
	s.interaction = nil
	s.subscribers = nil
	s.missed = nil
	s.watchers = nil
	if s.events != nil {
		s.events.Disconnect()
	}
}
