package thicket

// GraphNode is implemented by objects that take part in structural
// parent/child relations (the native "add child" / "remove child").
// Objects that only implement some of the capability interfaces below are
// attached by property path instead.
type GraphNode interface {
	AddGraphChild(child GraphNode)
	RemoveGraphChild(child GraphNode)
	GraphChildren() []GraphNode
}

// IndexedGraphNode is a GraphNode that can insert a child at a position.
type IndexedGraphNode interface {
	GraphNode
	InsertGraphChild(child GraphNode, index int)
}

// Identifier exposes a stable identity used for replace-in-place and
// interaction registry lookups. An empty UUID means "no identity".
type Identifier interface {
	UUID() string
}

// Disposer is implemented by objects owning native resources.
type Disposer interface {
	Dispose()
}

// Raycaster marks objects that hit testing can visit. Only raycastable
// objects enter the interaction registry.
type Raycaster interface {
	Raycast(x, y float64) bool
}

// SceneContainer marks a top-level scene. Scenes are never disposed by
// detach.
type SceneContainer interface {
	IsScene() bool
}

// Size is a measured canvas size in logical pixels.
type Size struct {
	Width, Height float64
	Top, Left     float64
}

// Valid reports whether the size has a positive area.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Vec2 is a 2D vector used for pointer coordinates.
type Vec2 struct {
	X, Y float64
}

// Kind selects which child list of an Instance an entry lives in.
type Kind uint8

const (
	KindObjects    Kind = iota // structural graph children
	KindNonObjects             // children attached by property assignment
)

func (k Kind) String() string {
	switch k {
	case KindObjects:
		return "objects"
	case KindNonObjects:
		return "nonObjects"
	default:
		return "unknown"
	}
}

// EventName identifies an instance event.
type EventName string

const (
	EventBeforeRender EventName = "beforeRender" // per-frame stream, ordered by priority
	EventAfterUpdate  EventName = "afterUpdate"  // replayed after a property update
	EventAfterAttach  EventName = "afterAttach"  // replayed after attach

	EventClick         EventName = "click"
	EventContextMenu   EventName = "contextmenu"
	EventDoubleClick   EventName = "dblclick"
	EventPointerDown   EventName = "pointerdown"
	EventPointerUp     EventName = "pointerup"
	EventPointerMove   EventName = "pointermove"
	EventPointerEnter  EventName = "pointerenter"
	EventPointerLeave  EventName = "pointerleave"
	EventPointerOver   EventName = "pointerover"
	EventPointerOut    EventName = "pointerout"
	EventPointerMissed EventName = "pointermissed"
	EventWheel         EventName = "wheel"
)

// Known reports whether n is one of the pointer or lifecycle event names.
func (n EventName) Known() bool {
	switch n {
	case EventBeforeRender, EventAfterUpdate, EventAfterAttach,
		EventClick, EventContextMenu, EventDoubleClick,
		EventPointerDown, EventPointerUp, EventPointerMove,
		EventPointerEnter, EventPointerLeave, EventPointerOver,
		EventPointerOut, EventPointerMissed, EventWheel:
		return true
	}
	return false
}

// Callback receives event payloads: *FrameState for before-render,
// AttachEvent for after-attach, UpdateEvent for after-update and
// *PointerEvent for pointer events.
type Callback func(payload any)

// AttachEvent is emitted after a child is attached to a parent.
type AttachEvent struct {
	Parent any
	Node   any
}

// UpdateEvent is emitted after the renderer applies a property.
type UpdateEvent struct {
	Node     any
	Property string
}

// PointerEvent is delivered to pointer handlers.
type PointerEvent struct {
	Name   EventName
	Object any // object the handler is registered on
	// Pointer is the normalised pointer position in [-1, 1].
	Pointer Vec2
	// World is the pointer position in scene coordinates.
	World Vec2
	// OffsetX/OffsetY are relative to the event source, ClientX/ClientY to
	// the window.
	OffsetX, OffsetY float64
	ClientX, ClientY float64
	Button           int
	stopped          bool
}

// StopPropagation prevents handlers on objects further down the hit list
// from receiving this event.
func (e *PointerEvent) StopPropagation() { e.stopped = true }

// Stopped reports whether StopPropagation was called.
func (e *PointerEvent) Stopped() bool { return e.stopped }
