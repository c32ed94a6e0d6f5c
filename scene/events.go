package scene

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/thicket"
)

const defaultDragDeadZone = 4.0 // pixels

// PointerSource reports raw pointer state once per tick, in screen pixels.
type PointerSource interface {
	CursorPosition() (x, y float64)
	// Pressed reports whether any button is held and which one.
	Pressed() (bool, MouseButton)
	Modifiers() KeyModifiers
}

// EbitenSource reads the mouse and keyboard through ebiten.
type EbitenSource struct{}

// CursorPosition implements PointerSource.
func (EbitenSource) CursorPosition() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y)
}

// Pressed implements PointerSource.
func (EbitenSource) Pressed() (bool, MouseButton) {
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		return true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		return true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		return true, MouseButtonMiddle
	}
	return false, MouseButtonLeft
}

// Modifiers implements PointerSource.
func (EbitenSource) Modifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// syntheticPointerEvent is a queued pointer sample in screen coordinates.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
	button           MouseButton
}

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	hitNode  any
	hover    any
	dragging bool
	button   MouseButton
}

// PointerEvents is the event manager for a scene. Each Update samples the
// source (or the inject queue), hit-tests the store's interaction registry
// and dispatches pointer events through the engine, topmost object first.
type PointerEvents struct {
	engine *thicket.Engine
	store  *thicket.Store
	scene  *Scene
	source PointerSource

	target       any
	queue        []syntheticPointerEvent
	state        pointerState
	dragDeadZone float64

	ranks map[*Node]int
	hits  []any
}

// NewPointerEvents returns an unconnected event manager reading from
// EbitenSource.
func NewPointerEvents(engine *thicket.Engine, store *thicket.Store, scene *Scene) *PointerEvents {
	return &PointerEvents{
		engine:       engine,
		store:        store,
		scene:        scene,
		source:       EbitenSource{},
		dragDeadZone: defaultDragDeadZone,
		ranks:        make(map[*Node]int),
	}
}

// SetSource replaces the pointer source. A nil source only reads the
// inject queue.
func (p *PointerEvents) SetSource(src PointerSource) {
	p.source = src
}

// SetDragDeadZone sets the movement in pixels before a press becomes a drag.
func (p *PointerEvents) SetDragDeadZone(pixels float64) {
	p.dragDeadZone = pixels
}

// Connect implements thicket.EventManager.
func (p *PointerEvents) Connect(target any) {
	p.target = target
}

// Disconnect implements thicket.EventManager. Pending injected input and
// pointer state are dropped.
func (p *PointerEvents) Disconnect() {
	p.target = nil
	p.queue = p.queue[:0]
	p.state = pointerState{}
}

// Connected implements thicket.EventManager.
func (p *PointerEvents) Connected() any {
	return p.target
}

// --- Injection ---

// InjectPress queues a left-button press at screen coordinates. Each queued
// sample is consumed by one Update.
func (p *PointerEvents) InjectPress(x, y float64) {
	p.queue = append(p.queue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectMove queues a move with the button held.
func (p *PointerEvents) InjectMove(x, y float64) {
	p.queue = append(p.queue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectHover queues a move with no button held.
func (p *PointerEvents) InjectHover(x, y float64) {
	p.queue = append(p.queue, syntheticPointerEvent{screenX: x, screenY: y})
}

// InjectRelease queues a release at screen coordinates.
func (p *PointerEvents) InjectRelease(x, y float64) {
	p.queue = append(p.queue, syntheticPointerEvent{screenX: x, screenY: y})
}

// InjectClick queues a press and a release at the same point.
func (p *PointerEvents) InjectClick(x, y float64) {
	p.InjectPress(x, y)
	p.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 interpolated moves
// and a release at (toX, toY). frames is at least 2.
func (p *PointerEvents) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	p.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		p.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	p.InjectRelease(toX, toY)
}

// Pending returns the number of queued samples.
func (p *PointerEvents) Pending() int {
	return len(p.queue)
}

// --- Processing ---

// Update consumes one injected sample, or reads the source when the queue
// is empty. It does nothing while disconnected.
func (p *PointerEvents) Update() {
	if p.target == nil {
		return
	}
	var mods KeyModifiers
	if p.source != nil {
		mods = p.source.Modifiers()
	}

	if len(p.queue) > 0 {
		evt := p.queue[0]
		copy(p.queue, p.queue[1:])
		p.queue = p.queue[:len(p.queue)-1]
		p.processPointer(evt.screenX, evt.screenY, evt.pressed, evt.button, mods)
		return
	}
	if p.source == nil {
		return
	}
	sx, sy := p.source.CursorPosition()
	pressed, button := p.source.Pressed()
	p.processPointer(sx, sy, pressed, button, mods)
}

// processPointer runs the press/drag/hover state machine for one sample.
func (p *PointerEvents) processPointer(sx, sy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	p.scene.UpdateTransforms()
	wx, wy := p.scene.ScreenToWorld(sx, sy)
	hits := p.hitTest(wx, wy)
	var target any
	if len(hits) > 0 {
		target = hits[0]
	}
	ps := &p.state
	if ps.down {
		button = ps.button
	}
	ev := p.newEvent(sx, sy, wx, wy, button)

	if target != ps.hover {
		if ps.hover != nil {
			p.dispatchTo(ps.hover, thicket.EventPointerOut, ev)
			p.dispatchTo(ps.hover, thicket.EventPointerLeave, ev)
			p.emitEntity(EventPointerLeave, ps.hover, wx, wy, button, mods, 0, 0, 0, 0)
		}
		if target != nil {
			p.dispatchTo(target, thicket.EventPointerOver, ev)
			p.dispatchTo(target, thicket.EventPointerEnter, ev)
			p.emitEntity(EventPointerEnter, target, wx, wy, button, mods, 0, 0, 0, 0)
		}
		ps.hover = target
	}

	switch {
	case pressed && !ps.down:
		*ps = pointerState{
			down: true, button: button, hover: ps.hover, hitNode: target,
			startX: wx, startY: wy, lastX: wx, lastY: wy,
		}
		if len(hits) == 0 {
			p.store.EmitPointerMissed(p.event(ev, thicket.EventPointerMissed))
		}
		p.dispatchMissed(hits, ev)
		p.dispatch(hits, thicket.EventPointerDown, ev)
		p.emitEntity(EventPointerDown, target, wx, wy, button, mods, 0, 0, 0, 0)

	case !pressed && ps.down:
		if ps.dragging {
			p.emitEntity(EventDragEnd, ps.hitNode, wx, wy, button, mods,
				ps.startX, ps.startY, wx-ps.lastX, wy-ps.lastY)
		} else if ps.hitNode != nil && ps.hitNode == target {
			name := thicket.EventClick
			if button == MouseButtonRight {
				name = thicket.EventContextMenu
			}
			p.dispatch(hits, name, ev)
			p.emitEntity(EventClick, target, wx, wy, button, mods, 0, 0, 0, 0)
		}
		p.dispatch(hits, thicket.EventPointerUp, ev)
		p.emitEntity(EventPointerUp, target, wx, wy, button, mods, 0, 0, 0, 0)
		ps.down = false
		ps.hitNode = nil
		ps.dragging = false

	case pressed && ps.down:
		if wx != ps.lastX || wy != ps.lastY {
			if !ps.dragging && math.Hypot(wx-ps.startX, wy-ps.startY) > p.dragDeadZone {
				ps.dragging = true
				p.emitEntity(EventDragStart, ps.hitNode, wx, wy, button, mods,
					ps.startX, ps.startY, wx-ps.startX, wy-ps.startY)
			}
			if ps.dragging {
				p.emitEntity(EventDrag, ps.hitNode, wx, wy, button, mods,
					ps.startX, ps.startY, wx-ps.lastX, wy-ps.lastY)
			}
			p.dispatch(hits, thicket.EventPointerMove, ev)
		}
		ps.lastX, ps.lastY = wx, wy

	default:
		if wx != ps.lastX || wy != ps.lastY {
			p.dispatch(hits, thicket.EventPointerMove, ev)
			p.emitEntity(EventPointerMove, target, wx, wy, button, mods, 0, 0, 0, 0)
			ps.lastX, ps.lastY = wx, wy
		}
	}
}

// newEvent builds the shared payload for one sample and updates the
// store's normalised pointer.
func (p *PointerEvents) newEvent(sx, sy, wx, wy float64, button MouseButton) *thicket.PointerEvent {
	size := p.store.Size()
	ev := &thicket.PointerEvent{
		World:   thicket.Vec2{X: wx, Y: wy},
		OffsetX: sx,
		OffsetY: sy,
		ClientX: sx + size.Left,
		ClientY: sy + size.Top,
		Button:  domButton(button),
	}
	if compute := p.store.Compute(); compute != nil {
		compute(ev, p.store)
	} else if size.Valid() {
		ev.Pointer = thicket.Vec2{X: sx/size.Width*2 - 1, Y: -(sy/size.Height)*2 + 1}
		p.store.SetPointer(ev.Pointer)
	}
	return ev
}

// event returns a copy of base named name, so each dispatch round starts
// unstopped.
func (p *PointerEvents) event(base *thicket.PointerEvent, name thicket.EventName) *thicket.PointerEvent {
	ev := &thicket.PointerEvent{
		Name:    name,
		Pointer: base.Pointer,
		World:   base.World,
		OffsetX: base.OffsetX,
		OffsetY: base.OffsetY,
		ClientX: base.ClientX,
		ClientY: base.ClientY,
		Button:  base.Button,
	}
	return ev
}

// dispatch delivers name to each hit in order until a handler stops
// propagation.
func (p *PointerEvents) dispatch(hits []any, name thicket.EventName, base *thicket.PointerEvent) {
	ev := p.event(base, name)
	for _, obj := range hits {
		ev.Object = obj
		p.engine.Dispatch(obj, name, ev)
		if ev.Stopped() {
			return
		}
	}
}

func (p *PointerEvents) dispatchTo(obj any, name thicket.EventName, base *thicket.PointerEvent) {
	ev := p.event(base, name)
	ev.Object = obj
	p.engine.Dispatch(obj, name, ev)
}

// dispatchMissed notifies every registered object that the press missed.
func (p *PointerEvents) dispatchMissed(hits []any, base *thicket.PointerEvent) {
	for _, obj := range p.store.Root().Interaction() {
		if containsObject(hits, obj) {
			continue
		}
		p.dispatchTo(obj, thicket.EventPointerMissed, base)
	}
}

// hitTest returns the registered objects under (wx, wy), topmost first.
// Nodes are ordered by reverse paint order; other raycasters follow in
// registration order.
func (p *PointerEvents) hitTest(wx, wy float64) []any {
	p.hits = p.hits[:0]
	for _, obj := range p.store.Root().Interaction() {
		rc, ok := obj.(thicket.Raycaster)
		if !ok || !rc.Raycast(wx, wy) {
			continue
		}
		p.hits = append(p.hits, obj)
	}
	if len(p.hits) < 2 {
		return p.hits
	}

	clear(p.ranks)
	next := 0
	paintRanks(p.scene.root, p.ranks, &next)
	rank := func(obj any) int {
		if n, ok := obj.(*Node); ok {
			if r, ok := p.ranks[n]; ok {
				return r
			}
		}
		return -1
	}
	// Insertion sort keeps registration order for equal ranks.
	for i := 1; i < len(p.hits); i++ {
		key := p.hits[i]
		kr := rank(key)
		j := i - 1
		for j >= 0 && rank(p.hits[j]) < kr {
			p.hits[j+1] = p.hits[j]
			j--
		}
		p.hits[j+1] = key
	}
	return p.hits
}

// paintRanks numbers visible nodes in draw order.
func paintRanks(n *Node, ranks map[*Node]int, next *int) {
	if !n.Visible || n.disposed {
		return
	}
	ranks[n] = *next
	*next++
	if !n.childrenSorted {
		rebuildSortedChildren(n)
	}
	children := n.children
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, c := range children {
		paintRanks(c, ranks, next)
	}
}

func containsObject(list []any, obj any) bool {
	for _, o := range list {
		if o == obj {
			return true
		}
	}
	return false
}

// domButton maps a MouseButton to the DOM button index.
func domButton(b MouseButton) int {
	switch b {
	case MouseButtonMiddle:
		return 1
	case MouseButtonRight:
		return 2
	}
	return 0
}

// --- ECS bridge ---

func (p *PointerEvents) emitEntity(eventType EventType, obj any, wx, wy float64,
	button MouseButton, mods KeyModifiers, startX, startY, deltaX, deltaY float64) {
	if p.scene.entities == nil {
		return
	}
	node, ok := obj.(*Node)
	if !ok || node == nil || node.EntityID == 0 {
		return
	}
	lx, ly := node.WorldToLocal(wx, wy)
	p.scene.entities.EmitEvent(InteractionEvent{
		Type:      eventType,
		EntityID:  node.EntityID,
		GlobalX:   wx,
		GlobalY:   wy,
		LocalX:    lx,
		LocalY:    ly,
		Button:    button,
		Modifiers: mods,
		StartX:    startX,
		StartY:    startY,
		DeltaX:    deltaX,
		DeltaY:    deltaY,
	})
}
