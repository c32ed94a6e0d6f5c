package scene

import (
	"reflect"
	"testing"

	"github.com/phanxgames/thicket"
)

type pointerFixture struct {
	engine *thicket.Engine
	store  *thicket.Store
	scene  *Scene
	events *PointerEvents
}

func newPointerFixture(t *testing.T) *pointerFixture {
	t.Helper()
	engine := thicket.NewEngine()
	store := thicket.NewStore()
	store.SetSize(thicket.Size{Width: 200, Height: 100})
	s := NewScene()
	engine.Prepare(s.Root(), &thicket.Overrides{Store: store})
	store.SetScene(s.Root())

	pe := NewPointerEvents(engine, store, s)
	pe.SetSource(nil)
	pe.Connect("canvas")
	return &pointerFixture{engine: engine, store: store, scene: s, events: pe}
}

// sprite adds a prepared sprite at (x, y) under the scene root.
func (f *pointerFixture) sprite(name string, x, y, w, h float64) *Node {
	n := NewSprite(name, w, h)
	n.SetPosition(x, y)
	f.scene.Root().AddChild(n)
	f.engine.Prepare(n, &thicket.Overrides{Store: f.store})
	return n
}

// record subscribes to each name on n and appends "node:event" to log.
func (f *pointerFixture) record(n *Node, log *[]string, names ...thicket.EventName) {
	for _, name := range names {
		f.engine.Subscribe(n, 0, name, func(payload any) {
			ev := payload.(*thicket.PointerEvent)
			*log = append(*log, n.Name+":"+string(ev.Name))
		})
	}
}

// drain runs Update until the inject queue is empty.
func (f *pointerFixture) drain() {
	for f.events.Pending() > 0 {
		f.events.Update()
	}
}

type entityRecorder struct {
	events []InteractionEvent
}

func (r *entityRecorder) EmitEvent(ev InteractionEvent) {
	r.events = append(r.events, ev)
}

func (r *entityRecorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func TestPointerEventsConnect(t *testing.T) {
	f := newPointerFixture(t)
	if f.events.Connected() != "canvas" {
		t.Fatalf("Connected = %v", f.events.Connected())
	}
	var _ thicket.EventManager = f.events

	f.events.InjectClick(1, 1)
	f.events.Disconnect()
	if f.events.Connected() != nil || f.events.Pending() != 0 {
		t.Error("Disconnect should clear the target and the queue")
	}
	f.events.InjectPress(1, 1)
	f.events.Update()
	if f.events.Pending() != 1 {
		t.Error("a disconnected manager must not consume input")
	}
}

func TestClickDispatch(t *testing.T) {
	f := newPointerFixture(t)
	n := f.sprite("box", 10, 10, 20, 20)
	var got *thicket.PointerEvent
	clicks := 0
	f.engine.Subscribe(n, 0, thicket.EventClick, func(payload any) {
		clicks++
		got = payload.(*thicket.PointerEvent)
	})

	f.events.InjectClick(15, 15)
	f.drain()

	if clicks != 1 {
		t.Fatalf("clicks = %d, want 1", clicks)
	}
	if got.Object != n || got.Name != thicket.EventClick {
		t.Errorf("event = %+v", got)
	}
	if got.World != (thicket.Vec2{X: 15, Y: 15}) || got.OffsetX != 15 || got.ClientY != 15 {
		t.Errorf("coordinates = %+v", got)
	}
	if !approxEqual(got.Pointer.X, -0.85, 1e-9) || !approxEqual(got.Pointer.Y, 0.7, 1e-9) {
		t.Errorf("pointer = %+v, want (-0.85, 0.7)", got.Pointer)
	}
	if f.store.Pointer() != got.Pointer {
		t.Error("store pointer should track the last event")
	}
}

func TestClientOffsetIncludesCanvasPosition(t *testing.T) {
	f := newPointerFixture(t)
	f.store.SetSize(thicket.Size{Width: 200, Height: 100, Left: 30, Top: 40})
	n := f.sprite("box", 0, 0, 50, 50)
	var got *thicket.PointerEvent
	f.engine.Subscribe(n, 0, thicket.EventPointerDown, func(payload any) {
		got = payload.(*thicket.PointerEvent)
	})
	f.events.InjectPress(5, 6)
	f.events.Update()
	if got == nil || got.ClientX != 35 || got.ClientY != 46 {
		t.Errorf("client = %+v", got)
	}
}

func TestComputeOverridesPointer(t *testing.T) {
	f := newPointerFixture(t)
	f.store.SetCompute(func(ev *thicket.PointerEvent, s *thicket.Store) {
		ev.Pointer = thicket.Vec2{X: 9, Y: 9}
	})
	n := f.sprite("box", 0, 0, 50, 50)
	var got thicket.Vec2
	f.engine.Subscribe(n, 0, thicket.EventPointerDown, func(payload any) {
		got = payload.(*thicket.PointerEvent).Pointer
	})
	f.events.InjectPress(5, 5)
	f.events.Update()
	if got != (thicket.Vec2{X: 9, Y: 9}) {
		t.Errorf("pointer = %+v", got)
	}
}

func TestHitsOrderedTopmostFirst(t *testing.T) {
	f := newPointerFixture(t)
	a := f.sprite("a", 0, 0, 50, 50)
	b := f.sprite("b", 0, 0, 50, 50)
	var log []string
	f.record(a, &log, thicket.EventPointerDown)
	f.record(b, &log, thicket.EventPointerDown)

	f.events.InjectClick(10, 10)
	f.drain()
	if want := []string{"b:pointerdown", "a:pointerdown"}; !reflect.DeepEqual(log, want) {
		t.Errorf("order = %v, want %v", log, want)
	}

	log = nil
	a.SetZIndex(5)
	f.events.InjectClick(10, 10)
	f.drain()
	if want := []string{"a:pointerdown", "b:pointerdown"}; !reflect.DeepEqual(log, want) {
		t.Errorf("order after ZIndex = %v, want %v", log, want)
	}
}

func TestStopPropagation(t *testing.T) {
	f := newPointerFixture(t)
	a := f.sprite("a", 0, 0, 50, 50)
	b := f.sprite("b", 0, 0, 50, 50)
	var log []string
	f.record(a, &log, thicket.EventPointerDown)
	f.engine.Subscribe(b, 0, thicket.EventPointerDown, func(payload any) {
		log = append(log, "b")
		payload.(*thicket.PointerEvent).StopPropagation()
	})

	f.events.InjectPress(10, 10)
	f.events.Update()
	if want := []string{"b"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestHiddenAndNonInteractableIgnored(t *testing.T) {
	f := newPointerFixture(t)
	hidden := f.sprite("hidden", 0, 0, 50, 50)
	inert := f.sprite("inert", 0, 0, 50, 50)
	var log []string
	f.record(hidden, &log, thicket.EventPointerDown)
	f.record(inert, &log, thicket.EventPointerDown)
	hidden.Visible = false
	inert.Interactable = false

	f.events.InjectPress(10, 10)
	f.events.Update()
	if len(log) != 0 {
		t.Errorf("log = %v, want none", log)
	}
}

func TestHiddenSubtreeIgnored(t *testing.T) {
	tests := []struct {
		name string
		hide func(group *Node)
	}{
		{"hidden container", func(g *Node) { g.Visible = false }},
		{"inert container", func(g *Node) { g.Interactable = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPointerFixture(t)
			group := NewContainer("group")
			f.scene.Root().AddChild(group)
			f.engine.Prepare(group, &thicket.Overrides{Store: f.store})
			child := NewSprite("child", 30, 30)
			group.AddChild(child)
			f.engine.Prepare(child, &thicket.Overrides{Store: f.store})
			var log []string
			f.record(child, &log, thicket.EventPointerDown, thicket.EventClick)
			tt.hide(group)

			f.events.InjectClick(15, 15)
			f.drain()
			if len(log) != 0 {
				t.Errorf("log = %v, want none", log)
			}

			group.Visible, group.Interactable = true, true
			f.events.InjectClick(15, 15)
			f.drain()
			want := []string{"child:pointerdown", "child:click"}
			if !reflect.DeepEqual(log, want) {
				t.Errorf("log after reveal = %v, want %v", log, want)
			}
		})
	}
}

func TestPointerMissed(t *testing.T) {
	f := newPointerFixture(t)
	n := f.sprite("box", 0, 0, 20, 20)
	var log []string
	f.record(n, &log, thicket.EventPointerDown, thicket.EventPointerMissed)
	missed := 0
	f.store.OnPointerMissed(func(ev *thicket.PointerEvent) {
		missed++
		if ev.Name != thicket.EventPointerMissed {
			t.Errorf("missed event name = %q", ev.Name)
		}
	})

	f.events.InjectClick(150, 80)
	f.drain()
	if missed != 1 {
		t.Errorf("store missed = %d, want 1", missed)
	}
	if want := []string{"box:pointermissed"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}

	log = nil
	f.events.InjectClick(5, 5)
	f.drain()
	if missed != 1 {
		t.Error("a press that hits must not report a miss")
	}
	if want := []string{"box:pointerdown"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestHoverEnterLeave(t *testing.T) {
	f := newPointerFixture(t)
	n := f.sprite("box", 0, 0, 20, 20)
	var log []string
	f.record(n, &log,
		thicket.EventPointerOver, thicket.EventPointerEnter,
		thicket.EventPointerOut, thicket.EventPointerLeave,
		thicket.EventPointerMove)

	f.events.InjectHover(5, 5)
	f.events.InjectHover(6, 6)
	f.events.InjectHover(100, 90)
	f.drain()

	want := []string{
		"box:pointerover", "box:pointerenter", "box:pointermove",
		"box:pointermove",
		"box:pointerout", "box:pointerleave",
	}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v\nwant %v", log, want)
	}
}

func TestRightClickIsContextMenu(t *testing.T) {
	f := newPointerFixture(t)
	n := f.sprite("box", 0, 0, 20, 20)
	var log []string
	f.record(n, &log, thicket.EventClick, thicket.EventContextMenu)
	f.events.queue = append(f.events.queue,
		syntheticPointerEvent{screenX: 5, screenY: 5, pressed: true, button: MouseButtonRight},
		syntheticPointerEvent{screenX: 5, screenY: 5},
	)
	f.drain()
	if want := []string{"box:contextmenu"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestDragSuppressesClickAndFeedsEntities(t *testing.T) {
	f := newPointerFixture(t)
	n := f.sprite("box", 0, 0, 100, 50)
	n.EntityID = 7
	rec := &entityRecorder{}
	f.scene.SetEntityStore(rec)
	clicks := 0
	f.engine.Subscribe(n, 0, thicket.EventClick, func(any) { clicks++ })

	f.events.InjectDrag(15, 15, 60, 15, 4)
	f.drain()

	if clicks != 0 {
		t.Errorf("drag fired %d clicks", clicks)
	}
	want := []EventType{
		EventPointerEnter, EventPointerDown,
		EventDragStart, EventDrag, EventDrag,
		EventDragEnd, EventPointerUp,
	}
	if got := rec.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("entity events = %v, want %v", got, want)
	}
	start := rec.events[2]
	if start.EntityID != 7 || start.StartX != 15 || start.DeltaX != 15 {
		t.Errorf("drag start = %+v", start)
	}
	end := rec.events[5]
	if end.GlobalX != 60 || end.DeltaX != 15 {
		t.Errorf("drag end = %+v", end)
	}
}

func TestSmallMoveIsStillClick(t *testing.T) {
	f := newPointerFixture(t)
	n := f.sprite("box", 0, 0, 100, 50)
	clicks := 0
	f.engine.Subscribe(n, 0, thicket.EventClick, func(any) { clicks++ })
	f.events.InjectPress(10, 10)
	f.events.InjectMove(12, 11)
	f.events.InjectRelease(12, 11)
	f.drain()
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1 within the dead zone", clicks)
	}
}

func TestCameraConvertsToWorld(t *testing.T) {
	f := newPointerFixture(t)
	f.scene.NewCamera(Rect{Width: 200, Height: 100})
	n := f.sprite("origin", -5, -5, 10, 10)
	var got thicket.Vec2
	f.engine.Subscribe(n, 0, thicket.EventPointerDown, func(payload any) {
		got = payload.(*thicket.PointerEvent).World
	})
	f.events.InjectPress(100, 50)
	f.events.Update()
	if got != (thicket.Vec2{}) {
		t.Errorf("world = %+v, want origin", got)
	}
}

type fakeSource struct {
	x, y    float64
	pressed bool
}

func (s *fakeSource) CursorPosition() (float64, float64) { return s.x, s.y }
func (s *fakeSource) Pressed() (bool, MouseButton)      { return s.pressed, MouseButtonLeft }
func (s *fakeSource) Modifiers() KeyModifiers            { return ModShift }

func TestSourceReadWhenQueueEmpty(t *testing.T) {
	f := newPointerFixture(t)
	n := f.sprite("box", 0, 0, 20, 20)
	n.EntityID = 3
	rec := &entityRecorder{}
	f.scene.SetEntityStore(rec)
	src := &fakeSource{x: 5, y: 5, pressed: true}
	f.events.SetSource(src)

	f.events.Update()
	src.pressed = false
	f.events.Update()

	want := []EventType{EventPointerEnter, EventPointerDown, EventClick, EventPointerUp}
	if got := rec.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("entity events = %v, want %v", got, want)
	}
	if rec.events[1].Modifiers != ModShift {
		t.Errorf("modifiers = %v", rec.events[1].Modifiers)
	}
}

func TestUnsubscribedNodeIsNotHit(t *testing.T) {
	f := newPointerFixture(t)
	a := f.sprite("a", 0, 0, 20, 20)
	b := f.sprite("b", 0, 0, 20, 20)
	var log []string
	f.record(a, &log, thicket.EventPointerDown)
	_ = b

	f.events.InjectPress(5, 5)
	f.events.Update()
	if want := []string{"a:pointerdown"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}
