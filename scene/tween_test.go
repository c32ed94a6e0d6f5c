package scene

import (
	"math"
	"testing"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/phanxgames/thicket"
)

func TestTweenPositionReachesTarget(t *testing.T) {
	n := NewContainer("n")
	g := TweenPosition(n, 100, 200, 1, ease.Linear)
	g.Update(0.5)
	if !approxEqual(n.X, 50, 0.5) || !approxEqual(n.Y, 100, 0.5) {
		t.Errorf("halfway = (%v,%v)", n.X, n.Y)
	}
	g.Update(0.5)
	if n.X != 100 || n.Y != 200 || !g.Done {
		t.Errorf("end = (%v,%v) done=%v", n.X, n.Y, g.Done)
	}
}

func TestTweenScaleAndRotation(t *testing.T) {
	n := NewContainer("n")
	s := TweenScale(n, 2, 3, 1, ease.Linear)
	r := TweenRotation(n, math.Pi, 1, ease.Linear)
	s.Update(1)
	r.Update(1)
	if n.ScaleX != 2 || n.ScaleY != 3 {
		t.Errorf("scale = (%v,%v)", n.ScaleX, n.ScaleY)
	}
	if !approxEqual(n.Rotation, math.Pi, 1e-6) {
		t.Errorf("rotation = %v", n.Rotation)
	}
}

func TestTweenColorAllComponents(t *testing.T) {
	n := NewSprite("n", 1, 1)
	n.Color = Color{0, 0, 0, 0}
	g := TweenColor(n, Color{1, 0.5, 0.25, 1}, 1, ease.Linear)
	g.Update(1)
	want := Color{1, 0.5, 0.25, 1}
	if n.Color != want {
		t.Errorf("color = %+v, want %+v", n.Color, want)
	}
}

func TestTweenAlphaInterpolates(t *testing.T) {
	n := NewContainer("n")
	g := TweenAlpha(n, 0, 2, ease.Linear)
	g.Update(1)
	if !approxEqual(n.Alpha, 0.5, 0.01) {
		t.Errorf("alpha = %v, want 0.5", n.Alpha)
	}
}

func TestTweenGroupMarksDirty(t *testing.T) {
	n := NewContainer("n")
	updateWorldTransform(n, identityTransform, 1, false)
	if n.transformDirty {
		t.Fatal("transform should be clean")
	}
	g := TweenPosition(n, 10, 0, 1, ease.Linear)
	g.Update(0.1)
	if !n.transformDirty {
		t.Error("update should mark the node dirty")
	}
}

func TestTweenGroupStopsOnDisposedNode(t *testing.T) {
	n := NewContainer("n")
	g := TweenPosition(n, 100, 0, 1, ease.Linear)
	g.Update(0.25)
	x := n.X
	n.Dispose()
	g.Update(0.25)
	if !g.Done || n.X != x {
		t.Errorf("done=%v X=%v, want done and X unchanged at %v", g.Done, n.X, x)
	}
	g.Update(0.25)
}

func TestEasingFunctionsDiffer(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	TweenPosition(a, 100, 0, 1, ease.Linear).Update(0.25)
	TweenPosition(b, 100, 0, 1, ease.InQuad).Update(0.25)
	if approxEqual(a.X, b.X, 0.01) {
		t.Errorf("linear and quad should differ: %v vs %v", a.X, b.X)
	}
}

func TestAnimateDrivesFrames(t *testing.T) {
	engine := thicket.NewEngine()
	store := thicket.NewStore()
	store.SetFrameloop(thicket.FrameloopDemand)
	store.SetActive(true)
	n := NewContainer("n")
	engine.Prepare(n, &thicket.Overrides{Store: store})

	g := TweenPosition(n, 100, 0, 1, ease.Linear)
	Animate(engine, g)
	if store.Frames() != 1 {
		t.Fatalf("Animate should request a frame, pending = %d", store.Frames())
	}

	start := time.UnixMilli(0)
	for i := 0; i <= 4; i++ {
		if !store.Tick(start.Add(time.Duration(i) * 250 * time.Millisecond)) {
			t.Fatalf("tick %d did not render", i)
		}
	}
	if !g.Done || n.X != 100 {
		t.Errorf("done=%v X=%v, want finished at 100", g.Done, n.X)
	}
	if store.Tick(start.Add(2 * time.Second)) {
		t.Error("a finished animation should stop requesting frames")
	}
}

func TestAnimateStop(t *testing.T) {
	engine := thicket.NewEngine()
	store := thicket.NewStore()
	store.SetActive(true)
	n := NewContainer("n")
	engine.Prepare(n, &thicket.Overrides{Store: store})

	g := TweenPosition(n, 100, 0, 1, ease.Linear)
	stop := Animate(engine, g)
	start := time.UnixMilli(0)
	store.Advance(start)
	store.Advance(start.Add(500 * time.Millisecond))
	x := n.X
	stop()
	stop()
	store.Advance(start.Add(time.Second))
	if n.X != x || g.Done {
		t.Errorf("stopped animation moved: X=%v (was %v) done=%v", n.X, x, g.Done)
	}
}

func BenchmarkTweenGroupUpdate(b *testing.B) {
	n := NewContainer("n")
	g := TweenPosition(n, 100, 100, float32(b.N), ease.Linear)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.Update(1)
	}
}
