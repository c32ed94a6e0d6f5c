package scene

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/thicket"
)

func drawNames(items []drawItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.node.Name
		if it.material != nil {
			out[i] += "/" + it.material.Name
		}
	}
	return out
}

func collect(s *Scene) []drawItem {
	s.UpdateTransforms()
	return s.collectDrawList(nil, identityTransform, nil)
}

func assertNames(t *testing.T, got []drawItem, want ...string) {
	t.Helper()
	names := drawNames(got)
	if len(names) != len(want) {
		t.Fatalf("draw list = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("draw list = %v, want %v", names, want)
		}
	}
}

func TestSingleSpriteEmitsOneItem(t *testing.T) {
	s := NewScene()
	sp := NewSprite("a", 10, 20)
	sp.SetPosition(5, 6)
	s.Root().AddChild(sp)

	items := collect(s)
	assertNames(t, items, "a")
	if items[0].Width != 10 || items[0].Height != 20 {
		t.Errorf("size = %vx%v", items[0].Width, items[0].Height)
	}
	assertMatrix(t, "transform", items[0].Transform, [6]float64{1, 0, 0, 1, 5, 6})
}

func TestInvisibleSubtreeSkipped(t *testing.T) {
	s := NewScene()
	group := NewContainer("group")
	group.AddChild(NewSprite("hidden", 1, 1))
	group.Visible = false
	s.Root().AddChild(group)
	unrendered := NewSprite("unrendered", 1, 1)
	unrendered.Renderable = false
	unrendered.AddChild(NewSprite("child", 1, 1))
	s.Root().AddChild(unrendered)

	assertNames(t, collect(s), "child")
}

func TestZIndexOrdering(t *testing.T) {
	s := NewScene()
	a := NewSprite("a", 1, 1)
	b := NewSprite("b", 1, 1)
	c := NewSprite("c", 1, 1)
	s.Root().AddChild(a)
	s.Root().AddChild(b)
	s.Root().AddChild(c)
	a.SetZIndex(2)

	assertNames(t, collect(s), "b", "c", "a")

	c.SetZIndex(-1)
	assertNames(t, collect(s), "c", "b", "a")
}

func TestWorldAlphaInItem(t *testing.T) {
	s := NewScene()
	group := NewContainer("group")
	group.Alpha = 0.5
	sp := NewSprite("sp", 1, 1)
	sp.Color = Color{1, 1, 1, 0.5}
	group.AddChild(sp)
	s.Root().AddChild(group)

	items := collect(s)
	assertNear(t, "alpha", items[0].Color.A, 0.25)
}

func TestMaterialLayers(t *testing.T) {
	s := NewScene()
	sp := NewSprite("sp", 4, 4)
	sp.Color = Color{1, 1, 1, 1}
	base := NewMaterial("base", Color{1, 0, 0, 1})
	glow := NewMaterial("glow", Color{0, 1, 0, 0.5})
	glow.BlendMode = BlendAdd
	gone := NewMaterial("gone", ColorWhite)
	gone.Dispose()
	sp.Material = thicket.NewSlots(base, nil, glow, gone)
	s.Root().AddChild(sp)

	items := collect(s)
	assertNames(t, items, "sp/base", "sp/glow")
	if items[1].BlendMode != BlendAdd || items[1].Color != (Color{0, 1, 0, 0.5}) {
		t.Errorf("glow layer = %+v", items[1])
	}

	sp.Material = base
	assertNames(t, collect(s), "sp/base")
}

func TestGeometrySizesSprite(t *testing.T) {
	s := NewScene()
	sp := NewSprite("sp", 0, 0)
	s.Root().AddChild(sp)
	assertNames(t, collect(s))

	sp.Geometry = NewCircleGeometry(3)
	items := collect(s)
	assertNames(t, items, "sp")
	if items[0].Width != 6 || items[0].Height != 6 {
		t.Errorf("size = %vx%v, want 6x6", items[0].Width, items[0].Height)
	}
}

func TestCullingSkipsOffscreen(t *testing.T) {
	s := NewScene()
	on := NewSprite("on", 10, 10)
	off := NewSprite("off", 10, 10)
	off.SetPosition(1000, 1000)
	s.Root().AddChild(on)
	s.Root().AddChild(off)
	s.UpdateTransforms()

	cull := Rect{X: -50, Y: -50, Width: 100, Height: 100}
	assertNames(t, s.collectDrawList(nil, identityTransform, &cull), "on")
}

func TestAffineGeoM(t *testing.T) {
	m := [6]float64{2, 0, 0, 3, 10, 20}
	g := affineGeoM(m)
	x, y := g.Apply(1, 1)
	if x != 12 || y != 23 {
		t.Errorf("Apply(1,1) = (%v,%v), want (12,23)", x, y)
	}
	var id ebiten.GeoM
	if affineGeoM(identityTransform) != id {
		t.Error("identity matrix should map to the zero GeoM")
	}
}
