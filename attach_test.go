package thicket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- AttachChild ---

func TestAttachGraphChild(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := newTestNode("a"), newTestNode("b")
	ia := e.Prepare(a, &Overrides{Store: NewStore()})
	ib := e.Prepare(b, nil)

	e.AttachChild(a, b)

	assert.Equal(t, []any{b}, ia.Objects())
	assert.Empty(t, ia.NonObjects())
	assert.Same(t, a, b.parent)
	assert.Equal(t, a, ib.Parent())
	assert.Same(t, ia.Store(), ib.Store(), "child adopts parent store")
}

func TestAttachLandsInExactlyOneList(t *testing.T) {
	tests := []struct {
		name   string
		attach *Attach
		want   Kind
	}{
		{"graph child", nil, KindObjects},
		{"path", AttachPath("Material"), KindNonObjects},
		{"func", AttachWith(func(parent, child any, s *Store) func() { return nil }), KindNonObjects},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			p, c := newTestNode("p"), newTestNode("c")
			ip := e.Prepare(p, nil)
			e.Prepare(c, &Overrides{Attach: tt.attach})

			e.AttachChild(p, c)

			in := func(list []any) bool {
				for _, v := range list {
					if v == c {
						return true
					}
				}
				return false
			}
			inObjects, inNon := in(ip.Objects()), in(ip.NonObjects())
			assert.NotEqual(t, inObjects, inNon, "exactly one list holds the child")
			assert.Equal(t, tt.want == KindObjects, inObjects)
		})
	}
}

func TestAttachNonGraphChildWithoutDescriptor(t *testing.T) {
	e, _ := newTestEngine(t)
	p := newTestNode("p")
	v := &testValue{Name: "v"}
	ip := e.Prepare(p, nil)
	e.Prepare(v, nil)

	e.AttachChild(p, v)

	assert.Equal(t, []any{v}, ip.NonObjects())
	assert.Empty(t, p.children)
}

func TestAttachUnpreparedPanics(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := newTestNode("a"), newTestNode("b")
	e.Prepare(a, nil)

	v := recoverPanic(func() { e.AttachChild(a, b) })
	assert.True(t, IsContractError(v, ErrNotPrepared), "panic = %v", v)

	v = recoverPanic(func() { e.AttachChild(b, a) })
	assert.True(t, IsContractError(v, ErrNotPrepared), "panic = %v", v)
}

func TestAttachCyclePanics(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b, c := newTestNode("a"), newTestNode("b"), newTestNode("c")
	for _, n := range []*testNode{a, b, c} {
		e.Prepare(n, nil)
	}
	e.AttachChild(a, b)
	e.AttachChild(b, c)

	tests := []struct {
		name          string
		parent, child any
	}{
		{"self", a, a},
		{"direct", b, a},
		{"indirect", c, a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := recoverPanic(func() { e.AttachChild(tt.parent, tt.child) })
			assert.True(t, IsContractError(v, ErrCycle), "panic = %v", v)
		})
	}
}

func TestReattachReplacesInPlace(t *testing.T) {
	e, _ := newTestEngine(t)
	p := newTestNode("p")
	ip := e.Prepare(p, nil)
	a, b := newTestNode("a"), newTestNode("b")
	e.Prepare(a, nil)
	e.Prepare(b, nil)
	e.AttachChild(p, a)
	e.AttachChild(p, b)

	e.AttachChild(p, a)

	assert.Equal(t, []any{a, b}, ip.Objects())
}

func TestReattachByUUIDReplacesInPlace(t *testing.T) {
	e, _ := newTestEngine(t)
	p := newTestNode("p")
	ip := e.Prepare(p, nil)
	first := &testValue{Name: "first", id: "same"}
	second := &testValue{Name: "second", id: "same"}
	e.Prepare(first, nil)
	e.Prepare(second, nil)

	e.AttachChild(p, first)
	e.AttachChild(p, second)

	require.Len(t, ip.NonObjects(), 1)
	assert.Same(t, second, ip.NonObjects()[0])
}

func TestAttachMovesBetweenParents(t *testing.T) {
	e, _ := newTestEngine(t)
	p1, p2, c, grand := newTestNode("p1"), newTestNode("p2"), newTestNode("c"), newTestNode("g")
	ip1 := e.Prepare(p1, nil)
	ip2 := e.Prepare(p2, nil)
	ic := e.Prepare(c, nil)
	e.Prepare(grand, nil)
	e.AttachChild(p1, c)
	e.AttachChild(c, grand)

	e.AttachChild(p2, c)

	assert.Empty(t, ip1.Objects())
	assert.Empty(t, p1.children)
	assert.Equal(t, []any{c}, ip2.Objects())
	assert.Same(t, p2, c.parent)
	assert.Equal(t, []any{grand}, ic.Objects(), "subtree moves along")
	assert.Equal(t, 0, grand.disposed)
}

func TestAttachAdoptsStoreFromPortal(t *testing.T) {
	e, _ := newTestEngine(t)
	root := NewStore()
	portal := NewPortalStore(root)
	p, c := newTestNode("p"), newTestNode("c")
	e.Prepare(p, &Overrides{Store: portal})
	ic := e.Prepare(c, &Overrides{Store: root})

	e.AttachChild(p, c)

	assert.Same(t, portal, ic.Store())
}

func TestAttachKeepsOwnStore(t *testing.T) {
	e, _ := newTestEngine(t)
	s1, s2 := NewStore(), NewStore()
	p, c := newTestNode("p"), newTestNode("c")
	e.Prepare(p, &Overrides{Store: s1})
	ic := e.Prepare(c, &Overrides{Store: s2})

	e.AttachChild(p, c)

	assert.Same(t, s2, ic.Store())
}

// --- Attach paths ---

func TestAttachPathRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t)
	p := newTestNode("p")
	prior := &testValue{Name: "prior"}
	p.Material = prior
	m := &testValue{Name: "m"}
	ip := e.Prepare(p, nil)
	im := e.Prepare(m, &Overrides{Attach: ParseAttach("material")})

	e.AttachChild(p, m)
	assert.Same(t, m, p.Material)
	assert.Same(t, prior, im.PreviousAttach())

	e.DetachChild(p, m, false)
	assert.Same(t, prior, p.Material)
	assert.Empty(t, ip.Objects())
	assert.Empty(t, ip.NonObjects())
}

func TestReattachPathKeepsOriginalPrevious(t *testing.T) {
	e, _ := newTestEngine(t)
	p := newTestNode("p")
	prior := &testValue{Name: "prior"}
	p.Material = prior
	m := &testValue{Name: "m"}
	e.Prepare(p, nil)
	e.Prepare(m, &Overrides{Attach: AttachPath("Material")})

	e.AttachChild(p, m)
	e.AttachChild(p, m)
	e.DetachChild(p, m, false)

	assert.Same(t, prior, p.Material)
}

func TestAttachCoercesMultiSlot(t *testing.T) {
	e, _ := newTestEngine(t)
	d := newTestNode("d")
	single := &testValue{Name: "single"}
	d.Material = single
	c := &testValue{Name: "c"}
	e.Prepare(d, nil)
	e.Prepare(c, &Overrides{Attach: AttachPath("material", "1")})

	e.AttachChild(d, c)

	slots, ok := d.Material.(*Slots)
	require.True(t, ok, "material = %T, want *Slots", d.Material)
	require.Equal(t, 2, slots.Len())
	assert.Same(t, single, slots.At(0))
	assert.Same(t, c, slots.At(1))
}

func TestAttachMultiSlotIntoExistingSlots(t *testing.T) {
	e, _ := newTestEngine(t)
	d := newTestNode("d")
	a, b := &testValue{Name: "a"}, &testValue{Name: "b"}
	d.Material = NewSlots(a)
	c := &testValue{Name: "c"}
	e.Prepare(d, nil)
	e.Prepare(c, &Overrides{Attach: AttachPath("material", "2")})
	e.Prepare(b, &Overrides{Attach: AttachPath("material", "1")})

	e.AttachChild(d, b)
	e.AttachChild(d, c)

	slots := d.Material.(*Slots)
	assert.Equal(t, []any{a, b, c}, slots.Items())

	e.DetachChild(d, c, false)
	assert.Nil(t, slots.At(2))
}

func TestAttachFuncCleanup(t *testing.T) {
	e, _ := newTestEngine(t)
	store := NewStore()
	p, c := newTestNode("p"), &testValue{Name: "c"}
	e.Prepare(p, &Overrides{Store: store})

	var gotStore *Store
	cleaned := 0
	e.Prepare(c, &Overrides{Attach: AttachWith(func(parent, child any, s *Store) func() {
		gotStore = s
		parent.(*testNode).Color = child.(*testValue).Name
		return func() { cleaned++ }
	})})

	e.AttachChild(p, c)
	assert.Equal(t, "c", p.Color)
	assert.Same(t, store, gotStore)

	e.DetachChild(p, c, false)
	assert.Equal(t, 1, cleaned)
}

func TestAttachNoneKeepsChildDetached(t *testing.T) {
	e, _ := newTestEngine(t)
	p, c := newTestNode("p"), newTestNode("c")
	ip := e.Prepare(p, nil)
	ic := e.Prepare(c, &Overrides{Attach: AttachNone})

	e.AttachChild(p, c)

	assert.Empty(t, ip.Objects())
	assert.Empty(t, ip.NonObjects())
	assert.Empty(t, p.children)
	assert.Nil(t, ic.Parent())
}

func TestAttachRawDefersUntilResolved(t *testing.T) {
	e, _ := newTestEngine(t)
	p := newTestNode("p")
	raw := &RawNode{Name: "color"}
	ip := e.Prepare(p, nil)
	ir := e.Prepare(raw, &Overrides{Raw: true, Attach: AttachPath("Color")})

	e.AttachChild(p, raw)
	assert.Equal(t, "", p.Color)
	assert.Equal(t, p, ir.Parent(), "parent recorded for the retry")
	assert.Empty(t, ip.NonObjects())

	ir.ResolveRaw("red")
	e.AttachChild(p, raw)
	assert.Equal(t, "red", p.Color)
	assert.Equal(t, []any{raw}, ip.NonObjects())
}

// --- InsertChild ---

func TestInsertChildAtIndex(t *testing.T) {
	e, _ := newTestEngine(t)
	p := newTestNode("p")
	e.Prepare(p, nil)
	a, b, c := newTestNode("a"), newTestNode("b"), newTestNode("c")
	for _, n := range []*testNode{a, b, c} {
		e.Prepare(n, nil)
	}
	e.AttachChild(p, a)
	e.AttachChild(p, b)

	e.InsertChild(p, c, 0)

	require.Len(t, p.children, 3)
	assert.Same(t, c, p.children[0])
	assert.Same(t, a, p.children[1])
	assert.Same(t, b, p.children[2])
}

// --- DetachChild ---

func TestDetachGraphChildScenario(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := newTestNode("a"), newTestNode("b")
	ia := e.Prepare(a, nil)
	e.Prepare(b, nil)

	e.AttachChild(a, b)
	require.Equal(t, []any{b}, ia.Objects())
	require.Same(t, a, b.parent)

	e.DetachChild(a, b, true)
	assert.Empty(t, ia.Objects())
	assert.Nil(t, b.parent)
	assert.Equal(t, 0, b.disposed, "disposal never runs inside DetachChild")
	assert.Equal(t, 1, e.PendingDisposals())

	e.Flush()
	assert.Equal(t, 1, b.disposed)
	assert.Nil(t, e.Instance(b), "local state released")

	e.Flush()
	assert.Equal(t, 1, b.disposed)
}

func TestDetachCascades(t *testing.T) {
	e, _ := newTestEngine(t)
	root, mid, leaf := newTestNode("root"), newTestNode("mid"), newTestNode("leaf")
	mat := &testValue{Name: "mat"}
	for _, n := range []*testNode{root, mid, leaf} {
		e.Prepare(n, nil)
	}
	imid := e.Prepare(mid, nil)
	e.Prepare(mat, &Overrides{Attach: AttachPath("Material")})
	e.AttachChild(root, mid)
	e.AttachChild(mid, leaf)
	e.AttachChild(leaf, mat)

	e.DetachChild(root, mid, true)

	assert.Empty(t, imid.Objects())
	assert.Empty(t, mid.children)
	assert.Nil(t, leaf.Material)
	assert.Equal(t, 3, e.PendingDisposals())

	e.Flush()
	assert.Equal(t, 1, mid.disposed)
	assert.Equal(t, 1, leaf.disposed)
	assert.Equal(t, 1, mat.disposed)
	assert.Equal(t, 0, root.disposed)
}

func TestDetachPrimitiveDoesNotCascadeOrDispose(t *testing.T) {
	e, _ := newTestEngine(t)
	root, prim, inner := newTestNode("root"), newTestNode("prim"), newTestNode("inner")
	e.Prepare(root, nil)
	e.Prepare(prim, &Overrides{Primitive: true})
	e.Prepare(inner, nil)
	e.AttachChild(root, prim)
	e.AttachChild(prim, inner)

	e.DetachChild(root, prim, true)
	e.Flush()

	assert.Equal(t, 0, prim.disposed)
	assert.Equal(t, 0, inner.disposed)
	assert.Same(t, prim, inner.parent)
}

func TestDetachDisposeFlagOnlyFlowsDownCascade(t *testing.T) {
	e, _ := newTestEngine(t)
	p, c, gc := newTestNode("p"), newTestNode("c"), newTestNode("gc")
	e.Prepare(p, nil)
	e.Prepare(c, nil)
	e.Prepare(gc, nil)
	e.AttachChild(p, c)
	e.AttachChild(c, gc)

	e.DetachChild(p, c, false)
	assert.Equal(t, 2, e.PendingDisposals())
	e.Flush()

	assert.Equal(t, 1, c.disposed)
	assert.Equal(t, 1, gc.disposed)
	assert.Nil(t, e.Instance(c))
	assert.Nil(t, e.Instance(gc))
}

func TestAttachInvalidPathLeavesListsUntouched(t *testing.T) {
	e, buf := newTestEngine(t)
	p := newTestNode("p")
	c := &testValue{Name: "c"}
	ip := e.Prepare(p, nil)
	ic := e.Prepare(c, &Overrides{Attach: AttachPath("doesNotExist")})

	e.AttachChild(p, c)

	assert.Empty(t, ip.NonObjects())
	assert.Empty(t, ip.Objects())
	assert.Nil(t, ic.Parent())
	assert.Nil(t, ic.PreviousAttach())
	assert.Contains(t, buf.String(), "doesNotExist")

	e.DetachChild(p, c, true)
	assert.Nil(t, p.Material, "detach must not write back a value that was never saved")
}

func TestDetachSceneIsNeverDisposed(t *testing.T) {
	e, _ := newTestEngine(t)
	p, sc := newTestNode("p"), newTestNode("scene")
	sc.scene = true
	e.Prepare(p, nil)
	e.Prepare(sc, nil)
	e.AttachChild(p, sc)

	e.DetachChild(p, sc, true)
	e.Flush()

	assert.Equal(t, 0, sc.disposed)
}

func TestReattachWithinBatchSurvivesFlush(t *testing.T) {
	e, _ := newTestEngine(t)
	p1, p2, c := newTestNode("p1"), newTestNode("p2"), newTestNode("c")
	e.Prepare(p1, nil)
	e.Prepare(p2, nil)
	e.Prepare(c, nil)
	e.AttachChild(p1, c)

	e.DetachChild(p1, c, true)
	e.AttachChild(p2, c)
	e.Flush()

	assert.Equal(t, 0, c.disposed)
	assert.NotNil(t, e.Instance(c))
	assert.Same(t, p2, c.parent)
}

func TestDetachRemovesInteractivity(t *testing.T) {
	e, _ := newTestEngine(t)
	store, _ := activeStore(FrameloopAlways)
	p, c, gc := newTestNode("p"), newTestNode("c"), newTestNode("gc")
	e.Prepare(p, &Overrides{Store: store})
	e.Prepare(c, nil)
	e.Prepare(gc, nil)
	e.AttachChild(p, c)
	e.AttachChild(c, gc)
	e.Subscribe(c, 0, EventClick, func(any) {})
	e.Subscribe(gc, 0, EventClick, func(any) {})
	require.Len(t, store.Interaction(), 2)

	e.DetachChild(p, c, true)

	assert.Empty(t, store.Interaction())
}

// --- Debug checks ---

func TestDebugAttachDisposedPanics(t *testing.T) {
	e, _ := newTestEngine(t, WithDebug(true))
	p, c := newTestNode("p"), newTestNode("c")
	e.Prepare(p, nil)
	e.Prepare(c, nil)
	e.AttachChild(p, c)
	e.DetachChild(p, c, true)
	e.Flush()
	require.Nil(t, e.Instance(c))

	v := recoverPanic(func() { e.AttachChild(p, c) })
	require.NotNil(t, v)
	assert.Contains(t, v, "thicket debug: attach (child) on disposed object")

	e.Prepare(c, nil)
	assert.Nil(t, recoverPanic(func() { e.AttachChild(p, c) }), "preparing again clears the record")
}

func TestReleasedObjectWithoutDebugIsNotPrepared(t *testing.T) {
	e, _ := newTestEngine(t)
	p, c := newTestNode("p"), newTestNode("c")
	e.Prepare(p, nil)
	e.Prepare(c, nil)
	e.AttachChild(p, c)
	e.DetachChild(p, c, true)
	e.Flush()

	v := recoverPanic(func() { e.AttachChild(p, c) })
	assert.True(t, IsContractError(v, ErrNotPrepared))
}

func TestDebugChildCountWarning(t *testing.T) {
	e, buf := newTestEngine(t, WithDebug(true))
	p := newTestNode("p")
	e.Prepare(p, nil)
	for i := 0; i <= debugMaxChildCount; i++ {
		c := &testValue{}
		e.Prepare(c, nil)
		e.AttachChild(p, c)
	}
	assert.Contains(t, buf.String(), "child count exceeds threshold")
}
