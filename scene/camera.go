package scene

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/thicket"
)

// Camera is a view into the scene: the world point (X, Y) is shown at the
// centre of Viewport, scaled by Zoom and turned by Rotation radians.
type Camera struct {
	X, Y     float64
	Zoom     float64
	Rotation float64
	Viewport Rect

	// CullEnabled drops sprites outside VisibleBounds from the draw list.
	CullEnabled bool

	follow *cameraFollow
	scroll *cameraScroll
	bounds *Rect

	view, inverse [6]float64
	stale         bool
}

// cameraFollow tracks a node. A named follow looks the node up under the
// scene root on each update until it exists, and again after it is
// disposed.
type cameraFollow struct {
	node   *Node
	name   string
	dx, dy float64
	lerp   float64
}

// cameraScroll eases the camera from one point to another; progress runs
// from 0 to 1.
type cameraScroll struct {
	fromX, fromY float64
	toX, toY     float64
	progress     *gween.Tween
}

func newCamera(viewport Rect) *Camera {
	return &Camera{Zoom: 1, Viewport: viewport, CullEnabled: true, stale: true}
}

// Follow keeps node, offset by (dx, dy), at the centre of the view. Each
// update covers lerp of the remaining distance; 1 snaps.
func (c *Camera) Follow(node *Node, dx, dy, lerp float64) {
	c.follow = &cameraFollow{node: node, dx: dx, dy: dy, lerp: lerp}
}

// FollowNamed is Follow for the first node called name under the scene
// root, resolved lazily.
func (c *Camera) FollowNamed(name string, dx, dy, lerp float64) {
	c.follow = &cameraFollow{name: name, dx: dx, dy: dy, lerp: lerp}
}

func (c *Camera) Unfollow() {
	c.follow = nil
}

// Following returns the node being tracked, or nil.
func (c *Camera) Following() *Node {
	if c.follow == nil {
		return nil
	}
	return c.follow.node
}

// ScrollTo eases the camera to (x, y) over duration seconds. It replaces a
// running scroll.
func (c *Camera) ScrollTo(x, y float64, duration float32, fn ease.TweenFunc) {
	c.scroll = &cameraScroll{
		fromX: c.X, fromY: c.Y,
		toX: x, toY: y,
		progress: gween.New(0, 1, duration, fn),
	}
}

func (c *Camera) Scrolling() bool {
	return c.scroll != nil
}

// SetBounds keeps the visible area inside bounds from the next update on.
func (c *Camera) SetBounds(bounds Rect) {
	c.bounds = &bounds
}

func (c *Camera) ClearBounds() {
	c.bounds = nil
}

// Bounds returns the clamping rectangle and whether one is set.
func (c *Camera) Bounds() (Rect, bool) {
	if c.bounds == nil {
		return Rect{}, false
	}
	return *c.bounds, true
}

// ClampToBounds applies the bounds now rather than on the next update,
// for callers that move X and Y directly.
func (c *Camera) ClampToBounds() {
	if c.bounds == nil {
		return
	}
	x := clampAxis(c.X, c.bounds.X, c.bounds.Width, c.Viewport.Width/(2*c.Zoom))
	y := clampAxis(c.Y, c.bounds.Y, c.bounds.Height, c.Viewport.Height/(2*c.Zoom))
	if x != c.X || y != c.Y {
		c.X, c.Y = x, y
		c.stale = true
	}
}

// clampAxis keeps a view of half-extent half centred at pos inside
// [lo, lo+span]. A span narrower than the view centres it.
func clampAxis(pos, lo, span, half float64) float64 {
	if span < 2*half {
		return lo + span/2
	}
	return math.Max(lo+half, math.Min(pos, lo+span-half))
}

// Configure applies canvas camera options with a new viewport. Position
// and zoom are reset and a running scroll is dropped. A named follow is
// replaced only when the name changes; a follow set from code survives
// options without one.
func (c *Camera) Configure(opts thicket.CameraOptions, viewport Rect) {
	c.X, c.Y = opts.X, opts.Y
	if opts.Zoom > 0 {
		c.Zoom = opts.Zoom
	}
	c.Viewport = viewport
	c.scroll = nil
	c.stale = true

	if b := opts.Bounds; b.Empty() {
		c.ClearBounds()
	} else {
		c.SetBounds(Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height})
	}

	lerp := opts.FollowLerp
	if lerp == 0 {
		lerp = 1
	}
	switch f := c.follow; {
	case opts.Follow == "":
		if f != nil && f.name != "" {
			c.Unfollow()
		}
	case f == nil || f.name != opts.Follow:
		c.FollowNamed(opts.Follow, 0, 0, lerp)
	default:
		f.lerp = lerp
	}
}

// update advances follow, scroll and bounds by dt seconds and reports
// whether the camera is still in motion.
func (c *Camera) update(root *Node, dt float32) bool {
	x, y := c.X, c.Y

	if f := c.follow; f != nil {
		if f.name != "" && (f.node == nil || f.node.IsDisposed()) && root != nil {
			f.node = root.FindDescendant(f.name)
		}
		if f.node != nil && !f.node.IsDisposed() {
			c.X = approach(c.X, f.node.worldTransform[4]+f.dx, f.lerp)
			c.Y = approach(c.Y, f.node.worldTransform[5]+f.dy, f.lerp)
		}
	}

	if s := c.scroll; s != nil {
		p, done := s.progress.Update(dt)
		c.X = s.fromX + (s.toX-s.fromX)*float64(p)
		c.Y = s.fromY + (s.toY-s.fromY)*float64(p)
		if done {
			c.X, c.Y = s.toX, s.toY
			c.scroll = nil
		}
	}

	c.ClampToBounds()

	moved := c.X != x || c.Y != y
	if moved {
		c.stale = true
	}
	return moved || c.scroll != nil
}

// approach moves from toward to by lerp of the gap, landing exactly once
// the gap is below a thousandth of a unit.
func approach(from, to, lerp float64) float64 {
	if math.Abs(to-from) < 1e-3 {
		return to
	}
	return from + (to-from)*lerp
}

// MarkDirty forces the view matrix to be rebuilt, after Zoom, Rotation or
// Viewport were assigned directly.
func (c *Camera) MarkDirty() {
	c.stale = true
}

// viewMatrix maps world space to screen space: the camera position goes
// to the origin, is rotated and zoomed, then moved to the viewport centre.
func (c *Camera) viewMatrix() [6]float64 {
	if !c.stale {
		return c.view
	}
	c.stale = false
	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	m := multiplyAffine(translation(cx, cy), scaling(c.Zoom, c.Zoom))
	m = multiplyAffine(m, rotation(-c.Rotation))
	c.view = multiplyAffine(m, translation(-c.X, -c.Y))
	c.inverse = invertAffine(c.view)
	return c.view
}

func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return transformPoint(c.viewMatrix(), wx, wy)
}

func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.viewMatrix()
	return transformPoint(c.inverse, sx, sy)
}

// VisibleBounds is the world-space bounding box of the viewport.
func (c *Camera) VisibleBounds() Rect {
	c.viewMatrix()
	return transformRect(c.inverse, c.Viewport)
}

// shouldCull reports whether a sprite drawn with world lies entirely
// outside visible. Containers and unsized sprites are never culled.
func shouldCull(n *Node, world [6]float64, visible Rect) bool {
	w, h := spriteSize(n)
	if w == 0 && h == 0 {
		return false
	}
	return !transformRect(world, Rect{Width: w, Height: h}).Intersects(visible)
}
