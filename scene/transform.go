package scene

import "math"

// Affine matrices are stored column-major as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

func translation(x, y float64) [6]float64 { return [6]float64{1, 0, 0, 1, x, y} }
func scaling(sx, sy float64) [6]float64   { return [6]float64{sx, 0, 0, sy, 0, 0} }
func shear(tanX, tanY float64) [6]float64 { return [6]float64{1, tanY, tanX, 1, 0, 0} }

func rotation(r float64) [6]float64 {
	sin, cos := math.Sincos(r)
	return [6]float64{cos, sin, -sin, cos, 0, 0}
}

// computeLocalTransform builds a node's matrix in its parent's space. The
// pivot is moved to the origin, then scaled, skewed, rotated and placed
// at (X, Y).
func computeLocalTransform(n *Node) [6]float64 {
	m := translation(n.X, n.Y)
	if n.Rotation != 0 {
		m = multiplyAffine(m, rotation(n.Rotation))
	}
	if n.SkewX != 0 || n.SkewY != 0 {
		m = multiplyAffine(m, shear(math.Tan(n.SkewX), math.Tan(n.SkewY)))
	}
	m = multiplyAffine(m, scaling(n.ScaleX, n.ScaleY))
	if n.PivotX != 0 || n.PivotY != 0 {
		m = multiplyAffine(m, translation(-n.PivotX, -n.PivotY))
	}
	return m
}

// multiplyAffine returns p*c: c is applied first.
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine returns the inverse of m, or the identity when m is
// singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if math.Abs(det) < 1e-12 {
		return identityTransform
	}
	a, b := m[3]/det, -m[1]/det
	c, d := -m[2]/det, m[0]/det
	return [6]float64{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}
}

func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect maps r's corners through m and returns their
// axis-aligned bounds.
func transformRect(m [6]float64, r Rect) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, corner := range [4][2]float64{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	} {
		x, y := transformPoint(m, corner[0], corner[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// updateWorldTransform refreshes world matrices and alpha below n. A
// recomputed node forces its whole subtree to follow.
func updateWorldTransform(n *Node, parent [6]float64, parentAlpha float64, parentChanged bool) {
	changed := n.transformDirty || parentChanged
	if changed {
		n.worldTransform = multiplyAffine(parent, computeLocalTransform(n))
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, changed)
	}
}

// --- Extent ---

// spriteSize is the local drawing area of a sprite, anchored at its
// origin: explicit Width and Height, else the far corner of its geometry.
// Containers have none.
func spriteSize(n *Node) (w, h float64) {
	if n.Type != NodeTypeSprite {
		return 0, 0
	}
	if n.Width != 0 || n.Height != 0 {
		return n.Width, n.Height
	}
	b := n.Geometry.Bounds()
	return b.X + b.Width, b.Y + b.Height
}

// containsLocal tests a point in n's local space against its hit region:
// HitShape first, then the geometry outline of an unsized sprite, then
// the sprite size.
func containsLocal(n *Node, lx, ly float64) bool {
	switch {
	case n.HitShape != nil:
		return n.HitShape.Contains(lx, ly)
	case n.Geometry != nil && n.Width == 0 && n.Height == 0:
		return n.Geometry.Contains(lx, ly)
	}
	w, h := spriteSize(n)
	if w == 0 && h == 0 {
		return false
	}
	return lx >= 0 && lx <= w && ly >= 0 && ly <= h
}

// --- Setters ---
//
// Assigning the exported fields directly needs a MarkDirty afterwards.

func (n *Node) SetPosition(x, y float64) {
	n.X, n.Y = x, y
	n.MarkDirty()
}

func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX, n.ScaleY = sx, sy
	n.MarkDirty()
}

// SetRotation sets the rotation in radians, clockwise.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.MarkDirty()
}

func (n *Node) SetPivot(px, py float64) {
	n.PivotX, n.PivotY = px, py
	n.MarkDirty()
}

func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.MarkDirty()
}

// MarkDirty schedules the node's world transform for recomputation.
func (n *Node) MarkDirty() { n.transformDirty = true }

// WorldToLocal maps a world point into n's local space using the last
// computed transform.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(n.worldTransform), wx, wy)
}

// LocalToWorld maps a local point into world space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.worldTransform, lx, ly)
}

func (n *Node) WorldTransform() [6]float64 { return n.worldTransform }
func (n *Node) WorldAlpha() float64        { return n.worldAlpha }
