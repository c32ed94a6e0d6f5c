package scene

// HitShape is used for custom hit testing regions in local coordinates.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitPolygon is a convex polygon hit area in local coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using a
// cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	var positive, negative bool
	for i := 0; i < n; i++ {
		a := p.Points[i]
		b := p.Points[(i+1)%n]
		cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// shapeBounds returns the local-space AABB of a shape, used for sizing and
// culling.
func shapeBounds(s HitShape) Rect {
	switch v := s.(type) {
	case HitRect:
		return Rect{v.X, v.Y, v.Width, v.Height}
	case HitCircle:
		return Rect{v.CenterX - v.Radius, v.CenterY - v.Radius, 2 * v.Radius, 2 * v.Radius}
	case HitPolygon:
		if len(v.Points) == 0 {
			return Rect{}
		}
		minX, minY := v.Points[0].X, v.Points[0].Y
		maxX, maxY := minX, minY
		for _, pt := range v.Points[1:] {
			minX = min(minX, pt.X)
			minY = min(minY, pt.Y)
			maxX = max(maxX, pt.X)
			maxY = max(maxY, pt.Y)
		}
		return Rect{minX, minY, maxX - minX, maxY - minY}
	}
	return Rect{}
}
