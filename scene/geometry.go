package scene

import "github.com/google/uuid"

// Geometry is the shape a sprite fills and hit tests against. Its bounds
// size the drawn quad when the node has no explicit size.
type Geometry struct {
	Name  string
	Shape HitShape

	uuid     string
	disposed bool
}

// NewGeometry wraps shape in a geometry.
func NewGeometry(name string, shape HitShape) *Geometry {
	return &Geometry{Name: name, Shape: shape, uuid: uuid.NewString()}
}

// NewRectGeometry creates a w x h rectangle anchored at the local origin.
func NewRectGeometry(w, h float64) *Geometry {
	return NewGeometry("rect", HitRect{Width: w, Height: h})
}

// NewCircleGeometry creates a circle of radius r centred at (r, r) so its
// bounds start at the local origin.
func NewCircleGeometry(r float64) *Geometry {
	return NewGeometry("circle", HitCircle{CenterX: r, CenterY: r, Radius: r})
}

// UUID returns the geometry's stable identity.
func (g *Geometry) UUID() string { return g.uuid }

// Bounds returns the local-space bounding rectangle of the shape.
func (g *Geometry) Bounds() Rect {
	if g == nil || g.Shape == nil {
		return Rect{}
	}
	return shapeBounds(g.Shape)
}

// Contains reports whether the local point lies inside the shape.
func (g *Geometry) Contains(x, y float64) bool {
	return g != nil && !g.disposed && g.Shape != nil && g.Shape.Contains(x, y)
}

// Dispose releases the geometry.
func (g *Geometry) Dispose() {
	g.disposed = true
	g.Shape = nil
}

// IsDisposed returns true if this geometry has been disposed.
func (g *Geometry) IsDisposed() bool { return g.disposed }
