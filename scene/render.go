package scene

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/thicket"
)

// drawItem is a single draw instruction emitted during scene traversal.
type drawItem struct {
	node      *Node
	Transform [6]float64 // view * world
	Width     float64
	Height    float64
	Color     Color // node tint * material colour, alpha includes ancestors
	BlendMode BlendMode
	image     *ebiten.Image
	material  *Material
}

// whitePixel is a 1x1 white image stretched for solid colour sprites.
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(ColorWhite.RGBA())
	}
	return whitePixel
}

// collectDrawList walks the tree depth-first in ZIndex order and appends a
// draw item per visible sprite layer to buf. World transforms must be
// current. cull, when non-nil, is the world-space visible area.
func (s *Scene) collectDrawList(buf []drawItem, view [6]float64, cull *Rect) []drawItem {
	return traverse(s.root, buf, view, cull)
}

func traverse(n *Node, buf []drawItem, view [6]float64, cull *Rect) []drawItem {
	if !n.Visible || n.disposed {
		return buf
	}
	if n.Type == NodeTypeSprite && n.Renderable {
		if cull == nil || !shouldCull(n, n.worldTransform, *cull) {
			buf = appendSprite(buf, n, multiplyAffine(view, n.worldTransform))
		}
	}

	children := n.children
	if !n.childrenSorted {
		rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		buf = traverse(child, buf, view, cull)
	}
	return buf
}

// appendSprite emits one item for a bare sprite, or one per material when
// the node carries a material or a slot list of them.
func appendSprite(buf []drawItem, n *Node, transform [6]float64) []drawItem {
	w, h := spriteSize(n)
	if w == 0 && h == 0 {
		return buf
	}
	base := drawItem{
		node:      n,
		Transform: transform,
		Width:     w,
		Height:    h,
		BlendMode: n.BlendMode,
		image:     n.Image,
	}
	materials := materialsOf(n.Material)
	if len(materials) == 0 {
		item := base
		item.Color = n.Color
		item.Color.A *= n.worldAlpha
		return append(buf, item)
	}
	for _, m := range materials {
		item := base
		item.material = m
		item.Color = n.Color.Multiply(m.Color)
		item.Color.A *= n.worldAlpha
		item.BlendMode = m.BlendMode
		if m.Image != nil {
			item.image = m.Image
		}
		buf = append(buf, item)
	}
	return buf
}

// materialsOf flattens a node's material value into draw order, skipping
// empty slots and disposed materials.
func materialsOf(v any) []*Material {
	switch m := v.(type) {
	case *Material:
		if m == nil || m.disposed {
			return nil
		}
		return []*Material{m}
	case *thicket.Slots:
		var out []*Material
		for _, item := range m.Items() {
			if mat, ok := item.(*Material); ok && mat != nil && !mat.disposed {
				out = append(out, mat)
			}
		}
		return out
	}
	return nil
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order for a node.
// Uses insertion sort: zero allocations, stable, and optimal for the typical
// case of few children that are nearly sorted (O(n) when already sorted).
func rebuildSortedChildren(n *Node) {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}

// submitDrawList draws items onto target in order.
func submitDrawList(target *ebiten.Image, items []drawItem) {
	var op ebiten.DrawImageOptions
	for i := range items {
		it := &items[i]
		img := it.image
		if img == nil {
			img = ensureWhitePixel()
		}
		b := img.Bounds()
		if b.Dx() == 0 || b.Dy() == 0 {
			continue
		}

		op.GeoM.Reset()
		op.GeoM.Scale(it.Width/float64(b.Dx()), it.Height/float64(b.Dy()))
		op.GeoM.Concat(affineGeoM(it.Transform))
		op.ColorScale.Reset()
		a := float32(it.Color.A)
		op.ColorScale.Scale(float32(it.Color.R)*a, float32(it.Color.G)*a, float32(it.Color.B)*a, a)
		op.Blend = it.BlendMode.EbitenBlend()
		target.DrawImage(img, &op)
	}
}

// affineGeoM converts an [a, b, c, d, tx, ty] matrix to an ebiten.GeoM.
func affineGeoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}
