package scene

import (
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

// Material describes how a sprite's surface is painted. A node may carry
// one Material or a *thicket.Slots of them, which are drawn layered in slot
// order.
type Material struct {
	Name      string
	Color     Color
	BlendMode BlendMode
	// Image, when set, is stretched over the node instead of a solid fill.
	Image *ebiten.Image

	uuid     string
	disposed bool
}

// NewMaterial creates a solid-colour material.
func NewMaterial(name string, c Color) *Material {
	return &Material{Name: name, Color: c, uuid: uuid.NewString()}
}

// UUID returns the material's stable identity.
func (m *Material) UUID() string { return m.uuid }

// Dispose releases the material. The image is shared and left alone.
func (m *Material) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.Image = nil
}

// IsDisposed returns true if this material has been disposed.
func (m *Material) IsDisposed() bool { return m.disposed }
