package scene

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, interaction events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
}

// Scene owns the node tree and cameras. Its root container is the scene
// object handed to the store; the reconciliation engine never disposes it.
type Scene struct {
	root       *Node
	entities   EntityStore
	cameras    []*Camera
	background Color

	drawList []drawItem
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	root := NewContainer("root")
	root.isScene = true
	return &Scene{root: root, background: Color{0, 0, 0, 1}}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Update refreshes world transforms and advances cameras by dt. It
// reports whether any camera is still moving and needs another frame.
func (s *Scene) Update(dt time.Duration) bool {
	// Transforms first so camera follow targets see this frame's positions.
	s.UpdateTransforms()
	moving := false
	for _, cam := range s.cameras {
		if cam.update(s.root, float32(dt.Seconds())) {
			moving = true
		}
	}
	return moving
}

// UpdateTransforms recomputes dirty world transforms from the root down.
func (s *Scene) UpdateTransforms() {
	updateWorldTransform(s.root, identityTransform, 1.0, false)
}

// Draw renders the scene into screen, once per camera or with an identity
// view when there are none.
func (s *Scene) Draw(screen *ebiten.Image) {
	screen.Fill(s.background.RGBA())
	if len(s.cameras) == 0 {
		s.drawWithView(screen, identityTransform, nil)
		return
	}
	for _, cam := range s.cameras {
		vp := cam.Viewport
		viewportImg := screen.SubImage(image.Rect(
			int(vp.X), int(vp.Y),
			int(vp.X+vp.Width), int(vp.Y+vp.Height),
		)).(*ebiten.Image)
		s.drawWithView(viewportImg, cam.viewMatrix(), cam)
	}
}

func (s *Scene) drawWithView(target *ebiten.Image, view [6]float64, cam *Camera) {
	var cull *Rect
	if cam != nil && cam.CullEnabled {
		b := cam.VisibleBounds()
		cull = &b
	}
	s.drawList = s.collectDrawList(s.drawList[:0], view, cull)
	submitDrawList(target, s.drawList)
}

// SetBackground sets the colour the screen is cleared to before drawing.
func (s *Scene) SetBackground(c Color) {
	s.background = c
}

// Background returns the clear colour.
func (s *Scene) Background() Color {
	return s.background
}

// NewCamera creates a camera with the given viewport and adds it to the scene.
func (s *Scene) NewCamera(viewport Rect) *Camera {
	cam := newCamera(viewport)
	s.cameras = append(s.cameras, cam)
	return cam
}

// RemoveCamera removes a camera from the scene.
func (s *Scene) RemoveCamera(cam *Camera) {
	for i, c := range s.cameras {
		if c == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return
		}
	}
}

// Cameras returns the scene's camera list. The returned slice MUST NOT be mutated.
func (s *Scene) Cameras() []*Camera {
	return s.cameras
}

// PrimaryCamera returns the first camera, used for pointer conversion, or
// nil.
func (s *Scene) PrimaryCamera() *Camera {
	if len(s.cameras) == 0 {
		return nil
	}
	return s.cameras[0]
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.entities = store
}

// ScreenToWorld converts screen coordinates through the primary camera.
func (s *Scene) ScreenToWorld(sx, sy float64) (float64, float64) {
	if cam := s.PrimaryCamera(); cam != nil {
		return cam.ScreenToWorld(sx, sy)
	}
	return sx, sy
}
