package cli

import (
	"fmt"

	"github.com/tanema/gween/ease"

	"github.com/phanxgames/thicket"
	"github.com/phanxgames/thicket/scene"
)

const (
	boardCols  = 3
	boardRows  = 2
	tileSize   = 48
	tileGap    = 8
	markerSize = 16

	glideSeconds = 0.4
)

var (
	tileColor    = scene.Color{R: 0.227, G: 0.431, B: 0.647, A: 1}
	flippedColor = scene.Color{R: 0.851, G: 0.325, B: 0.310, A: 1}
)

// demoBoard is the scene graph the run and tree commands mount: a grid of
// tiles that flip colour when clicked, a marker that glides to the last
// clicked tile and, when there is a camera, a pan that centres that tile.
type demoBoard struct {
	renderer  *thicket.Renderer
	camera    *scene.Camera
	marker    *scene.Node
	stopTween func()
}

// buildDemo creates the board under root through r and returns it as the
// mounted component. cam may be nil.
func buildDemo(r *thicket.Renderer, root *scene.Node, cam *scene.Camera) (*demoBoard, error) {
	d := &demoBoard{renderer: r, camera: cam}

	board, err := d.create(scene.KindContainer, "board")
	if err != nil {
		return nil, err
	}
	r.InsertChild(root, board, -1)
	if err := d.set(board, "x", 40, "y", 40); err != nil {
		return nil, err
	}

	for row := 0; row < boardRows; row++ {
		for col := 0; col < boardCols; col++ {
			if err := d.addTile(board, row, col); err != nil {
				return nil, err
			}
		}
	}

	marker, err := d.create(scene.KindSprite, "marker", markerSize, markerSize)
	if err != nil {
		return nil, err
	}
	r.InsertChild(board, marker, -1)
	if err := d.set(marker, "x", (tileSize-markerSize)/2, "y", boardRows*(tileSize+tileGap)+tileGap, "zIndex", 1); err != nil {
		return nil, err
	}
	gold, err := d.create(scene.KindMaterial, "gold", "#f5c542")
	if err != nil {
		return nil, err
	}
	r.InsertChild(marker, gold, -1)
	dot, err := d.create(scene.KindGeometry, "circle", markerSize/2)
	if err != nil {
		return nil, err
	}
	r.InsertChild(marker, dot, -1)
	d.marker = marker.(*scene.Node)

	return d, nil
}

func (d *demoBoard) addTile(board any, row, col int) error {
	r := d.renderer
	tile, err := d.create(scene.KindSprite, fmt.Sprintf("tile-%d-%d", row, col), tileSize, tileSize)
	if err != nil {
		return err
	}
	r.InsertChild(board, tile, -1)
	if err := d.set(tile, "x", col*(tileSize+tileGap), "y", row*(tileSize+tileGap)); err != nil {
		return err
	}
	mat, err := d.create(scene.KindMaterial, "blue", tileColor)
	if err != nil {
		return err
	}
	r.InsertChild(tile, mat, -1)

	node := tile.(*scene.Node)
	material := mat.(*scene.Material)
	return r.SetProperty(tile, string(thicket.EventClick), func(*thicket.PointerEvent) {
		d.flip(material)
		d.moveMarker(node)
		d.pan(node)
	})
}

func (d *demoBoard) flip(m *scene.Material) {
	c := flippedColor
	if m.Color == flippedColor {
		c = tileColor
	}
	if err := d.renderer.SetProperty(m, "color", c); err != nil {
		d.renderer.Engine().Logger().Warn("flip tile", "material", m.Name, "err", err)
	}
}

func (d *demoBoard) moveMarker(tile *scene.Node) {
	if d.stopTween != nil {
		d.stopTween()
	}
	x := tile.X + (tile.Width-d.marker.Width)/2
	y := tile.Y + (tile.Height-d.marker.Height)/2
	g := scene.TweenPosition(d.marker, x, y, glideSeconds, ease.OutCubic)
	d.stopTween = scene.Animate(d.renderer.Engine(), g)
}

// pan scrolls the camera so the tile ends up in the middle of the view.
func (d *demoBoard) pan(tile *scene.Node) {
	if d.camera == nil {
		return
	}
	x, y := tile.LocalToWorld(tile.Width/2, tile.Height/2)
	d.camera.ScrollTo(x, y, glideSeconds, ease.InOutQuad)
}

// Destroy stops any running tween.
func (d *demoBoard) Destroy() {
	if d.stopTween != nil {
		d.stopTween()
		d.stopTween = nil
	}
}

func (d *demoBoard) create(kind string, args ...any) (any, error) {
	obj, err := d.renderer.CreateNode(kind, args...)
	if err != nil {
		return nil, fmt.Errorf("demo board: create %s: %w", kind, err)
	}
	return obj, nil
}

// set assigns name/value pairs in order.
func (d *demoBoard) set(node any, kv ...any) error {
	for i := 0; i+1 < len(kv); i += 2 {
		name := kv[i].(string)
		if err := d.renderer.SetProperty(node, name, kv[i+1]); err != nil {
			return fmt.Errorf("demo board: set %s: %w", name, err)
		}
	}
	return nil
}
