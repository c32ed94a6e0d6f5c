package scene

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/thicket"
)

// Property reads a named node property. Names are the lower-camel forms of
// the exported fields.
func (n *Node) Property(name string) (any, bool) {
	switch name {
	case "name":
		return n.Name, true
	case "x":
		return n.X, true
	case "y":
		return n.Y, true
	case "scaleX":
		return n.ScaleX, true
	case "scaleY":
		return n.ScaleY, true
	case "rotation":
		return n.Rotation, true
	case "skewX":
		return n.SkewX, true
	case "skewY":
		return n.SkewY, true
	case "pivotX":
		return n.PivotX, true
	case "pivotY":
		return n.PivotY, true
	case "alpha":
		return n.Alpha, true
	case "visible":
		return n.Visible, true
	case "renderable":
		return n.Renderable, true
	case "interactable":
		return n.Interactable, true
	case "zIndex":
		return n.ZIndex, true
	case "width":
		return n.Width, true
	case "height":
		return n.Height, true
	case "color":
		return n.Color, true
	case "blendMode":
		return n.BlendMode, true
	case "image":
		return n.Image, true
	case "material":
		return n.Material, true
	case "geometry":
		if n.Geometry == nil {
			return nil, true
		}
		return n.Geometry, true
	case "hitShape":
		return n.HitShape, true
	case "userData":
		return n.UserData, true
	case "entityID":
		return n.EntityID, true
	}
	return nil, false
}

// SetProperty assigns a named node property. Transform properties mark the
// node dirty. Numeric properties accept any Go number; colours accept a Color or a hex
// string; blend modes accept a BlendMode or its name. A value of the wrong
// type leaves the property unchanged.
func (n *Node) SetProperty(name string, value any) error {
	if f := n.floatField(name); f != nil {
		v, err := asFloat(name, value)
		if err != nil {
			return err
		}
		*f = v
		n.transformDirty = true
		return nil
	}
	if b := n.boolField(name); b != nil {
		v, ok := value.(bool)
		if !ok {
			return typeError(name, value)
		}
		*b = v
		return nil
	}

	switch name {
	case "name":
		s, ok := value.(string)
		if !ok {
			return typeError(name, value)
		}
		n.Name = s
	case "zIndex":
		v, err := asFloat(name, value)
		if err != nil {
			return err
		}
		n.SetZIndex(int(v))
	case "entityID":
		v, err := asFloat(name, value)
		if err != nil {
			return err
		}
		n.EntityID = uint32(v)
	case "color":
		c, err := asColor(name, value)
		if err != nil {
			return err
		}
		n.Color = c
	case "blendMode":
		b, err := asBlend(name, value)
		if err != nil {
			return err
		}
		n.BlendMode = b
	case "image":
		img, ok := value.(*ebiten.Image)
		if value != nil && !ok {
			return typeError(name, value)
		}
		n.Image = img
	case "material":
		switch value.(type) {
		case nil, *Material, *thicket.Slots:
			n.Material = value
		default:
			return typeError(name, value)
		}
	case "geometry":
		g, ok := value.(*Geometry)
		if value != nil && !ok {
			return typeError(name, value)
		}
		n.Geometry = g
	case "hitShape":
		s, ok := value.(HitShape)
		if value != nil && !ok {
			return typeError(name, value)
		}
		n.HitShape = s
	case "userData":
		n.UserData = value
	default:
		return fmt.Errorf("%w: node has no property %q", thicket.ErrInvalidPath, name)
	}
	return nil
}

func (n *Node) floatField(name string) *float64 {
	switch name {
	case "x":
		return &n.X
	case "y":
		return &n.Y
	case "scaleX":
		return &n.ScaleX
	case "scaleY":
		return &n.ScaleY
	case "rotation":
		return &n.Rotation
	case "skewX":
		return &n.SkewX
	case "skewY":
		return &n.SkewY
	case "pivotX":
		return &n.PivotX
	case "pivotY":
		return &n.PivotY
	case "alpha":
		return &n.Alpha
	case "width":
		return &n.Width
	case "height":
		return &n.Height
	}
	return nil
}

func (n *Node) boolField(name string) *bool {
	switch name {
	case "visible":
		return &n.Visible
	case "renderable":
		return &n.Renderable
	case "interactable":
		return &n.Interactable
	}
	return nil
}

func typeError(name string, value any) error {
	return fmt.Errorf("%w: cannot assign %T to %q", thicket.ErrInvalidPath, value, name)
}

func asFloat(name string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	}
	return 0, typeError(name, value)
}

func asColor(name string, value any) (Color, error) {
	switch v := value.(type) {
	case Color:
		return v, nil
	case thicket.Color:
		return ColorFrom(v), nil
	case string:
		c, err := ParseColor(v)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: %v", thicket.ErrInvalidPath, name, err)
		}
		return c, nil
	}
	return Color{}, typeError(name, value)
}

func asBlend(name string, value any) (BlendMode, error) {
	switch v := value.(type) {
	case BlendMode:
		return v, nil
	case string:
		if b, ok := ParseBlendMode(v); ok {
			return b, nil
		}
	}
	return BlendNormal, typeError(name, value)
}

// Property reads a named material property.
func (m *Material) Property(name string) (any, bool) {
	switch name {
	case "name":
		return m.Name, true
	case "color":
		return m.Color, true
	case "blendMode":
		return m.BlendMode, true
	case "image":
		return m.Image, true
	}
	return nil, false
}

// SetProperty assigns a named material property with the same conversions
// as Node.SetProperty.
func (m *Material) SetProperty(name string, value any) error {
	switch name {
	case "name":
		s, ok := value.(string)
		if !ok {
			return typeError(name, value)
		}
		m.Name = s
	case "color":
		c, err := asColor(name, value)
		if err != nil {
			return err
		}
		m.Color = c
	case "blendMode":
		b, err := asBlend(name, value)
		if err != nil {
			return err
		}
		m.BlendMode = b
	case "image":
		img, ok := value.(*ebiten.Image)
		if value != nil && !ok {
			return typeError(name, value)
		}
		m.Image = img
	default:
		return fmt.Errorf("%w: material has no property %q", thicket.ErrInvalidPath, name)
	}
	return nil
}
