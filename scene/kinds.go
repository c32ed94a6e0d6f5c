package scene

import (
	"fmt"

	"github.com/phanxgames/thicket"
)

// Kind names registered by RegisterKinds.
const (
	KindContainer = "container"
	KindSprite    = "sprite"
	KindMaterial  = "material"
	KindGeometry  = "geometry"
)

// RegisterKinds adds the scene node kinds to cat:
//
//	container [name]
//	sprite    [name] [width] [height]
//	material  [name] [color]               attaches to "material"
//	geometry  "rect" width height          attaches to "geometry"
//	geometry  "circle" radius
func RegisterKinds(cat *thicket.Catalogue) {
	cat.Extend(KindContainer, func(args ...any) (any, error) {
		name, err := stringArg(args, 0, KindContainer)
		if err != nil {
			return nil, err
		}
		return NewContainer(name), nil
	})
	cat.Extend(KindSprite, func(args ...any) (any, error) {
		name, err := stringArg(args, 0, KindSprite)
		if err != nil {
			return nil, err
		}
		w, err := floatArg(args, 1, 0)
		if err != nil {
			return nil, err
		}
		h, err := floatArg(args, 2, 0)
		if err != nil {
			return nil, err
		}
		return NewSprite(name, w, h), nil
	})
	cat.ExtendAttach(KindMaterial, func(args ...any) (any, error) {
		name, err := stringArg(args, 0, KindMaterial)
		if err != nil {
			return nil, err
		}
		c := ColorWhite
		if len(args) > 1 {
			if c, err = asColor("color", args[1]); err != nil {
				return nil, err
			}
		}
		return NewMaterial(name, c), nil
	}, thicket.AttachPath("material"))
	cat.ExtendAttach(KindGeometry, newGeometryArgs, thicket.AttachPath("geometry"))
}

func newGeometryArgs(args ...any) (any, error) {
	shape, err := stringArg(args, 0, "rect")
	if err != nil {
		return nil, err
	}
	switch shape {
	case "rect":
		w, err := floatArg(args, 1, 0)
		if err != nil {
			return nil, err
		}
		h, err := floatArg(args, 2, w)
		if err != nil {
			return nil, err
		}
		return NewRectGeometry(w, h), nil
	case "circle":
		r, err := floatArg(args, 1, 0)
		if err != nil {
			return nil, err
		}
		return NewCircleGeometry(r), nil
	}
	return nil, fmt.Errorf("unknown geometry shape %q", shape)
}

func stringArg(args []any, i int, def string) (string, error) {
	if i >= len(args) {
		return def, nil
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d: want string, got %T", i, args[i])
	}
	return s, nil
}

func floatArg(args []any, i int, def float64) (float64, error) {
	if i >= len(args) {
		return def, nil
	}
	return asFloat(fmt.Sprintf("argument %d", i), args[i])
}
