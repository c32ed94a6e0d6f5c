package scene

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/phanxgames/thicket"
)

// Dump writes an indented outline of the subtree rooted at n, one node per
// line in child order. Only attributes that differ from their defaults are
// printed, so the output is stable across runs.
func Dump(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	dumpNode(bw, n, 0)
	return bw.Flush()
}

// DumpString returns Dump's output as a string.
func DumpString(n *Node) string {
	var sb strings.Builder
	_ = Dump(&sb, n)
	return sb.String()
}

func dumpNode(w *bufio.Writer, n *Node, depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString("  ")
	}
	name := n.Name
	if name == "" {
		name = "-"
	}
	w.WriteString(name)
	w.WriteByte(' ')
	w.WriteString(n.Type.String())

	if n.Type == NodeTypeSprite {
		attr(w, "size", fmtFloat(n.Width)+"x"+fmtFloat(n.Height))
	}
	if n.X != 0 || n.Y != 0 {
		attr(w, "pos", pair(n.X, n.Y))
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		attr(w, "scale", pair(n.ScaleX, n.ScaleY))
	}
	if n.Rotation != 0 {
		attr(w, "rot", fmtFloat(n.Rotation))
	}
	if n.Alpha != 1 {
		attr(w, "alpha", fmtFloat(n.Alpha))
	}
	if n.ZIndex != 0 {
		attr(w, "z", strconv.Itoa(n.ZIndex))
	}
	if n.BlendMode != BlendNormal {
		attr(w, "blend", n.BlendMode.String())
	}
	if n.EntityID != 0 {
		attr(w, "entity", strconv.FormatUint(uint64(n.EntityID), 10))
	}
	if m := materialNames(n.Material); m != "" {
		attr(w, "material", m)
	}
	if n.Geometry != nil {
		attr(w, "geometry", n.Geometry.Name)
	}
	if !n.Visible {
		w.WriteString(" hidden")
	}
	if !n.Renderable {
		w.WriteString(" unrenderable")
	}
	if !n.Interactable {
		w.WriteString(" inert")
	}
	if n.disposed {
		w.WriteString(" disposed")
	}
	w.WriteByte('\n')

	for _, c := range n.children {
		dumpNode(w, c, depth+1)
	}
}

// materialNames lists material names in slot order, "-" marking empty
// slots.
func materialNames(v any) string {
	switch m := v.(type) {
	case *Material:
		if m != nil {
			return m.Name
		}
	case *thicket.Slots:
		names := make([]string, m.Len())
		for i, item := range m.Items() {
			names[i] = "-"
			if mat, ok := item.(*Material); ok && mat != nil {
				names[i] = mat.Name
			}
		}
		return "[" + strings.Join(names, ",") + "]"
	}
	return ""
}

func attr(w *bufio.Writer, key, value string) {
	w.WriteByte(' ')
	w.WriteString(key)
	w.WriteByte('=')
	w.WriteString(value)
}

func pair(a, b float64) string {
	return "(" + fmtFloat(a) + "," + fmtFloat(b) + ")"
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
