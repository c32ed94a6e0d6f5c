package scene

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/thicket"
)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenColor) and either call Update(dt) each frame or hand it to Animate.
// The group auto-applies values and marks the node dirty. If the target node
// is disposed, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and marks the node dirty. If the target node has been disposed, Done is set
// to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		g.target.MarkDirty()
	}
}

func newGroup(node *Node, duration float32, fn ease.TweenFunc, pairs ...tweenPair) *TweenGroup {
	g := &TweenGroup{count: len(pairs), target: node}
	for i, p := range pairs {
		g.tweens[i] = gween.New(float32(*p.field), float32(p.to), duration, fn)
		g.fields[i] = p.field
	}
	return g
}

type tweenPair struct {
	field *float64
	to    float64
}

// TweenPosition creates a TweenGroup that animates node.X and node.Y.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newGroup(node, duration, fn, tweenPair{&node.X, toX}, tweenPair{&node.Y, toY})
}

// TweenScale creates a TweenGroup that animates node.ScaleX and node.ScaleY.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newGroup(node, duration, fn, tweenPair{&node.ScaleX, toSX}, tweenPair{&node.ScaleY, toSY})
}

// TweenColor creates a TweenGroup that animates all four components of
// node.Color.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newGroup(node, duration, fn,
		tweenPair{&node.Color.R, to.R},
		tweenPair{&node.Color.G, to.G},
		tweenPair{&node.Color.B, to.B},
		tweenPair{&node.Color.A, to.A},
	)
}

// TweenAlpha creates a TweenGroup that animates node.Alpha.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newGroup(node, duration, fn, tweenPair{&node.Alpha, to})
}

// TweenRotation creates a TweenGroup that animates node.Rotation.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newGroup(node, duration, fn, tweenPair{&node.Rotation, to})
}

// Animate drives g from the before-render stream of the node it targets,
// using each frame's delta, and requests frames until it finishes. The node
// must be prepared with a store. The returned stop cancels the animation.
func Animate(engine *thicket.Engine, g *TweenGroup) (stop func()) {
	var unsubscribe func()
	stopped := false
	stop = func() {
		if stopped {
			return
		}
		stopped = true
		if unsubscribe != nil {
			unsubscribe()
		}
	}
	unsubscribe = engine.Subscribe(g.target, 0, thicket.EventBeforeRender, func(payload any) {
		state := payload.(*thicket.FrameState)
		g.Update(float32(state.Delta.Seconds()))
		if g.Done {
			stop()
			return
		}
		// A pending frame is being consumed, so request the next one directly.
		state.Store.Invalidate()
	})
	if stopped {
		unsubscribe()
	}
	engine.Invalidate(g.target)
	return stop
}
