package thicket

import "fmt"

// debugMaxTreeDepth is the Local State depth above which a warning is logged.
const debugMaxTreeDepth = 32

// debugMaxChildCount is the child count above which a warning is logged.
const debugMaxChildCount = 1000

// debugCheckReleased panics when object was disposed by Flush and not
// prepared again. Only called in debug mode.
func (e *Engine) debugCheckReleased(object any, op string) {
	if !isComparable(object) {
		return
	}
	if _, ok := e.released[object]; ok {
		panic(fmt.Sprintf("thicket debug: %s on disposed object %T", op, object))
	}
}

// debugCheckTree warns when child sits unusually deep or parent has an
// unusually large number of children.
func (e *Engine) debugCheckTree(parent *Instance, child any) {
	depth := 0
	for p := child; p != nil && depth <= maxAncestorDepth; depth++ {
		inst := e.Instance(p)
		if inst == nil {
			break
		}
		p = inst.parent
	}
	if depth > debugMaxTreeDepth {
		e.logger.Warn("thicket: tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "object", fmt.Sprintf("%T", child))
	}
	if n := len(parent.objects) + len(parent.nonObjects); n > debugMaxChildCount {
		e.logger.Warn("thicket: child count exceeds threshold",
			"count", n, "threshold", debugMaxChildCount, "object", fmt.Sprintf("%T", parent.object))
	}
}
