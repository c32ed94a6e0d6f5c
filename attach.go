package thicket

// AttachChild makes child a child of parent: either a structural graph
// child or, when child carries an attach descriptor, a value assigned into
// parent. Both must be prepared; anything else is a caller bug and panics.
//
// A raw child whose value has not resolved yet only records its parent and
// returns; call AttachChild again once the value arrives.
func (e *Engine) AttachChild(parent, child any) {
	if e.debug {
		e.debugCheckReleased(parent, "attach (parent)")
		e.debugCheckReleased(child, "attach (child)")
	}
	p := e.Instance(parent)
	c := e.Instance(child)
	if p == nil || c == nil {
		contractViolation("attach", ErrNotPrepared)
	}
	if parent == child || e.isAncestor(child, parent) {
		contractViolation("attach", ErrCycle)
	}

	// Adopt the parent's store when the child has none or still points at
	// a root the parent's store has superseded.
	if c.store == nil || (p.store != nil && c.store == p.store.previousRoot) {
		c.store = p.store
	}

	// Leave the previous parent first so an instance never has two.
	if old := c.parent; old != nil && old != parent {
		e.unlink(old, c)
	}

	added := false
	if a := c.attach; a != nil {
		switch {
		case a.Func != nil:
			if cleanup := a.Func(parent, child, c.store); cleanup != nil {
				c.attachCleanup = cleanup
			}
		case a.None():
			e.Invalidate(child)
			return
		default:
			if err := coerceSlots(parent, a.Path); err != nil {
				e.logger.Warn("thicket: attach", "path", a.String(), "err", err)
			}
			value := child
			if c.raw {
				if c.parent != parent {
					c.SetParent(parent)
				}
				v, ok := c.RawValue()
				if !ok {
					return
				}
				value = v
			}
			var prev any
			if !c.attached {
				prev, _ = GetPath(parent, a.Path)
			}
			if err := SetPath(parent, a.Path, value); err != nil {
				// Nothing was assigned, so the child stays out of the
				// parent's lists.
				e.logger.Warn("thicket: attach", "path", a.String(), "err", err)
				return
			}
			if !c.attached {
				c.previousAttach = prev
				c.attached = true
			}
		}
	} else if pg, ok := parent.(GraphNode); ok {
		if cg, ok := child.(GraphNode); ok {
			pg.AddGraphChild(cg)
			added = true
		}
	}

	if added {
		p.Add(child, KindObjects)
	} else {
		p.Add(child, KindNonObjects)
	}

	if c.parent != parent {
		c.SetParent(parent)
	}

	if c.afterAttach != nil {
		c.afterAttach.emit(AttachEvent{Parent: parent, Node: child})
	}

	if e.debug {
		e.debugCheckTree(p, child)
	}

	e.Invalidate(child)
	e.Invalidate(parent)
}

// InsertChild attaches child and, when both are graph nodes without an
// attach descriptor, moves it to index among the native children.
func (e *Engine) InsertChild(parent, child any, index int) {
	e.AttachChild(parent, child)
	c := e.Instance(child)
	if c == nil || c.attach != nil || c.parent != parent {
		return
	}
	pg, ok := parent.(IndexedGraphNode)
	if !ok {
		return
	}
	cg, ok := child.(GraphNode)
	if !ok {
		return
	}
	children := pg.GraphChildren()
	if index < 0 || index >= len(children) || children[index] == cg {
		return
	}
	pg.RemoveGraphChild(cg)
	pg.InsertGraphChild(cg, index)
}

// DetachChild reverses AttachChild and cascades depth-first through the
// child's own children unless the child is primitive, passing dispose down
// the cascade. A non-primitive child that is not a scene is queued for
// disposal until Flush, so a child re-attached within the same batch
// survives.
func (e *Engine) DetachChild(parent, child any, dispose bool) {
	p := e.Instance(parent)
	c := e.Instance(child)

	if c != nil {
		c.SetParent(nil)
	}
	if p != nil {
		p.Remove(child, KindObjects)
		p.Remove(child, KindNonObjects)
	}

	if c != nil && c.attach != nil {
		e.reverseAttach(parent, c)
	} else if pg, ok := parent.(GraphNode); ok {
		if cg, ok := child.(GraphNode); ok {
			pg.RemoveGraphChild(cg)
			if (c != nil && c.eventCount > 0) || (p != nil && p.eventCount > 0) {
				var store *Store
				if c != nil && c.store != nil {
					store = c.store
				} else if p != nil {
					store = p.store
				}
				if store != nil {
					e.removeInteractivity(store, child)
				}
			}
		}
	}

	if c == nil || !c.primitive {
		e.detachSubtree(child, c, dispose)
		e.queueDisposal(child)
	}

	e.Invalidate(parent)
}

// detachSubtree detaches everything under object depth-first: the entries
// of its Local State lists, then any native children left over.
func (e *Engine) detachSubtree(object any, inst *Instance, dispose bool) {
	if inst != nil {
		// Copy first: detaching mutates these lists.
		for _, grand := range inst.Objects() {
			e.DetachChild(object, grand, dispose)
		}
		for _, grand := range inst.NonObjects() {
			e.DetachChild(object, grand, dispose)
		}
	}
	if g, ok := object.(GraphNode); ok {
		for _, grand := range append([]GraphNode(nil), g.GraphChildren()...) {
			e.DetachChild(object, grand, dispose)
		}
	}
}

// unlink removes c from its current parent without cascading or disposing,
// so the subtree under c moves with it.
func (e *Engine) unlink(parent any, c *Instance) {
	if p := e.Instance(parent); p != nil {
		p.Remove(c.object, KindObjects)
		p.Remove(c.object, KindNonObjects)
	}
	if c.attach != nil {
		e.reverseAttach(parent, c)
	} else if pg, ok := parent.(GraphNode); ok {
		if cg, ok := c.object.(GraphNode); ok {
			pg.RemoveGraphChild(cg)
		}
	}
	c.SetParent(nil)
	e.Invalidate(parent)
}

// reverseAttach restores the value saved at the attach path, or runs the
// attach function's cleanup.
func (e *Engine) reverseAttach(parent any, c *Instance) {
	a := c.attach
	switch {
	case a.Func != nil:
		if c.attachCleanup != nil {
			cleanup := c.attachCleanup
			c.attachCleanup = nil
			cleanup()
		}
	case a.None():
	default:
		if !c.attached {
			return
		}
		if err := SetPath(parent, a.Path, c.previousAttach); err != nil {
			e.logger.Warn("thicket: detach", "path", a.String(), "err", err)
		}
		c.attached = false
		c.previousAttach = nil
	}
}

// removeInteractivity drops object and its graph descendants from the
// root interaction registry.
func (e *Engine) removeInteractivity(store *Store, object any) {
	root := store.Root()
	root.removeInteraction(object)
	if g, ok := object.(GraphNode); ok {
		for _, child := range g.GraphChildren() {
			e.removeInteractivity(store, child)
		}
	}
}
