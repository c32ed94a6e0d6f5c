package thicket

type disposal struct {
	object any
	inst   *Instance
}

// queueDisposal defers disposal of object to the next Flush. Scenes are
// never disposed.
func (e *Engine) queueDisposal(object any) {
	if sc, ok := object.(SceneContainer); ok && sc.IsScene() {
		return
	}
	for _, d := range e.disposals {
		if d.object == object {
			return
		}
	}
	e.disposals = append(e.disposals, disposal{object: object, inst: e.Instance(object)})
}

// PendingDisposals returns the number of objects waiting for Flush.
func (e *Engine) PendingDisposals() int {
	return len(e.disposals)
}

// Flush drains the disposal queue. Hosts call it once at the end of every
// reconciliation batch. Objects that were re-attached since they were
// queued are skipped; disposed objects lose their Local State.
func (e *Engine) Flush() {
	for len(e.disposals) > 0 {
		batch := e.disposals
		e.disposals = nil
		for _, d := range batch {
			if d.inst != nil {
				if d.inst.parent != nil || e.instances[d.object] != d.inst {
					continue
				}
				e.releaseInstance(d.inst)
			}
			if disposer, ok := d.object.(Disposer); ok {
				disposer.Dispose()
			}
		}
	}
}

// releaseInstance tears down the remaining subscriptions of inst and drops
// it from the engine.
func (e *Engine) releaseInstance(inst *Instance) {
	for _, unsub := range inst.subs {
		unsub()
	}
	inst.subs = nil
	if inst.afterUpdate != nil {
		inst.afterUpdate.close()
		inst.afterUpdate = nil
	}
	if inst.afterAttach != nil {
		inst.afterAttach.close()
		inst.afterAttach = nil
	}
	inst.watchers = nil
	e.release(inst.object)
}
