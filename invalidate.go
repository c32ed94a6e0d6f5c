package thicket

// Invalidate schedules a new frame on the true root of object's store when
// none is pending there, and always bumps the instance's own generation so
// derived values recompute. Frame scheduling and derivation are separate
// because portal stores share one physical render loop.
func (e *Engine) Invalidate(object any) {
	inst := e.Instance(object)
	if inst == nil {
		return
	}
	if inst.store != nil {
		root := inst.store.Root()
		if root.frames == 0 {
			root.Invalidate()
		}
	}
	inst.generation++
	inst.notify()
}
