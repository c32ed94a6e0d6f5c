package thicket

// Subscribe registers callback for eventName on object and returns the
// matching unsubscribe.
//
// EventBeforeRender goes straight to the root store's frame stream at
// priority (or the instance's default priority when zero). EventAfterUpdate
// and EventAfterAttach replay their latest value to new subscribers.
// Every other name composes with the handler already registered: the
// earlier handler runs first. Composition is append-only for the lifetime
// of the instance; unsubscribing only undoes the interaction registration.
//
// Subscribing on an unprepared object logs a warning and returns a no-op.
func (e *Engine) Subscribe(object any, priority int, eventName EventName, callback Callback) (unsubscribe func()) {
	inst := e.Instance(object)
	if inst == nil {
		e.logger.Warn("thicket: instance has not been prepared yet", "event", string(eventName))
		return func() {}
	}

	switch eventName {
	case EventBeforeRender:
		if inst.store == nil {
			e.logger.Warn("thicket: before-render subscription without a store", "object", object)
			return func() {}
		}
		if priority == 0 {
			priority = inst.priority
		}
		return inst.store.Root().SubscribeFrame(func(state *FrameState) {
			s := *state
			s.Object = object
			callback(&s)
		}, priority)

	case EventAfterUpdate, EventAfterAttach:
		slot := inst.replaySlot(eventName)
		if *slot == nil {
			*slot = &replay{}
		}
		r := *slot
		id := r.subscribe(callback)
		// An instance that is already attached reports its parent right away.
		if eventName == EventAfterAttach && inst.parent != nil && !r.has {
			r.emit(AttachEvent{Parent: inst.parent, Node: object})
		}
		return func() {
			if r.unsubscribe(id) {
				r.close()
				if *slot == r {
					*slot = nil
				}
			}
		}
	}

	previous := inst.handlers[eventName]
	if previous == nil {
		inst.handlers[eventName] = callback
	} else {
		inst.handlers[eventName] = func(ev any) {
			previous(ev)
			callback(ev)
		}
	}

	inst.eventCount++
	if _, ok := object.(Raycaster); ok && inst.eventCount == 1 && inst.store != nil {
		inst.store.Root().addInteraction(object)
	}

	done := false
	return func() {
		if done {
			return
		}
		done = true
		cur := e.Instance(object)
		if cur == nil || cur != inst {
			return
		}
		inst.eventCount--
		if inst.eventCount == 0 && inst.store != nil {
			inst.store.Root().removeInteraction(object)
		}
	}
}

// Dispatch invokes the merged handler for eventName on object and reports
// whether one was registered.
func (e *Engine) Dispatch(object any, eventName EventName, payload any) bool {
	inst := e.Instance(object)
	if inst == nil {
		return false
	}
	h := inst.handlers[eventName]
	if h == nil {
		return false
	}
	h(payload)
	return true
}

// emitAfterUpdate notifies after-update listeners of object.
func (e *Engine) emitAfterUpdate(object any, property string) {
	inst := e.Instance(object)
	if inst == nil || inst.afterUpdate == nil {
		return
	}
	inst.afterUpdate.emit(UpdateEvent{Node: object, Property: property})
}

func (i *Instance) replaySlot(name EventName) **replay {
	if name == EventAfterAttach {
		return &i.afterAttach
	}
	return &i.afterUpdate
}
