package thicket

// replay is a single-slot buffered multicast: it remembers the last value
// and hands it to new subscribers immediately. Single-threaded.
type replay struct {
	last    any
	has     bool
	nextID  uint32
	waiters []replayWaiter
	closed  bool
}

type replayWaiter struct {
	id uint32
	fn Callback
}

func (r *replay) subscribe(fn Callback) uint32 {
	r.nextID++
	id := r.nextID
	r.waiters = append(r.waiters, replayWaiter{id: id, fn: fn})
	if r.has {
		fn(r.last)
	}
	return id
}

// unsubscribe removes a waiter and reports whether the channel is now empty.
func (r *replay) unsubscribe(id uint32) bool {
	for i := range r.waiters {
		if r.waiters[i].id == id {
			copy(r.waiters[i:], r.waiters[i+1:])
			r.waiters[len(r.waiters)-1] = replayWaiter{}
			r.waiters = r.waiters[:len(r.waiters)-1]
			break
		}
	}
	return len(r.waiters) == 0
}

func (r *replay) emit(v any) {
	if r.closed {
		return
	}
	r.last = v
	r.has = true
	// Copy so a waiter unsubscribing during fan-out does not shift the slice.
	waiters := append([]replayWaiter(nil), r.waiters...)
	for _, w := range waiters {
		w.fn(v)
	}
}

func (r *replay) close() {
	r.closed = true
	r.waiters = nil
	r.last = nil
	r.has = false
}
