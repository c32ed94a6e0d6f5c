package thicket

// maxAncestorDepth bounds the ancestor walk after list mutations.
const maxAncestorDepth = 256

// Instance is the Local State of one prepared object: parent/children
// bookkeeping, attach metadata, event handlers and change counters. It is
// owned by the Engine; the native object is only the map key.
type Instance struct {
	engine *Engine
	object any

	parent            any
	objects           []any
	nonObjects        []any
	objectsVersion    uint64
	nonObjectsVersion uint64

	attach         *Attach
	previousAttach any
	attachCleanup  func()
	attached       bool // attach path was assigned and must be restored

	store *Store

	eventCount int
	handlers   map[EventName]Callback
	subs       []func() // unsubscribers registered through the Renderer

	geometryStamp int64
	generation    uint64
	priority      int

	primitive   bool
	raw         bool
	rawValue    any
	rawResolved bool

	afterUpdate *replay
	afterAttach *replay

	watchers  []watcher
	nextWatch uint32
}

type watcher struct {
	id uint32
	fn func(*Instance)
}

// Overrides are caller-supplied Local State values merged over the
// defaults by Prepare.
type Overrides struct {
	Store     *Store
	Attach    *Attach
	Parent    any
	Priority  int
	Primitive bool
	// Raw marks a placeholder whose attachable value arrives later via
	// ResolveRaw.
	Raw bool
}

// Prepare attaches Local State to object the first time it is seen and
// returns it. Preparing an already-prepared object returns the existing
// state unchanged unless overrides re-mark it primitive, which replaces it.
// Panics if object is not a comparable handle.
func (e *Engine) Prepare(object any, overrides *Overrides) *Instance {
	if object == nil || !isComparable(object) {
		contractViolation("prepare", ErrNotComparable)
	}
	if inst, ok := e.instances[object]; ok && (overrides == nil || !overrides.Primitive) {
		return inst
	}

	inst := &Instance{
		engine:        e,
		object:        object,
		handlers:      make(map[EventName]Callback),
		geometryStamp: e.now().UnixMilli(),
	}
	if overrides != nil {
		inst.store = overrides.Store
		inst.attach = overrides.Attach
		inst.parent = overrides.Parent
		inst.priority = overrides.Priority
		inst.primitive = overrides.Primitive
		inst.raw = overrides.Raw
	}
	e.instances[object] = inst
	delete(e.released, object)
	return inst
}

// Object returns the native object this state belongs to.
func (i *Instance) Object() any { return i.object }

// Parent returns the current parent object, or nil.
func (i *Instance) Parent() any { return i.parent }

// Objects returns a copy of the structural children list.
func (i *Instance) Objects() []any { return append([]any(nil), i.objects...) }

// NonObjects returns a copy of the property-attached children list.
func (i *Instance) NonObjects() []any { return append([]any(nil), i.nonObjects...) }

// List returns a copy of the list for kind.
func (i *Instance) List(kind Kind) []any {
	if kind == KindObjects {
		return i.Objects()
	}
	return i.NonObjects()
}

// Version returns the change counter of the list for kind. It is bumped on
// every mutation of this instance's list and whenever a descendant's list
// of the same kind changes.
func (i *Instance) Version(kind Kind) uint64 {
	if kind == KindObjects {
		return i.objectsVersion
	}
	return i.nonObjectsVersion
}

// Store returns the store this instance renders into, or nil.
func (i *Instance) Store() *Store { return i.store }

// Attach returns the attach descriptor, or nil for graph children.
func (i *Instance) Attach() *Attach { return i.attach }

// SetAttach replaces the attach descriptor. It takes effect on the next
// AttachChild.
func (i *Instance) SetAttach(a *Attach) { i.attach = a }

// PreviousAttach returns the value saved at the attach path before the
// last attach.
func (i *Instance) PreviousAttach() any { return i.previousAttach }

// Primitive reports whether the object was supplied by the caller and must
// never be disposed.
func (i *Instance) Primitive() bool { return i.primitive }

// EventCount returns the number of registered pointer handlers.
func (i *Instance) EventCount() int { return i.eventCount }

// Handler returns the merged handler for name, or nil.
func (i *Instance) Handler(name EventName) Callback { return i.handlers[name] }

// GeometryStamp returns the last geometry replacement time in Unix
// milliseconds.
func (i *Instance) GeometryStamp() int64 { return i.geometryStamp }

// Generation returns the invalidation counter of this instance.
func (i *Instance) Generation() uint64 { return i.generation }

// Priority returns the default before-render priority.
func (i *Instance) Priority() int { return i.priority }

// Raw reports whether the instance is a deferred raw-value placeholder.
func (i *Instance) Raw() bool { return i.raw }

// RawValue returns the resolved raw value, if any.
func (i *Instance) RawValue() (any, bool) { return i.rawValue, i.rawResolved }

// ResolveRaw stores the value a raw placeholder stands for. The caller must
// re-run AttachChild against the parent afterwards.
func (i *Instance) ResolveRaw(v any) {
	i.rawValue = v
	i.rawResolved = true
}

// Add records child under kind. A child equal to an existing entry, or
// sharing its non-empty UUID, replaces that entry in place; otherwise it is
// appended. Ancestors are touched afterwards.
func (i *Instance) Add(child any, kind Kind) {
	list := i.listPtr(kind)
	found := -1
	for idx, entry := range *list {
		if sameIdentity(child, entry) {
			found = idx
			break
		}
	}
	if found >= 0 {
		(*list)[found] = child
	} else {
		*list = append(*list, child)
	}
	i.touch(kind)
	i.notifyAncestors(kind)
}

// Remove drops child from the list for kind and touches ancestors.
func (i *Instance) Remove(child any, kind Kind) {
	list := i.listPtr(kind)
	kept := (*list)[:0]
	for _, entry := range *list {
		if entry != child {
			kept = append(kept, entry)
		}
	}
	for idx := len(kept); idx < len(*list); idx++ {
		(*list)[idx] = nil
	}
	*list = kept
	i.touch(kind)
	i.notifyAncestors(kind)
}

// SetParent updates the parent back-reference.
func (i *Instance) SetParent(parent any) {
	if i.parent == parent {
		return
	}
	i.parent = parent
	i.notify()
}

// UpdateGeometryStamp bumps the geometry stamp so dependants recompute.
func (i *Instance) UpdateGeometryStamp() {
	stamp := i.engine.now().UnixMilli()
	if stamp <= i.geometryStamp {
		stamp = i.geometryStamp + 1
	}
	i.geometryStamp = stamp
	i.notify()
}

// Watch registers fn to be called whenever this instance's lists, parent,
// geometry stamp or generation change. The returned func unregisters it.
func (i *Instance) Watch(fn func(*Instance)) (unwatch func()) {
	i.nextWatch++
	id := i.nextWatch
	i.watchers = append(i.watchers, watcher{id: id, fn: fn})
	return func() {
		for idx := range i.watchers {
			if i.watchers[idx].id == id {
				copy(i.watchers[idx:], i.watchers[idx+1:])
				i.watchers[len(i.watchers)-1] = watcher{}
				i.watchers = i.watchers[:len(i.watchers)-1]
				return
			}
		}
	}
}

func (i *Instance) listPtr(kind Kind) *[]any {
	if kind == KindObjects {
		return &i.objects
	}
	return &i.nonObjects
}

// touch re-publishes the list for kind.
func (i *Instance) touch(kind Kind) {
	if kind == KindObjects {
		i.objectsVersion++
	} else {
		i.nonObjectsVersion++
	}
	i.notify()
}

func (i *Instance) notify() {
	if len(i.watchers) == 0 {
		return
	}
	watchers := append([]watcher(nil), i.watchers...)
	for _, w := range watchers {
		w.fn(i)
	}
}

// notifyAncestors touches every ancestor's list for kind so derived views
// over descendant structure recompute. The walk is bounded and stops on
// cycles.
func (i *Instance) notifyAncestors(kind Kind) {
	seen := map[*Instance]bool{i: true}
	p := i.parent
	for depth := 0; p != nil && depth < maxAncestorDepth; depth++ {
		anc := i.engine.Instance(p)
		if anc == nil || seen[anc] {
			return
		}
		seen[anc] = true
		anc.touch(kind)
		p = anc.parent
	}
}

// isAncestor reports whether candidate is object or one of its ancestors
// through Local State parent links.
func (e *Engine) isAncestor(candidate, object any) bool {
	seen := make(map[any]bool)
	for p := object; p != nil && !seen[p]; {
		if p == candidate {
			return true
		}
		seen[p] = true
		inst := e.Instance(p)
		if inst == nil {
			return false
		}
		p = inst.parent
	}
	return false
}
