package thicket

import (
	"fmt"
	"strings"
)

const (
	// KindPrimitive wraps a caller-supplied object; args[0] is the object.
	KindPrimitive = "primitive"
	// KindRaw creates a placeholder whose value arrives via the "value"
	// property.
	KindRaw = "raw"
)

// RawNode is the placeholder object created for KindRaw.
type RawNode struct {
	Name string
}

// Renderer implements the lifecycle callbacks a component framework drives:
// create node, set property, insert child, remove child, destroy node. One
// Renderer serves one canvas store.
type Renderer struct {
	engine    *Engine
	store     *Store
	catalogue *Catalogue
}

// NewRenderer binds engine and catalogue to store.
func NewRenderer(engine *Engine, store *Store, catalogue *Catalogue) *Renderer {
	if catalogue == nil {
		catalogue = NewCatalogue()
	}
	return &Renderer{engine: engine, store: store, catalogue: catalogue}
}

// Engine returns the reconciliation engine.
func (r *Renderer) Engine() *Engine { return r.engine }

// Store returns the canvas store.
func (r *Renderer) Store() *Store { return r.store }

// Catalogue returns the kind catalogue.
func (r *Renderer) Catalogue() *Catalogue { return r.catalogue }

// CreateNode constructs and prepares a node of kind.
func (r *Renderer) CreateNode(kind string, args ...any) (any, error) {
	switch kind {
	case KindPrimitive:
		if len(args) == 0 || args[0] == nil {
			return nil, fmt.Errorf("create %s: missing object argument", kind)
		}
		obj := args[0]
		if !isComparable(obj) {
			return nil, fmt.Errorf("create %s: %w", kind, ErrNotComparable)
		}
		r.engine.Prepare(obj, &Overrides{Store: r.store, Primitive: true})
		return obj, nil
	case KindRaw:
		raw := &RawNode{}
		if len(args) > 0 {
			if name, ok := args[0].(string); ok {
				raw.Name = name
			}
		}
		r.engine.Prepare(raw, &Overrides{Store: r.store, Raw: true})
		return raw, nil
	}

	factory, attach, ok := r.catalogue.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("create %q: %w", kind, ErrUnknownKind)
	}
	obj, err := factory(args...)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", kind, err)
	}
	if !isComparable(obj) {
		return nil, fmt.Errorf("create %q: %w", kind, ErrNotComparable)
	}
	r.engine.Prepare(obj, &Overrides{Store: r.store, Attach: attach})
	return obj, nil
}

// SetProperty applies one property to node. Reserved names:
//
//   - "attach": string path, []string, *Attach or AttachFunc
//   - "priority": default before-render priority
//   - "value": resolves a raw node and retries its attachment
//   - event names with func values subscribe a handler
//
// Everything else is assigned through the property path (dots separate
// segments). Setting "geometry" bumps the geometry stamp.
func (r *Renderer) SetProperty(node any, name string, value any) error {
	inst := r.engine.Instance(node)
	if inst == nil {
		r.engine.logger.Warn("thicket: set property on unprepared node", "property", name)
		return fmt.Errorf("set %q: %w", name, ErrNotPrepared)
	}

	switch name {
	case "attach":
		a, err := toAttach(value)
		if err != nil {
			return fmt.Errorf("set attach: %w", err)
		}
		parent := inst.parent
		if parent != nil {
			r.engine.unlink(parent, inst)
		}
		inst.attach = a
		if parent != nil {
			r.engine.AttachChild(parent, node)
		}
	case "priority":
		p, ok := value.(int)
		if !ok {
			return fmt.Errorf("set priority: want int, got %T", value)
		}
		inst.priority = p
	case "value":
		if !inst.raw {
			return r.assign(inst, name, value)
		}
		inst.ResolveRaw(value)
		if parent := inst.parent; parent != nil {
			r.engine.AttachChild(parent, node)
		}
	default:
		if ev := EventName(name); ev.Known() {
			if cb, ok := toCallback(value); ok {
				inst.subs = append(inst.subs, r.engine.Subscribe(node, inst.priority, ev, cb))
				return nil
			}
		}
		if err := r.assign(inst, name, value); err != nil {
			return err
		}
	}

	r.engine.emitAfterUpdate(node, name)
	r.engine.Invalidate(node)
	return nil
}

func (r *Renderer) assign(inst *Instance, name string, value any) error {
	if err := SetPath(inst.object, strings.Split(name, "."), value); err != nil {
		r.engine.logger.Warn("thicket: set property", "property", name, "err", err)
		return err
	}
	if name == "geometry" {
		inst.UpdateGeometryStamp()
	}
	return nil
}

// InsertChild attaches child under parent. A negative index appends.
func (r *Renderer) InsertChild(parent, child any, index int) {
	if index < 0 {
		r.engine.AttachChild(parent, child)
		return
	}
	r.engine.InsertChild(parent, child, index)
}

// RemoveChild detaches child from parent and queues its disposal.
func (r *Renderer) RemoveChild(parent, child any) {
	r.engine.DetachChild(parent, child, true)
}

// DestroyNode tears down node: it is detached if still attached, its
// renderer-registered handlers are unsubscribed and its disposal queued.
// A node without a parent has its subtree detached the same way.
func (r *Renderer) DestroyNode(node any) {
	inst := r.engine.Instance(node)
	if inst == nil {
		return
	}
	for _, unsub := range inst.subs {
		unsub()
	}
	inst.subs = nil
	if parent := inst.parent; parent != nil {
		r.engine.DetachChild(parent, node, true)
		return
	}
	if !inst.primitive {
		r.engine.detachSubtree(node, inst, true)
		r.engine.queueDisposal(node)
	}
}

// Flush ends a reconciliation batch and drains the disposal queue.
func (r *Renderer) Flush() {
	r.engine.Flush()
}

func toAttach(v any) (*Attach, error) {
	switch a := v.(type) {
	case nil:
		return nil, nil
	case *Attach:
		return a, nil
	case string:
		return ParseAttach(a), nil
	case []string:
		return AttachPath(a...), nil
	case AttachFunc:
		return AttachWith(a), nil
	case func(parent, child any, store *Store) func():
		return AttachWith(a), nil
	}
	return nil, fmt.Errorf("unsupported attach value %T", v)
}

func toCallback(v any) (Callback, bool) {
	switch fn := v.(type) {
	case Callback:
		return fn, true
	case func(any):
		return fn, true
	case func():
		return func(any) { fn() }, true
	case func(*PointerEvent):
		return func(p any) {
			if ev, ok := p.(*PointerEvent); ok {
				fn(ev)
			}
		}, true
	case func(*FrameState):
		return func(p any) {
			if st, ok := p.(*FrameState); ok {
				fn(st)
			}
		}, true
	case func(AttachEvent):
		return func(p any) {
			if ev, ok := p.(AttachEvent); ok {
				fn(ev)
			}
		}, true
	case func(UpdateEvent):
		return func(p any) {
			if ev, ok := p.(UpdateEvent); ok {
				fn(ev)
			}
		}, true
	}
	return nil, false
}
