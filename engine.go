package thicket

import (
	"log/slog"
	"reflect"
	"time"
)

// Engine is the reconciliation engine. It owns the Local State of every
// prepared object, keyed by the object handle, and the per-batch disposal
// queue. An Engine is single-threaded; all calls must come from the
// goroutine that drives the scene.
type Engine struct {
	instances map[any]*Instance
	disposals []disposal
	released  map[any]struct{} // debug only: handles whose state was released
	now       func() time.Time
	logger    *slog.Logger
	debug     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for soft warnings and debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the clock used for geometry stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithDebug enables tree depth and child count warnings and panics on use
// of disposed instances.
func WithDebug(enabled bool) Option {
	return func(e *Engine) { e.debug = enabled }
}

// NewEngine creates an empty engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		instances: make(map[any]*Instance),
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Instance returns the Local State of object, or nil if it was never
// prepared (or has been released after disposal).
func (e *Engine) Instance(object any) *Instance {
	if object == nil || !isComparable(object) {
		return nil
	}
	return e.instances[object]
}

// Len returns the number of prepared objects.
func (e *Engine) Len() int {
	return len(e.instances)
}

// release drops the Local State of object. In debug mode the handle is
// remembered so later tree operations on it can be reported.
func (e *Engine) release(object any) {
	delete(e.instances, object)
	if e.debug {
		if e.released == nil {
			e.released = make(map[any]struct{})
		}
		e.released[object] = struct{}{}
	}
}

func isComparable(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Comparable()
}

// identity returns the UUID of v, or "" if v has none.
func identity(v any) string {
	if id, ok := v.(Identifier); ok {
		return id.UUID()
	}
	return ""
}

// sameIdentity reports whether a and b are the same object or share a
// non-empty UUID.
func sameIdentity(a, b any) bool {
	if a == b {
		return true
	}
	ua, ub := identity(a), identity(b)
	return ua != "" && ua == ub
}
