package thicket

// Scope is the injection context a scene graph is mounted in. Values
// provided on a scope are visible to its descendants; destroy hooks run in
// reverse registration order.
type Scope struct {
	parent    *Scope
	values    map[any]any
	onDestroy []func()
	destroyed bool
}

type scopeKey uint8

const (
	rendererKey scopeKey = iota
	storeKey
	canvasKey
)

// NewScope returns a scope nested in parent (which may be nil).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, values: make(map[any]any)}
}

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Provide binds value to key on this scope.
func (s *Scope) Provide(key, value any) {
	s.values[key] = value
}

// Lookup resolves key on this scope or the nearest ancestor providing it.
func (s *Scope) Lookup(key any) (any, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// OnDestroy registers fn to run when the scope is destroyed. On an already
// destroyed scope fn runs immediately.
func (s *Scope) OnDestroy(fn func()) {
	if s.destroyed {
		fn()
		return
	}
	s.onDestroy = append(s.onDestroy, fn)
}

// Destroy runs the destroy hooks once.
func (s *Scope) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	hooks := s.onDestroy
	s.onDestroy = nil
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	clear(s.values)
}

// Destroyed reports whether Destroy has run.
func (s *Scope) Destroyed() bool { return s.destroyed }

// RendererFrom returns the renderer provided on s, or nil.
func RendererFrom(s *Scope) *Renderer {
	v, _ := s.Lookup(rendererKey)
	r, _ := v.(*Renderer)
	return r
}

// StoreFrom returns the store provided on s, or nil.
func StoreFrom(s *Scope) *Store {
	v, _ := s.Lookup(storeKey)
	st, _ := v.(*Store)
	return st
}

// CanvasFrom returns the canvas provided on s, or nil.
func CanvasFrom(s *Scope) *Canvas {
	v, _ := s.Lookup(canvasKey)
	c, _ := v.(*Canvas)
	return c
}
