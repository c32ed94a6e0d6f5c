package thicket

import (
	"bytes"
	"log/slog"
	"testing"
	"time"
)

// testNode is a graph-capable object with a material slot and a hit flag.
type testNode struct {
	Name     string
	Material any
	Geometry any
	Color    string

	id       string
	parent   *testNode
	children []GraphNode
	disposed int
	hit      bool
	scene    bool
}

func newTestNode(name string) *testNode {
	return &testNode{Name: name}
}

func (n *testNode) AddGraphChild(child GraphNode) {
	c := child.(*testNode)
	if c.parent == n {
		return
	}
	if c.parent != nil {
		c.parent.RemoveGraphChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

func (n *testNode) RemoveGraphChild(child GraphNode) {
	for i, ch := range n.children {
		if ch == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			child.(*testNode).parent = nil
			return
		}
	}
}

func (n *testNode) InsertGraphChild(child GraphNode, index int) {
	c := child.(*testNode)
	c.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = c
}

func (n *testNode) GraphChildren() []GraphNode { return n.children }
func (n *testNode) UUID() string               { return n.id }
func (n *testNode) Dispose()                   { n.disposed++ }
func (n *testNode) Raycast(x, y float64) bool  { return n.hit }
func (n *testNode) IsScene() bool              { return n.scene }

// testValue is a non-graph disposable value such as a material.
type testValue struct {
	Name     string
	id       string
	disposed int
}

func (v *testValue) UUID() string { return v.id }
func (v *testValue) Dispose()     { v.disposed++ }

// bagObject exposes properties through PropertyHolder.
type bagObject struct {
	props map[string]any
}

func (b *bagObject) Property(name string) (any, bool) {
	v, ok := b.props[name]
	return v, ok
}

func (b *bagObject) SetProperty(name string, value any) error {
	if b.props == nil {
		b.props = make(map[string]any)
	}
	b.props[name] = value
	return nil
}

func fixedClock() func() time.Time {
	t := time.UnixMilli(1_000_000)
	return func() time.Time { return t }
}

// newTestEngine returns an engine with a fixed clock and a logger writing
// into the returned buffer.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]Option{WithLogger(logger), WithClock(fixedClock())}, opts...)
	return NewEngine(opts...), &buf
}

// activeStore returns an active store that counts render calls.
func activeStore(frameloop Frameloop) (*Store, *int) {
	s := NewStore()
	s.SetFrameloop(frameloop)
	s.SetActive(true)
	renders := 0
	s.SetRenderFunc(func(*Store) { renders++ })
	return s, &renders
}

func recoverPanic(fn func()) (v any) {
	defer func() { v = recover() }()
	fn()
	return nil
}
