package scene

import (
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/thicket"
)

// --- ID counter ---

// nodeIDCounter is a plain counter (no atomic, the scene is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch on the hot path.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64

	// Computed, refreshed by updateWorldTransform
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Renderable   bool
	Interactable bool

	// Ordering
	ZIndex int

	// Metadata
	UserData any
	EntityID uint32

	// Sprite fields (NodeTypeSprite). Width and Height size the quad; when
	// both are zero the geometry bounds are used instead.
	Width, Height float64
	Image         *ebiten.Image
	BlendMode     BlendMode
	Color         Color

	// Material is a *Material or a *thicket.Slots of materials.
	Material any
	Geometry *Geometry

	// Hit testing
	HitShape HitShape

	// Internal
	uuid           string
	isScene        bool
	disposed       bool
	childrenSorted bool
	sortedChildren []*Node // reused buffer for ZIndex-sorted traversal order
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.uuid = uuid.NewString()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible = true
	n.Renderable = true
	n.Interactable = true
	n.transformDirty = true
	n.childrenSorted = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node of the given size.
func NewSprite(name string, w, h float64) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite, Width: w, Height: h}
	nodeDefaults(n)
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(n.children) {
		panic("scene: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("scene: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// FindDescendant returns the first node named name in a depth-first walk of
// n's subtree, n included, or nil.
func (n *Node) FindDescendant(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.FindDescendant(name); found != nil {
			return found
		}
	}
	return nil
}

// SetZIndex sets the node's ZIndex and marks the parent's children as unsorted.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// --- Graph capabilities ---

// AddGraphChild appends child when it is a *Node not already parented here.
func (n *Node) AddGraphChild(child thicket.GraphNode) {
	c, ok := child.(*Node)
	if !ok || c.Parent == n {
		return
	}
	n.AddChild(c)
}

// InsertGraphChild inserts child at index, clamped to the child count.
func (n *Node) InsertGraphChild(child thicket.GraphNode, index int) {
	c, ok := child.(*Node)
	if !ok {
		return
	}
	if c.Parent == n {
		n.removeChildByPtr(c)
		c.Parent = nil
	}
	n.AddChildAt(c, max(0, min(index, len(n.children))))
}

// RemoveGraphChild removes child if it is one of this node's children.
func (n *Node) RemoveGraphChild(child thicket.GraphNode) {
	if c, ok := child.(*Node); ok && c.Parent == n {
		n.RemoveChild(c)
	}
}

// GraphChildren returns a copy of the children as graph nodes.
func (n *Node) GraphChildren() []thicket.GraphNode {
	out := make([]thicket.GraphNode, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// UUID returns the node's stable identity.
func (n *Node) UUID() string { return n.uuid }

// IsScene reports whether n is a scene root, which detach never disposes.
func (n *Node) IsScene() bool { return n.isScene }

// Raycast reports whether the world point hits this node. A node inside a
// hidden or non-interactable subtree is never hit.
func (n *Node) Raycast(x, y float64) bool {
	for p := n; p != nil; p = p.Parent {
		if p.disposed || !p.Visible || !p.Interactable {
			return false
		}
	}
	lx, ly := n.WorldToLocal(x, y)
	return containsLocal(n, lx, ly)
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	n.HitShape = nil
	n.Image = nil
	n.Material = nil
	n.Geometry = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
