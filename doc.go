// Package thicket is the reconciliation core of a retained-mode scene graph.
//
// A component framework describes a scene as a tree of nodes; thicket turns
// the framework's lifecycle callbacks (create node, set property, insert
// child, remove child, destroy node) into operations on a native scene
// graph, keeps per-object bookkeeping, wires pointer events and schedules
// frames. It does not draw anything itself: package
// github.com/phanxgames/thicket/scene provides an [Ebitengine] target.
//
// # Local State
//
// Every object the engine manages is first passed to [Engine.Prepare],
// which records an [Instance] next to it: the child lists, the attach
// descriptor, the store, event handlers and counters. Objects are keyed by
// their handle, so they must be comparable (pointers in practice).
//
//	engine := thicket.NewEngine()
//	engine.Prepare(parent, &thicket.Overrides{Store: store})
//	engine.Prepare(child, nil)
//	engine.AttachChild(parent, child)
//
// # Attach and detach
//
// A child without an attach descriptor is added through [GraphNode] and
// lands in the parent's objects list. A child with one is assigned into the
// parent at a property path ("material", "material.1") and lands in the
// nonObjects list; detaching restores the value that was there before.
// Detaching cascades through the child's own children and queues disposal
// until [Engine.Flush], so a child moved within one batch survives.
//
// # Events and frames
//
// [Engine.Subscribe] registers pointer handlers, before-render callbacks
// and after-update / after-attach listeners. Objects with pointer handlers
// join the root store's interaction registry for hit testing.
// [Engine.Invalidate] coalesces frame requests on the root [Store].
//
// # Canvas
//
// [Canvas] owns one store and drives the root lifecycle from measurements:
// bind the render target, configure, mount the scene graph, reconfigure on
// resize and tear down on [Canvas.Destroy].
//
// [Ebitengine]: https://ebitengine.org
package thicket
