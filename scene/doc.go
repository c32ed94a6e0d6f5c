// Package scene is an [Ebitengine] render target for thicket.
//
// It provides the native objects the reconciliation engine manages: [Node]
// (containers and sprites with a transform hierarchy), [Material] and
// [Geometry] values that attach into a sprite by property path, and a
// [Scene] that owns the root container and its cameras.
//
// # Wiring a canvas
//
// [RegisterKinds] teaches a catalogue the node kinds. [Backend] binds the
// scene to the canvas store and [PointerEvents] feeds mouse input into the
// engine's event handlers. [Run] opens the window:
//
//	s := scene.NewScene()
//	backend := scene.NewBackend(s)
//	cat := thicket.NewCatalogue()
//	scene.RegisterKinds(cat)
//	engine := thicket.NewEngine()
//	canvas, err := thicket.NewCanvas(thicket.CanvasConfig{
//		Engine:     engine,
//		Catalogue:  cat,
//		Backend:    backend,
//		SceneGraph: build,
//		Events: func(st *thicket.Store) thicket.EventManager {
//			return scene.NewPointerEvents(engine, st, s)
//		},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := scene.Run(canvas, backend); err != nil {
//		log.Fatal(err)
//	}
//
// # Transforms
//
// Each node stores position, scale, rotation, skew and pivot. World
// transforms are recomputed lazily from the root on [Scene.Update]; setters
// and property writes mark the subtree dirty.
//
// # Drawing
//
// Sprites are drawn in depth-first order with siblings sorted by ZIndex. A
// sprite with a slot list of materials is drawn once per material, in slot
// order. Cameras with culling enabled skip sprites outside their view.
//
// # Animation
//
// [TweenGroup] interpolates node fields with gween easing curves. [Animate]
// runs a group from the node's before-render stream and keeps requesting
// frames until it finishes, so it also works with the demand frameloop.
//
// [Ebitengine]: https://ebitengine.org
package scene
