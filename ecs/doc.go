// Package ecs forwards scene interaction events into an entity component
// system.
//
// The adapter is [NewDonburiStore], which publishes every
// [scene.InteractionEvent] for a node with an EntityID into a [Donburi]
// world as a typed event. Subscribe to [InteractionEventType] in your ECS
// systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	s.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
