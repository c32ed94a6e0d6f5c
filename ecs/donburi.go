package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/thicket/scene"
)

// InteractionEventType is the Donburi event type for scene interaction
// events. Subscribe to this in your ECS systems to receive pointer and drag
// events.
var InteractionEventType = events.NewEventType[scene.InteractionEvent]()

type donburiStore struct {
	world donburi.World
	types map[scene.EventType]bool // nil forwards everything
}

// NewDonburiStore creates an EntityStore backed by a Donburi world. Events
// are queued on InteractionEventType and delivered by ProcessEvents. When
// types are given, only those event types are forwarded.
func NewDonburiStore(world donburi.World, types ...scene.EventType) scene.EntityStore {
	s := &donburiStore{world: world}
	if len(types) > 0 {
		s.types = make(map[scene.EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
	return s
}

func (s *donburiStore) EmitEvent(event scene.InteractionEvent) {
	if s.types != nil && !s.types[event.Type] {
		return
	}
	InteractionEventType.Publish(s.world, event)
}
