package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusFiltersByType(t *testing.T) {
	bus := NewEventBus()

	damage := 0
	heals := 0
	h1 := bus.Subscribe(func(e Event) { damage += e.Amount }, EventDamageDealt)
	bus.Subscribe(func(e Event) { heals++ }, EventHealed, EventArmorGained)

	bus.Publish(NewEventWithAmount(EventDamageDealt, "m1", "m2", "self", 3))
	bus.Publish(NewEventWithAmount(EventHealed, "hero", "m2", "self", 2))
	bus.Publish(NewEvent(EventCardPlayed, "c1", "c1", "self"))
	assert.Equal(t, 3, damage)
	assert.Equal(t, 1, heals)

	bus.Unsubscribe(h1)
	bus.Publish(NewEventWithAmount(EventDamageDealt, "m1", "m2", "self", 3))
	assert.Equal(t, 3, damage)
	assert.Equal(t, 1, bus.Len())
}

func TestEventBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var order []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		bus.Subscribe(func(Event) { order = append(order, name) })
	}

	bus.Publish(NewEventWithFlag(EventGameOver, "", "", "self", true))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, order)
}

func TestEventBusUnsubscribeKeepsOthers(t *testing.T) {
	bus := NewEventBus()
	var seen []int
	bus.Subscribe(func(Event) { seen = append(seen, 0) })
	h := bus.Subscribe(func(Event) { seen = append(seen, 1) })
	bus.Subscribe(func(Event) { seen = append(seen, 2) })

	bus.Unsubscribe(h)
	bus.Unsubscribe(99)
	bus.Publish(NewEvent(EventCardPlayed, "c2", "c2", "self"))
	assert.Equal(t, []int{0, 2}, seen)
}

func TestEventBusRejectsNilListener(t *testing.T) {
	bus := NewEventBus()
	assert.Equal(t, -1, bus.Subscribe(nil))
	assert.Equal(t, -1, bus.Subscribe(nil, EventHealed))
	assert.Zero(t, bus.Len())
}

func TestEventTypeIsDamage(t *testing.T) {
	assert.True(t, EventDamageDealt.IsDamage())
	assert.True(t, EventDivineShieldLost.IsDamage())
	assert.False(t, EventHealed.IsDamage())
}
