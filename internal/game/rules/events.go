package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a game event.
type EventType string

const (
	// Game and turn flow
	EventGameStarted EventType = "GAME_STARTED"
	EventTurnStarted EventType = "TURN_STARTED"
	EventTurnEnded   EventType = "TURN_ENDED"
	EventPhaseChange EventType = "PHASE_CHANGED"
	EventExtraTurn   EventType = "EXTRA_TURN"
	EventGameOver    EventType = "GAME_OVER"

	// Cards and zones
	EventCardPlayed     EventType = "CARD_PLAYED"
	EventSpellCast      EventType = "SPELL_CAST"
	EventCardDrawn      EventType = "CARD_DRAWN"
	EventCardBurned     EventType = "CARD_BURNED"
	EventCardMilled     EventType = "CARD_MILLED"
	EventCardDiscarded  EventType = "CARD_DISCARDED"
	EventCardAddedHand  EventType = "CARD_ADDED_TO_HAND"
	EventCardShuffled   EventType = "CARD_SHUFFLED_INTO_DECK"
	EventFatigue        EventType = "FATIGUE"
	EventMinionSummoned EventType = "MINION_SUMMONED"
	EventMinionReturned EventType = "MINION_RETURNED"
	EventMinionDied     EventType = "MINION_DIED"
	EventMinionDestroy  EventType = "MINION_DESTROYED"
	EventTransformed    EventType = "MINION_TRANSFORMED"
	EventMagnetized     EventType = "MINION_MAGNETIZED"
	EventResurrected    EventType = "MINION_RESURRECTED"
	EventControlChanged EventType = "MINION_CONTROL_CHANGED"

	// Damage, healing and stats
	EventDamageDealt      EventType = "DAMAGE_DEALT"
	EventArmorAbsorbed    EventType = "ARMOR_ABSORBED"
	EventDivineShieldLost EventType = "DIVINE_SHIELD_LOST"
	EventHealed           EventType = "HEALED"
	EventArmorGained      EventType = "ARMOR_GAINED"
	EventBuffed           EventType = "BUFFED"
	EventKeywordGained    EventType = "KEYWORD_GAINED"
	EventSilenced         EventType = "SILENCED"
	EventFrozen           EventType = "FROZEN"
	EventThawed           EventType = "THAWED"
	EventStatsSet         EventType = "STATS_SET"

	// Mana
	EventManaChanged EventType = "MANA_CHANGED"
	EventOverloaded  EventType = "OVERLOADED"
	EventCostReduced EventType = "COST_REDUCED"

	// Keyword abilities
	EventBattlecry   EventType = "BATTLECRY"
	EventDeathrattle EventType = "DEATHRATTLE"
	EventFrenzy      EventType = "FRENZY"
	EventEnrage      EventType = "ENRAGE"
	EventCombo       EventType = "COMBO"
	EventJadeGolem   EventType = "JADE_GOLEM"

	// Combat
	EventAttackDeclared EventType = "ATTACK_DECLARED"
	EventAttackQueued   EventType = "ATTACK_QUEUED"
	EventAttackResolved EventType = "ATTACK_RESOLVED"

	// Weapons
	EventWeaponEquipped  EventType = "WEAPON_EQUIPPED"
	EventWeaponDestroyed EventType = "WEAPON_DESTROYED"
	EventWeaponBuffed    EventType = "WEAPON_BUFFED"

	// Choices and quests
	EventDiscoveryStarted  EventType = "DISCOVERY_STARTED"
	EventDiscoveryResolved EventType = "DISCOVERY_RESOLVED"
	EventAdaptStarted      EventType = "ADAPT_STARTED"
	EventAdaptResolved     EventType = "ADAPT_RESOLVED"
	EventQuestStarted      EventType = "QUEST_STARTED"
	EventQuestProgress     EventType = "QUEST_PROGRESS"
	EventQuestCompleted    EventType = "QUEST_COMPLETED"

	// Counters
	EventCounterChanged EventType = "COUNTER_CHANGED"

	// Failures that do not abort the enclosing action
	EventEffectFailed EventType = "EFFECT_FAILED"
)

// IsDamage reports whether the event describes a loss of health or shield.
func (et EventType) IsDamage() bool {
	switch et {
	case EventDamageDealt, EventArmorAbsorbed, EventDivineShieldLost, EventFatigue:
		return true
	}
	return false
}

// Event is a single entry in a game's event log.
type Event struct {
	Type        EventType
	Seq         int               // Position in the game log
	TargetID    string            // Instance id of the target (minion or hero)
	SourceID    string            // Instance id of the source
	Controller  string            // Side that controls the source
	CardID      int               // Definition id involved, when there is one
	Amount      int               // Numeric value (damage, heal, cards, mana)
	Flag        bool              // Event specific flag (lethal, temporary, ...)
	Data        string            // Additional string data
	Targets     []string          // Multiple targets (aoe, split damage)
	Timestamp   time.Time         // Wall clock time, excluded from checksums
	Metadata    map[string]string // Additional metadata
	Description string            // Human-readable description
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle   int
	types    map[EventType]struct{} // nil matches every type
	listener Listener
}

func (s subscription) matches(t EventType) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// EventBus fans events out to listeners synchronously, in the order they
// subscribed, so a replayed game drives its listeners identically.
type EventBus struct {
	mu   sync.RWMutex
	subs []subscription
	next int
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers listener and returns its handle. With no types the
// listener sees every event; otherwise only the named types. A nil
// listener is ignored and yields -1.
func (bus *EventBus) Subscribe(listener Listener, types ...EventType) int {
	if listener == nil {
		return -1
	}
	sub := subscription{listener: listener}
	if len(types) > 0 {
		sub.types = make(map[EventType]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	sub.handle = bus.next
	bus.next++
	bus.subs = append(bus.subs, sub)
	return sub.handle
}

// Unsubscribe removes the listener registered under handle. Unknown
// handles are ignored.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subs {
		if sub.handle == handle {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Len reports the number of registered listeners.
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

// Publish delivers event to every matching listener. Listeners must not
// publish or subscribe re-entrantly.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, sub := range bus.subs {
		if sub.matches(event.Type) {
			sub.listener(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, targetID, sourceID, controller string) Event {
	return Event{
		Type:       eventType,
		TargetID:   targetID,
		SourceID:   sourceID,
		Controller: controller,
		Timestamp:  time.Now(),
		Metadata:   make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, targetID, sourceID, controller string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID, controller)
	evt.Amount = amount
	return evt
}

// NewEventWithFlag creates a new event with a flag value.
func NewEventWithFlag(eventType EventType, targetID, sourceID, controller string, flag bool) Event {
	evt := NewEvent(eventType, targetID, sourceID, controller)
	evt.Flag = flag
	return evt
}
