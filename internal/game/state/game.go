package state

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
)

// ChoiceKind distinguishes pending player choices.
type ChoiceKind string

const (
	ChoiceDiscover ChoiceKind = "discover"
	ChoiceAdapt    ChoiceKind = "adapt"
)

// Choice is a selection awaiting the player. Only the option data is
// stored; the resolution reads the live state when the player answers.
type Choice struct {
	ID           string
	Kind         ChoiceKind
	Side         Side
	SourceID     string
	SourceCardID int
	Pool         string
	Options      []catalog.Definition
	Adaptations  []string
}

// OptionCount returns the number of selectable options.
func (c *Choice) OptionCount() int {
	if c.Kind == ChoiceAdapt {
		return len(c.Adaptations)
	}
	return len(c.Options)
}

// GameState is the root aggregate of one match. It is owned by a single
// writer; readers receive clones.
type GameState struct {
	ID            string
	Players       [2]*PlayerState
	Turn          rules.TurnManager
	Over          bool
	Winner        *Side
	Log           []rules.Event
	PendingChoice *Choice
	Seed          uint64

	pcg          rand.PCG
	nextInstance uint64
	namespace    uuid.UUID
}

// New creates a game with empty zones and both heroes at health. Instance
// ids are derived from the game id and a sequence, so two games created
// with the same id and seed allocate the same ids.
func New(id string, seed uint64, health int) *GameState {
	g := &GameState{
		ID:        id,
		Seed:      seed,
		Turn:      rules.NewTurnManager(SideSelf.String()),
		pcg:       *rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
		namespace: uuid.NewSHA1(uuid.NameSpaceOID, []byte("ragnarok:"+id)),
	}
	for _, side := range Sides {
		g.Players[side] = NewPlayerState(side, g.NewInstanceID(), health)
	}
	return g
}

// Player returns the state of a side.
func (g *GameState) Player(side Side) *PlayerState {
	return g.Players[side]
}

// Current returns the side whose turn it is.
func (g *GameState) Current() Side {
	side, err := ParseSide(g.Turn.Active())
	if err != nil {
		return SideSelf
	}
	return side
}

// TurnNumber returns the 1-based turn number.
func (g *GameState) TurnNumber() int {
	return g.Turn.TurnNumber()
}

// Rand returns a generator drawing from the game's seeded stream.
func (g *GameState) Rand() *rand.Rand {
	return rand.New(&g.pcg)
}

// NewInstanceID allocates the next instance id.
func (g *GameState) NewInstanceID() string {
	g.nextInstance++
	return uuid.NewSHA1(g.namespace, []byte(strconv.FormatUint(g.nextInstance, 10))).String()
}

// NewInstance creates an instance of def with a fresh id.
func (g *GameState) NewInstance(def catalog.Definition) *CardInstance {
	return NewInstance(g.NewInstanceID(), def)
}

// Emit appends an event to the log and stamps its sequence number.
func (g *GameState) Emit(evt rules.Event) {
	evt.Seq = len(g.Log) + 1
	g.Log = append(g.Log, evt)
}

// Record emits an event built from the common fields.
func (g *GameState) Record(t rules.EventType, targetID, sourceID string, side Side, amount int, description string) {
	evt := rules.NewEventWithAmount(t, targetID, sourceID, side.String(), amount)
	evt.Description = description
	g.Emit(evt)
}

// EventsSince returns the log entries after the first n.
func (g *GameState) EventsSince(n int) []rules.Event {
	if n >= len(g.Log) {
		return nil
	}
	out := make([]rules.Event, len(g.Log)-n)
	copy(out, g.Log[n:])
	return out
}

// Zone names a card location.
type Zone string

const (
	ZoneHero        Zone = "hero"
	ZoneBattlefield Zone = "battlefield"
	ZoneHand        Zone = "hand"
	ZoneDeck        Zone = "deck"
	ZoneGraveyard   Zone = "graveyard"
)

// Location describes where an id was found.
type Location struct {
	Side   Side
	Zone   Zone
	Index  int
	Minion *CardInstance
	Hero   *Hero
}

// IsHero reports whether the location is a hero.
func (l Location) IsHero() bool {
	return l.Zone == ZoneHero
}

// Locate finds a hero or battlefield minion by id.
func (g *GameState) Locate(id string) (Location, bool) {
	if id == "" {
		return Location{}, false
	}
	for _, side := range Sides {
		p := g.Players[side]
		if p.Hero.ID == id {
			return Location{Side: side, Zone: ZoneHero, Index: -1, Hero: &p.Hero}, true
		}
		if i := p.MinionIndex(id); i >= 0 {
			return Location{Side: side, Zone: ZoneBattlefield, Index: i, Minion: p.Battlefield[i]}, true
		}
	}
	return Location{}, false
}

// LocateAnywhere finds an instance id in any zone.
func (g *GameState) LocateAnywhere(id string) (Location, bool) {
	if loc, ok := g.Locate(id); ok {
		return loc, true
	}
	for _, side := range Sides {
		p := g.Players[side]
		zones := []struct {
			zone Zone
			list []*CardInstance
		}{{ZoneHand, p.Hand}, {ZoneDeck, p.Deck}, {ZoneGraveyard, p.Graveyard}}
		for _, z := range zones {
			for i, ci := range z.list {
				if ci.InstanceID == id {
					return Location{Side: side, Zone: z.zone, Index: i, Minion: ci}, true
				}
			}
		}
	}
	return Location{}, false
}

// AddToHand appends a card to the side's hand. A full hand burns the card;
// the burn is logged and AddToHand reports false.
func (g *GameState) AddToHand(side Side, ci *CardInstance) bool {
	p := g.Players[side]
	if p.HandFull() {
		evt := rules.NewEvent(rules.EventCardBurned, ci.InstanceID, ci.InstanceID, side.String())
		evt.CardID = ci.Card.ID
		evt.Description = fmt.Sprintf("%s burned: hand is full", ci.Name())
		g.Emit(evt)
		return false
	}
	p.Hand = append(p.Hand, ci)
	evt := rules.NewEvent(rules.EventCardAddedHand, ci.InstanceID, ci.InstanceID, side.String())
	evt.CardID = ci.Card.ID
	g.Emit(evt)
	return true
}

// Draw draws n cards from the front of the deck. Drawing from an empty deck
// deals increasing fatigue damage to the hero. It returns the cards that
// reached the hand.
func (g *GameState) Draw(side Side, n int) []*CardInstance {
	p := g.Players[side]
	var drawn []*CardInstance
	for range n {
		if len(p.Deck) == 0 {
			p.Fatigue++
			absorbed, dealt := p.Hero.TakeDamage(p.Fatigue)
			g.Record(rules.EventFatigue, p.Hero.ID, p.Hero.ID, side, absorbed+dealt,
				fmt.Sprintf("fatigue %d", p.Fatigue))
			continue
		}
		ci := p.Deck[0]
		p.Deck = p.Deck[1:]
		evt := rules.NewEvent(rules.EventCardDrawn, ci.InstanceID, p.Hero.ID, side.String())
		evt.CardID = ci.Card.ID
		g.Emit(evt)
		if g.AddToHand(side, ci) {
			drawn = append(drawn, ci)
		}
	}
	return drawn
}

// Mill destroys up to n cards from the top of the deck and returns how many
// were destroyed.
func (g *GameState) Mill(side Side, n int) int {
	p := g.Players[side]
	milled := 0
	for ; milled < n && len(p.Deck) > 0; milled++ {
		ci := p.Deck[0]
		p.Deck = p.Deck[1:]
		evt := rules.NewEvent(rules.EventCardMilled, ci.InstanceID, p.Hero.ID, side.String())
		evt.CardID = ci.Card.ID
		g.Emit(evt)
	}
	return milled
}

// Discard removes up to n random cards from the hand.
func (g *GameState) Discard(side Side, n int) int {
	p := g.Players[side]
	rng := g.Rand()
	discarded := 0
	for ; discarded < n && len(p.Hand) > 0; discarded++ {
		i := rng.IntN(len(p.Hand))
		ci := p.Hand[i]
		p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
		evt := rules.NewEvent(rules.EventCardDiscarded, ci.InstanceID, p.Hero.ID, side.String())
		evt.CardID = ci.Card.ID
		g.Emit(evt)
	}
	return discarded
}

// ShuffleIntoDeck inserts a card at a random deck position.
func (g *GameState) ShuffleIntoDeck(side Side, ci *CardInstance) {
	p := g.Players[side]
	pos := g.Rand().IntN(len(p.Deck) + 1)
	p.Deck = append(p.Deck, nil)
	copy(p.Deck[pos+1:], p.Deck[pos:])
	p.Deck[pos] = ci
	evt := rules.NewEvent(rules.EventCardShuffled, ci.InstanceID, p.Hero.ID, side.String())
	evt.CardID = ci.Card.ID
	g.Emit(evt)
}

// ShuffleDeck randomizes the deck order.
func (g *GameState) ShuffleDeck(side Side) {
	p := g.Players[side]
	g.Rand().Shuffle(len(p.Deck), func(i, j int) {
		p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i]
	})
}

// CheckHeroes ends the game when a hero is at or below zero health. Both
// heroes dying is a draw. It reports whether the game is over.
func (g *GameState) CheckHeroes() bool {
	if g.Over {
		return true
	}
	selfDead := g.Players[SideSelf].Hero.Health <= 0
	oppDead := g.Players[SideOpponent].Hero.Health <= 0
	if !selfDead && !oppDead {
		return false
	}
	g.Over = true
	evt := rules.NewEvent(rules.EventGameOver, "", "", "")
	switch {
	case selfDead && oppDead:
		evt.Description = "draw"
	case selfDead:
		w := SideOpponent
		g.Winner = &w
		evt.Controller = w.String()
		evt.Description = "opponent wins"
	default:
		w := SideSelf
		g.Winner = &w
		evt.Controller = w.String()
		evt.Description = "self wins"
	}
	g.Emit(evt)
	return true
}
