package state

import (
	"slices"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/counters"
)

// Zone capacities and limits.
const (
	MaxHandSize      = 10
	MaxBoardSize     = 7
	MaxMana          = 10
	MaxJadeGolemSize = 30
	StartingHealth   = 30
)

// Hero is a player's hero.
type Hero struct {
	ID              string
	Health          int
	MaxHealth       int
	Armor           int
	Attack          int // temporary attack granted this turn
	AttacksThisTurn int
	Frozen          bool
	FrozenOnTurn    int
	Immune          bool
}

// TakeDamage applies damage to armor first and spills the rest onto health.
// It returns the armor absorbed and the health lost.
func (h *Hero) TakeDamage(amount int) (absorbed, dealt int) {
	if amount <= 0 || h.Immune {
		return 0, 0
	}
	absorbed = min(h.Armor, amount)
	h.Armor -= absorbed
	dealt = amount - absorbed
	h.Health -= dealt
	return absorbed, dealt
}

// Heal restores health up to the maximum and returns the amount restored.
func (h *Hero) Heal(amount int) int {
	if amount <= 0 || h.Health >= h.MaxHealth {
		return 0
	}
	before := h.Health
	h.Health = min(h.MaxHealth, h.Health+amount)
	return h.Health - before
}

// Damaged reports whether the hero is below maximum health.
func (h *Hero) Damaged() bool {
	return h.Health < h.MaxHealth
}

// Weapon is an equipped weapon.
type Weapon struct {
	InstanceID string
	Card       catalog.Definition
	Attack     int
	Durability int
	Lifesteal  bool
	Poisonous  bool
}

// ManaPool holds a player's crystals. Current and Max stay within [0, 10].
type ManaPool struct {
	Current         int
	Max             int
	Temporary       int // spendable this turn only, on top of Current
	Overloaded      int // crystals locked this turn
	PendingOverload int // crystals locked next turn
}

// Available returns the mana that can be spent now.
func (m *ManaPool) Available() int {
	return m.Current + m.Temporary
}

// Spend pays cost from temporary mana first. It reports false and leaves the
// pool unchanged when there is not enough mana.
func (m *ManaPool) Spend(cost int) bool {
	if cost <= 0 {
		return true
	}
	if cost > m.Available() {
		return false
	}
	fromTemp := min(m.Temporary, cost)
	m.Temporary -= fromTemp
	m.Current -= cost - fromTemp
	return true
}

// Clamp keeps Current and Max within bounds. Temporary crystals only fill
// the pool up to MaxMana available.
func (m *ManaPool) Clamp() {
	m.Max = clamp(m.Max, 0, MaxMana)
	m.Current = clamp(m.Current, 0, MaxMana)
	m.Temporary = clamp(m.Temporary, 0, MaxMana-m.Current)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// QuestKind selects what advances a quest.
type QuestKind string

const (
	QuestPlayMinions QuestKind = "play_minions"
	QuestCastSpells  QuestKind = "cast_spells"
	QuestSummonRace  QuestKind = "summon_race"
)

// Quest is an active quest.
type Quest struct {
	SourceCardID int
	Name         string
	Kind         QuestKind
	Race         catalog.Race
	Progress     int
	Goal         int
	RewardCardID int
}

// Complete reports whether the goal was reached.
func (q *Quest) Complete() bool {
	return q.Progress >= q.Goal
}

// Discount lowers the cost of the next card played that matches Race.
// RaceNone matches any card.
type Discount struct {
	Amount int
	Race   catalog.Race
}

// Matches reports whether ci is eligible for the discount.
func (d *Discount) Matches(ci *CardInstance) bool {
	if d == nil || d.Amount <= 0 {
		return false
	}
	if d.Race == catalog.RaceNone {
		return true
	}
	return ci.IsMinion() && ci.Card.Race.Is(d.Race)
}

// PlayerState is everything one side owns.
type PlayerState struct {
	Side        Side
	Class       catalog.Class
	Hero        Hero
	Weapon      *Weapon
	Mana        ManaPool
	Hand        []*CardInstance
	Deck        []*CardInstance
	Battlefield []*CardInstance
	Graveyard   []*CardInstance
	Quest       *Quest
	Counters    *counters.Counters
	Fatigue     int
	Discount    *Discount
	ExtraTurns  int // turns queued after the current one
}

// NewPlayerState creates an empty player with a full-health hero.
func NewPlayerState(side Side, heroID string, health int) *PlayerState {
	if health <= 0 {
		health = StartingHealth
	}
	return &PlayerState{
		Side:     side,
		Hero:     Hero{ID: heroID, Health: health, MaxHealth: health},
		Counters: counters.NewCounters(),
	}
}

// CostOf returns what ci costs to play now, after any pending discount.
func (p *PlayerState) CostOf(ci *CardInstance) int {
	if p.Discount.Matches(ci) {
		return max(0, ci.Cost-p.Discount.Amount)
	}
	return ci.Cost
}

// HandFull reports whether the hand is at capacity.
func (p *PlayerState) HandFull() bool {
	return len(p.Hand) >= MaxHandSize
}

// BoardFull reports whether the battlefield is at capacity.
func (p *PlayerState) BoardFull() bool {
	return len(p.Battlefield) >= MaxBoardSize
}

// BoardSpace returns the free battlefield slots.
func (p *PlayerState) BoardSpace() int {
	return max(0, MaxBoardSize-len(p.Battlefield))
}

// MinionIndex returns the battlefield position of the instance, or -1.
func (p *PlayerState) MinionIndex(id string) int {
	return slices.IndexFunc(p.Battlefield, func(ci *CardInstance) bool { return ci.InstanceID == id })
}

// Minion returns a battlefield minion by instance id.
func (p *PlayerState) Minion(id string) *CardInstance {
	if i := p.MinionIndex(id); i >= 0 {
		return p.Battlefield[i]
	}
	return nil
}

// HandIndex returns the hand position of the instance, or -1.
func (p *PlayerState) HandIndex(id string) int {
	return slices.IndexFunc(p.Hand, func(ci *CardInstance) bool { return ci.InstanceID == id })
}

// PlaceMinion inserts a minion at pos (clamped to the board). It fails with
// ErrZoneFull when the board is at capacity.
func (p *PlayerState) PlaceMinion(ci *CardInstance, pos int) (int, error) {
	if p.BoardFull() {
		return -1, NewError(KindZoneFull, "place minion", "board has %d minions", len(p.Battlefield))
	}
	if pos < 0 || pos > len(p.Battlefield) {
		pos = len(p.Battlefield)
	}
	p.Battlefield = slices.Insert(p.Battlefield, pos, ci)
	return pos, nil
}

// RemoveMinion takes a minion off the battlefield and returns it with its
// former position.
func (p *PlayerState) RemoveMinion(id string) (*CardInstance, int) {
	i := p.MinionIndex(id)
	if i < 0 {
		return nil, -1
	}
	ci := p.Battlefield[i]
	p.Battlefield = slices.Delete(p.Battlefield, i, i+1)
	return ci, i
}

// RemoveFromHand takes a card out of the hand.
func (p *PlayerState) RemoveFromHand(id string) *CardInstance {
	i := p.HandIndex(id)
	if i < 0 {
		return nil
	}
	ci := p.Hand[i]
	p.Hand = slices.Delete(p.Hand, i, i+1)
	return ci
}

// SpellDamage sums the spell damage bonus of unsilenced minions.
func (p *PlayerState) SpellDamage() int {
	total := 0
	for _, m := range p.Battlefield {
		if !m.Silenced {
			total += m.Card.SpellDamage
		}
	}
	return total
}

// HoldsRace reports whether the hand holds a minion of the race.
func (p *PlayerState) HoldsRace(race catalog.Race) bool {
	return slices.ContainsFunc(p.Hand, func(ci *CardInstance) bool {
		return ci.IsMinion() && ci.Card.Race.Is(race)
	})
}

// DeckHasNoDuplicates reports whether every card in the deck is distinct.
func (p *PlayerState) DeckHasNoDuplicates() bool {
	seen := make(map[int]bool, len(p.Deck))
	for _, ci := range p.Deck {
		if seen[ci.Card.ID] {
			return false
		}
		seen[ci.Card.ID] = true
	}
	return true
}

// HeroAttack returns the hero's current attack including the weapon.
func (p *PlayerState) HeroAttack() int {
	attack := p.Hero.Attack
	if p.Weapon != nil {
		attack += p.Weapon.Attack
	}
	return attack
}

// Clone returns a deep copy.
func (p *PlayerState) Clone() *PlayerState {
	out := *p
	if p.Weapon != nil {
		w := *p.Weapon
		w.Card = p.Weapon.Card.Clone()
		out.Weapon = &w
	}
	if p.Quest != nil {
		q := *p.Quest
		out.Quest = &q
	}
	if p.Discount != nil {
		d := *p.Discount
		out.Discount = &d
	}
	out.Hand = cloneInstances(p.Hand)
	out.Deck = cloneInstances(p.Deck)
	out.Battlefield = cloneInstances(p.Battlefield)
	out.Graveyard = cloneInstances(p.Graveyard)
	out.Counters = p.Counters.Copy()
	return &out
}

func cloneInstances(in []*CardInstance) []*CardInstance {
	if in == nil {
		return nil
	}
	out := make([]*CardInstance, len(in))
	for i, ci := range in {
		out[i] = ci.Clone()
	}
	return out
}
