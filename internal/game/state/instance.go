package state

import (
	"slices"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
)

// Enchantment records a stat or keyword modification applied to a minion.
// Silence and transformation discard every enchantment.
type Enchantment struct {
	ID       string
	SourceID string
	Attack   int
	Health   int
	Keywords []catalog.Keyword
	Duration catalog.Duration
	Turn     int
}

// Attachment is a magnetic minion merged into a host.
type Attachment struct {
	InstanceID string
	CardID     int
	Name       string
	Attack     int
	Health     int
	Keywords   []catalog.Keyword
}

// FrenzyState tracks a minion's one-shot frenzy.
type FrenzyState struct {
	Effect    *catalog.Effect
	Triggered bool
}

// CardInstance is a runtime copy of a card definition in some zone.
type CardInstance struct {
	InstanceID string
	Card       catalog.Definition

	Attack    int
	Health    int
	MaxHealth int
	Cost      int

	SummoningSick   bool
	AttacksThisTurn int

	Taunt        bool
	Charge       bool
	Rush         bool // may attack minions only, cleared at end of turn
	DivineShield bool
	Stealth      bool
	Windfury     bool
	MegaWindfury bool
	Lifesteal    bool
	Poisonous    bool
	Immune       bool
	Elusive      bool
	Magnetic     bool
	Frozen       bool
	FrozenOnTurn int
	Silenced     bool
	Enraged      bool

	Frenzy *FrenzyState

	// Colossal bookkeeping: a part points at its main minion, the main
	// minion lists its live parts.
	ColossalParent string
	ColossalParts  []string

	Deathrattle  *catalog.Effect
	Attachments  []Attachment
	Enchantments []Enchantment

	// Destroyed marks a minion for removal at the next death check
	// regardless of health (poisonous, destroy effects).
	Destroyed bool
}

// NewInstance creates an instance carrying the printed stats of def. Keyword
// flags are attached when the instance enters play.
func NewInstance(id string, def catalog.Definition) *CardInstance {
	ci := &CardInstance{
		InstanceID: id,
		Card:       def.Clone(),
		Attack:     def.Attack,
		Health:     def.Health,
		MaxHealth:  def.Health,
		Cost:       def.Cost,
	}
	if def.Type == catalog.TypeWeapon {
		ci.Health = def.Durability
		ci.MaxHealth = def.Durability
	}
	ci.Deathrattle = def.Deathrattle.Clone()
	return ci
}

// IsMinion reports whether the instance is a minion card.
func (ci *CardInstance) IsMinion() bool {
	return ci.Card.Type == catalog.TypeMinion
}

// Name returns the card name.
func (ci *CardInstance) Name() string {
	return ci.Card.Name
}

// Alive reports whether the minion survives the next death check.
func (ci *CardInstance) Alive() bool {
	return ci.Health > 0 && !ci.Destroyed
}

// Damaged reports whether the minion is below its maximum health.
func (ci *CardInstance) Damaged() bool {
	return ci.Health < ci.MaxHealth
}

// IsColossalPart reports whether the minion was summoned as a colossal part.
func (ci *CardInstance) IsColossalPart() bool {
	return ci.ColossalParent != ""
}

// HasKeyword reports whether the keyword is currently active on the
// instance. Printed-only keywords (battlecry, colossal, frenzy) read the
// definition unless silenced.
func (ci *CardInstance) HasKeyword(k catalog.Keyword) bool {
	switch k {
	case catalog.KeywordTaunt:
		return ci.Taunt
	case catalog.KeywordCharge:
		return ci.Charge
	case catalog.KeywordRush:
		return ci.Rush
	case catalog.KeywordDivineShield:
		return ci.DivineShield
	case catalog.KeywordStealth:
		return ci.Stealth
	case catalog.KeywordWindfury:
		return ci.Windfury
	case catalog.KeywordMegaWindfury:
		return ci.MegaWindfury
	case catalog.KeywordLifesteal:
		return ci.Lifesteal
	case catalog.KeywordPoisonous:
		return ci.Poisonous
	case catalog.KeywordImmune:
		return ci.Immune
	case catalog.KeywordElusive:
		return ci.Elusive
	case catalog.KeywordMagnetic:
		return ci.Magnetic
	case catalog.KeywordFrenzy:
		return ci.Frenzy != nil && !ci.Frenzy.Triggered
	case catalog.KeywordDeathrattle:
		return ci.Deathrattle != nil
	}
	if ci.Silenced {
		return false
	}
	return ci.Card.HasKeyword(k)
}

// SetKeyword sets or clears a flag-backed keyword. It reports whether the
// keyword is flag-backed.
func (ci *CardInstance) SetKeyword(k catalog.Keyword, on bool) bool {
	switch k {
	case catalog.KeywordTaunt:
		ci.Taunt = on
	case catalog.KeywordCharge:
		ci.Charge = on
	case catalog.KeywordRush:
		ci.Rush = on
	case catalog.KeywordDivineShield:
		ci.DivineShield = on
	case catalog.KeywordStealth:
		ci.Stealth = on
	case catalog.KeywordWindfury:
		ci.Windfury = on
	case catalog.KeywordMegaWindfury:
		ci.MegaWindfury = on
	case catalog.KeywordLifesteal:
		ci.Lifesteal = on
	case catalog.KeywordPoisonous:
		ci.Poisonous = on
	case catalog.KeywordImmune:
		ci.Immune = on
	case catalog.KeywordElusive:
		ci.Elusive = on
	case catalog.KeywordMagnetic:
		ci.Magnetic = on
	default:
		return false
	}
	return true
}

// ActiveKeywords lists flag-backed keywords currently set, in a fixed order.
func (ci *CardInstance) ActiveKeywords() []catalog.Keyword {
	var out []catalog.Keyword
	for _, k := range flagKeywords {
		if ci.HasKeyword(k) {
			out = append(out, k)
		}
	}
	return out
}

var flagKeywords = []catalog.Keyword{
	catalog.KeywordTaunt,
	catalog.KeywordCharge,
	catalog.KeywordRush,
	catalog.KeywordDivineShield,
	catalog.KeywordStealth,
	catalog.KeywordWindfury,
	catalog.KeywordMegaWindfury,
	catalog.KeywordLifesteal,
	catalog.KeywordPoisonous,
	catalog.KeywordImmune,
	catalog.KeywordElusive,
	catalog.KeywordMagnetic,
}

// MaxAttacks returns how many attacks the minion may make per turn.
func (ci *CardInstance) MaxAttacks() int {
	switch {
	case ci.MegaWindfury:
		return 4
	case ci.Windfury:
		return 2
	}
	return 1
}

// TakeDamage applies raw damage. A divine shield absorbs the whole hit.
// It returns the health lost and whether a shield was consumed.
func (ci *CardInstance) TakeDamage(amount int) (dealt int, shieldPopped bool) {
	if amount <= 0 || ci.Immune {
		return 0, false
	}
	if ci.DivineShield {
		ci.DivineShield = false
		return 0, true
	}
	ci.Health -= amount
	return amount, false
}

// Heal restores health up to the maximum and returns the amount restored.
func (ci *CardInstance) Heal(amount int) int {
	if amount <= 0 || ci.Health >= ci.MaxHealth {
		return 0
	}
	before := ci.Health
	ci.Health = min(ci.MaxHealth, ci.Health+amount)
	return ci.Health - before
}

// Buff raises attack and health. Health buffs raise maximum health too.
func (ci *CardInstance) Buff(attack, health int) {
	ci.Attack = max(0, ci.Attack+attack)
	if health != 0 {
		ci.MaxHealth += health
		ci.Health += health
		if ci.Health > ci.MaxHealth {
			ci.Health = ci.MaxHealth
		}
	}
}

// Clone returns a deep copy.
func (ci *CardInstance) Clone() *CardInstance {
	if ci == nil {
		return nil
	}
	out := *ci
	out.Card = ci.Card.Clone()
	if ci.Frenzy != nil {
		frenzy := *ci.Frenzy
		frenzy.Effect = ci.Frenzy.Effect.Clone()
		out.Frenzy = &frenzy
	}
	out.ColossalParts = slices.Clone(ci.ColossalParts)
	out.Deathrattle = ci.Deathrattle.Clone()
	out.Attachments = slices.Clone(ci.Attachments)
	for i := range out.Attachments {
		out.Attachments[i].Keywords = slices.Clone(out.Attachments[i].Keywords)
	}
	out.Enchantments = make([]Enchantment, len(ci.Enchantments))
	for i, e := range ci.Enchantments {
		e.Keywords = slices.Clone(e.Keywords)
		out.Enchantments[i] = e
	}
	if ci.Enchantments == nil {
		out.Enchantments = nil
	}
	return &out
}
