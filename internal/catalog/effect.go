package catalog

import "slices"

// Duration controls how long a granted modification lasts.
type Duration string

const (
	DurationPermanent Duration = "permanent"
	DurationThisTurn  Duration = "this_turn"
)

// Effect is a tagged effect descriptor. Type selects the handler; every other
// field is optional and handlers fall back to the documented default when a
// field is absent. Pointer fields distinguish "unset" from an explicit zero.
type Effect struct {
	Type string `json:"type" yaml:"type" toml:"type"`

	// Value is the primary amount (damage, heal, cards drawn, mana).
	Value *int `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	// Damage is dealt in addition to a non-damage primary effect such as
	// freeze. Nil means the effect deals no damage.
	Damage *int `json:"damage,omitempty" yaml:"damage,omitempty" toml:"damage,omitempty"`
	Attack *int `json:"attack,omitempty" yaml:"attack,omitempty" toml:"attack,omitempty"`
	Health *int `json:"health,omitempty" yaml:"health,omitempty" toml:"health,omitempty"`
	Count  *int `json:"count,omitempty" yaml:"count,omitempty" toml:"count,omitempty"`

	CardID  *int  `json:"card_id,omitempty" yaml:"card_id,omitempty" toml:"card_id,omitempty"`
	CardIDs []int `json:"card_ids,omitempty" yaml:"card_ids,omitempty" toml:"card_ids,omitempty"`

	Keywords []Keyword `json:"keywords,omitempty" yaml:"keywords,omitempty" toml:"keywords,omitempty"`

	TargetType     string `json:"target_type,omitempty" yaml:"target_type,omitempty" toml:"target_type,omitempty"`
	RequiresTarget bool   `json:"requires_target,omitempty" yaml:"requires_target,omitempty" toml:"requires_target,omitempty"`

	Duration  Duration `json:"duration,omitempty" yaml:"duration,omitempty" toml:"duration,omitempty"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty" toml:"condition,omitempty"`

	// Filters for random selection from the catalog.
	Race     Race     `json:"race,omitempty" yaml:"race,omitempty" toml:"race,omitempty"`
	Rarity   Rarity   `json:"rarity,omitempty" yaml:"rarity,omitempty" toml:"rarity,omitempty"`
	CardType CardType `json:"card_type,omitempty" yaml:"card_type,omitempty" toml:"card_type,omitempty"`
	Class    Class    `json:"class,omitempty" yaml:"class,omitempty" toml:"class,omitempty"`
	MinCost  *int     `json:"min_cost,omitempty" yaml:"min_cost,omitempty" toml:"min_cost,omitempty"`
	MaxCost  *int     `json:"max_cost,omitempty" yaml:"max_cost,omitempty" toml:"max_cost,omitempty"`
	Pool     string   `json:"pool,omitempty" yaml:"pool,omitempty" toml:"pool,omitempty"`

	// Temporary marks mana or attack that expires at end of turn.
	Temporary bool `json:"temporary,omitempty" yaml:"temporary,omitempty" toml:"temporary,omitempty"`
	// Permanent marks mana changes that affect the crystal maximum.
	Permanent bool `json:"permanent,omitempty" yaml:"permanent,omitempty" toml:"permanent,omitempty"`

	// Stats overrides the stats of a summoned or transformed minion.
	Stats *StatLine `json:"stats,omitempty" yaml:"stats,omitempty" toml:"stats,omitempty"`

	// Secondary is the payload of conditional and chained effects.
	Secondary *Effect `json:"secondary,omitempty" yaml:"secondary,omitempty" toml:"secondary,omitempty"`

	// Script is Lua source run when Type has no registered handler.
	Script string `json:"script,omitempty" yaml:"script,omitempty" toml:"script,omitempty"`
}

// Int returns a pointer to v, for building descriptors in code.
func Int(v int) *int {
	return &v
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// ValueOr returns Value or def when unset.
func (e *Effect) ValueOr(def int) int { return intOr(e.Value, def) }

// DamageOr returns Damage or def when unset.
func (e *Effect) DamageOr(def int) int { return intOr(e.Damage, def) }

// AttackOr returns Attack or def when unset.
func (e *Effect) AttackOr(def int) int { return intOr(e.Attack, def) }

// HealthOr returns Health or def when unset.
func (e *Effect) HealthOr(def int) int { return intOr(e.Health, def) }

// CountOr returns Count or def when unset or non-positive.
func (e *Effect) CountOr(def int) int {
	if e.Count == nil || *e.Count <= 0 {
		return def
	}
	return *e.Count
}

// HasDamage reports whether an explicit damage amount was given.
func (e *Effect) HasDamage() bool {
	return e.Damage != nil
}

// DurationOr returns Duration or DurationPermanent when unset.
func (e *Effect) DurationOr() Duration {
	if e.Duration == "" {
		return DurationPermanent
	}
	return e.Duration
}

// Query builds a catalog query from the descriptor's filter fields.
func (e *Effect) Query() Query {
	return Query{
		Type:    e.CardType,
		Class:   e.Class,
		Rarity:  e.Rarity,
		Race:    e.Race,
		MinCost: e.MinCost,
		MaxCost: e.MaxCost,
	}
}

// Clone returns a deep copy. Clone of nil is nil.
func (e *Effect) Clone() *Effect {
	if e == nil {
		return nil
	}
	out := *e
	out.Value = cloneInt(e.Value)
	out.Damage = cloneInt(e.Damage)
	out.Attack = cloneInt(e.Attack)
	out.Health = cloneInt(e.Health)
	out.Count = cloneInt(e.Count)
	out.CardID = cloneInt(e.CardID)
	out.MinCost = cloneInt(e.MinCost)
	out.MaxCost = cloneInt(e.MaxCost)
	out.CardIDs = slices.Clone(e.CardIDs)
	out.Keywords = slices.Clone(e.Keywords)
	if e.Stats != nil {
		stats := *e.Stats
		out.Stats = &stats
	}
	out.Secondary = e.Secondary.Clone()
	return &out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
