package state

import (
	"slices"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
)

// Enchant applies a buff to the minion and records it.
func (g *GameState) Enchant(ci *CardInstance, sourceID string, attack, health int, keywords []catalog.Keyword, d catalog.Duration) Enchantment {
	e := Enchantment{
		ID:       g.NewInstanceID(),
		SourceID: sourceID,
		Attack:   attack,
		Health:   health,
		Keywords: slices.Clone(keywords),
		Duration: d,
		Turn:     g.TurnNumber(),
	}
	ci.Buff(attack, health)
	for _, k := range keywords {
		ci.SetKeyword(k, true)
	}
	ci.Enchantments = append(ci.Enchantments, e)
	return e
}

// ExpireTurnEnchantments reverts this_turn enchantments. Lost health cannot
// reduce the minion below 1. A keyword the expired enchantments granted is
// cleared only when nothing else still grants it.
func (ci *CardInstance) ExpireTurnEnchantments() {
	var (
		kept    []Enchantment
		expired []catalog.Keyword
	)
	for _, e := range ci.Enchantments {
		if e.Duration != catalog.DurationThisTurn {
			kept = append(kept, e)
			continue
		}
		ci.Attack = max(0, ci.Attack-e.Attack)
		if e.Health != 0 {
			ci.MaxHealth -= e.Health
			ci.Health = max(1, min(ci.Health, ci.MaxHealth))
		}
		expired = append(expired, e.Keywords...)
	}
	ci.Enchantments = kept
	for _, k := range expired {
		if !ci.grants(k) {
			ci.SetKeyword(k, false)
		}
	}
}

// grants reports whether the printed card, a remaining enchantment or a
// magnetic attachment provides k.
func (ci *CardInstance) grants(k catalog.Keyword) bool {
	if !ci.Silenced && ci.Card.HasKeyword(k) {
		return true
	}
	for _, e := range ci.Enchantments {
		if slices.Contains(e.Keywords, k) {
			return true
		}
	}
	for _, a := range ci.Attachments {
		if slices.Contains(a.Keywords, k) {
			return true
		}
	}
	return false
}

// ResetToPrinted discards enchantments and attachments and restores the
// printed attack and maximum health. Current health is capped at the new
// maximum.
func (ci *CardInstance) ResetToPrinted() {
	ci.Enchantments = nil
	ci.Attachments = nil
	ci.Attack = ci.Card.Attack
	ci.MaxHealth = ci.Card.Health
	ci.Health = min(ci.Health, ci.MaxHealth)
}
