package counters

import "strings"

// CounterType names a tally kept on a player.
type CounterType string

const (
	// JadeGolem counts jade golems summoned this game. It is never reset.
	JadeGolem CounterType = "jade_golem"

	// Per-turn tallies, reset when the owner's turn starts.
	CardsPlayed   CounterType = "cards_played"
	MinionsPlayed CounterType = "minions_played"
	SpellsCast    CounterType = "spells_cast"
	DamageDealt   CounterType = "damage_dealt"

	racePlayedPrefix = "race_played:"
)

// RacePlayed is the per-turn tally of minions of a race played.
func RacePlayed(race string) CounterType {
	return CounterType(racePlayedPrefix + race)
}

// PerTurn reports whether the counter resets at the start of its owner's turn.
func (t CounterType) PerTurn() bool {
	switch t {
	case CardsPlayed, MinionsPlayed, SpellsCast, DamageDealt:
		return true
	}
	return strings.HasPrefix(string(t), racePlayedPrefix)
}
