package keywords

import (
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

func initRush(ci *state.CardInstance) {
	ci.Rush = ci.Card.HasKeyword(catalog.KeywordRush)
}

// RushRestricted reports whether a minion may attack minions only: it has
// rush and has not yet waited a turn.
func RushRestricted(ci *state.CardInstance) bool {
	return ci.Rush && ci.SummoningSick && !ci.Charge
}

// ClearRush lifts the minions-only restriction from every rush minion of a
// side at the end of its turn. It returns the number of minions cleared.
func ClearRush(g *state.GameState, side state.Side) int {
	cleared := 0
	for _, m := range g.Player(side).Battlefield {
		if m.Rush {
			m.Rush = false
			cleared++
		}
	}
	return cleared
}
