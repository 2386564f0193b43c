package keywords

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// applyPoison destroys a minion that took health damage from a poisonous
// source and is otherwise still standing.
func applyPoison(g *state.GameState, m *state.CardInstance, req DamageRequest, dealt int) bool {
	if !req.Poisonous || dealt <= 0 || m.Health <= 0 || m.Destroyed {
		return false
	}
	m.Destroyed = true
	loc, _ := g.Locate(m.InstanceID)
	g.Record(rules.EventMinionDestroy, m.InstanceID, req.SourceID, loc.Side, 0,
		fmt.Sprintf("%s was poisoned", m.Name()))
	return true
}
