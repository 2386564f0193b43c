package keywords

import (
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// applyLifesteal heals the source side's hero by the damage done, capped at
// its maximum health.
func applyLifesteal(g *state.GameState, side state.Side, sourceID string, damage int) int {
	if damage <= 0 {
		return 0
	}
	hero := &g.Player(side).Hero
	healed := hero.Heal(damage)
	if healed > 0 {
		g.Record(rules.EventHealed, hero.ID, sourceID, side, healed, "lifesteal")
	}
	return healed
}
