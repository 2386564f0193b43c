package keywords

import (
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// ReevaluateEnrage adds or removes the enrage attack bonus to match whether
// the minion is damaged.
func ReevaluateEnrage(g *state.GameState, side state.Side, m *state.CardInstance) {
	bonus := m.Card.EnrageAttack
	if bonus == 0 || m.Silenced || !m.HasKeyword(catalog.KeywordEnrage) {
		return
	}
	want := m.Damaged() && m.Health > 0
	if want == m.Enraged {
		return
	}
	m.Enraged = want
	if want {
		m.Attack += bonus
	} else {
		m.Attack = max(0, m.Attack-bonus)
	}
	g.Emit(rules.NewEventWithFlag(rules.EventEnrage, m.InstanceID, m.InstanceID, side.String(), want))
}
