package keywords

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// Silence strips every keyword flag, enchantment, attachment and hook from a
// minion and marks it silenced so no mechanic initializes or fires for it
// again.
func Silence(g *state.GameState, side state.Side, m *state.CardInstance, sourceID string) {
	for _, k := range m.ActiveKeywords() {
		m.SetKeyword(k, false)
	}
	m.ResetToPrinted()
	m.Enraged = false
	m.Frozen = false
	m.Frenzy = nil
	m.Deathrattle = nil
	m.Silenced = true
	g.Record(rules.EventSilenced, m.InstanceID, sourceID, side, 0, fmt.Sprintf("%s silenced", m.Name()))
}
