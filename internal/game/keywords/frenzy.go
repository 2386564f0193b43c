package keywords

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

func initFrenzy(ci *state.CardInstance) {
	if ci.Card.Frenzy == nil || !ci.Card.HasKeyword(catalog.KeywordFrenzy) {
		return
	}
	ci.Frenzy = &state.FrenzyState{Effect: ci.Card.Frenzy.Clone()}
}

// triggerFrenzy arms a minion's frenzy the first time it survives health
// damage. The returned effect is dispatched by the caller; nil means nothing
// fired.
func triggerFrenzy(g *state.GameState, side state.Side, m *state.CardInstance, dealt int) *catalog.Effect {
	if dealt <= 0 || !m.Alive() || m.Silenced {
		return nil
	}
	if m.Frenzy == nil || m.Frenzy.Triggered || m.Frenzy.Effect == nil {
		return nil
	}
	m.Frenzy.Triggered = true
	evt := rules.NewEvent(rules.EventFrenzy, m.InstanceID, m.InstanceID, side.String())
	evt.CardID = m.Card.ID
	evt.Description = fmt.Sprintf("%s frenzy: %s", m.Name(), m.Frenzy.Effect.Type)
	g.Emit(evt)
	return m.Frenzy.Effect.Clone()
}
