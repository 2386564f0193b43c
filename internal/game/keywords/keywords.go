// Package keywords implements the keyword mechanics that hook into damage,
// summoning and end of turn: divine shield, poisonous, lifesteal, rush,
// frenzy, magnetic, colossal, enrage and silence.
//
// Every mechanic has an initializer run when a minion enters play and a
// trigger run at a fixed point of the damage or turn pipeline. A silenced
// minion runs neither.
package keywords

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// Lookup resolves card definitions. *catalog.Catalog satisfies it.
type Lookup interface {
	GetByID(id int) (catalog.Definition, bool)
}

// Initialize attaches the printed keyword state to a minion entering play.
func Initialize(ci *state.CardInstance) {
	ci.SummoningSick = true
	ci.AttacksThisTurn = 0
	if ci.Silenced {
		return
	}
	for _, k := range ci.Card.Keywords {
		ci.SetKeyword(k, true)
	}
	initRush(ci)
	initFrenzy(ci)
}

// Summon creates a minion from def and places it at pos on the side's
// battlefield. A full board fails with ErrZoneFull and leaves the state
// untouched.
func Summon(g *state.GameState, side state.Side, def catalog.Definition, pos int) (*state.CardInstance, error) {
	if !def.IsMinion() {
		return nil, state.NewError(state.KindInvalidMinionOperation, "summon", "%s is a %s", def.Name, def.Type)
	}
	p := g.Player(side)
	if p.BoardFull() {
		return nil, state.NewError(state.KindZoneFull, "summon", "cannot summon %s", def.Name)
	}
	ci := g.NewInstance(def)
	Initialize(ci)
	if _, err := p.PlaceMinion(ci, pos); err != nil {
		return nil, err
	}
	evt := rules.NewEvent(rules.EventMinionSummoned, ci.InstanceID, ci.InstanceID, side.String())
	evt.CardID = def.ID
	evt.Description = fmt.Sprintf("%s summoned", def.Name)
	g.Emit(evt)
	return ci, nil
}

// Enter places an existing instance (played from hand, resurrected) onto the
// battlefield and initializes it.
func Enter(g *state.GameState, side state.Side, ci *state.CardInstance, pos int) (int, error) {
	if !ci.IsMinion() {
		return -1, state.NewError(state.KindInvalidMinionOperation, "enter play", "%s is a %s", ci.Name(), ci.Card.Type)
	}
	Initialize(ci)
	idx, err := g.Player(side).PlaceMinion(ci, pos)
	if err != nil {
		return -1, err
	}
	evt := rules.NewEvent(rules.EventMinionSummoned, ci.InstanceID, ci.InstanceID, side.String())
	evt.CardID = ci.Card.ID
	g.Emit(evt)
	return idx, nil
}
