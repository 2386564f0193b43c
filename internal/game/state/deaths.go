package state

import (
	"fmt"
	"slices"

	"github.com/norsecards/ragnarok-engine/internal/game/rules"
)

// Death is a minion removed by a death check.
type Death struct {
	Side   Side
	Slot   int // board position the minion occupied after earlier removals
	Minion *CardInstance
}

// CollectDead removes every minion that is at or below zero health or marked
// destroyed, acting side first and left to right, and appends each to its
// owner's graveyard exactly once.
func (g *GameState) CollectDead(acting Side) []Death {
	var deaths []Death
	for _, side := range []Side{acting, acting.Opposite()} {
		p := g.Players[side]
		kept := p.Battlefield[:0:0]
		for _, m := range p.Battlefield {
			if m.Alive() {
				kept = append(kept, m)
				continue
			}
			deaths = append(deaths, Death{Side: side, Slot: len(kept), Minion: m})
		}
		p.Battlefield = kept
	}
	for _, d := range deaths {
		p := g.Players[d.Side]
		if !slices.ContainsFunc(p.Graveyard, func(ci *CardInstance) bool { return ci.InstanceID == d.Minion.InstanceID }) {
			p.Graveyard = append(p.Graveyard, d.Minion)
		}
		g.DetachColossal(d.Minion)
		evt := rules.NewEvent(rules.EventMinionDied, d.Minion.InstanceID, d.Minion.InstanceID, d.Side.String())
		evt.CardID = d.Minion.Card.ID
		evt.Description = fmt.Sprintf("%s died", d.Minion.Name())
		g.Emit(evt)
	}
	return deaths
}

// DetachColossal unlinks ci from its colossal group when it leaves play or
// stops being the same minion: its main minion forgets it, its parts lose
// their back-reference, and its own links are cleared.
func (g *GameState) DetachColossal(ci *CardInstance) {
	if ci.ColossalParent != "" {
		if loc, ok := g.Locate(ci.ColossalParent); ok && loc.Minion != nil {
			loc.Minion.ColossalParts = slices.DeleteFunc(loc.Minion.ColossalParts, func(id string) bool {
				return id == ci.InstanceID
			})
		}
	}
	for _, partID := range ci.ColossalParts {
		if loc, ok := g.Locate(partID); ok && loc.Minion != nil && loc.Minion.ColossalParent == ci.InstanceID {
			loc.Minion.ColossalParent = ""
		}
	}
	ci.ColossalParent = ""
	ci.ColossalParts = nil
}
