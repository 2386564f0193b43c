package keywords

import (
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// SummonColossalParts summons the parts of a colossal minion to its right,
// in the listed order, as many as the board has room for. Each part points
// back at the main minion and the main minion records the part.
func SummonColossalParts(g *state.GameState, side state.Side, lookup Lookup, main *state.CardInstance) []*state.CardInstance {
	if main.Silenced || !main.Card.HasKeyword(catalog.KeywordColossal) {
		return nil
	}
	p := g.Player(side)
	idx := p.MinionIndex(main.InstanceID)
	if idx < 0 {
		return nil
	}
	n := min(len(main.Card.ColossalParts), p.BoardSpace())
	var parts []*state.CardInstance
	for _, partID := range main.Card.ColossalParts[:n] {
		def, ok := lookup.GetByID(partID)
		if !ok {
			continue
		}
		part, err := Summon(g, side, def, idx+1+len(parts))
		if err != nil {
			break
		}
		part.ColossalParent = main.InstanceID
		main.ColossalParts = append(main.ColossalParts, part.InstanceID)
		parts = append(parts, part)
	}
	return parts
}
