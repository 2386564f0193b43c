package keywords

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// CanMagnetize reports whether magnet may merge into host.
func CanMagnetize(magnet, host *state.CardInstance) bool {
	return magnet != nil && host != nil &&
		magnet.Card.HasKeyword(catalog.KeywordMagnetic) &&
		host.IsMinion() && host.Card.Race.Is(catalog.RaceMech)
}

// Magnetize merges a magnetic minion played from hand into a friendly mech.
// Attack, health and keywords (other than magnetic itself) transfer; the
// deathrattle transfers only when the host has none; the battlecry never
// does. The magnet does not occupy a board slot and is kept as an
// attachment of the host.
func Magnetize(g *state.GameState, side state.Side, magnet, host *state.CardInstance) error {
	if !magnet.Card.HasKeyword(catalog.KeywordMagnetic) {
		return state.NewError(state.KindInvalidMinionOperation, "magnetize", "%s is not magnetic", magnet.Name())
	}
	if host == nil || !host.IsMinion() {
		return state.NewError(state.KindInvalidMinionOperation, "magnetize", "host is not a minion")
	}
	if !host.Card.Race.Is(catalog.RaceMech) {
		return state.NewError(state.KindInvalidMinionOperation, "magnetize", "%s is not a mech", host.Name())
	}

	host.Attack += magnet.Attack
	host.MaxHealth += magnet.Health
	host.Health += magnet.Health
	var granted []catalog.Keyword
	for _, k := range magnet.Card.Keywords {
		if k == catalog.KeywordMagnetic {
			continue
		}
		if host.SetKeyword(k, true) {
			granted = append(granted, k)
		}
	}
	if host.Deathrattle == nil && magnet.Deathrattle != nil {
		host.Deathrattle = magnet.Deathrattle.Clone()
	}
	host.Attachments = append(host.Attachments, state.Attachment{
		InstanceID: magnet.InstanceID,
		CardID:     magnet.Card.ID,
		Name:       magnet.Name(),
		Attack:     magnet.Attack,
		Health:     magnet.Health,
		Keywords:   granted,
	})
	ReevaluateEnrage(g, side, host)

	evt := rules.NewEvent(rules.EventMagnetized, host.InstanceID, magnet.InstanceID, side.String())
	evt.CardID = magnet.Card.ID
	evt.Description = fmt.Sprintf("%s magnetized to %s", magnet.Name(), host.Name())
	g.Emit(evt)
	return nil
}
