package effects

import (
	"strings"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/counters"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// evaluate checks a named condition against the acting side. Per-turn
// tallies do not yet include the card being played.
func (d *Dispatcher) evaluate(ctx *Context, cond string) (bool, error) {
	p, opp := ctx.player(), ctx.opponent()
	switch {
	case cond == "":
		return true, nil
	case cond == "combo":
		return p.Counters.Get(counters.CardsPlayed) > 0, nil
	case strings.HasPrefix(cond, "holding_"):
		kind := strings.TrimPrefix(cond, "holding_")
		switch catalog.CardType(kind) {
		case catalog.TypeSpell, catalog.TypeMinion, catalog.TypeWeapon:
			return holdsType(p, ctx.sourceID(), catalog.CardType(kind)), nil
		}
		return holdsRace(p, ctx.sourceID(), catalog.Race(kind)), nil
	case strings.HasPrefix(cond, "played_"):
		race := strings.TrimPrefix(cond, "played_")
		return p.Counters.Get(counters.RacePlayed(race)) > 0, nil
	case cond == "board_has_minion":
		return otherMinions(p, ctx.sourceID()) > 0, nil
	case cond == "enemy_board_has_minion":
		return len(opp.Battlefield) > 0, nil
	case cond == "board_empty":
		return otherMinions(p, ctx.sourceID()) == 0, nil
	case cond == "damaged_hero":
		return p.Hero.Damaged(), nil
	case cond == "highlander", cond == "no_duplicates":
		return p.DeckHasNoDuplicates(), nil
	case cond == "weapon_equipped":
		return p.Weapon != nil, nil
	case cond == "spell_in_hand":
		return holdsType(p, ctx.sourceID(), catalog.TypeSpell), nil
	case cond == "empty_hand":
		return len(p.Hand) == 0, nil
	case cond == "full_hand":
		return p.HandFull(), nil
	case cond == "enemy_has_taunt":
		for _, m := range opp.Battlefield {
			if m.Taunt && m.Alive() {
				return true, nil
			}
		}
		return false, nil
	}
	return false, state.NewError(state.KindMissingRequiredParameter, "condition", "unknown condition %q", cond)
}

func otherMinions(p *state.PlayerState, sourceID string) int {
	n := 0
	for _, m := range p.Battlefield {
		if m.InstanceID != sourceID {
			n++
		}
	}
	return n
}

func holdsRace(p *state.PlayerState, sourceID string, race catalog.Race) bool {
	for _, ci := range p.Hand {
		if ci.InstanceID != sourceID && ci.IsMinion() && ci.Card.Race != catalog.RaceNone && ci.Card.Race.Is(race) {
			return true
		}
	}
	return false
}

func holdsType(p *state.PlayerState, sourceID string, t catalog.CardType) bool {
	for _, ci := range p.Hand {
		if ci.InstanceID != sourceID && ci.Card.Type == t {
			return true
		}
	}
	return false
}

// conditional runs its secondary when the condition holds. A false
// condition is a successful no-op. The secondary inherits the parent's
// targeting when it declares none.
func (d *Dispatcher) conditional(ctx *Context, eff *catalog.Effect) Result {
	if eff.Secondary == nil {
		return fail(KindConditional, state.NewError(state.KindMissingRequiredParameter, eff.Type, "secondary"))
	}
	holds, err := d.evaluate(ctx, eff.Condition)
	if err != nil {
		return fail(KindConditional, err)
	}
	if !holds {
		return ok(KindConditional)
	}
	return d.run(ctx.family, ctx.child(), inherit(eff, eff.Secondary), false)
}

func inherit(parent, child *catalog.Effect) *catalog.Effect {
	out := child.Clone()
	if out.TargetType == "" {
		out.TargetType = parent.TargetType
		out.RequiresTarget = parent.RequiresTarget
	}
	return out
}
