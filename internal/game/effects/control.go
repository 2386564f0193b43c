package effects

import (
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/game/targeting"
)

// ChangeControl moves an enemy minion to the end of side's board. The
// minion arrives summoning sick and leaves its colossal group. It reports
// false, changing nothing, when the minion is not on the opposing board or
// side's board is full.
func ChangeControl(g *state.GameState, side state.Side, m *state.CardInstance, sourceID string) bool {
	from, to := g.Player(side.Opposite()), g.Player(side)
	if to.BoardFull() || from.MinionIndex(m.InstanceID) < 0 {
		return false
	}
	from.RemoveMinion(m.InstanceID)
	g.DetachColossal(m)
	m.SummoningSick = true
	m.AttacksThisTurn = 0
	to.Battlefield = append(to.Battlefield, m)
	g.Record(rules.EventControlChanged, m.InstanceID, sourceID, side, 0, m.Name())
	return true
}

// mindControl takes the targeted enemy minion. Deathrattles take a random
// one when the descriptor names no target.
func (d *Dispatcher) mindControl(ctx *Context, eff *catalog.Effect) Result {
	fallback := targeting.EnemyMinion
	if ctx.family == FamilyDeathrattle {
		fallback = targeting.RandomEnemyMinion
	}
	targets, err := resolveTargets(ctx, eff, fallback)
	if err != nil {
		return fail(KindMindControl, err)
	}
	res := ok(KindMindControl)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			continue
		}
		if ChangeControl(ctx.State, ctx.Side, m, ctx.sourceID()) {
			res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
		}
	}
	return res
}

// extraTurn queues another turn for the acting side once this one ends.
func (d *Dispatcher) extraTurn(ctx *Context, eff *catalog.Effect) Result {
	p := ctx.player()
	p.ExtraTurns++
	ctx.State.Record(rules.EventExtraTurn, p.Hero.ID, ctx.sourceID(), ctx.Side, p.ExtraTurns, "queued")
	return ok(KindExtraTurn)
}
