package effects

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

func recordMana(ctx *Context, side state.Side, delta int) {
	p := ctx.State.Player(side)
	ctx.State.Record(rules.EventManaChanged, p.Hero.ID, ctx.sourceID(), side, delta,
		fmt.Sprintf("mana %d/%d (+%d temporary)", p.Mana.Current, p.Mana.Max, p.Mana.Temporary))
}

// alterMana adds value to this turn's temporary mana, to the crystal
// maximum when permanent, or to current mana otherwise.
func (d *Dispatcher) alterMana(ctx *Context, eff *catalog.Effect) Result {
	side := affectedSide(ctx, eff)
	m := &ctx.State.Player(side).Mana
	v := eff.ValueOr(1)
	switch {
	case eff.Temporary:
		m.Temporary += v
	case eff.Permanent:
		m.Max += v
	default:
		m.Current += v
	}
	m.Clamp()
	recordMana(ctx, side, v)
	return ok(KindAlterMana)
}

// giveMana grants crystals. Permanent crystals arrive full.
func (d *Dispatcher) giveMana(ctx *Context, eff *catalog.Effect) Result {
	side := affectedSide(ctx, eff)
	m := &ctx.State.Player(side).Mana
	v := eff.ValueOr(1)
	if eff.Permanent {
		m.Max += v
	}
	m.Current += v
	m.Clamp()
	recordMana(ctx, side, v)
	return ok(KindGiveMana)
}

// setMana sets current mana, and the maximum too unless temporary.
func (d *Dispatcher) setMana(ctx *Context, eff *catalog.Effect) Result {
	side := affectedSide(ctx, eff)
	m := &ctx.State.Player(side).Mana
	v := eff.ValueOr(state.MaxMana)
	before := m.Current
	m.Current = v
	if !eff.Temporary {
		m.Max = v
	}
	m.Clamp()
	recordMana(ctx, side, m.Current-before)
	return ok(KindSetMana)
}

// costReduction makes the next card of the descriptor's race, or any card
// when no race is given, cost value less. It replaces a pending reduction.
func (d *Dispatcher) costReduction(ctx *Context, eff *catalog.Effect) Result {
	side := affectedSide(ctx, eff)
	p := ctx.State.Player(side)
	amount := eff.ValueOr(1)
	if amount <= 0 {
		return ok(KindCostReduce)
	}
	p.Discount = &state.Discount{Amount: amount, Race: eff.Race}
	ctx.State.Record(rules.EventCostReduced, p.Hero.ID, ctx.sourceID(), side, amount, string(eff.Race))
	return ok(KindCostReduce)
}

func (d *Dispatcher) refreshMana(ctx *Context, eff *catalog.Effect) Result {
	side := affectedSide(ctx, eff)
	m := &ctx.State.Player(side).Mana
	before := m.Current
	m.Current = m.Max
	recordMana(ctx, side, m.Current-before)
	return ok(KindRefreshMana)
}
