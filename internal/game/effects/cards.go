package effects

import (
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/game/targeting"
)

// give puts a fresh instance of def in side's hand. A full hand burns it.
func give(ctx *Context, side state.Side, def catalog.Definition, res *Result) {
	if ctx.State.AddToHand(side, ctx.State.NewInstance(def)) {
		res.SideEffects.Drawn++
		return
	}
	res.SideEffects.Burned++
}

func (d *Dispatcher) draw(ctx *Context, eff *catalog.Effect) Result {
	side := affectedSide(ctx, eff)
	n := eff.ValueOr(eff.CountOr(1))
	fromDeck := min(n, len(ctx.State.Player(side).Deck))
	drawn := ctx.State.Draw(side, n)
	res := ok(KindDraw)
	res.SideEffects.Drawn = len(drawn)
	res.SideEffects.Burned = fromDeck - len(drawn)
	return res
}

// drawBoth draws value cards for the acting side, then for its opponent.
func (d *Dispatcher) drawBoth(ctx *Context, eff *catalog.Effect) Result {
	n := eff.ValueOr(eff.CountOr(1))
	res := ok(KindDrawBoth)
	for _, side := range []state.Side{ctx.Side, ctx.Side.Opposite()} {
		fromDeck := min(n, len(ctx.State.Player(side).Deck))
		drawn := ctx.State.Draw(side, n)
		res.SideEffects.Drawn += len(drawn)
		res.SideEffects.Burned += fromDeck - len(drawn)
	}
	return res
}

// drawByType draws the first deck cards matching the descriptor's filter.
func (d *Dispatcher) drawByType(ctx *Context, eff *catalog.Effect) Result {
	p := ctx.player()
	q := eff.Query()
	q.AllowToken = true
	res := ok(KindDrawByType)
	for range eff.ValueOr(eff.CountOr(1)) {
		i := -1
		for j, ci := range p.Deck {
			if q.Matches(&ci.Card) {
				i = j
				break
			}
		}
		if i < 0 {
			break
		}
		ci := p.Deck[i]
		p.Deck = append(p.Deck[:i], p.Deck[i+1:]...)
		evt := rules.NewEvent(rules.EventCardDrawn, ci.InstanceID, p.Hero.ID, ctx.Side.String())
		evt.CardID = ci.Card.ID
		ctx.State.Emit(evt)
		if ctx.State.AddToHand(ctx.Side, ci) {
			res.SideEffects.Drawn++
		} else {
			res.SideEffects.Burned++
		}
	}
	return res
}

func (d *Dispatcher) mill(ctx *Context, eff *catalog.Effect) Result {
	side := affectedSide(ctx, eff)
	ctx.State.Mill(side, eff.ValueOr(1))
	return ok(KindMill)
}

func (d *Dispatcher) discard(ctx *Context, eff *catalog.Effect) Result {
	side := affectedSide(ctx, eff)
	ctx.State.Discard(side, eff.ValueOr(1))
	return ok(KindDiscard)
}

func (d *Dispatcher) addCardToHand(ctx *Context, eff *catalog.Effect) Result {
	def, err := d.lookup(KindAddCardToHand, eff.CardID)
	if err != nil {
		return fail(KindAddCardToHand, err)
	}
	side := affectedSide(ctx, eff)
	res := ok(KindAddCardToHand)
	for range eff.CountOr(1) {
		give(ctx, side, def, &res)
	}
	return res
}

func (d *Dispatcher) addRandomToHand(ctx *Context, eff *catalog.Effect) Result {
	pool, err := d.candidates(eff, "")
	if err != nil {
		return fail(KindAddRandomToHand, err)
	}
	if len(pool) == 0 {
		return fail(KindAddRandomToHand, state.NewError(state.KindNoValidTargets, eff.Type, "empty candidate pool"))
	}
	side := affectedSide(ctx, eff)
	res := ok(KindAddRandomToHand)
	rng := ctx.rng()
	for range eff.CountOr(1) {
		give(ctx, side, pool[rng.IntN(len(pool))], &res)
	}
	return res
}

// copyToHand adds a fresh copy of each targeted minion's card to the acting
// hand. The copy carries printed stats only.
func (d *Dispatcher) copyToHand(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AnyMinion)
	if err != nil {
		return fail(KindCopyToHand, err)
	}
	res := ok(KindCopyToHand)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			continue
		}
		for range eff.CountOr(1) {
			give(ctx, ctx.Side, m.Card, &res)
		}
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

func (d *Dispatcher) shuffleIntoDeck(ctx *Context, eff *catalog.Effect) Result {
	def, err := d.lookup(KindShuffleIntoDeck, eff.CardID)
	if err != nil {
		return fail(KindShuffleIntoDeck, err)
	}
	side := affectedSide(ctx, eff)
	for range eff.CountOr(1) {
		ctx.State.ShuffleIntoDeck(side, ctx.State.NewInstance(def))
	}
	return ok(KindShuffleIntoDeck)
}
