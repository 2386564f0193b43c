package effects

import (
	"errors"
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/counters"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/game/targeting"
)

// place summons def for side. A full board is not an error: the summon is
// dropped and place reports nil.
func (d *Dispatcher) place(ctx *Context, side state.Side, def catalog.Definition, stats *catalog.StatLine) (*state.CardInstance, error) {
	if ctx.State.Player(side).BoardFull() {
		return nil, nil
	}
	if stats != nil {
		def.Attack, def.Health = stats.Attack, stats.Health
	}
	pos := -1
	if side == ctx.Side {
		pos = ctx.summonPos()
	}
	ci, err := keywords.Summon(ctx.State, side, def, pos)
	if err != nil {
		if errors.Is(err, state.ErrZoneFull) {
			return nil, nil
		}
		return nil, err
	}
	if side == ctx.Side {
		ctx.summons++
	}
	d.AdvanceQuest(ctx.State, side, state.QuestSummonRace, def.Race)
	return ci, nil
}

func summoned(res *Result, ci *state.CardInstance) {
	res.SideEffects.SummonedCount++
	res.SideEffects.Summoned = append(res.SideEffects.Summoned, ci.InstanceID)
}

func (d *Dispatcher) lookup(k Kind, id *int) (catalog.Definition, error) {
	if id == nil {
		return catalog.Definition{}, state.NewError(state.KindMissingRequiredParameter, string(k), "card_id")
	}
	def, found := d.catalog.GetByID(*id)
	if !found {
		return catalog.Definition{}, state.NewError(state.KindEntityNotFound, string(k), "card %d", *id)
	}
	return def, nil
}

func (d *Dispatcher) summon(ctx *Context, eff *catalog.Effect) Result {
	def, err := d.lookup(KindSummon, eff.CardID)
	if err != nil {
		return fail(KindSummon, err)
	}
	side := affectedSide(ctx, eff)
	res := ok(KindSummon)
	for range eff.CountOr(1) {
		ci, err := d.place(ctx, side, def, eff.Stats)
		if err != nil {
			return fail(KindSummon, err)
		}
		if ci == nil {
			break
		}
		summoned(&res, ci)
	}
	return res
}

// candidates returns the definitions a random effect draws from: the
// listed ids, a named pool, or the descriptor's filter.
func (d *Dispatcher) candidates(eff *catalog.Effect, forceType catalog.CardType) ([]catalog.Definition, error) {
	if len(eff.CardIDs) > 0 {
		var out []catalog.Definition
		for _, id := range eff.CardIDs {
			if def, found := d.catalog.GetByID(id); found {
				out = append(out, def)
			}
		}
		return out, nil
	}
	if eff.Pool != "" {
		return d.pools.Candidates(eff.Pool)
	}
	q := eff.Query()
	if forceType != "" {
		q.Type = forceType
	}
	return d.catalog.Filter(q), nil
}

func (d *Dispatcher) summonRandom(ctx *Context, eff *catalog.Effect) Result {
	pool, err := d.candidates(eff, catalog.TypeMinion)
	if err != nil {
		return fail(KindSummonRandom, err)
	}
	if len(pool) == 0 {
		return fail(KindSummonRandom, state.NewError(state.KindNoValidTargets, eff.Type, "empty candidate pool"))
	}
	side := affectedSide(ctx, eff)
	res := ok(KindSummonRandom)
	rng := ctx.rng()
	for range eff.CountOr(1) {
		ci, err := d.place(ctx, side, pool[rng.IntN(len(pool))], eff.Stats)
		if err != nil {
			return fail(KindSummonRandom, err)
		}
		if ci == nil {
			break
		}
		summoned(&res, ci)
	}
	return res
}

// summonFromDeck pulls up to count matching minions out of the deck onto
// the board. Fewer matches or board space is a partial success.
func (d *Dispatcher) summonFromDeck(ctx *Context, eff *catalog.Effect) Result {
	p := ctx.player()
	q := eff.Query()
	q.Type = catalog.TypeMinion
	q.AllowToken = true
	res := ok(KindSummonFromDeck)
	rng := ctx.rng()
	for range eff.CountOr(1) {
		if p.BoardFull() {
			break
		}
		var matches []int
		for i, ci := range p.Deck {
			if q.Matches(&ci.Card) {
				matches = append(matches, i)
			}
		}
		if len(matches) == 0 {
			break
		}
		i := matches[rng.IntN(len(matches))]
		ci := p.Deck[i]
		p.Deck = append(p.Deck[:i], p.Deck[i+1:]...)
		if _, err := keywords.Enter(ctx.State, ctx.Side, ci, ctx.summonPos()); err != nil {
			return fail(KindSummonFromDeck, err)
		}
		if eff.Stats != nil {
			// Recorded as an enchantment so a silence restores the printed stats.
			ctx.State.Enchant(ci, ctx.sourceID(), eff.Stats.Attack-ci.Attack, eff.Stats.Health-ci.MaxHealth, nil, catalog.DurationPermanent)
		}
		ctx.summons++
		d.AdvanceQuest(ctx.State, ctx.Side, state.QuestSummonRace, ci.Card.Race)
		summoned(&res, ci)
	}
	return res
}

// summonJadeGolem summons a golem one size larger than the last. Size and
// attack/health are capped at 30; cost at 10. A full board summons nothing
// and does not advance the counter.
func (d *Dispatcher) summonJadeGolem(ctx *Context, eff *catalog.Effect) Result {
	res := ok(KindSummonJadeGolem)
	p := ctx.player()
	for range eff.CountOr(1) {
		if p.BoardFull() {
			break
		}
		size := min(p.Counters.Increment(counters.JadeGolem, 1), state.MaxJadeGolemSize)
		def, found := d.catalog.GetByID(catalog.JadeGolemID)
		if !found {
			def = catalog.Definition{ID: catalog.JadeGolemID, Name: "Jade Golem", Type: catalog.TypeMinion, Class: catalog.ClassNeutral, Token: true}
		}
		def.Attack, def.Health, def.Cost = size, size, min(size, state.MaxMana)
		def.Name = fmt.Sprintf("Jade Golem %d/%d", size, size)

		ci, err := d.place(ctx, ctx.Side, def, nil)
		if err != nil {
			return fail(KindSummonJadeGolem, err)
		}
		if ci == nil {
			break
		}
		ctx.State.Record(rules.EventJadeGolem, ci.InstanceID, ctx.sourceID(), ctx.Side, size, def.Name)
		summoned(&res, ci)
	}
	return res
}

func (d *Dispatcher) fillBoard(ctx *Context, eff *catalog.Effect) Result {
	def, err := d.lookup(KindFillBoard, eff.CardID)
	if err != nil {
		return fail(KindFillBoard, err)
	}
	side := affectedSide(ctx, eff)
	res := ok(KindFillBoard)
	for !ctx.State.Player(side).BoardFull() {
		ci, err := d.place(ctx, side, def, eff.Stats)
		if err != nil {
			return fail(KindFillBoard, err)
		}
		if ci == nil {
			break
		}
		summoned(&res, ci)
	}
	return res
}

// resurrect summons fresh copies of random friendly minions that died this
// game, each distinct card at most once.
func (d *Dispatcher) resurrect(ctx *Context, eff *catalog.Effect) Result {
	p := ctx.player()
	seen := make(map[int]bool)
	var dead []catalog.Definition
	for _, ci := range p.Graveyard {
		if !ci.IsMinion() || seen[ci.Card.ID] || ci.InstanceID == ctx.sourceID() {
			continue
		}
		seen[ci.Card.ID] = true
		dead = append(dead, ci.Card)
	}
	res := ok(KindResurrect)
	if len(dead) == 0 {
		return res
	}
	perm := ctx.rng().Perm(len(dead))
	for _, i := range perm[:min(eff.CountOr(1), len(dead))] {
		ci, err := d.place(ctx, ctx.Side, dead[i], eff.Stats)
		if err != nil {
			return fail(KindResurrect, err)
		}
		if ci == nil {
			break
		}
		ctx.State.Record(rules.EventResurrected, ci.InstanceID, ctx.sourceID(), ctx.Side, 0, ci.Name())
		summoned(&res, ci)
	}
	return res
}

// transformInto replaces a minion in place with a fresh instance of def
// that keeps the instance id and board slot. Enchantments, keywords and
// damage do not carry over.
func transformInto(ctx *Context, side state.Side, m *state.CardInstance, def catalog.Definition) *state.CardInstance {
	p := ctx.State.Player(side)
	idx := p.MinionIndex(m.InstanceID)
	if idx < 0 {
		return nil
	}
	ctx.State.DetachColossal(m)
	next := state.NewInstance(m.InstanceID, def)
	keywords.Initialize(next)
	next.SummoningSick = m.SummoningSick
	next.AttacksThisTurn = m.AttacksThisTurn
	p.Battlefield[idx] = next

	evt := rules.NewEvent(rules.EventTransformed, m.InstanceID, ctx.sourceID(), side.String())
	evt.CardID = def.ID
	evt.Description = fmt.Sprintf("%s transformed into %s", m.Name(), def.Name)
	ctx.State.Emit(evt)
	return next
}

func (d *Dispatcher) transform(ctx *Context, eff *catalog.Effect) Result {
	def, err := d.lookup(KindTransform, eff.CardID)
	if err != nil {
		return fail(KindTransform, err)
	}
	if !def.IsMinion() {
		return fail(KindTransform, state.NewError(state.KindInvalidMinionOperation, eff.Type, "%s is not a minion", def.Name))
	}
	targets, err := resolveTargets(ctx, eff, targeting.AnyMinion)
	if err != nil {
		return fail(KindTransform, err)
	}
	res := ok(KindTransform)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			if errors.Is(err, state.ErrEntityNotFound) {
				continue
			}
			return fail(KindTransform, err)
		}
		if next := transformInto(ctx, t.Side, m, def); next != nil {
			res.SideEffects.Targets = append(res.SideEffects.Targets, next.InstanceID)
		}
	}
	return res
}

// transformRandom turns each target into a random minion costing value more.
func (d *Dispatcher) transformRandom(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AllFriendlyMinions)
	if err != nil {
		return fail(KindTransformRandom, err)
	}
	res := ok(KindTransformRandom)
	delta := eff.ValueOr(0)
	rng := ctx.rng()
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			continue
		}
		cost := m.Card.Cost + delta
		pool := d.catalog.Filter(catalog.Query{Type: catalog.TypeMinion, MinCost: &cost, MaxCost: &cost})
		if len(pool) == 0 {
			continue
		}
		if next := transformInto(ctx, t.Side, m, pool[rng.IntN(len(pool))]); next != nil {
			res.SideEffects.Targets = append(res.SideEffects.Targets, next.InstanceID)
		}
	}
	return res
}

// returnToHand bounces minions to their owner's hand as fresh copies. A
// full hand destroys the returned card.
func (d *Dispatcher) returnToHand(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.EnemyMinion)
	if err != nil {
		return fail(KindReturnToHand, err)
	}
	res := ok(KindReturnToHand)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			continue
		}
		ReturnMinion(ctx.State, t.Side, m, ctx.sourceID())
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

// ReturnMinion takes a minion (and any colossal parts' back-references) off
// the board and puts a fresh copy of it in its owner's hand.
func ReturnMinion(g *state.GameState, side state.Side, m *state.CardInstance, sourceID string) bool {
	p := g.Player(side)
	if _, idx := p.RemoveMinion(m.InstanceID); idx < 0 {
		return false
	}
	g.DetachColossal(m)
	g.Record(rules.EventMinionReturned, m.InstanceID, sourceID, side, 0, m.Name())
	return g.AddToHand(side, state.NewInstance(m.InstanceID, m.Card))
}
