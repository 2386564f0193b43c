package effects

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	maxDepth        = 16
	maxSettleRounds = 32
)

// Handler resolves one descriptor against a mutation context.
type Handler func(ctx *Context, eff *catalog.Effect) Result

// Dispatcher routes effect descriptors to handlers. Each family has its own
// registry, built per dispatcher so independent engines never share one.
type Dispatcher struct {
	catalog *catalog.Catalog
	pools   *catalog.PoolRegistry
	logger  *zap.Logger

	registries [3]map[Kind]Handler
	scripts    *ScriptRunner
}

// NewDispatcher creates a dispatcher over a catalog. A nil pool registry is
// built from the catalog.
func NewDispatcher(cat *catalog.Catalog, pools *catalog.PoolRegistry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pools == nil {
		pools = catalog.NewPoolRegistry(cat)
	}
	d := &Dispatcher{
		catalog: cat,
		pools:   pools,
		logger:  logger,
	}
	d.scripts = NewScriptRunner(d, logger)
	impl := d.handlers()
	for _, f := range []Family{FamilyBattlecry, FamilyDeathrattle, FamilySpell} {
		d.registries[f] = make(map[Kind]Handler, len(f.Kinds()))
		for _, k := range f.Kinds() {
			if h, found := impl[k]; found {
				d.registries[f][k] = h
			}
		}
	}
	return d
}

// Scripts returns the runner used for unregistered tags.
func (d *Dispatcher) Scripts() *ScriptRunner {
	return d.scripts
}

func (d *Dispatcher) handlers() map[Kind]Handler {
	return map[Kind]Handler{
		KindDamage:            d.damage,
		KindAoeDamage:         d.aoeDamage,
		KindSplashDamage:      d.splashDamage,
		KindSplitDamage:       d.splitDamage,
		KindRandomDamage:      d.randomDamage,
		KindConditionalDamage: d.conditionalDamage,
		KindDestroy:           d.destroy,
		KindDestroyAll:        d.destroyAll,
		KindDestroyRandom:     d.destroyRandom,
		KindFreeze:            d.freeze,
		KindFreezeAll:         d.freezeAll,
		KindFreezeAndDamage:   d.freezeAndDamage,
		KindCleaveDamage:      d.cleaveDamage,
		KindCleaveAndFreeze:   d.cleaveAndFreeze,
		KindDamageRandomEnemy: d.randomDamage,
		KindDestroyTribe:      d.destroyTribe,
		KindDestroyAllMinions: d.destroyAll,

		KindBuff:             d.buff,
		KindBuffAdjacent:     d.buffAdjacent,
		KindBuffAndTaunt:     d.buffAndTaunt,
		KindBuffHero:         d.buffHero,
		KindGiveKeyword:      d.giveKeyword,
		KindDivineShieldGain: d.divineShieldGain,
		KindGiveDivineShield: d.giveDivineShield,
		KindBuffTribe:        d.buffTribe,
		KindDebuff:           d.debuff,
		KindDebuffAttack:     d.debuffAttack,
		KindDoubleHealth:     d.doubleHealth,
		KindSilence:          d.silence,
		KindSetHealth:        d.setHealth,
		KindSwapStats:        d.swapStats,
		KindGainArmor:        d.gainArmor,
		KindHeal:             d.heal,

		KindSummon:          d.summon,
		KindSummonRandom:    d.summonRandom,
		KindSummonFromDeck:  d.summonFromDeck,
		KindSummonJadeGolem: d.summonJadeGolem,
		KindFillBoard:       d.fillBoard,
		KindResurrect:       d.resurrect,
		KindTransform:       d.transform,
		KindTransformRandom: d.transformRandom,
		KindReturnToHand:    d.returnToHand,
		KindMindControl:     d.mindControl,

		KindDraw:            d.draw,
		KindDrawByType:      d.drawByType,
		KindDrawBoth:        d.drawBoth,
		KindMill:            d.mill,
		KindDiscard:         d.discard,
		KindDiscardRandom:   d.discard,
		KindAddCardToHand:   d.addCardToHand,
		KindAddRandomToHand: d.addRandomToHand,
		KindCopyToHand:      d.copyToHand,
		KindCopyCardToHand:  d.copyToHand,
		KindShuffleIntoDeck: d.shuffleIntoDeck,

		KindAlterMana:   d.alterMana,
		KindGiveMana:    d.giveMana,
		KindSetMana:     d.setMana,
		KindRefreshMana: d.refreshMana,
		KindCostReduce:  d.costReduction,
		KindExtraTurn:   d.extraTurn,

		KindEquipWeapon:   d.equipWeapon,
		KindBuffWeapon:    d.buffWeapon,
		KindDestroyWeapon: d.destroyWeapon,

		KindDiscover:            d.discover,
		KindConditionalDiscover: d.conditionalDiscover,
		KindAdapt:               d.adapt,

		KindConditional: d.conditional,
		KindStartQuest:  d.startQuest,
	}
}

// Register installs or replaces a handler in one family.
func (d *Dispatcher) Register(f Family, k Kind, h Handler) {
	d.registries[f][k] = h
}

// Handles reports whether a family has a handler for k.
func (d *Dispatcher) Handles(f Family, k Kind) bool {
	_, found := d.registries[f][k]
	return found
}

// Catalog returns the dispatcher's card catalog.
func (d *Dispatcher) Catalog() *catalog.Catalog {
	return d.catalog
}

// NewContext creates a top-level mutation context.
func NewContext(g *state.GameState, side state.Side, source *state.CardInstance, targetID string) *Context {
	return &Context{
		State:    g,
		Side:     side,
		Source:   source,
		TargetID: targetID,
		Slot:     -1,
		queue:    &triggerQueue{},
	}
}

// Battlecry resolves a battlecry (or combo) descriptor in place.
func (d *Dispatcher) Battlecry(ctx *Context, eff *catalog.Effect) Result {
	return d.resolve(FamilyBattlecry, ctx, eff)
}

// Deathrattle resolves a deathrattle descriptor in place.
func (d *Dispatcher) Deathrattle(ctx *Context, eff *catalog.Effect) Result {
	return d.resolve(FamilyDeathrattle, ctx, eff)
}

// Trigger resolves a minion trigger (frenzy, after attack, end of turn)
// through the battlecry registry.
func (d *Dispatcher) Trigger(ctx *Context, eff *catalog.Effect) Result {
	return d.resolve(FamilyBattlecry, ctx, eff)
}

// Cast describes a spell being cast.
type Cast struct {
	Side     state.Side
	Card     *state.CardInstance
	TargetID string
}

// Spell resolves a spell descriptor against a private copy of g. On success
// it returns the new state; on failure it returns g unchanged apart from
// the failure record in its log.
func (d *Dispatcher) Spell(g *state.GameState, cast Cast, eff *catalog.Effect) (*state.GameState, Result) {
	next := g.Clone()
	ctx := NewContext(next, cast.Side, cast.Card, cast.TargetID)
	ctx.Spell = true
	ctx.family = FamilySpell

	res := d.run(FamilySpell, ctx, eff, false)
	if !res.Success {
		d.recordFailure(g, cast.Side, cast.Card, FamilySpell, res)
		return g, res
	}
	res = d.settleInto(ctx, res)
	return next, res
}

func (d *Dispatcher) resolve(f Family, ctx *Context, eff *catalog.Effect) Result {
	if ctx.queue == nil {
		ctx.queue = &triggerQueue{}
	}
	res := d.run(f, ctx, eff, true)
	if ctx.depth == 0 {
		res = d.settleInto(ctx, res)
	}
	return res
}

func (d *Dispatcher) settleInto(ctx *Context, res Result) Result {
	s := d.Settle(ctx)
	res.Err = multierr.Append(res.Err, s.Err)
	res.SideEffects.merge(s.SideEffects)
	return res
}

// run looks the handler up and resolves eff, chaining Secondary after a
// successful non-conditional effect.
func (d *Dispatcher) run(f Family, ctx *Context, eff *catalog.Effect, record bool) Result {
	if eff == nil {
		return fail("", state.NewError(state.KindMissingRequiredParameter, f.String(), "nil effect"))
	}
	k := Kind(eff.Type)
	if ctx.depth > maxDepth {
		return fail(k, state.NewError(state.KindInvalidAction, f.String(), "effect chain deeper than %d", maxDepth))
	}
	ctx.family = f

	var res Result
	h, found := d.registries[f][k]
	switch {
	case found:
		res = h(ctx, eff)
	case eff.Script != "":
		res = d.scripts.Run(ctx, eff)
	default:
		res = fail(k, state.NewError(state.KindUnknownEffectType, f.String(), "no handler for %q", eff.Type))
	}
	res.Kind = k

	if res.Success && eff.Secondary != nil && !conditionalKinds[k] {
		res = res.Merge(d.run(f, ctx.child(), eff.Secondary, false))
	}
	if !res.Success && record {
		d.recordFailure(ctx.State, ctx.Side, ctx.Source, f, res)
	}
	return res
}

func (d *Dispatcher) recordFailure(g *state.GameState, side state.Side, source *state.CardInstance, f Family, res Result) {
	sourceID, cardID, name := "", 0, ""
	if source != nil {
		sourceID, cardID, name = source.InstanceID, source.Card.ID, source.Name()
	}
	d.logger.Warn("effect failed",
		zap.String("game_id", g.ID),
		zap.String("family", f.String()),
		zap.String("kind", string(res.Kind)),
		zap.String("source", name),
		zap.Error(res.Err),
	)
	evt := rules.NewEvent(rules.EventEffectFailed, "", sourceID, side.String())
	evt.CardID = cardID
	evt.Description = fmt.Sprintf("%s %s: %v", f, res.Kind, res.Err)
	evt.Metadata = map[string]string{"kind": state.KindOf(res.Err).String()}
	g.Emit(evt)
}

// Settle fires queued frenzies, then collects the dead and fires their
// deathrattles, repeating until nothing changes or the game ends.
// Sub-failures are reported in Err without failing the result.
func (d *Dispatcher) Settle(ctx *Context) Result {
	res := ok("")
	if ctx.queue == nil {
		ctx.queue = &triggerQueue{}
	}
	g := ctx.State
	for range maxSettleRounds {
		fired := d.fireFrenzies(ctx, &res)
		deaths := g.CollectDead(ctx.Side)
		if g.CheckHeroes() {
			break
		}
		if len(deaths) == 0 && !fired {
			break
		}
		d.fireDeathrattles(ctx, deaths, &res)
	}
	return res
}

func (d *Dispatcher) fireFrenzies(ctx *Context, acc *Result) bool {
	pending := ctx.queue.frenzy
	ctx.queue.frenzy = nil
	for _, trig := range pending {
		loc, found := ctx.State.Locate(trig.minion)
		if !found || loc.Minion == nil {
			continue
		}
		sub := &Context{
			State:  ctx.State,
			Side:   trig.side,
			Source: loc.Minion,
			Slot:   -1,
			depth:  ctx.depth + 1,
			queue:  ctx.queue,
		}
		r := d.run(FamilyBattlecry, sub, trig.effect, true)
		acc.Err = multierr.Append(acc.Err, r.Err)
		acc.SideEffects.merge(r.SideEffects)
	}
	return len(pending) > 0
}

func (d *Dispatcher) fireDeathrattles(ctx *Context, deaths []state.Death, acc *Result) {
	var offset [2]int
	for _, death := range deaths {
		m := death.Minion
		if m.Deathrattle == nil || m.Silenced {
			continue
		}
		evt := rules.NewEvent(rules.EventDeathrattle, m.InstanceID, m.InstanceID, death.Side.String())
		evt.CardID = m.Card.ID
		ctx.State.Emit(evt)

		sub := &Context{
			State:  ctx.State,
			Side:   death.Side,
			Source: m,
			Slot:   death.Slot + offset[death.Side],
			depth:  ctx.depth + 1,
			queue:  ctx.queue,
		}
		r := d.run(FamilyDeathrattle, sub, m.Deathrattle, true)
		offset[death.Side] += sub.summons
		acc.Err = multierr.Append(acc.Err, r.Err)
		acc.SideEffects.merge(r.SideEffects)
		if ctx.State.Over {
			return
		}
	}
}
