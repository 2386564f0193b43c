package effects

import (
	"errors"
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/game/targeting"
)

// primaryAmount reads the damage amount of a damage-kind descriptor: value,
// or damage when value is absent.
func primaryAmount(eff *catalog.Effect) int {
	return eff.ValueOr(eff.DamageOr(0))
}

// hitAll deals amount to every target. Targets that vanished mid-chain are
// skipped.
func hitAll(ctx *Context, k Kind, targets []targeting.Target, amount int) Result {
	res := ok(k)
	for _, t := range targets {
		dr, err := ctx.damage(t.ID, amount)
		if err != nil {
			if errors.Is(err, state.ErrEntityNotFound) {
				continue
			}
			return fail(k, err)
		}
		res.SideEffects.Damage += dr.Total()
		res.SideEffects.Healed += dr.Healed
		res.SideEffects.Targets = append(res.SideEffects.Targets, t.ID)
	}
	return res
}

func (d *Dispatcher) damage(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.None)
	if err != nil {
		return fail(KindDamage, err)
	}
	return hitAll(ctx, KindDamage, targets, ctx.spellAmount(primaryAmount(eff)))
}

func (d *Dispatcher) aoeDamage(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AllEnemyMinions)
	if err != nil {
		return fail(KindAoeDamage, err)
	}
	return hitAll(ctx, KindAoeDamage, targets, ctx.spellAmount(primaryAmount(eff)))
}

// splashDamage deals value to the chosen minion and damage to its
// neighbours, which are fixed before any damage lands.
func (d *Dispatcher) splashDamage(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.EnemyMinion)
	if err != nil {
		return fail(KindSplashDamage, err)
	}
	if len(targets) == 0 {
		return ok(KindSplashDamage)
	}
	primary := targets[0]
	neighbours := targeting.AdjacentTo(ctx.State, primary.ID)
	res := hitAll(ctx, KindSplashDamage, []targeting.Target{primary}, ctx.spellAmount(eff.ValueOr(0)))
	if !res.Success {
		return res
	}
	return res.Merge(hitAll(ctx, KindSplashDamage, neighbours, ctx.spellAmount(eff.DamageOr(0))))
}

// splitDamage fires single points of damage, each at a random character
// still standing in the set. At least one point is dealt.
func (d *Dispatcher) splitDamage(ctx *Context, eff *catalog.Effect) Result {
	tag := targeting.TargetType(eff.TargetType)
	if tag == "" {
		tag = targeting.AllEnemyCharacters
	}
	res := ok(KindSplitDamage)
	shots := max(1, ctx.spellAmount(primaryAmount(eff)))
	for range shots {
		sel, err := targeting.Resolve(ctx.State, ctx.targetingSource(), tag)
		if err != nil {
			return fail(KindSplitDamage, err)
		}
		var live []targeting.Target
		for _, t := range sel.Targets {
			if t.Hero && ctx.State.Player(t.Side).Hero.Health <= 0 {
				continue
			}
			if !t.Hero {
				if m := ctx.State.Player(t.Side).Minion(t.ID); m == nil || !m.Alive() {
					continue
				}
			}
			live = append(live, t)
		}
		if len(live) == 0 {
			break
		}
		res = res.Merge(hitAll(ctx, KindSplitDamage, pickRandom(ctx, live, 1), 1))
	}
	return res
}

// randomDamage deals value to count distinct random targets.
func (d *Dispatcher) randomDamage(ctx *Context, eff *catalog.Effect) Result {
	tag := targeting.TargetType(eff.TargetType)
	if tag == "" {
		tag = targeting.AllEnemyCharacters
	}
	sel, err := targeting.Resolve(ctx.State, ctx.targetingSource(), tag)
	if err != nil {
		return fail(KindRandomDamage, err)
	}
	if sel.Empty() {
		if err := requiredTargets(eff, tag); err != nil {
			return fail(KindRandomDamage, err)
		}
		return ok(KindRandomDamage)
	}
	picked := pickRandom(ctx, sel.Targets, eff.CountOr(1))
	return hitAll(ctx, KindRandomDamage, picked, ctx.spellAmount(primaryAmount(eff)))
}

// conditionalDamage deals value, or damage when the condition holds.
func (d *Dispatcher) conditionalDamage(ctx *Context, eff *catalog.Effect) Result {
	holds, err := d.evaluate(ctx, eff.Condition)
	if err != nil {
		return fail(KindConditionalDamage, err)
	}
	amount := eff.ValueOr(0)
	if holds {
		amount = eff.DamageOr(amount)
	}
	targets, err := resolveTargets(ctx, eff, targeting.None)
	if err != nil {
		return fail(KindConditionalDamage, err)
	}
	return hitAll(ctx, KindConditionalDamage, targets, ctx.spellAmount(amount))
}

func markDestroyed(ctx *Context, k Kind, targets []targeting.Target) Result {
	res := ok(k)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			if errors.Is(err, state.ErrEntityNotFound) {
				continue
			}
			return fail(k, err)
		}
		m.Destroyed = true
		ctx.State.Record(rules.EventMinionDestroy, m.InstanceID, ctx.sourceID(), t.Side, 0,
			fmt.Sprintf("%s destroyed", m.Name()))
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

func (d *Dispatcher) destroy(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.EnemyMinion)
	if err != nil {
		return fail(KindDestroy, err)
	}
	return markDestroyed(ctx, KindDestroy, targets)
}

func (d *Dispatcher) destroyAll(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AllMinions)
	if err != nil {
		return fail(KindDestroyAll, err)
	}
	return markDestroyed(ctx, KindDestroyAll, targets)
}

// destroyTribe destroys every minion of the descriptor's race, on both
// boards unless a target tag narrows it.
func (d *Dispatcher) destroyTribe(ctx *Context, eff *catalog.Effect) Result {
	if eff.Race == catalog.RaceNone {
		return fail(KindDestroyTribe, state.NewError(state.KindMissingRequiredParameter, eff.Type, "race"))
	}
	targets, err := resolveTargets(ctx, eff, targeting.AllMinions)
	if err != nil {
		return fail(KindDestroyTribe, err)
	}
	var tribe []targeting.Target
	for _, t := range targets {
		if m := ctx.State.Player(t.Side).Minion(t.ID); m != nil && m.Card.Race.Is(eff.Race) {
			tribe = append(tribe, t)
		}
	}
	return markDestroyed(ctx, KindDestroyTribe, tribe)
}

func (d *Dispatcher) destroyRandom(ctx *Context, eff *catalog.Effect) Result {
	tag := targeting.TargetType(eff.TargetType)
	if tag == "" {
		tag = targeting.AllEnemyMinions
	}
	sel, err := targeting.Resolve(ctx.State, ctx.targetingSource(), tag)
	if err != nil {
		return fail(KindDestroyRandom, err)
	}
	return markDestroyed(ctx, KindDestroyRandom, pickRandom(ctx, sel.Minions(), eff.CountOr(1)))
}

// freeze freezes the targets, dealing damage first when the descriptor
// carries an explicit damage amount.
func (d *Dispatcher) freeze(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.None)
	if err != nil {
		return fail(KindFreeze, err)
	}
	res := ok(KindFreeze)
	if eff.HasDamage() {
		res = hitAll(ctx, KindFreeze, targets, ctx.spellAmount(eff.DamageOr(0)))
		if !res.Success {
			return res
		}
	}
	frozen := freezeTargets(ctx, targets)
	if !eff.HasDamage() {
		res.SideEffects.Targets = frozen
	}
	return res
}

// freezeTargets freezes every target still in play and returns their ids.
func freezeTargets(ctx *Context, targets []targeting.Target) []string {
	turn := ctx.State.TurnNumber()
	var frozen []string
	for _, t := range targets {
		if t.Hero {
			h := &ctx.State.Player(t.Side).Hero
			h.Frozen, h.FrozenOnTurn = true, turn
		} else {
			m := ctx.State.Player(t.Side).Minion(t.ID)
			if m == nil {
				continue
			}
			m.Frozen, m.FrozenOnTurn = true, turn
		}
		ctx.State.Record(rules.EventFrozen, t.ID, ctx.sourceID(), t.Side, 0, "")
		frozen = append(frozen, t.ID)
	}
	return frozen
}

func (d *Dispatcher) freezeAll(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AllEnemyMinions)
	if err != nil {
		return fail(KindFreezeAll, err)
	}
	res := ok(KindFreezeAll)
	res.SideEffects.Targets = freezeTargets(ctx, targets)
	return res
}

// freezeAndDamage freezes the targets, then damages them.
func (d *Dispatcher) freezeAndDamage(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AllEnemyMinions)
	if err != nil {
		return fail(KindFreezeAndDamage, err)
	}
	freezeTargets(ctx, targets)
	return hitAll(ctx, KindFreezeAndDamage, targets, ctx.spellAmount(primaryAmount(eff)))
}

// cleaveDamage deals value to the chosen minion and to the minions beside it.
func (d *Dispatcher) cleaveDamage(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.EnemyMinion)
	if err != nil {
		return fail(KindCleaveDamage, err)
	}
	if len(targets) == 0 {
		return ok(KindCleaveDamage)
	}
	hit := append(targets[:1:1], targeting.AdjacentTo(ctx.State, targets[0].ID)...)
	return hitAll(ctx, KindCleaveDamage, hit, ctx.spellAmount(primaryAmount(eff)))
}

// cleaveAndFreeze deals value to the chosen minion and freezes the minions
// beside it. The neighbours are fixed before the damage lands.
func (d *Dispatcher) cleaveAndFreeze(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.EnemyMinion)
	if err != nil {
		return fail(KindCleaveAndFreeze, err)
	}
	if len(targets) == 0 {
		return ok(KindCleaveAndFreeze)
	}
	neighbours := targeting.AdjacentTo(ctx.State, targets[0].ID)
	res := hitAll(ctx, KindCleaveAndFreeze, targets[:1], ctx.spellAmount(primaryAmount(eff)))
	if !res.Success {
		return res
	}
	res.SideEffects.Targets = append(res.SideEffects.Targets, freezeTargets(ctx, neighbours)...)
	return res
}
