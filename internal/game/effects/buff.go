package effects

import (
	"errors"
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/game/targeting"
)

// enchantTargets applies attack, health and keywords to every minion
// target. Hero targets receive the attack as temporary hero attack.
func enchantTargets(ctx *Context, k Kind, targets []targeting.Target, attack, health int, kws []catalog.Keyword, d catalog.Duration) Result {
	res := ok(k)
	for _, t := range targets {
		if t.Hero {
			h := &ctx.State.Player(t.Side).Hero
			h.Attack += attack
			ctx.State.Record(rules.EventBuffed, t.ID, ctx.sourceID(), t.Side, attack, "hero attack")
			res.SideEffects.Targets = append(res.SideEffects.Targets, t.ID)
			continue
		}
		m, err := minionAt(ctx, t)
		if err != nil {
			if errors.Is(err, state.ErrEntityNotFound) {
				continue
			}
			return fail(k, err)
		}
		ctx.State.Enchant(m, ctx.sourceID(), attack, health, kws, d)
		keywords.ReevaluateEnrage(ctx.State, t.Side, m)
		evt := rules.NewEventWithAmount(rules.EventBuffed, m.InstanceID, ctx.sourceID(), t.Side.String(), attack)
		evt.Description = fmt.Sprintf("%s +%d/+%d", m.Name(), attack, health)
		ctx.State.Emit(evt)
		for _, kw := range kws {
			evt := rules.NewEvent(rules.EventKeywordGained, m.InstanceID, ctx.sourceID(), t.Side.String())
			evt.Data = string(kw)
			ctx.State.Emit(evt)
		}
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

func (d *Dispatcher) buff(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.Self)
	if err != nil {
		return fail(KindBuff, err)
	}
	return enchantTargets(ctx, KindBuff, targets, eff.AttackOr(0), eff.HealthOr(0), eff.Keywords, eff.DurationOr())
}

func (d *Dispatcher) buffAdjacent(ctx *Context, eff *catalog.Effect) Result {
	targets := targeting.AdjacentTo(ctx.State, ctx.sourceID())
	return enchantTargets(ctx, KindBuffAdjacent, targets, eff.AttackOr(0), eff.HealthOr(0), eff.Keywords, eff.DurationOr())
}

func (d *Dispatcher) buffAndTaunt(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.Self)
	if err != nil {
		return fail(KindBuffAndTaunt, err)
	}
	kws := append([]catalog.Keyword{catalog.KeywordTaunt}, eff.Keywords...)
	return enchantTargets(ctx, KindBuffAndTaunt, targets, eff.AttackOr(0), eff.HealthOr(0), kws, eff.DurationOr())
}

// buffHero grants the acting hero attack for this turn and optional armor.
func (d *Dispatcher) buffHero(ctx *Context, eff *catalog.Effect) Result {
	p := ctx.player()
	res := ok(KindBuffHero)
	if attack := eff.AttackOr(0); attack != 0 {
		p.Hero.Attack += attack
		ctx.State.Record(rules.EventBuffed, p.Hero.ID, ctx.sourceID(), ctx.Side, attack, "hero attack this turn")
	}
	if armor := eff.HealthOr(0); armor > 0 {
		p.Hero.Armor += armor
		ctx.State.Record(rules.EventArmorGained, p.Hero.ID, ctx.sourceID(), ctx.Side, armor, "")
	}
	res.SideEffects.Targets = []string{p.Hero.ID}
	return res
}

func (d *Dispatcher) giveKeyword(ctx *Context, eff *catalog.Effect) Result {
	if len(eff.Keywords) == 0 {
		return fail(KindGiveKeyword, state.NewError(state.KindMissingRequiredParameter, eff.Type, "keywords"))
	}
	targets, err := resolveTargets(ctx, eff, targeting.Self)
	if err != nil {
		return fail(KindGiveKeyword, err)
	}
	return enchantTargets(ctx, KindGiveKeyword, targets, 0, 0, eff.Keywords, eff.DurationOr())
}

// buffTribe enchants the acting side's other minions of the descriptor's
// race. Value stands in for attack when attack is unset.
func (d *Dispatcher) buffTribe(ctx *Context, eff *catalog.Effect) Result {
	if eff.Race == catalog.RaceNone {
		return fail(KindBuffTribe, state.NewError(state.KindMissingRequiredParameter, eff.Type, "race"))
	}
	var targets []targeting.Target
	for _, m := range ctx.player().Battlefield {
		if m.InstanceID == ctx.sourceID() || !m.Alive() || !m.Card.Race.Is(eff.Race) {
			continue
		}
		targets = append(targets, targeting.Target{ID: m.InstanceID, Side: ctx.Side})
	}
	return enchantTargets(ctx, KindBuffTribe, targets, eff.AttackOr(eff.ValueOr(0)), eff.HealthOr(0), eff.Keywords, eff.DurationOr())
}

func (d *Dispatcher) debuff(ctx *Context, eff *catalog.Effect) Result {
	return lowerStats(ctx, KindDebuff, eff)
}

func (d *Dispatcher) debuffAttack(ctx *Context, eff *catalog.Effect) Result {
	return lowerStats(ctx, KindDebuffAttack, eff)
}

// lowerStats reduces attack by attack (1 when neither stat is given) and
// health by health, as an enchantment that silence removes. Attack stops at
// 0 and health at 1. A value sets attack outright instead.
func lowerStats(ctx *Context, k Kind, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.EnemyMinion)
	if err != nil {
		return fail(k, err)
	}
	down := eff.AttackOr(0)
	if eff.Attack == nil && eff.Health == nil {
		down = 1
	}
	down, healthDown := max(down, -down), max(eff.HealthOr(0), -eff.HealthOr(0))
	if k == KindDebuffAttack {
		healthDown = 0
	}
	res := ok(k)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			continue
		}
		attack := -min(down, m.Attack)
		if eff.Value != nil {
			attack = max(0, *eff.Value) - m.Attack
		}
		health := -min(healthDown, max(0, m.Health-1))
		ctx.State.Enchant(m, ctx.sourceID(), attack, health, nil, eff.DurationOr())
		keywords.ReevaluateEnrage(ctx.State, t.Side, m)
		ctx.State.Record(rules.EventStatsSet, m.InstanceID, ctx.sourceID(), t.Side, attack,
			fmt.Sprintf("%s is now %d/%d", m.Name(), m.Attack, m.Health))
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

// doubleHealth doubles a minion's current health. Its maximum rises by the
// same amount.
func (d *Dispatcher) doubleHealth(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AnyMinion)
	if err != nil {
		return fail(KindDoubleHealth, err)
	}
	res := ok(KindDoubleHealth)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil || m.Health <= 0 {
			continue
		}
		gain := m.Health
		ctx.State.Enchant(m, ctx.sourceID(), 0, gain, nil, eff.DurationOr())
		keywords.ReevaluateEnrage(ctx.State, t.Side, m)
		ctx.State.Record(rules.EventBuffed, m.InstanceID, ctx.sourceID(), t.Side, gain,
			fmt.Sprintf("%s health doubled to %d", m.Name(), m.Health))
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

func (d *Dispatcher) divineShieldGain(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.Self)
	if err != nil {
		return fail(KindDivineShieldGain, err)
	}
	return shieldTargets(ctx, KindDivineShieldGain, targets)
}

// giveDivineShield shields the acting side's minions unless a target tag
// says otherwise. Deathrattles use it, where the source itself is gone.
func (d *Dispatcher) giveDivineShield(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AllFriendlyMinions)
	if err != nil {
		return fail(KindGiveDivineShield, err)
	}
	return shieldTargets(ctx, KindGiveDivineShield, targets)
}

func shieldTargets(ctx *Context, k Kind, targets []targeting.Target) Result {
	res := ok(k)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			continue
		}
		if keywords.GrantDivineShield(m) {
			evt := rules.NewEvent(rules.EventKeywordGained, m.InstanceID, ctx.sourceID(), t.Side.String())
			evt.Data = string(catalog.KeywordDivineShield)
			ctx.State.Emit(evt)
		}
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

func (d *Dispatcher) silence(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AnyMinion)
	if err != nil {
		return fail(KindSilence, err)
	}
	res := ok(KindSilence)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			continue
		}
		keywords.Silence(ctx.State, t.Side, m, ctx.sourceID())
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

// setHealth sets current and maximum health.
func (d *Dispatcher) setHealth(ctx *Context, eff *catalog.Effect) Result {
	value := eff.ValueOr(1)
	targets, err := resolveTargets(ctx, eff, targeting.AllMinions)
	if err != nil {
		return fail(KindSetHealth, err)
	}
	res := ok(KindSetHealth)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			continue
		}
		m.MaxHealth, m.Health = value, value
		keywords.ReevaluateEnrage(ctx.State, t.Side, m)
		ctx.State.Record(rules.EventStatsSet, m.InstanceID, ctx.sourceID(), t.Side, value, "health set")
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

// swapStats swaps a minion's attack and health.
func (d *Dispatcher) swapStats(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.AnyMinion)
	if err != nil {
		return fail(KindSwapStats, err)
	}
	res := ok(KindSwapStats)
	for _, t := range targets {
		m, err := minionAt(ctx, t)
		if err != nil {
			continue
		}
		attack := m.Attack
		m.Attack = m.Health
		m.Health, m.MaxHealth = attack, attack
		m.Enraged = false
		ctx.State.Record(rules.EventStatsSet, m.InstanceID, ctx.sourceID(), t.Side, 0,
			fmt.Sprintf("%s is now %d/%d", m.Name(), m.Attack, m.Health))
		res.SideEffects.Targets = append(res.SideEffects.Targets, m.InstanceID)
	}
	return res
}

func (d *Dispatcher) gainArmor(ctx *Context, eff *catalog.Effect) Result {
	side := affectedSide(ctx, eff)
	h := &ctx.State.Player(side).Hero
	amount := eff.ValueOr(0)
	if amount <= 0 {
		return ok(KindGainArmor)
	}
	h.Armor += amount
	ctx.State.Record(rules.EventArmorGained, h.ID, ctx.sourceID(), side, amount, "")
	res := ok(KindGainArmor)
	res.SideEffects.Targets = []string{h.ID}
	return res
}

func (d *Dispatcher) heal(ctx *Context, eff *catalog.Effect) Result {
	targets, err := resolveTargets(ctx, eff, targeting.FriendlyHero)
	if err != nil {
		return fail(KindHeal, err)
	}
	res := ok(KindHeal)
	for _, t := range targets {
		healed, err := keywords.Heal(ctx.State, ctx.sourceID(), t.ID, eff.ValueOr(0))
		if err != nil {
			continue
		}
		res.SideEffects.Healed += healed
		res.SideEffects.Targets = append(res.SideEffects.Targets, t.ID)
	}
	return res
}
