package keywords

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/counters"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// DamageRequest describes one application of damage.
type DamageRequest struct {
	SourceID   string
	SourceSide state.Side
	TargetID   string
	Amount     int
	Poisonous  bool
	Lifesteal  bool
	// ShieldSnapshot, when set, decides whether a divine shield absorbs the
	// hit instead of the target's live flag. Combat steps capture it at
	// declaration.
	ShieldSnapshot *bool
}

// DamageResult reports what a damage application did.
type DamageResult struct {
	TargetID     string
	Side         state.Side
	Hero         bool
	Absorbed     int // by armor
	Dealt        int // health lost
	ShieldPopped bool
	Poisoned     bool
	Healed       int // lifesteal
	// Frenzy is the frenzy effect unlocked by this hit, for the caller to
	// dispatch.
	Frenzy *catalog.Effect
}

// Total returns the damage the hit did, armor included.
func (r DamageResult) Total() int {
	return r.Absorbed + r.Dealt
}

// DealDamage applies damage to a hero or battlefield minion. Heroes lose
// armor before health; minions lose a divine shield before health. Deaths
// are not collected here: callers run GameState.CollectDead afterwards.
func DealDamage(g *state.GameState, req DamageRequest) (DamageResult, error) {
	loc, ok := g.Locate(req.TargetID)
	if !ok {
		return DamageResult{TargetID: req.TargetID}, state.NewError(state.KindEntityNotFound, "deal damage", "target %s", req.TargetID)
	}
	res := DamageResult{TargetID: req.TargetID, Side: loc.Side, Hero: loc.IsHero()}
	if req.Amount <= 0 {
		return res, nil
	}

	if loc.IsHero() {
		res.Absorbed, res.Dealt = loc.Hero.TakeDamage(req.Amount)
		if res.Absorbed > 0 {
			g.Record(rules.EventArmorAbsorbed, req.TargetID, req.SourceID, loc.Side, res.Absorbed, "")
		}
	} else {
		m := loc.Minion
		res.ShieldPopped, res.Dealt = absorbWithShield(m, req.Amount, req.ShieldSnapshot)
		if res.ShieldPopped {
			g.Record(rules.EventDivineShieldLost, m.InstanceID, req.SourceID, loc.Side, 0,
				fmt.Sprintf("%s lost divine shield", m.Name()))
		}
	}

	if res.Total() > 0 {
		evt := rules.NewEventWithAmount(rules.EventDamageDealt, req.TargetID, req.SourceID, loc.Side.String(), res.Total())
		evt.Flag = res.Hero
		g.Emit(evt)
		g.Player(req.SourceSide).Counters.Increment(counters.DamageDealt, res.Total())
	}

	if !res.Hero {
		m := loc.Minion
		res.Poisoned = applyPoison(g, m, req, res.Dealt)
		ReevaluateEnrage(g, loc.Side, m)
		res.Frenzy = triggerFrenzy(g, loc.Side, m, res.Dealt)
	}
	if req.Lifesteal {
		res.Healed = applyLifesteal(g, req.SourceSide, req.SourceID, res.Total())
	}
	return res, nil
}

// Heal restores health to a hero or battlefield minion and returns the
// amount restored.
func Heal(g *state.GameState, sourceID, targetID string, amount int) (int, error) {
	loc, ok := g.Locate(targetID)
	if !ok {
		return 0, state.NewError(state.KindEntityNotFound, "heal", "target %s", targetID)
	}
	var healed int
	if loc.IsHero() {
		healed = loc.Hero.Heal(amount)
	} else {
		healed = loc.Minion.Heal(amount)
		ReevaluateEnrage(g, loc.Side, loc.Minion)
	}
	if healed > 0 {
		g.Record(rules.EventHealed, targetID, sourceID, loc.Side, healed, "")
	}
	return healed, nil
}
