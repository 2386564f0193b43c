package effects

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// EquipWeapon equips def on side's hero, destroying any equipped weapon.
func EquipWeapon(g *state.GameState, side state.Side, def catalog.Definition, sourceID string) *state.Weapon {
	p := g.Player(side)
	if p.Weapon != nil {
		DestroyWeapon(g, side, sourceID)
	}
	w := &state.Weapon{
		InstanceID: g.NewInstanceID(),
		Card:       def.Clone(),
		Attack:     def.Attack,
		Durability: def.Durability,
		Lifesteal:  def.HasKeyword(catalog.KeywordLifesteal),
		Poisonous:  def.HasKeyword(catalog.KeywordPoisonous),
	}
	p.Weapon = w
	evt := rules.NewEvent(rules.EventWeaponEquipped, w.InstanceID, sourceID, side.String())
	evt.CardID = def.ID
	evt.Description = fmt.Sprintf("%s equipped (%d/%d)", def.Name, w.Attack, w.Durability)
	g.Emit(evt)
	return w
}

// DestroyWeapon removes side's weapon. It reports false when none was equipped.
func DestroyWeapon(g *state.GameState, side state.Side, sourceID string) bool {
	p := g.Player(side)
	if p.Weapon == nil {
		return false
	}
	w := p.Weapon
	p.Weapon = nil
	evt := rules.NewEvent(rules.EventWeaponDestroyed, w.InstanceID, sourceID, side.String())
	evt.CardID = w.Card.ID
	g.Emit(evt)
	return true
}

func (d *Dispatcher) equipWeapon(ctx *Context, eff *catalog.Effect) Result {
	def, err := d.lookup(KindEquipWeapon, eff.CardID)
	if err != nil {
		return fail(KindEquipWeapon, err)
	}
	if def.Type != catalog.TypeWeapon {
		return fail(KindEquipWeapon, state.NewError(state.KindInvalidAction, eff.Type, "%s is not a weapon", def.Name))
	}
	w := EquipWeapon(ctx.State, ctx.Side, def, ctx.sourceID())
	res := ok(KindEquipWeapon)
	res.SideEffects.Targets = []string{w.InstanceID}
	return res
}

// buffWeapon adds attack and durability to the equipped weapon and grants
// weapon keywords it understands.
func (d *Dispatcher) buffWeapon(ctx *Context, eff *catalog.Effect) Result {
	w := ctx.player().Weapon
	if w == nil {
		return fail(KindBuffWeapon, state.NewError(state.KindNoValidTargets, eff.Type, "no weapon equipped"))
	}
	w.Attack += eff.AttackOr(0)
	w.Durability += eff.HealthOr(0)
	for _, k := range eff.Keywords {
		switch k {
		case catalog.KeywordLifesteal:
			w.Lifesteal = true
		case catalog.KeywordPoisonous:
			w.Poisonous = true
		}
	}
	ctx.State.Record(rules.EventWeaponBuffed, w.InstanceID, ctx.sourceID(), ctx.Side, eff.AttackOr(0),
		fmt.Sprintf("%s is now %d/%d", w.Card.Name, w.Attack, w.Durability))
	res := ok(KindBuffWeapon)
	res.SideEffects.Targets = []string{w.InstanceID}
	return res
}

// destroyWeapon destroys the opponent's weapon unless the descriptor targets
// the friendly hero. No weapon is not an error.
func (d *Dispatcher) destroyWeapon(ctx *Context, eff *catalog.Effect) Result {
	side := ctx.Side.Opposite()
	if eff.TargetType == "friendly_hero" {
		side = ctx.Side
	}
	DestroyWeapon(ctx.State, side, ctx.sourceID())
	return ok(KindDestroyWeapon)
}
