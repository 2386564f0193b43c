package combat

import (
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

const op = "attack"

// attacker checks that id can attack for side now and describes it.
func attacker(g *state.GameState, side state.Side, id string) (Participant, error) {
	p := g.Player(side)
	if id == p.Hero.ID {
		return heroAttacker(p)
	}
	m := p.Minion(id)
	if m == nil {
		if loc, found := g.Locate(id); found && loc.Side != side {
			return Participant{}, state.NewError(state.KindInvalidAction, op, "%s is not controlled by %s", id, side)
		}
		return Participant{}, state.NewError(state.KindEntityNotFound, op, "attacker %s", id)
	}
	switch {
	case m.Frozen:
		return Participant{}, state.NewError(state.KindInvalidAction, op, "%s is frozen", m.Name())
	case m.Attack <= 0:
		return Participant{}, state.NewError(state.KindInvalidAction, op, "%s has no attack", m.Name())
	case m.SummoningSick && !m.Charge && !m.Rush:
		return Participant{}, state.NewError(state.KindInvalidAction, op, "%s is summoning sick", m.Name())
	case m.AttacksThisTurn >= m.MaxAttacks():
		return Participant{}, state.NewError(state.KindInvalidAction, op, "%s already attacked %d times", m.Name(), m.AttacksThisTurn)
	}
	return Participant{
		ID:        m.InstanceID,
		Name:      m.Name(),
		CardID:    m.Card.ID,
		Attack:    m.Attack,
		Shield:    m.DivineShield,
		Poisonous: m.Poisonous,
		Lifesteal: m.Lifesteal,
	}, nil
}

func heroAttacker(p *state.PlayerState) (Participant, error) {
	h := &p.Hero
	attack := p.HeroAttack()
	switch {
	case h.Frozen:
		return Participant{}, state.NewError(state.KindInvalidAction, op, "hero is frozen")
	case attack <= 0:
		return Participant{}, state.NewError(state.KindInvalidAction, op, "hero has no attack")
	case h.AttacksThisTurn >= heroMaxAttacks(p):
		return Participant{}, state.NewError(state.KindInvalidAction, op, "hero already attacked")
	}
	out := Participant{ID: h.ID, Name: p.Side.String() + " hero", Attack: attack, Hero: true}
	if w := p.Weapon; w != nil {
		out.CardID = w.Card.ID
		out.Poisonous = w.Poisonous
		out.Lifesteal = w.Lifesteal
	}
	return out, nil
}

func heroMaxAttacks(p *state.PlayerState) int {
	if p.Weapon != nil && p.Weapon.Card.HasKeyword(catalog.KeywordWindfury) {
		return 2
	}
	return 1
}

// defender checks that id is a legal target for the attacker and describes
// it.
func defender(g *state.GameState, side state.Side, atk Participant, id string) (Participant, error) {
	loc, found := g.Locate(id)
	if !found {
		return Participant{}, state.NewError(state.KindEntityNotFound, op, "defender %s", id)
	}
	if loc.Side != side.Opposite() {
		return Participant{}, state.NewError(state.KindInvalidAction, op, "cannot attack a friendly character")
	}
	opp := g.Player(loc.Side)

	if loc.IsHero() {
		if !atk.Hero {
			if m := g.Player(side).Minion(atk.ID); m != nil && keywords.RushRestricted(m) {
				return Participant{}, state.NewError(state.KindInvalidAction, op, "%s has rush and cannot attack heroes this turn", m.Name())
			}
		}
		if loc.Hero.Immune {
			return Participant{}, state.NewError(state.KindInvalidAction, op, "hero is immune")
		}
		if taunts(opp) {
			return Participant{}, state.NewError(state.KindInvalidAction, op, "a taunt minion must be attacked first")
		}
		return Participant{ID: id, Name: loc.Side.String() + " hero", Hero: true}, nil
	}

	m := loc.Minion
	switch {
	case !m.Alive():
		return Participant{}, state.NewError(state.KindEntityNotFound, op, "%s is dying", m.Name())
	case m.Stealth:
		return Participant{}, state.NewError(state.KindInvalidAction, op, "%s is stealthed", m.Name())
	case m.Immune:
		return Participant{}, state.NewError(state.KindInvalidAction, op, "%s is immune", m.Name())
	case !m.Taunt && taunts(opp):
		return Participant{}, state.NewError(state.KindInvalidAction, op, "a taunt minion must be attacked first")
	}
	return Participant{
		ID:        m.InstanceID,
		Name:      m.Name(),
		CardID:    m.Card.ID,
		Attack:    m.Attack,
		Shield:    m.DivineShield,
		Poisonous: m.Poisonous,
		Lifesteal: m.Lifesteal,
	}, nil
}

// taunts reports whether the side has a visible taunt minion.
func taunts(p *state.PlayerState) bool {
	for _, m := range p.Battlefield {
		if m.Taunt && !m.Stealth && m.Alive() {
			return true
		}
	}
	return false
}
