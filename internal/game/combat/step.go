// Package combat sequences attacks. An attack is declared into an immutable
// CombatStep, queued, and resolved exactly once against the game state.
package combat

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// Phase is the lifecycle position of a step.
type Phase int

const (
	PhaseDeclared Phase = iota
	PhaseQueued
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseDeclared:
		return "declared"
	case PhaseQueued:
		return "queued"
	case PhaseResolved:
		return "resolved"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Participant is one side of a step as it stood at declaration.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	CardID int    `json:"card_id,omitempty"`
	Attack int    `json:"attack"`
	Hero   bool   `json:"hero"`
	// Shield is the divine shield flag captured at declaration. Poisonous
	// and Lifesteal are as declared; resolution reads the live instance.
	Shield    bool `json:"shield"`
	Poisonous bool `json:"poisonous,omitempty"`
	Lifesteal bool `json:"lifesteal,omitempty"`
}

// CombatStep is one attack. Identities, damage amounts and shield flags are
// fixed when the step is declared; only the phase and the outcome change.
type CombatStep struct {
	ID            string      `json:"id"`
	Turn          int         `json:"turn"`
	AttackingSide state.Side  `json:"attacking_side"`
	Attacker      Participant `json:"attacker"`
	Defender      Participant `json:"defender"`
	// Damage is dealt to the defender; CounterDamage to the attacker when
	// the defender is a minion.
	Damage        int   `json:"damage"`
	CounterDamage int   `json:"counter_damage"`
	Phase         Phase `json:"phase"`

	Outcome *Outcome `json:"outcome,omitempty"`
}

// DefendingSide returns the side taking the attack.
func (s CombatStep) DefendingSide() state.Side {
	return s.AttackingSide.Opposite()
}

// Resolved reports whether the step has been applied.
func (s CombatStep) Resolved() bool {
	return s.Phase == PhaseResolved
}

func (s CombatStep) String() string {
	return fmt.Sprintf("%s (%d) -> %s (%d) [%s]", s.Attacker.Name, s.Damage, s.Defender.Name, s.CounterDamage, s.Phase)
}

// Outcome records what resolving a step did.
type Outcome struct {
	Hit     *keywords.DamageResult `json:"hit,omitempty"`
	Counter *keywords.DamageResult `json:"counter,omitempty"`
	// Skipped lists participants that had left the board before resolution.
	Skipped  []string `json:"skipped,omitempty"`
	Died     []string `json:"died,omitempty"`
	GameOver bool     `json:"game_over,omitempty"`
	// WeaponBroke is set when a hero attack used up the weapon.
	WeaponBroke bool  `json:"weapon_broke,omitempty"`
	Err         error `json:"-"`
}

func (s *CombatStep) clone() CombatStep {
	out := *s
	if s.Outcome != nil {
		o := *s.Outcome
		out.Outcome = &o
	}
	return out
}
