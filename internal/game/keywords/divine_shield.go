package keywords

import "github.com/norsecards/ragnarok-engine/internal/game/state"

// absorbWithShield applies amount to a minion. A shield, live or captured in
// snapshot, consumes the whole hit and is removed. It returns whether a
// shield popped and the health lost.
func absorbWithShield(m *state.CardInstance, amount int, snapshot *bool) (popped bool, dealt int) {
	if m.Immune {
		return false, 0
	}
	shielded := m.DivineShield
	if snapshot != nil {
		shielded = *snapshot
	}
	if shielded {
		m.DivineShield = false
		return true, 0
	}
	m.Health -= amount
	return false, amount
}

// GrantDivineShield gives a minion a shield. Shields never stack.
func GrantDivineShield(m *state.CardInstance) bool {
	if m.DivineShield {
		return false
	}
	m.DivineShield = true
	return true
}
