package rules

import (
	"fmt"
	"strings"
)

// Phase is a part of a player's turn.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMain
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseStart: "START",
	PhaseMain:  "MAIN",
	PhaseEnd:   "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

var turnSequence = []Phase{PhaseStart, PhaseMain, PhaseEnd}

// TurnManager tracks the active side, the turn number and the phase.
// It is a plain value so game state clones copy it by assignment.
type TurnManager struct {
	orderIndex int
	turnNumber int
	active     string
}

// NewTurnManager creates a manager at turn 1, start phase.
func NewTurnManager(active string) TurnManager {
	return TurnManager{turnNumber: 1, active: strings.TrimSpace(active)}
}

// CurrentPhase returns the phase in progress.
func (tm TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based).
func (tm TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// Active returns the side whose turn it is.
func (tm TurnManager) Active() string {
	return tm.active
}

// AdvancePhase moves to the next phase. Leaving the end phase increments the
// turn number and hands the turn to next, if given.
func (tm *TurnManager) AdvancePhase(next string) Phase {
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
		if n := strings.TrimSpace(next); n != "" {
			tm.active = n
		}
	}
	return tm.CurrentPhase()
}

// SetPhase jumps to p within the current turn.
func (tm *TurnManager) SetPhase(p Phase) {
	for i, phase := range turnSequence {
		if phase == p {
			tm.orderIndex = i
			return
		}
	}
}
