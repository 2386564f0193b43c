package game

import (
	"github.com/norsecards/ragnarok-engine/internal/game/combat"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/zap"
)

// Attack declares and immediately resolves one attack, then hands the
// resolved step to the presentation queue. The state changes before any
// animation plays.
func (e *Engine) Attack(gameID string, side state.Side, attackerID, defenderID string) (combat.CombatStep, error) {
	entry, err := e.game(gameID)
	if err != nil {
		return combat.CombatStep{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	defer e.publish(entry)

	g := entry.state
	if err := checkTurn(g, side, "attack"); err != nil {
		return combat.CombatStep{}, err
	}
	step, err := entry.pipeline.Declare(g, side, attackerID, defenderID)
	if err != nil {
		return combat.CombatStep{}, err
	}
	if err := entry.pipeline.Queue(g, step.ID); err != nil {
		return step, err
	}
	step, err = entry.pipeline.Resolve(g, step.ID)
	if err != nil {
		return step, err
	}
	entry.replay.record(Action{
		Kind:     ActionAttack,
		Side:     side,
		ID:       attackerID,
		TargetID: defenderID,
		Checksum: g.Checksum(),
	})
	e.present(entry, step)

	e.logger.Debug("attack",
		zap.String("game_id", gameID),
		zap.Stringer("step", step),
		zap.Bool("game_over", g.Over),
	)
	return step, nil
}

// DeclareAttack validates an attack and queues it without resolving it.
// Queued attacks resolve in order on ResolvePending.
func (e *Engine) DeclareAttack(gameID string, side state.Side, attackerID, defenderID string) (combat.CombatStep, error) {
	entry, err := e.game(gameID)
	if err != nil {
		return combat.CombatStep{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	defer e.publish(entry)

	g := entry.state
	if err := checkTurn(g, side, "declare attack"); err != nil {
		return combat.CombatStep{}, err
	}
	step, err := entry.pipeline.Declare(g, side, attackerID, defenderID)
	if err != nil {
		return combat.CombatStep{}, err
	}
	if err := entry.pipeline.Queue(g, step.ID); err != nil {
		return step, err
	}
	step, _ = entry.pipeline.Step(step.ID)
	entry.replay.record(Action{
		Kind:     ActionDeclareAttack,
		Side:     side,
		ID:       attackerID,
		TargetID: defenderID,
		Checksum: g.Checksum(),
	})
	return step, nil
}

// ResolvePending resolves side's queued attacks in order and presents each
// resolved step. A step that ends the game drops the rest of the queue.
func (e *Engine) ResolvePending(gameID string, side state.Side) ([]combat.CombatStep, error) {
	entry, err := e.game(gameID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	defer e.publish(entry)

	g := entry.state
	if !side.Valid() {
		return nil, state.NewError(state.KindInvalidAction, "resolve attacks", "unknown side %d", int(side))
	}
	if g.Current() != side {
		return nil, state.NewError(state.KindInvalidAction, "resolve attacks", "it is not %s's turn", side)
	}
	steps, err := entry.pipeline.ResolvePending(g)
	entry.replay.record(Action{Kind: ActionResolvePending, Side: side, Checksum: g.Checksum()})
	e.present(entry, steps...)
	return steps, err
}

// PendingAttacks returns the queued, unresolved attacks of a game.
func (e *Engine) PendingAttacks(gameID string) ([]combat.CombatStep, error) {
	entry, err := e.game(gameID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.pipeline.Pending(), nil
}
