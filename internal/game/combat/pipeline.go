package combat

import (
	"fmt"
	"slices"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/effects"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Pipeline declares, queues and resolves the attacks of one game. It is not
// safe for concurrent use; the engine serializes access under the game
// lock.
type Pipeline struct {
	dispatcher *effects.Dispatcher
	logger     *zap.Logger

	steps   map[string]*CombatStep
	pending []string
}

// NewPipeline creates a pipeline that forwards post-combat triggers to d.
func NewPipeline(d *effects.Dispatcher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		dispatcher: d,
		logger:     logger,
		steps:      make(map[string]*CombatStep),
	}
}

// Declare validates an attack and fixes it into a new step. The attacker's
// attack is spent and it loses stealth; no damage is applied yet.
func (p *Pipeline) Declare(g *state.GameState, side state.Side, attackerID, defenderID string) (CombatStep, error) {
	if g.Over {
		return CombatStep{}, state.NewError(state.KindGameOver, op, "game %s is over", g.ID)
	}
	if g.PendingChoice != nil {
		return CombatStep{}, state.NewError(state.KindInvalidAction, op, "a choice is pending")
	}
	atk, err := attacker(g, side, attackerID)
	if err != nil {
		return CombatStep{}, err
	}
	def, err := defender(g, side, atk, defenderID)
	if err != nil {
		return CombatStep{}, err
	}

	player := g.Player(side)
	if atk.Hero {
		player.Hero.AttacksThisTurn++
	} else {
		m := player.Minion(atk.ID)
		m.AttacksThisTurn++
		m.Stealth = false
	}

	step := &CombatStep{
		ID:            g.NewInstanceID(),
		Turn:          g.TurnNumber(),
		AttackingSide: side,
		Attacker:      atk,
		Defender:      def,
		Damage:        atk.Attack,
		Phase:         PhaseDeclared,
	}
	if !def.Hero {
		step.CounterDamage = def.Attack
	}
	p.steps[step.ID] = step

	evt := rules.NewEventWithAmount(rules.EventAttackDeclared, def.ID, atk.ID, side.String(), step.Damage)
	evt.CardID = atk.CardID
	evt.Data = step.ID
	evt.Description = fmt.Sprintf("%s attacks %s", atk.Name, def.Name)
	g.Emit(evt)

	p.logger.Debug("attack declared",
		zap.String("game_id", g.ID),
		zap.String("step_id", step.ID),
		zap.String("attacker", atk.Name),
		zap.String("defender", def.Name),
	)
	return step.clone(), nil
}

// Queue appends a declared step to the pending queue.
func (p *Pipeline) Queue(g *state.GameState, stepID string) error {
	step, err := p.lookup(stepID)
	if err != nil {
		return err
	}
	if step.Phase != PhaseDeclared {
		return state.NewError(state.KindInvalidAction, "queue attack", "step %s is %s", stepID, step.Phase)
	}
	step.Phase = PhaseQueued
	p.pending = append(p.pending, stepID)
	evt := rules.NewEvent(rules.EventAttackQueued, step.Defender.ID, step.Attacker.ID, step.AttackingSide.String())
	evt.Data = stepID
	g.Emit(evt)
	return nil
}

// Pending returns the queued steps in FIFO order.
func (p *Pipeline) Pending() []CombatStep {
	out := make([]CombatStep, 0, len(p.pending))
	for _, id := range p.pending {
		out = append(out, p.steps[id].clone())
	}
	return out
}

// Step returns a copy of a step the pipeline still holds.
func (p *Pipeline) Step(id string) (CombatStep, bool) {
	step, found := p.steps[id]
	if !found {
		return CombatStep{}, false
	}
	return step.clone(), true
}

// Release forgets a resolved step once its consumer is done with it.
func (p *Pipeline) Release(id string) error {
	step, err := p.lookup(id)
	if err != nil {
		return err
	}
	if !step.Resolved() {
		return state.NewError(state.KindInvalidAction, "release attack", "step %s is %s", id, step.Phase)
	}
	delete(p.steps, id)
	return nil
}

// ResolvePending resolves queued steps in order. It stops early when a step
// ends the game; the remaining steps are dropped.
func (p *Pipeline) ResolvePending(g *state.GameState) ([]CombatStep, error) {
	var (
		out  []CombatStep
		errs error
	)
	for len(p.pending) > 0 {
		id := p.pending[0]
		step, err := p.Resolve(g, id)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, step)
		if g.Over {
			p.drop(g)
			break
		}
	}
	return out, errs
}

func (p *Pipeline) drop(g *state.GameState) {
	if len(p.pending) == 0 {
		return
	}
	p.logger.Info("game over, dropping queued attacks",
		zap.String("game_id", g.ID),
		zap.Int("dropped", len(p.pending)),
	)
	for _, id := range p.pending {
		delete(p.steps, id)
	}
	p.pending = nil
}

// Resolve applies a queued step. A step resolves exactly once; resolving it
// again fails and changes nothing.
func (p *Pipeline) Resolve(g *state.GameState, stepID string) (CombatStep, error) {
	step, err := p.lookup(stepID)
	if err != nil {
		return CombatStep{}, err
	}
	switch step.Phase {
	case PhaseResolved:
		return step.clone(), state.NewError(state.KindInvalidAction, "resolve attack", "step %s already resolved", stepID)
	case PhaseDeclared:
		return step.clone(), state.NewError(state.KindInvalidAction, "resolve attack", "step %s is not queued", stepID)
	}
	p.pending = slices.DeleteFunc(p.pending, func(id string) bool { return id == stepID })
	if g.Over {
		return step.clone(), state.NewError(state.KindGameOver, "resolve attack", "game %s is over", g.ID)
	}

	step.Outcome = p.apply(g, step)
	step.Phase = PhaseResolved

	evt := rules.NewEventWithAmount(rules.EventAttackResolved, step.Defender.ID, step.Attacker.ID, step.AttackingSide.String(), step.Damage)
	evt.Data = step.ID
	evt.Flag = step.Outcome.GameOver
	g.Emit(evt)

	p.logger.Debug("attack resolved",
		zap.String("game_id", g.ID),
		zap.String("step_id", step.ID),
		zap.Int("died", len(step.Outcome.Died)),
		zap.Bool("game_over", step.Outcome.GameOver),
		zap.Error(step.Outcome.Err),
	)
	return step.clone(), nil
}

func (p *Pipeline) lookup(id string) (*CombatStep, error) {
	step, found := p.steps[id]
	if !found {
		return nil, state.NewError(state.KindEntityNotFound, "attack", "step %s", id)
	}
	return step, nil
}

// apply runs the damage exchange: hit, hero death check, counter hit,
// frenzies and deaths, weapon wear, then after-attack triggers.
func (p *Pipeline) apply(g *state.GameState, step *CombatStep) *Outcome {
	out := &Outcome{}
	mark := len(g.Log)
	side := step.AttackingSide

	source := attackerInstance(g, step)
	if !present(g, step.Attacker) {
		out.Skipped = append(out.Skipped, step.Attacker.ID)
		out.Err = state.NewError(state.KindEntityNotFound, "resolve attack", "attacker %s left play", step.Attacker.Name)
		return out
	}
	ctx := effects.NewContext(g, side, source, step.Defender.ID)

	if present(g, step.Defender) {
		poisonous, lifesteal := liveKeywords(g, side, step.Attacker)
		hit, err := keywords.DealDamage(g, keywords.DamageRequest{
			SourceID:       step.Attacker.ID,
			SourceSide:     side,
			TargetID:       step.Defender.ID,
			Amount:         step.Damage,
			Poisonous:      poisonous,
			Lifesteal:      lifesteal,
			ShieldSnapshot: snapshot(step.Defender),
		})
		out.Err = multierr.Append(out.Err, err)
		if err == nil {
			out.Hit = &hit
			if hit.Frenzy != nil {
				ctx.QueueFrenzy(hit.Side, hit.TargetID, hit.Frenzy)
			}
		}
		if g.CheckHeroes() {
			return ended(g, side, out, mark)
		}

		if !step.Defender.Hero && step.CounterDamage > 0 {
			poisonous, lifesteal := liveKeywords(g, step.DefendingSide(), step.Defender)
			counter, err := keywords.DealDamage(g, keywords.DamageRequest{
				SourceID:       step.Defender.ID,
				SourceSide:     step.DefendingSide(),
				TargetID:       step.Attacker.ID,
				Amount:         step.CounterDamage,
				Poisonous:      poisonous,
				Lifesteal:      lifesteal,
				ShieldSnapshot: snapshot(step.Attacker),
			})
			out.Err = multierr.Append(out.Err, err)
			if err == nil {
				out.Counter = &counter
				if counter.Frenzy != nil {
					ctx.QueueFrenzy(counter.Side, counter.TargetID, counter.Frenzy)
				}
			}
			if g.CheckHeroes() {
				return ended(g, side, out, mark)
			}
		}
	} else {
		out.Skipped = append(out.Skipped, step.Defender.ID)
		out.Err = multierr.Append(out.Err,
			state.NewError(state.KindEntityNotFound, "resolve attack", "defender %s left play", step.Defender.Name))
	}

	if step.Attacker.Hero {
		out.WeaponBroke = wearWeapon(g, side, step.Attacker.ID)
	}

	settled := p.dispatcher.Settle(ctx)
	out.Err = multierr.Append(out.Err, settled.Err)
	if g.Over {
		out.GameOver = true
		out.Died = died(g, mark)
		return out
	}

	if m := g.Player(side).Minion(step.Attacker.ID); m != nil && m.Alive() && !m.Silenced && m.Card.AfterAttack != nil {
		res := p.dispatcher.Trigger(effects.NewContext(g, side, m, step.Defender.ID), m.Card.AfterAttack)
		out.Err = multierr.Append(out.Err, res.Err)
		out.GameOver = g.Over
	}
	out.Died = died(g, mark)
	return out
}

// snapshot returns the captured shield flag for minion participants.
func snapshot(pt Participant) *bool {
	if pt.Hero {
		return nil
	}
	shield := pt.Shield
	return &shield
}

// liveKeywords reads poisonous and lifesteal from the participant as it is
// now, so a silence between declaration and resolution takes effect. A
// hero uses its equipped weapon.
func liveKeywords(g *state.GameState, side state.Side, pt Participant) (poisonous, lifesteal bool) {
	p := g.Player(side)
	if pt.Hero {
		if w := p.Weapon; w != nil {
			return w.Poisonous, w.Lifesteal
		}
		return false, false
	}
	m := p.Minion(pt.ID)
	if m == nil {
		return false, false
	}
	return m.HasKeyword(catalog.KeywordPoisonous), m.HasKeyword(catalog.KeywordLifesteal)
}

func attackerInstance(g *state.GameState, step *CombatStep) *state.CardInstance {
	if step.Attacker.Hero {
		return nil
	}
	return g.Player(step.AttackingSide).Minion(step.Attacker.ID)
}

// present reports whether a participant is still in play and standing.
func present(g *state.GameState, pt Participant) bool {
	loc, found := g.Locate(pt.ID)
	if !found {
		return false
	}
	if loc.IsHero() {
		return loc.Hero.Health > 0
	}
	return loc.Minion.Alive()
}

// wearWeapon takes one durability from the attacking hero's weapon and
// destroys it at zero.
func wearWeapon(g *state.GameState, side state.Side, heroID string) bool {
	w := g.Player(side).Weapon
	if w == nil {
		return false
	}
	w.Durability--
	if w.Durability > 0 {
		return false
	}
	return effects.DestroyWeapon(g, side, heroID)
}

// ended finishes a step that killed a hero. Dead minions still leave the
// board but no further triggers fire.
func ended(g *state.GameState, side state.Side, out *Outcome, mark int) *Outcome {
	g.CollectDead(side)
	out.GameOver = true
	out.Died = died(g, mark)
	return out
}

func died(g *state.GameState, mark int) []string {
	var ids []string
	for _, evt := range g.EventsSince(mark) {
		if evt.Type == rules.EventMinionDied {
			ids = append(ids, evt.TargetID)
		}
	}
	return ids
}
