package game

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/game/effects"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/zap"
)

// EndTurn finishes side's turn: end of turn triggers fire, rush and
// this-turn enchantments expire, frozen characters that sat out a turn
// thaw, and the opponent's turn starts. A queued extra turn starts side's
// next turn instead.
func (e *Engine) EndTurn(gameID string, side state.Side) error {
	entry, err := e.game(gameID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	defer e.publish(entry)

	g := entry.state
	if err := checkTurn(g, side, "end turn"); err != nil {
		return err
	}
	if n := len(entry.pipeline.Pending()); n > 0 {
		return state.NewError(state.KindInvalidAction, "end turn", "%d attacks still queued", n)
	}

	e.endOfTurn(g, side)
	if !g.Over {
		next := side.Opposite()
		if p := g.Player(side); p.ExtraTurns > 0 {
			p.ExtraTurns--
			next = side
			g.Record(rules.EventExtraTurn, p.Hero.ID, p.Hero.ID, side, p.ExtraTurns, "")
		}
		g.Turn.AdvancePhase(next.String())
		e.startTurn(g, next)
	}
	entry.replay.record(Action{Kind: ActionEndTurn, Side: side, Checksum: g.Checksum()})

	e.logger.Debug("turn ended",
		zap.String("game_id", gameID),
		zap.Stringer("side", side),
		zap.Int("turn", g.TurnNumber()),
	)
	return nil
}

func (e *Engine) endOfTurn(g *state.GameState, side state.Side) {
	g.Turn.SetPhase(rules.PhaseEnd)
	p := g.Player(side)

	// Minions summoned by a trigger this phase do not fire themselves.
	for _, m := range append([]*state.CardInstance(nil), p.Battlefield...) {
		if g.Over {
			return
		}
		if m.Card.EndOfTurn == nil || m.Silenced || !m.Alive() || p.MinionIndex(m.InstanceID) < 0 {
			continue
		}
		res := e.dispatcher.Trigger(effects.NewContext(g, side, m, ""), m.Card.EndOfTurn)
		if !res.Success {
			e.logger.Debug("end of turn trigger failed",
				zap.String("minion", m.Name()),
				zap.Error(res.Err),
			)
		}
	}
	if g.Over {
		return
	}

	keywords.ClearRush(g, side)
	turn := g.TurnNumber()
	for _, m := range p.Battlefield {
		if m.Frozen && m.FrozenOnTurn < turn {
			m.Frozen = false
			g.Record(rules.EventThawed, m.InstanceID, m.InstanceID, side, 0, m.Name())
		}
	}
	if p.Hero.Frozen && p.Hero.FrozenOnTurn < turn {
		p.Hero.Frozen = false
		g.Record(rules.EventThawed, p.Hero.ID, p.Hero.ID, side, 0, "hero")
	}
	p.Hero.Attack = 0

	for _, s := range state.Sides {
		for _, m := range g.Player(s).Battlefield {
			m.ExpireTurnEnchantments()
		}
	}
	p.Mana.Temporary = 0
	g.Record(rules.EventTurnEnded, p.Hero.ID, p.Hero.ID, side, turn, "")
}

// startTurn refills side's mana, applies last turn's overload, readies
// its characters and draws a card.
func (e *Engine) startTurn(g *state.GameState, side state.Side) {
	g.Turn.SetPhase(rules.PhaseStart)
	p := g.Player(side)

	p.Mana.Max = min(p.Mana.Max+1, state.MaxMana)
	p.Mana.Overloaded = p.Mana.PendingOverload
	p.Mana.PendingOverload = 0
	p.Mana.Current = max(0, p.Mana.Max-p.Mana.Overloaded)
	p.Mana.Temporary = 0
	p.Mana.Clamp()
	g.Record(rules.EventManaChanged, p.Hero.ID, p.Hero.ID, side, p.Mana.Current,
		fmt.Sprintf("%d/%d", p.Mana.Current, p.Mana.Max))

	p.Counters.ResetTurn()
	p.Hero.AttacksThisTurn = 0
	for _, m := range p.Battlefield {
		m.AttacksThisTurn = 0
		m.SummoningSick = false
	}
	g.Record(rules.EventTurnStarted, p.Hero.ID, p.Hero.ID, side, g.TurnNumber(), "")

	g.Draw(side, 1)
	if g.CheckHeroes() {
		return
	}
	g.Turn.SetPhase(rules.PhaseMain)
}
