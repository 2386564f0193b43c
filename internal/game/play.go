package game

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/counters"
	"github.com/norsecards/ragnarok-engine/internal/game/effects"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/zap"
)

// PlayOptions carries the player's choices for a card play.
type PlayOptions struct {
	// TargetID is the pre-chosen target of the battlecry or spell.
	TargetID string `mapstructure:"target_id"`
	// Position is the board slot for a minion; nil or out of range places
	// it rightmost.
	Position *int `mapstructure:"position"`
	// MagnetizeTo merges a magnetic minion into this friendly mech
	// instead of summoning it.
	MagnetizeTo string `mapstructure:"magnetize_to"`
}

// PlayCard plays a card from side's hand. Illegal plays (wrong turn, not
// enough mana, full board, unknown card) fail with an error and change
// nothing. Effect failures are reported in the result: a minion's failed
// battlecry leaves the minion on the board, a failed spell leaves the
// card in hand and the mana unspent.
func (e *Engine) PlayCard(gameID string, side state.Side, handID string, opts PlayOptions) (effects.Result, error) {
	entry, err := e.game(gameID)
	if err != nil {
		return effects.Result{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	defer e.publish(entry)

	g := entry.state
	if err := checkTurn(g, side, "play card"); err != nil {
		return effects.Result{}, err
	}
	p := g.Player(side)
	i := p.HandIndex(handID)
	if i < 0 {
		return effects.Result{}, state.NewError(state.KindEntityNotFound, "play card", "card %s is not in hand", handID)
	}
	ci := p.Hand[i]
	if cost := p.CostOf(ci); cost > p.Mana.Available() {
		return effects.Result{}, state.NewError(state.KindInvalidAction, "play card",
			"%s costs %d, %d available", ci.Name(), cost, p.Mana.Available())
	}
	combo := ci.Card.Combo != nil && p.Counters.Get(counters.CardsPlayed) > 0

	var res effects.Result
	switch ci.Card.Type {
	case catalog.TypeMinion:
		res, err = e.playMinion(g, side, ci, opts, combo)
	case catalog.TypeSpell:
		res, err = e.castSpell(entry, side, ci, opts, combo)
	case catalog.TypeWeapon:
		res, err = e.playWeapon(g, side, ci, opts)
	default:
		err = state.NewError(state.KindInvalidAction, "play card", "%s cards cannot be played", ci.Card.Type)
	}
	if err != nil {
		return res, err
	}
	entry.replay.record(Action{
		Kind:     ActionPlayCard,
		Side:     side,
		ID:       handID,
		Play:     opts,
		Checksum: entry.state.Checksum(),
	})

	e.logger.Debug("card played",
		zap.String("game_id", gameID),
		zap.Stringer("side", side),
		zap.String("card", ci.Name()),
		zap.Bool("combo", combo),
		zap.Bool("success", res.Success),
		zap.Error(res.Err),
	)
	return res, nil
}

func (e *Engine) playMinion(g *state.GameState, side state.Side, ci *state.CardInstance, opts PlayOptions, combo bool) (effects.Result, error) {
	p := g.Player(side)
	if opts.MagnetizeTo != "" && ci.Card.HasKeyword(catalog.KeywordMagnetic) {
		return e.magnetize(g, side, ci, opts.MagnetizeTo)
	}
	if p.BoardFull() {
		return effects.Result{}, state.NewError(state.KindZoneFull, "play card", "board is full")
	}

	p.RemoveFromHand(ci.InstanceID)
	pay(g, side, ci)
	pos := -1
	if opts.Position != nil {
		pos = *opts.Position
	}
	if _, err := keywords.Enter(g, side, ci, pos); err != nil {
		return effects.Result{}, err
	}
	played(g, side, ci)

	res := effects.Result{Success: true}
	for _, part := range keywords.SummonColossalParts(g, side, e.catalog, ci) {
		res.SideEffects.SummonedCount++
		res.SideEffects.Summoned = append(res.SideEffects.Summoned, part.InstanceID)
	}

	eff := ci.Card.Battlecry
	if combo {
		eff = ci.Card.Combo
		g.Record(rules.EventCombo, ci.InstanceID, ci.InstanceID, side, p.Counters.Get(counters.CardsPlayed), ci.Name())
	}
	if eff != nil {
		g.Record(rules.EventBattlecry, opts.TargetID, ci.InstanceID, side, 0, ci.Name())
		res = res.Merge(e.dispatcher.Battlecry(effects.NewContext(g, side, ci, opts.TargetID), eff))
	}

	countPlay(p, ci)
	e.dispatcher.AdvanceQuest(g, side, state.QuestPlayMinions, ci.Card.Race)
	e.dispatcher.AdvanceQuest(g, side, state.QuestSummonRace, ci.Card.Race)
	return res, nil
}

func (e *Engine) magnetize(g *state.GameState, side state.Side, ci *state.CardInstance, hostID string) (effects.Result, error) {
	p := g.Player(side)
	host := p.Minion(hostID)
	if !keywords.CanMagnetize(ci, host) {
		return effects.Result{}, state.NewError(state.KindInvalidMinionOperation, "play card",
			"%s cannot magnetize to %s", ci.Name(), hostID)
	}
	p.RemoveFromHand(ci.InstanceID)
	pay(g, side, ci)
	played(g, side, ci)
	if err := keywords.Magnetize(g, side, ci, host); err != nil {
		return effects.Result{}, err
	}
	countPlay(p, ci)
	e.dispatcher.AdvanceQuest(g, side, state.QuestPlayMinions, ci.Card.Race)
	res := effects.Result{Success: true}
	res.SideEffects.Targets = []string{host.InstanceID}
	return res, nil
}

// castSpell resolves the spell on a working copy. The canonical state is
// replaced only when the spell succeeds.
func (e *Engine) castSpell(entry *gameEntry, side state.Side, ci *state.CardInstance, opts PlayOptions, combo bool) (effects.Result, error) {
	eff := ci.Card.Spell
	if combo {
		eff = ci.Card.Combo
	}
	if eff == nil {
		return effects.Result{}, state.NewError(state.KindInvalidAction, "play card", "%s has no effect", ci.Name())
	}

	g := entry.state
	work := g.Clone()
	mark := len(work.Log)
	wp := work.Player(side)
	card := wp.RemoveFromHand(ci.InstanceID)
	pay(work, side, card)
	played(work, side, card)
	work.Record(rules.EventSpellCast, opts.TargetID, card.InstanceID, side, 0, card.Name())
	if combo {
		work.Record(rules.EventCombo, card.InstanceID, card.InstanceID, side, wp.Counters.Get(counters.CardsPlayed), card.Name())
	}

	next, res := e.dispatcher.Spell(work, effects.Cast{Side: side, Card: card, TargetID: opts.TargetID}, eff)
	if !res.Success {
		for _, evt := range work.EventsSince(mark) {
			if evt.Type == rules.EventEffectFailed {
				g.Emit(evt)
			}
		}
		return res, nil
	}

	np := next.Player(side)
	countPlay(np, card)
	np.Counters.Increment(counters.SpellsCast, 1)
	e.dispatcher.AdvanceQuest(next, side, state.QuestCastSpells, catalog.RaceNone)
	entry.state = next
	return res, nil
}

func (e *Engine) playWeapon(g *state.GameState, side state.Side, ci *state.CardInstance, opts PlayOptions) (effects.Result, error) {
	p := g.Player(side)
	p.RemoveFromHand(ci.InstanceID)
	pay(g, side, ci)
	played(g, side, ci)
	w := effects.EquipWeapon(g, side, ci.Card, ci.InstanceID)

	res := effects.Result{Success: true}
	res.SideEffects.Targets = []string{w.InstanceID}
	if ci.Card.Battlecry != nil {
		g.Record(rules.EventBattlecry, opts.TargetID, ci.InstanceID, side, 0, ci.Name())
		res = res.Merge(e.dispatcher.Battlecry(effects.NewContext(g, side, ci, opts.TargetID), ci.Card.Battlecry))
	}
	countPlay(p, ci)
	return res, nil
}

// pay spends the card's cost, consuming a matching discount, and books its
// overload for next turn.
func pay(g *state.GameState, side state.Side, ci *state.CardInstance) {
	p := g.Player(side)
	cost := p.CostOf(ci)
	if p.Discount.Matches(ci) {
		p.Discount = nil
	}
	p.Mana.Spend(cost)
	p.Mana.Clamp()
	g.Record(rules.EventManaChanged, p.Hero.ID, ci.InstanceID, side, -cost,
		fmt.Sprintf("%d/%d", p.Mana.Current, p.Mana.Max))
	if ci.Card.Overload > 0 {
		p.Mana.PendingOverload += ci.Card.Overload
		g.Record(rules.EventOverloaded, p.Hero.ID, ci.InstanceID, side, ci.Card.Overload, ci.Name())
	}
}

func played(g *state.GameState, side state.Side, ci *state.CardInstance) {
	evt := rules.NewEvent(rules.EventCardPlayed, ci.InstanceID, ci.InstanceID, side.String())
	evt.CardID = ci.Card.ID
	evt.Amount = ci.Cost
	evt.Description = ci.Name()
	g.Emit(evt)
}

// countPlay updates the per-turn tallies once the card's effects are done.
func countPlay(p *state.PlayerState, ci *state.CardInstance) {
	p.Counters.Increment(counters.CardsPlayed, 1)
	if !ci.IsMinion() {
		return
	}
	p.Counters.Increment(counters.MinionsPlayed, 1)
	if ci.Card.Race != catalog.RaceNone {
		p.Counters.Increment(counters.RacePlayed(string(ci.Card.Race)), 1)
	}
}

// ResolveChoice answers side's pending discover or adapt choice. A nil
// selection cancels it.
func (e *Engine) ResolveChoice(gameID string, side state.Side, selected *int) (effects.Result, error) {
	entry, err := e.game(gameID)
	if err != nil {
		return effects.Result{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	defer e.publish(entry)

	g := entry.state
	c := g.PendingChoice
	switch {
	case g.Over:
		return effects.Result{}, state.NewError(state.KindGameOver, "resolve choice", "game %s is over", gameID)
	case c == nil:
		return effects.Result{}, state.NewError(state.KindInvalidAction, "resolve choice", "no pending choice")
	case c.Side != side:
		return effects.Result{}, state.NewError(state.KindInvalidAction, "resolve choice", "choice belongs to %s", c.Side)
	case selected != nil && (*selected < 0 || *selected >= c.OptionCount()):
		return effects.Result{}, state.NewError(state.KindInvalidAction, "resolve choice", "option %d out of range", *selected)
	}
	res := e.dispatcher.ResolveChoice(g, side, selected)
	entry.replay.record(Action{
		Kind:     ActionResolveChoice,
		Side:     side,
		Selected: selected,
		Checksum: g.Checksum(),
	})
	return res, nil
}
