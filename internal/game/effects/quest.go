package effects

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/zap"
)

// startQuest activates a quest for the acting side. Only one quest may be
// active at a time.
func (d *Dispatcher) startQuest(ctx *Context, eff *catalog.Effect) Result {
	p := ctx.player()
	if p.Quest != nil {
		return fail(KindStartQuest, state.NewError(state.KindInvalidAction, eff.Type, "a quest is already active"))
	}
	kind := state.QuestKind(eff.Condition)
	switch kind {
	case state.QuestPlayMinions, state.QuestCastSpells, state.QuestSummonRace:
	default:
		return fail(KindStartQuest, state.NewError(state.KindMissingRequiredParameter, eff.Type, "quest kind %q", eff.Condition))
	}
	if _, err := d.lookup(KindStartQuest, eff.CardID); err != nil {
		return fail(KindStartQuest, err)
	}
	name := ""
	if ctx.Source != nil {
		name = ctx.Source.Name()
	}
	p.Quest = &state.Quest{
		SourceCardID: ctx.sourceCardID(),
		Name:         name,
		Kind:         kind,
		Race:         eff.Race,
		Goal:         eff.CountOr(1),
		RewardCardID: *eff.CardID,
	}
	ctx.State.Record(rules.EventQuestStarted, p.Hero.ID, ctx.sourceID(), ctx.Side, p.Quest.Goal,
		fmt.Sprintf("%s: %s", name, kind))
	return ok(KindStartQuest)
}

// AdvanceQuest counts one unit of progress for side's active quest when
// kind (and race, for summon quests) match. Completing the quest removes it
// and adds the reward to hand. It reports whether the quest completed.
func (d *Dispatcher) AdvanceQuest(g *state.GameState, side state.Side, kind state.QuestKind, race catalog.Race) bool {
	p := g.Player(side)
	q := p.Quest
	if q == nil || q.Kind != kind {
		return false
	}
	if kind == state.QuestSummonRace && (race == catalog.RaceNone || !race.Is(q.Race)) {
		return false
	}
	q.Progress++
	g.Record(rules.EventQuestProgress, p.Hero.ID, "", side, q.Progress, fmt.Sprintf("%s %d/%d", q.Name, q.Progress, q.Goal))
	if !q.Complete() {
		return false
	}
	p.Quest = nil
	g.Record(rules.EventQuestCompleted, p.Hero.ID, "", side, q.Goal, q.Name)
	if def, found := d.catalog.GetByID(q.RewardCardID); found {
		g.AddToHand(side, g.NewInstance(def))
	} else {
		d.logger.Warn("quest reward missing from catalog",
			zap.String("game_id", g.ID),
			zap.Int("card_id", q.RewardCardID),
		)
	}
	return true
}
