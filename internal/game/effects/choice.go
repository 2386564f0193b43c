package effects

import (
	"fmt"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/zap"
)

const choiceOptions = 3

// adaptation is one adapt option applied to the live source minion.
type adaptation struct {
	name  string
	apply func(g *state.GameState, m *state.CardInstance)
}

func grant(attack, health int, kws ...catalog.Keyword) func(*state.GameState, *state.CardInstance) {
	return func(g *state.GameState, m *state.CardInstance) {
		g.Enchant(m, m.InstanceID, attack, health, kws, catalog.DurationPermanent)
	}
}

var adaptations = []adaptation{
	{"Poison Spit", grant(0, 0, catalog.KeywordPoisonous)},
	{"Living Spores", func(g *state.GameState, m *state.CardInstance) {
		m.Deathrattle = &catalog.Effect{
			Type:      string(KindSummon),
			CardID:    catalog.Int(catalog.PlantID),
			Count:     catalog.Int(2),
			Secondary: m.Deathrattle,
		}
	}},
	{"Lightning Speed", grant(0, 0, catalog.KeywordWindfury)},
	{"Flaming Claws", grant(3, 0)},
	{"Liquid Membrane", grant(0, 0, catalog.KeywordElusive)},
	{"Massive", grant(0, 0, catalog.KeywordTaunt)},
	{"Volcanic Might", grant(1, 1)},
	{"Rocky Carapace", grant(0, 3)},
	{"Crackling Shield", grant(0, 0, catalog.KeywordDivineShield)},
	{"Shrouding Mist", grant(0, 0, catalog.KeywordStealth)},
}

func findAdaptation(name string) (adaptation, bool) {
	for _, a := range adaptations {
		if a.name == name {
			return a, true
		}
	}
	return adaptation{}, false
}

func (d *Dispatcher) openChoice(ctx *Context, k Kind, c *state.Choice) Result {
	if ctx.State.PendingChoice != nil {
		return fail(k, state.NewError(state.KindInvalidAction, string(k), "a choice is already pending"))
	}
	c.ID = ctx.State.NewInstanceID()
	c.Side = ctx.Side
	c.SourceID = ctx.sourceID()
	c.SourceCardID = ctx.sourceCardID()
	ctx.State.PendingChoice = c

	t := rules.EventDiscoveryStarted
	if c.Kind == state.ChoiceAdapt {
		t = rules.EventAdaptStarted
	}
	evt := rules.NewEventWithAmount(t, c.ID, c.SourceID, ctx.Side.String(), c.OptionCount())
	evt.CardID = c.SourceCardID
	ctx.State.Emit(evt)

	res := ok(k)
	res.SideEffects.ChoiceID = c.ID
	return res
}

// discover offers up to three distinct cards from the pool and leaves the
// game waiting for the player's pick.
func (d *Dispatcher) discover(ctx *Context, eff *catalog.Effect) Result {
	var (
		options []catalog.Definition
		err     error
	)
	rng := ctx.rng()
	if eff.Pool != "" {
		options, err = d.pools.Sample(eff.Pool, choiceOptions, rng)
	} else {
		q := eff.Query()
		q.Exclude = []int{ctx.sourceCardID()}
		options, err = d.pools.SampleQuery(q, choiceOptions, rng)
	}
	if err != nil {
		return fail(KindDiscover, state.NewError(state.KindNoValidTargets, eff.Type, "%v", err))
	}
	return d.openChoice(ctx, KindDiscover, &state.Choice{
		Kind:    state.ChoiceDiscover,
		Pool:    eff.Pool,
		Options: options,
	})
}

func (d *Dispatcher) conditionalDiscover(ctx *Context, eff *catalog.Effect) Result {
	holds, err := d.evaluate(ctx, eff.Condition)
	if err != nil {
		return fail(KindConditionalDiscover, err)
	}
	if !holds {
		return ok(KindConditionalDiscover)
	}
	payload := eff
	if eff.Secondary != nil {
		payload = inherit(eff, eff.Secondary)
	}
	res := d.discover(ctx, payload)
	res.Kind = KindConditionalDiscover
	return res
}

// adapt offers three distinct adaptations for the source minion.
func (d *Dispatcher) adapt(ctx *Context, eff *catalog.Effect) Result {
	if ctx.Source == nil || ctx.player().Minion(ctx.sourceID()) == nil {
		return fail(KindAdapt, state.NewError(state.KindInvalidMinionOperation, eff.Type, "source is not on the board"))
	}
	perm := ctx.rng().Perm(len(adaptations))
	names := make([]string, 0, choiceOptions)
	for _, i := range perm[:choiceOptions] {
		names = append(names, adaptations[i].name)
	}
	return d.openChoice(ctx, KindAdapt, &state.Choice{
		Kind:        state.ChoiceAdapt,
		Adaptations: names,
	})
}

// ResolveChoice answers the pending choice with the selected option index.
// A nil selection cancels it. Resolution reads the live state, so a source
// minion that died in the meantime makes an adapt a no-op failure.
func (d *Dispatcher) ResolveChoice(g *state.GameState, side state.Side, selected *int) Result {
	c := g.PendingChoice
	if c == nil {
		return fail("", state.NewError(state.KindInvalidAction, "resolve choice", "no pending choice"))
	}
	k := KindDiscover
	t := rules.EventDiscoveryResolved
	if c.Kind == state.ChoiceAdapt {
		k, t = KindAdapt, rules.EventAdaptResolved
	}
	if c.Side != side {
		return fail(k, state.NewError(state.KindInvalidAction, "resolve choice", "choice belongs to %s", c.Side))
	}
	if selected != nil && (*selected < 0 || *selected >= c.OptionCount()) {
		return fail(k, state.NewError(state.KindInvalidAction, "resolve choice", "option %d out of range", *selected))
	}
	g.PendingChoice = nil

	res := ok(k)
	res.SideEffects.ChoiceID = c.ID
	evt := rules.NewEvent(t, c.ID, c.SourceID, side.String())
	evt.CardID = c.SourceCardID
	if selected == nil {
		evt.Description = "cancelled"
		g.Emit(evt)
		return res
	}

	switch c.Kind {
	case state.ChoiceDiscover:
		opt := c.Options[*selected]
		evt.Description = opt.Name
		g.Emit(evt)
		ci := g.NewInstance(opt)
		if g.AddToHand(side, ci) {
			res.SideEffects.Drawn = 1
			res.SideEffects.Targets = []string{ci.InstanceID}
		} else {
			res.SideEffects.Burned = 1
		}
	case state.ChoiceAdapt:
		name := c.Adaptations[*selected]
		m := g.Player(side).Minion(c.SourceID)
		if m == nil || !m.Alive() {
			evt.Description = "source gone"
			g.Emit(evt)
			return fail(k, state.NewError(state.KindEntityNotFound, "adapt", "minion %s", c.SourceID))
		}
		a, found := findAdaptation(name)
		if !found {
			return fail(k, state.NewError(state.KindInvalidAction, "adapt", "unknown adaptation %q", name))
		}
		a.apply(g, m)
		keywords.ReevaluateEnrage(g, side, m)
		evt.Description = fmt.Sprintf("%s: %s", m.Name(), name)
		g.Emit(evt)
		res.SideEffects.Targets = []string{m.InstanceID}
	}
	d.logger.Debug("choice resolved",
		zap.String("game_id", g.ID),
		zap.String("choice_id", c.ID),
		zap.String("kind", string(c.Kind)),
		zap.Int("selected", *selected),
	)
	return res
}
