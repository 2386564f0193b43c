package game

import (
	"testing"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/counters"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCreateGameDealsOpeningHands(t *testing.T) {
	h := newDefaultHarness(t)
	g := h.snapshot()

	self, opp := g.Player(state.SideSelf), g.Player(state.SideOpponent)
	assert.Len(t, self.Hand, DefaultStartingHand+1, "opening hand plus the first draw")
	assert.Len(t, opp.Hand, DefaultStartingHand+2, "one extra card and the Coin")
	assert.Len(t, handOf(g, state.SideOpponent, CoinCardID), 1)
	assert.Len(t, self.Deck, 16)
	assert.Len(t, opp.Deck, 16)

	assert.Equal(t, 1, g.TurnNumber())
	assert.Equal(t, state.SideSelf, g.Current())
	assert.Equal(t, rules.PhaseMain, g.Turn.CurrentPhase())
	assert.Equal(t, 1, self.Mana.Current)
	assert.Equal(t, 1, self.Mana.Max)
	assert.Equal(t, 0, opp.Mana.Max)
	assert.Equal(t, uint64(testSeed), g.Seed)
}

func TestCreateGame(t *testing.T) {
	logger := zaptest.NewLogger(t)
	e := NewEngine(logger, catalog.New(nil, logger), Config{})
	defer e.Close()

	t.Run("unknown card", func(t *testing.T) {
		_, err := e.CreateGame(GameOptions{Decks: [2][]int{{wisp, 9999}, nil}})
		assert.ErrorIs(t, err, state.ErrEntityNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := e.CreateGame(GameOptions{ID: "dup"})
		require.NoError(t, err)
		_, err = e.CreateGame(GameOptions{ID: "dup"})
		assert.ErrorIs(t, err, state.ErrInvalidAction)
	})

	t.Run("same seed same game", func(t *testing.T) {
		decks := [2][]int{{wisp, chillwindYeti, bloodfenRaptor, youngWolf, mechwarper}, deckOf(wisp, 5)}
		a, err := e.CreateGame(GameOptions{ID: "seeded", Seed: 9, Decks: decks})
		require.NoError(t, err)
		ga, err := e.Snapshot(a)
		require.NoError(t, err)
		require.NoError(t, e.RemoveGame(a))

		b, err := e.CreateGame(GameOptions{ID: "seeded", Seed: 9, Decks: decks})
		require.NoError(t, err)
		gb, err := e.Snapshot(b)
		require.NoError(t, err)
		assert.Equal(t, ga.Checksum(), gb.Checksum())
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := e.Snapshot("missing")
		assert.ErrorIs(t, err, state.ErrEntityNotFound)
		assert.ErrorIs(t, e.RemoveGame("missing"), state.ErrEntityNotFound)
	})

	t.Run("listing", func(t *testing.T) {
		assert.Equal(t, []string{"dup", "seeded"}, e.Games())
	})
}

func TestPlayCardRejectsIllegalPlays(t *testing.T) {
	h := newDefaultHarness(t)
	yeti := h.give(state.SideSelf, chillwindYeti)
	oppCard := h.snapshot().Player(state.SideOpponent).Hand[0].InstanceID

	_, err := h.engine.PlayCard(h.id, state.SideOpponent, oppCard, PlayOptions{})
	assert.ErrorIs(t, err, state.ErrInvalidAction, "out of turn")

	_, err = h.engine.PlayCard(h.id, state.SideSelf, yeti, PlayOptions{})
	assert.ErrorIs(t, err, state.ErrInvalidAction, "not enough mana")

	_, err = h.engine.PlayCard(h.id, state.SideSelf, "nope", PlayOptions{})
	assert.ErrorIs(t, err, state.ErrEntityNotFound)

	h.setMana(state.SideSelf, 10)
	for range state.MaxBoardSize {
		h.place(state.SideSelf, wisp)
	}
	_, err = h.engine.PlayCard(h.id, state.SideSelf, yeti, PlayOptions{})
	assert.ErrorIs(t, err, state.ErrZoneFull)

	g := h.snapshot()
	assert.Equal(t, 10, g.Player(state.SideSelf).Mana.Current)
	assert.NotEqual(t, -1, g.Player(state.SideSelf).HandIndex(yeti))
}

func TestPlayMinion(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 10)
	first := h.place(state.SideSelf, wisp)
	yeti := h.give(state.SideSelf, chillwindYeti)

	pos := 0
	h.play(state.SideSelf, yeti, PlayOptions{Position: &pos})

	g := h.snapshot()
	p := g.Player(state.SideSelf)
	require.Len(t, p.Battlefield, 2)
	assert.Equal(t, yeti, p.Battlefield[0].InstanceID)
	assert.Equal(t, first, p.Battlefield[1].InstanceID)
	assert.True(t, p.Battlefield[0].SummoningSick)
	assert.Equal(t, 6, p.Mana.Current)
	assert.Equal(t, 1, p.Counters.Get(counters.CardsPlayed))
	assert.Equal(t, 1, p.Counters.Get(counters.MinionsPlayed))
	assert.Equal(t, -1, p.HandIndex(yeti))
}

func TestComboNeedsAnEarlierCard(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 10)
	opp := h.heroID(state.SideOpponent)

	// Alone, SI7 Agent has no battlecry to fall back on.
	agent := h.give(state.SideSelf, si7Agent)
	h.play(state.SideSelf, agent, PlayOptions{TargetID: opp})
	h.assertHeroHealth(state.SideOpponent, 30)

	first := h.give(state.SideSelf, eviscerate)
	second := h.give(state.SideSelf, eviscerate)
	h.play(state.SideSelf, first, PlayOptions{TargetID: opp})
	h.assertHeroHealth(state.SideOpponent, 26, "combo: 4 damage")

	h.endTurn(state.SideSelf)
	h.endTurn(state.SideOpponent)
	h.setMana(state.SideSelf, 10)
	h.play(state.SideSelf, second, PlayOptions{TargetID: opp})
	g := h.snapshot()
	assert.Equal(t, 24, g.Player(state.SideOpponent).Hero.Health, "first card of the turn: 2 damage")

	var combos int
	for _, evt := range g.Log {
		if evt.Type == rules.EventCombo {
			combos++
		}
	}
	assert.Equal(t, 1, combos)
}

func TestOverloadLocksNextTurnMana(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 5)
	burst := h.give(state.SideSelf, lavaBurst)
	h.play(state.SideSelf, burst, PlayOptions{TargetID: h.heroID(state.SideOpponent)})

	g := h.snapshot()
	assert.Equal(t, 25, g.Player(state.SideOpponent).Hero.Health)
	assert.Equal(t, 2, g.Player(state.SideSelf).Mana.PendingOverload)
	assert.Equal(t, 2, g.Player(state.SideSelf).Mana.Current)

	h.endTurn(state.SideSelf)
	h.endTurn(state.SideOpponent)

	mana := h.snapshot().Player(state.SideSelf).Mana
	assert.Equal(t, 6, mana.Max)
	assert.Equal(t, 2, mana.Overloaded)
	assert.Equal(t, 0, mana.PendingOverload)
	assert.Equal(t, 4, mana.Current)
}

func TestFailedSpellChangesNothing(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 10)
	ball := h.give(state.SideSelf, fireball)
	before := h.snapshot()

	res, err := h.engine.PlayCard(h.id, state.SideSelf, ball, PlayOptions{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, state.ErrMissingRequiredParameter)

	g := h.snapshot()
	p := g.Player(state.SideSelf)
	assert.NotEqual(t, -1, p.HandIndex(ball))
	assert.Equal(t, 10, p.Mana.Current)
	assert.Equal(t, 0, p.Counters.Get(counters.CardsPlayed))
	assert.Equal(t, before.Player(state.SideOpponent).Hero.Health, g.Player(state.SideOpponent).Hero.Health)

	failed := g.EventsSince(len(before.Log))
	require.NotEmpty(t, failed)
	for _, evt := range failed {
		assert.Equal(t, rules.EventEffectFailed, evt.Type)
	}
}

func TestMagnetize(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 10)
	mech := h.place(state.SideSelf, mechwarper)
	notMech := h.place(state.SideSelf, wisp)
	module := h.give(state.SideSelf, annoyOModule)

	_, err := h.engine.PlayCard(h.id, state.SideSelf, module, PlayOptions{MagnetizeTo: notMech})
	assert.ErrorIs(t, err, state.ErrInvalidMinionOperation)

	h.play(state.SideSelf, module, PlayOptions{MagnetizeTo: mech})

	p := h.snapshot().Player(state.SideSelf)
	require.Len(t, p.Battlefield, 2, "the magnet takes no slot")
	host := p.Minion(mech)
	require.NotNil(t, host)
	assert.Equal(t, 4, host.Attack)
	assert.Equal(t, 7, host.Health)
	assert.True(t, host.Taunt)
	assert.True(t, host.DivineShield)
	require.Len(t, host.Attachments, 1)
	assert.Equal(t, annoyOModule, host.Attachments[0].CardID)
	assert.Equal(t, 6, p.Mana.Current)
	assert.Equal(t, 1, p.Counters.Get(counters.MinionsPlayed))
}

func TestColossalSummonsParts(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 10)
	main := h.give(state.SideSelf, neptulon)

	res, err := h.engine.PlayCard(h.id, state.SideSelf, main, PlayOptions{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.SideEffects.SummonedCount)

	p := h.snapshot().Player(state.SideSelf)
	require.Len(t, p.Battlefield, 3)
	assert.Equal(t, main, p.Battlefield[0].InstanceID)
	for _, part := range p.Battlefield[1:] {
		assert.Equal(t, main, part.ColossalParent)
	}
	assert.Len(t, p.Battlefield[0].ColossalParts, 2)
}

func TestPlayWeapon(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 10)
	axe := h.give(state.SideSelf, fieryWarAxe)
	h.play(state.SideSelf, axe, PlayOptions{})

	p := h.snapshot().Player(state.SideSelf)
	require.NotNil(t, p.Weapon)
	assert.Equal(t, fieryWarAxe, p.Weapon.Card.ID)
	assert.Equal(t, 3, p.HeroAttack())
	assert.Equal(t, 7, p.Mana.Current)
}

func TestAttackIsPresented(t *testing.T) {
	h := newDefaultHarness(t)
	yeti := h.place(state.SideSelf, chillwindYeti)
	opp := h.heroID(state.SideOpponent)

	step, err := h.engine.Attack(h.id, state.SideSelf, yeti, opp)
	require.NoError(t, err)
	assert.True(t, step.Resolved())
	assert.Equal(t, 4, step.Damage)
	h.assertHeroHealth(state.SideOpponent, 26)

	q, err := h.engine.Presentation(h.id)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	_, err = h.engine.Attack(h.id, state.SideSelf, yeti, opp)
	assert.Error(t, err, "one attack per turn")
}

func TestDeclaredAttacksResolveInOrder(t *testing.T) {
	h := newDefaultHarness(t)
	yeti := h.place(state.SideSelf, chillwindYeti)
	raptor := h.place(state.SideSelf, bloodfenRaptor)
	opp := h.heroID(state.SideOpponent)

	first, err := h.engine.DeclareAttack(h.id, state.SideSelf, yeti, opp)
	require.NoError(t, err)
	_, err = h.engine.DeclareAttack(h.id, state.SideSelf, raptor, opp)
	require.NoError(t, err)

	view, err := h.engine.View(h.id, state.SideSelf)
	require.NoError(t, err)
	require.Len(t, view.Pending, 2)
	assert.Equal(t, first.ID, view.Pending[0].StepID)
	h.assertHeroHealth(state.SideOpponent, 30)

	assert.ErrorIs(t, h.engine.EndTurn(h.id, state.SideSelf), state.ErrInvalidAction, "queued attacks block the turn end")

	steps, err := h.engine.ResolvePending(h.id, state.SideSelf)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, first.ID, steps[0].ID)
	h.assertHeroHealth(state.SideOpponent, 23)

	pending, err := h.engine.PendingAttacks(h.id)
	require.NoError(t, err)
	assert.Empty(t, pending)
	h.endTurn(state.SideSelf)
}

func TestMinionTrade(t *testing.T) {
	h := newDefaultHarness(t)
	raptor := h.place(state.SideSelf, bloodfenRaptor)
	yeti := h.place(state.SideOpponent, chillwindYeti)

	step, err := h.engine.Attack(h.id, state.SideSelf, raptor, yeti)
	require.NoError(t, err)
	assert.Equal(t, 3, step.Damage)
	assert.Equal(t, 4, step.CounterDamage)

	h.assertMinionDead(state.SideSelf, raptor)
	h.assertMinionAlive(state.SideOpponent, yeti)
	h.assertBoardSize(state.SideSelf, 0)
	h.assertBoardSize(state.SideOpponent, 1)
	assert.Equal(t, 2, h.snapshot().Player(state.SideOpponent).Minion(yeti).Health)
	h.assertHeroHealth(state.SideOpponent, 30)
}

func TestLethalAttackEndsGame(t *testing.T) {
	h := newDefaultHarness(t)
	yeti := h.place(state.SideSelf, chillwindYeti)
	h.mutate(func(g *state.GameState) { g.Player(state.SideOpponent).Hero.Health = 3 })

	step, err := h.engine.Attack(h.id, state.SideSelf, yeti, h.heroID(state.SideOpponent))
	require.NoError(t, err)
	require.NotNil(t, step.Outcome)
	assert.True(t, step.Outcome.GameOver)

	g := h.snapshot()
	assert.True(t, g.Over)
	require.NotNil(t, g.Winner)
	assert.Equal(t, state.SideSelf, *g.Winner)
	assert.ErrorIs(t, h.engine.EndTurn(h.id, state.SideSelf), state.ErrGameOver)
}

func TestEndTurn(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 10)
	thawing := h.place(state.SideSelf, chillwindYeti)
	fresh := h.place(state.SideSelf, chillwindYeti)
	buffed := h.place(state.SideSelf, bloodfenRaptor)
	strike := h.give(state.SideSelf, heroicStrike)
	wolf := h.give(state.SideSelf, youngWolf)
	h.mutate(func(g *state.GameState) {
		p := g.Player(state.SideSelf)
		p.Minion(thawing).Frozen, p.Minion(thawing).FrozenOnTurn = true, 0
		p.Minion(fresh).Frozen, p.Minion(fresh).FrozenOnTurn = true, g.TurnNumber()
		g.Enchant(p.Minion(buffed), "", 2, 0, nil, catalog.DurationThisTurn)
		p.Mana.Temporary = 2
	})
	h.play(state.SideSelf, strike, PlayOptions{})
	h.play(state.SideSelf, wolf, PlayOptions{})
	require.True(t, h.snapshot().Player(state.SideSelf).Minion(wolf).Rush)

	_, err := h.engine.PlayCard(h.id, state.SideOpponent, "x", PlayOptions{})
	require.ErrorIs(t, err, state.ErrInvalidAction)
	h.endTurn(state.SideSelf)

	g := h.snapshot()
	p := g.Player(state.SideSelf)
	assert.False(t, p.Minion(thawing).Frozen)
	assert.True(t, p.Minion(fresh).Frozen, "frozen this turn, thaws after the next one")
	assert.Equal(t, 3, p.Minion(buffed).Attack)
	assert.False(t, p.Minion(wolf).Rush)
	assert.Equal(t, 0, p.Hero.Attack)
	assert.Equal(t, 0, p.Mana.Temporary)

	assert.Equal(t, 2, g.TurnNumber())
	assert.Equal(t, state.SideOpponent, g.Current())
	opp := g.Player(state.SideOpponent)
	assert.Equal(t, 1, opp.Mana.Max)
	assert.Equal(t, 1, opp.Mana.Current)
	assert.Len(t, opp.Hand, DefaultStartingHand+3)

	assert.ErrorIs(t, h.engine.EndTurn(h.id, state.SideSelf), state.ErrInvalidAction)
	h.endTurn(state.SideOpponent)
	g = h.snapshot()
	assert.True(t, g.Player(state.SideSelf).Minion(fresh).Frozen)
	assert.Equal(t, state.MaxMana, g.Player(state.SideSelf).Mana.Max, "max mana stays capped")

	h.endTurn(state.SideSelf)
	assert.False(t, h.snapshot().Player(state.SideSelf).Minion(fresh).Frozen)
}

func TestExtraTurn(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 10)
	h.play(state.SideSelf, h.give(state.SideSelf, timeWarp), PlayOptions{})
	h.endTurn(state.SideSelf)

	g := h.snapshot()
	assert.Equal(t, state.SideSelf, g.Current())
	assert.Equal(t, 2, g.TurnNumber())
	assert.Equal(t, 0, g.Player(state.SideSelf).ExtraTurns)
	assert.ErrorIs(t, h.engine.EndTurn(h.id, state.SideOpponent), state.ErrInvalidAction)

	h.endTurn(state.SideSelf)
	assert.Equal(t, state.SideOpponent, h.snapshot().Current())
}

func TestDiscountIsSpentOnNextCard(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 4)
	prep := h.give(state.SideSelf, preparation)
	yeti := h.give(state.SideSelf, chillwindYeti)
	raptor := h.give(state.SideSelf, bloodfenRaptor)

	h.play(state.SideSelf, prep, PlayOptions{})
	h.play(state.SideSelf, yeti, PlayOptions{})
	p := h.snapshot().Player(state.SideSelf)
	assert.Equal(t, 3, p.Mana.Current, "yeti costs 1 after the discount")
	assert.Nil(t, p.Discount)

	h.play(state.SideSelf, raptor, PlayOptions{})
	assert.Equal(t, 1, h.snapshot().Player(state.SideSelf).Mana.Current, "raptor pays full price")
}

func TestFatigue(t *testing.T) {
	h := newEngineHarness(t, [2][]int{deckOf(wisp, 4), deckOf(wisp, 5)})
	require.Equal(t, 30, h.snapshot().Player(state.SideSelf).Hero.Health)

	h.endTurn(state.SideSelf)
	h.endTurn(state.SideOpponent)
	h.assertHeroHealth(state.SideSelf, 29)

	h.endTurn(state.SideSelf)
	h.assertHeroHealth(state.SideOpponent, 29)
	h.endTurn(state.SideOpponent)

	p := h.snapshot().Player(state.SideSelf)
	assert.Equal(t, 27, p.Hero.Health)
	assert.Equal(t, 2, p.Fatigue)
}

func TestResolveChoice(t *testing.T) {
	h := newDefaultHarness(t)
	h.setMana(state.SideSelf, 10)
	lackey := h.give(state.SideSelf, kabalLackey)
	h.play(state.SideSelf, lackey, PlayOptions{})

	g := h.snapshot()
	require.NotNil(t, g.PendingChoice)
	options := g.PendingChoice.OptionCount()
	require.Positive(t, options)
	handSize := len(g.Player(state.SideSelf).Hand)

	assert.ErrorIs(t, h.engine.EndTurn(h.id, state.SideSelf), state.ErrInvalidAction, "choice pending")
	view, err := h.engine.View(h.id, state.SideOpponent)
	require.NoError(t, err)
	require.NotNil(t, view.Choice)
	assert.Empty(t, view.Choice.Options)

	zero, outOfRange := 0, options
	_, err = h.engine.ResolveChoice(h.id, state.SideOpponent, &zero)
	assert.ErrorIs(t, err, state.ErrInvalidAction)
	_, err = h.engine.ResolveChoice(h.id, state.SideSelf, &outOfRange)
	assert.ErrorIs(t, err, state.ErrInvalidAction)

	res, err := h.engine.ResolveChoice(h.id, state.SideSelf, &zero)
	require.NoError(t, err)
	assert.True(t, res.Success)

	g = h.snapshot()
	assert.Nil(t, g.PendingChoice)
	assert.Len(t, g.Player(state.SideSelf).Hand, handSize+1)
	_, err = h.engine.ResolveChoice(h.id, state.SideSelf, &zero)
	assert.ErrorIs(t, err, state.ErrInvalidAction)
}

func TestViewHidesOpponentHand(t *testing.T) {
	h := newDefaultHarness(t)

	view, err := h.engine.View(h.id, state.SideSelf)
	require.NoError(t, err)
	require.Len(t, view.Players, 2)
	self, opp := view.Players[state.SideSelf], view.Players[state.SideOpponent]
	assert.Len(t, self.Hand, self.HandCount)
	assert.Empty(t, opp.Hand)
	assert.Equal(t, DefaultStartingHand+2, opp.HandCount)
	assert.Equal(t, "self", view.Viewer)
	assert.Equal(t, h.snapshot().Checksum(), view.Checksum)

	_, err = h.engine.View(h.id, state.Side(7))
	assert.ErrorIs(t, err, state.ErrInvalidAction)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	h := newDefaultHarness(t)
	var seen []rules.EventType
	cancel, err := h.engine.Subscribe(h.id, func(evt rules.Event) { seen = append(seen, evt.Type) })
	require.NoError(t, err)

	h.endTurn(state.SideSelf)
	assert.Contains(t, seen, rules.EventTurnEnded)
	assert.Contains(t, seen, rules.EventTurnStarted)
	assert.Contains(t, seen, rules.EventCardDrawn)

	cancel()
	n := len(seen)
	h.endTurn(state.SideOpponent)
	assert.Len(t, seen, n)
}

func TestSubscribeFiltersTypes(t *testing.T) {
	h := newDefaultHarness(t)
	var seen []rules.EventType
	cancel, err := h.engine.Subscribe(h.id, func(evt rules.Event) { seen = append(seen, evt.Type) }, rules.EventTurnStarted)
	require.NoError(t, err)
	defer cancel()

	h.endTurn(state.SideSelf)
	assert.Equal(t, []rules.EventType{rules.EventTurnStarted}, seen)
}
