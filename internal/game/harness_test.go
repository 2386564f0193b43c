package game

import (
	"testing"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Demo card ids used by the engine tests.
const (
	wisp           = 1
	chillwindYeti  = 5
	stonetuskBoar  = 10
	youngWolf      = 9
	bloodfenRaptor = 17
	mechwarper     = 22
	si7Agent       = 69
	kabalLackey    = 71
	annoyOModule   = 100
	neptulon       = 110
	fireball       = 200
	heroicStrike   = 218
	lavaBurst      = 223
	eviscerate     = 235
	timeWarp       = 249
	preparation    = 250
	fieryWarAxe    = 300
)

const testSeed = 42

// engineHarness drives one game on a fresh engine. Direct state edits go
// through mutate so they run under the game lock.
type engineHarness struct {
	t      *testing.T
	engine *Engine
	id     string
}

func newEngineHarness(t *testing.T, decks [2][]int) *engineHarness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	e := NewEngine(logger, catalog.New(nil, logger), Config{Seed: testSeed})
	t.Cleanup(e.Close)

	id, err := e.CreateGame(GameOptions{ID: "test-game", Decks: decks})
	require.NoError(t, err)
	return &engineHarness{t: t, engine: e, id: id}
}

// newDefaultHarness starts a game with twenty Wisps per deck.
func newDefaultHarness(t *testing.T) *engineHarness {
	return newEngineHarness(t, [2][]int{deckOf(wisp, 20), deckOf(wisp, 20)})
}

func deckOf(cardID, n int) []int {
	deck := make([]int, n)
	for i := range deck {
		deck[i] = cardID
	}
	return deck
}

func (h *engineHarness) def(cardID int) catalog.Definition {
	h.t.Helper()
	def, found := h.engine.Catalog().GetByID(cardID)
	require.True(h.t, found, "card %d", cardID)
	return def
}

func (h *engineHarness) mutate(fn func(g *state.GameState)) {
	h.t.Helper()
	entry, err := h.engine.game(h.id)
	require.NoError(h.t, err)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(entry.state)
}

func (h *engineHarness) snapshot() *state.GameState {
	h.t.Helper()
	g, err := h.engine.Snapshot(h.id)
	require.NoError(h.t, err)
	return g
}

// give puts a card straight into a hand and returns its instance id.
func (h *engineHarness) give(side state.Side, cardID int) string {
	h.t.Helper()
	def := h.def(cardID)
	var id string
	h.mutate(func(g *state.GameState) {
		ci := g.NewInstance(def)
		g.Player(side).Hand = append(g.Player(side).Hand, ci)
		id = ci.InstanceID
	})
	return id
}

// place summons a minion that has already waited a turn.
func (h *engineHarness) place(side state.Side, cardID int) string {
	h.t.Helper()
	def := h.def(cardID)
	var id string
	h.mutate(func(g *state.GameState) {
		ci, err := keywords.Summon(g, side, def, -1)
		require.NoError(h.t, err)
		ci.SummoningSick = false
		id = ci.InstanceID
	})
	return id
}

func (h *engineHarness) setMana(side state.Side, n int) {
	h.mutate(func(g *state.GameState) {
		g.Player(side).Mana.Max = n
		g.Player(side).Mana.Current = n
	})
}

func (h *engineHarness) heroID(side state.Side) string {
	return h.snapshot().Player(side).Hero.ID
}

func (h *engineHarness) play(side state.Side, handID string, opts PlayOptions) {
	h.t.Helper()
	res, err := h.engine.PlayCard(h.id, side, handID, opts)
	require.NoError(h.t, err)
	require.True(h.t, res.Success, "play failed: %v", res.Err)
}

func (h *engineHarness) endTurn(side state.Side) {
	h.t.Helper()
	require.NoError(h.t, h.engine.EndTurn(h.id, side))
}

// handOf returns the instance ids in a hand holding cardID.
func handOf(g *state.GameState, side state.Side, cardID int) []string {
	var ids []string
	for _, ci := range g.Player(side).Hand {
		if ci.Card.ID == cardID {
			ids = append(ids, ci.InstanceID)
		}
	}
	return ids
}

func (h *engineHarness) assertHeroHealth(side state.Side, want int, msgAndArgs ...any) {
	h.t.Helper()
	assert.Equal(h.t, want, h.snapshot().Player(side).Hero.Health, msgAndArgs...)
}

func (h *engineHarness) assertBoardSize(side state.Side, want int) {
	h.t.Helper()
	assert.Len(h.t, h.snapshot().Player(side).Battlefield, want)
}

func (h *engineHarness) assertMinionAlive(side state.Side, id string) {
	h.t.Helper()
	assert.NotNil(h.t, h.snapshot().Player(side).Minion(id), "minion %s should be on the board", id)
}

func (h *engineHarness) assertMinionDead(side state.Side, id string) {
	h.t.Helper()
	assert.Nil(h.t, h.snapshot().Player(side).Minion(id), "minion %s should be gone", id)
}
