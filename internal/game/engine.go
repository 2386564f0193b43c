// Package game hosts the engine: the registry of running matches and the
// player operations (play a card, attack, end the turn, answer a choice)
// that drive them. Every operation on a match runs under that match's
// lock; different matches proceed in parallel.
package game

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/combat"
	"github.com/norsecards/ragnarok-engine/internal/game/effects"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/presentation"
	"go.uber.org/zap"
)

// Defaults for new games.
const (
	DefaultStartingHand = 3
	CoinCardID          = 508
)

// Config holds engine-wide defaults.
type Config struct {
	// Seed is used by games created without one. Zero draws a seed from
	// the clock.
	Seed           uint64
	StartingHealth int
	StartingHand   int
	// StepDuration is the playback time of one combat step.
	StepDuration time.Duration
	// Autoplay starts a playback loop for every game's presentation queue.
	Autoplay bool
	// ScriptBudget caps the Lua instructions of one effect script. Zero
	// uses effects.DefaultScriptBudget.
	ScriptBudget int
}

// GameOptions describes a new game. Zero values fall back to the engine
// config.
type GameOptions struct {
	ID             string   `mapstructure:"id"`
	Seed           uint64   `mapstructure:"seed"`
	Decks          [2][]int `mapstructure:"decks"`
	StartingHealth int      `mapstructure:"starting_health"`
	StartingHand   int      `mapstructure:"starting_hand"`
}

// gameEntry is one running match.
type gameEntry struct {
	mu        sync.Mutex
	state     *state.GameState
	pipeline  *combat.Pipeline
	queue     *presentation.Queue
	bus       *rules.EventBus
	replay    *Replay
	published int
	announced bool
}

// Engine runs matches.
type Engine struct {
	logger     *zap.Logger
	catalog    *catalog.Catalog
	dispatcher *effects.Dispatcher
	cfg        Config

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.RWMutex
	games map[string]*gameEntry
}

// NewEngine creates an engine over a card catalog.
func NewEngine(logger *zap.Logger, cat *catalog.Catalog, cfg Config) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StartingHealth <= 0 {
		cfg.StartingHealth = state.StartingHealth
	}
	if cfg.StartingHand <= 0 {
		cfg.StartingHand = DefaultStartingHand
	}
	dispatcher := effects.NewDispatcher(cat, nil, logger.Named("effects"))
	dispatcher.Scripts().SetBudget(cfg.ScriptBudget)
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		logger:     logger,
		catalog:    cat,
		dispatcher: dispatcher,
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		games:      make(map[string]*gameEntry),
	}
}

// Catalog returns the engine's card catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// CreateGame sets up a match: both decks shuffled with the game seed,
// opening hands dealt (the second player gets one more card and the Coin)
// and the first turn started.
func (e *Engine) CreateGame(opts GameOptions) (string, error) {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Seed == 0 {
		opts.Seed = e.cfg.Seed
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	if opts.StartingHealth <= 0 {
		opts.StartingHealth = e.cfg.StartingHealth
	}
	if opts.StartingHand <= 0 {
		opts.StartingHand = e.cfg.StartingHand
	}

	g, err := e.setup(opts)
	if err != nil {
		return "", err
	}

	entry := &gameEntry{
		state:    g,
		pipeline: combat.NewPipeline(e.dispatcher, e.logger.Named("combat")),
		bus:      rules.NewEventBus(),
		replay:   NewReplay(opts),
	}
	entry.queue = presentation.NewQueue(opts.ID, presentation.QueueOptions{
		StepDuration: e.cfg.StepDuration,
		Logger:       e.logger.Named("presentation"),
		OnComplete:   func(stepID string) { e.release(entry, stepID) },
	})

	e.mu.Lock()
	if _, exists := e.games[opts.ID]; exists {
		e.mu.Unlock()
		entry.queue.Close()
		return "", state.NewError(state.KindInvalidAction, "create game", "game %s already exists", opts.ID)
	}
	e.games[opts.ID] = entry
	e.mu.Unlock()

	if e.cfg.Autoplay {
		go func() {
			if err := entry.queue.Run(e.ctx); err != nil && e.ctx.Err() == nil {
				e.logger.Warn("presentation playback stopped", zap.String("game_id", opts.ID), zap.Error(err))
			}
		}()
	}

	entry.mu.Lock()
	e.publish(entry)
	entry.mu.Unlock()

	e.logger.Info("game created",
		zap.String("game_id", opts.ID),
		zap.Uint64("seed", opts.Seed),
		zap.Int("deck_self", len(opts.Decks[state.SideSelf])),
		zap.Int("deck_opponent", len(opts.Decks[state.SideOpponent])),
	)
	return opts.ID, nil
}

func (e *Engine) setup(opts GameOptions) (*state.GameState, error) {
	g := state.New(opts.ID, opts.Seed, opts.StartingHealth)
	for _, side := range state.Sides {
		p := g.Player(side)
		for _, id := range opts.Decks[side] {
			def, found := e.catalog.GetByID(id)
			if !found {
				return nil, fmt.Errorf("deck for %s: %w", side,
					state.NewError(state.KindEntityNotFound, "create game", "card %d", id))
			}
			p.Deck = append(p.Deck, g.NewInstance(def))
		}
		g.ShuffleDeck(side)
	}

	g.Emit(rules.NewEvent(rules.EventGameStarted, "", "", state.SideSelf.String()))
	g.Draw(state.SideSelf, opts.StartingHand)
	g.Draw(state.SideOpponent, opts.StartingHand+1)
	if coin, found := e.catalog.GetByID(CoinCardID); found {
		g.AddToHand(state.SideOpponent, g.NewInstance(coin))
	}
	e.startTurn(g, state.SideSelf)
	return g, nil
}

// RemoveGame forgets a match and closes its presentation queue.
func (e *Engine) RemoveGame(gameID string) error {
	e.mu.Lock()
	entry, found := e.games[gameID]
	delete(e.games, gameID)
	e.mu.Unlock()
	if !found {
		return notFound(gameID)
	}
	entry.queue.Close()
	e.logger.Info("game removed", zap.String("game_id", gameID))
	return nil
}

// Close stops playback loops and closes every game's queue.
func (e *Engine) Close() {
	e.cancel()
	e.mu.Lock()
	entries := make([]*gameEntry, 0, len(e.games))
	for id, entry := range e.games {
		entries = append(entries, entry)
		delete(e.games, id)
	}
	e.mu.Unlock()
	for _, entry := range entries {
		entry.queue.Close()
	}
}

// Games returns the ids of the running matches in lexical order.
func (e *Engine) Games() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.games))
}

func (e *Engine) game(gameID string) (*gameEntry, error) {
	e.mu.RLock()
	entry, found := e.games[gameID]
	e.mu.RUnlock()
	if !found {
		return nil, notFound(gameID)
	}
	return entry, nil
}

func notFound(gameID string) error {
	return state.NewError(state.KindEntityNotFound, "lookup game", "game %s", gameID)
}

// Snapshot returns a read-only copy of a game. Changes to it never reach
// the running match.
func (e *Engine) Snapshot(gameID string) (*state.GameState, error) {
	entry, err := e.game(gameID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state.Clone(), nil
}

// Presentation returns a game's presentation queue.
func (e *Engine) Presentation(gameID string) (*presentation.Queue, error) {
	entry, err := e.game(gameID)
	if err != nil {
		return nil, err
	}
	return entry.queue, nil
}

// Subscribe registers a listener for a game's events. Listeners run
// synchronously under the game lock and must not call back into the
// engine for the same game. Passing types restricts delivery to those
// event types. The returned function unsubscribes.
func (e *Engine) Subscribe(gameID string, listener rules.Listener, types ...rules.EventType) (func(), error) {
	entry, err := e.game(gameID)
	if err != nil {
		return nil, err
	}
	handle := entry.bus.Subscribe(listener, types...)
	return func() { entry.bus.Unsubscribe(handle) }, nil
}

// publish forwards log entries added since the last call to subscribers
// and the presentation queue. Callers hold entry.mu.
func (e *Engine) publish(entry *gameEntry) {
	g := entry.state
	events := g.EventsSince(entry.published)
	entry.published = len(g.Log)
	for _, evt := range events {
		entry.bus.Publish(evt)
		entry.queue.PublishEvent(evt)
	}
	if g.Over && !entry.announced {
		entry.announced = true
		winner := "draw"
		if g.Winner != nil {
			winner = g.Winner.String()
		}
		e.logger.Info("game over",
			zap.String("game_id", g.ID),
			zap.String("winner", winner),
			zap.Int("turn", g.TurnNumber()),
		)
	}
}

// release drops a step the presentation layer has finished with.
func (e *Engine) release(entry *gameEntry, stepID string) {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := entry.pipeline.Release(stepID); err != nil {
		e.logger.Debug("combat step release skipped", zap.String("step_id", stepID), zap.Error(err))
	}
}

// present hands resolved steps to the presentation queue. The state has
// already changed; a refused step is only logged.
func (e *Engine) present(entry *gameEntry, steps ...combat.CombatStep) {
	for _, step := range steps {
		if err := entry.queue.PushStep(step); err != nil {
			e.logger.Warn("combat step not presented",
				zap.String("game_id", entry.state.ID),
				zap.String("step_id", step.ID),
				zap.Error(err),
			)
		}
	}
}

// checkTurn rejects actions out of turn, after the game ended or while a
// choice is pending.
func checkTurn(g *state.GameState, side state.Side, op string) error {
	switch {
	case !side.Valid():
		return state.NewError(state.KindInvalidAction, op, "unknown side %d", int(side))
	case g.Over:
		return state.NewError(state.KindGameOver, op, "game %s is over", g.ID)
	case g.PendingChoice != nil:
		return state.NewError(state.KindInvalidAction, op, "a choice is pending")
	case g.Current() != side:
		return state.NewError(state.KindInvalidAction, op, "it is not %s's turn", side)
	}
	return nil
}
