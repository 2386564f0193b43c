package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ActionKind names a recorded player action.
type ActionKind string

const (
	ActionPlayCard       ActionKind = "play_card"
	ActionAttack         ActionKind = "attack"
	ActionDeclareAttack  ActionKind = "declare_attack"
	ActionResolvePending ActionKind = "resolve_pending"
	ActionEndTurn        ActionKind = "end_turn"
	ActionResolveChoice  ActionKind = "resolve_choice"
)

// Action is one accepted player action and the state checksum right after
// it was applied.
type Action struct {
	Kind     ActionKind
	Side     state.Side
	ID       string
	TargetID string
	Play     PlayOptions
	Selected *int
	Checksum string
}

// Replay is the action log of a game. Games are deterministic for a given
// seed, so replaying the log over the recorded options rebuilds the game.
type Replay struct {
	GameID       string
	Options      GameOptions
	Actions      []Action
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty log for a game created with opts.
func NewReplay(opts GameOptions) *Replay {
	return &Replay{
		GameID:  opts.ID,
		Options: opts,
	}
}

func (r *Replay) record(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Actions = append(r.Actions, a)
}

// Start rewinds playback to the first action.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CurrentIndex = 0
}

// Next returns the next action, or false at the end of the log.
func (r *Replay) Next() (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex >= len(r.Actions) {
		return Action{}, false
	}
	a := r.Actions[r.CurrentIndex]
	r.CurrentIndex++
	return a, true
}

// Previous steps playback back by one action.
func (r *Replay) Previous() (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex == 0 {
		return Action{}, false
	}
	r.CurrentIndex--
	return r.Actions[r.CurrentIndex], true
}

// Size returns the number of recorded actions.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Actions)
}

// At returns the action at index.
func (r *Replay) At(index int) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.Actions) {
		return Action{}, false
	}
	return r.Actions[index], true
}

func (r *Replay) clone() *Replay {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &Replay{
		GameID:  r.GameID,
		Options: r.Options,
		Actions: make([]Action, len(r.Actions)),
	}
	copy(out.Actions, r.Actions)
	return out
}

const replayVersion = 1

type replayMetadata struct {
	GameID      string
	Timestamp   time.Time
	Version     int
	Options     GameOptions
	ActionCount int
}

// SaveToFile writes the replay as <dir>/<game id>.replay, gob encoded and
// gzipped.
func (r *Replay) SaveToFile(fs afero.Fs, dir string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create replay directory: %w", err)
	}
	file, err := fs.Create(replayPath(dir, r.GameID))
	if err != nil {
		return fmt.Errorf("create replay file: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	enc := gob.NewEncoder(zw)
	meta := replayMetadata{
		GameID:      r.GameID,
		Timestamp:   time.Now(),
		Version:     replayVersion,
		Options:     r.Options,
		ActionCount: len(r.Actions),
	}
	if err := enc.Encode(&meta); err != nil {
		return fmt.Errorf("encode replay metadata: %w", err)
	}
	for i := range r.Actions {
		if err := enc.Encode(&r.Actions[i]); err != nil {
			return fmt.Errorf("encode action %d: %w", i, err)
		}
	}
	return zw.Close()
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(fs afero.Fs, dir, gameID string) (*Replay, error) {
	file, err := fs.Open(replayPath(dir, gameID))
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("open replay stream: %w", err)
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var meta replayMetadata
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode replay metadata: %w", err)
	}
	if meta.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", meta.Version)
	}

	r := NewReplay(meta.Options)
	r.GameID = meta.GameID
	r.Actions = make([]Action, 0, meta.ActionCount)
	for i := 0; i < meta.ActionCount; i++ {
		var a Action
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("decode action %d: %w", i, err)
		}
		r.Actions = append(r.Actions, a)
	}
	return r, nil
}

func replayPath(dir, gameID string) string {
	return filepath.Join(dir, gameID+".replay")
}

// Replay returns a copy of a game's action log.
func (e *Engine) Replay(gameID string) (*Replay, error) {
	entry, err := e.game(gameID)
	if err != nil {
		return nil, err
	}
	return entry.replay.clone(), nil
}

// SaveReplay writes a game's action log under dir.
func (e *Engine) SaveReplay(fs afero.Fs, dir, gameID string) error {
	r, err := e.Replay(gameID)
	if err != nil {
		return err
	}
	if err := r.SaveToFile(fs, dir); err != nil {
		return fmt.Errorf("save replay %s: %w", gameID, err)
	}
	e.logger.Info("saved replay",
		zap.String("game_id", gameID),
		zap.Int("actions", r.Size()),
		zap.String("directory", dir),
	)
	return nil
}

// VerifyReplay replays a log on a scratch engine sharing this engine's
// catalog and checks every recorded checksum. It returns the checksum of
// the final state.
func (e *Engine) VerifyReplay(r *Replay) (string, error) {
	cfg := e.cfg
	cfg.Autoplay = false
	scratch := NewEngine(e.logger.Named("replay"), e.catalog, cfg)
	defer scratch.Close()

	id, err := scratch.CreateGame(r.Options)
	if err != nil {
		return "", fmt.Errorf("replay setup: %w", err)
	}
	for i, a := range r.Actions {
		if err := scratch.apply(id, a); err != nil {
			return "", fmt.Errorf("replay action %d (%s): %w", i, a.Kind, err)
		}
		g, err := scratch.Snapshot(id)
		if err != nil {
			return "", err
		}
		if sum := g.Checksum(); sum != a.Checksum {
			return "", fmt.Errorf("replay action %d (%s): checksum %s, recorded %s", i, a.Kind, sum, a.Checksum)
		}
	}
	g, err := scratch.Snapshot(id)
	if err != nil {
		return "", err
	}
	return g.Checksum(), nil
}

func (e *Engine) apply(gameID string, a Action) error {
	var err error
	switch a.Kind {
	case ActionPlayCard:
		_, err = e.PlayCard(gameID, a.Side, a.ID, a.Play)
	case ActionAttack:
		_, err = e.Attack(gameID, a.Side, a.ID, a.TargetID)
	case ActionDeclareAttack:
		_, err = e.DeclareAttack(gameID, a.Side, a.ID, a.TargetID)
	case ActionResolvePending:
		_, err = e.ResolvePending(gameID, a.Side)
	case ActionEndTurn:
		err = e.EndTurn(gameID, a.Side)
	case ActionResolveChoice:
		_, err = e.ResolveChoice(gameID, a.Side, a.Selected)
	default:
		err = state.NewError(state.KindInvalidAction, "replay", "unknown action %q", a.Kind)
	}
	return err
}
