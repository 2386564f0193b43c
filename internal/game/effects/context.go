package effects

import (
	"math/rand/v2"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/game/targeting"
)

// Context is the mutation context of one resolution. Handlers change
// State in place; the spell family hands them a private clone.
type Context struct {
	State *state.GameState
	Side  state.Side
	// Source is the card whose effect resolves. It may be off the board
	// (a spell, a dead minion).
	Source *state.CardInstance
	// TargetID is the pre-chosen target, if any.
	TargetID string
	// Slot is where summons land. Deathrattles use the dead minion's slot;
	// -1 places summons right of the source or at the end of the board.
	Slot  int
	Spell bool

	family  Family
	depth   int
	summons int
	queue   *triggerQueue
}

// triggerQueue collects triggers unlocked during a resolution. Nested
// contexts share it.
type triggerQueue struct {
	frenzy []frenzyTrigger
}

type frenzyTrigger struct {
	side   state.Side
	minion string
	effect *catalog.Effect
}

func (c *Context) player() *state.PlayerState {
	return c.State.Player(c.Side)
}

func (c *Context) opponent() *state.PlayerState {
	return c.State.Player(c.Side.Opposite())
}

func (c *Context) rng() *rand.Rand {
	return c.State.Rand()
}

func (c *Context) sourceID() string {
	if c.Source == nil {
		return ""
	}
	return c.Source.InstanceID
}

func (c *Context) sourceCardID() int {
	if c.Source == nil {
		return 0
	}
	return c.Source.Card.ID
}

func (c *Context) targetingSource() targeting.Source {
	return targeting.Source{Side: c.Side, InstanceID: c.sourceID(), Spell: c.Spell}
}

// sourceHas reports a keyword on the source, reading printed keywords for
// cards that never entered play.
func (c *Context) sourceHas(k catalog.Keyword) bool {
	if c.Source == nil {
		return false
	}
	if c.Source.HasKeyword(k) {
		return true
	}
	return !c.Source.IsMinion() && c.Source.Card.HasKeyword(k)
}

// summonPos returns the board position for the next summon.
func (c *Context) summonPos() int {
	if c.Slot >= 0 {
		return c.Slot + c.summons
	}
	if c.Source != nil {
		if i := c.player().MinionIndex(c.Source.InstanceID); i >= 0 {
			return i + 1 + c.summons
		}
	}
	return -1
}

// child returns a context for a nested resolution sharing the pending
// trigger queue.
func (c *Context) child() *Context {
	out := *c
	out.depth = c.depth + 1
	return &out
}

// damage applies damage from the source and queues any frenzy it unlocks.
func (c *Context) damage(targetID string, amount int) (keywords.DamageResult, error) {
	res, err := keywords.DealDamage(c.State, keywords.DamageRequest{
		SourceID:   c.sourceID(),
		SourceSide: c.Side,
		TargetID:   targetID,
		Amount:     amount,
		Poisonous:  !c.Spell && c.sourceHas(catalog.KeywordPoisonous),
		Lifesteal:  c.sourceHas(catalog.KeywordLifesteal),
	})
	if err == nil && res.Frenzy != nil {
		c.QueueFrenzy(res.Side, res.TargetID, res.Frenzy)
	}
	return res, err
}

// QueueFrenzy schedules a frenzy effect to fire at the next settle.
func (c *Context) QueueFrenzy(side state.Side, minionID string, eff *catalog.Effect) {
	if c.queue == nil {
		c.queue = &triggerQueue{}
	}
	c.queue.frenzy = append(c.queue.frenzy, frenzyTrigger{side: side, minion: minionID, effect: eff})
}

// spellAmount adds the side's spell damage to spell-sourced damage.
func (c *Context) spellAmount(base int) int {
	if !c.Spell || base <= 0 {
		return base
	}
	return base + c.player().SpellDamage()
}
