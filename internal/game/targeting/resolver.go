package targeting

import (
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// Source describes who is targeting.
type Source struct {
	Side       state.Side
	InstanceID string
	// Spell marks spell sources; elusive minions cannot be chosen by them.
	Spell bool
}

// Resolve returns the ordered, deduplicated legal targets for tag. Minions
// come first in board order, the source's side before the other side, then
// heroes in the same side order. "none" and the empty tag resolve to an
// empty ModeNone selection. Chosen-mode sets exclude enemy stealthed
// minions, immune characters and, for spells, elusive minions.
func Resolve(g *state.GameState, src Source, tag TargetType) (Selection, error) {
	sel := Selection{Type: tag, Mode: ModeOf(tag)}
	if sel.Mode == ModeNone {
		return sel, nil
	}

	friendly, enemy := src.Side, src.Side.Opposite()
	var (
		minionSides []state.Side
		heroSides   []state.Side
		excludeSelf bool
	)
	switch tag {
	case Self:
		if loc, ok := g.Locate(src.InstanceID); ok && loc.Minion != nil {
			sel.Targets = []Target{{ID: loc.Minion.InstanceID, Side: loc.Side}}
		}
		return sel, nil
	case Adjacent:
		sel.Targets = adjacent(g, src)
		return sel, nil
	case FriendlyHero:
		heroSides = []state.Side{friendly}
	case EnemyHero:
		heroSides = []state.Side{enemy}
	case FriendlyMinion, AllFriendlyMinions, RandomFriendlyMinion:
		minionSides = []state.Side{friendly}
	case OtherFriendlyMinion, OtherFriendlyMinions:
		minionSides = []state.Side{friendly}
		excludeSelf = true
	case EnemyMinion, AllEnemyMinions, RandomEnemyMinion:
		minionSides = []state.Side{enemy}
	case AnyMinion, AllMinions:
		minionSides = []state.Side{friendly, enemy}
	case AllOtherMinions:
		minionSides = []state.Side{friendly, enemy}
		excludeSelf = true
	case FriendlyCharacter, AllFriendlyCharacters:
		minionSides = []state.Side{friendly}
		heroSides = []state.Side{friendly}
	case EnemyCharacter, AllEnemyCharacters, RandomEnemyCharacter:
		minionSides = []state.Side{enemy}
		heroSides = []state.Side{enemy}
	case AnyCharacter, AllCharacters:
		minionSides = []state.Side{friendly, enemy}
		heroSides = []state.Side{friendly, enemy}
	default:
		return sel, state.NewError(state.KindMissingRequiredParameter, "resolve targets", "unknown target type %q", tag)
	}

	chosen := sel.Mode == ModeChosen
	seen := make(map[string]bool)
	for _, side := range minionSides {
		for _, m := range g.Player(side).Battlefield {
			if seen[m.InstanceID] || !m.Alive() {
				continue
			}
			if excludeSelf && m.InstanceID == src.InstanceID {
				continue
			}
			if chosen && !Targetable(m, side != src.Side, src.Spell) {
				continue
			}
			seen[m.InstanceID] = true
			sel.Targets = append(sel.Targets, Target{ID: m.InstanceID, Side: side})
		}
	}
	for _, side := range heroSides {
		h := g.Player(side).Hero
		if seen[h.ID] || (chosen && h.Immune) {
			continue
		}
		seen[h.ID] = true
		sel.Targets = append(sel.Targets, Target{ID: h.ID, Side: side, Hero: true})
	}
	return sel, nil
}

// Targetable reports whether a minion may be singled out by a chosen-target
// effect.
func Targetable(m *state.CardInstance, enemy, spell bool) bool {
	if m.Immune {
		return false
	}
	if enemy && m.Stealth {
		return false
	}
	if spell && m.Elusive {
		return false
	}
	return true
}

func adjacent(g *state.GameState, src Source) []Target {
	loc, ok := g.Locate(src.InstanceID)
	if !ok || loc.Minion == nil {
		return nil
	}
	board := g.Player(loc.Side).Battlefield
	var out []Target
	for _, i := range []int{loc.Index - 1, loc.Index + 1} {
		if i >= 0 && i < len(board) && board[i].Alive() {
			out = append(out, Target{ID: board[i].InstanceID, Side: loc.Side})
		}
	}
	return out
}

// Choose validates a pre-chosen target id against the selection.
func Choose(sel Selection, targetID string) (Target, error) {
	if sel.Empty() {
		return Target{}, state.NewError(state.KindNoValidTargets, "choose target", "no legal %s targets", sel.Type)
	}
	if targetID == "" {
		return Target{}, state.NewError(state.KindMissingRequiredParameter, "choose target", "%s requires a target", sel.Type)
	}
	for _, t := range sel.Targets {
		if t.ID == targetID {
			return t, nil
		}
	}
	return Target{}, state.NewError(state.KindNoValidTargets, "choose target", "%s is not a legal %s target", targetID, sel.Type)
}

// AdjacentTo returns the minions next to the minion with the given id.
func AdjacentTo(g *state.GameState, id string) []Target {
	loc, ok := g.Locate(id)
	if !ok {
		return nil
	}
	return adjacent(g, Source{Side: loc.Side, InstanceID: id})
}
