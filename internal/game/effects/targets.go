package effects

import (
	"strings"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/game/targeting"
)

// resolveTargets turns the descriptor's target tag into the affected
// targets. fallback is used when the descriptor has no tag. A chosen-mode
// effect uses the context's pre-chosen target and never re-resolves it.
func resolveTargets(ctx *Context, eff *catalog.Effect, fallback targeting.TargetType) ([]targeting.Target, error) {
	tag := targeting.TargetType(eff.TargetType)
	if tag == "" {
		tag = fallback
	}
	sel, err := targeting.Resolve(ctx.State, ctx.targetingSource(), tag)
	if err != nil {
		return nil, err
	}

	switch sel.Mode {
	case targeting.ModeNone:
		return nil, nil
	case targeting.ModeChosen:
		if ctx.TargetID == "" {
			if !eff.RequiresTarget {
				return nil, nil
			}
			if sel.Empty() {
				return nil, state.NewError(state.KindNoValidTargets, eff.Type, "no legal %s", tag)
			}
			return nil, state.NewError(state.KindMissingRequiredParameter, eff.Type, "target required")
		}
		t, err := targeting.Choose(sel, ctx.TargetID)
		if err != nil {
			return nil, err
		}
		return []targeting.Target{t}, nil
	case targeting.ModeRandom:
		if sel.Empty() {
			return nil, requiredTargets(eff, tag)
		}
		return []targeting.Target{sel.Targets[ctx.rng().IntN(len(sel.Targets))]}, nil
	}
	if sel.Empty() {
		return nil, requiredTargets(eff, tag)
	}
	return sel.Targets, nil
}

func requiredTargets(eff *catalog.Effect, tag targeting.TargetType) error {
	if eff.RequiresTarget {
		return state.NewError(state.KindNoValidTargets, eff.Type, "no legal %s", tag)
	}
	return nil
}

// pickRandom draws up to n distinct targets without disturbing the input.
func pickRandom(ctx *Context, targets []targeting.Target, n int) []targeting.Target {
	if n >= len(targets) {
		n = len(targets)
	}
	perm := ctx.rng().Perm(len(targets))
	out := make([]targeting.Target, 0, n)
	for _, i := range perm[:n] {
		out = append(out, targets[i])
	}
	return out
}

// minionAt returns the live battlefield minion for a target.
func minionAt(ctx *Context, t targeting.Target) (*state.CardInstance, error) {
	if t.Hero {
		return nil, state.NewError(state.KindInvalidMinionOperation, "target", "%s is a hero", t.ID)
	}
	m := ctx.State.Player(t.Side).Minion(t.ID)
	if m == nil {
		return nil, state.NewError(state.KindEntityNotFound, "target", "minion %s", t.ID)
	}
	return m, nil
}

// affectedSide returns the opponent for enemy-tagged player effects (mill,
// give mana, enemy summons) and the acting side otherwise.
func affectedSide(ctx *Context, eff *catalog.Effect) state.Side {
	if strings.HasPrefix(eff.TargetType, "enemy") {
		return ctx.Side.Opposite()
	}
	return ctx.Side
}
