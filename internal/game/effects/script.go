package effects

import (
	"github.com/Shopify/go-lua"
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/zap"
)

// ScriptRunner runs the Lua script attached to a descriptor whose tag has
// no registered handler. Scripts see only the base library and a small
// game API; every API call resolves through the regular handlers.
type ScriptRunner struct {
	d      *Dispatcher
	logger *zap.Logger
	budget int
}

// DefaultScriptBudget is the number of Lua instructions a script may run
// before it is aborted.
const DefaultScriptBudget = 1_000_000

// scriptHookEvery is the instruction interval of the budget hook.
const scriptHookEvery = 1000

// NewScriptRunner creates a runner resolving API calls through d.
func NewScriptRunner(d *Dispatcher, logger *zap.Logger) *ScriptRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptRunner{d: d, logger: logger, budget: DefaultScriptBudget}
}

// SetBudget sets the instruction budget of each run. Non-positive values
// restore the default.
func (r *ScriptRunner) SetBudget(instructions int) {
	if instructions <= 0 {
		instructions = DefaultScriptBudget
	}
	r.budget = instructions
}

// Budget returns the instruction budget of each run.
func (r *ScriptRunner) Budget() int {
	return r.budget
}

// Base functions removed from the sandbox: they reach the filesystem,
// compile code, or catch the budget error.
var removedGlobals = []string{
	"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage",
	"pcall", "xpcall",
}

// limit aborts the running script once it has executed budget
// instructions. The hook keeps failing after that, so the error cannot be
// swallowed.
func limit(l *lua.State, budget int) {
	used := 0
	lua.SetDebugHook(l, func(l *lua.State, _ lua.Debug) {
		used += scriptHookEvery
		if used >= budget {
			lua.Errorf(l, "instruction budget of %d exhausted", budget)
		}
	}, lua.MaskCount, scriptHookEvery)
}

// Run executes eff.Script against ctx. Lua errors and failed API calls fail
// the result.
func (r *ScriptRunner) Run(ctx *Context, eff *catalog.Effect) Result {
	k := Kind(eff.Type)
	l := lua.NewState()
	lua.Require(l, "_G", lua.BaseOpen, true)
	l.Pop(1)
	for _, name := range removedGlobals {
		l.PushNil()
		l.SetGlobal(name)
	}

	b := &scriptBinding{runner: r, ctx: ctx, res: ok(k)}
	for name, fn := range b.functions() {
		l.Register(name, fn)
	}

	if err := lua.LoadString(l, eff.Script); err != nil {
		return fail(k, state.NewError(state.KindInvalidAction, "script", "compile %s: %v", eff.Type, err))
	}
	limit(l, r.budget)
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		r.logger.Warn("effect script failed",
			zap.String("game_id", ctx.State.ID),
			zap.String("kind", eff.Type),
			zap.Error(err),
		)
		return fail(k, state.NewError(state.KindInvalidAction, "script", "run %s: %v", eff.Type, err))
	}
	b.res.Kind = k
	return b.res
}

// scriptBinding holds the per-run state behind the Lua API.
type scriptBinding struct {
	runner *ScriptRunner
	ctx    *Context
	res    Result
}

func (b *scriptBinding) functions() map[string]lua.Function {
	return map[string]lua.Function{
		"damage": b.amountCall(KindDamage),
		"heal":   b.amountCall(KindHeal),
		"draw": func(l *lua.State) int {
			return b.call(l, &catalog.Effect{Type: string(KindDraw), Value: catalog.Int(lua.OptInteger(l, 1, 1))})
		},
		"armor": func(l *lua.State) int {
			return b.call(l, &catalog.Effect{Type: string(KindGainArmor), Value: catalog.Int(lua.CheckInteger(l, 1))})
		},
		"summon": func(l *lua.State) int {
			return b.call(l, &catalog.Effect{Type: string(KindSummon), CardID: catalog.Int(lua.CheckInteger(l, 1))})
		},
		"buff": func(l *lua.State) int {
			return b.call(l, &catalog.Effect{
				Type:       string(KindBuff),
				TargetType: lua.CheckString(l, 1),
				Attack:     catalog.Int(lua.CheckInteger(l, 2)),
				Health:     catalog.Int(lua.OptInteger(l, 3, 0)),
			})
		},
		"side": func(l *lua.State) int {
			l.PushString(b.ctx.Side.String())
			return 1
		},
		"target": func(l *lua.State) int {
			if b.ctx.TargetID == "" {
				l.PushNil()
			} else {
				l.PushString(b.ctx.TargetID)
			}
			return 1
		},
	}
}

// amountCall builds f(tag, n) for targeted amount effects.
func (b *scriptBinding) amountCall(k Kind) lua.Function {
	return func(l *lua.State) int {
		return b.call(l, &catalog.Effect{
			Type:       string(k),
			TargetType: lua.CheckString(l, 1),
			Value:      catalog.Int(lua.CheckInteger(l, 2)),
		})
	}
}

// call resolves eff and returns its success to the script.
func (b *scriptBinding) call(l *lua.State, eff *catalog.Effect) int {
	res := b.runner.d.run(b.ctx.family, b.ctx.child(), eff, false)
	b.res = b.res.Merge(res)
	if !res.Success {
		b.runner.logger.Debug("script call failed",
			zap.String("kind", eff.Type),
			zap.Error(res.Err),
		)
	}
	l.PushBoolean(res.Success)
	return 1
}
