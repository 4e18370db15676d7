package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Lua global names a rules script may define to override engine defaults.
const (
	hookConcentrationDC = "concentration_dc"
)

// DefaultConcentrationDC is the stock difficulty for a concentration save
// against incoming damage: DC 10 or half the damage dealt, whichever is
// higher.
func DefaultConcentrationDC(damage int) int {
	if damage < 0 {
		panic(fmt.Sprintf("scripting: negative damage %d", damage))
	}
	if dc := damage / 2; dc > 10 {
		return dc
	}
	return 10
}

// Rules owns a single sandboxed LState holding loaded house-rule scripts and
// dispatches override hooks into it. A Rules with no scripts loaded answers
// every hook with the engine default.
//
// Each hook call runs under a fresh instruction budget, so one expensive
// invocation cannot starve the next. Calls are serialized; the LState is
// single-threaded.
type Rules struct {
	mu        sync.Mutex
	state     *lua.LState
	cancel    func()
	instLimit int
	logger    *zap.Logger
}

// NewRules creates a Rules with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewRules(logger *zap.Logger) *Rules {
	return &Rules{logger: logger}
}

// Close releases the underlying Lua VM, if any.
func (r *Rules) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.state != nil {
		r.state.Close()
		r.state = nil
	}
}

// LoadDirectory creates a sandboxed VM and executes every *.lua file in dir
// in lexicographic order, replacing any previously loaded scripts.
//
// Precondition: dir must be a readable directory.
func (r *Rules) LoadDirectory(dir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)

	entries, err := os.ReadDir(dir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading rules dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	if r.state != nil {
		r.state.Close()
	}
	r.state = L
	r.cancel = cancel
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	r.instLimit = instLimit
	return nil
}

// ConcentrationDC returns the save difficulty a concentrating caster faces
// after taking damage. A loaded script's concentration_dc(damage) global
// takes precedence; otherwise DefaultConcentrationDC applies. A script that
// errors or returns a non-number falls back to the default, never below
// DC 10.
//
// Precondition: damage >= 0.
func (r *Rules) ConcentrationDC(damage int) int {
	fallback := DefaultConcentrationDC(damage)

	ret, ok := r.callNumberHook(hookConcentrationDC, lua.LNumber(damage))
	if !ok {
		return fallback
	}
	dc := int(ret)
	if dc < 10 {
		r.logger.Warn("scripting: hook returned DC below floor",
			zap.String("hook", hookConcentrationDC),
			zap.Int("returned", dc),
		)
		return 10
	}
	return dc
}

// callNumberHook calls the named Lua global and reports its numeric result.
// Missing state, missing hook, runtime errors, and non-number returns all
// report ok=false; runtime errors are logged at Warn and never propagated
// into turn resolution.
func (r *Rules) callNumberHook(hook string, args ...lua.LValue) (lua.LNumber, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return 0, false
	}

	fn := r.state.GetGlobal(hook)
	if fn == lua.LNil {
		return 0, false
	}

	// Fresh budget per invocation.
	ctx, cancel := newCountingContext(r.instLimit)
	defer cancel()
	r.state.SetContext(ctx)

	if err := r.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		r.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return 0, false
	}

	ret := r.state.Get(-1)
	r.state.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		r.logger.Warn("scripting: hook returned non-number",
			zap.String("hook", hook),
			zap.String("type", ret.Type().String()),
		)
		return 0, false
	}
	return n, true
}
