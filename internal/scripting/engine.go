package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the AI hooks.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	calls uint64
	fails uint64
}

// NewEngine creates a Lua engine and loads scripts/core then scripts/ai.
// Missing directories are skipped; a script that fails to load is an error.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, sub := range []string{"core", "ai"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// MobjView is the part of a map object exposed to scripts.
type MobjView struct {
	Kind   string
	Team   int
	Health int
	X, Y   int // map units
}

func (e *Engine) mobjTable(m MobjView) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("kind", lua.LString(m.Kind))
	t.RawSetString("team", lua.LNumber(m.Team))
	t.RawSetString("health", lua.LNumber(m.Health))
	t.RawSetString("x", lua.LNumber(m.X))
	t.RawSetString("y", lua.LNumber(m.Y))
	return t
}

// AttackContext is passed to is_okay_to_attack.
type AttackContext struct {
	Hunter MobjView
	Target MobjView
	Dist   int // approximate distance in map units
}

// IsOkayToAttack asks the Lua is_okay_to_attack(ctx) hook whether a hunter
// may pick target. Without the hook, or when it fails, living objects of
// other teams are accepted.
func (e *Engine) IsOkayToAttack(ctx AttackContext) bool {
	fallback := ctx.Target.Health > 0 && ctx.Target.Team != ctx.Hunter.Team

	fn := e.vm.GetGlobal("is_okay_to_attack")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("hunter", e.mobjTable(ctx.Hunter))
	t.RawSetString("target", e.mobjTable(ctx.Target))
	t.RawSetString("dist", lua.LNumber(ctx.Dist))

	e.calls++
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.fails++
		e.log.Error("lua is_okay_to_attack error", zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return lua.LVAsBool(result)
}

// BounceAngle asks bounce_angle(angle, roll) for a new heading in degrees
// after a mover hit a wall. Without the hook the mover turns around.
func (e *Engine) BounceAngle(angle, roll int) int {
	if e.vm.GetGlobal("bounce_angle") == lua.LNil {
		return (angle + 180) % 360
	}
	a, ok := e.callIntFunc("bounce_angle", angle, roll)
	if !ok {
		return (angle + 180) % 360
	}
	return ((a % 360) + 360) % 360
}

// Stats reports hook calls made and how many of them failed.
func (e *Engine) Stats() (calls, fails uint64) { return e.calls, e.fails }

// callIntFunc calls a Lua function with int args and returns an int result.
func (e *Engine) callIntFunc(name string, args ...int) (int, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0, false
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	e.calls++
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.fails++
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result)), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
