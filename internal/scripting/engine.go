package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// KeyReader is the input collaborator exposed to scripts as is_pressed(code).
type KeyReader interface {
	IsPressed(code string) bool
}

// Engine wraps a single gopher-lua VM running gameplay controller scripts.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine, binds the input collaborator and loads all
// scripts from dir. A missing directory yields an engine without scripts.
func NewEngine(dir string, keys KeyReader, log *zap.Logger) (*Engine, error) {
	e := newEngine(keys, log)
	if err := e.loadDir(dir); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// NewEngineFromSource builds an engine from an in-memory chunk.
func NewEngineFromSource(src string, keys KeyReader, log *zap.Logger) (*Engine, error) {
	e := newEngine(keys, log)
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load script source: %w", err)
	}
	return e, nil
}

func newEngine(keys KeyReader, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("is_pressed", vm.NewFunction(func(L *lua.LState) int {
		code := L.CheckString(1)
		L.Push(lua.LBool(keys != nil && keys.IsPressed(code)))
		return 1
	}))
	return &Engine{vm: vm, log: log}
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
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

// Has reports whether a global function with the given name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// ControllerContext holds pre-packed entity state for a controller script.
type ControllerContext struct {
	Script      string
	Entity      uint64
	Name        string
	X, Y        float64
	VX, VY      float64
	Mass        float64
	Grounded    bool
	FacingLeft  bool
	Animation   string
	Speed       float64
	JumpImpulse float64
	Tick        uint64
}

// Command types returned by controller scripts.
const (
	CmdImpulse   = "impulse"
	CmdTranslate = "translate"
	CmdFaceLeft  = "face_left"
	CmdFaceRight = "face_right"
	CmdAnimation = "animation"
)

// Command is a single action returned by a controller script.
type Command struct {
	Type string
	X, Y float64
	Name string // animation name
}

// RunController calls the Lua function ctx.Script(ctx) and returns its
// commands. Script errors are logged and yield no commands.
func (e *Engine) RunController(ctx ControllerContext) []Command {
	fn := e.vm.GetGlobal(ctx.Script)
	if fn == lua.LNil {
		e.log.Warn("lua controller not found", zap.String("script", ctx.Script))
		return nil
	}

	t := e.vm.NewTable()
	t.RawSetString("entity", lua.LNumber(ctx.Entity))
	t.RawSetString("name", lua.LString(ctx.Name))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("vx", lua.LNumber(ctx.VX))
	t.RawSetString("vy", lua.LNumber(ctx.VY))
	t.RawSetString("mass", lua.LNumber(ctx.Mass))
	t.RawSetString("grounded", lua.LBool(ctx.Grounded))
	t.RawSetString("facing_left", lua.LBool(ctx.FacingLeft))
	t.RawSetString("animation", lua.LString(ctx.Animation))
	t.RawSetString("speed", lua.LNumber(ctx.Speed))
	t.RawSetString("jump_impulse", lua.LNumber(ctx.JumpImpulse))
	t.RawSetString("tick", lua.LNumber(ctx.Tick))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua controller error", zap.Error(err), zap.String("script", ctx.Script))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	var cmds []Command
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, Command{
				Type: lStr(row, "type"),
				X:    lNum(row, "x"),
				Y:    lNum(row, "y"),
				Name: lStr(row, "name"),
			})
		}
	})
	return cmds
}

// --- Lua helpers ---

// lNum reads a numeric field from a Lua table.
func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
