package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/movement"
)

// Engine wraps a single gopher-lua VM holding movement scripts. Calls are
// serialized; searches on several workers share one Engine.
type Engine struct {
	mu    sync.Mutex
	vm    *lua.LState
	world movement.World
	log   *zap.Logger
}

// NewEngine creates a Lua engine bound to world and loads all scripts from the
// given directory.
func NewEngine(scriptsDir string, world movement.World, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, world: world, log: log}
	vm.SetGlobal("block", vm.NewFunction(e.luaBlock))

	// Shared helpers first, then movement definitions
	for _, sub := range []string{"core", "movement"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
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

// luaBlock implements block(x, y, z) for scripts.
func (e *Engine) luaBlock(L *lua.LState) int {
	p := vec.New(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3))
	b := e.world.BlockAt(p)

	t := L.NewTable()
	t.RawSetString("name", lua.LString(b.Name))
	t.RawSetString("penetrable", lua.LBool(b.Penetrable))
	t.RawSetString("liquid", lua.LBool(b.Liquid))
	L.Push(t)
	return 1
}

func (e *Engine) vecTable(p vec.Vec3) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("x", lua.LNumber(p.X))
	t.RawSetString("y", lua.LNumber(p.Y))
	t.RawSetString("z", lua.LNumber(p.Z))
	return t
}

// HasFunc reports whether a global Lua function is defined.
func (e *Engine) HasFunc(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// callBool calls a global Lua function with vector arguments and reads back a
// boolean. Script errors and non-boolean results are returned as errors.
func (e *Engine) callBool(name string, args ...vec.Vec3) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return false, fmt.Errorf("lua function %s not found", name)
	}
	params := make([]lua.LValue, len(args))
	for i, a := range args {
		params[i] = e.vecTable(a)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, params...); err != nil {
		return false, fmt.Errorf("lua %s: %w", name, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	b, ok := result.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("lua %s returned %s, want boolean", name, result.Type())
	}
	return bool(b), nil
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
