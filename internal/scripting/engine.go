package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/npcsync/server/internal/npc"
	"github.com/npcsync/server/internal/world"
)

// Engine wraps a single gopher-lua VM running NPC behaviour scripts.
// Scripts define global functions that are bound to NPCs as attack and
// interact hooks.
type Engine struct {
	mu     sync.Mutex
	vm     *lua.LState
	dir    string
	npcs   *npc.Registry
	loaded map[string]bool
	log    *zap.Logger
}

// NewEngine creates a Lua engine, registers the NPC API and loads every
// script in dir/lib. Per-NPC scripts are loaded on demand by LoadScript.
func NewEngine(dir string, npcs *npc.Registry, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:     vm,
		dir:    dir,
		npcs:   npcs,
		loaded: make(map[string]bool),
		log:    log.With(zap.String("component", "scripting")),
	}
	e.registerAPI()

	if err := e.loadDir(filepath.Join(dir, "lib")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load lib scripts: %w", err)
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
		if err := e.LoadScript(filepath.Join("lib", entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadScript runs a script file relative to the script dir. A file is only
// loaded once.
func (e *Engine) LoadScript(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded[name] {
		return nil
	}
	path := filepath.Join(e.dir, name)
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	e.loaded[name] = true
	e.log.Debug("loaded lua script", zap.String("file", path))
	return nil
}

// HasFunction reports whether a global Lua function exists.
func (e *Engine) HasFunction(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// InteractHook returns an interact callback that calls fn(ctx) with
// ctx = {npc = id, client = id, hand = "main"}.
func (e *Engine) InteractHook(fn string) npc.InteractFunc {
	return func(ev world.EntityInteracted) {
		n, ok := ev.Target.(*npc.NPC)
		if !ok {
			return
		}
		e.call(fn, func(t *lua.LTable) {
			t.RawSetString("npc", lua.LNumber(n.ID()))
			t.RawSetString("client", lua.LNumber(ev.Client.ID()))
			t.RawSetString("hand", lua.LString(ev.Hand.String()))
		})
	}
}

// AttackHook returns an attack callback that calls fn(ctx) with
// ctx = {npc = id, attacker = client id}.
func (e *Engine) AttackHook(fn string) npc.AttackFunc {
	return func(ev world.EntityAttacked) {
		n, ok := ev.Target.(*npc.NPC)
		if !ok {
			return
		}
		c, ok := ev.Attacker.(world.Client)
		if !ok {
			return
		}
		e.call(fn, func(t *lua.LTable) {
			t.RawSetString("npc", lua.LNumber(n.ID()))
			t.RawSetString("attacker", lua.LNumber(c.ID()))
		})
	}
}

// call runs a global function with a context table. Script errors are
// logged and swallowed.
func (e *Engine) call(name string, fill func(*lua.LTable)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Warn("lua hook not found", zap.String("fn", name))
		return
	}
	ctx := e.vm.NewTable()
	fill(ctx)
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, ctx); err != nil {
		e.log.Error("lua hook error", zap.String("fn", name), zap.Error(err))
	}
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
