package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/npcsync/server/internal/npc"
	"github.com/npcsync/server/internal/world"
)

// registerAPI exposes the NPC functions to scripts:
//
//	npc_exists(id) -> bool
//	npc_name(id) -> string | nil
//	npc_set_name(id, name) -> bool
//	npc_set_kind(id, kind) -> bool
//	npc_remove(id) -> bool
//	log(msg)
func (e *Engine) registerAPI() {
	e.vm.SetGlobal("npc_exists", e.vm.NewFunction(e.luaExists))
	e.vm.SetGlobal("npc_name", e.vm.NewFunction(e.luaName))
	e.vm.SetGlobal("npc_set_name", e.vm.NewFunction(e.luaSetName))
	e.vm.SetGlobal("npc_set_kind", e.vm.NewFunction(e.luaSetKind))
	e.vm.SetGlobal("npc_remove", e.vm.NewFunction(e.luaRemove))
	e.vm.SetGlobal("log", e.vm.NewFunction(e.luaLog))
}

func (e *Engine) lookup(L *lua.LState) (*npc.NPC, bool) {
	return e.npcs.Get(int32(L.CheckInt(1)))
}

func (e *Engine) luaExists(L *lua.LState) int {
	L.Push(lua.LBool(e.npcs.Exists(int32(L.CheckInt(1)))))
	return 1
}

func (e *Engine) luaName(L *lua.LState) int {
	n, ok := e.lookup(L)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(n.Name()))
	return 1
}

func (e *Engine) luaSetName(L *lua.LState) int {
	n, ok := e.lookup(L)
	name := L.CheckString(2)
	if ok {
		n.SetName(name)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (e *Engine) luaSetKind(L *lua.LState) int {
	n, ok := e.lookup(L)
	kind, err := world.ParseKind(L.CheckString(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	if ok {
		n.SwitchKind(kind)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (e *Engine) luaRemove(L *lua.LState) int {
	L.Push(lua.LBool(e.npcs.Remove(int32(L.CheckInt(1)))))
	return 1
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info(L.CheckString(1))
	return 0
}
