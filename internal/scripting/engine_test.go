package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/npcsync/server/internal/core/event"
	"github.com/npcsync/server/internal/core/system"
	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/npc"
	"github.com/npcsync/server/internal/world"
)

const libScript = `
greeted = 0
function prefix(s) return "Mr " .. s end
`

const guideScript = `
function guide_interact(ctx)
  greeted = greeted + 1
  last_hand = ctx.hand
  npc_set_name(ctx.npc, prefix("Guide"))
end

function guide_attack(ctx)
  last_attacker = ctx.attacker
  npc_set_kind(ctx.npc, "zombie")
end

function guide_broken(ctx)
  error("boom")
end

function guide_leave(ctx)
  log("leaving " .. npc_name(ctx.npc))
  npc_remove(ctx.npc)
end
`

type nopClient struct {
	id   uint64
	tags world.Tags
}

func (c *nopClient) ID() uint64                { return c.id }
func (c *nopClient) Send(packet.Record)        {}
func (c *nopClient) Tags() *world.Tags         { return &c.tags }
func (c *nopClient) Instance() *world.Instance { return nil }

type env struct {
	bus    *event.Bus
	world  *world.World
	reg    *npc.Registry
	engine *Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "util.lua"), []byte(libScript), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.lua"), []byte(guideScript), 0o644))

	bus := event.NewBus(zap.NewNop())
	w := world.NewWorld(bus, zap.NewNop())
	reg := npc.NewRegistry(bus, w, system.NewScheduler(nil), zap.NewNop(), nil)
	e, err := NewEngine(dir, reg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	require.NoError(t, e.LoadScript("guide.lua"))
	return &env{bus: bus, world: w, reg: reg, engine: e}
}

func TestEngine_LoadsLibAndScripts(t *testing.T) {
	e := newEnv(t).engine
	assert.True(t, e.HasFunction("prefix"))
	assert.True(t, e.HasFunction("guide_interact"))
	assert.False(t, e.HasFunction("missing"))
	assert.NoError(t, e.LoadScript("guide.lua"), "second load is a no-op")
	assert.Error(t, e.LoadScript("nope.lua"))
}

func TestEngine_InteractHook(t *testing.T) {
	env := newEnv(t)
	n := env.reg.Create(nil, nil, nil, env.engine.InteractHook("guide_interact"))
	c := &nopClient{id: 4}

	event.Publish(env.bus, world.EntityInteracted{Client: c, Target: n, Hand: world.HandMain})
	event.Publish(env.bus, world.EntityInteracted{Client: c, Target: n, Hand: world.HandOff})

	assert.Equal(t, "[NPC] Mr Guide", n.Name())
	assert.Equal(t, lua.LNumber(1), env.engine.vm.GetGlobal("greeted"))
	assert.Equal(t, lua.LString("main"), env.engine.vm.GetGlobal("last_hand"))
}

func TestEngine_AttackHook(t *testing.T) {
	env := newEnv(t)
	n := env.reg.Create(nil, nil, env.engine.AttackHook("guide_attack"), nil)

	event.Publish(env.bus, world.EntityAttacked{Attacker: &nopClient{id: 8}, Target: n})

	assert.Equal(t, world.KindZombie, n.Kind())
	assert.Equal(t, lua.LNumber(8), env.engine.vm.GetGlobal("last_attacker"))
}

func TestEngine_ScriptErrorsAreContained(t *testing.T) {
	env := newEnv(t)
	broken := env.reg.Create(nil, nil, nil, env.engine.InteractHook("guide_broken"))
	missing := env.reg.Create(nil, nil, nil, env.engine.InteractHook("no_such_fn"))
	c := &nopClient{id: 1}

	assert.NotPanics(t, func() {
		event.Publish(env.bus, world.EntityInteracted{Client: c, Target: broken})
		event.Publish(env.bus, world.EntityInteracted{Client: c, Target: missing})
	})
}

func TestEngine_RemoveFromScript(t *testing.T) {
	env := newEnv(t)
	inst := env.world.AddInstance("lobby", "", 32)
	n := env.reg.Create(nil, nil, nil, env.engine.InteractHook("guide_leave"))
	require.NoError(t, env.world.Spawn(n, inst, 0, 0))

	event.Publish(env.bus, world.EntityInteracted{Client: &nopClient{id: 1}, Target: n})
	assert.True(t, env.reg.Exists(n.ID()))

	env.world.FlushDestroyQueue()
	assert.False(t, env.reg.Exists(n.ID()))
}
