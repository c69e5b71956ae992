package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/npcsync/server/internal/config"
	"github.com/npcsync/server/internal/core/event"
	coresys "github.com/npcsync/server/internal/core/system"
	"github.com/npcsync/server/internal/data"
	"github.com/npcsync/server/internal/npc"
	"github.com/npcsync/server/internal/world"
)

const testSpawns = `
instances:
  - id: lobby
  - id: arena
    view_distance: 48
npcs:
  - name: Guide
    instance: lobby
    x: 1
    y: 2
    skin:
      textures: tex
      signature: sig
  - kind: wolf
    instance: arena
`

func newSpawnEnv(t *testing.T) (*world.World, *npc.Registry, *data.SpawnList) {
	t.Helper()
	bus := event.NewBus(zap.NewNop())
	ws := world.NewWorld(bus, zap.NewNop())
	reg := npc.NewRegistry(bus, ws, coresys.NewScheduler(zap.NewNop()), zap.NewNop(), nil)
	spawns, err := data.ParseSpawnList([]byte(testSpawns))
	require.NoError(t, err)
	return ws, reg, spawns
}

func TestSpawnNpcs(t *testing.T) {
	ws, reg, spawns := newSpawnEnv(t)
	addInstances(ws, spawns, config.WorldConfig{DefaultInstance: "main", ViewDistance: 16})

	lobby, ok := ws.Instance("lobby")
	require.True(t, ok)
	assert.Equal(t, int32(16), lobby.ViewDistance())
	arena, ok := ws.Instance("arena")
	require.True(t, ok)
	assert.Equal(t, int32(48), arena.ViewDistance())
	_, ok = ws.Instance("main")
	assert.True(t, ok, "default instance is always registered")

	n, err := spawnNpcs(ws, reg, nil, spawns, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, reg.Len())

	all := reg.All()
	guide := all[0]
	assert.Equal(t, "[NPC] Guide", guide.Name())
	assert.True(t, guide.IsActive())
	x, y := guide.Position()
	assert.Equal(t, [2]int32{1, 2}, [2]int32{x, y})
	app, ok := guide.Appearance()
	require.True(t, ok)
	assert.Equal(t, "tex", app.Textures)
	assert.Equal(t, world.KindWolf, all[1].Kind())
}

func TestSpawnNpcs_MissingInstanceStopsBeforeCreating(t *testing.T) {
	ws, reg, spawns := newSpawnEnv(t)
	ws.AddInstance("lobby", "", 16)

	n, err := spawnNpcs(ws, reg, nil, spawns, zap.NewNop())
	require.ErrorIs(t, err, world.ErrNoInstance)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, reg.Len(), "only the npc that was placed stays registered")
	for _, v := range reg.All() {
		assert.True(t, v.IsActive())
	}
}
