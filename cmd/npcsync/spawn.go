package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/npcsync/server/internal/config"
	"github.com/npcsync/server/internal/data"
	"github.com/npcsync/server/internal/npc"
	"github.com/npcsync/server/internal/scripting"
	"github.com/npcsync/server/internal/world"
)

// loadSpawns reads the spawn list. A missing file starts an empty world.
func loadSpawns(path string, log *zap.Logger) (*data.SpawnList, error) {
	spawns, err := data.LoadSpawnList(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("spawn list not found, starting empty", zap.String("path", path))
		return &data.SpawnList{}, nil
	}
	if err != nil {
		return nil, err
	}
	return spawns, nil
}

// addInstances registers every instance from the spawn list plus the
// configured default instance.
func addInstances(ws *world.World, spawns *data.SpawnList, cfg config.WorldConfig) {
	for _, def := range spawns.Instances {
		vd := def.ViewDistance
		if vd <= 0 {
			vd = cfg.ViewDistance
		}
		ws.AddInstance(def.ID, def.Name, vd)
	}
	ws.AddInstance(cfg.DefaultInstance, "", cfg.ViewDistance)
}

// spawnNpcs creates and places every NPC in the spawn list. Lua hooks are
// bound when engine is non-nil; otherwise hook names are ignored.
func spawnNpcs(ws *world.World, npcs *npc.Registry, engine *scripting.Engine, spawns *data.SpawnList, log *zap.Logger) (int, error) {
	spawned := 0
	for i := range spawns.Npcs {
		def := &spawns.Npcs[i]
		inst, ok := ws.Instance(def.Instance)
		if !ok {
			return spawned, fmt.Errorf("npcs[%d]: %w: %s", i, world.ErrNoInstance, def.Instance)
		}

		var onAttack npc.AttackFunc
		var onInteract npc.InteractFunc
		if engine != nil && def.Script != "" {
			if err := engine.LoadScript(def.Script); err != nil {
				return spawned, fmt.Errorf("npcs[%d]: %w", i, err)
			}
			if def.OnAttack != "" {
				onAttack = engine.AttackHook(def.OnAttack)
			}
			if def.OnInteract != "" {
				onInteract = engine.InteractHook(def.OnInteract)
			}
		}

		var opts []npc.Option
		if def.Skin != nil {
			opts = append(opts, npc.WithAppearance(npc.Appearance{
				Textures:  def.Skin.Textures,
				Signature: def.Skin.Signature,
			}))
		}

		kind := def.ParsedKind()
		n := npcs.Create(&kind, def.Name, onAttack, onInteract, opts...)
		if err := ws.Spawn(n, inst, def.X, def.Y); err != nil {
			npcs.Remove(n.ID())
			return spawned, fmt.Errorf("spawn npc %d: %w", n.ID(), err)
		}
		log.Debug("npc placed",
			zap.Int32("npc", n.ID()),
			zap.String("instance", inst.ID()),
			zap.Int32("x", def.X),
			zap.Int32("y", def.Y))
		spawned++
	}
	return spawned, nil
}
