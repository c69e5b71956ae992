package handler

import (
	"strings"

	"github.com/npcsync/server/internal/core/event"
	"github.com/npcsync/server/internal/net"
	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/world"
	"go.uber.org/zap"
)

const maxPlayerName = 16

// HandleJoin processes C_JOIN: [S name].
// The client is configured, acknowledged with S_LOGIN_OK, then placed into
// the default instance with S_POSITION. It stays settling until it answers
// with C_TELEPORT_CONFIRM.
func HandleJoin(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := strings.TrimSpace(r.ReadS())
	if name == "" || len([]rune(name)) > maxPlayerName {
		deps.Log.Info("rejecting join: bad name", zap.Uint64("session", sess.ID), zap.String("name", name))
		sess.Close()
		return
	}

	inst, ok := deps.World.Instance(deps.Config.World.DefaultInstance)
	if !ok {
		deps.Log.Error("default instance missing", zap.String("instance", deps.Config.World.DefaultInstance))
		sess.Close()
		return
	}

	sess.Name = name
	p := world.NewPlayer(sess.ID, name, sess)
	deps.World.AddPlayer(p)
	sess.SetState(packet.StateInWorld)

	event.Publish(deps.Bus, world.ClientConfiguring{Client: p})
	p.Send(packet.LoginOK{SessionID: sess.ID, Name: name})

	placePlayer(p, inst, deps.Config.World.SpawnX, deps.Config.World.SpawnY, deps)

	deps.Log.Info("player joined",
		zap.Uint64("session", sess.ID),
		zap.String("name", name),
		zap.String("instance", inst.ID()))
}

// placePlayer moves p into inst, tells the client where it is and publishes
// ClientSpawned.
func placePlayer(p *world.Player, inst *world.Instance, x, y int32, deps *Deps) {
	teleportID := p.Place(inst, x, y)
	p.Send(packet.Position{
		TeleportID: teleportID,
		Instance:   inst.ID(),
		X:          x,
		Y:          y,
	})
	event.Publish(deps.Bus, world.ClientSpawned{Client: p, Instance: inst})
}
