package handler

import (
	"github.com/npcsync/server/internal/core/event"
	"github.com/npcsync/server/internal/net"
	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/world"
	"go.uber.org/zap"
)

// HandleTeleportConfirm processes C_TELEPORT_CONFIRM: [D teleportID].
// A stale id (an older S_POSITION) is ignored; the client will confirm the
// latest one too.
func HandleTeleportConfirm(sess *net.Session, r *packet.Reader, deps *Deps) {
	id := r.ReadD()
	p := playerOf(sess, deps)
	if p == nil {
		return
	}
	if id != p.PendingTeleport() {
		deps.Log.Debug("stale teleport confirm",
			zap.Uint64("session", sess.ID),
			zap.Int32("got", id),
			zap.Int32("want", p.PendingTeleport()))
		return
	}
	event.Publish(deps.Bus, world.ClientWorldConfirm{Client: p, TeleportID: id})
}

// HandleChangeInstance processes C_CHANGE_INSTANCE: [S instance][D x][D y].
// Everything the player observed in the old instance is dropped at once.
func HandleChangeInstance(sess *net.Session, r *packet.Reader, deps *Deps) {
	instID := r.ReadS()
	x := r.ReadD()
	y := r.ReadD()

	p := playerOf(sess, deps)
	if p == nil {
		return
	}
	inst, ok := deps.World.Instance(instID)
	if !ok {
		deps.Log.Debug("unknown instance", zap.Uint64("session", sess.ID), zap.String("instance", instID))
		return
	}

	deps.World.ForgetAll(p)
	placePlayer(p, inst, x, y, deps)
}
