package handler

import (
	"github.com/npcsync/server/internal/config"
	"github.com/npcsync/server/internal/core/event"
	"github.com/npcsync/server/internal/net"
	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	World  *world.World
	Bus    *event.Bus
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(packet.C_OPCODE_JOIN,
		[]packet.SessionState{packet.StateHandshake},
		func(sess any, r *packet.Reader) {
			HandleJoin(sess.(*net.Session), r, deps)
		},
	)

	inWorldStates := []packet.SessionState{packet.StateInWorld}

	reg.Register(packet.C_OPCODE_TELEPORT_CONFIRM, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleTeleportConfirm(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_MOVE, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleMove(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CHANGE_INSTANCE, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleChangeInstance(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_ATTACK, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleAttack(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_INTERACT, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleInteract(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_QUIT,
		[]packet.SessionState{packet.StateHandshake, packet.StateInWorld},
		func(sess any, r *packet.Reader) {
			HandleQuit(sess.(*net.Session), r, deps)
		},
	)
}

// playerOf returns the in-world player of sess, or nil.
func playerOf(sess *net.Session, deps *Deps) *world.Player {
	return deps.World.Player(sess.ID)
}
