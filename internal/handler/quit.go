package handler

import (
	"github.com/npcsync/server/internal/net"
	"github.com/npcsync/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleQuit processes C_QUIT. The session is closed; InputSystem removes
// the player from the world on its next pass.
func HandleQuit(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info("player quit", zap.Uint64("session", sess.ID), zap.String("name", sess.Name))
	sess.Close()
}
