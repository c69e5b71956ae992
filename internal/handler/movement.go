package handler

import (
	"github.com/npcsync/server/internal/net"
	"github.com/npcsync/server/internal/net/packet"
)

// HandleMove processes C_MOVE: [D x][D y].
// The server trusts the client position; VisibilitySystem picks up the
// change in the same tick.
func HandleMove(sess *net.Session, r *packet.Reader, deps *Deps) {
	x := r.ReadD()
	y := r.ReadD()

	p := playerOf(sess, deps)
	if p == nil {
		return
	}
	p.SetPosition(x, y)
}
