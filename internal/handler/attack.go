package handler

import (
	"github.com/npcsync/server/internal/core/ecs"
	"github.com/npcsync/server/internal/core/event"
	"github.com/npcsync/server/internal/net"
	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/world"
)

// HandleAttack processes C_ATTACK: [Q handle].
func HandleAttack(sess *net.Session, r *packet.Reader, deps *Deps) {
	handle := r.ReadQ()
	p, target := resolveTarget(sess, handle, deps)
	if target == nil {
		return
	}
	event.Publish(deps.Bus, world.EntityAttacked{Attacker: p, Target: target})
}

// HandleInteract processes C_INTERACT: [Q handle][C hand].
// Clients send one packet per hand; both are published.
func HandleInteract(sess *net.Session, r *packet.Reader, deps *Deps) {
	handle := r.ReadQ()
	hand := world.HandMain
	if r.ReadC() != 0 {
		hand = world.HandOff
	}
	p, target := resolveTarget(sess, handle, deps)
	if target == nil {
		return
	}
	event.Publish(deps.Bus, world.EntityInteracted{Client: p, Target: target, Hand: hand})
}

// resolveTarget finds the entity behind a client-supplied handle. Only
// entities the player currently observes can be targeted.
func resolveTarget(sess *net.Session, handle uint64, deps *Deps) (*world.Player, world.Entity) {
	p := playerOf(sess, deps)
	if p == nil {
		return nil, nil
	}
	e, ok := deps.World.Entity(ecs.EntityID(handle))
	if !ok || !e.Base().HasObserver(p.ID()) {
		return p, nil
	}
	return p, e
}
