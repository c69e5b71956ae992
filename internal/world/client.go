package world

import (
	"sync"

	"github.com/npcsync/server/internal/core/ecs"
	"github.com/npcsync/server/internal/net/packet"
)

// Client is a connected observer that can receive records.
type Client interface {
	ID() uint64
	Send(rec packet.Record)
	Tags() *Tags
	Instance() *Instance
}

// Sender is the outbound side of a connection. Send must not block.
type Sender interface {
	Send(data []byte)
}

// Player is the in-world state of one connected client.
type Player struct {
	SessionID uint64
	Name      string

	conn Sender
	tags Tags

	mu         sync.RWMutex
	instance   *Instance
	x, y       int32
	teleportID int32

	// Known is the set of entities the player currently observes.
	// Game loop only.
	Known map[ecs.EntityID]Entity
}

func NewPlayer(sessionID uint64, name string, conn Sender) *Player {
	return &Player{
		SessionID: sessionID,
		Name:      name,
		conn:      conn,
		Known:     make(map[ecs.EntityID]Entity),
	}
}

func (p *Player) ID() uint64  { return p.SessionID }
func (p *Player) Tags() *Tags { return &p.tags }

func (p *Player) Send(rec packet.Record) {
	p.conn.Send(rec.Encode())
}

func (p *Player) Instance() *Instance {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.instance
}

func (p *Player) Position() (x, y int32) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.x, p.y
}

func (p *Player) SetPosition(x, y int32) {
	p.mu.Lock()
	p.x, p.y = x, y
	p.mu.Unlock()
}

// Place moves the player into inst and returns the teleport id the client
// must confirm.
func (p *Player) Place(inst *Instance, x, y int32) int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.instance = inst
	p.x, p.y = x, y
	p.teleportID++
	return p.teleportID
}

// PendingTeleport is the id of the last Place.
func (p *Player) PendingTeleport() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.teleportID
}
