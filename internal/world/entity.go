package world

import (
	"sync"

	"github.com/google/uuid"

	"github.com/npcsync/server/internal/core/ecs"
	"github.com/npcsync/server/internal/net/packet"
)

// Entity is anything the world can spawn and render. Types embed *EntityBase
// and override the observer hooks when they need extra records around the
// base spawn/destroy path.
type Entity interface {
	Base() *EntityBase
	GainObserver(c Client)
	LoseObserver(c Client)
}

// EntityBase holds the state every rendered entity shares.
type EntityBase struct {
	uuid uuid.UUID
	meta *Meta
	tags Tags

	mu        sync.RWMutex
	handle    ecs.EntityID
	kind      Kind
	instance  *Instance
	x, y      int32
	active    bool
	observers map[uint64]Client
}

func NewEntityBase(kind Kind) *EntityBase {
	e := &EntityBase{
		uuid:      uuid.New(),
		kind:      kind,
		observers: make(map[uint64]Client),
	}
	e.meta = newMeta(e.broadcastMeta)
	return e
}

func (e *EntityBase) Base() *EntityBase { return e }

// GainObserver and LoseObserver satisfy Entity for plain entities.
func (e *EntityBase) GainObserver(c Client) { e.BaseGainObserver(c) }
func (e *EntityBase) LoseObserver(c Client) { e.BaseLoseObserver(c) }

func (e *EntityBase) UUID() uuid.UUID { return e.uuid }
func (e *EntityBase) Meta() *Meta     { return e.meta }
func (e *EntityBase) Tags() *Tags     { return &e.tags }

func (e *EntityBase) Handle() ecs.EntityID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.handle
}

func (e *EntityBase) Kind() Kind {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.kind
}

// Instance returns the instance the entity is spawned in, or nil.
func (e *EntityBase) Instance() *Instance {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.instance
}

func (e *EntityBase) Position() (x, y int32) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.x, e.y
}

// IsActive reports whether the entity is spawned and not yet removed.
func (e *EntityBase) IsActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Observers returns a snapshot of the clients currently rendering the entity.
func (e *EntityBase) Observers() []Client {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Client, 0, len(e.observers))
	for _, c := range e.observers {
		out = append(out, c)
	}
	return out
}

func (e *EntityBase) HasObserver(clientID uint64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.observers[clientID]
	return ok
}

// BaseGainObserver renders the entity for c: spawn, then full metadata.
func (e *EntityBase) BaseGainObserver(c Client) {
	c.Send(e.spawnRecord())
	c.Send(e.metadataRecord(e.meta.Snapshot()))
}

// BaseLoseObserver removes the rendered entity from c.
func (e *EntityBase) BaseLoseObserver(c Client) {
	c.Send(e.DestroyRecord())
}

// DestroyRecord is the VisualDestroy record for this entity's handle.
func (e *EntityBase) DestroyRecord() packet.VisualDestroy {
	return packet.VisualDestroy{Handles: []uint64{uint64(e.Handle())}}
}

// SwitchKind changes the rendered type. Metadata is rebuilt from scratch by
// reinit, then every observer gets the entity torn down and spawned again
// through self's hooks.
func (e *EntityBase) SwitchKind(self Entity, kind Kind, reinit func(*Meta)) {
	e.mu.Lock()
	e.kind = kind
	e.mu.Unlock()

	e.meta.rebuild(reinit)

	observers := e.Observers()
	for _, c := range observers {
		self.LoseObserver(c)
	}
	for _, c := range observers {
		self.GainObserver(c)
	}
}

func (e *EntityBase) spawnRecord() packet.Spawn {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return packet.Spawn{
		Handle: uint64(e.handle),
		UUID:   e.uuid,
		Kind:   byte(e.kind),
		X:      e.x,
		Y:      e.y,
	}
}

func (e *EntityBase) metadataRecord(s MetaSnapshot) packet.Metadata {
	return packet.Metadata{
		Handle:            uint64(e.Handle()),
		CustomName:        s.CustomName,
		CustomNameVisible: s.CustomNameVisible,
		SkinParts:         byte(s.SkinParts),
	}
}

func (e *EntityBase) broadcastMeta(s MetaSnapshot) {
	if !e.IsActive() {
		return
	}
	rec := packet.NewCached(e.metadataRecord(s))
	for _, c := range e.Observers() {
		c.Send(rec)
	}
}

func (e *EntityBase) place(handle ecs.EntityID, inst *Instance, x, y int32) {
	e.mu.Lock()
	e.handle = handle
	e.instance = inst
	e.x, e.y = x, y
	e.active = true
	e.mu.Unlock()
}

func (e *EntityBase) setPosition(x, y int32) {
	e.mu.Lock()
	e.x, e.y = x, y
	e.mu.Unlock()
}

// deactivate marks the entity removed and reports whether it was active.
func (e *EntityBase) deactivate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return false
	}
	e.active = false
	return true
}

// AddObserver makes c an observer of e and runs e's gain hook. It reports
// false if c was already observing.
func AddObserver(e Entity, c Client) bool {
	b := e.Base()
	b.mu.Lock()
	if _, ok := b.observers[c.ID()]; ok {
		b.mu.Unlock()
		return false
	}
	b.observers[c.ID()] = c
	b.mu.Unlock()
	e.GainObserver(c)
	return true
}

// RemoveObserver drops c from e's observers and runs e's lose hook. It
// reports false if c was not observing.
func RemoveObserver(e Entity, c Client) bool {
	b := e.Base()
	b.mu.Lock()
	if _, ok := b.observers[c.ID()]; !ok {
		b.mu.Unlock()
		return false
	}
	delete(b.observers, c.ID())
	b.mu.Unlock()
	e.LoseObserver(c)
	return true
}
