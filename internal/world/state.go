package world

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/npcsync/server/internal/core/ecs"
	"github.com/npcsync/server/internal/core/event"
)

var (
	ErrNoInstance     = errors.New("no instance")
	ErrAlreadySpawned = errors.New("entity already spawned")
)

// World tracks instances, connected players and spawned entities.
// Entity removal is deferred: Despawn queues, FlushDestroyQueue (cleanup
// phase) tears down observers and publishes EntityDespawned.
type World struct {
	bus *event.Bus
	log *zap.Logger

	handles  *ecs.EntityPool
	entities *ecs.Store[Entity]
	aoi      *AOIGrid

	mu        sync.RWMutex
	instances map[string]*Instance
	players   map[uint64]*Player

	qmu          sync.Mutex
	destroyQueue []Entity
}

func NewWorld(bus *event.Bus, log *zap.Logger) *World {
	return &World{
		bus:       bus,
		log:       log.With(zap.String("component", "world")),
		handles:   ecs.NewEntityPool(),
		entities:  ecs.NewStore[Entity](),
		aoi:       NewAOIGrid(),
		instances: make(map[string]*Instance),
		players:   make(map[uint64]*Player),
	}
}

// Bus returns the event bus signals are published on.
func (w *World) Bus() *event.Bus { return w.bus }

// --- instances ---

// AddInstance registers an instance. Registering an existing id returns the
// existing instance.
func (w *World) AddInstance(id, name string, viewDistance int32) *Instance {
	w.mu.Lock()
	defer w.mu.Unlock()
	if inst, ok := w.instances[id]; ok {
		return inst
	}
	inst := NewInstance(id, name, viewDistance)
	w.instances[id] = inst
	return inst
}

func (w *World) Instance(id string) (*Instance, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	inst, ok := w.instances[id]
	return inst, ok
}

// --- entities ---

// Spawn assigns a render handle and places e into inst at (x, y). Observers
// are attached later by the visibility system.
func (w *World) Spawn(e Entity, inst *Instance, x, y int32) error {
	if inst == nil {
		return ErrNoInstance
	}
	b := e.Base()
	if b.IsActive() {
		return fmt.Errorf("spawn %s: %w", b.UUID(), ErrAlreadySpawned)
	}
	h := w.handles.Create()
	b.place(h, inst, x, y)
	w.entities.Set(h, e)
	w.aoi.Add(h, inst.ID(), x, y)
	w.log.Debug("entity spawned",
		zap.Uint64("handle", uint64(h)),
		zap.Stringer("kind", b.Kind()),
		zap.String("instance", inst.ID()))
	return nil
}

// MoveEntity changes an active entity's position.
func (w *World) MoveEntity(e Entity, x, y int32) {
	b := e.Base()
	if !b.IsActive() {
		return
	}
	ox, oy := b.Position()
	b.setPosition(x, y)
	w.aoi.Move(b.Handle(), b.Instance().ID(), ox, oy, x, y)
}

// Despawn queues e for removal at the next FlushDestroyQueue.
func (w *World) Despawn(e Entity) {
	w.qmu.Lock()
	w.destroyQueue = append(w.destroyQueue, e)
	w.qmu.Unlock()
}

// FlushDestroyQueue removes every queued entity: each observer loses it,
// its handle is released and EntityDespawned is published. Entities queued
// twice are removed once. Returns the number removed.
func (w *World) FlushDestroyQueue() int {
	w.qmu.Lock()
	queue := w.destroyQueue
	w.destroyQueue = nil
	w.qmu.Unlock()

	removed := 0
	for _, e := range queue {
		b := e.Base()
		for _, c := range b.Observers() {
			RemoveObserver(e, c)
			if p, ok := c.(*Player); ok {
				delete(p.Known, b.Handle())
			}
		}
		if !b.deactivate() {
			continue
		}
		h := b.Handle()
		x, y := b.Position()
		w.aoi.Remove(h, b.Instance().ID(), x, y)
		w.entities.Remove(h)
		w.handles.Destroy(h)
		removed++
		event.Publish(w.bus, EntityDespawned{Entity: e})
	}
	return removed
}

// Entity resolves a render handle. Stale handles do not resolve.
func (w *World) Entity(h ecs.EntityID) (Entity, bool) {
	if !w.handles.Alive(h) {
		return nil, false
	}
	return w.entities.Get(h)
}

func (w *World) EntityCount() int { return w.entities.Len() }

// EntitiesIn returns every active entity in inst.
func (w *World) EntitiesIn(inst *Instance) []Entity {
	var out []Entity
	w.entities.Each(func(_ ecs.EntityID, e Entity) {
		if e.Base().Instance() == inst {
			out = append(out, e)
		}
	})
	return out
}

// NearbyEntities returns the entities of inst within Chebyshev distance
// radius of (x, y).
func (w *World) NearbyEntities(inst *Instance, x, y, radius int32) []Entity {
	if inst == nil {
		return nil
	}
	ids := w.aoi.GetNearby(inst.ID(), x, y, radius)
	result := make([]Entity, 0, len(ids))
	for _, id := range ids {
		e, ok := w.entities.Get(id)
		if !ok {
			continue
		}
		ex, ey := e.Base().Position()
		if chebyshev(ex-x, ey-y) <= radius {
			result = append(result, e)
		}
	}
	return result
}

func chebyshev(dx, dy int32) int32 {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		return dy
	}
	return dx
}

// --- players ---

func (w *World) AddPlayer(p *Player) {
	w.mu.Lock()
	w.players[p.SessionID] = p
	w.mu.Unlock()
}

// RemovePlayer takes the player out of the world and detaches it from every
// entity it observes.
func (w *World) RemovePlayer(sessionID uint64) *Player {
	w.mu.Lock()
	p, ok := w.players[sessionID]
	delete(w.players, sessionID)
	w.mu.Unlock()
	if !ok {
		return nil
	}
	w.ForgetAll(p)
	return p
}

// ForgetAll makes p stop observing everything it currently knows.
func (w *World) ForgetAll(p *Player) {
	for h, e := range p.Known {
		RemoveObserver(e, p)
		delete(p.Known, h)
	}
}

func (w *World) Player(sessionID uint64) *Player {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.players[sessionID]
}

func (w *World) PlayerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.players)
}

// AllPlayers iterates a snapshot of in-world players.
func (w *World) AllPlayers(fn func(*Player)) {
	w.mu.RLock()
	ps := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		ps = append(ps, p)
	}
	w.mu.RUnlock()
	for _, p := range ps {
		fn(p)
	}
}
