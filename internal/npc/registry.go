package npc

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/npcsync/server/internal/core/event"
	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/world"
)

// AttackFunc is invoked when a client attacks the NPC.
type AttackFunc func(ev world.EntityAttacked)

// InteractFunc is invoked when a client uses the NPC with its main hand.
type InteractFunc func(ev world.EntityInteracted)

// Registry creates NPCs and tracks the live ones by id. It reacts to host
// signals on the bus: it marks clients that are settling into an instance,
// sends them one batched retract once they confirm arrival, drops despawned
// NPCs and routes attack and interact callbacks.
type Registry struct {
	world   *world.World
	sched   Scheduler
	log     *zap.Logger
	metrics *Metrics

	mu    sync.RWMutex
	table map[int32]*NPC
}

func NewRegistry(bus *event.Bus, w *world.World, sched Scheduler, log *zap.Logger, metrics *Metrics) *Registry {
	r := &Registry{
		world:   w,
		sched:   sched,
		log:     log.With(zap.String("component", "npc")),
		metrics: metrics,
		table:   make(map[int32]*NPC),
	}
	event.Subscribe(bus, func(ev world.ClientConfiguring) { r.markSettling(ev.Client) })
	event.Subscribe(bus, func(ev world.ClientSpawned) { r.markSettling(ev.Client) })
	event.Subscribe(bus, r.onWorldConfirm)
	event.Subscribe(bus, r.onDespawned)
	event.Subscribe(bus, r.onAttacked)
	event.Subscribe(bus, r.onInteracted)
	return r
}

// Create builds an NPC and registers it. Either callback may be nil.
// The NPC is not spawned; callers place it with World.Spawn.
func (r *Registry) Create(kind *world.Kind, name *string, onAttack AttackFunc, onInteract InteractFunc, opts ...Option) *NPC {
	opts = append([]Option{WithMetrics(r.metrics)}, opts...)
	n := New(kind, name, r.sched, opts...)
	if onAttack != nil {
		world.SetTag(n.Tags(), attackTag, onAttack)
	}
	if onInteract != nil {
		world.SetTag(n.Tags(), interactTag, onInteract)
	}

	r.mu.Lock()
	r.table[n.ID()] = n
	r.metrics.npcCreated(len(r.table))
	r.mu.Unlock()

	r.log.Debug("npc created",
		zap.Int32("npc", n.ID()),
		zap.String("name", n.Name()),
		zap.Stringer("kind", n.Kind()))
	return n
}

func (r *Registry) Exists(id int32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.table[id]
	return ok
}

func (r *Registry) Get(id int32) (*NPC, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.table[id]
	return n, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.table)
}

// All returns the registered NPCs ordered by id.
func (r *Registry) All() []*NPC {
	r.mu.RLock()
	out := make([]*NPC, 0, len(r.table))
	for _, n := range r.table {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Remove queues the NPC for despawn. The table entry goes away when the world
// publishes EntityDespawned; an NPC that was never spawned is dropped at
// once. Unknown ids report false.
func (r *Registry) Remove(id int32) bool {
	n, ok := r.Get(id)
	if !ok {
		return false
	}
	if !n.IsActive() {
		r.drop(n)
		return true
	}
	r.world.Despawn(n)
	return true
}

// drop deletes n from the table. Reports false when n is not registered.
func (r *Registry) drop(n *NPC) bool {
	r.mu.Lock()
	removed := false
	for id, v := range r.table {
		if v == n {
			delete(r.table, id)
			removed = true
			break
		}
	}
	if removed {
		r.metrics.npcRemoved(len(r.table))
	}
	r.mu.Unlock()

	if removed {
		r.log.Debug("npc removed", zap.Int32("npc", n.ID()))
	}
	return removed
}

func (r *Registry) markSettling(c world.Client) {
	world.SetTag(c.Tags(), settlingTag, true)
}

func (r *Registry) onWorldConfirm(ev world.ClientWorldConfirm) {
	c := ev.Client
	if settling, _ := world.SwapTag(c.Tags(), settlingTag); !settling {
		return
	}
	inst := c.Instance()
	ids := make([]uuid.UUID, 0, 8)
	for _, n := range r.All() {
		if inst != nil && n.Instance() == inst {
			ids = append(ids, n.UUID())
		}
	}
	c.Send(packet.NewRetract(ids...))
	r.metrics.retracted(retractBatch)
	r.log.Debug("client settled",
		zap.Uint64("client", c.ID()),
		zap.Int("retracted", len(ids)))
}

func (r *Registry) onDespawned(ev world.EntityDespawned) {
	if n, ok := ev.Entity.(*NPC); ok {
		r.drop(n)
	}
}

func (r *Registry) onAttacked(ev world.EntityAttacked) {
	if _, ok := ev.Attacker.(world.Client); !ok {
		return
	}
	n, ok := ev.Target.(*NPC)
	if !ok {
		return
	}
	if fn, ok := world.GetTag(n.Tags(), attackTag); ok && fn != nil {
		r.metrics.callback("attack")
		fn(ev)
	}
}

func (r *Registry) onInteracted(ev world.EntityInteracted) {
	if ev.Hand == world.HandOff {
		return
	}
	n, ok := ev.Target.(*NPC)
	if !ok {
		return
	}
	if fn, ok := world.GetTag(n.Tags(), interactTag); ok && fn != nil {
		r.metrics.callback("interact")
		fn(ev)
	}
}
