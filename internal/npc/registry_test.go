package npc

import (
	"strconv"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/npcsync/server/internal/core/event"
	"github.com/npcsync/server/internal/core/system"
	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/world"
)

type registryFixture struct {
	bus   *event.Bus
	world *world.World
	sched *system.Scheduler
	reg   *Registry
	prom  *prometheus.Registry
	inst  *world.Instance
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()
	bus := event.NewBus(zap.NewNop())
	w := world.NewWorld(bus, zap.NewNop())
	sched := system.NewScheduler(zap.NewNop())
	prom := prometheus.NewPedanticRegistry()
	return &registryFixture{
		bus:   bus,
		world: w,
		sched: sched,
		reg:   NewRegistry(bus, w, sched, zap.NewNop(), NewMetrics(prom)),
		prom:  prom,
		inst:  w.AddInstance("lobby", "", 32),
	}
}

func (f *registryFixture) create(t *testing.T, inst *world.Instance) *NPC {
	t.Helper()
	n := f.reg.Create(nil, nil, nil, nil)
	require.NoError(t, f.world.Spawn(n, inst, 0, 0))
	return n
}

func (f *registryFixture) gauge(t *testing.T, name string) float64 {
	t.Helper()
	mfs, err := f.prom.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRegistry_CreateAndLookup(t *testing.T) {
	f := newRegistryFixture(t)

	n := f.reg.Create(nil, nil, nil, nil)
	assert.Equal(t, world.KindHumanoid, n.Kind())
	assert.Equal(t, NamePrefix+strconv.Itoa(int(n.ID())), n.Name())
	assert.True(t, f.reg.Exists(n.ID()))
	got, ok := f.reg.Get(n.ID())
	require.True(t, ok)
	assert.Same(t, n, got)

	bob := f.reg.Create(kindPtr(world.KindHumanoid), strPtr("Bob"), nil, nil)
	bob.SetName("Carol")
	assert.Equal(t, "[NPC] Carol", bob.Name())

	got, ok = f.reg.Get(-1)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.False(t, f.reg.Exists(1<<30))

	assert.Equal(t, 2, f.reg.Len())
	assert.Equal(t, []*NPC{n, bob}, f.reg.All())
	assert.Equal(t, float64(2), f.gauge(t, "npcsync_npcs_registered"))
}

func TestRegistry_SettlingScenario(t *testing.T) {
	f := newRegistryFixture(t)
	n := f.create(t, f.inst)
	c := newFakeClient(1, f.inst)

	event.Publish(f.bus, world.ClientConfiguring{Client: c})
	world.AddObserver(n, c)
	f.sched.Update(0)

	assert.Equal(t, 1, c.count(packet.S_OPCODE_PLAYER_INFO_ADD))
	assert.Zero(t, c.count(packet.S_OPCODE_PLAYER_INFO_REMOVE), "no per-entity retract while settling")

	event.Publish(f.bus, world.ClientWorldConfirm{Client: c, TeleportID: 1})
	assert.Equal(t, [][]uuid.UUID{{n.UUID()}}, c.retracts())

	// A second confirm is not part of a settling window.
	event.Publish(f.bus, world.ClientWorldConfirm{Client: c, TeleportID: 2})
	f.sched.Update(0)
	assert.Len(t, c.retracts(), 1)
}

func TestRegistry_BatchCoversOnlyClientInstance(t *testing.T) {
	f := newRegistryFixture(t)
	other := f.world.AddInstance("arena", "", 32)
	a := f.create(t, f.inst)
	b := f.create(t, f.inst)
	f.create(t, other)
	f.reg.Create(nil, nil, nil, nil) // never spawned

	c := newFakeClient(1, f.inst)
	event.Publish(f.bus, world.ClientSpawned{Client: c, Instance: f.inst})
	event.Publish(f.bus, world.ClientWorldConfirm{Client: c})

	require.Len(t, c.retracts(), 1)
	assert.ElementsMatch(t, []uuid.UUID{a.UUID(), b.UUID()}, c.retracts()[0])
}

func TestRegistry_EmptyBatchIsStillSent(t *testing.T) {
	f := newRegistryFixture(t)
	c := newFakeClient(1, f.inst)

	event.Publish(f.bus, world.ClientConfiguring{Client: c})
	event.Publish(f.bus, world.ClientWorldConfirm{Client: c})

	require.Len(t, c.retracts(), 1)
	assert.Empty(t, c.retracts()[0])
}

func TestRegistry_ConfirmWithoutSettlingDoesNothing(t *testing.T) {
	f := newRegistryFixture(t)
	f.create(t, f.inst)
	c := newFakeClient(1, f.inst)

	event.Publish(f.bus, world.ClientWorldConfirm{Client: c})
	assert.Empty(t, c.records())
}

func TestRegistry_DespawnRemovesExactlyOne(t *testing.T) {
	f := newRegistryFixture(t)
	a := f.create(t, f.inst)
	b := f.create(t, f.inst)

	event.Publish(f.bus, world.EntityDespawned{Entity: a})
	event.Publish(f.bus, world.EntityDespawned{Entity: a})
	event.Publish(f.bus, world.EntityDespawned{Entity: world.NewEntityBase(world.KindZombie)})

	assert.False(t, f.reg.Exists(a.ID()))
	assert.True(t, f.reg.Exists(b.ID()))
	assert.Equal(t, 1, f.reg.Len())
	assert.Equal(t, float64(1), f.gauge(t, "npcsync_npcs_registered"))
}

func TestRegistry_RemoveGoesThroughWorld(t *testing.T) {
	f := newRegistryFixture(t)
	n := f.create(t, f.inst)
	c := newFakeClient(1, f.inst)
	world.AddObserver(n, c)
	f.sched.Update(0)
	c.reset()

	assert.True(t, f.reg.Remove(n.ID()))
	assert.True(t, f.reg.Exists(n.ID()), "removal happens at cleanup")
	f.world.FlushDestroyQueue()

	assert.False(t, f.reg.Exists(n.ID()))
	assert.False(t, f.reg.Remove(n.ID()))
	assert.Equal(t, []byte{
		packet.S_OPCODE_DESTROY_ENTITIES,
		packet.S_OPCODE_PLAYER_INFO_REMOVE,
	}, c.opcodes())
}

func TestRegistry_RemoveNeverSpawned(t *testing.T) {
	f := newRegistryFixture(t)
	n := f.reg.Create(nil, nil, nil, nil)
	kept := f.reg.Create(nil, nil, nil, nil)

	assert.True(t, f.reg.Remove(n.ID()))
	assert.False(t, f.reg.Exists(n.ID()), "unspawned npc leaves the table at once")
	f.world.FlushDestroyQueue()
	f.world.FlushDestroyQueue()

	assert.False(t, f.reg.Remove(n.ID()))
	assert.True(t, f.reg.Exists(kept.ID()))
	assert.Equal(t, 1, f.reg.Len())
	assert.Equal(t, float64(1), f.gauge(t, "npcsync_npcs_registered"))
}

func TestRegistry_ConcurrentCreateAndDespawn(t *testing.T) {
	f := newRegistryFixture(t)

	const (
		workers   = 8
		perWorker = 50
	)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		kept []int32
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var mine []int32
			for i := 0; i < perWorker; i++ {
				n := f.reg.Create(nil, nil, nil, nil)
				switch {
				case i%2 == 0:
					event.Publish(f.bus, world.EntityDespawned{Entity: n})
					event.Publish(f.bus, world.EntityDespawned{Entity: n})
				case i%5 == 1:
					f.reg.Remove(n.ID())
				default:
					mine = append(mine, n.ID())
				}
				_ = f.reg.All()
			}
			mu.Lock()
			kept = append(kept, mine...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, len(kept), f.reg.Len())
	for _, id := range kept {
		assert.True(t, f.reg.Exists(id))
	}
	assert.Equal(t, float64(len(kept)), f.gauge(t, "npcsync_npcs_registered"))

	all := f.reg.All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID(), all[i].ID())
	}
}

func TestRegistry_AttackCallback(t *testing.T) {
	f := newRegistryFixture(t)
	var hits []world.EntityAttacked
	n := f.reg.Create(nil, nil, func(ev world.EntityAttacked) { hits = append(hits, ev) }, nil)
	plain := f.reg.Create(nil, nil, nil, nil)
	c := newFakeClient(1, f.inst)

	event.Publish(f.bus, world.EntityAttacked{Attacker: c, Target: n})
	event.Publish(f.bus, world.EntityAttacked{Attacker: plain, Target: n})
	event.Publish(f.bus, world.EntityAttacked{Attacker: c, Target: plain})
	event.Publish(f.bus, world.EntityAttacked{Attacker: c, Target: world.NewEntityBase(world.KindWolf)})

	require.Len(t, hits, 1)
	assert.Same(t, c, hits[0].Attacker)
}

func TestRegistry_InteractCallback(t *testing.T) {
	f := newRegistryFixture(t)
	calls := 0
	n := f.reg.Create(nil, nil, nil, func(world.EntityInteracted) { calls++ })
	c := newFakeClient(1, f.inst)

	event.Publish(f.bus, world.EntityInteracted{Client: c, Target: n, Hand: world.HandMain})
	event.Publish(f.bus, world.EntityInteracted{Client: c, Target: n, Hand: world.HandOff})

	assert.Equal(t, 1, calls)
}

func TestRegistry_CallbackPanicIsContained(t *testing.T) {
	f := newRegistryFixture(t)
	n := f.reg.Create(nil, nil, nil, func(world.EntityInteracted) { panic("script error") })
	other := 0
	m := f.reg.Create(nil, nil, nil, func(world.EntityInteracted) { other++ })
	c := newFakeClient(1, f.inst)

	assert.NotPanics(t, func() {
		event.Publish(f.bus, world.EntityInteracted{Client: c, Target: n})
	})
	event.Publish(f.bus, world.EntityInteracted{Client: c, Target: m})
	assert.Equal(t, 1, other)
}
