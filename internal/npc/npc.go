// Package npc implements server-side synthetic players and the registry that
// owns them.
//
// A humanoid NPC is rendered by the client as a player, which requires an
// entry in the client's player list. The entry is announced right before the
// entity spawns and retracted again as soon as the client has processed the
// spawn, so NPCs never show up in the tab list.
package npc

import (
	"strconv"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/world"
)

const (
	NamePrefix = "[NPC] "

	// MaxLabelLength is the longest player-list label a client accepts.
	MaxLabelLength = 15
)

var lastID atomic.Int32

// Scheduler defers work to the next tick.
type Scheduler interface {
	NextTick(fn func())
}

// Appearance is a signed skin payload.
type Appearance struct {
	Textures  string
	Signature string
}

// NPC is a server-controlled entity. Humanoid NPCs follow the
// announce/retract protocol towards every observer.
type NPC struct {
	*world.EntityBase

	id      int32
	sched   Scheduler
	metrics *Metrics
	retract *packet.Cached

	switchMu sync.Mutex

	mu         sync.RWMutex
	name       string
	appearance *Appearance
}

type Option func(*NPC)

func WithAppearance(a Appearance) Option {
	return func(n *NPC) { n.appearance = &a }
}

func WithMetrics(m *Metrics) Option {
	return func(n *NPC) { n.metrics = m }
}

// New creates an NPC. A nil kind means humanoid; a nil name means the id is
// used instead.
func New(kind *world.Kind, name *string, sched Scheduler, opts ...Option) *NPC {
	k := world.KindHumanoid
	if kind != nil {
		k = *kind
	}
	n := &NPC{
		EntityBase: world.NewEntityBase(k),
		id:         lastID.Add(1),
		sched:      sched,
	}
	n.retract = packet.NewCached(packet.NewRetract(n.UUID()))
	if name != nil {
		n.name = NamePrefix + *name
	} else {
		n.name = NamePrefix + strconv.Itoa(int(n.id))
	}
	for _, opt := range opts {
		opt(n)
	}

	n.Meta().Edit(func(m *world.Meta) {
		n.applyCustomName(m)
		if k.IsHumanoid() {
			m.EnableSkinParts(world.SkinAll)
		}
	})
	if k.IsHumanoid() {
		world.SetTag(n.Tags(), LabelTag, n.Label())
	}
	return n
}

func (n *NPC) ID() int32 { return n.id }

// Name is the display name including the prefix.
func (n *NPC) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// Label is the display name as it appears in the player list: NFC-normalized
// and cut to MaxLabelLength runes.
func (n *NPC) Label() string {
	return truncateLabel(n.Name())
}

func (n *NPC) Appearance() (Appearance, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.appearance == nil {
		return Appearance{}, false
	}
	return *n.appearance, true
}

// GainObserver announces the NPC to c before the base spawn. Unless c is
// still settling into its instance, the announcement is retracted on the
// next tick; settling clients get one batched retract from the registry.
func (n *NPC) GainObserver(c world.Client) {
	if !n.Kind().IsHumanoid() {
		n.BaseGainObserver(c)
		return
	}
	c.Send(n.announce())
	n.metrics.announced()
	if !isSettling(c) {
		n.sched.NextTick(func() {
			c.Send(n.retract)
			n.metrics.retracted(retractDeferred)
		})
	}
	n.BaseGainObserver(c)
}

// LoseObserver destroys the entity for c and retracts its player-list entry.
// The retract is sent even if nothing is outstanding.
func (n *NPC) LoseObserver(c world.Client) {
	n.BaseLoseObserver(c)
	if n.Kind().IsHumanoid() {
		c.Send(n.retract)
		n.metrics.retracted(retractLose)
	}
}

// SwitchKind changes how the NPC is rendered. Switching to the current kind
// does nothing.
func (n *NPC) SwitchKind(kind world.Kind) {
	n.switchMu.Lock()
	defer n.switchMu.Unlock()
	if n.Kind() == kind {
		return
	}
	if kind.IsHumanoid() {
		world.SetTag(n.Tags(), LabelTag, n.Label())
	} else {
		world.RemoveTag(n.Tags(), LabelTag)
	}
	n.EntityBase.SwitchKind(n, kind, func(m *world.Meta) {
		n.applyCustomName(m)
		if kind.IsHumanoid() {
			m.EnableSkinParts(world.SkinAll)
		}
	})
	n.metrics.kindSwitched()
}

// SetAppearance stores a. A spawned humanoid is re-announced and re-spawned
// for every observer, since clients only read skins on spawn.
func (n *NPC) SetAppearance(a Appearance) {
	n.mu.Lock()
	n.appearance = &a
	n.mu.Unlock()
	if !n.Kind().IsHumanoid() || !n.IsActive() {
		return
	}
	destroy := packet.NewCached(n.DestroyRecord())
	for _, c := range n.Observers() {
		c.Send(n.retract)
		n.metrics.retracted(retractAppearance)
		c.Send(destroy)
		n.GainObserver(c)
	}
}

// SetName replaces the display name. Observers see the new custom name
// immediately, without a re-spawn. Serialized with SwitchKind so a rename is
// never lost inside a metadata rebuild.
func (n *NPC) SetName(name string) {
	n.switchMu.Lock()
	defer n.switchMu.Unlock()
	n.mu.Lock()
	n.name = NamePrefix + name
	n.mu.Unlock()
	if n.Kind().IsHumanoid() {
		world.SetTag(n.Tags(), LabelTag, n.Label())
	}
	n.Meta().SetCustomName(n.Name())
}

func (n *NPC) applyCustomName(m *world.Meta) {
	m.SetCustomName(n.Name())
	m.SetCustomNameVisible(true)
}

func (n *NPC) announce() packet.Announce {
	var props []packet.Property
	if a, ok := n.Appearance(); ok {
		props = append(props, packet.Property{
			Name:      "textures",
			Value:     a.Textures,
			Signature: a.Signature,
		})
	}
	return packet.Announce{
		UUID:       n.UUID(),
		Label:      n.Label(),
		Properties: props,
		Listed:     false,
		Latency:    0,
		GameMode:   packet.GameModeCreative,
	}
}

func truncateLabel(s string) string {
	s = norm.NFC.String(s)
	if utf8.RuneCountInString(s) <= MaxLabelLength {
		return s
	}
	return string([]rune(s)[:MaxLabelLength])
}
