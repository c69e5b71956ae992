package world

import "sync"

// SkinParts is the bitmask of optional humanoid body-part overlays.
type SkinParts uint8

const (
	SkinCape SkinParts = 1 << iota
	SkinJacket
	SkinLeftSleeve
	SkinRightSleeve
	SkinLeftLeg
	SkinRightLeg
	SkinHat

	SkinAll = SkinCape | SkinJacket | SkinLeftSleeve | SkinRightSleeve | SkinLeftLeg | SkinRightLeg | SkinHat
)

// MetaSnapshot is an immutable copy of an entity's render metadata.
type MetaSnapshot struct {
	CustomName        string
	CustomNameVisible bool
	SkinParts         SkinParts
}

// Meta is the render metadata of one entity. Every change is pushed to the
// entity's observers unless notifications are suppressed; suppressed changes
// are coalesced into a single push when notifications are re-enabled.
type Meta struct {
	mu      sync.Mutex
	snap    MetaSnapshot
	silent  bool
	dirty   bool
	publish func(MetaSnapshot)
}

func newMeta(publish func(MetaSnapshot)) *Meta {
	return &Meta{publish: publish}
}

// SetNotifyAboutChanges toggles change notifications. Turning them back on
// flushes any change made while they were off.
func (m *Meta) SetNotifyAboutChanges(notify bool) {
	m.mu.Lock()
	m.silent = !notify
	flush := notify && m.dirty
	if flush {
		m.dirty = false
	}
	snap := m.snap
	m.mu.Unlock()
	if flush {
		m.publish(snap)
	}
}

// Edit applies fn with notifications suppressed and pushes at most once.
func (m *Meta) Edit(fn func(*Meta)) {
	m.SetNotifyAboutChanges(false)
	fn(m)
	m.SetNotifyAboutChanges(true)
}

func (m *Meta) Snapshot() MetaSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *Meta) CustomName() string        { return m.Snapshot().CustomName }
func (m *Meta) IsCustomNameVisible() bool { return m.Snapshot().CustomNameVisible }
func (m *Meta) SkinParts() SkinParts      { return m.Snapshot().SkinParts }

func (m *Meta) SetCustomName(name string) {
	m.update(func(s *MetaSnapshot) { s.CustomName = name })
}

func (m *Meta) SetCustomNameVisible(visible bool) {
	m.update(func(s *MetaSnapshot) { s.CustomNameVisible = visible })
}

// EnableSkinParts turns the given overlays on, leaving the others untouched.
func (m *Meta) EnableSkinParts(parts SkinParts) {
	m.update(func(s *MetaSnapshot) { s.SkinParts |= parts })
}

func (m *Meta) update(fn func(*MetaSnapshot)) {
	m.mu.Lock()
	before := m.snap
	fn(&m.snap)
	if m.snap == before {
		m.mu.Unlock()
		return
	}
	if m.silent {
		m.dirty = true
		m.mu.Unlock()
		return
	}
	snap := m.snap
	m.mu.Unlock()
	m.publish(snap)
}

// rebuild replaces the metadata with a fresh set built by fn, without
// notifying. Used by kind switches, which re-send full state anyway.
func (m *Meta) rebuild(fn func(*Meta)) {
	m.mu.Lock()
	m.snap = MetaSnapshot{}
	m.silent = true
	m.mu.Unlock()
	if fn != nil {
		fn(m)
	}
	m.mu.Lock()
	m.silent = false
	m.dirty = false
	m.mu.Unlock()
}
