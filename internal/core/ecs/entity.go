package ecs

import "sync"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on release so that a stale handle
// (for example one a client still targets after despawn) never resolves to
// the entity that reused the slot.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool hands out render handles with generational indices and a free list.
// Index 0 is never issued so the zero EntityID always means "no handle".
type EntityPool struct {
	mu          sync.Mutex
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
}

func (p *EntityPool) Create() EntityID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntityID(idx, p.generations[idx])
}

func (p *EntityPool) Alive(id EntityID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aliveLocked(id)
}

func (p *EntityPool) aliveLocked(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Destroy releases the handle. It reports false for stale or unknown handles,
// which makes a second release of the same handle harmless.
func (p *EntityPool) Destroy(id EntityID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.aliveLocked(id) {
		return false
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	return true
}
