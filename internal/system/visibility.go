package system

import (
	"time"

	"github.com/npcsync/server/internal/core/ecs"
	coresys "github.com/npcsync/server/internal/core/system"
	"github.com/npcsync/server/internal/world"
)

// VisibilitySystem attaches and detaches players as entity observers based
// on instance and view distance. Phase 3 (PostUpdate), so records produced
// by gaining an observer are flushed in the same tick.
type VisibilitySystem struct {
	world    *world.World
	interval int
	ticks    int
}

// NewVisibilitySystem scans every interval ticks; values below 1 mean every tick.
func NewVisibilitySystem(w *world.World, interval int) *VisibilitySystem {
	if interval < 1 {
		interval = 1
	}
	return &VisibilitySystem{world: w, interval: interval}
}

func (s *VisibilitySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *VisibilitySystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks < s.interval {
		return
	}
	s.ticks = 0
	s.world.AllPlayers(s.updatePlayer)
}

func (s *VisibilitySystem) updatePlayer(p *world.Player) {
	inst := p.Instance()
	if inst == nil {
		return
	}
	x, y := p.Position()
	nearby := s.world.NearbyEntities(inst, x, y, inst.ViewDistance())

	current := make(map[ecs.EntityID]struct{}, len(nearby))
	for _, e := range nearby {
		h := e.Base().Handle()
		current[h] = struct{}{}
		if _, known := p.Known[h]; known {
			continue
		}
		p.Known[h] = e
		world.AddObserver(e, p)
	}

	for h, e := range p.Known {
		if _, ok := current[h]; ok {
			continue
		}
		delete(p.Known, h)
		world.RemoveObserver(e, p)
	}
}
