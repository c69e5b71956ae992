package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/npcsync/server/internal/core/system"
	"github.com/npcsync/server/internal/world"
)

// CleanupSystem destroys entities queued by World.Despawn. It runs after
// visibility so a despawned entity is never re-observed in the same tick.
type CleanupSystem struct {
	world   *world.World
	removed uint64
	log     *zap.Logger
}

func NewCleanupSystem(w *world.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: w, log: log.With(zap.String("component", "cleanup"))}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	n := s.world.FlushDestroyQueue()
	if n == 0 {
		return
	}
	s.removed += uint64(n)
	s.log.Debug("entities destroyed", zap.Int("count", n), zap.Uint64("total", s.removed))
}

// Removed returns how many entities this system has destroyed.
func (s *CleanupSystem) Removed() uint64 { return s.removed }
