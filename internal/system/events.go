package system

import (
	"time"

	"github.com/npcsync/server/internal/core/event"
	coresys "github.com/npcsync/server/internal/core/system"
)

// EventSystem delivers events queued with event.Emit since the last swap.
// Phase 1 (PreUpdate).
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
