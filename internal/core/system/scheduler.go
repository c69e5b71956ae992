package system

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler defers work to the next tick. Tasks queued during tick N run in
// PhasePreUpdate of tick N+1, which is after tick N's OutputSystem flushed
// everything sent in N. Tasks queued while the scheduler itself is draining
// land in tick N+2, never in the batch being run.
type Scheduler struct {
	mu      sync.Mutex
	pending []func()
	log     *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{log: log}
}

// NextTick queues fn for the next tick.
func (s *Scheduler) NextTick(fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) Phase() Phase { return PhasePreUpdate }

func (s *Scheduler) Update(_ time.Duration) {
	s.mu.Lock()
	tasks := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, fn := range tasks {
		s.run(fn)
	}
}

func (s *Scheduler) run(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("scheduled task panic recovered", zap.Any("panic", rec))
		}
	}()
	fn()
}
