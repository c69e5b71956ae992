package system

import (
	"fmt"
	"time"
)

// TickObserver receives the wall time each full tick took.
type TickObserver func(tick uint64, took time.Duration)

// Runner drives registered systems phase by phase.
type Runner struct {
	phases  [phaseCount][]System
	ticks   uint64
	observe TickObserver
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to its phase. An out-of-range phase panics.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("system: invalid phase %d", int(p)))
	}
	r.phases[p] = append(r.phases[p], s)
}

// Observe installs fn to be called after every full tick.
func (r *Runner) Observe(fn TickObserver) { r.observe = fn }

func (r *Runner) Tick(dt time.Duration) {
	start := time.Now()
	for p := range r.phases {
		r.run(Phase(p), dt)
	}
	r.ticks++
	if r.observe != nil {
		r.observe(r.ticks, time.Since(start))
	}
}

// TickPhase runs only the systems of one phase. It does not count as a tick.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	if phase < 0 || phase >= phaseCount {
		return
	}
	r.run(phase, dt)
}

// Ticks returns the number of completed full ticks.
func (r *Runner) Ticks() uint64 { return r.ticks }

func (r *Runner) run(p Phase, dt time.Duration) {
	for _, s := range r.phases[p] {
		s.Update(dt)
	}
}
