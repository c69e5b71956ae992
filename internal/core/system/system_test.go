package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordSystem struct {
	phase Phase
	name  string
	log   *[]string
}

func (r *recordSystem) Phase() Phase { return r.phase }
func (r *recordSystem) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunner_PhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordSystem{phase: PhaseCleanup, name: "cleanup", log: &log})
	r.Register(&recordSystem{phase: PhaseInput, name: "input", log: &log})
	r.Register(&recordSystem{phase: PhaseOutput, name: "output-a", log: &log})
	r.Register(&recordSystem{phase: PhaseOutput, name: "output-b", log: &log})

	r.Tick(time.Millisecond)

	assert.Equal(t, []string{"input", "output-a", "output-b", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())

	log = nil
	r.TickPhase(PhaseOutput, time.Millisecond)
	assert.Equal(t, []string{"output-a", "output-b"}, log)
}

func TestRunner_ObserveAndInvalidPhase(t *testing.T) {
	r := NewRunner()
	var seen []uint64
	r.Observe(func(tick uint64, took time.Duration) {
		seen = append(seen, tick)
		assert.GreaterOrEqual(t, took, time.Duration(0))
	})
	r.Tick(0)
	r.Tick(0)
	r.TickPhase(PhaseInput, 0)
	assert.Equal(t, []uint64{1, 2}, seen)

	assert.Panics(t, func() { r.Register(&recordSystem{phase: Phase(42)}) })
	assert.Equal(t, "post_update", PhasePostUpdate.String())
}

func TestScheduler_RunsStrictlyNextTick(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var ran []string

	s.NextTick(func() {
		ran = append(ran, "first")
		s.NextTick(func() { ran = append(ran, "second") })
	})
	assert.Empty(t, ran, "nothing runs synchronously")
	assert.Equal(t, 1, s.Pending())

	s.Update(0)
	assert.Equal(t, []string{"first"}, ran, "task queued while draining waits for the following tick")

	s.Update(0)
	assert.Equal(t, []string{"first", "second"}, ran)

	s.Update(0)
	assert.Len(t, ran, 2)
}

func TestScheduler_PanicIsContained(t *testing.T) {
	s := NewScheduler(nil)
	ok := false
	s.NextTick(func() { panic("bad task") })
	s.NextTick(func() { ok = true })

	assert.NotPanics(t, func() { s.Update(0) })
	assert.True(t, ok)
}
