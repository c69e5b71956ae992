package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pinged struct{ N int }
type other struct{}

func TestPublish_IsSynchronousAndTyped(t *testing.T) {
	b := NewBus(zap.NewNop())
	var got []int
	Subscribe(b, func(ev pinged) { got = append(got, ev.N) })
	Subscribe(b, func(other) { t.Fatal("wrong type delivered") })

	Publish(b, pinged{N: 1})
	Publish(b, pinged{N: 2})

	assert.Equal(t, []int{1, 2}, got)
}

func TestPublish_PanicIsContained(t *testing.T) {
	b := NewBus(zap.NewNop())
	calls := 0
	Subscribe(b, func(pinged) { panic("boom") })
	Subscribe(b, func(pinged) { calls++ })

	assert.NotPanics(t, func() { Publish(b, pinged{}) })
	assert.Equal(t, 1, calls, "later subscribers still run")
}

func TestEmit_DeliveredAfterSwap(t *testing.T) {
	b := NewBus(nil)
	var got []int
	Subscribe(b, func(ev pinged) { got = append(got, ev.N) })

	Emit(b, pinged{N: 7})
	b.DispatchAll()
	assert.Empty(t, got, "emitted events are not readable in the same tick")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{7}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{7}, got, "events are delivered once")
}
