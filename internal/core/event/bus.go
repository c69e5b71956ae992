package event

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Bus is a typed event bus with two delivery paths:
//
//   - Publish delivers synchronously to every subscriber of T. Host signals
//     that must be observed in order (client joining, world confirm, despawn)
//     go through here.
//   - Emit queues into a back buffer that becomes readable after SwapBuffers,
//     i.e. on the next tick. Used for notifications nobody needs this tick.
//
// A panicking handler is recovered and logged; the remaining handlers still
// run, so one bad subscriber cannot take down unrelated NPCs or clients.
type Bus struct {
	mu       sync.RWMutex
	qmu      sync.Mutex
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
	log      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
		log:      log,
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Publish delivers the event to all T subscribers before returning.
func Publish[T any](b *Bus, ev T) {
	t := typeOf[T]()
	b.mu.RLock()
	hs := b.handlers[t]
	b.mu.RUnlock()
	for _, h := range hs {
		b.call(t, h, ev)
	}
}

// Emit queues an event into the back buffer (readable next tick).
func Emit[T any](b *Bus, ev T) {
	t := typeOf[T]()
	b.qmu.Lock()
	b.back[t] = append(b.back[t], ev)
	b.qmu.Unlock()
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.qmu.Lock()
	defer b.qmu.Unlock()
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	b.qmu.Lock()
	pending := make(map[reflect.Type][]any, len(b.front))
	for t, evs := range b.front {
		if len(evs) > 0 {
			pending[t] = append([]any(nil), evs...)
		}
		b.front[t] = evs[:0]
	}
	b.qmu.Unlock()

	for t, evs := range pending {
		b.mu.RLock()
		hs := b.handlers[t]
		b.mu.RUnlock()
		for _, ev := range evs {
			for _, h := range hs {
				b.call(t, h, ev)
			}
		}
	}
}

func (b *Bus) call(t reflect.Type, h func(any), ev any) {
	defer func() {
		if rec := recover(); rec != nil {
			b.log.Error("event handler panic recovered",
				zap.String("event", t.String()),
				zap.Any("panic", rec),
			)
		}
	}()
	h(ev)
}
