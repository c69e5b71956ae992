package world

import "sync"

// Tag is a typed key into a Tags set.
type Tag[T any] struct {
	name string
}

func NewTag[T any](name string) Tag[T] {
	return Tag[T]{name: name}
}

func (t Tag[T]) Name() string { return t.name }

// Tags is per-instance opaque data attached to entities and clients.
// Safe for concurrent use.
type Tags struct {
	mu   sync.RWMutex
	data map[string]any
}

func GetTag[T any](ts *Tags, t Tag[T]) (T, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	v, ok := ts.data[t.name]
	if !ok {
		var zero T
		return zero, false
	}
	tv, ok := v.(T)
	return tv, ok
}

func HasTag[T any](ts *Tags, t Tag[T]) bool {
	_, ok := GetTag(ts, t)
	return ok
}

func SetTag[T any](ts *Tags, t Tag[T], v T) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.data == nil {
		ts.data = make(map[string]any, 4)
	}
	ts.data[t.name] = v
}

// RemoveTag deletes the value and reports whether it was present.
func RemoveTag[T any](ts *Tags, t Tag[T]) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if _, ok := ts.data[t.name]; !ok {
		return false
	}
	delete(ts.data, t.name)
	return true
}

// SwapTag removes the value and returns what was there, in one step.
func SwapTag[T any](ts *Tags, t Tag[T]) (T, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	v, ok := ts.data[t.name]
	delete(ts.data, t.name)
	tv, typed := v.(T)
	return tv, ok && typed
}
