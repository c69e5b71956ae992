package ecs

import "sync"

// Store is a generic handle-keyed table. Unlike a plain map it is safe to use
// from the network goroutines and the game loop at the same time.
type Store[T any] struct {
	mu   sync.RWMutex
	data map[EntityID]T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]T, 256),
	}
}

func (s *Store[T]) Set(id EntityID, v T) {
	s.mu.Lock()
	s.data[id] = v
	s.mu.Unlock()
}

func (s *Store[T]) Get(id EntityID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[id]
	return v, ok
}

// Remove deletes the entry and reports whether it was present.
func (s *Store[T]) Remove(id EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return false
	}
	delete(s.data, id)
	return true
}

func (s *Store[T]) Has(id EntityID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Each iterates over a snapshot, so fn may mutate the store.
func (s *Store[T]) Each(fn func(EntityID, T)) {
	s.mu.RLock()
	ids := make([]EntityID, 0, len(s.data))
	vals := make([]T, 0, len(s.data))
	for id, v := range s.data {
		ids = append(ids, id)
		vals = append(vals, v)
	}
	s.mu.RUnlock()
	for i, id := range ids {
		fn(id, vals[i])
	}
}
