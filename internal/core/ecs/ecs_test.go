package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityPool_NeverIssuesZero(t *testing.T) {
	p := NewEntityPool()
	id := p.Create()
	assert.False(t, id.IsZero())
	assert.Equal(t, uint32(1), id.Index())
	assert.True(t, p.Alive(id))
	assert.False(t, p.Alive(0))
}

func TestEntityPool_ReuseBumpsGeneration(t *testing.T) {
	p := NewEntityPool()
	first := p.Create()
	require.True(t, p.Destroy(first))
	assert.False(t, p.Destroy(first), "second release of the same handle is a no-op")

	second := p.Create()
	assert.Equal(t, first.Index(), second.Index())
	assert.Equal(t, first.Generation()+1, second.Generation())
	assert.False(t, p.Alive(first), "stale handle must not resolve")
	assert.True(t, p.Alive(second))
}

func TestStore(t *testing.T) {
	s := NewStore[string]()
	s.Set(1, "a")
	s.Set(2, "b")

	v, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, s.Len())

	t.Run("each tolerates removal", func(t *testing.T) {
		seen := 0
		s.Each(func(id EntityID, _ string) {
			seen++
			s.Remove(id)
		})
		assert.Equal(t, 2, seen)
		assert.Equal(t, 0, s.Len())
	})

	assert.False(t, s.Remove(1))
	assert.False(t, s.Has(2))
}
