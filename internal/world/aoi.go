package world

import (
	"sync"

	"github.com/npcsync/server/internal/core/ecs"
)

// AOIGrid implements a cell-based Area of Interest index of spawned
// entities, so visibility queries only look at nearby cells.

const cellSize = 16

type cellKey struct {
	instance string
	cx       int32
	cy       int32
}

func toCellCoord(v int32) int32 {
	if v < 0 {
		return (v - cellSize + 1) / cellSize
	}
	return v / cellSize
}

// AOIGrid tracks which entity handles are in which cells.
type AOIGrid struct {
	mu    sync.RWMutex
	cells map[cellKey]map[ecs.EntityID]struct{}
}

func NewAOIGrid() *AOIGrid {
	return &AOIGrid{
		cells: make(map[cellKey]map[ecs.EntityID]struct{}),
	}
}

func (g *AOIGrid) key(instance string, x, y int32) cellKey {
	return cellKey{instance: instance, cx: toCellCoord(x), cy: toCellCoord(y)}
}

// Add places a handle into the grid.
func (g *AOIGrid) Add(id ecs.EntityID, instance string, x, y int32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := g.key(instance, x, y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes a handle out of the grid.
func (g *AOIGrid) Remove(id ecs.EntityID, instance string, x, y int32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := g.key(instance, x, y)
	if cell := g.cells[k]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates a handle's cell when its position changes.
func (g *AOIGrid) Move(id ecs.EntityID, instance string, oldX, oldY, newX, newY int32) {
	if g.key(instance, oldX, oldY) == g.key(instance, newX, newY) {
		return
	}
	g.Remove(id, instance, oldX, oldY)
	g.Add(id, instance, newX, newY)
}

// GetNearby returns every handle in the cells that can contain a point within
// radius of (x, y). Caller does fine-grained distance filtering.
func (g *AOIGrid) GetNearby(instance string, x, y, radius int32) []ecs.EntityID {
	span := (radius + cellSize - 1) / cellSize
	if span < 1 {
		span = 1
	}
	cx := toCellCoord(x)
	cy := toCellCoord(y)

	g.mu.RLock()
	defer g.mu.RUnlock()
	var result []ecs.EntityID
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			k := cellKey{instance: instance, cx: cx + dx, cy: cy + dy}
			for id := range g.cells[k] {
				result = append(result, id)
			}
		}
	}
	return result
}
