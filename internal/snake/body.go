// Package snake holds the committed snake body: a fixed-capacity ring
// buffer of cells ordered tail to head. The capacity equals the board's
// cell count, so the buffer can never overflow before the board fills.
package snake

import "ledsnake/internal/grid"

// Capacity is the maximum body length: a snake covering the whole board.
const Capacity = grid.Cells

// Body is a circular buffer of cells addressed by head and tail indices
// with modular increment. It never reallocates.
type Body struct {
	cells      [Capacity]grid.Coord
	head, tail int
}

// New returns a body of length one occupying start.
func New(start grid.Coord) *Body {
	b := &Body{}
	b.cells[0] = start
	return b
}

// Reset shrinks the body back to length one at start.
func (b *Body) Reset(start grid.Coord) {
	b.head, b.tail = 0, 0
	b.cells[0] = start
}

// Len is the number of committed cells, always in [1, Capacity].
func (b *Body) Len() int {
	return (b.head-b.tail+Capacity)%Capacity + 1
}

// Head returns the most recently committed cell.
func (b *Body) Head() grid.Coord { return b.cells[b.head] }

// Tail returns the oldest cell, the next to vacate on a non-growing tick.
func (b *Body) Tail() grid.Coord { return b.cells[b.tail] }

// Push commits c as the new head.
func (b *Body) Push(c grid.Coord) {
	b.head = (b.head + 1) % Capacity
	b.cells[b.head] = c
}

// PopTail removes and returns the tail cell. The caller clears its
// occupancy bit. Must not be called on a length-1 body.
func (b *Body) PopTail() grid.Coord {
	c := b.cells[b.tail]
	b.tail = (b.tail + 1) % Capacity
	return c
}

// Contains reports whether c is a committed body cell.
func (b *Body) Contains(c grid.Coord) bool {
	for i, n := b.tail, b.Len(); n > 0; n-- {
		if b.cells[i] == c {
			return true
		}
		i = (i + 1) % Capacity
	}
	return false
}

// Cells returns the committed cells tail first. Only tests and debug
// paths walk the whole body; gameplay uses the occupancy grid.
func (b *Body) Cells() []grid.Coord {
	out := make([]grid.Coord, 0, b.Len())
	for i, n := b.tail, b.Len(); n > 0; n-- {
		out = append(out, b.cells[i])
		i = (i + 1) % Capacity
	}
	return out
}
