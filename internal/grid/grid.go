// Package grid holds the board geometry: packed coordinates, directions,
// and the bit-per-cell occupancy map shared read-only with renderers.
package grid

import (
	"fmt"
	"math/bits"
	"sync"
)

// Size is the edge length of the square board. The display is an 8x8 LED
// matrix, so one cell maps to one LED.
const Size = 8

// Cells is the total cell count, and the maximum possible snake length.
const Cells = Size * Size

// Dir is one of the four movement directions.
type Dir uint8

const (
	Up Dir = iota
	Right
	Down
	Left
)

func (d Dir) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return "unknown"
}

// Opposite returns the reverse direction. Used for the no-reversal rule.
func (d Dir) Opposite() Dir {
	switch d {
	case Up:
		return Down
	case Right:
		return Left
	case Down:
		return Up
	default:
		return Right
	}
}

// Delta returns the (dx, dy) unit step for d. Y grows downward, matching
// the display's row order, so Up decreases y.
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	default:
		return -1, 0
	}
}

// Coord is a board cell packed into one byte: x in the low nibble, y in
// the high nibble. Both components are always < Size.
type Coord uint8

// At builds a Coord from x and y, reducing both modulo Size.
func At(x, y int) Coord {
	x = ((x % Size) + Size) % Size
	y = ((y % Size) + Size) % Size
	return Coord(y<<4 | x)
}

func (c Coord) X() int { return int(c & 0x0F) }
func (c Coord) Y() int { return int(c >> 4) }

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X(), c.Y())
}

// Step returns the cell one unit away in direction d. Movement wraps
// modulo Size on both axes; there is no clamping at the board edge.
func (c Coord) Step(d Dir) Coord {
	dx, dy := d.Delta()
	return At(c.X()+dx, c.Y()+dy)
}

// Grid is the occupancy map: one bit per cell, one byte per row. A set
// bit means the cell is covered by snake body, the provisional head, or
// the apple. The game logic is the only writer; renderers read via
// Rows, which copies under the lock so a frame never sees a torn row.
type Grid struct {
	mu   sync.Mutex
	rows [Size]uint8
}

// Reset clears every cell.
func (g *Grid) Reset() {
	g.mu.Lock()
	g.rows = [Size]uint8{}
	g.mu.Unlock()
}

// Set marks the cell at c occupied.
func (g *Grid) Set(c Coord) {
	g.mu.Lock()
	g.rows[c.Y()] |= 1 << uint(c.X())
	g.mu.Unlock()
}

// Clear marks the cell at c free.
func (g *Grid) Clear(c Coord) {
	g.mu.Lock()
	g.rows[c.Y()] &^= 1 << uint(c.X())
	g.mu.Unlock()
}

// Test reports whether the cell at c is occupied.
func (g *Grid) Test(c Coord) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rows[c.Y()]&(1<<uint(c.X())) != 0
}

// Occupied returns the number of set cells.
func (g *Grid) Occupied() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, row := range g.rows {
		n += bits.OnesCount8(row)
	}
	return n
}

// Rows returns a consistent snapshot of all row masks. The copy is what
// crosses the boundary to the display; renderers never hold the lock
// longer than the copy.
func (g *Grid) Rows() [Size]uint8 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rows
}
