package game

import (
	"errors"

	"ledsnake/internal/grid"
)

// ErrNoFreeCell means apple placement was requested on a full board.
// The win check fires before the board fills, so hitting this is a
// programming defect and the caller treats it as fatal.
var ErrNoFreeCell = errors.New("apple placement: no free cell")

// chooseFree returns the cell of rank r among the unoccupied cells in
// row-major order. With r drawn uniformly from [0, free) this selects a
// uniformly distributed free cell in a single O(Cells) pass, with no
// rejection loop.
func chooseFree(rows [grid.Size]uint8, r int) (grid.Coord, error) {
	for y := 0; y < grid.Size; y++ {
		for x := 0; x < grid.Size; x++ {
			if rows[y]&(1<<uint(x)) != 0 {
				continue
			}
			if r == 0 {
				return grid.At(x, y), nil
			}
			r--
		}
	}
	return 0, ErrNoFreeCell
}

// placeApple selects a free cell, records it as the apple, and marks it
// occupied. The grid state is left untouched when no free cell exists.
func (m *Machine) placeApple() error {
	free := grid.Cells - m.grid.Occupied()
	if free <= 0 {
		return ErrNoFreeCell
	}
	c, err := chooseFree(m.grid.Rows(), m.rng.Intn(free))
	if err != nil {
		return err
	}
	m.apple = c
	m.hasApple = true
	m.grid.Set(c)
	return nil
}
