// Package game implements the snake state machine and its coordination
// loop. The Machine owns the occupancy grid, the body buffer, and the
// apple; every mutation goes through it, and renderers only ever see
// row snapshots.
package game

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"ledsnake/internal/grid"
	"ledsnake/internal/snake"
)

// State is the game lifecycle tag.
type State uint8

const (
	StateMenu State = iota
	StateSetup
	StatePlaying
	StateGameOverTransition
	StateGameOverMenu
	StateEnteringHiscore
	StateViewingHiscore
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateSetup:
		return "setup"
	case StatePlaying:
		return "playing"
	case StateGameOverTransition:
		return "game-over"
	case StateGameOverMenu:
		return "game-over-menu"
	case StateEnteringHiscore:
		return "entering-hiscore"
	case StateViewingHiscore:
		return "viewing-hiscore"
	}
	// An unknown tag means corrupted state, not a recoverable condition.
	panic(fmt.Sprintf("game: invalid state %d", uint8(s)))
}

// Start position and direction of a fresh game.
var startCell = grid.At(4, 4)

const startDir = grid.Up

// Machine is the game aggregate. All fields are guarded by mu; the grid
// additionally carries its own lock so renderers can snapshot rows
// without going through the Machine.
type Machine struct {
	mu  sync.Mutex
	cfg Config
	rng *rand.Rand

	state    State
	grid     *grid.Grid
	body     *snake.Body
	apple    grid.Coord
	hasApple bool

	dir      grid.Dir   // latest accepted direction; the pending head follows it
	bodyDir  grid.Dir   // direction of the last committed head; reversal checks use this
	pending  grid.Coord // provisional head, not yet in the body buffer
	score    int
	ateApple bool // apple consumed since the last commit
}

// New returns a Machine in Setup; the first Update enters Playing.
func New(cfg Config) *Machine {
	cfg.Defaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Machine{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		state: StateSetup,
		grid:  &grid.Grid{},
		body:  snake.New(startCell),
	}
}

// Reset performs the Setup work and enters Playing: clears the board,
// places the length-2 starting snake (one committed cell plus the
// provisional head) and the first apple.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Machine) reset() {
	m.grid.Reset()
	m.body.Reset(startCell)
	m.dir = startDir
	m.bodyDir = startDir
	m.pending = startCell.Step(startDir)
	m.grid.Set(startCell)
	m.grid.Set(m.pending)
	m.hasApple = false
	m.ateApple = false
	m.score = 2 // initial length: committed cell + provisional head
	if err := m.placeApple(); err != nil {
		// Two occupied cells out of 64; placement cannot fail here.
		panic(err)
	}
	m.state = StatePlaying
}

// SubmitDirection applies a direction event. A reversal of the committed
// body direction is rejected and the previous course is kept; anything
// else redraws the provisional head along the new direction. Reports
// whether the direction was accepted.
func (m *Machine) SubmitDirection(d grid.Dir) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePlaying {
		return false
	}
	if d == m.bodyDir.Opposite() {
		return false
	}
	m.clearPending()
	m.dir = d
	m.pending = m.body.Head().Step(d)
	m.grid.Set(m.pending)
	return true
}

// clearPending removes the provisional head's occupancy bit unless the
// cell is still claimed by a body cell or the apple underneath it.
func (m *Machine) clearPending() {
	if m.body.Contains(m.pending) {
		return
	}
	if m.hasApple && m.pending == m.apple {
		return
	}
	m.grid.Clear(m.pending)
}

// CheckApple consumes the apple when the provisional head sits on it:
// the apple disappears, the score grows, and the next tick skips the
// tail advance. Filling the whole board ends the game. Reports whether
// an apple was consumed this call.
func (m *Machine) CheckApple() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePlaying || !m.hasApple || m.pending != m.apple {
		return false
	}
	m.hasApple = false // cell stays occupied: the head is on it
	m.score++
	m.ateApple = true
	if m.score >= grid.Cells {
		m.state = StateGameOverTransition
	}
	return true
}

// Tick commits the provisional head into the body. A head landing on a
// committed body cell ends the game, except the tail cell when the tail
// vacates this same tick. Returns whether the game ended, and an error
// only for the unreachable no-free-cell apple placement.
func (m *Machine) Tick() (gameOver bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePlaying {
		return false, nil
	}

	if m.body.Contains(m.pending) {
		// On a growing tick the tail stays, so even the tail cell kills.
		if m.ateApple || m.pending != m.body.Tail() {
			m.state = StateGameOverTransition
			return true, nil
		}
	}

	m.body.Push(m.pending)
	m.bodyDir = m.dir

	if m.ateApple {
		m.ateApple = false
		if err := m.placeApple(); err != nil {
			return false, err
		}
	} else {
		vacated := m.body.PopTail()
		// The new head may sit exactly on the vacated cell.
		if !m.body.Contains(vacated) {
			m.grid.Clear(vacated)
		}
	}

	m.pending = m.body.Head().Step(m.dir)
	m.grid.Set(m.pending)
	return false, nil
}

// Update runs the unconditional transitions: Setup enters Playing, the
// game-over transition settles into the game-over menu. Called once per
// loop iteration before the event polls.
func (m *Machine) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateSetup:
		m.reset()
	case StateGameOverTransition:
		// No death animation; the score is already final.
		m.state = StateGameOverMenu
	}
}

// NewGame re-enters Setup from any menu-like state, fully resetting the
// game data on the next Update.
func (m *Machine) NewGame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateSetup
}

// ToMenu moves to the main menu. Game data stays untouched until the
// next Setup.
func (m *Machine) ToMenu() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateMenu
}

// BeginNameEntry moves from the game-over menu into hi-score name entry.
func (m *Machine) BeginNameEntry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateGameOverMenu {
		m.state = StateEnteringHiscore
	}
}

// ShowHiscores moves into the hi-score display.
func (m *Machine) ShowHiscores() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateViewingHiscore
}

// State returns the current lifecycle tag.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Score returns the current score (the snake length).
func (m *Machine) Score() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score
}

// Rows returns a torn-free snapshot of the occupancy rows for display.
func (m *Machine) Rows() [grid.Size]uint8 {
	return m.grid.Rows()
}
