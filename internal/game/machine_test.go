package game

import (
	"testing"

	"golang.org/x/exp/rand"

	"ledsnake/internal/grid"
)

// relocateApple moves the apple to a known free cell so scenarios are
// independent of the RNG draw.
func relocateApple(m *Machine, c grid.Coord) {
	if m.hasApple {
		m.grid.Clear(m.apple)
	}
	m.apple = c
	m.hasApple = true
	m.grid.Set(c)
}

// checkConsistent asserts the grid/model invariant: a bit is set iff the
// cell is committed body, the provisional head, or the apple.
func checkConsistent(t *testing.T, m *Machine) {
	t.Helper()
	for y := 0; y < grid.Size; y++ {
		for x := 0; x < grid.Size; x++ {
			c := grid.At(x, y)
			want := m.body.Contains(c) || c == m.pending || (m.hasApple && c == m.apple)
			if got := m.grid.Test(c); got != want {
				t.Fatalf("grid bit at %v = %v, model says %v", c, got, want)
			}
		}
	}
}

func newPlaying(t *testing.T) *Machine {
	t.Helper()
	m := New(Config{Seed: 1})
	m.Reset()
	if m.State() != StatePlaying {
		t.Fatalf("state after Reset = %v, want playing", m.State())
	}
	return m
}

func TestReset_InitialConditions(t *testing.T) {
	m := newPlaying(t)
	if m.Score() != 2 {
		t.Fatalf("initial score = %d, want 2", m.Score())
	}
	if m.body.Len() != 1 || m.body.Head() != grid.At(4, 4) {
		t.Fatalf("committed body = %v (len %d), want single cell (4,4)", m.body.Head(), m.body.Len())
	}
	if m.pending != grid.At(4, 3) {
		t.Fatalf("provisional head = %v, want (4,3)", m.pending)
	}
	if !m.hasApple {
		t.Fatalf("no apple placed at setup")
	}
	if m.apple == grid.At(4, 4) || m.apple == grid.At(4, 3) {
		t.Fatalf("apple %v overlaps the starting snake", m.apple)
	}
	if got := m.grid.Occupied(); got != 3 {
		t.Fatalf("occupied cells = %d, want 3 (body, head, apple)", got)
	}
	checkConsistent(t, m)
}

func TestUpdate_SetupEntersPlaying(t *testing.T) {
	m := New(Config{Seed: 1})
	if m.State() != StateSetup {
		t.Fatalf("state after New = %v, want setup", m.State())
	}
	m.Update()
	if m.State() != StatePlaying {
		t.Fatalf("state after first Update = %v, want playing", m.State())
	}
}

// Five unprompted ticks move the head five cells up, wrapping across
// the top edge, and leave the score untouched.
func TestFiveTicks_MoveUpWithWrap(t *testing.T) {
	m := newPlaying(t)
	relocateApple(m, grid.At(0, 0)) // off the snake's column

	for i := 0; i < 5; i++ {
		m.CheckApple()
		if over, err := m.Tick(); over || err != nil {
			t.Fatalf("tick %d: over=%v err=%v", i+1, over, err)
		}
	}
	if got := m.body.Head(); got != grid.At(4, 7) {
		t.Fatalf("head after 5 ticks = %v, want (4,7)", got)
	}
	if m.Score() != 2 {
		t.Fatalf("score changed to %d without apples", m.Score())
	}
	checkConsistent(t, m)
}

func TestSubmitDirection_ReversalRejected(t *testing.T) {
	m := newPlaying(t)
	if m.SubmitDirection(grid.Down) {
		t.Fatalf("reversal up->down accepted")
	}
	if m.dir != grid.Up || m.pending != grid.At(4, 3) {
		t.Fatalf("rejected input changed course: dir %v pending %v", m.dir, m.pending)
	}
}

func TestSubmitDirection_TurnRedrawsPendingHead(t *testing.T) {
	m := newPlaying(t)
	relocateApple(m, grid.At(0, 0))
	if !m.SubmitDirection(grid.Left) {
		t.Fatalf("perpendicular turn rejected")
	}
	if m.pending != grid.At(3, 4) {
		t.Fatalf("pending = %v after left turn, want (3,4)", m.pending)
	}
	if m.grid.Test(grid.At(4, 3)) {
		t.Fatalf("old provisional head still occupied after turn")
	}
	checkConsistent(t, m)
}

// The reversal check runs against the committed body direction, so a
// turn followed by its opposite within one tick is still accepted.
func TestSubmitDirection_ChecksBodyDirection(t *testing.T) {
	m := newPlaying(t)
	relocateApple(m, grid.At(0, 0))
	if !m.SubmitDirection(grid.Left) {
		t.Fatalf("left turn rejected")
	}
	if !m.SubmitDirection(grid.Right) {
		t.Fatalf("right after left rejected; body direction is still up")
	}
	if m.pending != grid.At(5, 4) {
		t.Fatalf("pending = %v, want (5,4)", m.pending)
	}
	// Down is still a reversal of the committed direction.
	if m.SubmitDirection(grid.Down) {
		t.Fatalf("reversal accepted after turns")
	}
	checkConsistent(t, m)
}

func TestSubmitDirection_SameDirectionAccepted(t *testing.T) {
	m := newPlaying(t)
	if !m.SubmitDirection(grid.Up) {
		t.Fatalf("repeat of current direction rejected")
	}
	if m.pending != grid.At(4, 3) {
		t.Fatalf("pending = %v, want unchanged (4,3)", m.pending)
	}
}

// loadBody replaces the committed body with the given tail-to-head cells
// and rebuilds the grid to match.
func loadBody(m *Machine, dir grid.Dir, cells ...grid.Coord) {
	m.grid.Reset()
	m.body.Reset(cells[0])
	m.grid.Set(cells[0])
	for _, c := range cells[1:] {
		m.body.Push(c)
		m.grid.Set(c)
	}
	m.dir = dir
	m.bodyDir = dir
	m.pending = m.body.Head().Step(dir)
	m.grid.Set(m.pending)
	m.hasApple = false
	m.ateApple = false
	m.score = m.body.Len() + 1
}

func TestTick_SelfCollisionEndsGame(t *testing.T) {
	m := newPlaying(t)
	// Square body; heading right runs the head into a mid-body cell.
	loadBody(m, grid.Right,
		grid.At(2, 2), grid.At(3, 2), grid.At(3, 3), grid.At(2, 3))
	if m.pending != grid.At(3, 3) {
		t.Fatalf("pending = %v, want mid-body cell (3,3)", m.pending)
	}
	over, err := m.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !over || m.state != StateGameOverTransition {
		t.Fatalf("self collision: over=%v state=%v, want game-over transition", over, m.state)
	}
	m.Update()
	if m.State() != StateGameOverMenu {
		t.Fatalf("state after Update = %v, want game-over-menu", m.State())
	}
}

// Chasing the tail is legal: the tail cell vacates on the same tick the
// head arrives.
func TestTick_TailChaseSurvives(t *testing.T) {
	m := newPlaying(t)
	loadBody(m, grid.Up,
		grid.At(2, 2), grid.At(3, 2), grid.At(3, 3), grid.At(2, 3))
	if m.pending != grid.At(2, 2) {
		t.Fatalf("pending = %v, want tail cell (2,2)", m.pending)
	}
	over, err := m.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if over || m.state != StatePlaying {
		t.Fatalf("tail chase killed the snake: over=%v state=%v", over, m.state)
	}
	if m.body.Head() != grid.At(2, 2) || m.body.Len() != 4 {
		t.Fatalf("head %v len %d after tail chase, want (2,2) and 4", m.body.Head(), m.body.Len())
	}
	checkConsistent(t, m)
}

func TestAppleConsumption_GrowsByOne(t *testing.T) {
	m := newPlaying(t)
	relocateApple(m, m.pending) // apple where the head will land

	if !m.CheckApple() {
		t.Fatalf("apple under provisional head not consumed")
	}
	if m.Score() != 3 {
		t.Fatalf("score = %d after apple, want 3", m.Score())
	}
	if m.hasApple {
		t.Fatalf("apple still present after consumption")
	}

	lenBefore := m.body.Len()
	if over, err := m.Tick(); over || err != nil {
		t.Fatalf("growing tick: over=%v err=%v", over, err)
	}
	if m.body.Len() != lenBefore+1 {
		t.Fatalf("body len = %d, want %d", m.body.Len(), lenBefore+1)
	}
	if m.body.Tail() != grid.At(4, 4) {
		t.Fatalf("tail advanced on a growing tick")
	}
	if !m.hasApple {
		t.Fatalf("no replacement apple placed")
	}
	if m.body.Contains(m.apple) || m.apple == m.pending {
		t.Fatalf("replacement apple %v placed on the snake", m.apple)
	}
	checkConsistent(t, m)
}

func TestCheckApple_BoardFilledEndsGame(t *testing.T) {
	m := newPlaying(t)
	relocateApple(m, m.pending)
	m.score = grid.Cells - 1
	if !m.CheckApple() {
		t.Fatalf("apple not consumed")
	}
	if m.state != StateGameOverTransition {
		t.Fatalf("state = %v at max score, want game-over transition", m.state)
	}
}

// A deterministic random walk must preserve the grid/model invariant
// after every operation, until the run ends in a game over.
func TestRandomWalk_GridStaysConsistent(t *testing.T) {
	m := newPlaying(t)
	r := rand.New(rand.NewSource(7))
	dirs := []grid.Dir{grid.Up, grid.Right, grid.Down, grid.Left}

	for i := 0; i < 500 && m.State() == StatePlaying; i++ {
		if r.Intn(3) == 0 {
			m.SubmitDirection(dirs[r.Intn(len(dirs))])
			checkConsistent(t, m)
		}
		m.CheckApple()
		checkConsistent(t, m)
		if m.State() != StatePlaying {
			break
		}
		if _, err := m.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if m.State() == StatePlaying {
			checkConsistent(t, m)
			if m.body.Len() > grid.Cells {
				t.Fatalf("body len %d exceeds cell count", m.body.Len())
			}
		}
	}
}

func TestMenuTransitions(t *testing.T) {
	m := newPlaying(t)
	loadBody(m, grid.Right,
		grid.At(2, 2), grid.At(3, 2), grid.At(3, 3), grid.At(2, 3))
	m.Tick()
	m.Update()

	m.BeginNameEntry()
	if m.State() != StateEnteringHiscore {
		t.Fatalf("state = %v, want entering-hiscore", m.State())
	}
	m.ShowHiscores()
	if m.State() != StateViewingHiscore {
		t.Fatalf("state = %v, want viewing-hiscore", m.State())
	}
	m.ToMenu()
	if m.State() != StateMenu {
		t.Fatalf("state = %v, want menu", m.State())
	}

	// Re-entering Setup fully resets the game data.
	m.NewGame()
	m.Update()
	if m.State() != StatePlaying || m.Score() != 2 || m.body.Len() != 1 {
		t.Fatalf("after new game: state %v score %d len %d", m.State(), m.Score(), m.body.Len())
	}
	checkConsistent(t, m)
}

func TestState_InvalidTagPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("String on an invalid state did not panic")
		}
	}()
	_ = State(250).String()
}
