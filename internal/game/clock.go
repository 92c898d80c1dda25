package game

import "time"

// MovementClock turns a fixed-period ticker into a one-slot readiness
// flag. Ticks that arrive while one is already pending collapse into
// it, so the loop advances the snake at most one cell per iteration no
// matter how far it falls behind.
type MovementClock struct {
	ready chan struct{}
	stop  chan struct{}
}

// NewMovementClock starts the signaler task with the given period.
func NewMovementClock(period time.Duration) *MovementClock {
	c := &MovementClock{
		ready: make(chan struct{}, 1),
		stop:  make(chan struct{}),
	}
	go c.run(period)
	return c
}

func (c *MovementClock) run(period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			select {
			case c.ready <- struct{}{}:
			default: // a tick is already pending; collapse
			}
		}
	}
}

// Pending consumes and reports the readiness flag without blocking.
func (c *MovementClock) Pending() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// Drain discards any pending tick. Used while the game is paused so the
// snake does not jump the moment play resumes.
func (c *MovementClock) Drain() {
	select {
	case <-c.ready:
	default:
	}
}

// Stop ends the signaler task.
func (c *MovementClock) Stop() {
	close(c.stop)
}
