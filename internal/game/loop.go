package game

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ledsnake/internal/input"
)

// Event is a notable gameplay occurrence the front-ends may react to
// (sound, toast). Delivery is best-effort; a slow consumer misses
// events rather than stalling the loop.
type Event uint8

const (
	EventApple Event = iota
	EventGameOver
)

// Loop is the game logic task. Once per poll period it drains the
// direction queue, checks the apple overlap, and services a pending
// movement tick, strictly in that order. It is the only goroutine that
// mutates the Machine during play.
type Loop struct {
	m      *Machine
	in     *input.Channel
	clock  *MovementClock
	log    zerolog.Logger
	events chan Event
	paused atomic.Bool
}

// NewLoop wires the loop to its event sources. The movement clock is
// owned by the loop and stopped when Run returns.
func NewLoop(m *Machine, in *input.Channel, log zerolog.Logger) *Loop {
	return &Loop{
		m:      m,
		in:     in,
		clock:  NewMovementClock(m.cfg.TickPeriod),
		log:    log,
		events: make(chan Event, 8),
	}
}

// Events returns the gameplay event stream.
func (l *Loop) Events() <-chan Event { return l.events }

// SetPaused suspends tick consumption. Pending ticks are drained while
// paused so resuming does not cause an immediate jump.
func (l *Loop) SetPaused(p bool) { l.paused.Store(p) }

// Paused reports whether tick consumption is suspended.
func (l *Loop) Paused() bool { return l.paused.Load() }

// Run drives the machine until ctx is cancelled. Each iteration applies
// at most one direction event and at most one tick; accumulated clock
// signals collapse to a single pending tick.
func (l *Loop) Run(ctx context.Context) {
	defer l.clock.Stop()

	poll := time.NewTicker(l.m.cfg.PollPeriod)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
		}

		prev := l.m.State()
		l.m.Update()
		if st := l.m.State(); st != prev {
			l.log.Debug().Stringer("from", prev).Stringer("to", st).Msg("state transition")
		}

		if l.m.State() != StatePlaying {
			l.clock.Drain()
			continue
		}
		if l.paused.Load() {
			l.clock.Drain()
			continue
		}

		if d, ok := l.in.Poll(); ok {
			if l.m.SubmitDirection(d) {
				l.log.Debug().Stringer("dir", d).Msg("direction accepted")
			} else {
				l.log.Debug().Stringer("dir", d).Msg("direction rejected")
			}
		}

		if l.m.CheckApple() {
			l.log.Info().Int("score", l.m.Score()).Msg("apple eaten")
			l.emit(EventApple)
			if l.m.State() != StatePlaying {
				l.log.Info().Int("score", l.m.Score()).Msg("board filled")
				l.emit(EventGameOver)
				continue
			}
		}

		if l.clock.Pending() {
			over, err := l.m.Tick()
			if err != nil {
				// Unreachable by the win check; a hit means corrupted state.
				l.log.Fatal().Err(err).Msg("invariant violation")
			}
			if over {
				l.log.Info().Int("score", l.m.Score()).Msg("game over")
				l.emit(EventGameOver)
			}
		}
	}
}

func (l *Loop) emit(e Event) {
	select {
	case l.events <- e:
	default:
	}
}
