// Package input carries direction changes from the button collaborators
// to the game loop: a capacity-1 channel with blocking producers and a
// non-blocking consumer, plus per-button debounce watchers.
package input

import (
	"context"
	"time"

	"ledsnake/internal/grid"
)

// Channel is the bounded direction queue. Producers block when it is
// full until the game loop drains it, so a press is never silently
// overwritten by a later one.
type Channel struct {
	ch chan grid.Dir
}

func NewChannel() *Channel {
	return &Channel{ch: make(chan grid.Dir, 1)}
}

// Send enqueues d, blocking while an unconsumed direction is pending.
// Returns false if ctx is cancelled before the value is accepted.
func (c *Channel) Send(ctx context.Context, d grid.Dir) bool {
	select {
	case c.ch <- d:
		return true
	case <-ctx.Done():
		return false
	}
}

// Poll removes and returns the pending direction, if any. An empty
// channel is the normal "no direction change this cycle" case.
func (c *Channel) Poll() (grid.Dir, bool) {
	select {
	case d := <-c.ch:
		return d, true
	default:
		return 0, false
	}
}

// DebounceInterval is the minimum re-trigger interval for one button.
const DebounceInterval = 200 * time.Millisecond

// ButtonWatcher is one button's task: it receives raw press edges from
// the front-end, drops repeats inside the debounce window, and forwards
// the rest to the shared Channel. Each of the four buttons gets its own
// watcher goroutine.
type ButtonWatcher struct {
	dir      grid.Dir
	debounce time.Duration
	presses  chan struct{}
}

func NewButtonWatcher(dir grid.Dir, debounce time.Duration) *ButtonWatcher {
	if debounce <= 0 {
		debounce = DebounceInterval
	}
	return &ButtonWatcher{
		dir:      dir,
		debounce: debounce,
		presses:  make(chan struct{}, 1),
	}
}

// Dir returns the direction this watcher reports.
func (w *ButtonWatcher) Dir() grid.Dir { return w.dir }

// Press signals a raw press edge. It never blocks the caller; an edge
// arriving while a previous one is still unserviced is dropped, which
// is fine because both fall inside one debounce window anyway.
func (w *ButtonWatcher) Press() {
	select {
	case w.presses <- struct{}{}:
	default:
	}
}

// Run services press edges until ctx is cancelled. Accepted presses are
// forwarded with a blocking send, so a full queue back-pressures the
// watcher rather than losing the input.
func (w *ButtonWatcher) Run(ctx context.Context, out *Channel) {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.presses:
			now := time.Now()
			if !last.IsZero() && now.Sub(last) < w.debounce {
				continue
			}
			last = now
			if !out.Send(ctx, w.dir) {
				return
			}
		}
	}
}

// Watchers builds one watcher per direction.
func Watchers(debounce time.Duration) map[grid.Dir]*ButtonWatcher {
	m := make(map[grid.Dir]*ButtonWatcher, 4)
	for _, d := range []grid.Dir{grid.Up, grid.Right, grid.Down, grid.Left} {
		m[d] = NewButtonWatcher(d, debounce)
	}
	return m
}
