// Package console is the terminal front-end. It renders the occupancy
// grid with tcell and feeds arrow keys into the button watchers, so a
// machine without a GPU still gets a playable display.
package console

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"ledsnake/internal/game"
	"ledsnake/internal/grid"
	"ledsnake/internal/hiscore"
	"ledsnake/internal/input"
)

const renderPeriod = 33 * time.Millisecond

var (
	styleOn     = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorBlack)
	styleOff    = tcell.StyleDefault.Foreground(tcell.ColorDarkRed).Background(tcell.ColorBlack)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
)

type Console struct {
	screen   tcell.Screen
	m        *game.Machine
	loop     *game.Loop
	watchers map[grid.Dir]*input.ButtonWatcher
	scores   *hiscore.Table
	log      zerolog.Logger
}

func New(m *game.Machine, loop *game.Loop, watchers map[grid.Dir]*input.ButtonWatcher, scores *hiscore.Table, log zerolog.Logger) (*Console, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	s.HideCursor()
	return &Console{
		screen:   s,
		m:        m,
		loop:     loop,
		watchers: watchers,
		scores:   scores,
		log:      log,
	}, nil
}

// Run renders until the player quits or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	defer c.screen.Fini()

	quit := make(chan error, 1)
	go c.pollKeys(ctx, quit)

	render := time.NewTicker(renderPeriod)
	defer render.Stop()

	var errs *multierror.Error
	for {
		select {
		case <-ctx.Done():
			return errs.ErrorOrNil()
		case err := <-quit:
			if err != nil {
				errs = multierror.Append(errs, err)
			}
			return errs.ErrorOrNil()
		case <-render.C:
			c.draw()
		}
	}
}

func (c *Console) pollKeys(ctx context.Context, quit chan<- error) {
	keys := map[tcell.Key]grid.Dir{
		tcell.KeyUp:    grid.Up,
		tcell.KeyDown:  grid.Down,
		tcell.KeyLeft:  grid.Left,
		tcell.KeyRight: grid.Right,
	}
	for {
		if ctx.Err() != nil {
			return
		}
		ev := c.screen.PollEvent()
		if ev == nil { // screen finalized
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if d, ok := keys[ev.Key()]; ok && c.m.State() == game.StatePlaying {
				c.watchers[d].Press()
				continue
			}
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
				quit <- nil
				return
			case ev.Rune() == 'p':
				c.loop.SetPaused(!c.loop.Paused())
			case ev.Key() == tcell.KeyEnter:
				c.handleEnter()
			}
		case *tcell.EventResize:
			c.screen.Sync()
		}
	}
}

// handleEnter restarts from any of the menu-like states. The console
// keeps hi-score entry minimal: qualifying scores are stored under a
// fixed name since there is no name-entry UI in the terminal view.
func (c *Console) handleEnter() {
	switch c.m.State() {
	case game.StateMenu, game.StateViewingHiscore:
		c.loop.SetPaused(false)
		c.m.NewGame()
	case game.StateGameOverMenu:
		if c.scores.Qualifies(c.m.Score()) {
			c.scores.Insert("---", c.m.Score())
			c.log.Info().Int("score", c.m.Score()).Msg("hi-score recorded")
		}
		c.m.ShowHiscores()
	}
}

func (c *Console) draw() {
	c.screen.Clear()

	rows := c.m.Rows()
	for y := 0; y < grid.Size; y++ {
		for x := 0; x < grid.Size; x++ {
			r, style := tcell.RuneBullet, styleOff
			if rows[y]&(1<<uint(x)) != 0 {
				r, style = tcell.RuneBlock, styleOn
			}
			// Double width so cells come out roughly square.
			c.screen.SetContent(x*2, y, r, nil, style)
			c.screen.SetContent(x*2+1, y, ' ', nil, style)
		}
	}

	status := fmt.Sprintf("score %d", c.m.Score())
	switch c.m.State() {
	case game.StatePlaying:
		if c.loop.Paused() {
			status += "  paused"
		}
	case game.StateMenu:
		status += "  enter: start  q: quit"
	case game.StateGameOverMenu:
		status += "  GAME OVER  enter: scores"
	case game.StateViewingHiscore:
		status = "hi-scores  enter: new game"
	}
	c.setText(0, grid.Size+1, status, styleStatus)

	if c.m.State() == game.StateViewingHiscore {
		for i, e := range c.scores.Entries {
			line := fmt.Sprintf("%d. ---", i+1)
			if e.Score > 0 {
				line = fmt.Sprintf("%d. %-3s %3d", i+1, e.Name, e.Score)
			}
			c.setText(0, grid.Size+3+i, line, styleStatus)
		}
	}

	c.screen.Show()
}

func (c *Console) setText(x, y int, text string, style tcell.Style) {
	for i, r := range text {
		c.screen.SetContent(x+i, y, r, nil, style)
	}
}
