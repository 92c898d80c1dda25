// Package ui is the windowed front-end: it renders the occupancy grid
// as a scaled LED matrix and turns keyboard edges into button presses.
package ui

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"ledsnake/internal/game"
	"ledsnake/internal/grid"
	"ledsnake/internal/hiscore"
	"ledsnake/internal/input"
)

const (
	cellPx = 16 // logical pixels per LED
	barPx  = 16 // status bar height
	viewW  = grid.Size * cellPx
	viewH  = grid.Size*cellPx + barPx
)

// LED colors, roughly the red matrix the game was written for.
var (
	ledOn  = [4]byte{0xFF, 0x2E, 0x1A, 0xFF}
	ledOff = [4]byte{0x24, 0x08, 0x06, 0xFF}
)

type App struct {
	cfg      Config
	m        *game.Machine
	loop     *game.Loop
	watchers map[grid.Dir]*input.ButtonWatcher
	scores   *hiscore.Table
	log      zerolog.Logger
	snd      *sounds

	tex *ebiten.Image
	pix []byte

	menuIdx    int
	nameBuf    []rune
	runeBuf    []rune
	scoreSaved bool
	toastMsg   string
	toastUntil time.Time
}

func NewApp(cfg Config, m *game.Machine, loop *game.Loop, watchers map[grid.Dir]*input.ButtonWatcher, scores *hiscore.Table, log zerolog.Logger) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(viewW*cfg.Scale, viewH*cfg.Scale)
	return &App{
		cfg:      cfg,
		m:        m,
		loop:     loop,
		watchers: watchers,
		scores:   scores,
		log:      log,
		snd:      newSounds(cfg.Mute),
		pix:      make([]byte, viewW*grid.Size*cellPx*4),
	}
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	a.drainEvents()

	switch a.m.State() {
	case game.StateMenu:
		return a.updateMenu()
	case game.StatePlaying:
		return a.updatePlaying()
	case game.StateGameOverMenu:
		return a.updateGameOver()
	case game.StateEnteringHiscore:
		return a.updateNameEntry()
	case game.StateViewingHiscore:
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			a.m.ToMenu()
		}
	}
	return nil
}

func (a *App) drainEvents() {
	for {
		select {
		case e := <-a.loop.Events():
			switch e {
			case game.EventApple:
				a.snd.apple()
			case game.EventGameOver:
				a.snd.gameOver()
				a.toast(fmt.Sprintf("Game over! Score %d", a.m.Score()))
			}
		default:
			return
		}
	}
}

func (a *App) updateMenu() error {
	const items = 3 // start, hi-scores, quit
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < items-1 {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		switch a.menuIdx {
		case 0:
			a.startGame()
		case 1:
			a.m.ShowHiscores()
		case 2:
			return ebiten.Termination
		}
	}
	return nil
}

func (a *App) updatePlaying() error {
	keys := map[ebiten.Key]grid.Dir{
		ebiten.KeyArrowUp:    grid.Up,
		ebiten.KeyArrowDown:  grid.Down,
		ebiten.KeyArrowLeft:  grid.Left,
		ebiten.KeyArrowRight: grid.Right,
	}
	for k, d := range keys {
		if inpututil.IsKeyJustPressed(k) {
			a.watchers[d].Press()
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.loop.SetPaused(!a.loop.Paused())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.startGame()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.loop.SetPaused(true)
		a.m.ToMenu()
	}
	a.scoreSaved = false
	return nil
}

func (a *App) updateGameOver() error {
	if !a.scoreSaved && a.scores.Qualifies(a.m.Score()) {
		a.nameBuf = a.nameBuf[:0]
		a.m.BeginNameEntry()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.startGame()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		a.m.ShowHiscores()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.m.ToMenu()
	}
	return nil
}

func (a *App) updateNameEntry() error {
	a.runeBuf = ebiten.AppendInputChars(a.runeBuf[:0])
	for _, r := range a.runeBuf {
		if len(a.nameBuf) < 3 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			a.nameBuf = append(a.nameBuf, r)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(a.nameBuf) > 0 {
		a.nameBuf = a.nameBuf[:len(a.nameBuf)-1]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && len(a.nameBuf) > 0 {
		name := string(a.nameBuf)
		a.scores.Insert(name, a.m.Score())
		if err := a.scores.Save(a.cfg.HiscorePath); err != nil {
			a.log.Error().Err(err).Msg("save hi-scores")
			a.toast("Save failed: " + err.Error())
		}
		a.scoreSaved = true
		a.m.ShowHiscores()
	}
	return nil
}

func (a *App) startGame() {
	a.scoreSaved = false
	a.loop.SetPaused(false)
	a.m.NewGame()
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(viewW, grid.Size*cellPx)
	}
	a.blitGrid(a.m.Rows())
	a.tex.WritePixels(a.pix)
	screen.DrawImage(a.tex, nil)

	a.drawStatus(screen)
	switch a.m.State() {
	case game.StateMenu:
		a.drawMenu(screen)
	case game.StateGameOverMenu:
		a.drawGameOver(screen)
	case game.StateEnteringHiscore:
		a.drawNameEntry(screen)
	case game.StateViewingHiscore:
		a.drawHiscores(screen)
	}
	if time.Now().Before(a.toastUntil) {
		ebitenutil.DebugPrintAt(screen, a.toastMsg, 4, viewH-barPx-14)
	}
}

// blitGrid paints each occupancy bit as a fat LED pixel with a one-pixel
// dark gap, row order matching the matrix row-write protocol.
func (a *App) blitGrid(rows [grid.Size]uint8) {
	for y := 0; y < grid.Size*cellPx; y++ {
		cy := y / cellPx
		edgeY := y%cellPx == 0 || y%cellPx == cellPx-1
		for x := 0; x < viewW; x++ {
			cx := x / cellPx
			c := ledOff
			if rows[cy]&(1<<uint(cx)) != 0 {
				c = ledOn
			}
			if edgeY || x%cellPx == 0 || x%cellPx == cellPx-1 {
				c = [4]byte{0x10, 0x04, 0x03, 0xFF}
			}
			i := (y*viewW + x) * 4
			a.pix[i], a.pix[i+1], a.pix[i+2], a.pix[i+3] = c[0], c[1], c[2], c[3]
		}
	}
}

func (a *App) drawStatus(screen *ebiten.Image) {
	status := fmt.Sprintf("Score %d", a.m.Score())
	if a.loop.Paused() && a.m.State() == game.StatePlaying {
		status += "  [paused]"
	}
	ebitenutil.DebugPrintAt(screen, status, 4, viewH-barPx+1)
}

func (a *App) drawMenu(screen *ebiten.Image) {
	items := []string{"Start game", "Hi-scores", "Quit"}
	for i, it := range items {
		cursor := "  "
		if i == a.menuIdx {
			cursor = "> "
		}
		ebitenutil.DebugPrintAt(screen, cursor+it, 16, 24+16*i)
	}
}

func (a *App) drawGameOver(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "GAME OVER", 32, 32)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Score %d", a.m.Score()), 32, 48)
	ebitenutil.DebugPrintAt(screen, "Enter: again  H: scores", 8, 72)
}

func (a *App) drawNameEntry(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "New hi-score!", 24, 32)
	ebitenutil.DebugPrintAt(screen, "Name: "+string(a.nameBuf)+"_", 24, 48)
	ebitenutil.DebugPrintAt(screen, "Enter to confirm", 24, 72)
}

func (a *App) drawHiscores(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "HI-SCORES", 32, 24)
	for i, e := range a.scores.Entries {
		line := fmt.Sprintf("%d. ---", i+1)
		if e.Score > 0 {
			line = fmt.Sprintf("%d. %-3s %3d", i+1, e.Name, e.Score)
		}
		ebitenutil.DebugPrintAt(screen, line, 32, 44+16*i)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return viewW, viewH
}
