package main

import (
	"context"
	"flag"
	"fmt"
	"hash/crc32"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ledsnake/internal/console"
	"ledsnake/internal/game"
	"ledsnake/internal/hiscore"
	"ledsnake/internal/input"
	"ledsnake/internal/ui"
)

type CLIFlags struct {
	Scale   int
	Title   string
	Console bool
	Mute    bool
	Scores  string
	Seed    uint64
	Tick    time.Duration
	Poll    time.Duration
	Debug   bool

	// headless
	Headless bool
	Ticks    int
	Expect   string // expected grid CRC32 hex (e.g., "1a2b3c4d")
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.IntVar(&f.Scale, "scale", 4, "window scale")
	flag.StringVar(&f.Title, "title", "ledsnake", "window title")
	flag.BoolVar(&f.Console, "console", false, "render in the terminal instead of a window")
	flag.BoolVar(&f.Mute, "mute", false, "disable sound effects")
	flag.StringVar(&f.Scores, "scores", "hiscores.gob", "hi-score file path")
	flag.Uint64Var(&f.Seed, "seed", 0, "RNG seed (0 = time-derived)")
	flag.DurationVar(&f.Tick, "tick", time.Second, "movement tick period")
	flag.DurationVar(&f.Poll, "poll", 100*time.Millisecond, "logic loop poll period")
	flag.BoolVar(&f.Debug, "debug", false, "verbose logging")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a display")
	flag.IntVar(&f.Ticks, "ticks", 300, "movement ticks to run in headless mode")
	flag.StringVar(&f.Expect, "expect", "", "assert final grid CRC32 (hex)")
	flag.Parse()
	return f
}

// runHeadless drives the machine synchronously at full speed: no clock,
// no input, one apple-check-then-tick per iteration. Ends early on game
// over. The final grid CRC makes soak runs assertable.
func runHeadless(m *game.Machine, ticks int, expect string, log zerolog.Logger) error {
	if ticks <= 0 {
		ticks = 1
	}
	m.Reset()

	start := time.Now()
	done := 0
	for ; done < ticks && m.State() == game.StatePlaying; done++ {
		m.CheckApple()
		if _, err := m.Tick(); err != nil {
			return fmt.Errorf("tick %d: %w", done, err)
		}
	}
	dur := time.Since(start)

	rows := m.Rows()
	crc := crc32.ChecksumIEEE(rows[:])
	log.Info().
		Int("ticks", done).
		Int("score", m.Score()).
		Stringer("state", m.State()).
		Str("grid_crc32", fmt.Sprintf("%08x", crc)).
		Dur("elapsed", dur.Truncate(time.Microsecond)).
		Msg("headless run")

	if expect != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func main() {
	f := parseFlags()

	level := zerolog.InfoLevel
	if f.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	m := game.New(game.Config{
		TickPeriod: f.Tick,
		PollPeriod: f.Poll,
		Seed:       f.Seed,
	})

	if f.Headless {
		if err := runHeadless(m, f.Ticks, f.Expect, log); err != nil {
			log.Fatal().Err(err).Msg("headless run failed")
		}
		return
	}

	scores, err := hiscore.Load(f.Scores)
	if err != nil {
		log.Warn().Err(err).Msg("load hi-scores; starting with an empty table")
		scores = &hiscore.Table{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := input.NewChannel()
	watchers := input.Watchers(input.DebounceInterval)
	for _, w := range watchers {
		go w.Run(ctx, in)
	}

	loop := game.NewLoop(m, in, log)
	go loop.Run(ctx)

	if f.Console {
		c, err := console.New(m, loop, watchers, scores, log)
		if err != nil {
			log.Fatal().Err(err).Msg("console init")
		}
		if err := c.Run(ctx); err != nil {
			log.Error().Err(err).Msg("console run")
		}
	} else {
		app := ui.NewApp(ui.Config{
			Title:       f.Title,
			Scale:       f.Scale,
			Mute:        f.Mute,
			HiscorePath: f.Scores,
		}, m, loop, watchers, scores, log)
		if err := app.Run(); err != nil {
			log.Error().Err(err).Msg("ui run")
		}
	}

	// Best-effort: the windowed UI saves on entry as well.
	if err := scores.Save(f.Scores); err != nil {
		log.Warn().Err(err).Msg("save hi-scores")
	}
}
