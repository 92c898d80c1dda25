package ui

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// sounds produces the short tones the original hardware made with a
// piezo speaker. Initialization failure is non-fatal; the game just
// runs silent.
type sounds struct {
	ok bool
	sr beep.SampleRate
}

func newSounds(mute bool) *sounds {
	s := &sounds{sr: beep.SampleRate(44100)}
	if mute {
		return s
	}
	if err := speaker.Init(s.sr, s.sr.N(time.Second/10)); err == nil {
		s.ok = true
	}
	return s
}

func (s *sounds) tone(freq float64, d time.Duration) {
	if !s.ok {
		return
	}
	sine, err := generators.SineTone(s.sr, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(s.sr.N(d), sine))
}

func (s *sounds) apple()    { s.tone(880, 60*time.Millisecond) }
func (s *sounds) gameOver() { s.tone(220, 300*time.Millisecond) }
