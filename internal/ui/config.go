package ui

// Config contains window/input/audio related settings.
type Config struct {
	Title       string // window title
	Scale       int    // integer upscaling factor
	Mute        bool   // disable sound effects
	HiscorePath string // hi-score table location
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "ledsnake"
	}
	if c.Scale <= 0 {
		c.Scale = 4
	}
	if c.HiscorePath == "" {
		c.HiscorePath = "hiscores.gob"
	}
}
