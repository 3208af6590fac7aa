package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Window defaults, used when no config file overrides them
const (
	DefaultWindowWidth  = 1080
	DefaultWindowHeight = 720
)

// Timeline layout and physics tuning
const (
	// Gutter reserved on the left for tick marks and era bars
	GutterLeft         = 45.0
	GutterLeftExpanded = 75.0

	// Edge fades and paddings, in pixels
	EdgePadding  = 8.0
	AssetPadding = 30.0

	// Event bubble metrics
	BubbleHeight  = 50.0
	BubblePadding = 20.0
	EdgeRadius    = 4.0

	// Tick spacing in pixels; labelled ticks use the larger distance
	TickDistance     = 16.0
	TextTickDistance = 64.0
	TickSize         = 15.0
	SmallTickSize    = 5.0

	// Viewport physics: how fast the rendered range chases its target,
	// and how quickly a flicked viewport slows down
	MoveSpeed            = 10.0
	MoveSpeedInteracting = 40.0
	Deceleration         = 3.0

	// Fraction of the node width an asset may occupy on the timeline
	AssetScreenScale = 0.3

	// Second-order spring tuning for artwork sliding into its slot
	AssetSpring  = 18.0
	AssetDamping = 7.0

	// Labels fade in once their entry is this far below the top edge
	FadeAnimationStart = 55.0

	// Padding applied around an entry when animating the viewport to it
	ViewportPaddingTop    = 120.0
	ViewportPaddingBottom = 100.0
)

// Config is the application configuration loaded from a YAML file.
type Config struct {
	Window struct {
		Width      int  `yaml:"width"`
		Height     int  `yaml:"height"`
		Fullscreen bool `yaml:"fullscreen"`
	} `yaml:"window"`
	Data struct {
		Timeline string `yaml:"timeline"`
		Menu     string `yaml:"menu"`
		Assets   string `yaml:"assets"`
		Articles string `yaml:"articles"`
	} `yaml:"data"`
	Favorites string `yaml:"favorites"`
	Log       struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var c Config
	c.Window.Width = DefaultWindowWidth
	c.Window.Height = DefaultWindowHeight
	c.Data.Timeline = "data/timeline.json"
	c.Data.Menu = "data/menu.json"
	c.Data.Assets = "data/assets"
	c.Data.Articles = "data/articles"
	c.Favorites = "data/favorites.json"
	c.Log.Level = "info"
	return c
}

// Load reads a YAML config file on top of the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	c := Default()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&c); err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return c, fmt.Errorf("config %s: window size must be positive", path)
	}
	return c, nil
}

// GetWindowSize returns the configured window size in pixels.
func (c Config) GetWindowSize() (width, height int) {
	return c.Window.Width, c.Window.Height
}
