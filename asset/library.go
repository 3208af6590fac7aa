package asset

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

// Spec describes one asset in the library manifest (assets.json).
type Spec struct {
	ID     string  `json:"id"`     // Unique identifier, referenced by timeline entries
	File   string  `json:"file"`   // Image file relative to the manifest directory
	Kind   string  `json:"kind"`   // "image" or "flipbook"
	Width  float64 `json:"width"`  // Natural width in pixels
	Height float64 `json:"height"` // Natural height in pixels
	Offset float64 `json:"offset"` // Vertical paint offset
	Scale  float64 `json:"scale"`  // Layout scale, defaults to 1

	// Flipbook playback, ignored for plain images
	Frames int     `json:"frames"` // Number of frames in the strip
	FPS    float64 `json:"fps"`    // Playback rate
	Loop   bool    `json:"loop"`   // Whether playback loops after the intro
	Intro  int     `json:"intro"`  // Leading frames played only once
}

// Library loads the asset manifest and mints per-entry asset instances.
// Decoded bitmaps are shared between instances; Meta and playback state
// are not.
type Library struct {
	specs  map[string]Spec
	sheets map[string]*ebiten.Image
	log    *logrus.Entry
}

// NewLibrary creates an empty asset library.
func NewLibrary() *Library {
	return &Library{
		specs:  make(map[string]Spec),
		sheets: make(map[string]*ebiten.Image),
		log:    logrus.WithField("component", "assets"),
	}
}

// LoadDirectory reads assets.json from dirPath and decodes every image it
// names. Specs that fail validation abort the whole load.
func (l *Library) LoadDirectory(dirPath string) error {
	data, err := os.ReadFile(filepath.Join(dirPath, "assets.json"))
	if err != nil {
		return fmt.Errorf("failed to read asset manifest: %w", err)
	}

	specs, err := parseManifest(data)
	if err != nil {
		return fmt.Errorf("failed to parse asset manifest: %w", err)
	}

	for _, spec := range specs {
		sheet, err := loadImage(filepath.Join(dirPath, spec.File))
		if err != nil {
			return fmt.Errorf("failed to load asset %s: %w", spec.ID, err)
		}
		l.Register(spec, sheet)
	}

	l.log.WithField("count", len(l.specs)).Info("asset manifest loaded")
	return nil
}

// Register adds a spec and its decoded sheet to the library. The sheet may
// be nil, in which case instances carry layout metadata only.
func (l *Library) Register(spec Spec, sheet *ebiten.Image) {
	l.specs[spec.ID] = spec
	l.sheets[spec.ID] = sheet
}

// Has reports whether the library carries a spec for id.
func (l *Library) Has(id string) bool {
	_, ok := l.specs[id]
	return ok
}

// Instantiate mints a fresh asset for id. Each call returns an instance
// with its own Meta and playback clock, so concurrent bindings do not
// fight over layout state.
func (l *Library) Instantiate(id string) (Asset, error) {
	spec, ok := l.specs[id]
	if !ok {
		return nil, fmt.Errorf("unknown asset %q", id)
	}

	meta := Meta{
		ID:      spec.ID,
		Width:   spec.Width,
		Height:  spec.Height,
		Y:       spec.Offset,
		Opacity: 1,
		Scale:   spec.Scale,
	}

	switch spec.Kind {
	case "flipbook":
		return NewFlipbook(meta, l.sheets[id], spec.Frames, spec.FPS, spec.Loop, spec.Intro), nil
	default:
		return NewImage(meta, l.sheets[id]), nil
	}
}

// parseManifest decodes and validates the assets.json payload.
func parseManifest(data []byte) ([]Spec, error) {
	var specs []Spec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i := range specs {
		spec := &specs[i]
		if spec.ID == "" {
			return nil, fmt.Errorf("asset spec %d missing id", i)
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("duplicate asset id %q", spec.ID)
		}
		seen[spec.ID] = true

		if spec.Width <= 0 || spec.Height <= 0 {
			return nil, fmt.Errorf("asset %q has non-positive size", spec.ID)
		}
		if spec.Scale == 0 {
			spec.Scale = 1
		}

		switch spec.Kind {
		case "image":
		case "flipbook":
			if spec.Frames <= 0 {
				return nil, fmt.Errorf("flipbook %q needs a positive frame count", spec.ID)
			}
			if spec.FPS <= 0 {
				return nil, fmt.Errorf("flipbook %q needs a positive fps", spec.ID)
			}
			if spec.Intro < 0 || spec.Intro >= spec.Frames {
				return nil, fmt.Errorf("flipbook %q intro must stay below the frame count", spec.ID)
			}
		default:
			return nil, fmt.Errorf("asset %q has unknown kind %q", spec.ID, spec.Kind)
		}
	}

	return specs, nil
}

// loadImage decodes an image file into an ebiten texture.
func loadImage(filename string) (*ebiten.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}

	return ebiten.NewImageFromImage(img), nil
}
