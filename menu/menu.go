package menu

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
)

// Item is one tappable row in a menu section. Tapping it retargets the
// timeline viewport to the year range.
type Item struct {
	Label string
	Start float64
	End   float64
}

// Section is one card of the main menu: a labelled group of items over an
// animated artwork backdrop.
type Section struct {
	Label      string
	Background color.RGBA
	Gradient   color.RGBA
	Asset      string // timeline entry id whose artwork backs the card
	Items      []Item
}

type itemSpec struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type sectionSpec struct {
	Label      string     `json:"label"`
	Background []int      `json:"background"` // Card colour as [r, g, b]
	Gradient   []int      `json:"gradient"`   // Bottom fade colour as [r, g, b]
	Asset      string     `json:"asset"`
	Items      []itemSpec `json:"items"`
}

// Load reads the menu definition from path.
func Load(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu data: %w", err)
	}
	sections, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu from %s: %w", path, err)
	}
	return sections, nil
}

// Parse builds the menu sections from raw JSON. Split from Load so tests
// can feed fixtures directly.
func Parse(data []byte) ([]Section, error) {
	var specs []sectionSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse menu data: %w", err)
	}

	sections := make([]Section, 0, len(specs))
	for i, spec := range specs {
		if spec.Label == "" {
			return nil, fmt.Errorf("menu section %d missing label", i)
		}

		s := Section{
			Label:      spec.Label,
			Background: color.RGBA{R: 32, G: 36, B: 44, A: 255},
			Asset:      spec.Asset,
		}
		if c, ok := parseColor(spec.Background); ok {
			s.Background = c
		}
		s.Gradient = s.Background
		if c, ok := parseColor(spec.Gradient); ok {
			s.Gradient = c
		}

		for _, item := range spec.Items {
			if item.Label == "" {
				return nil, fmt.Errorf("menu section %q has an unlabelled item", spec.Label)
			}
			if item.End < item.Start {
				return nil, fmt.Errorf("menu item %q ends before it starts", item.Label)
			}
			s.Items = append(s.Items, Item{
				Label: item.Label,
				Start: item.Start,
				End:   item.End,
			})
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// parseColor reads an [r, g, b] triple. Anything else reports no colour.
func parseColor(rgb []int) (color.RGBA, bool) {
	if len(rgb) != 3 {
		return color.RGBA{}, false
	}
	clamp := func(v int) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
	return color.RGBA{R: clamp(rgb[0]), G: clamp(rgb[1]), B: clamp(rgb[2]), A: 255}, true
}
