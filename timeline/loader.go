package timeline

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/events"
)

// entrySpec mirrors one entry in timeline.json. Eras carry start/end and
// may nest children; incidents carry a single date.
type entrySpec struct {
	ID         string      `json:"id"`         // Unique identifier, referenced by menus and favorites
	Kind       string      `json:"kind"`       // "era" or "incident"
	Label      string      `json:"label"`      // Display name
	Start      float64     `json:"start"`      // Era start year
	End        float64     `json:"end"`        // Era end year
	Date       float64     `json:"date"`       // Incident year
	Article    string      `json:"article"`    // Article file, relative to the articles directory
	Accent     []int       `json:"accent"`     // Bubble and gutter colour as [r, g, b]
	Background []int       `json:"background"` // Backdrop keypoint colour as [r, g, b], eras only
	Asset      string      `json:"asset"`      // Artwork id in the asset library
	Children   []entrySpec `json:"children"`   // Nested entries, eras only
}

// Load reads timeline.json from path, resolves artwork through the
// library, and returns a populated timeline.
func Load(path string, lib *asset.Library, bus *events.Bus) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline data: %w", err)
	}
	t, err := Parse(data, lib, bus)
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline from %s: %w", path, err)
	}
	return t, nil
}

// Parse builds a timeline from raw JSON. Split from Load so tests can feed
// fixtures directly. lib may be nil, which leaves every entry without
// artwork.
func Parse(data []byte, lib *asset.Library, bus *events.Bus) (*Timeline, error) {
	var specs []entrySpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse timeline data: %w", err)
	}

	t := New(bus)
	b := &timelineBuilder{
		seen: make(map[string]bool),
		lib:  lib,
		log:  t.log,
	}
	roots, err := b.build(specs)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(b.backgrounds, func(i, j int) bool {
		return b.backgrounds[i].Pos < b.backgrounds[j].Pos
	})
	t.SetBackgrounds(b.backgrounds)
	t.SetEntries(roots)
	return t, nil
}

type timelineBuilder struct {
	seen        map[string]bool
	lib         *asset.Library
	backgrounds ColorTable
	log         *logrus.Entry
}

func (b *timelineBuilder) build(specs []entrySpec) ([]*Entry, error) {
	entries := make([]*Entry, 0, len(specs))
	for i := range specs {
		e, err := b.buildEntry(&specs[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (b *timelineBuilder) buildEntry(spec *entrySpec) (*Entry, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("timeline entry %q missing id", spec.Label)
	}
	if b.seen[spec.ID] {
		return nil, fmt.Errorf("duplicate timeline entry id %q", spec.ID)
	}
	b.seen[spec.ID] = true
	if spec.Label == "" {
		return nil, fmt.Errorf("timeline entry %q missing label", spec.ID)
	}

	e := &Entry{
		ID:      spec.ID,
		Label:   spec.Label,
		Article: spec.Article,
		Accent:  color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
	if c, ok := parseColor(spec.Accent); ok {
		e.Accent = c
	}

	switch spec.Kind {
	case "era":
		e.Kind = Era
		e.Start = spec.Start
		e.End = spec.End
		if e.End < e.Start {
			return nil, fmt.Errorf("era %q ends before it starts", spec.ID)
		}
		if c, ok := parseColor(spec.Background); ok {
			b.backgrounds = append(b.backgrounds, ColorPoint{
				Pos: e.Start,
				Col: fromRGBA(c).Clamped(),
			})
		}
		children, err := b.build(spec.Children)
		if err != nil {
			return nil, err
		}
		e.Children = children
	case "incident", "":
		e.Kind = Incident
		year := spec.Date
		if year == 0 && spec.Start != 0 {
			year = spec.Start
		}
		e.Start = year
		e.End = year
		if len(spec.Children) > 0 {
			return nil, fmt.Errorf("incident %q cannot nest children", spec.ID)
		}
	default:
		return nil, fmt.Errorf("timeline entry %q has unknown kind %q", spec.ID, spec.Kind)
	}

	if spec.Asset != "" && b.lib != nil {
		a, err := b.lib.Instantiate(spec.Asset)
		if err != nil {
			b.log.WithError(err).WithField("entry", spec.ID).Warn("skipping artwork for entry")
		} else {
			e.Asset = a
		}
	}
	return e, nil
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
