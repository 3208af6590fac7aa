package main

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/config"
	"github.com/dirname/HistoryOfEverything/render"
	"github.com/dirname/HistoryOfEverything/timeline"
)

// AssetPreview implements ebiten.Game. It plays a single artwork from the
// library through the regular display node, for checking sheets and frame
// timing without starting the whole app.
type AssetPreview struct {
	entry  *timeline.Entry
	widget *render.EntryWidget
	pump   *render.FramePump
	start  time.Time

	screenWidth  int
	screenHeight int
}

// NewAssetPreview loads the artwork library and binds the artwork with
// the given id.
func NewAssetPreview(cfg config.Config, id string) (*AssetPreview, error) {
	lib := asset.NewLibrary()
	if err := lib.LoadDirectory(cfg.Data.Assets); err != nil {
		return nil, err
	}
	a, err := lib.Instantiate(id)
	if err != nil {
		return nil, err
	}

	entry := &timeline.Entry{Kind: timeline.Incident, ID: id, Label: id, Asset: a}

	pump := render.NewFramePump()
	widget := render.NewEntryWidget(pump)
	widget.Mount(render.EntryConfig{Active: true, Entry: entry})

	// Size the window around the artwork, with room for the overlay text.
	m := a.Meta()
	w := int(m.Width) + 160
	h := int(m.Y+m.Height) + 120
	if w < 480 {
		w = 480
	}
	if h < 360 {
		h = 360
	}

	return &AssetPreview{
		entry:        entry,
		widget:       widget,
		pump:         pump,
		start:        time.Now(),
		screenWidth:  w,
		screenHeight: h,
	}, nil
}

// Update advances playback and handles the replay and quit keys.
func (p *AssetPreview) Update() error {
	p.pump.Tick(time.Since(p.start))

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		// Rebinding replays the intro from the first frame.
		p.widget.Unmount()
		p.widget.Mount(render.EntryConfig{Active: true, Entry: p.entry})
	}
	return nil
}

// Draw paints the artwork the way the timeline would, plus an overlay
// with playback details.
func (p *AssetPreview) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 30, 255})

	node := p.widget.Node()
	node.Layout(render.Size{W: float64(p.screenWidth), H: float64(p.screenHeight)})
	node.Paint(render.NewEbitenCanvas(screen), render.Point{})

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Artwork: %s", p.entry.ID), 10, 10)
	if fb, ok := p.entry.Asset.(*asset.Flipbook); ok {
		ebitenutil.DebugPrintAt(screen,
			fmt.Sprintf("Frame %d/%d at %.2fs", fb.FrameIndex()+1, fb.FrameCount, fb.Position()), 10, 30)
	}
	ebitenutil.DebugPrintAt(screen, "SPACE: replay | ESC: quit", 10, p.screenHeight-20)
}

// Layout implements ebiten.Game's Layout.
func (p *AssetPreview) Layout(outsideWidth, outsideHeight int) (int, int) {
	return p.screenWidth, p.screenHeight
}
