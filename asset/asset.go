package asset

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Meta carries the layout state shared by every asset variant. Width and
// Height are the natural size in pixels; Y is the vertical paint offset.
// The timeline layout pass rewrites Y, Scale and Opacity every frame, so a
// Meta belongs to exactly one entry binding.
type Meta struct {
	ID     string
	Width  float64
	Height float64

	Y        float64
	Opacity  float64
	Scale    float64
	Velocity float64
}

// Asset is the closed set of drawable variants a timeline entry can carry.
// Paint and advance sites branch over the concrete types; adding a variant
// means revisiting every switch, which is intended.
type Asset interface {
	Meta() *Meta
	isAsset()
}

// Image is a static bitmap asset.
type Image struct {
	meta   Meta
	Bitmap *ebiten.Image
}

// NewImage creates an image asset around a decoded bitmap.
func NewImage(meta Meta, bitmap *ebiten.Image) *Image {
	return &Image{meta: meta, Bitmap: bitmap}
}

func (a *Image) Meta() *Meta { return &a.meta }
func (a *Image) isAsset()    {}

// Flipbook is an animated actor: a horizontal strip of frames played back
// at a fixed rate. The first IntroFrames frames play once, the remainder
// loops while the asset stays on screen.
type Flipbook struct {
	meta        Meta
	Sheet       *ebiten.Image
	FrameCount  int
	FPS         float64
	Loop        bool
	IntroFrames int

	time float64
}

// NewFlipbook creates a flipbook asset around a decoded frame strip.
func NewFlipbook(meta Meta, sheet *ebiten.Image, frameCount int, fps float64, loop bool, introFrames int) *Flipbook {
	return &Flipbook{
		meta:        meta,
		Sheet:       sheet,
		FrameCount:  frameCount,
		FPS:         fps,
		Loop:        loop,
		IntroFrames: introFrames,
	}
}

func (a *Flipbook) Meta() *Meta { return &a.meta }
func (a *Flipbook) isAsset()    {}

// Advance moves the playback clock forward by elapsed seconds.
func (a *Flipbook) Advance(elapsed float64) {
	a.time += elapsed
	if !a.Loop && a.FPS > 0 && a.FrameCount > 0 {
		end := float64(a.FrameCount) / a.FPS
		if a.time > end {
			a.time = end
		}
	}
}

// Rewind restarts playback from the first frame, intro included.
func (a *Flipbook) Rewind() {
	a.time = 0
}

// Position returns the playback clock in seconds.
func (a *Flipbook) Position() float64 {
	return a.time
}

// FrameIndex returns the strip index for the current playback position.
func (a *Flipbook) FrameIndex() int {
	if a.FrameCount <= 0 || a.FPS <= 0 {
		return 0
	}
	frame := int(a.time * a.FPS)
	if frame < a.FrameCount {
		return frame
	}
	if !a.Loop {
		return a.FrameCount - 1
	}
	loopFrames := a.FrameCount - a.IntroFrames
	if loopFrames <= 0 {
		return a.FrameCount - 1
	}
	return a.IntroFrames + (frame-a.IntroFrames)%loopFrames
}

// Frame returns the sub-image for the current playback position, or nil
// when no sheet is bound.
func (a *Flipbook) Frame() *ebiten.Image {
	if a.Sheet == nil || a.FrameCount <= 0 {
		return nil
	}
	bounds := a.Sheet.Bounds()
	frameWidth := bounds.Dx() / a.FrameCount
	if frameWidth <= 0 {
		return nil
	}
	x := bounds.Min.X + a.FrameIndex()*frameWidth
	rect := image.Rect(x, bounds.Min.Y, x+frameWidth, bounds.Max.Y)
	return a.Sheet.SubImage(rect).(*ebiten.Image)
}
