package render

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// recordingCanvas captures canvas operations so tests can assert on what
// a node painted without a GPU.
type recordingCanvas struct {
	images    []imageOp
	rects     []rectOp
	rounded   []roundedOp
	gradients []gradientOp
}

type imageOp struct {
	img  *ebiten.Image
	dst  Rect
	opts DrawOptions
}

type rectOp struct {
	rect Rect
	col  color.Color
}

type roundedOp struct {
	rect   Rect
	radius float64
	col    color.Color
}

type gradientOp struct {
	rect        Rect
	top, bottom color.Color
}

func (c *recordingCanvas) DrawImage(img *ebiten.Image, dst Rect, opts DrawOptions) {
	c.images = append(c.images, imageOp{img: img, dst: dst, opts: opts})
}

func (c *recordingCanvas) FillRect(r Rect, col color.Color) {
	c.rects = append(c.rects, rectOp{rect: r, col: col})
}

func (c *recordingCanvas) FillRoundedRect(r Rect, radius float64, col color.Color) {
	c.rounded = append(c.rounded, roundedOp{rect: r, radius: radius, col: col})
}

func (c *recordingCanvas) DrawVerticalGradient(r Rect, top, bottom color.Color) {
	c.gradients = append(c.gradients, gradientOp{rect: r, top: top, bottom: bottom})
}

func (c *recordingCanvas) total() int {
	return len(c.images) + len(c.rects) + len(c.rounded) + len(c.gradients)
}

// manualScheduler drives frame callbacks by hand.
type manualScheduler struct {
	pending []FrameCallback
}

func (s *manualScheduler) ScheduleFrame(cb FrameCallback) {
	s.pending = append(s.pending, cb)
}

// fire runs the pending batch at the given clock reading. Callbacks
// registered while the batch runs wait for the next fire.
func (s *manualScheduler) fire(now time.Duration) {
	batch := s.pending
	s.pending = nil
	for _, cb := range batch {
		cb(now)
	}
}
