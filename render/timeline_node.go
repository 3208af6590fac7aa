package render

import (
	"image/color"
	"math"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/config"
	"github.com/dirname/HistoryOfEverything/timeline"
)

// Text sizes in pixels.
const (
	tickLabelSize   = 10.0
	bubbleLabelSize = 16.0
)

// TimelineNode paints the scrollable timeline: the era-tinted backdrop,
// adaptive tick marks with year labels, era bars in the left gutter, the
// event bubbles and the right-aligned artwork column. The timeline model
// does the layout; this node only turns the frame's layout into canvas
// operations.
type TimelineNode struct {
	glyphs *GlyphSheet
	size   Size
	offset Point
}

// NewTimelineNode creates a painter. glyphs may be nil, which skips all
// text.
func NewTimelineNode(glyphs *GlyphSheet) *TimelineNode {
	return &TimelineNode{glyphs: glyphs}
}

// Layout stores the size offered by the parent. The node always fills it.
func (n *TimelineNode) Layout(size Size) {
	n.size = size
}

// Paint draws one frame of the timeline.
func (n *TimelineNode) Paint(c Canvas, offset Point, tl *timeline.Timeline) {
	n.offset = offset
	if tl == nil || n.size.W <= 0 || n.size.H <= 0 {
		return
	}

	c.FillRect(Rect{X: offset.X, Y: offset.Y, W: n.size.W, H: n.size.H}, tl.BackgroundColor())
	n.paintTicks(c, offset, tl)
	n.paintEraBars(c, offset, tl)
	n.paintBubbles(c, offset, tl)
	n.paintAssets(c, offset, tl)
}

// paintTicks draws the year scale down the left gutter. Tick spacing
// snaps to round year intervals so the labelled ticks read well at any
// zoom level.
func (n *TimelineNode) paintTicks(c Canvas, offset Point, tl *timeline.Timeline) {
	span := tl.RenderEnd() - tl.RenderStart()
	if span <= 0 {
		return
	}
	scale := n.size.H / span
	step := niceStep(config.TickDistance / scale)
	if step <= 0 {
		return
	}
	labelEvery := step * math.Round(config.TextTickDistance/config.TickDistance)
	tickColor := color.RGBA{R: 255, G: 255, B: 255, A: 130}

	for year := math.Ceil(tl.RenderStart()/step) * step; year < tl.RenderEnd(); year += step {
		y := offset.Y + (year-tl.RenderStart())*scale
		width := config.SmallTickSize
		if math.Abs(math.Remainder(year, labelEvery)) < step*0.25 {
			width = config.TickSize
			if n.glyphs != nil {
				n.glyphs.DrawString(c, timeline.FormatYear(year),
					offset.X+config.TickSize+4, y-tickLabelSize/2,
					tickLabelSize, color.White, 0.6)
			}
		}
		c.FillRect(Rect{X: offset.X, Y: y, W: width, H: 1}, tickColor)
	}
}

// paintEraBars draws one accent bar per era spanning its visible extent.
func (n *TimelineNode) paintEraBars(c Canvas, offset Point, tl *timeline.Timeline) {
	for _, e := range tl.Entries() {
		if e.Kind != timeline.Era {
			continue
		}
		top := math.Max(e.Y, 0)
		bottom := math.Min(e.EndY, n.size.H)
		if bottom <= top {
			continue
		}
		c.FillRect(Rect{
			X: offset.X + config.GutterLeft - 3,
			Y: offset.Y + top,
			W: 2,
			H: bottom - top,
		}, e.Accent)
	}
}

// paintBubbles draws the labelled event bubbles.
func (n *TimelineNode) paintBubbles(c Canvas, offset Point, tl *timeline.Timeline) {
	for _, e := range tl.Entries() {
		if e.LabelOpacity <= 0.01 {
			continue
		}
		r := n.bubbleRect(e)
		r.X += offset.X
		r.Y += offset.Y
		c.FillRoundedRect(r, config.EdgeRadius, scaleRGBA(e.Accent, e.LabelOpacity*0.9))
		if n.glyphs != nil {
			n.glyphs.DrawString(c, e.TrimmedLabel(),
				r.X+config.BubblePadding, r.Y+(config.BubbleHeight-bubbleLabelSize)/2,
				bubbleLabelSize, color.White, e.LabelOpacity)
		}
	}
}

// paintAssets draws the visible artwork column along the right edge.
func (n *TimelineNode) paintAssets(c Canvas, offset Point, tl *timeline.Timeline) {
	for _, e := range tl.RenderAssets() {
		m := e.Asset.Meta()
		w := m.Width * m.Scale
		h := m.Height * m.Scale
		if w <= 0 || h <= 0 {
			continue
		}
		dst := Rect{
			X: offset.X + n.size.W - w - config.EdgePadding,
			Y: offset.Y + m.Y,
			W: w,
			H: h,
		}
		opts := DrawOptions{Opacity: m.Opacity, Filter: FilterLow, AntiAlias: true}
		switch a := e.Asset.(type) {
		case *asset.Image:
			c.DrawImage(a.Bitmap, dst, opts)
		case *asset.Flipbook:
			c.DrawImage(a.Frame(), dst, opts)
		}
	}
}

// EntryAt returns the entry whose bubble covers the node-local point, or
// nil. Later entries paint on top, so they win.
func (n *TimelineNode) EntryAt(p Point, tl *timeline.Timeline) *timeline.Entry {
	if tl == nil {
		return nil
	}
	entries := tl.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.LabelOpacity <= 0.5 {
			continue
		}
		r := n.bubbleRect(e)
		if p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H {
			return e
		}
	}
	return nil
}

// bubbleRect returns an entry's bubble in node-local coordinates.
func (n *TimelineNode) bubbleRect(e *timeline.Entry) Rect {
	label := e.TrimmedLabel()
	width := config.BubblePadding * 2
	if n.glyphs != nil {
		width += n.glyphs.Measure(label, bubbleLabelSize)
	} else {
		width += float64(len(label)) * bubbleLabelSize * 0.6
	}
	return Rect{
		X: config.GutterLeftExpanded,
		Y: e.LabelY,
		W: width,
		H: config.BubbleHeight,
	}
}

// niceStep rounds a year interval up to a 1, 2 or 5 multiple of a power
// of ten so tick labels land on round numbers.
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if mag*m >= raw {
			return mag * m
		}
	}
	return mag * 10
}

// scaleRGBA scales a colour's alpha, keeping the premultiplied channels
// consistent.
func scaleRGBA(c color.RGBA, opacity float64) color.RGBA {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	return color.RGBA{
		R: uint8(float64(c.R) * opacity),
		G: uint8(float64(c.G) * opacity),
		B: uint8(float64(c.B) * opacity),
		A: uint8(float64(c.A) * opacity),
	}
}
