package render

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Point is a position in pixels.
type Point struct {
	X, Y float64
}

// Size is a width and height in pixels.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// FilterQuality selects how bitmaps are sampled when scaled.
type FilterQuality int

const (
	FilterLow FilterQuality = iota
	FilterHigh
)

func (q FilterQuality) ebiten() ebiten.Filter {
	if q == FilterHigh {
		return ebiten.FilterLinear
	}
	return ebiten.FilterNearest
}

// DrawOptions modify a single canvas operation.
type DrawOptions struct {
	Opacity   float64
	Filter    FilterQuality
	AntiAlias bool
	Tint      color.Color
}

// Canvas is the paint surface handed to render nodes. The production
// implementation wraps an ebiten image; tests record operations instead.
type Canvas interface {
	DrawImage(img *ebiten.Image, dst Rect, opts DrawOptions)
	FillRect(r Rect, c color.Color)
	FillRoundedRect(r Rect, radius float64, c color.Color)
	DrawVerticalGradient(r Rect, top, bottom color.Color)
}

// EbitenCanvas paints onto an ebiten image.
type EbitenCanvas struct {
	dst *ebiten.Image
}

// NewEbitenCanvas wraps dst as a Canvas.
func NewEbitenCanvas(dst *ebiten.Image) *EbitenCanvas {
	return &EbitenCanvas{dst: dst}
}

// DrawImage scales img into dst. A nil or empty image draws nothing.
func (c *EbitenCanvas) DrawImage(img *ebiten.Image, dst Rect, opts DrawOptions) {
	if img == nil || dst.W <= 0 || dst.H <= 0 {
		return
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(dst.W/float64(bounds.Dx()), dst.H/float64(bounds.Dy()))
	op.GeoM.Translate(dst.X, dst.Y)
	op.Filter = opts.Filter.ebiten()
	if opts.Tint != nil {
		op.ColorScale.ScaleWithColor(opts.Tint)
	}
	op.ColorScale.ScaleAlpha(float32(opts.Opacity))
	c.dst.DrawImage(img, op)
}

// FillRect fills a rectangle with a solid colour.
func (c *EbitenCanvas) FillRect(r Rect, col color.Color) {
	vector.DrawFilledRect(c.dst,
		float32(r.X), float32(r.Y), float32(r.W), float32(r.H), col, false)
}

// FillRoundedRect fills a rectangle with rounded corners.
func (c *EbitenCanvas) FillRoundedRect(r Rect, radius float64, col color.Color) {
	if radius <= 0 || r.W < radius*2 || r.H < radius*2 {
		c.FillRect(r, col)
		return
	}

	x, y := float32(r.X), float32(r.Y)
	w, h := float32(r.W), float32(r.H)
	rad := float32(radius)

	var p vector.Path
	p.MoveTo(x+rad, y)
	p.LineTo(x+w-rad, y)
	p.ArcTo(x+w, y, x+w, y+rad, rad)
	p.LineTo(x+w, y+h-rad)
	p.ArcTo(x+w, y+h, x+w-rad, y+h, rad)
	p.LineTo(x+rad, y+h)
	p.ArcTo(x, y+h, x, y+h-rad, rad)
	p.LineTo(x, y+rad)
	p.ArcTo(x, y, x+rad, y, rad)
	p.Close()

	vs, is := p.AppendVerticesAndIndicesForFilling(nil, nil)
	cr, cg, cb, ca := colorScale(col)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = cr
		vs[i].ColorG = cg
		vs[i].ColorB = cb
		vs[i].ColorA = ca
	}
	c.dst.DrawTriangles(vs, is, whiteSub(), &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
}

// DrawVerticalGradient fills a rectangle blending from top to bottom.
func (c *EbitenCanvas) DrawVerticalGradient(r Rect, top, bottom color.Color) {
	tr, tg, tb, ta := colorScale(top)
	br, bg, bb, ba := colorScale(bottom)

	x0, y0 := float32(r.X), float32(r.Y)
	x1, y1 := float32(r.X+r.W), float32(r.Y+r.H)
	vs := []ebiten.Vertex{
		{DstX: x0, DstY: y0, SrcX: 1, SrcY: 1, ColorR: tr, ColorG: tg, ColorB: tb, ColorA: ta},
		{DstX: x1, DstY: y0, SrcX: 1, SrcY: 1, ColorR: tr, ColorG: tg, ColorB: tb, ColorA: ta},
		{DstX: x0, DstY: y1, SrcX: 1, SrcY: 1, ColorR: br, ColorG: bg, ColorB: bb, ColorA: ba},
		{DstX: x1, DstY: y1, SrcX: 1, SrcY: 1, ColorR: br, ColorG: bg, ColorB: bb, ColorA: ba},
	}
	is := []uint16{0, 1, 2, 1, 3, 2}
	c.dst.DrawTriangles(vs, is, whiteSub(), &ebiten.DrawTrianglesOptions{})
}

// colorScale converts a colour to the straight-alpha 0..1 channels a
// vertex wants. RGBA() reports premultiplied values, so divide the alpha
// back out.
func colorScale(col color.Color) (r, g, b, a float32) {
	cr, cg, cb, ca := col.RGBA()
	if ca == 0 {
		return 0, 0, 0, 0
	}
	return float32(cr) / float32(ca), float32(cg) / float32(ca), float32(cb) / float32(ca),
		float32(ca) / 0xffff
}

var (
	whiteImage *ebiten.Image
	whiteOnce  sync.Once
)

// whiteSub returns the 1x1 white source used for untextured triangles.
// Built lazily so importing the package never touches the GPU.
func whiteSub() *ebiten.Image {
	whiteOnce.Do(func() {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
	})
	return whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}
