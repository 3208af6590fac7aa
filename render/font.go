package render

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

// GlyphSheet is a bitmap font: a 16x16 grid of glyphs indexed by
// codepoint, drawn scaled through a Canvas. Codepoints outside the sheet
// fall back to '?'.
type GlyphSheet struct {
	image  *ebiten.Image
	glyphW int
	glyphH int
}

// LoadGlyphSheet loads a font sheet from an image file.
func LoadGlyphSheet(filename string) (*GlyphSheet, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}

	sheet := NewGlyphSheet(ebiten.NewImageFromImage(img))
	if sheet.glyphW == 0 || sheet.glyphH == 0 {
		return nil, fmt.Errorf("glyph sheet %s is smaller than 16x16 glyphs", filename)
	}
	return sheet, nil
}

// NewGlyphSheet wraps an already decoded sheet image.
func NewGlyphSheet(img *ebiten.Image) *GlyphSheet {
	bounds := img.Bounds()
	return &GlyphSheet{
		image:  img,
		glyphW: bounds.Dx() / 16,
		glyphH: bounds.Dy() / 16,
	}
}

// Advance returns the horizontal step per glyph at the given text size.
func (g *GlyphSheet) Advance(size float64) float64 {
	if g.glyphH == 0 {
		return 0
	}
	return float64(g.glyphW) * size / float64(g.glyphH)
}

// Measure returns the painted width of text at the given size.
func (g *GlyphSheet) Measure(text string, size float64) float64 {
	return float64(len([]rune(text))) * g.Advance(size)
}

// DrawString paints text with its top-left corner at (x, y). size is the
// glyph height in pixels.
func (g *GlyphSheet) DrawString(c Canvas, text string, x, y, size float64, col color.Color, opacity float64) {
	advance := g.Advance(size)
	for i, r := range []rune(text) {
		c.DrawImage(g.glyph(r), Rect{
			X: x + float64(i)*advance,
			Y: y,
			W: advance,
			H: size,
		}, DrawOptions{
			Opacity: opacity,
			Filter:  FilterLow,
			Tint:    col,
		})
	}
}

// glyph returns the sub-image for a codepoint.
func (g *GlyphSheet) glyph(r rune) *ebiten.Image {
	if r < 0 || r > 255 {
		r = '?'
	}
	sx := int(r) % 16 * g.glyphW
	sy := int(r) / 16 * g.glyphH
	rect := image.Rect(sx, sy, sx+g.glyphW, sy+g.glyphH)
	return g.image.SubImage(rect).(*ebiten.Image)
}
