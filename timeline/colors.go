package timeline

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorTable stores a look-up table of colours keyed by year, blended in
// HCL space so the background shifts smoothly as the viewport travels.
type ColorTable []ColorPoint

// ColorPoint is one keypoint of a ColorTable.
type ColorPoint struct {
	Pos float64
	Col colorful.Color
}

// Sample gets the colour for a year, blending between the two keypoints
// that bracket it. Years outside the table clamp to the nearest end.
func (ct ColorTable) Sample(t float64) colorful.Color {
	if len(ct) == 0 {
		return colorful.Color{}
	}
	if t <= ct[0].Pos {
		return ct[0].Col
	}
	for i := 0; i < len(ct)-1; i++ {
		c1 := ct[i]
		c2 := ct[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			blend := (t - c1.Pos) / (c2.Pos - c1.Pos)
			return c1.Col.BlendHcl(c2.Col, blend).Clamped()
		}
	}
	return ct[len(ct)-1].Col
}

// SampleRGBA gets the colour for a year as a paintable RGBA value.
func (ct ColorTable) SampleRGBA(t float64) color.RGBA {
	r, g, b := ct.Sample(t).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// rgba converts a colorful colour to a paintable RGBA value.
func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// fromRGBA converts a paintable colour into blending space.
func fromRGBA(c color.RGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}
