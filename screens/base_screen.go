package screens

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// BaseScreen carries the window size every screen needs for layout. The
// paint pipeline works in float pixels, so the size is exposed as floats.
type BaseScreen struct {
	width  float64
	height float64
}

// NewBaseScreen creates a new base screen
func NewBaseScreen() *BaseScreen {
	return &BaseScreen{}
}

// Layout implements the Screen interface
func (s *BaseScreen) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.width = float64(outsideWidth)
	s.height = float64(outsideHeight)
	return outsideWidth, outsideHeight
}

// Width returns the screen width in pixels.
func (s *BaseScreen) Width() float64 { return s.width }

// Height returns the screen height in pixels.
func (s *BaseScreen) Height() float64 { return s.height }

// CursorPoint returns the mouse position in screen pixels.
func CursorPoint() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y)
}
