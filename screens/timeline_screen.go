package screens

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/dirname/HistoryOfEverything/events"
	"github.com/dirname/HistoryOfEverything/favorites"
	"github.com/dirname/HistoryOfEverything/render"
	"github.com/dirname/HistoryOfEverything/timeline"
)

// Wheel zoom strength per scroll tick.
const zoomStep = 0.1

// TimelineScreen shows the scrollable timeline. Dragging pans, flicking
// keeps it drifting, the wheel zooms around the cursor and tapping a
// bubble opens the entry.
type TimelineScreen struct {
	*BaseScreen
	tl       *timeline.Timeline
	node     *render.TimelineNode
	glyphs   *render.GlyphSheet
	favs     *favorites.Store
	bus      *events.Bus
	pump     *render.FramePump
	articles string
	log      *logrus.Entry

	dragging  bool
	lastDragY float64
	dragVel   float64

	eraFlash    float64
	unsubscribe func()
}

// NewTimelineScreen opens the timeline and eases the viewport toward the
// given year range.
func NewTimelineScreen(
	tl *timeline.Timeline,
	glyphs *render.GlyphSheet,
	favs *favorites.Store,
	bus *events.Bus,
	pump *render.FramePump,
	articles string,
	start, end float64,
) *TimelineScreen {
	s := &TimelineScreen{
		BaseScreen: NewBaseScreen(),
		tl:         tl,
		node:       render.NewTimelineNode(glyphs),
		glyphs:     glyphs,
		favs:       favs,
		bus:        bus,
		pump:       pump,
		articles:   articles,
		log:        logrus.WithField("component", "timeline-screen"),
	}
	tl.SetViewport(start, end, 0, true)

	if bus != nil {
		s.unsubscribe = bus.Subscribe(timeline.EraChangedType, func(events.Event) {
			s.eraFlash = 1
		})
	}
	return s
}

// Close drops the era subscription.
func (s *TimelineScreen) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Update handles input for the timeline screen
func (s *TimelineScreen) Update() error {
	dt := 1.0 / 60.0

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrCloseScreen
	}

	if err := s.handlePointer(dt); err != nil {
		return err
	}
	s.handleWheel()

	s.tl.Advance(dt, true)
	s.eraFlash = math.Max(0, s.eraFlash-dt)
	return nil
}

// handlePointer turns presses into taps, drags and flings.
func (s *TimelineScreen) handlePointer(dt float64) error {
	x, y := CursorPoint()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if e := s.node.EntryAt(render.Point{X: x, Y: y}, s.tl); e != nil {
			return s.openEntry(e)
		}
		s.dragging = true
		s.lastDragY = y
		s.dragVel = 0
		s.tl.SetInteracting(true)
		return nil
	}

	if s.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		dy := y - s.lastDragY
		s.lastDragY = y
		span := s.tl.RenderEnd() - s.tl.RenderStart()
		height := s.Height()
		if height > 0 && span > 0 {
			perPixel := span / height
			s.tl.SetViewport(
				s.tl.RenderStart()-dy*perPixel,
				s.tl.RenderEnd()-dy*perPixel,
				0, false,
			)
			s.dragVel = s.dragVel*0.7 + (dy/dt)*0.3
		}
		return nil
	}

	if s.dragging && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		s.dragging = false
		s.tl.SetInteracting(false)
		// Flicking keeps the viewport drifting the way the drag moved.
		s.tl.SetViewport(s.tl.RenderStart(), s.tl.RenderEnd(), -s.dragVel, true)
	}
	return nil
}

// handleWheel zooms the viewport around the year under the cursor.
func (s *TimelineScreen) handleWheel() {
	_, wy := ebiten.Wheel()
	if wy == 0 {
		return
	}
	height := s.Height()
	span := s.tl.RenderEnd() - s.tl.RenderStart()
	if height <= 0 || span <= 0 {
		return
	}

	_, cy := CursorPoint()
	anchor := s.tl.RenderStart() + (cy/height)*span
	factor := 1 - wy*zoomStep
	if factor < 0.5 {
		factor = 0.5
	} else if factor > 2 {
		factor = 2
	}
	s.tl.SetViewport(
		anchor-(anchor-s.tl.RenderStart())*factor,
		anchor+(s.tl.RenderEnd()-anchor)*factor,
		0, true,
	)
}

// openEntry zooms to a tapped era, or pushes the article page for an
// incident.
func (s *TimelineScreen) openEntry(e *timeline.Entry) error {
	if e.Kind == timeline.Era {
		start, end := s.tl.ViewportFor(e)
		s.tl.SetViewport(start, end, 0, true)
		s.log.WithField("era", e.ID).Debug("framing era")
		return nil
	}
	s.log.WithField("entry", e.ID).Info("opening article")
	return &Push{Next: NewArticleScreen(e, s.articles, s.favs, s.bus, s.pump, s.glyphs)}
}

// Draw renders the timeline screen
func (s *TimelineScreen) Draw(screen *ebiten.Image) {
	c := render.NewEbitenCanvas(screen)
	w := s.Width()
	h := s.Height()

	s.node.Layout(render.Size{W: w, H: h})
	s.node.Paint(c, render.Point{}, s.tl)

	if era := s.tl.CurrentEra(); era != nil && s.glyphs != nil {
		label := era.TrimmedLabel()
		opacity := 0.5 + 0.5*s.eraFlash
		x := (w - s.glyphs.Measure(label, 20)) / 2
		s.glyphs.DrawString(c, label, x, 14, 20, color.White, opacity)
	}

	if s.glyphs != nil {
		s.glyphs.DrawString(c, "ESC to menu", 12, h-24, 12, color.White, 0.3)
	}
}

// Layout implements the Screen interface and keeps the timeline model
// sized to the window.
func (s *TimelineScreen) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := s.BaseScreen.Layout(outsideWidth, outsideHeight)
	s.tl.SetSize(float64(w), float64(h))
	return w, h
}
