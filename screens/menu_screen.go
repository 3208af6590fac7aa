package screens

import (
	"image/color"
	"math"

	"github.com/fogleman/ease"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/dirname/HistoryOfEverything/events"
	"github.com/dirname/HistoryOfEverything/favorites"
	"github.com/dirname/HistoryOfEverything/menu"
	"github.com/dirname/HistoryOfEverything/render"
	"github.com/dirname/HistoryOfEverything/search"
	"github.com/dirname/HistoryOfEverything/timeline"
)

// Menu layout metrics, in pixels.
const (
	menuMargin       = 40.0
	menuTitleSize    = 30.0
	searchBoxTop     = 80.0
	searchBoxHeight  = 44.0
	searchTextSize   = 18.0
	resultRowHeight  = 40.0
	maxSearchResults = 5
	chipHeight       = 30.0
	chipTextSize     = 14.0
	sectionsTop      = 190.0
	sectionHeader    = 150.0
	sectionGap       = 18.0
	itemRowHeight    = 44.0
	expandSpeed      = 4.0
)

// MenuScreen is the landing page: a search box, the favorites strip and
// one expandable card per menu section, each backed by an animated
// vignette.
type MenuScreen struct {
	*BaseScreen
	sections []menu.Section
	tl       *timeline.Timeline
	index    *search.Index
	favs     *favorites.Store
	bus      *events.Bus
	pump     *render.FramePump
	glyphs   *render.GlyphSheet
	articles string
	log      *logrus.Entry

	vignettes []*render.MenuVignette
	expand    []float64
	open      int
	scroll    float64

	query     string
	results   []*timeline.Entry
	favorited []*timeline.Entry

	unsubscribe func()
}

// NewMenuScreen builds the landing page and mounts one vignette per
// section.
func NewMenuScreen(
	sections []menu.Section,
	tl *timeline.Timeline,
	index *search.Index,
	favs *favorites.Store,
	bus *events.Bus,
	pump *render.FramePump,
	glyphs *render.GlyphSheet,
	articles string,
) *MenuScreen {
	s := &MenuScreen{
		BaseScreen: NewBaseScreen(),
		sections:   sections,
		tl:         tl,
		index:      index,
		favs:       favs,
		bus:        bus,
		pump:       pump,
		glyphs:     glyphs,
		articles:   articles,
		log:        logrus.WithField("component", "menu-screen"),
		expand:     make([]float64, len(sections)),
		open:       -1,
	}

	for _, sec := range sections {
		v := render.NewMenuVignette(pump)
		v.Mount(render.VignetteConfig{
			Active:        true,
			Timeline:      tl,
			AssetID:       sec.Asset,
			GradientColor: sec.Gradient,
		})
		s.vignettes = append(s.vignettes, v)
	}

	if bus != nil {
		s.unsubscribe = bus.Subscribe(favorites.FavoritesChangedType, func(events.Event) {
			s.refreshFavorites()
		})
	}
	s.refreshFavorites()
	return s
}

// Suspend stops the vignettes animating while another screen covers the
// menu.
func (s *MenuScreen) Suspend() {
	s.setVignettesActive(false)
}

// Resume restarts the vignettes when the menu becomes the top screen
// again.
func (s *MenuScreen) Resume() {
	s.setVignettesActive(true)
}

// Close unmounts the vignettes and drops the bus subscription.
func (s *MenuScreen) Close() {
	for _, v := range s.vignettes {
		v.Unmount()
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *MenuScreen) setVignettesActive(active bool) {
	for i, v := range s.vignettes {
		sec := s.sections[i]
		v.Update(render.VignetteConfig{
			Active:        active,
			Timeline:      s.tl,
			AssetID:       sec.Asset,
			GradientColor: sec.Gradient,
		})
	}
}

func (s *MenuScreen) refreshFavorites() {
	s.favorited = s.favorited[:0]
	if s.favs == nil {
		return
	}
	for _, id := range s.favs.IDs() {
		if e, ok := s.tl.ByID(id); ok {
			s.favorited = append(s.favorited, e)
		}
	}
}

// Update handles input for the menu screen
func (s *MenuScreen) Update() error {
	dt := 1.0 / 60.0

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if s.query != "" {
			s.setQuery("")
			return nil
		}
		return ErrQuit
	}

	s.readQueryInput()

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && len(s.results) > 0 {
		return s.flyTo(s.results[0])
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		s.scroll -= wy * 40
		s.clampScroll()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := CursorPoint()
		if err := s.click(render.Point{X: x, Y: y}); err != nil {
			return err
		}
	}

	// Ease each card toward its open or closed height.
	for i := range s.expand {
		target := 0.0
		if i == s.open {
			target = 1
		}
		if s.expand[i] < target {
			s.expand[i] = math.Min(target, s.expand[i]+dt*expandSpeed)
		} else if s.expand[i] > target {
			s.expand[i] = math.Max(target, s.expand[i]-dt*expandSpeed)
		}
	}
	return nil
}

// readQueryInput feeds typed characters into the search box.
func (s *MenuScreen) readQueryInput() {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r >= ' ' {
			s.setQuery(s.query + string(r))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && s.query != "" {
		runes := []rune(s.query)
		s.setQuery(string(runes[:len(runes)-1]))
	}
}

func (s *MenuScreen) setQuery(query string) {
	s.query = query
	if query == "" || s.index == nil {
		s.results = nil
		return
	}
	s.results = s.index.Find(query)
	if len(s.results) > maxSearchResults {
		s.results = s.results[:maxSearchResults]
	}
}

// click resolves a press against the result rows, the favorites strip and
// the section cards, top to bottom.
func (s *MenuScreen) click(p render.Point) error {
	for i := range s.results {
		if s.resultRect(i).Contains(p) {
			return s.flyTo(s.results[i])
		}
	}
	if len(s.results) == 0 {
		for i := range s.favorited {
			if s.chipRect(i).Contains(p) {
				return s.flyTo(s.favorited[i])
			}
		}
	}

	for i := range s.sections {
		rect := s.sectionRect(i)
		header := rect
		header.H = math.Min(rect.H, sectionHeader)
		if header.Contains(p) {
			if s.open == i {
				s.open = -1
			} else {
				s.open = i
			}
			s.log.WithField("section", s.sections[i].Label).Debug("section toggled")
			return nil
		}
		if s.expand[i] > 0.95 {
			for j := range s.sections[i].Items {
				if s.itemRect(i, j).Contains(p) {
					item := s.sections[i].Items[j]
					s.log.WithField("item", item.Label).Info("opening timeline")
					return &Push{Next: NewTimelineScreen(
						s.tl, s.glyphs, s.favs, s.bus, s.pump, s.articles,
						item.Start, item.End,
					)}
				}
			}
		}
	}
	return nil
}

// flyTo opens the timeline framed around a single entry.
func (s *MenuScreen) flyTo(e *timeline.Entry) error {
	start, end := s.tl.ViewportFor(e)
	s.setQuery("")
	s.log.WithField("entry", e.ID).Info("opening timeline")
	return &Push{Next: NewTimelineScreen(
		s.tl, s.glyphs, s.favs, s.bus, s.pump, s.articles, start, end,
	)}
}

// Draw renders the menu screen
func (s *MenuScreen) Draw(screen *ebiten.Image) {
	c := render.NewEbitenCanvas(screen)
	w := s.Width()
	h := s.Height()

	c.FillRect(render.Rect{W: w, H: h}, color.RGBA{R: 22, G: 25, B: 31, A: 255})

	for i := range s.sections {
		s.drawSection(c, i)
	}

	// Header goes down last so the cards scroll underneath it.
	c.FillRect(render.Rect{W: w, H: sectionsTop - 10}, color.RGBA{R: 22, G: 25, B: 31, A: 255})
	title := "The History of Everything"
	s.drawText(c, title, (w-s.textWidth(title, menuTitleSize))/2, 28, menuTitleSize, color.White, 1)

	s.drawSearchBox(c, w)
	if len(s.results) > 0 {
		s.drawResults(c)
	} else {
		s.drawFavorites(c)
	}
}

func (s *MenuScreen) drawSearchBox(c *render.EbitenCanvas, w float64) {
	box := render.Rect{X: menuMargin, Y: searchBoxTop, W: w - menuMargin*2, H: searchBoxHeight}
	c.FillRoundedRect(box, 6, color.RGBA{R: 255, G: 255, B: 255, A: 28})

	textY := searchBoxTop + (searchBoxHeight-searchTextSize)/2
	if s.query == "" {
		s.drawText(c, "Search the timeline", menuMargin+16, textY, searchTextSize, color.White, 0.35)
		return
	}
	s.drawText(c, s.query, menuMargin+16, textY, searchTextSize, color.White, 1)
	caretX := menuMargin + 16 + s.textWidth(s.query, searchTextSize) + 2
	c.FillRect(render.Rect{X: caretX, Y: textY, W: 2, H: searchTextSize}, color.RGBA{R: 255, G: 255, B: 255, A: 200})
}

func (s *MenuScreen) drawResults(c *render.EbitenCanvas) {
	for i, e := range s.results {
		r := s.resultRect(i)
		c.FillRect(r, color.RGBA{A: 200})
		s.drawText(c, e.TrimmedLabel(), r.X+16, r.Y+(r.H-16)/2, 16, color.White, 1)
		date := e.FormattedDate()
		s.drawText(c, date, r.X+r.W-16-s.textWidth(date, 13), r.Y+(r.H-13)/2, 13, color.White, 0.5)
	}
}

func (s *MenuScreen) drawFavorites(c *render.EbitenCanvas) {
	for i, e := range s.favorited {
		r := s.chipRect(i)
		c.FillRoundedRect(r, r.H/2, color.RGBA{R: e.Accent.R, G: e.Accent.G, B: e.Accent.B, A: 210})
		s.drawText(c, e.TrimmedLabel(), r.X+12, r.Y+(r.H-chipTextSize)/2, chipTextSize, color.White, 1)
	}
}

func (s *MenuScreen) drawSection(c *render.EbitenCanvas, i int) {
	sec := s.sections[i]
	rect := s.sectionRect(i)

	c.FillRoundedRect(rect, 10, sec.Background)

	v := s.vignettes[i].Node()
	v.Layout(render.Size{W: rect.W, H: rect.H})
	v.Paint(c, render.Point{X: rect.X, Y: rect.Y})

	s.drawText(c, sec.Label, rect.X+24, rect.Y+sectionHeader-46, 24, color.White, 1)

	if s.expand[i] > 0.01 {
		for j, item := range sec.Items {
			r := s.itemRect(i, j)
			op := s.expand[i]
			s.drawText(c, item.Label, r.X+24, r.Y+(r.H-16)/2, 16, color.White, op)
			date := timeline.FormatYear(item.Start)
			s.drawText(c, date, r.X+r.W-24-s.textWidth(date, 13), r.Y+(r.H-13)/2, 13, color.White, op*0.6)
		}
	}
}

// sectionRect returns a card's on-screen rectangle at its current
// animated height.
func (s *MenuScreen) sectionRect(i int) render.Rect {
	w := s.Width()
	y := sectionsTop - s.scroll
	for j := 0; j < i; j++ {
		y += s.sectionHeight(j) + sectionGap
	}
	return render.Rect{X: menuMargin, Y: y, W: w - menuMargin*2, H: s.sectionHeight(i)}
}

func (s *MenuScreen) sectionHeight(i int) float64 {
	extra := 12 + itemRowHeight*float64(len(s.sections[i].Items)) + 8
	return sectionHeader + ease.OutCubic(s.expand[i])*extra
}

func (s *MenuScreen) itemRect(i, j int) render.Rect {
	sect := s.sectionRect(i)
	return render.Rect{
		X: sect.X,
		Y: sect.Y + sectionHeader + 12 + float64(j)*itemRowHeight,
		W: sect.W,
		H: itemRowHeight,
	}
}

func (s *MenuScreen) resultRect(i int) render.Rect {
	w := s.Width()
	return render.Rect{
		X: menuMargin,
		Y: searchBoxTop + searchBoxHeight + 8 + float64(i)*resultRowHeight,
		W: w - menuMargin*2,
		H: resultRowHeight,
	}
}

func (s *MenuScreen) chipRect(i int) render.Rect {
	x := menuMargin
	for j := 0; j < i; j++ {
		x += s.chipWidth(j) + 10
	}
	return render.Rect{
		X: x,
		Y: searchBoxTop + searchBoxHeight + 12,
		W: s.chipWidth(i),
		H: chipHeight,
	}
}

func (s *MenuScreen) chipWidth(i int) float64 {
	return s.textWidth(s.favorited[i].TrimmedLabel(), chipTextSize) + 24
}

func (s *MenuScreen) clampScroll() {
	h := s.Height()
	content := sectionsTop + 20.0
	for i := range s.sections {
		content += s.sectionHeight(i) + sectionGap
	}
	limit := math.Max(0, content-h)
	s.scroll = math.Min(math.Max(s.scroll, 0), limit)
}

func (s *MenuScreen) drawText(c *render.EbitenCanvas, text string, x, y, size float64, col color.Color, opacity float64) {
	if s.glyphs == nil {
		return
	}
	s.glyphs.DrawString(c, text, x, y, size, col, opacity)
}

func (s *MenuScreen) textWidth(text string, size float64) float64 {
	if s.glyphs == nil {
		return float64(len(text)) * size * 0.6
	}
	return s.glyphs.Measure(text, size)
}
