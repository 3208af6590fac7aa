package screens

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/dirname/HistoryOfEverything/events"
	"github.com/dirname/HistoryOfEverything/favorites"
	"github.com/dirname/HistoryOfEverything/render"
	"github.com/dirname/HistoryOfEverything/timeline"
)

// Article layout metrics, in pixels.
const (
	articleMargin   = 32.0
	articleTitle    = 26.0
	articleTextSize = 15.0
	articleLineStep = 22.0
	articleTextTop  = 130.0
	// Fraction of the width given to the text column; the artwork gets
	// the rest.
	articleSplit = 0.55
)

// ArticleScreen shows one entry's article next to its animated artwork.
type ArticleScreen struct {
	*BaseScreen
	entry  *timeline.Entry
	widget *render.EntryWidget
	favs   *favorites.Store
	glyphs *render.GlyphSheet
	log    *logrus.Entry

	body      []string
	lines     []string
	wrappedAt float64
	scroll    float64
	favorited bool

	unsubscribe func()
}

// NewArticleScreen loads the entry's article text and starts its artwork
// playing.
func NewArticleScreen(
	entry *timeline.Entry,
	articles string,
	favs *favorites.Store,
	bus *events.Bus,
	pump *render.FramePump,
	glyphs *render.GlyphSheet,
) *ArticleScreen {
	s := &ArticleScreen{
		BaseScreen: NewBaseScreen(),
		entry:      entry,
		widget:     render.NewEntryWidget(pump),
		favs:       favs,
		glyphs:     glyphs,
		log:        logrus.WithField("component", "article-screen"),
	}
	s.widget.Mount(render.EntryConfig{Active: true, Entry: entry})

	s.body = loadArticle(articles, entry, s.log)
	if favs != nil {
		s.favorited = favs.Contains(entry.ID)
	}
	if bus != nil {
		s.unsubscribe = bus.Subscribe(favorites.FavoritesChangedType, func(events.Event) {
			s.favorited = favs.Contains(entry.ID)
		})
	}
	return s
}

// loadArticle reads the entry's article file into paragraphs. A missing
// article is not fatal.
func loadArticle(dir string, entry *timeline.Entry, log *logrus.Entry) []string {
	name := entry.Article
	if name == "" {
		name = entry.ID + ".txt"
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		log.WithError(err).WithField("entry", entry.ID).Warn("article text missing")
		return []string{"No article available."}
	}

	var paragraphs []string
	for _, p := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, strings.Join(strings.Fields(p), " "))
		}
	}
	if len(paragraphs) == 0 {
		return []string{"No article available."}
	}
	return paragraphs
}

// Close stops the artwork and drops the bus subscription.
func (s *ArticleScreen) Close() {
	s.widget.Unmount()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Update handles input for the article screen
func (s *ArticleScreen) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrCloseScreen
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF) && s.favs != nil {
		s.favorited = s.favs.Toggle(s.entry.ID)
		s.log.WithFields(logrus.Fields{
			"entry":     s.entry.ID,
			"favorited": s.favorited,
		}).Info("favorite toggled")
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		s.scroll -= wy * 30
		limit := math.Max(0, float64(len(s.lines))*articleLineStep-
			(s.Height()-articleTextTop-articleMargin))
		s.scroll = math.Min(math.Max(s.scroll, 0), limit)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := CursorPoint()
		local := render.Point{X: x - s.Width()*articleSplit, Y: y}
		if s.widget.Node().HitTest(local) {
			s.log.WithField("entry", s.entry.ID).Debug("artwork tapped")
		}
	}
	return nil
}

// Draw renders the article screen
func (s *ArticleScreen) Draw(screen *ebiten.Image) {
	c := render.NewEbitenCanvas(screen)
	w := s.Width()
	h := s.Height()

	c.FillRect(render.Rect{W: w, H: h}, color.RGBA{R: 27, G: 28, B: 32, A: 255})
	c.FillRect(render.Rect{X: 0, Y: 0, W: 4, H: h}, s.entry.Accent)

	node := s.widget.Node()
	node.Layout(render.Size{W: w * (1 - articleSplit), H: h})
	node.Paint(c, render.Point{X: w * articleSplit})

	s.drawText(c, s.entry.TrimmedLabel(), articleMargin, 36, articleTitle, color.White, 1)
	s.drawText(c, s.entry.FormattedDate(), articleMargin, 36+articleTitle+10, 14, color.White, 0.6)
	s.drawFavoriteChip(c, w)

	colW := w*articleSplit - articleMargin*2
	if s.wrappedAt != colW {
		s.lines = s.wrapBody(colW)
		s.wrappedAt = colW
	}
	for i, line := range s.lines {
		y := articleTextTop + float64(i)*articleLineStep - s.scroll
		if y < articleTextTop-articleLineStep || y > h {
			continue
		}
		s.drawText(c, line, articleMargin, y, articleTextSize, color.White, 0.85)
	}

	s.drawText(c, "F favorite   ESC back", 12, h-24, 12, color.White, 0.3)
}

func (s *ArticleScreen) drawFavoriteChip(c *render.EbitenCanvas, w float64) {
	chip := render.Rect{X: w*articleSplit - articleMargin - 96, Y: 34, W: 96, H: 30}
	fill := color.RGBA{R: 70, G: 74, B: 82, A: 255}
	if s.favorited {
		fill = s.entry.Accent
	}
	c.FillRoundedRect(chip, 15, fill)
	label := "* FAV"
	s.drawText(c, label, chip.X+(chip.W-s.textWidth(label, 13))/2, chip.Y+(chip.H-13)/2, 13, color.White, 1)
}

// wrapBody wraps the paragraphs into lines that fit the text column,
// leaving a blank line between paragraphs.
func (s *ArticleScreen) wrapBody(colW float64) []string {
	var lines []string
	for i, para := range s.body {
		if i > 0 {
			lines = append(lines, "")
		}
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if s.textWidth(candidate, articleTextSize) > colW && line != "" {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func (s *ArticleScreen) drawText(c *render.EbitenCanvas, text string, x, y, size float64, col color.Color, opacity float64) {
	if s.glyphs == nil {
		return
	}
	s.glyphs.DrawString(c, text, x, y, size, col, opacity)
}

func (s *ArticleScreen) textWidth(text string, size float64) float64 {
	if s.glyphs == nil {
		return float64(len(text)) * size * 0.6
	}
	return s.glyphs.Measure(text, size)
}
