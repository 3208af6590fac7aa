package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/sirupsen/logrus"

	"github.com/dirname/HistoryOfEverything/asset"
	"github.com/dirname/HistoryOfEverything/config"
	"github.com/dirname/HistoryOfEverything/events"
	"github.com/dirname/HistoryOfEverything/favorites"
	"github.com/dirname/HistoryOfEverything/menu"
	"github.com/dirname/HistoryOfEverything/render"
	"github.com/dirname/HistoryOfEverything/screens"
	"github.com/dirname/HistoryOfEverything/search"
	"github.com/dirname/HistoryOfEverything/timeline"
)

// glyphSheetPath is where the bitmap font lives. Text drawing is skipped
// when the sheet is missing.
const glyphSheetPath = "data/font.png"

// Game implements ebiten.Game. It owns the screen stack and the frame
// pump that animation nodes register their callbacks with.
type Game struct {
	cfg   config.Config
	stack *screens.ScreenStack
	pump  *render.FramePump
	tl    *timeline.Timeline
	lib   *asset.Library

	start  time.Time
	reload chan string
	log    *logrus.Entry
}

// NewGame loads every data source named in cfg and builds the screen
// stack with the menu on top.
func NewGame(cfg config.Config) (*Game, error) {
	log := logrus.WithField("component", "game")

	lib := asset.NewLibrary()
	if err := lib.LoadDirectory(cfg.Data.Assets); err != nil {
		log.WithError(err).Warn("artwork library incomplete")
	}

	bus := events.NewBus()
	tl, err := timeline.Load(cfg.Data.Timeline, lib, bus)
	if err != nil {
		return nil, err
	}
	w, h := cfg.GetWindowSize()
	tl.SetSize(float64(w), float64(h))

	sections, err := menu.Load(cfg.Data.Menu)
	if err != nil {
		return nil, err
	}

	favs := favorites.NewStore(cfg.Favorites, bus)
	if err := favs.Load(); err != nil {
		log.WithError(err).Warn("starting with no favorites")
	}

	glyphs, err := render.LoadGlyphSheet(glyphSheetPath)
	if err != nil {
		log.WithError(err).Warn("glyph sheet missing, text will not be drawn")
		glyphs = nil
	}

	pump := render.NewFramePump()
	stack := screens.NewScreenStack()
	stack.Push(screens.NewMenuScreen(
		sections, tl, search.Build(tl.Entries()), favs, bus, pump, glyphs, cfg.Data.Articles,
	))

	return &Game{
		cfg:    cfg,
		stack:  stack,
		pump:   pump,
		tl:     tl,
		lib:    lib,
		start:  time.Now(),
		reload: make(chan string, 8),
		log:    log,
	}, nil
}

// ReloadQueue is where the data watcher posts changed file paths. The
// queue is drained on the game loop thread.
func (g *Game) ReloadQueue() chan<- string { return g.reload }

// Update runs one step: frame callbacks first, then the top screen.
func (g *Game) Update() error {
	g.pump.Tick(time.Since(g.start))

	select {
	case path := <-g.reload:
		g.applyReload(path)
	default:
	}

	if err := g.stack.Update(); err != nil {
		if errors.Is(err, screens.ErrQuit) {
			return ebiten.Termination
		}
		return err
	}
	if g.stack.Len() == 0 {
		return ebiten.Termination
	}
	return nil
}

// applyReload swaps in freshly parsed timeline data without restarting.
// Other data files only take effect on the next start.
func (g *Game) applyReload(path string) {
	log := g.log.WithField("path", path)
	if path != filepath.Clean(g.cfg.Data.Timeline) {
		log.Info("data changed, restart to apply")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).Warn("reload failed, keeping current data")
		return
	}
	fresh, err := timeline.Parse(data, g.lib, nil)
	if err != nil {
		log.WithError(err).Warn("reload failed, keeping current data")
		return
	}
	g.tl.SetBackgrounds(fresh.Backgrounds())
	g.tl.SetEntries(fresh.Roots())
	log.Info("timeline data reloaded")
}

// Draw renders the whole stack, bottom screen first.
func (g *Game) Draw(screen *ebiten.Image) {
	g.stack.Draw(screen)

	if g.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f", ebiten.ActualFPS()))
	}
}

// Layout implements ebiten.Game's Layout.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.stack.Layout(outsideWidth, outsideHeight)
}
