package main

import (
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"github.com/dirname/HistoryOfEverything/config"
)

func main() {
	configPath := "config.yaml"
	watch := false
	preview := ""

	// Flags are scanned by hand; there are only three.
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 < len(args) {
				i++
				configPath = args[i]
			}
		case "--watch":
			watch = true
		case "--preview":
			if i+1 < len(args) {
				i++
				preview = args[i]
			}
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		logrus.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
	} else {
		logrus.SetLevel(level)
	}

	if preview != "" {
		// Run the standalone artwork viewer instead of the app
		viewer, err := NewAssetPreview(cfg, preview)
		if err != nil {
			logrus.WithError(err).Fatal("failed to open artwork preview")
		}
		ebiten.SetWindowSize(viewer.Layout(0, 0))
		ebiten.SetWindowTitle("Artwork Preview - " + preview)
		if err := ebiten.RunGame(viewer); err != nil {
			logrus.WithError(err).Fatal("preview stopped")
		}
		return
	}

	game, err := NewGame(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to start")
	}

	if watch {
		w, err := watchData(cfg, game.ReloadQueue())
		if err != nil {
			logrus.WithError(err).Warn("live data reload unavailable")
		} else {
			defer w.Close()
		}
	}

	windowWidth, windowHeight := cfg.GetWindowSize()
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("The History of Everything")
	if cfg.Window.Fullscreen {
		ebiten.SetFullscreen(true)
	}
	if err := ebiten.RunGame(game); err != nil {
		logrus.WithError(err).Fatal("game stopped")
	}
}
