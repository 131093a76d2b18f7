package main

import (
	"fmt"
	"os"

	"github.com/hazadus/go-annotator/internal/playback"
	"github.com/hazadus/go-annotator/internal/session"
	"github.com/hazadus/go-annotator/internal/tui"
	tuiapp "github.com/hazadus/go-annotator/internal/tui/app"
)

// launchTUI запускает интерфейс; initialFile открывается сразу, если задан
func (app *Application) launchTUI(initialFile string) error {
	if initialFile != "" {
		if _, err := os.Stat(initialFile); err != nil {
			return fmt.Errorf("файл не найден: %w", err)
		}
	}

	adapterLogger := app.Logger.Named("playback")
	controller := session.NewController(
		app.Comments,
		func() playback.Adapter { return playback.NewBeepAdapter(adapterLogger) },
		app.Logger.Named("session"),
	)

	tuiApp := tui.NewApp(appOptions(app, controller, initialFile))
	return tuiApp.Run()
}

func appOptions(a *Application, controller *session.Controller, initialFile string) tuiapp.Options {
	return tuiapp.Options{
		Controller:   controller,
		ReadyTimeout: a.Config.ReadyTimeout,
		MusicDir:     a.Config.MusicDir,
		InitialFile:  initialFile,
		Logger:       a.Logger.Named("tui"),
	}
}
