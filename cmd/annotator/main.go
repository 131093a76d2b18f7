package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hazadus/go-annotator/internal/config"
	"github.com/hazadus/go-annotator/internal/logger"
	"github.com/hazadus/go-annotator/internal/store"
)

// Application содержит зависимости, общие для всех команд
type Application struct {
	Config   *config.Config
	Logger   *zap.Logger
	Comments *store.CommentStore

	configPath string
}

// setup загружает конфигурацию, логгер и хранилище, если они еще не заданы
func (app *Application) setup() error {
	if app.Config == nil {
		cfg, err := config.LoadConfig(app.configPath)
		if err != nil {
			return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
		}
		app.Config = cfg
	}

	if app.Logger == nil {
		log, err := logger.New(logger.Config{
			Level:      app.Config.LogLevel,
			OutputPath: app.Config.LogFile,
		})
		if err != nil {
			return fmt.Errorf("ошибка настройки логирования: %w", err)
		}
		app.Logger = log
	}

	if app.Comments == nil {
		backend, err := store.Open(app.Config.StoreBackend, app.Config.StorePath)
		if err != nil {
			return fmt.Errorf("ошибка открытия хранилища: %w", err)
		}
		app.Comments = store.NewCommentStore(backend, app.Logger.Named("store"))
		app.Logger.Info("store opened",
			zap.String("backend", app.Config.StoreBackend),
			zap.String("path", app.Config.StorePath))
	}
	return nil
}

// Close освобождает хранилище и сбрасывает буфер логгера
func (app *Application) Close() error {
	var err error
	if app.Comments != nil {
		err = app.Comments.Close()
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &Application{}
	rootCmd := app.createRootCommand(ctx)

	err := rootCmd.ExecuteContext(ctx)
	if closeErr := app.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
