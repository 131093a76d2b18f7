// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-annotator/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	options app.Options
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(options app.Options) *App {
	return &App{options: options}
}

// newMainModel создает главную модель приложения
func (tuiApp *App) newMainModel() *app.MainModel {
	return app.NewMainModel(tuiApp.options)
}

// Run запускает TUI приложение
func (tuiApp *App) Run() error {
	model := tuiApp.newMainModel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()

	// Останавливаем воспроизведение после завершения программы
	model.Close()

	return err
}
