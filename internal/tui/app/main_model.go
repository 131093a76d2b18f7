// Package app содержит основную логику TUI приложения
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hazadus/go-annotator/internal/session"
	"github.com/hazadus/go-annotator/internal/tui/annotate"
	"github.com/hazadus/go-annotator/internal/tui/commentlist"
	"github.com/hazadus/go-annotator/internal/tui/picker"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// PickerScreen - экран выбора файла
	PickerScreen ScreenType = iota
	// AnnotateScreen - экран аннотаций
	AnnotateScreen
)

// Options содержит зависимости главной модели
type Options struct {
	Controller   *session.Controller
	ReadyTimeout time.Duration
	MusicDir     string
	InitialFile  string // Файл, открываемый сразу при запуске
	Logger       *zap.Logger
}

// MainModel представляет главную модель TUI
type MainModel struct {
	controller    *session.Controller
	currentScreen ScreenType
	pickerModel   *picker.Model
	annotateModel *annotate.Model
	initialFile   string
	logger        *zap.Logger
}

// NewMainModel создает новую главную модель
func NewMainModel(opts Options) *MainModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MainModel{
		controller:    opts.Controller,
		currentScreen: PickerScreen,
		pickerModel:   picker.NewModel(opts.MusicDir),
		annotateModel: annotate.NewModel(opts.Controller, opts.ReadyTimeout, logger),
		initialFile:   opts.InitialFile,
		logger:        logger,
	}
}

// CurrentScreen возвращает активный экран
func (m *MainModel) CurrentScreen() ScreenType {
	return m.currentScreen
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	if m.initialFile != "" {
		m.currentScreen = AnnotateScreen
		return tea.Batch(m.pickerModel.Init(), m.annotateModel.Select(m.initialFile))
	}
	return m.pickerModel.Init()
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Глобальные горячие клавиши
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case picker.FileSelectedMsg:
		m.logger.Info("file selected in picker", zap.String("path", msg.Path))
		m.currentScreen = AnnotateScreen
		return m, m.annotateModel.Select(msg.Path)

	case picker.CancelMsg:
		if m.controller.Identity() != "" {
			m.currentScreen = AnnotateScreen
		}
		return m, nil

	case annotate.OpenPickerMsg:
		m.currentScreen = PickerScreen
		return m, m.pickerModel.Init()

	case annotate.AdapterEventMsg, annotate.LoadTimeoutMsg,
		commentlist.SeekRequestedMsg, commentlist.DeleteRequestedMsg:
		// События воспроизведения обрабатываются и при открытом экране выбора
		m.annotateModel, cmd = m.annotateModel.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		// Размеры нужны обоим экранам
		var pickerCmd, annotateCmd tea.Cmd
		m.pickerModel, pickerCmd = m.pickerModel.Update(msg)
		m.annotateModel, annotateCmd = m.annotateModel.Update(msg)
		return m, tea.Batch(pickerCmd, annotateCmd)
	}

	// Передаем сообщение активной модели
	switch m.currentScreen {
	case PickerScreen:
		m.pickerModel, cmd = m.pickerModel.Update(msg)
	case AnnotateScreen:
		m.annotateModel, cmd = m.annotateModel.Update(msg)
	}

	return m, cmd
}

// View отображает интерфейс
func (m *MainModel) View() string {
	switch m.currentScreen {
	case PickerScreen:
		return m.pickerModel.View()
	case AnnotateScreen:
		return m.annotateModel.View()
	default:
		return "Неизвестный экран"
	}
}

// Close закрывает ресурсы главной модели
func (m *MainModel) Close() {
	if err := m.controller.Close(); err != nil {
		m.logger.Warn("close controller", zap.Error(err))
	}
}
