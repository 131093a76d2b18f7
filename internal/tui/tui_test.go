package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-annotator/internal/playback/playbacktest"
	"github.com/hazadus/go-annotator/internal/session"
	"github.com/hazadus/go-annotator/internal/store"
	"github.com/hazadus/go-annotator/internal/tui/annotate"
	"github.com/hazadus/go-annotator/internal/tui/app"
	"github.com/hazadus/go-annotator/internal/tui/picker"
)

func newTestApp(t *testing.T, initialFile string) (*App, *session.Controller, *[]*playbacktest.Fake) {
	t.Helper()
	created := &[]*playbacktest.Fake{}
	controller := session.NewController(
		store.NewCommentStore(store.NewMemory(), nil),
		playbacktest.Factory(created),
		nil,
	)
	return NewApp(app.Options{
		Controller:   controller,
		ReadyTimeout: time.Second,
		MusicDir:     t.TempDir(),
		InitialFile:  initialFile,
	}), controller, created
}

func TestMainModelRouting(t *testing.T) {
	tuiApp, controller, created := newTestApp(t, "")
	model := tuiApp.newMainModel()
	model.Init()

	if model.CurrentScreen() != app.PickerScreen {
		t.Errorf("Ожидался экран выбора файла, получено %v", model.CurrentScreen())
	}

	// Без открытого файла возврат с экрана выбора невозможен
	updated, _ := model.Update(picker.CancelMsg{})
	model = updated.(*app.MainModel)
	if model.CurrentScreen() != app.PickerScreen {
		t.Error("Без открытого файла экран выбора должен оставаться активным")
	}

	updated, _ = model.Update(picker.FileSelectedMsg{Path: "/music/song.mp3"})
	model = updated.(*app.MainModel)
	if model.CurrentScreen() != app.AnnotateScreen {
		t.Errorf("Ожидался экран аннотаций после выбора файла, получено %v", model.CurrentScreen())
	}
	if controller.Identity() != "song.mp3" || len(*created) != 1 {
		t.Fatalf("Выбор файла должен создавать адаптер для song.mp3")
	}

	updated, _ = model.Update(annotate.OpenPickerMsg{})
	model = updated.(*app.MainModel)
	if model.CurrentScreen() != app.PickerScreen {
		t.Error("OpenPickerMsg должен открывать экран выбора")
	}

	updated, _ = model.Update(picker.CancelMsg{})
	model = updated.(*app.MainModel)
	if model.CurrentScreen() != app.AnnotateScreen {
		t.Error("CancelMsg должен возвращать к открытому файлу")
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("Ожидалась команда tea.Quit после Ctrl+C")
	}
}

func TestAdapterEventsReachAnnotateOnPickerScreen(t *testing.T) {
	tuiApp, controller, created := newTestApp(t, "")
	model := tuiApp.newMainModel()

	model.Update(picker.FileSelectedMsg{Path: "song.mp3"})
	model.Update(annotate.OpenPickerMsg{})

	ev := (*created)[0].BecomeReady(time.Minute)
	model.Update(annotate.AdapterEventMsg{Generation: controller.Generation(), Event: ev})

	if controller.Duration() != time.Minute {
		t.Error("Событие адаптера должно обрабатываться и на экране выбора файла")
	}
	if model.CurrentScreen() != app.PickerScreen {
		t.Error("Событие адаптера не должно переключать экран")
	}
}

func TestInitialFileOpensAnnotateScreen(t *testing.T) {
	tuiApp, controller, _ := newTestApp(t, "/music/intro.wav")
	model := tuiApp.newMainModel()

	if cmd := model.Init(); cmd == nil {
		t.Fatal("Ожидалась команда запуска")
	}
	if model.CurrentScreen() != app.AnnotateScreen {
		t.Errorf("Ожидался экран аннотаций, получено %v", model.CurrentScreen())
	}
	if controller.Identity() != "intro.wav" {
		t.Errorf("Ожидался файл intro.wav, получено %q", controller.Identity())
	}
}

func TestMainModelView(t *testing.T) {
	tuiApp, _, _ := newTestApp(t, "")
	model := tuiApp.newMainModel()

	if model.View() == "" {
		t.Error("Ожидалось непустое отображение экрана выбора")
	}

	model.Update(picker.FileSelectedMsg{Path: "song.mp3"})
	if model.View() == "" {
		t.Error("Ожидалось непустое отображение экрана аннотаций")
	}
}

func TestMainModelClose(t *testing.T) {
	tuiApp, _, created := newTestApp(t, "")
	model := tuiApp.newMainModel()

	model.Update(picker.FileSelectedMsg{Path: "song.mp3"})
	model.Close()

	if !(*created)[0].Closed() {
		t.Error("Close должен закрывать активный адаптер")
	}
}
