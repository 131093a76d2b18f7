// Package annotate содержит экран аннотаций: воспроизведение, волновую форму и комментарии
package annotate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/hazadus/go-annotator/internal/metadata"
	"github.com/hazadus/go-annotator/internal/playback"
	"github.com/hazadus/go-annotator/internal/session"
	"github.com/hazadus/go-annotator/internal/tui/commentlist"
	"github.com/hazadus/go-annotator/internal/utils"
)

// seekStep - шаг перемотки стрелками
const seekStep = 5 * time.Second

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5f87ff")).
			MarginBottom(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1)
)

// AdapterEventMsg доставляет событие адаптера вместе с номером выбора файла
type AdapterEventMsg struct {
	Generation uint64
	Event      playback.Event
}

// adapterClosedMsg сообщает, что адаптер закрыт и слушать его больше не нужно
type adapterClosedMsg struct {
	Generation uint64
}

// LoadTimeoutMsg отправляется, если аудио не стало готовым за отведенное время
type LoadTimeoutMsg struct {
	Generation uint64
}

// OpenPickerMsg запрашивает экран выбора файла
type OpenPickerMsg struct{}

type mode int

const (
	normalMode mode = iota
	inputMode
)

// Model представляет экран аннотаций
type Model struct {
	controller   *session.Controller
	extractor    *metadata.Extractor
	logger       *zap.Logger
	readyTimeout time.Duration

	track       metadata.TrackMetadata
	comments    *commentlist.Model
	input       textinput.Model
	progressBar progress.Model
	help        help.Model
	keys        KeyMap
	mode        mode

	notice      string
	noticeIsErr bool
	width       int
	height      int
}

// NewModel создает экран аннотаций поверх контроллера сессии
func NewModel(controller *session.Controller, readyTimeout time.Duration, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 40

	input := textinput.New()
	input.Placeholder = "Текст комментария"
	input.CharLimit = 500
	input.Prompt = "✎ "

	comments := commentlist.NewModel()
	comments.SetSize(60, 10)

	return &Model{
		controller:   controller,
		extractor:    metadata.NewExtractor(),
		logger:       logger,
		readyTimeout: readyTimeout,
		comments:     comments,
		input:        input,
		progressBar:  prog,
		help:         help.New(),
		keys:         DefaultKeyMap(),
	}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Select открывает аудиофайл и запускает прослушивание событий его адаптера
func (m *Model) Select(path string) tea.Cmd {
	generation, err := m.controller.SelectAudio(path)
	if err != nil {
		m.setError(err)
		return nil
	}

	m.track = m.extractor.ExtractFromFile(path)
	m.comments.SetComments(nil)
	m.input.Reset()
	m.setMode(normalMode)
	m.clearNotice()

	cmds := []tea.Cmd{listen(generation, m.controller.Adapter())}
	if m.readyTimeout > 0 {
		cmds = append(cmds, tea.Tick(m.readyTimeout, func(time.Time) tea.Msg {
			return LoadTimeoutMsg{Generation: generation}
		}))
	}
	return tea.Batch(cmds...)
}

// listen ждет следующего события адаптера или его закрытия
func listen(generation uint64, adapter playback.Adapter) tea.Cmd {
	if adapter == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev := <-adapter.Events():
			return AdapterEventMsg{Generation: generation, Event: ev}
		case <-adapter.Done():
			return adapterClosedMsg{Generation: generation}
		}
	}
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = min(60, msg.Width-10)
		m.input.Width = max(10, msg.Width-8)
		m.help.Width = msg.Width
		m.comments.SetSize(msg.Width, max(3, msg.Height-16))
		return m, nil

	case AdapterEventMsg:
		return m, m.handleAdapterEvent(msg)

	case adapterClosedMsg:
		return m, nil

	case LoadTimeoutMsg:
		if m.controller.HandleLoadTimeout(msg.Generation) {
			m.setError(session.ErrLoadTimeout)
		}
		return m, nil

	case commentlist.SeekRequestedMsg:
		if err := m.controller.SeekToComment(msg.Timestamp); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setNotice(fmt.Sprintf("Переход к %s", utils.FormatTimestamp(msg.Timestamp)))
		return m, nil

	case commentlist.DeleteRequestedMsg:
		m.deleteComment(msg)
		return m, nil

	case tea.KeyMsg:
		if m.mode == inputMode {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

// handleAdapterEvent применяет событие и продолжает слушать адаптер
func (m *Model) handleAdapterEvent(msg AdapterEventMsg) tea.Cmd {
	if !m.controller.HandleEvent(msg.Generation, msg.Event) {
		// Событие устаревшего адаптера: его цепочка прослушивания заканчивается
		return nil
	}

	switch msg.Event.Kind {
	case playback.EventReady:
		m.refreshComments()
		if err := m.controller.CommentsErr(); err != nil {
			m.setError(err)
		} else {
			m.setNotice("Аудио загружено")
		}

	case playback.EventFailed:
		m.setError(fmt.Errorf("не удалось загрузить аудио: %w", msg.Event.Err))

	case playback.EventFinished:
		m.setNotice("Воспроизведение завершено")
	}

	return listen(msg.Generation, m.controller.Adapter())
}

// updateNormal обрабатывает клавиши вне режима ввода
func (m *Model) updateNormal(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Open):
		return m, func() tea.Msg {
			return OpenPickerMsg{}
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		if err := m.controller.TogglePlayback(); err != nil {
			m.setError(err)
		} else if m.controller.Identity() == "" {
			m.setError(session.ErrNoAudio)
		} else {
			m.clearNotice()
		}
		return m, nil

	case key.Matches(msg, m.keys.Forward):
		m.seekBy(seekStep)
		return m, nil

	case key.Matches(msg, m.keys.Backward):
		m.seekBy(-seekStep)
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.setMode(inputMode)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.comments, cmd = m.comments.Update(msg)
	return m, cmd
}

// updateInput обрабатывает клавиши в режиме ввода комментария
func (m *Model) updateInput(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CancelEdit):
		m.setMode(normalMode)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		m.addComment()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// addComment добавляет комментарий из поля ввода; при ошибке текст сохраняется
func (m *Model) addComment() {
	added, err := m.controller.AddComment(m.input.Value())
	if err != nil {
		m.setError(err)
		if errors.Is(err, session.ErrNoAudio) || errors.Is(err, session.ErrEmptyComment) {
			return
		}
		// Ошибка записи: комментарий уже в списке, но не сохранен
		m.refreshComments()
		return
	}

	m.refreshComments()
	m.input.Reset()
	m.setMode(normalMode)
	m.setNotice(fmt.Sprintf("Комментарий добавлен на %s", utils.FormatTimestamp(added.Timestamp)))
}

// deleteComment удаляет комментарий по идентификатору или по позиции и тексту
func (m *Model) deleteComment(msg commentlist.DeleteRequestedMsg) {
	var (
		removed int
		err     error
	)
	if msg.ID != "" {
		var ok bool
		ok, err = m.controller.DeleteCommentByID(msg.ID)
		if ok {
			removed = 1
		}
	} else {
		removed, err = m.controller.DeleteComment(msg.Timestamp, msg.Text)
	}

	m.refreshComments()
	switch {
	case err != nil:
		m.setError(err)
	case removed > 0:
		m.setNotice("Комментарий удален")
	}
}

func (m *Model) seekBy(delta time.Duration) {
	if err := m.controller.SeekBy(delta); err != nil {
		m.setError(err)
	}
}

func (m *Model) refreshComments() {
	m.comments.SetComments(m.controller.Comments())
}

func (m *Model) setMode(md mode) {
	m.mode = md
	m.keys.inputMode = md == inputMode
	m.comments.SetFocused(md == normalMode)
	if md == inputMode {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeIsErr = false
}

func (m *Model) setError(err error) {
	m.notice = err.Error()
	m.noticeIsErr = true
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeIsErr = false
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎧 Аннотации"))
	b.WriteString("\n")
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	if peaks := m.controller.Peaks(); len(peaks) > 0 {
		b.WriteString(renderWaveform(peaks, m.progressBar.Width, m.playedFraction()))
		b.WriteString("\n")
	}
	b.WriteString(m.progressBar.ViewAs(m.playedFraction()))
	b.WriteString("\n")
	b.WriteString(m.timeView())
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(formatStatus(m.controller.Phase())))
	b.WriteString("\n\n")

	b.WriteString(m.comments.View())
	b.WriteString("\n\n")

	if m.mode == inputMode {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.notice != "" {
		if m.noticeIsErr {
			b.WriteString(errorStyle.Render("❌ " + m.notice))
		} else {
			b.WriteString(noticeStyle.Render(m.notice))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) headerView() string {
	identity := m.controller.Identity()
	if identity == "" {
		return trackInfoStyle.Render("Файл не выбран. Нажмите 'o', чтобы открыть аудиофайл.")
	}

	lines := []string{"📄 " + identity}
	if m.track.FromTags {
		lines = append(lines, "🎤 "+m.track.String())
		if m.track.Album != "" {
			lines = append(lines, "💿 "+m.track.Album)
		}
	}
	return trackInfoStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) timeView() string {
	duration := m.controller.Duration()
	if duration <= 0 {
		return "--:-- / --:--"
	}
	return fmt.Sprintf("%s / %s",
		utils.FormatTimestamp(m.controller.Position().Seconds()),
		utils.FormatTimestamp(duration.Seconds()))
}

func (m *Model) playedFraction() float64 {
	duration := m.controller.Duration()
	if duration <= 0 {
		return 0
	}
	return playback.ClampFraction(float64(m.controller.Position()) / float64(duration))
}

// formatStatus возвращает строку состояния воспроизведения
func formatStatus(phase playback.State) string {
	switch phase {
	case playback.Loading:
		return "⏳ Загрузка"
	case playback.Ready:
		return "⏹ Готово"
	case playback.Playing:
		return "▶ Воспроизведение"
	case playback.Paused:
		return "⏸ Пауза"
	case playback.Finished:
		return "⏹ Завершено"
	case playback.Failed:
		return "❌ Ошибка"
	default:
		return "Нет файла"
	}
}
