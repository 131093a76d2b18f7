// Package commentlist содержит список комментариев экрана аннотаций
package commentlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-annotator/internal/comment"
	"github.com/hazadus/go-annotator/internal/utils"
)

// Placeholder показывается вместо пустого списка
const Placeholder = "Комментариев пока нет. Нажмите 'a', чтобы добавить первый."

var (
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	timestampStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5f87ff")).Bold(true)
	placeholderStyle  = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("#888888")).Italic(true)
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
)

// SeekRequestedMsg отправляется при выборе комментария для перехода к его позиции
type SeekRequestedMsg struct {
	Timestamp float64
}

// DeleteRequestedMsg отправляется при удалении комментария
type DeleteRequestedMsg struct {
	ID        string
	Timestamp float64
	Text      string
}

// commentItem реализует интерфейс list.Item для комментария
type commentItem struct {
	comment comment.Comment
}

func (i commentItem) FilterValue() string {
	return i.comment.Text
}

// FormatLine возвращает строку комментария в виде "MM:SS  текст"
func FormatLine(c comment.Comment) string {
	return fmt.Sprintf("%s  %s", utils.FormatTimestamp(c.Timestamp), c.Text)
}

// commentItemDelegate реализует отображение элементов списка
type commentItemDelegate struct {
	width int
}

func (d commentItemDelegate) Height() int                             { return 1 }
func (d commentItemDelegate) Spacing() int                            { return 0 }
func (d commentItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d commentItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(commentItem)
	if !ok {
		return
	}

	text := i.comment.Text
	if d.width > 16 {
		text = utils.TruncateString(text, d.width-16)
	}
	str := timestampStyle.Render(utils.FormatTimestamp(i.comment.Timestamp)) + "  " + text

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// KeyMap описывает клавиши списка комментариев
type KeyMap struct {
	Seek   key.Binding
	Delete key.Binding
}

// DefaultKeyMap возвращает клавиши по умолчанию
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Seek: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "перейти"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d/x", "удалить"),
		),
	}
}

// Model представляет список комментариев
type Model struct {
	list     list.Model
	keys     KeyMap
	comments []comment.Comment
	focused  bool
}

// NewModel создает пустой список комментариев
func NewModel() *Model {
	l := list.New(nil, commentItemDelegate{}, 0, 0)
	l.Title = "Комментарии"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	// Выход и фильтрация обрабатываются экраном аннотаций
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	return &Model{
		list:     l,
		keys:     DefaultKeyMap(),
		comments: []comment.Comment{},
		focused:  true,
	}
}

// SetComments заменяет содержимое списка; элементы упорядочиваются по позиции
func (m *Model) SetComments(comments []comment.Comment) {
	m.comments = comment.Sorted(comments)

	items := make([]list.Item, len(m.comments))
	for i, c := range m.comments {
		items[i] = commentItem{comment: c}
	}

	index := m.list.Index()
	m.list.SetItems(items)
	if index >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

// Comments возвращает отображаемые комментарии в порядке вывода
func (m *Model) Comments() []comment.Comment {
	return m.comments
}

// SetSize задает размеры списка
func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
	m.list.SetDelegate(commentItemDelegate{width: width})
}

// SetFocused включает или отключает обработку клавиш
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
}

// KeyMap возвращает клавиши списка для справки
func (m *Model) KeyMap() KeyMap {
	return m.keys
}

// Selected возвращает выбранный комментарий
func (m *Model) Selected() (comment.Comment, bool) {
	item, ok := m.list.SelectedItem().(commentItem)
	if !ok {
		return comment.Comment{}, false
	}
	return item.comment, true
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Seek):
			if selected, ok := m.Selected(); ok {
				return m, func() tea.Msg {
					return SeekRequestedMsg{Timestamp: selected.Timestamp}
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if selected, ok := m.Selected(); ok {
				return m, func() tea.Msg {
					return DeleteRequestedMsg{
						ID:        selected.ID,
						Timestamp: selected.Timestamp,
						Text:      selected.Text,
					}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if len(m.comments) == 0 {
		return titleStyle.Render("Комментарии") + "\n\n" + placeholderStyle.Render(Placeholder)
	}
	return m.list.View()
}
