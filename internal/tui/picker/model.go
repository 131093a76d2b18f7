// Package picker содержит экран выбора аудиофайла
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AllowedTypes - расширения, которые можно открыть
var AllowedTypes = []string{".mp3", ".wav"}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0, 0, 2)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginLeft(2)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).MarginLeft(2)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0, 0, 2)
)

// FileSelectedMsg отправляется при выборе аудиофайла
type FileSelectedMsg struct {
	Path string
}

// CancelMsg отправляется, если пользователь вернулся к открытому файлу без выбора
type CancelMsg struct{}

// Model представляет экран выбора файла
type Model struct {
	filepicker filepicker.Model
	cancel     key.Binding
	quit       key.Binding
	err        string
}

// NewModel создает экран выбора файла, начиная с каталога dir
func NewModel(dir string) *Model {
	fp := filepicker.New()
	fp.AllowedTypes = AllowedTypes
	fp.CurrentDirectory = dir
	fp.AutoHeight = true
	fp.ShowHidden = false

	return &Model{
		filepicker: fp,
		cancel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "вернуться к файлу"),
		),
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "выход"),
		),
	}
}

// CurrentDirectory возвращает каталог, открытый в списке
func (m *Model) CurrentDirectory() string {
	return m.filepicker.CurrentDirectory
}

// Init читает содержимое текущего каталога
func (m *Model) Init() tea.Cmd {
	m.err = ""
	return m.filepicker.Init()
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.quit):
			return m, tea.Quit
		case key.Matches(msg, m.cancel):
			return m, func() tea.Msg {
				return CancelMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.err = ""
		return m, func() tea.Msg {
			return FileSelectedMsg{Path: path}
		}
	}

	if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
		m.err = fmt.Sprintf("Файл %s не поддерживается: выберите %s", path, strings.Join(AllowedTypes, " или "))
		return m, cmd
	}

	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎧 Выберите аудиофайл"))
	b.WriteString("\n")
	b.WriteString(pathStyle.Render(m.filepicker.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(m.filepicker.View())

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓: навигация • enter/→: открыть • ←/esc: назад • tab: вернуться к файлу • q: выход"))
	return b.String()
}
