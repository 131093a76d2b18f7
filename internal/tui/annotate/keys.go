package annotate

import "github.com/charmbracelet/bubbles/key"

// KeyMap описывает клавиши экрана аннотаций
type KeyMap struct {
	PlayPause  key.Binding
	Add        key.Binding
	Forward    key.Binding
	Backward   key.Binding
	Up         key.Binding
	Down       key.Binding
	Seek       key.Binding
	Delete     key.Binding
	Open       key.Binding
	Help       key.Binding
	Quit       key.Binding
	Submit     key.Binding
	CancelEdit key.Binding

	inputMode bool
}

// ShortHelp возвращает краткую справку для текущего режима
func (k KeyMap) ShortHelp() []key.Binding {
	if k.inputMode {
		return []key.Binding{k.Submit, k.CancelEdit}
	}
	return []key.Binding{k.PlayPause, k.Add, k.Seek, k.Delete, k.Open, k.Help, k.Quit}
}

// FullHelp возвращает полную справку для текущего режима
func (k KeyMap) FullHelp() [][]key.Binding {
	if k.inputMode {
		return [][]key.Binding{{k.Submit, k.CancelEdit}}
	}
	return [][]key.Binding{
		{k.PlayPause, k.Backward, k.Forward},
		{k.Add, k.Up, k.Down, k.Seek, k.Delete},
		{k.Open, k.Help, k.Quit},
	}
}

// DefaultKeyMap возвращает клавиши по умолчанию
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "пауза/воспроизведение"),
		),
		Add: key.NewBinding(
			key.WithKeys("a", "c"),
			key.WithHelp("a", "комментарий"),
		),
		Forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+5с"),
		),
		Backward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "-5с"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "вверх"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "вниз"),
		),
		Seek: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "перейти к комментарию"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "удалить"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "открыть файл"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "справка"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "выход"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "сохранить"),
		),
		CancelEdit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "отмена"),
		),
	}
}
