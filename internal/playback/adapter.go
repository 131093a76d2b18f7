// Package playback описывает адаптер воспроизведения: декодирование, волновую форму и транспорт
package playback

import (
	"errors"
	"time"
)

// State представляет состояние жизненного цикла адаптера
type State int

// Состояния адаптера
const (
	Unloaded State = iota
	Loading
	Ready
	Playing
	Paused
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// HasDuration сообщает, известна ли длительность в этом состоянии
func (s State) HasDuration() bool {
	switch s {
	case Ready, Playing, Paused, Finished:
		return true
	}
	return false
}

// EventKind определяет тип события адаптера
type EventKind int

// Типы событий
const (
	EventReady EventKind = iota
	EventPosition
	EventFinished
	EventPlayState
	EventFailed
)

// Event - событие жизненного цикла или прогресса воспроизведения
type Event struct {
	Kind     EventKind
	Position time.Duration // Текущая позиция (EventPosition)
	Duration time.Duration // Общая длительность (EventReady)
	Playing  bool          // Новое состояние (EventPlayState)
	Err      error         // Причина ошибки (EventFailed)
}

var (
	// ErrNotReady возвращается для транспортных команд до готовности
	ErrNotReady = errors.New("аудио еще не готово")
	// ErrUnsupportedFormat возвращается для неподдерживаемого расширения файла
	ErrUnsupportedFormat = errors.New("неподдерживаемый формат аудио")
	// ErrEmptyStream возвращается для аудио нулевой длительности
	ErrEmptyStream = errors.New("аудиофайл не содержит данных")
)

// Adapter управляет одним аудиоисточником. После Close экземпляр не используется:
// для нового файла создается новый адаптер.
type Adapter interface {
	// Load начинает асинхронную загрузку; результат приходит событием Ready или Failed
	Load(path string)
	// Events возвращает канал событий адаптера
	Events() <-chan Event
	// Done закрывается при Close
	Done() <-chan struct{}
	State() State
	Position() time.Duration
	Duration() time.Duration
	// Peaks возвращает нормированные пики волновой формы в диапазоне [0,1]
	Peaks() []float64
	Play() error
	Pause()
	TogglePlayPause() error
	// SeekToFraction переходит к доле f длительности, f ограничивается [0,1]
	SeekToFraction(f float64) error
	Close() error
}

// Factory создает новый адаптер
type Factory func() Adapter

// ClampFraction ограничивает долю диапазоном [0,1]
func ClampFraction(f float64) float64 {
	if f != f || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
