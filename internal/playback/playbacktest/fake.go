// Package playbacktest содержит управляемый из тестов адаптер воспроизведения
package playbacktest

import (
	"sync"
	"time"

	"github.com/hazadus/go-annotator/internal/playback"
)

// Fake реализует playback.Adapter без звука; события генерируются вызовами из теста
type Fake struct {
	mutex    sync.Mutex
	events   chan playback.Event
	done     chan struct{}
	closed   bool
	state    playback.State
	path     string
	position time.Duration
	duration time.Duration
	peaks    []float64

	Seeks     []float64 // Аргументы SeekToFraction
	PlayCalls int
}

// New создает новый Fake
func New() *Fake {
	return &Fake{
		events: make(chan playback.Event, 64),
		done:   make(chan struct{}),
	}
}

// Factory возвращает фабрику, запоминающую все созданные адаптеры
func Factory(created *[]*Fake) playback.Factory {
	return func() playback.Adapter {
		f := New()
		*created = append(*created, f)
		return f
	}
}

// Load запоминает путь и переводит адаптер в состояние загрузки
func (f *Fake) Load(path string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.path = path
	f.state = playback.Loading
}

// Path возвращает путь, переданный в Load
func (f *Fake) Path() string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.path
}

// BecomeReady переводит адаптер в готовое состояние и возвращает событие Ready
func (f *Fake) BecomeReady(duration time.Duration) playback.Event {
	f.mutex.Lock()
	f.state = playback.Ready
	f.duration = duration
	f.peaks = []float64{0.2, 1, 0.5}
	f.mutex.Unlock()
	return f.send(playback.Event{Kind: playback.EventReady, Duration: duration})
}

// BecomeFailed переводит адаптер в состояние ошибки и возвращает событие Failed
func (f *Fake) BecomeFailed(err error) playback.Event {
	f.mutex.Lock()
	f.state = playback.Failed
	f.mutex.Unlock()
	return f.send(playback.Event{Kind: playback.EventFailed, Err: err})
}

// Finish имитирует окончание воспроизведения
func (f *Fake) Finish() playback.Event {
	f.mutex.Lock()
	f.state = playback.Finished
	f.position = f.duration
	f.mutex.Unlock()
	return f.send(playback.Event{Kind: playback.EventFinished})
}

// SetPosition устанавливает текущую позицию
func (f *Fake) SetPosition(d time.Duration) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.position = d
}

// Closed сообщает, был ли вызван Close
func (f *Fake) Closed() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.closed
}

func (f *Fake) send(ev playback.Event) playback.Event {
	select {
	case f.events <- ev:
	default:
	}
	return ev
}

// Events возвращает канал событий
func (f *Fake) Events() <-chan playback.Event { return f.events }

// Done закрывается при Close
func (f *Fake) Done() <-chan struct{} { return f.done }

// State возвращает текущее состояние
func (f *Fake) State() playback.State {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.state
}

// Position возвращает текущую позицию
func (f *Fake) Position() time.Duration {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.position
}

// Duration возвращает длительность
func (f *Fake) Duration() time.Duration {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.duration
}

// Peaks возвращает пики волновой формы
func (f *Fake) Peaks() []float64 {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.peaks
}

// Play переводит адаптер в состояние воспроизведения
func (f *Fake) Play() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if !f.state.HasDuration() {
		return playback.ErrNotReady
	}
	f.PlayCalls++
	f.state = playback.Playing
	return nil
}

// Pause ставит воспроизведение на паузу
func (f *Fake) Pause() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.state == playback.Playing {
		f.state = playback.Paused
	}
}

// TogglePlayPause переключает воспроизведение и паузу
func (f *Fake) TogglePlayPause() error {
	if f.State() == playback.Playing {
		f.Pause()
		return nil
	}
	return f.Play()
}

// SeekToFraction запоминает долю и переставляет позицию
func (f *Fake) SeekToFraction(fraction float64) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if !f.state.HasDuration() {
		return playback.ErrNotReady
	}
	fraction = playback.ClampFraction(fraction)
	f.Seeks = append(f.Seeks, fraction)
	f.position = time.Duration(fraction * float64(f.duration))
	return nil
}

// Close закрывает адаптер
func (f *Fake) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if !f.closed {
		f.closed = true
		close(f.done)
	}
	f.state = playback.Unloaded
	return nil
}
