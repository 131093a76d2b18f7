package playback

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"
)

const (
	// PeakCount - количество столбцов волновой формы
	PeakCount = 120
	// speakerSampleRate - частота, на которой работает динамик; потоки ресемплируются к ней
	speakerSampleRate beep.SampleRate = 44100
	progressInterval                  = 500 * time.Millisecond
	resampleQuality                   = 4
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// initSpeaker инициализирует динамик один раз на процесс
func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("ошибка инициализации динамиков: %w", speakerErr)
	}
	return nil
}

// BeepAdapter воспроизводит локальные mp3 и wav файлы через beep
type BeepAdapter struct {
	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	mutex    sync.Mutex
	state    State
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	peaks    []float64
	duration time.Duration
}

// NewBeepAdapter создает адаптер без загруженного источника
func NewBeepAdapter(logger *zap.Logger) *BeepAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BeepAdapter{
		events: make(chan Event, 16),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Events возвращает канал событий
func (p *BeepAdapter) Events() <-chan Event {
	return p.events
}

// Done закрывается при вызове Close
func (p *BeepAdapter) Done() <-chan struct{} {
	return p.ctx.Done()
}

// Load начинает декодирование файла в отдельной горутине
func (p *BeepAdapter) Load(path string) {
	p.mutex.Lock()
	if p.state != Unloaded || p.ctx.Err() != nil {
		p.mutex.Unlock()
		return
	}
	p.state = Loading
	p.path = path
	p.mutex.Unlock()

	go p.load(path)
}

func (p *BeepAdapter) load(path string) {
	started := time.Now()

	streamer, format, err := decodeFile(path)
	if err != nil {
		p.fail(err)
		return
	}

	if streamer.Len() <= 0 {
		streamer.Close()
		p.fail(ErrEmptyStream)
		return
	}

	peaks, err := computePeaks(streamer, streamer.Len(), PeakCount)
	if err == nil {
		err = streamer.Seek(0)
	}
	if err != nil {
		streamer.Close()
		p.fail(fmt.Errorf("ошибка анализа аудио: %w", err))
		return
	}

	duration := format.SampleRate.D(streamer.Len())

	p.mutex.Lock()
	if p.ctx.Err() != nil {
		// Адаптер закрыт во время загрузки
		p.mutex.Unlock()
		streamer.Close()
		return
	}
	p.streamer = streamer
	p.format = format
	p.peaks = peaks
	p.duration = duration
	p.state = Ready
	p.mutex.Unlock()

	p.logger.Info("audio ready",
		zap.String("path", path),
		zap.Duration("duration", duration),
		zap.Int("sample_rate", int(format.SampleRate)),
		zap.Duration("elapsed", time.Since(started)))

	p.emit(Event{Kind: EventReady, Duration: duration})
}

// fail переводит адаптер в состояние ошибки и уведомляет подписчика
func (p *BeepAdapter) fail(err error) {
	p.mutex.Lock()
	if p.ctx.Err() != nil {
		p.mutex.Unlock()
		return
	}
	p.state = Failed
	path := p.path
	p.mutex.Unlock()

	p.logger.Warn("audio load failed", zap.String("path", path), zap.Error(err))
	p.emit(Event{Kind: EventFailed, Err: err})
}

// State возвращает текущее состояние
func (p *BeepAdapter) State() State {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.state
}

// Duration возвращает длительность загруженного аудио
func (p *BeepAdapter) Duration() time.Duration {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.duration
}

// Peaks возвращает копию пиков волновой формы
func (p *BeepAdapter) Peaks() []float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	out := make([]float64, len(p.peaks))
	copy(out, p.peaks)
	return out
}

// Position возвращает текущую позицию воспроизведения
func (p *BeepAdapter) Position() time.Duration {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.positionLocked()
}

// positionLocked должен вызываться под мьютексом
func (p *BeepAdapter) positionLocked() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(pos)
}

// Play запускает или возобновляет воспроизведение
func (p *BeepAdapter) Play() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	switch p.state {
	case Playing:
		return nil
	case Ready, Paused, Finished:
	default:
		return ErrNotReady
	}

	if err := initSpeaker(); err != nil {
		return err
	}

	if p.ctrl == nil {
		// Поток либо еще не запускался, либо доиграл до конца
		if p.state == Finished {
			if err := p.streamer.Seek(0); err != nil {
				return fmt.Errorf("ошибка перемотки: %w", err)
			}
		}

		ctrl := &beep.Ctrl{
			Streamer: beep.Resample(resampleQuality, p.format.SampleRate, speakerSampleRate, p.streamer),
			Paused:   false,
		}
		p.ctrl = ctrl

		speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
			// Колбэк вызывается под блокировкой динамика, поэтому уходим в горутину
			go p.finish(ctrl)
		})))

		go p.monitorProgress(ctrl)
	} else {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
	}

	p.state = Playing
	p.notify(Event{Kind: EventPlayState, Playing: true})
	return nil
}

// Pause приостанавливает воспроизведение
func (p *BeepAdapter) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.state != Playing || p.ctrl == nil {
		return
	}

	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()

	p.state = Paused
	p.notify(Event{Kind: EventPlayState, Playing: false})
}

// TogglePlayPause переключает воспроизведение и паузу
func (p *BeepAdapter) TogglePlayPause() error {
	if p.State() == Playing {
		p.Pause()
		return nil
	}
	return p.Play()
}

// SeekToFraction переходит к доле длительности
func (p *BeepAdapter) SeekToFraction(f float64) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.state.HasDuration() || p.streamer == nil {
		return ErrNotReady
	}

	target := int(math.Round(ClampFraction(f) * float64(p.streamer.Len())))

	speaker.Lock()
	err := p.streamer.Seek(target)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}

	if p.state == Finished {
		p.state = Paused
	}
	return nil
}

// Close останавливает воспроизведение и освобождает ресурсы
func (p *BeepAdapter) Close() error {
	p.cancel()

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
	}

	var err error
	if p.streamer != nil {
		err = p.streamer.Close()
		p.streamer = nil
	}

	p.state = Unloaded
	return err
}

// finish обрабатывает окончание потока
func (p *BeepAdapter) finish(ctrl *beep.Ctrl) {
	p.mutex.Lock()
	if p.ctrl != ctrl || p.ctx.Err() != nil {
		p.mutex.Unlock()
		return
	}
	p.ctrl = nil
	p.state = Finished
	p.mutex.Unlock()

	p.emit(Event{Kind: EventFinished})
	p.notify(Event{Kind: EventPlayState, Playing: false})
}

// monitorProgress периодически отправляет текущую позицию, пока поток активен
func (p *BeepAdapter) monitorProgress(ctrl *beep.Ctrl) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.mutex.Lock()
			if p.ctrl != ctrl {
				p.mutex.Unlock()
				return
			}
			playing := p.state == Playing
			pos := p.positionLocked()
			p.mutex.Unlock()

			if playing {
				p.notify(Event{Kind: EventPosition, Position: pos})
			}
		}
	}
}

// emit доставляет важное событие, ожидая читателя до закрытия адаптера
func (p *BeepAdapter) emit(ev Event) {
	select {
	case p.events <- ev:
	case <-p.ctx.Done():
	}
}

// notify доставляет событие без ожидания; при переполненном канале событие пропускается
func (p *BeepAdapter) notify(ev Event) {
	select {
	case p.events <- ev:
	default:
	}
}

// decodeFile открывает и декодирует файл по его расширению
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".mp3" && ext != ".wav" {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("ошибка открытия файла: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".wav":
		streamer, format, err = wav.Decode(file)
	}
	if err != nil {
		file.Close()
		return nil, beep.Format{}, fmt.Errorf("ошибка декодирования %s: %w", ext, err)
	}
	return streamer, format, nil
}

// computePeaks читает поток целиком и возвращает нормированные пики по count интервалам
func computePeaks(s beep.Streamer, total, count int) ([]float64, error) {
	if total <= 0 || count <= 0 {
		return nil, nil
	}
	if count > total {
		count = total
	}
	bucket := (total + count - 1) / count

	peaks := make([]float64, count)
	buf := make([][2]float64, 512)
	index := 0

	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			slot := index / bucket
			if slot >= count {
				slot = count - 1
			}
			v := math.Max(math.Abs(buf[i][0]), math.Abs(buf[i][1]))
			if v > peaks[slot] {
				peaks[slot] = v
			}
			index++
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	maxPeak := 0.0
	for _, v := range peaks {
		maxPeak = math.Max(maxPeak, v)
	}
	if maxPeak > 0 {
		for i := range peaks {
			peaks[i] /= maxPeak
		}
	}
	return peaks, nil
}
