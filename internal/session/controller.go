// Package session содержит контроллер сессии: активный аудиофайл и его комментарии
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hazadus/go-annotator/internal/comment"
	"github.com/hazadus/go-annotator/internal/playback"
)

var (
	// ErrNoFile возвращается при выборе пустого пути
	ErrNoFile = errors.New("файл не выбран")
	// ErrNoAudio возвращается при добавлении комментария без загруженного аудио
	ErrNoAudio = errors.New("сначала загрузите аудиофайл")
	// ErrEmptyComment возвращается для пустого текста комментария
	ErrEmptyComment = errors.New("комментарий не может быть пустым")
	// ErrNotReady возвращается для управления воспроизведением до готовности аудио
	ErrNotReady = errors.New("аудио еще загружается")
	// ErrLoadTimeout фиксируется, если аудио не стало готовым вовремя
	ErrLoadTimeout = errors.New("аудио не удалось загрузить за отведенное время")
)

// Store сохраняет и загружает комментарии по имени аудиофайла
type Store interface {
	Save(identity string, list []comment.Comment) error
	Load(identity string) ([]comment.Comment, error)
}

// state - состояние сессии; заменяется целиком при выборе нового файла
type state struct {
	identity    string
	comments    []comment.Comment // В порядке добавления
	adapter     playback.Adapter
	generation  uint64
	phase       playback.State
	readyFired  bool
	lastErr     error
	commentsErr error
}

// Controller - единственный владелец состояния сессии и единственный, кто пишет в хранилище
type Controller struct {
	store   Store
	factory playback.Factory
	logger  *zap.Logger

	generation uint64
	state      state
}

// NewController создает контроллер без выбранного файла
func NewController(store Store, factory playback.Factory, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:   store,
		factory: factory,
		logger:  logger,
		state:   state{comments: []comment.Comment{}},
	}
}

// SelectAudio делает файл активным: сбрасывает адаптер и список комментариев.
// Комментарии загружаются при первом событии Ready нового адаптера.
func (c *Controller) SelectAudio(path string) (uint64, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, ErrNoFile
	}

	if c.state.adapter != nil {
		if err := c.state.adapter.Close(); err != nil {
			c.logger.Warn("close previous adapter", zap.Error(err))
		}
	}

	c.generation++
	adapter := c.factory()
	c.state = state{
		identity:   filepath.Base(path),
		comments:   []comment.Comment{},
		adapter:    adapter,
		generation: c.generation,
		phase:      playback.Loading,
	}

	c.logger.Info("audio selected",
		zap.String("path", path),
		zap.String("identity", c.state.identity),
		zap.Uint64("generation", c.generation))

	adapter.Load(path)
	return c.generation, nil
}

// HandleEvent применяет событие адаптера. События устаревших адаптеров игнорируются.
// Возвращает true, если событие относится к активному адаптеру.
func (c *Controller) HandleEvent(generation uint64, ev playback.Event) bool {
	if c.state.adapter == nil || generation != c.state.generation {
		return false
	}

	switch ev.Kind {
	case playback.EventReady:
		switch {
		case c.state.phase == playback.Loading:
			c.state.phase = playback.Ready
		case c.state.phase == playback.Failed && errors.Is(c.state.lastErr, ErrLoadTimeout):
			// Аудио все же загрузилось после таймаута
			c.state.phase = playback.Ready
			c.state.lastErr = nil
		}
		if !c.state.readyFired {
			c.state.readyFired = true
			c.loadComments()
		}

	case playback.EventPlayState:
		if !c.state.phase.HasDuration() {
			break
		}
		if ev.Playing {
			c.state.phase = playback.Playing
		} else if c.state.phase == playback.Playing {
			c.state.phase = playback.Paused
		}

	case playback.EventFinished:
		c.state.phase = playback.Finished

	case playback.EventFailed:
		c.state.phase = playback.Failed
		c.state.lastErr = ev.Err
		c.logger.Warn("audio failed",
			zap.String("identity", c.state.identity),
			zap.Error(ev.Err))
	}
	return true
}

// HandleLoadTimeout переводит зависшую загрузку в состояние ошибки
func (c *Controller) HandleLoadTimeout(generation uint64) bool {
	if generation != c.state.generation || c.state.phase != playback.Loading {
		return false
	}
	c.state.phase = playback.Failed
	c.state.lastErr = ErrLoadTimeout
	c.logger.Warn("audio load timeout", zap.String("identity", c.state.identity))
	return true
}

// loadComments загружает комментарии активного файла.
// Поврежденная запись заменяется пустым списком до следующего сохранения.
func (c *Controller) loadComments() {
	list, err := c.store.Load(c.state.identity)
	if err != nil {
		c.logger.Warn("load comments",
			zap.String("identity", c.state.identity),
			zap.Error(err))
		c.state.commentsErr = fmt.Errorf("комментарии не загружены: %w", err)
		list = []comment.Comment{}
	}
	if list == nil {
		list = []comment.Comment{}
	}
	c.state.comments = list

	c.logger.Info("comments loaded",
		zap.String("identity", c.state.identity),
		zap.Int("count", len(list)))
}

// ready сообщает, загружено ли аудио и известна ли его длительность
func (c *Controller) ready() bool {
	return c.state.adapter != nil &&
		c.state.phase.HasDuration() &&
		c.state.adapter.Duration() > 0
}

// AddComment добавляет комментарий в текущей позиции воспроизведения
func (c *Controller) AddComment(text string) (comment.Comment, error) {
	if c.state.identity == "" || !c.ready() {
		return comment.Comment{}, ErrNoAudio
	}
	if strings.TrimSpace(text) == "" {
		return comment.Comment{}, ErrEmptyComment
	}

	timestamp := c.state.adapter.Position().Seconds()
	added, err := comment.New(timestamp, text)
	if err != nil {
		return comment.Comment{}, err
	}

	c.state.comments = append(c.state.comments, added)
	c.state.commentsErr = nil

	c.logger.Debug("comment added",
		zap.String("identity", c.state.identity),
		zap.String("id", added.ID),
		zap.Float64("timestamp", added.Timestamp))

	return added, c.persist()
}

// DeleteComment удаляет все комментарии с точно совпадающими позицией и текстом
func (c *Controller) DeleteComment(timestamp float64, text string) (int, error) {
	if c.state.identity == "" {
		return 0, nil
	}

	var removed int
	c.state.comments, removed = comment.RemoveMatching(c.state.comments, timestamp, text)
	if removed == 0 {
		return 0, nil
	}
	return removed, c.persist()
}

// DeleteCommentByID удаляет комментарий по идентификатору
func (c *Controller) DeleteCommentByID(id string) (bool, error) {
	if c.state.identity == "" {
		return false, nil
	}

	var removed bool
	c.state.comments, removed = comment.RemoveByID(c.state.comments, id)
	if !removed {
		return false, nil
	}
	return true, c.persist()
}

// persist сохраняет полный список активного файла
func (c *Controller) persist() error {
	if err := c.store.Save(c.state.identity, c.state.comments); err != nil {
		c.logger.Error("save comments",
			zap.String("identity", c.state.identity),
			zap.Error(err))
		return err
	}
	return nil
}

// SeekToComment переходит к позиции комментария и запускает воспроизведение
func (c *Controller) SeekToComment(timestamp float64) error {
	if !c.ready() {
		return ErrNotReady
	}

	duration := c.state.adapter.Duration().Seconds()
	if err := c.state.adapter.SeekToFraction(timestamp / duration); err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	if err := c.state.adapter.Play(); err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения: %w", err)
	}
	c.state.phase = playback.Playing
	return nil
}

// SeekBy смещает позицию на delta, не меняя состояние воспроизведения
func (c *Controller) SeekBy(delta time.Duration) error {
	if !c.ready() {
		return ErrNotReady
	}

	duration := c.state.adapter.Duration()
	target := c.state.adapter.Position() + delta
	if err := c.state.adapter.SeekToFraction(float64(target) / float64(duration)); err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	c.state.phase = c.state.adapter.State()
	return nil
}

// TogglePlayback переключает воспроизведение и паузу; без адаптера ничего не делает
func (c *Controller) TogglePlayback() error {
	if c.state.adapter == nil {
		return nil
	}
	if !c.ready() {
		return ErrNotReady
	}

	if err := c.state.adapter.TogglePlayPause(); err != nil {
		return fmt.Errorf("ошибка управления воспроизведением: %w", err)
	}
	c.state.phase = c.state.adapter.State()
	return nil
}

// Identity возвращает имя активного аудиофайла
func (c *Controller) Identity() string {
	return c.state.identity
}

// Comments возвращает отсортированную по позиции копию списка комментариев
func (c *Controller) Comments() []comment.Comment {
	return comment.Sorted(c.state.comments)
}

// Phase возвращает состояние воспроизведения активного файла
func (c *Controller) Phase() playback.State {
	return c.state.phase
}

// Generation возвращает номер текущего выбора файла
func (c *Controller) Generation() uint64 {
	return c.state.generation
}

// Adapter возвращает активный адаптер или nil
func (c *Controller) Adapter() playback.Adapter {
	return c.state.adapter
}

// Position возвращает текущую позицию воспроизведения
func (c *Controller) Position() time.Duration {
	if c.state.adapter == nil {
		return 0
	}
	return c.state.adapter.Position()
}

// Duration возвращает длительность активного файла, если она известна
func (c *Controller) Duration() time.Duration {
	if !c.ready() {
		return 0
	}
	return c.state.adapter.Duration()
}

// Peaks возвращает пики волновой формы активного файла
func (c *Controller) Peaks() []float64 {
	if !c.ready() {
		return nil
	}
	return c.state.adapter.Peaks()
}

// Err возвращает ошибку загрузки аудио, если она была
func (c *Controller) Err() error {
	return c.state.lastErr
}

// CommentsErr возвращает ошибку загрузки комментариев, если она была
func (c *Controller) CommentsErr() error {
	return c.state.commentsErr
}

// Close освобождает активный адаптер
func (c *Controller) Close() error {
	if c.state.adapter == nil {
		return nil
	}
	err := c.state.adapter.Close()
	c.state.adapter = nil
	return err
}
