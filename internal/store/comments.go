package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hazadus/go-annotator/internal/comment"
)

// KeyPrefix - пространство имен ключей с комментариями
const KeyPrefix = "audioCommentsApp_comments_"

var (
	// ErrNoIdentity возвращается, если имя аудиофайла не задано
	ErrNoIdentity = errors.New("не задано имя аудиофайла")
	// ErrCorruptRecord возвращается, если сохраненные данные не удалось разобрать
	ErrCorruptRecord = errors.New("поврежденная запись комментариев")
)

// CommentStore сохраняет списки комментариев по имени аудиофайла
type CommentStore struct {
	backend Backend
	logger  *zap.Logger
}

// NewCommentStore создает хранилище комментариев поверх Backend
func NewCommentStore(backend Backend, logger *zap.Logger) *CommentStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentStore{backend: backend, logger: logger}
}

// Key возвращает ключ записи для имени аудиофайла
func Key(identity string) string {
	return KeyPrefix + identity
}

// Save перезаписывает список комментариев для аудиофайла
func (s *CommentStore) Save(identity string, list []comment.Comment) error {
	if identity == "" {
		return ErrNoIdentity
	}
	if list == nil {
		list = []comment.Comment{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("ошибка сериализации комментариев: %w", err)
	}
	if err := s.backend.Set(Key(identity), string(data)); err != nil {
		return fmt.Errorf("ошибка сохранения комментариев: %w", err)
	}

	s.logger.Debug("comments saved",
		zap.String("identity", identity),
		zap.Int("count", len(list)))
	return nil
}

// Load возвращает список комментариев для аудиофайла.
// Если записи нет, возвращается пустой список. Если запись повреждена,
// возвращается пустой список и ошибка ErrCorruptRecord; сама запись не меняется.
func (s *CommentStore) Load(identity string) ([]comment.Comment, error) {
	if identity == "" {
		return nil, ErrNoIdentity
	}

	raw, ok, err := s.backend.Get(Key(identity))
	if err != nil {
		return []comment.Comment{}, fmt.Errorf("ошибка чтения комментариев: %w", err)
	}
	if !ok {
		return []comment.Comment{}, nil
	}

	var list []comment.Comment
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("corrupt comment record",
			zap.String("identity", identity),
			zap.Error(err))
		return []comment.Comment{}, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, identity, err)
	}
	if list == nil {
		list = []comment.Comment{}
	}

	return comment.Normalize(list), nil
}

// Identities возвращает имена аудиофайлов, для которых есть сохраненные комментарии
func (s *CommentStore) Identities() ([]string, error) {
	keys, err := s.backend.Keys(KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}

	identities := make([]string, 0, len(keys))
	for _, k := range keys {
		identities = append(identities, strings.TrimPrefix(k, KeyPrefix))
	}
	return identities, nil
}

// Close закрывает нижележащее хранилище
func (s *CommentStore) Close() error {
	return s.backend.Close()
}
