// Package comment содержит модель комментария к аудиофайлу и операции над списком комментариев
package comment

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyText возвращается для комментария без текста
	ErrEmptyText = errors.New("текст комментария не может быть пустым")
	// ErrInvalidTimestamp возвращается для отрицательной или нечисловой позиции
	ErrInvalidTimestamp = errors.New("некорректная позиция комментария")
)

// Comment представляет комментарий, привязанный к позиции в аудио
type Comment struct {
	ID        string  `json:"id,omitempty"`
	Timestamp float64 `json:"timestamp"` // Позиция в секундах
	Text      string  `json:"text"`
}

// New создает комментарий с новым уникальным идентификатором.
// Текст обрезается по краям.
func New(timestamp float64, text string) (Comment, error) {
	if math.IsNaN(timestamp) || math.IsInf(timestamp, 0) || timestamp < 0 {
		return Comment{}, ErrInvalidTimestamp
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrEmptyText
	}
	return Comment{
		ID:        uuid.NewString(),
		Timestamp: timestamp,
		Text:      text,
	}, nil
}

// Same сообщает, совпадают ли позиция и текст комментария с переданными
func (c Comment) Same(timestamp float64, text string) bool {
	return c.Timestamp == timestamp && c.Text == text
}

// Sorted возвращает копию списка, упорядоченную по возрастанию позиции.
// Исходный список не меняется.
func Sorted(list []Comment) []Comment {
	out := make([]Comment, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// RemoveMatching удаляет все комментарии с точно совпадающими позицией и текстом.
// Возвращает новый список и количество удаленных записей.
func RemoveMatching(list []Comment, timestamp float64, text string) ([]Comment, int) {
	out := make([]Comment, 0, len(list))
	for _, c := range list {
		if c.Same(timestamp, text) {
			continue
		}
		out = append(out, c)
	}
	return out, len(list) - len(out)
}

// RemoveByID удаляет комментарий с указанным идентификатором
func RemoveByID(list []Comment, id string) ([]Comment, bool) {
	for i := range list {
		if list[i].ID == id {
			out := make([]Comment, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}

// Normalize назначает идентификаторы записям, сохраненным без них
func Normalize(list []Comment) []Comment {
	for i := range list {
		if list[i].ID == "" {
			list[i].ID = uuid.NewString()
		}
	}
	return list
}
