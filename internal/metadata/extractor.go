// Package metadata извлекает теги аудиофайлов для заголовка экрана аннотаций
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// UnknownArtist подставляется, если исполнителя не удалось определить
const UnknownArtist = "Unknown Artist"

// TrackMetadata хранит метаданные трека
type TrackMetadata struct {
	Artist   string
	Title    string
	Album    string
	FromTags bool // Данные прочитаны из тегов, а не из имени файла
}

// String возвращает строку "Исполнитель - Название" для заголовка
func (m TrackMetadata) String() string {
	switch {
	case m.Artist == "" || m.Artist == UnknownArtist:
		return m.Title
	case m.Title == "":
		return m.Artist
	default:
		return fmt.Sprintf("%s - %s", m.Artist, m.Title)
	}
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает метаданные из io.ReadSeeker.
// source используется для разбора имени, если тегов нет.
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackMetadata {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return e.getDefaultMetadata(source)
	}

	metadata, err := tag.ReadFrom(reader)
	if err != nil {
		return e.getDefaultMetadata(source)
	}

	result := TrackMetadata{
		Artist:   strings.TrimSpace(metadata.Artist()),
		Title:    strings.TrimSpace(metadata.Title()),
		Album:    strings.TrimSpace(metadata.Album()),
		FromTags: true,
	}
	if result.Artist == "" && result.Title == "" {
		// Теги есть, но пустые
		fallback := e.getDefaultMetadata(source)
		fallback.Album = result.Album
		return fallback
	}
	return result
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return e.getDefaultMetadata(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// getDefaultMetadata возвращает метаданные по умолчанию на основе имени файла
func (e *Extractor) getDefaultMetadata(source string) TrackMetadata {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// Пытаемся разобрать имя файла в формате "Artist - Title"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackMetadata{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return TrackMetadata{
		Artist: UnknownArtist,
		Title:  nameWithoutExt,
	}
}
