package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type yamlDocument struct {
	Records map[string]string `yaml:"records"`
}

// YAMLFile хранит записи в одном YAML файле.
// Файл перезаписывается целиком при каждом изменении.
type YAMLFile struct {
	mu      sync.RWMutex
	path    string
	records map[string]string
}

// OpenYAMLFile загружает записи из файла. Отсутствующий или пустой файл дает пустое хранилище.
func OpenYAMLFile(path string) (*YAMLFile, error) {
	f := &YAMLFile{
		path:    path,
		records: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("ошибка чтения файла данных: %w", err)
	}
	if len(data) == 0 {
		return f, nil
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ошибка разбора данных: %w", err)
	}
	if doc.Records != nil {
		f.records = doc.Records
	}
	return f, nil
}

// Get возвращает значение по ключу
func (f *YAMLFile) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	value, ok := f.records[key]
	return value, ok, nil
}

// Set записывает значение и сохраняет файл
func (f *YAMLFile) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.records[key]
	f.records[key] = value
	if err := f.flush(); err != nil {
		// Откатываем изменение в памяти, чтобы не расходиться с файлом
		if existed {
			f.records[key] = prev
		} else {
			delete(f.records, key)
		}
		return err
	}
	return nil
}

// Keys возвращает отсортированные ключи с указанным префиксом
func (f *YAMLFile) Keys(prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return filterKeys(f.records, prefix), nil
}

// Close ничего не делает: данные уже записаны
func (f *YAMLFile) Close() error {
	return nil
}

// flush записывает файл через временный файл (должен вызываться под мьютексом)
func (f *YAMLFile) flush() error {
	data, err := yaml.Marshal(yamlDocument{Records: f.records})
	if err != nil {
		return fmt.Errorf("ошибка сериализации данных: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога данных: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".annotator-*.yaml")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи файла данных: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи файла данных: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("ошибка замены файла данных: %w", err)
	}
	return nil
}
