// Package store содержит долговременное хранилище комментариев по имени аудиофайла
package store

import (
	"sort"
	"strings"
	"sync"
)

// Backend описывает простое хранилище ключ-значение
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// Memory хранит записи в памяти процесса
type Memory struct {
	mu      sync.RWMutex
	records map[string]string
}

// NewMemory создает пустое хранилище в памяти
func NewMemory() *Memory {
	return &Memory{records: make(map[string]string)}
}

// Get возвращает значение по ключу
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.records[key]
	return value, ok, nil
}

// Set записывает значение, перезаписывая предыдущее
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = value
	return nil
}

// Keys возвращает отсортированные ключи с указанным префиксом
func (m *Memory) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return filterKeys(m.records, prefix), nil
}

// Close ничего не делает
func (m *Memory) Close() error {
	return nil
}

func filterKeys(records map[string]string, prefix string) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
