package store

import "fmt"

// Типы хранилищ, поддерживаемые конфигурацией
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open открывает хранилище указанного типа
func Open(kind, path string) (Backend, error) {
	switch kind {
	case BackendYAML:
		return OpenYAMLFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища: %q", kind)
	}
}
