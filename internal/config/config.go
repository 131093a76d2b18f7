// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-annotator/internal/store"
)

// DefaultPath - путь к файлу конфигурации по умолчанию
const DefaultPath = "~/.annotator/config.yaml"

// Типы хранилищ комментариев
const (
	BackendYAML   = store.BackendYAML
	BackendSQLite = store.BackendSQLite
	BackendMemory = store.BackendMemory
)

// Config структура для хранения конфигурации приложения
type Config struct {
	StoreBackend string        `yaml:"store_backend"`
	StorePath    string        `yaml:"store_path"`
	LogFile      string        `yaml:"log_file"`
	LogLevel     string        `yaml:"log_level"`
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
	MusicDir     string        `yaml:"music_dir"`
}

// Default возвращает конфигурацию по умолчанию с раскрытыми путями
func Default() (*Config, error) {
	config := &Config{}
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Если файла нет, возвращаются значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	path, err := ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	config := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Работаем со значениями по умолчанию
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
		}
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyDefaults заполняет пустые поля и раскрывает тильду в путях
func (c *Config) applyDefaults() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	if c.StoreBackend == "" {
		c.StoreBackend = BackendYAML
	}
	if c.StorePath == "" {
		switch c.StoreBackend {
		case BackendSQLite:
			c.StorePath = "~/.annotator/comments.db"
		default:
			c.StorePath = "~/.annotator/comments.yaml"
		}
	}
	if c.LogFile == "" {
		c.LogFile = "~/.annotator/annotator.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ReadyTimeout == 0 {
		c.ReadyTimeout = 15 * time.Second
	}
	if c.MusicDir == "" {
		c.MusicDir = "~"
	}

	var err error
	for _, p := range []*string{&c.StorePath, &c.LogFile, &c.MusicDir} {
		if *p, err = ExpandHome(*p); err != nil {
			return err
		}
	}
	return nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendYAML, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("неизвестный тип хранилища: %q", c.StoreBackend)
	}
	if c.ReadyTimeout < 0 {
		return fmt.Errorf("некорректный ready_timeout: %s", c.ReadyTimeout)
	}
	return nil
}

// ExpandHome заменяет ведущую тильду домашним каталогом
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
