package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local - файл на локальном диске
type Local struct {
	path string
}

// NewLocal создает Local с абсолютным путем
func NewLocal(path string) (*Local, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить абсолютный путь: %w", err)
	}
	return &Local{path: abs}, nil
}

// ID возвращает абсолютный путь
func (l *Local) ID() string { return l.path }

// Name возвращает имя файла
func (l *Local) Name() string { return filepath.Base(l.path) }

// Path возвращает абсолютный путь к файлу
func (l *Local) Path() string { return l.path }

// ReadAll читает файл целиком
func (l *Local) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	return data, nil
}
