// Package source описывает входные аудиофайлы плеера: локальные, HTTP и S3
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnsupportedScheme возвращается для ссылок с неизвестной схемой
var ErrUnsupportedScheme = errors.New("неподдерживаемая схема")

// File - входной аудиофайл. ID служит ключом для исключения дубликатов
type File interface {
	ID() string
	Name() string
	ReadAll(ctx context.Context) ([]byte, error)
}

// ObjectDownloader скачивает объект из S3 целиком
type ObjectDownloader interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// Options настраивает Open
type Options struct {
	HTTPClient *http.Client
	S3         ObjectDownloader
	// OnProgress вызывается при загрузке удаленных файлов
	OnProgress func(read, total int64)
}

// Open выбирает реализацию File по ссылке: http(s)://, s3:// или путь на диске
func Open(ref string, opts Options) (File, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("пустая ссылка на файл")
	}

	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		client := opts.HTTPClient
		if client == nil {
			client = NewHTTPClient(0)
		}
		h, err := NewHTTP(ref, client)
		if err != nil {
			return nil, err
		}
		h.OnProgress = opts.OnProgress
		return h, nil
	case strings.HasPrefix(ref, "s3://"):
		if opts.S3 == nil {
			return nil, fmt.Errorf("%s: S3 не настроен", ref)
		}
		bucket, key, err := ParseS3URL(ref)
		if err != nil {
			return nil, err
		}
		return NewS3(bucket, key, opts.S3), nil
	case strings.Contains(ref, "://"):
		return nil, fmt.Errorf("%s: %w", ref, ErrUnsupportedScheme)
	default:
		return NewLocal(ref)
	}
}

// NewHTTPClient создает клиент с настройками транспорта для загрузки аудио.
// timeout <= 0 означает отсутствие общего таймаута
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}
