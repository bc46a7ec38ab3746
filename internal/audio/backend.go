// Package audio содержит декодирование аудио в память и вывод на устройство
package audio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedFormat возвращается, если формат файла не удалось определить
var ErrUnsupportedFormat = errors.New("неподдерживаемый формат аудио")

// ErrRendererStarted возвращается при повторном запуске одного и того же рендерера
var ErrRendererStarted = errors.New("рендерер уже запущен")

// DecodeError описывает ошибку превращения сырых байт в воспроизводимое аудио
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ошибка декодирования %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Buffer - декодированные, неизменяемые аудиоданные с произвольным доступом
type Buffer interface {
	Duration() time.Duration
}

// Renderer - живое подключение буфера к устройству вывода.
// Каждый рендерер запускается не более одного раза.
type Renderer interface {
	// Start начинает вывод с указанного смещения от начала буфера
	Start(offset time.Duration) error
	// Stop прекращает вывод. Уведомление о конце потока после Stop не приходит.
	Stop()
	// Disconnect отвязывает рендерер от устройства и обработчика конца потока
	Disconnect()
	// OnEnded задает обработчик естественного окончания буфера.
	// Обработчик вызывается в отдельной горутине.
	OnEnded(fn func())
}

// Backend декодирует аудио и создает рендереры для вывода
type Backend interface {
	Decode(ctx context.Context, name string, data []byte) (Buffer, error)
	NewRenderer(buf Buffer) (Renderer, error)
	// Now возвращает показания монотонных часов устройства
	Now() time.Duration
	Close() error
}
