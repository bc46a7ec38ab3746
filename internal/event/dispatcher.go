// Package event содержит примитив рассылки уведомлений подписчикам
package event

import "sync"

// Dispatcher хранит упорядоченный список обработчиков и синхронно вызывает их.
//
// Паника в обработчике не перехватывается: она прерывает рассылку и уходит
// вызывающему Emit. Ответственность за устойчивость несут сами обработчики.
type Dispatcher[T any] struct {
	mu       sync.RWMutex
	handlers []func(T)
}

// NewDispatcher создает пустой диспетчер
func NewDispatcher[T any]() *Dispatcher[T] {
	return &Dispatcher[T]{}
}

// Listen регистрирует обработчик. Обработчики вызываются в порядке регистрации.
func (d *Dispatcher[T]) Listen(handler func(T)) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
}

// Emit вызывает все зарегистрированные обработчики с одним и тем же аргументом
func (d *Dispatcher[T]) Emit(value T) {
	// Копируем срез, чтобы обработчик мог регистрировать новых подписчиков
	d.mu.RLock()
	handlers := make([]func(T), len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, handler := range handlers {
		handler(value)
	}
}

// Len возвращает количество зарегистрированных обработчиков
func (d *Dispatcher[T]) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}
