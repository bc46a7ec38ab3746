package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// BeepConfig содержит настройки устройства вывода
type BeepConfig struct {
	SampleRate      int           // Частота дискретизации устройства
	BufferSize      time.Duration // Размер буфера динамиков
	ResampleQuality int           // Качество передискретизации (1-64)
}

// BeepBackend выводит звук через динамики с помощью beep
type BeepBackend struct {
	sampleRate beep.SampleRate
	quality    int
	epoch      time.Time
}

// NewBeepBackend инициализирует динамики и создает бэкенд
func NewBeepBackend(cfg BeepConfig) (*BeepBackend, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("некорректная частота дискретизации: %d", cfg.SampleRate)
	}
	if cfg.ResampleQuality < 1 || cfg.ResampleQuality > 64 {
		return nil, fmt.Errorf("некорректное качество передискретизации: %d", cfg.ResampleQuality)
	}

	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(cfg.BufferSize)); err != nil {
		return nil, fmt.Errorf("ошибка инициализации динамиков: %w", err)
	}

	return &BeepBackend{
		sampleRate: sr,
		quality:    cfg.ResampleQuality,
		epoch:      time.Now(),
	}, nil
}

// Decode декодирует данные в буфер с частотой устройства
func (b *BeepBackend) Decode(ctx context.Context, name string, data []byte) (Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DecodeBytes(name, data, b.sampleRate, b.quality)
}

// NewRenderer создает рендерер для буфера, декодированного этим бэкендом
func (b *BeepBackend) NewRenderer(buf Buffer) (Renderer, error) {
	bb, ok := buf.(*BeepBuffer)
	if !ok {
		return nil, fmt.Errorf("буфер %T не поддерживается бэкендом beep", buf)
	}
	if bb.Format().SampleRate != b.sampleRate {
		return nil, fmt.Errorf("частота буфера %d не совпадает с частотой устройства %d",
			bb.Format().SampleRate, b.sampleRate)
	}
	return &beepRenderer{buf: bb}, nil
}

// Now возвращает время, прошедшее с инициализации устройства
func (b *BeepBackend) Now() time.Duration {
	return time.Since(b.epoch)
}

// Close останавливает вывод и освобождает динамики
func (b *BeepBackend) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}

// beepRenderer выводит один буфер через общий микшер динамиков
type beepRenderer struct {
	buf *BeepBuffer

	mu      sync.Mutex
	ctrl    *beep.Ctrl
	onEnded func()
	started bool
	stopped bool
}

func (r *beepRenderer) OnEnded(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEnded = fn
}

func (r *beepRenderer) Start(offset time.Duration) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrRendererStarted
	}
	r.started = true
	r.ctrl = &beep.Ctrl{Streamer: r.buf.streamer(offset)}
	ctrl := r.ctrl
	r.mu.Unlock()

	speaker.Play(beep.Seq(ctrl, beep.Callback(r.finished)))
	return nil
}

// finished вызывается микшером под блокировкой динамиков
func (r *beepRenderer) finished() {
	r.mu.Lock()
	fn := r.onEnded
	stopped := r.stopped
	r.mu.Unlock()

	if stopped || fn == nil {
		return
	}
	// Обработчик может снова обратиться к динамикам, поэтому уходим с их горутины
	go fn()
}

func (r *beepRenderer) Stop() {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	ctrl := r.ctrl
	r.mu.Unlock()

	// Пустой Ctrl завершает последовательность, микшер удалит ее сам
	speaker.Lock()
	ctrl.Streamer = nil
	speaker.Unlock()
}

// Disconnect останавливает вывод, если он еще идет, и забывает обработчик
func (r *beepRenderer) Disconnect() {
	r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEnded = nil
}
