// Package player содержит плейлист с одним курсором воспроизведения
package player

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hazadus/turntable/internal/audio"
	"github.com/hazadus/turntable/internal/event"
	"github.com/hazadus/turntable/internal/metadata"
	"github.com/hazadus/turntable/internal/source"
)

// MetadataProvider извлекает обложку и теги из содержимого файла
type MetadataProvider interface {
	// FetchCoverArt возвращает nil, nil, если обложки нет
	FetchCoverArt(ctx context.Context, source string, r io.ReadSeeker) (*metadata.CoverArt, error)
	ExtractFromReader(r io.ReadSeeker, source string) metadata.TrackMetadata
}

// Option настраивает Player
type Option func(*Player)

// WithLogger задает логгер
func WithLogger(logger *zap.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Player управляет плейлистом и выводом текущего трека.
//
// События рассылаются синхронно, после снятия внутренней блокировки, поэтому
// обработчики могут вызывать методы плеера. Паника в обработчике уходит
// вызывающему операцию, которая породила событие.
type Player struct {
	backend audio.Backend
	meta    MetadataProvider
	logger  *zap.Logger

	// appendMu сериализует Append целиком
	appendMu sync.Mutex

	mu       sync.Mutex
	playlist []*Track
	cursor   int

	OnPlay   *event.Dispatcher[*Player]
	OnPause  *event.Dispatcher[*Player]
	OnChange *event.Dispatcher[*Player]
	OnReady  *event.Dispatcher[*Player]
}

// New создает плеер. meta может быть nil: тогда обложки не извлекаются
func New(backend audio.Backend, meta MetadataProvider, opts ...Option) *Player {
	p := &Player{
		backend:  backend,
		meta:     meta,
		logger:   zap.NewNop(),
		OnPlay:   event.NewDispatcher[*Player](),
		OnPause:  event.NewDispatcher[*Player](),
		OnChange: event.NewDispatcher[*Player](),
		OnReady:  event.NewDispatcher[*Player](),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Append декодирует файл и добавляет его в конец плейлиста.
// Повторное добавление файла с тем же ID ничего не делает.
// Ошибка декодирования возвращается как *audio.DecodeError, плейлист не меняется.
func (p *Player) Append(ctx context.Context, file source.File) error {
	p.appendMu.Lock()
	ready, err := p.appendLocked(ctx, file)
	p.appendMu.Unlock()

	if err != nil {
		return err
	}
	if ready {
		p.OnReady.Emit(p)
	}
	return nil
}

// appendLocked вызывается под p.appendMu и сообщает, был ли плейлист пуст до вставки
func (p *Player) appendLocked(ctx context.Context, file source.File) (bool, error) {
	id := file.ID()
	p.mu.Lock()
	duplicate := p.indexLocked(id) >= 0
	p.mu.Unlock()
	if duplicate {
		p.logger.Info("Трек уже в плейлисте", zap.String("source", id))
		return false, nil
	}

	data, err := file.ReadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("не удалось прочитать %s: %w", file.Name(), err)
	}

	var (
		buf   audio.Buffer
		cover *metadata.CoverArt
		tags  = metadata.TrackMetadata{Title: file.Name()}
		g     errgroup.Group
	)

	g.Go(func() error {
		b, err := p.backend.Decode(ctx, file.Name(), data)
		if err != nil {
			return err
		}
		buf = b
		return nil
	})

	if p.meta != nil {
		g.Go(func() error {
			tags = p.meta.ExtractFromReader(bytes.NewReader(data), file.Name())
			c, err := p.meta.FetchCoverArt(ctx, id, bytes.NewReader(data))
			if err != nil {
				p.logger.Warn("Не удалось получить обложку", zap.String("source", id), zap.Error(err))
				return nil
			}
			cover = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	track := &Track{
		id:     uuid.New(),
		source: id,
		name:   file.Name(),
		tags:   tags,
		buffer: buf,
		cover:  cover,
	}

	p.mu.Lock()
	wasEmpty := len(p.playlist) == 0
	p.playlist = append(p.playlist, track)
	size := len(p.playlist)
	p.mu.Unlock()

	p.logger.Info("Трек добавлен",
		zap.String("source", id),
		zap.Duration("duration", track.duration()),
		zap.Bool("cover", cover != nil),
		zap.Int("playlist", size),
	)
	return wasEmpty, nil
}

// Play запускает вывод текущего трека. Повторный вызов ничего не делает
func (p *Player) Play() {
	p.mu.Lock()
	played := p.playLocked()
	p.mu.Unlock()

	if played {
		p.OnPlay.Emit(p)
	}
}

// Pause останавливает вывод, сохраняя позицию
func (p *Player) Pause() {
	p.mu.Lock()
	paused := p.pauseLocked()
	p.mu.Unlock()

	if paused {
		p.OnPause.Emit(p)
	}
}

// Stop останавливает вывод и сбрасывает позицию в начало
func (p *Player) Stop() {
	p.mu.Lock()
	paused := p.stopLocked()
	p.mu.Unlock()

	if paused {
		p.OnPause.Emit(p)
	}
}

// Toggle ставит на паузу играющий трек или запускает остановленный
func (p *Player) Toggle() {
	p.mu.Lock()
	t := p.current()
	rendering := t != nil && t.state == Rendering
	p.mu.Unlock()

	if rendering {
		p.Pause()
	} else {
		p.Play()
	}
}

// Next переходит к следующему треку с переходом в начало после последнего
func (p *Player) Next() {
	p.step(1)
}

// Prev переходит к предыдущему треку с переходом в конец перед первым
func (p *Player) Prev() {
	p.step(-1)
}

// Select делает текущим трек с индексом index и запускает его.
// Индекс за пределами плейлиста игнорируется.
func (p *Player) Select(index int) {
	p.mu.Lock()
	if index < 0 || index >= len(p.playlist) {
		p.mu.Unlock()
		return
	}
	paused := p.stopLocked()
	p.cursor = index
	played := p.playLocked()
	p.mu.Unlock()

	p.emitStep(paused, played)
}

func (p *Player) step(delta int) {
	p.mu.Lock()
	paused, played := p.stepLocked(delta)
	p.mu.Unlock()

	p.emitStep(paused, played)
}

func (p *Player) emitStep(paused, played bool) {
	if paused {
		p.OnPause.Emit(p)
	}
	if played {
		p.OnPlay.Emit(p)
	}
	p.OnChange.Emit(p)
}

// Position возвращает позицию текущего трека
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.current()
	if t == nil {
		return 0
	}
	return t.position(p.backend.Now())
}

// Seek перезапускает текущий трек с позиции pos.
// Отрицательная позиция приводится к нулю, позиция за концом - к длительности.
func (p *Player) Seek(pos time.Duration) {
	p.mu.Lock()
	t := p.current()
	if t == nil {
		p.mu.Unlock()
		return
	}

	paused := p.stopLocked()
	t.offset = clamp(pos, 0, t.duration())
	played := p.playLocked()
	p.mu.Unlock()

	if paused {
		p.OnPause.Emit(p)
	}
	if played {
		p.OnPlay.Emit(p)
	}
}

// Duration возвращает длительность текущего трека или MinDuration
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.current()
	if t == nil {
		return MinDuration
	}
	return t.duration()
}

// IsEmpty сообщает, что текущего трека нет
func (p *Player) IsEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current() == nil
}

// IsPlaying сообщает, идет ли вывод текущего трека
func (p *Player) IsPlaying() bool {
	return p.State() == Rendering
}

// State возвращает состояние текущего трека
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.current()
	if t == nil {
		return Idle
	}
	return t.state
}

// Current возвращает снимок текущего трека или нулевой TrackInfo
func (p *Player) Current() TrackInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.current()
	if t == nil {
		return TrackInfo{}
	}
	return t.info(p.backend.Now())
}

// Tracks возвращает снимки всех треков в порядке добавления
func (p *Player) Tracks() []TrackInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.backend.Now()
	infos := make([]TrackInfo, len(p.playlist))
	for i, t := range p.playlist {
		infos[i] = t.info(now)
	}
	return infos
}

// Cursor возвращает индекс текущего трека
func (p *Player) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Len возвращает количество треков
func (p *Player) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.playlist)
}

// Cover возвращает обложку текущего трека или nil
func (p *Player) Cover() *metadata.CoverArt {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.current()
	if t == nil {
		return nil
	}
	return t.cover
}

// current возвращает текущий трек или nil. Вызывается под p.mu
func (p *Player) current() *Track {
	if p.cursor < 0 || p.cursor >= len(p.playlist) {
		return nil
	}
	return p.playlist[p.cursor]
}

func (p *Player) indexLocked(source string) int {
	for i, t := range p.playlist {
		if t.source == source {
			return i
		}
	}
	return -1
}

func (p *Player) playLocked() bool {
	t := p.current()
	if t == nil || t.state == Rendering {
		return false
	}

	handle, err := p.backend.NewRenderer(t.buffer)
	if err != nil {
		p.logger.Error("Не удалось создать рендерер", zap.String("source", t.source), zap.Error(err))
		return false
	}
	handle.OnEnded(func() { p.handleEnded(t, handle) })

	if err := handle.Start(t.offset); err != nil {
		handle.Disconnect()
		p.logger.Error("Не удалось запустить воспроизведение", zap.String("source", t.source), zap.Error(err))
		return false
	}

	t.startedAt = p.backend.Now()
	t.handle = handle
	t.state = Rendering
	p.logger.Debug("Воспроизведение", zap.String("source", t.source), zap.Duration("offset", t.offset))
	return true
}

func (p *Player) pauseLocked() bool {
	t := p.current()
	if t == nil || t.state != Rendering {
		return false
	}

	t.handle.Stop()
	t.handle.Disconnect()
	t.offset = t.position(p.backend.Now())
	t.handle = nil
	t.startedAt = 0
	t.state = Idle
	p.logger.Debug("Пауза", zap.String("source", t.source), zap.Duration("offset", t.offset))
	return true
}

func (p *Player) stopLocked() bool {
	paused := p.pauseLocked()
	if t := p.current(); t != nil {
		t.offset = 0
	}
	return paused
}

func (p *Player) stepLocked(delta int) (paused, played bool) {
	paused = p.stopLocked()

	n := len(p.playlist)
	if n == 0 {
		p.cursor = 0
	} else {
		p.cursor = ((p.cursor+delta)%n + n) % n
	}

	played = p.playLocked()
	return paused, played
}

// handleEnded переходит к следующему треку по окончании буфера.
// Уведомления от рендерера, который уже не принадлежит текущему треку, игнорируются.
func (p *Player) handleEnded(t *Track, handle audio.Renderer) {
	p.mu.Lock()
	if p.current() != t || t.handle != handle {
		p.mu.Unlock()
		p.logger.Debug("Устаревшее уведомление о конце трека", zap.String("source", t.source))
		return
	}
	paused, played := p.stepLocked(1)
	p.mu.Unlock()

	p.emitStep(paused, played)
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
