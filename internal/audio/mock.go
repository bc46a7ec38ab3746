package audio

import (
	"context"
	"sync"
	"time"
)

// DefaultMockDuration - длительность буферов Mock, если не задана явно
const DefaultMockDuration = 3 * time.Minute

// Mock - тестовый двойник Backend с ручными часами
type Mock struct {
	mu          sync.Mutex
	now         time.Duration
	durations   map[string]time.Duration
	decodeErr   error
	decodeHook  func(name string)
	decodeCalls []string
	renderErr   error
	renderers   []*MockRenderer
	closed      bool
}

// NewMock создает тестовый бэкенд
func NewMock() *Mock {
	return &Mock{durations: make(map[string]time.Duration)}
}

// MockBuffer - буфер, выданный Mock
type MockBuffer struct {
	Name     string
	Length   time.Duration
	Contents []byte
}

// Duration возвращает заданную длительность
func (b *MockBuffer) Duration() time.Duration { return b.Length }

func (m *Mock) Decode(ctx context.Context, name string, data []byte) (Buffer, error) {
	m.mu.Lock()
	m.decodeCalls = append(m.decodeCalls, name)
	hook := m.decodeHook
	decodeErr := m.decodeErr
	length, ok := m.durations[name]
	m.mu.Unlock()

	if hook != nil {
		hook(name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, &DecodeError{Name: name, Err: decodeErr}
	}
	if !ok {
		length = DefaultMockDuration
	}
	return &MockBuffer{Name: name, Length: length, Contents: data}, nil
}

func (m *Mock) NewRenderer(buf Buffer) (Renderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.renderErr != nil {
		return nil, m.renderErr
	}
	r := &MockRenderer{buffer: buf}
	m.renderers = append(m.renderers, r)
	return r, nil
}

func (m *Mock) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Вспомогательные методы для тестов

// Advance сдвигает часы устройства
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

// SetDuration задает длительность буфера для файла с указанным именем
func (m *Mock) SetDuration(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[name] = d
}

// SetDecodeError заставляет Decode завершаться ошибкой
func (m *Mock) SetDecodeError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decodeErr = err
}

// SetDecodeHook задает функцию, вызываемую внутри Decode до возврата результата
func (m *Mock) SetDecodeHook(fn func(name string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decodeHook = fn
}

// SetRenderError заставляет NewRenderer завершаться ошибкой
func (m *Mock) SetRenderError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderErr = err
}

// DecodeCalls возвращает имена, переданные в Decode
func (m *Mock) DecodeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.decodeCalls...)
}

// Renderers возвращает все созданные рендереры
func (m *Mock) Renderers() []*MockRenderer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockRenderer(nil), m.renderers...)
}

// Active возвращает запущенные и еще не остановленные рендереры
func (m *Mock) Active() []*MockRenderer {
	var active []*MockRenderer
	for _, r := range m.Renderers() {
		if r.Active() {
			active = append(active, r)
		}
	}
	return active
}

// Closed сообщает, вызывался ли Close
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockRenderer - рендерер Mock, запоминающий все вызовы
type MockRenderer struct {
	mu           sync.Mutex
	buffer       Buffer
	offset       time.Duration
	started      bool
	stopped      bool
	disconnected bool
	onEnded      func()
}

func (r *MockRenderer) Start(offset time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrRendererStarted
	}
	r.started = true
	r.offset = offset
	return nil
}

func (r *MockRenderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		r.stopped = true
	}
}

func (r *MockRenderer) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = true
	r.onEnded = nil
}

func (r *MockRenderer) OnEnded(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEnded = fn
}

// Buffer возвращает буфер рендерера
func (r *MockRenderer) Buffer() Buffer { return r.buffer }

// Offset возвращает смещение, с которого был запущен вывод
func (r *MockRenderer) Offset() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset
}

// Active сообщает, идет ли вывод
func (r *MockRenderer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started && !r.stopped
}

// Disconnected сообщает, был ли рендерер отключен
func (r *MockRenderer) Disconnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disconnected
}

// Finish имитирует естественное окончание буфера.
// Обработчик вызывается синхронно, в отличие от настоящего бэкенда.
func (r *MockRenderer) Finish() {
	r.mu.Lock()
	fn := r.onEnded
	active := r.started && !r.stopped
	r.mu.Unlock()

	if active && fn != nil {
		fn()
	}
}

// Проверяем соответствие интерфейсам на этапе компиляции
var (
	_ Backend  = (*Mock)(nil)
	_ Backend  = (*BeepBackend)(nil)
	_ Renderer = (*MockRenderer)(nil)
	_ Renderer = (*beepRenderer)(nil)
)
