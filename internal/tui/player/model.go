// Package player содержит модель экрана воспроизведения для TUI
package player

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/turntable/internal/player"
	"github.com/hazadus/turntable/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff")).
			MarginBottom(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)
)

// Интервал обновления прогресса
const tickInterval = 250 * time.Millisecond

// ShowPlaylistMsg отправляется для перехода к списку треков
type ShowPlaylistMsg struct{}

// EventMsg - событие плеера
type EventMsg struct {
	Name string
}

// TickMsg обновляет позицию на экране
type TickMsg time.Time

// Model представляет модель экрана воспроизведения
type Model struct {
	player      *player.Player
	events      chan EventMsg
	seekStep    time.Duration
	progressBar progress.Model
	current     player.TrackInfo
	lastEvent   string
	width       int
	height      int
}

// NewModel создает модель и подписывает ее на события плеера
func NewModel(p *player.Player, seekStep time.Duration) *Model {
	// Создаем прогресс-бар
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	m := &Model{
		player:      p,
		events:      make(chan EventMsg, 16),
		seekStep:    seekStep,
		progressBar: prog,
	}

	// Обработчики вызываются синхронно внутри операций плеера, поэтому
	// событие только кладется в канал, без ожидания
	p.OnPlay.Listen(m.forward("play"))
	p.OnPause.Listen(m.forward("pause"))
	p.OnChange.Listen(m.forward("change"))
	p.OnReady.Listen(m.forward("ready"))

	m.current = p.Current()
	return m
}

func (m *Model) forward(name string) func(*player.Player) {
	return func(*player.Player) {
		select {
		case m.events <- EventMsg{Name: name}:
		default:
		}
	}
}

// Init запускает ожидание событий и таймер
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listenForEvents(), tick())
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Обновляем ширину прогресс-бара
		m.progressBar.Width = min(60, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			m.player.Toggle()
		case "n":
			m.player.Next()
		case "p":
			m.player.Prev()
		case "s":
			m.player.Stop()
		case ",", "left":
			m.player.Seek(m.player.Position() - m.seekStep)
		case ".", "right":
			m.player.Seek(m.player.Position() + m.seekStep)
		case "tab", "l":
			return m, func() tea.Msg {
				return ShowPlaylistMsg{}
			}
		}
		return m, m.refresh()

	case EventMsg:
		m.lastEvent = msg.Name
		return m, tea.Batch(m.refresh(), m.listenForEvents())

	case TickMsg:
		return m, tea.Batch(m.refresh(), tick())

	case progress.FrameMsg:
		// Обновляем прогресс-бар
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// View отображает модель
func (m *Model) View() string {
	title := titleStyle.Render("🎵 Воспроизведение")

	if m.current.IsZero() {
		return fmt.Sprintf(
			"%s\n\n%s\n\n%s",
			title,
			trackInfoStyle.Render("Плейлист пуст"),
			controlsStyle.Render("tab: список треков • q: выход"),
		)
	}

	// Информация о треке
	album := m.current.Album
	if album == "" {
		album = "-"
	}
	cover := "нет"
	if m.current.HasCover {
		cover = "есть"
	}
	trackInfo := trackInfoStyle.Render(fmt.Sprintf(
		"🎤 %s\n🎵 %s\n💿 %s\n🖼  обложка: %s",
		m.current.Artist,
		m.current.Title,
		album,
		cover,
	))

	// Статус воспроизведения
	playing := m.current.State == player.Rendering
	statusIcon := "⏸️"
	if playing {
		statusIcon = "▶️"
	}
	statusText := statusStyle.Render(fmt.Sprintf("%s %s  [%d/%d]",
		statusIcon, formatStatus(playing), m.player.Cursor()+1, m.player.Len()))

	// Время
	timeText := fmt.Sprintf(
		"%s / %s",
		utils.FormatClock(m.current.Position),
		utils.FormatClock(m.current.Duration),
	)

	controls := controlsStyle.Render(
		"Пробел: пауза • n/p: след./пред. • ←/→: перемотка • s: стоп • tab: список • q: выход",
	)

	return fmt.Sprintf(
		"%s\n\n%s\n\n%s\n\n%s\n%s\n\n%s",
		title,
		trackInfo,
		statusText,
		m.progressBar.View(),
		timeText,
		controls,
	)
}

// Current возвращает последний отображенный снимок трека
func (m *Model) Current() player.TrackInfo {
	return m.current
}

// refresh перечитывает состояние плеера и двигает прогресс-бар
func (m *Model) refresh() tea.Cmd {
	m.current = m.player.Current()
	if m.current.IsZero() {
		return m.progressBar.SetPercent(0)
	}

	percent := float64(m.current.Position) / float64(m.current.Duration)
	if percent > 1 {
		percent = 1
	}
	return m.progressBar.SetPercent(percent)
}

// listenForEvents ждет следующее событие плеера
func (m *Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Вспомогательные функции

func formatStatus(isPlaying bool) string {
	if isPlaying {
		return "Воспроизведение"
	}
	return "Пауза"
}
