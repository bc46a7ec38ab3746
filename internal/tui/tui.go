// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/turntable/internal/player"
	tuiPlayer "github.com/hazadus/turntable/internal/tui/player"
	"github.com/hazadus/turntable/internal/tui/tracklist"
)

// App представляет основное TUI приложение
type App struct {
	player   *player.Player
	seekStep time.Duration
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(p *player.Player, seekStep time.Duration) *App {
	return &App{
		player:   p,
		seekStep: seekStep,
	}
}

// Run запускает TUI приложение и останавливает вывод после выхода
func (tuiApp *App) Run() error {
	model := newMainModel(tuiApp.player, tuiApp.seekStep)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()

	tuiApp.player.Stop()
	return err
}

// screenType определяет тип текущего экрана
type screenType int

const (
	playerScreen screenType = iota
	tracklistScreen
)

// mainModel переключает экраны воспроизведения и списка треков
type mainModel struct {
	player         *player.Player
	currentScreen  screenType
	playerModel    *tuiPlayer.Model
	tracklistModel *tracklist.Model
}

func newMainModel(p *player.Player, seekStep time.Duration) *mainModel {
	return &mainModel{
		player:         p,
		currentScreen:  playerScreen,
		playerModel:    tuiPlayer.NewModel(p, seekStep),
		tracklistModel: tracklist.NewModel(p),
	}
}

// Init инициализирует модель
func (m *mainModel) Init() tea.Cmd {
	return tea.Batch(m.playerModel.Init(), m.tracklistModel.Init())
}

// Update обрабатывает сообщения
func (m *mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Глобальные горячие клавиши
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.currentScreen == playerScreen || !m.tracklistModel.Filtering() {
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		// Размеры нужны обоим экранам
		_, playerCmd := m.playerModel.Update(msg)
		var tracklistCmd tea.Cmd
		m.tracklistModel, tracklistCmd = m.tracklistModel.Update(msg)
		return m, tea.Batch(playerCmd, tracklistCmd)

	case tuiPlayer.ShowPlaylistMsg:
		m.tracklistModel.RefreshData()
		m.currentScreen = tracklistScreen
		return m, nil

	case tracklist.TrackSelectedMsg:
		m.player.Select(msg.Index)
		m.currentScreen = playerScreen
		return m, nil

	case tracklist.GoBackMsg:
		m.currentScreen = playerScreen
		return m, nil

	case tuiPlayer.EventMsg, tuiPlayer.TickMsg:
		// События плеера обрабатываются экраном воспроизведения независимо от текущего экрана
		_, cmd := m.playerModel.Update(msg)
		if m.currentScreen == tracklistScreen {
			m.tracklistModel.RefreshData()
		}
		return m, cmd
	}

	// Передаем сообщение активной модели
	var cmd tea.Cmd
	switch m.currentScreen {
	case playerScreen:
		_, cmd = m.playerModel.Update(msg)
	case tracklistScreen:
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)
	}
	return m, cmd
}

// View отображает интерфейс
func (m *mainModel) View() string {
	switch m.currentScreen {
	case playerScreen:
		return m.playerModel.View()
	case tracklistScreen:
		return m.tracklistModel.View()
	default:
		return "Неизвестный экран"
	}
}
