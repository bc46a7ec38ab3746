package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/turntable/internal/audio"
	"github.com/hazadus/turntable/internal/player"
	tuiPlayer "github.com/hazadus/turntable/internal/tui/player"
	"github.com/hazadus/turntable/internal/tui/tracklist"
)

type memFile struct {
	name string
}

func (f memFile) ID() string                              { return "/music/" + f.name }
func (f memFile) Name() string                            { return f.name }
func (f memFile) ReadAll(context.Context) ([]byte, error) { return []byte(f.name), nil }

func newTestModel(t *testing.T, names ...string) (*mainModel, *player.Player) {
	t.Helper()
	p := player.New(audio.NewMock(), nil)
	for _, name := range names {
		if err := p.Append(context.Background(), memFile{name: name}); err != nil {
			t.Fatalf("Ошибка добавления трека: %v", err)
		}
	}
	return newMainModel(p, 5*time.Second), p
}

func TestMainModelRouting(t *testing.T) {
	model, p := newTestModel(t, "a.mp3", "b.mp3")

	// Проверяем начальное состояние
	if model.currentScreen != playerScreen {
		t.Errorf("Expected initial screen to be playerScreen, got %v", model.currentScreen)
	}
	if model.playerModel == nil || model.tracklistModel == nil {
		t.Fatal("Expected both screens to be initialized")
	}

	// Переход к списку треков
	updatedModel, _ := model.Update(tuiPlayer.ShowPlaylistMsg{})
	model = updatedModel.(*mainModel)
	if model.currentScreen != tracklistScreen {
		t.Errorf("Expected tracklistScreen after ShowPlaylistMsg, got %v", model.currentScreen)
	}

	// Выбор трека запускает его и возвращает к плееру
	updatedModel, _ = model.Update(tracklist.TrackSelectedMsg{Index: 1})
	model = updatedModel.(*mainModel)
	if model.currentScreen != playerScreen {
		t.Errorf("Expected playerScreen after TrackSelectedMsg, got %v", model.currentScreen)
	}
	if p.Cursor() != 1 || !p.IsPlaying() {
		t.Errorf("Ожидалось воспроизведение трека 1, курсор %d, играет %v", p.Cursor(), p.IsPlaying())
	}

	// Возврат из списка без выбора
	model.Update(tuiPlayer.ShowPlaylistMsg{})
	updatedModel, _ = model.Update(tracklist.GoBackMsg{})
	model = updatedModel.(*mainModel)
	if model.currentScreen != playerScreen {
		t.Errorf("Expected playerScreen after GoBackMsg, got %v", model.currentScreen)
	}

	// Тестируем глобальные горячие клавиши
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("Expected tea.Quit command after Ctrl+C")
	}
}

func TestQuitFromBothScreens(t *testing.T) {
	model, _ := newTestModel(t, "a.mp3")
	q := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}

	for _, screen := range []screenType{playerScreen, tracklistScreen} {
		model.currentScreen = screen
		_, cmd := model.Update(q)
		if cmd == nil {
			t.Fatalf("Expected tea.Quit command for q on screen %v", screen)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("Expected QuitMsg on screen %v", screen)
		}
	}
}

func TestMainModelView(t *testing.T) {
	model, _ := newTestModel(t, "a.mp3")

	if view := model.View(); view == "" {
		t.Error("Expected non-empty view for player screen")
	}

	model.Update(tuiPlayer.ShowPlaylistMsg{})
	if view := model.View(); view == "" {
		t.Error("Expected non-empty view for tracklist screen")
	}

	// Тестируем состояние с несуществующим экраном
	model.currentScreen = screenType(999)
	view := model.View()
	expectedError := "Неизвестный экран"
	if view != expectedError {
		t.Errorf("Expected '%s' for unknown screen, got '%s'", expectedError, view)
	}
}
