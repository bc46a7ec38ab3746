package tracklist

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/turntable/internal/audio"
	"github.com/hazadus/turntable/internal/player"
)

type memFile struct {
	name string
}

func (f memFile) ID() string                              { return "/music/" + f.name }
func (f memFile) Name() string                            { return f.name }
func (f memFile) ReadAll(context.Context) ([]byte, error) { return []byte(f.name), nil }

func newPlayer(t *testing.T, names ...string) *player.Player {
	t.Helper()
	p := player.New(audio.NewMock(), nil)
	for _, name := range names {
		if err := p.Append(context.Background(), memFile{name: name}); err != nil {
			t.Fatalf("Ошибка добавления трека: %v", err)
		}
	}
	return p
}

func TestNewModel(t *testing.T) {
	model := NewModel(newPlayer(t, "a.mp3", "b.mp3"))

	if model == nil {
		t.Fatal("NewModel returned nil")
	}

	if len(model.list.Items()) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(model.list.Items()))
	}

	first := model.list.Items()[0].(trackItem)
	if !first.current {
		t.Error("Первый трек должен быть отмечен текущим")
	}
}

func TestRefreshData(t *testing.T) {
	p := newPlayer(t, "a.mp3")
	model := NewModel(p)

	if err := p.Append(context.Background(), memFile{name: "b.mp3"}); err != nil {
		t.Fatal(err)
	}
	p.Next()
	model.RefreshData()

	items := model.list.Items()
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].(trackItem).current || !items[1].(trackItem).current {
		t.Error("Текущим должен быть второй трек")
	}
}

func TestEnterSelectsTrack(t *testing.T) {
	model := NewModel(newPlayer(t, "a.mp3", "b.mp3", "c.mp3"))
	model.list.Select(2)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected command for enter key")
	}

	msg, ok := cmd().(TrackSelectedMsg)
	if !ok {
		t.Fatal("Expected TrackSelectedMsg")
	}
	if msg.Index != 2 {
		t.Errorf("Expected index 2, got %d", msg.Index)
	}
}

func TestTabGoesBack(t *testing.T) {
	model := NewModel(newPlayer(t, "a.mp3"))

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil {
		t.Fatal("Expected command for tab key")
	}
	if _, ok := cmd().(GoBackMsg); !ok {
		t.Error("Expected GoBackMsg")
	}
}
