package player

import (
	"time"

	"github.com/google/uuid"

	"github.com/hazadus/turntable/internal/audio"
	"github.com/hazadus/turntable/internal/metadata"
)

// MinDuration возвращается Duration, когда нет декодированного буфера.
// Не ноль, чтобы потребителям не приходилось проверять деление на ноль.
const MinDuration = time.Millisecond

// State - состояние трека
type State int

const (
	// Idle - вывода нет, позиция хранится в offset
	Idle State = iota
	// Rendering - трек владеет рендерером
	Rendering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Track - элемент плейлиста. Поля защищены мьютексом плеера.
type Track struct {
	id     uuid.UUID
	source string
	name   string
	tags   metadata.TrackMetadata
	buffer audio.Buffer
	cover  *metadata.CoverArt

	offset    time.Duration
	startedAt time.Duration
	state     State
	handle    audio.Renderer
}

func (t *Track) duration() time.Duration {
	if t.buffer == nil {
		return MinDuration
	}
	return t.buffer.Duration()
}

func (t *Track) position(now time.Duration) time.Duration {
	if t.state == Rendering {
		return t.offset + now - t.startedAt
	}
	return t.offset
}

func (t *Track) info(now time.Duration) TrackInfo {
	return TrackInfo{
		ID:       t.id.String(),
		Source:   t.source,
		Name:     t.name,
		Title:    t.tags.Title,
		Artist:   t.tags.Artist,
		Album:    t.tags.Album,
		Duration: t.duration(),
		Position: t.position(now),
		State:    t.state,
		HasCover: t.cover != nil,
	}
}

// TrackInfo - снимок трека для отображения.
// Нулевое значение обозначает отсутствие текущего трека.
type TrackInfo struct {
	ID       string
	Source   string
	Name     string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	Position time.Duration
	State    State
	HasCover bool
}

// IsZero сообщает, что снимок пустой
func (i TrackInfo) IsZero() bool {
	return i.Source == ""
}

// DisplayName возвращает "Исполнитель - Название" или то, что из этого известно
func (i TrackInfo) DisplayName() string {
	switch {
	case i.Title == "":
		return i.Name
	case i.Artist == "" || i.Artist == metadata.UnknownArtist:
		return i.Title
	default:
		return i.Artist + " - " + i.Title
	}
}
