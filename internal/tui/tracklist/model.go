// Package tracklist содержит модель экрана списка треков для TUI
package tracklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/turntable/internal/player"
	"github.com/hazadus/turntable/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
)

// TrackSelectedMsg отправляется при выборе трека для воспроизведения
type TrackSelectedMsg struct {
	Index int
}

// GoBackMsg отправляется для возврата к экрану воспроизведения
type GoBackMsg struct{}

// trackItem реализует интерфейс list.Item для трека
type trackItem struct {
	index   int
	track   player.TrackInfo
	current bool
}

func (i trackItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.track.Artist, i.track.Title, i.track.Name)
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct{}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	marker := " "
	if i.current {
		marker = "♪"
	}

	// Номер | Исполнитель | Название | Продолжительность
	str := fmt.Sprintf("%s %-4d %-20s %-50s %s",
		marker,
		i.index+1,
		utils.TruncateString(i.track.Artist, 20),
		utils.TruncateString(i.track.Title, 50),
		utils.FormatClock(i.track.Duration))

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана списка треков
type Model struct {
	list   list.Model
	player *player.Player
}

// NewModel создает новую модель списка треков
func NewModel(p *player.Player) *Model {
	l := list.New(nil, trackItemDelegate{}, 0, 0)
	l.Title = "Плейлист"
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model{
		list:   l,
		player: p,
	}
	m.RefreshData()
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// RefreshData перечитывает плейлист без пересоздания модели
func (m *Model) RefreshData() {
	tracks := m.player.Tracks()
	cursor := m.player.Cursor()

	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{index: i, track: t, current: i == cursor}
	}

	m.list.SetItems(items)
}

// Filtering сообщает, вводится ли сейчас фильтр
func (m *Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4) // Оставляем место для заголовка и справки
		return m, nil

	case tea.KeyMsg:
		// Во время ввода фильтра клавиши принадлежат списку
		if m.Filtering() {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(trackItem); ok {
				return m, func() tea.Msg {
					return TrackSelectedMsg{Index: item.index}
				}
			}

		case "tab", "esc":
			return m, func() tea.Msg {
				return GoBackMsg{}
			}
		}
	}

	// Обновляем список
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	view := m.list.View()
	extraHelp := helpStyle.Render("Enter: воспроизвести • tab: назад • q: выход")
	return view + "\n" + extraHelp
}
