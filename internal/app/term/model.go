// Package term is a terminal browser for one console screen. It drives
// the same screens.Screen the web console uses, so debounce, paging
// and stale-response handling behave identically.
package term

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
	"github.com/dalemusser/barangayhub/internal/app/system/screens"
)

// flashDuration is how long a status notice stays on screen.
const flashDuration = 3 * time.Second

// changedMsg tells the model the screen has new state.
type changedMsg struct{}

type flashExpiredMsg struct{ id int }

// Model is the bubbletea model for one screen.
type Model struct {
	screen  screens.Screen
	changes <-chan struct{}
	cancel  func()

	keys    KeyMap
	input   textinput.Model
	help    help.Model
	spinner spinner.Model
	theme   Theme

	view      screens.View
	searching bool

	flash   string
	flashID int

	width  int
	height int
}

// New subscribes to s. The caller owns s and must call Close on the
// returned model once the program exits.
func New(s screens.Screen) Model {
	ti := textinput.New()
	ti.Placeholder = "type to search"
	ti.Prompt = "search: "
	ti.CharLimit = 100
	ti.Width = 40
	ti.SetValue(s.View().SearchInput)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ch, cancel := s.Subscribe()
	return Model{
		screen:  s,
		changes: ch,
		cancel:  cancel,
		keys:    DefaultKeyMap,
		input:   ti,
		help:    help.New(),
		spinner: sp,
		theme:   DefaultTheme,
		view:    s.View(),
	}
}

// Close drops the change subscription.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(listenForChanges(m.changes), m.spinner.Tick)
}

// listenForChanges blocks until the screen reports a change.
func listenForChanges(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.view = m.screen.View()
		return m, listenForChanges(m.changes)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case flashExpiredMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Flush):
		m.screen.FlushSearch()
		m.searching = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Blur):
		m.searching = false
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.screen.SetSearchInput(v)
	}
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Flush):
		m.screen.FlushSearch()

	case key.Matches(msg, m.keys.NextTab):
		m.screen.SetFilter(m.cycleTab(1))

	case key.Matches(msg, m.keys.PrevTab):
		m.screen.SetFilter(m.cycleTab(-1))

	case key.Matches(msg, m.keys.NextPage):
		return m.gotoPage(m.view.Page + 1)

	case key.Matches(msg, m.keys.PrevPage):
		return m.gotoPage(m.view.Page - 1)

	case key.Matches(msg, m.keys.Sort):
		m.screen.SetSort(m.nextSort())

	case key.Matches(msg, m.keys.Order):
		if s := m.view.Sort; !s.IsZero() {
			s.Order = flip(s.Order)
			m.screen.SetSort(s)
		}

	case key.Matches(msg, m.keys.Refresh):
		if !m.screen.Refresh() {
			return m.notify("already loading")
		}
		return m.notify("refreshing…")

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) gotoPage(n int) (tea.Model, tea.Cmd) {
	switch {
	case n < 1 || (m.view.TotalPages > 0 && n > m.view.TotalPages):
		return m.notify("no more pages")
	case !m.screen.SetPage(n):
		return m.notify("still loading, try again")
	}
	return m, nil
}

// cycleTab returns the tab dir steps away from the active one.
func (m Model) cycleTab(dir int) listquery.FilterKey {
	tabs := m.view.Tabs
	if len(tabs) == 0 {
		return m.view.Filter
	}
	i := slices.IndexFunc(tabs, func(t screens.Tab) bool { return t.Key == m.view.Filter })
	i = ((i+dir)%len(tabs) + len(tabs)) % len(tabs)
	return tabs[i].Key
}

// nextSort moves to the next sortable column, then back to the
// server's order.
func (m Model) nextSort() listquery.Sort {
	var fields []string
	for _, c := range m.view.Columns {
		if c.SortBy != "" {
			fields = append(fields, c.SortBy)
		}
	}
	i := slices.Index(fields, m.view.Sort.By)
	if i+1 >= len(fields) {
		return listquery.Sort{}
	}
	return listquery.Sort{By: fields[i+1], Order: listquery.Ascending}
}

func flip(o listquery.SortOrder) listquery.SortOrder {
	if o == listquery.Descending {
		return listquery.Ascending
	}
	return listquery.Descending
}

func (m Model) notify(text string) (tea.Model, tea.Cmd) {
	m.flashID++
	m.flash = text
	id := m.flashID
	return m, tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashExpiredMsg{id: id} })
}

// Run shows s until the user quits or ctx ends. s must already be started.
func Run(ctx context.Context, s screens.Screen, opts ...tea.ProgramOption) error {
	m := New(s)
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
