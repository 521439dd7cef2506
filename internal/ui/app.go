// Package ui provides the Bubble Tea TUI for logdeck.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slatehart/logdeck/internal/console"
	"github.com/slatehart/logdeck/internal/prefs"
)

// Event is one log record waiting to be ingested. Producers push events
// onto a channel; the UI drains the channel on its tick so the console
// only ever sees one caller.
type Event struct {
	Level    string
	Category string
	Message  string
	Data     map[string]any
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Console   *console.Console
	Events    <-chan Event
	TickEvery time.Duration
	ThemeName string
	PrefsPath string
	UserPrefs prefs.Prefs
}

// maxIngestPerTick bounds how many queued events one tick may ingest so
// a producer burst cannot starve rendering.
const maxIngestPerTick = 512

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	con       *console.Console
	events    <-chan Event
	tickEvery time.Duration
	prefsPath string
	userPrefs prefs.Prefs

	// UI state
	theme  Theme
	styles Styles
	width  int
	height int
	ready  bool

	// Display state
	display     []*console.Entry
	displayRev  uint64
	lastResult  console.TickResult
	follow      bool
	selected    int
	offset      int
	showDetail  bool
	selectedRef *console.Entry

	// Search prompt
	searchActive bool
	searchInput  textinput.Model

	// Help overlay
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tickEvery := opts.TickEvery
	if tickEvery == 0 {
		tickEvery = 100 * time.Millisecond
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Midnight"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"
	ti.CharLimit = 256

	theme := GetTheme(themeName)
	return Model{
		ctx:         ctx,
		con:         opts.Console,
		events:      opts.Events,
		tickEvery:   tickEvery,
		prefsPath:   prefsPath,
		userPrefs:   opts.UserPrefs,
		theme:       theme,
		styles:      theme.Styles(),
		follow:      true,
		searchInput: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.tickEvery),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.clampView()
		return m, nil

	case tickMsg:
		return m.handleTick()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.searchActive {
		b.WriteString(m.renderSearchBar())
	} else {
		b.WriteString(m.renderCommandBar())
	}
	b.WriteString("\n")
	b.WriteString(m.renderLog())
	if detail := m.renderDetail(); detail != "" {
		b.WriteString("\n")
		b.WriteString(detail)
	}
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.searchActive {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "h", "?":
		m.showHelp = true
		return m, nil

	case "T":
		// Cycle theme
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.styles = m.theme.Styles()
		m.userPrefs.Theme = m.theme.Name
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, m.userPrefs)
		}
		return m, nil

	case "/":
		m.searchActive = true
		m.searchInput.SetValue(m.con.Filter().Search())
		m.searchInput.CursorEnd()
		m.searchInput.Focus()
		return m, textinput.Blink

	case "esc":
		if m.con.Filter().Search() != "" {
			m.con.SetSearch("")
		}
		return m, nil

	case "c":
		on := !m.con.Filter().CaseSensitive()
		m.con.SetCaseSensitive(on)
		m.userPrefs.CaseSensitive = on
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, m.userPrefs)
		}
		return m, nil

	case "1", "2", "3", "4", "5":
		levels := console.Levels()
		idx := int(msg.String()[0] - '1')
		if idx < len(levels) {
			m.con.CycleLevel(levels[idx])
		}
		return m, nil

	case "o":
		// Cycle the selected entry's category filter
		if entry := m.selectedEntry(); entry != nil {
			state := m.con.Filter().CategoryState(entry.Category)
			m.con.SetCategoryState(entry.Category, state.Cycle())
		}
		return m, nil

	case "x":
		m.con.ClearFilters()
		return m, nil

	case "C":
		m.con.ClearEntries()
		m.selected = 0
		m.offset = 0
		m.selectedRef = nil
		return m, nil

	case "d":
		m.showDetail = !m.showDetail
		m.clampView()
		return m, nil

	case " ":
		m.follow = !m.follow
		m.clampView()
		return m, nil

	case "j", "down":
		m.moveSelection(1)
		return m, nil

	case "k", "up":
		m.moveSelection(-1)
		return m, nil

	case "pgdown":
		m.moveSelection(m.logRows())
		return m, nil

	case "pgup":
		m.moveSelection(-m.logRows())
		return m, nil

	case "g", "home":
		m.follow = false
		m.selected = 0
		m.clampView()
		return m, nil

	case "G", "end":
		m.selected = len(m.display) - 1
		m.follow = true
		m.clampView()
		return m, nil
	}

	return m, nil
}

// handleSearchKey processes keyboard input while the search prompt is
// open.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchActive = false
		m.searchInput.Blur()
		m.con.SetSearch(m.searchInput.Value())
		return m, nil
	case "esc":
		m.searchActive = false
		m.searchInput.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleTick drains queued events into the console, runs one engine
// step, and refreshes the cached display when it changed.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.ctx.Err() != nil {
		return m, tea.Quit
	}

drain:
	for i := 0; i < maxIngestPerTick && m.events != nil; i++ {
		select {
		case ev, ok := <-m.events:
			if !ok {
				m.events = nil
				break drain
			}
			// Rate-limited entries are dropped by design of the blocker.
			_, _ = m.con.AddEntry(ev.Level, ev.Category, ev.Message, ev.Data)
		default:
			break drain
		}
	}

	m.lastResult = m.con.Tick()
	if rev := m.con.DisplayRevision(); rev != m.displayRev {
		m.displayRev = rev
		m.display = m.con.Display()
		m.clampView()
	}

	return m, tickCmd(m.tickEvery)
}

// moveSelection moves the cursor and drops follow so the view stays put.
func (m *Model) moveSelection(delta int) {
	m.follow = false
	m.selected += delta
	m.clampView()
}

// selectedEntry returns the selected entry, revalidated against the
// repository so an evicted entry degrades to no selection.
func (m *Model) selectedEntry() *console.Entry {
	if m.selected < 0 || m.selected >= len(m.display) {
		return nil
	}
	return m.con.ValidateSelection(m.display[m.selected])
}

// clampView keeps the selection and scroll offset inside the display.
func (m *Model) clampView() {
	total := len(m.display)
	if m.selected >= total {
		m.selected = total - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if m.follow && total > 0 {
		m.selected = total - 1
	}
	m.offset = scrollOffset(total, m.logRows(), m.selected, m.offset)
	m.selectedRef = nil
	if total > 0 {
		m.selectedRef = m.display[m.selected]
	}
}

// logRows returns the number of terminal rows available to the log list.
func (m Model) logRows() int {
	rows := m.height - 2 // header + command bar
	if m.showDetail {
		rows -= detailRows
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// scrollOffset slides the window so the selection stays visible.
func scrollOffset(total, rows, selected, offset int) int {
	if total <= rows {
		return 0
	}
	if selected < offset {
		offset = selected
	}
	if selected >= offset+rows {
		offset = selected - rows + 1
	}
	if offset > total-rows {
		offset = total - rows
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// Messages

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	var progOpts []tea.ProgramOption
	progOpts = append(progOpts, tea.WithAltScreen())
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	if err != nil && opts.Context != nil && opts.Context.Err() != nil {
		// Cancellation through the context is a normal shutdown.
		return nil
	}
	return err
}
