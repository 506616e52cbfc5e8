package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcin-skalski/repo-doc/internal/dashboard"
	"github.com/marcin-skalski/repo-doc/internal/snapshot"
)

// Below this width the sidebar is hidden behind the "m" overlay.
const narrowWidth = 100

// TokenStore holds the GitHub token entered in the UI.
type TokenStore interface {
	Token() (string, bool)
	Set(token string)
}

type Options struct {
	Source      snapshot.Source
	Dispatcher  *dashboard.Dispatcher
	Tokens      TokenStore
	OpenURL     func(url string) error
	NoticeTTL   time.Duration
	PromptToken bool
	Logger      *slog.Logger
}

type Model struct {
	state      dashboard.State
	source     snapshot.Source
	dispatcher *dashboard.Dispatcher
	tokens     TokenStore
	openURL    func(string) error
	noticeTTL  time.Duration
	logger     *slog.Logger
	now        func() time.Time

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model

	editingToken bool
	loading      bool
	loadSeq      int
	branchCursor int
	prCursor     int
	width        int
	height       int
}

type (
	loadedMsg struct {
		seq  int
		snap *snapshot.Snapshot
	}
	loadFailedMsg struct {
		seq int
		err error
	}
	actionDoneMsg  struct{ result dashboard.Result }
	clearNoticeMsg struct{ id int }
)

func NewModel(state dashboard.State, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = 5 * time.Second
	}

	input := textinput.New()
	input.Prompt = "GitHub token: "
	input.Placeholder = "ghp_..."
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 255
	input.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		state:      state,
		source:     opts.Source,
		dispatcher: opts.Dispatcher,
		tokens:     opts.Tokens,
		openURL:    opts.OpenURL,
		noticeTTL:  opts.NoticeTTL,
		logger:     opts.Logger,
		now:        time.Now,
		keys:       DefaultKeyMap,
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:      input,
		loading:    true,
		loadSeq:    1,
	}
	if opts.PromptToken {
		if _, ok := m.tokens.Token(); !ok {
			m.editingToken = true
			m.input.Focus()
		}
	}
	return m
}

// State exposes the dashboard state, mainly for tests.
func (m Model) State() dashboard.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case loadedMsg:
		if msg.seq != m.loadSeq {
			m.logger.Debug("drop superseded load", "seq", msg.seq, "latest", m.loadSeq)
			return m, nil
		}
		m.loading = false
		return m.transition(m.state.Loaded(msg.snap), nil)

	case loadFailedMsg:
		if msg.seq != m.loadSeq {
			m.logger.Debug("drop superseded load", "seq", msg.seq, "latest", m.loadSeq)
			return m, nil
		}
		m.loading = false
		m.logger.Error("load snapshot", "err", msg.err)
		return m.transition(m.state.LoadFailed(msg.err), nil)

	case actionDoneMsg:
		return m.transition(m.dispatcher.Complete(m.state, msg.result), nil)

	case clearNoticeMsg:
		m.state = m.state.ClearNotice(msg.id)
		return m, nil

	case spinner.TickMsg:
		if m.state.InFlight == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.editingToken {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.editingToken {
		return m.handleTokenKey(msg)
	}

	// A pending confirmation is modal.
	if m.state.Pending != nil {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.transition(m.dispatcher.Resolve(m.state, true))
		case key.Matches(msg, m.keys.Cancel):
			return m.transition(m.dispatcher.Resolve(m.state, false))
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.state = m.state.DismissNav()
		m.help.ShowAll = false
	case key.Matches(msg, m.keys.Branches):
		m.state = m.state.SelectPanel(dashboard.PanelStaleBranches)
	case key.Matches(msg, m.keys.PRs):
		m.state = m.state.SelectPanel(dashboard.PanelOpenPRs)
	case key.Matches(msg, m.keys.Repo):
		m.state = m.state.SelectPanel(dashboard.PanelRepoInfo)
	case key.Matches(msg, m.keys.Activity):
		m.state = m.state.SelectPanel(dashboard.PanelActivity)
	case key.Matches(msg, m.keys.NextPanel):
		m.state = m.state.NextPanel()
	case key.Matches(msg, m.keys.Menu):
		m.state.View = m.state.View.ToggleNav()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Filter):
		m.state = m.state.CycleFilter()
		m.clampCursors()
	case key.Matches(msg, m.keys.Open):
		if a, ok := m.rowAction(false); ok {
			return m.transition(m.dispatcher.Trigger(m.state, a))
		}
	case key.Matches(msg, m.keys.Delete):
		if a, ok := m.rowAction(true); ok {
			return m.transition(m.dispatcher.Trigger(m.state, a))
		}
	case key.Matches(msg, m.keys.Token):
		m.editingToken = true
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		m.loadSeq++
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) handleTokenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editingToken = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		m.editingToken = false
		m.input.Blur()
		m.tokens.Set(m.input.Value())
		m.input.Reset()
		if _, ok := m.tokens.Token(); ok {
			return m.transition(m.state.Post(dashboard.NoticeSuccess, "Token saved for this session"), nil)
		}
		return m.transition(m.state.Post(dashboard.NoticeInfo, "No token entered"), nil)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// transition installs next and turns its effect and any new notice into
// commands.
func (m Model) transition(next dashboard.State, eff dashboard.Effect) (tea.Model, tea.Cmd) {
	prev := 0
	if m.state.Notice != nil {
		prev = m.state.Notice.ID
	}
	m.state = next
	m.clampCursors()

	var cmds []tea.Cmd
	if n := m.state.Notice; n != nil && n.ID != prev {
		cmds = append(cmds, m.expireNotice(n.ID))
	}

	switch e := eff.(type) {
	case dashboard.Navigate:
		cmds = append(cmds, m.navigateCmd(e.URL))
	case dashboard.Mutate:
		cmds = append(cmds, m.executeCmd(e), m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// rowAction maps the cursor row of the active panel to an action.
func (m Model) rowAction(mutating bool) (dashboard.Action, bool) {
	switch m.state.View.Active {
	case dashboard.PanelStaleBranches:
		rows := m.state.VisibleBranches()
		if m.branchCursor >= len(rows) {
			return dashboard.Action{}, false
		}
		name := rows[m.branchCursor].Name
		if mutating {
			return dashboard.DeleteBranch(name), true
		}
		return dashboard.CompareBranch(name), true
	case dashboard.PanelOpenPRs:
		rows := m.state.VisiblePRs()
		if m.prCursor >= len(rows) {
			return dashboard.Action{}, false
		}
		n := rows[m.prCursor].Number
		if mutating {
			return dashboard.ClosePR(n), true
		}
		return dashboard.ViewPR(n), true
	}
	return dashboard.Action{}, false
}

func (m *Model) moveCursor(delta int) {
	switch m.state.View.Active {
	case dashboard.PanelStaleBranches:
		m.branchCursor += delta
	case dashboard.PanelOpenPRs:
		m.prCursor += delta
	}
	m.clampCursors()
}

func (m *Model) clampCursors() {
	m.branchCursor = clamp(m.branchCursor, len(m.state.VisibleBranches()))
	m.prCursor = clamp(m.prCursor, len(m.state.VisiblePRs()))
}

func clamp(cursor, n int) int {
	return max(0, min(cursor, n-1))
}

// loadCmd loads the snapshot tagged with the current sequence number so
// only the latest reload is applied.
func (m Model) loadCmd() tea.Cmd {
	source, seq := m.source, m.loadSeq
	return func() tea.Msg {
		snap, err := source.Load()
		if err != nil {
			return loadFailedMsg{seq: seq, err: err}
		}
		return loadedMsg{seq: seq, snap: snap}
	}
}

func (m Model) executeCmd(mut dashboard.Mutate) tea.Cmd {
	d := m.dispatcher
	return func() tea.Msg {
		return actionDoneMsg{result: d.Execute(context.Background(), mut)}
	}
}

// navigateCmd opens url without reporting back; failures are only logged.
func (m Model) navigateCmd(url string) tea.Cmd {
	open, logger := m.openURL, m.logger
	return func() tea.Msg {
		if open == nil {
			return nil
		}
		if err := open(url); err != nil {
			logger.Warn("open browser", "url", url, "err", err)
		}
		return nil
	}
}

func (m Model) expireNotice(id int) tea.Cmd {
	return tea.Tick(m.noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}
