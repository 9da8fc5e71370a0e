package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unformat/shredder/internal/session"
	"github.com/unformat/shredder/internal/types"
)

var (
	paneBorderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	stageStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	riskHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	riskMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	riskLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	riskNoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	logStyles = map[session.Kind]lipgloss.Style{
		session.KindError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		session.KindWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		session.KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		session.KindAction:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		session.KindProcess: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		session.KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	}
)

// riskText returns plain text for a risk (ANSI codes break table truncation).
func riskText(r types.Risk) string {
	switch r {
	case types.RiskHigh:
		return "HIGH"
	case types.RiskMedium:
		return "MED"
	case types.RiskLow:
		return "LOW"
	}
	return "-"
}

func riskStyle(r types.Risk) lipgloss.Style {
	switch r {
	case types.RiskHigh:
		return riskHighStyle
	case types.RiskMedium:
		return riskMedStyle
	case types.RiskLow:
		return riskLowStyle
	}
	return riskNoneStyle
}

type loadedMsg struct {
	path string
	err  error
}

type shreddedMsg struct{ err error }

type savedMsg struct {
	path string
	err  error
}

type logMsg session.LogEntry

type statusMsg string

// Model is the bubbletea model over one processing session.
type Model struct {
	sess      *session.Session
	input     textinput.Model
	spinner   spinner.Model
	table     table.Model
	logView   viewport.Model
	preview   viewport.Model
	prefs     Prefs
	outDir    string
	copy      func(string) error
	savePrefs func(Prefs) error
	source    string // path the current file was read from
	saved     string // path of the last written output
	status    string
	width     int
	height    int
	busy      bool
	quitting  bool
}

// Option configures a Model.
type Option func(*Model)

// WithOutDir writes cleaned files under dir instead of next to the source.
func WithOutDir(dir string) Option { return func(m *Model) { m.outDir = dir } }

// WithPrefs sets the initial display preferences.
func WithPrefs(p Prefs) Option { return func(m *Model) { m.prefs = p } }

// NewModel returns an idle model backed by sess.
func NewModel(sess *session.Session, opts ...Option) Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	// Line spinner avoids Braille characters that render poorly on some terminals
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	ti := textinput.New()
	ti.Placeholder = "path/to/file.jpg, .pdf, .log ..."
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Prompt = "file> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	ti.Focus()

	m := Model{
		sess:      sess,
		input:     ti,
		spinner:   sp,
		table:     t,
		logView:   viewport.New(80, 8),
		preview:   viewport.New(80, 8),
		prefs:     DefaultPrefs(),
		copy:      clipboard.WriteAll,
		savePrefs: SavePrefs,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

func columns(width int) []table.Column {
	value := width - 8 - 28 - 10
	if value < 20 {
		value = 20
	}
	return []table.Column{
		{Title: "Risk", Width: 6},
		{Title: "Key", Width: 26},
		{Title: "Value", Width: value},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Load starts inspecting path as if it had been typed at the prompt.
func (m *Model) Load(path string) tea.Cmd {
	m.input.SetValue(path)
	return m.startLoad()
}

func (m *Model) startLoad() tea.Cmd {
	path := strings.TrimSpace(m.input.Value())
	if path == "" {
		return nil
	}
	m.busy = true
	m.status = ""
	m.saved = ""
	m.input.Blur()
	return tea.Batch(loadCmd(m.sess, path), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case logMsg:
		m.refreshLog()
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case loadedMsg:
		m.busy = false
		m.refresh()
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.input.Focus()
			return m, nil
		}
		m.source = msg.path
		m.status = "s: shred | r: reset | h: hide values | q: quit"
		return m, nil

	case shreddedMsg:
		m.busy = false
		m.refresh()
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.status = "d: save | c: copy path | r: reset | q: quit"
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "Save failed: " + msg.err.Error()
			return m, nil
		}
		m.saved = msg.path
		m.status = "Saved: " + msg.path
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	stage := m.sess.Stage()
	if stage == session.StageIdle {
		switch key {
		case "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m, m.startLoad()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "r":
		if err := m.sess.Reset(); err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		m.source, m.saved, m.status = "", "", ""
		m.input.SetValue("")
		m.input.Focus()
		m.refresh()
		return m, textinput.Blink
	case "s":
		if stage != session.StageReview {
			return m, nil
		}
		m.busy = true
		m.status = ""
		return m, tea.Batch(shredCmd(m.sess), m.spinner.Tick)
	case "d":
		st := m.sess.Snapshot()
		if st.Output == nil {
			return m, func() tea.Msg { return statusMsg("Nothing to save yet (s: shred)") }
		}
		return m, saveCmd(*st.Output, m.source, m.outDir)
	case "c":
		return m, m.copyPath()
	case "h":
		m.prefs.HideValues = !m.prefs.HideValues
		m.refresh()
		if m.savePrefs != nil {
			if err := m.savePrefs(m.prefs); err != nil {
				m.status = "Prefs not saved: " + err.Error()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// copyPath copies the path of the saved output to the clipboard.
func (m Model) copyPath() tea.Cmd {
	if m.saved == "" {
		return func() tea.Msg { return statusMsg("Save the cleaned file first (d)") }
	}
	if err := m.copy(m.saved); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	path := m.saved
	return func() tea.Msg { return statusMsg("Copied: " + path) }
}

func (m *Model) resize() {
	w := m.width - 2
	if w < 40 {
		w = 40
	}
	m.table.SetColumns(columns(w))
	m.table.SetWidth(w)
	h := m.height / 3
	if h < 5 {
		h = 5
	}
	m.table.SetHeight(h)
	m.logView.Width = w
	m.logView.Height = max(4, m.height/4)
	m.preview.Width = w
	m.preview.Height = max(4, m.height/4)
	m.refresh()
}

// refresh rebuilds every pane from the session snapshot.
func (m *Model) refresh() {
	st := m.sess.Snapshot()
	rows := make([]table.Row, len(st.Findings))
	for i, f := range st.Findings {
		v := f.Value
		if m.prefs.HideValues && f.Key != types.StatusKey {
			v = maskValue(v)
		}
		rows[i] = table.Row{riskText(f.Risk), f.Key, v}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
	m.setLog(st.Log)
	if st.Output != nil {
		m.preview.SetContent(previewOf(*st.Output, st.Category))
	} else {
		m.preview.SetContent("")
	}
}

func (m *Model) refreshLog() { m.setLog(m.sess.Snapshot().Log) }

func (m *Model) setLog(entries []session.LogEntry) {
	var b strings.Builder
	for _, e := range entries {
		style, ok := logStyles[e.Kind]
		if !ok {
			style = logStyles[session.KindInfo]
		}
		b.WriteString(hintStyle.Render(e.Clock()))
		b.WriteString(" ")
		b.WriteString(style.Render(e.Message))
		b.WriteString("\n")
	}
	m.logView.SetContent(b.String())
	m.logView.GotoBottom()
}
