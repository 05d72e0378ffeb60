package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rhishavhere/codeblink/internal/bridge"
	"github.com/Rhishavhere/codeblink/internal/shell"
	"github.com/Rhishavhere/codeblink/internal/util"
)

// Session is the part of shell.Shell the editor drives.
type Session interface {
	Snapshot() shell.State
	LastGenerated() (string, error)
	Run(ctx context.Context, source string) (shell.RunResult, error)
	Open(ctx context.Context) (content string, ok bool, err error)
	Save(ctx context.Context, content string, saveAs bool) (path string, ok bool, err error)
	HandleTerminalClosed(tc bridge.TerminalClosed)
	ClearLog()
	Log(level shell.Level, format string, args ...any)
}

type mode int

const (
	modeEdit mode = iota
	modePreview
	modeCode
)

// Layout constants
const (
	minEditorWidth = 30
	headerHeight   = 1
	footerHeight   = 2 // status bar + help
	panelChrome    = 3 // border top/bottom + title
)

// Model is the bubbletea model for the editor.
type Model struct {
	ctx     context.Context
	session Session
	keys    keyMap
	help    help.Model

	editor textarea.Model
	log    viewport.Model
	code   viewport.Model

	mode     mode
	width    int
	height   int
	inFlight int
}

func newModel(ctx context.Context, session Session, content string, lineNumbers bool) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe your program in plain English..."
	ta.ShowLineNumbers = lineNumbers
	ta.CharLimit = 0
	ta.Prompt = ""
	ta.SetWidth(80)
	ta.SetHeight(20)
	ta.SetValue(content)
	ta.Focus()

	m := Model{
		ctx:     ctx,
		session: session,
		keys:    defaultKeyMap(),
		help:    help.New(),
		editor:  ta,
		log:     viewport.New(40, 20),
		code:    viewport.New(80, 20),
	}
	m.syncLog()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case runDoneMsg:
		m.inFlight--
		m.syncLog()
		return m, nil

	case openDoneMsg:
		m.inFlight--
		if msg.ok {
			m.editor.SetValue(msg.content)
		}
		m.syncLog()
		return m, nil

	case saveDoneMsg:
		m.inFlight--
		m.syncLog()
		return m, nil

	case logEntryMsg:
		m.syncLog()
		return m, nil

	case terminalClosedMsg:
		m.session.HandleTerminalClosed(msg.closed)
		m.syncLog()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.mode == modeCode {
		if key.Matches(msg, m.keys.Close, m.keys.ShowCode) {
			m.mode = modeEdit
			return m, nil
		}
		var cmd tea.Cmd
		m.code, cmd = m.code.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Run):
		m.inFlight++
		return m, runCmd(m.ctx, m.session, m.editor.Value())

	case key.Matches(msg, m.keys.Open):
		m.inFlight++
		return m, openCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.Save):
		m.inFlight++
		return m, saveCmd(m.ctx, m.session, m.editor.Value(), false)

	case key.Matches(msg, m.keys.SaveAs):
		m.inFlight++
		return m, saveCmd(m.ctx, m.session, m.editor.Value(), true)

	case key.Matches(msg, m.keys.ShowCode):
		code, err := m.session.LastGenerated()
		if err != nil {
			m.session.Log(shell.LevelError, "No generated code to show. Run the program first.")
			m.syncLog()
			return m, nil
		}
		m.code.SetContent(code)
		m.code.GotoTop()
		m.mode = modeCode
		return m, nil

	case key.Matches(msg, m.keys.Preview):
		if m.mode == modePreview {
			m.mode = modeEdit
			return m, m.editor.Focus()
		}
		m.mode = modePreview
		m.editor.Blur()
		return m, nil

	case key.Matches(msg, m.keys.ClearLog):
		m.session.ClearLog()
		m.syncLog()
		return m, nil

	case key.Matches(msg, m.keys.LogUp):
		m.log.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.LogDown):
		m.log.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Close) && m.mode == modePreview:
		m.mode = modeEdit
		return m, m.editor.Focus()
	}

	if m.mode != modeEdit {
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// panelWidths splits the screen between the editor and the log.
func (m Model) panelWidths() (editor, log int) {
	if m.width <= 0 {
		return 80, 40
	}
	editor = m.width * 3 / 5
	if editor < minEditorWidth {
		editor = minEditorWidth
	}
	log = m.width - editor
	return editor, log
}

func (m *Model) resize() {
	editorW, logW := m.panelWidths()
	bodyH := max(m.height-headerHeight-footerHeight-panelChrome, 3)

	m.editor.SetWidth(max(editorW-2, 10))
	m.editor.SetHeight(bodyH)
	m.log.Width = max(logW-2, 10)
	m.log.Height = bodyH
	m.code.Width = max(m.width-2, 10)
	m.code.Height = bodyH
	m.help.Width = m.width
	m.syncLog()
}

func (m *Model) syncLog() {
	st := m.session.Snapshot()
	lines := make([]string, 0, len(st.Log))
	for _, e := range st.Log {
		lines = append(lines, levelStyle(e.Level).Render(e.String()))
	}
	m.log.SetContent(lipgloss.NewStyle().Width(m.log.Width).Render(strings.Join(lines, "\n")))
	m.log.GotoBottom()
}

// cursorPosition returns the 1-based line and column of the editor cursor.
func cursorPosition(ta textarea.Model) (line, col int) {
	li := ta.LineInfo()
	return ta.Line() + 1, li.StartColumn + li.ColumnOffset + 1
}

// View implements tea.Model.
func (m Model) View() string {
	st := m.session.Snapshot()

	header := Title.Render("codeblink") + " " + TabActive.Render(st.Filename)
	if st.Path != "" && m.width > 0 {
		room := m.width - lipgloss.Width(header) - 16
		if room > 10 {
			header += " " + Muted.Render(util.TruncatePath(st.Path, room))
		}
	}
	if st.Running > 0 {
		header += Muted.Render(fmt.Sprintf("  %d running", st.Running))
	}

	var body string
	if m.mode == modeCode {
		body = PanelFocused.Render(PanelTitle.Render("Generated Python (esc to close)") + "\n" + m.code.View())
	} else {
		editorW, logW := m.panelWidths()
		var editorView string
		if m.mode == modePreview {
			editorView = lipgloss.NewStyle().Width(m.editor.Width()).Height(m.editor.Height()).Render(Highlight(m.editor.Value()))
		} else {
			editorView = m.editor.View()
		}
		left := PanelFocused.Width(editorW - 2).Render(PanelTitle.Render("Editor") + "\n" + editorView)
		right := Panel.Width(logW - 2).Render(PanelTitle.Render("Output") + "\n" + m.log.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.statusBar(st), m.help.View(m.keys))
}

func (m Model) statusBar(st shell.State) string {
	line, col := cursorPosition(m.editor)
	right := fmt.Sprintf("Ln %d, Col %d", line, col)
	left := levelStyle(st.Status.Level).Render(st.Status.Message)
	if m.inFlight > 0 {
		left += Muted.Render(" ...")
	}
	if m.width > 0 {
		left = util.Truncate(left, max(m.width-lipgloss.Width(right)-3, 4))
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}
