// Package shell is the interactive bubbletea front end: a status bar, a
// scrolling output viewport and an input line wired to a session
// interpreter.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"tritcalc/cmd/tritcalc/ui"
	"tritcalc/internal/logging"
	"tritcalc/internal/monitor"
	"tritcalc/internal/session"
)

// Interpreter executes one command line.
type Interpreter interface {
	Execute(ctx context.Context, line string) (session.Response, error)
}

// StatusFunc reports the monitor view shown in the status bar.
type StatusFunc func() monitor.Status

type tickMsg time.Time

// resultMsg carries a finished command back into Update.
type resultMsg struct {
	line string
	resp session.Response
	err  error
}

const (
	statusHeight = 1
	inputHeight  = 2
	maxLines     = 1000
)

// Model is the shell's bubbletea model.
type Model struct {
	ctx     context.Context
	interp  Interpreter
	statusF StatusFunc
	version string

	styles   ui.Styles
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	// isLoading is set while a command runs; cancel stops it.
	isLoading bool
	cancel    context.CancelFunc

	lines  []string
	status monitor.Status
	width  int
	height int

	quitting bool
}

// New builds a shell model. status may be nil.
func New(ctx context.Context, interp Interpreter, status StatusFunc, version string) Model {
	in := textinput.New()
	in.Placeholder = "add 12 21, A=102, help ..."
	in.Prompt = "▸ "
	in.Focus()

	styles := ui.DefaultStyles()
	in.PromptStyle = styles.Prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Badge

	m := Model{
		ctx:      ctx,
		interp:   interp,
		statusF:  status,
		version:  version,
		styles:   styles,
		input:    in,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
		height:   20 + statusHeight + inputHeight,
	}
	m.append(styles.Muted.Render("tritcalc " + version + ": type help for commands, quit to leave"))
	m.refreshStatus()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the cursor blink and the status refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEsc:
			if m.isLoading && m.cancel != nil {
				m.cancel()
				m.append(m.styles.Muted.Render("cancelling..."))
			}
			return m, nil
		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			line := m.input.Value()
			if strings.TrimSpace(line) == "" {
				m.input.Reset()
				return m, nil
			}
			m.input.Reset()
			return m, m.submit(line)
		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
		m.input, tiCmd = m.input.Update(msg)
		return m, tiCmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case resultMsg:
		m.isLoading = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		if m.show(msg) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd

	case tickMsg:
		m.refreshStatus()
		return m, tick()
	}

	m.input, tiCmd = m.input.Update(msg)
	return m, tiCmd
}

// submit echoes line and starts it in the background. Esc cancels it.
func (m *Model) submit(line string) tea.Cmd {
	m.append(m.styles.Echo.Render("» " + line))

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.isLoading = true

	interp := m.interp
	run := func() tea.Msg {
		resp, err := interp.Execute(ctx, line)
		return resultMsg{line: line, resp: resp, err: err}
	}
	return tea.Batch(m.spinner.Tick, run)
}

// show appends a finished command's output. It reports whether the shell
// should exit.
func (m *Model) show(r resultMsg) bool {
	resp, err := r.resp, r.err
	switch {
	case errors.Is(err, context.Canceled):
		logging.ShellDebug("command %q cancelled", r.line)
		m.append(m.styles.Muted.Render("Cancelled"))
	case err != nil:
		logging.ShellDebug("command %q failed: %v", r.line, err)
		m.append(m.styles.Error.Render("Error: " + err.Error()))
	case resp.Markdown:
		m.append(m.renderMarkdown(resp.Text))
	case resp.Text != "":
		m.append(m.styles.Output.Render(resp.Text))
	}
	m.refreshStatus()
	return resp.Quit
}

func (m *Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return m.styles.Output.Render(text)
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		logging.ShellDebug("markdown render failed: %v", err)
		return m.styles.Output.Render(text)
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) append(s string) {
	m.lines = append(m.lines, s)
	if over := len(m.lines) - maxLines; over > 0 {
		m.lines = m.lines[over:]
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	vh := height - statusHeight - inputHeight
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.input.Width = max(width-4, 1)

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		logging.ShellDebug("glamour renderer unavailable: %v", err)
	} else {
		m.renderer = r
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) refreshStatus() {
	if m.statusF != nil {
		m.status = m.statusF()
	}
}

// Lines returns the rendered output so far.
func (m Model) Lines() []string {
	return append([]string(nil), m.lines...)
}

// Status returns the last status snapshot.
func (m Model) Status() monitor.Status { return m.status }

func (m Model) statusBar() string {
	left := m.styles.Badge.Render("tritcalc " + m.version)
	steps := m.styles.StatusBar.Render(fmt.Sprintf("steps %d / %d", m.status.Steps, m.status.Threshold))
	alert := m.styles.StatusBar.Render("ok")
	if m.status.Alert {
		alert = m.styles.Alert.Render("INTRUSION ALERT")
	}
	parts := []string{left, steps, alert}
	if m.isLoading {
		parts = append(parts, m.styles.StatusBar.Render(m.spinner.View()+" running (esc to cancel)"))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if gap := m.width - lipgloss.Width(bar); gap > 0 {
		bar += m.styles.StatusBar.Render(strings.Repeat(" ", max(gap-2, 0)))
	}
	return bar
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar(),
		m.viewport.View(),
		m.styles.RenderDivider(m.width),
		m.input.View(),
	)
}
