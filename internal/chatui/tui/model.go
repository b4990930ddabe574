package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/csrsef/chatbot/internal/chatui"
)

const (
	title        = "CSRSEF Chatbot"
	inputHeight  = 3
	chromeHeight = inputHeight + 2 + 1 + 1 // input border, header, status
)

type relayDoneMsg struct {
	reply string
	err   error
}

type authDoneMsg struct {
	ok bool
}

// stateChangedMsg reports a machine change made outside Update, such as a
// display-preference switch.
type stateChangedMsg struct{}

// Model renders a chatui.Machine. The machine owns all conversation state;
// the model only owns widgets.
type Model struct {
	machine *chatui.Machine
	ctx     context.Context

	input    textarea.Model
	password textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width          int
	height         int
	authenticating bool
}

func New(ctx context.Context, machine *chatui.Machine) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	// Enter submits; these insert a newline instead.
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))

	pw := textinput.New()
	pw.Placeholder = "Password"
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Ellipsis

	m := Model{
		machine:  machine,
		ctx:      ctx,
		input:    ta,
		password: pw,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
		height:   20 + chromeHeight,
	}

	if machine.Snapshot().Authenticated {
		m.input.Focus()
	} else {
		m.password.Focus()
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case relayDoneMsg:
		m.machine.CompleteSend(msg.reply, msg.err)
		m.input.Focus()
		m.refresh()
		return m, textarea.Blink

	case authDoneMsg:
		m.authenticating = false
		m.password.Reset()
		if msg.ok {
			m.password.Blur()
			m.input.Focus()
			m.refresh()
			return m, textarea.Blink
		}
		return m, nil

	case stateChangedMsg:
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.machine.Snapshot().Loading && !m.authenticating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		m.machine.ToggleDarkMode()
		m.refresh()
		return m, nil
	case "ctrl+p":
		m.machine.SetMode(m.machine.Snapshot().Mode.Toggle())
		return m, nil
	}

	state := m.machine.Snapshot()

	if !state.Authenticated {
		if msg.Type == tea.KeyEnter {
			if m.authenticating {
				return m, nil
			}
			m.authenticating = true
			return m, tea.Batch(m.authenticate(m.password.Value()), m.spinner.Tick)
		}
		var cmd tea.Cmd
		m.password, cmd = m.password.Update(msg)
		return m, cmd
	}

	if state.Loading {
		// Input is disabled until the reply lands.
		switch msg.String() {
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter && !msg.Alt {
		m.machine.SetInput(m.input.Value())
		pending, ok := m.machine.PressEnter(false)
		if !ok {
			return m, nil
		}
		m.input.Reset()
		m.input.Blur()
		m.refresh()
		return m, tea.Batch(m.dispatch(pending), m.spinner.Tick)
	}

	switch msg.String() {
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.machine.SetInput(m.input.Value())
	return m, cmd
}

func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.machine.Snapshot().Authenticated {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) dispatch(pending chatui.Pending) tea.Cmd {
	machine := m.machine
	ctx := m.ctx
	return func() tea.Msg {
		reply, err := machine.Dispatch(ctx, pending)
		return relayDoneMsg{reply: reply, err: err}
	}
}

func (m Model) authenticate(password string) tea.Cmd {
	machine := m.machine
	ctx := m.ctx
	return func() tea.Msg {
		return authDoneMsg{ok: machine.Authenticate(ctx, password)}
	}
}

func (m *Model) layout() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chromeHeight, 1)
	m.input.SetWidth(max(m.width-4, 10))
	m.password.Width = max(m.width-6, 10)
	m.refresh()
}

// refresh re-renders the transcript and keeps the newest turn in view.
func (m *Model) refresh() {
	state := m.machine.Snapshot()
	theme := ThemeFor(state.DarkMode)
	width := max(m.viewport.Width-4, 10)

	var b strings.Builder
	for _, turn := range state.Turns {
		switch turn.Speaker {
		case chatui.User:
			b.WriteString(theme.User.Width(width).Render(turn.Text))
		default:
			b.WriteString(theme.Assistant.Width(width).Render(RenderMarkdown(turn.Text, theme)))
		}
		b.WriteString("\n\n")
	}
	if state.Loading {
		b.WriteString(theme.Pending.Render(m.spinner.View()))
	}

	m.viewport.SetContent(strings.TrimRight(b.String(), "\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	state := m.machine.Snapshot()
	theme := ThemeFor(state.DarkMode)

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.Header.Render(title),
		theme.Mode.Render("["+string(state.Mode)+"]"),
	)

	if !state.Authenticated {
		var b strings.Builder
		b.WriteString(header + "\n\n")
		b.WriteString(theme.Input.Render(m.password.View()) + "\n")
		if m.authenticating {
			b.WriteString(theme.Pending.Render("Checking" + m.spinner.View()))
		} else if state.AuthError != "" {
			b.WriteString(theme.Error.Render(state.AuthError))
		}
		b.WriteString("\n")
		b.WriteString(theme.Status.Width(m.width).Render("enter: unlock • ctrl+t: theme • ctrl+c: quit"))
		return b.String()
	}

	status := "enter: send • alt+enter: newline • ctrl+p: mode • ctrl+t: theme • ctrl+c: quit"
	if state.Loading {
		status = "Waiting for response..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		theme.Input.Render(m.input.View()),
		theme.Status.Width(m.width).Render(status),
	)
}

// watch forwards every machine change to send as a stateChangedMsg.
// Observers run on the goroutine that changed the machine, which may be the
// program's own Update, so the send must not block it.
func watch(machine *chatui.Machine, send func(tea.Msg)) (cancel func()) {
	return machine.Observe(func(chatui.State) {
		go send(stateChangedMsg{})
	})
}

// Run mounts machine on pref and blocks until the user quits.
func Run(ctx context.Context, machine *chatui.Machine, pref chatui.DisplayPreference) error {
	machine.Mount(pref)
	defer machine.Unmount()

	program := tea.NewProgram(New(ctx, machine), tea.WithAltScreen(), tea.WithContext(ctx))
	stop := watch(machine, program.Send)
	defer stop()

	_, err := program.Run()
	return err
}
