package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/portfolio/internal/domain/terminal"
)

const prompt = "guest@portfolio:~$ "

// themeMsg reports a theme change requested by a command.
type themeMsg terminal.Theme

// projectsReadyMsg reports that the session's project fetch finished.
type projectsReadyMsg struct{}

// model is the bubbletea model around one terminal session.
type model struct {
	session *terminal.Session
	themes  *terminal.ThemeState
	styles  Styles

	input    textinput.Model
	viewport viewport.Model
	width    int
	projects int
	quitting bool
}

func newModel(session *terminal.Session, themes *terminal.ThemeState) model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type 'help' and press Enter"
	ti.CharLimit = 512
	ti.Width = 76
	ti.Focus()

	m := model{
		session:  session,
		themes:   themes,
		input:    ti,
		viewport: viewport.New(80, 20),
		width:    80,
	}
	m.restyle(themes.Current())
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	ready := m.session.Ready()
	return tea.Batch(textinput.Blink, func() tea.Msg {
		<-ready
		return projectsReadyMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyUp:
			if v, ok := m.session.RecallPrevious(); ok {
				m.setInput(v)
			}
			return m, nil
		case tea.KeyDown:
			if v, ok := m.session.RecallNext(); ok {
				m.setInput(v)
			}
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6
		m.input.Width = msg.Width - len(prompt) - 6
		m.refresh()
		return m, nil

	case themeMsg:
		t := terminal.Theme(msg)
		if t == terminal.ThemeDefault {
			// exit hands the page back to the site.
			m.quitting = true
			return m, tea.Quit
		}
		m.restyle(t)
		m.refresh()
		return m, nil

	case projectsReadyMsg:
		m.projects = len(m.session.Projects())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetBuffer(m.input.Value())
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.session.Execute(line)
	m.input.Reset()
	m.restyle(m.themes.Current())
	m.refresh()
	return m, nil
}

func (m *model) setInput(v string) {
	m.input.SetValue(v)
	m.input.CursorEnd()
}

func (m *model) restyle(t terminal.Theme) {
	if m.styles.Theme == t && m.styles.Lines != nil {
		return
	}
	m.styles = NewStyles(t)
	m.input.PromptStyle = m.styles.Prompt
	m.input.TextStyle = m.styles.Input
}

func (m *model) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

// render draws the session log.
func (m model) render() string {
	var b strings.Builder
	for i, e := range m.session.Log() {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.Input != "" {
			b.WriteString(m.styles.Prompt.Render(prompt))
			b.WriteString(m.styles.Input.Render(e.Input))
			b.WriteByte('\n')
		}
		for j, l := range e.Output.Lines {
			if j > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(m.styles.Line(l))
		}
	}
	return b.String()
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	status := fmt.Sprintf("theme: %s · projects: %d · ↑/↓ history · esc quit", m.styles.Theme, m.projects)
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.styles.Prompt.Render(prompt)+m.input.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Frame.Width(m.width-2).Render(body),
		m.styles.Status.Render(status),
	)
}
