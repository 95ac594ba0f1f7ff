// Package ui renders the interactive status view for mxc dev.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status represents the compile state of one component
type Status int

const (
	StatusIdle Status = iota
	StatusCompiling
	StatusOK
	StatusFailed
)

// componentState tracks the latest compile outcome per component
type componentState struct {
	name     string
	status   Status
	duration time.Duration
	err      error
	updated  time.Time
}

// KeyMap defines the keyboard shortcuts
type KeyMap struct {
	Quit key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// Messages sent into the model by the dev server
type compileStartedMsg struct{ name string }
type compileFinishedMsg struct {
	name     string
	duration time.Duration
	sessions int
}
type compileFailedMsg struct {
	name string
	err  error
}
type quitMsg struct{}

// Model is the dev server status view
type Model struct {
	addr       string
	spinner    spinner.Model
	components map[string]*componentState
	sessions   int
	quitting   bool
}

// NewModel creates the status view bound to a listen address
func NewModel(addr string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		addr:       addr,
		spinner:    s,
		components: make(map[string]*componentState),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

	case quitMsg:
		m.quitting = true
		return m, tea.Quit

	case compileStartedMsg:
		m.upsert(msg.name).status = StatusCompiling

	case compileFinishedMsg:
		st := m.upsert(msg.name)
		st.status = StatusOK
		st.duration = msg.duration
		st.err = nil
		m.sessions = msg.sessions

	case compileFailedMsg:
		st := m.upsert(msg.name)
		st.status = StatusFailed
		st.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) upsert(name string) *componentState {
	st, ok := m.components[name]
	if !ok {
		st = &componentState{name: name}
		m.components[name] = st
	}
	st.updated = time.Now()
	return st
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("mxc dev"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  http://%s  %d sessions", m.addr, m.sessions)))
	b.WriteString("\n\n")

	names := make([]string, 0, len(m.components))
	for name := range m.components {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		b.WriteString(mutedStyle.Render("  waiting for component changes..."))
		b.WriteString("\n")
	}

	for _, name := range names {
		st := m.components[name]
		switch st.status {
		case StatusCompiling:
			b.WriteString(fmt.Sprintf("  %s %s\n", m.spinner.View(), name))
		case StatusOK:
			b.WriteString(fmt.Sprintf("  %s %s %s\n",
				successStyle.Render("✓"), name,
				mutedStyle.Render(st.duration.Round(time.Millisecond).String())))
		case StatusFailed:
			b.WriteString(fmt.Sprintf("  %s %s\n", errorStyle.Render("✗"), name))
			if st.err != nil {
				b.WriteString(errorStyle.Render("      " + st.err.Error()))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  q to quit"))
	b.WriteString("\n")
	return b.String()
}
