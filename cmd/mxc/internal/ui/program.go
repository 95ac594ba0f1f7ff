package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// Program wraps the bubbletea program so the dev server can push compile
// events without depending on tea message types.
type Program struct {
	prog *tea.Program
}

// NewProgram creates the status view program for the given listen address
func NewProgram(addr string) *Program {
	return &Program{
		prog: tea.NewProgram(NewModel(addr)),
	}
}

// Run blocks until the view exits
func (p *Program) Run() error {
	_, err := p.prog.Run()
	return err
}

// Quit asks the view to exit
func (p *Program) Quit() {
	p.prog.Send(quitMsg{})
}

// CompileStarted marks a component as compiling
func (p *Program) CompileStarted(name string) {
	p.prog.Send(compileStartedMsg{name: name})
}

// CompileFinished marks a component as compiled
func (p *Program) CompileFinished(name string, duration time.Duration, sessions int) {
	p.prog.Send(compileFinishedMsg{name: name, duration: duration, sessions: sessions})
}

// CompileFailed marks a component as failed
func (p *Program) CompileFailed(name string, err error) {
	p.prog.Send(compileFailedMsg{name: name, err: err})
}
