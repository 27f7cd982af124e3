package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ProgressSpinner shows a spinner on stderr while a portal call runs
type ProgressSpinner struct {
	spinner spinner.Model
	message string
	enabled bool
	out     io.Writer
	style   lipgloss.Style

	done chan struct{}
	wg   sync.WaitGroup
}

// NewProgressSpinner creates a spinner. It renders only on an interactive
// terminal with color enabled; otherwise Start prints the message once.
func NewProgressSpinner(message string, noColor bool) *ProgressSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	return &ProgressSpinner{
		spinner: s,
		message: message,
		enabled: SpinnerEnabled(noColor),
		out:     os.Stderr,
		style:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		done:    make(chan struct{}),
	}
}

// SpinnerEnabled reports whether animated output is appropriate
func SpinnerEnabled(noColor bool) bool {
	if noColor || termenv.EnvNoColor() || os.Getenv("CI") != "" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Start begins the spinner in a goroutine
func (p *ProgressSpinner) Start() {
	if !p.enabled {
		fmt.Fprintf(p.out, "%s...\n", p.message)
		return
	}

	prog := tea.NewProgram(&spinnerProgram{
		spinner: p.spinner,
		message: p.message,
		done:    p.done,
		style:   p.style,
	}, tea.WithOutput(p.out), tea.WithInput(nil))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_, _ = prog.Run()
	}()
}

// Stop ends the spinner and waits for the terminal to be restored
func (p *ProgressSpinner) Stop() {
	if !p.enabled {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Spin runs fn while a spinner is shown
func Spin[T any](message string, noColor bool, fn func() (T, error)) (T, error) {
	p := NewProgressSpinner(message, noColor)
	p.Start()
	defer p.Stop()
	return fn()
}

type spinnerProgram struct {
	spinner spinner.Model
	message string
	done    <-chan struct{}
	style   lipgloss.Style
	quit    bool
}

func (s *spinnerProgram) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.waitForDone())
}

func (s *spinnerProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case doneMsg:
		s.quit = true
		return s, tea.Quit
	}
	return s, nil
}

func (s *spinnerProgram) View() string {
	if s.quit {
		return ""
	}
	return fmt.Sprintf("%s %s", s.spinner.View(), s.style.Render(s.message))
}

func (s *spinnerProgram) waitForDone() tea.Cmd {
	return func() tea.Msg {
		<-s.done
		return doneMsg{}
	}
}

type doneMsg struct{}
