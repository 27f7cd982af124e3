package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"paketomat/internal/portal"
)

var errNoSenderSelected = errors.New("no sender selected")

// KeyMap represents the key bindings for the sender picker
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "cancel"),
		),
	}
}

var (
	pickerTitleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	pickerHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// SenderPicker lets the user choose a sender identity from a table
type SenderPicker struct {
	table    table.Model
	senders  []portal.Sender
	keys     KeyMap
	selected *portal.Sender
	quitting bool
}

// NewSenderPicker creates the picker model
func NewSenderPicker(senders []portal.Sender, useColor bool) SenderPicker {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "NAME", Width: columnWidth(senders, func(s portal.Sender) string { return s.Name }, 4, 30)},
		{Title: "ADDRESS", Width: columnWidth(senders, func(s portal.Sender) string { return s.Address }, 7, 40)},
		{Title: "DEPOT", Width: 6},
	}

	rows := make([]table.Row, len(senders))
	for i, s := range senders {
		rows[i] = table.Row{strconv.Itoa(s.ID), s.Name, s.Address, s.Depot}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(senders), 15)+2),
	)

	if useColor {
		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(false)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)
	}

	return SenderPicker{
		table:   t,
		senders: senders,
		keys:    DefaultKeyMap(),
	}
}

func columnWidth(senders []portal.Sender, value func(portal.Sender) string, minWidth, maxWidth int) int {
	width := minWidth
	for _, s := range senders {
		width = max(width, len([]rune(value(s))))
	}
	return min(width, maxWidth)
}

// Init initializes the picker
func (m SenderPicker) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m SenderPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Select):
			if i := m.table.Cursor(); i >= 0 && i < len(m.senders) {
				s := m.senders[i]
				m.selected = &s
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the picker
func (m SenderPicker) View() string {
	if m.quitting || m.selected != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Choose a sender"))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(pickerHelpStyle.Render(fmt.Sprintf("%s • %s • %s",
		m.keys.Down.Help().Key+"/"+m.keys.Up.Help().Key+" move",
		m.keys.Select.Help().Key+" "+m.keys.Select.Help().Desc,
		m.keys.Quit.Help().Key+" "+m.keys.Quit.Help().Desc)))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen sender, if any
func (m SenderPicker) Selected() (portal.Sender, bool) {
	if m.selected == nil {
		return portal.Sender{}, false
	}
	return *m.selected, true
}

// shouldUseInteractiveMode reports whether the sender picker may be shown
func shouldUseInteractiveMode(outputFormat string, quiet, explicitFlag, isTerminal bool) bool {
	if !isTerminal {
		return false
	}
	if explicitFlag {
		return true
	}
	return outputFormat == "table" && !quiet
}

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
}

// pickSender asks the user to choose one of the senders
func pickSender(senders []portal.Sender) (portal.Sender, error) {
	switch len(senders) {
	case 0:
		return portal.Sender{}, fmt.Errorf("the account has no senders")
	case 1:
		return senders[0], nil
	}

	program := tea.NewProgram(NewSenderPicker(senders, !noColor), tea.WithOutput(os.Stderr))
	final, err := program.Run()
	if err != nil {
		return portal.Sender{}, fmt.Errorf("sender picker failed: %w", err)
	}

	sender, ok := final.(SenderPicker).Selected()
	if !ok {
		return portal.Sender{}, errNoSenderSelected
	}
	return sender, nil
}
